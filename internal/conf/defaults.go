// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "CrowdWatch-Go")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "crowdwatch.log")

	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.debug", false)

	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "crowdwatch.db")

	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "crowdwatch")
	viper.SetDefault("output.mysql.password", "secret")
	viper.SetDefault("output.mysql.database", "crowdwatch")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")

	viper.SetDefault("storage.path", "clips/")

	viper.SetDefault("realtime.dashboard.refreshinterval", 15)
	viper.SetDefault("realtime.dashboard.densityhours", 24)
	viper.SetDefault("realtime.dashboard.incidentcount", 5)

	viper.SetDefault("realtime.mqtt.enabled", false)
	viper.SetDefault("realtime.mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("realtime.mqtt.topic", "crowdwatch/incidents")
	viper.SetDefault("realtime.mqtt.username", "")
	viper.SetDefault("realtime.mqtt.password", "")
	viper.SetDefault("realtime.mqtt.retain", false)

	viper.SetDefault("realtime.telemetry.enabled", false)
	viper.SetDefault("realtime.telemetry.listen", "0.0.0.0:8090")
}
