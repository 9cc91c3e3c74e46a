// config.go: This file contains the configuration for the CrowdWatch-Go application.
// It defines the settings struct and functions to load the settings.
package conf

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// LogConfig contains settings for log files.
type LogConfig struct {
	Enabled bool   // true to enable this log
	Path    string // path to log file
}

// MainSettings contains main application settings.
type MainSettings struct {
	Name string    // name of this node, can be used to identify the source of data
	Log  LogConfig // main log settings
}

// WebServerSettings contains settings for the HTTP API server.
type WebServerSettings struct {
	Enabled bool   // true to enable the web server
	Port    string // port for the web server
	Debug   bool   // true to enable debug mode
}

// SQLiteSettings contains settings for the SQLite database.
type SQLiteSettings struct {
	Enabled bool   // true to enable the SQLite output
	Path    string // path to the SQLite database file
}

// MySQLSettings contains settings for the MySQL database.
type MySQLSettings struct {
	Enabled  bool   // true to enable the MySQL output
	Username string // MySQL username
	Password string // MySQL password
	Database string // MySQL database name
	Host     string // MySQL host
	Port     string // MySQL port
}

// OutputSettings contains settings for the database outputs.
type OutputSettings struct {
	SQLite SQLiteSettings // SQLite database settings
	MySQL  MySQLSettings  // MySQL database settings
}

// StorageSettings contains settings for uploaded clip storage.
type StorageSettings struct {
	Path string // path to the clip storage directory
}

// DashboardSettings controls the synthetic dashboard feeds.
type DashboardSettings struct {
	RefreshInterval int // snapshot refresh interval in seconds
	DensityHours    int // default hours of density history served
	IncidentCount   int // default number of recent incidents served
}

// MQTTSettings contains settings for MQTT alert publishing.
type MQTTSettings struct {
	Enabled  bool   // true to enable MQTT alerts
	Broker   string // MQTT broker (tcp://host:port)
	Topic    string // MQTT topic for incident alerts
	Username string // MQTT username
	Password string // MQTT password
	Retain   bool   // true to retain messages at the broker
}

// TelemetrySettings contains settings for telemetry.
type TelemetrySettings struct {
	Enabled bool   // true to enable Prometheus compatible telemetry endpoint
	Listen  string // IP address and port to listen on
}

// RealtimeSettings contains all settings related to the monitoring service.
type RealtimeSettings struct {
	Dashboard DashboardSettings // synthetic dashboard feed settings
	MQTT      MQTTSettings      // MQTT alert settings
	Telemetry TelemetrySettings // telemetry settings
}

// Settings contains all configuration options for the application.
type Settings struct {
	Debug bool // true to enable debug mode

	Version   string `mapstructure:"-"` // version injected at build time
	BuildDate string `mapstructure:"-"` // build date injected at build time

	Main      MainSettings      // main application settings
	WebServer WebServerSettings // web server settings
	Output    OutputSettings    // database output settings
	Storage   StorageSettings   // clip storage settings
	Realtime  RealtimeSettings  // monitoring service settings
}

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment into a Settings struct.
func Load() (*Settings, error) {
	settings := &Settings{}

	// Initialize viper with defaults and config file locations
	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	// Unmarshal the configuration into the settings struct
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsMutex.Lock()
	defer settingsMutex.Unlock()
	settingsInstance = settings
	return settings, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("crowdwatch")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	viper.SetEnvPrefix("CROWDWATCH")
	viper.AutomaticEnv()

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !asConfigFileNotFound(err, &configFileNotFoundError) {
			return fmt.Errorf("fatal error reading config file: %w", err)
		}
		// No config file is fine, defaults and environment apply
		log.Println("Config file not found, using defaults")
	}

	return nil
}

func asConfigFileNotFound(err error, target *viper.ConfigFileNotFoundError) bool {
	if e, ok := err.(viper.ConfigFileNotFoundError); ok {
		*target = e
		return true
	}
	return false
}

// Setting returns the current settings instance, loading it if necessary.
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				log.Fatalf("Error loading settings: %v", err)
			}
		}
	})
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// GetDefaultConfigPaths returns the paths where the config file is searched for.
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error fetching user home directory: %w", err)
	}

	return []string{
		".",
		filepath.Join(homeDir, ".config", "crowdwatch"),
		"/etc/crowdwatch",
	}, nil
}

// GetBasePath resolves a possibly relative path against the working directory
// and ensures the directory exists.
func GetBasePath(path string) string {
	if !filepath.IsAbs(path) {
		if workDir, err := os.Getwd(); err == nil {
			path = filepath.Join(workDir, path)
		}
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		log.Printf("Failed to create directory %s: %v", path, err)
	}
	return path
}
