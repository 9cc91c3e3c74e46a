// validate.go: validation of loaded settings
package conf

import (
	"fmt"
	"strconv"

	"github.com/crowdwatch/crowdwatch-go/internal/errors"
)

// ValidateSettings checks the loaded settings for obvious misconfiguration.
func ValidateSettings(settings *Settings) error {
	var validationErrors []error

	if err := validateWebServerSettings(&settings.WebServer); err != nil {
		validationErrors = append(validationErrors, err)
	}
	if err := validateOutputSettings(&settings.Output); err != nil {
		validationErrors = append(validationErrors, err)
	}
	if err := validateDashboardSettings(&settings.Realtime.Dashboard); err != nil {
		validationErrors = append(validationErrors, err)
	}

	if len(validationErrors) > 0 {
		return errors.New(errors.Join(validationErrors...)).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return nil
}

func validateWebServerSettings(settings *WebServerSettings) error {
	if !settings.Enabled {
		return nil
	}
	port, err := strconv.Atoi(settings.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid web server port: %s", settings.Port)
	}
	return nil
}

func validateOutputSettings(settings *OutputSettings) error {
	if settings.SQLite.Enabled && settings.MySQL.Enabled {
		return fmt.Errorf("only one database output can be enabled at a time")
	}
	if !settings.SQLite.Enabled && !settings.MySQL.Enabled {
		return fmt.Errorf("at least one database output must be enabled")
	}
	if settings.SQLite.Enabled && settings.SQLite.Path == "" {
		return fmt.Errorf("SQLite database path must not be empty")
	}
	return nil
}

func validateDashboardSettings(settings *DashboardSettings) error {
	if settings.RefreshInterval < 1 {
		return fmt.Errorf("dashboard refresh interval must be at least 1 second, got %d", settings.RefreshInterval)
	}
	if settings.DensityHours < 0 {
		return fmt.Errorf("dashboard density hours must not be negative, got %d", settings.DensityHours)
	}
	if settings.IncidentCount < 0 {
		return fmt.Errorf("dashboard incident count must not be negative, got %d", settings.IncidentCount)
	}
	return nil
}
