// Package generate implements the dashboard snapshot generation command.
package generate

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/crowdwatch/crowdwatch-go/internal/conf"
	"github.com/crowdwatch/crowdwatch-go/internal/crowd"
)

// Command creates the generate command. It prints one dashboard snapshot as
// JSON, useful for seeding demos and inspecting the generated data shapes.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a dashboard data snapshot",
		Long:  "Generate synthetic area statistics, hourly density history and recent incidents and print them as JSON.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(settings)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// setupFlags configures flags specific to the generate command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().IntVar(&settings.Realtime.Dashboard.DensityHours, "hours", viper.GetInt("realtime.dashboard.densityhours"), "Hours of density history to generate")
	cmd.Flags().IntVar(&settings.Realtime.Dashboard.IncidentCount, "incidents", viper.GetInt("realtime.dashboard.incidentcount"), "Number of recent incidents to generate")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}

func run(settings *conf.Settings) error {
	hours := settings.Realtime.Dashboard.DensityHours
	if hours <= 0 {
		hours = 24
	}
	count := settings.Realtime.Dashboard.IncidentCount
	if count <= 0 {
		count = 5
	}

	generator := crowd.New()
	snapshot := struct {
		Areas     []crowd.AreaStatistic `json:"areas"`
		Density   []crowd.DensitySample `json:"density"`
		Incidents []crowd.Incident      `json:"incidents"`
	}{
		Areas:     generator.AreaStats(),
		Density:   generator.HourlyDensityData(hours),
		Incidents: generator.RecentIncidents(count),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(snapshot)
}
