// Package serve implements the HTTP API server command.
package serve

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/crowdwatch/crowdwatch-go/internal/analysis"
	api "github.com/crowdwatch/crowdwatch-go/internal/api/v2"
	"github.com/crowdwatch/crowdwatch-go/internal/conf"
	"github.com/crowdwatch/crowdwatch-go/internal/crowd"
	"github.com/crowdwatch/crowdwatch-go/internal/datastore"
	"github.com/crowdwatch/crowdwatch-go/internal/errors"
	"github.com/crowdwatch/crowdwatch-go/internal/inference"
	"github.com/crowdwatch/crowdwatch-go/internal/logging"
	"github.com/crowdwatch/crowdwatch-go/internal/mqtt"
	"github.com/crowdwatch/crowdwatch-go/internal/objectstore"
	"github.com/crowdwatch/crowdwatch-go/internal/observability"
	"github.com/crowdwatch/crowdwatch-go/internal/scheduler"
)

const (
	connectTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Command creates the serve command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the CrowdWatch API server",
		Long:  "Start the HTTP API serving the dashboard feeds and the video analysis pipeline.",
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

// setupFlags configures flags specific to the serve command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.WebServer.Port, "port", viper.GetString("webserver.port"), "Port for the web server")
	cmd.Flags().StringVar(&settings.Storage.Path, "clippath", viper.GetString("storage.path"), "Path to save video clips")
	cmd.Flags().BoolVar(&settings.Realtime.Telemetry.Enabled, "telemetry", viper.GetBool("realtime.telemetry.enabled"), "Enable Prometheus telemetry endpoint")
	cmd.Flags().StringVar(&settings.Realtime.Telemetry.Listen, "listen", viper.GetString("realtime.telemetry.listen"), "Listen address and port of telemetry endpoint")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}

func run(settings *conf.Settings) error {
	if err := conf.ValidateSettings(settings); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ds := datastore.New(settings)
	if ds == nil {
		return fmt.Errorf("no database output enabled in configuration")
	}
	if err := ds.Open(); err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	defer func() {
		if err := ds.Close(); err != nil {
			logging.Error("Failed to close datastore", "error", err)
		}
	}()

	store, err := objectstore.NewLocal(settings.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize clip storage: %w", err)
	}

	metrics, err := observability.NewMetrics()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	var wg sync.WaitGroup
	quit := make(chan struct{})

	generator := crowd.New()
	sched := scheduler.New(settings, generator)
	wg.Add(1)
	go func() {
		defer wg.Done()
		sched.StartPolling(quit)
	}()

	if settings.Realtime.Telemetry.Enabled {
		endpoint, err := observability.NewEndpoint(settings, metrics)
		if err != nil {
			logging.Error("Failed to initialize telemetry endpoint", "error", err)
		} else {
			endpoint.Start(&wg, quit)
		}
	}

	var alerts mqtt.Client
	if settings.Realtime.MQTT.Enabled {
		alerts = mqtt.NewClient(settings, metrics.MQTT)
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		if err := alerts.Connect(ctx); err != nil {
			// Alert publishing is best effort, the server runs without it.
			logging.Warn("Failed to connect to MQTT broker", "error", err)
		}
		cancel()
	}

	processor := analysis.New(settings, ds, inference.NewRandomProvider(), metrics, alerts)

	e := echo.New()
	e.HideBanner = true

	controller, err := api.New(e, ds, settings, store, processor, sched, generator, log.Default(), metrics)
	if err != nil {
		return fmt.Errorf("failed to initialize API: %w", err)
	}
	defer controller.Shutdown()

	go func() {
		addr := ":" + settings.WebServer.Port
		logging.Info("Starting web server", "address", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Web server error", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logging.Info("Shutting down")
	close(quit)

	if alerts != nil {
		alerts.Disconnect()
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logging.Error("Web server shutdown error", "error", err)
	}

	wg.Wait()
	return nil
}
