package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/crowdwatch/crowdwatch-go/internal/conf"
	"github.com/crowdwatch/crowdwatch-go/internal/logging"
)

const shutdownTimeout = 5 * time.Second

var telemetryLogger *slog.Logger

func init() {
	var err error
	telemetryLogger, _, err = logging.NewFileLogger("logs/telemetry.log", "telemetry", slog.LevelInfo)
	if err != nil {
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo})
		telemetryLogger = slog.New(fbHandler).With("service", "telemetry")
	}
}

// Endpoint serves the Prometheus-compatible telemetry endpoint.
type Endpoint struct {
	server        *http.Server
	listenAddress string
	metrics       *Metrics
}

// NewEndpoint creates a new telemetry Endpoint from the application settings
// and an initialized Metrics instance. It returns an error if telemetry is
// not enabled in the settings.
func NewEndpoint(settings *conf.Settings, metrics *Metrics) (*Endpoint, error) {
	if !settings.Realtime.Telemetry.Enabled {
		return nil, fmt.Errorf("telemetry not enabled in settings")
	}

	return &Endpoint{
		listenAddress: settings.Realtime.Telemetry.Listen,
		metrics:       metrics,
	}, nil
}

// Start runs the HTTP server for the telemetry endpoint in a separate
// goroutine and listens for the quit signal to shut down gracefully.
func (e *Endpoint) Start(wg *sync.WaitGroup, quitChan <-chan struct{}) {
	mux := http.NewServeMux()
	e.metrics.RegisterHandlers(mux)

	e.server = &http.Server{
		Addr:    e.listenAddress,
		Handler: mux,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		telemetryLogger.Info("Telemetry endpoint starting", "address", e.listenAddress)
		if err := e.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			telemetryLogger.Error("Telemetry HTTP server error", "error", err)
		}
	}()

	go e.gracefulShutdown(quitChan)
}

// gracefulShutdown waits for the quit signal and shuts down the server.
func (e *Endpoint) gracefulShutdown(quitChan <-chan struct{}) {
	<-quitChan
	telemetryLogger.Info("Stopping telemetry server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.server.Shutdown(ctx); err != nil {
		telemetryLogger.Error("Telemetry server shutdown error", "error", err)
	}
}

// GetMetrics returns the Metrics instance associated with this Endpoint.
func (e *Endpoint) GetMetrics() *Metrics {
	return e.metrics
}
