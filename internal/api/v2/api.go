// Package api provides the JSON API for the CrowdWatch-Go dashboard and
// the video analysis pipeline.
package api

import (
	"crypto/rand"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/crowdwatch/crowdwatch-go/internal/analysis"
	"github.com/crowdwatch/crowdwatch-go/internal/conf"
	"github.com/crowdwatch/crowdwatch-go/internal/crowd"
	"github.com/crowdwatch/crowdwatch-go/internal/datastore"
	"github.com/crowdwatch/crowdwatch-go/internal/errors"
	"github.com/crowdwatch/crowdwatch-go/internal/logging"
	"github.com/crowdwatch/crowdwatch-go/internal/objectstore"
	"github.com/crowdwatch/crowdwatch-go/internal/observability"
	"github.com/crowdwatch/crowdwatch-go/internal/scheduler"
)

// Upload limit for video clips accepted by the API.
const maxUploadSize = "2G"

// Controller manages the API routes and handlers.
type Controller struct {
	Echo      *echo.Echo
	Group     *echo.Group
	DS        datastore.Interface
	Settings  *conf.Settings
	Store     objectstore.Store
	Processor *analysis.Processor
	Scheduler *scheduler.Scheduler
	Generator *crowd.Generator

	logger         *log.Logger
	apiLogger      *slog.Logger
	apiLoggerClose func() error
	metrics        *observability.Metrics
	startTime      time.Time
}

// New creates a new API controller, initializing middleware and routes.
func New(e *echo.Echo, ds datastore.Interface, settings *conf.Settings,
	store objectstore.Store, processor *analysis.Processor,
	sched *scheduler.Scheduler, generator *crowd.Generator, logger *log.Logger,
	metrics *observability.Metrics) (*Controller, error) {

	if logger == nil {
		logger = log.Default()
	}

	c := &Controller{
		Echo:      e,
		DS:        ds,
		Settings:  settings,
		Store:     store,
		Processor: processor,
		Scheduler: sched,
		Generator: generator,
		logger:    logger,
		metrics:   metrics,
		startTime: time.Now(),
	}

	// Initialize structured logger for API access logs
	apiLogger, closeFunc, err := logging.NewFileLogger("logs/api.log", "api", slog.LevelInfo)
	if err != nil {
		logger.Printf("Failed to initialize API structured logger: %v", err)
	} else {
		c.apiLogger = apiLogger
		c.apiLoggerClose = closeFunc
	}

	c.Group = e.Group("/api/v2")

	c.Group.Use(middleware.Recover())
	c.Group.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"authorization", "x-client-info", "apikey", "content-type"},
	}))
	c.Group.Use(middleware.BodyLimit(maxUploadSize))
	c.Group.Use(c.metricsMiddleware)

	c.initRoutes()

	return c, nil
}

// initRoutes registers all API endpoints
func (c *Controller) initRoutes() {
	c.Group.GET("/health", c.HealthCheck)

	c.initAnalysisRoutes()
	c.initVideoRoutes()
	c.initDashboardRoutes()
}

// metricsMiddleware records request counts and durations.
func (c *Controller) metricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if c.metrics == nil {
			return next(ctx)
		}

		start := time.Now()
		err := next(ctx)

		method := ctx.Request().Method
		path := ctx.Path()
		c.metrics.HTTP.RecordRequest(method, path, fmt.Sprintf("%d", ctx.Response().Status))
		c.metrics.HTTP.RecordRequestDuration(method, path, time.Since(start).Seconds())
		c.metrics.HTTP.RecordResponseSize(method, path, float64(ctx.Response().Size))
		return err
	}
}

// HealthCheck handles the API health check endpoint
func (c *Controller) HealthCheck(ctx echo.Context) error {
	response := map[string]any{
		"status":    "healthy",
		"version":   c.Settings.Version,
		"timestamp": time.Now().Format(time.RFC3339),
	}

	// Simple database operation to check connectivity
	dbStatus := "connected"
	if _, err := c.DS.ListVideos(1, 0); err != nil {
		dbStatus = "disconnected"
		response["database_error"] = err.Error()
	}
	response["database_status"] = dbStatus

	uptime := time.Since(c.startTime)
	response["uptime"] = uptime.String()
	response["uptime_seconds"] = uptime.Seconds()

	return ctx.JSON(http.StatusOK, response)
}

// Shutdown performs cleanup of resources used by the API controller.
func (c *Controller) Shutdown() {
	if c.apiLoggerClose != nil {
		if err := c.apiLoggerClose(); err != nil {
			c.logger.Printf("Error closing API log file: %v", err)
		}
	}
	c.Debug("API Controller shutting down")
}

// ErrorResponse is the error body returned by all API endpoints.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"` // Unique identifier for tracking this error
}

// NewErrorResponse creates a new API error response
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	var errorStr string
	if err != nil {
		errorStr = err.Error()
	} else {
		errorStr = message
	}

	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: generateCorrelationID(),
	}
}

// generateCorrelationID creates a unique identifier for error tracking using
// cryptographic randomness.
func generateCorrelationID() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 8

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "ERR-RAND"
	}
	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	return string(b)
}

// HandleError constructs and returns an appropriate error response. The
// status code is derived from the error's category unless code overrides it.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	if code == 0 {
		code = errors.HTTPStatus(err)
	}
	errorResp := NewErrorResponse(err, message, code)

	ip := ctx.RealIP()
	c.logger.Printf("API Error [%s] from %s: %s: %v", errorResp.CorrelationID, ip, message, err)

	if c.apiLogger != nil {
		var errorStr string
		if err != nil {
			errorStr = err.Error()
		} else {
			errorStr = message
		}
		c.apiLogger.Error("API Error",
			"correlation_id", errorResp.CorrelationID,
			"message", message,
			"error", errorStr,
			"code", code,
			"path", ctx.Request().URL.Path,
			"method", ctx.Request().Method,
			"ip", ip,
		)
	}

	return ctx.JSON(code, errorResp)
}

// Debug logs debug messages when debug mode is enabled
func (c *Controller) Debug(format string, v ...any) {
	if c.Settings.WebServer.Debug {
		msg := fmt.Sprintf(format, v...)
		c.logger.Printf("[DEBUG] %s", msg)
		if c.apiLogger != nil {
			c.apiLogger.Debug(msg)
		}
	}
}

// logAPIRequest logs API requests with common context fields.
func (c *Controller) logAPIRequest(ctx echo.Context, level slog.Level, msg string, args ...any) {
	if c.apiLogger == nil {
		return
	}

	baseAttrs := []any{
		"path", ctx.Request().URL.Path,
		"ip", ctx.RealIP(),
	}
	baseAttrs = append(baseAttrs, args...)

	switch level {
	case slog.LevelDebug:
		c.apiLogger.Debug(msg, baseAttrs...)
	case slog.LevelInfo:
		c.apiLogger.Info(msg, baseAttrs...)
	case slog.LevelWarn:
		c.apiLogger.Warn(msg, baseAttrs...)
	case slog.LevelError:
		c.apiLogger.Error(msg, baseAttrs...)
	default:
		c.apiLogger.Info(msg, baseAttrs...)
	}
}
