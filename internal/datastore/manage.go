package datastore

import (
	"io"
	"log"
	"log/slog"
	"time"

	"github.com/crowdwatch/crowdwatch-go/internal/errors"
	"github.com/crowdwatch/crowdwatch-go/internal/logging"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowQueryThreshold defines the duration after which a query is
// considered slow and logged at warn level.
const DefaultSlowQueryThreshold = 1 * time.Second

// Package-level logger for datastore operations
var (
	datastoreLogger   *slog.Logger
	datastoreLevelVar = new(slog.LevelVar)
)

func init() {
	var err error
	datastoreLevelVar.Set(slog.LevelInfo)

	datastoreLogger, _, err = logging.NewFileLogger("logs/datastore.log", "datastore", datastoreLevelVar)
	if err != nil {
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: datastoreLevelVar})
		datastoreLogger = slog.New(fbHandler).With("service", "datastore")
	}
}

// createGormLogger configures and returns a new GORM logger instance.
func createGormLogger() gormlogger.Interface {
	return gormlogger.New(
		log.New(log.Writer(), "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             DefaultSlowQueryThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// performAutoMigration automates database migrations with error handling.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	migrationStart := time.Now()

	tableMappings := []struct {
		model any
		name  string
	}{
		{&Video{}, "videos"},
		{&Analysis{}, "analyses"},
	}

	for _, table := range tableMappings {
		if err := db.AutoMigrate(table.model); err != nil {
			return errors.New(err).
				Component("datastore").
				Category(errors.CategoryDatabase).
				Context("operation", "auto_migrate_table").
				Context("db_type", dbType).
				Context("table", table.name).
				Build()
		}
	}

	if debug {
		datastoreLogger.Debug("Database migration completed",
			"db_type", dbType,
			"connection", connectionInfo,
			"tables_migrated", len(tableMappings),
			"duration_ms", time.Since(migrationStart).Milliseconds(),
		)
	}
	return nil
}
