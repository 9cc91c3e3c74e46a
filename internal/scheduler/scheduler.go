// Package scheduler periodically refreshes the dashboard data snapshots so
// API reads serve a consistent view between refreshes.
package scheduler

import (
	"io"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/crowdwatch/crowdwatch-go/internal/conf"
	"github.com/crowdwatch/crowdwatch-go/internal/crowd"
	"github.com/crowdwatch/crowdwatch-go/internal/logging"
)

// Cache keys for the dashboard snapshots.
const (
	CacheKeyAreas     = "dashboard:areas"
	CacheKeyDensity   = "dashboard:density"
	CacheKeyIncidents = "dashboard:incidents"
)

// Package-level logger for the dashboard scheduler
var schedulerLogger *slog.Logger

func init() {
	var err error
	schedulerLogger, _, err = logging.NewFileLogger("logs/scheduler.log", "scheduler", slog.LevelInfo)
	if err != nil {
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo})
		schedulerLogger = slog.New(fbHandler).With("service", "scheduler")
	}
}

// Scheduler refreshes dashboard snapshots on a fixed interval and caches
// them for the API layer.
type Scheduler struct {
	settings  *conf.Settings
	generator *crowd.Generator
	cache     *gocache.Cache
}

// New creates a Scheduler backed by the given generator. Snapshots expire at
// twice the refresh interval so a stalled refresh loop surfaces as a cache
// miss instead of stale data.
func New(settings *conf.Settings, generator *crowd.Generator) *Scheduler {
	interval := refreshInterval(settings)
	return &Scheduler{
		settings:  settings,
		generator: generator,
		cache:     gocache.New(2*interval, 10*time.Minute),
	}
}

func refreshInterval(settings *conf.Settings) time.Duration {
	seconds := settings.Realtime.Dashboard.RefreshInterval
	if seconds <= 0 {
		seconds = 15
	}
	return time.Duration(seconds) * time.Second
}

// StartPolling runs the refresh loop until stopChan is closed. The first
// refresh happens immediately so the cache is warm before the API serves
// requests.
func (s *Scheduler) StartPolling(stopChan <-chan struct{}) {
	interval := refreshInterval(s.settings)

	schedulerLogger.Info("Starting dashboard refresh loop",
		"interval", interval,
		"density_hours", s.settings.Realtime.Dashboard.DensityHours,
		"incident_count", s.settings.Realtime.Dashboard.IncidentCount,
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.Refresh()

	for {
		select {
		case <-ticker.C:
			s.Refresh()
		case <-stopChan:
			schedulerLogger.Info("Stopping dashboard refresh loop")
			return
		}
	}
}

// Refresh regenerates all dashboard snapshots and stores them in the cache.
func (s *Scheduler) Refresh() {
	hours := s.settings.Realtime.Dashboard.DensityHours
	if hours <= 0 {
		hours = 24
	}
	count := s.settings.Realtime.Dashboard.IncidentCount
	if count <= 0 {
		count = 5
	}

	s.cache.Set(CacheKeyAreas, s.generator.AreaStats(), gocache.DefaultExpiration)
	s.cache.Set(CacheKeyDensity, s.generator.HourlyDensityData(hours), gocache.DefaultExpiration)
	s.cache.Set(CacheKeyIncidents, s.generator.RecentIncidents(count), gocache.DefaultExpiration)
}

// Areas returns the cached area snapshot.
func (s *Scheduler) Areas() ([]crowd.AreaStatistic, bool) {
	v, found := s.cache.Get(CacheKeyAreas)
	if !found {
		return nil, false
	}
	stats, ok := v.([]crowd.AreaStatistic)
	return stats, ok
}

// Density returns the cached hourly density snapshot.
func (s *Scheduler) Density() ([]crowd.DensitySample, bool) {
	v, found := s.cache.Get(CacheKeyDensity)
	if !found {
		return nil, false
	}
	samples, ok := v.([]crowd.DensitySample)
	return samples, ok
}

// Incidents returns the cached recent incident snapshot.
func (s *Scheduler) Incidents() ([]crowd.Incident, bool) {
	v, found := s.cache.Get(CacheKeyIncidents)
	if !found {
		return nil, false
	}
	incidents, ok := v.([]crowd.Incident)
	return incidents, ok
}
