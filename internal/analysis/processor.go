// Package analysis runs the video analysis pipeline: look up the video
// record, run the inference provider against its clip, persist the result
// and mark the video completed.
package analysis

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/crowdwatch/crowdwatch-go/internal/conf"
	"github.com/crowdwatch/crowdwatch-go/internal/crowd"
	"github.com/crowdwatch/crowdwatch-go/internal/datastore"
	"github.com/crowdwatch/crowdwatch-go/internal/errors"
	"github.com/crowdwatch/crowdwatch-go/internal/inference"
	"github.com/crowdwatch/crowdwatch-go/internal/logging"
	"github.com/crowdwatch/crowdwatch-go/internal/mqtt"
	"github.com/crowdwatch/crowdwatch-go/internal/observability"
)

// Package-level logger for the analysis pipeline
var analysisLogger *slog.Logger

func init() {
	var err error
	analysisLogger, _, err = logging.NewFileLogger("logs/analysis.log", "analysis", slog.LevelInfo)
	if err != nil {
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo})
		analysisLogger = slog.New(fbHandler).With("service", "analysis")
	}
}

// Processor coordinates a single video analysis from lookup to persistence.
type Processor struct {
	Settings *conf.Settings
	DS       datastore.Interface
	Provider inference.Provider
	Metrics  *observability.Metrics
	Alerts   mqtt.Client // optional, nil when MQTT is disabled
}

// New creates a Processor. Metrics and alerts may be nil.
func New(settings *conf.Settings, ds datastore.Interface, provider inference.Provider, metrics *observability.Metrics, alerts mqtt.Client) *Processor {
	return &Processor{
		Settings: settings,
		DS:       ds,
		Provider: provider,
		Metrics:  metrics,
		Alerts:   alerts,
	}
}

// ProcessVideo analyzes the video with the given ID and persists the result.
//
// The video record must exist; a missing record fails the request before the
// provider runs and before anything is written. On success exactly one
// analysis row is inserted and the video transitions to completed. If
// persisting the analysis fails the video stays in processing so the request
// can be retried.
func (p *Processor) ProcessVideo(ctx context.Context, videoID string) (*inference.Result, error) {
	if videoID == "" {
		return nil, errors.Newf("videoId is required").
			Component("analysis").
			Category(errors.CategoryValidation).
			Build()
	}

	video, err := p.DS.GetVideo(videoID)
	if err != nil {
		p.recordAnalysis("error")
		return nil, err
	}

	start := time.Now()
	result, err := p.Provider.Analyze(ctx, video.ClipPath)
	if err != nil {
		p.recordAnalysis("error")
		return nil, errors.New(err).
			Component("analysis").
			Category(errors.CategoryInference).
			Context("video_id", videoID).
			Build()
	}
	if p.Metrics != nil {
		p.Metrics.Analysis.RecordAnalysisDuration("random", time.Since(start).Seconds())
	}

	densityJSON, err := json.Marshal(result.CrowdDensity)
	if err != nil {
		p.recordAnalysis("error")
		return nil, errors.New(err).
			Component("analysis").
			Category(errors.CategoryGeneric).
			Context("operation", "marshal_density").
			Build()
	}
	incidentsJSON, err := json.Marshal(result.Incidents)
	if err != nil {
		p.recordAnalysis("error")
		return nil, errors.New(err).
			Component("analysis").
			Category(errors.CategoryGeneric).
			Context("operation", "marshal_incidents").
			Build()
	}

	record := &datastore.Analysis{
		VideoID:      video.ID,
		CrowdDensity: string(densityJSON),
		Incidents:    string(incidentsJSON),
	}
	if err := p.DS.SaveAnalysis(record); err != nil {
		// Video stays in processing so the analysis can be retried.
		p.recordAnalysis("error")
		return nil, err
	}

	if err := p.DS.UpdateVideoStatus(video.ID, datastore.VideoStatusCompleted); err != nil {
		p.recordAnalysis("error")
		return nil, err
	}

	p.recordAnalysis("success")
	if p.Metrics != nil {
		p.Metrics.Analysis.UpdateAnalysisGauges(result.CrowdDensity.TotalPeopleCount, result.CrowdDensity.Overall)
		for i := range result.Incidents {
			p.Metrics.Analysis.RecordIncident(string(result.Incidents[i].Severity))
		}
	}

	analysisLogger.Info("Video analysis complete",
		"video_id", video.ID,
		"people_count", result.CrowdDensity.TotalPeopleCount,
		"incidents", len(result.Incidents),
	)

	p.publishAlerts(ctx, video.ID, result)

	return result, nil
}

// publishAlerts sends active high-severity incidents to the MQTT broker.
// Publishing is best effort and never fails the analysis.
func (p *Processor) publishAlerts(ctx context.Context, videoID string, result *inference.Result) {
	if p.Alerts == nil || !p.Settings.Realtime.MQTT.Enabled {
		return
	}

	for i := range result.Incidents {
		incident := &result.Incidents[i]
		if incident.Severity != crowd.SeverityHigh || incident.Status != crowd.StatusActive {
			continue
		}

		payload, err := json.Marshal(struct {
			VideoID  string          `json:"videoId"`
			Incident *crowd.Incident `json:"incident"`
		}{VideoID: videoID, Incident: incident})
		if err != nil {
			analysisLogger.Error("Failed to marshal incident alert", "video_id", videoID, "error", err)
			continue
		}

		if err := p.Alerts.Publish(ctx, p.Settings.Realtime.MQTT.Topic, string(payload)); err != nil {
			analysisLogger.Warn("Failed to publish incident alert",
				"video_id", videoID,
				"incident_id", incident.ID,
				"error", err,
			)
		}
	}
}

// recordAnalysis records the outcome of an analysis attempt.
func (p *Processor) recordAnalysis(status string) {
	if p.Metrics != nil {
		p.Metrics.Analysis.RecordAnalysis(status)
	}
}
