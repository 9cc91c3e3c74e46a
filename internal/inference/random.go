// random.go: synthetic inference provider
package inference

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/crowdwatch/crowdwatch-go/internal/crowd"
	"github.com/crowdwatch/crowdwatch-go/internal/logging"
)

// Package-level logger for the inference service
var (
	inferenceLogger   *slog.Logger
	inferenceLevelVar = new(slog.LevelVar)
)

func init() {
	var err error
	inferenceLevelVar.Set(slog.LevelInfo)

	inferenceLogger, _, err = logging.NewFileLogger("logs/inference.log", "inference", inferenceLevelVar)
	if err != nil {
		// Fallback to a disabled logger that still respects the level var
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: inferenceLevelVar})
		inferenceLogger = slog.New(fbHandler).With("service", "inference")
	}
}

// Model confidence is fixed: the synthetic provider is always equally sure.
const modelConfidence = 0.92

// Density tier thresholds driving incident generation.
const (
	highDensityThreshold   = 0.7
	mediumDensityThreshold = 0.4
)

// Per-tier incident type and location pools.
var (
	highDensityTypes     = []string{"overcrowding", "suspicious activity", "restricted area violation", "abnormal movement"}
	highDensityLocations = []string{"northeast corner", "main entrance", "center area", "west section", "south exit"}

	mediumDensityTypes     = []string{"suspicious activity", "unusual gathering", "potential security concern"}
	mediumDensityLocations = []string{"north section", "east entrance", "perimeter area", "central plaza"}
)

// RandomProvider is the synthetic Provider implementation. It stands in for
// a real crowd detection model: the overall density is drawn uniformly from
// [0.1,0.9) and the incident list is tiered by that value.
type RandomProvider struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewRandomProvider creates a RandomProvider with a time-seeded source.
func NewRandomProvider() *RandomProvider {
	return &RandomProvider{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // synthetic data, not security sensitive
		now: time.Now,
	}
}

// NewRandomProviderWithSource creates a RandomProvider with the given random
// source and clock. Used by tests to pin behavior.
func NewRandomProviderWithSource(rng *rand.Rand, now func() time.Time) *RandomProvider {
	return &RandomProvider{rng: rng, now: now}
}

func (p *RandomProvider) random() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Float64()
}

// Analyze produces one crowd density summary and a density-tiered incident
// list for the clip. The clip content itself is never inspected.
func (p *RandomProvider) Analyze(ctx context.Context, clipPath string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	peopleCount := int(p.random()*150) + 50
	overall := p.random()*0.8 + 0.1

	result := &Result{
		CrowdDensity: p.densitySummary(overall, peopleCount),
		Incidents:    p.incidentsFor(overall, peopleCount),
	}

	inferenceLogger.Info("Analysis generated",
		"clip", clipPath,
		"people_count", peopleCount,
		"overall_density", overall,
		"incidents", len(result.Incidents),
	)

	return result, nil
}

// densitySummary builds the summary with three fixed-position regions whose
// densities are re-randomized on every call.
func (p *RandomProvider) densitySummary(overall float64, peopleCount int) crowd.Density {
	return crowd.Density{
		Overall:          overall,
		TotalPeopleCount: peopleCount,
		Confidence:       modelConfidence,
		Regions: []crowd.Region{
			{X: 0.1, Y: 0.2, Width: 0.3, Height: 0.4, Density: p.random()*0.7 + 0.2},
			{X: 0.5, Y: 0.6, Width: 0.2, Height: 0.3, Density: p.random()*0.8 + 0.1},
			{X: 0.7, Y: 0.1, Width: 0.25, Height: 0.25, Density: p.random() * 0.9},
		},
	}
}

// incidentsFor generates the incident list for a given overall density.
// High density yields 2-4 incidents with severity skewed high, medium
// density 1-2 mostly low severity, and low density at most one minor one.
func (p *RandomProvider) incidentsFor(overall float64, peopleCount int) []crowd.Incident {
	now := p.now()

	switch {
	case overall > highDensityThreshold:
		count := int(p.random()*3) + 2
		incidents := make([]crowd.Incident, 0, count)
		for i := 0; i < count; i++ {
			var severity crowd.Severity
			switch {
			case p.random() > 0.6:
				severity = crowd.SeverityHigh
			case p.random() > 0.4:
				severity = crowd.SeverityMedium
			default:
				severity = crowd.SeverityLow
			}
			status := crowd.StatusResolved
			if p.random() > 0.3 {
				status = crowd.StatusActive
			}
			incidents = append(incidents, crowd.Incident{
				ID:          uuid.New().String(),
				Type:        highDensityTypes[int(p.random()*float64(len(highDensityTypes)))],
				Severity:    severity,
				Status:      status,
				Location:    highDensityLocations[int(p.random()*float64(len(highDensityLocations)))],
				Description: fmt.Sprintf("Potential %s detected with %d people in view", highDensityTypes[int(p.random()*float64(len(highDensityTypes)))], peopleCount),
				Timestamp:   now,
			})
		}
		return incidents

	case overall > mediumDensityThreshold:
		count := int(p.random()*2) + 1
		incidents := make([]crowd.Incident, 0, count)
		for i := 0; i < count; i++ {
			severity := crowd.SeverityLow
			if p.random() > 0.7 {
				severity = crowd.SeverityMedium
			}
			status := crowd.StatusResolved
			if p.random() > 0.5 {
				status = crowd.StatusActive
			}
			incidents = append(incidents, crowd.Incident{
				ID:          uuid.New().String(),
				Type:        mediumDensityTypes[int(p.random()*float64(len(mediumDensityTypes)))],
				Severity:    severity,
				Status:      status,
				Location:    mediumDensityLocations[int(p.random()*float64(len(mediumDensityLocations)))],
				Description: fmt.Sprintf("Moderate concern with %d people detected in the area", peopleCount),
				Timestamp:   now,
			})
		}
		return incidents

	default:
		if p.random() > 0.7 {
			status := crowd.StatusResolved
			if p.random() > 0.5 {
				status = crowd.StatusActive
			}
			return []crowd.Incident{{
				ID:          uuid.New().String(),
				Type:        "unusual activity",
				Severity:    crowd.SeverityLow,
				Status:      status,
				Location:    "south perimeter",
				Description: fmt.Sprintf("Minor concern detected with %d people in low-density area", peopleCount),
				Timestamp:   now,
			}}
		}
		return []crowd.Incident{}
	}
}
