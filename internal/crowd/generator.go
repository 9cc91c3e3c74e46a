// generator.go: synthetic area, density and incident generation
package crowd

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// areaProfile describes the occupancy model of one monitored area.
// CurrentCount is drawn as floor(uniform(0, countRange)) + countBase, and an
// incident is flagged when a uniform draw exceeds incidentBar (a bar of 1
// means the area never flags incidents).
type areaProfile struct {
	id          string
	name        string
	countBase   int
	countRange  int
	capacity    int
	incidentBar float64
}

var areaProfiles = []areaProfile{
	{id: "1", name: "Main Entrance", countBase: 100, countRange: 50, capacity: 200, incidentBar: 0.7},
	{id: "2", name: "West Wing", countBase: 60, countRange: 40, capacity: 150, incidentBar: 0.8},
	{id: "3", name: "East Wing", countBase: 40, countRange: 30, capacity: 100, incidentBar: 1},
	{id: "4", name: "North Plaza", countBase: 120, countRange: 60, capacity: 250, incidentBar: 0.75},
	{id: "5", name: "Food Court", countBase: 150, countRange: 80, capacity: 300, incidentBar: 0.85},
}

// Enumerations for recent incident generation.
var (
	incidentTypes     = []string{"overcrowding", "suspicious activity", "unusual behavior", "restricted area"}
	incidentLocations = []string{"north entrance", "main hall", "west corridor", "parking area", "south exit"}
	severityLevels    = []Severity{SeverityLow, SeverityMedium, SeverityHigh}
)

// Hourly density model constants. The day cycle multiplier models higher
// density during mid-day, moderate in the evening and low otherwise; a
// uniform jitter in [0.8,1.2) is applied to both total and density.
const (
	baseCrowdTotal   = 400
	baseCrowdDensity = 40

	dayMultiplier     = 1.5
	eveningMultiplier = 1.2
	nightMultiplier   = 0.7
)

// Generator produces synthetic crowd monitoring data. All outputs are fresh
// value objects per call; the generator itself only owns its random source
// and clock, which are injectable for tests.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// New creates a Generator with a time-seeded random source.
func New() *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // synthetic data, not security sensitive
		now: time.Now,
	}
}

// NewWithSource creates a Generator with the given random source and clock.
// Used by tests to pin behavior.
func NewWithSource(rng *rand.Rand, now func() time.Time) *Generator {
	return &Generator{rng: rng, now: now}
}

func (g *Generator) random() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64()
}

// AreaStats returns occupancy statistics for the five monitored areas.
// Density is derived from count and capacity after generation.
func (g *Generator) AreaStats() []AreaStatistic {
	areas := make([]AreaStatistic, 0, len(areaProfiles))
	for _, p := range areaProfiles {
		incidents := 0
		if p.incidentBar < 1 && g.random() > p.incidentBar {
			incidents = 1
		}
		areas = append(areas, AreaStatistic{
			ID:           p.id,
			Name:         p.name,
			CurrentCount: int(g.random()*float64(p.countRange)) + p.countBase,
			Capacity:     p.capacity,
			Incidents:    incidents,
		})
	}

	// Calculate density for each area
	for i := range areas {
		areas[i].Density = int(math.Round(float64(areas[i].CurrentCount) / float64(areas[i].Capacity) * 100))
	}
	return areas
}

// HourlyDensityData returns hours+1 samples oldest first, spaced exactly one
// hour apart and ending at the current time.
func (g *Generator) HourlyDensityData(hours int) []DensitySample {
	if hours < 0 {
		hours = 0
	}
	data := make([]DensitySample, 0, hours+1)
	now := g.now()

	for i := hours; i >= 0; i-- {
		timestamp := now.Add(-time.Duration(i) * time.Hour)
		timeOfDay := (24 - i) % 24

		var multiplier float64
		switch {
		case timeOfDay >= 10 && timeOfDay <= 18:
			multiplier = dayMultiplier
		case timeOfDay >= 19 && timeOfDay <= 22:
			multiplier = eveningMultiplier
		default:
			multiplier = nightMultiplier
		}

		randomFactor := 0.8 + g.random()*0.4

		data = append(data, DensitySample{
			Timestamp: timestamp,
			Total:     int(math.Round(baseCrowdTotal * multiplier * randomFactor)),
			Density:   int(math.Round(baseCrowdDensity * multiplier * randomFactor)),
		})
	}
	return data
}

// RecentIncidents returns count incidents with every field drawn
// independently; timestamps fall uniformly within the last hour.
//
// The description embeds a second, independently drawn location which may
// differ from the incident's own Location field. Consumers display the
// string verbatim, so the two are not reconciled.
func (g *Generator) RecentIncidents(count int) []Incident {
	incidents := make([]Incident, 0, max(count, 0))
	now := g.now()

	for i := 0; i < count; i++ {
		status := StatusResolved
		if g.random() > 0.5 {
			status = StatusActive
		}
		incidents = append(incidents, Incident{
			ID:          uuid.New().String(),
			Type:        incidentTypes[int(g.random()*float64(len(incidentTypes)))],
			Severity:    severityLevels[int(g.random()*float64(len(severityLevels)))],
			Status:      status,
			Location:    incidentLocations[int(g.random()*float64(len(incidentLocations)))],
			Description: fmt.Sprintf("Potential incident detected in the %s", incidentLocations[int(g.random()*float64(len(incidentLocations)))]),
			Timestamp:   now.Add(-time.Duration(g.random()*3600000) * time.Millisecond),
		})
	}
	return incidents
}
