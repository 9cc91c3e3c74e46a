package crowd

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(seed int64) *Generator {
	fixed := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	return NewWithSource(rand.New(rand.NewSource(seed)), func() time.Time { return fixed })
}

func TestAreaStats(t *testing.T) {
	t.Parallel()

	g := newTestGenerator(1)
	stats := g.AreaStats()

	require.Len(t, stats, 5)

	wantNames := []string{"Main Entrance", "West Wing", "East Wing", "North Plaza", "Food Court"}
	wantCapacities := []int{200, 150, 100, 250, 300}
	for i, s := range stats {
		assert.Equal(t, wantNames[i], s.Name)
		assert.Equal(t, wantCapacities[i], s.Capacity)
	}
}

func TestAreaStatsDensityDerived(t *testing.T) {
	t.Parallel()

	// Density must always equal round(count/capacity*100), whatever the draw.
	for seed := int64(0); seed < 100; seed++ {
		g := newTestGenerator(seed)
		for _, s := range g.AreaStats() {
			want := int(math.Round(float64(s.CurrentCount) / float64(s.Capacity) * 100))
			assert.Equal(t, want, s.Density, "area %s seed %d", s.Name, seed)
		}
	}
}

func TestAreaStatsCountRanges(t *testing.T) {
	t.Parallel()

	g := newTestGenerator(42)
	for range 1000 {
		stats := g.AreaStats()
		main := stats[0]
		require.Equal(t, "Main Entrance", main.Name)
		assert.GreaterOrEqual(t, main.CurrentCount, 100)
		assert.LessOrEqual(t, main.CurrentCount, 149)
	}
}

func TestAreaStatsEastWingNeverFlagsIncidents(t *testing.T) {
	t.Parallel()

	g := newTestGenerator(7)
	for range 1000 {
		stats := g.AreaStats()
		assert.Equal(t, 0, stats[2].Incidents, "East Wing must never flag incidents")
		for _, s := range stats {
			assert.Contains(t, []int{0, 1}, s.Incidents)
		}
	}
}

func TestHourlyDensityData(t *testing.T) {
	t.Parallel()

	g := newTestGenerator(3)
	samples := g.HourlyDensityData(24)

	// hours+1 samples, oldest first, spaced exactly one hour apart
	require.Len(t, samples, 25)
	for i := 1; i < len(samples); i++ {
		assert.Equal(t, time.Hour, samples[i].Timestamp.Sub(samples[i-1].Timestamp))
	}

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, now, samples[len(samples)-1].Timestamp)
	assert.Equal(t, now.Add(-24*time.Hour), samples[0].Timestamp)
}

func TestHourlyDensityDataValueBounds(t *testing.T) {
	t.Parallel()

	g := newTestGenerator(5)
	for _, s := range g.HourlyDensityData(48) {
		// Lowest possible: 400*0.7*0.8, highest: 400*1.5*1.2
		assert.GreaterOrEqual(t, s.Total, 224)
		assert.LessOrEqual(t, s.Total, 720)
		assert.GreaterOrEqual(t, s.Density, 22)
		assert.LessOrEqual(t, s.Density, 72)
	}
}

func TestHourlyDensityDataZeroAndNegativeHours(t *testing.T) {
	t.Parallel()

	g := newTestGenerator(9)
	assert.Len(t, g.HourlyDensityData(0), 1)
	assert.Len(t, g.HourlyDensityData(-3), 1)
}

func TestRecentIncidents(t *testing.T) {
	t.Parallel()

	g := newTestGenerator(11)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	incidents := g.RecentIncidents(5)
	require.Len(t, incidents, 5)

	seen := make(map[string]bool)
	for _, inc := range incidents {
		_, err := uuid.Parse(inc.ID)
		require.NoError(t, err)
		assert.False(t, seen[inc.ID], "incident IDs must be unique")
		seen[inc.ID] = true

		assert.Contains(t, incidentTypes, inc.Type)
		assert.Contains(t, incidentLocations, inc.Location)
		assert.Contains(t, severityLevels, inc.Severity)
		assert.Contains(t, []Status{StatusActive, StatusResolved}, inc.Status)
		assert.NotEmpty(t, inc.Description)

		// Timestamps fall within the last hour
		assert.False(t, inc.Timestamp.After(now))
		assert.False(t, inc.Timestamp.Before(now.Add(-time.Hour)))
	}
}

func TestRecentIncidentsZeroCount(t *testing.T) {
	t.Parallel()

	g := newTestGenerator(13)
	assert.Empty(t, g.RecentIncidents(0))
	assert.Empty(t, g.RecentIncidents(-1))
}
