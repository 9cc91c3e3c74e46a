// Package crowd defines the crowd monitoring domain model and the synthetic
// data generator backing the dashboard feeds.
package crowd

import "time"

// Severity is the incident severity level.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Status is the incident lifecycle status. Incidents are immutable once
// created; a resolved incident is generated as already resolved.
type Status string

const (
	StatusActive   Status = "active"
	StatusResolved Status = "resolved"
)

// AreaStatistic represents the occupancy of a single monitored area.
// Density is always derived from CurrentCount and Capacity, never set
// independently.
type AreaStatistic struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CurrentCount int    `json:"currentCount"`
	Capacity     int    `json:"capacity"`
	Density      int    `json:"density"`
	Incidents    int    `json:"incidents"`
}

// DensitySample is one point of the hourly crowd density time series.
type DensitySample struct {
	Timestamp time.Time `json:"timestamp"`
	Density   int       `json:"density"`
	Total     int       `json:"total"`
}

// Incident is a discrete flagged event with severity and lifecycle status.
type Incident struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Severity    Severity  `json:"severity"`
	Status      Status    `json:"status"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// Region is a rectangular image region in normalized [0,1] coordinates with
// its estimated density.
type Region struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Density float64 `json:"density"`
}

// Density is the crowd density summary produced for an analyzed video.
// Regions are generated independently of TotalPeopleCount.
type Density struct {
	Overall          float64  `json:"overall"`
	TotalPeopleCount int      `json:"totalPeopleCount"`
	Confidence       float64  `json:"confidence"`
	Regions          []Region `json:"regions"`
}
