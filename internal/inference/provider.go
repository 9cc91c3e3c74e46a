// Package inference defines the crowd analysis provider contract.
//
// The provider abstracts the model producing crowd density summaries and
// incidents for a stored clip, so a real inference backend can replace the
// synthetic one without touching callers.
package inference

import (
	"context"

	"github.com/crowdwatch/crowdwatch-go/internal/crowd"
)

// Result is the outcome of analyzing a single clip.
type Result struct {
	CrowdDensity crowd.Density    `json:"crowdDensity"`
	Incidents    []crowd.Incident `json:"incidents"`
}

// Provider produces a crowd analysis for a stored clip.
type Provider interface {
	Analyze(ctx context.Context, clipPath string) (*Result, error)
}
