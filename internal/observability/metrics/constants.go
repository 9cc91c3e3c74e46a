// Package metrics provides Prometheus metric collectors for the application.
package metrics

// Histogram bucket parameters shared across metric definitions.
const (
	// BucketStart1ms is the smallest bucket for fast in-process operations.
	BucketStart1ms = 0.001
	// BucketStart10ms is the smallest bucket for database operations.
	BucketStart10ms = 0.01
	// BucketFactor2 doubles each successive bucket.
	BucketFactor2 = 2.0
	// BucketCount10 yields ten exponential buckets.
	BucketCount10 = 10
)
