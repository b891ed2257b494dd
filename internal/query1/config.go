// Package query1 implements the Query-1 ranking operator: per-window
// active-city filtering, incremental cache-based aggregate updates, and
// top-K improvement ranking, wired into a full pull-based pipeline from a
// batch source down to an output sequence of results.
package query1

// Config holds every tunable the core recognizes.
type Config struct {
	WindowCurrentSize      int
	WindowLastYearSize     int
	LastDaySize            int
	BucketSeconds          int64
	TopK                   int
	ActiveWindowBuckets    int
	CacheCapacityPerPolygon int
	CacheBoundaryEpsilon   float64
	LocalizationWorkers    int
	PrefetchDepth          int
}

// DefaultConfig returns the configuration defaults named in the core's
// external interface.
func DefaultConfig() Config {
	return Config{
		WindowCurrentSize:       5 * 24 * 12,
		WindowLastYearSize:      5 * 24 * 12,
		LastDaySize:             288,
		BucketSeconds:           300,
		TopK:                    50,
		ActiveWindowBuckets:     2,
		CacheCapacityPerPolygon: 32,
		CacheBoundaryEpsilon:    1e-5,
		LocalizationWorkers:     8,
		PrefetchDepth:           20,
	}
}
