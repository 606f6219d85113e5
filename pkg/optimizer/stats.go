package optimizer

import "github.com/mnemosyneco/keep/pkg/memory"

const bytesPerMB = 1024 * 1024

// Stats aggregates capacity-relevant facts about a memory snapshot.
type Stats struct {
	// TotalCount is the number of records in the snapshot.
	TotalCount int `json:"total_count"`

	// PerCategory counts records per category.
	PerCategory map[string]int `json:"per_category"`

	// TotalSizeMB is the estimated total content size.
	TotalSizeMB float64 `json:"total_size_mb"`
}

// Collect computes Stats over a snapshot.
func Collect(recs []memory.Record) Stats {
	stats := Stats{PerCategory: map[string]int{}}

	var bytes int64
	for _, rec := range recs {
		stats.TotalCount++
		stats.PerCategory[rec.Category]++
		bytes += rec.Size()
	}
	stats.TotalSizeMB = float64(bytes) / bytesPerMB

	return stats
}

// CapacityLevel classifies a usage ratio against the configured thresholds.
type CapacityLevel int

const (
	// CapacityOK means usage is below the warning threshold.
	CapacityOK CapacityLevel = iota

	// CapacityWarning means usage is at or above the warning threshold.
	CapacityWarning

	// CapacityCritical means usage is at or above the critical threshold.
	CapacityCritical
)

// String returns the level's wire name.
func (l CapacityLevel) String() string {
	switch l {
	case CapacityWarning:
		return "warning"
	case CapacityCritical:
		return "critical"
	default:
		return "ok"
	}
}
