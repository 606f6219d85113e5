package optimizer

// Status is the outcome classification of one optimization pass.
type Status string

const (
	// StatusNoActionNeeded means no limit was exceeded and nothing was
	// requested, so no purge decision was produced.
	StatusNoActionNeeded Status = "no_action_needed"

	// StatusCompleted means the requested reduction was fully met.
	StatusCompleted Status = "optimization_completed"

	// StatusCapacityStillExceeded means the guard-constrained purge could
	// not meet the requested reduction or a hard limit remains violated;
	// the caller may escalate with the critical override.
	StatusCapacityStillExceeded Status = "capacity_still_exceeded"
)

// Result is the purge decision produced by one optimization pass. The
// optimizer never deletes anything; applying PurgedIDs against the metadata
// store and vector index is the caller's job.
type Result struct {
	// Status classifies the outcome.
	Status Status `json:"status"`

	// MemoriesRemoved is the number of records recommended for removal.
	MemoriesRemoved int `json:"memories_removed"`

	// SizeSavedMB is the total size of the recommended removals.
	SizeSavedMB float64 `json:"size_saved_mb"`

	// PurgedIDs lists the recommended removals in purge order.
	PurgedIDs []string `json:"purged_memory_ids"`

	// Stats describes the snapshot the decision was computed over.
	Stats Stats `json:"stats"`
}

// Purged reports whether the decision recommends removing the given ID.
func (r Result) Purged(id string) bool {
	for _, p := range r.PurgedIDs {
		if p == id {
			return true
		}
	}
	return false
}
