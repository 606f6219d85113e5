package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/mnemosyneco/keep/pkg/optimizer"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeOptimizationCompleted is emitted after an optimization run has
	// been applied to the store.
	EventTypeOptimizationCompleted = "keep.optimization.completed"
)

// OptimizationEvent is a transport-neutral event payload for a completed
// optimization run. Downstream consumers use it to invalidate caches or audit
// what the engine purged.
type OptimizationEvent struct {
	SchemaVersion   int       `json:"schema_version"`
	EventType       string    `json:"event_type"`
	EventID         string    `json:"event_id"`
	EmittedAt       time.Time `json:"emitted_at"`
	TriggerReason   string    `json:"trigger_reason"`
	Status          string    `json:"status"`
	MemoriesRemoved int       `json:"memories_removed"`
	SizeSavedMB     float64   `json:"size_saved_mb"`
	PurgedIDs       []string  `json:"purged_ids,omitempty"`
}

// NewOptimizationEvent builds an event from an optimizer result with a fresh
// event ID.
func NewOptimizationEvent(trigger string, result optimizer.Result, emittedAt time.Time) *OptimizationEvent {
	return &OptimizationEvent{
		SchemaVersion:   SchemaVersionV1,
		EventType:       EventTypeOptimizationCompleted,
		EventID:         uuid.NewString(),
		EmittedAt:       emittedAt.UTC(),
		TriggerReason:   trigger,
		Status:          string(result.Status),
		MemoriesRemoved: result.MemoriesRemoved,
		SizeSavedMB:     result.SizeSavedMB,
		PurgedIDs:       result.PurgedIDs,
	}
}
