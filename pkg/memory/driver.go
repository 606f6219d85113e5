package memory

import (
	"context"
	"time"
)

// Driver is the metadata store boundary. The retention engine consumes
// snapshots from List and recommends removals; the host applies them through
// Delete. Usage feedback flows back in through Touch and UpdateOutcome, which
// feed the frequency and quality scoring signals.
type Driver interface {
	// Put inserts or replaces a record by ID.
	Put(ctx context.Context, rec Record) error

	// Get retrieves a record by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (Record, error)

	// List returns a snapshot of all records in a deterministic order.
	List(ctx context.Context) ([]Record, error)

	// Touch records a read: increments the access count and stamps the
	// last-accessed instant. Returns ErrNotFound if absent.
	Touch(ctx context.Context, id string, now time.Time) error

	// UpdateOutcome folds a usage outcome into the record's success rate.
	// Returns ErrNotFound if absent.
	UpdateOutcome(ctx context.Context, id string, success bool) error

	// Delete removes records by ID, returning how many were deleted.
	// Unknown IDs are skipped, not errors.
	Delete(ctx context.Context, ids []string) (int, error)

	// Close releases driver resources.
	Close() error
}
