// Package vector defines the vector store boundary for deletion mirroring.
//
// Keep does not write embeddings; an upstream ingestion pipeline owns that.
// What keep must do is mirror its purges so embeddings never outlive their
// memory records, which is why the driver surface is deletion-only.
package vector

import "context"

// Driver mirrors memory deletions into a vector store.
type Driver interface {
	// Delete removes points by their memory IDs. Unknown IDs are skipped.
	Delete(ctx context.Context, ids []string) error

	// Close releases any resources held by the driver.
	Close() error
}
