// Package memory defines the memory record snapshot type and the metadata
// store boundary for the keep retention engine.
//
// Records are owned by the external store; the engine only ever holds a
// borrowed snapshot. Timestamps travel as ISO-8601 strings exactly as the
// store produced them — normalization happens inside the engine's clock
// package so that malformed values degrade at scoring time instead of
// breaking the snapshot fetch.
package memory

// Record is a point-in-time snapshot of a stored memory and its usage
// metadata. The engine never mutates a Record; it only scores it and may
// recommend its removal.
type Record struct {
	// ID is the opaque unique identifier of the memory.
	ID string `json:"id"`

	// Content is the stored memory text. Optional on snapshots fetched for
	// optimization; SizeBytes carries the capacity-accounting size.
	Content string `json:"content,omitempty"`

	// SizeBytes is the stored content size used for capacity accounting.
	// When zero, Size falls back to len(Content).
	SizeBytes int64 `json:"size_bytes,omitempty"`

	// Category keys into the retention policy table. Unknown categories
	// resolve to the general policy.
	Category string `json:"category"`

	// CreatedAt is the creation instant as an ISO-8601 string.
	CreatedAt string `json:"created_at"`

	// LastAccessed is the last read instant as an ISO-8601 string.
	// Empty means the memory has never been accessed since creation.
	LastAccessed string `json:"last_accessed,omitempty"`

	// AccessCount is the number of times the memory has been recalled.
	AccessCount int `json:"access_count"`

	// SuccessRate is the usage-feedback quality signal in [0,1].
	SuccessRate float64 `json:"success_rate"`

	// ErrorRelated marks memories describing an error and its context.
	ErrorRelated bool `json:"error_related,omitempty"`

	// SolutionRelated marks memories describing a working solution.
	SolutionRelated bool `json:"solution_related,omitempty"`
}

// Size returns the capacity-accounting size of the record in bytes.
func (r Record) Size() int64 {
	if r.SizeBytes > 0 {
		return r.SizeBytes
	}
	return int64(len(r.Content))
}
