// Package inmemory provides a map-backed memory store driver. It is the
// default store for embedded use and the workhorse for tests.
package inmemory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/mnemosyneco/keep/pkg/memory"
)

// Driver implements memory.Driver using an in-memory map.
type Driver struct {
	// mu is a read write sync mutex for locking the record map
	mu sync.RWMutex

	// records is the in memory map of records keyed by ID
	records map[string]memory.Record
}

// NewDriver creates a new in-memory store.
func NewDriver() *Driver {
	return &Driver{
		records: make(map[string]memory.Record),
	}
}

// Put inserts or replaces a record by ID.
func (s *Driver) Put(_ context.Context, rec memory.Record) error {
	if rec.ID == "" {
		return errors.New("cannot store record with empty ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rec.ID] = rec
	return nil
}

// Get retrieves a record by its ID.
func (s *Driver) Get(_ context.Context, id string) (memory.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return memory.Record{}, memory.ErrNotFound
	}

	return rec, nil
}

// List returns all records sorted by ID.
func (s *Driver) List(_ context.Context) ([]memory.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]memory.Record, 0, len(s.records))
	for _, rec := range s.records {
		recs = append(recs, rec)
	}

	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
	return recs, nil
}

// Touch increments the record's access count and stamps the last-accessed
// instant.
func (s *Driver) Touch(_ context.Context, id string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return memory.ErrNotFound
	}

	rec.AccessCount++
	rec.LastAccessed = now.UTC().Format(time.RFC3339)
	s.records[id] = rec
	return nil
}

// UpdateOutcome folds a usage outcome into the record's success rate.
func (s *Driver) UpdateOutcome(_ context.Context, id string, success bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return memory.ErrNotFound
	}

	rec.SuccessRate = memory.FoldOutcome(rec.SuccessRate, success)
	s.records[id] = rec
	return nil
}

// Delete removes records by ID, returning how many were deleted. Unknown IDs
// are skipped.
func (s *Driver) Delete(_ context.Context, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for _, id := range ids {
		if _, ok := s.records[id]; ok {
			delete(s.records, id)
			deleted++
		}
	}

	return deleted, nil
}

// Count returns the number of records in the store.
func (s *Driver) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close is a no-op for the in-memory store.
func (s *Driver) Close() error {
	return nil
}
