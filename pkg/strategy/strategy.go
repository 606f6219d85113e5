// Package strategy turns retention scores into eviction-candidate orderings.
//
// Four interchangeable strategies are provided. All of them return candidates
// most-purgeable first with fully deterministic tie-breaking (last-accessed
// ascending, then created-at ascending, then ID), and all of them respect the
// per-category grace period unless the caller bypasses it under critical
// capacity. The selector holds the policy table behind an atomic pointer so
// configuration hot-reloads never race in-flight orderings.
package strategy

import (
	"errors"
	"fmt"
)

// Strategy names an eviction-candidate ordering.
type Strategy string

const (
	// LRU orders by last-accessed ascending only.
	LRU Strategy = "lru"

	// Priority orders by retention score ascending.
	Priority Strategy = "priority"

	// ContextAware purges per-category policy violators first, then fills
	// remaining capacity per category in priority order.
	ContextAware Strategy = "context_aware"

	// Hybrid purges policy violators first, then falls back to priority
	// ordering over the whole remaining pool.
	Hybrid Strategy = "hybrid"
)

// ErrUnknownStrategy is returned by Parse for unrecognized names.
var ErrUnknownStrategy = errors.New("unknown purge strategy")

// Parse converts a strategy name from configuration into a Strategy.
func Parse(name string) (Strategy, error) {
	switch Strategy(name) {
	case LRU, Priority, ContextAware, Hybrid:
		return Strategy(name), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}
