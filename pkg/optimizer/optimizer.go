// Package optimizer produces purge decisions that keep a memory snapshot
// within configured capacity limits.
//
// Optimize is a pure decision function over a borrowed snapshot: it computes
// aggregate stats, asks the strategy selector for an eviction ordering, and
// returns the IDs it recommends removing. It performs no deletion and no I/O,
// which makes it safe to call speculatively as a dry run.
package optimizer

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/mnemosyneco/keep/pkg/clock"
	"github.com/mnemosyneco/keep/pkg/memory"
	"github.com/mnemosyneco/keep/pkg/strategy"
)

// Limits are the hard capacity bounds and alerting thresholds. A zero value
// disables the corresponding bound.
type Limits struct {
	// MaxMemoriesTotal caps the total record count.
	MaxMemoriesTotal int

	// MaxMemoriesPerCategory caps each category's record count. Categories
	// with their own policy max count are additionally bounded there.
	MaxMemoriesPerCategory int

	// MaxTotalSizeMB caps the estimated total content size.
	MaxTotalSizeMB float64

	// WarningThreshold is the usage ratio at which optimization should be
	// triggered proactively.
	WarningThreshold float64

	// CriticalThreshold is the usage ratio at which the grace-period guard
	// is bypassed so hard limits stay honorable.
	CriticalThreshold float64
}

// Validate reports the first constraint the limits break.
func (l Limits) Validate() error {
	if l.MaxMemoriesTotal < 0 || l.MaxMemoriesPerCategory < 0 || l.MaxTotalSizeMB < 0 {
		return fmt.Errorf("%w: capacity bounds must be non-negative", ErrInvalidLimits)
	}

	for _, t := range []float64{l.WarningThreshold, l.CriticalThreshold} {
		if t <= 0 || t > 1 || math.IsNaN(t) {
			return fmt.Errorf("%w: thresholds must be in (0,1], got %v", ErrInvalidLimits, t)
		}
	}

	if l.WarningThreshold > l.CriticalThreshold {
		return fmt.Errorf("%w: warning threshold %v exceeds critical threshold %v",
			ErrInvalidLimits, l.WarningThreshold, l.CriticalThreshold)
	}

	return nil
}

// Optimizer turns capacity pressure into purge decisions.
type Optimizer struct {
	limits   Limits
	selector *strategy.Selector
	clk      clock.Clock
	logger   *slog.Logger
}

// New creates an optimizer. The limits are validated fail-fast.
func New(limits Limits, selector *strategy.Selector, clk clock.Clock, logger *slog.Logger) (*Optimizer, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}

	if selector == nil {
		return nil, strategy.ErrNilTable
	}

	if clk == nil {
		clk = clock.System{}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Optimizer{limits: limits, selector: selector, clk: clk, logger: logger}, nil
}

// Limits returns the configured capacity bounds.
func (o *Optimizer) Limits() Limits {
	return o.limits
}

// Assess returns the snapshot's usage ratio — the worst ratio across the
// count, per-category, and size bounds — and its capacity level.
func (o *Optimizer) Assess(stats Stats) (float64, CapacityLevel) {
	ratio := 0.0

	if o.limits.MaxMemoriesTotal > 0 {
		ratio = math.Max(ratio, float64(stats.TotalCount)/float64(o.limits.MaxMemoriesTotal))
	}

	if o.limits.MaxMemoriesPerCategory > 0 {
		for _, count := range stats.PerCategory {
			ratio = math.Max(ratio, float64(count)/float64(o.limits.MaxMemoriesPerCategory))
		}
	}

	if o.limits.MaxTotalSizeMB > 0 {
		ratio = math.Max(ratio, stats.TotalSizeMB/o.limits.MaxTotalSizeMB)
	}

	level := CapacityOK
	switch {
	case ratio >= o.limits.CriticalThreshold:
		level = CapacityCritical
	case ratio >= o.limits.WarningThreshold:
		level = CapacityWarning
	}

	return ratio, level
}

// Optimize computes a purge decision for the snapshot under the given
// strategy. targetReduction in [0,1] requests removal of at least that
// fraction of the snapshot on top of any hard-limit excess; policy violators
// surfaced by the context-aware and hybrid strategies are always included.
//
// The grace-period guard is respected unless capacity is critical. When the
// guard (or an exhausted candidate pool) prevents the decision from meeting
// the effective removal count or restoring the hard limits, the status is
// StatusCapacityStillExceeded so the caller can escalate.
func (o *Optimizer) Optimize(recs []memory.Record, strat strategy.Strategy, targetReduction float64) Result {
	stats := Collect(recs)
	now := o.clk.Now()

	if stats.TotalCount == 0 {
		return Result{Status: StatusNoActionNeeded, PurgedIDs: []string{}, Stats: stats}
	}

	if math.IsNaN(targetReduction) || targetReduction < 0 {
		targetReduction = 0
	}
	if targetReduction > 1 {
		targetReduction = 1
	}

	ratio, level := o.Assess(stats)
	bypassGrace := level == CapacityCritical

	ordered, mandatory := o.selector.Candidates(recs, strat, now, bypassGrace)

	removal := o.hardExcess(stats)
	if targetReduction > 0 {
		removal = max(removal, int(math.Ceil(targetReduction*float64(stats.TotalCount))))
	}
	removal = max(removal, mandatory)

	sizeExceeded := o.limits.MaxTotalSizeMB > 0 && stats.TotalSizeMB > o.limits.MaxTotalSizeMB
	if removal <= 0 && !sizeExceeded {
		o.logger.Debug("no optimization needed",
			"total", stats.TotalCount,
			"usage_ratio", ratio,
		)
		return Result{Status: StatusNoActionNeeded, PurgedIDs: []string{}, Stats: stats}
	}

	take := min(removal, len(ordered))

	// Extend the take until the size bound is satisfied or candidates run out.
	if o.limits.MaxTotalSizeMB > 0 {
		remaining := stats.TotalSizeMB
		for i := range take {
			remaining -= float64(ordered[i].Size()) / bytesPerMB
		}
		for remaining > o.limits.MaxTotalSizeMB && take < len(ordered) {
			remaining -= float64(ordered[take].Size()) / bytesPerMB
			take++
		}
	}

	purged := ordered[:take]
	ids := make([]string, len(purged))
	var savedBytes int64
	for i, rec := range purged {
		ids[i] = rec.ID
		savedBytes += rec.Size()
	}

	result := Result{
		Status:          StatusCompleted,
		MemoriesRemoved: len(ids),
		SizeSavedMB:     float64(savedBytes) / bytesPerMB,
		PurgedIDs:       ids,
		Stats:           stats,
	}

	if len(ids) < removal || o.stillExceeded(stats, purged, result) {
		result.Status = StatusCapacityStillExceeded
	}

	o.logger.Info("optimization decision",
		"strategy", string(strat),
		"status", string(result.Status),
		"removed", result.MemoriesRemoved,
		"size_saved_mb", result.SizeSavedMB,
		"usage_ratio", ratio,
		"grace_bypassed", bypassGrace,
	)

	return result
}

// hardExcess is the record count that must go to restore the count bounds.
func (o *Optimizer) hardExcess(stats Stats) int {
	excess := 0

	if o.limits.MaxMemoriesTotal > 0 {
		excess = max(excess, stats.TotalCount-o.limits.MaxMemoriesTotal)
	}

	if o.limits.MaxMemoriesPerCategory > 0 {
		perCat := 0
		for _, count := range stats.PerCategory {
			perCat += max(0, count-o.limits.MaxMemoriesPerCategory)
		}
		excess = max(excess, perCat)
	}

	return excess
}

// stillExceeded reports whether the hard limits remain violated after
// applying the decision to the snapshot.
func (o *Optimizer) stillExceeded(stats Stats, purged []memory.Record, result Result) bool {
	count := stats.TotalCount - result.MemoriesRemoved
	if o.limits.MaxMemoriesTotal > 0 && count > o.limits.MaxMemoriesTotal {
		return true
	}

	size := stats.TotalSizeMB - result.SizeSavedMB
	if o.limits.MaxTotalSizeMB > 0 && size > o.limits.MaxTotalSizeMB {
		return true
	}

	if o.limits.MaxMemoriesPerCategory > 0 {
		remaining := make(map[string]int, len(stats.PerCategory))
		for category, n := range stats.PerCategory {
			remaining[category] = n
		}
		for _, rec := range purged {
			remaining[rec.Category]--
		}
		for _, n := range remaining {
			if n > o.limits.MaxMemoriesPerCategory {
				return true
			}
		}
	}

	return false
}
