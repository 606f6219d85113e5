// Package scheduler decides when the storage optimizer runs.
//
// A scheduler owns no goroutines: callers hand it memory snapshots from
// whatever concurrency model the host uses, and it evaluates its triggers
// synchronously. The only concurrency promise is a non-blocking single-flight
// guard — a caller arriving while a run is in progress gets an immediate
// skipped outcome instead of waiting.
package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mnemosyneco/keep/pkg/clock"
	"github.com/mnemosyneco/keep/pkg/memory"
	"github.com/mnemosyneco/keep/pkg/optimizer"
	"github.com/mnemosyneco/keep/pkg/strategy"
)

// ErrInvalidConfig is wrapped by scheduler configuration failures.
var ErrInvalidConfig = errors.New("invalid scheduler config")

// defaultHistorySize bounds the optimization history ring.
const defaultHistorySize = 50

// Reduction targets by trigger severity.
const (
	criticalTarget  = 0.30
	warningTarget   = 0.15
	scheduledTarget = 0.0
)

// Engine is the slice of the optimizer the scheduler depends on.
type Engine interface {
	Optimize(recs []memory.Record, strat strategy.Strategy, targetReduction float64) optimizer.Result
	Assess(stats optimizer.Stats) (float64, optimizer.CapacityLevel)
}

// Trigger names why an optimization ran (or why it did not).
type Trigger string

const (
	// TriggerNone means no trigger fired, or a run was already in flight.
	TriggerNone Trigger = "none"

	// TriggerCritical fired on the critical capacity threshold.
	TriggerCritical Trigger = "critical_capacity"

	// TriggerWarning fired on the warning capacity threshold.
	TriggerWarning Trigger = "warning_capacity"

	// TriggerScheduled fired because the optimization interval elapsed
	// (a cold start with no prior run counts as due).
	TriggerScheduled Trigger = "scheduled"

	// TriggerForced fired because the caller forced a run.
	TriggerForced Trigger = "forced"
)

// Config tunes the scheduler's trigger evaluation.
type Config struct {
	// AutoOptimizeEnabled turns the interval trigger on. Capacity triggers
	// and Force work regardless.
	AutoOptimizeEnabled bool

	// OptimizationInterval is the time between scheduled runs.
	OptimizationInterval time.Duration

	// HistorySize bounds the optimization history ring. Zero means the
	// default of 50.
	HistorySize int
}

func (c Config) validate() error {
	if c.OptimizationInterval <= 0 {
		return fmt.Errorf("%w: optimization interval must be positive, got %v",
			ErrInvalidConfig, c.OptimizationInterval)
	}

	if c.HistorySize < 0 {
		return fmt.Errorf("%w: history size must be non-negative, got %d",
			ErrInvalidConfig, c.HistorySize)
	}

	return nil
}

// HistoryRecord is one entry of the bounded optimization history.
type HistoryRecord struct {
	// Timestamp is when the run completed.
	Timestamp time.Time `json:"timestamp"`

	// Trigger is why the run happened.
	Trigger Trigger `json:"trigger_reason"`

	// Status summarizes the optimizer's decision.
	Status optimizer.Status `json:"status"`

	// MemoriesRemoved is the number of recommended removals.
	MemoriesRemoved int `json:"memories_removed"`

	// SizeSavedMB is the size of the recommended removals.
	SizeSavedMB float64 `json:"size_saved_mb"`
}

// Outcome reports one MonitorAndOptimize or Force call.
type Outcome struct {
	// Performed is false when no trigger fired or a run was in flight.
	Performed bool

	// Trigger is the trigger that fired, or TriggerNone.
	Trigger Trigger

	// Result is the optimizer's decision; nil when Performed is false.
	Result *optimizer.Result
}

// Scheduler evaluates optimization triggers over memory snapshots. Each
// instance owns its state; nothing here is process-global.
type Scheduler struct {
	cfg    Config
	engine Engine
	clk    clock.Clock
	logger *slog.Logger

	inFlight atomic.Bool

	// mu guards the fields below; they are written once per completed run.
	mu      sync.Mutex
	lastRun time.Time
	hasRun  bool
	history []HistoryRecord
}

// New creates a scheduler. The engine is required; a nil clock defaults to
// the system clock and a nil logger to slog's default.
func New(cfg Config, engine Engine, clk clock.Clock, logger *slog.Logger) (*Scheduler, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if engine == nil {
		return nil, fmt.Errorf("%w: nil engine", ErrInvalidConfig)
	}

	if cfg.HistorySize == 0 {
		cfg.HistorySize = defaultHistorySize
	}

	if clk == nil {
		clk = clock.System{}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{cfg: cfg, engine: engine, clk: clk, logger: logger}, nil
}

// MonitorAndOptimize evaluates the triggers against the snapshot and runs the
// optimizer if one fires. A concurrent caller arriving while a run is in
// progress gets an immediate skipped outcome.
func (s *Scheduler) MonitorAndOptimize(recs []memory.Record) Outcome {
	return s.run(recs, false)
}

// Force runs the optimizer regardless of thresholds and interval. The
// single-flight guard still applies.
func (s *Scheduler) Force(recs []memory.Record) Outcome {
	return s.run(recs, true)
}

func (s *Scheduler) run(recs []memory.Record, force bool) Outcome {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Debug("optimization skipped, run already in flight")
		return Outcome{Performed: false, Trigger: TriggerNone}
	}
	defer s.inFlight.Store(false)

	trigger := s.evaluate(recs, force)
	if trigger == TriggerNone {
		return Outcome{Performed: false, Trigger: TriggerNone}
	}

	strat, target := planFor(trigger)

	s.logger.Info("optimization triggered",
		"trigger", string(trigger),
		"strategy", string(strat),
		"target_reduction", target,
		"snapshot_size", len(recs),
	)

	result := s.engine.Optimize(recs, strat, target)
	now := s.clk.Now()

	s.mu.Lock()
	s.lastRun = now
	s.hasRun = true
	s.history = append(s.history, HistoryRecord{
		Timestamp:       now,
		Trigger:         trigger,
		Status:          result.Status,
		MemoriesRemoved: result.MemoriesRemoved,
		SizeSavedMB:     result.SizeSavedMB,
	})
	if excess := len(s.history) - s.cfg.HistorySize; excess > 0 {
		s.history = append(s.history[:0:0], s.history[excess:]...)
	}
	s.mu.Unlock()

	return Outcome{Performed: true, Trigger: trigger, Result: &result}
}

// evaluate returns the highest-severity trigger that fires for the snapshot.
func (s *Scheduler) evaluate(recs []memory.Record, force bool) Trigger {
	if force {
		return TriggerForced
	}

	_, level := s.engine.Assess(optimizer.Collect(recs))
	switch level {
	case optimizer.CapacityCritical:
		return TriggerCritical
	case optimizer.CapacityWarning:
		return TriggerWarning
	}

	if s.cfg.AutoOptimizeEnabled {
		s.mu.Lock()
		due := !s.hasRun || s.clk.Now().Sub(s.lastRun) >= s.cfg.OptimizationInterval
		s.mu.Unlock()
		if due {
			return TriggerScheduled
		}
	}

	return TriggerNone
}

// planFor maps trigger severity to a strategy and reduction target: critical
// capacity purges aggressively with the hybrid strategy, warnings purge
// moderately by score, and scheduled runs only enforce the per-category
// policies.
func planFor(trigger Trigger) (strategy.Strategy, float64) {
	switch trigger {
	case TriggerCritical, TriggerForced:
		return strategy.Hybrid, criticalTarget
	case TriggerWarning:
		return strategy.Priority, warningTarget
	default:
		return strategy.ContextAware, scheduledTarget
	}
}

// History returns a copy of the bounded optimization history, oldest first.
func (s *Scheduler) History() []HistoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]HistoryRecord, len(s.history))
	copy(out, s.history)
	return out
}

// LastOptimization returns the completion time of the most recent run, and
// whether any run has completed.
func (s *Scheduler) LastOptimization() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.hasRun
}
