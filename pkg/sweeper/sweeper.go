// Package sweeper runs the autonomous optimization loop against a memory
// store. It owns the side effects the decision engine refuses to: fetching
// snapshots, applying recommended deletions, mirroring them to the vector
// store, and publishing optimization events.
package sweeper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mnemosyneco/keep/pkg/clock"
	"github.com/mnemosyneco/keep/pkg/eventstream"
	"github.com/mnemosyneco/keep/pkg/memory"
	"github.com/mnemosyneco/keep/pkg/optimizer"
	"github.com/mnemosyneco/keep/pkg/scheduler"
	"github.com/mnemosyneco/keep/pkg/vector"
)

// ErrInvalidConfig is wrapped by sweeper configuration failures.
var ErrInvalidConfig = errors.New("invalid sweeper config")

// Config wires the sweeper's collaborators.
type Config struct {
	// Store is the memory store being kept within capacity. Required.
	Store memory.Driver

	// Scheduler decides when and how to optimize. Required.
	Scheduler *scheduler.Scheduler

	// Vector mirrors deletions into a vector store. Optional.
	Vector vector.Driver

	// Publisher emits optimization events. Optional.
	Publisher eventstream.Publisher

	// Clock stamps published events. Nil means the system clock.
	Clock clock.Clock

	// Interval is the poll cadence for Run. Required for Run; RunOnce
	// works without it.
	Interval time.Duration

	// Logger defaults to slog's default.
	Logger *slog.Logger
}

// Sweeper drives the optimization loop.
type Sweeper struct {
	store     memory.Driver
	sched     *scheduler.Scheduler
	vec       vector.Driver
	publisher eventstream.Publisher
	clk       clock.Clock
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a sweeper.
func New(cfg Config) (*Sweeper, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("%w: nil store", ErrInvalidConfig)
	}

	if cfg.Scheduler == nil {
		return nil, fmt.Errorf("%w: nil scheduler", ErrInvalidConfig)
	}

	if cfg.Interval < 0 {
		return nil, fmt.Errorf("%w: negative interval %v", ErrInvalidConfig, cfg.Interval)
	}

	if cfg.Clock == nil {
		cfg.Clock = clock.System{}
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Sweeper{
		store:     cfg.Store,
		sched:     cfg.Scheduler,
		vec:       cfg.Vector,
		publisher: cfg.Publisher,
		clk:       cfg.Clock,
		interval:  cfg.Interval,
		logger:    cfg.Logger,
	}, nil
}

// Run polls the scheduler on the configured interval until the context is
// canceled. The first sweep happens immediately. Sweep errors are logged, not
// fatal: a failed snapshot or deletion must not kill the loop.
func (s *Sweeper) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("%w: interval must be positive for Run, got %v", ErrInvalidConfig, s.interval)
	}

	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error("sweep failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error("sweep failed", "error", err)
			}
		}
	}
}

// RunOnce performs one sweep: snapshot, trigger evaluation, and application
// of whatever the optimizer recommended. If the run reports the capacity
// limits still exceeded, one forced escalation follows on a fresh snapshot.
func (s *Sweeper) RunOnce(ctx context.Context) (scheduler.Outcome, error) {
	outcome, err := s.sweep(ctx, false)
	if err != nil {
		return outcome, err
	}

	if outcome.Performed && outcome.Result.Status == optimizer.StatusCapacityStillExceeded {
		s.logger.Warn("capacity still exceeded after optimization, forcing one escalation")

		forced, err := s.sweep(ctx, true)
		if err != nil {
			return forced, err
		}
		if forced.Performed {
			return forced, nil
		}
	}

	return outcome, nil
}

// Force runs one forced sweep regardless of triggers.
func (s *Sweeper) Force(ctx context.Context) (scheduler.Outcome, error) {
	return s.sweep(ctx, true)
}

func (s *Sweeper) sweep(ctx context.Context, force bool) (scheduler.Outcome, error) {
	recs, err := s.store.List(ctx)
	if err != nil {
		return scheduler.Outcome{}, fmt.Errorf("listing memories: %w", err)
	}

	var outcome scheduler.Outcome
	if force {
		outcome = s.sched.Force(recs)
	} else {
		outcome = s.sched.MonitorAndOptimize(recs)
	}

	if !outcome.Performed {
		return outcome, nil
	}

	s.apply(ctx, outcome)
	return outcome, nil
}

// apply executes the purge recommendation. Vector mirroring and event
// publishing are best effort: their failures are logged and never block the
// store deletion that keeps capacity honest.
func (s *Sweeper) apply(ctx context.Context, outcome scheduler.Outcome) {
	result := outcome.Result

	if len(result.PurgedIDs) > 0 {
		deleted, err := s.store.Delete(ctx, result.PurgedIDs)
		if err != nil {
			s.logger.Error("deleting purged memories", "error", err, "ids", len(result.PurgedIDs))
		} else {
			s.logger.Info("purged memories",
				"deleted", deleted,
				"trigger", string(outcome.Trigger),
				"size_saved_mb", result.SizeSavedMB,
			)
		}

		if s.vec != nil {
			if err := s.vec.Delete(ctx, result.PurgedIDs); err != nil {
				s.logger.Error("mirroring deletions to vector store", "error", err)
			}
		}
	}

	if s.publisher != nil {
		event := eventstream.NewOptimizationEvent(string(outcome.Trigger), *result, s.clk.Now())
		if err := s.publisher.PublishOptimization(ctx, event); err != nil {
			s.logger.Error("publishing optimization event", "error", err)
		}
	}
}
