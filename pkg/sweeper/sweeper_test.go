package sweeper_test

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mnemosyneco/keep/pkg/clock"
	"github.com/mnemosyneco/keep/pkg/eventstream"
	"github.com/mnemosyneco/keep/pkg/logger"
	"github.com/mnemosyneco/keep/pkg/memory"
	"github.com/mnemosyneco/keep/pkg/memory/inmemory"
	"github.com/mnemosyneco/keep/pkg/optimizer"
	"github.com/mnemosyneco/keep/pkg/retention"
	"github.com/mnemosyneco/keep/pkg/scheduler"
	"github.com/mnemosyneco/keep/pkg/strategy"
	"github.com/mnemosyneco/keep/pkg/sweeper"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func iso(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// recordingVector captures mirrored deletions.
type recordingVector struct {
	mu      sync.Mutex
	deleted [][]string
}

func (v *recordingVector) Delete(_ context.Context, ids []string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.deleted = append(v.deleted, append([]string(nil), ids...))
	return nil
}

func (v *recordingVector) Close() error { return nil }

// recordingPublisher captures published optimization events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*eventstream.OptimizationEvent
}

func (p *recordingPublisher) PublishOptimization(_ context.Context, event *eventstream.OptimizationEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func newScheduler(limits optimizer.Limits) *scheduler.Scheduler {
	table, err := retention.NewTable(nil)
	Expect(err).NotTo(HaveOccurred())
	sel, err := strategy.NewSelector(table)
	Expect(err).NotTo(HaveOccurred())
	opt, err := optimizer.New(limits, sel, clock.At(now), logger.Nop())
	Expect(err).NotTo(HaveOccurred())

	sched, err := scheduler.New(scheduler.Config{
		AutoOptimizeEnabled:  true,
		OptimizationInterval: 6 * time.Hour,
	}, opt, clock.At(now), logger.Nop())
	Expect(err).NotTo(HaveOccurred())
	return sched
}

func defaultLimits() optimizer.Limits {
	return optimizer.Limits{
		MaxMemoriesTotal:  1000,
		MaxTotalSizeMB:    100,
		WarningThreshold:  0.8,
		CriticalThreshold: 0.95,
	}
}

// aged builds a record created and last accessed daysAgo days ago.
func aged(id, category string, daysAgo int) memory.Record {
	return memory.Record{
		ID:           id,
		Category:     category,
		SizeBytes:    1024,
		CreatedAt:    iso(now.AddDate(0, 0, -daysAgo)),
		LastAccessed: iso(now.AddDate(0, 0, -daysAgo)),
		AccessCount:  3,
		SuccessRate:  0.6,
	}
}

var _ = Describe("New", func() {
	It("requires a store and a scheduler", func() {
		_, err := sweeper.New(sweeper.Config{Scheduler: newScheduler(defaultLimits())})
		Expect(err).To(MatchError(sweeper.ErrInvalidConfig))

		_, err = sweeper.New(sweeper.Config{Store: inmemory.NewDriver()})
		Expect(err).To(MatchError(sweeper.ErrInvalidConfig))
	})

	It("rejects a negative interval", func() {
		_, err := sweeper.New(sweeper.Config{
			Store:     inmemory.NewDriver(),
			Scheduler: newScheduler(defaultLimits()),
			Interval:  -time.Second,
		})
		Expect(err).To(MatchError(sweeper.ErrInvalidConfig))
	})
})

var _ = Describe("RunOnce", func() {
	var (
		ctx       context.Context
		store     *inmemory.Driver
		vec       *recordingVector
		publisher *recordingPublisher
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = inmemory.NewDriver()
		vec = &recordingVector{}
		publisher = &recordingPublisher{}
	})

	newSweeper := func(limits optimizer.Limits) (*sweeper.Sweeper, *scheduler.Scheduler) {
		sched := newScheduler(limits)
		s, err := sweeper.New(sweeper.Config{
			Store:     store,
			Scheduler: sched,
			Vector:    vec,
			Publisher: publisher,
			Clock:     clock.At(now),
			Logger:    logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
		return s, sched
	}

	It("purges the policy violator and mirrors the deletion", func() {
		a := aged("A", retention.CategoryTesting, 10)
		a.AccessCount = 5
		a.SuccessRate = 0.9
		b := aged("B", retention.CategoryTesting, 50) // testing max age is 45
		c := aged("C", retention.CategoryTesting, 5)
		for _, rec := range []memory.Record{a, b, c} {
			Expect(store.Put(ctx, rec)).To(Succeed())
		}

		s, _ := newSweeper(defaultLimits())
		outcome, err := s.RunOnce(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome.Performed).To(BeTrue())
		Expect(outcome.Trigger).To(Equal(scheduler.TriggerScheduled))
		Expect(outcome.Result.Status).To(Equal(optimizer.StatusCompleted))

		// B is gone from the store, A and C remain.
		_, err = store.Get(ctx, "B")
		Expect(err).To(MatchError(memory.ErrNotFound))
		Expect(store.Count()).To(Equal(2))

		// The deletion was mirrored to the vector store.
		Expect(vec.deleted).To(HaveLen(1))
		Expect(vec.deleted[0]).To(Equal([]string{"B"}))

		// An event was published for the run.
		Expect(publisher.events).To(HaveLen(1))
		Expect(publisher.events[0].MemoriesRemoved).To(Equal(1))
		Expect(publisher.events[0].PurgedIDs).To(Equal([]string{"B"}))
		Expect(publisher.events[0].TriggerReason).To(Equal("scheduled"))
	})

	It("does nothing when no trigger fires", func() {
		Expect(store.Put(ctx, aged("a", "general", 5))).To(Succeed())

		s, _ := newSweeper(defaultLimits())
		first, err := s.RunOnce(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(first.Performed).To(BeTrue()) // cold start

		second, err := s.RunOnce(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(second.Performed).To(BeFalse())
		Expect(store.Count()).To(Equal(1))
	})

	It("escalates once when the removal target cannot be met", func() {
		// Three fresh grace-protected records at 75% usage: the warning run
		// wants one removal but has no candidates, and the forced escalation
		// cannot do better because usage never reaches the critical bypass.
		limits := optimizer.Limits{
			MaxMemoriesTotal:  4,
			WarningThreshold:  0.5,
			CriticalThreshold: 0.99,
		}

		for _, id := range []string{"x", "y", "z"} {
			Expect(store.Put(ctx, aged(id, "general", 0))).To(Succeed())
		}

		s, sched := newSweeper(limits)
		outcome, err := s.RunOnce(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome.Performed).To(BeTrue())
		Expect(outcome.Trigger).To(Equal(scheduler.TriggerForced))
		Expect(outcome.Result.Status).To(Equal(optimizer.StatusCapacityStillExceeded))

		// Both the triggered run and the escalation are in the history.
		Expect(sched.History()).To(HaveLen(2))

		// Grace protection held: nothing was deleted.
		Expect(store.Count()).To(Equal(3))
		Expect(vec.deleted).To(BeEmpty())
	})

	It("publishes an event even when nothing was purged", func() {
		Expect(store.Put(ctx, aged("a", "general", 5))).To(Succeed())

		s, _ := newSweeper(defaultLimits())
		outcome, err := s.RunOnce(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome.Result.Status).To(Equal(optimizer.StatusNoActionNeeded))

		Expect(publisher.events).To(HaveLen(1))
		Expect(publisher.events[0].MemoriesRemoved).To(BeZero())
		Expect(vec.deleted).To(BeEmpty())
	})
})

var _ = Describe("Force", func() {
	It("runs a sweep regardless of triggers", func() {
		ctx := context.Background()
		store := inmemory.NewDriver()
		Expect(store.Put(ctx, aged("old", "general", 40))).To(Succeed())

		sched := newScheduler(defaultLimits())
		s, err := sweeper.New(sweeper.Config{
			Store:     store,
			Scheduler: sched,
			Clock:     clock.At(now),
			Logger:    logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())

		outcome, err := s.Force(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome.Performed).To(BeTrue())
		Expect(outcome.Trigger).To(Equal(scheduler.TriggerForced))
	})
})

var _ = Describe("Run", func() {
	It("requires a positive interval", func() {
		s, err := sweeper.New(sweeper.Config{
			Store:     inmemory.NewDriver(),
			Scheduler: newScheduler(defaultLimits()),
			Logger:    logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Run(context.Background())).To(MatchError(sweeper.ErrInvalidConfig))
	})

	It("sweeps until the context is canceled", func() {
		store := inmemory.NewDriver()
		sched := newScheduler(defaultLimits())
		s, err := sweeper.New(sweeper.Config{
			Store:     store,
			Scheduler: sched,
			Clock:     clock.At(now),
			Interval:  5 * time.Millisecond,
			Logger:    logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err = s.Run(ctx)
		Expect(err).To(MatchError(context.DeadlineExceeded))

		// The immediate cold-start sweep ran.
		Expect(sched.History()).NotTo(BeEmpty())
	})
})
