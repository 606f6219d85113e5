package strategy

import (
	"errors"
	"sort"
	"sync/atomic"
	"time"

	"github.com/mnemosyneco/keep/pkg/clock"
	"github.com/mnemosyneco/keep/pkg/memory"
	"github.com/mnemosyneco/keep/pkg/retention"
	"github.com/mnemosyneco/keep/pkg/scoring"
)

// ErrNilTable is returned when a selector is constructed without a policy table.
var ErrNilTable = errors.New("nil retention table")

// Selector produces eviction-candidate orderings against the current policy
// table. It is safe for concurrent use; Reload swaps the table atomically.
type Selector struct {
	table atomic.Pointer[retention.Table]
}

// NewSelector creates a selector over the given policy table.
func NewSelector(table *retention.Table) (*Selector, error) {
	if table == nil {
		return nil, ErrNilTable
	}

	s := &Selector{}
	s.table.Store(table)
	return s, nil
}

// Reload swaps in a new policy table. In-flight orderings keep the table they
// started with.
func (s *Selector) Reload(table *retention.Table) {
	if table != nil {
		s.table.Store(table)
	}
}

// Table returns the current policy table.
func (s *Selector) Table() *retention.Table {
	return s.table.Load()
}

// candidate caches everything an ordering needs about one record.
type candidate struct {
	rec      memory.Record
	score    float64
	last     time.Time
	created  time.Time
	violator bool
}

// Candidates returns the eviction ordering for recs under the given strategy,
// most-purgeable first, together with the count of leading mandatory
// candidates. Mandatory candidates are per-category policy violators (age,
// score, or category overflow) under the context-aware and hybrid strategies;
// the other strategies never mark candidates mandatory.
//
// Records younger than their category's grace period are excluded entirely
// unless bypassGrace is set (critical capacity), so hard limits stay
// honorable when it matters.
func (s *Selector) Candidates(recs []memory.Record, strat Strategy, now time.Time, bypassGrace bool) ([]memory.Record, int) {
	table := s.table.Load()

	eligible := make([]candidate, 0, len(recs))
	for _, rec := range recs {
		policy := table.Lookup(rec.Category)

		created, _ := clock.Parse(rec.CreatedAt)
		if !bypassGrace && clock.Age(now, created) < policy.MinAgeBeforePurge {
			continue
		}

		last, _ := clock.Parse(rec.LastAccessed)
		c := candidate{
			rec:     rec,
			score:   scoring.Score(rec, policy, now),
			last:    last,
			created: created,
		}
		c.violator = clock.AgeDays(now, created) > float64(policy.MaxAgeDays) ||
			c.score < policy.MinAcceptableScore

		eligible = append(eligible, c)
	}

	switch strat {
	case LRU:
		sortByRecency(eligible)
		return records(eligible), 0
	case Priority:
		sortByScore(eligible)
		return records(eligible), 0
	case ContextAware:
		return partitionViolators(eligible, table, true)
	case Hybrid:
		return partitionViolators(eligible, table, false)
	default:
		sortByScore(eligible)
		return records(eligible), 0
	}
}

// partitionViolators splits eligible candidates into policy violators and the
// rest. Violators come first, score ascending. The remainder is priority
// ordered: per category (categories in name order) when perCategory is set,
// globally otherwise.
func partitionViolators(eligible []candidate, table *retention.Table, perCategory bool) ([]memory.Record, int) {
	markOverflow(eligible, table)

	var violators, rest []candidate
	for _, c := range eligible {
		if c.violator {
			violators = append(violators, c)
		} else {
			rest = append(rest, c)
		}
	}

	sortByScore(violators)

	if perCategory {
		sort.SliceStable(rest, func(i, j int) bool {
			if rest[i].rec.Category != rest[j].rec.Category {
				return rest[i].rec.Category < rest[j].rec.Category
			}
			return scoreLess(rest[i], rest[j])
		})
	} else {
		sortByScore(rest)
	}

	return records(append(violators, rest...)), len(violators)
}

// markOverflow flags the lowest-scored overflow within each category whose
// population exceeds its max count.
func markOverflow(eligible []candidate, table *retention.Table) {
	counts := map[string]int{}
	for _, c := range eligible {
		counts[c.rec.Category]++
	}

	byCategory := map[string][]int{}
	for i, c := range eligible {
		byCategory[c.rec.Category] = append(byCategory[c.rec.Category], i)
	}

	for category, idxs := range byCategory {
		maxCount := table.Lookup(category).MaxCount
		overflow := counts[category] - maxCount
		if maxCount <= 0 || overflow <= 0 {
			continue
		}

		sort.Slice(idxs, func(a, b int) bool {
			return scoreLess(eligible[idxs[a]], eligible[idxs[b]])
		})
		for _, i := range idxs[:overflow] {
			eligible[i].violator = true
		}
	}
}

func sortByRecency(cs []candidate) {
	sort.Slice(cs, func(i, j int) bool { return tieLess(cs[i], cs[j]) })
}

func sortByScore(cs []candidate) {
	sort.Slice(cs, func(i, j int) bool { return scoreLess(cs[i], cs[j]) })
}

// scoreLess orders by retention score ascending, breaking ties with tieLess.
func scoreLess(a, b candidate) bool {
	if a.score != b.score {
		return a.score < b.score
	}
	return tieLess(a, b)
}

// tieLess is the deterministic tie-break shared by every strategy:
// last-accessed ascending, then created-at ascending, then ID. Unparsable
// timestamps parse to the zero time and therefore sort first, i.e. staler.
func tieLess(a, b candidate) bool {
	if !a.last.Equal(b.last) {
		return a.last.Before(b.last)
	}
	if !a.created.Equal(b.created) {
		return a.created.Before(b.created)
	}
	return a.rec.ID < b.rec.ID
}

func records(cs []candidate) []memory.Record {
	out := make([]memory.Record, len(cs))
	for i, c := range cs {
		out[i] = c.rec
	}
	return out
}
