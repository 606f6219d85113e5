package strategy_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mnemosyneco/keep/pkg/memory"
	"github.com/mnemosyneco/keep/pkg/retention"
	"github.com/mnemosyneco/keep/pkg/strategy"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func iso(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// daysOld builds a record created and last accessed the given number of days ago.
func daysOld(id string, createdDays, accessedDays int) memory.Record {
	return memory.Record{
		ID:           id,
		Category:     retention.CategoryGeneral,
		CreatedAt:    iso(now.AddDate(0, 0, -createdDays)),
		LastAccessed: iso(now.AddDate(0, 0, -accessedDays)),
		AccessCount:  3,
		SuccessRate:  0.6,
	}
}

func ids(recs []memory.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func newSelector() *strategy.Selector {
	table, err := retention.NewTable(nil)
	Expect(err).NotTo(HaveOccurred())
	sel, err := strategy.NewSelector(table)
	Expect(err).NotTo(HaveOccurred())
	return sel
}

var _ = Describe("Parse", func() {
	It("accepts the four strategy names", func() {
		for _, name := range []string{"lru", "priority", "context_aware", "hybrid"} {
			s, err := strategy.Parse(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(s)).To(Equal(name))
		}
	})

	It("rejects unknown names", func() {
		_, err := strategy.Parse("mru")
		Expect(err).To(MatchError(strategy.ErrUnknownStrategy))
	})
})

var _ = Describe("NewSelector", func() {
	It("rejects a nil table", func() {
		_, err := strategy.NewSelector(nil)
		Expect(err).To(MatchError(strategy.ErrNilTable))
	})
})

var _ = Describe("Candidates", func() {
	var sel *strategy.Selector

	BeforeEach(func() {
		sel = newSelector()
	})

	Describe("lru", func() {
		It("orders by last-accessed ascending", func() {
			recs := []memory.Record{
				daysOld("recent", 20, 1),
				daysOld("stale", 20, 15),
				daysOld("middle", 20, 7),
			}
			ordered, mandatory := sel.Candidates(recs, strategy.LRU, now, false)
			Expect(ids(ordered)).To(Equal([]string{"stale", "middle", "recent"}))
			Expect(mandatory).To(BeZero())
		})

		It("breaks last-accessed ties by created-at, then ID", func() {
			sameAccess := iso(now.AddDate(0, 0, -10))
			a := daysOld("a", 20, 10)
			b := daysOld("b", 25, 10)
			c := daysOld("c", 25, 10)
			a.LastAccessed = sameAccess
			b.LastAccessed = sameAccess
			c.LastAccessed = sameAccess

			ordered, _ := sel.Candidates([]memory.Record{a, c, b}, strategy.LRU, now, false)
			// b and c share the older created-at; ID breaks that tie.
			Expect(ids(ordered)).To(Equal([]string{"b", "c", "a"}))
		})

		It("is deterministic regardless of input order", func() {
			recs := []memory.Record{
				daysOld("x", 20, 3),
				daysOld("y", 20, 9),
				daysOld("z", 20, 6),
			}
			first, _ := sel.Candidates(recs, strategy.LRU, now, false)
			reversed := []memory.Record{recs[2], recs[1], recs[0]}
			second, _ := sel.Candidates(reversed, strategy.LRU, now, false)
			Expect(ids(first)).To(Equal(ids(second)))
		})
	})

	Describe("priority", func() {
		It("orders by retention score ascending", func() {
			low := daysOld("low", 25, 25)
			low.AccessCount = 0
			low.SuccessRate = 0.1

			high := daysOld("high", 25, 1)
			high.AccessCount = 20
			high.SuccessRate = 0.9

			ordered, mandatory := sel.Candidates([]memory.Record{high, low}, strategy.Priority, now, false)
			Expect(ids(ordered)).To(Equal([]string{"low", "high"}))
			Expect(mandatory).To(BeZero())
		})
	})

	Describe("context_aware", func() {
		It("puts policy violators ahead of everything else", func() {
			overAge := daysOld("over-age", 40, 2) // general max age is 30
			overAge.AccessCount = 20
			overAge.SuccessRate = 1.0

			fine := daysOld("fine", 10, 1)
			fine.AccessCount = 10
			fine.SuccessRate = 0.9

			ordered, mandatory := sel.Candidates([]memory.Record{fine, overAge}, strategy.ContextAware, now, false)
			Expect(ids(ordered)[0]).To(Equal("over-age"))
			Expect(mandatory).To(Equal(1))
		})

		It("flags below-threshold scores as violators", func() {
			weak := daysOld("weak", 28, 28) // nearly aged out, unused, poor quality
			weak.AccessCount = 0
			weak.SuccessRate = 0.0

			strong := daysOld("strong", 5, 1)
			strong.AccessCount = 15
			strong.SuccessRate = 0.9

			_, mandatory := sel.Candidates([]memory.Record{strong, weak}, strategy.ContextAware, now, false)
			Expect(mandatory).To(Equal(1))
		})

		It("flags category overflow as violators", func() {
			p := retention.Policy{
				MaxAgeDays:          30,
				MaxCount:            2,
				MinAcceptableScore:  0,
				Weights:             retention.Weights{Recency: 0.4, Frequency: 0.3, Quality: 0.3},
				FrequencySaturation: 20,
				MinAgeBeforePurge:   time.Hour,
			}
			table, err := retention.NewTable(map[string]retention.Policy{"general": p})
			Expect(err).NotTo(HaveOccurred())
			sel.Reload(table)

			recs := []memory.Record{
				daysOld("a", 10, 1),
				daysOld("b", 10, 5),
				daysOld("c", 10, 9),
			}
			ordered, mandatory := sel.Candidates(recs, strategy.ContextAware, now, false)
			Expect(mandatory).To(Equal(1))
			// c has the lowest recency, hence the lowest score: it is the overflow.
			Expect(ids(ordered)[0]).To(Equal("c"))
		})
	})

	Describe("hybrid", func() {
		It("orders violators first, then the remaining pool by score", func() {
			violator := daysOld("violator", 50, 2)

			lowScore := daysOld("low", 20, 15)
			lowScore.AccessCount = 2
			lowScore.SuccessRate = 0.55

			highScore := daysOld("high", 5, 1)
			highScore.AccessCount = 20
			highScore.SuccessRate = 0.95

			ordered, mandatory := sel.Candidates(
				[]memory.Record{highScore, violator, lowScore}, strategy.Hybrid, now, false)
			Expect(mandatory).To(Equal(1))
			Expect(ids(ordered)).To(Equal([]string{"violator", "low", "high"}))
		})
	})

	Describe("grace period", func() {
		It("excludes memories younger than min_age_before_purge under every strategy", func() {
			young := daysOld("young", 0, 0) // created now; general grace is 24h
			old := daysOld("old", 20, 10)

			for _, strat := range []strategy.Strategy{
				strategy.LRU, strategy.Priority, strategy.ContextAware, strategy.Hybrid,
			} {
				ordered, _ := sel.Candidates([]memory.Record{young, old}, strat, now, false)
				Expect(ids(ordered)).To(Equal([]string{"old"}), string(strat))
			}
		})

		It("bypasses the guard under critical capacity", func() {
			young := daysOld("young", 0, 0)
			ordered, _ := sel.Candidates([]memory.Record{young}, strategy.LRU, now, true)
			Expect(ids(ordered)).To(Equal([]string{"young"}))
		})

		It("does not protect records with unparsable created_at", func() {
			corrupt := daysOld("corrupt", 20, 10)
			corrupt.CreatedAt = "not-a-timestamp"
			ordered, _ := sel.Candidates([]memory.Record{corrupt}, strategy.LRU, now, false)
			Expect(ids(ordered)).To(Equal([]string{"corrupt"}))
		})
	})

	Describe("Reload", func() {
		It("swaps the policy table atomically", func() {
			relaxed := retention.Policy{
				MaxAgeDays:          5,
				MaxCount:            100,
				MinAcceptableScore:  0,
				Weights:             retention.Weights{Recency: 0.4, Frequency: 0.3, Quality: 0.3},
				FrequencySaturation: 20,
			}
			table, err := retention.NewTable(map[string]retention.Policy{"general": relaxed})
			Expect(err).NotTo(HaveOccurred())

			rec := daysOld("r", 10, 1)
			_, before := sel.Candidates([]memory.Record{rec}, strategy.ContextAware, now, false)
			Expect(before).To(BeZero())

			sel.Reload(table)
			_, after := sel.Candidates([]memory.Record{rec}, strategy.ContextAware, now, false)
			Expect(after).To(Equal(1)) // 10 days old now violates the 5-day window
		})
	})
})
