package retention_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mnemosyneco/keep/pkg/retention"
)

func validPolicy() retention.Policy {
	return retention.Policy{
		MaxAgeDays:          45,
		MaxCount:            100,
		MinAcceptableScore:  0.3,
		Weights:             retention.Weights{Recency: 0.4, Frequency: 0.3, Quality: 0.3},
		ErrorBoost:          0.05,
		SolutionBoost:       0.05,
		FrequencySaturation: 20,
		MinAgeBeforePurge:   24 * time.Hour,
	}
}

var _ = Describe("NewTable", func() {
	It("builds from defaults with no overrides", func() {
		table, err := retention.NewTable(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(table.Categories()).To(ContainElements(
			retention.CategoryGeneral,
			retention.CategoryError,
			retention.CategorySolution,
			retention.CategoryTesting,
		))
	})

	It("applies overrides on top of defaults", func() {
		p := validPolicy()
		p.MaxAgeDays = 7
		table, err := retention.NewTable(map[string]retention.Policy{
			retention.CategoryConversation: p,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(table.Lookup(retention.CategoryConversation).MaxAgeDays).To(Equal(7))
	})

	It("accepts overrides that extend the category set", func() {
		table, err := retention.NewTable(map[string]retention.Policy{
			"incident": validPolicy(),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(table.Categories()).To(ContainElement("incident"))
	})

	It("rejects weights that do not sum to 1", func() {
		p := validPolicy()
		p.Weights = retention.Weights{Recency: 0.5, Frequency: 0.5, Quality: 0.5}
		_, err := retention.NewTable(map[string]retention.Policy{"general": p})
		Expect(err).To(MatchError(retention.ErrInvalidPolicy))
	})

	It("rejects out-of-range min_acceptable_score", func() {
		p := validPolicy()
		p.MinAcceptableScore = 1.5
		_, err := retention.NewTable(map[string]retention.Policy{"general": p})
		Expect(err).To(MatchError(retention.ErrInvalidPolicy))
	})

	It("rejects non-positive max_age_days", func() {
		p := validPolicy()
		p.MaxAgeDays = 0
		_, err := retention.NewTable(map[string]retention.Policy{"general": p})
		Expect(err).To(MatchError(retention.ErrInvalidPolicy))
	})

	It("rejects negative grace periods", func() {
		p := validPolicy()
		p.MinAgeBeforePurge = -time.Hour
		_, err := retention.NewTable(map[string]retention.Policy{"general": p})
		Expect(err).To(MatchError(retention.ErrInvalidPolicy))
	})

	It("rejects empty category names", func() {
		_, err := retention.NewTable(map[string]retention.Policy{"": validPolicy()})
		Expect(err).To(MatchError(retention.ErrInvalidPolicy))
	})

	It("names the offending category in the error", func() {
		p := validPolicy()
		p.FrequencySaturation = 0
		_, err := retention.NewTable(map[string]retention.Policy{"solution": p})
		Expect(err).To(MatchError(ContainSubstring(`category "solution"`)))
	})
})

var _ = Describe("Lookup", func() {
	It("falls back to the general policy for unknown categories", func() {
		table, err := retention.NewTable(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(table.Lookup("never-heard-of-it")).To(Equal(table.Lookup(retention.CategoryGeneral)))
	})

	It("resolves every built-in category to a distinct validated policy", func() {
		table, err := retention.NewTable(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(table.Lookup(retention.CategoryTesting).MaxAgeDays).To(Equal(45))
		Expect(table.Lookup(retention.CategoryConversation).MaxAgeDays).To(Equal(14))
		Expect(table.Lookup(retention.CategorySolution).MaxAgeDays).To(Equal(180))
	})
})
