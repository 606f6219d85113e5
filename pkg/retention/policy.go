// Package retention defines per-category retention policies and the
// validated table that resolves a memory's category to its policy.
//
// The category set is closed: every built-in category ships a tuned default
// policy, and the general policy doubles as the catch-all for categories the
// table has never heard of. That fallback is the one deliberate exception to
// fail-fast — a live memory with an unknown category must still be scorable,
// while a misconfigured table must never be constructed at all.
package retention

import (
	"fmt"
	"math"
	"time"
)

// Built-in categories.
const (
	CategoryGeneral      = "general"
	CategoryError        = "error"
	CategorySolution     = "solution"
	CategoryCode         = "code"
	CategoryConversation = "conversation"
	CategoryPreference   = "preference"
	CategoryTesting      = "testing"
)

// weightTolerance is the allowed deviation of the weight sum from 1.
const weightTolerance = 1e-6

// Weights mixes the three scoring factors. The components must sum to 1.
type Weights struct {
	// Recency weighs how recently the memory was touched.
	Recency float64 `json:"recency"`

	// Frequency weighs how often the memory has been recalled.
	Frequency float64 `json:"frequency"`

	// Quality weighs the usage-feedback success rate.
	Quality float64 `json:"quality"`
}

// Policy bounds one category's retention behavior.
type Policy struct {
	// MaxAgeDays is the age beyond which a memory violates the policy.
	MaxAgeDays int `json:"max_age_days"`

	// MaxCount caps how many memories the category may hold. Zero disables
	// the per-category count bound.
	MaxCount int `json:"max_count"`

	// MinAcceptableScore is the retention score below which a memory
	// violates the policy.
	MinAcceptableScore float64 `json:"min_acceptable_score"`

	// Weights mixes the scoring factors for this category.
	Weights Weights `json:"weights"`

	// ErrorBoost is added to the score of error-related memories.
	ErrorBoost float64 `json:"error_boost"`

	// SolutionBoost is added to the score of solution-related memories.
	SolutionBoost float64 `json:"solution_boost"`

	// FrequencySaturation is the access count at which the frequency factor
	// reaches 1.
	FrequencySaturation int `json:"frequency_saturation"`

	// MinAgeBeforePurge is the grace period: memories younger than this are
	// protected from eviction except under critical capacity.
	MinAgeBeforePurge time.Duration `json:"min_age_before_purge"`
}

// Validate reports the first constraint the policy breaks.
func (p Policy) Validate() error {
	if p.MaxAgeDays <= 0 {
		return fmt.Errorf("%w: max_age_days must be positive, got %d", ErrInvalidPolicy, p.MaxAgeDays)
	}

	if p.MaxCount < 0 {
		return fmt.Errorf("%w: max_count must be non-negative, got %d", ErrInvalidPolicy, p.MaxCount)
	}

	if p.MinAcceptableScore < 0 || p.MinAcceptableScore > 1 || math.IsNaN(p.MinAcceptableScore) {
		return fmt.Errorf("%w: min_acceptable_score must be in [0,1], got %v", ErrInvalidPolicy, p.MinAcceptableScore)
	}

	for _, w := range []struct {
		name  string
		value float64
	}{
		{"recency", p.Weights.Recency},
		{"frequency", p.Weights.Frequency},
		{"quality", p.Weights.Quality},
	} {
		if w.value < 0 || w.value > 1 || math.IsNaN(w.value) {
			return fmt.Errorf("%w: weight %s must be in [0,1], got %v", ErrInvalidPolicy, w.name, w.value)
		}
	}

	sum := p.Weights.Recency + p.Weights.Frequency + p.Weights.Quality
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%w: weights must sum to 1, got %v", ErrInvalidPolicy, sum)
	}

	if p.ErrorBoost < 0 || p.ErrorBoost > 0.5 {
		return fmt.Errorf("%w: error_boost must be in [0,0.5], got %v", ErrInvalidPolicy, p.ErrorBoost)
	}

	if p.SolutionBoost < 0 || p.SolutionBoost > 0.5 {
		return fmt.Errorf("%w: solution_boost must be in [0,0.5], got %v", ErrInvalidPolicy, p.SolutionBoost)
	}

	if p.FrequencySaturation <= 0 {
		return fmt.Errorf("%w: frequency_saturation must be positive, got %d", ErrInvalidPolicy, p.FrequencySaturation)
	}

	if p.MinAgeBeforePurge < 0 {
		return fmt.Errorf("%w: min_age_before_purge must be non-negative, got %v", ErrInvalidPolicy, p.MinAgeBeforePurge)
	}

	return nil
}

// Defaults returns a copy of the built-in per-category policies. Callers may
// mutate the result freely; the table always builds from a fresh copy.
func Defaults() map[string]Policy {
	return defaultPolicies()
}

// defaultWeights is the baseline factor mix shared by most categories.
var defaultWeights = Weights{Recency: 0.4, Frequency: 0.3, Quality: 0.3}

// defaultPolicies returns the built-in per-category defaults. Long-lived
// knowledge (solutions, preferences) gets wide windows; chatter gets narrow
// ones.
func defaultPolicies() map[string]Policy {
	base := Policy{
		MaxAgeDays:          30,
		MaxCount:            1000,
		MinAcceptableScore:  0.3,
		Weights:             defaultWeights,
		ErrorBoost:          0.05,
		SolutionBoost:       0.05,
		FrequencySaturation: 20,
		MinAgeBeforePurge:   24 * time.Hour,
	}

	policies := map[string]Policy{}

	general := base
	policies[CategoryGeneral] = general

	errs := base
	errs.MaxAgeDays = 90
	errs.Weights = Weights{Recency: 0.3, Frequency: 0.3, Quality: 0.4}
	policies[CategoryError] = errs

	solution := base
	solution.MaxAgeDays = 180
	solution.MinAcceptableScore = 0.2
	solution.Weights = Weights{Recency: 0.2, Frequency: 0.4, Quality: 0.4}
	policies[CategorySolution] = solution

	code := base
	code.MaxAgeDays = 90
	policies[CategoryCode] = code

	conversation := base
	conversation.MaxAgeDays = 14
	conversation.MaxCount = 500
	conversation.MinAcceptableScore = 0.4
	policies[CategoryConversation] = conversation

	preference := base
	preference.MaxAgeDays = 365
	preference.MaxCount = 200
	preference.MinAcceptableScore = 0.1
	preference.Weights = Weights{Recency: 0.2, Frequency: 0.3, Quality: 0.5}
	policies[CategoryPreference] = preference

	testing := base
	testing.MaxAgeDays = 45
	policies[CategoryTesting] = testing

	return policies
}
