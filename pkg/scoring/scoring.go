// Package scoring computes retention scores for memory records.
//
// Both entry points are pure: identical inputs always yield identical
// outputs, and no internal state is consulted. Data-quality problems in a
// record (malformed timestamps, out-of-range rates, negative counts) degrade
// to conservative defaults instead of propagating — hard failures belong at
// policy-table construction, not here.
package scoring

import (
	"math"
	"time"

	"github.com/mnemosyneco/keep/pkg/clock"
	"github.com/mnemosyneco/keep/pkg/memory"
	"github.com/mnemosyneco/keep/pkg/retention"
)

// RecencyFactor returns a [0,1] measure of how recently the record was
// touched, normalized against the category's max age so the factor means the
// same thing across categories with different retention windows. The last
// access wins; a never-accessed record falls back to its creation time. A
// timestamp that does not parse counts as maximally stale, biasing corrupt
// records toward eviction.
func RecencyFactor(rec memory.Record, policy retention.Policy, now time.Time) float64 {
	ts := rec.LastAccessed
	if ts == "" {
		ts = rec.CreatedAt
	}

	t, ok := clock.Parse(ts)
	if !ok {
		return 0
	}

	maxAge := float64(policy.MaxAgeDays)
	if maxAge <= 0 {
		return 0
	}

	return clamp01(1 - clock.AgeDays(now, t)/maxAge)
}

// FrequencyFactor returns a [0,1] measure of how often the record has been
// recalled, saturating at the policy's frequency saturation count. Negative
// counts (corrupt rows) count as zero.
func FrequencyFactor(rec memory.Record, policy retention.Policy) float64 {
	count := rec.AccessCount
	if count < 0 {
		count = 0
	}

	sat := policy.FrequencySaturation
	if sat <= 0 {
		return 0
	}

	return clamp01(float64(count) / float64(sat))
}

// QualityFactor returns the record's success rate, substituting the neutral
// 0.5 when the stored value is NaN or out of range.
func QualityFactor(rec memory.Record) float64 {
	sr := rec.SuccessRate
	if math.IsNaN(sr) || sr < 0 || sr > 1 {
		return 0.5
	}
	return sr
}

// Score maps a record and its policy to a retention score in [0,1]: the
// weighted mix of recency, frequency, and quality, plus the policy's fixed
// boosts for error- and solution-related records, clamped to [0,1].
func Score(rec memory.Record, policy retention.Policy, now time.Time) float64 {
	w := policy.Weights

	s := w.Recency*RecencyFactor(rec, policy, now) +
		w.Frequency*FrequencyFactor(rec, policy) +
		w.Quality*QualityFactor(rec)

	if rec.ErrorRelated {
		s += policy.ErrorBoost
	}
	if rec.SolutionRelated {
		s += policy.SolutionBoost
	}

	return clamp01(s)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(math.Max(v, 0), 1)
}
