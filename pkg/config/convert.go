package config

import (
	"fmt"
	"time"

	"github.com/mnemosyneco/keep/pkg/optimizer"
	"github.com/mnemosyneco/keep/pkg/retention"
	"github.com/mnemosyneco/keep/pkg/scheduler"
)

// ToLimits converts the optimizer section into capacity limits.
func (c *Config) ToLimits() optimizer.Limits {
	return optimizer.Limits{
		MaxMemoriesTotal:       c.Optimizer.MaxMemoriesTotal,
		MaxMemoriesPerCategory: c.Optimizer.MaxMemoriesPerCategory,
		MaxTotalSizeMB:         c.Optimizer.MaxTotalSizeMB,
		WarningThreshold:       c.Optimizer.WarningThreshold,
		CriticalThreshold:      c.Optimizer.CriticalThreshold,
	}
}

// ToSchedulerConfig converts the scheduler section, parsing the interval
// duration string.
func (c *Config) ToSchedulerConfig() (scheduler.Config, error) {
	interval, err := time.ParseDuration(c.Scheduler.OptimizationInterval)
	if err != nil {
		return scheduler.Config{}, fmt.Errorf("parsing scheduler.optimization_interval: %w", err)
	}

	return scheduler.Config{
		AutoOptimizeEnabled:  c.Scheduler.AutoOptimizeEnabled,
		OptimizationInterval: interval,
		HistorySize:          c.Scheduler.HistorySize,
	}, nil
}

// ToRetentionOverrides converts the [retention.<category>] sections into
// policy overrides suitable for retention.NewTable. Each configured category
// starts from its built-in default (the general default for categories the
// built-ins do not know) and set fields replace it, so a section only needs
// the fields it changes.
func (c *Config) ToRetentionOverrides() (map[string]retention.Policy, error) {
	if len(c.Retention) == 0 {
		return nil, nil
	}

	defaults := retention.Defaults()
	overrides := make(map[string]retention.Policy, len(c.Retention))

	for category, rc := range c.Retention {
		policy, ok := defaults[category]
		if !ok {
			policy = defaults[retention.CategoryGeneral]
		}

		if rc.MaxAgeDays != 0 {
			policy.MaxAgeDays = rc.MaxAgeDays
		}
		if rc.MaxCount != 0 {
			policy.MaxCount = rc.MaxCount
		}
		if rc.MinAcceptableScore != 0 {
			policy.MinAcceptableScore = rc.MinAcceptableScore
		}
		if !rc.Weights.isZero() {
			policy.Weights = retention.Weights{
				Recency:   rc.Weights.Recency,
				Frequency: rc.Weights.Frequency,
				Quality:   rc.Weights.Quality,
			}
		}
		if rc.ErrorBoost != 0 {
			policy.ErrorBoost = rc.ErrorBoost
		}
		if rc.SolutionBoost != 0 {
			policy.SolutionBoost = rc.SolutionBoost
		}
		if rc.FrequencySaturation != 0 {
			policy.FrequencySaturation = rc.FrequencySaturation
		}
		if rc.MinAgeBeforePurge != "" {
			grace, err := time.ParseDuration(rc.MinAgeBeforePurge)
			if err != nil {
				return nil, fmt.Errorf("parsing retention.%s.min_age_before_purge: %w", category, err)
			}
			policy.MinAgeBeforePurge = grace
		}

		overrides[category] = policy
	}

	return overrides, nil
}
