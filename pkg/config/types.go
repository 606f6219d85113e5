package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent keep configuration stored as config.toml
// in the .keep/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version     int                        `toml:"version"`
	Storage     StorageConfig              `toml:"storage"`
	VectorStore VectorStoreConfig          `toml:"vector_store"`
	EventStream EventStreamConfig          `toml:"event_stream"`
	Optimizer   OptimizerConfig            `toml:"optimizer"`
	Scheduler   SchedulerConfig            `toml:"scheduler"`
	Retention   map[string]RetentionConfig `toml:"retention,omitempty"`
}

// StorageConfig holds memory store settings.
type StorageConfig struct {
	// Provider selects the memory store driver: local, sqlite, or postgres.
	Provider    string `toml:"provider,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresURL string `toml:"postgres_url,omitempty"`
}

// VectorStoreConfig holds vector store settings. The vector store mirrors
// memory deletions so embeddings never outlive their records.
type VectorStoreConfig struct {
	// Provider selects the vector store driver: none or qdrant.
	Provider   string `toml:"provider,omitempty"`
	Host       string `toml:"host,omitempty"`
	Port       int    `toml:"port,omitempty"`
	APIKey     string `toml:"api_key,omitempty"`
	UseTLS     bool   `toml:"use_tls,omitempty"`
	Collection string `toml:"collection,omitempty"`
}

// EventStreamConfig holds optimization event publishing settings.
type EventStreamConfig struct {
	// Provider selects the event publisher: none or kafka.
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}

// OptimizerConfig holds the capacity limits and alerting thresholds.
type OptimizerConfig struct {
	MaxMemoriesTotal       int     `toml:"max_memories_total,omitempty"`
	MaxMemoriesPerCategory int     `toml:"max_memories_per_category,omitempty"`
	MaxTotalSizeMB         float64 `toml:"max_total_size_mb,omitempty"`
	WarningThreshold       float64 `toml:"warning_threshold,omitempty"`
	CriticalThreshold      float64 `toml:"critical_threshold,omitempty"`
}

// SchedulerConfig holds autonomous optimization settings. The interval is a
// Go duration string ("6h", "30m").
type SchedulerConfig struct {
	AutoOptimizeEnabled  bool   `toml:"auto_optimize_enabled"`
	OptimizationInterval string `toml:"optimization_interval,omitempty"`
	HistorySize          int    `toml:"history_size,omitempty"`
}

// RetentionConfig holds one category's policy overrides. Zero-value fields
// keep the built-in default for that category; set fields replace it. The
// grace period is a Go duration string.
type RetentionConfig struct {
	MaxAgeDays          int           `toml:"max_age_days,omitempty"`
	MaxCount            int           `toml:"max_count,omitempty"`
	MinAcceptableScore  float64       `toml:"min_acceptable_score,omitempty"`
	Weights             WeightsConfig `toml:"weights,omitempty"`
	ErrorBoost          float64       `toml:"error_boost,omitempty"`
	SolutionBoost       float64       `toml:"solution_boost,omitempty"`
	FrequencySaturation int           `toml:"frequency_saturation,omitempty"`
	MinAgeBeforePurge   string        `toml:"min_age_before_purge,omitempty"`
}

// WeightsConfig mixes the scoring factors. Setting any component replaces the
// whole mix, so all three must be given together and sum to 1.
type WeightsConfig struct {
	Recency   float64 `toml:"recency,omitempty"`
	Frequency float64 `toml:"frequency,omitempty"`
	Quality   float64 `toml:"quality,omitempty"`
}

func (w WeightsConfig) isZero() bool {
	return w.Recency == 0 && w.Frequency == 0 && w.Quality == 0
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported scalar config keys.
// Keys use dotted notation matching the TOML section structure. Per-category
// retention overrides live in [retention.<category>] sections and are edited
// in the config file directly.
var configKeys = map[string]configKeyInfo{
	"storage.provider": {
		get: func(c *Config) string { return c.Storage.Provider },
		set: func(c *Config, v string) error { c.Storage.Provider = v; return nil },
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_url": {
		get: func(c *Config) string { return c.Storage.PostgresURL },
		set: func(c *Config, v string) error { c.Storage.PostgresURL = v; return nil },
	},
	"vector_store.provider": {
		get: func(c *Config) string { return c.VectorStore.Provider },
		set: func(c *Config, v string) error { c.VectorStore.Provider = v; return nil },
	},
	"vector_store.host": {
		get: func(c *Config) string { return c.VectorStore.Host },
		set: func(c *Config, v string) error { c.VectorStore.Host = v; return nil },
	},
	"vector_store.port": {
		get: func(c *Config) string {
			if c.VectorStore.Port == 0 {
				return ""
			}
			return strconv.Itoa(c.VectorStore.Port)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for vector_store.port: %w", err)
			}
			c.VectorStore.Port = n
			return nil
		},
	},
	"vector_store.collection": {
		get: func(c *Config) string { return c.VectorStore.Collection },
		set: func(c *Config, v string) error { c.VectorStore.Collection = v; return nil },
	},
	"event_stream.provider": {
		get: func(c *Config) string { return c.EventStream.Provider },
		set: func(c *Config, v string) error { c.EventStream.Provider = v; return nil },
	},
	"event_stream.brokers": {
		get: func(c *Config) string { return strings.Join(c.EventStream.Brokers, ",") },
		set: func(c *Config, v string) error {
			c.EventStream.Brokers = nil
			for _, b := range strings.Split(v, ",") {
				if b = strings.TrimSpace(b); b != "" {
					c.EventStream.Brokers = append(c.EventStream.Brokers, b)
				}
			}
			return nil
		},
	},
	"event_stream.topic": {
		get: func(c *Config) string { return c.EventStream.Topic },
		set: func(c *Config, v string) error { c.EventStream.Topic = v; return nil },
	},
	"optimizer.max_memories_total": {
		get: func(c *Config) string { return strconv.Itoa(c.Optimizer.MaxMemoriesTotal) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for optimizer.max_memories_total: %w", err)
			}
			c.Optimizer.MaxMemoriesTotal = n
			return nil
		},
	},
	"optimizer.max_memories_per_category": {
		get: func(c *Config) string { return strconv.Itoa(c.Optimizer.MaxMemoriesPerCategory) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for optimizer.max_memories_per_category: %w", err)
			}
			c.Optimizer.MaxMemoriesPerCategory = n
			return nil
		},
	},
	"optimizer.max_total_size_mb": {
		get: func(c *Config) string {
			return strconv.FormatFloat(c.Optimizer.MaxTotalSizeMB, 'f', -1, 64)
		},
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for optimizer.max_total_size_mb: %w", err)
			}
			c.Optimizer.MaxTotalSizeMB = f
			return nil
		},
	},
	"optimizer.warning_threshold": {
		get: func(c *Config) string {
			return strconv.FormatFloat(c.Optimizer.WarningThreshold, 'f', -1, 64)
		},
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for optimizer.warning_threshold: %w", err)
			}
			c.Optimizer.WarningThreshold = f
			return nil
		},
	},
	"optimizer.critical_threshold": {
		get: func(c *Config) string {
			return strconv.FormatFloat(c.Optimizer.CriticalThreshold, 'f', -1, 64)
		},
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for optimizer.critical_threshold: %w", err)
			}
			c.Optimizer.CriticalThreshold = f
			return nil
		},
	},
	"scheduler.auto_optimize_enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.Scheduler.AutoOptimizeEnabled) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for scheduler.auto_optimize_enabled: %w", err)
			}
			c.Scheduler.AutoOptimizeEnabled = b
			return nil
		},
	},
	"scheduler.optimization_interval": {
		get: func(c *Config) string { return c.Scheduler.OptimizationInterval },
		set: func(c *Config, v string) error { c.Scheduler.OptimizationInterval = v; return nil },
	},
	"scheduler.history_size": {
		get: func(c *Config) string { return strconv.Itoa(c.Scheduler.HistorySize) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for scheduler.history_size: %w", err)
			}
			c.Scheduler.HistorySize = n
			return nil
		},
	},
}
