package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/mnemosyneco/keep/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the KEEP_ prefix.
//
// Config precedence (highest to lowest):
//  1. Environment variables (KEEP_STORAGE_PROVIDER, KEEP_SCHEDULER_HISTORY_SIZE, etc.)
//  2. config.toml file values
//  3. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: KEEP_STORAGE_PROVIDER, KEEP_EVENT_STREAM_TOPIC, etc.
	v.SetEnvPrefix("KEEP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of
// truth. Per-category retention overrides are map-shaped and come from the
// config file only.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Storage
	v.SetDefault("storage.provider", d.Storage.Provider)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_url", d.Storage.PostgresURL)

	// Vector store
	v.SetDefault("vector_store.provider", d.VectorStore.Provider)
	v.SetDefault("vector_store.host", d.VectorStore.Host)
	v.SetDefault("vector_store.port", d.VectorStore.Port)
	v.SetDefault("vector_store.collection", d.VectorStore.Collection)

	// Event stream
	v.SetDefault("event_stream.provider", d.EventStream.Provider)
	v.SetDefault("event_stream.brokers", d.EventStream.Brokers)
	v.SetDefault("event_stream.topic", d.EventStream.Topic)

	// Optimizer
	v.SetDefault("optimizer.max_memories_total", d.Optimizer.MaxMemoriesTotal)
	v.SetDefault("optimizer.max_memories_per_category", d.Optimizer.MaxMemoriesPerCategory)
	v.SetDefault("optimizer.max_total_size_mb", d.Optimizer.MaxTotalSizeMB)
	v.SetDefault("optimizer.warning_threshold", d.Optimizer.WarningThreshold)
	v.SetDefault("optimizer.critical_threshold", d.Optimizer.CriticalThreshold)

	// Scheduler
	v.SetDefault("scheduler.auto_optimize_enabled", d.Scheduler.AutoOptimizeEnabled)
	v.SetDefault("scheduler.optimization_interval", d.Scheduler.OptimizationInterval)
	v.SetDefault("scheduler.history_size", d.Scheduler.HistorySize)
}
