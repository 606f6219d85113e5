package config

const (
	defaultStorageProvider = "local"

	defaultVectorProvider   = "none"
	defaultVectorHost       = "localhost"
	defaultVectorPort       = 6334
	defaultVectorCollection = "keep_memories"

	defaultStreamProvider = "none"
	defaultStreamTopic    = "keep.optimization"

	defaultMaxMemoriesTotal       = 1000
	defaultMaxMemoriesPerCategory = 500
	defaultMaxTotalSizeMB         = 100.0
	defaultWarningThreshold       = 0.8
	defaultCriticalThreshold      = 0.95

	defaultOptimizationInterval = "6h"
	defaultHistorySize          = 50
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values. Retention stays
// empty by default: the built-in per-category policies apply until a
// [retention.<category>] section overrides them.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Provider: defaultStorageProvider,
		},
		VectorStore: VectorStoreConfig{
			Provider:   defaultVectorProvider,
			Host:       defaultVectorHost,
			Port:       defaultVectorPort,
			Collection: defaultVectorCollection,
		},
		EventStream: EventStreamConfig{
			Provider: defaultStreamProvider,
			Topic:    defaultStreamTopic,
		},
		Optimizer: OptimizerConfig{
			MaxMemoriesTotal:       defaultMaxMemoriesTotal,
			MaxMemoriesPerCategory: defaultMaxMemoriesPerCategory,
			MaxTotalSizeMB:         defaultMaxTotalSizeMB,
			WarningThreshold:       defaultWarningThreshold,
			CriticalThreshold:      defaultCriticalThreshold,
		},
		Scheduler: SchedulerConfig{
			AutoOptimizeEnabled:  true,
			OptimizationInterval: defaultOptimizationInterval,
			HistorySize:          defaultHistorySize,
		},
	}
}
