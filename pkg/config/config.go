package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/mnemosyneco/keep/pkg/dotdir"
)

const (
	configFile = "config.toml"

	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

type Configer struct {
	ddm        *dotdir.Manager
	targetPath string
}

func NewConfiger(override string) (*Configer, error) {
	cfger := &Configer{}

	cfger.ddm = dotdir.NewManager()
	target, err := cfger.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	// If no .keep/ directory was resolved, targetPath stays empty;
	// LoadConfig will return defaults and SaveConfig will error clearly.
	if target == "" {
		return cfger, nil
	}

	path := filepath.Join(target, configFile)
	_, err = os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Always set targetPath when the directory exists so SaveConfig
	// can create or overwrite the file.
	cfger.targetPath = path

	return cfger, nil
}

// ValidConfigKeys returns the sorted list of all supported configuration key names.
func ValidConfigKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}

	// Return in a stable, logical order matching the TOML section layout.
	ordered := []string{
		"storage.provider",
		"storage.sqlite_path",
		"storage.postgres_url",
		"vector_store.provider",
		"vector_store.host",
		"vector_store.port",
		"vector_store.collection",
		"event_stream.provider",
		"event_stream.brokers",
		"event_stream.topic",
		"optimizer.max_memories_total",
		"optimizer.max_memories_per_category",
		"optimizer.max_total_size_mb",
		"optimizer.warning_threshold",
		"optimizer.critical_threshold",
		"scheduler.auto_optimize_enabled",
		"scheduler.optimization_interval",
		"scheduler.history_size",
	}

	// Sanity: only return keys that actually exist in the map.
	result := make([]string, 0, len(ordered))
	for _, k := range ordered {
		if _, ok := configKeys[k]; ok {
			result = append(result, k)
		}
	}

	// Append any keys in the map that we missed in the ordered list.
	seen := make(map[string]bool, len(result))
	for _, k := range result {
		seen[k] = true
	}
	for _, k := range keys {
		if !seen[k] {
			result = append(result, k)
		}
	}

	return result
}

// IsValidConfigKey returns true if the given key is a supported configuration key.
func IsValidConfigKey(key string) bool {
	_, ok := configKeys[key]
	return ok
}

func (c *Configer) GetTarget() string {
	return c.targetPath
}

// LoadConfig loads the configuration from config.toml in the target .keep/ directory.
// If the file does not exist, returns NewDefaultConfig() so callers always receive
// a fully-populated Config with sane defaults. Fields explicitly set in the file
// override the defaults.
func (c *Configer) LoadConfig() (*Config, error) {
	if c.targetPath == "" {
		return NewDefaultConfig(), nil
	}

	data, err := os.ReadFile(c.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := ParseConfigTOML(data)
	if err != nil {
		return nil, err
	}

	// Merge in defaults: fill in any zero-value fields from the loaded config
	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults fills zero-value fields in cfg with values from NewDefaultConfig().
func applyDefaults(cfg *Config) {
	defaults := NewDefaultConfig()

	if cfg.Version == 0 {
		cfg.Version = defaults.Version
	}

	if cfg.Storage.Provider == "" {
		cfg.Storage.Provider = defaults.Storage.Provider
	}

	if cfg.VectorStore.Provider == "" {
		cfg.VectorStore.Provider = defaults.VectorStore.Provider
	}
	if cfg.VectorStore.Host == "" {
		cfg.VectorStore.Host = defaults.VectorStore.Host
	}
	if cfg.VectorStore.Port == 0 {
		cfg.VectorStore.Port = defaults.VectorStore.Port
	}
	if cfg.VectorStore.Collection == "" {
		cfg.VectorStore.Collection = defaults.VectorStore.Collection
	}

	if cfg.EventStream.Provider == "" {
		cfg.EventStream.Provider = defaults.EventStream.Provider
	}
	if cfg.EventStream.Topic == "" {
		cfg.EventStream.Topic = defaults.EventStream.Topic
	}

	if cfg.Optimizer.MaxMemoriesTotal == 0 {
		cfg.Optimizer.MaxMemoriesTotal = defaults.Optimizer.MaxMemoriesTotal
	}
	if cfg.Optimizer.MaxMemoriesPerCategory == 0 {
		cfg.Optimizer.MaxMemoriesPerCategory = defaults.Optimizer.MaxMemoriesPerCategory
	}
	if cfg.Optimizer.MaxTotalSizeMB == 0 {
		cfg.Optimizer.MaxTotalSizeMB = defaults.Optimizer.MaxTotalSizeMB
	}
	if cfg.Optimizer.WarningThreshold == 0 {
		cfg.Optimizer.WarningThreshold = defaults.Optimizer.WarningThreshold
	}
	if cfg.Optimizer.CriticalThreshold == 0 {
		cfg.Optimizer.CriticalThreshold = defaults.Optimizer.CriticalThreshold
	}

	if cfg.Scheduler.OptimizationInterval == "" {
		cfg.Scheduler.OptimizationInterval = defaults.Scheduler.OptimizationInterval
	}
	if cfg.Scheduler.HistorySize == 0 {
		cfg.Scheduler.HistorySize = defaults.Scheduler.HistorySize
	}
}

// SaveConfig persists the configuration to config.toml in the target .keep/ directory.
func (c *Configer) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}

	if c.targetPath == "" {
		return errors.New("cannot save empty target path")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(c.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// SetConfigValue loads the config, sets the given key to the given value, and saves it.
// Returns an error if the key is not a valid config key.
func (c *Configer) SetConfigValue(key string, value string) error {
	info, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}

	if err := info.set(cfg, value); err != nil {
		return err
	}

	return c.SaveConfig(cfg)
}

// GetConfigValue loads the config and returns the string representation of the given key.
// Returns an error if the key is not a valid config key.
func (c *Configer) GetConfigValue(key string) (string, error) {
	info, ok := configKeys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}

	return info.get(cfg), nil
}

// PresetConfig returns a Config with sane defaults for the named deployment preset.
// Supported presets: "embedded" (sqlite store, no external services) and
// "server" (postgres store, qdrant vector mirror, kafka event stream).
// Returns an error if the preset name is not recognized.
func PresetConfig(name string) (*Config, error) {
	switch strings.ToLower(name) {
	case "embedded":
		cfg := NewDefaultConfig()
		cfg.Storage = StorageConfig{
			Provider:   "sqlite",
			SQLitePath: "keep.sqlite",
		}
		return cfg, nil

	case "server":
		cfg := NewDefaultConfig()
		cfg.Storage = StorageConfig{
			Provider:    "postgres",
			PostgresURL: "postgres://localhost:5432/keep",
		}
		cfg.VectorStore = VectorStoreConfig{
			Provider:   "qdrant",
			Host:       defaultVectorHost,
			Port:       defaultVectorPort,
			Collection: defaultVectorCollection,
		}
		cfg.EventStream = EventStreamConfig{
			Provider: "kafka",
			Brokers:  []string{"localhost:9092"},
			Topic:    defaultStreamTopic,
		}
		return cfg, nil

	default:
		return nil, fmt.Errorf("unknown preset: %q (available: embedded, server)", name)
	}
}

// ValidPresetNames returns the list of recognized preset names.
func ValidPresetNames() []string {
	return []string{"embedded", "server"}
}

// ParseConfigTOML parses raw TOML bytes into a Config.
// Returns an error if the version field is present and not equal to CurrentV.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}

	if cfg.Version != 0 && cfg.Version != CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}

	return cfg, nil
}
