// Package configcmder provides the config command for managing persistent
// keep configuration stored in the .keep/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent keep configuration.

Configuration is stored as config.toml in the .keep/ directory. Keys use
dotted notation matching the TOML section structure:
  storage.provider, storage.sqlite_path, storage.postgres_url,
  vector_store.provider, vector_store.host, vector_store.port,
  vector_store.collection,
  event_stream.provider, event_stream.brokers, event_stream.topic,
  optimizer.max_memories_total, optimizer.max_memories_per_category,
  optimizer.max_total_size_mb, optimizer.warning_threshold,
  optimizer.critical_threshold,
  scheduler.auto_optimize_enabled, scheduler.optimization_interval,
  scheduler.history_size

Per-category retention overrides live in [retention.<category>] sections and
are edited in the config file directly.

Use subcommands to get, set, or list configuration values:
  keep config set <key> <value>    Set a configuration value
  keep config get <key>            Get a configuration value
  keep config list                 List all configuration values

Examples:
  keep config set storage.provider sqlite
  keep config set optimizer.max_memories_total 2000
  keep config get scheduler.optimization_interval
  keep config list`

const configShortDesc string = "Manage persistent keep configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
