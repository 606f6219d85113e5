// Package initcmder provides the init command for initializing a local .keep
// directory in the current working directory.
package initcmder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mnemosyneco/keep/pkg/cliui"
	"github.com/mnemosyneco/keep/pkg/config"
)

const (
	dirName = ".keep"
)

const initLongDesc string = `Initialize a new .keep/ directory in the current working directory.

Creates a local .keep/ directory that takes precedence over the default
~/.keep/ directory for configuration, the local memory database, and the
optimization history.

This is useful for maintaining separate memory stores per project or
directory.

With --preset, also writes a config.toml for a known deployment shape:
  embedded    SQLite store, no external services
  server      Postgres store, Qdrant vector mirror, Kafka event stream

Examples:
  keep init
  keep init --preset embedded`

const initShortDesc string = "Initialize a local .keep/ directory"

func NewInitCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit(preset)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "",
		fmt.Sprintf("Write a config.toml for a deployment preset (%s)",
			strings.Join(config.ValidPresetNames(), ", ")))

	return cmd
}

func runInit(preset string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		fmt.Printf("Already initialized: %s\n", dir)
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating .keep directory: %w", err)
		}
		fmt.Printf("Initialized .keep directory: %s\n", dir)
	}

	if preset == "" {
		return nil
	}

	cfg, err := config.PresetConfig(preset)
	if err != nil {
		return err
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfger.SaveConfig(cfg); err != nil {
		return fmt.Errorf("writing preset config: %w", err)
	}

	fmt.Printf("  %s Wrote %s config to %s\n",
		cliui.SuccessMark,
		cliui.ValueStyle.Render(preset),
		cliui.DimStyle.Render(cfger.GetTarget()),
	)
	return nil
}
