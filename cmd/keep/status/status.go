// Package statuscmder provides the status command for displaying capacity
// usage of the configured memory store.
package statuscmder

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mnemosyneco/keep/pkg/cliui"
	"github.com/mnemosyneco/keep/pkg/config"
	"github.com/mnemosyneco/keep/pkg/dotdir"
	"github.com/mnemosyneco/keep/pkg/logger"
	memoryutils "github.com/mnemosyneco/keep/pkg/memory/utils"
	"github.com/mnemosyneco/keep/pkg/optimizer"
	"github.com/mnemosyneco/keep/pkg/retention"
	"github.com/mnemosyneco/keep/pkg/strategy"
)

const statusLongDesc string = `Show capacity usage of the configured memory store.

Reads the store configured in the .keep/ directory, aggregates record counts
and sizes, and reports the usage ratio against the configured limits along
with the most recent optimization run.

Examples:
  keep status`

const statusShortDesc string = "Show capacity usage"

func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runStatus(configDir)
		},
	}

	return cmd
}

func runStatus(configDir string) error {
	ctx := context.Background()

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cfg, err := cfger.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := memoryutils.NewMemoryDriver(ctx, &memoryutils.NewMemoryDriverOpts{
		Provider:    cfg.Storage.Provider,
		SQLitePath:  cfg.Storage.SQLitePath,
		PostgresURL: cfg.Storage.PostgresURL,
		ConfigDir:   configDir,
	})
	if err != nil {
		return fmt.Errorf("opening memory store: %w", err)
	}
	defer store.Close()

	recs, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("listing memories: %w", err)
	}

	overrides, err := cfg.ToRetentionOverrides()
	if err != nil {
		return err
	}

	table, err := retention.NewTable(overrides)
	if err != nil {
		return err
	}

	sel, err := strategy.NewSelector(table)
	if err != nil {
		return err
	}

	opt, err := optimizer.New(cfg.ToLimits(), sel, nil, logger.Nop())
	if err != nil {
		return err
	}

	stats := optimizer.Collect(recs)
	ratio, level := opt.Assess(stats)

	fmt.Printf("\n  %s  %s\n", cliui.KeyStyle.Render("Capacity:"), renderLevel(level))
	fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Usage:   "),
		cliui.ValueStyle.Render(fmt.Sprintf("%.1f%%", ratio*100)))
	fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Memories:"),
		cliui.ValueStyle.Render(fmt.Sprintf("%d / %d", stats.TotalCount, cfg.Optimizer.MaxMemoriesTotal)))
	fmt.Printf("  %s  %s\n\n", cliui.KeyStyle.Render("Size:    "),
		cliui.ValueStyle.Render(fmt.Sprintf("%.2f MB / %.0f MB", stats.TotalSizeMB, cfg.Optimizer.MaxTotalSizeMB)))

	categories := make([]string, 0, len(stats.PerCategory))
	for category := range stats.PerCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		fmt.Printf("  %s %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("%-14s", category)),
			cliui.ValueStyle.Render(fmt.Sprintf("%d", stats.PerCategory[category])),
		)
	}
	if len(categories) > 0 {
		fmt.Println()
	}

	history, err := dotdir.NewManager().LoadHistory(configDir)
	if err != nil {
		return fmt.Errorf("loading optimization history: %w", err)
	}

	if len(history) == 0 {
		fmt.Printf("  %s No optimization runs recorded yet.\n\n", cliui.DimStyle.Render("●"))
		return nil
	}

	last := history[len(history)-1]
	fmt.Printf("  %s %s removed %d (%s, %s)\n\n",
		cliui.KeyStyle.Render("Last run:"),
		cliui.ValueStyle.Render(last.Timestamp.Local().Format("2006-01-02 15:04:05")),
		last.MemoriesRemoved,
		cliui.DimStyle.Render(string(last.Trigger)),
		cliui.DimStyle.Render(string(last.Status)),
	)

	return nil
}

func renderLevel(level optimizer.CapacityLevel) string {
	switch level {
	case optimizer.CapacityCritical:
		return cliui.CriticalStyle.Render(level.String())
	case optimizer.CapacityWarning:
		return cliui.WarningStyle.Render(level.String())
	default:
		return cliui.OKStyle.Render(level.String())
	}
}
