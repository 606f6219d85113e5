// Package optimizecmder provides the optimize command for running a single
// optimization pass against the configured memory store.
package optimizecmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mnemosyneco/keep/pkg/cliui"
	"github.com/mnemosyneco/keep/pkg/config"
	"github.com/mnemosyneco/keep/pkg/dotdir"
	streamutils "github.com/mnemosyneco/keep/pkg/eventstream/utils"
	"github.com/mnemosyneco/keep/pkg/logger"
	"github.com/mnemosyneco/keep/pkg/memory"
	memoryutils "github.com/mnemosyneco/keep/pkg/memory/utils"
	"github.com/mnemosyneco/keep/pkg/optimizer"
	"github.com/mnemosyneco/keep/pkg/retention"
	"github.com/mnemosyneco/keep/pkg/scheduler"
	"github.com/mnemosyneco/keep/pkg/strategy"
	"github.com/mnemosyneco/keep/pkg/sweeper"
	"github.com/mnemosyneco/keep/pkg/utils"
	vectorutils "github.com/mnemosyneco/keep/pkg/vector/utils"
)

// maxListedIDs bounds how many purged IDs are printed.
const maxListedIDs = 10

type OptimizeCommander struct {
	configDir string
	dryRun    bool
	debug     bool
}

const optimizeLongDesc string = `Run a single optimization pass.

Forces one optimization run against the configured memory store regardless
of thresholds and interval: scores every record, applies the per-category
retention policies, and removes the lowest-value records needed to restore
the configured limits. Deletions are mirrored to the vector store and an
optimization event is published when those are configured.

With --dry-run, computes and prints the purge decision without deleting
anything.

Examples:
  keep optimize
  keep optimize --dry-run`

const optimizeShortDesc string = "Run a single optimization pass"

func NewOptimizeCmd() *cobra.Command {
	cmder := &OptimizeCommander{}

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: optimizeShortDesc,
		Long:  optimizeLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			return cmder.run()
		},
	}

	cmd.Flags().BoolVar(&cmder.dryRun, "dry-run", false, "Compute the purge decision without applying it")

	return cmd
}

func (c *OptimizeCommander) run() error {
	ctx := context.Background()
	log := logger.New(logger.WithPretty(true), logger.WithDebug(c.debug), logger.WithWriter(os.Stderr))

	cfger, err := config.NewConfiger(c.configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cfg, err := cfger.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	opt, err := buildOptimizer(cfg, log)
	if err != nil {
		return err
	}

	store, err := memoryutils.NewMemoryDriver(ctx, &memoryutils.NewMemoryDriverOpts{
		Provider:    cfg.Storage.Provider,
		SQLitePath:  cfg.Storage.SQLitePath,
		PostgresURL: cfg.Storage.PostgresURL,
		ConfigDir:   c.configDir,
	})
	if err != nil {
		return fmt.Errorf("opening memory store: %w", err)
	}
	defer store.Close()

	if c.dryRun {
		return c.runDry(ctx, store, opt)
	}

	return c.runApply(ctx, cfg, store, opt, log)
}

// runDry computes the forced purge decision without applying it.
func (c *OptimizeCommander) runDry(ctx context.Context, store memory.Driver, opt *optimizer.Optimizer) error {
	recs, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("listing memories: %w", err)
	}

	result := opt.Optimize(recs, strategy.Hybrid, 0.30)

	fmt.Printf("\n  %s %s\n", cliui.KeyStyle.Render("Dry run:"), cliui.DimStyle.Render("nothing was deleted"))
	printResult(&result)
	return nil
}

func (c *OptimizeCommander) runApply(
	ctx context.Context,
	cfg *config.Config,
	store memory.Driver,
	opt *optimizer.Optimizer,
	log *slog.Logger,
) error {
	vec, err := vectorutils.NewVectorDriver(&vectorutils.NewVectorDriverOpts{
		Provider:   cfg.VectorStore.Provider,
		Host:       cfg.VectorStore.Host,
		Port:       cfg.VectorStore.Port,
		APIKey:     cfg.VectorStore.APIKey,
		UseTLS:     cfg.VectorStore.UseTLS,
		Collection: cfg.VectorStore.Collection,
		Logger:     log,
	})
	if err != nil {
		return fmt.Errorf("connecting vector store: %w", err)
	}
	defer vec.Close()

	publisher, err := streamutils.NewPublisher(&streamutils.NewPublisherOpts{
		Provider: cfg.EventStream.Provider,
		Brokers:  cfg.EventStream.Brokers,
		Topic:    cfg.EventStream.Topic,
		Logger:   log,
	})
	if err != nil {
		return fmt.Errorf("connecting event stream: %w", err)
	}
	defer publisher.Close()

	schedCfg, err := cfg.ToSchedulerConfig()
	if err != nil {
		return err
	}

	sched, err := scheduler.New(schedCfg, opt, nil, log)
	if err != nil {
		return err
	}

	swp, err := sweeper.New(sweeper.Config{
		Store:     store,
		Scheduler: sched,
		Vector:    vec,
		Publisher: publisher,
		Logger:    log,
	})
	if err != nil {
		return err
	}

	var outcome scheduler.Outcome
	err = cliui.Step(os.Stdout, "Optimizing memory store", func() error {
		var ferr error
		outcome, ferr = swp.Force(ctx)
		return ferr
	})
	if err != nil {
		return err
	}

	printResult(outcome.Result)

	if err := dotdir.NewManager().AppendHistory(sched.History(), schedCfg.HistorySize, c.configDir); err != nil {
		log.Error("persisting optimization history", "error", err)
	}

	return nil
}

func buildOptimizer(cfg *config.Config, log *slog.Logger) (*optimizer.Optimizer, error) {
	overrides, err := cfg.ToRetentionOverrides()
	if err != nil {
		return nil, err
	}

	table, err := retention.NewTable(overrides)
	if err != nil {
		return nil, err
	}

	sel, err := strategy.NewSelector(table)
	if err != nil {
		return nil, err
	}

	return optimizer.New(cfg.ToLimits(), sel, nil, log)
}

func printResult(result *optimizer.Result) {
	fmt.Printf("\n  %s  %s\n", cliui.KeyStyle.Render("Status: "), cliui.ValueStyle.Render(string(result.Status)))
	fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Removed:"),
		cliui.ValueStyle.Render(fmt.Sprintf("%d of %d", result.MemoriesRemoved, result.Stats.TotalCount)))
	fmt.Printf("  %s  %s\n\n", cliui.KeyStyle.Render("Saved:  "),
		cliui.ValueStyle.Render(fmt.Sprintf("%.2f MB", result.SizeSavedMB)))

	for i, id := range result.PurgedIDs {
		if i == maxListedIDs {
			fmt.Printf("  %s\n", cliui.DimStyle.Render(fmt.Sprintf("… and %d more", len(result.PurgedIDs)-maxListedIDs)))
			break
		}
		fmt.Printf("  %s %s\n", cliui.DimStyle.Render("-"), cliui.ValueStyle.Render(utils.Truncate(id, 48)))
	}
	if len(result.PurgedIDs) > 0 {
		fmt.Println()
	}
}
