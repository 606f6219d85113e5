// Package servecmder provides the serve command for running the autonomous
// optimization loop.
package servecmder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mnemosyneco/keep/pkg/config"
	"github.com/mnemosyneco/keep/pkg/dotdir"
	streamutils "github.com/mnemosyneco/keep/pkg/eventstream/utils"
	"github.com/mnemosyneco/keep/pkg/logger"
	memoryutils "github.com/mnemosyneco/keep/pkg/memory/utils"
	"github.com/mnemosyneco/keep/pkg/optimizer"
	"github.com/mnemosyneco/keep/pkg/retention"
	"github.com/mnemosyneco/keep/pkg/scheduler"
	"github.com/mnemosyneco/keep/pkg/strategy"
	"github.com/mnemosyneco/keep/pkg/sweeper"
	vectorutils "github.com/mnemosyneco/keep/pkg/vector/utils"
)

type ServeCommander struct {
	configDir    string
	pollInterval time.Duration
	debug        bool
	logger       *slog.Logger
}

const serveLongDesc string = `Run the autonomous optimization loop.

Polls the configured memory store on the poll interval, evaluates the
capacity thresholds and the optimization schedule, and applies whatever purge
the optimizer recommends. Deletions are mirrored to the vector store and
optimization events are published when those are configured.

Retention overrides in config.toml are hot-reloaded; other configuration
changes require a restart.

Examples:
  keep serve
  keep serve --poll-interval 30s`

const serveShortDesc string = "Run the autonomous optimization loop"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			return cmder.run()
		},
	}

	cmd.Flags().DurationVarP(&cmder.pollInterval, "poll-interval", "p", time.Minute,
		"How often to snapshot the store and evaluate triggers")

	return cmd
}

func (c *ServeCommander) run() error {
	c.logger = logger.New(logger.WithJSON(true), logger.WithDebug(c.debug))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfger, err := config.NewConfiger(c.configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cfg, err := cfger.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	table, err := buildTable(cfg)
	if err != nil {
		return err
	}

	sel, err := strategy.NewSelector(table)
	if err != nil {
		return err
	}

	opt, err := optimizer.New(cfg.ToLimits(), sel, nil, c.logger)
	if err != nil {
		return err
	}

	schedCfg, err := cfg.ToSchedulerConfig()
	if err != nil {
		return err
	}

	sched, err := scheduler.New(schedCfg, opt, nil, c.logger)
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

	vec, err := vectorutils.NewVectorDriver(&vectorutils.NewVectorDriverOpts{
		Provider:   cfg.VectorStore.Provider,
		Host:       cfg.VectorStore.Host,
		Port:       cfg.VectorStore.Port,
		APIKey:     cfg.VectorStore.APIKey,
		UseTLS:     cfg.VectorStore.UseTLS,
		Collection: cfg.VectorStore.Collection,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("connecting vector store: %w", err)
	}
	defer vec.Close()

	publisher, err := streamutils.NewPublisher(&streamutils.NewPublisherOpts{
		Provider: cfg.EventStream.Provider,
		Brokers:  cfg.EventStream.Brokers,
		Topic:    cfg.EventStream.Topic,
		Logger:   c.logger,
	})
	if err != nil {
		return fmt.Errorf("connecting event stream: %w", err)
	}
	defer publisher.Close()

	swp, err := sweeper.New(sweeper.Config{
		Store:     store,
		Scheduler: sched,
		Vector:    vec,
		Publisher: publisher,
		Interval:  c.pollInterval,
		Logger:    c.logger,
	})
	if err != nil {
		return err
	}

	// Retention overrides hot-reload on config file changes. The other
	// sections are bound to already-constructed drivers and need a restart.
	stopWatch, err := cfger.Watch(func(next *config.Config) {
		reloaded, rerr := buildTable(next)
		if rerr != nil {
			c.logger.Error("ignoring config change, invalid retention overrides", "error", rerr)
			return
		}
		sel.Reload(reloaded)
		c.logger.Info("reloaded retention policies")
	}, c.logger)
	if err != nil {
		c.logger.Warn("config watching unavailable", "error", err)
	} else {
		defer stopWatch()
	}

	c.logger.Info("starting optimization loop",
		"storage_provider", cfg.Storage.Provider,
		"vector_provider", cfg.VectorStore.Provider,
		"event_stream_provider", cfg.EventStream.Provider,
		"poll_interval", c.pollInterval.String(),
		"auto_optimize", schedCfg.AutoOptimizeEnabled,
	)

	err = swp.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	c.logger.Info("shutting down")

	if err := dotdir.NewManager().AppendHistory(sched.History(), schedCfg.HistorySize, c.configDir); err != nil {
		c.logger.Error("persisting optimization history", "error", err)
	}

	return nil
}

func buildTable(cfg *config.Config) (*retention.Table, error) {
	overrides, err := cfg.ToRetentionOverrides()
	if err != nil {
		return nil, err
	}

	return retention.NewTable(overrides)
}
