package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fuelcrawl/domaincrawl/internal/config"
	"github.com/fuelcrawl/domaincrawl/internal/crawler"
	"github.com/fuelcrawl/domaincrawl/internal/discovery"
	applog "github.com/fuelcrawl/domaincrawl/internal/log"
	"github.com/fuelcrawl/domaincrawl/internal/metrics"
	"github.com/fuelcrawl/domaincrawl/internal/model"
	"github.com/fuelcrawl/domaincrawl/internal/pool"
	"github.com/fuelcrawl/domaincrawl/internal/state"
	"github.com/fuelcrawl/domaincrawl/internal/storage"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl the seed domains and the domains discovered from them",
		Long: `Crawl registers the seed domains, starts the workers and runs until no
domain is pending or being crawled.

Each domain is traversed depth-first from <scheme>://<domain>/. Pages and
resources are saved below <output-dir>/<domain>/. Links to other domains whose
names contain a keyword are added to the work list and crawled by the same run.

Interrupting the run (Ctrl-C) stops the workers at the next URL; domains that
were never claimed stay in pending_domains.txt for the next run.

Examples:
  # Crawl the built-in seed list
  domaincrawl crawl

  # Crawl your own seeds with 4 workers
  domaincrawl crawl -s www.example-fuel.com -s www.example-tank.com -w 4

  # Save a Markdown summary and expose metrics while running
  domaincrawl crawl -m -o summary.md --metrics-addr 127.0.0.1:9090`,
		Args: cobra.NoArgs,
		RunE: runCrawlCmd,
	}

	addCommonFlags(cmd)
	cmd.Flags().StringSliceP("seed", "s", nil,
		"Seed site (repeatable); replaces the configured seed list")
	cmd.Flags().IntP("workers", "w", 0,
		"Number of workers (default: one per seed)")
	cmd.Flags().Bool("follow-assets", false,
		"Also follow <script src> and <link href>")
	cmd.Flags().Bool("endpoints", false,
		"Write endpoints.txt with every visited URL of each domain")
	cmd.Flags().String("metrics-addr", "",
		"Serve Prometheus metrics on this address (e.g. 127.0.0.1:9090)")

	return cmd
}

func runCrawlCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildCrawlConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := applog.NewLogger(cmd.ErrOrStderr(), cfg.Verbose, cfg.JSONLog)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cfg, cmd.OutOrStdout(), logger)
}

// buildCrawlConfig adds the crawl-only flags to the common configuration.
func buildCrawlConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		if cfg.Seeds, err = flags.GetStringSlice("seed"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("workers") {
		if cfg.Workers, err = flags.GetInt("workers"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("follow-assets") {
		if cfg.FollowAssets, err = flags.GetBool("follow-assets"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("endpoints") {
		if cfg.WriteEndpoints, err = flags.GetBool("endpoints"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("metrics-addr") {
		if cfg.MetricsAddr, err = flags.GetString("metrics-addr"); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// runCrawl runs the worker pool over the seeds of cfg until quiescence or
// until ctx is cancelled, then prints the run summary to out.
func runCrawl(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) error {
	seeds, err := cfg.SeedDomains()
	if err != nil {
		return err
	}
	workers := cfg.WorkerCount(len(seeds))

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		if _, err := m.Serve(ctx, cfg.MetricsAddr, logger); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
	}

	store, err := state.Open(cfg.OutputDir, discovery.NewFilter(cfg.KeywordSet()),
		state.WithLogger(logger),
		state.WithObserver(m),
	)
	if err != nil {
		return fmt.Errorf("failed to open crawl state: %w", err)
	}
	if err := store.Seed(seeds); err != nil {
		return fmt.Errorf("failed to seed crawl state: %w", err)
	}

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return err
	}

	hist, err := openHistory(ctx, cfg, seeds, workers, logger)
	if err != nil {
		return err
	}

	engineOpts := []crawler.EngineOption{
		crawler.WithScheme(cfg.Scheme),
		crawler.WithTimeouts(cfg.PageTimeout, cfg.ResourceTimeout),
		crawler.WithResourceExtensions(cfg.ExtensionSet()),
		crawler.WithFollowAssets(cfg.FollowAssets),
		crawler.WithEndpoints(cfg.WriteEndpoints),
		crawler.WithProposer(store),
		crawler.WithRecorder(m),
		crawler.WithEngineLogger(logger),
	}
	if hist != nil {
		engineOpts = append(engineOpts, crawler.WithRecorder(hist.recorder))
	}
	engine := crawler.NewEngine(fetcher, storage.New(cfg.OutputDir), engineOpts...)

	summary := model.NewRunSummary(hist.runID())
	logger.Info("starting crawl",
		"seeds", len(seeds),
		"pending", store.Counts().Pending,
		"workers", workers,
		"output", cfg.OutputDir,
	)

	p := pool.New(store, engine,
		pool.WithSize(workers),
		pool.WithLogger(logger),
		pool.WithResultHandler(func(stats *model.DomainStats) {
			m.ObserveDomain(stats)
			hist.recordDomain(stats)
		}),
	)
	results, runErr := p.Run(ctx)

	for _, stats := range results {
		summary.Add(stats)
	}
	summary.Pending = store.Pending()
	summary.FinishedAt = time.Now()
	hist.finish(ctx, summary, logger)

	if n := store.PersistErrors(); n > 0 {
		logger.Warn("domain lists could not always be saved", "failures", n)
	}

	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
		logger.Warn("crawl interrupted", "pending", len(summary.Pending))
	default:
		return fmt.Errorf("crawl failed: %w", runErr)
	}

	return writeSummary(cfg, out, summary)
}
