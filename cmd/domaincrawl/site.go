package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fuelcrawl/domaincrawl/internal/config"
	"github.com/fuelcrawl/domaincrawl/internal/crawler"
	applog "github.com/fuelcrawl/domaincrawl/internal/log"
	"github.com/fuelcrawl/domaincrawl/internal/model"
	"github.com/fuelcrawl/domaincrawl/internal/storage"
)

// NewSiteCmd creates the site command.
func NewSiteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "site <url>...",
		Short: "Crawl individual sites without domain discovery",
		Long: `Site crawls each given site in turn, following pages, images, scripts and
stylesheets on the same host. Links to other domains are ignored and the
domain lists are not touched.

Content is saved below <output-dir>/<host>/ with a leading "www." removed from
the host, together with endpoints.txt listing every visited URL.

Examples:
  domaincrawl site https://www.example.com
  domaincrawl site www.example.com example.org -d sites`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSiteCmd,
	}

	addCommonFlags(cmd)
	return cmd
}

func runSiteCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	// The seed list is not used by site; keep Validate from rejecting an
	// empty one in the configuration file.
	cfg.Seeds = args
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := applog.NewLogger(cmd.ErrOrStderr(), cfg.Verbose, cfg.JSONLog)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runSites(ctx, cfg, args, cmd.OutOrStdout(), logger)
}

// siteTarget is a site to crawl and the directory its content goes to.
type siteTarget struct {
	startURL string
	dir      string
}

// parseSiteTarget turns a URL or bare host into a start URL, using scheme
// when none is given.
func parseSiteTarget(raw, scheme string) (siteTarget, error) {
	s := strings.TrimSpace(raw)
	if !strings.Contains(s, "://") {
		s = scheme + "://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return siteTarget{}, fmt.Errorf("%w: %q", config.ErrInvalidSeed, raw)
	}
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	if u.Path == "" {
		u.Path = "/"
	}
	return siteTarget{
		startURL: u.String(),
		dir:      strings.TrimPrefix(u.Host, "www."),
	}, nil
}

// runSites crawls each site sequentially and prints the summary.
func runSites(ctx context.Context, cfg *config.Config, sites []string, out io.Writer, logger *slog.Logger) error {
	targets := make([]siteTarget, 0, len(sites))
	dirs := make([]string, 0, len(sites))
	for _, raw := range sites {
		t, err := parseSiteTarget(raw, cfg.Scheme)
		if err != nil {
			return err
		}
		targets = append(targets, t)
		dirs = append(dirs, t.dir)
	}

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return err
	}

	hist, err := openHistory(ctx, cfg, dirs, 1, logger)
	if err != nil {
		return err
	}

	engineOpts := []crawler.EngineOption{
		crawler.WithScheme(cfg.Scheme),
		crawler.WithTimeouts(cfg.PageTimeout, cfg.ResourceTimeout),
		crawler.WithResourceExtensions(cfg.ExtensionSet()),
		crawler.WithFollowAssets(true),
		crawler.WithEndpoints(true),
		crawler.WithEngineLogger(logger),
	}
	if hist != nil {
		engineOpts = append(engineOpts, crawler.WithRecorder(hist.recorder))
	}
	engine := crawler.NewEngine(fetcher, storage.New(cfg.OutputDir), engineOpts...)

	summary := model.NewRunSummary(hist.runID())
	for i, t := range targets {
		if ctx.Err() != nil {
			for _, rest := range targets[i:] {
				summary.Pending = append(summary.Pending, rest.dir)
			}
			break
		}

		stats, err := engine.CrawlSite(ctx, t.dir, t.startURL)
		if err != nil {
			logger.Error("failed to crawl site", "url", t.startURL, "error", err)
			continue
		}
		hist.recordDomain(stats)
		summary.Add(stats)
	}
	summary.FinishedAt = time.Now()
	hist.finish(ctx, summary, logger)

	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return writeSummary(cfg, out, summary)
}
