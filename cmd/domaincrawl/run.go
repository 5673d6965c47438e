package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/fuelcrawl/domaincrawl/internal/config"
	"github.com/fuelcrawl/domaincrawl/internal/crawler"
	"github.com/fuelcrawl/domaincrawl/internal/database"
	"github.com/fuelcrawl/domaincrawl/internal/model"
	"github.com/fuelcrawl/domaincrawl/internal/report"
)

// newFetcher builds the HTTP fetcher from the request settings of cfg.
func newFetcher(cfg *config.Config) (*crawler.Fetcher, error) {
	acceptLanguage, err := cfg.AcceptLanguageHeader()
	if err != nil {
		return nil, err
	}
	return crawler.NewFetcher(&http.Client{},
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithAcceptLanguage(acceptLanguage),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
	), nil
}

// history bundles the database and the recorder of the current run.
// A nil *history records nothing.
type history struct {
	db       *database.HistoryDB
	recorder *database.RunRecorder
}

// openHistory opens the history database and starts a run, unless history
// is disabled in cfg.
func openHistory(ctx context.Context, cfg *config.Config, seeds []string, workers int, logger *slog.Logger) (*history, error) {
	if !cfg.SaveToDB {
		return nil, nil
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	runID, err := db.StartRun(ctx, seeds, workers)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("run started", "run", runID, "db", db.Path())

	return &history{db: db, recorder: db.Recorder(ctx, runID, logger)}, nil
}

func (h *history) runID() string {
	if h == nil {
		return ""
	}
	return h.recorder.RunID()
}

func (h *history) recordDomain(stats *model.DomainStats) {
	if h != nil {
		h.recorder.RecordDomain(stats)
	}
}

// finish stores the run totals and closes the database. It runs after the
// crawl context may have been cancelled, so it never uses that context.
func (h *history) finish(ctx context.Context, summary *model.RunSummary, logger *slog.Logger) {
	if h == nil {
		return
	}
	if err := h.db.FinishRun(context.WithoutCancel(ctx), summary); err != nil {
		logger.Error("failed to finish run", "run", summary.RunID, "error", err)
	}
	if n := h.recorder.Errors(); n > 0 {
		logger.Warn("some history records were not saved", "count", n)
	}
	if err := h.db.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
	}
}

// writeSummary prints summary in the configured format to stdout or to
// cfg.ReportFile.
func writeSummary(cfg *config.Config, stdout io.Writer, summary *model.RunSummary) (err error) {
	out := stdout
	if cfg.ReportFile != "" {
		if dir := filepath.Dir(cfg.ReportFile); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}
		f, ferr := os.Create(cfg.ReportFile)
		if ferr != nil {
			return fmt.Errorf("failed to create report file: %w", ferr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close report file: %w", cerr)
			}
		}()
		out = f
	}

	var w report.Writer
	switch {
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(out)
	case cfg.JSONReport:
		w = report.NewJSONWriter(out, report.WithPrettyPrint())
	default:
		w = report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))
	}

	if _, err := w.Write(summary); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	if cfg.ReportFile != "" {
		fmt.Fprintf(stdout, "Summary written to %s\n", cfg.ReportFile)
	}
	return nil
}
