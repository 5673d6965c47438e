package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/fuelcrawl/domaincrawl/internal/config"
	"github.com/fuelcrawl/domaincrawl/internal/database"
	"github.com/fuelcrawl/domaincrawl/internal/state"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the persisted domain lists and recent runs",
		Long: `Status prints the domains waiting in pending_domains.txt, the number of
scraped domains and the most recent runs from the history database.

Examples:
  domaincrawl status
  domaincrawl status --scraped --runs 20`,
		Args: cobra.NoArgs,
		RunE: runStatusCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .domaincrawl in current or home directory)")
	cmd.Flags().StringP("output-dir", "d", config.DefaultOutputDir,
		"Directory holding the domain lists")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")
	cmd.Flags().Bool("scraped", false, "List every scraped domain")
	cmd.Flags().IntP("runs", "n", 5, "Number of recent runs to show (0 to skip)")

	return cmd
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, _, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cmd.Flags().Changed("output-dir") {
		if cfg.OutputDir, err = cmd.Flags().GetString("output-dir"); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("db-dir") {
		if cfg.DBDir, err = cmd.Flags().GetString("db-dir"); err != nil {
			return err
		}
	}
	listScraped, err := cmd.Flags().GetBool("scraped")
	if err != nil {
		return err
	}
	runs, err := cmd.Flags().GetInt("runs")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	pending, err := state.NewListFile(filepath.Join(cfg.OutputDir, state.PendingFile)).Load()
	if err != nil {
		return fmt.Errorf("failed to read pending domains: %w", err)
	}
	scraped, err := state.NewListFile(filepath.Join(cfg.OutputDir, state.ScrapedFile)).Load()
	if err != nil {
		return fmt.Errorf("failed to read scraped domains: %w", err)
	}

	fmt.Fprintf(out, "Output directory: %s\n", cfg.OutputDir)
	fmt.Fprintf(out, "Pending:  %d\n", len(pending))
	fmt.Fprintf(out, "Scraped:  %d\n", len(scraped))
	printDomains(out, "Pending domains", pending)
	if listScraped {
		printDomains(out, "Scraped domains", scraped)
	}

	if runs <= 0 {
		return nil
	}
	return printRuns(cmd, cfg, runs)
}

func printDomains(out io.Writer, title string, set map[string]bool) {
	if len(set) == 0 {
		return
	}
	names := make([]string, 0, len(set))
	for d := range set {
		names = append(names, d)
	}
	slices.Sort(names)

	fmt.Fprintf(out, "\n%s:\n", title)
	for _, d := range names {
		fmt.Fprintf(out, "  %s\n", d)
	}
}

func printRuns(cmd *cobra.Command, cfg *config.Config, limit int) error {
	out := cmd.OutOrStdout()

	// Do not create an empty database just to report that it is empty.
	if _, err := os.Stat(filepath.Join(cfg.DBDir, database.FileName)); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(out, "\nNo runs recorded.")
		return nil
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	records, err := db.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "\nNo runs recorded.")
		return nil
	}

	fmt.Fprintln(out, "\nRecent runs:")
	for _, r := range records {
		status := "running"
		switch {
		case r.Interrupted:
			status = "interrupted"
		case !r.FinishedAt.IsZero():
			status = "finished"
		}
		fmt.Fprintf(out, "  %s  %s  %-11s domains %d, pages %d, resources %d, failures %d, saved %s\n",
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			status,
			r.Domains, r.Pages, r.Resources, r.Failures,
			humanize.Bytes(uint64(max(r.Bytes, 0))),
		)
		if len(r.Seeds) > 0 {
			fmt.Fprintf(out, "      seeds: %s\n", strings.Join(r.Seeds, ", "))
		}
	}
	return nil
}
