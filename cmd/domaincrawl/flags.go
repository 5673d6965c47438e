package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fuelcrawl/domaincrawl/internal/config"
)

// addCommonFlags registers the flags shared by crawl and site.
func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .domaincrawl in current or home directory)")
	cmd.Flags().StringP("output-dir", "d", config.DefaultOutputDir,
		"Directory for saved content and domain lists")
	cmd.Flags().String("scheme", config.DefaultScheme,
		"Scheme used to build start URLs (http or https)")
	cmd.Flags().Duration("page-timeout", config.DefaultPageTimeout,
		"Timeout for each page fetch")
	cmd.Flags().Duration("resource-timeout", config.DefaultResourceTimeout,
		"Timeout for each resource download")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")
	cmd.Flags().Bool("no-history", false,
		"Do not record the run in the history database")

	cmd.Flags().BoolP("json", "j", false,
		"Print the summary as JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Print the summary as Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the summary to the given file instead of stdout")
}

// buildConfig loads the configuration file and overlays the flags that were
// set explicitly on the command line.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, path, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if path != "" {
		cfg.ConfigFilePath = path
	}

	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		if cfg.OutputDir, err = flags.GetString("output-dir"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("scheme") {
		if cfg.Scheme, err = flags.GetString("scheme"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("page-timeout") {
		if cfg.PageTimeout, err = flags.GetDuration("page-timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("resource-timeout") {
		if cfg.ResourceTimeout, err = flags.GetDuration("resource-timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("db-dir") {
		if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
			return nil, err
		}
	}

	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	if noHistory {
		cfg.SaveToDB = false
	}

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}

	cfg.Verbose = getBoolFlag(cmd, "verbose")
	cfg.JSONLog = getBoolFlag(cmd, "json-log")

	return cfg, nil
}

// getBoolFlag reads a flag from the command, falling back to the root's
// persistent flags.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}
