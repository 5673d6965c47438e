package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for domaincrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domaincrawl",
		Short: "Keyword-driven multi-domain web crawler",
		Long: `domaincrawl crawls a list of seed domains depth-first, saves their pages and
resources to disk, and adds newly discovered domains whose names contain one of
the configured keywords to its work list.

Crawl state lives in <output>/pending_domains.txt and
<output>/scraped_domains.txt, so an interrupted run continues with the
remaining domains the next time it is started.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json-log", false, "Write log lines as JSON")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewSiteCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
