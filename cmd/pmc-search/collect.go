// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pmc-search/internal/acquire"
	"github.com/pdiddy/pmc-search/pkg/types"
)

var collectCmd = &cobra.Command{
	Use:   "collect <query>",
	Short: "Fetch PubMed Central articles for a query into a new collection",
	Long: `Collect looks up PubMed Central identifiers for the query's keywords
(--extract-keywords=false searches the full text instead), fetches each
record, and writes articles with full text to
<data-dir>/PMC_Jsonl_<timestamp>/collection.jsonl. Records without a body are
skipped; fetch and parse failures are reported and skipped. A manifest.yaml
next to the collection lists every identifier and its outcome.`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, acquireFlagKeys)
	},
	RunE: runCollect,
}

var acquireFlagKeys = map[string]string{
	"max-results":      "acquire.max_results",
	"delay":            "acquire.request_delay",
	"open-access":      "acquire.open_access_only",
	"extract-keywords": "acquire.extract_keywords",
	"timeout":          "eutils.timeout",
}

func addAcquireFlags(cmd *cobra.Command) {
	cmd.Flags().Int("max-results", 0, "maximum identifiers requested from ESearch (default 500)")
	cmd.Flags().Duration("delay", 0, "pause between record fetches (default 340ms)")
	cmd.Flags().Bool("open-access", false, "restrict the search to the open access subset")
	cmd.Flags().Bool("extract-keywords", true, "search with the query's keywords instead of its full text")
	cmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
}

func init() {
	addAcquireFlags(collectCmd)
	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	run := types.NewRun(cfg.DataDir, time.Now())
	_, err = collect(cmd, cfg, run, strings.Join(args, " "))
	return err
}

// collect runs the acquisition stage for run and prints where its files went.
func collect(cmd *cobra.Command, cfg types.PipelineConfig, run types.Run, query string) (acquire.Summary, error) {
	fmt.Fprintf(os.Stdout, "run: %s\n", run.Timestamp)

	client := newEutilsClient(cfg.Eutils)
	sum, err := acquire.Collect(cmd.Context(), client, acquire.Request{
		Query:           query,
		MaxResults:      cfg.Acquisition.MaxResults,
		OpenAccessOnly:  cfg.Acquisition.OpenAccessOnly,
		ExtractKeywords: cfg.Acquisition.ExtractKeywords,
		Delay:           cfg.Acquisition.RequestDelay,
		Run:             run,
		Log:             logger,
	}, os.Stdout)
	if err != nil {
		return sum, fmt.Errorf("collecting: %w", err)
	}
	if sum.HasFailures() {
		fmt.Fprintf(os.Stdout, "note: %d records failed; see %s\n", sum.Failed, run.ManifestPath())
	}
	return sum, nil
}
