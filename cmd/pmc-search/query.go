// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pdiddy/pmc-search/internal/acquire"
	"github.com/pdiddy/pmc-search/internal/index"
	"github.com/pdiddy/pmc-search/internal/search"
	"github.com/pdiddy/pmc-search/pkg/types"
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Rank a collection for a question",
	Long: `Query extracts keywords from the question, ranks the run's index with
BM25, joins each hit with the collection's metadata and writes the results to
<data-dir>/bm25_results_<timestamp>.jsonl. Without a question the query that
built the collection is used; without --run the most recent run is queried.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, queryFlagKeys)
	},
	RunE: runQuery,
}

var queryFlagKeys = map[string]string{
	"top-k": "query.top_k",
	"k1":    "query.bm25.k1",
	"b":     "query.bm25.b",
}

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().Int("top-k", 0, "number of ranked results (default 100)")
	cmd.Flags().Float64("k1", 0, "BM25 term frequency saturation (default 0.9)")
	cmd.Flags().Float64("b", 0, "BM25 length normalization (default 0.4)")
	cmd.Flags().String("format", "text", "output format: text or json")
}

func init() {
	queryCmd.Flags().String("run", "", "run timestamp (YYYY-MM-DD_HH-MM-SS); default latest")
	queryCmd.Flags().StringSlice("keywords", nil, "search these keywords instead of extracting them")
	addQueryFlags(queryCmd)
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	run, err := resolveRun(cmd, cfg.DataDir)
	if err != nil {
		return err
	}

	question := strings.Join(args, " ")
	keywords, _ := cmd.Flags().GetStringSlice("keywords")
	if question == "" && len(keywords) == 0 {
		m, err := acquire.ReadManifest(run.ManifestPath())
		if err != nil {
			return fmt.Errorf("no question given and no manifest for run %s: %w", run.Timestamp, err)
		}
		question = m.Query
		fmt.Fprintf(os.Stdout, "query: %s (from manifest)\n", question)
	}

	return query(cmd, cfg, run, question, keywords)
}

// query runs the query stage for run and prints the results.
func query(cmd *cobra.Command, cfg types.PipelineConfig, run types.Run, question string, keywords []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "text" && format != "json" {
		return fmt.Errorf("unsupported format %q: use text or json", format)
	}

	ix, err := index.Open(run.IndexPath(), cfg.Query.BM25)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no index for run %s: run index first: %w", run.Timestamp, err)
		}
		return err
	}
	defer ix.Close()

	st, err := ix.Stats(cmd.Context())
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"documents":  st.Documents,
		"avg_length": st.AvgLength,
		"analyzer":   st.Analyzer,
		"built_at":   st.BuiltAt,
	}).Debug("index opened")

	progress := os.Stdout
	if format == "json" {
		progress = os.Stderr
	}

	out, err := search.Run(cmd.Context(), ix, search.Request{
		Query:          question,
		Keywords:       keywords,
		TopK:           cfg.Query.TopK,
		CollectionPath: run.CollectionPath(),
		ResultsPath:    run.ResultsPath(),
		Log:            logger,
	}, progress)
	if err != nil {
		return fmt.Errorf("querying: %w", err)
	}

	if format == "json" {
		return search.FormatJSON(out, os.Stdout)
	}
	search.FormatText(out, os.Stdout)
	return nil
}
