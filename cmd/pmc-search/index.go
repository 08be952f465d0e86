// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pmc-search/internal/index"
	"github.com/pdiddy/pmc-search/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the BM25 index for a collection",
	Long: `Index analyzes the contents of every document in a run's collection and
writes <data-dir>/new_index_PMC_Jsonl_<timestamp>/index.db. Without --run the
most recent collection is indexed.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().String("run", "", "run timestamp (YYYY-MM-DD_HH-MM-SS); default latest")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	run, err := resolveRun(cmd, cfg.DataDir)
	if err != nil {
		return err
	}
	_, err = buildIndex(cmd, run)
	return err
}

func buildIndex(cmd *cobra.Command, run types.Run) (index.BuildStats, error) {
	stats, err := index.Build(cmd.Context(), run.CollectionPath(), run.IndexPath(), logger)
	if err != nil {
		return stats, fmt.Errorf("building index: %w", err)
	}
	fmt.Fprintf(os.Stdout, "indexed: %d documents, %d terms (avg length %.1f) in %s\n",
		stats.Documents, stats.Terms, stats.AvgLength, stats.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(os.Stdout, "index: %s\n", run.IndexPath())
	return stats, nil
}
