// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pmc-search/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run <query>",
	Short: "Collect, index and query in one step",
	Long: `Run executes collect, index and query for the same query. The run
timestamp is captured once, so the collection, index and results files of
this run share it and never mix with earlier runs.`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := bindFlags(cmd, acquireFlagKeys); err != nil {
			return err
		}
		return bindFlags(cmd, queryFlagKeys)
	},
	RunE: runPipeline,
}

func init() {
	addAcquireFlags(runCmd)
	addQueryFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	question := strings.Join(args, " ")
	run := types.NewRun(cfg.DataDir, time.Now())
	start := time.Now()

	sum, err := collect(cmd, cfg, run, question)
	if err != nil {
		return err
	}
	if sum.Written == 0 {
		fmt.Fprintln(os.Stdout, "collection is empty; nothing to index")
		return nil
	}

	if _, err := buildIndex(cmd, run); err != nil {
		return err
	}
	if err := query(cmd, cfg, run, question, nil); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "\nrun %s finished in %s\n", run.Timestamp, time.Since(start).Round(time.Second))
	return nil
}
