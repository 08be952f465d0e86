// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pmc-search CLI.
// Stages: collect (ESearch + EFetch into a JSONL collection), index (BM25
// artifact), query (ranked, metadata-joined results), and run (all three
// under one timestamp).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pmc-search/internal/logging"
	"github.com/pdiddy/pmc-search/internal/secrets"
	"github.com/pdiddy/pmc-search/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const secretsDir = ".secrets/"

var (
	// loadedSecrets holds credentials loaded from .secrets/ at startup.
	loadedSecrets secrets.Secrets

	// logger is configured from the log.* keys before any subcommand runs.
	logger *logrus.Logger
)

// rootCmd is the base command for the pmc-search CLI.
var rootCmd = &cobra.Command{
	Use:   "pmc-search",
	Short: "Collect, index and rank PubMed Central articles for a question",
	Long: `pmc-search builds a local full-text search over PubMed Central.

collect finds articles for a query through NCBI E-utilities and writes the
normalized records to a timestamped JSONL collection. index builds a BM25
index over that collection. query ranks the collection for a question and
writes the results next to it. run does all three with one timestamp.

Credentials are read from .secrets/ncbi-api-key and .secrets/ncbi-email when
not given in the config file or environment.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var logCfg types.LogConfig
		if err := viper.UnmarshalKey("log", &logCfg); err != nil {
			return fmt.Errorf("reading log config: %w", err)
		}
		l, err := logging.New(logCfg, os.Stderr)
		if err != nil {
			return err
		}
		logger = l

		s, err := secrets.Load(secretsDir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.WithField("keys", keys).Debug("loaded secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	setDefaults()

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./pmc-search.yaml or ~/.config/pmc-search/pmc-search.yaml)")
	pf.String("data-dir", "", "directory for collections, indexes and results (default data)")
	pf.String("log-level", "", "log level: debug, info, warn, error (default info)")
	pf.String("log-format", "", "log format: text or json (default text)")
	pf.String("log-file", "", "write logs to this file with rotation instead of stderr")

	for flag, key := range map[string]string{
		"data-dir":   "data_dir",
		"log-level":  "log.level",
		"log-format": "log.format",
		"log-file":   "log.file",
	} {
		_ = viper.BindPFlag(key, pf.Lookup(flag))
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pmc-search")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pmc-search"))
		}
	}

	viper.SetEnvPrefix("PMC_SEARCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
