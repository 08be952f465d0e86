// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pmc-search/internal/eutils"
	"github.com/pdiddy/pmc-search/internal/secrets"
	"github.com/pdiddy/pmc-search/pkg/types"
)

const (
	defaultDataDir    = "data"
	defaultTimeout    = 60 * time.Second
	defaultMaxResults = 500
	defaultDelay      = 340 * time.Millisecond
	defaultTopK       = 100
	defaultMaxRetries = 5
	defaultTool       = "pmc-search"
)

// setDefaults registers every config key so file, env and flag values all
// resolve through viper.
func setDefaults() {
	viper.SetDefault("data_dir", defaultDataDir)

	viper.SetDefault("eutils.timeout", defaultTimeout)
	viper.SetDefault("eutils.user_agent", "pmc-search/"+version)
	viper.SetDefault("eutils.max_retries", defaultMaxRetries)
	viper.SetDefault("eutils.base_url", "")
	viper.SetDefault("eutils.database", "pmc")
	viper.SetDefault("eutils.tool", defaultTool)
	viper.SetDefault("eutils.email", "")
	viper.SetDefault("eutils.api_key", "")

	viper.SetDefault("acquire.max_results", defaultMaxResults)
	viper.SetDefault("acquire.request_delay", defaultDelay)
	viper.SetDefault("acquire.open_access_only", false)
	viper.SetDefault("acquire.extract_keywords", true)

	viper.SetDefault("query.top_k", defaultTopK)
	viper.SetDefault("query.bm25.k1", types.DefaultBM25.K1)
	viper.SetDefault("query.bm25.b", types.DefaultBM25.B)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
	viper.SetDefault("log.file", "")
}

// bindFlags binds command-local flags to config keys. It runs from the
// command's PreRunE so commands sharing a key do not overwrite each other's
// binding.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	return nil
}

// loadConfig resolves the full pipeline configuration, filling NCBI
// credentials from .secrets/ when config leaves them empty.
func loadConfig() (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	cfg.Eutils.APIKey = loadedSecrets.Default(secrets.NCBIAPIKey, cfg.Eutils.APIKey)
	cfg.Eutils.Email = loadedSecrets.Default(secrets.NCBIEmail, cfg.Eutils.Email)
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir
	}
	return cfg, nil
}

func newEutilsClient(cfg types.EutilsConfig) *eutils.Client {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return eutils.NewClient(httpClient, cfg, logger)
}

// resolveRun returns the run named by --run, or the most recent run under
// dataDir when the flag is empty.
func resolveRun(cmd *cobra.Command, dataDir string) (types.Run, error) {
	ts, _ := cmd.Flags().GetString("run")
	if ts == "" {
		return types.LatestRun(dataDir)
	}
	return types.ParseRun(dataDir, ts)
}
