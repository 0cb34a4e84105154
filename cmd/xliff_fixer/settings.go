package main

import (
	"fmt"

	"github.com/jonathan/xliff-fixer/internal/config"
	"github.com/jonathan/xliff-fixer/internal/llm"
	"github.com/jonathan/xliff-fixer/internal/repair"
	"github.com/spf13/cobra"
)

// loadSettings resolves configuration: flags, then the --config file, then the environment, then defaults.
func loadSettings(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = *loaded
	}

	cfg = cfg.MergeWithDefaults(config.FromEnv())
	cfg = cfg.MergeWithDefaults(config.Defaults())

	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = verbose
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newService builds the repair service for cfg.
func newService(cfg config.Config) *repair.Service {
	llmConfig := llm.DefaultConfig()
	if cfg.Model != "" {
		llmConfig = llmConfig.WithModel(llm.TierAdvanced, cfg.Model)
	}
	return repair.NewService(repair.Options{
		APIKey:    cfg.APIKey,
		LLMConfig: llmConfig,
		AITimeout: cfg.AITimeout(),
	})
}
