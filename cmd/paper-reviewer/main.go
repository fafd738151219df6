// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-reviewer CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-reviewer/internal/observability"
	"github.com/pdiddy/paper-reviewer/internal/secrets"
	"github.com/pdiddy/paper-reviewer/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// replacer maps config keys to environment names (model.api_key ->
// PAPER_REVIEWER_MODEL_API_KEY).
var replacer = strings.NewReplacer(".", "_")

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

var rootCmd = &cobra.Command{
	Use:   "paper-reviewer",
	Short: "Review research papers with a language model",
	Long: `paper-reviewer reads a research paper (a local PDF, a PDF URL, or an arXiv ID),
runs it through a fixed sequence of analysis stages, searches arXiv and Semantic
Scholar for related work, and writes a reader-friendly review.

A failing stage ends the run by default and the partial review is still written.
Use --continue-on-error to run every stage regardless.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		dir, _ := cmd.Flags().GetString("secrets-dir")
		log := observability.NewLogger(types.LoggingConfig{
			Level:  viper.GetString("logging.level"),
			Format: viper.GetString("logging.format"),
			Output: viper.GetString("logging.output"),
		})
		s, err := secrets.Load(dir, log)
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-reviewer.yaml or ~/.config/paper-reviewer/config.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of API key files")
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error)")
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-reviewer")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-reviewer"))
		}
	}

	if err := setDefaults(viper.GetViper(), types.DefaultConfig()); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: could not register config defaults:", err)
	}

	viper.SetEnvPrefix("PAPER_REVIEWER")
	viper.SetEnvKeyReplacer(replacer)
	viper.AutomaticEnv()
	_ = viper.BindEnv("model.api_key")
	_ = viper.BindEnv("literature.semantic_scholar.api_key")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every key of cfg so that environment variables can
// override keys that no config file mentions.
func setDefaults(v *viper.Viper, cfg types.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	walkDefaults(v, "", tree)
	return nil
}

func walkDefaults(v *viper.Viper, prefix string, tree map[string]any) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			walkDefaults(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// loadConfig decodes the merged configuration, fills API keys from the
// secrets directory or environment, and validates the result.
func loadConfig() (types.Config, error) {
	cfg := types.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}

	if cfg.Model.APIKey == "" {
		key := secrets.OpenRouterKey
		if cfg.Model.Provider == types.ProviderAnthropic {
			key = secrets.AnthropicKey
		}
		cfg.Model.APIKey = secrets.Lookup(loadedSecrets, key)
	}
	if cfg.Literature.SemanticScholar.APIKey == "" {
		cfg.Literature.SemanticScholar.APIKey = secrets.Lookup(loadedSecrets, secrets.SemanticScholarKey)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
