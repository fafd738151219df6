// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-reviewer/internal/report"
	"github.com/pdiddy/paper-reviewer/pkg/types"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration to paper-reviewer.yaml",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "paper-reviewer.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating config file: %w", err)
		}
		defer f.Close()
		if err := report.YAML(f, types.DefaultConfig()); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote default configuration to %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with API keys masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cfg.Model.APIKey = mask(cfg.Model.APIKey)
		cfg.Literature.Arxiv.APIKey = mask(cfg.Literature.Arxiv.APIKey)
		cfg.Literature.SemanticScholar.APIKey = mask(cfg.Literature.SemanticScholar.APIKey)
		return report.YAML(os.Stdout, cfg)
	},
}

func mask(key string) string {
	if len(key) <= 8 {
		if key == "" {
			return ""
		}
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")

	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}
