// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-reviewer/internal/literature"
	"github.com/pdiddy/paper-reviewer/internal/observability"
)

var searchCmd = &cobra.Command{
	Use:   "search <query> [query...]",
	Short: "Search arXiv and Semantic Scholar for related papers",
	Long: `Search runs the literature fan-out used by the review on its own. Every query
is sent to every enabled source concurrently; results are deduplicated across
sources and ranked by position and source priority. Sources that fail are
reported as warnings.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

// newSources builds the enabled literature sources. Tests replace it with
// in-memory sources.
var newSources = literature.NewSources

func init() {
	addSearchFlags(searchCmd)
	rootCmd.AddCommand(searchCmd)
}

func addSearchFlags(c *cobra.Command) {
	c.Flags().Int("max-results", 0, "results requested per source and query (default from config)")
	c.Flags().StringSlice("source", nil, "restrict to these sources (arxiv, semantic_scholar, openalex)")
	c.Flags().Bool("json", false, "output results as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := observability.NewLogger(cfg.Logging)

	limit, _ := cmd.Flags().GetInt("max-results")
	if limit <= 0 {
		limit = cfg.Literature.MaxResults
	}

	sources := newSources(&http.Client{Timeout: cfg.Literature.Timeout}, cfg.Literature, log)
	if only, _ := cmd.Flags().GetStringSlice("source"); len(only) > 0 {
		sources = slices.DeleteFunc(sources, func(s literature.Source) bool {
			return !slices.Contains(only, s.Name())
		})
	}
	if len(sources) == 0 {
		return fmt.Errorf("no literature source enabled")
	}

	queries := make([]string, 0, len(args))
	for _, a := range args {
		if q := strings.TrimSpace(a); q != "" {
			queries = append(queries, q)
		}
	}

	set := literature.Search(cmd.Context(), queries, sources, literature.Options{
		LimitPerSource:   limit,
		TimeoutPerSource: cfg.Literature.TimeoutPerSource,
		Priority:         cfg.Literature.Priority,
		Logger:           log,
	})

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if err := literature.FormatJSON(set, out); err != nil {
			return err
		}
	} else {
		literature.FormatTable(set, out)
	}
	if set.Degraded() {
		return fmt.Errorf("every literature source failed")
	}
	return nil
}
