// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-reviewer/internal/archive"
	"github.com/pdiddy/paper-reviewer/internal/extract"
	"github.com/pdiddy/paper-reviewer/internal/literature"
	"github.com/pdiddy/paper-reviewer/internal/observability"
	"github.com/pdiddy/paper-reviewer/internal/pipeline"
	"github.com/pdiddy/paper-reviewer/internal/reasoning"
	"github.com/pdiddy/paper-reviewer/internal/report"
	"github.com/pdiddy/paper-reviewer/internal/review"
	"github.com/pdiddy/paper-reviewer/pkg/types"
)

var reviewCmd = &cobra.Command{
	Use:   "review <pdf-path | pdf-url | arxiv-id>",
	Short: "Review one paper and write the report",
	Long: `Review extracts the paper text, runs the metadata, methodology, contributions,
literature, impact, verdict, and social stages in order, and writes the review.

Progress is narrated on stderr. The report goes to stdout unless --output is
given. A run that stops early still writes the partial review and exits
non-zero.`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	f := reviewCmd.Flags()
	f.StringP("output", "o", "", "write the report to this file instead of stdout")
	f.String("format", "md", "report format: md, html, json, or yaml")
	f.Bool("no-toc", false, "omit the table of contents")
	f.Bool("no-metadata", false, "omit the review details section")
	f.Int("max-results", 0, "related papers requested per source (default from config)")
	f.Bool("no-social", false, "skip the social media stage")
	f.Bool("continue-on-error", false, "run every stage even after one fails")
	f.BoolP("verbose", "v", false, "narrate each stage in detail")
	f.Bool("archive", false, "save the finished review to the archive database")
	f.String("metrics-out", "", "write run metrics in Prometheus text format to this file")
	f.String("model", "", "model identifier (overrides config)")

	_ = viper.BindPFlag("review.continue_on_error", f.Lookup("continue-on-error"))
	_ = viper.BindPFlag("literature.max_results", f.Lookup("max-results"))
	_ = viper.BindPFlag("model.model", f.Lookup("model"))

	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noSocial, _ := cmd.Flags().GetBool("no-social"); noSocial {
		cfg.Review.IncludeSocialContent = false
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	reportFormat, err := report.ParseFormat(format)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	log := observability.NewLogger(cfg.Logging)
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	source := args[0]
	paper, err := extract.NewLoader(cfg.Download, log).Load(ctx, source)
	if err != nil {
		return fmt.Errorf("reading paper: %w", err)
	}

	reviewer, err := newReviewer(cfg, log, metrics)
	if err != nil {
		return err
	}
	verbose, _ := cmd.Flags().GetBool("verbose")
	reviewer.Observer = &review.Narrator{Out: os.Stderr, Verbose: verbose}

	state, err := reviewer.Review(ctx, paper, review.Options{
		ContinueOnError:      cfg.Review.ContinueOnError,
		MaxLiteratureResults: cfg.Literature.MaxResults,
		IncludeSocialContent: cfg.Review.IncludeSocialContent,
	})
	if err != nil {
		return err
	}

	noTOC, _ := cmd.Flags().GetBool("no-toc")
	noMeta, _ := cmd.Flags().GetBool("no-metadata")
	opts := report.Options{Source: source, TOC: !noTOC, Metadata: !noMeta}
	outPath, _ := cmd.Flags().GetString("output")
	if err := writeReport(outPath, state, reportFormat, opts); err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetBool("archive"); save {
		if err := archiveReview(context.WithoutCancel(ctx), cfg.Archive.Path, state, source); err != nil {
			log.Error().Err(err).Msg("could not archive review")
		}
	}
	if path, _ := cmd.Flags().GetString("metrics-out"); path != "" {
		if err := prometheus.WriteToTextfile(path, reg); err != nil {
			log.Error().Err(err).Str("path", path).Msg("could not write metrics")
		}
	}

	if state.Halted {
		return fmt.Errorf("review stopped early with %d error(s)", len(state.Errors))
	}
	return nil
}

// newReviewer wires the reasoning client and literature sources from cfg.
func newReviewer(cfg types.Config, log zerolog.Logger, metrics *observability.Metrics) (*review.Reviewer, error) {
	invoker, err := reasoning.New(cfg.Model, review.Prompts(), log)
	if err != nil {
		return nil, fmt.Errorf("creating reasoning client: %w", err)
	}
	client := &http.Client{Timeout: cfg.Literature.Timeout}
	return &review.Reviewer{
		Invoker: invoker,
		Sources: literature.NewSources(client, cfg.Literature, log),
		Search: literature.Options{
			TimeoutPerSource: cfg.Literature.TimeoutPerSource,
			Priority:         cfg.Literature.Priority,
		},
		MaxQueries: cfg.Literature.MaxQueries,
		Logger:     log,
		Metrics:    metrics,
	}, nil
}

func writeReport(path string, state *pipeline.ReviewState, format report.Format, opts report.Options) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating report file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := report.Render(w, state, format, opts); err != nil {
		return err
	}
	if path != "" {
		fmt.Fprintf(os.Stderr, "Review written to %s\n", path)
	}
	return nil
}

func archiveReview(ctx context.Context, path string, state *pipeline.ReviewState, source string) error {
	store, err := archive.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	entry, err := store.Save(ctx, state, source)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Archived as %s\n", entry.RunID)
	return nil
}
