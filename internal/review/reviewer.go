// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package review assembles the paper review: the seven analysis stages, the
// prompts they send to the model, and the Reviewer entry point that runs
// them through the pipeline orchestrator.
package review

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-reviewer/internal/literature"
	"github.com/pdiddy/paper-reviewer/internal/observability"
	"github.com/pdiddy/paper-reviewer/internal/pipeline"
	"github.com/pdiddy/paper-reviewer/internal/reasoning"
	"github.com/pdiddy/paper-reviewer/pkg/types"
)

// Defaults applied when Options leave a field zero.
const (
	DefaultMaxLiteratureResults = 5
	DefaultMaxQueries           = 3
)

var validate = validator.New()

// Options controls one review run.
type Options struct {
	// ContinueOnError runs the remaining stages after a failed one.
	ContinueOnError bool

	// MaxLiteratureResults caps candidates requested per source and the
	// related papers passed to the comparison. Zero means the default.
	MaxLiteratureResults int `validate:"gte=0,lte=100"`

	// IncludeSocialContent adds the social stage.
	IncludeSocialContent bool
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		MaxLiteratureResults: DefaultMaxLiteratureResults,
		IncludeSocialContent: true,
	}
}

// Reviewer runs the review pipeline for one paper at a time.
type Reviewer struct {
	Invoker reasoning.Invoker
	Sources []literature.Source

	// Search carries the fan-out settings (timeout, priority, concurrency).
	// LimitPerSource is taken from Options.
	Search literature.Options

	// MaxQueries caps the generated search queries used. Zero means 3.
	MaxQueries int

	Observer pipeline.Observer
	Logger   zerolog.Logger
	Metrics  *observability.Metrics
}

// Stages returns the stage list for opts, in execution order.
func (r *Reviewer) Stages(opts Options) []pipeline.Stage {
	maxResults := opts.MaxLiteratureResults
	if maxResults <= 0 {
		maxResults = DefaultMaxLiteratureResults
	}
	maxQueries := r.MaxQueries
	if maxQueries <= 0 {
		maxQueries = DefaultMaxQueries
	}
	search := r.Search
	search.Logger = r.Logger
	if search.Metrics == nil {
		search.Metrics = r.Metrics
	}
	s := &stageSet{
		invoker:    r.Invoker,
		sources:    r.Sources,
		search:     search,
		maxQueries: maxQueries,
		maxResults: maxResults,
		log:        r.Logger,
	}

	stages := []pipeline.Stage{
		pipeline.Func{StageName: StageMetadata, Fn: s.metadata},
		pipeline.Func{StageName: StageMethodology, Fn: s.methodology},
		pipeline.Func{StageName: StageContributions, Fn: s.contributions},
		pipeline.Func{StageName: StageLiterature, Needs: []string{StageMetadata, StageContributions}, Fn: s.literature},
		pipeline.Func{StageName: StageImpact, Needs: []string{StageMethodology, StageContributions, StageLiterature}, Fn: s.impact},
		pipeline.Func{StageName: StageVerdict, Needs: []string{StageMetadata, StageMethodology, StageContributions, StageLiterature, StageImpact}, Fn: s.verdict},
	}
	if opts.IncludeSocialContent {
		stages = append(stages, pipeline.Func{StageName: StageSocial, Needs: []string{StageMetadata, StageImpact, StageVerdict}, Fn: s.social})
	}
	return stages
}

// Review runs every stage against paper. The error reports invalid input
// only; stage failures are recorded in the returned state.
func (r *Reviewer) Review(ctx context.Context, paper *types.PaperText, opts Options) (*pipeline.ReviewState, error) {
	if err := paper.Validate(); err != nil {
		return nil, err
	}
	if err := validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid review options: %w", err)
	}
	o := &pipeline.Orchestrator{
		Policy:   pipeline.Policy{ContinueOnError: opts.ContinueOnError},
		Observer: r.Observer,
		Logger:   r.Logger,
		Metrics:  r.Metrics,
	}
	return o.Run(ctx, paper, r.Stages(opts)), nil
}
