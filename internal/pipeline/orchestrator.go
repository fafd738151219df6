// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs an ordered list of analysis stages over one paper,
// accumulating their results in a ReviewState and applying the failure policy
// uniformly: halt on the first failure by default, or carry on and let later
// stages work without the missing results.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-reviewer/internal/observability"
	"github.com/pdiddy/paper-reviewer/pkg/types"
)

// Error kinds recorded for faults that do not carry their own kind.
const (
	KindError     = "error"
	KindPanic     = "panic"
	KindCancelled = "cancelled"
	KindInvalid   = "invalid_pipeline"
)

// Stage is one analysis step. Run reads the paper and any earlier results
// from state and returns its output plus non-fatal warnings. Stages must not
// keep state between runs; the orchestrator attempts each stage once.
type Stage interface {
	Name() string

	// Requires names earlier stages whose output this stage reads. Under
	// continue-on-error a stage still runs when a requirement failed and
	// must treat the missing output as absent.
	Requires() []string

	Run(ctx context.Context, paper *types.PaperText, state *ReviewState) (output any, warnings []string, err error)
}

// Func adapts a function to the Stage interface.
type Func struct {
	StageName string
	Needs     []string
	Fn        func(ctx context.Context, paper *types.PaperText, state *ReviewState) (any, []string, error)
}

func (f Func) Name() string       { return f.StageName }
func (f Func) Requires() []string { return f.Needs }

func (f Func) Run(ctx context.Context, paper *types.PaperText, state *ReviewState) (any, []string, error) {
	return f.Fn(ctx, paper, state)
}

// Policy controls how the orchestrator reacts to a failed stage.
type Policy struct {
	// ContinueOnError runs the remaining stages after a failure instead of
	// halting.
	ContinueOnError bool
}

// Validate checks that stage names are unique and non-empty and that every
// requirement names an earlier stage.
func Validate(stages []Stage) error {
	seen := make(map[string]bool, len(stages))
	all := make(map[string]bool, len(stages))
	for _, s := range stages {
		all[s.Name()] = true
	}
	var errs []error
	for i, s := range stages {
		name := s.Name()
		if name == "" {
			errs = append(errs, fmt.Errorf("stage %d has no name", i))
			continue
		}
		if seen[name] {
			errs = append(errs, fmt.Errorf("stage %q declared twice", name))
		}
		for _, req := range s.Requires() {
			switch {
			case seen[req]:
			case req == name:
				errs = append(errs, fmt.Errorf("stage %q requires itself", name))
			case all[req]:
				errs = append(errs, fmt.Errorf("stage %q requires later stage %q", name, req))
			default:
				errs = append(errs, fmt.Errorf("stage %q requires unknown stage %q", name, req))
			}
		}
		seen[name] = true
	}
	return errors.Join(errs...)
}

// Orchestrator runs stages with an attached observer, logger, and metrics.
// The zero value runs with the default policy and no instrumentation.
type Orchestrator struct {
	Policy   Policy
	Observer Observer
	Logger   zerolog.Logger
	Metrics  *observability.Metrics
}

// Run executes stages against paper with the given policy.
func Run(ctx context.Context, paper *types.PaperText, stages []Stage, policy Policy) *ReviewState {
	o := &Orchestrator{Policy: policy}
	return o.Run(ctx, paper, stages)
}

// Run executes stages strictly in order. The returned state is complete:
// it reflects every stage attempted, and FinishedAt is set. A context
// cancelled between stages halts the run whatever the policy.
func (o *Orchestrator) Run(ctx context.Context, paper *types.PaperText, stages []Stage) *ReviewState {
	state := NewReviewState()
	log := observability.WithRunContext(o.Logger, state.RunID.String())
	defer func() {
		state.finish()
		if state.Halted {
			o.Metrics.ObserveHalt()
		}
		log.Info().
			Bool("halted", state.Halted).
			Int("errors", len(state.Errors)).
			Int("warnings", len(state.Warnings)).
			Dur("elapsed", state.Duration()).
			Msg("review run finished")
		o.notify(Event{Kind: RunFinished, Total: len(stages), State: state})
	}()

	if err := Validate(stages); err != nil {
		state.Errors = append(state.Errors, ErrorInfo{Kind: KindInvalid, Message: err.Error()})
		state.halt()
		return state
	}

	log.Info().Int("stages", len(stages)).Bool("continue_on_error", o.Policy.ContinueOnError).Msg("review run started")

	for i, stage := range stages {
		name := stage.Name()
		if err := ctx.Err(); err != nil {
			state.Errors = append(state.Errors, ErrorInfo{Stage: name, Kind: KindCancelled, Message: err.Error()})
			state.halt()
			log.Warn().Str("stage", name).Err(err).Msg("run cancelled before stage")
			return state
		}

		var pre []string
		for _, req := range stage.Requires() {
			if !state.Completed(req) {
				pre = append(pre, fmt.Sprintf("required stage %q did not complete; running without it", req))
			}
		}

		o.notify(Event{Kind: StageStarted, Stage: name, Index: i, Total: len(stages), State: state})
		log.Debug().Str("stage", name).Int("index", i).Msg("stage started")

		result := o.runStage(ctx, stage, paper, state)
		result.Warnings = append(pre, result.Warnings...)
		state.record(result)

		o.observe(ctx, log, result)
		o.notify(Event{Kind: StageFinished, Stage: name, Index: i, Total: len(stages), Result: result, State: state})

		if result.Error != nil && !o.Policy.ContinueOnError {
			state.halt()
			return state
		}
	}
	return state
}

// runStage invokes one stage, converting an error or a panic into the
// result's Error.
func (o *Orchestrator) runStage(ctx context.Context, stage Stage, paper *types.PaperText, state *ReviewState) (result *StageResult) {
	result = &StageResult{Stage: stage.Name(), StartedAt: time.Now()}
	defer func() {
		if r := recover(); r != nil {
			result.Output = nil
			result.Completed = false
			result.Error = &ErrorInfo{Stage: result.Stage, Kind: KindPanic, Message: fmt.Sprintf("stage panicked: %v", r)}
		}
		result.Duration = time.Since(result.StartedAt)
	}()

	out, warnings, err := stage.Run(ctx, paper, state)
	result.Warnings = warnings
	if err != nil {
		result.Error = &ErrorInfo{Stage: result.Stage, Kind: errorKind(err), Message: err.Error()}
		return result
	}
	result.Output = out
	result.Completed = true
	return result
}

func (o *Orchestrator) observe(ctx context.Context, log zerolog.Logger, r *StageResult) {
	outcome := observability.OutcomeCompleted
	if r.Error != nil {
		outcome = observability.OutcomeFailed
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			outcome = observability.OutcomeTimeout
		}
	}
	o.Metrics.ObserveStage(r.Stage, outcome, r.Duration)

	if r.Error != nil {
		log.Error().Str("stage", r.Stage).Str("kind", r.Error.Kind).Dur("elapsed", r.Duration).Msg(r.Error.Message)
		return
	}
	log.Info().Str("stage", r.Stage).Int("warnings", len(r.Warnings)).Dur("elapsed", r.Duration).Msg("stage completed")
}

func (o *Orchestrator) notify(e Event) {
	if o.Observer != nil {
		o.Observer.Notify(e)
	}
}

// errorKind reports the kind carried by err, if any of the errors in its
// chain expose one.
func errorKind(err error) string {
	var k interface{ ErrorKind() string }
	if errors.As(err, &k) {
		return k.ErrorKind()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCancelled
	}
	return KindError
}
