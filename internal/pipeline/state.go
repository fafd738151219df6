// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"time"

	"github.com/google/uuid"
)

// ErrorInfo records one stage failure.
type ErrorInfo struct {
	Stage   string `json:"stage" yaml:"stage"`
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
}

// StageResult is the record of one stage attempt. Each stage produces at
// most one result per run.
type StageResult struct {
	Stage     string        `json:"stage" yaml:"stage"`
	Output    any           `json:"output,omitempty" yaml:"output,omitempty"`
	Warnings  []string      `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Error     *ErrorInfo    `json:"error,omitempty" yaml:"error,omitempty"`
	Completed bool          `json:"completed" yaml:"completed"`
	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// ReviewState accumulates stage results for one run. Only the orchestrator
// writes to it; stages and formatters read through the accessors.
type ReviewState struct {
	RunID      uuid.UUID   `json:"run_id" yaml:"run_id"`
	Errors     []ErrorInfo `json:"errors" yaml:"errors"`
	Warnings   []string    `json:"warnings" yaml:"warnings"`
	Halted     bool        `json:"halted" yaml:"halted"`
	StartedAt  time.Time   `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time   `json:"finished_at" yaml:"finished_at"`

	results []*StageResult
	index   map[string]*StageResult
}

// NewReviewState returns an empty state with a fresh run ID.
func NewReviewState() *ReviewState {
	return &ReviewState{
		RunID:     uuid.New(),
		Errors:    []ErrorInfo{},
		Warnings:  []string{},
		StartedAt: time.Now(),
		index:     make(map[string]*StageResult),
	}
}

// Result returns the recorded result for a stage.
func (s *ReviewState) Result(stage string) (*StageResult, bool) {
	r, ok := s.index[stage]
	return r, ok
}

// Output returns the stage output when the stage completed, nil otherwise.
func (s *ReviewState) Output(stage string) any {
	if r, ok := s.index[stage]; ok && r.Completed {
		return r.Output
	}
	return nil
}

// Completed reports whether the stage ran and succeeded.
func (s *ReviewState) Completed(stage string) bool {
	r, ok := s.index[stage]
	return ok && r.Completed
}

// Results returns the recorded results in execution order.
func (s *ReviewState) Results() []StageResult {
	out := make([]StageResult, len(s.results))
	for i, r := range s.results {
		out[i] = *r
	}
	return out
}

// Duration is the wall time of the run, or zero while it is still running.
func (s *ReviewState) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

func (s *ReviewState) record(r *StageResult) {
	s.results = append(s.results, r)
	s.index[r.Stage] = r
	for _, w := range r.Warnings {
		s.Warnings = append(s.Warnings, r.Stage+": "+w)
	}
	if r.Error != nil {
		s.Errors = append(s.Errors, *r.Error)
	}
}

func (s *ReviewState) halt() {
	s.Halted = true
}

func (s *ReviewState) finish() {
	s.FinishedAt = time.Now()
}

// Output returns the typed output of a completed stage. The second result is
// false when the stage is absent, failed, or produced a different type.
func Output[T any](s *ReviewState, stage string) (T, bool) {
	v, ok := s.Output(stage).(T)
	return v, ok
}
