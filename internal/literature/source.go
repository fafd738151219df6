// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package literature queries bibliographic sources concurrently and merges
// their answers into one deduplicated, ranked candidate list.
package literature

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-reviewer/pkg/types"
)

// Source names used in configuration and in candidate records.
const (
	SourceArxiv           = "arxiv"
	SourceSemanticScholar = "semantic_scholar"
	SourceOpenAlex        = "openalex"
)

// Source searches one bibliographic service. Implementations own their retry
// and pacing policy and must honour ctx cancellation.
type Source interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]types.Candidate, error)
}

// ErrorKind classifies a failed search.
type ErrorKind string

const (
	KindTimeout     ErrorKind = "timeout"
	KindRateLimited ErrorKind = "rate_limited"
	KindAuth        ErrorKind = "auth"
	KindMalformed   ErrorKind = "malformed"
	KindNetwork     ErrorKind = "network"
)

// SourceError is returned by sources. It never escapes Search: the fan-out
// turns it into a types.SourceFailure.
type SourceError struct {
	Source string
	Kind   ErrorKind
	Status int
	Err    error
}

func (e *SourceError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Source, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SourceError) Unwrap() error { return e.Err }

// ErrorKind exposes the kind to callers that classify errors generically.
func (e *SourceError) ErrorKind() string { return string(e.Kind) }

// statusError maps a non-200 response to a SourceError.
func statusError(source string, status int) *SourceError {
	kind := KindNetwork
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = KindAuth
	case status == http.StatusTooManyRequests:
		kind = KindRateLimited
	case status >= 400 && status < 500:
		kind = KindMalformed
	}
	return &SourceError{Source: source, Kind: kind, Status: status}
}

// transportError classifies an error from the HTTP round trip.
func transportError(source string, err error) *SourceError {
	kind := KindNetwork
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		kind = KindTimeout
	}
	return &SourceError{Source: source, Kind: kind, Err: err}
}

// asSourceError normalizes any error from a source.
func asSourceError(source string, err error) *SourceError {
	var se *SourceError
	if errors.As(err, &se) {
		cp := *se
		if cp.Source == "" {
			cp.Source = source
		}
		return &cp
	}
	return transportError(source, err)
}

// NewSources builds the enabled sources in configuration order: Semantic
// Scholar, arXiv, then OpenAlex.
func NewSources(client *http.Client, cfg types.LiteratureConfig, log zerolog.Logger) []Source {
	var out []Source
	if cfg.SemanticScholar.Enabled {
		out = append(out, NewSemanticScholarSource(client, cfg, log))
	}
	if cfg.Arxiv.Enabled {
		out = append(out, NewArxivSource(client, cfg, log))
	}
	if cfg.OpenAlex.Enabled {
		out = append(out, NewOpenAlexSource(client, cfg, log))
	}
	return out
}
