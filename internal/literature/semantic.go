// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package literature

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/pdiddy/paper-reviewer/internal/httputil"
	"github.com/pdiddy/paper-reviewer/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

// Request pacing. The free tier tolerates roughly one call every three seconds.
var (
	semanticKeyedInterval = time.Second
	semanticAnonInterval  = 3 * time.Second
)

const semanticFields = "title,abstract,authors,externalIds,year,venue,citationCount,url"

// ErrMissingAPIKey is reported when Semantic Scholar has no key and anonymous
// access is disabled.
var ErrMissingAPIKey = errors.New("no API key configured and anonymous access disabled")

// SemanticScholarSource queries the Semantic Scholar Graph API. All searches
// through one value share a token bucket, so concurrent units are paced.
type SemanticScholarSource struct {
	Client         *http.Client
	APIKey         string
	AllowAnonymous bool
	UserAgent      string
	MaxRetries     int
	Logger         zerolog.Logger

	limiter *rate.Limiter
}

// NewSemanticScholarSource builds the source from configuration.
func NewSemanticScholarSource(client *http.Client, cfg types.LiteratureConfig, log zerolog.Logger) *SemanticScholarSource {
	interval := semanticAnonInterval
	if cfg.SemanticScholar.APIKey != "" {
		interval = semanticKeyedInterval
	}
	return &SemanticScholarSource{
		Client:         client,
		APIKey:         cfg.SemanticScholar.APIKey,
		AllowAnonymous: cfg.SemanticScholar.AllowAnonymous,
		UserAgent:      cfg.UserAgent,
		MaxRetries:     cfg.SemanticScholar.MaxRetries,
		Logger:         log,
		limiter:        rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Name returns the source identifier.
func (s *SemanticScholarSource) Name() string { return SourceSemanticScholar }

// Search queries Semantic Scholar and returns at most limit candidates.
func (s *SemanticScholarSource) Search(ctx context.Context, query string, limit int) ([]types.Candidate, error) {
	if s.APIKey == "" && !s.AllowAnonymous {
		return nil, &SourceError{Source: SourceSemanticScholar, Kind: KindAuth, Err: ErrMissingAPIKey}
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &SourceError{Source: SourceSemanticScholar, Kind: KindMalformed, Err: fmt.Errorf("empty query")}
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, &SourceError{Source: SourceSemanticScholar, Kind: KindTimeout, Err: err}
		}
	}

	params := url.Values{
		"query":  {query},
		"limit":  {strconv.Itoa(limit)},
		"fields": {semanticFields},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, semanticAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &SourceError{Source: SourceSemanticScholar, Kind: KindMalformed, Err: err}
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}
	if s.APIKey != "" {
		req.Header.Set("x-api-key", s.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, s.MaxRetries, s.Logger)
	if err != nil {
		return nil, transportError(SourceSemanticScholar, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(SourceSemanticScholar, resp.StatusCode)
	}

	var sr semanticResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&sr); err != nil {
		return nil, &SourceError{Source: SourceSemanticScholar, Kind: KindMalformed, Err: fmt.Errorf("parsing Semantic Scholar response: %w", err)}
	}

	out := make([]types.Candidate, 0, len(sr.Data))
	for _, p := range sr.Data {
		c := types.Candidate{
			ID:            p.PaperID,
			Title:         p.Title,
			Year:          p.Year,
			Source:        SourceSemanticScholar,
			URL:           p.URL,
			Snippet:       p.Abstract,
			Venue:         p.Venue,
			CitationCount: p.CitationCount,
		}
		for _, a := range p.Authors {
			c.Authors = append(c.Authors, a.Name)
		}
		if c.URL == "" && p.ExternalIDs.ArXiv != "" {
			c.URL = "https://arxiv.org/abs/" + p.ExternalIDs.ArXiv
		}
		out = append(out, c)
	}
	return out, nil
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID       string              `json:"paperId"`
	Title         string              `json:"title"`
	Abstract      string              `json:"abstract"`
	Year          int                 `json:"year"`
	Venue         string              `json:"venue"`
	URL           string              `json:"url"`
	CitationCount int                 `json:"citationCount"`
	Authors       []semanticAuthor    `json:"authors"`
	ExternalIDs   semanticExternalIDs `json:"externalIds"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticExternalIDs struct {
	DOI   string `json:"DOI"`
	ArXiv string `json:"ArXiv"`
}
