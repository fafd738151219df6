// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package literature

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-reviewer/internal/httputil"
	"github.com/pdiddy/paper-reviewer/pkg/types"
)

// openAlexAPIBase is the OpenAlex works endpoint. Declared as a var so tests
// can substitute an httptest server.
var openAlexAPIBase = "https://api.openalex.org/works"

// OpenAlexSource queries the OpenAlex works search.
type OpenAlexSource struct {
	Client     *http.Client
	UserAgent  string
	Email      string
	MaxRetries int
	Logger     zerolog.Logger
}

// NewOpenAlexSource builds the source from configuration.
func NewOpenAlexSource(client *http.Client, cfg types.LiteratureConfig, log zerolog.Logger) *OpenAlexSource {
	return &OpenAlexSource{
		Client:     client,
		UserAgent:  cfg.UserAgent,
		Email:      cfg.OpenAlex.Email,
		MaxRetries: cfg.OpenAlex.MaxRetries,
		Logger:     log,
	}
}

// Name returns the source identifier.
func (s *OpenAlexSource) Name() string { return SourceOpenAlex }

// Search runs a relevance-ranked works search.
func (s *OpenAlexSource) Search(ctx context.Context, query string, limit int) ([]types.Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &SourceError{Source: SourceOpenAlex, Kind: KindMalformed, Err: fmt.Errorf("empty query")}
	}
	if limit > 200 {
		limit = 200
	}

	params := url.Values{
		"search":   {query},
		"per_page": {strconv.Itoa(limit)},
		"page":     {"1"},
	}
	if s.Email != "" {
		params.Set("mailto", s.Email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, openAlexAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &SourceError{Source: SourceOpenAlex, Kind: KindMalformed, Err: err}
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, s.MaxRetries, s.Logger)
	if err != nil {
		return nil, transportError(SourceOpenAlex, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(SourceOpenAlex, resp.StatusCode)
	}

	var body openAlexResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&body); err != nil {
		return nil, &SourceError{Source: SourceOpenAlex, Kind: KindMalformed, Err: fmt.Errorf("parsing OpenAlex response: %w", err)}
	}

	out := make([]types.Candidate, 0, len(body.Results))
	for _, w := range body.Results {
		if strings.TrimSpace(w.Title) == "" {
			continue
		}
		c := types.Candidate{
			ID:      strings.TrimPrefix(w.ID, "https://openalex.org/"),
			Title:   collapseSpace(w.Title),
			Year:    w.PublicationYear,
			Source:  SourceOpenAlex,
			URL:     w.ID,
			Snippet: abstractFromIndex(w.AbstractInvertedIndex),
			Venue:   w.PrimaryLocation.Source.DisplayName,
		}
		if w.DOI != "" {
			c.URL = w.DOI
		}
		for _, a := range w.Authorships {
			if a.Author.DisplayName != "" {
				c.Authors = append(c.Authors, a.Author.DisplayName)
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// abstractFromIndex rebuilds plain text from OpenAlex's inverted index,
// which maps each word to the positions it occupies.
func abstractFromIndex(index map[string][]int) string {
	if len(index) == 0 {
		return ""
	}
	type token struct {
		pos  int
		word string
	}
	var tokens []token
	for word, positions := range index {
		for _, p := range positions {
			tokens = append(tokens, token{pos: p, word: word})
		}
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].pos < tokens[j].pos })

	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = t.word
	}
	return strings.Join(words, " ")
}

type openAlexResponse struct {
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	ID                    string           `json:"id"`
	Title                 string           `json:"title"`
	DOI                   string           `json:"doi"`
	PublicationYear       int              `json:"publication_year"`
	AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`
	Authorships           []struct {
		Author struct {
			DisplayName string `json:"display_name"`
		} `json:"author"`
	} `json:"authorships"`
	PrimaryLocation struct {
		Source struct {
			DisplayName string `json:"display_name"`
		} `json:"source"`
	} `json:"primary_location"`
}
