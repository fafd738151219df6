// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package literature

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-reviewer/internal/httputil"
	"github.com/pdiddy/paper-reviewer/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivSource queries the arXiv Atom API.
type ArxivSource struct {
	Client     *http.Client
	UserAgent  string
	MaxRetries int
	Logger     zerolog.Logger
}

// NewArxivSource builds the source from configuration.
func NewArxivSource(client *http.Client, cfg types.LiteratureConfig, log zerolog.Logger) *ArxivSource {
	return &ArxivSource{
		Client:     client,
		UserAgent:  cfg.UserAgent,
		MaxRetries: cfg.Arxiv.MaxRetries,
		Logger:     log,
	}
}

// Name returns the source identifier.
func (s *ArxivSource) Name() string { return SourceArxiv }

// Search queries arXiv by relevance and returns at most limit candidates.
func (s *ArxivSource) Search(ctx context.Context, query string, limit int) ([]types.Candidate, error) {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return nil, &SourceError{Source: SourceArxiv, Kind: KindMalformed, Err: fmt.Errorf("empty query")}
	}

	params := url.Values{
		"search_query": {"all:" + strings.Join(terms, " AND all:")},
		"start":        {"0"},
		"max_results":  {strconv.Itoa(limit)},
		"sortBy":       {"relevance"},
		"sortOrder":    {"descending"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, arxivAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &SourceError{Source: SourceArxiv, Kind: KindMalformed, Err: err}
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, s.MaxRetries, s.Logger)
	if err != nil {
		return nil, transportError(SourceArxiv, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(SourceArxiv, resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&feed); err != nil {
		return nil, &SourceError{Source: SourceArxiv, Kind: KindMalformed, Err: fmt.Errorf("parsing arXiv response: %w", err)}
	}

	var out []types.Candidate
	for _, entry := range feed.Entries {
		id := extractArxivID(entry.ID)
		if id == "" {
			continue
		}
		c := types.Candidate{
			ID:      id,
			Title:   collapseSpace(entry.Title),
			Snippet: collapseSpace(entry.Summary),
			Source:  SourceArxiv,
			URL:     "https://arxiv.org/abs/" + id,
			Venue:   entry.PrimaryCategory.Term,
		}
		for _, a := range entry.Authors {
			c.Authors = append(c.Authors, strings.TrimSpace(a.Name))
		}
		if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
			c.Year = t.Year()
		}
		out = append(out, c)
	}
	return out, nil
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID              string        `xml:"id"`
	Title           string        `xml:"title"`
	Summary         string        `xml:"summary"`
	Published       string        `xml:"published"`
	Authors         []arxivAuthor `xml:"author"`
	PrimaryCategory struct {
		Term string `xml:"term,attr"`
	} `xml:"primary_category"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" -> "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
