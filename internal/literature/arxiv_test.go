// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package literature

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-reviewer/internal/httputil"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

const arxivFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:arxiv="http://arxiv.org/schemas/atom">
  <entry>
    <id>http://arxiv.org/abs/1706.03762v7</id>
    <published>2017-06-12T17:57:34Z</published>
    <title>Attention Is All
      You Need</title>
    <summary>  The dominant sequence transduction models...  </summary>
    <author><name>Ashish Vaswani</name></author>
    <author><name>Noam Shazeer</name></author>
    <arxiv:primary_category term="cs.CL" scheme="http://arxiv.org/schemas/atom"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/hep-th/9901001v1</id>
    <published>1999-01-01T00:00:00Z</published>
    <title>Old Physics</title>
    <summary>Strings.</summary>
    <author><name>Someone Else</name></author>
  </entry>
  <entry>
    <id>not-an-arxiv-url</id>
    <title>Skipped</title>
  </entry>
</feed>`

func withArxivServer(t *testing.T, h http.HandlerFunc) *ArxivSource {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	old := arxivAPIBase
	arxivAPIBase = ts.URL
	t.Cleanup(func() { arxivAPIBase = old })
	return &ArxivSource{Client: ts.Client(), UserAgent: "paper-reviewer-test", MaxRetries: 1, Logger: zerolog.Nop()}
}

func TestArxivSearch_ParsesFeed(t *testing.T) {
	var got *http.Request
	src := withArxivServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		fmt.Fprint(w, arxivFeedXML)
	})

	cands, err := src.Search(context.Background(), "attention  transformer", 5)
	require.NoError(t, err)

	q := got.URL.Query()
	assert.Equal(t, "all:attention AND all:transformer", q.Get("search_query"))
	assert.Equal(t, "5", q.Get("max_results"))
	assert.Equal(t, "relevance", q.Get("sortBy"))
	assert.Equal(t, "paper-reviewer-test", got.Header.Get("User-Agent"))

	require.Len(t, cands, 2)
	assert.Equal(t, "1706.03762", cands[0].ID)
	assert.Equal(t, "Attention Is All You Need", cands[0].Title)
	assert.Equal(t, []string{"Ashish Vaswani", "Noam Shazeer"}, cands[0].Authors)
	assert.Equal(t, 2017, cands[0].Year)
	assert.Equal(t, "cs.CL", cands[0].Venue)
	assert.Equal(t, "https://arxiv.org/abs/1706.03762", cands[0].URL)
	assert.Equal(t, "The dominant sequence transduction models...", cands[0].Snippet)
	assert.Equal(t, SourceArxiv, cands[0].Source)
	assert.Equal(t, "hep-th/9901001", cands[1].ID)
}

func TestArxivSearch_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   ErrorKind
	}{
		{"bad request", http.StatusBadRequest, "", KindMalformed},
		{"forbidden", http.StatusForbidden, "", KindAuth},
		{"rate limited after retries", http.StatusTooManyRequests, "", KindRateLimited},
		{"server error after retries", http.StatusServiceUnavailable, "", KindNetwork},
		{"garbage body", http.StatusOK, "<feed><entry>", KindMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := withArxivServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			_, err := src.Search(context.Background(), "q", 5)
			var se *SourceError
			require.True(t, errors.As(err, &se), "got %v", err)
			assert.Equal(t, tt.kind, se.Kind)
			assert.Equal(t, SourceArxiv, se.Source)
		})
	}
}

func TestArxivSearch_EmptyQuery(t *testing.T) {
	src := &ArxivSource{Client: http.DefaultClient}
	_, err := src.Search(context.Background(), "   ", 5)
	var se *SourceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, KindMalformed, se.Kind)
}

func TestExtractArxivID(t *testing.T) {
	tests := []struct{ in, want string }{
		{"http://arxiv.org/abs/2301.07041v1", "2301.07041"},
		{"http://arxiv.org/abs/2301.07041", "2301.07041"},
		{"http://arxiv.org/abs/cs/0112017v2", "cs/0112017"},
		{"http://example.com/paper", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractArxivID(tt.in), tt.in)
	}
}
