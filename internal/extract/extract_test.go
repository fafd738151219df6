// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-reviewer/internal/httputil"
	"github.com/pdiddy/paper-reviewer/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = 1
}

const samplePaper = `Sparse Mixtures of Experts for Long-Context Retrieval
Jane Doe, John Roe
University of Somewhere

Abstract
We study sparse mixtures of experts for retrieval.
They scale well.

1 Introduction
Retrieval over long contexts is expensive.
2 We show that sparsity helps.
3

2 Related Work
Prior work on dense retrievers.

3. Methodology
We route tokens to experts.
3.1 Routing
Top-2 gating.

IV. EXPERIMENTAL RESULTS
Recall improves by 4 points.

5 Conclusion
Sparsity is useful.

References
[1] A. Author. Some paper. 2020.
`

func TestParse_SplitsSections(t *testing.T) {
	paper, err := Parse(samplePaper)
	require.NoError(t, err)

	assert.Equal(t, "Sparse Mixtures of Experts for Long-Context Retrieval", paper.Title)
	assert.Equal(t, "We study sparse mixtures of experts for retrieval. They scale well.", paper.Abstract)

	var headings []string
	for _, s := range paper.Sections {
		headings = append(headings, s.Heading)
	}
	assert.Equal(t, []string{"Abstract", "Introduction", "Related Work", "Methodology", "Experimental Results", "Conclusion", "References"}, headings)

	assert.Equal(t, "Retrieval over long contexts is expensive. 2 We show that sparsity helps.",
		paper.SectionBody("introduction"), "body lines that merely start with a number stay in the body; page numbers are dropped")
	assert.Contains(t, paper.Canonical(types.SectionMethodology), "3.1 Routing Top-2 gating.", "subsections stay in their parent")
	assert.Equal(t, "Recall improves by 4 points.", paper.Canonical(types.SectionResults))
	assert.Equal(t, samplePaper, paper.RawText)

	summary := paper.SectionSummary()
	for _, name := range []string{types.SectionAbstract, types.SectionIntroduction, types.SectionMethodology, types.SectionResults, types.SectionConclusion, types.SectionReferences} {
		assert.True(t, summary[name], name)
	}
}

func TestParse_InlineAbstract(t *testing.T) {
	paper, err := Parse("A Very Good Title Indeed\nAbstract—We propose a thing.\nIntroduction\nHello there.")
	require.NoError(t, err)
	assert.Equal(t, "We propose a thing.", paper.Abstract)
	require.Len(t, paper.Sections, 2)
}

func TestParse_NoHeadings(t *testing.T) {
	paper, err := Parse("just some text without any structure at all")
	require.NoError(t, err)
	assert.Empty(t, paper.Sections)
	assert.Equal(t, "just some text without any structure at all", paper.MainContent())
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(" \n\t ")
	var xe *Error
	require.ErrorAs(t, err, &xe)
	assert.Equal(t, KindEmpty, xe.Kind)
}

func TestTruncateBody(t *testing.T) {
	sentence := strings.Repeat("word ", 20) + "end. "
	long := strings.Repeat(sentence, 40)
	got := truncateBody(long)
	assert.LessOrEqual(t, len(got), maxSectionLen)
	assert.True(t, strings.HasSuffix(got, "end."), "cut at a sentence boundary")

	noStops := strings.Repeat("x", maxSectionLen+100)
	got = truncateBody(noStops)
	assert.Equal(t, maxSectionLen+3, len(got))
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestExtract_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		kind ErrorKind
	}{
		{"empty input", nil, KindEmpty},
		{"not a pdf", []byte("<html>hello</html>"), KindUnsupported},
		{"truncated pdf", []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog"), KindCorrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.data)
			var xe *Error
			require.True(t, errors.As(err, &xe), "got %v", err)
			assert.Equal(t, tt.kind, xe.Kind)
		})
	}
}

func TestResolve(t *testing.T) {
	assert.Equal(t, arxivPDFBase+"2301.07041", Resolve("arXiv:2301.07041"))
	assert.Equal(t, arxivPDFBase+"2301.07041v2", Resolve(" 2301.07041v2 "))
	assert.Equal(t, "paper.pdf", Resolve("paper.pdf"))
	assert.Equal(t, "https://example.com/p.pdf", Resolve("https://example.com/p.pdf"))
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://arxiv.org/pdf/1706.03762"))
	assert.True(t, IsURL("http://localhost:8080/x.pdf"))
	assert.False(t, IsURL("paper.pdf"))
	assert.False(t, IsURL("ftp://example.com/x.pdf"))
	assert.False(t, IsURL("https://"))
}

func TestLoader_FetchRetriesAndResolvesArxiv(t *testing.T) {
	calls := 0
	var gotPath, gotAccept string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		gotPath, gotAccept = r.URL.Path, r.Header.Get("Accept")
		w.Write([]byte("not really a pdf"))
	}))
	defer ts.Close()

	old := arxivPDFBase
	arxivPDFBase = ts.URL + "/pdf/"
	defer func() { arxivPDFBase = old }()

	l := &Loader{Client: ts.Client(), Logger: zerolog.Nop()}
	_, err := l.Load(context.Background(), "arXiv:1706.03762")

	var xe *Error
	require.ErrorAs(t, err, &xe, "download succeeded, extraction rejects the body")
	assert.Equal(t, KindUnsupported, xe.Kind)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "/pdf/1706.03762", gotPath)
	assert.Equal(t, "application/pdf", gotAccept)
}

func TestLoader_FetchNotFound(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	l := &Loader{Client: ts.Client(), Logger: zerolog.Nop()}
	_, err := l.Fetch(context.Background(), ts.URL+"/missing.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")

	var xe *Error
	assert.False(t, errors.As(err, &xe), "download failures are not extraction errors")
}

func TestLoader_LocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paper.pdf")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

	l := NewLoader(types.DefaultConfig().Download, zerolog.Nop())
	_, err := l.Load(context.Background(), path)
	var xe *Error
	require.ErrorAs(t, err, &xe)
	assert.Equal(t, KindUnsupported, xe.Kind)

	_, err = l.Load(context.Background(), filepath.Join(dir, "missing.pdf"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
