// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Candidate is one literature-search result, before or after deduplication.
type Candidate struct {
	// ID is the source's own identifier (arXiv ID, Semantic Scholar paper ID).
	ID string `json:"id" yaml:"id"`

	// Title is the paper title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Year is the publication year, 0 when unknown.
	Year int `json:"year" yaml:"year"`

	// Source names the adapter that returned this candidate (e.g. "arxiv").
	Source string `json:"source" yaml:"source"`

	// URL links to the paper landing page or PDF.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Snippet is the abstract or a summary excerpt.
	Snippet string `json:"snippet,omitempty" yaml:"snippet,omitempty"`

	// Venue is the journal, conference, or arXiv category.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// CitationCount is reported by sources that track citations.
	CitationCount int `json:"citation_count,omitempty" yaml:"citation_count,omitempty"`

	// Rank is the 0-based position in the source's response.
	Rank int `json:"rank" yaml:"rank"`

	// RelevanceScore is derived from Rank: 1.0 for the top result, falling
	// linearly to 0.1 for the last one.
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`
}

// SourceFailure describes one failed (query, source) search unit.
type SourceFailure struct {
	Source  string `json:"source" yaml:"source"`
	Query   string `json:"query" yaml:"query"`
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
}

// LiteratureSet is the merged, deduplicated, ranked output of one fan-out.
type LiteratureSet struct {
	// Candidates never share a dedup key and are ordered by relevance.
	Candidates []Candidate `json:"candidates" yaml:"candidates"`

	// SourcesQueried lists sources with at least one completed search.
	SourcesQueried []string `json:"sources_queried" yaml:"sources_queried"`

	// SourcesFailed lists sources whose every search errored or timed out.
	SourcesFailed []string `json:"sources_failed" yaml:"sources_failed"`

	// Failures carries per-search detail, including failures of sources
	// that still appear in SourcesQueried.
	Failures []SourceFailure `json:"failures,omitempty" yaml:"failures,omitempty"`

	// DuplicatesRemoved counts candidates collapsed during the merge.
	DuplicatesRemoved int `json:"duplicates_removed" yaml:"duplicates_removed"`
}

// Degraded reports whether no source completed.
func (s LiteratureSet) Degraded() bool {
	return len(s.SourcesQueried) == 0
}
