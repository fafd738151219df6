// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-reviewer/internal/literature"
	"github.com/pdiddy/paper-reviewer/pkg/types"
)

type stubSource struct {
	name    string
	results []types.Candidate
	err     error
	limits  []int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Search(_ context.Context, _ string, limit int) ([]types.Candidate, error) {
	s.limits = append(s.limits, limit)
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

// runSearchWith executes runSearch on a fresh command backed by the given
// sources and returns its output.
func runSearchWith(t *testing.T, sources []literature.Source, args ...string) (string, error) {
	t.Helper()
	require.NoError(t, setDefaults(viper.GetViper(), types.DefaultConfig()))

	old := newSources
	newSources = func(*http.Client, types.LiteratureConfig, zerolog.Logger) []literature.Source { return sources }
	t.Cleanup(func() { newSources = old })

	cmd := &cobra.Command{Use: "search", Args: cobra.MinimumNArgs(1), RunE: runSearch, SilenceUsage: true, SilenceErrors: true}
	addSearchFlags(cmd)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRunSearch_Table(t *testing.T) {
	arxiv := &stubSource{name: literature.SourceArxiv, results: []types.Candidate{
		{Title: "Attention Is All You Need", Authors: []string{"Ashish Vaswani"}, Year: 2017, Source: literature.SourceArxiv},
	}}
	s2 := &stubSource{name: literature.SourceSemanticScholar, results: []types.Candidate{
		{Title: "Attention is all you need.", Authors: []string{"A. Vaswani"}, Year: 2017, Source: literature.SourceSemanticScholar},
		{Title: "Layer Normalization", Authors: []string{"Jimmy Ba"}, Year: 2016, Source: literature.SourceSemanticScholar},
	}}

	out, err := runSearchWith(t, []literature.Source{s2, arxiv}, "--max-results", "4", "transformers", "  ")
	require.NoError(t, err)

	assert.Contains(t, out, "Attention Is All You Need")
	assert.Contains(t, out, "Layer Normalization")
	assert.Contains(t, out, "2 results (1 duplicates removed)")
	assert.Equal(t, []int{4}, arxiv.limits, "blank queries are dropped")
	assert.Equal(t, []int{4}, s2.limits)
}

func TestRunSearch_JSONAndSourceFilter(t *testing.T) {
	arxiv := &stubSource{name: literature.SourceArxiv, results: []types.Candidate{
		{Title: "Deep Residual Learning", Authors: []string{"Kaiming He"}, Year: 2016, Source: literature.SourceArxiv},
	}}
	s2 := &stubSource{name: literature.SourceSemanticScholar}

	out, err := runSearchWith(t, []literature.Source{s2, arxiv}, "--json", "--source", literature.SourceArxiv, "resnet")
	require.NoError(t, err)
	assert.Empty(t, s2.limits, "filtered source is not queried")

	var set types.LiteratureSet
	require.NoError(t, json.Unmarshal([]byte(out), &set))
	require.Len(t, set.Candidates, 1)
	assert.Equal(t, "Deep Residual Learning", set.Candidates[0].Title)
	assert.Equal(t, []string{literature.SourceArxiv}, set.SourcesQueried)
}

func TestRunSearch_Errors(t *testing.T) {
	t.Run("no source left after filter", func(t *testing.T) {
		_, err := runSearchWith(t, []literature.Source{&stubSource{name: literature.SourceArxiv}}, "--source", "nowhere", "q")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no literature source enabled")
	})

	t.Run("every source failed", func(t *testing.T) {
		down := errors.New("connection refused")
		out, err := runSearchWith(t, []literature.Source{
			&stubSource{name: literature.SourceArxiv, err: down},
			&stubSource{name: literature.SourceSemanticScholar, err: down},
		}, "q")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "every literature source failed")
		assert.Contains(t, out, "No results found.")
		assert.Contains(t, out, "warning: arxiv failed")
	})
}
