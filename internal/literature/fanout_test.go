// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package literature

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-reviewer/internal/observability"
	"github.com/pdiddy/paper-reviewer/pkg/types"
)

// fakeSource answers every query with the same candidates, optionally after
// a delay. When ignoreCtx is set the delay is not interrupted by cancellation.
type fakeSource struct {
	name      string
	results   []types.Candidate
	err       error
	delay     func() time.Duration
	ignoreCtx bool
	panicMsg  string
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Search(ctx context.Context, _ string, _ int) ([]types.Candidate, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.delay != nil {
		d := f.delay()
		if f.ignoreCtx {
			time.Sleep(d)
		} else {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([]types.Candidate, len(f.results))
	copy(out, f.results)
	return out, nil
}

func cand(title, author string, year int) types.Candidate {
	return types.Candidate{ID: title, Title: title, Authors: []string{author}, Year: year}
}

func testOptions(priority ...string) Options {
	opts := DefaultOptions()
	opts.TimeoutPerSource = 2 * time.Second
	opts.Priority = priority
	return opts
}

func titles(cs []types.Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Title + "@" + c.Source
	}
	return out
}

func TestSearch_HigherPrioritySourceWinsDuplicate(t *testing.T) {
	k1 := cand("Graph Attention Networks", "Petar Velickovic", 2018)
	k2 := cand("Semi-Supervised Classification with GCNs", "Thomas Kipf", 2017)

	a := &fakeSource{name: "a", results: []types.Candidate{k1}}
	b := &fakeSource{name: "b", results: []types.Candidate{k1, k2}}

	set := Search(context.Background(), []string{"graph neural networks"}, []Source{a, b}, testOptions("a", "b"))

	require.Len(t, set.Candidates, 2)
	assert.Equal(t, "Graph Attention Networks", set.Candidates[0].Title)
	assert.Equal(t, "a", set.Candidates[0].Source)
	assert.Equal(t, "Semi-Supervised Classification with GCNs", set.Candidates[1].Title)
	assert.Equal(t, "b", set.Candidates[1].Source)
	assert.Equal(t, []string{"a", "b"}, set.SourcesQueried)
	assert.Empty(t, set.SourcesFailed)
	assert.Empty(t, set.Failures)
	assert.Equal(t, 1, set.DuplicatesRemoved)
	assert.False(t, set.Degraded())
}

func TestSearch_OneSourceFails(t *testing.T) {
	a := &fakeSource{name: "a", results: []types.Candidate{
		cand("Paper One", "Ada Lovelace", 2020),
		cand("Paper Two", "Alan Turing", 2021),
	}}
	b := &fakeSource{name: "b", err: &SourceError{Kind: KindRateLimited, Status: 429}}

	set := Search(context.Background(), []string{"q1", "q2"}, []Source{a, b}, testOptions("b", "a"))

	assert.Equal(t, []string{"a"}, set.SourcesQueried)
	assert.Equal(t, []string{"b"}, set.SourcesFailed)
	for _, c := range set.Candidates {
		assert.Equal(t, "a", c.Source)
	}
	require.Len(t, set.Failures, 2)
	assert.Equal(t, types.SourceFailure{Source: "b", Query: "q1", Kind: "rate_limited", Message: "b: rate_limited (HTTP 429)"}, set.Failures[0])
	assert.Equal(t, "q2", set.Failures[1].Query)
	// The same two papers came back for both queries.
	assert.Len(t, set.Candidates, 2)
	assert.Equal(t, 2, set.DuplicatesRemoved)
}

func TestSearch_AllSourcesFail(t *testing.T) {
	a := &fakeSource{name: "a", err: errors.New("connection refused")}
	b := &fakeSource{name: "b", err: &SourceError{Kind: KindAuth, Status: 401}}

	set := Search(context.Background(), []string{"q"}, []Source{a, b}, testOptions())

	assert.Empty(t, set.Candidates)
	assert.Empty(t, set.SourcesQueried)
	assert.Equal(t, []string{"a", "b"}, set.SourcesFailed)
	assert.True(t, set.Degraded())
	require.Len(t, set.Failures, 2)
	assert.Equal(t, "network", set.Failures[0].Kind)
	assert.Equal(t, "auth", set.Failures[1].Kind)
}

func TestSearch_PartialSourceCountsAsQueried(t *testing.T) {
	s := &sequenceSource{name: "flaky", answers: []error{errors.New("boom"), nil}}

	set := Search(context.Background(), []string{"q1", "q2"}, []Source{s}, testOptions())

	assert.Equal(t, []string{"flaky"}, set.SourcesQueried)
	assert.Empty(t, set.SourcesFailed)
	require.Len(t, set.Failures, 1)
	assert.Equal(t, "q1", set.Failures[0].Query)
	assert.Equal(t, []string{"Result for q2@flaky"}, titles(set.Candidates))
}

// sequenceSource fails or succeeds per query, keyed by query order "q1", "q2", ...
type sequenceSource struct {
	name    string
	answers []error
}

func (s *sequenceSource) Name() string { return s.name }

func (s *sequenceSource) Search(_ context.Context, query string, _ int) ([]types.Candidate, error) {
	var i int
	fmt.Sscanf(query, "q%d", &i)
	if err := s.answers[i-1]; err != nil {
		return nil, err
	}
	return []types.Candidate{cand("Result for "+query, "Grace Hopper", 2019)}, nil
}

func TestSearch_TimeoutAbandonsSlowSource(t *testing.T) {
	fast := &fakeSource{name: "fast", results: []types.Candidate{cand("Fast Paper", "A B", 2020)}}
	slow := &fakeSource{
		name:      "slow",
		results:   []types.Candidate{cand("Slow Paper", "C D", 2020)},
		delay:     func() time.Duration { return 2 * time.Second },
		ignoreCtx: true,
	}

	opts := testOptions()
	opts.TimeoutPerSource = 50 * time.Millisecond

	start := time.Now()
	set := Search(context.Background(), []string{"q"}, []Source{fast, slow}, opts)

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, []string{"fast"}, set.SourcesQueried)
	assert.Equal(t, []string{"slow"}, set.SourcesFailed)
	require.Len(t, set.Failures, 1)
	assert.Equal(t, string(KindTimeout), set.Failures[0].Kind)
	assert.Equal(t, []string{"Fast Paper@fast"}, titles(set.Candidates))
}

func TestSearch_PanickingSourceIsIsolated(t *testing.T) {
	good := &fakeSource{name: "good", results: []types.Candidate{cand("Fine", "X Y", 2022)}}
	bad := &fakeSource{name: "bad", panicMsg: "nil map"}

	set := Search(context.Background(), []string{"q"}, []Source{good, bad}, testOptions())

	assert.Equal(t, []string{"good"}, set.SourcesQueried)
	assert.Equal(t, []string{"bad"}, set.SourcesFailed)
	require.Len(t, set.Failures, 1)
	assert.Contains(t, set.Failures[0].Message, "nil map")
}

// gatedSource holds every Search call until release is closed. started and
// returned count calls entering and leaving Search.
type gatedSource struct {
	name     string
	results  []types.Candidate
	release  chan struct{}
	started  *sync.WaitGroup
	returned *sync.WaitGroup
}

func (g *gatedSource) Name() string { return g.name }

func (g *gatedSource) Search(ctx context.Context, _ string, _ int) ([]types.Candidate, error) {
	defer g.returned.Done()
	g.started.Done()
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	out := make([]types.Candidate, len(g.results))
	copy(out, g.results)
	return out, nil
}

func TestSearch_MergeIgnoresArrivalOrder(t *testing.T) {
	shared := cand("Shared Result", "Jane Doe", 2021)
	results := map[string][]types.Candidate{
		"a": {shared, cand("Only A 1", "P Q", 2020), cand("Only A 2", "P Q", 2019)},
		"b": {shared, cand("Only B", "R S", 2018)},
		"c": {shared, cand("Only A 1", "P Q", 2020), cand("Only C", "T U", 2017), cand("Only C 2", "T U", 2016)},
	}
	names := []string{"a", "b", "c"}
	queries := []string{"q1", "q2"}

	// run releases the sources one at a time in the given order, letting each
	// answer every query before the next is released.
	run := func(order []int) types.LiteratureSet {
		var started sync.WaitGroup
		started.Add(len(names) * len(queries))
		gates := make([]*gatedSource, len(names))
		sources := make([]Source, len(names))
		for i, n := range names {
			gates[i] = &gatedSource{name: n, results: results[n], release: make(chan struct{}), started: &started, returned: &sync.WaitGroup{}}
			gates[i].returned.Add(len(queries))
			sources[i] = gates[i]
		}

		done := make(chan types.LiteratureSet, 1)
		go func() { done <- Search(context.Background(), queries, sources, testOptions("b", "a", "c")) }()

		started.Wait()
		for _, i := range order {
			close(gates[i].release)
			gates[i].returned.Wait()
		}
		return <-done
	}

	permutations := [][]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}
	baseline := run(permutations[0])
	require.Len(t, baseline.Candidates, 6)
	assert.Equal(t, 12, baseline.DuplicatesRemoved)

	for _, order := range permutations[1:] {
		got := run(order)
		require.Equal(t, baseline, got, "release order %v", order)
	}
}

func TestSearch_LimitAndScores(t *testing.T) {
	a := &fakeSource{name: "a", results: []types.Candidate{
		cand("One", "A A", 2020),
		cand("Two", "B B", 2020),
		cand("Three", "C C", 2020),
		cand("Four", "D D", 2020),
	}}

	opts := testOptions()
	opts.LimitPerSource = 3
	set := Search(context.Background(), []string{"q"}, []Source{a}, opts)

	require.Len(t, set.Candidates, 3)
	assert.InDelta(t, 1.0, set.Candidates[0].RelevanceScore, 1e-9)
	assert.InDelta(t, 0.55, set.Candidates[1].RelevanceScore, 1e-9)
	assert.InDelta(t, 0.1, set.Candidates[2].RelevanceScore, 1e-9)
	assert.Equal(t, []int{0, 1, 2}, []int{set.Candidates[0].Rank, set.Candidates[1].Rank, set.Candidates[2].Rank})
}

func TestSearch_TiesBrokenByPriority(t *testing.T) {
	a := &fakeSource{name: "a", results: []types.Candidate{cand("From A", "A A", 2020)}}
	b := &fakeSource{name: "b", results: []types.Candidate{cand("From B", "B B", 2020)}}

	set := Search(context.Background(), []string{"q"}, []Source{a, b}, testOptions("b", "a"))

	assert.Equal(t, []string{"From B@b", "From A@a"}, titles(set.Candidates))
}

func TestSearch_NoQueries(t *testing.T) {
	a := &fakeSource{name: "a"}
	set := Search(context.Background(), nil, []Source{a}, testOptions())

	assert.Empty(t, set.Candidates)
	assert.Empty(t, set.SourcesQueried)
	assert.Empty(t, set.SourcesFailed)
}

func TestSearch_MaxConcurrency(t *testing.T) {
	var inFlight, peak int32
	src := &countingSource{inFlight: &inFlight, peak: &peak}

	opts := testOptions()
	opts.MaxConcurrency = 2
	Search(context.Background(), []string{"q1", "q2", "q3", "q4", "q5"}, []Source{src}, opts)

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

// countingSource tracks how many searches run at once.
type countingSource struct {
	inFlight *int32
	peak     *int32
}

func (c *countingSource) Name() string { return "counting" }

func (c *countingSource) Search(_ context.Context, _ string, _ int) ([]types.Candidate, error) {
	n := atomic.AddInt32(c.inFlight, 1)
	for {
		p := atomic.LoadInt32(c.peak)
		if n <= p || atomic.CompareAndSwapInt32(c.peak, p, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	atomic.AddInt32(c.inFlight, -1)
	return nil, nil
}

func TestSearch_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	a := &fakeSource{name: "a", results: []types.Candidate{cand("X", "A A", 2020), cand("Y", "B B", 2020)}}
	b := &fakeSource{name: "b", err: &SourceError{Kind: KindMalformed}}

	opts := testOptions()
	opts.Metrics = m
	Search(context.Background(), []string{"q"}, []Source{a, b}, opts)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SourceSearches.WithLabelValues("a", observability.OutcomeCompleted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SourceSearches.WithLabelValues("b", observability.OutcomeFailed)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CandidatesMerged))
}
