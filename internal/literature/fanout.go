// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package literature

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/paper-reviewer/internal/observability"
	"github.com/pdiddy/paper-reviewer/pkg/types"
)

// DefaultPriority orders sources for dedup, highest first.
var DefaultPriority = []string{SourceSemanticScholar, SourceArxiv, SourceOpenAlex}

// Options controls one fan-out.
type Options struct {
	// LimitPerSource caps the candidates requested from each (query, source) unit.
	LimitPerSource int

	// TimeoutPerSource bounds each unit, retries included.
	TimeoutPerSource time.Duration

	// Priority lists source names, highest first. Unlisted sources rank lowest.
	Priority []string

	// MaxConcurrency bounds the number of units in flight. Zero runs them all at once.
	MaxConcurrency int

	Logger  zerolog.Logger
	Metrics *observability.Metrics
}

// DefaultOptions returns the options the review pipeline uses.
func DefaultOptions() Options {
	return Options{
		LimitPerSource:   5,
		TimeoutPerSource: 30 * time.Second,
		Priority:         DefaultPriority,
		Logger:           zerolog.Nop(),
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.LimitPerSource <= 0 {
		o.LimitPerSource = d.LimitPerSource
	}
	if o.TimeoutPerSource <= 0 {
		o.TimeoutPerSource = d.TimeoutPerSource
	}
	if o.Priority == nil {
		o.Priority = d.Priority
	}
	return o
}

// slot holds the outcome of one (query, source) unit. Each unit writes only
// its own slot.
type slot struct {
	candidates []types.Candidate
	err        *SourceError
}

// Search runs every (query, source) pair concurrently, each under its own
// timeout, then merges the answers. Source failures are reported in the
// returned set, never as an error; a fan-out in which every source failed
// yields an empty, degraded set.
func Search(ctx context.Context, queries []string, sources []Source, opts Options) types.LiteratureSet {
	opts = opts.withDefaults()
	log := opts.Logger

	slots := make([]slot, len(queries)*len(sources))

	var g errgroup.Group
	if opts.MaxConcurrency > 0 {
		g.SetLimit(opts.MaxConcurrency)
	}
	for qi, q := range queries {
		for si, src := range sources {
			idx := qi*len(sources) + si
			g.Go(func() error {
				slots[idx] = runUnit(ctx, q, src, opts)
				return nil
			})
		}
	}
	_ = g.Wait()

	set := merge(queries, sources, slots, opts.Priority)
	opts.Metrics.ObserveMerge(len(set.Candidates), set.DuplicatesRemoved)
	log.Debug().
		Int("candidates", len(set.Candidates)).
		Int("duplicates_removed", set.DuplicatesRemoved).
		Strs("sources_failed", set.SourcesFailed).
		Msg("literature fan-out finished")
	return set
}

// runUnit calls one source under the unit deadline. A source that overruns
// is abandoned; its late answer lands in a buffered channel nobody reads.
func runUnit(ctx context.Context, query string, src Source, opts Options) slot {
	name := src.Name()
	log := observability.WithSearchContext(opts.Logger, query, name)
	start := time.Now()

	uctx, cancel := context.WithTimeout(ctx, opts.TimeoutPerSource)
	defer cancel()

	type reply struct {
		candidates []types.Candidate
		err        error
	}
	ch := make(chan reply, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- reply{err: fmt.Errorf("source panicked: %v", r)}
			}
		}()
		c, err := src.Search(uctx, query, opts.LimitPerSource)
		ch <- reply{candidates: c, err: err}
	}()

	var s slot
	select {
	case r := <-ch:
		if r.err != nil {
			s.err = asSourceError(name, r.err)
		} else {
			s.candidates = score(name, r.candidates, opts.LimitPerSource)
		}
	case <-uctx.Done():
		s.err = &SourceError{Source: name, Kind: KindTimeout, Err: uctx.Err()}
	}

	outcome := observability.OutcomeCompleted
	if s.err != nil {
		outcome = observability.OutcomeFailed
		if s.err.Kind == KindTimeout {
			outcome = observability.OutcomeTimeout
		}
		log.Warn().Err(s.err).Str("kind", string(s.err.Kind)).Msg("literature search failed")
	} else {
		log.Debug().Int("results", len(s.candidates)).Dur("elapsed", time.Since(start)).Msg("literature search completed")
	}
	opts.Metrics.ObserveSearch(name, outcome, time.Since(start))
	return s
}

// score truncates a source answer to limit and stamps rank and relevance.
func score(source string, in []types.Candidate, limit int) []types.Candidate {
	if len(in) > limit {
		in = in[:limit]
	}
	out := make([]types.Candidate, len(in))
	for i, c := range in {
		c.Source = source
		c.Rank = i
		c.RelevanceScore = positionScore(i, len(in))
		out[i] = c
	}
	return out
}

// positionScore is 1.0 for the first result falling linearly to 0.1 for the last.
func positionScore(rank, n int) float64 {
	if n <= 1 {
		return 1.0
	}
	return 1.0 - float64(rank)/float64(n-1)*0.9
}

// priorityOf maps source names to weights; earlier names weigh more.
func priorityOf(order []string) map[string]int {
	p := make(map[string]int, len(order))
	for i, name := range order {
		if _, dup := p[name]; !dup {
			p[name] = len(order) - i
		}
	}
	return p
}

// merge walks the slots in (query, source, rank) order so the result does not
// depend on which unit finished first. Of two duplicates the higher-priority
// candidate is kept as the source returned it; on a tie the first seen wins.
func merge(queries []string, sources []Source, slots []slot, priority []string) types.LiteratureSet {
	prio := priorityOf(priority)
	set := types.LiteratureSet{
		Candidates:     []types.Candidate{},
		SourcesQueried: []string{},
		SourcesFailed:  []string{},
	}

	index := make(map[string]int)
	for qi, q := range queries {
		for si, src := range sources {
			s := slots[qi*len(sources)+si]
			if s.err != nil {
				set.Failures = append(set.Failures, types.SourceFailure{
					Source:  src.Name(),
					Query:   q,
					Kind:    string(s.err.Kind),
					Message: s.err.Error(),
				})
				continue
			}
			for _, c := range s.candidates {
				key := DedupKey(c)
				j, seen := index[key]
				if !seen {
					index[key] = len(set.Candidates)
					set.Candidates = append(set.Candidates, c)
					continue
				}
				set.DuplicatesRemoved++
				if prio[c.Source] > prio[set.Candidates[j].Source] {
					set.Candidates[j] = c
				}
			}
		}
	}

	for si, src := range sources {
		completed := false
		for qi := range queries {
			if slots[qi*len(sources)+si].err == nil {
				completed = true
				break
			}
		}
		if completed {
			set.SourcesQueried = append(set.SourcesQueried, src.Name())
		} else if len(queries) > 0 {
			set.SourcesFailed = append(set.SourcesFailed, src.Name())
		}
	}

	sort.SliceStable(set.Candidates, func(i, j int) bool {
		a, b := set.Candidates[i], set.Candidates[j]
		if a.RelevanceScore != b.RelevanceScore {
			return a.RelevanceScore > b.RelevanceScore
		}
		return prio[a.Source] > prio[b.Source]
	})
	return set
}
