// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-reviewer/internal/literature"
	"github.com/pdiddy/paper-reviewer/internal/pipeline"
	"github.com/pdiddy/paper-reviewer/internal/reasoning"
	"github.com/pdiddy/paper-reviewer/pkg/types"
)

// Stage names, in execution order.
const (
	StageMetadata      = "metadata"
	StageMethodology   = "methodology"
	StageContributions = "contributions"
	StageLiterature    = "literature"
	StageImpact        = "impact"
	StageVerdict       = "verdict"
	StageSocial        = "social"
)

// maxPromptText caps the paper text sent in a single prompt.
const maxPromptText = 20000

// maxTweet is the per-tweet character limit.
const maxTweet = 280

type metadataInput struct{ Text string }

type methodologyInput struct{ Section string }

type contributionsInput struct{ Introduction, Conclusion string }

type queriesInput struct{ Title, Abstract string }

type comparisonInput struct {
	Contributions []string
	Papers        []types.Candidate
}

type impactInput struct {
	Analysis   map[string]any
	Literature *types.Comparison
}

type verdictInput struct{ Analysis map[string]any }

type socialInput struct {
	Title       string
	Takeaways   []string
	FieldImpact types.ImpactScore
}

type queriesReply struct {
	Queries []string `json:"search_queries"`
}

type socialReply struct {
	TwitterThread []string `json:"twitter_thread"`
	LinkedInPost  string   `json:"linkedin_post"`
}

// stageSet holds what the stages of one review share.
type stageSet struct {
	invoker    reasoning.Invoker
	sources    []literature.Source
	search     literature.Options
	maxQueries int
	maxResults int
	log        zerolog.Logger
}

func (s *stageSet) metadata(ctx context.Context, paper *types.PaperText, _ *pipeline.ReviewState) (any, []string, error) {
	var md types.Metadata
	if err := s.invoker.Invoke(ctx, StageMetadata, metadataInput{Text: clip(paper.RawText, maxPromptText)}, &md); err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(md.Title) == "" {
		md.Title = paper.Title
	}
	if strings.TrimSpace(md.Abstract) == "" {
		md.Abstract = paper.Abstract
	}
	if len(md.Authors) == 0 {
		md.Authors = paper.Authors
	}
	return &md, nil, nil
}

func (s *stageSet) methodology(ctx context.Context, paper *types.PaperText, _ *pipeline.ReviewState) (any, []string, error) {
	section := strings.TrimSpace(paper.Canonical(types.SectionMethodology))
	if section == "" {
		return nil, []string{"no methodology section found"}, nil
	}
	var m types.MethodologyAnalysis
	if err := s.invoker.Invoke(ctx, StageMethodology, methodologyInput{Section: section}, &m); err != nil {
		return nil, nil, err
	}
	var warnings []string
	m.Reproducibility.Score = clampScore(m.Reproducibility.Score, "reproducibility score", &warnings)
	return &m, warnings, nil
}

func (s *stageSet) contributions(ctx context.Context, paper *types.PaperText, _ *pipeline.ReviewState) (any, []string, error) {
	intro := strings.TrimSpace(paper.Canonical(types.SectionIntroduction))
	concl := strings.TrimSpace(paper.Canonical(types.SectionConclusion))

	var warnings []string
	if intro == "" || concl == "" {
		fallback := strings.TrimSpace(paper.Abstract)
		if fallback == "" {
			fallback = clip(paper.MainContent(), maxPromptText/2)
		}
		warnings = append(warnings, "missing introduction or conclusion section; using the abstract instead")
		if intro == "" {
			intro = fallback
		}
		if concl == "" {
			concl = fallback
		}
	}

	var c types.ContributionAnalysis
	if err := s.invoker.Invoke(ctx, StageContributions, contributionsInput{Introduction: intro, Conclusion: concl}, &c); err != nil {
		return nil, nil, err
	}
	for i := range c.Novelty {
		c.Novelty[i].NoveltyScore = clampScore(c.Novelty[i].NoveltyScore, "novelty score", &warnings)
		c.Novelty[i].SignificanceScore = clampScore(c.Novelty[i].SignificanceScore, "significance score", &warnings)
	}
	return &c, warnings, nil
}

// literature generates search queries, fans them out to the sources, and
// compares the paper with what was found. Source failures and an empty
// result are warnings; the stage fails only when the comparison call does.
func (s *stageSet) literature(ctx context.Context, paper *types.PaperText, state *pipeline.ReviewState) (any, []string, error) {
	title, abstract := paper.Title, paper.Abstract
	if md, ok := pipeline.Output[*types.Metadata](state, StageMetadata); ok {
		if md.Title != "" {
			title = md.Title
		}
		if md.Abstract != "" {
			abstract = md.Abstract
		}
	}
	if strings.TrimSpace(title) == "" && strings.TrimSpace(abstract) == "" {
		return nil, []string{"skipping literature comparison: no title or abstract available"}, nil
	}

	var warnings []string
	queries, err := s.queries(ctx, title, abstract)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, err
		}
		if strings.TrimSpace(title) == "" {
			return nil, nil, fmt.Errorf("generating search queries: %w", err)
		}
		warnings = append(warnings, fmt.Sprintf("search query generation failed (%v); searching by title", err))
		queries = []string{title}
	}

	opts := s.search
	opts.LimitPerSource = s.maxResults
	set := literature.Search(ctx, queries, s.sources, opts)
	lit := &types.LiteratureReview{Queries: queries, Literature: set}

	for _, f := range set.Failures {
		s.log.Debug().Str("source", f.Source).Str("query", f.Query).Str("kind", f.Kind).Msg(f.Message)
	}
	if set.Degraded() {
		warnings = append(warnings, "no literature source could be searched; the review relies on the paper alone")
		return lit, warnings, nil
	}
	if len(set.SourcesFailed) > 0 {
		warnings = append(warnings, "literature sources unavailable: "+strings.Join(set.SourcesFailed, ", "))
	}
	if len(set.Candidates) == 0 {
		warnings = append(warnings, "no related literature found for comparison")
		return lit, warnings, nil
	}

	contrib, ok := pipeline.Output[*types.ContributionAnalysis](state, StageContributions)
	if !ok || len(contrib.Claimed) == 0 {
		warnings = append(warnings, "no contributions available for literature comparison")
		return lit, warnings, nil
	}

	papers := set.Candidates
	if len(papers) > s.maxResults {
		papers = papers[:s.maxResults]
	}
	var cmp types.Comparison
	if err := s.invoker.Invoke(ctx, callComparison, comparisonInput{Contributions: contrib.Claimed, Papers: papers}, &cmp); err != nil {
		return nil, warnings, err
	}
	lit.Comparison = &cmp
	return lit, warnings, nil
}

// queries asks the model for search queries and keeps the first few
// non-empty ones.
func (s *stageSet) queries(ctx context.Context, title, abstract string) ([]string, error) {
	var reply queriesReply
	if err := s.invoker.Invoke(ctx, callSearchQueries, queriesInput{Title: title, Abstract: abstract}, &reply); err != nil {
		return nil, err
	}
	var out []string
	for _, q := range reply.Queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		out = append(out, q)
		if len(out) == s.maxQueries {
			break
		}
	}
	if len(out) == 0 {
		return nil, errors.New("model returned no search queries")
	}
	return out, nil
}

func (s *stageSet) impact(ctx context.Context, _ *types.PaperText, state *pipeline.ReviewState) (any, []string, error) {
	analysis := map[string]any{}
	if m, ok := pipeline.Output[*types.MethodologyAnalysis](state, StageMethodology); ok {
		analysis["methodology"] = m
	}
	if c, ok := pipeline.Output[*types.ContributionAnalysis](state, StageContributions); ok {
		analysis["contributions"] = c
	}
	if len(analysis) == 0 {
		return nil, []string{"insufficient data for impact assessment"}, nil
	}

	in := impactInput{Analysis: analysis}
	if lit, ok := pipeline.Output[*types.LiteratureReview](state, StageLiterature); ok {
		in.Literature = lit.Comparison
	}

	var ia types.ImpactAssessment
	if err := s.invoker.Invoke(ctx, StageImpact, in, &ia); err != nil {
		return nil, nil, err
	}
	var warnings []string
	ia.Field.Score = clampScore(ia.Field.Score, "field impact score", &warnings)
	ia.Societal.Score = clampScore(ia.Societal.Score, "societal impact score", &warnings)
	return &ia, warnings, nil
}

func (s *stageSet) verdict(ctx context.Context, _ *types.PaperText, state *pipeline.ReviewState) (any, []string, error) {
	analysis := map[string]any{}
	if md, ok := pipeline.Output[*types.Metadata](state, StageMetadata); ok {
		analysis["title"] = md.Title
		analysis["authors"] = md.Authors
		analysis["keywords"] = md.Keywords
	}
	if m, ok := pipeline.Output[*types.MethodologyAnalysis](state, StageMethodology); ok {
		analysis["methodology"] = m
	}
	if c, ok := pipeline.Output[*types.ContributionAnalysis](state, StageContributions); ok {
		analysis["contributions"] = c
	}
	if lit, ok := pipeline.Output[*types.LiteratureReview](state, StageLiterature); ok && lit.Comparison != nil {
		analysis["literature"] = lit.Comparison
	}
	if ia, ok := pipeline.Output[*types.ImpactAssessment](state, StageImpact); ok {
		analysis["impact"] = ia
	}
	if len(analysis) == 0 {
		return nil, []string{"insufficient data for final verdict"}, nil
	}

	var v types.Verdict
	if err := s.invoker.Invoke(ctx, StageVerdict, verdictInput{Analysis: analysis}, &v); err != nil {
		return nil, nil, err
	}
	var warnings []string
	if rec, ok := normalizeRecommendation(v.Recommendation); ok {
		v.Recommendation = rec
	} else {
		warnings = append(warnings, fmt.Sprintf("unrecognised recommendation %q", v.Recommendation))
	}
	return &v, warnings, nil
}

func (s *stageSet) social(ctx context.Context, _ *types.PaperText, state *pipeline.ReviewState) (any, []string, error) {
	v, ok := pipeline.Output[*types.Verdict](state, StageVerdict)
	if !ok || !v.Recommendation.Promotable() {
		return &types.SocialContent{Reason: "paper not recommended for promotion"}, nil, nil
	}
	md, okMD := pipeline.Output[*types.Metadata](state, StageMetadata)
	ia, okIA := pipeline.Output[*types.ImpactAssessment](state, StageImpact)
	if !okMD || !okIA {
		return &types.SocialContent{Reason: "insufficient data"}, []string{"insufficient data for social media content"}, nil
	}

	var reply socialReply
	in := socialInput{Title: md.Title, Takeaways: v.KeyTakeaways, FieldImpact: ia.Field}
	if err := s.invoker.Invoke(ctx, StageSocial, in, &reply); err != nil {
		return nil, nil, err
	}
	var warnings []string
	for i, tweet := range reply.TwitterThread {
		if n := utf8.RuneCountInString(tweet); n > maxTweet {
			warnings = append(warnings, fmt.Sprintf("tweet %d is %d characters, over the %d limit", i+1, n, maxTweet))
		}
	}
	return &types.SocialContent{
		Generated:     true,
		TwitterThread: reply.TwitterThread,
		LinkedInPost:  reply.LinkedInPost,
	}, warnings, nil
}

// clampScore keeps a 1-10 score in range, noting any correction.
func clampScore(score int, what string, warnings *[]string) int {
	switch {
	case score < 1:
		*warnings = append(*warnings, fmt.Sprintf("%s %d out of range, raised to 1", what, score))
		return 1
	case score > 10:
		*warnings = append(*warnings, fmt.Sprintf("%s %d out of range, lowered to 10", what, score))
		return 10
	}
	return score
}

var recommendations = []types.Recommendation{
	types.RecommendHighly,
	types.RecommendWorth,
	types.RecommendCaution,
	types.RecommendIgnore,
	types.RecommendCritical,
}

// normalizeRecommendation matches a model answer to a known level,
// ignoring case and surrounding space.
func normalizeRecommendation(r types.Recommendation) (types.Recommendation, bool) {
	for _, known := range recommendations {
		if strings.EqualFold(strings.TrimSpace(string(r)), string(known)) {
			return known, true
		}
	}
	return r, false
}

// clip cuts s to at most n runes.
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
