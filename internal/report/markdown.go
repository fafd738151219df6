// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders a finished review state as Markdown, HTML, JSON,
// or YAML. Rendering never fails on a partial state: sections whose stage
// did not complete are left out and the run's warnings and errors are
// listed instead.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/paper-reviewer/internal/pipeline"
	"github.com/pdiddy/paper-reviewer/internal/review"
	"github.com/pdiddy/paper-reviewer/pkg/types"
)

// maxAbstract caps the abstract shown in the paper section.
const maxAbstract = 500

// Options controls Markdown rendering.
type Options struct {
	// Source is the path or URL the paper was read from.
	Source string

	// TOC adds a table of contents.
	TOC bool

	// Metadata adds the run details section.
	Metadata bool
}

// DefaultOptions enables every optional section.
func DefaultOptions() Options {
	return Options{TOC: true, Metadata: true}
}

type section struct {
	heading string
	blurb   string
	body    string
}

// Markdown renders the review.
func Markdown(state *pipeline.ReviewState, opts Options) string {
	var sections []section
	add := func(heading, blurb, body string) {
		if body != "" {
			sections = append(sections, section{heading, blurb, body})
		}
	}

	md, _ := pipeline.Output[*types.Metadata](state, review.StageMetadata)
	add("Quick Summary", "My first impressions", summary(state))
	add("About This Paper", "The basics", paperInfo(md))
	add("How They Did It", "Methodology", methodology(state))
	add("Whats New Here", "Contributions", contributions(state))
	add("How It Fits", "Comparison with related work", literature(state))
	add("Why It Matters", "Impact", impact(state))
	add("My Final Take", "Recommendation", verdict(state))
	add("Share It", "Social media drafts", social(state))
	add("Warnings", "Things that did not go to plan", bullets(state.Warnings))
	add("Errors", "Stages that failed", errorList(state.Errors))
	if opts.Metadata {
		add("Review Details", "How this review was produced", details(state))
	}

	var b strings.Builder
	title := "this paper"
	if md != nil && md.Title != "" {
		title = fmt.Sprintf("%q", md.Title)
	}
	fmt.Fprintf(&b, "# Review of %s\n\n", title)
	if opts.Source != "" {
		fmt.Fprintf(&b, "**Paper:** %s\n\n", opts.Source)
	}
	if state.Halted {
		b.WriteString("**Status:** partial review, the run stopped early\n\n")
	} else {
		b.WriteString("**Status:** complete review\n\n")
	}

	if opts.TOC {
		b.WriteString("## Contents\n\n")
		for i, s := range sections {
			fmt.Fprintf(&b, "%d. [%s](#%s) - %s\n", i+1, s.heading, anchor(s.heading), s.blurb)
		}
		b.WriteString("\n")
	}
	for _, s := range sections {
		fmt.Fprintf(&b, "## %s\n\n%s\n", s.heading, strings.TrimRight(s.body, "\n")+"\n")
	}
	return b.String()
}

func summary(state *pipeline.ReviewState) string {
	var b strings.Builder
	b.WriteString("| Question | Assessment |\n|---|---|\n")
	rec, worth := "No verdict reached", "Unknown"
	if v, ok := pipeline.Output[*types.Verdict](state, review.StageVerdict); ok {
		rec = string(v.Recommendation)
		worth = "Maybe skip this one"
		if v.WorthReading {
			worth = "Yes"
		}
	}
	fmt.Fprintf(&b, "| **Recommendation** | %s |\n", cell(rec))
	fmt.Fprintf(&b, "| **Worth reading?** | %s |\n", worth)
	if m, ok := pipeline.Output[*types.MethodologyAnalysis](state, review.StageMethodology); ok {
		fmt.Fprintf(&b, "| **Reproducibility** | %d/10 |\n", m.Reproducibility.Score)
	}
	if ia, ok := pipeline.Output[*types.ImpactAssessment](state, review.StageImpact); ok {
		fmt.Fprintf(&b, "| **Field impact** | %d/10 |\n", ia.Field.Score)
		fmt.Fprintf(&b, "| **Societal impact** | %d/10 |\n", ia.Societal.Score)
	}
	return b.String()
}

func paperInfo(md *types.Metadata) string {
	if md == nil {
		return ""
	}
	var b strings.Builder
	if md.Title != "" {
		fmt.Fprintf(&b, "**Title:** %s\n\n", md.Title)
	}
	if n := len(md.Authors); n > 0 {
		if n <= 5 {
			fmt.Fprintf(&b, "**Authors:** %s\n\n", strings.Join(md.Authors, ", "))
		} else {
			fmt.Fprintf(&b, "**Authors:** %s and %d others\n\n", strings.Join(md.Authors[:5], ", "), n-5)
		}
	}
	if len(md.Keywords) > 0 {
		kw := md.Keywords
		if len(kw) > 10 {
			kw = kw[:10]
		}
		fmt.Fprintf(&b, "**Key topics:** %s\n\n", strings.Join(kw, ", "))
	}
	if md.Abstract != "" {
		b.WriteString("### Abstract\n\n")
		b.WriteString(truncate(md.Abstract, maxAbstract) + "\n")
	}
	return b.String()
}

func methodology(state *pipeline.ReviewState) string {
	m, ok := pipeline.Output[*types.MethodologyAnalysis](state, review.StageMethodology)
	if !ok {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**Reproducibility:** %d/10, %s\n\n", m.Reproducibility.Score, reproducibilityVerdict(m.Reproducibility.Score))
	if m.Reproducibility.Justification != "" {
		fmt.Fprintf(&b, "%s\n\n", m.Reproducibility.Justification)
	}
	if len(m.Strengths) > 0 {
		b.WriteString("### Strengths\n\n" + numbered(m.Strengths) + "\n")
	}
	if len(m.Weaknesses) > 0 {
		b.WriteString("### Weaknesses\n\n" + numbered(m.Weaknesses))
	}
	return b.String()
}

func reproducibilityVerdict(score int) string {
	switch {
	case score >= 8:
		return "you could replicate this with the details provided"
	case score >= 6:
		return "doable, with a few gaps to fill in"
	case score >= 4:
		return "possible, but expect some detective work"
	default:
		return "hard to replicate, crucial details are missing"
	}
}

func contributions(state *pipeline.ReviewState) string {
	c, ok := pipeline.Output[*types.ContributionAnalysis](state, review.StageContributions)
	if !ok {
		return ""
	}
	var b strings.Builder
	if len(c.Claimed) > 0 {
		b.WriteString("### Claimed Contributions\n\n" + numbered(c.Claimed) + "\n")
	}
	if len(c.Novelty) > 0 {
		b.WriteString("### Assessment\n\n")
		for _, n := range c.Novelty {
			fmt.Fprintf(&b, "**%s**\n\n", n.Contribution)
			fmt.Fprintf(&b, "- Novelty: %d/10\n- Significance: %d/10\n", n.NoveltyScore, n.SignificanceScore)
			if n.Justification != "" {
				fmt.Fprintf(&b, "- %s\n", n.Justification)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func literature(state *pipeline.ReviewState) string {
	lit, ok := pipeline.Output[*types.LiteratureReview](state, review.StageLiterature)
	if !ok {
		return ""
	}
	var b strings.Builder
	if len(lit.Queries) > 0 {
		b.WriteString("### Searches\n\n")
		for i, q := range lit.Queries {
			fmt.Fprintf(&b, "%d. %q\n", i+1, q)
		}
		b.WriteString("\n")
	}
	set := lit.Literature
	if len(set.Candidates) > 0 {
		b.WriteString("### Related Papers\n\n")
		for i, c := range set.Candidates {
			if i == 5 {
				break
			}
			title := c.Title
			if c.URL != "" {
				title = fmt.Sprintf("[%s](%s)", c.Title, c.URL)
			}
			year := "n.d."
			if c.Year > 0 {
				year = fmt.Sprint(c.Year)
			}
			fmt.Fprintf(&b, "%d. **%s** (%s, %s)\n", i+1, title, year, c.Source)
			if len(c.Authors) > 0 {
				authors := c.Authors
				more := ""
				if len(authors) > 3 {
					authors, more = authors[:3], " et al."
				}
				fmt.Fprintf(&b, "   - By %s%s\n", strings.Join(authors, ", "), more)
			}
			fmt.Fprintf(&b, "   - Relevance %.2f\n", c.RelevanceScore)
		}
		b.WriteString("\n")
	}
	if cmp := lit.Comparison; cmp != nil {
		if cmp.Context != "" {
			b.WriteString("### Research Landscape\n\n" + cmp.Context + "\n\n")
		}
		if cmp.Differentiation != "" {
			b.WriteString("### What Makes It Different\n\n" + cmp.Differentiation + "\n\n")
		}
		if cmp.Standing != "" {
			b.WriteString("### Standing in the Field\n\n" + cmp.Standing + "\n\n")
		}
	}
	fmt.Fprintf(&b, "Sources searched: %s", listOrNone(set.SourcesQueried))
	if len(set.SourcesFailed) > 0 {
		fmt.Fprintf(&b, "; unavailable: %s", strings.Join(set.SourcesFailed, ", "))
	}
	b.WriteString("\n")
	return b.String()
}

func impact(state *pipeline.ReviewState) string {
	ia, ok := pipeline.Output[*types.ImpactAssessment](state, review.StageImpact)
	if !ok {
		return ""
	}
	var b strings.Builder
	for _, s := range []struct {
		title string
		score types.ImpactScore
	}{{"In the Field", ia.Field}, {"Beyond Research", ia.Societal}} {
		fmt.Fprintf(&b, "### %s: %d/10\n\n", s.title, s.score.Score)
		if s.score.Reasoning != "" {
			b.WriteString(s.score.Reasoning + "\n\n")
		}
		if len(s.score.Areas) > 0 {
			fmt.Fprintf(&b, "Areas: %s\n\n", strings.Join(s.score.Areas, ", "))
		}
	}
	return b.String()
}

func verdict(state *pipeline.ReviewState) string {
	v, ok := pipeline.Output[*types.Verdict](state, review.StageVerdict)
	if !ok {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n\n", v.Recommendation)
	if v.Justification != "" {
		b.WriteString(v.Justification + "\n\n")
	}
	if len(v.KeyTakeaways) > 0 {
		b.WriteString("### Key Takeaways\n\n" + bullets(v.KeyTakeaways))
	}
	return b.String()
}

func social(state *pipeline.ReviewState) string {
	sc, ok := pipeline.Output[*types.SocialContent](state, review.StageSocial)
	if !ok || !sc.Generated {
		return ""
	}
	var b strings.Builder
	if len(sc.TwitterThread) > 0 {
		b.WriteString("### Thread\n\n")
		for i, t := range sc.TwitterThread {
			fmt.Fprintf(&b, "> %d/%d %s\n>\n", i+1, len(sc.TwitterThread), t)
		}
		b.WriteString("\n")
	}
	if sc.LinkedInPost != "" {
		b.WriteString("### Post\n\n" + sc.LinkedInPost + "\n")
	}
	return b.String()
}

func details(state *pipeline.ReviewState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- Run: `%s`\n", state.RunID)
	fmt.Fprintf(&b, "- Started: %s\n", state.StartedAt.Format(time.RFC3339))
	if d := state.Duration(); d > 0 {
		fmt.Fprintf(&b, "- Duration: %s\n", d.Round(time.Millisecond))
	}
	for _, r := range state.Results() {
		status := "completed"
		if !r.Completed {
			status = "failed"
		}
		fmt.Fprintf(&b, "- Stage %s: %s in %s\n", r.Stage, status, r.Duration.Round(time.Millisecond))
	}
	return b.String()
}

func errorList(errs []pipeline.ErrorInfo) string {
	var lines []string
	for _, e := range errs {
		stage := e.Stage
		if stage == "" {
			stage = "run"
		}
		lines = append(lines, fmt.Sprintf("**%s** (%s): %s", stage, e.Kind, e.Message))
	}
	return bullets(lines)
}

func bullets(items []string) string {
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "- %s\n", it)
	}
	return b.String()
}

func numbered(items []string) string {
	var b strings.Builder
	for i, it := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, it)
	}
	return b.String()
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

// cell escapes a value for a Markdown table cell.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// anchor reproduces the heading IDs generated for the HTML output:
// lower case, spaces to hyphens, everything else dropped.
func anchor(heading string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(heading) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	return b.String()
}

// truncate cuts s to n runes, adding an ellipsis when it cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "..."
}
