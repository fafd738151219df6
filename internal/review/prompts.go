// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"encoding/json"
	"text/template"

	"github.com/pdiddy/paper-reviewer/internal/reasoning"
)

// Model call names. Stage names double as call names except for the two
// calls the literature stage makes.
const (
	callSearchQueries = "search_queries"
	callComparison    = "comparison"
)

const systemPrompt = "You are an experienced peer reviewer who reads research papers carefully and reports your assessment as a single JSON object. Do not include any text outside the JSON object."

var promptFuncs = template.FuncMap{
	"json": func(v any) (string, error) {
		b, err := json.MarshalIndent(v, "", "  ")
		return string(b), err
	},
}

func mustPrompt(name, text string) reasoning.Template {
	return reasoning.Template{
		System: systemPrompt,
		User:   template.Must(template.New(name).Funcs(promptFuncs).Parse(text)),
	}
}

// Prompts returns the prompt template for every model call the review makes.
func Prompts() map[string]reasoning.Template {
	return map[string]reasoning.Template{
		StageMetadata:      metadataPrompt,
		StageMethodology:   methodologyPrompt,
		StageContributions: contributionsPrompt,
		callSearchQueries:  searchQueriesPrompt,
		callComparison:     comparisonPrompt,
		StageImpact:        impactPrompt,
		StageVerdict:       verdictPrompt,
		StageSocial:        socialPrompt,
	}
}

var metadataPrompt = mustPrompt(StageMetadata, `Extract the bibliographic information of the following research paper.

Respond with a JSON object with these fields:
- title: the main title of the paper
- authors: author names in the order they appear
- abstract: the paper's abstract or summary
- keywords: key terms and technical concepts that represent the paper's main topics

Example response:
{"title": "Attention Is All You Need", "authors": ["Ashish Vaswani", "Noam Shazeer"], "abstract": "The dominant sequence transduction models...", "keywords": ["transformer", "attention", "machine translation"]}

Paper text:
{{.Text}}
`)

var methodologyPrompt = mustPrompt(StageMethodology, `Analyze the research methodology below and assess how reproducible the work is.

Respond with a JSON object with these fields:
- strengths: strengths of the methodology, such as rigorous experimental design, appropriate statistics, or clear protocols
- weaknesses: weaknesses such as small samples, missing controls, or unclear procedures
- reproducibility: an object with "score" (integer 1-10) and "justification" based on method clarity, data availability, and implementation detail

Methodology section:
{{.Section}}
`)

var contributionsPrompt = mustPrompt(StageContributions, `Identify the contributions the authors claim and assess how novel and significant each one is.

Respond with a JSON object with these fields:
- claimed: contributions explicitly claimed by the authors, such as new algorithms, theoretical insights, or empirical findings
- novelty: one entry per claimed contribution with "contribution", "novelty_score" (1-10), "significance_score" (1-10), and "justification"

Introduction:
{{.Introduction}}

Conclusion:
{{.Conclusion}}
`)

var searchQueriesPrompt = mustPrompt(callSearchQueries, `Write search queries that will find the work most closely related to this paper in academic search engines.

Respond with a JSON object with one field:
- search_queries: 3 to 5 short keyword queries, most relevant and specific first

Title: {{.Title}}

Abstract:
{{.Abstract}}
`)

var comparisonPrompt = mustPrompt(callComparison, `Compare the paper's claimed contributions with the related papers found in the literature.

Respond with a JSON object with these fields:
- context: how the paper fits within the current research landscape and builds on existing work
- differentiation: what makes the paper different from, and an advance over, the related work
- standing: whether the work is incremental, significant, or groundbreaking relative to the related work

Claimed contributions:
{{json .Contributions}}

Related papers:
{{range $i, $p := .Papers}}{{if $i}}
{{end}}- {{$p.Title}} ({{if $p.Year}}{{$p.Year}}, {{end}}{{$p.Source}}{{if $p.Venue}}, {{$p.Venue}}{{end}})
  {{$p.Snippet}}{{end}}
`)

var impactPrompt = mustPrompt(StageImpact, `Assess the potential impact of the paper using the analysis so far.

Respond with a JSON object with these fields:
- field: impact on the research field, an object with "score" (1-10), "reasoning", and "areas" (specific research areas affected)
- societal: broader societal impact, an object with "score" (1-10), "reasoning", and "areas" (application areas)

Analysis summary:
{{json .Analysis}}
{{if .Literature}}
Literature comparison:
{{json .Literature}}
{{end}}`)

var verdictPrompt = mustPrompt(StageVerdict, `Synthesize the complete analysis into a final recommendation.

Respond with a JSON object with these fields:
- recommendation: exactly one of "Highly Recommended", "Worth Reading", "Proceed with Caution", "Should be Ignored", "Critically Flawed"
- justification: the key factors behind the recommendation
- worth_reading: true if the paper is worth reading, false otherwise
- key_takeaways: 3 to 5 main points a reader should know

Complete analysis:
{{json .Analysis}}
`)

var socialPrompt = mustPrompt(StageSocial, `Draft social media posts that share this paper's findings with researchers and practitioners.

Respond with a JSON object with these fields:
- twitter_thread: a thread as a list of tweets of at most 280 characters each, opening with an engaging hook
- linkedin_post: one or two paragraphs in a professional tone on the significance and practical implications

Title: {{.Title}}

Key takeaways:
{{range .Takeaways}}- {{.}}
{{end}}
Field impact ({{.FieldImpact.Score}}/10): {{.FieldImpact.Reasoning}}
`)
