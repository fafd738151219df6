// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaperText_Validate(t *testing.T) {
	var nilPaper *PaperText
	assert.ErrorIs(t, nilPaper.Validate(), ErrEmptyPaper)
	assert.ErrorIs(t, (&PaperText{RawText: " \n\t"}).Validate(), ErrEmptyPaper)
	assert.NoError(t, (&PaperText{RawText: "text"}).Validate())
}

func TestPaperText_Sections(t *testing.T) {
	p := &PaperText{
		Abstract: "We study X.",
		Sections: []Section{
			{Heading: "1. Introduction", Body: "intro"},
			{Heading: "3 Proposed Approach", Body: "method"},
			{Heading: "References", Body: "[1] A."},
		},
		RawText: "raw",
	}

	assert.Equal(t, "intro", p.SectionBody("INTRODUCTION"))
	assert.Equal(t, "method", p.Canonical(SectionMethodology))
	assert.Equal(t, "We study X.", p.Canonical(SectionAbstract))
	assert.Empty(t, p.SectionBody("appendix"))

	assert.Equal(t, map[string]bool{
		SectionAbstract:     true,
		SectionIntroduction: true,
		SectionMethodology:  true,
		SectionResults:      false,
		SectionConclusion:   false,
		SectionReferences:   true,
	}, p.SectionSummary())

	main := p.MainContent()
	assert.Contains(t, main, "Abstract:\nWe study X.")
	assert.Contains(t, main, "Methodology:\nmethod")
	assert.NotContains(t, main, "[1] A.")
}

func TestPaperText_MainContentFallsBackToRaw(t *testing.T) {
	p := &PaperText{RawText: "only raw"}
	assert.Equal(t, "only raw", p.MainContent())
}

func TestRecommendation_Promotable(t *testing.T) {
	assert.True(t, RecommendHighly.Promotable())
	assert.True(t, RecommendWorth.Promotable())
	assert.False(t, RecommendCaution.Promotable())
	assert.False(t, RecommendCritical.Promotable())
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Model.Provider = "gemini"
	cfg.Literature.MaxResults = 0
	cfg.Literature.OpenAlex.Email = "not-an-address"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), "Config.Model.Provider")
	assert.Contains(t, err.Error(), "Config.Literature.MaxResults")
	assert.Contains(t, err.Error(), "Config.Literature.OpenAlex.Email")
}
