// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-reviewer pipeline:
// the extracted paper, literature-search candidates, stage outputs, and
// configuration.
package types

import (
	"errors"
	"strings"
)

// Canonical section names reported by SectionSummary.
const (
	SectionAbstract     = "abstract"
	SectionIntroduction = "introduction"
	SectionMethodology  = "methodology"
	SectionResults      = "results"
	SectionConclusion   = "conclusion"
	SectionReferences   = "references"
)

// sectionKeywords maps each canonical section to the heading words that
// identify it. Order within a slice does not matter; matching is by substring.
var sectionKeywords = map[string][]string{
	SectionAbstract:     {"abstract"},
	SectionIntroduction: {"introduction"},
	SectionMethodology:  {"methodology", "method", "approach", "model"},
	SectionResults:      {"results", "experiment", "evaluation", "findings"},
	SectionConclusion:   {"conclusion", "discussion", "future work"},
	SectionReferences:   {"references", "bibliography"},
}

// canonicalOrder fixes the order in which sections are reported.
var canonicalOrder = []string{
	SectionAbstract,
	SectionIntroduction,
	SectionMethodology,
	SectionResults,
	SectionConclusion,
	SectionReferences,
}

// ErrEmptyPaper is returned by Validate when the paper has no raw text.
var ErrEmptyPaper = errors.New("paper text is empty")

// Section is one heading and the body text beneath it.
type Section struct {
	Heading string `json:"heading" yaml:"heading"`
	Body    string `json:"body" yaml:"body"`
}

// PaperText is the in-memory representation of an extracted paper. It is
// produced once by the extractor and treated as read-only afterwards.
type PaperText struct {
	// Title is the paper title as detected by the extractor (may be empty).
	Title string `json:"title" yaml:"title"`

	// Authors lists the detected authors in document order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Abstract is the abstract text, if one was found.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Sections preserve document order.
	Sections []Section `json:"sections,omitempty" yaml:"sections,omitempty"`

	// RawText is the complete extracted text. Never empty for a valid paper.
	RawText string `json:"-" yaml:"-"`
}

// Validate reports whether the paper satisfies its invariants.
func (p *PaperText) Validate() error {
	if p == nil || strings.TrimSpace(p.RawText) == "" {
		return ErrEmptyPaper
	}
	return nil
}

// SectionBody returns the body of the first section whose heading contains
// any of the keywords (case-insensitive), or "" when none matches.
func (p *PaperText) SectionBody(keywords ...string) string {
	for _, s := range p.Sections {
		heading := strings.ToLower(s.Heading)
		for _, kw := range keywords {
			if strings.Contains(heading, strings.ToLower(kw)) {
				return s.Body
			}
		}
	}
	return ""
}

// Canonical returns the body of a canonical section (see the Section*
// constants). The abstract falls back to the Abstract field.
func (p *PaperText) Canonical(name string) string {
	if name == SectionAbstract && p.Abstract != "" {
		return p.Abstract
	}
	return p.SectionBody(sectionKeywords[name]...)
}

// SectionSummary reports which canonical sections have content.
func (p *PaperText) SectionSummary() map[string]bool {
	out := make(map[string]bool, len(canonicalOrder))
	for _, name := range canonicalOrder {
		out[name] = strings.TrimSpace(p.Canonical(name)) != ""
	}
	return out
}

// MainContent joins the non-reference canonical sections under labels. It
// falls back to the raw text when no section was recognised.
func (p *PaperText) MainContent() string {
	var parts []string
	for _, name := range canonicalOrder {
		if name == SectionReferences {
			continue
		}
		body := strings.TrimSpace(p.Canonical(name))
		if body == "" {
			continue
		}
		parts = append(parts, strings.ToUpper(name[:1])+name[1:]+":\n"+body)
	}
	if len(parts) == 0 {
		return p.RawText
	}
	return strings.Join(parts, "\n\n")
}
