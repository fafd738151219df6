// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/pdiddy/paper-reviewer/pkg/types"
)

// maxSectionLen caps each section body. Longer bodies are cut at the last
// sentence end in the final 30%, or hard-cut with an ellipsis.
const maxSectionLen = 3000

// knownHeadings are unnumbered heading lines recognised on their own.
var knownHeadings = map[string]bool{
	"abstract":           true,
	"introduction":       true,
	"background":         true,
	"related work":       true,
	"method":             true,
	"methods":            true,
	"methodology":        true,
	"approach":           true,
	"model":              true,
	"experiments":        true,
	"experimental setup": true,
	"results":            true,
	"evaluation":         true,
	"findings":           true,
	"discussion":         true,
	"conclusion":         true,
	"conclusions":        true,
	"future work":        true,
	"references":         true,
	"bibliography":       true,
	"acknowledgments":    true,
	"acknowledgements":   true,
	"appendix":           true,
}

var (
	// numberedHeadingRe matches top-level numbered headings such as
	// "3 Method", "3. Method" or "IV. RESULTS". Subsections ("3.1 ...") stay
	// in the body.
	numberedHeadingRe = regexp.MustCompile(`^(?:\d{1,2}\.?|[IVX]{1,5}\.)\s+([A-Z][A-Za-z][A-Za-z \-&:]{1,58})$`)

	// inlineAbstractRe matches "Abstract - text" or "Abstract. text" on one line.
	inlineAbstractRe = regexp.MustCompile(`(?i)^abstract\s*[.:\-\x{2014}\x{2013}]\s*(.+)$`)

	pageNumberRe = regexp.MustCompile(`^\d{1,4}$`)
)

// splitSections walks the text line by line, opening a new section at every
// recognised heading. The first substantial line before any heading is
// taken as the title.
func splitSections(raw string) (string, []types.Section) {
	var (
		title    string
		preamble []string
		headings []string
		bodies   [][]string
	)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" || pageNumberRe.MatchString(line) {
			continue
		}

		if m := inlineAbstractRe.FindStringSubmatch(line); m != nil {
			headings = append(headings, "Abstract")
			bodies = append(bodies, []string{m[1]})
			continue
		}
		if h, ok := headingOf(line); ok {
			headings = append(headings, h)
			bodies = append(bodies, nil)
			continue
		}

		if len(headings) == 0 {
			preamble = append(preamble, line)
			continue
		}
		last := len(bodies) - 1
		bodies[last] = append(bodies[last], line)
	}

	for _, l := range preamble {
		if len(l) > 10 {
			title = l
			break
		}
	}

	sections := make([]types.Section, 0, len(headings))
	for i, h := range headings {
		body := truncateBody(strings.Join(bodies[i], " "))
		if body == "" {
			continue
		}
		sections = append(sections, types.Section{Heading: h, Body: body})
	}
	return title, sections
}

// headingOf reports whether line is a section heading and returns its
// display form.
func headingOf(line string) (string, bool) {
	if len(line) > 64 {
		return "", false
	}
	bare := strings.TrimRight(line, ":")
	if knownHeadings[strings.ToLower(bare)] {
		return titleCase(bare), true
	}
	if m := numberedHeadingRe.FindStringSubmatch(line); m != nil {
		h := strings.TrimSpace(strings.TrimRight(m[1], ":"))
		if knownHeadings[strings.ToLower(h)] || capitalised(h) {
			return titleCase(h), true
		}
	}
	return "", false
}

// capitalised reports whether every word longer than three letters starts
// with an upper-case letter, which separates "2 Related Work" from a body
// line such as "2 We show that".
func capitalised(s string) bool {
	for _, w := range strings.Fields(s) {
		if len(w) > 3 && !unicode.IsUpper([]rune(w)[0]) {
			return false
		}
	}
	return true
}

// titleCase turns "RELATED WORK" into "Related Work" and leaves mixed case alone.
func titleCase(s string) string {
	if s != strings.ToUpper(s) {
		return s
	}
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func truncateBody(body string) string {
	body = strings.TrimSpace(body)
	if len(body) <= maxSectionLen {
		return body
	}
	cut := body[:maxSectionLen]
	if i := strings.LastIndex(cut, "."); i > maxSectionLen*7/10 {
		return cut[:i+1]
	}
	return strings.ToValidUTF8(cut, "") + "..."
}
