// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package literature

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/pdiddy/paper-reviewer/pkg/types"
)

// DedupKey identifies a paper independently of the source that returned it:
// normalized title, first-author surname, and year joined by "|". Candidates
// with no usable title fall back to a source-scoped identifier so they are
// never merged with each other.
func DedupKey(c types.Candidate) string {
	title := normalizeTitle(c.Title)
	if title == "" {
		return "id:" + c.Source + ":" + c.ID
	}
	var surname string
	if len(c.Authors) > 0 {
		surname = firstAuthorSurname(c.Authors[0])
	}
	return title + "|" + surname + "|" + strconv.Itoa(c.Year)
}

// normalizeTitle lowercases title and collapses it to letters, digits, and
// single spaces. Apostrophes are dropped, so "don't" and "don’t" both become
// "dont". A hyphen between two letters or digits is dropped as well, joining
// "pre-training" into "pretraining"; any other punctuation separates words.
func normalizeTitle(title string) string {
	rs := []rune(strings.ToLower(title))
	var b strings.Builder
	for i, r := range rs {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case isApostrophe(r):
		case isHyphen(r) && i > 0 && i < len(rs)-1 && isWordRune(rs[i-1]) && isWordRune(rs[i+1]):
		case unicode.IsSpace(r) || unicode.IsPunct(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func isApostrophe(r rune) bool {
	switch r {
	case '\'', '\u2019', '\u2018', '\u02bc':
		return true
	}
	return false
}

// isHyphen matches the ASCII hyphen-minus and the Unicode hyphens. En and em
// dashes separate words and are not included.
func isHyphen(r rune) bool {
	switch r {
	case '-', '\u2010', '\u2011':
		return true
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// firstAuthorSurname accepts "Last, First" and "First Last".
func firstAuthorSurname(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.Index(name, ","); i >= 0 {
		return normalizeTitle(name[:i])
	}
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return normalizeTitle(fields[len(fields)-1])
}
