// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package literature

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/paper-reviewer/pkg/types"
)

// FormatTable writes a literature set as a human-readable table to w.
func FormatTable(set types.LiteratureSet, w io.Writer) {
	if len(set.Candidates) == 0 {
		fmt.Fprintln(w, "No results found.")
	} else {
		fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-4s  %-6s  %s\n",
			"Rank", "Title", "Authors", "Year", "Score", "Source")
		fmt.Fprintln(w, strings.Repeat("-", 110))

		for i, c := range set.Candidates {
			year := ""
			if c.Year > 0 {
				year = fmt.Sprintf("%d", c.Year)
			}
			fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-4s  %-6.2f  %s\n",
				i+1, truncate(c.Title, 60), formatAuthors(c.Authors), year, c.RelevanceScore, c.Source)
		}

		fmt.Fprintf(w, "\n%d results", len(set.Candidates))
		if set.DuplicatesRemoved > 0 {
			fmt.Fprintf(w, " (%d duplicates removed)", set.DuplicatesRemoved)
		}
		fmt.Fprintln(w)
	}

	for _, f := range set.Failures {
		fmt.Fprintf(w, "warning: %s failed for %q: %s\n", f.Source, f.Query, f.Kind)
	}
}

// FormatJSON writes the full set as indented JSON to w.
func FormatJSON(set types.LiteratureSet, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(set)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
