// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/paper-reviewer/internal/pipeline"
)

type narration struct {
	start  string
	detail string
}

var stageNarration = map[string]narration{
	StageMetadata: {
		"Diving into the details, this looks interesting!",
		"Pulling out the title, authors, and abstract to get oriented.",
	},
	StageMethodology: {
		"Checking out how they did their research...",
		"Examining the methods to see if they are solid and whether others could reproduce the work.",
	},
	StageContributions: {
		"Time to see what new ideas they bring to the table!",
		"Identifying what is genuinely new and how it builds on existing knowledge.",
	},
	StageLiterature: {
		"Comparing this with related papers...",
		"Writing search queries and searching the academic databases for related research.",
	},
	StageImpact: {
		"Thinking about how this could change things...",
		"Evaluating whether this could make waves in the field or have broader implications.",
	},
	StageVerdict: {
		"Almost done, putting together the final thoughts...",
		"Weighing methodology, novelty, literature fit, and impact for an honest recommendation.",
	},
	StageSocial: {
		"Drafting something shareable...",
		"Writing social media posts for papers worth spreading the word about.",
	},
}

// Narrator prints friendly progress lines as a review runs. Verbose adds
// a detail line per stage and repeats stage warnings.
type Narrator struct {
	Out     io.Writer
	Verbose bool
}

// Notify implements pipeline.Observer.
func (n *Narrator) Notify(e pipeline.Event) {
	switch e.Kind {
	case pipeline.StageStarted:
		line, ok := stageNarration[e.Stage]
		if !ok {
			line = narration{start: fmt.Sprintf("Running %s...", e.Stage)}
		}
		fmt.Fprintf(n.Out, "[%d/%d] %s\n", e.Index+1, e.Total, line.start)
		if n.Verbose && line.detail != "" {
			fmt.Fprintf(n.Out, "      %s\n", line.detail)
		}
	case pipeline.StageFinished:
		r := e.Result
		if r.Error != nil {
			fmt.Fprintf(n.Out, "      Ran into a problem with %s: %s\n", r.Stage, r.Error.Message)
			return
		}
		if n.Verbose {
			for _, w := range r.Warnings {
				fmt.Fprintf(n.Out, "      note: %s\n", w)
			}
			fmt.Fprintf(n.Out, "      done in %s\n", r.Duration.Round(time.Millisecond))
		}
	case pipeline.RunFinished:
		if e.State.Halted {
			fmt.Fprintln(n.Out, "Stopped early; the partial review below covers what finished.")
			return
		}
		fmt.Fprintln(n.Out, "All finished! Here is what I found about this research.")
	}
}
