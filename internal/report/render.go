// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-reviewer/internal/pipeline"
)

// Format names an output format.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// ParseFormat accepts the format names and common aliases.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "md", "markdown", "":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown report format %q (want md, html, json, or yaml)", s)
}

// Extension returns the file extension for the format.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return ".md"
	}
	return "." + string(f)
}

// Snapshot is the serializable form of a finished run.
type Snapshot struct {
	RunID      string                 `json:"run_id" yaml:"run_id"`
	Source     string                 `json:"source,omitempty" yaml:"source,omitempty"`
	StartedAt  time.Time              `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time              `json:"finished_at" yaml:"finished_at"`
	Halted     bool                   `json:"halted" yaml:"halted"`
	Stages     []pipeline.StageResult `json:"stages" yaml:"stages"`
	Warnings   []string               `json:"warnings" yaml:"warnings"`
	Errors     []pipeline.ErrorInfo   `json:"errors" yaml:"errors"`
}

// NewSnapshot copies the state into a Snapshot.
func NewSnapshot(state *pipeline.ReviewState, source string) Snapshot {
	return Snapshot{
		RunID:      state.RunID.String(),
		Source:     source,
		StartedAt:  state.StartedAt,
		FinishedAt: state.FinishedAt,
		Halted:     state.Halted,
		Stages:     state.Results(),
		Warnings:   state.Warnings,
		Errors:     state.Errors,
	}
}

// Render writes the review to w in the given format.
func Render(w io.Writer, state *pipeline.ReviewState, format Format, opts Options) error {
	switch format {
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(state, opts))
		return err
	case FormatHTML:
		page, err := HTML(state, opts)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, page)
		return err
	case FormatJSON:
		return JSON(w, NewSnapshot(state, opts.Source))
	case FormatYAML:
		return YAML(w, NewSnapshot(state, opts.Source))
	}
	return fmt.Errorf("unknown report format %q", format)
}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// HTML renders the Markdown report as a standalone HTML page.
func HTML(state *pipeline.ReviewState, opts Options) (string, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(Markdown(state, opts)), &body); err != nil {
		return "", fmt.Errorf("rendering HTML: %w", err)
	}
	title := "Paper review"
	if opts.Source != "" {
		title += ": " + opts.Source
	}
	return fmt.Sprintf(htmlPage, html.EscapeString(title), body.String()), nil
}

const htmlPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { max-width: 52rem; margin: 2rem auto; padding: 0 1rem; font-family: sans-serif; line-height: 1.5; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.6rem; text-align: left; }
blockquote { border-left: 3px solid #ccc; margin-left: 0; padding-left: 1rem; color: #444; }
</style>
</head>
<body>
%s</body>
</html>
`

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// YAML writes v as YAML.
func YAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}
