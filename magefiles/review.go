// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build mage

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Review builds the CLI and reviews one paper, writing the Markdown report
// next to the input as <name>.review.md. The paper is a PDF path, URL, or
// arXiv ID.
func Review(paper string) error {
	mg.Deps(Build)

	name := strings.TrimSuffix(filepath.Base(paper), filepath.Ext(paper))
	out := name + ".review.md"
	bin := filepath.Join(binDir, binName)
	if err := sh.RunV(bin, "review", paper, "-o", out, "--archive"); err != nil {
		return fmt.Errorf("reviewing %s: %w", paper, err)
	}
	return nil
}

// Search runs a literature search through the CLI.
func Search(query string) error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "search", query)
}
