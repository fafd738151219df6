// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns a PDF into a types.PaperText: plain text per page,
// then heading detection to split it into ordered sections.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/paper-reviewer/pkg/types"
)

var pdfMagic = []byte("%PDF-")

// Extract reads PDF bytes and returns the parsed paper. Pages that fail to
// decode are skipped; a document with no readable text is a KindEmpty error.
func Extract(data []byte) (*types.PaperText, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &Error{Kind: KindEmpty, Err: errors.New("no data")}
	}
	if !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), pdfMagic) {
		return nil, &Error{Kind: KindUnsupported, Err: errors.New("not a PDF document")}
	}

	raw, err := plainText(data)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Parse builds a PaperText from already-extracted plain text.
func Parse(raw string) (*types.PaperText, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &Error{Kind: KindEmpty, Err: errors.New("no readable text; the PDF may be image-only")}
	}

	title, sections := splitSections(raw)
	paper := &types.PaperText{
		Title:    title,
		Sections: sections,
		RawText:  raw,
	}
	for _, s := range sections {
		if strings.EqualFold(s.Heading, "abstract") {
			paper.Abstract = s.Body
			break
		}
	}
	return paper, nil
}

// plainText concatenates the text of every readable page. The pdf package
// panics on some malformed inputs, so panics are reported as corruption.
func plainText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Kind: KindCorrupt, Err: fmt.Errorf("%v", r)}
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return "", &Error{Kind: KindUnsupported, Err: fmt.Errorf("password-protected PDF: %w", err)}
		}
		return "", &Error{Kind: KindCorrupt, Err: err}
	}

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		t, err := page.GetPlainText(nil)
		if err != nil || strings.TrimSpace(t) == "" {
			continue
		}
		pages = append(pages, t)
	}
	return strings.Join(pages, "\n\n"), nil
}
