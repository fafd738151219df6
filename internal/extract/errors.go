// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import "fmt"

// ErrorKind classifies an extraction failure.
type ErrorKind string

const (
	KindCorrupt     ErrorKind = "corrupt"
	KindUnsupported ErrorKind = "unsupported"
	KindEmpty       ErrorKind = "empty"
)

// Error reports why a document could not be turned into text. It aborts a
// review before any stage runs.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "extraction failed: " + string(e.Kind)
	}
	return fmt.Sprintf("extraction failed (%s): %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrorKind exposes the kind to callers that classify errors generically.
func (e *Error) ErrorKind() string { return string(e.Kind) }
