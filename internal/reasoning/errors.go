// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reasoning

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed model call.
type ErrorKind string

const (
	KindAuthFailure      ErrorKind = "auth_failure"
	KindUnsupportedModel ErrorKind = "unsupported_model"
	KindRateLimited      ErrorKind = "rate_limited"
	KindMalformed        ErrorKind = "malformed"
)

// ModelError is returned when the reasoning service rejects a call or
// answers with something that cannot be decoded.
type ModelError struct {
	Kind   ErrorKind
	Stage  string
	Status int
	Err    error
}

func (e *ModelError) Error() string {
	msg := "model call"
	if e.Stage != "" {
		msg += " for " + e.Stage
	}
	msg += " failed: " + string(e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ModelError) Unwrap() error { return e.Err }

// ErrorKind exposes the kind to callers that classify errors generically.
func (e *ModelError) ErrorKind() string { return string(e.Kind) }

// classifyStatus maps a provider HTTP status to a ModelError. It returns nil
// for statuses that are not model errors (5xx and unexpected codes are
// reported as plain errors by the caller).
func classifyStatus(status int, err error) *ModelError {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusPaymentRequired:
		return &ModelError{Kind: KindAuthFailure, Status: status, Err: err}
	case http.StatusNotFound:
		return &ModelError{Kind: KindUnsupportedModel, Status: status, Err: err}
	case http.StatusTooManyRequests:
		return &ModelError{Kind: KindRateLimited, Status: status, Err: err}
	}
	return nil
}
