package ai

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an analysis failed. Callers show the same message for
// every kind; the kind exists for logs, metrics and tests.
type ErrorKind string

const (
	KindTransport      ErrorKind = "transport"
	KindRejected       ErrorKind = "upstream_rejected"
	KindNoPayload      ErrorKind = "no_json_found"
	KindInvalidPayload ErrorKind = "invalid_payload"
)

var (
	ErrTransport      = errors.New("analysis upstream unreachable")
	ErrRejected       = errors.New("analysis upstream rejected the request")
	ErrNoJSONFound    = errors.New("no JSON object found in completion")
	ErrInvalidPayload = errors.New("embedded JSON payload is invalid")

	ErrGeminiNotConfigured = errors.New("gemini is not configured")
	ErrNoSavedResult       = errors.New("no saved analysis result")
	ErrSaveLimitReached    = errors.New("saved analyses limit reached for current plan")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindTransport:
		return ErrTransport
	case KindRejected:
		return ErrRejected
	case KindNoPayload:
		return ErrNoJSONFound
	case KindInvalidPayload:
		return ErrInvalidPayload
	}
	return nil
}

// AnalysisError is returned by every remote analysis client.
type AnalysisError struct {
	Kind       ErrorKind
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *AnalysisError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind so errors.Is(err, ErrRejected) works
// regardless of what is wrapped underneath.
func (e *AnalysisError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf reports the analysis error kind carried by err, or "" when err is not an
// analysis failure.
func KindOf(err error) ErrorKind {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	switch {
	case errors.Is(err, ErrNoJSONFound):
		return KindNoPayload
	case errors.Is(err, ErrInvalidPayload):
		return KindInvalidPayload
	}
	return ""
}

// payloadError wraps an extraction/decoding failure with the right kind.
func payloadError(provider string, err error) error {
	kind := KindInvalidPayload
	if errors.Is(err, ErrNoJSONFound) {
		kind = KindNoPayload
	}
	return &AnalysisError{Kind: kind, Provider: provider, Err: err}
}

// ValidationError reports bad caller input before any upstream call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
