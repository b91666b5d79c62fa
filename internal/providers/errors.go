package providers

import (
	"errors"
	"fmt"
)

// ErrorKind is the fixed failure taxonomy every backend maps onto, so callers
// never branch on provider-specific error shapes.
type ErrorKind string

const (
	ErrAuth                ErrorKind = "auth_error"
	ErrRateLimited         ErrorKind = "rate_limited"
	ErrTimeout             ErrorKind = "timeout"
	ErrProviderUnavailable ErrorKind = "provider_unavailable"
	ErrInvalidResponse     ErrorKind = "invalid_response"
)

// CallError is a classified provider call failure.
type CallError struct {
	Kind     ErrorKind
	Provider string
	Model    string
	Err      error
}

func (e *CallError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s call failed (%s, model=%s): %v", e.Provider, e.Kind, e.Model, e.Err)
	}
	return fmt.Sprintf("%s call failed (%s, model=%s)", e.Provider, e.Kind, e.Model)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// Retryable reports whether a bounded retry may be attempted. Auth failures
// and malformed responses never recover on retry.
func (e *CallError) Retryable() bool {
	switch e.Kind {
	case ErrRateLimited, ErrTimeout, ErrProviderUnavailable:
		return true
	}
	return false
}

// NewCallError wraps err with its classified kind.
func NewCallError(kind ErrorKind, provider, model string, err error) *CallError {
	return &CallError{Kind: kind, Provider: provider, Model: model, Err: err}
}

// ClassifyStatus maps an HTTP status code onto the taxonomy. Shared by every
// HTTP-backed provider.
func ClassifyStatus(status int) ErrorKind {
	switch {
	case status == 401 || status == 403:
		return ErrAuth
	case status == 429:
		return ErrRateLimited
	case status == 408 || status == 504:
		return ErrTimeout
	case status >= 500:
		return ErrProviderUnavailable
	default:
		return ErrInvalidResponse
	}
}

// KindOf extracts the taxonomy kind from an error chain, or "" when the error
// is not a classified call failure.
func KindOf(err error) ErrorKind {
	var callErr *CallError
	if errors.As(err, &callErr) {
		return callErr.Kind
	}
	return ""
}
