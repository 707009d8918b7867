package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrNotFound indicates that a requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrNoProviders indicates an aggregator was constructed without providers.
	ErrNoProviders = errors.New("no providers registered")

	// ErrNoInput indicates a reconciler was called with zero inputs.
	// This is a caller contract violation, not a data condition.
	ErrNoInput = errors.New("no reconciliation inputs")

	// ErrQuorumNotMet indicates fewer providers succeeded than required.
	ErrQuorumNotMet = errors.New("provider quorum not met")

	// ErrNotReached marks a provider that had not settled when the global
	// timeout fired. Distinguishes "provider failed" from "provider never
	// got a chance to answer."
	ErrNotReached = errors.New("provider not reached before timeout")

	// ErrRateLimited indicates that a request was rate limited.
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidInput indicates that the input data is invalid.
	ErrInvalidInput = errors.New("invalid input")
)

// QuorumError reports a failed fan-out: fewer than Required providers
// responded successfully. Errors carries each failed provider's error for
// diagnostics.
type QuorumError struct {
	Succeeded int
	Required  int
	Errors    map[string]error
}

// Error implements the error interface.
func (e *QuorumError) Error() string {
	return fmt.Sprintf("only %d provider(s) responded successfully, %d required", e.Succeeded, e.Required)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *QuorumError) Unwrap() error {
	return ErrQuorumNotMet
}

// ProviderError wraps a failure from one external provider with attribution.
type ProviderError struct {
	Provider   string
	StatusCode int
	Cause      error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s provider error (status %d): %v", e.Provider, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("%s provider error: %v", e.Provider, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// ValidationError represents a validation error for a specific field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewQuorumError creates a QuorumError from a fan-out's outcome.
func NewQuorumError(succeeded, required int, errs map[string]error) *QuorumError {
	return &QuorumError{
		Succeeded: succeeded,
		Required:  required,
		Errors:    errs,
	}
}

// NewProviderError wraps cause with provider attribution.
func NewProviderError(provider string, statusCode int, cause error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		StatusCode: statusCode,
		Cause:      cause,
	}
}
