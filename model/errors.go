package model

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument marks bad caller input, e.g. an empty track title.
// Wrap with detail: fmt.Errorf("%w: track name must not be empty", ErrInvalidArgument).
var ErrInvalidArgument = errors.New("invalid argument")

// ErrNoValidSuggestions means the model produced entries but none carried
// both a title and an artist, so there is nothing to resolve.
var ErrNoValidSuggestions = errors.New("no valid songs could be processed")

// ConfigError reports a missing credential or setting detected at client
// construction time. Construction fails fast rather than deferring to first use.
type ConfigError struct {
	Missing string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s is not set", e.Missing)
}

// CredentialError reports a failed credential exchange with the catalog's
// token endpoint. It degrades the affected lookup, never the whole request.
type CredentialError struct {
	Err error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("credential exchange failed: %v", e.Err)
}

func (e *CredentialError) Unwrap() error { return e.Err }

// GenerationError means every generation tier was exhausted. Cause holds the
// last underlying error for diagnostics.
type GenerationError struct {
	Cause error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("song generation failed: %v", e.Cause)
}

func (e *GenerationError) Unwrap() error { return e.Cause }
