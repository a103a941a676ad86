package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCatalogEmpty signals a catalog source without a single listing.
	ErrCatalogEmpty = errors.New("catalog is empty")
	// ErrCatalogMalformed signals an unreadable catalog row or header.
	ErrCatalogMalformed = errors.New("catalog is malformed")
	// ErrModelArtifact signals an invalid or unreadable model artifact.
	ErrModelArtifact = errors.New("invalid model artifact")

	// ErrPredictorContract signals a predictor answer that does not match the request shape.
	ErrPredictorContract = errors.New("predictor contract violation")
	// ErrPredictorUnavailable signals a predictor backend failure.
	ErrPredictorUnavailable = errors.New("predictor unavailable")
	// ErrInvalidInput signals out-of-domain valuation inputs.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownProfile signals a comparables profile name that is not configured.
	ErrUnknownProfile = errors.New("unknown comparables profile")
	// ErrUnsupportedFormat signals an export or file format that is not supported.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrNarratorUnavailable signals a failed valuation summary request.
	ErrNarratorUnavailable = errors.New("narrator unavailable")
)

// InputError wraps ErrInvalidInput with the offending field.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput.Error(), e.Field, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// NewInputError creates an input validation error for a single field.
func NewInputError(field, reason string) error {
	return &InputError{Field: field, Reason: reason}
}
