// Package errors provides the sentinel errors and user-facing error
// wrapping shared across the bot's modules.
package errors

import (
	"errors"
)

// Sentinel errors. Check with errors.Is or the helpers below.
var (
	// ErrNotFound indicates a search resolved to nothing: no matching
	// article, no overlapping activity, no scraper for the outlet.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates an utterance fragment that cannot be
	// interpreted, such as an impossible calendar date.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCollaborator indicates a collaborator service call failed.
	// Callers degrade instead of retrying.
	ErrCollaborator = errors.New("collaborator service failed")

	// ErrAmbiguousLocation indicates an activity has no usable location.
	ErrAmbiguousLocation = errors.New("ambiguous activity location")
)

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput reports whether err is or wraps ErrInvalidInput.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsCollaborator reports whether err is or wraps ErrCollaborator.
func IsCollaborator(err error) bool {
	return errors.Is(err, ErrCollaborator)
}
