package errors

import (
	"errors"
	"fmt"
)

// Wrapper attaches module/operation context and a user-facing message to
// errors crossing a collaborator boundary.
type Wrapper struct {
	operation string
	module    string
}

// NewWrapper creates an error wrapper for one module operation.
func NewWrapper(module, operation string) *Wrapper {
	return &Wrapper{
		module:    module,
		operation: operation,
	}
}

// Wrap wraps err with the operation context and a user-facing message.
// Returns nil if err is nil.
func (w *Wrapper) Wrap(err error, userMessage string) error {
	if err == nil {
		return nil
	}
	return &WrappedError{
		Operation:   w.operation,
		Module:      w.module,
		Cause:       err,
		UserMessage: userMessage,
	}
}

// Wrapf is Wrap with a formatted user-facing message.
func (w *Wrapper) Wrapf(err error, userMessageFormat string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &WrappedError{
		Operation:   w.operation,
		Module:      w.module,
		Cause:       err,
		UserMessage: fmt.Sprintf(userMessageFormat, args...),
	}
}

// WrappedError carries internal error detail alongside a message safe to
// show the user.
type WrappedError struct {
	Operation   string // Operation being performed (e.g., "search", "create")
	Module      string // Module name (e.g., "news", "activity")
	Cause       error  // Underlying error
	UserMessage string // User-facing message
}

func (e *WrappedError) Error() string {
	return fmt.Sprintf("[%s:%s] %s: %v", e.Module, e.Operation, e.UserMessage, e.Cause)
}

func (e *WrappedError) Unwrap() error {
	return e.Cause
}

// GetUserMessage returns the user-facing message of the first WrappedError
// in err's chain, or "" when the chain carries none.
func GetUserMessage(err error) string {
	var wrapped *WrappedError
	if errors.As(err, &wrapped) {
		return wrapped.UserMessage
	}
	return ""
}
