// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

const (
	// KindIO marks underlying read, scan or archive failures.
	KindIO Kind = "io"
	// KindProtocolMismatch marks a URL or URI whose scheme does not match the operation.
	KindProtocolMismatch Kind = "protocol-mismatch"
	// KindInvalidArgument marks malformed arguments.
	KindInvalidArgument Kind = "invalid-argument"
	// KindConfiguration marks irrecoverable setup failures.
	KindConfiguration Kind = "configuration"
)

var (
	// ErrIO is matched by every KindIO error.
	ErrIO = errors.New("i/o failure")
	// ErrProtocolMismatch is matched by every KindProtocolMismatch error.
	ErrProtocolMismatch = errors.New("protocol mismatch")
	// ErrInvalidArgument is matched by every KindInvalidArgument error.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConfiguration is matched by every KindConfiguration error.
	ErrConfiguration = errors.New("configuration failure")
)

type (
	// Kind classifies an ActionableError. The zero value is unclassified.
	Kind string

	// ActionableError is an error with context for callers deciding how to react.
	// It names the operation that failed, the resource (URL, path or name)
	// involved, optional suggestions and the underlying cause.
	//
	// Use the ErrorContext builder for convenient construction:
	//
	//	err := issue.NewErrorContext().
	//		WithKind(issue.KindIO).
	//		WithOperation("open archive").
	//		WithResource("jar:file:/opt/app.jar!/META-INF/").
	//		Wrap(originalErr).
	//		BuildError()
	ActionableError struct {
		// Kind classifies the failure.
		Kind Kind

		// Operation describes what was being attempted (e.g., "open stream", "scan directory").
		Operation string

		// Resource identifies the URL, path or resource name involved (optional).
		Resource string

		// Suggestions provides hints on how to fix the issue (optional).
		Suggestions []string

		// Cause is the underlying error that triggered this error (optional).
		Cause error
	}

	// ErrorContext is a builder for constructing ActionableError instances.
	//
	// Example:
	//
	//	ctx := issue.NewErrorContext().
	//		WithKind(issue.KindIO).
	//		WithResource(u.String())
	//
	//	// Later, when an error occurs:
	//	return ctx.WithOperation("read entry").Wrap(err).BuildError()
	ErrorContext struct {
		kind        Kind
		operation   string
		resource    string
		suggestions []string
		cause       error
	}
)

// Sentinel returns the sentinel error matched by errors of this kind, or nil
// for an unclassified kind.
func (k Kind) Sentinel() error {
	switch k {
	case KindIO:
		return ErrIO
	case KindProtocolMismatch:
		return ErrProtocolMismatch
	case KindInvalidArgument:
		return ErrInvalidArgument
	case KindConfiguration:
		return ErrConfiguration
	default:
		return nil
	}
}

// String returns the kind name.
func (k Kind) String() string { return string(k) }

// --- Constructors ---

// NewErrorContext creates a new ErrorContext builder.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// IO wraps err as a KindIO failure of operation on resource.
// It returns nil when err is nil.
func IO(err error, operation, resource string) error {
	if err == nil {
		return nil
	}
	return &ActionableError{Kind: KindIO, Operation: operation, Resource: resource, Cause: err}
}

// ProtocolMismatch reports that resource does not use the expected protocol.
func ProtocolMismatch(expected, resource string) error {
	return &ActionableError{
		Kind:      KindProtocolMismatch,
		Operation: "verify protocol " + expected,
		Resource:  resource,
	}
}

// InvalidArgument reports a malformed argument to operation.
func InvalidArgument(operation, resource string, cause error) error {
	return &ActionableError{Kind: KindInvalidArgument, Operation: operation, Resource: resource, Cause: cause}
}

// Configuration reports an irrecoverable setup failure.
func Configuration(operation string, cause error) error {
	return &ActionableError{Kind: KindConfiguration, Operation: operation, Cause: cause}
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	s := kind.Sentinel()
	return s != nil && errors.Is(err, s)
}

// --- ActionableError Methods ---

// Error implements the error interface.
func (e *ActionableError) Error() string {
	var msg strings.Builder

	msg.WriteString("failed to ")
	msg.WriteString(e.Operation)

	if e.Resource != "" {
		msg.WriteString(": ")
		msg.WriteString(e.Resource)
	}

	if e.Cause != nil {
		msg.WriteString(": ")
		msg.WriteString(e.Cause.Error())
	}

	return msg.String()
}

// Unwrap exposes both the kind sentinel and the cause, so errors.Is matches
// either of them.
func (e *ActionableError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.Sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Format returns a formatted error message with optional verbosity.
//
// When verbose is false:
//
//	failed to <operation>: <resource>: <cause message>
//	  • <suggestion 1>
//
// When verbose is true, additionally includes the full cause chain.
func (e *ActionableError) Format(verbose bool) string {
	var msg strings.Builder

	msg.WriteString(e.Error())

	if len(e.Suggestions) > 0 {
		msg.WriteString("\n")
		for _, suggestion := range e.Suggestions {
			msg.WriteString("\n  • ")
			msg.WriteString(suggestion)
		}
	}

	if verbose && e.Cause != nil {
		msg.WriteString("\n\nError chain:")
		err := e.Cause
		depth := 1
		for err != nil {
			fmt.Fprintf(&msg, "\n  %d. %s", depth, err.Error())
			err = errors.Unwrap(err)
			depth++
		}
	}

	return msg.String()
}

// HasSuggestions returns true if the error has any suggestions.
func (e *ActionableError) HasSuggestions() bool {
	return len(e.Suggestions) > 0
}

// --- ErrorContext Methods ---

// WithKind sets the error classification.
func (c *ErrorContext) WithKind(kind Kind) *ErrorContext {
	c.kind = kind
	return c
}

// WithOperation sets the operation being performed.
// The operation should be a verb phrase like "open stream" or "scan archive".
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.operation = op
	return c
}

// WithResource sets the resource (URL, path, name) involved.
func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.resource = res
	return c
}

// WithSuggestion adds a suggestion for how to fix the issue.
func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	c.suggestions = append(c.suggestions, sug)
	return c
}

// Wrap wraps an underlying error as the cause.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.cause = err
	return c
}

// Build creates an ActionableError from the context.
// Returns nil if no operation is set (operation is required).
func (c *ErrorContext) Build() *ActionableError {
	if c.operation == "" {
		return nil
	}

	return &ActionableError{
		Kind:        c.kind,
		Operation:   c.operation,
		Resource:    c.resource,
		Suggestions: slices.Clone(c.suggestions),
		Cause:       c.cause,
	}
}

// BuildError creates an ActionableError and returns it as an error interface.
// Returns nil if no operation is set.
func (c *ErrorContext) BuildError() error {
	ae := c.Build()
	if ae == nil {
		return nil
	}
	return ae
}
