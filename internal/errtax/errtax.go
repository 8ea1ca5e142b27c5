// Package errtax defines the closed error-kind taxonomy shared by the
// grammar, AST builder, renderer, cache, and pipeline layers (spec
// §4.10, §7). Every pipeline-facing API returns an *EngineError rather
// than a bare error, so hosts can branch on Kind without string
// matching.
package errtax

import (
	"fmt"

	"github.com/JamieLittle16/marco/internal/span"
)

// Kind is the closed set of error categories the core can raise.
type Kind int

const (
	// Parse errors are raised by grammar recognizers and are
	// recoverable via block-boundary resync.
	Parse Kind = iota
	// Build errors are raised by the AST builder; unknown rules
	// degrade to Unknown nodes rather than aborting the document.
	Build
	// Render errors are raised by the renderer and are never
	// recovered locally.
	Render
	// Io errors come from the file cache or file-based pipeline
	// entry points and are propagated unchanged.
	Io
	// Invalid errors cover bad options or a malformed fingerprint.
	Invalid
)

func (k Kind) String() string {
	switch k {
	case Parse:
		return "parse"
	case Build:
		return "build"
	case Render:
		return "render"
	case Io:
		return "io"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// EngineError is the unified error type returned across the core's
// external interface (spec §6). Span is populated whenever a source
// location is known; it is the zero Span otherwise.
type EngineError struct {
	Kind    Kind
	Message string
	Span    span.Span
	Cause   error
}

func (e *EngineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *EngineError) Unwrap() error {
	return e.Cause
}

// New builds an EngineError with no known span.
func New(kind Kind, message string) *EngineError {
	return &EngineError{Kind: kind, Message: message}
}

// At builds an EngineError anchored to a source span.
func At(kind Kind, message string, s span.Span) *EngineError {
	return &EngineError{Kind: kind, Message: message, Span: s}
}

// Wrap builds an EngineError from an underlying cause, typically at
// an I/O or option-validation boundary where there is no source span.
func Wrap(kind Kind, message string, cause error) *EngineError {
	return &EngineError{Kind: kind, Message: message, Cause: cause}
}
