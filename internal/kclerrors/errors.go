// Package kclerrors implements the single structured error type required
// by spec.md §7. It is deliberately dependency-free, following the
// teacher's internal/errors package, which formats compiler diagnostics
// with nothing beyond fmt/strings rather than reaching for an
// error-wrapping library.
package kclerrors

import (
	"fmt"
	"strings"

	"github.com/cadkit/kcl-core/internal/kclast"
)

// Kind classifies a failure per spec.md §7.
type Kind int

const (
	// Semantic covers call arity, undefined names at dispatch, malformed
	// return, illegal pipe substitution, and "not a function".
	Semantic Kind = iota
	// Type covers JSON deserialization failure, missing segment names, and
	// empty sketch groups where one segment is required.
	Type
	// ValueAlreadyDefined is a rebind of an existing memory key.
	ValueAlreadyDefined
	// UndefinedValue is a read of an unbound name.
	UndefinedValue
	// Engine is a transport-layer failure from the modeling engine.
	Engine
)

func (k Kind) String() string {
	switch k {
	case Semantic:
		return "Semantic"
	case Type:
		return "Type"
	case ValueAlreadyDefined:
		return "ValueAlreadyDefined"
	case UndefinedValue:
		return "UndefinedValue"
	case Engine:
		return "Engine"
	default:
		return "Unknown"
	}
}

// Error is the sole error type surfaced by evaluation (spec.md §7): every
// error carries a message and a non-empty list of source ranges whenever
// the triggering AST node is known.
type Error struct {
	Kind         Kind
	Message      string
	SourceRanges []kclast.SourceRange
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	sb.WriteString(" [")
	sb.WriteString(e.Kind.String())
	sb.WriteString("]")
	if len(e.SourceRanges) > 0 {
		r := e.SourceRanges[0]
		fmt.Fprintf(&sb, " at %d:%d", r.Start, r.End)
	}
	return sb.String()
}

func New(kind Kind, message string, ranges ...kclast.SourceRange) *Error {
	return &Error{Kind: kind, Message: message, SourceRanges: ranges}
}

func Semanticf(format string, ranges []kclast.SourceRange, args ...any) *Error {
	return &Error{Kind: Semantic, Message: fmt.Sprintf(format, args...), SourceRanges: ranges}
}

func Typef(format string, ranges []kclast.SourceRange, args ...any) *Error {
	return &Error{Kind: Type, Message: fmt.Sprintf(format, args...), SourceRanges: ranges}
}
