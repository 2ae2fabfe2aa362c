// Package kclast defines the AST node types the evaluator consumes.
//
// Lexing, parsing, and recasting are out of scope for this core (see
// SPEC_FULL.md §2) — this package is the contract a parser would produce
// and the evaluator walks. Node shapes follow the teacher's internal/ast
// package (a Node/Expression/Statement interface family with Pos/String),
// generalized from DWScript's statement set to KCL's program/body/value
// set.
package kclast

// SourceRange is a pair of byte offsets into the source text.
type SourceRange struct {
	Start int
	End   int
}

// Zero reports whether r is the zero-value range (used for ranges that
// point nowhere in particular, e.g. synthetic engine commands).
func (r SourceRange) Zero() bool { return r.Start == 0 && r.End == 0 }

// Node is the base interface every AST node implements.
type Node interface {
	Pos() SourceRange
	String() string
}

// BodyItem is a top-level or function-body statement.
type BodyItem interface {
	Node
	bodyItemNode()
}

// Value is the sum of all expression node kinds the evaluator can reduce
// to a runtime value.
type Value interface {
	Node
	valueNode()
}

// Program is the root of a parsed KCL source file.
type Program struct {
	Body []BodyItem
	// End is the byte offset one past the last byte of source; it is the
	// range at which the post-body engine batch flush is attributed.
	End int
}

func (p *Program) Pos() SourceRange {
	if len(p.Body) == 0 {
		return SourceRange{}
	}
	return SourceRange{Start: p.Body[0].Pos().Start, End: p.End}
}

func (p *Program) String() string { return "Program" }
