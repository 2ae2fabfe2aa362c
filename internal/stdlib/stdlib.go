// Package stdlib implements the Function Dispatcher (C6, spec.md §4.6):
// classification of a callee name into Core (host-implemented), Library
// (DSL-implemented), or UserDefined, with uniform call semantics.
package stdlib

import (
	"context"

	"github.com/cadkit/kcl-core/internal/kclast"
	"github.com/cadkit/kcl-core/internal/kclerrors"
	"github.com/cadkit/kcl-core/internal/memory"
	"github.com/cadkit/kcl-core/internal/value"
)

// Args is the packed argument bundle a Core function receives
// (spec.md §4.6): positional values, the call's source range, and an
// execution context handle.
type Args struct {
	Positional []value.Value
	Range      kclast.SourceRange
	Ctx        context.Context
	Memory     *memory.Memory
}

// CoreFunc is a host-implemented async function (spec.md §4.6). It is
// typed synchronous here (returning directly rather than via a channel)
// because the standard library's Go calling convention is already
// awaitable by the caller; spec.md §9 "async everywhere" only requires
// that the public surface remain composable under await, which a plain
// function satisfies for this evaluator's single-threaded-cooperative
// model (spec.md §5).
type CoreFunc func(Args) (value.Value, error)

// Kind discriminates the three dispatch arms (spec.md §4.6).
type Kind int

const (
	KindCore Kind = iota
	KindLibrary
	KindUserDefined
)

// Entry is one registry entry. Exactly one of Core or LibraryBody is set
// for KindCore/KindLibrary; KindUserDefined entries are synthesized by
// Dispatch and never stored in the Registry.
type Entry struct {
	Kind        Kind
	Core        CoreFunc
	LibraryBody *kclast.FunctionExpression
}

// Registry is the name→FunctionKind mapping (spec.md §4.6). Register and
// MergeInto modify it in place; it has no locking, so it is only safe to
// share once no further entries are added.
type Registry struct {
	entries map[string]Entry
}

// NewRegistry builds a registry from the given entries.
func NewRegistry(entries map[string]Entry) *Registry {
	r := &Registry{entries: make(map[string]Entry, len(entries))}
	for k, v := range entries {
		r.entries[k] = v
	}
	return r
}

// Lookup returns the registered entry for name, if any.
func (r *Registry) Lookup(name string) (Entry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Register adds or overwrites one entry. Intended for host embedders
// (pkg/kcl.Engine.RegisterFunction) extending the standard library
// before any evaluation begins.
func (r *Registry) Register(name string, entry Entry) {
	r.entries[name] = entry
}

// MergeInto copies every entry from r into dst, overwriting existing
// names (used to layer host-registered functions onto the default
// geometry/arithmetic registry built for each evaluation).
func (r *Registry) MergeInto(dst *Registry) {
	for name, entry := range r.entries {
		dst.entries[name] = entry
	}
}

// LibraryEvaluator evaluates a Library entry's body against a cloned
// memory, returning the resulting return slot's value. It is supplied by
// internal/evaluator to avoid an import cycle (stdlib cannot import
// evaluator, which imports stdlib to dispatch calls).
type LibraryEvaluator func(ctx context.Context, body *kclast.FunctionExpression, args []value.Value, callerMemory *memory.Memory, rng kclast.SourceRange) (value.Value, error)

// UserDefinedLookup resolves name against the current memory for the
// UserDefined fallback arm. It reports ok=false for an unbound name,
// which Dispatch folds into the same "No such name" Semantic error as
// a bound-but-non-callable value (spec.md §4.6 draws no distinction
// between the two).
type UserDefinedLookup func(name string, rng kclast.SourceRange) (v value.Value, ok bool)

// Dispatch classifies name and invokes it uniformly (spec.md §4.6):
//
//   - Core: calls fn directly, returning its single value.
//   - Library: evaluates the stored body via evalLibrary.
//   - UserDefined (fallback, name absent from the registry): looks the
//     name up in the current memory; if bound to a Function, invokes its
//     closure; otherwise fails Semantic("No such name <n> defined").
func Dispatch(registry *Registry, name string, args Args, evalLibrary LibraryEvaluator, lookupUser UserDefinedLookup) (value.Value, error) {
	if entry, ok := registry.Lookup(name); ok {
		switch entry.Kind {
		case KindCore:
			return entry.Core(args)
		case KindLibrary:
			return evalLibrary(args.Ctx, entry.LibraryBody, args.Positional, args.Memory, args.Range)
		}
	}

	v, ok := lookupUser(name, args.Range)
	if !ok {
		return nil, kclerrors.New(kclerrors.Semantic, "No such name "+name+" defined", args.Range)
	}
	fn, ok := v.(*value.Function)
	if !ok {
		return nil, kclerrors.New(kclerrors.Semantic, "No such name "+name+" defined", args.Range)
	}
	return fn.Body(args.Ctx, args.Positional, args.Range)
}
