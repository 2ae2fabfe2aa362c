package evaluator

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/cadkit/kcl-core/internal/engine"
	"github.com/cadkit/kcl-core/internal/kclast"
	"github.com/cadkit/kcl-core/internal/kclerrors"
	"github.com/cadkit/kcl-core/internal/value"
)

// Settings configures one evaluation (SPEC_FULL.md §5, "Units plumbing":
// the original's ExecutorSettings threads a configurable unit system and
// edge-highlight flag through the executor rather than hard-coding them).
// MaxCallDepth (SPEC_FULL.md §3) bounds nested user-function calls; the
// source language has no loops or conditionals (spec.md Non-goals), so
// unbounded recursion through self- or mutually-referencing Function
// values is the only way a program can fail to terminate, and this is
// the evaluator's one guard against it. Zero means unlimited.
type Settings struct {
	Units          string
	HighlightEdges bool
	MaxCallDepth   int
}

// DefaultSettings mirrors the original's defaults: millimeters, edges
// not highlighted, a 64-deep call stack.
func DefaultSettings() Settings {
	return Settings{Units: "mm", HighlightEdges: false, MaxCallDepth: 64}
}

// Context is the per-evaluation execution context threaded through the
// evaluator and its built-ins: the engine handle, configured settings,
// and the cached DefaultPlanes triple (SPEC_FULL.md §5).
type Context struct {
	Engine   engine.Manager
	Settings Settings

	mu     sync.Mutex
	planes map[value.PlaneKind]*value.Plane
	depth  int
}

// NewContext builds a fresh context. A nil engine manager defaults to a
// no-op mock (spec.md §4.7 "a mock mode substitutes a no-op engine").
func NewContext(mgr engine.Manager, settings Settings) *Context {
	if mgr == nil {
		mgr = engine.NewMock()
	}
	return &Context{Engine: mgr, Settings: settings, planes: make(map[value.PlaneKind]*value.Plane)}
}

// DefaultPlane resolves the well-known XY/XZ/YZ plane singletons, minting
// and caching a stable UUID on first use rather than on every call
// (SPEC_FULL.md §5 "DefaultPlanes").
func (c *Context) DefaultPlane(kind value.PlaneKind) *value.Plane {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.planes[kind]; ok {
		return p
	}
	p := &value.Plane{ID: uuid.New(), Kind: kind}
	switch kind {
	case value.PlaneXY:
		p.XAxis, p.YAxis, p.ZAxis = value.Point3{X: 1}, value.Point3{Y: 1}, value.Point3{Z: 1}
	case value.PlaneXZ:
		p.XAxis, p.YAxis, p.ZAxis = value.Point3{X: 1}, value.Point3{Z: 1}, value.Point3{Y: -1}
	case value.PlaneYZ:
		p.XAxis, p.YAxis, p.ZAxis = value.Point3{Y: 1}, value.Point3{Z: 1}, value.Point3{X: 1}
	}
	c.planes[kind] = p
	return p
}

// PlaneKindFromName parses the DSL's plane-name strings ("XY", "XZ",
// "YZ") used by startSketchOn. Any other name is Type error — it is
// not a recognized default plane.
func PlaneKindFromName(name string, rng kclast.SourceRange) (value.PlaneKind, error) {
	switch name {
	case "XY":
		return value.PlaneXY, nil
	case "XZ":
		return value.PlaneXZ, nil
	case "YZ":
		return value.PlaneYZ, nil
	default:
		return 0, kclerrors.New(kclerrors.Type, "unknown default plane "+name, rng)
	}
}

// prepare issues the two pre-execution engine commands spec.md §4.7
// requires before any body statement runs.
func (c *Context) prepare(ctx context.Context) error {
	return engine.Prepare(ctx, c.Engine, c.Settings.Units, c.Settings.HighlightEdges)
}

// enterCall increments the nested-call depth, failing Semantic once
// Settings.MaxCallDepth is exceeded (SPEC_FULL.md §3). The single-
// threaded cooperative evaluation model (spec.md §5) means depth never
// needs its own lock beyond the one already guarding planes.
func (c *Context) enterCall(rng kclast.SourceRange) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Settings.MaxCallDepth > 0 && c.depth >= c.Settings.MaxCallDepth {
		return kclerrors.New(kclerrors.Semantic, "maximum call depth exceeded", rng)
	}
	c.depth++
	return nil
}

// exitCall decrements the nested-call depth; always paired with a
// successful enterCall via defer.
func (c *Context) exitCall() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.depth--
}
