// Package kcl is the public embedding API for the interpreter core: a
// functional-options-configured Engine exposing Eval/Run, an FFI
// registration hook for host-defined Core functions, and a Result type
// carrying the final program memory or a structured failure. The shape
// (With... options, Result.Success/Output/Err) is
// reconstructed from the teacher's pkg/dwscript test suite, whose own
// source was not present in the retrieval pack (SPEC_FULL.md §3).
package kcl

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kr/pretty"

	"github.com/cadkit/kcl-core/internal/config"
	"github.com/cadkit/kcl-core/internal/engine"
	"github.com/cadkit/kcl-core/internal/evaluator"
	"github.com/cadkit/kcl-core/internal/kclast"
	"github.com/cadkit/kcl-core/internal/kclastjson"
	"github.com/cadkit/kcl-core/internal/kclerrors"
	"github.com/cadkit/kcl-core/internal/kcllog"
	"github.com/cadkit/kcl-core/internal/memory"
	"github.com/cadkit/kcl-core/internal/stdlib"
	"github.com/cadkit/kcl-core/internal/value"
)

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithOutput directs diagnostic logging to w instead of os.Stderr.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) { e.output = w }
}

// WithVerbose enables debug-level diagnostic logging.
func WithVerbose(v bool) Option {
	return func(e *Engine) { e.verbose = v }
}

// WithUnits overrides the configured scene unit system (SPEC_FULL.md §5
// "Units plumbing").
func WithUnits(units string) Option {
	return func(e *Engine) { e.settings.Units = units }
}

// WithHighlightEdges overrides the configured edge-highlight flag.
func WithHighlightEdges(v bool) Option {
	return func(e *Engine) { e.settings.HighlightEdges = v }
}

// WithConfigFile loads engine settings from a YAML file (SPEC_FULL.md
// §3 "Configuration"). Errors loading the file are deferred to New's
// return value.
func WithConfigFile(path string) Option {
	return func(e *Engine) {
		cfg, err := config.Load(path)
		if err != nil {
			e.initErr = err
			return
		}
		e.settings = cfg.EvaluatorSettings()
	}
}

// WithEngineManager substitutes a caller-supplied engine manager for the
// default no-op mock (spec.md §4.7).
func WithEngineManager(mgr engine.Manager) Option {
	return func(e *Engine) { e.engineMgr = mgr }
}

// Engine is the embeddable interpreter facade.
type Engine struct {
	output    io.Writer
	verbose   bool
	settings  evaluator.Settings
	engineMgr engine.Manager
	initErr   error

	log      *kcllog.Logger
	registry *stdlib.Registry
}

// New builds an Engine from the given options.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{settings: evaluator.DefaultSettings()}
	for _, opt := range opts {
		opt(e)
	}
	if e.initErr != nil {
		return nil, e.initErr
	}
	if e.output == nil {
		e.output = os.Stderr
	}
	e.log = kcllog.New(e.output, e.verbose)
	return e, nil
}

// RegisterFunction adds a host-implemented Core function to this
// engine's standard library, callable from evaluated programs by name.
// Must be called before the first Eval/Run (the registry is immutable
// once an evaluation starts, spec.md §5).
func (e *Engine) RegisterFunction(name string, fn func(ctx context.Context, args []value.Value, rng kclast.SourceRange) (value.Value, error)) {
	if e.registry == nil {
		e.registry = stdlib.NewRegistry(nil)
	}
	core := stdlib.CoreFunc(func(a stdlib.Args) (value.Value, error) {
		return fn(a.Ctx, a.Positional, a.Range)
	})
	e.registry.Register(name, stdlib.Entry{Kind: stdlib.KindCore, Core: core})
}

// Result is the outcome of one evaluation.
type Result struct {
	// Memory is the final program memory; nil on failure (spec.md §7:
	// "no program memory is returned — only the error").
	Memory *memory.Memory
	// Err is the first failure encountered, if any.
	Err error
}

// Success reports whether the evaluation completed without error.
func (r Result) Success() bool { return r.Err == nil }

// Output renders the final memory's bindings for display, one per line
// in natural key order (memory.SortedKeys), each value formatted with
// kr/pretty's Go-syntax dump.
func (r Result) Output() string {
	if r.Memory == nil {
		return ""
	}
	var sb strings.Builder
	for _, k := range r.Memory.SortedKeys() {
		v, err := r.Memory.Get(k, kclast.SourceRange{})
		if err == nil {
			fmt.Fprintf(&sb, "%s: %s\n", k, pretty.Sprint(v))
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// Eval runs program against a fresh memory and returns the outcome.
func (e *Engine) Eval(ctx context.Context, program *kclast.Program) Result {
	mem := memory.New()
	return e.run(ctx, program, mem)
}

// Run evaluates program against a caller-supplied memory, extending it
// in place for partial re-execution (spec.md §3 "seeded by the caller
// for partial re-execution").
func (e *Engine) Run(ctx context.Context, program *kclast.Program, mem *memory.Memory) Result {
	return e.run(ctx, program, mem)
}

func (e *Engine) run(ctx context.Context, program *kclast.Program, mem *memory.Memory) Result {
	execCtx := evaluator.NewContext(e.engineMgr, e.settings)
	ev := evaluator.New(execCtx)
	if e.registry != nil {
		e.registry.MergeInto(ev.Registry)
	}
	e.log.Debug("eval start", "units", e.settings.Units)
	if err := ev.Run(ctx, program, mem); err != nil {
		e.log.Error("eval failed", "error", err)
		return Result{Err: err}
	}
	e.log.Debug("eval complete", "bindings", mem.Len())
	return Result{Memory: mem}
}

// CompileFromJSON decodes a JSON-encoded AST fixture (internal/kclastjson)
// and evaluates it — the CLI's and test harness's entry point in the
// absence of a textual-source parser, which is out of scope for this
// core (spec.md §1).
func (e *Engine) CompileFromJSON(ctx context.Context, raw []byte) Result {
	program, err := kclastjson.Decode(raw)
	if err != nil {
		return Result{Err: kclerrors.New(kclerrors.Semantic, err.Error())}
	}
	return e.Eval(ctx, program)
}
