// Package evaluator implements the Evaluator (C4, spec.md §4.4): it
// walks program/body items, evaluates expressions, binds variables,
// and invokes functions, consulting Program Memory (C2) and Pipe State
// (C3) and dispatching calls through the Function Dispatcher (C6).
package evaluator

import (
	"context"

	"github.com/cadkit/kcl-core/internal/binder"
	"github.com/cadkit/kcl-core/internal/kclast"
	"github.com/cadkit/kcl-core/internal/kclerrors"
	"github.com/cadkit/kcl-core/internal/memory"
	"github.com/cadkit/kcl-core/internal/stdlib"
	"github.com/cadkit/kcl-core/internal/value"
)

// BodyType distinguishes the top-level program body from a nested
// function-call body (SPEC_FULL.md §5: the original threads this tag
// through inner_execute though it presently carries no control-flow
// meaning here either — reserved for growth, not dropped).
type BodyType int

const (
	BodyRoot BodyType = iota
	BodyBlock
)

// Evaluator walks a Program against a Context and a standard-library
// registry (spec.md §4.4, §4.6).
type Evaluator struct {
	Ctx      *Context
	Registry *stdlib.Registry
}

// New builds an evaluator with the default (geometry + arithmetic)
// standard library registered.
func New(ctx *Context) *Evaluator {
	e := &Evaluator{Ctx: ctx}
	e.registerBuiltins(ctx)
	return e
}

// Run evaluates program against mem: issues the pre-execution engine
// commands, walks the body, and flushes the batch at the program's end
// range (spec.md §4.4, §4.7).
func (e *Evaluator) Run(goCtx context.Context, program *kclast.Program, mem *memory.Memory) error {
	if err := e.Ctx.prepare(goCtx); err != nil {
		return err
	}
	if err := e.ExecuteBody(goCtx, program, mem, BodyRoot); err != nil {
		return err
	}
	endRange := kclast.SourceRange{Start: program.End, End: program.End}
	return e.Ctx.Engine.FlushBatch(goCtx, endRange)
}

// ExecuteBody processes a Program's body items in order against mem and
// a fresh PipeInfo (spec.md §4.4). bodyType is presently reserved
// (SPEC_FULL.md §5); only BodyRoot triggers the end-of-body batch flush,
// which Run performs itself rather than ExecuteBody, so that nested
// function-call bodies (BodyBlock) do not each flush independently.
func (e *Evaluator) ExecuteBody(goCtx context.Context, program *kclast.Program, mem *memory.Memory, bodyType BodyType) error {
	pipe := memory.NewPipeInfo()
	for _, item := range program.Body {
		if err := e.execBodyItem(goCtx, item, mem, pipe); err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) execBodyItem(goCtx context.Context, item kclast.BodyItem, mem *memory.Memory, pipe *memory.PipeInfo) error {
	switch s := item.(type) {
	case *kclast.ExpressionStatement:
		return e.execExpressionStatement(goCtx, s, mem, pipe)
	case *kclast.VariableDeclaration:
		return e.execVariableDeclaration(goCtx, s, mem, pipe)
	case *kclast.ReturnStatement:
		return e.execReturnStatement(goCtx, s, mem, pipe)
	default:
		return nil
	}
}

func (e *Evaluator) execExpressionStatement(goCtx context.Context, s *kclast.ExpressionStatement, mem *memory.Memory, pipe *memory.PipeInfo) error {
	switch expr := s.Expression.(type) {
	case *kclast.PipeExpression:
		_, err := e.evalPipe(goCtx, expr, mem, pipe)
		return err
	case *kclast.CallExpression:
		result, err := e.evalCall(goCtx, expr, mem, pipe)
		if err != nil {
			return err
		}
		mem.SetReturn(result)
		return nil
	default:
		// Any other expression kind is ignored at statement level
		// (spec.md §4.4).
		return nil
	}
}

func (e *Evaluator) execVariableDeclaration(goCtx context.Context, s *kclast.VariableDeclaration, mem *memory.Memory, pipe *memory.PipeInfo) error {
	for _, decl := range s.Declarations {
		if _, isSub := decl.Init.(*kclast.PipeSubstitution); isSub {
			return kclerrors.New(kclerrors.Semantic, "% used outside a pipeline", decl.Range)
		}
		var v value.Value
		var err error
		if fnExpr, ok := decl.Init.(*kclast.FunctionExpression); ok {
			v = e.bindFunction(fnExpr, mem)
		} else {
			v, err = e.evalExpr(goCtx, decl.Init, mem, pipe)
			if err != nil {
				return err
			}
		}
		if err := mem.Add(decl.Name, v, decl.Range); err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) execReturnStatement(goCtx context.Context, s *kclast.ReturnStatement, mem *memory.Memory, pipe *memory.PipeInfo) error {
	switch s.Argument.(type) {
	case *kclast.PipeSubstitution, *kclast.FunctionExpression:
		// Silently ignored as return arguments, preserved for
		// bug-compatibility (spec.md §4.4, §9 open question 1).
		return nil
	}
	v, err := e.evalExpr(goCtx, s.Argument, mem, pipe)
	if err != nil {
		return err
	}
	mem.SetReturn(v)
	return nil
}

// bindFunction constructs a Function value whose closure clones memRef
// (the enclosing evaluation's live memory) at call time, so the callee
// sees every binding added to memRef up to the moment of invocation —
// not just those present when the function was declared (spec.md §3
// "Function values ... remain valid for the life of the enclosing
// memory").
func (e *Evaluator) bindFunction(fnExpr *kclast.FunctionExpression, memRef *memory.Memory) *value.Function {
	fn := &value.Function{
		Expression: fnExpr,
		Meta:       []value.Metadata{{Range: fnExpr.Pos()}},
	}
	fn.Body = func(goCtx context.Context, args []value.Value, callRange kclast.SourceRange) (value.Value, error) {
		return e.callFunction(goCtx, fnExpr, args, memRef, callRange)
	}
	return fn
}

// callFunction binds args to fnExpr's parameters against a clone of
// callerMemory, executes the body, and returns the callee's return slot
// per spec.md §4.6's UserDefined/Library semantics.
func (e *Evaluator) callFunction(goCtx context.Context, fnExpr *kclast.FunctionExpression, args []value.Value, callerMemory *memory.Memory, callRange kclast.SourceRange) (value.Value, error) {
	if err := e.Ctx.enterCall(callRange); err != nil {
		return nil, err
	}
	defer e.Ctx.exitCall()

	extended, err := binder.Bind(fnExpr, args, callerMemory)
	if err != nil {
		return nil, err
	}
	if err := e.ExecuteBody(goCtx, fnExpr.Body, extended, BodyBlock); err != nil {
		return nil, err
	}
	switch extended.Return.Kind {
	case memory.ReturnValue:
		return extended.Return.Value, nil
	case memory.ReturnArguments:
		return nil, kclerrors.New(kclerrors.Semantic, "function returned the arguments sentinel, not a value", callRange)
	default:
		return value.None(value.Metadata{Range: callRange}), nil
	}
}
