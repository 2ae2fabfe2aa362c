package evaluator

import (
	"context"
	"math"
	"testing"

	"github.com/cadkit/kcl-core/internal/kclast"
	"github.com/cadkit/kcl-core/internal/kclerrors"
	"github.com/cadkit/kcl-core/internal/memory"
	"github.com/cadkit/kcl-core/internal/value"
)

func lit(v any) *kclast.Literal { return &kclast.Literal{Value: v} }
func ident(name string) *kclast.Identifier { return &kclast.Identifier{Name: name} }
func bin(op string, l, r kclast.Value) *kclast.BinaryExpression {
	return &kclast.BinaryExpression{Operator: op, Left: l, Right: r}
}
func unary(op string, arg kclast.Value) *kclast.UnaryExpression {
	return &kclast.UnaryExpression{Operator: op, Argument: arg}
}
func call(name string, args ...kclast.Value) *kclast.CallExpression {
	return &kclast.CallExpression{Callee: &kclast.Identifier{Name: name}, Arguments: args}
}
func constDecl(name string, init kclast.Value) *kclast.VariableDeclaration {
	return &kclast.VariableDeclaration{Kind: "const", Declarations: []*kclast.VariableDeclarator{{Name: name, Init: init}}}
}
func letDecl(name string, init kclast.Value) *kclast.VariableDeclaration {
	return &kclast.VariableDeclaration{Kind: "let", Declarations: []*kclast.VariableDeclarator{{Name: name, Init: init}}}
}

func newTestEvaluator() *Evaluator {
	return New(NewContext(nil, DefaultSettings()))
}

func runProgram(t *testing.T, items ...kclast.BodyItem) *memory.Memory {
	t.Helper()
	ev := newTestEvaluator()
	mem := memory.New()
	program := &kclast.Program{Body: items, End: 0}
	if err := ev.ExecuteBody(context.Background(), program, mem, BodyRoot); err != nil {
		t.Fatalf("unexpected evaluation error: %v", err)
	}
	return mem
}

// S1: const myVar = 5; const newVar = myVar + 1 -> myVar=5 (int), newVar=6.0
func TestS1MyVarAndNewVar(t *testing.T) {
	mem := runProgram(t,
		constDecl("myVar", lit(int64(5))),
		constDecl("newVar", bin("+", ident("myVar"), lit(int64(1)))),
	)
	myVar, err := mem.Get("myVar", kclast.SourceRange{})
	if err != nil {
		t.Fatal(err)
	}
	uv, ok := myVar.(*value.UserVal)
	if !ok {
		t.Fatalf("expected a UserVal, got %#v", myVar)
	}
	if n, ok := uv.JSON.(int64); !ok || n != 5 {
		t.Fatalf("expected myVar=5 (int64), got %#v", uv.JSON)
	}
	newVar := mustFloat(t, mem, "newVar")
	if newVar != 6.0 {
		t.Fatalf("expected newVar=6.0, got %v", newVar)
	}
}

func TestS2ArithmeticPrecedence(t *testing.T) {
	// 1 + 2*(3-4)/-5 + 6
	expr := bin("+",
		bin("+", lit(1.0), bin("/", bin("*", lit(2.0), bin("-", lit(3.0), lit(4.0))), unary("-", lit(5.0)))),
		lit(6.0),
	)
	mem := runProgram(t, constDecl("myVar", expr))
	got := mustFloat(t, mem, "myVar")
	if math.Abs(got-7.4) > 1e-9 {
		t.Fatalf("expected 7.4, got %v", got)
	}
}

func TestS3NegativeUnaryInBinary(t *testing.T) {
	mem := runProgram(t, constDecl("myVar", bin("+", unary("-", lit(5.0)), lit(6.0))))
	got := mustFloat(t, mem, "myVar")
	if got != 1.0 {
		t.Fatalf("expected 1.0, got %v", got)
	}
}

func TestS4Pi(t *testing.T) {
	mem := runProgram(t, constDecl("myVar", bin("*", call("pi"), lit(2.0))))
	got := mustFloat(t, mem, "myVar")
	if math.Abs(got-2*math.Pi) > 1e-9 {
		t.Fatalf("expected 2*pi, got %v", got)
	}
}

func TestS5LetDeclaration(t *testing.T) {
	mem := runProgram(t, letDecl("thing", bin("+", lit(0.4), lit(7.0))))
	got := mustFloat(t, mem, "thing")
	if math.Abs(got-7.4) > 1e-9 {
		t.Fatalf("expected 7.4, got %v", got)
	}
}

func TestS6MinAndLegLen(t *testing.T) {
	expr := bin("+", lit(2.0), call("min", lit(100.0), bin("+", unary("-", lit(1.0)), call("legLen", lit(5.0), lit(3.0)))))
	mem := runProgram(t, constDecl("myVar", expr))
	got := mustFloat(t, mem, "myVar")
	if got != 5.0 {
		t.Fatalf("expected 5.0, got %v", got)
	}
}

func TestS7DuplicateDeclaration(t *testing.T) {
	ev := newTestEvaluator()
	mem := memory.New()
	program := &kclast.Program{Body: []kclast.BodyItem{
		constDecl("myVar", lit(1.0)),
		constDecl("myVar", lit(2.0)),
	}}
	err := ev.ExecuteBody(context.Background(), program, mem, BodyRoot)
	kerr, ok := err.(*kclerrors.Error)
	if !ok || kerr.Kind != kclerrors.ValueAlreadyDefined {
		t.Fatalf("expected ValueAlreadyDefined, got %v", err)
	}
}

func TestUndefinedIdentifierRead(t *testing.T) {
	ev := newTestEvaluator()
	mem := memory.New()
	program := &kclast.Program{Body: []kclast.BodyItem{constDecl("x", ident("neverBound"))}}
	err := ev.ExecuteBody(context.Background(), program, mem, BodyRoot)
	kerr, ok := err.(*kclerrors.Error)
	if !ok || kerr.Kind != kclerrors.UndefinedValue {
		t.Fatalf("expected UndefinedValue, got %v", err)
	}
}

func TestEmptyProgramBody(t *testing.T) {
	ev := newTestEvaluator()
	mem := memory.New()
	program := &kclast.Program{}
	if err := ev.ExecuteBody(context.Background(), program, mem, BodyRoot); err != nil {
		t.Fatalf("expected an empty body to evaluate cleanly: %v", err)
	}
}

// A `return` whose argument is itself a FunctionExpression is silently
// ignored (bug-compatibility, see execReturnStatement) rather than
// producing a callable value, so calling such a function yields
// KclNone rather than a nested function.
func TestFunctionReturnOfFunctionExpressionIsIgnored(t *testing.T) {
	outer := &kclast.FunctionExpression{
		Params: nil,
		Body: &kclast.Program{Body: []kclast.BodyItem{
			&kclast.ReturnStatement{Argument: &kclast.FunctionExpression{
				Body: &kclast.Program{Body: []kclast.BodyItem{
					&kclast.ReturnStatement{Argument: lit(9.0)},
				}},
			}},
		}},
	}
	mem := runProgram(t,
		constDecl("makeFn", outer),
		&kclast.ExpressionStatement{Expression: call("makeFn")},
	)
	if mem.Return.Kind != memory.ReturnValue {
		t.Fatalf("expected the call result to be bound, got kind %v", mem.Return.Kind)
	}
	if !value.IsNone(mem.Return.Value) {
		t.Fatalf("expected KclNone per bug-compat return handling, got %#v", mem.Return.Value)
	}
}

func mustFloat(t *testing.T, mem *memory.Memory, name string) float64 {
	t.Helper()
	v, err := mem.Get(name, kclast.SourceRange{})
	if err != nil {
		t.Fatal(err)
	}
	f, err := asFloat(v, kclast.SourceRange{})
	if err != nil {
		t.Fatal(err)
	}
	return f
}
