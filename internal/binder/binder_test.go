package binder

import (
	"testing"

	"github.com/cadkit/kcl-core/internal/kclast"
	"github.com/cadkit/kcl-core/internal/kclerrors"
	"github.com/cadkit/kcl-core/internal/memory"
	"github.com/cadkit/kcl-core/internal/value"
)

func fn(params []kclast.Parameter) *kclast.FunctionExpression {
	return &kclast.FunctionExpression{
		Params: params,
		Body:   &kclast.Program{},
		Range:  kclast.SourceRange{Start: 0, End: 10},
	}
}

// TestBindOptionalSentinel reproduces spec.md §8 scenario S9: params
// [req x, opt y], args [1] -> memory contains x=1, y=KclNone.
func TestBindOptionalSentinel(t *testing.T) {
	f := fn([]kclast.Parameter{
		{Name: "x", Optional: false},
		{Name: "y", Optional: true},
	})
	caller := memory.New()
	args := []value.Value{&value.UserVal{JSON: 1.0}}

	extended, err := Bind(f, args, caller)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	x, err := extended.Get("x", kclast.SourceRange{})
	if err != nil {
		t.Fatal(err)
	}
	if xv, ok := x.(*value.UserVal); !ok || xv.JSON != 1.0 {
		t.Fatalf("expected x=1, got %#v", x)
	}
	y, err := extended.Get("y", kclast.SourceRange{})
	if err != nil {
		t.Fatal(err)
	}
	if !value.IsNone(y) {
		t.Fatalf("expected y to be KclNone, got %#v", y)
	}
}

func TestBindArityErrors(t *testing.T) {
	f := fn([]kclast.Parameter{{Name: "x", Optional: false}})
	caller := memory.New()

	_, err := Bind(f, nil, caller)
	kerr, ok := err.(*kclerrors.Error)
	if !ok || kerr.Kind != kclerrors.Semantic {
		t.Fatalf("expected Semantic arity error, got %v", err)
	}

	_, err = Bind(f, []value.Value{&value.UserVal{JSON: 1.0}, &value.UserVal{JSON: 2.0}}, caller)
	if err == nil {
		t.Fatal("expected an arity error for too many arguments")
	}
}

func TestBindMinMaxMessage(t *testing.T) {
	f := fn([]kclast.Parameter{
		{Name: "x", Optional: false},
		{Name: "y", Optional: true},
	})
	caller := memory.New()
	_, err := Bind(f, []value.Value{
		&value.UserVal{JSON: 1.0},
		&value.UserVal{JSON: 2.0},
		&value.UserVal{JSON: 3.0},
	}, caller)
	kerr, ok := err.(*kclerrors.Error)
	if !ok {
		t.Fatalf("expected a kclerrors.Error, got %v", err)
	}
	want := "Expected 1-2 arguments, got 3"
	if kerr.Message != want {
		t.Fatalf("expected message %q, got %q", want, kerr.Message)
	}
}
