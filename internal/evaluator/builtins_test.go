package evaluator

import (
	"math"
	"testing"

	"github.com/cadkit/kcl-core/internal/kclast"
	"github.com/cadkit/kcl-core/internal/stdlib"
	"github.com/cadkit/kcl-core/internal/value"
)

func arr(elems ...kclast.Value) *kclast.ArrayExpression {
	return &kclast.ArrayExpression{Elements: elems}
}

func obj(props map[string]kclast.Value) *kclast.ObjectExpression {
	out := &kclast.ObjectExpression{}
	for k, v := range props {
		out.Properties = append(out.Properties, kclast.ObjectProperty{Key: k, Value: v})
	}
	return out
}

func pipeSub() *kclast.PipeSubstitution { return &kclast.PipeSubstitution{} }

func pipe(stages ...kclast.Value) *kclast.PipeExpression {
	return &kclast.PipeExpression{Body: stages}
}

// TestS8SketchPipelineIntersect reproduces spec.md §8 scenario S8: a
// one-stage sketch pipeline ending in angledLineThatIntersects, whose
// segEndX resolves to 1 + sqrt(2).
func TestS8SketchPipelineIntersect(t *testing.T) {
	pipelineExpr := pipe(
		call("startSketchOn", lit("XY")),
		call("startProfileAt", arr(lit(0.0), lit(0.0)), pipeSub()),
		call("line", arr(lit(2.0), lit(2.0)), pipeSub(), lit("yo")),
		call("lineTo", arr(lit(3.0), lit(1.0)), pipeSub()),
		call("angledLineThatIntersects", obj(map[string]kclast.Value{
			"angle":        lit(180.0),
			"intersectTag": lit("yo"),
			"offset":       lit(-1.0),
		}), pipeSub(), lit("yo2")),
	)
	mem := runProgram(t, constDecl("part001", pipelineExpr))

	partVal, err := mem.Get("part001", kclast.SourceRange{})
	if err != nil {
		t.Fatal(err)
	}
	sg, ok := partVal.(*value.SketchGroup)
	if !ok {
		t.Fatalf("expected a SketchGroup, got %#v", partVal)
	}

	result, err := coreSegEndX(stdlib.Args{Positional: []value.Value{
		&value.UserVal{JSON: "yo2"}, sg,
	}})
	if err != nil {
		t.Fatal(err)
	}
	uv := result.(*value.UserVal)
	want := 1 + math.Sqrt2
	if math.Abs(uv.JSON.(float64)-want) > 1e-9 {
		t.Fatalf("expected segEndX('yo2', part001) = 1+sqrt(2) = %v, got %v", want, uv.JSON)
	}
}

// TestPipelineMemberAccessBothForms exercises the gjson-backed member
// read path (internal/value.Get) for both dot and bracket access on the
// same object, per spec.md §8 boundary cases.
func TestPipelineMemberAccessBothForms(t *testing.T) {
	mem := runProgram(t,
		constDecl("thing", obj(map[string]kclast.Value{"angle": lit(90.0)})),
		constDecl("dotForm", &kclast.MemberExpression{
			Object:   ident("thing"),
			Property: ident("angle"),
			Computed: false,
		}),
		constDecl("bracketForm", &kclast.MemberExpression{
			Object:   ident("thing"),
			Property: lit("angle"),
			Computed: true,
		}),
	)
	dot := mustFloat(t, mem, "dotForm")
	bracket := mustFloat(t, mem, "bracketForm")
	if dot != 90.0 || bracket != 90.0 {
		t.Fatalf("expected both forms to read 90, got dot=%v bracket=%v", dot, bracket)
	}
}

// TestAngleToMatchLengthDispatchedThroughEvaluator exercises the
// angleToMatchLengthX built-in as registered in the evaluator's
// standard-library registry (not just the segment package directly),
// for the d > L -> 0 boundary case.
func TestAngleToMatchLengthDispatchedThroughEvaluator(t *testing.T) {
	sg := &value.SketchGroup{
		Value: []value.Path{{Base: value.BasePath{From: [2]float64{0, 0}, To: [2]float64{2, 2}, Name: "yo"}}},
	}
	args := stdlib.Args{Positional: []value.Value{
		&value.UserVal{JSON: "yo"}, &value.UserVal{JSON: 100.0}, sg,
	}}
	entry, ok := newTestEvaluator().Registry.Lookup("angleToMatchLengthX")
	if !ok {
		t.Fatal("angleToMatchLengthX is not registered")
	}
	got, err := entry.Core(args)
	if err != nil {
		t.Fatal(err)
	}
	if got.(*value.UserVal).JSON != 0.0 {
		t.Fatalf("expected 0 when d > L, got %#v", got)
	}
}
