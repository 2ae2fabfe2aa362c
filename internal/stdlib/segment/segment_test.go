package segment

import (
	"math"
	"testing"

	"github.com/cadkit/kcl-core/internal/kclast"
	"github.com/cadkit/kcl-core/internal/value"
)

func sg(start value.BasePath, segs ...value.Path) *value.SketchGroup {
	return &value.SketchGroup{Start: start, Value: segs}
}

func base(name string, from, to [2]float64) value.BasePath {
	return value.BasePath{From: from, To: to, Name: name}
}

func TestSegEndXYAndLast(t *testing.T) {
	g := sg(base("", [2]float64{0, 0}, [2]float64{0, 0}),
		value.Path{Base: base("yo", [2]float64{0, 0}, [2]float64{2, 2})},
		value.Path{Base: base("", [2]float64{2, 2}, [2]float64{3, 1})},
	)
	x, err := SegEndX("yo", g, kclast.SourceRange{})
	if err != nil || x.JSON != 2.0 {
		t.Fatalf("SegEndX: got %#v err %v", x, err)
	}
	lx, err := LastSegX(g, kclast.SourceRange{})
	if err != nil || lx.JSON != 3.0 {
		t.Fatalf("LastSegX: got %#v err %v", lx, err)
	}
	ly, err := LastSegY(g, kclast.SourceRange{})
	if err != nil || ly.JSON != 1.0 {
		t.Fatalf("LastSegY: got %#v err %v", ly, err)
	}
}

func TestSegEndMissingNameIsTypeError(t *testing.T) {
	g := sg(base("", [2]float64{0, 0}, [2]float64{0, 0}))
	_, err := SegEndX("nope", g, kclast.SourceRange{})
	if err == nil {
		t.Fatal("expected a Type error for a missing segment name")
	}
}

func TestLastSegEmptyIsTypeError(t *testing.T) {
	g := sg(base("", [2]float64{0, 0}, [2]float64{0, 0}))
	_, err := LastSegX(g, kclast.SourceRange{})
	if err == nil {
		t.Fatal("expected a Type error for an empty segment list")
	}
}

func TestSegLenAndAng(t *testing.T) {
	g := sg(base("", [2]float64{0, 0}, [2]float64{0, 0}),
		value.Path{Base: base("yo", [2]float64{0, 0}, [2]float64{3, 4})},
	)
	l, err := SegLen("yo", g, kclast.SourceRange{})
	if err != nil || l.JSON != 5.0 {
		t.Fatalf("SegLen: got %#v err %v", l, err)
	}
	ang, err := SegAng("yo", g, kclast.SourceRange{})
	if err != nil {
		t.Fatal(err)
	}
	want := math.Atan2(4, 3) * 180 / math.Pi
	if math.Abs(ang.JSON.(float64)-want) > 1e-9 {
		t.Fatalf("SegAng: got %v want %v", ang.JSON, want)
	}
}

// boundary case: the target is farther from the last segment's end than
// the named segment is long, so the angle is 0.
func TestAngleToMatchLengthXBoundary(t *testing.T) {
	g := sg(base("", [2]float64{0, 0}, [2]float64{0, 0}),
		value.Path{Base: base("yo", [2]float64{0, 0}, [2]float64{2, 2})},
	)
	// d > L -> returns 0
	got, err := AngleToMatchLengthX("yo", 100, g, kclast.SourceRange{})
	if err != nil || got.JSON != 0.0 {
		t.Fatalf("expected 0 when d > L, got %#v err %v", got, err)
	}
}
