// Package segment implements the Segment Primitives (C8, spec.md §4.8):
// a small set of built-ins reading SketchGroup geometry and returning
// scalars, grounded on original_source/src/wasm-lib/kcl/src/std/segment.rs.
package segment

import (
	"math"

	"github.com/cadkit/kcl-core/internal/kclast"
	"github.com/cadkit/kcl-core/internal/kclerrors"
	"github.com/cadkit/kcl-core/internal/value"
)

// FindSegment returns the named segment's BasePath, or sg.Start if name
// matches the start path's name. Missing name is a Type error
// (spec.md §4.8). Exported so internal/evaluator's sketch built-ins
// (angledLineThatIntersects) can locate a tagged segment the same way
// the segment primitives do.
func FindSegment(name string, sg *value.SketchGroup, rng kclast.SourceRange) (value.BasePath, error) {
	return find(name, sg, rng)
}

func find(name string, sg *value.SketchGroup, rng kclast.SourceRange) (value.BasePath, error) {
	if name == sg.Start.Name {
		return sg.Start, nil
	}
	for _, p := range sg.Value {
		if p.Base.Name == name {
			return p.Base, nil
		}
	}
	return value.BasePath{}, kclerrors.New(kclerrors.Type, "no segment named "+name, rng)
}

func last(sg *value.SketchGroup, rng kclast.SourceRange) (value.BasePath, error) {
	if len(sg.Value) == 0 {
		return value.BasePath{}, kclerrors.New(kclerrors.Type, "sketch group has no segments", rng)
	}
	return sg.Value[len(sg.Value)-1].Base, nil
}

func num(n float64) *value.UserVal { return &value.UserVal{JSON: n} }

// SegEndX returns base.to.x of the named segment (spec.md §4.8).
func SegEndX(name string, sg *value.SketchGroup, rng kclast.SourceRange) (*value.UserVal, error) {
	b, err := find(name, sg, rng)
	if err != nil {
		return nil, err
	}
	return num(b.To[0]), nil
}

// SegEndY returns base.to.y of the named segment (spec.md §4.8).
func SegEndY(name string, sg *value.SketchGroup, rng kclast.SourceRange) (*value.UserVal, error) {
	b, err := find(name, sg, rng)
	if err != nil {
		return nil, err
	}
	return num(b.To[1]), nil
}

// LastSegX returns to.x of the final segment (spec.md §4.8).
func LastSegX(sg *value.SketchGroup, rng kclast.SourceRange) (*value.UserVal, error) {
	b, err := last(sg, rng)
	if err != nil {
		return nil, err
	}
	return num(b.To[0]), nil
}

// LastSegY returns to.y of the final segment (spec.md §4.8).
func LastSegY(sg *value.SketchGroup, rng kclast.SourceRange) (*value.UserVal, error) {
	b, err := last(sg, rng)
	if err != nil {
		return nil, err
	}
	return num(b.To[1]), nil
}

// SegLen returns the Euclidean distance between from and to of the
// named segment (spec.md §4.8).
func SegLen(name string, sg *value.SketchGroup, rng kclast.SourceRange) (*value.UserVal, error) {
	b, err := find(name, sg, rng)
	if err != nil {
		return nil, err
	}
	dx := b.To[0] - b.From[0]
	dy := b.To[1] - b.From[1]
	return num(math.Hypot(dx, dy)), nil
}

// SegAng returns the angle from `from` to `to` in degrees, in
// (-180, 180] (spec.md §4.8).
func SegAng(name string, sg *value.SketchGroup, rng kclast.SourceRange) (*value.UserVal, error) {
	b, err := find(name, sg, rng)
	if err != nil {
		return nil, err
	}
	dx := b.To[0] - b.From[0]
	dy := b.To[1] - b.From[1]
	deg := math.Atan2(dy, dx) * 180 / math.Pi
	return num(deg), nil
}

// AngleToMatchLengthX returns acos(d/L) in degrees where L is the named
// segment's length and d = |target - last.to.x|, or 0 if d > L
// (spec.md §4.8).
func AngleToMatchLengthX(name string, target float64, sg *value.SketchGroup, rng kclast.SourceRange) (*value.UserVal, error) {
	seg, err := find(name, sg, rng)
	if err != nil {
		return nil, err
	}
	lastSeg, err := last(sg, rng)
	if err != nil {
		return nil, err
	}
	l := math.Hypot(seg.To[0]-seg.From[0], seg.To[1]-seg.From[1])
	d := math.Abs(target - lastSeg.To[0])
	if d > l {
		return num(0), nil
	}
	return num(math.Acos(d/l) * 180 / math.Pi), nil
}

// AngleToMatchLengthY returns asin(d/L) in degrees where L is the named
// segment's length and d = |target - last.to.y|, or 0 if d > L
// (spec.md §4.8).
func AngleToMatchLengthY(name string, target float64, sg *value.SketchGroup, rng kclast.SourceRange) (*value.UserVal, error) {
	seg, err := find(name, sg, rng)
	if err != nil {
		return nil, err
	}
	lastSeg, err := last(sg, rng)
	if err != nil {
		return nil, err
	}
	l := math.Hypot(seg.To[0]-seg.From[0], seg.To[1]-seg.From[1])
	d := math.Abs(target - lastSeg.To[1])
	if d > l {
		return num(0), nil
	}
	return num(math.Asin(d/l) * 180 / math.Pi), nil
}
