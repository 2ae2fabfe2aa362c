// Package value implements the tagged Value universe (spec.md §3, §4.1):
// the sum of every runtime value the evaluator can produce, provenance
// metadata, and conversion to/from the portable JSON-like wire form.
//
// Large variants are boxed (pointer-held) per spec.md §9 to keep the
// Value interface's dynamic footprint small, following the teacher's
// internal/ast node family where composite nodes are always pointers.
package value

import (
	"context"

	"github.com/google/uuid"

	"github.com/cadkit/kcl-core/internal/kclast"
)

// Metadata is a source range plus, where relevant, a stable geometric
// identifier (spec.md §3, supplemented per SPEC_FULL.md §5 to carry the
// optional engine ID alongside the range rather than as a bare range).
type Metadata struct {
	Range kclast.SourceRange
	ID    *uuid.UUID
}

// Point3 is a 3-component point or vector.
type Point3 struct {
	X, Y, Z float64
}

// Quaternion is a 4-component rotation.
type Quaternion struct {
	X, Y, Z, W float64
}

// PlaneKind discriminates a Plane's origin.
type PlaneKind int

const (
	PlaneXY PlaneKind = iota
	PlaneXZ
	PlaneYZ
	PlaneCustom
)

func (k PlaneKind) String() string {
	switch k {
	case PlaneXY:
		return "XY"
	case PlaneXZ:
		return "XZ"
	case PlaneYZ:
		return "YZ"
	default:
		return "Custom"
	}
}

// Value is the sum of every runtime value kind (spec.md §3). Every
// variant below implements it; the interface itself carries no methods
// beyond the marker so that type switches (not method dispatch) drive
// behavior, matching the teacher's AST node family's use of sealed
// interfaces over a discriminated union.
type Value interface {
	isValue()
}

// UserVal is a user-visible scalar, string, array, or object, carried as
// a portable JSON value (any of nil, bool, int64, float64, json.Number,
// string, []any, map[string]any).
type UserVal struct {
	JSON any
	Meta []Metadata
}

func (*UserVal) isValue() {}

// KclNoneType is the JSON-tagged discriminant used to mark an absent
// optional argument (spec.md §3, §6).
const KclNoneType = "KclNone"

// None constructs the KclNone sentinel carrying the given provenance.
func None(meta ...Metadata) *UserVal {
	return &UserVal{JSON: map[string]any{"type": KclNoneType}, Meta: meta}
}

// IsNone reports whether v is the KclNone sentinel.
func IsNone(v Value) bool {
	uv, ok := v.(*UserVal)
	if !ok {
		return false
	}
	m, ok := uv.JSON.(map[string]any)
	if !ok {
		return false
	}
	t, _ := m["type"].(string)
	return t == KclNoneType
}

// Plane is a reference plane in 3D space (spec.md §3).
type Plane struct {
	ID                     uuid.UUID
	Kind                   PlaneKind
	Origin                 Point3
	XAxis, YAxis, ZAxis    Point3
	Meta                   []Metadata
}

func (*Plane) isValue() {}

// Face is a planar face of a SketchGroup's surface (spec.md §3).
type Face struct {
	ID                  uuid.UUID
	Tag                 string
	SketchGroupID        uuid.UUID
	XAxis, YAxis, ZAxis Point3
	FaceID              uuid.UUID
	Meta                []Metadata
}

func (*Face) isValue() {}

// GeoMeta is the per-path/surface engine identity plus provenance
// (spec.md §3 `geo_meta: {id, metadata}`).
type GeoMeta struct {
	ID       uuid.UUID
	Metadata Metadata
}

// BasePath is the common payload every Path variant embeds.
type BasePath struct {
	From    [2]float64
	To      [2]float64
	Name    string
	GeoMeta GeoMeta
}

// PathKind discriminates a Path's variant.
type PathKind int

const (
	PathToPoint PathKind = iota
	PathTangentialArcTo
	PathTangentialArc
	PathHorizontal
	PathAngledLineTo
	PathBase
)

// Path is a single sketch segment (spec.md §3: a tagged sum of
// ToPoint/TangentialArcTo/TangentialArc/Horizontal/AngledLineTo/Base,
// every variant embedding a BasePath).
type Path struct {
	Kind PathKind
	Base BasePath

	// TangentialArcTo fields.
	Center [2]float64
	CCW    bool

	// Horizontal field.
	X float64

	// AngledLineTo fields (pointers: either may be absent).
	AngledX *float64
	AngledY *float64
}

// SketchGroup is a boxed composite value (spec.md §3).
type SketchGroup struct {
	ID       uuid.UUID
	Value    []Path
	OnPlane  *Plane
	OnFace   *Face
	Start    BasePath
	Position Point3
	Rotation Quaternion
	XAxis, YAxis, ZAxis Point3
	EntityID *uuid.UUID
	Meta     []Metadata
}

func (*SketchGroup) isValue() {}

// SketchGroups is an array of SketchGroup (spec.md §3).
type SketchGroups struct {
	Value []*SketchGroup
}

func (*SketchGroups) isValue() {}

// ExtrudeSurfaceKind discriminates an ExtrudeSurface's variant.
type ExtrudeSurfaceKind int

const (
	ExtrudePlane ExtrudeSurfaceKind = iota
	ExtrudeArc
)

// ExtrudeSurface is one face produced by extruding a sketch segment.
type ExtrudeSurface struct {
	Kind     ExtrudeSurfaceKind
	Position Point3
	Rotation Quaternion
	FaceID   uuid.UUID
	Name     string
	GeoMeta  GeoMeta
}

// ExtrudeGroup is a boxed composite value (spec.md §3).
type ExtrudeGroup struct {
	ID             uuid.UUID
	Value          []ExtrudeSurface
	SketchPaths    []Path
	Height         float64
	StartCapID     *uuid.UUID
	EndCapID       *uuid.UUID
	ClockwiseOuter bool
	Meta           []Metadata
}

func (*ExtrudeGroup) isValue() {}

// ExtrudeGroups is an array of ExtrudeGroup (spec.md §3).
type ExtrudeGroups struct {
	Value []*ExtrudeGroup
}

func (*ExtrudeGroups) isValue() {}

// ImportedGeometry is geometry loaded from one or more external files.
type ImportedGeometry struct {
	ID          uuid.UUID
	SourcePaths []string
	Meta        []Metadata
}

func (*ImportedGeometry) isValue() {}

// Function is a callable value: the AST of its declared expression plus
// the captured evaluation closure that runs its body (spec.md §3). Body
// is an opaque func so that internal/value has no dependency on
// internal/evaluator/internal/memory, avoiding an import cycle; the
// evaluator package supplies the closure when it binds a FunctionExpression.
type Function struct {
	Expression *kclast.FunctionExpression
	Meta       []Metadata
	Body       func(ctx context.Context, args []Value, callRange kclast.SourceRange) (Value, error)
}

func (*Function) isValue() {}

// SourceRanges flattens the metadata of v, and of its internal
// collections for the `*s` variants (spec.md §4.1 `source_ranges`).
func SourceRanges(v Value) []kclast.SourceRange {
	var out []kclast.SourceRange
	collect := func(ms []Metadata) {
		for _, m := range ms {
			out = append(out, m.Range)
		}
	}
	switch t := v.(type) {
	case *UserVal:
		collect(t.Meta)
	case *Plane:
		collect(t.Meta)
	case *Face:
		collect(t.Meta)
	case *SketchGroup:
		collect(t.Meta)
	case *SketchGroups:
		for _, sg := range t.Value {
			out = append(out, SourceRanges(sg)...)
		}
	case *ExtrudeGroup:
		collect(t.Meta)
	case *ExtrudeGroups:
		for _, eg := range t.Value {
			out = append(out, SourceRanges(eg)...)
		}
	case *ImportedGeometry:
		collect(t.Meta)
	case *Function:
		collect(t.Meta)
	}
	return out
}
