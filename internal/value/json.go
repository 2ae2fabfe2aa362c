package value

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/cadkit/kcl-core/internal/kclast"
	"github.com/cadkit/kcl-core/internal/kclerrors"
)

// ToJSON returns the canonical wire form of v (spec.md §4.1, §6). For
// UserVal it returns the embedded JSON verbatim; every other variant
// gets a tagged object built incrementally with sjson.Set, the same
// "build JSON without round-tripping through a struct" idiom sjson
// exists for, rather than a set of json.Marshal-tagged structs.
func ToJSON(v Value) (string, error) {
	switch t := v.(type) {
	case *UserVal:
		raw, err := json.Marshal(t.JSON)
		if err != nil {
			return "", kclerrors.New(kclerrors.Semantic, fmt.Sprintf("UserVal serialization failed: %v", err), sourceRangesOf(t.Meta)...)
		}
		return string(raw), nil
	case *Plane:
		return planeJSON(t)
	case *Face:
		return faceJSON(t)
	case *SketchGroup:
		return sketchGroupJSON(t)
	case *SketchGroups:
		items := make([]string, len(t.Value))
		for i, sg := range t.Value {
			s, err := sketchGroupJSON(sg)
			if err != nil {
				return "", err
			}
			items[i] = s
		}
		return wrapArray("SketchGroups", items)
	case *ExtrudeGroup:
		return extrudeGroupJSON(t)
	case *ExtrudeGroups:
		items := make([]string, len(t.Value))
		for i, eg := range t.Value {
			s, err := extrudeGroupJSON(eg)
			if err != nil {
				return "", err
			}
			items[i] = s
		}
		return wrapArray("ExtrudeGroups", items)
	case *ImportedGeometry:
		doc := `{"type":"ImportedGeometry"}`
		doc, _ = sjson.Set(doc, "id", t.ID.String())
		doc, _ = sjson.Set(doc, "sourcePaths", t.SourcePaths)
		return withMeta(doc, "__meta", t.Meta)
	case *Function:
		doc := `{"type":"Function"}`
		return withMeta(doc, "__meta", t.Meta)
	default:
		return "", kclerrors.New(kclerrors.Semantic, fmt.Sprintf("unknown value variant %T", v))
	}
}

func wrapArray(typ string, items []string) (string, error) {
	doc := fmt.Sprintf(`{"type":%q,"value":[]}`, typ)
	for i, item := range items {
		var err error
		doc, err = sjson.SetRaw(doc, fmt.Sprintf("value.%d", i), item)
		if err != nil {
			return "", kclerrors.New(kclerrors.Semantic, fmt.Sprintf("%s serialization failed: %v", typ, err))
		}
	}
	return doc, nil
}

func point3JSON(p Point3) string {
	doc := "{}"
	doc, _ = sjson.Set(doc, "x", p.X)
	doc, _ = sjson.Set(doc, "y", p.Y)
	doc, _ = sjson.Set(doc, "z", p.Z)
	return doc
}

func withMeta(doc, key string, meta []Metadata) (string, error) {
	ranges := make([]any, len(meta))
	for i, m := range meta {
		r := map[string]any{"start": m.Range.Start, "end": m.Range.End}
		if m.ID != nil {
			r["id"] = m.ID.String()
		}
		ranges[i] = r
	}
	out, err := sjson.Set(doc, key, ranges)
	if err != nil {
		return "", kclerrors.New(kclerrors.Semantic, fmt.Sprintf("metadata serialization failed: %v", err))
	}
	return out, nil
}

func planeJSON(p *Plane) (string, error) {
	doc := `{"type":"Plane"}`
	doc, _ = sjson.Set(doc, "id", p.ID.String())
	doc, _ = sjson.Set(doc, "kind", p.Kind.String())
	var err error
	doc, err = sjson.SetRaw(doc, "origin", point3JSON(p.Origin))
	if err != nil {
		return "", err
	}
	doc, _ = sjson.SetRaw(doc, "xAxis", point3JSON(p.XAxis))
	doc, _ = sjson.SetRaw(doc, "yAxis", point3JSON(p.YAxis))
	doc, _ = sjson.SetRaw(doc, "zAxis", point3JSON(p.ZAxis))
	return withMeta(doc, "__meta", p.Meta)
}

func faceJSON(f *Face) (string, error) {
	doc := `{"type":"Face"}`
	doc, _ = sjson.Set(doc, "id", f.ID.String())
	doc, _ = sjson.Set(doc, "tag", f.Tag)
	doc, _ = sjson.Set(doc, "sketchGroupId", f.SketchGroupID.String())
	doc, _ = sjson.SetRaw(doc, "xAxis", point3JSON(f.XAxis))
	doc, _ = sjson.SetRaw(doc, "yAxis", point3JSON(f.YAxis))
	doc, _ = sjson.SetRaw(doc, "zAxis", point3JSON(f.ZAxis))
	doc, _ = sjson.Set(doc, "faceId", f.FaceID.String())
	return withMeta(doc, "__meta", f.Meta)
}

func basePathJSON(b BasePath) (string, error) {
	doc := "{}"
	doc, _ = sjson.Set(doc, "from", []float64{b.From[0], b.From[1]})
	doc, _ = sjson.Set(doc, "to", []float64{b.To[0], b.To[1]})
	doc, _ = sjson.Set(doc, "name", b.Name)
	geoDoc := "{}"
	geoDoc, _ = sjson.Set(geoDoc, "id", b.GeoMeta.ID.String())
	geoDoc, err := withMeta(geoDoc, "metadata", []Metadata{b.GeoMeta.Metadata})
	if err != nil {
		return "", err
	}
	return sjson.SetRaw(doc, "__geoMeta", geoDoc)
}

func pathJSON(p Path) (string, error) {
	var kind string
	switch p.Kind {
	case PathToPoint:
		kind = "ToPoint"
	case PathTangentialArcTo:
		kind = "TangentialArcTo"
	case PathTangentialArc:
		kind = "TangentialArc"
	case PathHorizontal:
		kind = "Horizontal"
	case PathAngledLineTo:
		kind = "AngledLineTo"
	default:
		kind = "Base"
	}
	doc, err := basePathJSON(p.Base)
	if err != nil {
		return "", err
	}
	doc, _ = sjson.Set(doc, "type", kind)
	switch p.Kind {
	case PathTangentialArcTo:
		doc, _ = sjson.Set(doc, "center", []float64{p.Center[0], p.Center[1]})
		doc, _ = sjson.Set(doc, "ccw", p.CCW)
	case PathHorizontal:
		doc, _ = sjson.Set(doc, "x", p.X)
	case PathAngledLineTo:
		if p.AngledX != nil {
			doc, _ = sjson.Set(doc, "x", *p.AngledX)
		}
		if p.AngledY != nil {
			doc, _ = sjson.Set(doc, "y", *p.AngledY)
		}
	}
	return doc, nil
}

func sketchGroupJSON(sg *SketchGroup) (string, error) {
	doc := `{"type":"SketchGroup"}`
	doc, _ = sjson.Set(doc, "id", sg.ID.String())
	doc, _ = sjson.Set(doc, "value", []any{})
	for i, p := range sg.Value {
		s, err := pathJSON(p)
		if err != nil {
			return "", err
		}
		doc, err = sjson.SetRaw(doc, fmt.Sprintf("value.%d", i), s)
		if err != nil {
			return "", err
		}
	}
	if sg.OnPlane != nil {
		s, err := planeJSON(sg.OnPlane)
		if err != nil {
			return "", err
		}
		doc, _ = sjson.SetRaw(doc, "on", s)
	} else if sg.OnFace != nil {
		s, err := faceJSON(sg.OnFace)
		if err != nil {
			return "", err
		}
		doc, _ = sjson.SetRaw(doc, "on", s)
	}
	start, err := basePathJSON(sg.Start)
	if err != nil {
		return "", err
	}
	doc, _ = sjson.SetRaw(doc, "start", start)
	doc, _ = sjson.SetRaw(doc, "position", point3JSON(sg.Position))
	doc, _ = sjson.Set(doc, "rotation", []float64{sg.Rotation.X, sg.Rotation.Y, sg.Rotation.Z, sg.Rotation.W})
	doc, _ = sjson.SetRaw(doc, "xAxis", point3JSON(sg.XAxis))
	doc, _ = sjson.SetRaw(doc, "yAxis", point3JSON(sg.YAxis))
	doc, _ = sjson.SetRaw(doc, "zAxis", point3JSON(sg.ZAxis))
	if sg.EntityID != nil {
		doc, _ = sjson.Set(doc, "entityId", sg.EntityID.String())
	}
	return withMeta(doc, "__meta", sg.Meta)
}

func extrudeSurfaceJSON(s ExtrudeSurface) (string, error) {
	kind := "ExtrudePlane"
	if s.Kind == ExtrudeArc {
		kind = "ExtrudeArc"
	}
	doc := "{}"
	doc, _ = sjson.Set(doc, "type", kind)
	doc, _ = sjson.SetRaw(doc, "position", point3JSON(s.Position))
	doc, _ = sjson.Set(doc, "rotation", []float64{s.Rotation.X, s.Rotation.Y, s.Rotation.Z, s.Rotation.W})
	doc, _ = sjson.Set(doc, "faceId", s.FaceID.String())
	doc, _ = sjson.Set(doc, "name", s.Name)
	geoDoc := "{}"
	geoDoc, _ = sjson.Set(geoDoc, "id", s.GeoMeta.ID.String())
	geoDoc, err := withMeta(geoDoc, "metadata", []Metadata{s.GeoMeta.Metadata})
	if err != nil {
		return "", err
	}
	return sjson.SetRaw(doc, "__geoMeta", geoDoc)
}

func extrudeGroupJSON(eg *ExtrudeGroup) (string, error) {
	doc := `{"type":"ExtrudeGroup"}`
	doc, _ = sjson.Set(doc, "id", eg.ID.String())
	doc, _ = sjson.Set(doc, "value", []any{})
	for i, s := range eg.Value {
		sdoc, err := extrudeSurfaceJSON(s)
		if err != nil {
			return "", err
		}
		doc, err = sjson.SetRaw(doc, fmt.Sprintf("value.%d", i), sdoc)
		if err != nil {
			return "", err
		}
	}
	doc, _ = sjson.Set(doc, "sketchPaths", []any{})
	for i, p := range eg.SketchPaths {
		pdoc, err := pathJSON(p)
		if err != nil {
			return "", err
		}
		doc, err = sjson.SetRaw(doc, fmt.Sprintf("sketchPaths.%d", i), pdoc)
		if err != nil {
			return "", err
		}
	}
	doc, _ = sjson.Set(doc, "height", eg.Height)
	doc, _ = sjson.Set(doc, "clockwiseOuter", eg.ClockwiseOuter)
	if eg.StartCapID != nil {
		doc, _ = sjson.Set(doc, "startCapId", eg.StartCapID.String())
	}
	if eg.EndCapID != nil {
		doc, _ = sjson.Set(doc, "endCapId", eg.EndCapID.String())
	}
	return withMeta(doc, "__meta", eg.Meta)
}

func sourceRangesOf(meta []Metadata) []kclast.SourceRange {
	out := make([]kclast.SourceRange, len(meta))
	for i, m := range meta {
		out[i] = m.Range
	}
	return out
}

// FromJSONAs deserializes the JSON form of v (as produced by ToJSON) into
// dst (a pointer) with encoding/json. Failure is Type (spec.md §4.1).
func FromJSONAs(v Value, dst any) error {
	raw, err := ToJSON(v)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return kclerrors.New(kclerrors.Type, fmt.Sprintf("failed to deserialize value: %v", err), SourceRanges(v)...)
	}
	return nil
}

// FromJSONOpt deserializes into dst unless v is the KclNone sentinel, in
// which case it reports present=false and leaves dst untouched
// (spec.md §4.1 `from_json_opt`).
func FromJSONOpt(v Value, dst any) (present bool, err error) {
	if IsNone(v) {
		return false, nil
	}
	if err := FromJSONAs(v, dst); err != nil {
		return false, err
	}
	return true, nil
}

// Get reads a dotted gjson path out of a UserVal's embedded JSON —
// the mechanism MemberExpression evaluation (internal/evaluator) uses
// for both bracket and dot member access without a full unmarshal.
func Get(uv *UserVal, path string) (gjson.Result, error) {
	raw, err := ToJSON(uv)
	if err != nil {
		return gjson.Result{}, err
	}
	return gjson.Get(raw, path), nil
}
