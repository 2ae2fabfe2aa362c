package evaluator

import (
	"context"
	"math"

	"github.com/google/uuid"

	"github.com/cadkit/kcl-core/internal/engine"
	"github.com/cadkit/kcl-core/internal/kclast"
	"github.com/cadkit/kcl-core/internal/kclerrors"
	"github.com/cadkit/kcl-core/internal/stdlib"
	"github.com/cadkit/kcl-core/internal/stdlib/segment"
	"github.com/cadkit/kcl-core/internal/value"
)

// defaultRegistry registers every Core built-in referenced by tests and
// examples (spec.md §6): the sketch/extrude pipeline verbs, the scalar
// helpers (min, legLen, pi), and the segment primitives (§4.8). Core
// functions close over ctx so they can stamp new geometry through the
// engine driver and resolve default planes.
func (e *Evaluator) registerBuiltins(ctx *Context) {
	reg := map[string]stdlib.Entry{
		"startSketchOn":            {Kind: stdlib.KindCore, Core: coreStartSketchOn(ctx)},
		"startProfileAt":           {Kind: stdlib.KindCore, Core: coreStartProfileAt(ctx)},
		"line":                     {Kind: stdlib.KindCore, Core: coreLine(ctx)},
		"lineTo":                   {Kind: stdlib.KindCore, Core: coreLineTo(ctx)},
		"xLine":                    {Kind: stdlib.KindCore, Core: coreXLine(ctx)},
		"yLineTo":                  {Kind: stdlib.KindCore, Core: coreYLineTo(ctx)},
		"angledLine":               {Kind: stdlib.KindCore, Core: coreAngledLine(ctx)},
		"angledLineToX":            {Kind: stdlib.KindCore, Core: coreAngledLineToX(ctx)},
		"angledLineThatIntersects": {Kind: stdlib.KindCore, Core: coreAngledLineThatIntersects(ctx)},
		"close":                    {Kind: stdlib.KindCore, Core: coreClose(ctx)},
		"extrude":                  {Kind: stdlib.KindCore, Core: coreExtrude(ctx)},
		"min":                      {Kind: stdlib.KindCore, Core: coreMin},
		"legLen":                   {Kind: stdlib.KindCore, Core: coreLegLen},
		"pi":                       {Kind: stdlib.KindCore, Core: corePi},
		"segEndX":                  {Kind: stdlib.KindCore, Core: coreSegEndX},
		"segEndY":                  {Kind: stdlib.KindCore, Core: coreSegEndY},
		"lastSegX":                 {Kind: stdlib.KindCore, Core: coreLastSegX},
		"lastSegY":                 {Kind: stdlib.KindCore, Core: coreLastSegY},
		"segLen":                   {Kind: stdlib.KindCore, Core: coreSegLen},
		"segAng":                   {Kind: stdlib.KindCore, Core: coreSegAng},
		"angleToMatchLengthX":      {Kind: stdlib.KindCore, Core: coreAngleToMatchLengthX},
		"angleToMatchLengthY":      {Kind: stdlib.KindCore, Core: coreAngleToMatchLengthY},
	}
	e.Registry = stdlib.NewRegistry(reg)
}

// --- argument extraction helpers ---

func argAt(args stdlib.Args, i int) (value.Value, error) {
	if i >= len(args.Positional) {
		return nil, kclerrors.New(kclerrors.Semantic, "missing argument", args.Range)
	}
	return args.Positional[i], nil
}

func argNumber(args stdlib.Args, i int) (float64, error) {
	v, err := argAt(args, i)
	if err != nil {
		return 0, err
	}
	return asFloat(v, args.Range)
}

func argString(args stdlib.Args, i int) (string, error) {
	v, err := argAt(args, i)
	if err != nil {
		return "", err
	}
	uv, ok := v.(*value.UserVal)
	if !ok {
		return "", kclerrors.New(kclerrors.Type, "expected a string", args.Range)
	}
	s, ok := uv.JSON.(string)
	if !ok {
		return "", kclerrors.New(kclerrors.Type, "expected a string", args.Range)
	}
	return s, nil
}

func argOptionalString(args stdlib.Args, i int) string {
	if i >= len(args.Positional) || value.IsNone(args.Positional[i]) {
		return ""
	}
	s, err := argString(args, i)
	if err != nil {
		return ""
	}
	return s
}

func argSketchGroup(args stdlib.Args, i int) (*value.SketchGroup, error) {
	v, err := argAt(args, i)
	if err != nil {
		return nil, err
	}
	sg, ok := v.(*value.SketchGroup)
	if !ok {
		return nil, kclerrors.New(kclerrors.Type, "expected a sketch group", args.Range)
	}
	return sg, nil
}

func argPoint2(args stdlib.Args, i int) ([2]float64, error) {
	v, err := argAt(args, i)
	if err != nil {
		return [2]float64{}, err
	}
	uv, ok := v.(*value.UserVal)
	if !ok {
		return [2]float64{}, kclerrors.New(kclerrors.Type, "expected a [x, y] point", args.Range)
	}
	arr, ok := uv.JSON.([]any)
	if !ok || len(arr) != 2 {
		return [2]float64{}, kclerrors.New(kclerrors.Type, "expected a [x, y] point", args.Range)
	}
	x, xok := toFloat(arr[0])
	y, yok := toFloat(arr[1])
	if !xok || !yok {
		return [2]float64{}, kclerrors.New(kclerrors.Type, "expected a [x, y] point", args.Range)
	}
	return [2]float64{x, y}, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func objField(args stdlib.Args, i int, key string) (any, bool, error) {
	v, err := argAt(args, i)
	if err != nil {
		return nil, false, err
	}
	uv, ok := v.(*value.UserVal)
	if !ok {
		return nil, false, kclerrors.New(kclerrors.Type, "expected an object", args.Range)
	}
	obj, ok := uv.JSON.(map[string]any)
	if !ok {
		return nil, false, kclerrors.New(kclerrors.Type, "expected an object", args.Range)
	}
	val, present := obj[key]
	return val, present, nil
}

func objNumber(args stdlib.Args, i int, key string) (float64, error) {
	raw, present, err := objField(args, i, key)
	if err != nil {
		return 0, err
	}
	if !present {
		return 0, kclerrors.New(kclerrors.Type, "missing field "+key, args.Range)
	}
	f, ok := toFloat(raw)
	if !ok {
		return 0, kclerrors.New(kclerrors.Type, "field "+key+" must be a number", args.Range)
	}
	return f, nil
}

func objString(args stdlib.Args, i int, key string) (string, error) {
	raw, present, err := objField(args, i, key)
	if err != nil {
		return "", err
	}
	if !present {
		return "", kclerrors.New(kclerrors.Type, "missing field "+key, args.Range)
	}
	s, ok := raw.(string)
	if !ok {
		return "", kclerrors.New(kclerrors.Type, "field "+key+" must be a string", args.Range)
	}
	return s, nil
}

// currentPoint is the sketch group's current pen position: the last
// segment's endpoint, or the start point if no segment exists yet.
func currentPoint(sg *value.SketchGroup) [2]float64 {
	if len(sg.Value) == 0 {
		return sg.Start.To
	}
	return sg.Value[len(sg.Value)-1].Base.To
}

// extendSketch returns a new SketchGroup whose Value list extends sg's
// with path (spec.md §3 "intermediate construction of sketches proceeds
// by producing new SketchGroup values whose value list extends the
// predecessor's" — values are immutable by convention, never mutated in
// place).
func extendSketch(sg *value.SketchGroup, path value.Path, rng kclast.SourceRange) *value.SketchGroup {
	next := *sg
	next.Value = make([]value.Path, len(sg.Value)+1)
	copy(next.Value, sg.Value)
	next.Value[len(sg.Value)] = path
	next.Meta = append(append([]value.Metadata{}, sg.Meta...), value.Metadata{Range: rng})
	return &next
}

func emitGeometryCommand(ctx *Context, goCtx context.Context, kind string, id uuid.UUID, rng kclast.SourceRange) error {
	return ctx.Engine.SendModelingCmd(goCtx, id, rng, engine.GeometryCommand{Kind: kind, EntityID: id})
}

// --- sketch/extrude pipeline builtins ---

func coreStartSketchOn(ctx *Context) stdlib.CoreFunc {
	return func(args stdlib.Args) (value.Value, error) {
		name, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		kind, err := PlaneKindFromName(name, args.Range)
		if err != nil {
			return nil, err
		}
		plane := ctx.DefaultPlane(kind)
		copyPlane := *plane
		copyPlane.Meta = append(append([]value.Metadata{}, plane.Meta...), value.Metadata{Range: args.Range})
		return &copyPlane, nil
	}
}

func coreStartProfileAt(ctx *Context) stdlib.CoreFunc {
	return func(args stdlib.Args) (value.Value, error) {
		point, err := argPoint2(args, 0)
		if err != nil {
			return nil, err
		}
		surface, err := argAt(args, 1)
		if err != nil {
			return nil, err
		}
		sg := &value.SketchGroup{
			ID:    uuid.New(),
			Start: value.BasePath{From: point, To: point, Name: "", GeoMeta: value.GeoMeta{ID: uuid.New(), Metadata: value.Metadata{Range: args.Range}}},
			Meta:  []value.Metadata{{Range: args.Range}},
		}
		switch s := surface.(type) {
		case *value.Plane:
			sg.OnPlane = s
		case *value.Face:
			sg.OnFace = s
		default:
			return nil, kclerrors.New(kclerrors.Type, "startProfileAt requires a plane or face", args.Range)
		}
		if err := emitGeometryCommand(ctx, args.Ctx, "start_path", sg.ID, args.Range); err != nil {
			return nil, err
		}
		return sg, nil
	}
}

func coreLine(ctx *Context) stdlib.CoreFunc {
	return func(args stdlib.Args) (value.Value, error) {
		delta, err := argPoint2(args, 0)
		if err != nil {
			return nil, err
		}
		sg, err := argSketchGroup(args, 1)
		if err != nil {
			return nil, err
		}
		cur := currentPoint(sg)
		to := [2]float64{cur[0] + delta[0], cur[1] + delta[1]}
		path := value.Path{Kind: value.PathToPoint, Base: value.BasePath{
			From: cur, To: to, Name: argOptionalString(args, 2),
			GeoMeta: value.GeoMeta{ID: uuid.New(), Metadata: value.Metadata{Range: args.Range}},
		}}
		if err := emitGeometryCommand(ctx, args.Ctx, "extend_path", path.Base.GeoMeta.ID, args.Range); err != nil {
			return nil, err
		}
		return extendSketch(sg, path, args.Range), nil
	}
}

func coreLineTo(ctx *Context) stdlib.CoreFunc {
	return func(args stdlib.Args) (value.Value, error) {
		to, err := argPoint2(args, 0)
		if err != nil {
			return nil, err
		}
		sg, err := argSketchGroup(args, 1)
		if err != nil {
			return nil, err
		}
		cur := currentPoint(sg)
		path := value.Path{Kind: value.PathToPoint, Base: value.BasePath{
			From: cur, To: to, Name: argOptionalString(args, 2),
			GeoMeta: value.GeoMeta{ID: uuid.New(), Metadata: value.Metadata{Range: args.Range}},
		}}
		if err := emitGeometryCommand(ctx, args.Ctx, "extend_path", path.Base.GeoMeta.ID, args.Range); err != nil {
			return nil, err
		}
		return extendSketch(sg, path, args.Range), nil
	}
}

func coreXLine(ctx *Context) stdlib.CoreFunc {
	return func(args stdlib.Args) (value.Value, error) {
		length, err := argNumber(args, 0)
		if err != nil {
			return nil, err
		}
		sg, err := argSketchGroup(args, 1)
		if err != nil {
			return nil, err
		}
		cur := currentPoint(sg)
		to := [2]float64{cur[0] + length, cur[1]}
		path := value.Path{Kind: value.PathHorizontal, X: length, Base: value.BasePath{
			From: cur, To: to, Name: argOptionalString(args, 2),
			GeoMeta: value.GeoMeta{ID: uuid.New(), Metadata: value.Metadata{Range: args.Range}},
		}}
		if err := emitGeometryCommand(ctx, args.Ctx, "extend_path", path.Base.GeoMeta.ID, args.Range); err != nil {
			return nil, err
		}
		return extendSketch(sg, path, args.Range), nil
	}
}

func coreYLineTo(ctx *Context) stdlib.CoreFunc {
	return func(args stdlib.Args) (value.Value, error) {
		y, err := argNumber(args, 0)
		if err != nil {
			return nil, err
		}
		sg, err := argSketchGroup(args, 1)
		if err != nil {
			return nil, err
		}
		cur := currentPoint(sg)
		to := [2]float64{cur[0], y}
		path := value.Path{Kind: value.PathToPoint, Base: value.BasePath{
			From: cur, To: to, Name: argOptionalString(args, 2),
			GeoMeta: value.GeoMeta{ID: uuid.New(), Metadata: value.Metadata{Range: args.Range}},
		}}
		if err := emitGeometryCommand(ctx, args.Ctx, "extend_path", path.Base.GeoMeta.ID, args.Range); err != nil {
			return nil, err
		}
		return extendSketch(sg, path, args.Range), nil
	}
}

func coreAngledLine(ctx *Context) stdlib.CoreFunc {
	return func(args stdlib.Args) (value.Value, error) {
		angle, err := objNumber(args, 0, "angle")
		if err != nil {
			return nil, err
		}
		length, err := objNumber(args, 0, "length")
		if err != nil {
			return nil, err
		}
		sg, err := argSketchGroup(args, 1)
		if err != nil {
			return nil, err
		}
		cur := currentPoint(sg)
		rad := angle * math.Pi / 180
		to := [2]float64{cur[0] + length*math.Cos(rad), cur[1] + length*math.Sin(rad)}
		path := value.Path{Kind: value.PathAngledLineTo, Base: value.BasePath{
			From: cur, To: to, Name: argOptionalString(args, 2),
			GeoMeta: value.GeoMeta{ID: uuid.New(), Metadata: value.Metadata{Range: args.Range}},
		}}
		if err := emitGeometryCommand(ctx, args.Ctx, "extend_path", path.Base.GeoMeta.ID, args.Range); err != nil {
			return nil, err
		}
		return extendSketch(sg, path, args.Range), nil
	}
}

func coreAngledLineToX(ctx *Context) stdlib.CoreFunc {
	return func(args stdlib.Args) (value.Value, error) {
		angle, err := objNumber(args, 0, "angle")
		if err != nil {
			return nil, err
		}
		targetX, err := objNumber(args, 0, "to")
		if err != nil {
			return nil, err
		}
		sg, err := argSketchGroup(args, 1)
		if err != nil {
			return nil, err
		}
		cur := currentPoint(sg)
		rad := angle * math.Pi / 180
		cos := math.Cos(rad)
		if cos == 0 {
			return nil, kclerrors.New(kclerrors.Type, "angledLineToX: angle is vertical, cannot reach a target x", args.Range)
		}
		t := (targetX - cur[0]) / cos
		to := [2]float64{targetX, cur[1] + t*math.Sin(rad)}
		xCopy := targetX
		path := value.Path{Kind: value.PathAngledLineTo, AngledX: &xCopy, Base: value.BasePath{
			From: cur, To: to, Name: argOptionalString(args, 2),
			GeoMeta: value.GeoMeta{ID: uuid.New(), Metadata: value.Metadata{Range: args.Range}},
		}}
		if err := emitGeometryCommand(ctx, args.Ctx, "extend_path", path.Base.GeoMeta.ID, args.Range); err != nil {
			return nil, err
		}
		return extendSketch(sg, path, args.Range), nil
	}
}

// coreAngledLineThatIntersects draws a line from the current point at
// the given angle until it meets the infinite line through the named
// segment, shifted perpendicular to its direction by offset (the
// perpendicular shift uses the direction's +90°-rotated unit normal).
func coreAngledLineThatIntersects(ctx *Context) stdlib.CoreFunc {
	return func(args stdlib.Args) (value.Value, error) {
		angle, err := objNumber(args, 0, "angle")
		if err != nil {
			return nil, err
		}
		intersectTag, err := objString(args, 0, "intersectTag")
		if err != nil {
			return nil, err
		}
		offset, err := objNumber(args, 0, "offset")
		if err != nil {
			return nil, err
		}
		sg, err := argSketchGroup(args, 1)
		if err != nil {
			return nil, err
		}
		target, err := segment.FindSegment(intersectTag, sg, args.Range)
		if err != nil {
			return nil, err
		}

		dirX, dirY := target.To[0]-target.From[0], target.To[1]-target.From[1]
		length := math.Hypot(dirX, dirY)
		if length == 0 {
			return nil, kclerrors.New(kclerrors.Type, "intersect segment has zero length", args.Range)
		}
		unitX, unitY := dirX/length, dirY/length
		normalX, normalY := -unitY, unitX
		lineOriginX := target.From[0] + offset*normalX
		lineOriginY := target.From[1] + offset*normalY

		cur := currentPoint(sg)
		rad := angle * math.Pi / 180
		rayX, rayY := math.Cos(rad), math.Sin(rad)

		denom := rayX*dirY - rayY*dirX
		if denom == 0 {
			return nil, kclerrors.New(kclerrors.Type, "ray is parallel to the intersect line", args.Range)
		}
		diffX, diffY := lineOriginX-cur[0], lineOriginY-cur[1]
		t := (diffX*dirY - diffY*dirX) / denom
		to := [2]float64{cur[0] + t*rayX, cur[1] + t*rayY}

		path := value.Path{Kind: value.PathAngledLineTo, Base: value.BasePath{
			From: cur, To: to, Name: argOptionalString(args, 2),
			GeoMeta: value.GeoMeta{ID: uuid.New(), Metadata: value.Metadata{Range: args.Range}},
		}}
		if err := emitGeometryCommand(ctx, args.Ctx, "extend_path", path.Base.GeoMeta.ID, args.Range); err != nil {
			return nil, err
		}
		return extendSketch(sg, path, args.Range), nil
	}
}

func coreClose(ctx *Context) stdlib.CoreFunc {
	return func(args stdlib.Args) (value.Value, error) {
		sg, err := argSketchGroup(args, 0)
		if err != nil {
			return nil, err
		}
		cur := currentPoint(sg)
		path := value.Path{Kind: value.PathToPoint, Base: value.BasePath{
			From: cur, To: sg.Start.To, Name: "",
			GeoMeta: value.GeoMeta{ID: uuid.New(), Metadata: value.Metadata{Range: args.Range}},
		}}
		if err := emitGeometryCommand(ctx, args.Ctx, "close_path", sg.ID, args.Range); err != nil {
			return nil, err
		}
		return extendSketch(sg, path, args.Range), nil
	}
}

func coreExtrude(ctx *Context) stdlib.CoreFunc {
	return func(args stdlib.Args) (value.Value, error) {
		height, err := argNumber(args, 0)
		if err != nil {
			return nil, err
		}
		sg, err := argSketchGroup(args, 1)
		if err != nil {
			return nil, err
		}
		surfaces := make([]value.ExtrudeSurface, len(sg.Value))
		for i, p := range sg.Value {
			surfaces[i] = value.ExtrudeSurface{
				Kind:    value.ExtrudePlane,
				FaceID:  uuid.New(),
				Name:    p.Base.Name,
				GeoMeta: value.GeoMeta{ID: uuid.New(), Metadata: value.Metadata{Range: args.Range}},
			}
		}
		eg := &value.ExtrudeGroup{
			ID:          uuid.New(),
			Value:       surfaces,
			SketchPaths: append([]value.Path{}, sg.Value...),
			Height:      height,
			Meta:        []value.Metadata{{Range: args.Range}},
		}
		if err := emitGeometryCommand(ctx, args.Ctx, "extrude", eg.ID, args.Range); err != nil {
			return nil, err
		}
		return eg, nil
	}
}

// --- scalar builtins ---

func coreMin(args stdlib.Args) (value.Value, error) {
	if len(args.Positional) == 0 {
		return nil, kclerrors.New(kclerrors.Semantic, "min requires at least one argument", args.Range)
	}
	best, err := asFloat(args.Positional[0], args.Range)
	if err != nil {
		return nil, err
	}
	for _, a := range args.Positional[1:] {
		f, err := asFloat(a, args.Range)
		if err != nil {
			return nil, err
		}
		if f < best {
			best = f
		}
	}
	return &value.UserVal{JSON: best}, nil
}

func coreLegLen(args stdlib.Args) (value.Value, error) {
	h, err := argNumber(args, 0)
	if err != nil {
		return nil, err
	}
	a, err := argNumber(args, 1)
	if err != nil {
		return nil, err
	}
	if math.Abs(a) > math.Abs(h) {
		return nil, kclerrors.New(kclerrors.Type, "leg length exceeds the hypotenuse", args.Range)
	}
	return &value.UserVal{JSON: math.Sqrt(h*h - a*a)}, nil
}

func corePi(args stdlib.Args) (value.Value, error) {
	return &value.UserVal{JSON: math.Pi}, nil
}

// --- segment primitive wrappers (C8, spec.md §4.8) ---

func coreSegEndX(args stdlib.Args) (value.Value, error) {
	name, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	sg, err := argSketchGroup(args, 1)
	if err != nil {
		return nil, err
	}
	return segment.SegEndX(name, sg, args.Range)
}

func coreSegEndY(args stdlib.Args) (value.Value, error) {
	name, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	sg, err := argSketchGroup(args, 1)
	if err != nil {
		return nil, err
	}
	return segment.SegEndY(name, sg, args.Range)
}

func coreLastSegX(args stdlib.Args) (value.Value, error) {
	sg, err := argSketchGroup(args, 0)
	if err != nil {
		return nil, err
	}
	return segment.LastSegX(sg, args.Range)
}

func coreLastSegY(args stdlib.Args) (value.Value, error) {
	sg, err := argSketchGroup(args, 0)
	if err != nil {
		return nil, err
	}
	return segment.LastSegY(sg, args.Range)
}

func coreSegLen(args stdlib.Args) (value.Value, error) {
	name, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	sg, err := argSketchGroup(args, 1)
	if err != nil {
		return nil, err
	}
	return segment.SegLen(name, sg, args.Range)
}

func coreSegAng(args stdlib.Args) (value.Value, error) {
	name, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	sg, err := argSketchGroup(args, 1)
	if err != nil {
		return nil, err
	}
	return segment.SegAng(name, sg, args.Range)
}

func coreAngleToMatchLengthX(args stdlib.Args) (value.Value, error) {
	name, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	target, err := argNumber(args, 1)
	if err != nil {
		return nil, err
	}
	sg, err := argSketchGroup(args, 2)
	if err != nil {
		return nil, err
	}
	return segment.AngleToMatchLengthX(name, target, sg, args.Range)
}

func coreAngleToMatchLengthY(args stdlib.Args) (value.Value, error) {
	name, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	target, err := argNumber(args, 1)
	if err != nil {
		return nil, err
	}
	sg, err := argSketchGroup(args, 2)
	if err != nil {
		return nil, err
	}
	return segment.AngleToMatchLengthY(name, target, sg, args.Range)
}
