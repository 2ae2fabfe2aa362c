package evaluator

import (
	"context"
	"encoding/json"
	"math"
	"strconv"

	"github.com/cadkit/kcl-core/internal/kclast"
	"github.com/cadkit/kcl-core/internal/kclerrors"
	"github.com/cadkit/kcl-core/internal/memory"
	"github.com/cadkit/kcl-core/internal/stdlib"
	"github.com/cadkit/kcl-core/internal/value"
)

// evalExpr reduces a single AST Value node to a runtime Value
// (spec.md §4.4 "Expression evaluation").
func (e *Evaluator) evalExpr(goCtx context.Context, expr kclast.Value, mem *memory.Memory, pipe *memory.PipeInfo) (value.Value, error) {
	switch n := expr.(type) {
	case *kclast.Literal:
		return &value.UserVal{JSON: n.Value, Meta: []value.Metadata{{Range: n.Range}}}, nil
	case *kclast.NoneLiteral:
		return value.None(value.Metadata{Range: n.Range}), nil
	case *kclast.Identifier:
		return mem.Get(n.Name, n.Range)
	case *kclast.UnaryExpression:
		return e.evalUnary(goCtx, n, mem, pipe)
	case *kclast.BinaryExpression:
		return e.evalBinary(goCtx, n, mem, pipe)
	case *kclast.ArrayExpression:
		return e.evalArray(goCtx, n, mem, pipe)
	case *kclast.ObjectExpression:
		return e.evalObject(goCtx, n, mem, pipe)
	case *kclast.MemberExpression:
		return e.evalMember(goCtx, n, mem, pipe)
	case *kclast.CallExpression:
		return e.evalCall(goCtx, n, mem, pipe)
	case *kclast.PipeExpression:
		return e.evalPipe(goCtx, n, mem, pipe)
	case *kclast.PipeSubstitution:
		v, ok := pipe.Previous()
		if !ok {
			return nil, kclerrors.New(kclerrors.Semantic, "% used outside a pipeline", n.Range)
		}
		return v, nil
	case *kclast.FunctionExpression:
		return e.bindFunction(n, mem), nil
	default:
		return nil, kclerrors.New(kclerrors.Semantic, "unsupported expression kind", expr.Pos())
	}
}

func asFloat(v value.Value, rng kclast.SourceRange) (float64, error) {
	uv, ok := v.(*value.UserVal)
	if ok {
		switch n := uv.JSON.(type) {
		case float64:
			return n, nil
		case int64:
			return float64(n), nil
		case json.Number:
			f, err := n.Float64()
			if err == nil {
				return f, nil
			}
		}
	}
	return 0, kclerrors.New(kclerrors.Type, "expected a number", rng)
}

func (e *Evaluator) evalUnary(goCtx context.Context, n *kclast.UnaryExpression, mem *memory.Memory, pipe *memory.PipeInfo) (value.Value, error) {
	arg, err := e.evalExpr(goCtx, n.Argument, mem, pipe)
	if err != nil {
		return nil, err
	}
	f, err := asFloat(arg, n.Range)
	if err != nil {
		return nil, err
	}
	switch n.Operator {
	case "-":
		f = -f
	case "+":
		// no-op
	default:
		return nil, kclerrors.New(kclerrors.Semantic, "unknown unary operator "+n.Operator, n.Range)
	}
	return &value.UserVal{JSON: f, Meta: []value.Metadata{{Range: n.Range}}}, nil
}

func (e *Evaluator) evalBinary(goCtx context.Context, n *kclast.BinaryExpression, mem *memory.Memory, pipe *memory.PipeInfo) (value.Value, error) {
	left, err := e.evalExpr(goCtx, n.Left, mem, pipe)
	if err != nil {
		return nil, err
	}
	right, err := e.evalExpr(goCtx, n.Right, mem, pipe)
	if err != nil {
		return nil, err
	}
	lf, err := asFloat(left, n.Range)
	if err != nil {
		return nil, err
	}
	rf, err := asFloat(right, n.Range)
	if err != nil {
		return nil, err
	}
	var result float64
	switch n.Operator {
	case "+":
		result = lf + rf
	case "-":
		result = lf - rf
	case "*":
		result = lf * rf
	case "/":
		result = lf / rf
	case "%":
		result = math.Mod(lf, rf)
	default:
		return nil, kclerrors.New(kclerrors.Semantic, "unknown binary operator "+n.Operator, n.Range)
	}
	return &value.UserVal{JSON: result, Meta: []value.Metadata{{Range: n.Range}}}, nil
}

func (e *Evaluator) evalArray(goCtx context.Context, n *kclast.ArrayExpression, mem *memory.Memory, pipe *memory.PipeInfo) (value.Value, error) {
	elems := make([]any, len(n.Elements))
	for i, elemExpr := range n.Elements {
		v, err := e.evalExpr(goCtx, elemExpr, mem, pipe)
		if err != nil {
			return nil, err
		}
		raw, err := jsonOf(v)
		if err != nil {
			return nil, err
		}
		elems[i] = raw
	}
	return &value.UserVal{JSON: elems, Meta: []value.Metadata{{Range: n.Range}}}, nil
}

func (e *Evaluator) evalObject(goCtx context.Context, n *kclast.ObjectExpression, mem *memory.Memory, pipe *memory.PipeInfo) (value.Value, error) {
	obj := make(map[string]any, len(n.Properties))
	for _, prop := range n.Properties {
		v, err := e.evalExpr(goCtx, prop.Value, mem, pipe)
		if err != nil {
			return nil, err
		}
		raw, err := jsonOf(v)
		if err != nil {
			return nil, err
		}
		obj[prop.Key] = raw
	}
	return &value.UserVal{JSON: obj, Meta: []value.Metadata{{Range: n.Range}}}, nil
}

// jsonOf returns the plain-JSON form of any runtime Value, used when
// embedding it as an element of an array/object literal.
func jsonOf(v value.Value) (any, error) {
	if uv, ok := v.(*value.UserVal); ok {
		return uv.JSON, nil
	}
	raw, err := value.ToJSON(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, kclerrors.New(kclerrors.Semantic, "failed to embed value: "+err.Error())
	}
	return out, nil
}

// evalMember reads a property (dot form) or index/key (bracket form) off
// a UserVal container. Both forms resolve through value.Get's gjson path
// lookup rather than a hand-rolled map/slice switch, so bracket and dot
// access share one read path the way the teacher's own member-access
// built-ins share a single resolution helper.
func (e *Evaluator) evalMember(goCtx context.Context, n *kclast.MemberExpression, mem *memory.Memory, pipe *memory.PipeInfo) (value.Value, error) {
	obj, err := e.evalExpr(goCtx, n.Object, mem, pipe)
	if err != nil {
		return nil, err
	}
	uv, ok := obj.(*value.UserVal)
	if !ok {
		return nil, kclerrors.New(kclerrors.Semantic, "member access on a non-object value", n.Range)
	}

	var path string
	if !n.Computed {
		ident, ok := n.Property.(*kclast.Identifier)
		if !ok {
			return nil, kclerrors.New(kclerrors.Semantic, "dot-form member access requires an identifier", n.Range)
		}
		path = ident.Name
	} else {
		propVal, err := e.evalExpr(goCtx, n.Property, mem, pipe)
		if err != nil {
			return nil, err
		}
		propUV, ok := propVal.(*value.UserVal)
		if !ok {
			return nil, kclerrors.New(kclerrors.Semantic, "member key must be a string or number", n.Range)
		}
		switch k := propUV.JSON.(type) {
		case string:
			path = k
		default:
			idx, err := keyToIndex(k)
			if err != nil {
				return nil, kclerrors.New(kclerrors.Semantic, "member index must be a number", n.Range)
			}
			path = strconv.Itoa(idx)
		}
	}

	res, err := value.Get(uv, path)
	if err != nil {
		return nil, err
	}
	if !res.Exists() {
		return nil, kclerrors.New(kclerrors.Semantic, "missing key "+path, n.Range)
	}
	return &value.UserVal{JSON: res.Value(), Meta: []value.Metadata{{Range: n.Range}}}, nil
}

func keyToIndex(key any) (int, error) {
	switch k := key.(type) {
	case float64:
		return int(k), nil
	case int64:
		return int(k), nil
	default:
		return 0, kclerrors.New(kclerrors.Semantic, "not a numeric index")
	}
}

func (e *Evaluator) evalCall(goCtx context.Context, n *kclast.CallExpression, mem *memory.Memory, pipe *memory.PipeInfo) (value.Value, error) {
	args := make([]value.Value, 0, len(n.Arguments))
	for _, argExpr := range n.Arguments {
		v, err := e.evalExpr(goCtx, argExpr, mem, pipe)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	callArgs := stdlib.Args{Positional: args, Range: n.Range, Ctx: goCtx, Memory: mem}

	libraryEvaluator := func(goCtx context.Context, body *kclast.FunctionExpression, args []value.Value, callerMemory *memory.Memory, rng kclast.SourceRange) (value.Value, error) {
		return e.callFunction(goCtx, body, args, callerMemory, rng)
	}
	userDefinedLookup := func(name string, rng kclast.SourceRange) (value.Value, bool) {
		v, err := mem.Get(name, rng)
		if err != nil {
			return nil, false
		}
		return v, true
	}

	return stdlib.Dispatch(e.Registry, n.Callee.Name, callArgs, libraryEvaluator, userDefinedLookup)
}

func (e *Evaluator) evalPipe(goCtx context.Context, n *kclast.PipeExpression, mem *memory.Memory, pipe *memory.PipeInfo) (value.Value, error) {
	pipe.Begin()
	defer pipe.End()

	var result value.Value
	for _, stage := range n.Body {
		v, err := e.evalExpr(goCtx, stage, mem, pipe)
		if err != nil {
			return nil, err
		}
		pipe.Update(v)
		result = v
	}
	return result, nil
}
