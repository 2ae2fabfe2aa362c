// Package kclastjson decodes a JSON-encoded AST fixture into
// internal/kclast nodes. Lexing and parsing of the DSL's textual syntax
// are out of scope (spec.md §1): this package lets the CLI and tests
// supply a Program built externally, in a structured JSON form that
// mirrors §3's node shapes, without requiring this repository to
// implement its own tokenizer.
package kclastjson

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cadkit/kcl-core/internal/kclast"
)

type rangeJSON struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (r rangeJSON) toRange() kclast.SourceRange {
	return kclast.SourceRange{Start: r.Start, End: r.End}
}

type nodeJSON struct {
	Kind  string          `json:"kind"`
	Range rangeJSON       `json:"range"`
	Raw   json.RawMessage `json:"-"`
}

// Decode parses raw into a Program.
func Decode(raw []byte) (*kclast.Program, error) {
	var doc struct {
		Body []json.RawMessage `json:"body"`
		End  int               `json:"end"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("kclastjson: %w", err)
	}
	body := make([]kclast.BodyItem, len(doc.Body))
	for i, item := range doc.Body {
		n, err := decodeBodyItem(item)
		if err != nil {
			return nil, err
		}
		body[i] = n
	}
	return &kclast.Program{Body: body, End: doc.End}, nil
}

func peekKind(raw json.RawMessage) (string, error) {
	var k struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(raw, &k); err != nil {
		return "", fmt.Errorf("kclastjson: %w", err)
	}
	if k.Kind == "" {
		return "", fmt.Errorf("kclastjson: node missing \"kind\"")
	}
	return k.Kind, nil
}

func decodeBodyItem(raw json.RawMessage) (kclast.BodyItem, error) {
	kind, err := peekKind(raw)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "ExpressionStatement":
		var n struct {
			Range      rangeJSON       `json:"range"`
			Expression json.RawMessage `json:"expression"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("kclastjson: %w", err)
		}
		expr, err := decodeValue(n.Expression)
		if err != nil {
			return nil, err
		}
		return &kclast.ExpressionStatement{Expression: expr, Range: n.Range.toRange()}, nil
	case "VariableDeclaration":
		var n struct {
			Range        rangeJSON `json:"range"`
			VarKind      string    `json:"varKind"`
			Declarations []struct {
				Name  string          `json:"name"`
				Init  json.RawMessage `json:"init"`
				Range rangeJSON       `json:"range"`
			} `json:"declarations"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("kclastjson: %w", err)
		}
		decls := make([]*kclast.VariableDeclarator, len(n.Declarations))
		for i, d := range n.Declarations {
			init, err := decodeValue(d.Init)
			if err != nil {
				return nil, err
			}
			decls[i] = &kclast.VariableDeclarator{Name: d.Name, Init: init, Range: d.Range.toRange()}
		}
		return &kclast.VariableDeclaration{Kind: n.VarKind, Declarations: decls, Range: n.Range.toRange()}, nil
	case "ReturnStatement":
		var n struct {
			Range    rangeJSON       `json:"range"`
			Argument json.RawMessage `json:"argument"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("kclastjson: %w", err)
		}
		arg, err := decodeValue(n.Argument)
		if err != nil {
			return nil, err
		}
		return &kclast.ReturnStatement{Argument: arg, Range: n.Range.toRange()}, nil
	default:
		return nil, fmt.Errorf("kclastjson: unknown body item kind %q", kind)
	}
}

// decodeLiteralValue decodes a Literal's "value" field with UseNumber so a
// bare JSON number classifies as int64 when exact, float64 otherwise —
// `myVar=5` must stay an integer, distinct from a computed `5.0`.
// encoding/json would otherwise decode every bare number as float64.
func decodeLiteralValue(raw json.RawMessage) (any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("kclastjson: %w", err)
	}
	return normalizeJSONNumber(v), nil
}

func normalizeJSONNumber(v any) any {
	switch n := v.(type) {
	case json.Number:
		if i64, err := n.Int64(); err == nil {
			return i64
		}
		if f64, err := n.Float64(); err == nil {
			return f64
		}
		return n.String()
	case []any:
		out := make([]any, len(n))
		for i, e := range n {
			out[i] = normalizeJSONNumber(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, e := range n {
			out[k] = normalizeJSONNumber(e)
		}
		return out
	default:
		return v
	}
}

func decodeValue(raw json.RawMessage) (kclast.Value, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	kind, err := peekKind(raw)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "Literal":
		var n struct {
			Range rangeJSON       `json:"range"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("kclastjson: %w", err)
		}
		val, err := decodeLiteralValue(n.Value)
		if err != nil {
			return nil, err
		}
		return &kclast.Literal{Value: val, Range: n.Range.toRange()}, nil
	case "None":
		var n struct {
			Range rangeJSON `json:"range"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("kclastjson: %w", err)
		}
		return &kclast.NoneLiteral{Range: n.Range.toRange()}, nil
	case "Identifier":
		var n struct {
			Range rangeJSON `json:"range"`
			Name  string    `json:"name"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("kclastjson: %w", err)
		}
		return &kclast.Identifier{Name: n.Name, Range: n.Range.toRange()}, nil
	case "UnaryExpression":
		var n struct {
			Range    rangeJSON       `json:"range"`
			Operator string          `json:"operator"`
			Argument json.RawMessage `json:"argument"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("kclastjson: %w", err)
		}
		arg, err := decodeValue(n.Argument)
		if err != nil {
			return nil, err
		}
		return &kclast.UnaryExpression{Operator: n.Operator, Argument: arg, Range: n.Range.toRange()}, nil
	case "BinaryExpression":
		var n struct {
			Range    rangeJSON       `json:"range"`
			Operator string          `json:"operator"`
			Left     json.RawMessage `json:"left"`
			Right    json.RawMessage `json:"right"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("kclastjson: %w", err)
		}
		left, err := decodeValue(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeValue(n.Right)
		if err != nil {
			return nil, err
		}
		return &kclast.BinaryExpression{Operator: n.Operator, Left: left, Right: right, Range: n.Range.toRange()}, nil
	case "CallExpression":
		var n struct {
			Range  rangeJSON `json:"range"`
			Callee struct {
				Name  string    `json:"name"`
				Range rangeJSON `json:"range"`
			} `json:"callee"`
			Arguments []json.RawMessage `json:"arguments"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("kclastjson: %w", err)
		}
		args := make([]kclast.Value, len(n.Arguments))
		for i, a := range n.Arguments {
			v, err := decodeValue(a)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return &kclast.CallExpression{
			Callee:    &kclast.Identifier{Name: n.Callee.Name, Range: n.Callee.Range.toRange()},
			Arguments: args,
			Range:     n.Range.toRange(),
		}, nil
	case "PipeExpression":
		var n struct {
			Range rangeJSON         `json:"range"`
			Body  []json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("kclastjson: %w", err)
		}
		stages := make([]kclast.Value, len(n.Body))
		for i, s := range n.Body {
			v, err := decodeValue(s)
			if err != nil {
				return nil, err
			}
			stages[i] = v
		}
		return &kclast.PipeExpression{Body: stages, Range: n.Range.toRange()}, nil
	case "PipeSubstitution":
		var n struct {
			Range rangeJSON `json:"range"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("kclastjson: %w", err)
		}
		return &kclast.PipeSubstitution{Range: n.Range.toRange()}, nil
	case "ArrayExpression":
		var n struct {
			Range    rangeJSON         `json:"range"`
			Elements []json.RawMessage `json:"elements"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("kclastjson: %w", err)
		}
		elems := make([]kclast.Value, len(n.Elements))
		for i, e := range n.Elements {
			v, err := decodeValue(e)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return &kclast.ArrayExpression{Elements: elems, Range: n.Range.toRange()}, nil
	case "ObjectExpression":
		var n struct {
			Range      rangeJSON `json:"range"`
			Properties []struct {
				Key   string          `json:"key"`
				Value json.RawMessage `json:"value"`
				Range rangeJSON       `json:"range"`
			} `json:"properties"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("kclastjson: %w", err)
		}
		props := make([]kclast.ObjectProperty, len(n.Properties))
		for i, p := range n.Properties {
			v, err := decodeValue(p.Value)
			if err != nil {
				return nil, err
			}
			props[i] = kclast.ObjectProperty{Key: p.Key, Value: v, Range: p.Range.toRange()}
		}
		return &kclast.ObjectExpression{Properties: props, Range: n.Range.toRange()}, nil
	case "MemberExpression":
		var n struct {
			Range    rangeJSON       `json:"range"`
			Object   json.RawMessage `json:"object"`
			Property json.RawMessage `json:"property"`
			Computed bool            `json:"computed"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("kclastjson: %w", err)
		}
		obj, err := decodeValue(n.Object)
		if err != nil {
			return nil, err
		}
		prop, err := decodeValue(n.Property)
		if err != nil {
			return nil, err
		}
		return &kclast.MemberExpression{Object: obj, Property: prop, Computed: n.Computed, Range: n.Range.toRange()}, nil
	case "FunctionExpression":
		var n struct {
			Range  rangeJSON `json:"range"`
			Params []struct {
				Name     string    `json:"name"`
				Optional bool      `json:"optional"`
				Range    rangeJSON `json:"range"`
			} `json:"params"`
			Body struct {
				Body []json.RawMessage `json:"body"`
				End  int               `json:"end"`
			} `json:"body"`
		}
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("kclastjson: %w", err)
		}
		params := make([]kclast.Parameter, len(n.Params))
		for i, p := range n.Params {
			params[i] = kclast.Parameter{Name: p.Name, Optional: p.Optional, Range: p.Range.toRange()}
		}
		bodyItems := make([]kclast.BodyItem, len(n.Body.Body))
		for i, item := range n.Body.Body {
			bi, err := decodeBodyItem(item)
			if err != nil {
				return nil, err
			}
			bodyItems[i] = bi
		}
		return &kclast.FunctionExpression{
			Params: params,
			Body:   &kclast.Program{Body: bodyItems, End: n.Body.End},
			Range:  n.Range.toRange(),
		}, nil
	default:
		return nil, fmt.Errorf("kclastjson: unknown expression kind %q", kind)
	}
}
