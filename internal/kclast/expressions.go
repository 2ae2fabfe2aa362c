package kclast

// Literal is a JSON-representable scalar, string, array, or object literal.
type Literal struct {
	// Value holds the parsed literal: int64 (bare integer), float64,
	// string, bool, nil, []any, or map[string]any.
	Value any
	Range SourceRange
}

func (l *Literal) Pos() SourceRange { return l.Range }
func (l *Literal) String() string   { return "Literal" }
func (l *Literal) valueNode()       {}

// NoneLiteral is the explicit "no value" token in source; it evaluates to
// the KclNone sentinel (spec.md §3).
type NoneLiteral struct {
	Range SourceRange
}

func (n *NoneLiteral) Pos() SourceRange { return n.Range }
func (n *NoneLiteral) String() string   { return "None" }
func (n *NoneLiteral) valueNode()       {}

// Identifier is a name reference, resolved through program memory.
type Identifier struct {
	Name  string
	Range SourceRange
}

func (i *Identifier) Pos() SourceRange { return i.Range }
func (i *Identifier) String() string   { return i.Name }
func (i *Identifier) valueNode()       {}

// UnaryExpression is a prefix operator applied to one operand (e.g. `-x`).
type UnaryExpression struct {
	Operator string
	Argument Value
	Range    SourceRange
}

func (u *UnaryExpression) Pos() SourceRange { return u.Range }
func (u *UnaryExpression) String() string   { return "(" + u.Operator + u.Argument.String() + ")" }
func (u *UnaryExpression) valueNode()       {}

// BinaryExpression is an infix arithmetic/comparison operator.
type BinaryExpression struct {
	Operator string
	Left     Value
	Right    Value
	Range    SourceRange
}

func (b *BinaryExpression) Pos() SourceRange { return b.Range }
func (b *BinaryExpression) String() string {
	return "(" + b.Left.String() + " " + b.Operator + " " + b.Right.String() + ")"
}
func (b *BinaryExpression) valueNode() {}

// CallExpression invokes a named function with positional arguments.
type CallExpression struct {
	Callee    *Identifier
	Arguments []Value
	Range     SourceRange
}

func (c *CallExpression) Pos() SourceRange { return c.Range }
func (c *CallExpression) String() string   { return c.Callee.Name + "(...)" }
func (c *CallExpression) valueNode()       {}

// PipeExpression is `expr |> call(%) |> ...`: a left-to-right chain of
// stages where every stage after the first may reference the previous
// stage's result via PipeSubstitution.
type PipeExpression struct {
	Body  []Value
	Range SourceRange
}

func (p *PipeExpression) Pos() SourceRange { return p.Range }
func (p *PipeExpression) String() string   { return "PipeExpression" }
func (p *PipeExpression) valueNode()       {}

// PipeSubstitution is the `%` marker.
type PipeSubstitution struct {
	Range SourceRange
}

func (p *PipeSubstitution) Pos() SourceRange { return p.Range }
func (p *PipeSubstitution) String() string   { return "%" }
func (p *PipeSubstitution) valueNode()       {}

// ArrayExpression is `[a, b, c]`.
type ArrayExpression struct {
	Elements []Value
	Range    SourceRange
}

func (a *ArrayExpression) Pos() SourceRange { return a.Range }
func (a *ArrayExpression) String() string   { return "ArrayExpression" }
func (a *ArrayExpression) valueNode()       {}

// ObjectProperty is one `key: value` pair of an ObjectExpression.
type ObjectProperty struct {
	Key   string
	Value Value
	Range SourceRange
}

// ObjectExpression is `{key: value, ...}`.
type ObjectExpression struct {
	Properties []ObjectProperty
	Range      SourceRange
}

func (o *ObjectExpression) Pos() SourceRange { return o.Range }
func (o *ObjectExpression) String() string   { return "ObjectExpression" }
func (o *ObjectExpression) valueNode()       {}

// MemberExpression reads a property (dot form) or index/key (bracket form)
// of a container value.
type MemberExpression struct {
	Object   Value
	Property Value // Identifier for dot form, any Value for bracket form
	Computed bool  // true for obj[prop], false for obj.prop
	Range    SourceRange
}

func (m *MemberExpression) Pos() SourceRange { return m.Range }
func (m *MemberExpression) String() string   { return "MemberExpression" }
func (m *MemberExpression) valueNode()       {}

// Parameter is one formal parameter of a FunctionExpression.
type Parameter struct {
	Name     string
	Optional bool
	Range    SourceRange
}

// FunctionExpression is `(params) => { ...body }`. It is itself a Value
// (so it can appear as a declaration initializer) as well as the payload
// carried by a bound Function runtime value.
type FunctionExpression struct {
	Params []Parameter
	Body   *Program
	Range  SourceRange
}

func (f *FunctionExpression) Pos() SourceRange { return f.Range }
func (f *FunctionExpression) String() string   { return "FunctionExpression" }
func (f *FunctionExpression) valueNode()       {}

// MinMaxParams reports the required-parameter count and the total
// parameter count, matching the original executor's
// `FunctionExpression::number_of_args` (see SPEC_FULL.md §5).
func (f *FunctionExpression) MinMaxParams() (min, max int) {
	max = len(f.Params)
	for _, p := range f.Params {
		if !p.Optional {
			min++
		}
	}
	return min, max
}
