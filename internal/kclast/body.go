package kclast

// ExpressionStatement evaluates an expression for its side effects.
// Its result is discarded at statement level except for the CallExpression
// case, which binds into the program memory's return slot (spec.md §4.4).
type ExpressionStatement struct {
	Expression Value
	Range      SourceRange
}

func (s *ExpressionStatement) Pos() SourceRange { return s.Range }
func (s *ExpressionStatement) String() string   { return "ExpressionStatement" }
func (s *ExpressionStatement) bodyItemNode()    {}

// VariableDeclarator binds one name to one initializer.
type VariableDeclarator struct {
	Name  string
	Init  Value
	Range SourceRange
}

// VariableDeclaration is `const name = expr` or `let name = expr`; the
// Kind field distinguishes them for diagnostics only — both bind into
// program memory identically (spec.md draws no semantic difference).
type VariableDeclaration struct {
	Kind         string // "const" or "let"
	Declarations []*VariableDeclarator
	Range        SourceRange
}

func (s *VariableDeclaration) Pos() SourceRange { return s.Range }
func (s *VariableDeclaration) String() string   { return "VariableDeclaration(" + s.Kind + ")" }
func (s *VariableDeclaration) bodyItemNode()    {}

// ReturnStatement is `return expr`.
type ReturnStatement struct {
	Argument Value
	Range    SourceRange
}

func (s *ReturnStatement) Pos() SourceRange { return s.Range }
func (s *ReturnStatement) String() string   { return "ReturnStatement" }
func (s *ReturnStatement) bodyItemNode()    {}
