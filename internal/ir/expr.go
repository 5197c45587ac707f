package ir

import (
	"github.com/aurelia-tools/aurelia-ls/internal/ids"
	"github.com/aurelia-tools/aurelia-ls/internal/span"
)

// ExprRef is a binding source backed by a single parsed expression.
type ExprRef struct {
	ID   ids.ExprID
	Text string
	Span span.Span
}

// InterpIR is a binding source backed by a string interpolation:
// `parts[0] ${exprs[0]} parts[1] ${exprs[1]} parts[2] ...`.
// Invariant: len(Parts) == len(Exprs) + 1.
type InterpIR struct {
	Parts []string
	Exprs []ExprRef
}

// Valid reports whether the part/expr count invariant holds.
func (i InterpIR) Valid() bool { return len(i.Parts) == len(i.Exprs)+1 }

// BindingSourceKind discriminates BindingSource's two variants.
type BindingSourceKind string

const (
	BindingSourceExpr   BindingSourceKind = "expr"
	BindingSourceInterp BindingSourceKind = "interp"
)

// BindingSource is the tagged union of ways a binding's value can be
// authored: a bare expression, or a string interpolation.
type BindingSource struct {
	Kind   BindingSourceKind
	Expr   *ExprRef
	Interp *InterpIR
}

func NewExprSource(e ExprRef) BindingSource {
	return BindingSource{Kind: BindingSourceExpr, Expr: &e}
}

func NewInterpSource(i InterpIR) BindingSource {
	return BindingSource{Kind: BindingSourceInterp, Interp: &i}
}

// ExprNodeKind discriminates the recoverable expression AST.
type ExprNodeKind string

const (
	ExprNodeValid ExprNodeKind = "valid"
	ExprNodeBad   ExprNodeKind = "bad"
)

// ExprAST is a slot in the shared expression table. A parse failure is
// recoverable: it is recorded as ExprNodeBad with the parser's message,
// the surrounding binding is still emitted, and a diagnostic is attached
// by the lower stage so later stages can proceed (spec.md §4.G.1).
type ExprAST struct {
	ID      ids.ExprID
	Kind    ExprNodeKind
	Text    string
	Span    span.Span
	Node    any    // opaque AST produced by hostiface.ExpressionParser; nil when Kind == ExprNodeBad
	BadMsg  string // parser diagnostic message, set only when Kind == ExprNodeBad
	Pipes   []PipeUse
	Behavior []BehaviorUse
}

// PipeUse records a `| converterName` use within an expression, for the
// link stage to resolve against the catalog and for the referential
// index to record an expression-pipe reference site.
type PipeUse struct {
	Name string
	Span span.Span
	Args int
}

// BehaviorUse records a `& behaviorName` use within an expression.
type BehaviorUse struct {
	Name string
	Span span.Span
	Args int
}

// ExprTable is the IrModule-wide table of parsed expressions, shared by
// every TemplateIR in the module. Every expression occurrence is parsed
// and gets its own entry; identical text is not looked up or shared.
type ExprTable struct {
	Entries []ExprAST
}

func (t *ExprTable) Add(e ExprAST) ids.ExprID {
	e.ID = ids.ExprID(len(t.Entries))
	t.Entries = append(t.Entries, e)
	return e.ID
}

func (t *ExprTable) Get(id ids.ExprID) (ExprAST, bool) {
	if int(id) < 0 || int(id) >= len(t.Entries) {
		return ExprAST{}, false
	}
	return t.Entries[id], true
}
