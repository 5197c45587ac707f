package ir

import "github.com/aurelia-tools/aurelia-ls/internal/ids"

// FrameKind discriminates a ScopeFrame: "root" for a template's own frame
// when nothing opened a new scope over it, "overlay" when a
// scope:"overlay" template-controller (spec.md §4.G.3) produced the
// template this frame belongs to.
type FrameKind string

const (
	FrameRoot    FrameKind = "root"
	FrameOverlay FrameKind = "overlay"
)

// SymbolKind discriminates a ScopeSymbol's origin.
type SymbolKind string

const (
	SymbolLet           SymbolKind = "let"
	SymbolIteratorLocal SymbolKind = "iteratorLocal"
	SymbolContextual    SymbolKind = "contextual"
	SymbolAlias         SymbolKind = "alias"
)

// ScopeSymbol is one name a frame introduces into expression resolution.
// ValueExpr is ids.NoExpr for symbols that have no backing expression
// (repeat's contextuals, iterator destructure locals).
type ScopeSymbol struct {
	Kind      SymbolKind
	Name      string
	ValueExpr ids.ExprID
}

// FrameOrigin records the controller instruction a ScopeFrame was opened
// for. Pattern is a semantics.FrameOriginPattern value carried as a plain
// string so this package keeps no dependency on internal/semantics.
type FrameOrigin struct {
	Pattern        string
	HostNode       ids.NodeID
	ControllerName string
}

// ScopeFrame is one node of the scope graph: every TemplateIR contributes
// exactly one (lower already opens a fresh nested TemplateIR per
// template-controller attribute, so "does this controller open a new
// frame" and "is this a new TemplateIR" coincide — see
// internal/pipeline/bind).
type ScopeFrame struct {
	ID ids.FrameID

	Kind FrameKind

	// OverlayBase is set only for FrameOriginPattern "valueOverlay"
	// (`with`): the expression the frame's single implicit member
	// resolves against.
	OverlayBase *BindingSource

	Symbols []ScopeSymbol

	// Origin is nil for a template that was never synthesized for a
	// controller (the module's actual document root).
	Origin *FrameOrigin
}

// ScopeTemplate is the scope-graph contribution of one TemplateIR.
// ParentTemplate mirrors TemplateOrigin.ParentTemplate so a frame lookup
// that misses locally walks outward through a chain of ScopeTemplates
// rather than through a second, template-spanning frame-id space.
type ScopeTemplate struct {
	TemplateID     ids.TemplateID
	ParentTemplate ids.TemplateID // ids.NoTemplate for the module's root template
	Frame          ScopeFrame
	ExprFrame      map[ids.ExprID]ids.FrameID
}

// ScopeModule is the bind stage's output: one ScopeTemplate per TemplateIR
// of the IrModule it was built from, same indexing.
type ScopeModule struct {
	Templates []ScopeTemplate
}

// Template looks up a ScopeTemplate by id.
func (m *ScopeModule) Template(id ids.TemplateID) (*ScopeTemplate, bool) {
	if int(id) < 0 || int(id) >= len(m.Templates) {
		return nil, false
	}
	return &m.Templates[id], true
}

// Resolve walks the frame chain outward from tpl (tpl's own frame, then
// its ParentTemplate, and so on) looking for a symbol named name — the
// query-time lookup G.3's bind stage deliberately defers (bind only
// builds the graph; it never resolves a name against it). Returns the
// matching symbol and the template whose frame declares it.
func (m *ScopeModule) Resolve(tpl ids.TemplateID, name string) (ScopeSymbol, ids.TemplateID, bool) {
	for {
		st, ok := m.Template(tpl)
		if !ok {
			return ScopeSymbol{}, ids.NoTemplate, false
		}
		for _, s := range st.Frame.Symbols {
			if s.Name == name {
				return s, tpl, true
			}
		}
		if st.ParentTemplate == ids.NoTemplate {
			return ScopeSymbol{}, ids.NoTemplate, false
		}
		tpl = st.ParentTemplate
	}
}
