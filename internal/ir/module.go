package ir

import (
	"github.com/aurelia-tools/aurelia-ls/internal/ids"
	"github.com/aurelia-tools/aurelia-ls/internal/span"
)

// NodeKind discriminates the lowered DOM tree.
type NodeKind string

const (
	NodeFragmentRoot NodeKind = "fragment"
	NodeElement      NodeKind = "element"
	NodeText         NodeKind = "text"
	NodeComment      NodeKind = "comment"
)

// AttrSpan carries the authored-case span information the lower stage
// preserves for diagnostics, hover, and semantic tokens: the attribute
// name's own span and its value span. Tag-name spans live on DOMNode.
type AttrSpan struct {
	Name      string
	NameSpan  span.Span
	ValueSpan span.Span
}

// DOMNode is a node of the lowered DOM tree. Children are stored inline
// (owning slice, no back-pointers) per spec.md §9's arena-over-pointers
// guidance; a node's NodeID is unique within its TemplateIR.
type DOMNode struct {
	ID       ids.NodeID
	Kind     NodeKind
	Tag      string // element name, authored case preserved
	TagSpan  span.Span
	CloseTagSpan span.Span // zero-value Span if void/self-closing
	EndOfOpenSpan span.Span // span of the open tag's terminating '>'
	Attrs    []AttrSpan
	Text     string // NodeText only
	TextSource *BindingSource // set when NodeText contains interpolation
	Children []*DOMNode
}

// TemplateMetaKind discriminates the template-meta elements extracted
// during lowering.
type TemplateMetaKind string

const (
	MetaImport         TemplateMetaKind = "import"
	MetaRequire        TemplateMetaKind = "require"
	MetaBindable       TemplateMetaKind = "bindable"
	MetaUseShadowDOM   TemplateMetaKind = "use-shadow-dom"
	MetaContainerless  TemplateMetaKind = "containerless"
	MetaCapture        TemplateMetaKind = "capture"
	MetaAlias          TemplateMetaKind = "alias"
	MetaSlot           TemplateMetaKind = "slot"
)

// TemplateMetaEntry is a single `<import>`/`<require>`/`<bindable>`/...
// element stripped from the DOM tree and preserved as metadata. Only the
// root TemplateIR of a module carries these (spec.md §4.G.1).
type TemplateMetaEntry struct {
	Kind TemplateMetaKind
	Span span.Span

	// MetaImport / MetaRequire
	From     string
	FromSpan span.Span
	As       string // `<import from="./x" as="y">`

	// MetaBindable
	BindableName string
	BindableMode string
	BindableAttribute string

	// MetaAlias
	AliasName string

	// MetaSlot: presence-only, no extra fields.
}

// TemplateMetaIR is the aggregate of template-meta elements for a root
// template.
type TemplateMetaIR struct {
	Entries        []TemplateMetaEntry
	UsesShadowDOM  bool
	IsContainerless bool
	Capture        bool
	HasSlot        bool
}

// TemplateOrigin identifies the controller-host node (in the parent
// template) that a nested TemplateIR was synthesized for.
type TemplateOrigin struct {
	ParentTemplate ids.TemplateID
	HostNode       ids.NodeID
	ControllerName string // "if", "repeat", "with", a custom controller's name, ...
}

// TemplateIR is one compiled template: the root template of a file, or a
// synthetic nested template produced for a template-controller's host
// subtree. NodeIDs are unique within the template; TemplateIDs are
// unique within the owning IrModule.
type TemplateIR struct {
	ID       ids.TemplateID
	Root     *DOMNode
	Rows     []InstructionRow
	Meta     *TemplateMetaIR // non-nil only for the module's root template
	Origin   *TemplateOrigin // nil for the root template
}

// Diagnostic is a lowering/link-time finding attached directly to the IR,
// ahead of the central diag package's staged aggregation; it carries the
// same shape as diag.Diagnostic but IR must not import the diag package
// (it would create an import cycle, since diag's gap-conservation check
// inspects these). See internal/diag.FromIR.
type Diagnostic struct {
	Code     string
	Severity string
	Span     span.Span
	Message  string
	Data     map[string]any
	Recovery bool
}

// IrModule is the lower stage's output: one root TemplateIR plus any
// nested TemplateIRs, a shared expression table, and lowering
// diagnostics. Immutable once produced; consumed by link.
type IrModule struct {
	File        ids.SourceFileID
	Templates   []TemplateIR // index 0 is always the root template
	Exprs       ExprTable
	Diagnostics []Diagnostic
}

// RootTemplate returns the module's root TemplateIR.
func (m *IrModule) RootTemplate() *TemplateIR {
	if len(m.Templates) == 0 {
		return nil
	}
	return &m.Templates[0]
}

// Template looks up a TemplateIR by id.
func (m *IrModule) Template(id ids.TemplateID) (*TemplateIR, bool) {
	if int(id) < 0 || int(id) >= len(m.Templates) {
		return nil, false
	}
	return &m.Templates[id], true
}
