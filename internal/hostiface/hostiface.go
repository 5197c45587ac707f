// Package hostiface declares the narrow external collaborator
// interfaces the template pipeline talks to (spec.md §6 "External
// interfaces"): markup parsing, expression parsing, host type-checking,
// module resolution, view-model reflection, and filesystem access. The
// pipeline never depends on a concrete scripting-language toolchain or
// filesystem implementation, only on these seams. Grounded on the
// teacher's pkg/chart/interfaces.go: tiny method-set interfaces, one per
// collaborator, with no shared base interface.
package hostiface

import (
	"context"

	"github.com/aurelia-tools/aurelia-ls/internal/ids"
)

// ParsedAttr is one attribute the MarkupParser has classified, ready for
// the lower stage to turn into instruction IR.
type ParsedAttr struct {
	Name      string
	NameSpan  AttrPos
	Value     string
	ValueSpan AttrPos
}

// AttrPos is a half-open byte offset pair, kept independent of
// internal/span so hostiface has no dependency on the IR's own span
// type; the lower stage translates.
type AttrPos struct{ Start, End int }

// ParsedNode is one DOM node as the MarkupParser sees it — a reduced
// shape the lower stage walks to build ir.DOMNode.
type ParsedNode struct {
	Tag           string
	TagSpan       AttrPos
	CloseTagSpan  AttrPos
	EndOfOpenSpan AttrPos
	IsText        bool
	IsComment     bool
	Text          string
	Attrs         []ParsedAttr
	Children      []*ParsedNode
}

// MarkupParser parses template source into a DOM tree preserving
// authored case and exact tag/attribute spans (spec.md §4.G.1).
type MarkupParser interface {
	Parse(source string) (*ParsedNode, error)
}

// ParsedExpr is the host expression parser's result for one expression
// fragment: either a successfully parsed opaque AST node, or a recovered
// parse failure carrying the parser's message.
type ParsedExpr struct {
	OK      bool
	Node    any
	BadMsg  string
	Pipes   []PipeUse
	Behaviors []BehaviorUse
}

// PipeUse / BehaviorUse mirror ir.PipeUse / ir.BehaviorUse in hostiface's
// own vocabulary (offsets, not spans) so this package has no dependency
// on internal/ir; the lower stage translates both into ir's shapes.
type PipeUse struct {
	Name  string
	Start int
	End   int
	Args  int
}

type BehaviorUse struct {
	Name  string
	Start int
	End   int
	Args  int
}

// ExpressionParser parses one binding expression fragment. Parse failures
// are never returned as a Go error for malformed-but-recoverable syntax —
// ParsedExpr.OK=false with BadMsg set is the recoverable path (spec.md
// §4.G.1); Parse only returns an error for conditions the lower stage
// cannot recover from at all (e.g. parser internal panic recovery).
type ExpressionParser interface {
	Parse(expr string) (ParsedExpr, error)
}

// TypeDiagnostic is one finding the host type-checker reported against
// the synthesized overlay program, keyed by the overlay span it covers
// (spec.md §4.G.4); the typecheck stage maps OverlaySpan back through the
// overlay↔template mapping via internal/provenance.
type TypeDiagnostic struct {
	OverlayStart int
	OverlayEnd   int
	Severity     string
	Message      string
	Code         string
}

// TypeChecker feeds a synthesized overlay source file to the host's type
// system and returns its diagnostics.
type TypeChecker interface {
	CheckOverlay(ctx context.Context, overlaySource string, rootVmTypeExpr string) ([]TypeDiagnostic, error)
}

// ModuleResolver resolves an import/module specifier to an absolute
// source file id, the compiler's only door into the host's module
// resolution algorithm (spec.md §6 "View-model source").
type ModuleResolver interface {
	Resolve(fromFile ids.SourceFileID, specifier string) (ids.SourceFileID, bool)
}

// VmReflection exposes the two facts the typecheck stage needs about the
// authored view-model without re-implementing a scripting-language type
// checker: the root view-model's type expression (for the synthesized
// overlay's `this`), and the synthetic identifier prefix the overlay
// program must use to avoid colliding with real view-model symbols.
type VmReflection interface {
	RootVmTypeExpr(file ids.SourceFileID) string
	SyntheticPrefix() string
}

// FileSystem is the compiler's only filesystem seam, letting tests swap
// in an in-memory project without touching package.json / sibling-file
// discovery logic (discovery.Project is already host-agnostic data;
// FileSystem is what populates it from real disk).
type FileSystem interface {
	ReadFile(path string) ([]byte, bool, error)
	Glob(root, pattern string) ([]string, error)
}
