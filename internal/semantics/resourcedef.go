package semantics

import (
	"github.com/aurelia-tools/aurelia-ls/internal/ids"
	"github.com/aurelia-tools/aurelia-ls/internal/span"
)

// OriginKind discriminates where a Sourced value's fact came from.
type OriginKind string

const (
	OriginSource  OriginKind = "source"  // decorator, .define(), convention, sibling-template
	OriginConfig  OriginKind = "config"  // explicit project configuration
	OriginBuiltin OriginKind = "builtin" // shipped with the semantics registry
)

// SourceLocation pins a Sourced fact to the file and span it was read
// from, for go-to-definition and convergence diagnostics.
type SourceLocation struct {
	File ids.SourceFileID
	Span span.Span
}

// Sourced wraps a value together with the provenance of where that value
// came from, per spec.md §3 "Semantics". Convergence folds compete on the
// Value while carrying Origin/Location for diagnostics.
type Sourced[T any] struct {
	Value    T
	Origin   OriginKind
	Location *SourceLocation // nil when Origin == OriginBuiltin
}

func NewSourced[T any](v T, origin OriginKind, loc *SourceLocation) Sourced[T] {
	return Sourced[T]{Value: v, Origin: origin, Location: loc}
}

// ResourceKind is the discriminant of the ResourceDef tagged union.
type ResourceKind string

const (
	KindCustomElement      ResourceKind = "custom-element"
	KindCustomAttribute    ResourceKind = "custom-attribute"
	KindTemplateController ResourceKind = "template-controller"
	KindValueConverter     ResourceKind = "value-converter"
	KindBindingBehavior    ResourceKind = "binding-behavior"
)

// BindableMode is the declared default binding mode for a bindable
// property, independent of ir.BindingMode so this package has no
// dependency on the IR.
type BindableMode string

const (
	BindableModeDefault  BindableMode = "default"
	BindableModeOneTime  BindableMode = "oneTime"
	BindableModeToView   BindableMode = "toView"
	BindableModeFromView BindableMode = "fromView"
	BindableModeTwoWay   BindableMode = "twoWay"
)

// BindableDef is one declared bindable property of a custom element,
// custom attribute, or template controller.
type BindableDef struct {
	PropertyName  string
	AttributeName string // kebab-case authored attribute name
	Mode          Sourced[BindableMode]
	Primary       bool // the single `bindable` eligible for no-multi-bindings shorthand
	TypeRef       string // "" | "any" | "unknown" | a concrete type-expression string
}

// FrameOriginPattern characterizes a template controller's scope-opening
// behavior by (trigger shape, scope kind, injected locals) rather than by
// name, so a custom controller with the same triple gets the same bind
// behavior as the matching built-in (spec.md §9).
type FrameOriginPattern string

const (
	PatternNone          FrameOriginPattern = ""
	PatternIterator      FrameOriginPattern = "iterator"
	PatternValueOverlay  FrameOriginPattern = "valueOverlay"
	PatternPromiseValue  FrameOriginPattern = "promiseValue"
	PatternPromiseBranch FrameOriginPattern = "promiseBranch"
)

// ScopeBehavior is "overlay" (opens a new scope frame) or "reuse" (binds
// in the enclosing frame), per spec.md §4.G.3.
type ScopeBehavior string

const (
	ScopeOverlay ScopeBehavior = "overlay"
	ScopeReuse   ScopeBehavior = "reuse"
)

// ControllerFacts are the extra facts a template-controller ResourceDef
// carries beyond the common fields.
type ControllerFacts struct {
	Scope   ScopeBehavior
	Pattern FrameOriginPattern
	// Injects lists the contextual locals a PatternIterator controller
	// injects into its overlay frame in addition to its declaration,
	// e.g. $index, $first, ... for `repeat`.
	Injects []string
}

// ResourceDef is the tagged union of every resource an application or
// plugin can declare. Construct via the Kind-specific constructors so the
// payload fields stay consistent with Kind.
type ResourceDef struct {
	Kind ResourceKind

	Name        Sourced[string] // normalized name (lowercase-kebab unless explicit)
	ClassName   Sourced[string]
	File        ids.SourceFileID
	NameLoc     *SourceLocation
	Aliases     []Sourced[string]

	// KindCustomElement / KindCustomAttribute / KindTemplateController
	Bindables       []BindableDef
	DefaultProperty string // KindCustomAttribute's implicit single-bindable name
	NoMultiBindings bool
	Containerless   Sourced[bool]
	Template        Sourced[string] // inline or sibling-resolved template source, "" if none
	TemplateFile    ids.SourceFileID

	// KindTemplateController only.
	Controller *ControllerFacts

	// KindCustomAttribute only: true when declared `isTemplateController`
	// via .define() before being reclassified to KindTemplateController.
	IsTemplateController bool

	// Plugin-activation provenance (spec.md §4.D.5): set when this
	// resource's visibility is conditional on a plugin registration.
	Package string

	// IsStub marks a synthesized placeholder resource created by the
	// link stage for an unknown reference, so downstream stages never
	// crash on a missing lookup (spec.md §7).
	IsStub bool
}

// Key returns the ResourceCatalog lookup key "<kind>:<name>".
func (r ResourceDef) Key() string {
	return string(r.Kind) + ":" + r.Name.Value
}

// BindableKey returns the referential-index key for one of r's bindables:
// "<kind>:<container>:bindable:<name>".
func (r ResourceDef) BindableKey(propertyName string) string {
	return string(r.Kind) + ":" + r.Name.Value + ":bindable:" + propertyName
}
