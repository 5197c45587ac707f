package ir

import "github.com/aurelia-tools/aurelia-ls/internal/ids"

// InstructionKind is the discriminant tag of the InstructionIR union.
// Implementations pattern-match on this tag rather than dispatching
// through a type hierarchy (spec.md §9).
type InstructionKind string

const (
	InstrPropertyBinding   InstructionKind = "propertyBinding"
	InstrAttributeBinding  InstructionKind = "attributeBinding"
	InstrStyleBinding      InstructionKind = "styleBinding"
	InstrListenerBinding   InstructionKind = "listenerBinding"
	InstrRefBinding        InstructionKind = "refBinding"
	InstrLetBinding        InstructionKind = "letBinding"
	InstrIteratorBinding   InstructionKind = "iteratorBinding"
	InstrTextBinding       InstructionKind = "textBinding"
	InstrTranslationBind   InstructionKind = "translationBinding"
	InstrSetAttribute      InstructionKind = "setAttribute"
	InstrSetClassAttribute InstructionKind = "setClassAttribute"
	InstrSetStyleAttribute InstructionKind = "setStyleAttribute"
	InstrSetProperty       InstructionKind = "setProperty"
	InstrHydrateElement    InstructionKind = "hydrateElement"
	InstrHydrateAttribute  InstructionKind = "hydrateAttribute"
	InstrHydrateController InstructionKind = "hydrateTemplateController"
	InstrHydrateLet        InstructionKind = "hydrateLetElement"
)

// BindingMode is the effective binding mode assigned by the link stage.
type BindingMode string

const (
	ModeOneTime  BindingMode = "oneTime"
	ModeToView   BindingMode = "toView"
	ModeFromView BindingMode = "fromView"
	ModeTwoWay   BindingMode = "twoWay"
	ModeDefault  BindingMode = "default"
)

// Instruction is the tagged union of every instruction shape that can
// appear in a TemplateIR's InstructionRow.Instructions. Every field beyond
// Kind is a pointer populated only for that kind's payload. This keeps
// the union closed and inspectable (encoding/json-friendly) without a
// dynamic-dispatch type hierarchy.
type Instruction struct {
	Kind InstructionKind

	// Shared by most binding kinds.
	To     string        // resolved property/attribute name
	From   BindingSource // value-producing source
	Mode   BindingMode
	Raw    string // authored attribute name, for diagnostics/provenance

	// InstrListenerBinding
	ListenerCapture bool

	// InstrRefBinding
	RefTargetKind string // "element" | "controller" | "view-model" | "custom-element" | custom attribute name

	// InstrIteratorBinding (repeat.for)
	Iterator *IteratorIR

	// InstrSetAttribute / InstrSetClassAttribute / InstrSetStyleAttribute / InstrSetProperty
	StaticValue string

	// InstrTranslationBind
	TranslationKey BindingSource

	// InstrHydrateElement / InstrHydrateAttribute / InstrHydrateController / InstrHydrateLet
	Res        string // resource name (custom element / attribute / controller)
	ElementProps   []Instruction // property-context-restricted children
	AttrProps      []Instruction // attribute-context-restricted children
	ControllerProps []Instruction // controller-context-restricted children
	ContainerlessHint bool
	Def        *HydrateDef // the resolved resource's def-derived hydration metadata

	// InstrHydrateLet
	ToBindingContext bool
}

// HydrateDef carries the small slice of a ResourceDef's facts the plan
// stage needs without re-querying the catalog: the resource's kind/name
// and (for template controllers) which nested template index it owns.
type HydrateDef struct {
	Kind              string
	Name              string
	NestedTemplateIdx int // -1 when not a template controller
}

// IteratorIR describes a `repeat.for="decl of iterable"` binding source.
type IteratorIR struct {
	Declaration DestructurePattern
	Iterable    BindingSource
}

// DestructurePatternKind discriminates IteratorIR.Declaration.
type DestructurePatternKind string

const (
	PatternIdentifier DestructurePatternKind = "identifier"
	PatternArray      DestructurePatternKind = "array"
	PatternObject     DestructurePatternKind = "object"
)

// DestructurePattern is the tagged union for `repeat.for` declarations,
// including destructuring: `for="[k, v] of map"`, `for="{id, name} of xs"`.
type DestructurePattern struct {
	Kind     DestructurePatternKind
	Name     string               // PatternIdentifier
	Elements []DestructurePattern // PatternArray
	Fields   []ObjectPatternField // PatternObject
}

// ObjectPatternField is one `key: alias` (or bare `key`) entry of an
// object destructure pattern.
type ObjectPatternField struct {
	Key   string
	Alias string // equals Key when no alias authored
}

// InstructionRow is one targeted-node's worth of instructions: all the
// bindings/hydrations that apply to a single node, assigned deterministic
// target order by the plan stage.
type InstructionRow struct {
	Target       ids.NodeID
	Instructions []Instruction
}
