// Package semantics holds the built-in framework knowledge (component C
// of spec.md §2) plus the data shapes the convergence assembler (E)
// produces from it: MaterializedSemantics, ResourceCatalog, and
// TemplateSyntaxRegistry (spec.md §3 "Semantics").
package semantics

import "sort"

// Collections is the five resource maps every scope of the resource
// graph can contribute an overlay of. Keyed by normalized resource name
// (not by the "<kind>:<name>" catalog key, since within one collection
// the kind is already fixed).
type Collections struct {
	Elements         map[string]ResourceDef
	Attributes       map[string]ResourceDef
	Controllers      map[string]ResourceDef
	ValueConverters  map[string]ResourceDef
	BindingBehaviors map[string]ResourceDef
}

func NewCollections() Collections {
	return Collections{
		Elements:         map[string]ResourceDef{},
		Attributes:       map[string]ResourceDef{},
		Controllers:      map[string]ResourceDef{},
		ValueConverters:  map[string]ResourceDef{},
		BindingBehaviors: map[string]ResourceDef{},
	}
}

// Put inserts def into the collection matching its Kind.
func (c *Collections) Put(def ResourceDef) {
	switch def.Kind {
	case KindCustomElement:
		c.Elements[def.Name.Value] = def
	case KindCustomAttribute:
		c.Attributes[def.Name.Value] = def
	case KindTemplateController:
		c.Controllers[def.Name.Value] = def
	case KindValueConverter:
		c.ValueConverters[def.Name.Value] = def
	case KindBindingBehavior:
		c.BindingBehaviors[def.Name.Value] = def
	}
}

// Get looks up a resource by kind and normalized name.
func (c Collections) Get(kind ResourceKind, name string) (ResourceDef, bool) {
	var m map[string]ResourceDef
	switch kind {
	case KindCustomElement:
		m = c.Elements
	case KindCustomAttribute:
		m = c.Attributes
	case KindTemplateController:
		m = c.Controllers
	case KindValueConverter:
		m = c.ValueConverters
	case KindBindingBehavior:
		m = c.BindingBehaviors
	default:
		return ResourceDef{}, false
	}
	def, ok := m[name]
	return def, ok
}

// CloneOverlay returns a deep-enough copy of base with every entry of
// overlay applied on top (by name, per collection) — the core
// "overlay resolution" operation resource graph materialization uses
// (spec.md §4.F).
func CloneOverlay(base, overlay Collections) Collections {
	out := Collections{
		Elements:         cloneMap(base.Elements),
		Attributes:       cloneMap(base.Attributes),
		Controllers:      cloneMap(base.Controllers),
		ValueConverters:  cloneMap(base.ValueConverters),
		BindingBehaviors: cloneMap(base.BindingBehaviors),
	}
	for k, v := range overlay.Elements {
		out.Elements[k] = v
	}
	for k, v := range overlay.Attributes {
		out.Attributes[k] = v
	}
	for k, v := range overlay.Controllers {
		out.Controllers[k] = v
	}
	for k, v := range overlay.ValueConverters {
		out.ValueConverters[k] = v
	}
	for k, v := range overlay.BindingBehaviors {
		out.BindingBehaviors[k] = v
	}
	return out
}

func cloneMap(m map[string]ResourceDef) map[string]ResourceDef {
	out := make(map[string]ResourceDef, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Semantics is the base framework knowledge: built-in resources plus the
// static DOM/naming/event/two-way tables (spec.md §3 "Semantics (base
// framework)").
type Semantics struct {
	Resources Collections
	DOM       DOMSchema
	Naming    NamingRules
	Events    EventSchema
	TwoWay    TwoWayDefaults
}

// Builtin returns the immutable base semantics shipped with the tool:
// built-in template controllers plus the static DOM/naming/event tables.
// Immutable after construction (spec.md §9 "Global state").
func Builtin() *Semantics {
	resources := NewCollections()
	for _, c := range builtinControllers() {
		resources.Put(c)
	}
	for _, e := range builtinCustomElements() {
		resources.Put(e)
	}
	for _, a := range builtinCustomAttributes() {
		resources.Put(a)
	}
	for _, vc := range builtinValueConverters() {
		resources.Put(vc)
	}
	for _, bb := range builtinBindingBehaviors() {
		resources.Put(bb)
	}
	return &Semantics{
		Resources: resources,
		DOM:       builtinDOMSchema(),
		Naming:    builtinNamingRules(),
		Events:    builtinEventSchema(),
		TwoWay:    builtinTwoWayDefaults(),
	}
}

// MaterializedSemantics is the convergence assembler's output: the
// folded, authoritative resource collections assembled onto the base
// semantics (spec.md §4.E.4).
type MaterializedSemantics struct {
	Base      *Semantics
	Resources Collections
}

// ResourceCatalog is the convergence assembler's derived index: every
// materialized resource keyed by "<kind>:<name>", plus the per-resource
// gap list used for confidence rollup and diagnostics (spec.md §3
// "ResourceCatalog").
type ResourceCatalog struct {
	byKey map[string]ResourceDef
	gaps  map[string][]Gap
}

func NewResourceCatalog() *ResourceCatalog {
	return &ResourceCatalog{byKey: map[string]ResourceDef{}, gaps: map[string][]Gap{}}
}

func (c *ResourceCatalog) Put(def ResourceDef) { c.byKey[def.Key()] = def }

func (c *ResourceCatalog) AddGap(key string, g Gap) { c.gaps[key] = append(c.gaps[key], g) }

func (c *ResourceCatalog) Lookup(kind ResourceKind, name string) (ResourceDef, bool) {
	def, ok := c.byKey[string(kind)+":"+name]
	return def, ok
}

func (c *ResourceCatalog) LookupKey(key string) (ResourceDef, bool) {
	def, ok := c.byKey[key]
	return def, ok
}

func (c *ResourceCatalog) Gaps(key string) []Gap { return c.gaps[key] }

// AllGaps returns every gap recorded in the catalog, across all
// resources, in deterministic (key, index) order — the input to the
// diag package's gap-conservation check (spec.md §8 invariant 5).
func (c *ResourceCatalog) AllGaps() []Gap {
	keys := make([]string, 0, len(c.gaps))
	for k := range c.gaps {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []Gap
	for _, k := range keys {
		out = append(out, c.gaps[k]...)
	}
	return out
}

// Confidence computes the catalog-wide confidence rollup: conservative
// if any resource has a conservative gap, else partial, else exact
// (spec.md §4.E "Catalog confidence rollup").
func (c *ResourceCatalog) Confidence() Confidence {
	return RollupConfidence(c.AllGaps())
}

// ResourceConfidence computes the rollup for a single resource key.
func (c *ResourceCatalog) ResourceConfidence(key string) Confidence {
	return RollupConfidence(c.gaps[key])
}

// Keys returns every catalog key in sorted order, for deterministic
// iteration (spec.md §9 "Deterministic output").
func (c *ResourceCatalog) Keys() []string {
	keys := make([]string, 0, len(c.byKey))
	for k := range c.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TemplateSyntaxRegistry is the convergence assembler's output covering
// binding commands, attribute patterns, and interpolation delimiters
// (spec.md §3 "TemplateSyntaxRegistry").
type TemplateSyntaxRegistry struct {
	Commands             map[string]BindingCommandDef
	Patterns             []AttributePatternDef
	InterpolationStart   string
	InterpolationEnd     string
}

func BuiltinTemplateSyntax() *TemplateSyntaxRegistry {
	commands := make(map[string]BindingCommandDef)
	for _, c := range builtinBindingCommands() {
		commands[c.Name] = c
	}
	return &TemplateSyntaxRegistry{
		Commands:           commands,
		Patterns:           builtinAttributePatterns(),
		InterpolationStart: "${",
		InterpolationEnd:   "}",
	}
}
