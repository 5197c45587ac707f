package semantics

// ConditionalTwoWay describes a two-way default that only applies when a
// static attribute on the same element has a particular value, e.g.
// `<input type="checkbox" checked.bind="...">` defaults `checked` to
// two-way only because `type="checkbox"` is present (spec.md §4.G.2).
type ConditionalTwoWay struct {
	Tag            string
	Prop           string
	ConditionAttr  string
	ConditionValue string
}

// TwoWayDefaults computes the effective binding mode for `.bind`-authored
// (mode "default") bindings, consulted after a bindable's own declared
// default and before the generic toView fallback.
type TwoWayDefaults struct {
	ByTag       map[string]map[string]bool
	GlobalProps map[string]bool
	Conditional []ConditionalTwoWay
}

func builtinTwoWayDefaults() TwoWayDefaults {
	return TwoWayDefaults{
		ByTag: map[string]map[string]bool{
			"input":    setOf("value"),
			"textarea": setOf("value"),
			"select":   setOf("value"),
		},
		GlobalProps: map[string]bool{},
		Conditional: []ConditionalTwoWay{
			{Tag: "input", Prop: "checked", ConditionAttr: "type", ConditionValue: "checkbox"},
			{Tag: "input", Prop: "checked", ConditionAttr: "type", ConditionValue: "radio"},
		},
	}
}

// IsTwoWayByDefault reports whether prop on tag defaults to two-way,
// given the element's statically-authored attributes (for conditional
// rules). staticAttrs maps attribute name -> authored static value.
func (t TwoWayDefaults) IsTwoWayByDefault(tag, prop string, staticAttrs map[string]string) bool {
	for _, c := range t.Conditional {
		if c.Tag == tag && c.Prop == prop {
			if v, ok := staticAttrs[c.ConditionAttr]; ok && v == c.ConditionValue {
				return true
			}
		}
	}
	if byTag, ok := t.ByTag[tag]; ok && byTag[prop] {
		return true
	}
	return t.GlobalProps[prop]
}
