package semantics

// DOMSchema describes the host DOM's native elements: which properties
// exist on a tag and any per-tag attribute-name-to-property overrides.
// Grounded on the teacher's static-tag-fact tables in
// pkg/chart/v2/lint/rules/deprecations.go, generalized from
// "deprecated API versions" to "native element properties".
type DOMSchema struct {
	// TagProps maps tag name -> set of native property names it exposes
	// beyond the global element properties.
	TagProps map[string]map[string]bool
	// GlobalProps are native properties every element exposes
	// (id, className, style, title, hidden, ...).
	GlobalProps map[string]bool
	// AttrToProp overrides the default camelCase transform for specific
	// (tag, attribute) pairs, e.g. "for" -> "htmlFor" on <label>.
	AttrToProp map[string]map[string]string
	// GlobalAttrToProp overrides apply regardless of tag, e.g.
	// "class" -> "className".
	GlobalAttrToProp map[string]string
}

func builtinDOMSchema() DOMSchema {
	return DOMSchema{
		GlobalProps: setOf(
			"id", "className", "style", "title", "hidden", "lang", "dir",
			"tabIndex", "textContent", "innerHTML", "scrollTop", "scrollLeft",
		),
		TagProps: map[string]map[string]bool{
			"input":    setOf("value", "checked", "disabled", "readOnly", "placeholder", "type", "min", "max", "step", "files"),
			"textarea": setOf("value", "disabled", "readOnly", "placeholder"),
			"select":   setOf("value", "disabled", "multiple"),
			"option":   setOf("value", "selected", "disabled"),
			"button":   setOf("disabled", "type"),
			"a":        setOf("href", "target", "rel"),
			"img":      setOf("src", "alt", "width", "height"),
			"form":     setOf("action", "method", "noValidate"),
			"video":    setOf("src", "currentTime", "volume", "muted", "autoplay", "controls", "loop"),
			"audio":    setOf("src", "currentTime", "volume", "muted", "autoplay", "controls", "loop"),
			"label":    setOf("htmlFor"),
		},
		GlobalAttrToProp: map[string]string{
			"class":    "className",
			"tabindex": "tabIndex",
			"readonly": "readOnly",
			"maxlength": "maxLength",
			"minlength": "minLength",
			"for":      "htmlFor",
		},
		AttrToProp: map[string]map[string]string{
			"label": {"for": "htmlFor"},
		},
	}
}

// ResolveProp returns the native property name that attribute `attr`
// authored on tag `tag` maps to, and whether the (tag, attr) pair is a
// recognized native DOM prop at all (vs. an arbitrary attribute).
func (d DOMSchema) ResolveProp(tag, attr string) (prop string, known bool) {
	if perTag, ok := d.AttrToProp[tag]; ok {
		if p, ok := perTag[attr]; ok {
			return p, true
		}
	}
	if p, ok := d.GlobalAttrToProp[attr]; ok {
		return p, d.hasProp(tag, p)
	}
	return attr, d.hasProp(tag, attr)
}

func (d DOMSchema) hasProp(tag, prop string) bool {
	if d.GlobalProps[prop] {
		return true
	}
	if props, ok := d.TagProps[tag]; ok {
		return props[prop]
	}
	return false
}

func setOf(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}
