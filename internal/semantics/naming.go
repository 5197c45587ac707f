package semantics

import "strings"

// NamingRules drives the link stage's attribute-name-to-property
// normalization (spec.md §4.G.2): `naming.perTag` beats the element's
// `attrToProp` beats `naming.attrToPropGlobal` beats a generic camelCase
// transform, except that an authored name whose lowercased form starts
// with a preserved prefix (data-, aria-) is never camelCased.
type NamingRules struct {
	PerTag            map[string]map[string]string
	AttrToPropGlobal  map[string]string
	PreservedPrefixes []string
}

func builtinNamingRules() NamingRules {
	return NamingRules{
		PerTag: map[string]map[string]string{},
		AttrToPropGlobal: map[string]string{
			"class": "className",
			"for":   "htmlFor",
		},
		PreservedPrefixes: []string{"data-", "aria-"},
	}
}

// HasPreservedPrefix reports whether attr's lowercase form starts with a
// preserved prefix, meaning it must never be camelCased.
func (n NamingRules) HasPreservedPrefix(attr string) bool {
	lower := strings.ToLower(attr)
	for _, prefix := range n.PreservedPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// Normalize computes the property name an authored attribute maps to for
// a given tag, given the element's own attrToProp overrides (elementAttrToProp,
// may be nil for plain DOM elements/custom attributes with no such table).
func (n NamingRules) Normalize(tag, attr string, elementAttrToProp map[string]string) string {
	if n.HasPreservedPrefix(attr) {
		return attr
	}
	if perTag, ok := n.PerTag[tag]; ok {
		if p, ok := perTag[attr]; ok {
			return p
		}
	}
	if elementAttrToProp != nil {
		if p, ok := elementAttrToProp[attr]; ok {
			return p
		}
	}
	if p, ok := n.AttrToPropGlobal[attr]; ok {
		return p
	}
	return CamelCase(attr)
}

// CamelCase converts a kebab-case authored attribute name to camelCase,
// e.g. "display-data" -> "displayData".
func CamelCase(kebab string) string {
	parts := strings.Split(kebab, "-")
	if len(parts) == 1 {
		return kebab
	}
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// PascalCase converts a kebab-case resource name to a PascalCase class
// name fallback, e.g. "nav-bar" -> "NavBar", used when a ResourceDef has
// no explicit className (spec.md §9 "Resource identity").
func PascalCase(kebab string) string {
	camel := CamelCase(kebab)
	if camel == "" {
		return camel
	}
	return strings.ToUpper(camel[:1]) + camel[1:]
}

// KebabCase converts a camelCase/PascalCase identifier to kebab-case,
// e.g. "displayData" -> "display-data". Used for the inverse normalization
// and for rename's casing-preserving edits (spec.md §4.J).
func KebabCase(camel string) string {
	var b strings.Builder
	for i, r := range camel {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeResourceName applies spec.md §9's resource-identity rule:
// lowercase-kebab, except an explicit string authored in source is kept
// verbatim.
func NormalizeResourceName(name string, explicit bool) string {
	if explicit {
		return name
	}
	return KebabCase(name)
}
