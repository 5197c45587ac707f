package query

import (
	"sort"
	"strings"

	"github.com/aurelia-tools/aurelia-ls/internal/semantics"
)

// PositionKind discriminates the five authoring positions spec.md §4.J
// lists completions for.
type PositionKind string

const (
	PositionTagName       PositionKind = "tagName"
	PositionAttributeName PositionKind = "attributeName"
	PositionCommand       PositionKind = "command" // after "attr." before the command name
	PositionConverter     PositionKind = "converter"
	PositionBehavior      PositionKind = "behavior"
)

// CompletionContext is the caller-resolved authoring position; the
// caller (the workspace engine's document model) is responsible for
// classifying the cursor into one of these, since that classification
// needs the markup parser's tokenizer state, not the compiled IR this
// package otherwise works from.
type CompletionContext struct {
	Kind PositionKind
	// Element is the host element's tag, required for
	// PositionAttributeName/PositionCommand to scope bindable/command
	// suggestions to what that element actually accepts.
	Element string
}

// CompletionItem is one suggested completion.
type CompletionItem struct {
	Label      string
	Kind       string // "element" | "attribute" | "controller" | "command" | "converter" | "behavior" | "native-element" | "native-attribute"
	Confidence string // exact | high | partial | low, per spec.md §4.J
	Detail     string
}

// Completions lists suggestions for ctx. Confidence comes from
// semantics.ItemConfidence over the catalog's per-resource gap rollup
// for catalog-sourced items; framework-defined (native, command) items
// always report "exact" since they carry no gap set of their own.
func (e *Engine) Completions(ctx CompletionContext) []CompletionItem {
	switch ctx.Kind {
	case PositionTagName:
		return e.completeTagName()
	case PositionAttributeName:
		return e.completeAttributeName(ctx.Element)
	case PositionCommand:
		return e.completeCommand()
	case PositionConverter:
		return e.completeByKind(semantics.KindValueConverter, "converter")
	case PositionBehavior:
		return e.completeByKind(semantics.KindBindingBehavior, "behavior")
	default:
		return nil
	}
}

func (e *Engine) completeTagName() []CompletionItem {
	items := e.completeByKind(semantics.KindCustomElement, "element")
	for _, tag := range sortedKeys(e.DOM.TagProps) {
		items = append(items, CompletionItem{Label: tag, Kind: "native-element", Confidence: "exact"})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Label < items[j].Label })
	return items
}

func (e *Engine) completeAttributeName(element string) []CompletionItem {
	var items []CompletionItem
	if def, ok := e.Catalog.Lookup(semantics.KindCustomElement, element); ok {
		for _, b := range def.Bindables {
			items = append(items, CompletionItem{
				Label: b.AttributeName, Kind: "attribute",
				Confidence: semantics.ItemConfidence(e.Catalog.ResourceConfidence(def.Key())),
				Detail:     def.Name.Value + "." + b.PropertyName,
			})
		}
	}
	items = append(items, e.completeByKind(semantics.KindCustomAttribute, "attribute")...)
	items = append(items, e.completeByKind(semantics.KindTemplateController, "controller")...)
	for attr := range e.DOM.GlobalProps {
		items = append(items, CompletionItem{Label: attr, Kind: "native-attribute", Confidence: "exact"})
	}
	for attr := range e.DOM.TagProps[element] {
		items = append(items, CompletionItem{Label: attr, Kind: "native-attribute", Confidence: "exact"})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Label < items[j].Label })
	return items
}

func (e *Engine) completeCommand() []CompletionItem {
	var items []CompletionItem
	for name := range e.Syntax.Commands {
		items = append(items, CompletionItem{Label: name, Kind: "command", Confidence: "exact"})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Label < items[j].Label })
	return items
}

func (e *Engine) completeByKind(kind semantics.ResourceKind, label string) []CompletionItem {
	var items []CompletionItem
	for _, key := range e.Catalog.Keys() {
		if !strings.HasPrefix(key, string(kind)+":") {
			continue
		}
		def, ok := e.Catalog.LookupKey(key)
		if !ok {
			continue
		}
		items = append(items, CompletionItem{
			Label:      def.Name.Value,
			Kind:       label,
			Confidence: semantics.ItemConfidence(e.Catalog.ResourceConfidence(key)),
		})
	}
	return items
}

func sortedKeys(m map[string]map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
