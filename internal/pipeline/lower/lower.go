// Package lower implements the first template-compilation stage: markup
// source to IR (spec.md §4.G.1). It walks a hostiface.MarkupParser's DOM
// tree into ir.DOMNode/ir.TemplateIR, strips and preserves template-meta
// elements on the root template, classifies every attribute into a
// binding instruction, and wraps template-controller hosts in synthetic
// nested templates. Lowering is total: a malformed expression never
// aborts the pass, it becomes a recorded diagnostic and a recoverable
// placeholder, and an unknown binding command is lowered as a plain
// property binding that the link stage reports, so every later stage
// always has a complete IrModule to work from.
package lower

import (
	"sort"
	"strings"

	"github.com/aurelia-tools/aurelia-ls/internal/hostiface"
	"github.com/aurelia-tools/aurelia-ls/internal/ids"
	"github.com/aurelia-tools/aurelia-ls/internal/ir"
	"github.com/aurelia-tools/aurelia-ls/internal/semantics"
	"github.com/aurelia-tools/aurelia-ls/internal/span"
)

// metaTags are the template-meta element names recognized at the root
// template and stripped from the DOM tree in favor of TemplateMetaIR.
var metaTags = map[string]ir.TemplateMetaKind{
	"import":         ir.MetaImport,
	"require":        ir.MetaRequire,
	"bindable":       ir.MetaBindable,
	"use-shadow-dom": ir.MetaUseShadowDOM,
	"containerless":  ir.MetaContainerless,
	"capture":        ir.MetaCapture,
	"alias":          ir.MetaAlias,
	"slot":           ir.MetaSlot,
}

type lowerer struct {
	file      ids.SourceFileID
	syntax    *semantics.TemplateSyntaxRegistry
	catalog   *semantics.ResourceCatalog
	ep        hostiface.ExpressionParser
	exprs     ir.ExprTable
	templates []ir.TemplateIR
	diags     []ir.Diagnostic
	meta      ir.TemplateMetaIR
}

// templateBuilder lowers the content of exactly one TemplateIR; NodeIDs
// are assigned from its own counter starting at 0, per template.
type templateBuilder struct {
	l        *lowerer
	tplIdx   int
	nextNode ids.NodeID
	rows     map[ids.NodeID][]ir.Instruction
}

// Lower parses source with mp and lowers it into an IrModule against the
// given resource catalog and template-syntax registry.
func Lower(file ids.SourceFileID, source string, mp hostiface.MarkupParser, ep hostiface.ExpressionParser, catalog *semantics.ResourceCatalog, syntax *semantics.TemplateSyntaxRegistry) (*ir.IrModule, error) {
	root, err := mp.Parse(source)
	if err != nil {
		return nil, err
	}

	l := &lowerer{file: file, syntax: syntax, catalog: catalog, ep: ep}

	rootIdx := len(l.templates)
	l.templates = append(l.templates, ir.TemplateIR{ID: ids.TemplateID(rootIdx)})
	tb := &templateBuilder{l: l, tplIdx: rootIdx}

	domRoot := &ir.DOMNode{ID: tb.newNodeID(), Kind: ir.NodeFragmentRoot}
	tb.lowerChildrenInto(domRoot, root.Children)
	tb.finalize()

	l.templates[rootIdx].Root = domRoot
	metaCopy := l.meta
	l.templates[rootIdx].Meta = &metaCopy

	l.linkElseAcrossModule()

	return &ir.IrModule{File: file, Templates: l.templates, Exprs: l.exprs, Diagnostics: l.diags}, nil
}

func toSpan(file ids.SourceFileID, p hostiface.AttrPos) span.Span {
	return span.Span{File: file, Start: p.Start, End: p.End}
}

func (tb *templateBuilder) newNodeID() ids.NodeID {
	id := tb.nextNode
	tb.nextNode++
	return id
}

func (tb *templateBuilder) addInstruction(id ids.NodeID, instr ir.Instruction) {
	if tb.rows == nil {
		tb.rows = map[ids.NodeID][]ir.Instruction{}
	}
	tb.rows[id] = append(tb.rows[id], instr)
}

func (tb *templateBuilder) takeInstructions(id ids.NodeID) []ir.Instruction {
	out := tb.rows[id]
	delete(tb.rows, id)
	return out
}

// finalize sorts tb's accumulated per-node instructions into its owning
// TemplateIR.Rows by ascending NodeID (spec.md §9 "Deterministic output").
func (tb *templateBuilder) finalize() {
	if len(tb.rows) == 0 {
		return
	}
	nodeIDs := make([]ids.NodeID, 0, len(tb.rows))
	for id := range tb.rows {
		nodeIDs = append(nodeIDs, id)
	}
	sort.Slice(nodeIDs, func(i, j int) bool { return nodeIDs[i] < nodeIDs[j] })
	rows := make([]ir.InstructionRow, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		rows = append(rows, ir.InstructionRow{Target: id, Instructions: tb.rows[id]})
	}
	tb.l.templates[tb.tplIdx].Rows = rows
}

func (tb *templateBuilder) lowerChildrenInto(node *ir.DOMNode, children []*hostiface.ParsedNode) {
	for _, c := range children {
		if child := tb.lowerAny(c); child != nil {
			node.Children = append(node.Children, child)
		}
	}
}

func (tb *templateBuilder) lowerAny(pn *hostiface.ParsedNode) *ir.DOMNode {
	switch {
	case pn.IsComment:
		return &ir.DOMNode{ID: tb.newNodeID(), Kind: ir.NodeComment, Text: pn.Text, TagSpan: toSpan(tb.l.file, pn.TagSpan)}
	case pn.IsText:
		return tb.lowerText(pn)
	default:
		if tb.tplIdx == 0 {
			if kind, ok := metaTags[strings.ToLower(pn.Tag)]; ok {
				tb.l.extractMeta(pn, kind)
				return nil
			}
		}
		return tb.lowerElement(pn)
	}
}

func (tb *templateBuilder) lowerText(pn *hostiface.ParsedNode) *ir.DOMNode {
	id := tb.newNodeID()
	node := &ir.DOMNode{ID: id, Kind: ir.NodeText, Text: pn.Text, TagSpan: toSpan(tb.l.file, pn.TagSpan)}
	if interp, ok := tb.parseInterpolationText(pn.Text, pn.TagSpan.Start); ok {
		src := ir.NewInterpSource(interp)
		node.TextSource = &src
		tb.addInstruction(id, ir.Instruction{Kind: ir.InstrTextBinding, To: "textContent", Mode: ir.ModeToView, From: src})
	}
	return node
}

func (l *lowerer) extractMeta(pn *hostiface.ParsedNode, kind ir.TemplateMetaKind) {
	entry := ir.TemplateMetaEntry{Kind: kind, Span: toSpan(l.file, pn.TagSpan)}
	attr := func(name string) (string, hostiface.AttrPos, bool) {
		for _, a := range pn.Attrs {
			if strings.EqualFold(a.Name, name) {
				return a.Value, a.ValueSpan, true
			}
		}
		return "", hostiface.AttrPos{}, false
	}
	switch kind {
	case ir.MetaImport, ir.MetaRequire:
		if v, sp, ok := attr("from"); ok {
			entry.From = v
			entry.FromSpan = toSpan(l.file, sp)
		}
		if v, _, ok := attr("as"); ok {
			entry.As = v
		}
	case ir.MetaBindable:
		if v, _, ok := attr("name"); ok {
			entry.BindableName = v
		}
		if v, _, ok := attr("attribute"); ok {
			entry.BindableAttribute = v
		}
		if v, _, ok := attr("mode"); ok {
			entry.BindableMode = v
		}
	case ir.MetaAlias:
		if v, _, ok := attr("name"); ok {
			entry.AliasName = v
		}
	}
	l.meta.Entries = append(l.meta.Entries, entry)
	switch kind {
	case ir.MetaUseShadowDOM:
		l.meta.UsesShadowDOM = true
	case ir.MetaContainerless:
		l.meta.IsContainerless = true
	case ir.MetaCapture:
		l.meta.Capture = true
	case ir.MetaSlot:
		l.meta.HasSlot = true
	}
}

// lowerElement builds an element's DOMNode, or wraps it in one synthetic
// nested TemplateIR per template-controller attribute found on it.
func (tb *templateBuilder) lowerElement(pn *hostiface.ParsedNode) *ir.DOMNode {
	if strings.EqualFold(pn.Tag, "let") {
		return tb.lowerLetElement(pn)
	}
	controllerAttrs, plainAttrs := splitControllerAttrs(tb.l.catalog, pn.Attrs)
	if len(controllerAttrs) == 0 {
		node := tb.newElementNode(pn, pn.Attrs)
		tb.lowerChildrenInto(node, pn.Children)
		return node
	}
	return tb.wrapControllers(pn, controllerAttrs, plainAttrs)
}

// lowerLetElement handles `<let>`, Aurelia's scope-local-variable element:
// it never template-controls and is never resource-hydrated, so it is
// special-cased ahead of the controller/custom-element paths (spec.md
// §4.G.3 treats its declared locals as `let` symbols of the enclosing
// frame, not as a new overlay).
func (tb *templateBuilder) lowerLetElement(pn *hostiface.ParsedNode) *ir.DOMNode {
	node := &ir.DOMNode{
		ID:            tb.newNodeID(),
		Kind:          ir.NodeElement,
		Tag:           pn.Tag,
		TagSpan:       toSpan(tb.l.file, pn.TagSpan),
		CloseTagSpan:  toSpan(tb.l.file, pn.CloseTagSpan),
		EndOfOpenSpan: toSpan(tb.l.file, pn.EndOfOpenSpan),
	}
	var locals []ir.Instruction
	toBindingContext := false
	for _, a := range pn.Attrs {
		node.Attrs = append(node.Attrs, ir.AttrSpan{
			Name: a.Name, NameSpan: toSpan(tb.l.file, a.NameSpan), ValueSpan: toSpan(tb.l.file, a.ValueSpan),
		})
		if a.Name == "to-binding-context" || a.Name == "to-view-model" {
			toBindingContext = true
			continue
		}
		target := a.Name
		if dot := strings.IndexByte(a.Name, '.'); dot >= 0 {
			target = a.Name[:dot]
		}
		locals = append(locals, ir.Instruction{
			Kind: ir.InstrLetBinding, To: semantics.CamelCase(target), Raw: a.Name,
			Mode: ir.ModeToView, From: tb.parseExprSource(a.Value, a.ValueSpan),
		})
	}
	tb.addInstruction(node.ID, ir.Instruction{
		Kind: ir.InstrHydrateLet, Res: "let", ToBindingContext: toBindingContext, ElementProps: locals,
	})
	return node
}

func splitControllerAttrs(catalog *semantics.ResourceCatalog, attrs []hostiface.ParsedAttr) (controllerAttrs, plainAttrs []hostiface.ParsedAttr) {
	for _, a := range attrs {
		target := controllerTarget(a.Name)
		if _, ok := catalog.Lookup(semantics.KindTemplateController, target); ok {
			controllerAttrs = append(controllerAttrs, a)
			continue
		}
		plainAttrs = append(plainAttrs, a)
	}
	return controllerAttrs, plainAttrs
}

func controllerTarget(name string) string {
	if dot := strings.IndexByte(name, '.'); dot >= 0 {
		return name[:dot]
	}
	return name
}

// wrapControllers builds one nested TemplateIR per remaining entry of
// controllerAttrs, leftmost attribute outermost: the first attribute's
// marker lives in tb's own template and its nested template holds
// everything the rest of the chain wraps, recursively.
func (tb *templateBuilder) wrapControllers(pn *hostiface.ParsedNode, controllerAttrs []hostiface.ParsedAttr, plainAttrs []hostiface.ParsedAttr) *ir.DOMNode {
	first := controllerAttrs[0]
	rest := controllerAttrs[1:]
	target := controllerTarget(first.Name)

	markerID := tb.newNodeID()
	marker := &ir.DOMNode{ID: markerID, Kind: ir.NodeComment, Text: "au-controller:" + target}

	nestedIdx := len(tb.l.templates)
	tb.l.templates = append(tb.l.templates, ir.TemplateIR{ID: ids.TemplateID(nestedIdx)})
	nestedBuilder := &templateBuilder{l: tb.l, tplIdx: nestedIdx}

	var innerRoot *ir.DOMNode
	if len(rest) > 0 {
		innerRoot = nestedBuilder.wrapControllers(pn, rest, plainAttrs)
	} else {
		innerRoot = nestedBuilder.newElementNode(pn, plainAttrs)
		nestedBuilder.lowerChildrenInto(innerRoot, pn.Children)
	}
	nestedBuilder.finalize()

	tb.l.templates[nestedIdx].Root = innerRoot
	tb.l.templates[nestedIdx].Origin = &ir.TemplateOrigin{
		ParentTemplate: ids.TemplateID(tb.tplIdx),
		HostNode:       markerID,
		ControllerName: target,
	}

	tb.addInstruction(markerID, tb.buildControllerInstruction(first, target, nestedIdx))
	return marker
}

func (tb *templateBuilder) buildControllerInstruction(attr hostiface.ParsedAttr, target string, nestedIdx int) ir.Instruction {
	instr := ir.Instruction{
		Kind: ir.InstrHydrateController,
		Res:  target,
		Raw:  attr.Name,
		Def:  &ir.HydrateDef{Kind: string(semantics.KindTemplateController), Name: target, NestedTemplateIdx: nestedIdx},
	}
	if target == "repeat" {
		iter := tb.parseIterator(attr.Value, attr.ValueSpan)
		instr.Iterator = &iter
		return instr
	}
	if attr.Value != "" {
		instr.From = tb.parseExprSource(attr.Value, attr.ValueSpan)
	}
	return instr
}

func (tb *templateBuilder) newElementNode(pn *hostiface.ParsedNode, attrs []hostiface.ParsedAttr) *ir.DOMNode {
	node := &ir.DOMNode{
		ID:            tb.newNodeID(),
		Kind:          ir.NodeElement,
		Tag:           pn.Tag,
		TagSpan:       toSpan(tb.l.file, pn.TagSpan),
		CloseTagSpan:  toSpan(tb.l.file, pn.CloseTagSpan),
		EndOfOpenSpan: toSpan(tb.l.file, pn.EndOfOpenSpan),
	}
	for _, a := range attrs {
		node.Attrs = append(node.Attrs, ir.AttrSpan{
			Name:      a.Name,
			NameSpan:  toSpan(tb.l.file, a.NameSpan),
			ValueSpan: toSpan(tb.l.file, a.ValueSpan),
		})
		tb.addInstruction(node.ID, tb.classifyAttr(a))
	}
	tb.maybeHydrateResource(node)
	return node
}

// maybeHydrateResource wraps an element's already-classified attribute
// instructions into a hydrateElement instruction when the tag names a
// known custom element, so plan can emit a single hydration per resource.
func (tb *templateBuilder) maybeHydrateResource(node *ir.DOMNode) {
	def, ok := tb.l.catalog.Lookup(semantics.KindCustomElement, strings.ToLower(node.Tag))
	if !ok {
		return
	}
	existing := tb.takeInstructions(node.ID)
	tb.addInstruction(node.ID, ir.Instruction{
		Kind:              ir.InstrHydrateElement,
		Res:               def.Name.Value,
		Def:               &ir.HydrateDef{Kind: string(def.Kind), Name: def.Name.Value, NestedTemplateIdx: -1},
		ElementProps:      existing,
		ContainerlessHint: def.Containerless.Value,
	})
}

// classifyAttr is the lower stage's coarse attribute classification
// (spec.md §4.G.1): static, interpolation, binding command, or shorthand
// pattern. The link stage (§4.G.2) resolves effective binding mode,
// normalizes To against the naming tables, and raises unknown-* findings;
// lower only records what was authored.
func (tb *templateBuilder) classifyAttr(attr hostiface.ParsedAttr) ir.Instruction {
	l := tb.l
	name := attr.Name
	target := name
	command := ""

	switch {
	case name == "ref":
		target, command = "element", "ref"
	default:
		if dot := strings.IndexByte(name, '.'); dot >= 0 {
			target, command = name[:dot], name[dot+1:]
		} else {
			for _, pat := range l.syntax.Patterns {
				if strings.HasPrefix(name, pat.Prefix) {
					target, command = name[len(pat.Prefix):], pat.EquivalentCommand
					break
				}
			}
		}
	}

	if command != "" {
		if cmd, ok := l.syntax.Commands[command]; ok {
			return tb.buildCommandInstruction(attr, target, cmd)
		}
		return ir.Instruction{Kind: ir.InstrPropertyBinding, To: target, Raw: name, Mode: ir.ModeDefault, From: tb.parseExprSource(attr.Value, attr.ValueSpan)}
	}

	if interp, ok := tb.parseInterpolationAttr(attr); ok {
		return ir.Instruction{Kind: ir.InstrAttributeBinding, To: target, Raw: name, Mode: ir.ModeToView, From: ir.NewInterpSource(interp)}
	}

	return ir.Instruction{Kind: ir.InstrSetAttribute, To: target, Raw: name, StaticValue: attr.Value}
}

func (tb *templateBuilder) buildCommandInstruction(attr hostiface.ParsedAttr, target string, cmd semantics.BindingCommandDef) ir.Instruction {
	switch {
	case cmd.IsListener:
		from := tb.parseExprSource(attr.Value, attr.ValueSpan)
		return ir.Instruction{Kind: ir.InstrListenerBinding, To: target, Raw: attr.Name, From: from, ListenerCapture: cmd.Name == "capture"}
	case cmd.IsRef:
		from := tb.parseExprSource(attr.Value, attr.ValueSpan)
		return ir.Instruction{Kind: ir.InstrRefBinding, To: target, Raw: attr.Name, RefTargetKind: target, From: from}
	case cmd.IsIterator:
		iter := tb.parseIterator(attr.Value, attr.ValueSpan)
		return ir.Instruction{Kind: ir.InstrIteratorBinding, To: target, Raw: attr.Name, Iterator: &iter}
	case cmd.IsTranslation:
		from := tb.parseExprSource(attr.Value, attr.ValueSpan)
		return ir.Instruction{Kind: ir.InstrTranslationBind, To: target, Raw: attr.Name, Mode: ir.BindingMode(cmd.Mode), TranslationKey: from}
	default:
		from := tb.parseExprSource(attr.Value, attr.ValueSpan)
		return ir.Instruction{Kind: ir.InstrPropertyBinding, To: target, Raw: attr.Name, Mode: ir.BindingMode(cmd.Mode), From: from}
	}
}

func (tb *templateBuilder) parseExprSource(val string, pos hostiface.AttrPos) ir.BindingSource {
	ref := tb.buildExprRef(val, toSpan(tb.l.file, pos))
	return ir.NewExprSource(ref)
}

func (tb *templateBuilder) buildExprRef(text string, sp span.Span) ir.ExprRef {
	parsed, err := tb.l.ep.Parse(text)
	ast := ir.ExprAST{Text: text, Span: sp}
	if err != nil || !parsed.OK {
		msg := parsed.BadMsg
		if err != nil {
			msg = err.Error()
		}
		ast.Kind = ir.ExprNodeBad
		ast.BadMsg = msg
		tb.l.diags = append(tb.l.diags, ir.Diagnostic{
			Code: "aurelia/expr-parse-error", Severity: "warning", Span: sp, Message: msg, Recovery: true,
		})
	} else {
		ast.Kind = ir.ExprNodeValid
		ast.Node = parsed.Node
		ast.Pipes = convertPipes(sp.File, parsed.Pipes, sp.Start)
		ast.Behavior = convertBehaviors(sp.File, parsed.Behaviors, sp.Start)
	}
	id := tb.l.exprs.Add(ast)
	return ir.ExprRef{ID: id, Text: text, Span: sp}
}

func convertPipes(file ids.SourceFileID, pipes []hostiface.PipeUse, base int) []ir.PipeUse {
	out := make([]ir.PipeUse, 0, len(pipes))
	for _, p := range pipes {
		out = append(out, ir.PipeUse{Name: p.Name, Args: p.Args, Span: span.Span{File: file, Start: base + p.Start, End: base + p.End}})
	}
	return out
}

func convertBehaviors(file ids.SourceFileID, behaviors []hostiface.BehaviorUse, base int) []ir.BehaviorUse {
	out := make([]ir.BehaviorUse, 0, len(behaviors))
	for _, b := range behaviors {
		out = append(out, ir.BehaviorUse{Name: b.Name, Args: b.Args, Span: span.Span{File: file, Start: base + b.Start, End: base + b.End}})
	}
	return out
}

// parseInterpolationAttr / parseInterpolationText split on the syntax
// registry's "${"/"}" delimiters. Interpolations nested inside an
// interpolation are not a real authoring pattern; an unterminated "${" is
// treated as running to the end of the text and surfaces as a bad
// expression rather than panicking.
func (tb *templateBuilder) parseInterpolationAttr(attr hostiface.ParsedAttr) (ir.InterpIR, bool) {
	return tb.parseInterpolationText(attr.Value, attr.ValueSpan.Start)
}

func (tb *templateBuilder) parseInterpolationText(text string, baseOffset int) (ir.InterpIR, bool) {
	start, end := tb.l.syntax.InterpolationStart, tb.l.syntax.InterpolationEnd
	if !strings.Contains(text, start) {
		return ir.InterpIR{}, false
	}

	var parts []string
	var exprs []ir.ExprRef
	i := 0
	for {
		idx := strings.Index(text[i:], start)
		if idx < 0 {
			parts = append(parts, text[i:])
			break
		}
		idx += i
		parts = append(parts, text[i:idx])

		exprStart := idx + len(start)
		endIdx := strings.Index(text[exprStart:], end)
		exprEnd := len(text)
		if endIdx >= 0 {
			exprEnd = exprStart + endIdx
		}

		exprText := text[exprStart:exprEnd]
		sp := span.Span{File: tb.l.file, Start: baseOffset + exprStart, End: baseOffset + exprEnd}
		exprs = append(exprs, tb.buildExprRef(exprText, sp))

		if endIdx < 0 {
			parts = append(parts, "")
			break
		}
		i = exprEnd + len(end)
		if i > len(text) {
			i = len(text)
		}
	}
	return ir.InterpIR{Parts: parts, Exprs: exprs}, true
}

// parseIterator splits `repeat.for="decl of iterable"` into a destructure
// pattern and the iterable's binding source.
func (tb *templateBuilder) parseIterator(val string, pos hostiface.AttrPos) ir.IteratorIR {
	idx := topLevelIndexOfOf(val)
	declStr, iterStr, iterOffset := val, "", pos.Start
	if idx >= 0 {
		declStr = val[:idx]
		iterStr = val[idx+4:]
		iterOffset = pos.Start + idx + 4
	}
	decl := parseDestructure(strings.TrimSpace(declStr))
	iterable := tb.parseExprSource(strings.TrimSpace(iterStr), hostiface.AttrPos{Start: iterOffset, End: pos.End})
	return ir.IteratorIR{Declaration: decl, Iterable: iterable}
}

func topLevelIndexOfOf(s string) int {
	depth := 0
	for i := 0; i+4 <= len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		}
		if depth == 0 && s[i:i+4] == " of " {
			return i
		}
	}
	return -1
}

func parseDestructure(s string) ir.DestructurePattern {
	switch {
	case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"):
		var elems []ir.DestructurePattern
		for _, part := range splitTopLevelCommas(s[1 : len(s)-1]) {
			elems = append(elems, ir.DestructurePattern{Kind: ir.PatternIdentifier, Name: strings.TrimSpace(part)})
		}
		return ir.DestructurePattern{Kind: ir.PatternArray, Elements: elems}
	case strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}"):
		var fields []ir.ObjectPatternField
		for _, part := range splitTopLevelCommas(s[1 : len(s)-1]) {
			part = strings.TrimSpace(part)
			if colon := strings.IndexByte(part, ':'); colon >= 0 {
				fields = append(fields, ir.ObjectPatternField{Key: strings.TrimSpace(part[:colon]), Alias: strings.TrimSpace(part[colon+1:])})
			} else {
				fields = append(fields, ir.ObjectPatternField{Key: part, Alias: part})
			}
		}
		return ir.DestructurePattern{Kind: ir.PatternObject, Fields: fields}
	default:
		return ir.DestructurePattern{Kind: ir.PatternIdentifier, Name: s}
	}
}

func splitTopLevelCommas(s string) []string {
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}

// linkElseAcrossModule is the lower stage's else-to-if post-pass: rather
// than threading an explicit link through the flat Instruction union, it
// relies on the DOM tree's own sibling order (an else marker's preceding
// sibling) and only raises a diagnostic when that adjacency is violated.
func (l *lowerer) linkElseAcrossModule() {
	for i := range l.templates {
		l.checkElseSiblings(l.templates[i].Root)
	}
}

func (l *lowerer) checkElseSiblings(node *ir.DOMNode) {
	if node == nil {
		return
	}
	for i, child := range node.Children {
		if isControllerMarker(child, "else") {
			if i == 0 || !isControllerMarker(node.Children[i-1], "if") {
				l.diags = append(l.diags, ir.Diagnostic{
					Code:     "aurelia/else-without-if",
					Severity: "error",
					Span:     child.TagSpan,
					Message:  "an `else` template controller must immediately follow an `if`",
				})
			}
		}
		l.checkElseSiblings(child)
	}
}

func isControllerMarker(n *ir.DOMNode, name string) bool {
	return n.Kind == ir.NodeComment && n.Text == "au-controller:"+name
}
