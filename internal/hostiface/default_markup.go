package hostiface

import "strings"

// voidElements never have a matching close tag (spec.md §6's markup
// grammar doesn't enumerate these explicitly, but the lower stage's
// CloseTagSpan handling depends on knowing which tags are void).
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// defaultMarkupParser is a hand-rolled single-pass scanner: the pack
// carries no third-party HTML tokenizer, so this follows the same
// regex-light, index-tracking scanning style internal/discovery's
// recognizers already use for source-text extraction, generalized from
// one-shot regex matches to a full tag/attribute/text walk.
type defaultMarkupParser struct{}

// NewDefaultMarkupParser returns the built-in MarkupParser used when no
// host-specific parser is wired in (tests, the standalone CLI).
func NewDefaultMarkupParser() MarkupParser { return defaultMarkupParser{} }

func (defaultMarkupParser) Parse(source string) (*ParsedNode, error) {
	s := &scanner{src: source}
	root := &ParsedNode{Tag: "", IsText: false}
	s.parseChildren(root, "")
	return root, nil
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

// parseChildren consumes nodes until it sees a close tag matching
// stopTag (empty string means "until EOF", used at the document root).
func (s *scanner) parseChildren(parent *ParsedNode, stopTag string) {
	for !s.eof() {
		if stopTag != "" && s.peekCloseTag(stopTag) {
			return
		}
		if strings.HasPrefix(s.src[s.pos:], "<!--") {
			parent.Children = append(parent.Children, s.parseComment())
			continue
		}
		if s.peekOpenTag() {
			parent.Children = append(parent.Children, s.parseElement())
			continue
		}
		if strings.HasPrefix(s.src[s.pos:], "</") {
			// An unmatched close tag (malformed markup): skip it rather
			// than looping forever: recovery over rejection (spec.md §4.G.1
			// "lowering is total").
			end := strings.IndexByte(s.src[s.pos:], '>')
			if end < 0 {
				s.pos = len(s.src)
				return
			}
			s.pos += end + 1
			continue
		}
		parent.Children = append(parent.Children, s.parseText())
	}
}

func (s *scanner) peekCloseTag(tag string) bool {
	rest := s.src[s.pos:]
	prefix := "</" + tag
	if !strings.HasPrefix(rest, prefix) {
		return false
	}
	after := rest[len(prefix):]
	return strings.HasPrefix(strings.TrimLeft(after, " \t\r\n"), ">")
}

func (s *scanner) peekOpenTag() bool {
	if s.pos >= len(s.src) || s.src[s.pos] != '<' {
		return false
	}
	if s.pos+1 >= len(s.src) {
		return false
	}
	c := s.src[s.pos+1]
	return c == '_' || c == ':' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func (s *scanner) parseComment() *ParsedNode {
	start := s.pos
	end := strings.Index(s.src[s.pos:], "-->")
	if end < 0 {
		text := s.src[s.pos:]
		s.pos = len(s.src)
		return &ParsedNode{IsComment: true, Text: text, TagSpan: AttrPos{start, len(s.src)}}
	}
	contentStart := s.pos + 4
	contentEnd := s.pos + end
	s.pos = s.pos + end + 3
	return &ParsedNode{IsComment: true, Text: s.src[contentStart:contentEnd], TagSpan: AttrPos{start, s.pos}}
}

func (s *scanner) parseText() *ParsedNode {
	start := s.pos
	for !s.eof() && s.src[s.pos] != '<' {
		s.pos++
	}
	return &ParsedNode{IsText: true, Text: s.src[start:s.pos], TagSpan: AttrPos{start, s.pos}}
}

func (s *scanner) parseElement() *ParsedNode {
	tagStart := s.pos
	s.pos++ // consume '<'
	nameStart := s.pos
	for !s.eof() && !isNameBoundary(s.src[s.pos]) {
		s.pos++
	}
	tag := s.src[nameStart:s.pos]
	node := &ParsedNode{Tag: tag}

	selfClosing := false
	for !s.eof() {
		s.skipSpace()
		if s.eof() {
			break
		}
		if s.src[s.pos] == '/' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '>' {
			selfClosing = true
			s.pos += 2
			break
		}
		if s.src[s.pos] == '>' {
			s.pos++
			break
		}
		node.Attrs = append(node.Attrs, s.parseAttr())
	}
	node.TagSpan = AttrPos{tagStart, s.pos}
	node.EndOfOpenSpan = AttrPos{s.pos - 1, s.pos}

	if selfClosing || voidElements[strings.ToLower(tag)] {
		return node
	}

	s.parseChildren(node, tag)
	closeStart := s.pos
	if s.peekCloseTag(tag) {
		end := strings.IndexByte(s.src[s.pos:], '>')
		s.pos += end + 1
	}
	node.CloseTagSpan = AttrPos{closeStart, s.pos}
	return node
}

func isNameBoundary(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '/' || c == '>'
}

func (s *scanner) skipSpace() {
	for !s.eof() && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t' || s.src[s.pos] == '\n' || s.src[s.pos] == '\r') {
		s.pos++
	}
}

// parseAttr reads one `name` or `name="value"` / `name='value'` pair,
// preserving authored case and exact spans for both sides (spec.md
// §4.G.1 "preserving authored case for attributes").
func (s *scanner) parseAttr() ParsedAttr {
	nameStart := s.pos
	for !s.eof() && s.src[s.pos] != '=' && !isNameBoundary(s.src[s.pos]) {
		s.pos++
	}
	name := s.src[nameStart:s.pos]
	attr := ParsedAttr{Name: name, NameSpan: AttrPos{nameStart, s.pos}}

	s.skipSpace()
	if s.eof() || s.src[s.pos] != '=' {
		return attr
	}
	s.pos++ // consume '='
	s.skipSpace()
	if s.eof() {
		return attr
	}
	quote := s.src[s.pos]
	if quote == '"' || quote == '\'' {
		s.pos++
		valStart := s.pos
		for !s.eof() && s.src[s.pos] != quote {
			s.pos++
		}
		attr.Value = s.src[valStart:s.pos]
		attr.ValueSpan = AttrPos{valStart, s.pos}
		if !s.eof() {
			s.pos++ // consume closing quote
		}
		return attr
	}
	valStart := s.pos
	for !s.eof() && !isNameBoundary(s.src[s.pos]) {
		s.pos++
	}
	attr.Value = s.src[valStart:s.pos]
	attr.ValueSpan = AttrPos{valStart, s.pos}
	return attr
}
