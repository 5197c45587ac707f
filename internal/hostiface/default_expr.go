package hostiface

import "strings"

// defaultExpressionParser is a minimal stand-in expression parser: it
// does not build a full AST for the host's scripting language (that is
// always a real host's job), but it does implement the one piece of
// syntax spec.md assigns to the expression grammar itself — splitting a
// `|`/`&` pipe chain at top level and recording pipe/behavior uses — plus
// a balanced-delimiter check so obviously malformed expressions recover
// as BadExpression rather than panicking later stages.
type defaultExpressionParser struct{}

// NewDefaultExpressionParser returns the built-in ExpressionParser.
func NewDefaultExpressionParser() ExpressionParser { return defaultExpressionParser{} }

func (defaultExpressionParser) Parse(expr string) (ParsedExpr, error) {
	if msg, ok := unbalanced(expr); ok {
		return ParsedExpr{OK: false, BadMsg: msg}, nil
	}

	segments := splitTopLevel(expr)
	base := segments[0]
	var pipes []PipeUse
	var behaviors []BehaviorUse

	offset := len(base)
	for _, seg := range segments[1:] {
		op := seg[:1]
		rest := strings.TrimSpace(seg[1:])
		name, argc := splitNameAndArgs(rest)
		start := offset + 1
		use := struct {
			Name  string
			Start int
			End   int
			Args  int
		}{Name: name, Start: start, End: start + len(name), Args: argc}
		if op == "|" {
			pipes = append(pipes, PipeUse{Name: use.Name, Start: use.Start, End: use.End, Args: use.Args})
		} else {
			behaviors = append(behaviors, BehaviorUse{Name: use.Name, Start: use.Start, End: use.End, Args: use.Args})
		}
		offset += len(seg)
	}

	return ParsedExpr{OK: true, Node: base, Pipes: pipes, Behaviors: behaviors}, nil
}

// splitTopLevel splits expr on `|` and `&` that are not nested inside
// (), [], {}, or a quoted string, keeping the operator as the first
// character of every segment after the first.
func splitTopLevel(expr string) []string {
	var segs []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch {
		case quote != 0:
			if c == quote && (i == 0 || expr[i-1] != '\\') {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case depth == 0 && (c == '|' || c == '&'):
			if c == '|' && i+1 < len(expr) && expr[i+1] == '|' {
				i++
				continue // `||` is boolean-or, not a pipe
			}
			if c == '&' && i+1 < len(expr) && expr[i+1] == '&' {
				i++
				continue // `&&` is boolean-and, not a behavior
			}
			segs = append(segs, expr[start:i])
			start = i
		}
	}
	segs = append(segs, expr[start:])
	return segs
}

func splitNameAndArgs(rest string) (string, int) {
	colon := strings.IndexByte(rest, ':')
	if colon < 0 {
		return strings.TrimSpace(rest), 0
	}
	name := strings.TrimSpace(rest[:colon])
	args := strings.Count(rest[colon:], ":")
	return name, args
}

// unbalanced reports the first unmatched delimiter or quote found in
// expr, recoverable per spec.md §4.G.1's BadExpression contract.
func unbalanced(expr string) (string, bool) {
	var stack []byte
	var quote byte
	pairs := map[byte]byte{')': '(', ']': '[', '}': '{'}
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		if quote != 0 {
			if c == quote && expr[i-1] != '\\' {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(', '[', '{':
			stack = append(stack, c)
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != pairs[c] {
				return "unmatched '" + string(c) + "'", true
			}
			stack = stack[:len(stack)-1]
		}
	}
	if quote != 0 {
		return "unterminated string literal", true
	}
	if len(stack) != 0 {
		return "unmatched '" + string(stack[len(stack)-1]) + "'", true
	}
	return "", false
}
