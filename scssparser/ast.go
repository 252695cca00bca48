package scssparser

import "strings"

// Position tracks a source location.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number, in bytes
	Offset int // 0-based byte offset into source
}

// Span is a half-open byte range of the source.
type Span struct {
	Start Position // first byte
	End   Position // just past the last byte
}

// Text returns the source text covered by the span.
func (s Span) Text(src []byte) string {
	return string(src[s.Start.Offset:s.End.Offset])
}

// NodeKind classifies an item inside a stylesheet or block.
type NodeKind int

const (
	// NodeDeclaration is a property declaration (color: red;).
	NodeDeclaration NodeKind = iota
	// NodeInclude is a macro invocation (@include name(args);), with or without a content block.
	NodeInclude
	// NodeRule is a nested selector block.
	NodeRule
	// NodeAtRule is any other at-rule (@use, @extend, @media { ... }).
	NodeAtRule
	// NodeComment is a standalone line or block comment.
	NodeComment
)

func (k NodeKind) String() string {
	switch k {
	case NodeDeclaration:
		return "declaration"
	case NodeInclude:
		return "include"
	case NodeRule:
		return "rule"
	case NodeAtRule:
		return "at-rule"
	case NodeComment:
		return "comment"
	default:
		return "unknown"
	}
}

// Node is one item of a stylesheet. Block nodes (rules, and at-rules or
// includes followed by braces) carry the positions of their braces and their
// parsed children.
type Node struct {
	Kind     NodeKind
	Name     string // property name, mixin name, or at-rule name without '@'
	Prelude  string // source text before '{', or the whole statement without ';'
	Span     Span   // whole node, including ';' or the closing '}'
	Block    bool
	Open     Position // '{' when Block is set
	Close    Position // '}' when Block is set
	Children []*Node
	Parent   *Node
}

// Selector returns the rule's selector with whitespace runs collapsed.
func (n *Node) Selector() string {
	if n.Kind != NodeRule {
		return ""
	}
	return normalizeSelector(n.Prelude)
}

// Depth returns the nesting depth of the node; top-level nodes have depth 0.
func (n *Node) Depth() int {
	d := 0
	for p := n.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}

// Stylesheet is the parsed representation of one SCSS source file. The
// source is kept so callers can splice edits at node spans.
type Stylesheet struct {
	Src   []byte
	Nodes []*Node
}

// Walk visits every node depth-first in source order. Returning false from fn
// skips the node's children.
func (s *Stylesheet) Walk(fn func(n *Node) bool) {
	walkNodes(s.Nodes, fn)
}

func walkNodes(nodes []*Node, fn func(n *Node) bool) {
	for _, n := range nodes {
		if fn(n) {
			walkNodes(n.Children, fn)
		}
	}
}

// Rules returns all rules, at any depth, whose selector equals selector
// after whitespace normalization.
func (s *Stylesheet) Rules(selector string) []*Node {
	want := normalizeSelector(selector)
	var out []*Node
	s.Walk(func(n *Node) bool {
		if n.Kind == NodeRule && n.Selector() == want {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Text returns the source text of a node.
func (s *Stylesheet) Text(n *Node) string {
	return n.Span.Text(s.Src)
}

func normalizeSelector(sel string) string {
	return strings.Join(strings.Fields(sel), " ")
}
