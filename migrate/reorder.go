package migrate

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/martinemde/scssmigrate/scssparser"
)

// Bag groups the items of a selector block for reordering.
type Bag string

const (
	// BagDeclarations holds plain property declarations.
	BagDeclarations Bag = "declarations"
	// BagIncludes holds @include invocations and block-less at-rules such as @extend.
	BagIncludes Bag = "includes"
	// BagNested holds nested rules and at-rules with blocks.
	BagNested Bag = "nested"
)

var canonicalOrder = []Bag{BagDeclarations, BagIncludes, BagNested}

// ReorderRule names a selector and the order its bags should appear in.
// Bags missing from Order follow the listed ones in canonical order.
type ReorderRule struct {
	Selector string `mapstructure:"selector" yaml:"selector"`
	Order    []Bag  `mapstructure:"order" yaml:"order,flow"`
}

// FullOrder returns Order followed by the bags it does not mention.
func (r ReorderRule) FullOrder() []Bag {
	out := append([]Bag(nil), r.Order...)
	for _, b := range canonicalOrder {
		if !containsBag(out, b) {
			out = append(out, b)
		}
	}
	return out
}

func containsBag(bags []Bag, b Bag) bool {
	for _, x := range bags {
		if x == b {
			return true
		}
	}
	return false
}

// BlockReorderer reorders the lines inside selected blocks so that
// declarations, includes and nested rules appear in a fixed order. The result
// is always a permutation of the block's interior lines. Comments and blank
// lines move together with the item that follows them.
type BlockReorderer struct {
	Rules []ReorderRule
}

// Name implements Pass.
func (r *BlockReorderer) Name() string { return "reorder_blocks" }

// Apply implements Pass.
func (r *BlockReorderer) Apply(doc *Document) error {
	for _, rule := range r.Rules {
		sheet, err := doc.Parse()
		if err != nil {
			return err
		}
		matches := sheet.Rules(rule.Selector)
		if len(matches) == 0 {
			doc.Report(Finding{
				Pass: r.Name(),
				Err:  &PatternNotFoundError{Pass: r.Name(), Pattern: rule.Selector},
				Diagnostic: scssparser.Diagnostic{
					Rule:     "pattern_not_found",
					Severity: scssparser.Warning,
					Message:  fmt.Sprintf("no block matches selector %q", rule.Selector),
					Selector: rule.Selector,
				},
			})
			continue
		}

		order := rule.FullOrder()
		for i := range matches {
			// Reordering moves text inside the block, so nested matches need
			// fresh spans.
			if i > 0 {
				if sheet, err = doc.Parse(); err != nil {
					return err
				}
				matches = sheet.Rules(rule.Selector)
			}
			node := matches[i]

			out, changed, err := reorderBlock(doc.Src, node, order)
			if err != nil {
				doc.Report(Finding{
					Pass: r.Name(),
					Diagnostic: scssparser.Diagnostic{
						Rule:     "unsupported_layout",
						Severity: scssparser.Warning,
						Message:  err.Error(),
						Pos:      node.Span.Start,
						Selector: rule.Selector,
					},
				})
				continue
			}
			if !changed {
				continue
			}
			doc.Src = out
			doc.Stats.BlocksReordered++
			doc.emit(BlockReorderedEvent(node.Selector(), node.Span.Start.Line, bagNames(order)))
		}
	}
	return nil
}

func bagNames(bags []Bag) []string {
	names := make([]string, len(bags))
	for i, b := range bags {
		names[i] = string(b)
	}
	return names
}

// unit is a run of whole lines holding one or more items of a block.
type unit struct {
	first, last int // line range, inclusive
	bag         Bag // empty for comment-only units
}

func bagOf(n *scssparser.Node) Bag {
	switch n.Kind {
	case scssparser.NodeDeclaration:
		return BagDeclarations
	case scssparser.NodeInclude:
		return BagIncludes
	case scssparser.NodeAtRule:
		if n.Block {
			return BagNested
		}
		return BagIncludes
	case scssparser.NodeRule:
		return BagNested
	default:
		return ""
	}
}

// reorderBlock rewrites the interior lines of node's block in the given bag
// order. It reports whether the text changed.
func reorderBlock(src []byte, node *scssparser.Node, order []Bag) ([]byte, bool, error) {
	openLine, closeLine := node.Open.Line, node.Close.Line
	if openLine == closeLine {
		return nil, false, errors.New("block opens and closes on the same line")
	}
	if len(node.Children) == 0 {
		return src, false, nil
	}
	if node.Children[0].Span.Start.Line == openLine {
		return nil, false, errors.New("block content starts on the line of '{'")
	}
	if node.Children[len(node.Children)-1].Span.End.Line == closeLine {
		return nil, false, errors.New("block content ends on the line of '}'")
	}

	// Items sharing a line are merged into one unit; the unit takes the bag
	// of its first non-comment item.
	var units []unit
	for _, c := range node.Children {
		first, last := c.Span.Start.Line, c.Span.End.Line
		if n := len(units); n > 0 && first <= units[n-1].last {
			u := &units[n-1]
			u.last = max(u.last, last)
			if u.bag == "" {
				u.bag = bagOf(c)
			}
			continue
		}
		units = append(units, unit{first: first, last: last, bag: bagOf(c)})
	}

	starts := lineStarts(src)
	lines := func(first, last int) []byte {
		return src[starts[first-1]:starts[last]]
	}

	chunks := make(map[Bag][][]byte)
	cursor := openLine + 1
	for _, u := range units {
		if u.bag == "" {
			continue
		}
		chunks[u.bag] = append(chunks[u.bag], lines(cursor, u.last))
		cursor = u.last + 1
	}

	var interior bytes.Buffer
	for _, b := range order {
		for _, chunk := range chunks[b] {
			interior.Write(chunk)
		}
	}
	if cursor <= closeLine-1 {
		interior.Write(lines(cursor, closeLine-1))
	}

	start, end := starts[openLine], starts[closeLine-1]
	if bytes.Equal(interior.Bytes(), src[start:end]) {
		return src, false, nil
	}
	out := make([]byte, 0, len(src))
	out = append(out, src[:start]...)
	out = append(out, interior.Bytes()...)
	out = append(out, src[end:]...)
	return out, true, nil
}

// lineStarts returns the byte offset at which each line begins; line n
// (1-based) starts at lineStarts[n-1].
func lineStarts(src []byte) []int {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}
