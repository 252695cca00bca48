package scssparser

import (
	"fmt"
	"strings"
)

// Parse parses SCSS source text into a Stylesheet.
// Returns a *SyntaxError or *LexError on failure.
func Parse(src []byte) (*Stylesheet, error) {
	p := &parser{lex: NewLexer(src), src: src}
	nodes, err := p.parseBlock(nil)
	if err != nil {
		return nil, err
	}
	return &Stylesheet{Src: src, Nodes: nodes}, nil
}

type parser struct {
	lex *Lexer
	src []byte
}

func (p *parser) peek() (Token, error) {
	return p.lex.Peek()
}

func (p *parser) next() (Token, error) {
	return p.lex.Next()
}

// parseBlock parses statements until the closing brace of parent, or EOF at
// the top level (parent == nil).
func (p *parser) parseBlock(parent *Node) ([]*Node, error) {
	var nodes []*Node
	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}

		switch tok.Kind {
		case TokenEOF:
			if parent != nil {
				return nil, &SyntaxError{
					ParseError: ParseError{
						Message: fmt.Sprintf("unclosed block %q", truncate(parent.Prelude, 40)),
						Pos:     parent.Open,
					},
					Expected: "'}'",
					Got:      "EOF",
				}
			}
			return nodes, nil

		case TokenRBrace:
			if parent == nil {
				return nil, &SyntaxError{
					ParseError: ParseError{Message: "unbalanced closing brace", Pos: tok.Pos},
					Expected:   "statement",
					Got:        "'}'",
				}
			}
			_, _ = p.next()
			parent.Close = tok.Pos
			parent.Span.End = tok.End
			return nodes, nil

		case TokenSemicolon:
			_, _ = p.next()

		case TokenComment:
			_, _ = p.next()
			nodes = append(nodes, &Node{
				Kind:    NodeComment,
				Prelude: tok.Literal,
				Span:    Span{Start: tok.Pos, End: tok.End},
				Parent:  parent,
			})

		default:
			n, err := p.parseStatement(parent)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		}
	}
}

// parseStatement consumes one declaration, at-rule, include or nested rule.
// Parens, brackets and #{} interpolation are tracked so that braces and
// semicolons inside them do not end the statement.
func (p *parser) parseStatement(parent *Node) (*Node, error) {
	var toks []Token
	depth := 0
	interp := 0

	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}

		switch tok.Kind {
		case TokenEOF:
			if depth > 0 {
				return nil, &SyntaxError{
					ParseError: ParseError{Pos: toks[0].Pos, Message: "unclosed parenthesis"},
					Expected:   "')'",
					Got:        "EOF",
				}
			}
			if interp > 0 {
				return nil, &SyntaxError{
					ParseError: ParseError{Pos: toks[0].Pos, Message: "unclosed interpolation"},
					Expected:   "'}'",
					Got:        "EOF",
				}
			}
			return p.finishStatement(parent, toks), nil

		case TokenFunction, TokenLParen, TokenLBracket:
			depth++

		case TokenRParen, TokenRBracket:
			if depth == 0 {
				return nil, &SyntaxError{
					ParseError: ParseError{Pos: tok.Pos, Message: "unbalanced parenthesis"},
					Expected:   "statement",
					Got:        tok.Kind.String(),
				}
			}
			depth--

		case TokenInterpolation:
			interp++

		case TokenLBrace:
			if interp > 0 {
				interp++
				break
			}
			if depth > 0 {
				return nil, &SyntaxError{
					ParseError: ParseError{Pos: tok.Pos, Message: "brace inside parentheses"},
					Expected:   "')'",
					Got:        "'{'",
				}
			}
			_, _ = p.next()
			return p.parseBlockStatement(parent, toks, tok)

		case TokenRBrace:
			if interp > 0 {
				interp--
				break
			}
			if depth > 0 {
				return nil, &SyntaxError{
					ParseError: ParseError{Pos: tok.Pos, Message: "unclosed parenthesis"},
					Expected:   "')'",
					Got:        "'}'",
				}
			}
			// Last declaration of a block without a trailing semicolon.
			return p.finishStatement(parent, toks), nil

		case TokenSemicolon:
			if depth == 0 && interp == 0 {
				_, _ = p.next()
				n := p.finishStatement(parent, toks)
				n.Span.End = tok.End
				return n, nil
			}
		}

		_, _ = p.next()
		toks = append(toks, tok)
	}
}

func (p *parser) finishStatement(parent *Node, toks []Token) *Node {
	start := toks[0].Pos
	end := toks[len(toks)-1].End
	n := &Node{
		Prelude: strings.TrimSpace(string(p.src[start.Offset:end.Offset])),
		Span:    Span{Start: start, End: end},
		Parent:  parent,
	}
	classify(n, toks)
	return n
}

func (p *parser) parseBlockStatement(parent *Node, toks []Token, open Token) (*Node, error) {
	start := open.Pos
	if len(toks) > 0 {
		start = toks[0].Pos
	}
	n := &Node{
		Kind:    NodeRule,
		Prelude: strings.TrimSpace(string(p.src[start.Offset:open.Pos.Offset])),
		Span:    Span{Start: start},
		Block:   true,
		Open:    open.Pos,
		Parent:  parent,
	}
	if len(toks) > 0 && toks[0].Kind == TokenAtKeyword {
		classify(n, toks)
	} else {
		n.Name = normalizeSelector(n.Prelude)
	}

	children, err := p.parseBlock(n)
	if err != nil {
		return nil, err
	}
	n.Children = children
	return n, nil
}

// classify sets Kind and Name for statements starting with an at-keyword
// and for declarations.
func classify(n *Node, toks []Token) {
	if len(toks) == 0 {
		n.Kind = NodeDeclaration
		return
	}
	if toks[0].Kind == TokenAtKeyword {
		if toks[0].Literal == "@include" {
			n.Kind = NodeInclude
			n.Name = mixinName(toks[1:])
			return
		}
		n.Kind = NodeAtRule
		n.Name = strings.TrimPrefix(toks[0].Literal, "@")
		return
	}

	n.Kind = NodeDeclaration
	for i, tok := range toks {
		if tok.Kind == TokenColon {
			n.Name = strings.TrimSpace(joinLiterals(toks[:i]))
			return
		}
	}
}

// mixinName reads a possibly namespaced mixin name (ns.name) from the tokens
// after @include.
func mixinName(toks []Token) string {
	var sb strings.Builder
	for i, tok := range toks {
		if i > 0 && tok.Pos.Offset != toks[i-1].End.Offset {
			break
		}
		switch tok.Kind {
		case TokenIdent, TokenDot:
			sb.WriteString(tok.Literal)
		case TokenFunction:
			sb.WriteString(tok.FunctionName())
			return sb.String()
		default:
			return sb.String()
		}
	}
	return sb.String()
}

func joinLiterals(toks []Token) string {
	var sb strings.Builder
	for i, tok := range toks {
		if i > 0 && tok.Pos.Offset != toks[i-1].End.Offset {
			sb.WriteByte(' ')
		}
		sb.WriteString(tok.Literal)
	}
	return sb.String()
}

// truncate returns the first n characters of s, adding "..." if truncated.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
