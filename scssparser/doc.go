// Package scssparser implements a tokenizer and block-aware parser for the
// SCSS stylesheet dialect, sufficient for locating and rewriting rules.
//
// It does not build a full selector or value grammar. The parser only needs
// to know where each statement starts and ends, which statements open a block,
// and which kind of item each statement is:
//
//   - Lexer: converts raw bytes into a token stream. Whitespace is skipped;
//     comments, strings and url() bodies are single tokens, so braces inside
//     them never affect nesting.
//   - Parser: groups tokens into statements and blocks, tracking parentheses
//     and #{} interpolation, and records the span of every node.
//   - AST types: Stylesheet, Node (declaration, include, rule, at-rule,
//     comment), Span and Position.
//   - Validate: lint rules over the tree (mixed_decls, decl_after_include,
//     and DeprecatedFunctionRule for callers that pass it).
//
// Usage:
//
//	sheet, err := scssparser.Parse(src)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, rule := range sheet.Rules(".book-card") {
//	    fmt.Println(rule.Span.Start.Line, len(rule.Children))
//	}
//
// The source bytes are never re-serialised from the tree: edits are spliced
// into the original text at node spans.
package scssparser
