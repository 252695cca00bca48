package scssparser

import "strings"

// Lexer tokenizes SCSS source text into a stream of tokens. Whitespace is
// skipped; comments are returned as TokenComment so callers can keep them.
type Lexer struct {
	src    []byte
	pos    int // current byte offset
	line   int // current line (1-based)
	col    int // current column (1-based, in bytes)
	peeked *Token
}

// NewLexer creates a new Lexer for the given source bytes.
func NewLexer(src []byte) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// Tokenize scans all of src and returns its tokens, ending with TokenEOF.
func Tokenize(src []byte) ([]Token, error) {
	lex := NewLexer(src)
	var tokens []Token
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			return tokens, nil
		}
	}
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() (Token, error) {
	if l.peeked != nil {
		return *l.peeked, nil
	}
	tok, err := l.scan()
	if err != nil {
		return Token{}, err
	}
	l.peeked = &tok
	return tok, nil
}

// Next returns the next token and advances the lexer.
func (l *Lexer) Next() (Token, error) {
	if l.peeked != nil {
		tok := *l.peeked
		l.peeked = nil
		return tok, nil
	}
	return l.scan()
}

func (l *Lexer) currentPos() Position {
	return Position{Line: l.line, Column: l.col, Offset: l.pos}
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.src)
}

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(n int) byte {
	if l.pos+n >= len(l.src) {
		return 0
	}
	return l.src[l.pos+n]
}

func (l *Lexer) advance() byte {
	ch := l.src[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() && isWhitespace(l.peek()) {
		l.advance()
	}
}

func (l *Lexer) token(kind TokenKind, pos Position) Token {
	return Token{Kind: kind, Literal: string(l.src[pos.Offset:l.pos]), Pos: pos, End: l.currentPos()}
}

func (l *Lexer) single(kind TokenKind, pos Position) (Token, error) {
	l.advance()
	return l.token(kind, pos), nil
}

func (l *Lexer) scan() (Token, error) {
	l.skipWhitespace()

	pos := l.currentPos()
	if l.atEnd() {
		return Token{Kind: TokenEOF, Pos: pos, End: pos}, nil
	}

	ch := l.peek()
	switch ch {
	case '{':
		return l.single(TokenLBrace, pos)
	case '}':
		return l.single(TokenRBrace, pos)
	case '(':
		return l.single(TokenLParen, pos)
	case ')':
		return l.single(TokenRParen, pos)
	case '[':
		return l.single(TokenLBracket, pos)
	case ']':
		return l.single(TokenRBracket, pos)
	case ':':
		return l.single(TokenColon, pos)
	case ';':
		return l.single(TokenSemicolon, pos)
	case ',':
		return l.single(TokenComma, pos)
	case '"', '\'':
		return l.scanString()
	case '/':
		switch l.peekAt(1) {
		case '/':
			for !l.atEnd() && l.peek() != '\n' {
				l.advance()
			}
			return l.token(TokenComment, pos), nil
		case '*':
			return l.scanBlockComment()
		}
		return l.single(TokenDelim, pos)
	case '#':
		if l.peekAt(1) == '{' {
			l.advance()
			l.advance()
			return l.token(TokenInterpolation, pos), nil
		}
		if isNameChar(l.peekAt(1)) {
			l.advance()
			l.consumeName()
			return l.token(TokenHash, pos), nil
		}
		return l.single(TokenDelim, pos)
	case '$':
		if isNameStart(l.peekAt(1)) || l.peekAt(1) == '-' {
			l.advance()
			l.consumeName()
			return l.token(TokenVariable, pos), nil
		}
		return l.single(TokenDelim, pos)
	case '@':
		if isNameStart(l.peekAt(1)) || l.peekAt(1) == '-' {
			l.advance()
			l.consumeName()
			return l.token(TokenAtKeyword, pos), nil
		}
		return l.single(TokenDelim, pos)
	case '.':
		if isDigit(l.peekAt(1)) {
			return l.scanNumber()
		}
		return l.single(TokenDot, pos)
	case '-', '+':
		if isDigit(l.peekAt(1)) || (l.peekAt(1) == '.' && isDigit(l.peekAt(2))) {
			return l.scanNumber()
		}
		if ch == '-' && (isNameStart(l.peekAt(1)) || l.peekAt(1) == '-') {
			return l.scanIdent()
		}
		return l.single(TokenDelim, pos)
	}

	if isDigit(ch) {
		return l.scanNumber()
	}
	if isNameStart(ch) {
		return l.scanIdent()
	}
	return l.single(TokenDelim, pos)
}

func (l *Lexer) scanString() (Token, error) {
	pos := l.currentPos()
	quote := l.advance()
	for {
		if l.atEnd() || l.peek() == '\n' {
			return Token{}, &LexError{ParseError{
				Message: "unterminated string",
				Pos:     pos,
			}}
		}
		ch := l.advance()
		if ch == quote {
			return l.token(TokenString, pos), nil
		}
		if ch == '\\' && !l.atEnd() {
			l.advance()
		}
	}
}

func (l *Lexer) scanBlockComment() (Token, error) {
	pos := l.currentPos()
	l.advance() // consume /
	l.advance() // consume *
	for {
		if l.atEnd() {
			return Token{}, &LexError{ParseError{
				Message: "unterminated block comment",
				Pos:     pos,
			}}
		}
		if l.peek() == '*' && l.peekAt(1) == '/' {
			l.advance()
			l.advance()
			return l.token(TokenComment, pos), nil
		}
		l.advance()
	}
}

func (l *Lexer) scanNumber() (Token, error) {
	pos := l.currentPos()
	if l.peek() == '-' || l.peek() == '+' {
		l.advance()
	}
	for !l.atEnd() && isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		l.advance()
		for !l.atEnd() && isDigit(l.peek()) {
			l.advance()
		}
	}
	// Unit or percentage suffix.
	if l.peek() == '%' {
		l.advance()
	} else if isNameStart(l.peek()) {
		l.consumeName()
	}
	return l.token(TokenNumber, pos), nil
}

func (l *Lexer) scanIdent() (Token, error) {
	pos := l.currentPos()
	l.consumeName()
	if l.peek() != '(' {
		return l.token(TokenIdent, pos), nil
	}
	l.advance() // consume (
	name := string(l.src[pos.Offset : l.pos-1])
	if strings.EqualFold(name, "url") {
		return l.scanURL(pos)
	}
	return l.token(TokenFunction, pos), nil
}

// scanURL handles url( with an unquoted argument, whose body may contain
// characters like "//" that would otherwise start a comment. A quoted argument
// is left to the regular tokenizer.
func (l *Lexer) scanURL(pos Position) (Token, error) {
	i := l.pos
	for i < len(l.src) && isWhitespace(l.src[i]) {
		i++
	}
	if i < len(l.src) && (l.src[i] == '"' || l.src[i] == '\'') {
		return l.token(TokenFunction, pos), nil
	}
	for {
		if l.atEnd() {
			return Token{}, &LexError{ParseError{
				Message: "unterminated url(",
				Pos:     pos,
			}}
		}
		if l.advance() == ')' {
			return l.token(TokenURL, pos), nil
		}
	}
}

func (l *Lexer) consumeName() {
	for !l.atEnd() {
		ch := l.peek()
		if ch == '\\' && l.pos+1 < len(l.src) {
			l.advance()
			l.advance()
			continue
		}
		if !isNameChar(ch) {
			return
		}
		l.advance()
	}
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isNameStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch >= 0x80
}

func isNameChar(ch byte) bool {
	return isNameStart(ch) || isDigit(ch) || ch == '-'
}
