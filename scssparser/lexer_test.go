package scssparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectTokens(t *testing.T, src string) []Token {
	t.Helper()
	tokens, err := Tokenize([]byte(src))
	require.NoError(t, err)
	return tokens
}

func tokenKinds(tokens []Token) []TokenKind {
	kinds := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		kinds[i] = tok.Kind
	}
	return kinds
}

func TestLexerPunctuation(t *testing.T) {
	tokens := collectTokens(t, "{ } ( ) [ ] : ; , .")
	expected := []TokenKind{
		TokenLBrace, TokenRBrace, TokenLParen, TokenRParen, TokenLBracket, TokenRBracket,
		TokenColon, TokenSemicolon, TokenComma, TokenDot, TokenEOF,
	}
	assert.Equal(t, expected, tokenKinds(tokens))
}

func TestLexerFunctionCall(t *testing.T) {
	tokens := collectTokens(t, "rgba(255, 0, 0, 0.5)")
	require.Len(t, tokens, 10)
	assert.Equal(t, TokenFunction, tokens[0].Kind)
	assert.Equal(t, "rgba(", tokens[0].Literal)
	assert.Equal(t, "rgba", tokens[0].FunctionName())
	assert.Equal(t, []string{"255", "0", "0", "0.5"}, []string{
		tokens[1].Literal, tokens[3].Literal, tokens[5].Literal, tokens[7].Literal,
	})
	assert.Equal(t, TokenRParen, tokens[8].Kind)
}

func TestLexerNamespacedVariable(t *testing.T) {
	tokens := collectTokens(t, "vars.$library-accent-gold")
	require.Len(t, tokens, 4)
	assert.Equal(t, TokenIdent, tokens[0].Kind)
	assert.Equal(t, "vars", tokens[0].Literal)
	assert.Equal(t, TokenDot, tokens[1].Kind)
	assert.Equal(t, TokenVariable, tokens[2].Kind)
	assert.Equal(t, "$library-accent-gold", tokens[2].Literal)
}

func TestLexerHashAndInterpolation(t *testing.T) {
	tokens := collectTokens(t, "#4CAF50 #fff #{$x}")
	assert.Equal(t, []TokenKind{
		TokenHash, TokenHash, TokenInterpolation, TokenVariable, TokenRBrace, TokenEOF,
	}, tokenKinds(tokens))
	assert.Equal(t, "#4CAF50", tokens[0].Literal)
	assert.Equal(t, "#{", tokens[2].Literal)
}

func TestLexerNumbers(t *testing.T) {
	cases := []string{"12", "-0.5", "1.2rem", "50%", ".5", "100vh", "+3", "-4px"}
	for _, input := range cases {
		tokens := collectTokens(t, input)
		require.Len(t, tokens, 2, "input: %s", input)
		assert.Equal(t, TokenNumber, tokens[0].Kind, "input: %s", input)
		assert.Equal(t, input, tokens[0].Literal, "input: %s", input)
	}
}

func TestLexerIdentifiers(t *testing.T) {
	cases := []string{"padding", "min-height", "-webkit-box", "--custom", "_private", "linear-gradient"}
	for _, input := range cases {
		tokens := collectTokens(t, input)
		require.Len(t, tokens, 2, "input: %s", input)
		assert.Equal(t, TokenIdent, tokens[0].Kind, "input: %s", input)
		assert.Equal(t, input, tokens[0].Literal, "input: %s", input)
	}
}

func TestLexerAtKeyword(t *testing.T) {
	tokens := collectTokens(t, "@include mixins.card;")
	assert.Equal(t, []TokenKind{
		TokenAtKeyword, TokenIdent, TokenDot, TokenIdent, TokenSemicolon, TokenEOF,
	}, tokenKinds(tokens))
	assert.Equal(t, "@include", tokens[0].Literal)
}

func TestLexerComments(t *testing.T) {
	tokens := collectTokens(t, "// line { comment\n/* block } */ a")
	require.Len(t, tokens, 4)
	assert.Equal(t, TokenComment, tokens[0].Kind)
	assert.Equal(t, "// line { comment", tokens[0].Literal)
	assert.Equal(t, TokenComment, tokens[1].Kind)
	assert.Equal(t, "/* block } */", tokens[1].Literal)
	assert.Equal(t, TokenIdent, tokens[2].Kind)
}

func TestLexerStrings(t *testing.T) {
	tests := []string{`"a{b}"`, `'single'`, `"esc\"aped"`, `"rgba(1, 2, 3, 0.5)"`}
	for _, input := range tests {
		tokens := collectTokens(t, input)
		require.Len(t, tokens, 2, "input: %s", input)
		assert.Equal(t, TokenString, tokens[0].Kind, "input: %s", input)
		assert.Equal(t, input, tokens[0].Literal, "input: %s", input)
	}
}

func TestLexerUnquotedURL(t *testing.T) {
	tokens := collectTokens(t, "url(http://example.com/a.png) url('b.png')")
	require.Len(t, tokens, 5)
	assert.Equal(t, TokenURL, tokens[0].Kind)
	assert.Equal(t, "url(http://example.com/a.png)", tokens[0].Literal)
	assert.Equal(t, TokenFunction, tokens[1].Kind)
	assert.Equal(t, TokenString, tokens[2].Kind)
	assert.Equal(t, TokenRParen, tokens[3].Kind)
}

func TestLexerUnterminated(t *testing.T) {
	for _, input := range []string{`"open`, "'open\n'", "/* open", "url(open"} {
		_, err := Tokenize([]byte(input))
		require.Error(t, err, "input: %q", input)
		assert.IsType(t, &LexError{}, err, "input: %q", input)
	}
}

func TestLexerUnterminatedURLMessage(t *testing.T) {
	_, err := Tokenize([]byte(".a { background: url(img/a.png; }"))
	var le *LexError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "unterminated url(", le.Message)
	assert.Equal(t, 1, le.Pos.Line)
	assert.Equal(t, 18, le.Pos.Column)
}

func TestLexerPositions(t *testing.T) {
	tokens := collectTokens(t, "a\n  bc")
	require.Len(t, tokens, 3)
	assert.Equal(t, Position{Line: 1, Column: 1, Offset: 0}, tokens[0].Pos)
	assert.Equal(t, Position{Line: 2, Column: 3, Offset: 4}, tokens[1].Pos)
	assert.Equal(t, Position{Line: 2, Column: 5, Offset: 6}, tokens[1].End)
}

func TestLexerPeekDoesNotConsume(t *testing.T) {
	lex := NewLexer([]byte("a b"))
	peeked, err := lex.Peek()
	require.NoError(t, err)
	next, err := lex.Next()
	require.NoError(t, err)
	assert.Equal(t, peeked, next)
	next, err = lex.Next()
	require.NoError(t, err)
	assert.Equal(t, "b", next.Literal)
}
