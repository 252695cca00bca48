package scssparser

// TokenKind identifies the type of a lexical token.
type TokenKind int

const (
	TokenEOF           TokenKind = iota
	TokenIdent                   // [A-Za-z_-][A-Za-z0-9_-]*
	TokenFunction                // ident immediately followed by '('
	TokenURL                     // url(...) with an unquoted argument
	TokenVariable                // $name
	TokenAtKeyword               // @name
	TokenHash                    // #name, #fff, #ffffff
	TokenInterpolation           // #{
	TokenNumber                  // 12, -0.5, 1.2rem, 50%
	TokenString                  // "..." or '...'
	TokenComment                 // // line or /* block */
	TokenLBrace                  // {
	TokenRBrace                  // }
	TokenLParen                  // (
	TokenRParen                  // )
	TokenLBracket                // [
	TokenRBracket                // ]
	TokenColon                   // :
	TokenSemicolon               // ;
	TokenComma                   // ,
	TokenDot                     // .
	TokenDelim                   // any other single character
)

var tokenNames = map[TokenKind]string{
	TokenEOF:           "EOF",
	TokenIdent:         "identifier",
	TokenFunction:      "function",
	TokenURL:           "url",
	TokenVariable:      "variable",
	TokenAtKeyword:     "at-keyword",
	TokenHash:          "hash",
	TokenInterpolation: "'#{'",
	TokenNumber:        "number",
	TokenString:        "string",
	TokenComment:       "comment",
	TokenLBrace:        "'{'",
	TokenRBrace:        "'}'",
	TokenLParen:        "'('",
	TokenRParen:        "')'",
	TokenLBracket:      "'['",
	TokenRBracket:      "']'",
	TokenColon:         "':'",
	TokenSemicolon:     "';'",
	TokenComma:         "','",
	TokenDot:           "'.'",
	TokenDelim:         "delimiter",
}

func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return "unknown"
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Kind    TokenKind
	Literal string // raw source text of the token
	Pos     Position
	End     Position // position just past the token
}

// FunctionName returns the name of a function token without its opening paren.
func (t Token) FunctionName() string {
	if t.Kind != TokenFunction || len(t.Literal) == 0 {
		return ""
	}
	return t.Literal[:len(t.Literal)-1]
}
