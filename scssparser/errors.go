package scssparser

import "fmt"

// ParseError is the base error type for all scssparser errors.
type ParseError struct {
	Message string
	Pos     Position
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("line %d, col %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error { return e.Cause }

// LexError reports source the lexer cannot split into tokens: a string
// broken by a newline, or a block comment or unquoted url( that runs to EOF.
type LexError struct{ ParseError }

// SyntaxError reports a block structure the parser cannot close. Expected
// and Got name the delimiters: a '}' missing at EOF, a stray top-level '}',
// an unclosed paren or #{ interpolation, or a '{' inside parentheses.
type SyntaxError struct {
	ParseError
	Expected string
	Got      string
}

func (e *SyntaxError) Error() string {
	msg := fmt.Sprintf("expected %s, got %s", e.Expected, e.Got)
	if e.Message != "" {
		msg += " (" + e.Message + ")"
	}
	if e.Pos.Line > 0 {
		return fmt.Sprintf("line %d, col %d: %s", e.Pos.Line, e.Pos.Column, msg)
	}
	return msg
}
