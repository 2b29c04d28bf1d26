package parser

import (
	"fmt"

	"github.com/fetchpipe/fetchpipe/pkg/token"
)

// LexError represents a lexical analysis error.
type LexError struct {
	Pos     token.Position
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// ParseError represents a parsing error with position information.
// The first structural error aborts the parse; there is no recovery.
type ParseError struct {
	Pos     token.Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Common error messages.
const (
	ErrUnexpectedToken    = "unexpected token %s, expected %s"
	ErrUnterminatedString = "unterminated string literal"
	ErrInvalidDate        = "invalid date expression %q"
	ErrUnknownChar        = "unrecognized character %q"
	ErrJoinAlias          = "join requires an alias (join(.entity as alias on ...))"
	ErrBareOr             = "or requires explicit parentheses"
	ErrMixedGroup         = "cannot mix and/or in one group without parentheses"
)
