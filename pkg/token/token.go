// Package token defines the token types for the pipe query language.
package token

import "fmt"

// Type represents the type of a lexical token.
type Type int32

const (
	// Special tokens
	EOF Type = iota
	ILLEGAL

	// Literals
	IDENT  // account, revenue
	NUMBER // 123, 45.67
	STRING // 'hello'
	DATE   // @today, @today-7d, @2024-01-31

	// Operators and punctuation
	PIPE     // |
	DOT      // .
	COMMA    // ,
	COLON    // :
	STAR     // *
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]
	ARROW    // ->
	EQ       // ==
	NE       // !=
	LT       // <
	GT       // >
	LE       // <=
	GE       // >=
	LIKE     // ~
	NOTLIKE  // !~
	BEGINS   // ^=
	ENDS     // $=

	// Keywords (alphabetical)
	AND
	AS
	ASC
	AVG
	BETWEEN
	COUNT
	DESC
	DISTINCT
	FALSE
	GROUP
	HAVING
	IN
	JOIN
	LEFTJOIN
	LIMIT
	MAX
	MIN
	NOTBETWEEN // !between
	NOTIN      // !in
	NULL
	ON
	OPTIONS
	OR
	ORDER
	PAGE
	SUM
	TRUE
)

// String returns a human-readable representation of the token type.
func (t Type) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

// tokenNames maps token types to their string representations.
var tokenNames = map[Type]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",
	STRING: "STRING",
	DATE:   "DATE",

	PIPE:     "|",
	DOT:      ".",
	COMMA:    ",",
	COLON:    ":",
	STAR:     "*",
	LPAREN:   "(",
	RPAREN:   ")",
	LBRACKET: "[",
	RBRACKET: "]",
	ARROW:    "->",
	EQ:       "==",
	NE:       "!=",
	LT:       "<",
	GT:       ">",
	LE:       "<=",
	GE:       ">=",
	LIKE:     "~",
	NOTLIKE:  "!~",
	BEGINS:   "^=",
	ENDS:     "$=",

	AND:        "and",
	AS:         "as",
	ASC:        "asc",
	AVG:        "avg",
	BETWEEN:    "between",
	COUNT:      "count",
	DESC:       "desc",
	DISTINCT:   "distinct",
	FALSE:      "false",
	GROUP:      "group",
	HAVING:     "having",
	IN:         "in",
	JOIN:       "join",
	LEFTJOIN:   "leftjoin",
	LIMIT:      "limit",
	MAX:        "max",
	MIN:        "min",
	NOTBETWEEN: "!between",
	NOTIN:      "!in",
	NULL:       "null",
	ON:         "on",
	OPTIONS:    "options",
	OR:         "or",
	ORDER:      "order",
	PAGE:       "page",
	SUM:        "sum",
	TRUE:       "true",
}

// keywords maps lowercase keyword strings to their token types.
var keywords = map[string]Type{
	"and":      AND,
	"as":       AS,
	"asc":      ASC,
	"avg":      AVG,
	"between":  BETWEEN,
	"count":    COUNT,
	"desc":     DESC,
	"distinct": DISTINCT,
	"false":    FALSE,
	"group":    GROUP,
	"having":   HAVING,
	"in":       IN,
	"join":     JOIN,
	"leftjoin": LEFTJOIN,
	"limit":    LIMIT,
	"max":      MAX,
	"min":      MIN,
	"null":     NULL,
	"on":       ON,
	"options":  OPTIONS,
	"or":       OR,
	"order":    ORDER,
	"page":     PAGE,
	"sum":      SUM,
	"true":     TRUE,
}

// LookupIdent returns the token type for the given identifier.
// If the identifier is a keyword, the keyword token type is returned.
// Otherwise, IDENT is returned.
func LookupIdent(ident string) Type {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword returns true if the token type is a keyword.
func IsKeyword(t Type) bool {
	return t >= AND && t <= TRUE
}

// IsOperator returns true if the token type is a comparison operator,
// including the keyword operators in, !in, between and !between.
func IsOperator(t Type) bool {
	switch t {
	case EQ, NE, LT, GT, LE, GE, LIKE, NOTLIKE, BEGINS, ENDS,
		IN, NOTIN, BETWEEN, NOTBETWEEN:
		return true
	}
	return false
}

// IsAggregate returns true if the token type names an aggregate function.
func IsAggregate(t Type) bool {
	switch t {
	case COUNT, SUM, AVG, MIN, MAX:
		return true
	}
	return false
}

// Token represents a lexical token with position information.
type Token struct {
	Type    Type
	Literal string
	Pos     Position
}
