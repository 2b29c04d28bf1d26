package parser

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/fetchpipe/fetchpipe/pkg/token"
)

// Lexer tokenizes pipe query input.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)

	err *LexError // first lexical error, sticky
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// Err returns the first lexical error encountered, if any.
func (l *Lexer) Err() error {
	if l.err == nil {
		return nil
	}
	return l.err
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// currentPos returns the current position.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// NextToken returns the next token. Multi-character operators are
// matched longest-first: != and !~ before a bare !, >= before >.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	pos := l.currentPos()

	var tok token.Token
	tok.Pos = pos

	switch l.ch {
	case 0:
		tok.Type = token.EOF
		tok.Literal = ""
	case '|':
		tok = l.newToken(token.PIPE, "|")
	case '.':
		tok = l.newToken(token.DOT, ".")
	case ',':
		tok = l.newToken(token.COMMA, ",")
	case ':':
		tok = l.newToken(token.COLON, ":")
	case '*':
		tok = l.newToken(token.STAR, "*")
	case '(':
		tok = l.newToken(token.LPAREN, "(")
	case ')':
		tok = l.newToken(token.RPAREN, ")")
	case '[':
		tok = l.newToken(token.LBRACKET, "[")
	case ']':
		tok = l.newToken(token.RBRACKET, "]")
	case '~':
		tok = l.newToken(token.LIKE, "~")
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.EQ, Literal: "==", Pos: pos}
		} else {
			tok = l.illegal(pos, "=")
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.LE, Literal: "<=", Pos: pos}
		} else {
			tok = l.newToken(token.LT, "<")
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.GE, Literal: ">=", Pos: pos}
		} else {
			tok = l.newToken(token.GT, ">")
		}
	case '^':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.BEGINS, Literal: "^=", Pos: pos}
		} else {
			tok = l.illegal(pos, "^")
		}
	case '$':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.ENDS, Literal: "$=", Pos: pos}
		} else {
			tok = l.illegal(pos, "$")
		}
	case '!':
		return l.readBang(pos)
	case '-':
		switch {
		case l.peekChar() == '>':
			l.readChar()
			tok = token.Token{Type: token.ARROW, Literal: "->", Pos: pos}
		case isDigit(l.peekChar()):
			tok.Type = token.NUMBER
			tok.Literal = l.readNumber()
			return tok
		default:
			tok = l.illegal(pos, "-")
		}
	case '\'':
		return l.readString(pos)
	case '@':
		return l.readDate(pos)
	default:
		switch {
		case isLetter(l.ch) || l.ch == '_':
			tok.Literal = l.readIdentifier()
			tok.Type = token.LookupIdent(strings.ToLower(tok.Literal))
			return tok
		case isDigit(l.ch):
			tok.Type = token.NUMBER
			tok.Literal = l.readNumber()
			return tok
		default:
			tok = l.illegal(pos, string(l.ch))
		}
	}

	l.readChar()
	return tok
}

// readBang resolves the ! prefix: !=, !~, !in, !between.
func (l *Lexer) readBang(pos token.Position) token.Token {
	l.readChar() // consume '!'

	switch {
	case l.ch == '=':
		l.readChar()
		return token.Token{Type: token.NE, Literal: "!=", Pos: pos}
	case l.ch == '~':
		l.readChar()
		return token.Token{Type: token.NOTLIKE, Literal: "!~", Pos: pos}
	case isLetter(l.ch):
		word := strings.ToLower(l.readIdentifier())
		switch word {
		case "in":
			return token.Token{Type: token.NOTIN, Literal: "!in", Pos: pos}
		case "between":
			return token.Token{Type: token.NOTBETWEEN, Literal: "!between", Pos: pos}
		}
	}
	return l.failf(pos, ErrUnknownChar, "!")
}

// newToken creates a new single-character token.
func (l *Lexer) newToken(t token.Type, literal string) token.Token {
	return token.Token{Type: t, Literal: literal, Pos: l.currentPos()}
}

// illegal records a lex error and returns an ILLEGAL token.
func (l *Lexer) illegal(pos token.Position, lit string) token.Token {
	return l.failf(pos, ErrUnknownChar, lit)
}

func (l *Lexer) failf(pos token.Position, format string, args ...any) token.Token {
	if l.err == nil {
		l.err = &LexError{Pos: pos, Message: fmt.Sprintf(format, args...)}
	}
	return token.Token{Type: token.ILLEGAL, Pos: pos}
}

// skipWhitespaceAndComments skips whitespace and # line comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}
		if l.ch == '#' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		break
	}
}

// readString reads a single-quoted string literal.
// Handles doubled single quotes as escape: 'it''s' -> it's
func (l *Lexer) readString(pos token.Position) token.Token {
	l.readChar() // skip opening quote

	var result strings.Builder
	for {
		if l.ch == 0 {
			return l.failf(pos, ErrUnterminatedString)
		}
		if l.ch == '\'' {
			if l.peekChar() == '\'' {
				result.WriteByte('\'')
				l.readChar() // skip first quote
				l.readChar() // skip second quote
				continue
			}
			l.readChar() // skip closing quote
			break
		}
		result.WriteByte(l.ch)
		l.readChar()
	}
	return token.Token{Type: token.STRING, Literal: result.String(), Pos: pos}
}

// readDate reads a date expression after '@': today, today±Nd, or an
// absolute YYYY-MM-DD date. The literal excludes the leading '@'; the
// parser interprets the shape.
func (l *Lexer) readDate(pos token.Position) token.Token {
	l.readChar() // skip '@'
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '+' || l.ch == '-' {
		// Stop before an arrow so @today-... never swallows '->'.
		if l.ch == '-' && l.peekChar() == '>' {
			break
		}
		l.readChar()
	}
	lit := l.input[start:l.pos]
	if lit == "" {
		return l.failf(pos, ErrInvalidDate, "@")
	}
	return token.Token{Type: token.DATE, Literal: lit, Pos: pos}
}

// readIdentifier reads an unquoted identifier.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber reads a numeric literal (integer or decimal, with an
// optional leading minus consumed by the caller's dispatch).
func (l *Lexer) readNumber() string {
	start := l.pos
	if l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // skip '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[start:l.pos]
}

// isLetter returns true if ch is a letter.
func isLetter(ch byte) bool {
	return unicode.IsLetter(rune(ch))
}

// isDigit returns true if ch is a digit.
func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Tokenize returns all tokens from the input, or the first lex error.
func Tokenize(input string) ([]token.Token, error) {
	l := NewLexer(input)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		if err := l.Err(); err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return tokens, nil
}
