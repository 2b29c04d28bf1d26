// Package parser provides lexing and parsing of the pipe query language.
//
// # Usage
//
//	query, err := parser.Parse(".account | .name, .revenue | .revenue > 1000000")
//	if err != nil {
//	    // handle error
//	}
//
// # Grammar Overview
//
// The parser implements a recursive descent parser for the pipe grammar:
//
//	query  → entity-clause ('|' stage)*
//	entity → '.' IDENT [AS IDENT]
//	stage  → attribute-list | filter | join | group | aggregations
//	       | having | order | limit | page | distinct | options
//
// Consecutive filter stages combine as an implicit AND. A bare or at
// stage level is rejected; or always requires explicit parentheses.
// The first structural error aborts the parse with no recovery.
package parser

import (
	"fmt"

	"github.com/fetchpipe/fetchpipe/pkg/ast"
	"github.com/fetchpipe/fetchpipe/pkg/token"
)

// Parser parses pipe query text into an AST.
type Parser struct {
	lexer *Lexer
	token token.Token // current token
	peek  token.Token // lookahead token
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	// Read two tokens to initialize current and peek.
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses the input and returns the query AST, or the first
// lexical or structural error.
func Parse(input string) (*ast.Query, error) {
	return NewParser(input).parseQuery()
}

// ---------- Token Helpers ----------

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.token = p.peek
	p.peek = p.lexer.NextToken()
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t token.Type) bool {
	return p.token.Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t token.Type) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes and returns the current token if it matches,
// otherwise returns an error.
func (p *Parser) expect(t token.Type) (token.Token, error) {
	if p.check(t) {
		tok := p.token
		p.nextToken()
		return tok, nil
	}
	return token.Token{}, p.unexpected(t.String())
}

// unexpected builds the error for the current token: the sticky lexer
// error if lexing failed, an expected-vs-found ParseError otherwise.
func (p *Parser) unexpected(expected string) error {
	if p.token.Type == token.ILLEGAL {
		if err := p.lexer.Err(); err != nil {
			return err
		}
	}
	found := p.token.Type.String()
	if p.token.Type == token.EOF {
		found = "end of input"
	}
	return &ParseError{
		Pos:     p.token.Pos,
		Message: fmt.Sprintf(ErrUnexpectedToken, found, expected),
	}
}

// errorf builds a ParseError at the given position.
func (p *Parser) errorf(pos token.Position, format string, args ...any) error {
	return &ParseError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// ---------- Query ----------

// parseQuery parses the entity clause and all pipe stages.
func (p *Parser) parseQuery() (*ast.Query, error) {
	entity, err := p.parseEntityClause()
	if err != nil {
		return nil, err
	}

	q := &ast.Query{Entity: entity}
	for p.match(token.PIPE) {
		if err := p.parseStage(q); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(token.EOF); err != nil {
		return nil, err
	}
	return q, nil
}

// parseEntityClause parses `.entity [as alias]`.
func (p *Parser) parseEntityClause() (ast.EntityRef, error) {
	pos := p.token.Pos
	if _, err := p.expect(token.DOT); err != nil {
		return ast.EntityRef{}, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return ast.EntityRef{}, err
	}

	ref := ast.EntityRef{Name: name.Literal, Pos: pos}
	if p.match(token.AS) {
		alias, err := p.expect(token.IDENT)
		if err != nil {
			return ast.EntityRef{}, err
		}
		ref.Alias = alias.Literal
	}
	return ref, nil
}

// parseStage dispatches one pipe stage on the root query.
func (p *Parser) parseStage(q *ast.Query) error {
	switch p.token.Type {
	case token.JOIN, token.LEFTJOIN:
		j, err := p.parseJoin()
		if err != nil {
			return err
		}
		q.Joins = append(q.Joins, j)
		return nil

	case token.GROUP:
		return p.parseGroupStage(q)

	case token.HAVING:
		return p.parseHavingStage(q)

	case token.ORDER:
		orders, err := p.parseOrderStage()
		if err != nil {
			return err
		}
		q.Orders = append(q.Orders, orders...)
		return nil

	case token.LIMIT:
		return p.parseLimitStage(q)

	case token.PAGE:
		return p.parsePageStage(q)

	case token.DISTINCT:
		p.nextToken()
		q.Distinct = true
		return nil

	case token.OPTIONS:
		return p.parseOptionsStage(q)

	case token.COUNT, token.SUM, token.AVG, token.MIN, token.MAX:
		return p.parseAggregationStage(q)

	case token.LPAREN:
		exprs, err := p.parseFilterChain()
		if err != nil {
			return err
		}
		q.Filters = append(q.Filters, exprs...)
		return nil

	case token.DOT, token.IDENT:
		return p.parseFieldStage(&q.Attributes, &q.AllAttributes, &q.Filters)

	case token.OR:
		return p.errorf(p.token.Pos, ErrBareOr)

	default:
		return p.unexpected("pipe stage")
	}
}

// parseFieldRef parses `.field` or `alias.field`.
func (p *Parser) parseFieldRef() (ast.FieldRef, error) {
	pos := p.token.Pos

	if p.match(token.DOT) {
		name, err := p.expectFieldName()
		if err != nil {
			return ast.FieldRef{}, err
		}
		return ast.FieldRef{Name: name.Literal, Pos: pos}, nil
	}

	alias, err := p.expect(token.IDENT)
	if err != nil {
		return ast.FieldRef{}, err
	}
	if _, err := p.expect(token.DOT); err != nil {
		return ast.FieldRef{}, err
	}
	name, err := p.expectFieldName()
	if err != nil {
		return ast.FieldRef{}, err
	}
	return ast.FieldRef{Alias: alias.Literal, Name: name.Literal, Pos: pos}, nil
}

// expectFieldName consumes a field name. Keywords are legal here:
// attribute names like count or order collide with stage keywords, and
// having references aggregation aliases such as .count.
func (p *Parser) expectFieldName() (token.Token, error) {
	if p.check(token.IDENT) || token.IsKeyword(p.token.Type) {
		tok := p.token
		p.nextToken()
		return tok, nil
	}
	return token.Token{}, p.unexpected("field name")
}

// parseFieldStage parses a stage that begins with a field reference:
// either an attribute list (.a, .b or .*) or a condition chain
// (.revenue > 1000000 [and ...]). The decision is made after the first
// field reference by looking at the following token.
func (p *Parser) parseFieldStage(attrs *[]ast.Attribute, all *bool, filters *[]ast.FilterExpr) error {
	// .* selects all attributes and stands alone in its stage.
	if p.check(token.DOT) && p.peek.Type == token.STAR {
		p.nextToken()
		p.nextToken()
		*all = true
		return nil
	}

	field, err := p.parseFieldRef()
	if err != nil {
		return err
	}

	if token.IsOperator(p.token.Type) {
		cond, err := p.parseConditionAfterField(field)
		if err != nil {
			return err
		}
		exprs, err := p.parseChainAfter(cond)
		if err != nil {
			return err
		}
		*filters = append(*filters, exprs...)
		return nil
	}

	*attrs = append(*attrs, ast.Attribute{Field: field})
	for p.match(token.COMMA) {
		field, err := p.parseFieldRef()
		if err != nil {
			return err
		}
		*attrs = append(*attrs, ast.Attribute{Field: field})
	}
	return nil
}
