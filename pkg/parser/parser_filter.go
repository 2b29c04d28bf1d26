package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/fetchpipe/fetchpipe/pkg/ast"
	"github.com/fetchpipe/fetchpipe/pkg/token"
)

// Filter grammar. A filter stage is a condition or a parenthesized
// group, optionally chained with and at stage level:
//
//	filter-stage → primary ('and' primary)*
//	primary      → condition | '(' primary (('and'|'or') primary)+ ')'
//	condition    → field-ref OP value
//
// The stage-level and chain flattens into the query's implicit AND
// chain; only parenthesized groups survive as nested groups. Mixing
// and/or inside one group without inner parentheses is rejected, which
// removes precedence ambiguity by construction.

// parseFilterChain parses a filter stage that starts with a group.
func (p *Parser) parseFilterChain() ([]ast.FilterExpr, error) {
	first, err := p.parseFilterPrimary()
	if err != nil {
		return nil, err
	}
	return p.parseChainAfter(first)
}

// parseChainAfter continues a stage-level and chain after its first
// element and returns the flattened elements.
func (p *Parser) parseChainAfter(first ast.FilterExpr) ([]ast.FilterExpr, error) {
	exprs := []ast.FilterExpr{first}
	for {
		switch p.token.Type {
		case token.AND:
			p.nextToken()
			next, err := p.parseFilterPrimary()
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, next)
		case token.OR:
			return nil, p.errorf(p.token.Pos, ErrBareOr)
		default:
			return exprs, nil
		}
	}
}

// parseFilterPrimary parses a condition or a parenthesized group.
func (p *Parser) parseFilterPrimary() (ast.FilterExpr, error) {
	if p.check(token.LPAREN) {
		return p.parseFilterGroup()
	}
	field, err := p.parseFieldRef()
	if err != nil {
		return nil, err
	}
	return p.parseConditionAfterField(field)
}

// parseFilterGroup parses `(expr and expr ...)` or `(expr or expr ...)`.
// All connectives inside one group must agree; nest parentheses to mix.
func (p *Parser) parseFilterGroup() (ast.FilterExpr, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	first, err := p.parseFilterPrimary()
	if err != nil {
		return nil, err
	}
	exprs := []ast.FilterExpr{first}

	var connective token.Type
	for p.check(token.AND) || p.check(token.OR) {
		if connective == 0 {
			connective = p.token.Type
		} else if p.token.Type != connective {
			return nil, p.errorf(p.token.Pos, ErrMixedGroup)
		}
		p.nextToken()

		next, err := p.parseFilterPrimary()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, next)
	}

	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	if connective == token.OR {
		return &ast.OrExpr{Exprs: exprs}, nil
	}
	return &ast.AndExpr{Exprs: exprs}, nil
}

// parseConditionAfterField parses the operator and value of a condition
// whose field reference has already been consumed.
func (p *Parser) parseConditionAfterField(field ast.FieldRef) (*ast.Condition, error) {
	if !token.IsOperator(p.token.Type) {
		return nil, p.unexpected("comparison operator")
	}
	op := operatorFor(p.token.Type)
	p.nextToken()

	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return &ast.Condition{Field: field, Op: op, Value: value, Pos: field.Pos}, nil
}

// operatorFor maps an operator token to its AST operator kind.
// Callers guarantee t satisfies token.IsOperator.
func operatorFor(t token.Type) ast.Operator {
	switch t {
	case token.EQ:
		return ast.OpEq
	case token.NE:
		return ast.OpNe
	case token.GT:
		return ast.OpGt
	case token.GE:
		return ast.OpGe
	case token.LT:
		return ast.OpLt
	case token.LE:
		return ast.OpLe
	case token.LIKE:
		return ast.OpLike
	case token.NOTLIKE:
		return ast.OpNotLike
	case token.BEGINS:
		return ast.OpBeginsWith
	case token.ENDS:
		return ast.OpEndsWith
	case token.IN:
		return ast.OpIn
	case token.NOTIN:
		return ast.OpNotIn
	case token.BETWEEN:
		return ast.OpBetween
	default:
		return ast.OpNotBetween
	}
}

// parseValue parses a literal value or a bracketed list.
func (p *Parser) parseValue() (ast.Value, error) {
	if p.check(token.LBRACKET) {
		return p.parseListValue()
	}
	return p.parseScalarValue()
}

// parseScalarValue parses a single literal value.
func (p *Parser) parseScalarValue() (ast.Value, error) {
	tok := p.token
	switch tok.Type {
	case token.STRING:
		p.nextToken()
		return &ast.StringValue{Value: tok.Literal}, nil
	case token.NUMBER:
		p.nextToken()
		return &ast.NumberValue{Literal: tok.Literal}, nil
	case token.TRUE:
		p.nextToken()
		return &ast.BoolValue{Value: true}, nil
	case token.FALSE:
		p.nextToken()
		return &ast.BoolValue{Value: false}, nil
	case token.NULL:
		p.nextToken()
		return &ast.NullValue{}, nil
	case token.DATE:
		p.nextToken()
		return p.parseDateLiteral(tok)
	default:
		return nil, p.unexpected("value")
	}
}

// parseListValue parses `[v, v, ...]`. List arity rules (at least one
// element for in, exactly two for between) are enforced by the
// semantic validator, not here.
func (p *Parser) parseListValue() (ast.Value, error) {
	if _, err := p.expect(token.LBRACKET); err != nil {
		return nil, err
	}

	list := &ast.ListValue{}
	if !p.check(token.RBRACKET) {
		for {
			item, err := p.parseScalarValue()
			if err != nil {
				return nil, err
			}
			list.Items = append(list.Items, item)
			if !p.match(token.COMMA) {
				break
			}
		}
	}

	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	return list, nil
}

// parseDateLiteral interprets a DATE token: today, today±Nd, or an
// absolute YYYY-MM-DD date.
func (p *Parser) parseDateLiteral(tok token.Token) (ast.Value, error) {
	lit := tok.Literal

	if strings.HasPrefix(lit, "today") {
		rest := strings.TrimPrefix(lit, "today")
		if rest == "" {
			return &ast.DateValue{Relative: true}, nil
		}
		if (rest[0] == '+' || rest[0] == '-') && strings.HasSuffix(rest, "d") {
			n, err := strconv.Atoi(rest[:len(rest)-1])
			if err == nil {
				return &ast.DateValue{Relative: true, Offset: n}, nil
			}
		}
		return nil, p.errorf(tok.Pos, ErrInvalidDate, "@"+lit)
	}

	if _, err := time.Parse("2006-01-02", lit); err != nil {
		return nil, p.errorf(tok.Pos, ErrInvalidDate, "@"+lit)
	}
	return &ast.DateValue{Date: lit}, nil
}
