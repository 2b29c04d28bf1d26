package parser

import (
	"strconv"

	"github.com/fetchpipe/fetchpipe/pkg/ast"
	"github.com/fetchpipe/fetchpipe/pkg/token"
)

// parseGroupStage parses `group(.field[: granularity], ...)`.
// The granularity is a date-bucketing name passed through to the
// generated markup unchanged.
func (p *Parser) parseGroupStage(q *ast.Query) error {
	p.nextToken() // consume group
	if _, err := p.expect(token.LPAREN); err != nil {
		return err
	}

	for {
		field, err := p.parseFieldRef()
		if err != nil {
			return err
		}
		group := ast.GroupBy{Field: field}
		if p.match(token.COLON) {
			gran, err := p.expect(token.IDENT)
			if err != nil {
				return err
			}
			group.DateGrouping = gran.Literal
		}
		q.Groups = append(q.Groups, group)
		if !p.match(token.COMMA) {
			break
		}
	}

	_, err := p.expect(token.RPAREN)
	return err
}

// parseHavingStage parses `having(expr [and expr]...)`. The body uses
// the filter grammar; or still requires parentheses.
func (p *Parser) parseHavingStage(q *ast.Query) error {
	pos := p.token.Pos
	p.nextToken() // consume having
	if _, err := p.expect(token.LPAREN); err != nil {
		return err
	}

	exprs, err := p.parseFilterChain()
	if err != nil {
		return err
	}
	if len(q.Having) > 0 {
		return p.errorf(pos, "duplicate having stage")
	}
	q.Having = exprs

	_, err = p.expect(token.RPAREN)
	return err
}

// parseOrderStage parses `order(.field [asc|desc], ...)`.
func (p *Parser) parseOrderStage() ([]ast.OrderSpec, error) {
	p.nextToken() // consume order
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	var orders []ast.OrderSpec
	for {
		field, err := p.parseFieldRef()
		if err != nil {
			return nil, err
		}
		spec := ast.OrderSpec{Field: field}
		switch p.token.Type {
		case token.DESC:
			spec.Desc = true
			p.nextToken()
		case token.ASC:
			p.nextToken()
		}
		orders = append(orders, spec)
		if !p.match(token.COMMA) {
			break
		}
	}

	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return orders, nil
}

// parseLimitStage parses `limit(n)`.
func (p *Parser) parseLimitStage(q *ast.Query) error {
	pos := p.token.Pos
	p.nextToken() // consume limit
	if _, err := p.expect(token.LPAREN); err != nil {
		return err
	}
	n, err := p.parsePositiveInt("limit")
	if err != nil {
		return err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return err
	}
	if q.Limit != nil {
		return p.errorf(pos, "duplicate limit stage")
	}
	q.Limit = &n
	return nil
}

// parsePageStage parses `page(n, size)`.
func (p *Parser) parsePageStage(q *ast.Query) error {
	pos := p.token.Pos
	p.nextToken() // consume page
	if _, err := p.expect(token.LPAREN); err != nil {
		return err
	}
	number, err := p.parsePositiveInt("page number")
	if err != nil {
		return err
	}
	if _, err := p.expect(token.COMMA); err != nil {
		return err
	}
	size, err := p.parsePositiveInt("page size")
	if err != nil {
		return err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return err
	}
	if q.Page != nil {
		return p.errorf(pos, "duplicate page stage")
	}
	q.Page = &ast.PageSpec{Number: number, Size: size}
	return nil
}

// parsePositiveInt consumes a NUMBER token and requires it to be a
// positive integer.
func (p *Parser) parsePositiveInt(what string) (int, error) {
	tok, err := p.expect(token.NUMBER)
	if err != nil {
		return 0, err
	}
	n, convErr := strconv.Atoi(tok.Literal)
	if convErr != nil || n <= 0 {
		return 0, p.errorf(tok.Pos, "%s requires a positive integer, got %s", what, tok.Literal)
	}
	return n, nil
}

// parseOptionsStage parses `options(key: value, ...)`.
// Key validity is a semantic concern; the parser only builds pairs.
func (p *Parser) parseOptionsStage(q *ast.Query) error {
	p.nextToken() // consume options
	if _, err := p.expect(token.LPAREN); err != nil {
		return err
	}

	for {
		key, err := p.expect(token.IDENT)
		if err != nil {
			return err
		}
		if _, err := p.expect(token.COLON); err != nil {
			return err
		}
		value, err := p.parseScalarValue()
		if err != nil {
			return err
		}
		q.Options = append(q.Options, ast.Option{Key: key.Literal, Value: value, Pos: key.Pos})
		if !p.match(token.COMMA) {
			break
		}
	}

	_, err := p.expect(token.RPAREN)
	return err
}

// parseAggregationStage parses a comma-separated aggregation list:
// `count(), sum(.revenue) as total, ...`.
func (p *Parser) parseAggregationStage(q *ast.Query) error {
	for {
		agg, err := p.parseAggregation()
		if err != nil {
			return err
		}
		q.Aggregations = append(q.Aggregations, agg)
		if !p.match(token.COMMA) {
			return nil
		}
	}
}

// parseAggregation parses one `func(.field) [as alias]` call. A bare
// count() takes no field; every other function requires one.
func (p *Parser) parseAggregation() (ast.Aggregation, error) {
	tok := p.token
	if !token.IsAggregate(tok.Type) {
		return ast.Aggregation{}, p.unexpected("aggregation function")
	}
	agg := ast.Aggregation{Func: aggFuncFor(tok.Type), Pos: tok.Pos}
	p.nextToken()

	if _, err := p.expect(token.LPAREN); err != nil {
		return ast.Aggregation{}, err
	}
	if !p.check(token.RPAREN) {
		field, err := p.parseFieldRef()
		if err != nil {
			return ast.Aggregation{}, err
		}
		agg.Field = &field
	} else if agg.Func != ast.AggCount {
		return ast.Aggregation{}, p.errorf(tok.Pos, "%s requires a field", agg.Func)
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return ast.Aggregation{}, err
	}

	if p.match(token.AS) {
		alias, err := p.expect(token.IDENT)
		if err != nil {
			return ast.Aggregation{}, err
		}
		agg.Alias = alias.Literal
	}
	return agg, nil
}

// aggFuncFor maps an aggregate keyword token to its AST function kind.
func aggFuncFor(t token.Type) ast.AggFunc {
	switch t {
	case token.COUNT:
		return ast.AggCount
	case token.SUM:
		return ast.AggSum
	case token.AVG:
		return ast.AggAvg
	case token.MIN:
		return ast.AggMin
	default:
		return ast.AggMax
	}
}
