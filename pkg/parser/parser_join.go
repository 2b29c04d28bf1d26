package parser

import (
	"github.com/fetchpipe/fetchpipe/pkg/ast"
	"github.com/fetchpipe/fetchpipe/pkg/token"
)

// Join grammar:
//
//	join-stage → ('join'|'leftjoin') '(' '.' IDENT 'as' IDENT
//	             'on' field-ref '->' field-ref ('|' join-body-stage)* ')'
//
// The alias is mandatory: once more than two entities participate, the
// source->target join condition cannot be disambiguated without it.
// The body after the on clause reuses the pipe-stage grammar scoped to
// the joined entity: attribute lists, filters, orders and nested joins.

// parseJoin parses one join(...) or leftjoin(...) stage.
func (p *Parser) parseJoin() (*ast.Join, error) {
	j := &ast.Join{Pos: p.token.Pos}
	if p.token.Type == token.LEFTJOIN {
		j.Kind = ast.JoinOuter
	}
	p.nextToken() // consume join / leftjoin

	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DOT); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	j.Entity = ast.EntityRef{Name: name.Literal, Pos: name.Pos}

	if !p.check(token.AS) {
		return nil, p.errorf(p.token.Pos, ErrJoinAlias)
	}
	p.nextToken()
	alias, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	j.Entity.Alias = alias.Literal

	if _, err := p.expect(token.ON); err != nil {
		return nil, err
	}
	if j.From, err = p.parseFieldRef(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ARROW); err != nil {
		return nil, err
	}
	if j.To, err = p.parseFieldRef(); err != nil {
		return nil, err
	}

	for p.match(token.PIPE) {
		if err := p.parseJoinStage(j); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return j, nil
}

// parseJoinStage dispatches one pipe stage inside a join body.
func (p *Parser) parseJoinStage(j *ast.Join) error {
	switch p.token.Type {
	case token.JOIN, token.LEFTJOIN:
		child, err := p.parseJoin()
		if err != nil {
			return err
		}
		j.Joins = append(j.Joins, child)
		return nil

	case token.ORDER:
		orders, err := p.parseOrderStage()
		if err != nil {
			return err
		}
		j.Orders = append(j.Orders, orders...)
		return nil

	case token.LPAREN:
		exprs, err := p.parseFilterChain()
		if err != nil {
			return err
		}
		j.Filters = append(j.Filters, exprs...)
		return nil

	case token.DOT, token.IDENT:
		return p.parseFieldStage(&j.Attributes, &j.AllAttributes, &j.Filters)

	case token.OR:
		return p.errorf(p.token.Pos, ErrBareOr)

	case token.GROUP, token.HAVING, token.LIMIT, token.PAGE,
		token.DISTINCT, token.OPTIONS,
		token.COUNT, token.SUM, token.AVG, token.MIN, token.MAX:
		return p.errorf(p.token.Pos, "%s is not allowed inside a join body", p.token.Type)

	default:
		return p.unexpected("join body stage")
	}
}
