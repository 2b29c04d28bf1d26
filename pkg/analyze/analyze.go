// Package analyze implements the post-parse semantic pass. It enforces
// the rules the grammar cannot express: alias resolution, mutually
// exclusive stages, aggregate-mode restrictions and value-list arity.
//
// Checks run in a fixed order and the first violation aborts the
// compile; no partial result is ever produced.
package analyze

import (
	"fmt"

	"github.com/fetchpipe/fetchpipe/pkg/ast"
)

// checkFunc is one semantic rule over the completed query.
type checkFunc func(q *ast.Query, sc *scope) error

// checks is the ordered rule list.
var checks = []checkFunc{
	checkAliases,
	checkOwnership,
	checkLimitPage,
	checkHaving,
	checkAggregateMode,
	checkAggregations,
	checkListArity,
	checkGroups,
	checkOptions,
}

// Validate runs all semantic checks and returns the first violation.
func Validate(q *ast.Query) error {
	sc, err := buildScope(q)
	if err != nil {
		return err
	}
	for _, check := range checks {
		if err := check(q, sc); err != nil {
			return err
		}
	}
	return nil
}

// forEachCondition visits every condition in a filter tree.
func forEachCondition(exprs []ast.FilterExpr, fn func(c *ast.Condition) error) error {
	for _, expr := range exprs {
		switch e := expr.(type) {
		case *ast.Condition:
			if err := fn(e); err != nil {
				return err
			}
		case *ast.AndExpr:
			if err := forEachCondition(e.Exprs, fn); err != nil {
				return err
			}
		case *ast.OrExpr:
			if err := forEachCondition(e.Exprs, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkAliases resolves every field reference in the query against the
// declared alias set. Having conditions are excluded: they reference
// aggregation aliases and are checked by checkHaving.
func checkAliases(q *ast.Query, sc *scope) error {
	resolveCond := func(c *ast.Condition) error {
		return sc.resolve(c.Field)
	}

	for _, a := range q.Attributes {
		if err := sc.resolve(a.Field); err != nil {
			return err
		}
	}
	if err := forEachCondition(q.Filters, resolveCond); err != nil {
		return err
	}
	for _, g := range q.Groups {
		if err := sc.resolve(g.Field); err != nil {
			return err
		}
	}
	for _, agg := range q.Aggregations {
		if agg.Field != nil {
			if err := sc.resolve(*agg.Field); err != nil {
				return err
			}
		}
	}
	for _, o := range q.Orders {
		if err := sc.resolve(o.Field); err != nil {
			return err
		}
	}

	var walkJoins func(joins []*ast.Join) error
	walkJoins = func(joins []*ast.Join) error {
		for _, j := range joins {
			if err := sc.resolve(j.From); err != nil {
				return err
			}
			if err := sc.resolve(j.To); err != nil {
				return err
			}
			for _, a := range j.Attributes {
				if err := sc.resolve(a.Field); err != nil {
					return err
				}
			}
			if err := forEachCondition(j.Filters, resolveCond); err != nil {
				return err
			}
			for _, o := range j.Orders {
				if err := sc.resolve(o.Field); err != nil {
					return err
				}
			}
			if err := walkJoins(j.Joins); err != nil {
				return err
			}
		}
		return nil
	}
	return walkJoins(q.Joins)
}

// checkOwnership pins selections to the entity that owns them: root
// attribute lists, groupings, aggregations and orders must reference
// the root entity; selections inside a join body must reference that
// join. The join condition must name its own entity on the source side
// and the parent entity on the target side. Filter conditions stay
// free to reference any declared alias (they emit an entityname
// qualifier when they cross scopes).
func checkOwnership(q *ast.Query, _ *scope) error {
	root := q.Entity.ScopeAlias()

	owned := func(f ast.FieldRef, owner, what string) error {
		if f.Alias != "" && f.Alias != owner {
			return &SemanticError{
				Pos:     f.Pos,
				Message: fmt.Sprintf("%s %s must reference %s; declare it on the owning entity instead", what, f, owner),
			}
		}
		return nil
	}

	for _, a := range q.Attributes {
		if err := owned(a.Field, root, "attribute"); err != nil {
			return err
		}
	}
	for _, g := range q.Groups {
		if err := owned(g.Field, root, "grouping"); err != nil {
			return err
		}
	}
	for _, agg := range q.Aggregations {
		if agg.Field != nil {
			if err := owned(*agg.Field, root, "aggregation"); err != nil {
				return err
			}
		}
	}
	for _, o := range q.Orders {
		if err := owned(o.Field, root, "order"); err != nil {
			return err
		}
	}

	var walkJoins func(joins []*ast.Join, parent string) error
	walkJoins = func(joins []*ast.Join, parent string) error {
		for _, j := range joins {
			alias := j.Entity.ScopeAlias()
			if err := owned(j.From, alias, "join source"); err != nil {
				return err
			}
			if err := owned(j.To, parent, "join target"); err != nil {
				return err
			}
			for _, a := range j.Attributes {
				if err := owned(a.Field, alias, "attribute"); err != nil {
					return err
				}
			}
			for _, o := range j.Orders {
				if err := owned(o.Field, alias, "order"); err != nil {
					return err
				}
			}
			if err := walkJoins(j.Joins, alias); err != nil {
				return err
			}
		}
		return nil
	}
	return walkJoins(q.Joins, root)
}

// checkLimitPage rejects co-occurring limit and page directives.
func checkLimitPage(q *ast.Query, _ *scope) error {
	if q.Limit != nil && q.Page != nil {
		return &SemanticError{Message: "limit and page are mutually exclusive"}
	}
	return nil
}

// checkHaving requires at least one aggregation and resolves having
// references against the aggregation aliases.
func checkHaving(q *ast.Query, _ *scope) error {
	if len(q.Having) == 0 {
		return nil
	}
	if len(q.Aggregations) == 0 {
		return &SemanticError{Message: "having requires at least one aggregation"}
	}

	aliases := map[string]bool{}
	for _, agg := range q.Aggregations {
		aliases[agg.EffectiveAlias()] = true
	}
	return forEachCondition(q.Having, func(c *ast.Condition) error {
		if c.Field.Alias != "" || !aliases[c.Field.Name] {
			return &SemanticError{
				Pos:     c.Field.Pos,
				Message: fmt.Sprintf("having must reference an aggregation alias, got %s", c.Field),
			}
		}
		return nil
	})
}

// checkAggregateMode rejects bare attribute selections once any
// grouping or aggregation puts the query in aggregate mode. Selections
// that exactly match a grouped field stay legal.
func checkAggregateMode(q *ast.Query, _ *scope) error {
	if len(q.Groups) == 0 && len(q.Aggregations) == 0 {
		return nil
	}

	grouped := map[string]bool{}
	for _, g := range q.Groups {
		grouped[g.Field.Alias+"."+g.Field.Name] = true
	}
	reject := func(attrs []ast.Attribute, all bool) error {
		if all {
			return &SemanticError{Message: "cannot select .* in aggregate mode"}
		}
		for _, a := range attrs {
			if !grouped[a.Field.Alias+"."+a.Field.Name] {
				return &SemanticError{
					Pos:     a.Field.Pos,
					Message: fmt.Sprintf("bare attribute %s is not allowed in aggregate mode", a.Field),
				}
			}
		}
		return nil
	}

	if err := reject(q.Attributes, q.AllAttributes); err != nil {
		return err
	}
	var walkJoins func(joins []*ast.Join) error
	walkJoins = func(joins []*ast.Join) error {
		for _, j := range joins {
			if err := reject(j.Attributes, j.AllAttributes); err != nil {
				return err
			}
			if err := walkJoins(j.Joins); err != nil {
				return err
			}
		}
		return nil
	}
	return walkJoins(q.Joins)
}

// checkAggregations rejects alias collisions. Duplicate function/field
// pairs left unaliased collide on their default alias and fail here.
func checkAggregations(q *ast.Query, _ *scope) error {
	seen := map[string]bool{}
	for _, agg := range q.Aggregations {
		alias := agg.EffectiveAlias()
		if seen[alias] {
			return &SemanticError{
				Pos:     agg.Pos,
				Message: fmt.Sprintf("duplicate aggregation alias %q (add as alias)", alias),
			}
		}
		seen[alias] = true
	}
	return nil
}

// checkListArity enforces value-list arity: in/!in need at least one
// element, between/!between exactly two. It also rejects list values on
// single-valued operators and vice versa.
func checkListArity(q *ast.Query, _ *scope) error {
	check := func(c *ast.Condition) error {
		list, isList := c.Value.(*ast.ListValue)
		if c.Op.IsList() != isList {
			if isList {
				return &SemanticError{
					Pos:     c.Pos,
					Message: fmt.Sprintf("operator %s does not take a list", c.Op),
				}
			}
			return &SemanticError{
				Pos:     c.Pos,
				Message: fmt.Sprintf("operator %s requires a bracketed list", c.Op),
			}
		}
		if !isList {
			return nil
		}
		switch c.Op {
		case ast.OpIn, ast.OpNotIn:
			if len(list.Items) < 1 {
				return &SemanticError{
					Pos:     c.Pos,
					Message: fmt.Sprintf("operator %s requires at least one value", c.Op),
				}
			}
		case ast.OpBetween, ast.OpNotBetween:
			if len(list.Items) != 2 {
				return &SemanticError{
					Pos:     c.Pos,
					Message: fmt.Sprintf("operator %s requires exactly two values, got %d", c.Op, len(list.Items)),
				}
			}
		}
		return nil
	}

	if err := forEachCondition(q.Filters, check); err != nil {
		return err
	}
	var walkJoins func(joins []*ast.Join) error
	walkJoins = func(joins []*ast.Join) error {
		for _, j := range joins {
			if err := forEachCondition(j.Filters, check); err != nil {
				return err
			}
			if err := walkJoins(j.Joins); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walkJoins(q.Joins); err != nil {
		return err
	}
	return forEachCondition(q.Having, check)
}

// dateGroupings is the closed set of group(...) granularities the
// target format understands.
var dateGroupings = map[string]bool{
	"day":     true,
	"week":    true,
	"month":   true,
	"quarter": true,
	"year":    true,
}

// checkGroups validates date-bucketing granularities.
func checkGroups(q *ast.Query, _ *scope) error {
	for _, g := range q.Groups {
		if g.DateGrouping != "" && !dateGroupings[g.DateGrouping] {
			return &SemanticError{
				Pos:     g.Field.Pos,
				Message: fmt.Sprintf("unknown date grouping %q", g.DateGrouping),
			}
		}
	}
	return nil
}

// knownOptions maps option keys to whether they take a boolean value.
var knownOptions = map[string]bool{
	"nolock":                 true,
	"returntotalrecordcount": true,
	"formatted":              true,
}

// checkOptions validates options(...) keys and value types.
func checkOptions(q *ast.Query, _ *scope) error {
	seen := map[string]bool{}
	for _, opt := range q.Options {
		if !knownOptions[opt.Key] {
			return &SemanticError{
				Pos:     opt.Pos,
				Message: fmt.Sprintf("unknown option %q", opt.Key),
			}
		}
		if seen[opt.Key] {
			return &SemanticError{
				Pos:     opt.Pos,
				Message: fmt.Sprintf("duplicate option %q", opt.Key),
			}
		}
		seen[opt.Key] = true
		if _, ok := opt.Value.(*ast.BoolValue); !ok {
			return &SemanticError{
				Pos:     opt.Pos,
				Message: fmt.Sprintf("option %q requires a boolean value", opt.Key),
			}
		}
	}
	return nil
}
