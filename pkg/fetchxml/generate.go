package fetchxml

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/fetchpipe/fetchpipe/pkg/ast"
)

// MaxLinkDepth is the platform's maximum link-entity nesting depth.
// The grammar allows arbitrary nesting; the limit surfaces here.
const MaxLinkDepth = 10

// DefaultVersion is emitted when the config leaves the version empty.
const DefaultVersion = "1.0"

// Config carries the generation policy supplied by the caller.
type Config struct {
	// DefaultLimit is injected as the top row count when the query sets
	// neither limit nor page. Zero disables the injection.
	DefaultLimit int
	// Version is the fetch version attribute.
	Version string
}

// GenerationError reports a target-format limit the validator cannot
// check, such as exceeding the maximum join depth.
type GenerationError struct {
	Reason string
}

func (e *GenerationError) Error() string {
	return "generation error: " + e.Reason
}

// Generate walks a validated query and returns FetchXML markup.
// Identical input always yields byte-identical output.
func Generate(q *ast.Query, cfg Config) (string, error) {
	doc := Document{
		Version: cfg.Version,
		Mapping: "logical",
	}
	if doc.Version == "" {
		doc.Version = DefaultVersion
	}

	if q.Distinct {
		doc.Distinct = "true"
	}
	// Aggregate mode is derived, never set by the caller.
	aggregate := len(q.Groups) > 0 || len(q.Aggregations) > 0
	if aggregate {
		doc.Aggregate = "true"
	}

	switch {
	case q.Limit != nil:
		doc.Top = strconv.Itoa(*q.Limit)
	case q.Page != nil:
		doc.Page = strconv.Itoa(q.Page.Number)
		doc.Count = strconv.Itoa(q.Page.Size)
	case cfg.DefaultLimit > 0:
		doc.Top = strconv.Itoa(cfg.DefaultLimit)
	}

	for _, opt := range q.Options {
		val := "false"
		if b, ok := opt.Value.(*ast.BoolValue); ok && b.Value {
			val = "true"
		}
		switch opt.Key {
		case "nolock":
			doc.NoLock = val
		case "returntotalrecordcount":
			doc.ReturnTotalRecordCount = val
		case "formatted":
			if val == "true" {
				doc.OutputFormat = "xml-platform"
			}
		}
	}

	entity, err := buildEntity(q, aggregate)
	if err != nil {
		return "", err
	}
	doc.Entity = entity

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", &GenerationError{Reason: err.Error()}
	}
	return string(out), nil
}

// buildEntity assembles the root entity element.
func buildEntity(q *ast.Query, aggregate bool) (Entity, error) {
	e := Entity{Name: q.Entity.Name}
	scopeAlias := q.Entity.ScopeAlias()

	if q.AllAttributes {
		e.AllAttributes = &AllAttributes{}
	}
	for _, a := range q.Attributes {
		e.Attributes = append(e.Attributes, Attribute{Name: a.Field.Name})
	}
	for _, g := range q.Groups {
		e.Attributes = append(e.Attributes, Attribute{
			Name:         g.Field.Name,
			Alias:        g.Field.Name,
			GroupBy:      "true",
			DateGrouping: g.DateGrouping,
		})
	}
	for _, agg := range q.Aggregations {
		name := q.Entity.Name + "id" // row count targets the primary key
		if agg.Field != nil {
			name = agg.Field.Name
		}
		e.Attributes = append(e.Attributes, Attribute{
			Name:      name,
			Alias:     agg.EffectiveAlias(),
			Aggregate: aggregateName(agg),
		})
	}

	filter, err := buildFilter(q.Filters, scopeAlias)
	if err != nil {
		return Entity{}, err
	}
	if filter != nil {
		e.Filters = append(e.Filters, *filter)
	}
	having, err := buildFilter(q.Having, scopeAlias)
	if err != nil {
		return Entity{}, err
	}
	if having != nil {
		e.Filters = append(e.Filters, *having)
	}

	for _, j := range q.Joins {
		link, err := buildLink(j, 1)
		if err != nil {
			return Entity{}, err
		}
		e.Links = append(e.Links, link)
	}

	for _, o := range q.Orders {
		e.Orders = append(e.Orders, buildOrder(o, aggregate))
	}
	return e, nil
}

// buildLink assembles one link-entity element, recursing into child
// joins and enforcing the platform depth limit.
func buildLink(j *ast.Join, depth int) (LinkEntity, error) {
	if depth > MaxLinkDepth {
		return LinkEntity{}, &GenerationError{
			Reason: fmt.Sprintf("join nesting exceeds the maximum depth of %d", MaxLinkDepth),
		}
	}

	link := LinkEntity{
		Name:     j.Entity.Name,
		From:     j.From.Name,
		To:       j.To.Name,
		Alias:    j.Entity.ScopeAlias(),
		LinkType: "inner",
	}
	if j.Kind == ast.JoinOuter {
		link.LinkType = "outer"
	}

	if j.AllAttributes {
		link.AllAttributes = &AllAttributes{}
	}
	for _, a := range j.Attributes {
		link.Attributes = append(link.Attributes, Attribute{Name: a.Field.Name})
	}

	filter, err := buildFilter(j.Filters, j.Entity.ScopeAlias())
	if err != nil {
		return LinkEntity{}, err
	}
	if filter != nil {
		link.Filters = append(link.Filters, *filter)
	}

	for _, child := range j.Joins {
		nested, err := buildLink(child, depth+1)
		if err != nil {
			return LinkEntity{}, err
		}
		link.Links = append(link.Links, nested)
	}

	for _, o := range j.Orders {
		link.Orders = append(link.Orders, buildOrder(o, false))
	}
	return link, nil
}

// buildOrder assembles one order element. Aggregate queries order by
// aggregation alias instead of attribute name.
func buildOrder(o ast.OrderSpec, aggregate bool) Order {
	order := Order{}
	if aggregate {
		order.Alias = o.Field.Name
	} else {
		order.Attribute = o.Field.Name
	}
	if o.Desc {
		order.Descending = "true"
	}
	return order
}

// buildFilter collapses an implicit AND chain into one flat filter
// group. Explicitly parenthesized groups stay nested. A chain that is
// exactly one explicit group emits that group directly, without a
// redundant wrapper.
func buildFilter(chain []ast.FilterExpr, scopeAlias string) (*Filter, error) {
	if len(chain) == 0 {
		return nil, nil
	}

	if len(chain) == 1 {
		if _, isCond := chain[0].(*ast.Condition); !isCond {
			group, err := buildGroup(chain[0], scopeAlias)
			if err != nil {
				return nil, err
			}
			return group, nil
		}
	}

	f := &Filter{Type: "and"}
	for _, expr := range chain {
		if err := appendExpr(f, expr, scopeAlias); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// appendExpr adds one filter-tree node to a group element.
func appendExpr(f *Filter, expr ast.FilterExpr, scopeAlias string) error {
	switch e := expr.(type) {
	case *ast.Condition:
		cond, err := buildCondition(e, scopeAlias)
		if err != nil {
			return err
		}
		f.Conditions = append(f.Conditions, cond)
		return nil
	default:
		group, err := buildGroup(expr, scopeAlias)
		if err != nil {
			return err
		}
		f.Filters = append(f.Filters, *group)
		return nil
	}
}

// buildGroup serializes an explicit and/or group.
func buildGroup(expr ast.FilterExpr, scopeAlias string) (*Filter, error) {
	var (
		exprs []ast.FilterExpr
		typ   string
	)
	switch e := expr.(type) {
	case *ast.AndExpr:
		exprs, typ = e.Exprs, "and"
	case *ast.OrExpr:
		exprs, typ = e.Exprs, "or"
	default:
		return nil, &GenerationError{Reason: fmt.Sprintf("unexpected filter node %T", expr)}
	}

	f := &Filter{Type: typ}
	for _, child := range exprs {
		if err := appendExpr(f, child, scopeAlias); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// buildCondition serializes one comparison. The value variant picks the
// emission shape: list operators get value children, null and date
// values reroute through their operator tables, everything else is a
// value attribute.
func buildCondition(c *ast.Condition, scopeAlias string) (Condition, error) {
	cond := Condition{Attribute: c.Field.Name}
	if c.Field.Alias != "" && c.Field.Alias != scopeAlias {
		cond.EntityName = c.Field.Alias
	}

	switch v := c.Value.(type) {
	case *ast.ListValue:
		cond.Operator = operators[c.Op]
		for _, item := range v.Items {
			s, err := scalarString(item)
			if err != nil {
				return Condition{}, err
			}
			cond.Values = append(cond.Values, s)
		}
		return cond, nil

	case *ast.NullValue:
		op, ok := nullOperators[c.Op]
		if !ok {
			return Condition{}, &GenerationError{
				Reason: fmt.Sprintf("operator %s cannot compare against null", c.Op),
			}
		}
		cond.Operator = op
		return cond, nil

	case *ast.DateValue:
		return buildDateCondition(cond, c.Op, v)

	default:
		s, err := scalarString(v)
		if err != nil {
			return Condition{}, err
		}
		cond.Operator = operators[c.Op]
		switch c.Op {
		case ast.OpLike, ast.OpNotLike:
			s = "%" + s + "%"
		}
		cond.Value = &s
		return cond, nil
	}
}

// buildDateCondition applies the date operator tables.
func buildDateCondition(cond Condition, op ast.Operator, v *ast.DateValue) (Condition, error) {
	if v.Relative {
		operator, value, ok := relativeDate(op, v.Offset)
		if !ok {
			return Condition{}, &GenerationError{
				Reason: fmt.Sprintf("no relative date operator for %s @today%+dd", op, v.Offset),
			}
		}
		cond.Operator = operator
		if value != "" {
			cond.Value = &value
		}
		return cond, nil
	}

	operator, ok := absoluteDateOperators[op]
	if !ok {
		return Condition{}, &GenerationError{
			Reason: fmt.Sprintf("operator %s is not defined for dates", op),
		}
	}
	cond.Operator = operator
	date := v.Date
	cond.Value = &date
	return cond, nil
}

// scalarString renders a scalar value for a value attribute or child.
func scalarString(v ast.Value) (string, error) {
	switch val := v.(type) {
	case *ast.StringValue:
		return val.Value, nil
	case *ast.NumberValue:
		return val.Literal, nil
	case *ast.BoolValue:
		if val.Value {
			return "true", nil
		}
		return "false", nil
	case *ast.DateValue:
		if val.Relative {
			return "", &GenerationError{Reason: "relative dates are not allowed in value lists"}
		}
		return val.Date, nil
	default:
		return "", &GenerationError{Reason: fmt.Sprintf("value %T cannot appear in a list", v)}
	}
}
