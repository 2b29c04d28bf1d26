// Package ast defines the typed program representation built by the
// parser and consumed by the validator and the FetchXML generator.
//
// A Query is built once per compile call and never mutated afterwards.
package ast

import "github.com/fetchpipe/fetchpipe/pkg/token"

// Query is the program root: one entity plus the pipe stages applied to it.
type Query struct {
	Entity        EntityRef
	Attributes    []Attribute
	AllAttributes bool
	// Filters is the implicit AND chain: each element is either a single
	// condition or an explicitly parenthesized group.
	Filters      []FilterExpr
	Joins        []*Join
	Groups       []GroupBy
	Aggregations []Aggregation
	// Having is a filter chain over aggregation aliases.
	Having   []FilterExpr
	Orders   []OrderSpec
	Limit    *int
	Page     *PageSpec
	Distinct bool
	Options  []Option
}

// EntityRef is an entity name with an optional alias.
type EntityRef struct {
	Name  string
	Alias string
	Pos   token.Position
}

// ScopeAlias returns the name the entity is referenced by: the declared
// alias if present, otherwise the entity name itself.
func (e EntityRef) ScopeAlias() string {
	if e.Alias != "" {
		return e.Alias
	}
	return e.Name
}

// FieldRef is a possibly alias-qualified field reference.
// A bare reference (.revenue) has an empty Alias.
type FieldRef struct {
	Alias string
	Name  string
	Pos   token.Position
}

// String returns the reference as written in source, minus the leading dot.
func (f FieldRef) String() string {
	if f.Alias == "" {
		return "." + f.Name
	}
	return f.Alias + "." + f.Name
}

// Attribute is a single attribute selection.
type Attribute struct {
	Field FieldRef
}

// GroupBy is a grouping attribute with an optional date-bucketing
// granularity (day, week, month, quarter, year) passed through unchanged.
type GroupBy struct {
	Field        FieldRef
	DateGrouping string
}

// OrderSpec is one entry of an order(...) stage.
type OrderSpec struct {
	Field FieldRef
	Desc  bool
}

// PageSpec is a page(n, size) directive.
type PageSpec struct {
	Number int
	Size   int
}

// Option is one key: value pair from an options(...) stage.
// Options keep source order so generated markup stays deterministic.
type Option struct {
	Key   string
	Value Value
	Pos   token.Position
}

// JoinKind distinguishes inner joins from outer (leftjoin) joins.
type JoinKind int

const (
	JoinInner JoinKind = iota
	JoinOuter
)

// String returns the source keyword for the join kind.
func (k JoinKind) String() string {
	if k == JoinOuter {
		return "leftjoin"
	}
	return "join"
}

// Join is a join(...) or leftjoin(...) stage. The body after the on
// clause reuses the pipe-stage grammar scoped to the joined entity, so a
// join owns its own attribute selections, filters, orders and child joins.
type Join struct {
	Kind          JoinKind
	Entity        EntityRef
	From          FieldRef // field on the joined entity
	To            FieldRef // field on the parent entity
	Attributes    []Attribute
	AllAttributes bool
	Filters       []FilterExpr
	Orders        []OrderSpec
	Joins         []*Join
	Pos           token.Position
}

// AggFunc identifies an aggregation function.
type AggFunc int

const (
	AggCount AggFunc = iota
	AggSum
	AggAvg
	AggMin
	AggMax
)

// String returns the source name of the aggregation function.
func (f AggFunc) String() string {
	switch f {
	case AggCount:
		return "count"
	case AggSum:
		return "sum"
	case AggAvg:
		return "avg"
	case AggMin:
		return "min"
	case AggMax:
		return "max"
	default:
		return "unknown"
	}
}

// Aggregation is one aggregation call. Field is nil for a bare count().
type Aggregation struct {
	Func  AggFunc
	Field *FieldRef
	Alias string
	Pos   token.Position
}

// EffectiveAlias returns the declared alias, or the default the
// generator assigns: "count" for a bare count(), field_func otherwise.
func (a Aggregation) EffectiveAlias() string {
	if a.Alias != "" {
		return a.Alias
	}
	if a.Field == nil {
		return a.Func.String()
	}
	return a.Field.Name + "_" + a.Func.String()
}
