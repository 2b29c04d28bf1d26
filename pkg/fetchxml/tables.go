package fetchxml

import (
	"strconv"

	"github.com/fetchpipe/fetchpipe/pkg/ast"
)

// operators maps the source operator set to FetchXML operator tokens.
// The mapping is closed and table-driven: values of distinct kinds
// (null, date) reroute through their own tables before reaching it.
var operators = map[ast.Operator]string{
	ast.OpEq:         "eq",
	ast.OpNe:         "ne",
	ast.OpGt:         "gt",
	ast.OpGe:         "ge",
	ast.OpLt:         "lt",
	ast.OpLe:         "le",
	ast.OpLike:       "like",
	ast.OpNotLike:    "not-like",
	ast.OpBeginsWith: "begins-with",
	ast.OpEndsWith:   "ends-with",
	ast.OpIn:         "in",
	ast.OpNotIn:      "not-in",
	ast.OpBetween:    "between",
	ast.OpNotBetween: "not-between",
}

// nullOperators maps comparisons against the null literal.
var nullOperators = map[ast.Operator]string{
	ast.OpEq: "null",
	ast.OpNe: "not-null",
}

// absoluteDateOperators maps comparisons against an absolute
// @YYYY-MM-DD date; the date itself stays the literal value.
var absoluteDateOperators = map[ast.Operator]string{
	ast.OpEq: "on",
	ast.OpNe: "ne",
	ast.OpGt: "gt",
	ast.OpGe: "on-or-after",
	ast.OpLt: "lt",
	ast.OpLe: "on-or-before",
}

// relativeDate resolves a comparison against @today±Nd to a dynamic
// date operator and its numeric value. Combinations outside the table
// are target-format gaps and fail generation.
func relativeDate(op ast.Operator, offset int) (operator, value string, ok bool) {
	switch {
	case op == ast.OpEq && offset == 0:
		return "today", "", true
	case op == ast.OpEq && offset == -1:
		return "yesterday", "", true
	case op == ast.OpEq && offset == 1:
		return "tomorrow", "", true
	case op == ast.OpEq && offset < 0:
		return "last-x-days", strconv.Itoa(-offset), true
	case op == ast.OpEq && offset > 0:
		return "next-x-days", strconv.Itoa(offset), true
	case op == ast.OpGe && offset < 0:
		return "last-x-days", strconv.Itoa(-offset), true
	case op == ast.OpLe && offset > 0:
		return "next-x-days", strconv.Itoa(offset), true
	default:
		return "", "", false
	}
}

// aggregateNames maps aggregation functions to FetchXML aggregate
// names. count() without a field counts rows; count(.field) counts
// non-null column values.
func aggregateName(agg ast.Aggregation) string {
	switch agg.Func {
	case ast.AggCount:
		if agg.Field == nil {
			return "count"
		}
		return "countcolumn"
	case ast.AggSum:
		return "sum"
	case ast.AggAvg:
		return "avg"
	case ast.AggMin:
		return "min"
	default:
		return "max"
	}
}
