package ast

import "github.com/fetchpipe/fetchpipe/pkg/token"

// FilterExpr is a node of the filter tree: a single condition or an
// explicitly parenthesized and/or group.
type FilterExpr interface {
	filterNode()
}

// Operator is a closed set of comparison operators matched exhaustively
// at parse time (token -> Operator) and generation time (Operator ->
// FetchXML operator token).
type Operator int

const (
	OpEq Operator = iota // ==
	OpNe                 // !=
	OpGt                 // >
	OpGe                 // >=
	OpLt                 // <
	OpLe                 // <=
	OpLike               // ~
	OpNotLike            // !~
	OpBeginsWith         // ^=
	OpEndsWith           // $=
	OpIn                 // in
	OpNotIn              // !in
	OpBetween            // between
	OpNotBetween         // !between
)

// String returns the operator as written in source.
func (o Operator) String() string {
	switch o {
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpLike:
		return "~"
	case OpNotLike:
		return "!~"
	case OpBeginsWith:
		return "^="
	case OpEndsWith:
		return "$="
	case OpIn:
		return "in"
	case OpNotIn:
		return "!in"
	case OpBetween:
		return "between"
	case OpNotBetween:
		return "!between"
	default:
		return "unknown"
	}
}

// IsList returns true for operators whose value is a bracketed list.
func (o Operator) IsList() bool {
	switch o {
	case OpIn, OpNotIn, OpBetween, OpNotBetween:
		return true
	}
	return false
}

// Condition is a field-operator-value comparison.
type Condition struct {
	Field FieldRef
	Op    Operator
	Value Value
	Pos   token.Position
}

func (*Condition) filterNode() {}

// AndExpr is an explicitly parenthesized AND group.
type AndExpr struct {
	Exprs []FilterExpr
}

func (*AndExpr) filterNode() {}

// OrExpr is an explicitly parenthesized OR group.
type OrExpr struct {
	Exprs []FilterExpr
}

func (*OrExpr) filterNode() {}
