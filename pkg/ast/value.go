package ast

// Value is a tagged union of literal value kinds. The variant is
// established at lex/parse time so later stages never inspect runtime
// types beyond the closed set below.
type Value interface {
	valueNode()
}

// StringValue is a quoted string literal.
type StringValue struct {
	Value string
}

func (*StringValue) valueNode() {}

// NumberValue keeps the literal text so generated markup reproduces the
// source spelling exactly (no float round-tripping).
type NumberValue struct {
	Literal string
}

func (*NumberValue) valueNode() {}

// BoolValue is a true/false literal.
type BoolValue struct {
	Value bool
}

func (*BoolValue) valueNode() {}

// NullValue is the null literal.
type NullValue struct{}

func (*NullValue) valueNode() {}

// DateValue is a date expression: either relative to today (@today,
// @today-7d) or an absolute @YYYY-MM-DD date. Relative and absolute
// dates emit through different operator tables, so they stay distinct
// from plain string literals.
type DateValue struct {
	Relative bool
	Offset   int    // signed day offset, 0 for @today and absolute dates
	Date     string // YYYY-MM-DD for absolute dates
}

func (*DateValue) valueNode() {}

// ListValue is a bracketed value list for in/!in/between/!between.
type ListValue struct {
	Items []Value
}

func (*ListValue) valueNode() {}
