package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupIdent(t *testing.T) {
	tests := []struct {
		ident string
		want  Type
	}{
		{"and", AND},
		{"or", OR},
		{"join", JOIN},
		{"leftjoin", LEFTJOIN},
		{"on", ON},
		{"as", AS},
		{"in", IN},
		{"between", BETWEEN},
		{"group", GROUP},
		{"having", HAVING},
		{"order", ORDER},
		{"asc", ASC},
		{"desc", DESC},
		{"limit", LIMIT},
		{"page", PAGE},
		{"distinct", DISTINCT},
		{"options", OPTIONS},
		{"count", COUNT},
		{"sum", SUM},
		{"avg", AVG},
		{"min", MIN},
		{"max", MAX},
		{"null", NULL},
		{"true", TRUE},
		{"false", FALSE},
		{"account", IDENT},
		{"revenue", IDENT},
		{"orderid", IDENT}, // keywords match whole words only
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LookupIdent(tt.ident), "LookupIdent(%q)", tt.ident)
	}
}

func TestIsOperator(t *testing.T) {
	operators := []Type{EQ, NE, LT, GT, LE, GE, LIKE, NOTLIKE, BEGINS, ENDS, IN, NOTIN, BETWEEN, NOTBETWEEN}
	for _, op := range operators {
		assert.True(t, IsOperator(op), "IsOperator(%s)", op)
	}

	nonOperators := []Type{EOF, IDENT, PIPE, DOT, AND, OR, JOIN, LIMIT, STAR}
	for _, typ := range nonOperators {
		assert.False(t, IsOperator(typ), "IsOperator(%s)", typ)
	}
}

func TestIsAggregate(t *testing.T) {
	for _, typ := range []Type{COUNT, SUM, AVG, MIN, MAX} {
		assert.True(t, IsAggregate(typ), "IsAggregate(%s)", typ)
	}
	for _, typ := range []Type{IDENT, GROUP, HAVING, ORDER} {
		assert.False(t, IsAggregate(typ), "IsAggregate(%s)", typ)
	}
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "==", EQ.String())
	assert.Equal(t, "|", PIPE.String())
	assert.Equal(t, "!between", NOTBETWEEN.String())
	assert.Equal(t, "leftjoin", LEFTJOIN.String())
	assert.Equal(t, "EOF", EOF.String())
}

func TestPositionString(t *testing.T) {
	pos := Position{Line: 3, Column: 14, Offset: 42}
	assert.Equal(t, "3:14", pos.String())
	assert.True(t, pos.IsValid())
	assert.False(t, Position{}.IsValid())
}
