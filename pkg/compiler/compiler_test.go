package compiler_test

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fetchpipe/fetchpipe/pkg/analyze"
	"github.com/fetchpipe/fetchpipe/pkg/compiler"
	"github.com/fetchpipe/fetchpipe/pkg/fetchxml"
	"github.com/fetchpipe/fetchpipe/pkg/parser"
)

// Golden scenarios cover the full pipeline. To regenerate:
//
//	go test ./pkg/compiler -update
func TestCompile_Golden(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  compiler.Options
	}{
		{
			name:  "basic_select",
			input: ".account | .name, .revenue | .revenue > 1000000 | order(.revenue desc) | limit(10)",
		},
		{
			name: "join_query",
			input: `.account as a
				| a.name, a.accountid
				| join(.contact as c on c.accountid -> a.accountid | c.fullname)
				| c.statecode == 0`,
		},
		{
			name: "aggregate_query",
			input: `.opportunity
				| group(.industrycode)
				| count(), sum(.estimatedvalue) as total
				| having(.total > 100000)
				| order(.total desc)`,
		},
		{
			name: "complex_filters",
			input: `.account
				| (.statecode == 0 or .statecode == 1) and .revenue > 50000
				| .createdon >= @today-90d
				| options(nolock: true)
				| distinct
				| limit(50)`,
		},
		{
			name:  "paged_query",
			input: ".contact | .fullname | page(2, 25) | order(.fullname)",
		},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			markup, err := compiler.Compile(tt.input, tt.opts)
			require.NoError(t, err)
			g.Assert(t, tt.name, []byte(markup))
		})
	}
}

func TestCompile_DefaultLimit(t *testing.T) {
	// Zero means the built-in default.
	out, err := compiler.Compile(".account", compiler.Options{})
	require.NoError(t, err)
	assert.Contains(t, out, `top="100"`)

	// A negative default disables injection entirely.
	out, err = compiler.Compile(".account", compiler.Options{DefaultLimit: -1})
	require.NoError(t, err)
	assert.NotContains(t, out, "top=")

	out, err = compiler.Compile(".account", compiler.Options{DefaultLimit: 500})
	require.NoError(t, err)
	assert.Contains(t, out, `top="500"`)
}

func TestCompile_Version(t *testing.T) {
	out, err := compiler.Compile(".account", compiler.Options{Version: "1.1"})
	require.NoError(t, err)
	assert.Contains(t, out, `version="1.1"`)
}

// Each pipeline stage surfaces its own error type; no markup is ever
// returned alongside an error.
func TestCompile_ErrorPropagation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, err error)
	}{
		{
			name:  "lex error",
			input: ".account | .name == 'never closed",
			check: func(t *testing.T, err error) {
				var lexErr *parser.LexError
				assert.ErrorAs(t, err, &lexErr)
			},
		},
		{
			name:  "parse error",
			input: ".account | .a == 1 or .b == 2",
			check: func(t *testing.T, err error) {
				var parseErr *parser.ParseError
				assert.ErrorAs(t, err, &parseErr)
			},
		},
		{
			name:  "semantic error",
			input: ".account | limit(10) | page(1, 10)",
			check: func(t *testing.T, err error) {
				var semErr *analyze.SemanticError
				assert.ErrorAs(t, err, &semErr)
			},
		},
		{
			name:  "generation error",
			input: ".account | .createdon < @today-7d",
			check: func(t *testing.T, err error) {
				var genErr *fetchxml.GenerationError
				assert.ErrorAs(t, err, &genErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := compiler.Compile(tt.input, compiler.Options{})
			require.Error(t, err)
			assert.Empty(t, out)
			tt.check(t, err)
		})
	}
}

func TestCompile_Deterministic(t *testing.T) {
	input := ".account as a | a.name | join(.contact as c on c.accountid -> a.accountid) | options(nolock: true) | order(a.name)"

	first, err := compiler.Compile(input, compiler.Options{})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		next, err := compiler.Compile(input, compiler.Options{})
		require.NoError(t, err)
		assert.Equal(t, first, next)
	}
}
