package analyze_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fetchpipe/fetchpipe/pkg/analyze"
	"github.com/fetchpipe/fetchpipe/pkg/parser"
)

func validate(t *testing.T, input string) error {
	t.Helper()
	q, err := parser.Parse(input)
	require.NoError(t, err, "input must parse before validation")
	return analyze.Validate(q)
}

func TestValidate_AcceptsWellFormedQueries(t *testing.T) {
	inputs := []string{
		".account",
		".account | .name, .revenue | .revenue > 1000000 | order(.revenue desc) | limit(10)",
		".account as a | join(.contact as c on c.accountid -> a.accountid | c.fullname)",
		".account | (.statecode == 0 or .statecode == 1)",
		".opportunity | group(.industrycode) | sum(.estimatedvalue) as total | having(.total > 100000)",
		".opportunity | group(.createdon: month) | count()",
		".account | .industrycode in [1, 2, 3]",
		".account | .revenue between [100000, 500000]",
		".account | .parentaccountid == null",
		".account | options(nolock: true) | distinct",
		".account | page(2, 50)",
		// grouped field may still appear in the attribute list
		".opportunity | .industrycode | group(.industrycode) | count()",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			assert.NoError(t, validate(t, input))
		})
	}
}

func TestValidate_AliasResolution(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "unknown alias in filter",
			input:   ".account as a | x.name == 'y'",
			wantErr: `unresolved alias "x"`,
		},
		{
			name:    "unknown alias in join condition",
			input:   ".account as a | join(.contact as c on c.accountid -> z.accountid)",
			wantErr: `unresolved alias "z"`,
		},
		{
			name:    "bare reference with joins present",
			input:   ".account as a | join(.contact as c on c.accountid -> a.accountid) | .name == 'x'",
			wantErr: "ambiguous",
		},
		{
			name:    "duplicate alias",
			input:   ".account as a | join(.contact as a on a.accountid -> a.accountid)",
			wantErr: `duplicate alias "a"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(t, tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_UnresolvedAliasErrorType(t *testing.T) {
	err := validate(t, ".account as a | x.name == 'y'")
	var aliasErr *analyze.UnresolvedAliasError
	require.ErrorAs(t, err, &aliasErr)
	assert.Equal(t, "x", aliasErr.Alias)
}

func TestValidate_Ownership(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "root attribute claimed by join alias",
			input:   ".account as a | join(.contact as c on c.accountid -> a.accountid) | c.fullname",
			wantErr: "attribute",
		},
		{
			name:    "join attribute claimed by root alias",
			input:   ".account as a | join(.contact as c on c.accountid -> a.accountid | a.name)",
			wantErr: "attribute",
		},
		{
			name:    "join source on wrong entity",
			input:   ".account as a | join(.contact as c on a.accountid -> a.accountid)",
			wantErr: "join source",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(t, tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// Filter conditions stay free to reference any declared alias; they
// cross scopes via an entityname qualifier in the generated markup.
func TestValidate_CrossScopeFilterIsLegal(t *testing.T) {
	err := validate(t, ".account as a | join(.contact as c on c.accountid -> a.accountid) | c.statecode == 0")
	assert.NoError(t, err)
}

func TestValidate_LimitPageExclusive(t *testing.T) {
	err := validate(t, ".account | limit(10) | page(1, 10)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestValidate_Having(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "having without aggregation",
			input:   ".account | having(.total > 100)",
			wantErr: "having requires at least one aggregation",
		},
		{
			name:    "having references unknown alias",
			input:   ".opportunity | sum(.estimatedvalue) as total | having(.nosuch > 100)",
			wantErr: "must reference an aggregation alias",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(t, tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_HavingDefaultAliases(t *testing.T) {
	// Bare count() answers to the default alias "count"; field
	// aggregations default to field_func.
	assert.NoError(t, validate(t, ".opportunity | count() | having(.count > 10)"))
	assert.NoError(t, validate(t, ".opportunity | sum(.estimatedvalue) | having(.estimatedvalue_sum > 10)"))
}

func TestValidate_AggregateMode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "bare attribute with aggregation",
			input:   ".opportunity | .name | count()",
			wantErr: "not allowed in aggregate mode",
		},
		{
			name:    "bare attribute with grouping",
			input:   ".opportunity | .name | group(.industrycode)",
			wantErr: "not allowed in aggregate mode",
		},
		{
			name:    "select all with aggregation",
			input:   ".opportunity | .* | count()",
			wantErr: "cannot select .*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(t, tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_DuplicateAggregationAliases(t *testing.T) {
	err := validate(t, ".opportunity | sum(.estimatedvalue) as total, avg(.estimatedvalue) as total")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate aggregation alias "total"`)

	// Unaliased duplicates collide on their default alias.
	err = validate(t, ".opportunity | sum(.estimatedvalue), sum(.estimatedvalue)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate aggregation alias")
}

func TestValidate_ListArity(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "empty in list",
			input:   ".account | .industrycode in []",
			wantErr: "at least one value",
		},
		{
			name:    "between with one value",
			input:   ".account | .revenue between [100]",
			wantErr: "exactly two values",
		},
		{
			name:    "between with three values",
			input:   ".account | .revenue between [1, 2, 3]",
			wantErr: "exactly two values",
		},
		{
			name:    "list value on scalar operator",
			input:   ".account | .revenue > [1, 2]",
			wantErr: "does not take a list",
		},
		{
			name:    "scalar value on list operator",
			input:   ".account | .industrycode in 1",
			wantErr: "requires a bracketed list",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(t, tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_DateGroupings(t *testing.T) {
	for _, gran := range []string{"day", "week", "month", "quarter", "year"} {
		assert.NoError(t, validate(t, ".opportunity | group(.createdon: "+gran+") | count()"), gran)
	}

	err := validate(t, ".opportunity | group(.createdon: fortnight) | count()")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown date grouping "fortnight"`)
}

func TestValidate_Options(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "unknown option",
			input:   ".account | options(turbo: true)",
			wantErr: `unknown option "turbo"`,
		},
		{
			name:    "duplicate option",
			input:   ".account | options(nolock: true, nolock: false)",
			wantErr: `duplicate option "nolock"`,
		},
		{
			name:    "non-boolean value",
			input:   ".account | options(nolock: 1)",
			wantErr: "requires a boolean value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(t, tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
