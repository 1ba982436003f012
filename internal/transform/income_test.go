package transform

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const incomeTableJSON = `{
	"2018": {
		"ESTR": {"1": 1500, "2": 2100},
		"HSBC": {"0": 0, "1": 3000, "7": 9000},
		"PERS": {"1": 5000.50}
	},
	"2020": {
		"ESTR": {"1": 1800},
		"HSBC": {"1": 3500},
		"PERS": {"1": 5200}
	}
}`

func testIncomeTable(t *testing.T) *IncomeTable {
	t.Helper()
	table, err := ParseIncomeTable(strings.NewReader(incomeTableJSON))
	require.NoError(t, err)
	return table
}

func TestParseIncomeTable(t *testing.T) {
	table := testIncomeTable(t)
	assert.Equal(t, []int{2018, 2020}, table.Years())

	v, ok := table.Lookup(2018, "PERS", "1")
	require.True(t, ok)
	assert.True(t, v.Equal(decimal.RequireFromString("5000.50")))

	_, ok = table.Lookup(2018, "VANG", "1")
	assert.False(t, ok)
	_, ok = table.Lookup(2019, "HSBC", "1")
	assert.False(t, ok)
}

func TestParseIncomeTableRejectsBadDocuments(t *testing.T) {
	_, err := ParseIncomeTable(strings.NewReader(`{}`))
	assert.Error(t, err)

	_, err = ParseIncomeTable(strings.NewReader(`{"soon": {"HSBC": {"1": 10}}}`))
	assert.Error(t, err)

	_, err = ParseIncomeTable(strings.NewReader(`[1,2]`))
	assert.Error(t, err)
}

func TestYearBucketFindsGreatestAtOrBelow(t *testing.T) {
	table := testIncomeTable(t)

	tests := []struct {
		year int
		want int
	}{
		{2018, 2018},
		{2019, 2018},
		{2020, 2020},
		{2025, 2020},
	}
	for _, tt := range tests {
		got, err := table.YearBucket(tt.year)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "year=%d", tt.year)
	}

	_, err := table.YearBucket(2017)
	assert.ErrorIs(t, err, ErrYearBucket)
}

func TestResolvePicksMaxCandidate(t *testing.T) {
	r := NewResolver(testIncomeTable(t))

	income, err := r.Resolve(2018, map[string]int{"HSBC": 1, "PERS": 1, "ESTR": 0}, nil)
	require.NoError(t, err)
	assert.True(t, income.Equal(decimal.RequireFromString("5000.50")), "got %s", income)

	// idempotent over the same immutable table
	again, err := r.Resolve(2018, map[string]int{"HSBC": 1, "PERS": 1, "ESTR": 0}, nil)
	require.NoError(t, err)
	assert.True(t, income.Equal(again))
}

func TestResolveClampsValueBucket(t *testing.T) {
	r := NewResolver(testIncomeTable(t))

	// 9 declarations at HSBC land in the "7 or more" bucket
	income, err := r.Resolve(2018, map[string]int{"HSBC": 9, "ESTR": 0}, nil)
	require.NoError(t, err)
	assert.True(t, income.Equal(decimal.NewFromInt(9000)), "got %s", income)
}

func TestResolveSelfDeclarationAddsDeclaredBranch(t *testing.T) {
	r := NewResolver(testIncomeTable(t))
	hsbc := "HSBC"

	// ESTR=2 contributes its own bucket and the declared branch at "1"
	income, err := r.Resolve(2018, map[string]int{"ESTR": 2}, &hsbc)
	require.NoError(t, err)
	assert.True(t, income.Equal(decimal.NewFromInt(3000)), "got %s", income)

	// absent declared branch defaults the extra candidate to 0
	income, err = r.Resolve(2018, map[string]int{"ESTR": 2}, nil)
	require.NoError(t, err)
	assert.True(t, income.Equal(decimal.NewFromInt(2100)), "got %s", income)
}

func TestResolveUnavailableRatingContributesNothing(t *testing.T) {
	r := NewResolver(testIncomeTable(t))

	// ESTR=-1 has no bucket; HSBC=1 still resolves
	income, err := r.Resolve(2018, map[string]int{"ESTR": -1, "HSBC": 1}, nil)
	require.NoError(t, err)
	assert.True(t, income.Equal(decimal.NewFromInt(3000)))
}

func TestResolveEmptyCandidateSetIsFatal(t *testing.T) {
	r := NewResolver(testIncomeTable(t))

	_, err := r.Resolve(2018, map[string]int{"VANG": 3, "ESTR": 0}, nil)
	assert.ErrorIs(t, err, ErrUnresolvableIncome)
}

func TestResolveYearBelowTableIsFatal(t *testing.T) {
	r := NewResolver(testIncomeTable(t))

	_, err := r.Resolve(2015, map[string]int{"HSBC": 1, "ESTR": 0}, nil)
	assert.ErrorIs(t, err, ErrYearBucket)
}
