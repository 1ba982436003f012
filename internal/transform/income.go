package transform

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/models"
)

var (
	// ErrYearBucket means no lookup-table year is <= the query year. The
	// caller must guarantee the table covers every year it queries.
	ErrYearBucket = errors.New("no year bucket at or below query year")

	// ErrUnresolvableIncome means every candidate lookup missed: the table
	// is incomplete for data actually observed.
	ErrUnresolvableIncome = errors.New("presumed income unresolvable")
)

// maxValueBucket is the top declaration-count bucket; higher counts clamp
// to it ("7 or more").
const maxValueBucket = 7

// IncomeTable is the nested year -> brand token -> value bucket -> income
// lookup. Immutable once parsed; safe for concurrent readers.
type IncomeTable struct {
	years   []int // ascending
	buckets map[int]map[string]map[string]decimal.Decimal
}

// ParseIncomeTable decodes the lookup-table JSON document. Top-level keys
// are year strings, then brand tokens, then value buckets "0".."7".
func ParseIncomeTable(r io.Reader) (*IncomeTable, error) {
	var raw map[string]map[string]map[string]json.Number
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode income table: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("income table has no year keys")
	}

	t := &IncomeTable{
		years:   make([]int, 0, len(raw)),
		buckets: make(map[int]map[string]map[string]decimal.Decimal, len(raw)),
	}

	for yearKey, brands := range raw {
		year, err := strconv.Atoi(yearKey)
		if err != nil {
			return nil, fmt.Errorf("income table: year key %q is not a year", yearKey)
		}
		byBrand := make(map[string]map[string]decimal.Decimal, len(brands))
		for brand, values := range brands {
			byValue := make(map[string]decimal.Decimal, len(values))
			for bucket, num := range values {
				d, err := decimal.NewFromString(num.String())
				if err != nil {
					return nil, fmt.Errorf("income table %s/%s/%s: %w", yearKey, brand, bucket, err)
				}
				byValue[bucket] = d
			}
			byBrand[brand] = byValue
		}
		t.years = append(t.years, year)
		t.buckets[year] = byBrand
	}

	sort.Ints(t.years)
	return t, nil
}

// Years returns the table's year keys in ascending order.
func (t *IncomeTable) Years() []int {
	out := make([]int, len(t.years))
	copy(out, t.years)
	return out
}

// YearBucket resolves the greatest table year <= year.
func (t *IncomeTable) YearBucket(year int) (int, error) {
	i := sort.SearchInts(t.years, year+1)
	if i == 0 {
		return 0, fmt.Errorf("%w: year=%d min_table_year=%d", ErrYearBucket, year, t.years[0])
	}
	return t.years[i-1], nil
}

// Lookup reports the income for (yearBucket, brand, bucket), with an
// explicit miss indicator instead of a zero value.
func (t *IncomeTable) Lookup(yearBucket int, brand, bucket string) (decimal.Decimal, bool) {
	values, ok := t.buckets[yearBucket][brand]
	if !ok {
		return decimal.Decimal{}, false
	}
	v, ok := values[bucket]
	return v, ok
}

// Resolver turns an applicant's per-brand declaration counts into the
// presumed-income feature.
type Resolver struct {
	table *IncomeTable
}

func NewResolver(table *IncomeTable) *Resolver {
	return &Resolver{table: table}
}

// Resolve picks the most favorable income across all brand histories and,
// when the applicant self-declared at least once, the declared branch of
// the current loan evaluated at the "at least one declaration" bucket.
// Missing (brand, bucket) pairs contribute nothing; an empty candidate
// set is fatal for the row.
func (r *Resolver) Resolve(year int, brandValues map[string]int, declaredBranch *string) (decimal.Decimal, error) {
	yearBucket, err := r.table.YearBucket(year)
	if err != nil {
		return decimal.Decimal{}, err
	}

	var best decimal.Decimal
	found := false

	for brand, value := range brandValues {
		bucket := strconv.Itoa(value)
		if value > maxValueBucket {
			bucket = strconv.Itoa(maxValueBucket)
		}
		income, ok := r.table.Lookup(yearBucket, brand, bucket)
		if !ok {
			continue
		}
		if !found || income.GreaterThan(best) {
			best = income
			found = true
		}
	}

	if brandValues[models.BranchCodeSelf] > 0 {
		income := decimal.Zero
		if declaredBranch != nil {
			if v, ok := r.table.Lookup(yearBucket, *declaredBranch, "1"); ok {
				income = v
			}
		}
		if !found || income.GreaterThan(best) {
			best = income
			found = true
		}
	}

	if !found {
		return decimal.Decimal{}, fmt.Errorf("%w: year_bucket=%d", ErrUnresolvableIncome, yearBucket)
	}
	return best, nil
}
