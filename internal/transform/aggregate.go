package transform

import (
	"sort"
	"time"

	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/models"
)

// ApplicantAggregate is one applicant's declaration history summarized per
// inquiry timestamp.
type ApplicantAggregate struct {
	CPF            string
	Timestamp      time.Time
	Year           int // calendar year of the inquiry timestamp
	Declarations   int
	TaxRefunds     int
	Stars          int
	BrandCounts    map[string]int // keyed by models.BranchCodes
	BranchDeclared *string        // branch of the current loan, first-wins
}

// AggregateStats counts the data-quality conditions the aggregation
// tolerates silently.
type AggregateStats struct {
	SkippedNoCPF       int // rows without a CPF never join a group
	UnknownBranchCodes int // historical codes outside the brand vocabulary
	AmbiguousBranchPL  int // groups with more than one distinct branch_code_pl
}

// Aggregator groups classified rows by (CPF, timestamp) and rates each
// group's declaration history.
type Aggregator struct {
	ratings *RatingTable
}

func NewAggregator(ratings *RatingTable) *Aggregator {
	return &Aggregator{ratings: ratings}
}

type groupKey struct {
	cpf string
	ts  time.Time
}

type group struct {
	declarations int
	refunds      int
	brandCounts  map[string]int

	branchPL    *string
	branchPLSet bool
	ambiguous   bool
}

// Aggregate produces one ApplicantAggregate per (CPF, timestamp) pair,
// sorted by CPF then timestamp. When a group carries more than one
// distinct branch_code_pl the first observed value wins and the
// disagreement is counted in the stats.
func (a *Aggregator) Aggregate(rows []ClassifiedRow) ([]ApplicantAggregate, AggregateStats) {
	var stats AggregateStats
	groups := make(map[groupKey]*group)
	order := make([]groupKey, 0)

	for _, row := range rows {
		if row.CPF == nil {
			stats.SkippedNoCPF++
			continue
		}
		key := groupKey{cpf: *row.CPF, ts: row.Timestamp}

		g, ok := groups[key]
		if !ok {
			g = &group{brandCounts: make(map[string]int, len(models.BranchCodes))}
			groups[key] = g
			order = append(order, key)
		}

		g.declarations++
		g.refunds += row.Flags.TaxRefund

		if row.BranchCode != nil {
			if models.IsBranchCode(*row.BranchCode) {
				g.brandCounts[*row.BranchCode]++
			} else {
				stats.UnknownBranchCodes++
			}
		}

		if !g.branchPLSet {
			g.branchPL = row.BranchCodePL
			g.branchPLSet = true
		} else if !equalPtr(g.branchPL, row.BranchCodePL) {
			g.ambiguous = true
		}
	}

	out := make([]ApplicantAggregate, 0, len(groups))
	for _, key := range order {
		g := groups[key]
		if g.ambiguous {
			stats.AmbiguousBranchPL++
		}

		counts := make(map[string]int, len(models.BranchCodes))
		for _, code := range models.BranchCodes {
			counts[code] = g.brandCounts[code]
		}

		out = append(out, ApplicantAggregate{
			CPF:            key.cpf,
			Timestamp:      key.ts,
			Year:           key.ts.Year(),
			Declarations:   g.declarations,
			TaxRefunds:     g.refunds,
			Stars:          a.ratings.Rating(g.declarations, g.refunds),
			BrandCounts:    counts,
			BranchDeclared: g.branchPL,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CPF != out[j].CPF {
			return out[i].CPF < out[j].CPF
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})

	return out, stats
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
