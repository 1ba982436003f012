package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeatureRow is the final presumed-income feature for one
// (applicant, inquiry timestamp) pair.
type FeatureRow struct {
	CPF            string
	Timestamp      time.Time
	TimesDeclared  int
	TimesRefunded  int
	Stars          int // -1 when unavailable
	Year           int
	BrandCounts    map[string]int // keyed by BranchCodes
	BranchDeclared *string
	PresumedIncome decimal.Decimal
}

// FeatureColumns is the export column order.
var FeatureColumns = []string{
	"cpf", "time_stamp", "times_declared", "times_refunded", "ESTR", "year",
	"PERS", "STIL", "PRIM", "OUTR", "HSBC", "VANG", "UNIC", "ESPA", "PRIV",
	"branch_declared", "presumed_income",
}
