package transform

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/models"
)

// ExplodedRow is one (application, report year) pair: the flattened
// riskInfo payload joined against the bank and branch references. Nil
// pointer fields mean the payload omitted the value or a reference join
// did not resolve.
type ExplodedRow struct {
	PersonID    string
	LoanID      string
	InquiryID   string
	ProductCode string

	CPF        *string
	Timestamp  time.Time
	ReportYear int

	StatusText *string
	Bank       *string // counterpart bank name from the payload
	Branch     *string // counterpart branch number from the payload

	BankCode     *string // resolved via bank reference
	BranchCode   *string // resolved via branch reference
	BranchCodePL *string // resolved for the current loan's bank/branch
}

// ClassifiedRow is an ExplodedRow with its status flags attached.
type ClassifiedRow struct {
	ExplodedRow
	Flags StatusFlags
}

// ReferenceSet indexes the bank and branch reference tables for the two
// left joins of the pipeline: counterpart bank name -> bank code, and
// (bank code, branch number) -> brand token.
type ReferenceSet struct {
	bankByName map[string]string
	branchCode map[branchKey]*string
}

type branchKey struct {
	bankCode string
	branch   string
}

func NewReferenceSet(banks []models.BankReferenceRow, branches []models.BranchReferenceRow) *ReferenceSet {
	rs := &ReferenceSet{
		bankByName: make(map[string]string, len(banks)),
		branchCode: make(map[branchKey]*string, len(branches)),
	}
	for _, b := range banks {
		if _, ok := rs.bankByName[b.Bank]; !ok {
			rs.bankByName[b.Bank] = b.BankCode
		}
	}
	for _, b := range branches {
		k := branchKey{bankCode: b.BankCode, branch: b.Branch}
		if _, ok := rs.branchCode[k]; !ok {
			rs.branchCode[k] = b.BranchCode
		}
	}
	return rs
}

// Explode flattens each application's riskInfo into one row per report
// year, years in ascending order, and resolves the reference joins. A
// payload that is not a JSON object is a hard error; unresolved joins
// leave nil codes and propagate silently.
func (rs *ReferenceSet) Explode(apps []models.ApplicationRecord) ([]ExplodedRow, error) {
	var out []ExplodedRow

	for _, app := range apps {
		years := make([]string, 0, len(app.RiskInfo))
		for y := range app.RiskInfo {
			years = append(years, y)
		}
		sort.Strings(years)

		branchPL := rs.resolveBranchCode(app.BankCodePL, app.BranchNumberPL)

		for _, y := range years {
			year, err := strconv.Atoi(y)
			if err != nil {
				return nil, fmt.Errorf("loan %s: riskInfo key %q is not a year", app.LoanID, y)
			}

			var report models.TaxReport
			if err := json.Unmarshal([]byte(app.RiskInfo[y]), &report); err != nil {
				return nil, fmt.Errorf("loan %s year %d: decode riskInfo payload: %w", app.LoanID, year, err)
			}

			row := ExplodedRow{
				PersonID:     app.PersonID,
				LoanID:       app.LoanID,
				InquiryID:    app.InquiryID,
				ProductCode:  app.ProductCode,
				CPF:          report.CPF,
				Timestamp:    app.Timestamp,
				ReportYear:   year,
				StatusText:   report.FullStatusText,
				Bank:         report.Bank,
				Branch:       report.Branch,
				BranchCodePL: branchPL,
			}

			if report.Bank != nil {
				if code, ok := rs.bankByName[*report.Bank]; ok {
					row.BankCode = &code
				}
			}
			if row.BankCode != nil && report.Branch != nil {
				row.BranchCode = rs.resolveBranchCode(*row.BankCode, *report.Branch)
			}

			out = append(out, row)
		}
	}

	return out, nil
}

func (rs *ReferenceSet) resolveBranchCode(bankCode, branch string) *string {
	if code, ok := rs.branchCode[branchKey{bankCode: bankCode, branch: branch}]; ok {
		return code
	}
	return nil
}
