package dataset

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/models"
)

// placeholder for blank cells in the bank reference spreadsheet
const blankBankCell = "###"

// ParseApplications turns raw application rows into typed records. A row
// may carry a `value` column holding the original JSON document; its
// top-level keys are merged in, native columns winning over JSON
// duplicates. Bank and branch codes of the current loan are zero-padded
// to their canonical widths.
func ParseApplications(rows []map[string]string) ([]models.ApplicationRecord, error) {
	out := make([]models.ApplicationRecord, 0, len(rows))

	for i, row := range rows {
		row, err := mergeValueColumn(row)
		if err != nil {
			return nil, fmt.Errorf("applications row %d: %w", i, err)
		}

		ts := parseTimeLoose(row["time_stamp"])
		if ts == nil {
			return nil, fmt.Errorf("applications row %d: bad time_stamp %q", i, row["time_stamp"])
		}

		riskInfo, err := parseRiskInfo(row["riskInfo"])
		if err != nil {
			return nil, fmt.Errorf("applications row %d (loan %s): %w", i, row["loan_id"], err)
		}

		out = append(out, models.ApplicationRecord{
			PersonID:       row["person_id"],
			LoanID:         row["loan_id"],
			InquiryID:      row["irpf_id"],
			Timestamp:      *ts,
			ProductCode:    row["product_code"],
			State:          row["state"],
			Rev:            row["rev"],
			RiskInfo:       riskInfo,
			BankCodePL:     zfill(row["bank_code_pl"], 3),
			BranchNumberPL: zfill(row["branch_number_pl"], 4),
		})
	}

	return out, nil
}

// ParseBanks reads the bank reference, renaming the spreadsheet headers
// (BankName, Codigo_Banco) to the canonical bank/bank_code and filling
// blank cells with the "###" placeholder.
func ParseBanks(rows []map[string]string) []models.BankReferenceRow {
	out := make([]models.BankReferenceRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.BankReferenceRow{
			Bank:     orPlaceholder(pick(row, "bank", "BankName")),
			BankCode: orPlaceholder(pick(row, "bank_code", "Codigo_Banco")),
		})
	}
	return out
}

// ParseBranches reads the branch reference, renaming the spreadsheet
// headers (Bank, Branch) to bank_code/branch. A blank branch_code stays
// nil; a token outside the brand vocabulary is dropped with a warning.
func ParseBranches(rows []map[string]string) []models.BranchReferenceRow {
	out := make([]models.BranchReferenceRow, 0, len(rows))
	for _, row := range rows {
		r := models.BranchReferenceRow{
			BankCode: pick(row, "bank_code", "Bank"),
			Branch:   pick(row, "branch", "Branch"),
		}
		if code := row["branch_code"]; code != "" {
			if models.IsBranchCode(code) {
				r.BranchCode = &code
			} else {
				log.Printf("[DATA][BRANCH][WARN] unknown branch_code %q for bank=%s branch=%s",
					code, r.BankCode, r.Branch)
			}
		}
		out = append(out, r)
	}
	return out
}

func mergeValueColumn(row map[string]string) (map[string]string, error) {
	raw := row["value"]
	if strings.TrimSpace(raw) == "" {
		return row, nil
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decode value column: %w", err)
	}

	merged := make(map[string]string, len(row)+len(doc))
	for k, v := range doc {
		merged[k] = rawToCell(v)
	}
	for k, v := range row {
		if k == "value" {
			continue
		}
		if v != "" || merged[k] == "" {
			merged[k] = v
		}
	}
	return merged, nil
}

// rawToCell renders a JSON value the way it would appear in a flat CSV
// cell: strings unquoted, everything else as raw JSON.
func rawToCell(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func parseRiskInfo(raw string) (map[string]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("riskInfo is empty")
	}
	var byYear map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &byYear); err != nil {
		return nil, fmt.Errorf("decode riskInfo: %w", err)
	}
	if len(byYear) == 0 {
		return nil, fmt.Errorf("riskInfo has no year entries")
	}
	out := make(map[string]string, len(byYear))
	for year, payload := range byYear {
		out[year] = string(payload)
	}
	return out, nil
}

func pick(row map[string]string, keys ...string) string {
	for _, k := range keys {
		if v, ok := row[k]; ok && v != "" {
			return v
		}
	}
	return ""
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return blankBankCell
	}
	return s
}

func zfill(s string, width int) string {
	if s == "" {
		return s
	}
	for len(s) < width {
		s = "0" + s
	}
	return s
}

func parseTimeLoose(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
		"02/01/2006 15:04:05",
		"02/01/2006",
	}
	for _, l := range layouts {
		if t, err := time.ParseInLocation(l, s, time.UTC); err == nil {
			return &t
		}
	}
	return nil
}
