package models

import "time"

// ApplicationRecord is one tax-authority inquiry attached to a loan
// application. RiskInfo maps a report year ("2018") to the raw JSON payload
// returned for that year; the payload may be an empty object but is never
// absent for a loaded record.
type ApplicationRecord struct {
	PersonID       string
	LoanID         string
	InquiryID      string
	Timestamp      time.Time
	ProductCode    string
	State          string
	Rev            string
	RiskInfo       map[string]string
	BankCodePL     string // zero-padded to 3
	BranchNumberPL string // zero-padded to 4
}

// TaxReport is the decoded riskInfo payload for one year. Every field is
// optional; an empty payload decodes to all-nil.
type TaxReport struct {
	CPF            *string `json:"cpf"`
	FullStatusText *string `json:"full_status_text"`
	Bank           *string `json:"bank"`
	Branch         *string `json:"branch"`
}
