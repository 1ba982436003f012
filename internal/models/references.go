package models

// BankReferenceRow maps a bank display name to its numeric code. Blank
// cells in the source spreadsheet are filled with the "###" placeholder at
// load time, so Bank is never empty after loading.
type BankReferenceRow struct {
	BankCode string
	Bank     string
}

// BranchReferenceRow maps (bank code, branch number) to a brand token from
// the closed vocabulary. BranchCode is nil when the source row carries no
// token.
type BranchReferenceRow struct {
	BankCode   string
	Branch     string
	BranchCode *string
}
