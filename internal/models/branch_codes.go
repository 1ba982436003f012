package models

// BranchCodeSelf is the self-declaration channel token. It appears in the
// presumed-income lookup table next to the brand vocabulary but is never a
// valid branch_code in the branch reference.
const BranchCodeSelf = "ESTR"

// BranchCodes is the closed brand vocabulary for the branch_code column,
// in export column order.
var BranchCodes = []string{
	"PERS", "STIL", "PRIM", "OUTR", "HSBC", "VANG", "UNIC", "ESPA", "PRIV",
}

var branchCodeSet = func() map[string]struct{} {
	s := make(map[string]struct{}, len(BranchCodes))
	for _, c := range BranchCodes {
		s[c] = struct{}{}
	}
	return s
}()

func IsBranchCode(s string) bool {
	_, ok := branchCodeSet[s]
	return ok
}
