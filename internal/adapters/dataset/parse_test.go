package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseApplications(t *testing.T) {
	rows := []map[string]string{{
		"person_id":        "P1",
		"loan_id":          "L1",
		"irpf_id":          "Q1",
		"time_stamp":       "2020-01-01 10:30:00",
		"product_code":     "PL",
		"bank_code_pl":     "41",
		"branch_number_pl": "22",
		"riskInfo":         `{"2019": {"cpf": "111", "full_status_text": "ok"}}`,
	}}

	apps, err := ParseApplications(rows)
	require.NoError(t, err)
	require.Len(t, apps, 1)

	assert.Equal(t, "P1", apps[0].PersonID)
	assert.Equal(t, "Q1", apps[0].InquiryID)
	assert.Equal(t, 2020, apps[0].Timestamp.Year())
	assert.Equal(t, "041", apps[0].BankCodePL)
	assert.Equal(t, "0022", apps[0].BranchNumberPL)
	require.Contains(t, apps[0].RiskInfo, "2019")
}

func TestParseApplicationsMergesValueColumn(t *testing.T) {
	rows := []map[string]string{{
		"loan_id":    "L2",
		"time_stamp": "2020-05-05",
		"value":      `{"riskInfo": {"2018": {}}, "loan_id": "from-json", "rev": "3"}`,
	}}

	apps, err := ParseApplications(rows)
	require.NoError(t, err)
	require.Len(t, apps, 1)

	// native columns win over JSON duplicates
	assert.Equal(t, "L2", apps[0].LoanID)
	assert.Equal(t, "3", apps[0].Rev)
	require.Contains(t, apps[0].RiskInfo, "2018")
}

func TestParseApplicationsRejectsBadRows(t *testing.T) {
	_, err := ParseApplications([]map[string]string{{
		"loan_id": "L3", "time_stamp": "not a date", "riskInfo": `{"2019": {}}`,
	}})
	assert.Error(t, err)

	_, err = ParseApplications([]map[string]string{{
		"loan_id": "L4", "time_stamp": "2020-01-01",
	}})
	assert.Error(t, err, "empty riskInfo violates the record invariant")

	_, err = ParseApplications([]map[string]string{{
		"loan_id": "L5", "time_stamp": "2020-01-01", "riskInfo": `{}`,
	}})
	assert.Error(t, err)
}

func TestParseBanksRenamesAndFills(t *testing.T) {
	out := ParseBanks([]map[string]string{
		{"BankName": "Banco HSBC", "Codigo_Banco": "399"},
		{"BankName": "", "Codigo_Banco": "000"},
		{"bank": "Banco Personnalite", "bank_code": "341"},
	})
	require.Len(t, out, 3)

	assert.Equal(t, "Banco HSBC", out[0].Bank)
	assert.Equal(t, "399", out[0].BankCode)
	assert.Equal(t, "###", out[1].Bank)
	assert.Equal(t, "Banco Personnalite", out[2].Bank)
}

func TestParseBranches(t *testing.T) {
	out := ParseBranches([]map[string]string{
		{"Bank": "399", "Branch": "0022", "branch_code": "HSBC"},
		{"Bank": "399", "Branch": "0099", "branch_code": ""},
		{"Bank": "399", "Branch": "0100", "branch_code": "NOPE"},
	})
	require.Len(t, out, 3)

	require.NotNil(t, out[0].BranchCode)
	assert.Equal(t, "HSBC", *out[0].BranchCode)
	assert.Equal(t, "399", out[0].BankCode)
	assert.Nil(t, out[1].BranchCode)
	assert.Nil(t, out[2].BranchCode, "out-of-vocabulary token is dropped")
}

func TestZfill(t *testing.T) {
	assert.Equal(t, "041", zfill("41", 3))
	assert.Equal(t, "0341", zfill("341", 4))
	assert.Equal(t, "12345", zfill("12345", 3))
	assert.Equal(t, "", zfill("", 3))
}
