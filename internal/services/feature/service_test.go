package feature

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/models"
	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/ports"
	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/transform"
)

type fakeLoader struct {
	tables map[string][]map[string]string
}

func (f *fakeLoader) Load(_ context.Context, dataset string) ([]map[string]string, error) {
	rows, ok := f.tables[dataset]
	if !ok {
		return nil, fmt.Errorf("unknown dataset %q", dataset)
	}
	return rows, nil
}

type fakeOpener struct {
	data []byte
}

func (f *fakeOpener) Open(_ context.Context, _ string) (io.ReadCloser, ports.Meta, error) {
	return io.NopCloser(bytes.NewReader(f.data)), ports.Meta{Source: "test"}, nil
}

type collectExporter struct {
	rows []models.FeatureRow
}

func (c *collectExporter) Export(_ context.Context, rows []models.FeatureRow) error {
	c.rows = rows
	return nil
}

const testIncomeJSON = `{
	"2018": {
		"ESTR": {"1": 1500, "2": 2100},
		"HSBC": {"1": 3000, "7": 9000},
		"PERS": {"1": 5000}
	}
}`

func testDeps(exp *collectExporter) Deps {
	return Deps{
		Loader: &fakeLoader{tables: map[string][]map[string]string{
			ports.DatasetApplications: {{
				"person_id":        "P1",
				"loan_id":          "L1",
				"irpf_id":          "Q1",
				"time_stamp":       "2020-01-01 00:00:00",
				"bank_code_pl":     "399",
				"branch_number_pl": "22",
				"riskInfo": `{
					"2018": {"cpf": "A1", "full_status_text": "", "bank": "Banco HSBC", "branch": "0022"},
					"2019": {"cpf": "A1", "full_status_text": "reagendada para crédito no banco", "bank": "Banco HSBC", "branch": "0022"}
				}`,
			}},
			ports.DatasetBanks: {
				{"BankName": "Banco HSBC", "Codigo_Banco": "399"},
			},
			ports.DatasetBranches: {
				{"Bank": "399", "Branch": "0022", "branch_code": "HSBC"},
				{"Bank": "399", "Branch": "0022", "branch_code": "HSBC"},
			},
		}},
		Opener:     &fakeOpener{data: []byte(testIncomeJSON)},
		IncomePath: "income.json",
		Exporters:  []ports.FeatureExporter{exp},
	}
}

func TestPipelineRun(t *testing.T) {
	exp := &collectExporter{}
	pipe := NewPipeline(testDeps(exp))

	report, err := pipe.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Applications)
	assert.Equal(t, 2, report.ExplodedRows)
	assert.Equal(t, 1, report.FeatureRows)
	require.Len(t, exp.rows, 1)

	row := exp.rows[0]
	assert.Equal(t, "A1", row.CPF)
	assert.Equal(t, 2020, row.Year)
	assert.Equal(t, 2, row.TimesDeclared)
	assert.Equal(t, 1, row.TimesRefunded)
	assert.Equal(t, 1, row.Stars)
	assert.Equal(t, 2, row.BrandCounts["HSBC"])
	require.NotNil(t, row.BranchDeclared)
	assert.Equal(t, "HSBC", *row.BranchDeclared)

	// candidates: ESTR bucket "1" (1500), HSBC clamped at "2"... missing,
	// declared branch HSBC at "1" (3000, since ESTR=1>0); max is 3000
	assert.True(t, row.PresumedIncome.Equal(decimal.NewFromInt(3000)), "got %s", row.PresumedIncome)
}

func TestPipelineSingleUse(t *testing.T) {
	exp := &collectExporter{}
	pipe := NewPipeline(testDeps(exp))

	_, err := pipe.Run(context.Background())
	require.NoError(t, err)

	_, err = pipe.Run(context.Background())
	assert.ErrorIs(t, err, ErrPipelineConsumed)
}

func TestPipelineYearBelowTableFailsRun(t *testing.T) {
	exp := &collectExporter{}
	deps := testDeps(exp)
	// income table starts after the inquiry year
	deps.Opener = &fakeOpener{data: []byte(`{"2021": {"HSBC": {"1": 100}}}`)}

	pipe := NewPipeline(deps)
	_, err := pipe.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, transform.ErrYearBucket)
	assert.Contains(t, err.Error(), "cpf=A1")
}

func TestPipelineMissingDatasetFailsRun(t *testing.T) {
	exp := &collectExporter{}
	deps := testDeps(exp)
	deps.Loader = &fakeLoader{tables: map[string][]map[string]string{}}

	pipe := NewPipeline(deps)
	_, err := pipe.Run(context.Background())
	assert.Error(t, err)
}
