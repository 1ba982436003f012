package export

import (
	"encoding/csv"
	"io"
	"log"
	"strconv"

	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/models"
)

const timestampLayout = "2006-01-02 15:04:05"

// WriteCSV renders the feature table with presentation column names,
// semicolon-separated as the downstream feature store expects.
func WriteCSV(w io.Writer, rows []models.FeatureRow) error {
	log.Printf("[EXPORT][CSV] columns=%v rows=%d", models.FeatureColumns, len(rows))

	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(models.FeatureColumns); err != nil {
		return err
	}

	for _, row := range rows {
		record := make([]string, 0, len(models.FeatureColumns))
		record = append(record,
			row.CPF,
			row.Timestamp.Format(timestampLayout),
			strconv.Itoa(row.TimesDeclared),
			strconv.Itoa(row.TimesRefunded),
			strconv.Itoa(row.Stars),
			strconv.Itoa(row.Year),
		)
		for _, code := range models.BranchCodes {
			record = append(record, strconv.Itoa(row.BrandCounts[code]))
		}
		declared := ""
		if row.BranchDeclared != nil {
			declared = *row.BranchDeclared
		}
		record = append(record, declared, row.PresumedIncome.String())

		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
