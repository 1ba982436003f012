package features

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/config/connections/postgres"
	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/models"
)

// Repo upserts feature rows into Postgres keyed by (cpf, time_stamp).
// It implements ports.FeatureExporter.
type Repo struct {
	pg    *postgres.Postgres
	table string
}

func NewRepo(pg *postgres.Postgres, table string) *Repo {
	return &Repo{pg: pg, table: table}
}

func (r *Repo) Export(ctx context.Context, rows []models.FeatureRow) error {
	if r.pg == nil || r.pg.Pool == nil {
		return fmt.Errorf("postgres not available")
	}

	t0 := time.Now()
	for i, row := range rows {
		if err := r.upsert(ctx, row); err != nil {
			return fmt.Errorf("feature row %d (cpf=%s): %w", i, row.CPF, err)
		}
	}
	log.Printf("[EXPORT][PG][DONE] table=%s rows=%d duration=%s", r.table, len(rows), time.Since(t0))
	return nil
}

func (r *Repo) upsert(ctx context.Context, row models.FeatureRow) error {
	query := `
		INSERT INTO ` + r.table + ` (
			cpf, time_stamp, times_declared, times_refunded, stars, year,
			pers, stil, prim, outr, hsbc, vang, unic, espa, priv,
			branch_declared, presumed_income, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, NOW(), NOW()
		)
		ON CONFLICT (cpf, time_stamp) DO UPDATE SET
			times_declared = EXCLUDED.times_declared,
			times_refunded = EXCLUDED.times_refunded,
			stars = EXCLUDED.stars,
			year = EXCLUDED.year,
			pers = EXCLUDED.pers,
			stil = EXCLUDED.stil,
			prim = EXCLUDED.prim,
			outr = EXCLUDED.outr,
			hsbc = EXCLUDED.hsbc,
			vang = EXCLUDED.vang,
			unic = EXCLUDED.unic,
			espa = EXCLUDED.espa,
			priv = EXCLUDED.priv,
			branch_declared = EXCLUDED.branch_declared,
			presumed_income = EXCLUDED.presumed_income,
			updated_at = NOW()`

	args := make([]any, 0, 17)
	args = append(args, row.CPF, row.Timestamp, row.TimesDeclared, row.TimesRefunded, row.Stars, row.Year)
	for _, code := range models.BranchCodes {
		args = append(args, row.BrandCounts[code])
	}
	args = append(args, row.BranchDeclared, row.PresumedIncome)

	_, err := r.pg.Pool.Exec(ctx, query, args...)
	return err
}
