package ports

import (
	"context"

	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/models"
)

type ctxKey string

const CtxRunID ctxKey = "run_id"

// Logical dataset names the pipeline loads.
const (
	DatasetApplications = "applications"
	DatasetBanks        = "bank_reference"
	DatasetBranches     = "branch_reference"
)

// DatasetLoader fetches one source table by logical name as raw
// header-keyed rows; per-dataset parsing happens on top of it.
type DatasetLoader interface {
	Load(ctx context.Context, dataset string) ([]map[string]string, error)
}

// FeatureExporter hands the final feature table to one destination.
type FeatureExporter interface {
	Export(ctx context.Context, rows []models.FeatureRow) error
}
