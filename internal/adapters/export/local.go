package export

import (
	"context"
	"log"
	"os"

	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/models"
)

// LocalExporter writes the feature CSV to a filesystem path.
type LocalExporter struct {
	Path string
}

func NewLocalExporter(path string) *LocalExporter { return &LocalExporter{Path: path} }

func (e *LocalExporter) Export(_ context.Context, rows []models.FeatureRow) error {
	log.Printf("[EXPORT][FILE][START] path=%q rows=%d", e.Path, len(rows))
	f, err := os.Create(e.Path)
	if err != nil {
		log.Printf("[EXPORT][FILE][ERR] create: %v", err)
		return err
	}
	if err := WriteCSV(f, rows); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("[EXPORT][FILE][DONE] path=%q", e.Path)
	return nil
}
