package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/adapters/dataset"
	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/adapters/export"
	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/adapters/opener"
	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/config"
	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/ports"
	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/repository/features"
	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/repository/runs"
	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/services/feature"
)

type runRequest struct {
	Datasets        map[string]string `json:"datasets,omitempty"`
	IncomeTablePath string            `json:"income_table_path,omitempty"`
	ExportPath      string            `json:"export_path,omitempty"`
	FeatureTable    string            `json:"feature_table,omitempty"`
	Workers         int               `json:"workers,omitempty"`
	TimeoutMin      int               `json:"timeout_minutes,omitempty"`
}

// Runs starts a pipeline run (POST) or reports run records (GET).
func (h *Handlers) Runs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.startRun(w, r)
	case http.MethodGet:
		h.getRuns(w, r)
	default:
		h.JSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "use POST or GET"})
	}
}

func (h *Handlers) startRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&req); err != nil {
		h.Logger.Printf("[RUN][REQ][ERR] bad JSON: %v", err)
		h.JSON(w, http.StatusBadRequest, map[string]string{"error": "bad JSON: " + err.Error()})
		return
	}

	cfg := h.Pipeline
	if req.IncomeTablePath != "" {
		cfg.IncomeTablePath = req.IncomeTablePath
	}
	if req.ExportPath != "" {
		cfg.ExportPath = req.ExportPath
	}
	if req.FeatureTable != "" {
		cfg.FeatureTable = req.FeatureTable
	}
	if req.Workers > 0 {
		cfg.Workers = req.Workers
	}
	if len(req.Datasets) > 0 {
		merged := make(map[string]string, len(cfg.Datasets))
		for k, v := range cfg.Datasets {
			merged[k] = v
		}
		for k, v := range req.Datasets {
			merged[k] = v
		}
		cfg.Datasets = merged
	}

	runID := uuid.NewString()

	insCtx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := runs.InsertRun(insCtx, h.Mongo, runs.Record{ID: runID}); err != nil {
		h.Logger.Printf("[RUN][REQ][ERR] insert run record: %v", err)
		h.JSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	timeout := 15 * time.Minute
	if req.TimeoutMin > 0 {
		timeout = time.Duration(req.TimeoutMin) * time.Minute
	}

	go h.executeRun(runID, cfg, timeout)

	h.JSON(w, http.StatusAccepted, map[string]any{
		"run_id":   runID,
		"status":   runs.StatusStarted,
		"datasets": cfg.Datasets,
	})
}

func (h *Handlers) executeRun(runID string, cfg config.PipelineConfig, timeout time.Duration) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	ctx = context.WithValue(ctx, ports.CtxRunID, runID)

	compound := opener.NewCompoundOpener(
		opener.NewHTTPOpener(h.HTTP),
		opener.NewS3Opener(h.S3.Client),
		opener.NewLocalOpener(),
		h.S3.Bucket,
	)

	exporters := []ports.FeatureExporter{h.exporterFor(cfg.ExportPath)}
	if cfg.FeatureTable != "" && h.Postgres != nil {
		exporters = append(exporters, features.NewRepo(h.Postgres, cfg.FeatureTable))
	}

	pipe := feature.NewPipeline(feature.Deps{
		Loader:     dataset.NewLoader(compound, cfg.Datasets),
		Opener:     compound,
		IncomePath: cfg.IncomeTablePath,
		Exporters:  exporters,
		Workers:    cfg.Workers,
	})

	report, err := pipe.Run(ctx)

	fin := runs.Finish{
		Status:       runs.StatusSucceeded,
		Applications: report.Applications,
		ExplodedRows: report.ExplodedRows,
		FeatureRows:  report.FeatureRows,
		SkippedNoCPF: report.Stats.SkippedNoCPF,
		AmbiguousPL:  report.Stats.AmbiguousBranchPL,
		UnknownCodes: report.Stats.UnknownBranchCodes,
		Duration:     time.Since(start),
	}
	if err != nil {
		msg := err.Error()
		fin.Status = runs.StatusFailed
		fin.Errors = &msg
		h.Logger.Printf("[RUN][ERR][BG] run_id=%s err=%v took=%s", runID, err, time.Since(start))
	} else {
		h.Logger.Printf("[RUN][OK][BG] run_id=%s applications=%d features=%d took=%s",
			runID, report.Applications, report.FeatureRows, time.Since(start))
	}

	finCtx, finCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer finCancel()
	if err := runs.FinishRun(finCtx, h.Mongo, runID, fin); err != nil {
		h.Logger.Printf("[RUN][ERR][BG] run_id=%s update record: %v", runID, err)
	}
}

func (h *Handlers) exporterFor(path string) ports.FeatureExporter {
	if strings.HasPrefix(path, "s3://") {
		if u := strings.TrimPrefix(path, "s3://"); strings.Contains(u, "/") {
			parts := strings.SplitN(u, "/", 2)
			return export.NewS3Exporter(h.S3.Client, parts[0], parts[1])
		}
	}
	return export.NewLocalExporter(path)
}

func (h *Handlers) getRuns(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if id := r.URL.Query().Get("id"); id != "" {
		rec, err := runs.FindRunByID(ctx, h.Mongo, id)
		if err != nil {
			h.JSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		h.JSON(w, http.StatusOK, rec)
		return
	}

	list, err := runs.ListRuns(ctx, h.Mongo, 20)
	if err != nil {
		h.JSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	h.JSON(w, http.StatusOK, map[string]any{"runs": list})
}
