package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/config"
	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/config/connections/mongo"
	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/config/connections/postgres"
	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/config/connections/s3"
)

type Handlers struct {
	Postgres *postgres.Postgres
	Mongo    *mongo.Mongo
	S3       *s3.S3
	HTTP     *http.Client

	Pipeline config.PipelineConfig

	Logger *log.Logger
}

func New(cfg *config.Config) *Handlers {
	return &Handlers{
		Postgres: cfg.Postgres,
		Mongo:    cfg.Mongo,
		S3:       cfg.S3,
		HTTP:     &http.Client{},
		Pipeline: cfg.Pipeline,
		Logger:   log.Default(),
	}
}

func (h *Handlers) JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
