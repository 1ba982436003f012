package runs

import (
	"context"
	"fmt"
	"time"

	mg "github.com/jardesonbarbosa-openco/fs-preprocessing/internal/config/connections/mongo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const RunsCollection = "feature_runs"

const (
	StatusStarted   = "started"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Record is one pipeline run: what it read, what it produced and how it
// ended.
type Record struct {
	ID           string     `bson:"_id" json:"id"`
	Status       string     `bson:"status" json:"status"`
	Applications int        `bson:"applications" json:"applications"`
	ExplodedRows int        `bson:"exploded_rows" json:"exploded_rows"`
	FeatureRows  int        `bson:"feature_rows" json:"feature_rows"`
	SkippedNoCPF int        `bson:"skipped_no_cpf" json:"skipped_no_cpf"`
	AmbiguousPL  int        `bson:"ambiguous_branch_pl" json:"ambiguous_branch_pl"`
	UnknownCodes int        `bson:"unknown_branch_codes" json:"unknown_branch_codes"`
	Errors       *string    `bson:"errors,omitempty" json:"errors,omitempty"`
	DurationMs   int64      `bson:"duration_ms" json:"duration_ms"`
	CreatedAt    time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at" json:"updated_at"`
	FinishedAt   *time.Time `bson:"finished_at,omitempty" json:"finished_at,omitempty"`
}

func InsertRun(ctx context.Context, m *mg.Mongo, rec Record) error {
	if m == nil || m.Client == nil || m.Database == nil {
		return mongo.ErrClientDisconnected
	}

	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	if rec.Status == "" {
		rec.Status = StatusStarted
	}

	_, err := m.Database.Collection(RunsCollection).InsertOne(ctx, rec, options.InsertOne())
	return err
}

type Finish struct {
	Status       string
	Applications int
	ExplodedRows int
	FeatureRows  int
	SkippedNoCPF int
	AmbiguousPL  int
	UnknownCodes int
	Errors       *string
	Duration     time.Duration
}

func FinishRun(ctx context.Context, m *mg.Mongo, runID string, fin Finish) error {
	if m == nil || m.Database == nil {
		return mongo.ErrClientDisconnected
	}
	if runID == "" {
		return fmt.Errorf("empty runID")
	}

	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"status":               fin.Status,
			"applications":         fin.Applications,
			"exploded_rows":        fin.ExplodedRows,
			"feature_rows":         fin.FeatureRows,
			"skipped_no_cpf":       fin.SkippedNoCPF,
			"ambiguous_branch_pl":  fin.AmbiguousPL,
			"unknown_branch_codes": fin.UnknownCodes,
			"errors":               fin.Errors,
			"duration_ms":          fin.Duration.Milliseconds(),
			"updated_at":           now,
			"finished_at":          now,
		},
	}

	res, err := m.Database.Collection(RunsCollection).UpdateOne(ctx, bson.M{"_id": runID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("no run found with id %s", runID)
	}
	return nil
}

func FindRunByID(ctx context.Context, m *mg.Mongo, id string) (Record, error) {
	var out Record
	if m == nil || m.Database == nil {
		return out, mongo.ErrClientDisconnected
	}
	if err := m.Database.Collection(RunsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		return out, fmt.Errorf("not found: %w", err)
	}
	return out, nil
}

func ListRuns(ctx context.Context, m *mg.Mongo, limit int64) ([]Record, error) {
	if m == nil || m.Database == nil {
		return nil, mongo.ErrClientDisconnected
	}
	if limit <= 0 {
		limit = 20
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cur, err := m.Database.Collection(RunsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
