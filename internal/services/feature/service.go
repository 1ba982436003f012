package feature

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/adapters/dataset"
	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/models"
	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/ports"
	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/transform"
)

// ErrPipelineConsumed means Run was called twice on the same Pipeline. A
// pipeline carries no cross-run state; build a fresh one per run.
var ErrPipelineConsumed = errors.New("pipeline already ran; create a new one")

const defaultWorkers = 8

type Deps struct {
	Loader     ports.DatasetLoader
	Opener     ports.FileOpener // income lookup table
	IncomePath string
	Exporters  []ports.FeatureExporter
	Workers    int // parallel resolve workers
}

// Report summarizes one run for the caller and the run record.
type Report struct {
	Applications int
	ExplodedRows int
	FeatureRows  int
	Stats        transform.AggregateStats
	Duration     time.Duration
}

// Pipeline runs the feature computation end to end:
// load -> join/explode -> classify -> aggregate -> resolve -> export.
// Single use; each stage consumes the previous stage's full output.
type Pipeline struct {
	deps       Deps
	classifier *transform.StatusClassifier
	ratings    *transform.RatingTable
	ran        atomic.Bool
}

func NewPipeline(deps Deps) *Pipeline {
	if deps.Workers <= 0 {
		deps.Workers = defaultWorkers
	}
	return &Pipeline{
		deps:       deps,
		classifier: transform.NewStatusClassifier(),
		ratings:    transform.NewRatingTable(),
	}
}

func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	if !p.ran.CompareAndSwap(false, true) {
		return Report{}, ErrPipelineConsumed
	}

	t0 := time.Now()
	var report Report

	apps, refs, incomes, err := p.load(ctx)
	if err != nil {
		return report, err
	}
	report.Applications = len(apps)

	exploded, err := refs.Explode(apps)
	if err != nil {
		return report, fmt.Errorf("explode: %w", err)
	}
	report.ExplodedRows = len(exploded)
	log.Printf("[PIPE][JOIN][DONE] applications=%d rows=%d", len(apps), len(exploded))

	classified := p.classify(exploded)
	log.Printf("[PIPE][CLASSIFY][DONE] rows=%d", len(classified))

	aggregates, stats := transform.NewAggregator(p.ratings).Aggregate(classified)
	report.Stats = stats
	log.Printf("[PIPE][AGG][DONE] groups=%d skipped_no_cpf=%d ambiguous_branch_pl=%d unknown_branch_codes=%d",
		len(aggregates), stats.SkippedNoCPF, stats.AmbiguousBranchPL, stats.UnknownBranchCodes)

	features, err := p.resolve(ctx, aggregates, incomes)
	if err != nil {
		return report, err
	}
	report.FeatureRows = len(features)
	log.Printf("[PIPE][RESOLVE][DONE] rows=%d", len(features))

	for _, exp := range p.deps.Exporters {
		if err := exp.Export(ctx, features); err != nil {
			return report, fmt.Errorf("export: %w", err)
		}
	}

	report.Duration = time.Since(t0)
	log.Printf("[PIPE][DONE] features=%d duration=%s", len(features), report.Duration)
	return report, nil
}

func (p *Pipeline) load(ctx context.Context) ([]models.ApplicationRecord, *transform.ReferenceSet, *transform.IncomeTable, error) {
	rawApps, err := p.deps.Loader.Load(ctx, ports.DatasetApplications)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load applications: %w", err)
	}
	apps, err := dataset.ParseApplications(rawApps)
	if err != nil {
		return nil, nil, nil, err
	}

	rawBanks, err := p.deps.Loader.Load(ctx, ports.DatasetBanks)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load bank reference: %w", err)
	}
	rawBranches, err := p.deps.Loader.Load(ctx, ports.DatasetBranches)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load branch reference: %w", err)
	}
	refs := transform.NewReferenceSet(dataset.ParseBanks(rawBanks), dataset.ParseBranches(rawBranches))

	rc, _, err := p.deps.Opener.Open(ctx, p.deps.IncomePath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open income table: %w", err)
	}
	defer rc.Close()
	incomes, err := transform.ParseIncomeTable(rc)
	if err != nil {
		return nil, nil, nil, err
	}

	log.Printf("[PIPE][LOAD][DONE] applications=%d banks=%d branches=%d income_years=%v",
		len(apps), len(rawBanks), len(rawBranches), incomes.Years())
	return apps, refs, incomes, nil
}

func (p *Pipeline) classify(rows []transform.ExplodedRow) []transform.ClassifiedRow {
	out := make([]transform.ClassifiedRow, len(rows))
	for i, row := range rows {
		out[i] = transform.ClassifiedRow{
			ExplodedRow: row,
			Flags:       p.classifier.Classify(row.StatusText),
		}
	}
	return out
}

// resolve computes presumed income per aggregate row. Rows are
// independent, so they are fanned out over a bounded worker group with
// index-addressed results; the first unresolvable row cancels the rest.
func (p *Pipeline) resolve(ctx context.Context, aggs []transform.ApplicantAggregate, table *transform.IncomeTable) ([]models.FeatureRow, error) {
	resolver := transform.NewResolver(table)
	out := make([]models.FeatureRow, len(aggs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.deps.Workers)

	for i, agg := range aggs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			brandValues := make(map[string]int, len(models.BranchCodes)+1)
			brandValues[models.BranchCodeSelf] = agg.Stars
			for _, code := range models.BranchCodes {
				brandValues[code] = agg.BrandCounts[code]
			}

			income, err := resolver.Resolve(agg.Year, brandValues, agg.BranchDeclared)
			if err != nil {
				return fmt.Errorf("resolve cpf=%s time_stamp=%s year=%d: %w",
					agg.CPF, agg.Timestamp.Format(time.RFC3339), agg.Year, err)
			}

			out[i] = models.FeatureRow{
				CPF:            agg.CPF,
				Timestamp:      agg.Timestamp,
				TimesDeclared:  agg.Declarations,
				TimesRefunded:  agg.TaxRefunds,
				Stars:          agg.Stars,
				Year:           agg.Year,
				BrandCounts:    agg.BrandCounts,
				BranchDeclared: agg.BranchDeclared,
				PresumedIncome: income,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
