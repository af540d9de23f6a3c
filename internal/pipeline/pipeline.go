// Package pipeline orchestrates the churn workflow end to end: validate a
// raw batch, engineer features, split, train the classifier, evaluate, and
// persist the run; and apply a stored model to new batches. All state is
// explicit: batches, encodings and models pass between components as values,
// with no shared mutable globals.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/churn-cli/internal/config"
	"github.com/sells-group/churn-cli/internal/dataset"
	"github.com/sells-group/churn-cli/internal/eval"
	"github.com/sells-group/churn-cli/internal/feature"
	"github.com/sells-group/churn-cli/internal/forest"
	"github.com/sells-group/churn-cli/internal/model"
	"github.com/sells-group/churn-cli/internal/schema"
	"github.com/sells-group/churn-cli/internal/scorer"
	"github.com/sells-group/churn-cli/internal/store"
)

// Pipeline wires the churn components to configuration and persistence.
type Pipeline struct {
	cfg   *config.Config
	store store.Store
}

// New creates a Pipeline.
func New(cfg *config.Config, st store.Store) *Pipeline {
	return &Pipeline{cfg: cfg, store: st}
}

// TrainResult bundles the outcome of one training run.
type TrainResult struct {
	Run    model.TrainingRun
	Model  *forest.TrainedModel
	Report *model.EvaluationReport
}

// Train runs the full training flow on a raw labeled batch. Validation and
// encoding errors abort the whole batch: no model is trained on
// silently-dropped or silently-defaulted rows.
func (p *Pipeline) Train(ctx context.Context, rows []model.RawRecord) (*TrainResult, error) {
	log := zap.L().With(zap.String("component", "pipeline"))
	log.Info("training started", zap.Int("rows", len(rows)))

	records, err := schema.Validate(rows, true)
	if err != nil {
		return nil, err
	}

	enc := feature.FitEncoding(records)
	matrix, err := feature.Transform(records, enc)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: engineer features")
	}
	labels, err := feature.Labels(records)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: extract labels")
	}

	split, err := dataset.TrainEvalSplit(matrix, labels, p.cfg.Split.EvalFraction, p.cfg.Split.Seed)
	if err != nil {
		return nil, err
	}

	tm, err := forest.Train(split.TrainX, split.TrainY, enc, p.cfg.Forest)
	if err != nil {
		return nil, err
	}

	report, err := eval.Evaluate(tm, split.EvalX, split.EvalY)
	if err != nil {
		return nil, err
	}

	run := model.TrainingRun{
		ID:           uuid.New().String(),
		ModelID:      tm.ID,
		Status:       model.RunStatusComplete,
		Seed:         p.cfg.Forest.Seed,
		Estimators:   p.cfg.Forest.Estimators,
		Rows:         len(records),
		TrainRows:    split.TrainX.Len(),
		EvalRows:     split.EvalX.Len(),
		EvalFraction: p.cfg.Split.EvalFraction,
		Report:       report,
		CreatedAt:    time.Now().UTC(),
	}

	blob, err := tm.MarshalBinary()
	if err != nil {
		return nil, err
	}
	encJSON, err := enc.MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: marshal encoding")
	}
	if err := p.store.SaveRun(ctx, &run, blob, encJSON); err != nil {
		return nil, eris.Wrap(err, "pipeline: persist run")
	}

	log.Info("training complete",
		zap.String("run_id", run.ID),
		zap.String("model_id", tm.ID),
		zap.Int("train_rows", run.TrainRows),
		zap.Int("eval_rows", run.EvalRows),
		zap.Float64("precision", report.Churned.Precision),
		zap.Float64("recall", report.Churned.Recall),
	)
	return &TrainResult{Run: run, Model: tm, Report: report}, nil
}

// LoadModel reloads a persisted model by ID.
func (p *Pipeline) LoadModel(ctx context.Context, modelID string) (*forest.TrainedModel, error) {
	blob, _, err := p.store.GetModel(ctx, modelID)
	if err != nil {
		return nil, err
	}
	var tm forest.TrainedModel
	if err := tm.UnmarshalBinary(blob); err != nil {
		return nil, err
	}
	return &tm, nil
}

// Score validates a raw unlabeled batch, applies the model through its
// stored encoding, persists the scoring table under a fresh batch ID, and
// returns the scores in input order (or sorted when requested).
func (p *Pipeline) Score(ctx context.Context, tm *forest.TrainedModel, rows []model.RawRecord, opts scorer.Options) ([]model.CustomerScore, error) {
	records, err := schema.Validate(rows, false)
	if err != nil {
		return nil, err
	}
	scores, err := scorer.Score(tm, records, opts)
	if err != nil {
		return nil, err
	}
	batchID := uuid.New().String()
	if err := p.store.SaveScores(ctx, tm.ID, batchID, scores); err != nil {
		return nil, eris.Wrap(err, "pipeline: persist scores")
	}
	zap.L().Info("scores persisted",
		zap.String("model_id", tm.ID),
		zap.String("batch_id", batchID),
		zap.Int("customers", len(scores)),
	)
	return scores, nil
}

// Evaluate re-runs evaluation of a stored model against a labeled batch,
// using the model's stored encoding.
func (p *Pipeline) Evaluate(ctx context.Context, tm *forest.TrainedModel, rows []model.RawRecord) (*model.EvaluationReport, error) {
	records, err := schema.Validate(rows, true)
	if err != nil {
		return nil, err
	}
	matrix, err := feature.Transform(records, tm.Encoding)
	if err != nil {
		return nil, err
	}
	labels, err := feature.Labels(records)
	if err != nil {
		return nil, err
	}
	return eval.Evaluate(tm, matrix, labels)
}
