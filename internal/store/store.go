// Package store persists training runs, serialized models, evaluation
// reports and scoring outputs. Two backends implement the same interface:
// SQLite for local use and Postgres for shared deployments.
package store

import (
	"context"

	"github.com/sells-group/churn-cli/internal/model"
)

// RunFilter specifies criteria for listing training runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
}

// Store defines the persistence interface for the churn pipeline.
type Store interface {
	// Training runs. SaveRun persists the run row together with the gob
	// model blob and the JSON encoding map it was trained with.
	SaveRun(ctx context.Context, run *model.TrainingRun, modelBlob, encodingJSON []byte) error
	GetRun(ctx context.Context, runID string) (*model.TrainingRun, error)
	LatestRun(ctx context.Context) (*model.TrainingRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.TrainingRun, error)

	// Model artifacts.
	GetModel(ctx context.Context, modelID string) (modelBlob, encodingJSON []byte, err error)

	// Scoring output table, read by the reporting layer. Each SaveScores call
	// persists one batch under batchID, so batches scored with the same model
	// stay separately readable. ListScores with an empty batchID returns the
	// model's most recent batch.
	SaveScores(ctx context.Context, modelID, batchID string, scores []model.CustomerScore) error
	ListScores(ctx context.Context, modelID, batchID string) ([]model.CustomerScore, error)

	// Lifecycle.
	Migrate(ctx context.Context) error
	Close() error
}
