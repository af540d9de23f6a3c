package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/churn-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS training_runs (
	id         TEXT PRIMARY KEY,
	model_id   TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'complete',
	run        TEXT NOT NULL,
	model      BLOB NOT NULL,
	encoding   TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS customer_scores (
	id                TEXT PRIMARY KEY,
	model_id          TEXT NOT NULL,
	batch_id          TEXT NOT NULL,
	position          INTEGER NOT NULL,
	customer_id       TEXT NOT NULL,
	churn_probability REAL NOT NULL,
	predicted_label   TEXT NOT NULL,
	scored_at         DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_training_runs_model_id ON training_runs(model_id);
CREATE INDEX IF NOT EXISTS idx_training_runs_created_at ON training_runs(created_at);
CREATE INDEX IF NOT EXISTS idx_customer_scores_model_batch ON customer_scores(model_id, batch_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run *model.TrainingRun, modelBlob, encodingJSON []byte) error {
	runJSON, err := json.Marshal(run)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal run")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO training_runs (id, model_id, status, run, model, encoding, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.ModelID, string(run.Status), string(runJSON), modelBlob, string(encodingJSON), run.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert run %s", run.ID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.TrainingRun, error) {
	return s.scanRun(s.db.QueryRowContext(ctx,
		`SELECT run FROM training_runs WHERE id = ?`, runID), runID)
}

func (s *SQLiteStore) LatestRun(ctx context.Context) (*model.TrainingRun, error) {
	return s.scanRun(s.db.QueryRowContext(ctx,
		`SELECT run FROM training_runs ORDER BY created_at DESC, id DESC LIMIT 1`), "latest")
}

func (s *SQLiteStore) scanRun(row *sql.Row, runID string) (*model.TrainingRun, error) {
	var runJSON string
	if err := row.Scan(&runJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eris.Errorf("sqlite: run %s not found", runID)
		}
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	var run model.TrainingRun
	if err := json.Unmarshal([]byte(runJSON), &run); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal run %s", runID)
	}
	return &run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.TrainingRun, error) {
	query := `SELECT run FROM training_runs`
	var args []any
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.TrainingRun
	for rows.Next() {
		var runJSON string
		if err := rows.Scan(&runJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		var run model.TrainingRun
		if err := json.Unmarshal([]byte(runJSON), &run); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal run")
		}
		runs = append(runs, run)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs")
}

func (s *SQLiteStore) GetModel(ctx context.Context, modelID string) ([]byte, []byte, error) {
	var blob []byte
	var encoding string
	err := s.db.QueryRowContext(ctx,
		`SELECT model, encoding FROM training_runs WHERE model_id = ? ORDER BY created_at DESC LIMIT 1`,
		modelID,
	).Scan(&blob, &encoding)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, eris.Errorf("sqlite: model %s not found", modelID)
		}
		return nil, nil, eris.Wrapf(err, "sqlite: get model %s", modelID)
	}
	return blob, []byte(encoding), nil
}

func (s *SQLiteStore) SaveScores(ctx context.Context, modelID, batchID string, scores []model.CustomerScore) error {
	if len(scores) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin scores tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO customer_scores (id, model_id, batch_id, position, customer_id, churn_probability, predicted_label, scored_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare scores insert")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i, sc := range scores {
		if _, err := stmt.ExecContext(ctx, uuid.New().String(), modelID, batchID, i, sc.CustomerID, sc.ChurnProbability, sc.PredictedLabel, now); err != nil {
			return eris.Wrapf(err, "sqlite: insert score for %s", sc.CustomerID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit scores")
}

func (s *SQLiteStore) ListScores(ctx context.Context, modelID, batchID string) ([]model.CustomerScore, error) {
	query := `SELECT customer_id, churn_probability, predicted_label FROM customer_scores WHERE model_id = ? AND batch_id = ? ORDER BY position`
	args := []any{modelID, batchID}
	if batchID == "" {
		query = `SELECT customer_id, churn_probability, predicted_label FROM customer_scores
			WHERE model_id = ? AND batch_id = (
				SELECT batch_id FROM customer_scores WHERE model_id = ? ORDER BY scored_at DESC, rowid DESC LIMIT 1)
			ORDER BY position`
		args = []any{modelID, modelID}
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list scores for %s", modelID)
	}
	defer rows.Close()

	var scores []model.CustomerScore
	for rows.Next() {
		var sc model.CustomerScore
		if err := rows.Scan(&sc.CustomerID, &sc.ChurnProbability, &sc.PredictedLabel); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan score")
		}
		scores = append(scores, sc)
	}
	return scores, eris.Wrap(rows.Err(), "sqlite: list scores")
}
