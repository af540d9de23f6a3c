package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/churn-cli/internal/db"
	"github.com/sells-group/churn-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// preparedStatements lists queries to prepare on each new connection.
var preparedStatements = map[string]string{
	"insert_run": `INSERT INTO training_runs (id, model_id, status, run, model, encoding, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
	"get_run":    `SELECT run FROM training_runs WHERE id = $1`,
	"get_model":  `SELECT model, encoding FROM training_runs WHERE model_id = $1 ORDER BY created_at DESC LIMIT 1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS training_runs (
	id         TEXT PRIMARY KEY,
	model_id   TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'complete',
	run        JSONB NOT NULL,
	model      BYTEA NOT NULL,
	encoding   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS customer_scores (
	id                TEXT PRIMARY KEY,
	model_id          TEXT NOT NULL,
	batch_id          TEXT NOT NULL,
	position          INTEGER NOT NULL,
	customer_id       TEXT NOT NULL,
	churn_probability DOUBLE PRECISION NOT NULL,
	predicted_label   TEXT NOT NULL,
	scored_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_training_runs_model_id ON training_runs(model_id);
CREATE INDEX IF NOT EXISTS idx_training_runs_created_at ON training_runs(created_at);
CREATE INDEX IF NOT EXISTS idx_customer_scores_model_batch ON customer_scores(model_id, batch_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, run *model.TrainingRun, modelBlob, encodingJSON []byte) error {
	runJSON, err := json.Marshal(run)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal run")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO training_runs (id, model_id, status, run, model, encoding, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID, run.ModelID, string(run.Status), runJSON, modelBlob, encodingJSON, run.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: insert run %s", run.ID)
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.TrainingRun, error) {
	var runJSON []byte
	err := s.pool.QueryRow(ctx, `SELECT run FROM training_runs WHERE id = $1`, runID).Scan(&runJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Errorf("postgres: run %s not found", runID)
		}
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	var run model.TrainingRun
	if err := json.Unmarshal(runJSON, &run); err != nil {
		return nil, eris.Wrapf(err, "postgres: unmarshal run %s", runID)
	}
	return &run, nil
}

func (s *PostgresStore) LatestRun(ctx context.Context) (*model.TrainingRun, error) {
	var runJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT run FROM training_runs ORDER BY created_at DESC, id DESC LIMIT 1`).Scan(&runJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.New("postgres: no training runs")
		}
		return nil, eris.Wrap(err, "postgres: latest run")
	}
	var run model.TrainingRun
	if err := json.Unmarshal(runJSON, &run); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal run")
	}
	return &run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.TrainingRun, error) {
	query := `SELECT run FROM training_runs`
	var args []any
	if filter.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		if len(args) > 0 {
			query += ` LIMIT $2`
		} else {
			query += ` LIMIT $1`
		}
		args = append(args, filter.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.TrainingRun
	for rows.Next() {
		var runJSON []byte
		if err := rows.Scan(&runJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		var run model.TrainingRun
		if err := json.Unmarshal(runJSON, &run); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal run")
		}
		runs = append(runs, run)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs")
}

func (s *PostgresStore) GetModel(ctx context.Context, modelID string) ([]byte, []byte, error) {
	var blob, encoding []byte
	err := s.pool.QueryRow(ctx,
		`SELECT model, encoding FROM training_runs WHERE model_id = $1 ORDER BY created_at DESC LIMIT 1`,
		modelID,
	).Scan(&blob, &encoding)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, eris.Errorf("postgres: model %s not found", modelID)
		}
		return nil, nil, eris.Wrapf(err, "postgres: get model %s", modelID)
	}
	return blob, encoding, nil
}

func (s *PostgresStore) SaveScores(ctx context.Context, modelID, batchID string, scores []model.CustomerScore) error {
	if len(scores) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([][]any, len(scores))
	for i, sc := range scores {
		rows[i] = []any{uuid.New().String(), modelID, batchID, i, sc.CustomerID, sc.ChurnProbability, sc.PredictedLabel, now}
	}
	_, err := db.CopyFrom(ctx, s.pool, "customer_scores",
		[]string{"id", "model_id", "batch_id", "position", "customer_id", "churn_probability", "predicted_label", "scored_at"},
		rows,
	)
	return eris.Wrapf(err, "postgres: save %d scores", len(scores))
}

func (s *PostgresStore) ListScores(ctx context.Context, modelID, batchID string) ([]model.CustomerScore, error) {
	query := `SELECT customer_id, churn_probability, predicted_label FROM customer_scores WHERE model_id = $1 AND batch_id = $2 ORDER BY position`
	args := []any{modelID, batchID}
	if batchID == "" {
		query = `SELECT customer_id, churn_probability, predicted_label FROM customer_scores
			WHERE model_id = $1 AND batch_id = (
				SELECT batch_id FROM customer_scores WHERE model_id = $1 ORDER BY scored_at DESC LIMIT 1)
			ORDER BY position`
		args = []any{modelID}
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list scores for %s", modelID)
	}
	defer rows.Close()

	var scores []model.CustomerScore
	for rows.Next() {
		var sc model.CustomerScore
		if err := rows.Scan(&sc.CustomerID, &sc.ChurnProbability, &sc.PredictedLabel); err != nil {
			return nil, eris.Wrap(err, "postgres: scan score")
		}
		scores = append(scores, sc)
	}
	return scores, eris.Wrap(rows.Err(), "postgres: list scores")
}
