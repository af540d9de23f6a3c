package store

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/churn-cli/internal/model"
)

func newTestPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

func TestPostgresStore_SaveRun(t *testing.T) {
	st, mock := newTestPostgresStore(t)
	run := testRun(time.Now().UTC())
	runJSON, err := json.Marshal(run)
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO training_runs`)).
		WithArgs(run.ID, run.ModelID, string(run.Status), runJSON, []byte("blob"), []byte("{}"), run.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, st.SaveRun(context.Background(), run, []byte("blob"), []byte("{}")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun(t *testing.T) {
	st, mock := newTestPostgresStore(t)
	run := testRun(time.Now().UTC())
	runJSON, err := json.Marshal(run)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT run FROM training_runs WHERE id = $1`)).
		WithArgs(run.ID).
		WillReturnRows(pgxmock.NewRows([]string{"run"}).AddRow(runJSON))

	got, err := st.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ModelID, got.ModelID)
	require.NotNil(t, got.Report)
	assert.Equal(t, run.Report.Confusion, got.Report.Confusion)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun_NotFound(t *testing.T) {
	st, mock := newTestPostgresStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT run FROM training_runs WHERE id = $1`)).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := st.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRuns_StatusFilter(t *testing.T) {
	st, mock := newTestPostgresStore(t)
	run := testRun(time.Now().UTC())
	runJSON, err := json.Marshal(run)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT run FROM training_runs WHERE status = $1 ORDER BY created_at DESC, id DESC LIMIT $2`)).
		WithArgs(string(model.RunStatusComplete), 5).
		WillReturnRows(pgxmock.NewRows([]string{"run"}).AddRow(runJSON))

	runs, err := st.ListRuns(context.Background(), RunFilter{Status: model.RunStatusComplete, Limit: 5})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetModel(t *testing.T) {
	st, mock := newTestPostgresStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT model, encoding FROM training_runs WHERE model_id = $1`)).
		WithArgs("m1").
		WillReturnRows(pgxmock.NewRows([]string{"model", "encoding"}).
			AddRow([]byte{0x1f, 0x2e}, []byte(`{"gender":{"Male":1}}`)))

	blob, encoding, err := st.GetModel(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1f, 0x2e}, blob)
	assert.JSONEq(t, `{"gender":{"Male":1}}`, string(encoding))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveScores_CopyFrom(t *testing.T) {
	st, mock := newTestPostgresStore(t)

	scores := []model.CustomerScore{
		{CustomerID: "C001", ChurnProbability: 0.87, PredictedLabel: model.ChurnYes},
		{CustomerID: "C002", ChurnProbability: 0.05, PredictedLabel: model.ChurnNo},
	}
	mock.ExpectCopyFrom(pgx.Identifier{"customer_scores"},
		[]string{"id", "model_id", "batch_id", "position", "customer_id", "churn_probability", "predicted_label", "scored_at"}).
		WillReturnResult(2)

	require.NoError(t, st.SaveScores(context.Background(), "m1", "b1", scores))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListScores(t *testing.T) {
	st, mock := newTestPostgresStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT customer_id, churn_probability, predicted_label FROM customer_scores WHERE model_id = $1 AND batch_id = $2 ORDER BY position`)).
		WithArgs("m1", "b1").
		WillReturnRows(pgxmock.NewRows([]string{"customer_id", "churn_probability", "predicted_label"}).
			AddRow("C001", 0.87, model.ChurnYes).
			AddRow("C002", 0.05, model.ChurnNo))

	scores, err := st.ListScores(context.Background(), "m1", "b1")
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, "C001", scores[0].CustomerID)
	assert.Equal(t, model.ChurnYes, scores[0].PredictedLabel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListScores_LatestBatch(t *testing.T) {
	st, mock := newTestPostgresStore(t)

	// Empty batch ID reads the model's most recent batch via subquery.
	mock.ExpectQuery(`SELECT customer_id, churn_probability, predicted_label FROM customer_scores\s+WHERE model_id = \$1 AND batch_id = \(`).
		WithArgs("m1").
		WillReturnRows(pgxmock.NewRows([]string{"customer_id", "churn_probability", "predicted_label"}).
			AddRow("C009", 0.61, model.ChurnYes))

	scores, err := st.ListScores(context.Background(), "m1", "")
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, "C009", scores[0].CustomerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
