package model

import "time"

// RunStatus represents the state of a training run.
type RunStatus string

const (
	RunStatusTraining RunStatus = "training"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// TrainingRun records one training of the churn classifier: its inputs,
// the identity of the model it produced, and the evaluation report.
type TrainingRun struct {
	ID           string            `json:"id"`
	ModelID      string            `json:"model_id"`
	Status       RunStatus         `json:"status"`
	Seed         int64             `json:"seed"`
	Estimators   int               `json:"estimators"`
	Rows         int               `json:"rows"`
	TrainRows    int               `json:"train_rows"`
	EvalRows     int               `json:"eval_rows"`
	EvalFraction float64           `json:"eval_fraction"`
	Report       *EvaluationReport `json:"report,omitempty"`
	Error        string            `json:"error,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// CustomerScore is one row of the scoring output table.
type CustomerScore struct {
	CustomerID       string  `json:"customer_id"`
	ChurnProbability float64 `json:"churn_probability"`
	PredictedLabel   string  `json:"predicted_label"`
}
