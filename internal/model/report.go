package model

// ConfusionMatrix counts predictions against the churn-positive class.
type ConfusionMatrix struct {
	TruePositives  int `json:"true_positives" yaml:"true_positives"`
	FalsePositives int `json:"false_positives" yaml:"false_positives"`
	TrueNegatives  int `json:"true_negatives" yaml:"true_negatives"`
	FalseNegatives int `json:"false_negatives" yaml:"false_negatives"`
}

// Total returns the number of evaluated rows.
func (c ConfusionMatrix) Total() int {
	return c.TruePositives + c.FalsePositives + c.TrueNegatives + c.FalseNegatives
}

// ClassMetrics holds precision, recall and F1 for one class. Each metric is
// 0, never NaN, when its denominator is 0.
type ClassMetrics struct {
	Precision float64 `json:"precision" yaml:"precision"`
	Recall    float64 `json:"recall" yaml:"recall"`
	F1        float64 `json:"f1" yaml:"f1"`
}

// EvaluationReport ties evaluation results to one (model, evaluation-split)
// pair. ModelID and Seed key the report for traceability.
type EvaluationReport struct {
	ModelID   string          `json:"model_id" yaml:"model_id"`
	Seed      int64           `json:"seed" yaml:"seed"`
	EvalSize  int             `json:"eval_size" yaml:"eval_size"`
	Confusion ConfusionMatrix `json:"confusion" yaml:"confusion"`
	Churned   ClassMetrics    `json:"churned" yaml:"churned"`
	Retained  ClassMetrics    `json:"retained" yaml:"retained"`
	Accuracy  float64         `json:"accuracy" yaml:"accuracy"`
}
