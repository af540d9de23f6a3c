package forest

import (
	"bytes"
	"encoding/gob"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/churn-cli/internal/dataset"
	"github.com/sells-group/churn-cli/internal/feature"
)

// TrainedModel owns a fitted ensemble, the category encoding it was trained
// with, and the ordered feature names it expects as input. It is immutable
// after Train and safe to share read-only across concurrent scoring calls.
type TrainedModel struct {
	ID         string
	Seed       int64
	Estimators int
	Features   []string
	Encoding   feature.Encoding
	Trees      []*Tree
}

// Train fits an ensemble and packages it with its encoding and feature
// order into a TrainedModel.
func Train(m *dataset.Matrix, labels []int, enc feature.Encoding, cfg Config) (*TrainedModel, error) {
	trees, err := Fit(m, labels, cfg)
	if err != nil {
		return nil, err
	}
	return &TrainedModel{
		ID:         uuid.New().String(),
		Seed:       cfg.Seed,
		Estimators: cfg.Estimators,
		Features:   m.Features,
		Encoding:   enc,
		Trees:      trees,
	}, nil
}

// checkFeatures rejects input whose feature order does not match the order
// the model was trained on. A mismatch is a contract violation, not a
// best-effort prediction.
func (tm *TrainedModel) checkFeatures(m *dataset.Matrix) error {
	if len(m.Features) != len(tm.Features) {
		return eris.Errorf("forest: input has %d features, model expects %d", len(m.Features), len(tm.Features))
	}
	for i, name := range tm.Features {
		if m.Features[i] != name {
			return eris.Errorf("forest: feature %d is %q, model expects %q", i, m.Features[i], name)
		}
	}
	return nil
}

// Predict returns one binary label per row by majority vote.
func (tm *TrainedModel) Predict(m *dataset.Matrix) ([]int, error) {
	if err := tm.checkFeatures(m); err != nil {
		return nil, err
	}
	return Predict(tm.Trees, m), nil
}

// PredictProba returns the per-row churn probability: the fraction of trees
// voting churn.
func (tm *TrainedModel) PredictProba(m *dataset.Matrix) ([]float64, error) {
	if err := tm.checkFeatures(m); err != nil {
		return nil, err
	}
	return PredictProba(tm.Trees, m), nil
}

// modelBlob mirrors TrainedModel for gob. Encoding the mirror keeps gob
// from re-entering MarshalBinary on the model itself.
type modelBlob struct {
	ID         string
	Seed       int64
	Estimators int
	Features   []string
	Encoding   map[string]map[string]int
	Trees      []*Tree
}

// MarshalBinary serializes the model with gob for persistence.
func (tm *TrainedModel) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	blob := modelBlob{
		ID:         tm.ID,
		Seed:       tm.Seed,
		Estimators: tm.Estimators,
		Features:   tm.Features,
		Encoding:   tm.Encoding,
		Trees:      tm.Trees,
	}
	if err := gob.NewEncoder(&buf).Encode(blob); err != nil {
		return nil, eris.Wrap(err, "forest: encode model")
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary reloads a model serialized by MarshalBinary. The reloaded
// model produces identical predictions to the original.
func (tm *TrainedModel) UnmarshalBinary(data []byte) error {
	var blob modelBlob
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&blob); err != nil {
		return eris.Wrap(err, "forest: decode model")
	}
	tm.ID = blob.ID
	tm.Seed = blob.Seed
	tm.Estimators = blob.Estimators
	tm.Features = blob.Features
	tm.Encoding = blob.Encoding
	tm.Trees = blob.Trees
	return nil
}
