package boost

import (
	"gonum.org/v1/gonum/mat"

	"github.com/geospatial-ml/spatcv/dataset"
	"github.com/geospatial-ml/spatcv/pkg/errors"
)

// Model is a trained boosted-tree ensemble. It is immutable after
// training: prediction never mutates model state, so a Model is safe for
// concurrent use.
type Model struct {
	trees         []tree
	initScore     float64
	trainedRounds int
	schema        *dataset.FeatureSchema
	params        Params
	importance    []float64
}

// TrainedRounds returns the number of boosting rounds in the ensemble.
func (m *Model) TrainedRounds() int {
	return m.trainedRounds
}

// Schema returns the feature schema the model was trained against.
func (m *Model) Schema() *dataset.FeatureSchema {
	return m.schema
}

// Params returns the hyperparameters the model was trained with.
func (m *Model) Params() Params {
	return m.params
}

// FeatureImportance returns per-feature total split gain, aligned with
// the schema, normalized to sum to one. All-zero when no split was ever
// made.
func (m *Model) FeatureImportance() []float64 {
	out := make([]float64, len(m.importance))
	copy(out, m.importance)
	total := 0.0
	for _, g := range out {
		total += g
	}
	if total > 0 {
		for i := range out {
			out[i] /= total
		}
	}
	return out
}

// PredictRow predicts the response for a single covariate row ordered by
// the model's schema.
func (m *Model) PredictRow(row []float64) (float64, error) {
	if len(row) != m.schema.Len() {
		return 0, errors.NewFeatureMismatchError("boost.PredictRow", nil, m.schema.Len(), len(row))
	}
	pred := m.initScore
	for i := range m.trees {
		pred += m.trees[i].predict(row)
	}
	return pred, nil
}

// Predict predicts responses for every row of x, whose columns must
// match the model's schema width and order.
func (m *Model) Predict(x *mat.Dense) (*mat.VecDense, error) {
	rows, cols := x.Dims()
	if cols != m.schema.Len() {
		return nil, errors.NewFeatureMismatchError("boost.Predict", nil, m.schema.Len(), cols)
	}
	out := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		pred := m.initScore
		for t := range m.trees {
			pred += m.trees[t].predictAt(x, i)
		}
		out.SetVec(i, pred)
	}
	return out, nil
}
