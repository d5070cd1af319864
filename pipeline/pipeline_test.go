package pipeline

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geospatial-ml/spatcv/boost"
	"github.com/geospatial-ml/spatcv/dataset"
	"github.com/geospatial-ml/spatcv/grid"
	"github.com/geospatial-ml/spatcv/pkg/errors"
	"github.com/geospatial-ml/spatcv/pkg/log"
)

// clusteredSet: 5 tight spatial clusters whose response follows a strong
// spatial gradient plus a learnable within-cluster covariate effect.
func clusteredSet(t *testing.T) *dataset.SampleSet {
	t.Helper()
	schema, err := dataset.NewFeatureSchema([]string{"pc1", "elev"})
	require.NoError(t, err)

	var samples []dataset.Sample
	for c := 0; c < 5; c++ {
		for j := 0; j < 4; j++ {
			elev := float64(j) * 2.0
			samples = append(samples, dataset.Sample{
				ID:         fmt.Sprintf("a%d-%d", c, j),
				Lon:        10.0 + float64(c)*0.5 + float64(j)*0.001,
				Lat:        45.0 + float64(c)*0.3 + float64(j)*0.001,
				Response:   float64(c)*10.0 + elev,
				Covariates: []float64{float64(c), elev},
			})
		}
	}
	ss, err := dataset.NewSampleSet(schema, samples)
	require.NoError(t, err)
	return ss
}

// scatteredSet: a checkerboard response over a regular grid, negatively
// autocorrelated in space but perfectly explained by its covariate.
func scatteredSet(t *testing.T) *dataset.SampleSet {
	t.Helper()
	schema, err := dataset.NewFeatureSchema([]string{"pc1", "elev"})
	require.NoError(t, err)

	var samples []dataset.Sample
	for row := 0; row < 4; row++ {
		for col := 0; col < 5; col++ {
			parity := float64((row + col) % 2)
			samples = append(samples, dataset.Sample{
				ID:         fmt.Sprintf("b%d-%d", row, col),
				Lon:        10.0 + float64(col)*0.01,
				Lat:        45.0 + float64(row)*0.01,
				Response:   1.0 - 2.0*parity,
				Covariates: []float64{parity, float64(row)},
			})
		}
	}
	ss, err := dataset.NewSampleSet(schema, samples)
	require.NoError(t, err)
	return ss
}

func testConfig() Config {
	return NewConfig().
		WithPermutations(199).
		WithBlockSize(10000).
		WithBoost(boost.NewParams().WithMaxRounds(100).WithEarlyStoppingRounds(10))
}

func TestRunAutocorrelatedBranch(t *testing.T) {
	ss := clusteredSet(t)

	result, err := Run(ss, testConfig())
	require.NoError(t, err)

	require.NotNil(t, result.Report)
	assert.True(t, result.Report.Autocorrelated)
	assert.Less(t, result.Report.MoranP, 0.05)

	assert.Equal(t, log.StrategySpatialBlock, result.Strategy)
	require.NotNil(t, result.Folds)
	assert.Equal(t, 5, result.Folds.NumFolds())
	for f, size := range result.Folds.Sizes() {
		assert.Positive(t, size, "fold %d must not be empty", f)
	}

	require.NotNil(t, result.Model)
	require.NotNil(t, result.Log)
	best, ok := result.Log.Best()
	require.True(t, ok)
	assert.Equal(t, best.Round, result.Model.TrainedRounds())
	assert.Equal(t, best.Round, result.Diagnostics.BestIteration)
}

func TestRunRandomBranch(t *testing.T) {
	ss := scatteredSet(t)

	result, err := Run(ss, testConfig())
	require.NoError(t, err)

	require.NotNil(t, result.Report)
	assert.False(t, result.Report.Autocorrelated)
	assert.Greater(t, result.Report.MoranP, 0.05)
	assert.Greater(t, result.Report.MantelP, 0.05)

	assert.Equal(t, log.StrategyRandom, result.Strategy)
	require.NotNil(t, result.Folds)

	// Stratified random folds stay balanced.
	sizes := result.Folds.Sizes()
	min, max := sizes[0], sizes[0]
	for _, s := range sizes[1:] {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	assert.LessOrEqual(t, max-min, 1)
	require.NotNil(t, result.Model)
}

func TestRunSeedIdempotence(t *testing.T) {
	ss := clusteredSet(t)
	cfg := testConfig().WithSeed(1234)

	a, err := Run(ss, cfg)
	require.NoError(t, err)
	b, err := Run(ss, cfg)
	require.NoError(t, err)

	assert.Equal(t, a.Report.MoranP, b.Report.MoranP)
	assert.Equal(t, a.Report.MantelP, b.Report.MantelP)
	assert.Equal(t, a.Folds.Assignments(), b.Folds.Assignments())
	assert.Equal(t, a.Log.Records(), b.Log.Records())
	assert.Equal(t, a.Model.TrainedRounds(), b.Model.TrainedRounds())

	pa, err := a.Model.Predict(ss.CovariateMatrix())
	require.NoError(t, err)
	pb, err := b.Model.Predict(ss.CovariateMatrix())
	require.NoError(t, err)
	for i := 0; i < ss.Len(); i++ {
		assert.Equal(t, pa.AtVec(i), pb.AtVec(i))
	}
}

func TestRunPartialResultsOnTrainingFailure(t *testing.T) {
	// A constant response passes detection and fold assignment but can
	// never improve during training.
	schema, err := dataset.NewFeatureSchema([]string{"pc1"})
	require.NoError(t, err)
	samples := make([]dataset.Sample, 20)
	for i := range samples {
		samples[i] = dataset.Sample{
			ID:         fmt.Sprintf("c%02d", i),
			Lon:        10.0 + float64(i)*0.01,
			Lat:        45.0,
			Response:   4.25,
			Covariates: []float64{float64(i)},
		}
	}
	ss, err := dataset.NewSampleSet(schema, samples)
	require.NoError(t, err)

	result, err := Run(ss, testConfig())
	require.Error(t, err)
	var nonConv *errors.NonConvergenceError
	require.ErrorAs(t, err, &nonConv)

	// Stages before the failure remain inspectable.
	require.NotNil(t, result)
	assert.NotNil(t, result.Report)
	assert.NotNil(t, result.Folds)
	assert.NotNil(t, result.Log)
	assert.Nil(t, result.Model)
}

func TestRunEmitsOverfitWarning(t *testing.T) {
	ss := clusteredSet(t)

	var captured []error
	errors.SetWarningHandler(func(w error) {
		captured = append(captured, w)
	})
	defer errors.SetWarningHandler(nil)

	// A negative threshold flags any run as overfit.
	result, err := Run(ss, testConfig().WithOverfitThreshold(-1))
	require.NoError(t, err)
	require.True(t, result.Diagnostics.Overfit)

	found := false
	for _, w := range captured {
		var overfit *errors.OverfitWarning
		if errors.As(w, &overfit) {
			found = true
		}
	}
	assert.True(t, found, "overfit warning must reach the handler")
}

func TestProjectEndToEnd(t *testing.T) {
	ss := clusteredSet(t)
	result, err := Run(ss, testConfig())
	require.NoError(t, err)

	g, err := grid.NewCovariateGrid(6, 4, 10.0, 45.0, 0.05)
	require.NoError(t, err)
	cells := 24
	pc1 := make([]float64, cells)
	elev := make([]float64, cells)
	for i := range pc1 {
		pc1[i] = float64(i % 5)
		elev[i] = float64(i%4) * 2.0
	}
	require.NoError(t, g.AddLayer("pc1", pc1))
	require.NoError(t, g.AddLayer("elev", elev))

	surface, corr, err := Project(result.Model, g, "pc1", 0.1)
	require.NoError(t, err)
	require.NotNil(t, surface)
	assert.Len(t, surface.Values, cells)
	assert.Greater(t, corr, 0.1, "pc1 drives the response")

	// Scenario: missing layer fails loudly.
	partial, err := grid.NewCovariateGrid(6, 4, 10.0, 45.0, 0.05)
	require.NoError(t, err)
	require.NoError(t, partial.AddLayer("pc1", pc1))
	_, _, err = Project(result.Model, partial, "", 0)
	var mismatch *errors.FeatureMismatchError
	require.ErrorAs(t, err, &mismatch)
}
