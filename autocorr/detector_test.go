package autocorr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geospatial-ml/spatcv/dataset"
	"github.com/geospatial-ml/spatcv/pkg/errors"
)

// clusteredGradient builds 20 samples in 5 tight spatial clusters with a
// shared per-cluster response, a strongly autocorrelated layout.
func clusteredGradient(t *testing.T) *dataset.SampleSet {
	t.Helper()
	schema, err := dataset.NewFeatureSchema([]string{"elev"})
	require.NoError(t, err)

	var samples []dataset.Sample
	for c := 0; c < 5; c++ {
		for j := 0; j < 4; j++ {
			samples = append(samples, dataset.Sample{
				ID:         fmt.Sprintf("a%d-%d", c, j),
				Lon:        10.0 + float64(c)*0.5 + float64(j)*0.001,
				Lat:        45.0 + float64(c)*0.3 + float64(j)*0.001,
				Response:   float64(c) * 10.0,
				Covariates: []float64{float64(c)},
			})
		}
	}
	ss, err := dataset.NewSampleSet(schema, samples)
	require.NoError(t, err)
	return ss
}

// checkerboard builds a 4x5 grid whose response alternates sign between
// orthogonal neighbors, the canonical negative-autocorrelation layout.
func checkerboard(t *testing.T) *dataset.SampleSet {
	t.Helper()
	schema, err := dataset.NewFeatureSchema([]string{"elev"})
	require.NoError(t, err)

	var samples []dataset.Sample
	for row := 0; row < 4; row++ {
		for col := 0; col < 5; col++ {
			response := 1.0
			if (row+col)%2 == 1 {
				response = -1.0
			}
			samples = append(samples, dataset.Sample{
				ID:         fmt.Sprintf("b%d-%d", row, col),
				Lon:        10.0 + float64(col)*0.01,
				Lat:        45.0 + float64(row)*0.01,
				Response:   response,
				Covariates: []float64{float64(row*5 + col)},
			})
		}
	}
	ss, err := dataset.NewSampleSet(schema, samples)
	require.NoError(t, err)
	return ss
}

func TestDetectClusteredGradient(t *testing.T) {
	ss := clusteredGradient(t)

	report, err := Detect(ss, NewConfig().WithPermutations(999))
	require.NoError(t, err)

	assert.Less(t, report.MoranP, 0.05, "clustered responses must reject the null")
	assert.Positive(t, report.MoranI)
	assert.Less(t, report.MantelP, 0.05)
	assert.Positive(t, report.MantelR)
	assert.True(t, report.Autocorrelated)
}

func TestDetectCheckerboard(t *testing.T) {
	ss := checkerboard(t)

	report, err := Detect(ss, NewConfig().WithPermutations(999))
	require.NoError(t, err)

	// Alternating responses are negatively autocorrelated; the
	// one-sided tests must not flag them.
	assert.Greater(t, report.MoranP, 0.05)
	assert.Negative(t, report.MoranI)
	assert.Greater(t, report.MantelP, 0.05)
	assert.False(t, report.Autocorrelated)
}

func TestDetectDeterministic(t *testing.T) {
	ss := clusteredGradient(t)
	cfg := NewConfig().WithPermutations(499).WithSeed(7)

	a, err := Detect(ss, cfg)
	require.NoError(t, err)
	b, err := Detect(ss, cfg)
	require.NoError(t, err)

	assert.Equal(t, a.MoranI, b.MoranI)
	assert.Equal(t, a.MoranP, b.MoranP)
	assert.Equal(t, a.MantelR, b.MantelR)
	assert.Equal(t, a.MantelP, b.MantelP)
}

func TestDetectConstantResponse(t *testing.T) {
	schema, err := dataset.NewFeatureSchema([]string{"elev"})
	require.NoError(t, err)
	samples := make([]dataset.Sample, 12)
	for i := range samples {
		samples[i] = dataset.Sample{
			ID:         fmt.Sprintf("c%d", i),
			Lon:        10.0 + float64(i)*0.01,
			Lat:        45.0,
			Response:   3.0,
			Covariates: []float64{float64(i)},
		}
	}
	ss, err := dataset.NewSampleSet(schema, samples)
	require.NoError(t, err)

	report, err := Detect(ss, NewConfig().WithPermutations(99))
	require.NoError(t, err)
	assert.Zero(t, report.MoranI)
	assert.Equal(t, 1.0, report.MoranP)
	assert.False(t, report.Autocorrelated)
}

func TestDetectInsufficientData(t *testing.T) {
	schema, err := dataset.NewFeatureSchema([]string{"elev"})
	require.NoError(t, err)
	samples := make([]dataset.Sample, 5)
	for i := range samples {
		samples[i] = dataset.Sample{
			ID:         fmt.Sprintf("d%d", i),
			Lon:        10.0 + float64(i)*0.01,
			Lat:        45.0,
			Response:   float64(i),
			Covariates: []float64{1.0},
		}
	}
	ss, err := dataset.NewSampleSet(schema, samples)
	require.NoError(t, err)

	_, err = Detect(ss, NewConfig()) // k = 5 needs at least 6 samples
	var insufficient *errors.InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 6, insufficient.Required)
}

func TestDetectConfigValidation(t *testing.T) {
	ss := clusteredGradient(t)
	var invalid *errors.InvalidConfigurationError

	_, err := Detect(ss, NewConfig().WithAlpha(0))
	require.ErrorAs(t, err, &invalid)

	_, err = Detect(ss, NewConfig().WithAlpha(1.5))
	require.ErrorAs(t, err, &invalid)

	_, err = Detect(ss, NewConfig().WithPermutations(0))
	require.ErrorAs(t, err, &invalid)

	_, err = Detect(ss, NewConfig().WithNeighbors(0))
	require.ErrorAs(t, err, &invalid)
}
