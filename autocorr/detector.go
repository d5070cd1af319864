// Package autocorr decides whether sample responses are spatially
// autocorrelated. Two independent tests feed the decision: global Moran's I
// over a k-nearest neighbor graph (analytic p-value) and a Mantel
// permutation test between response dissimilarity and geographic distance.
// Either test rejecting at the configured significance level flags the data
// as autocorrelated, which switches cross-validation to spatial blocking.
package autocorr

import (
	"github.com/geospatial-ml/spatcv/dataset"
	"github.com/geospatial-ml/spatcv/geo"
	"github.com/geospatial-ml/spatcv/pkg/errors"
	"github.com/geospatial-ml/spatcv/pkg/log"
)

// Config carries the detector parameters.
type Config struct {
	Neighbors    int     // k of the neighbor graph
	Alpha        float64 // significance level shared by both tests
	Permutations int     // Mantel permutation draws
	Seed         uint64  // root seed for the permutation stream
}

// NewConfig returns the detector defaults.
func NewConfig() Config {
	return Config{
		Neighbors:    5,
		Alpha:        0.05,
		Permutations: 9999,
		Seed:         42,
	}
}

// WithNeighbors sets k of the neighbor graph.
func (c Config) WithNeighbors(k int) Config {
	c.Neighbors = k
	return c
}

// WithAlpha sets the significance level.
func (c Config) WithAlpha(alpha float64) Config {
	c.Alpha = alpha
	return c
}

// WithPermutations sets the Mantel draw count.
func (c Config) WithPermutations(n int) Config {
	c.Permutations = n
	return c
}

// WithSeed sets the permutation stream seed.
func (c Config) WithSeed(seed uint64) Config {
	c.Seed = seed
	return c
}

// Report is the detector outcome. Both statistics are kept so callers can
// log or display them; Autocorrelated is the combined decision.
type Report struct {
	MoranI         float64
	MoranP         float64
	MantelR        float64
	MantelP        float64
	Alpha          float64
	Autocorrelated bool
}

// Detect runs both tests over the sample set. Pure computation: the sample
// set is not mutated and the intermediate distance matrices are discarded.
func Detect(ss *dataset.SampleSet, cfg Config) (*Report, error) {
	if cfg.Alpha <= 0 || cfg.Alpha >= 1 {
		return nil, errors.NewInvalidConfigurationError("alpha", "must be in (0, 1)", cfg.Alpha)
	}
	if cfg.Permutations < 1 {
		return nil, errors.NewInvalidConfigurationError("permutations", "must be at least 1", cfg.Permutations)
	}
	if cfg.Neighbors < 1 {
		return nil, errors.NewInvalidConfigurationError("neighbors", "must be at least 1", cfg.Neighbors)
	}

	n := ss.Len()
	if n <= cfg.Neighbors {
		return nil, errors.NewInsufficientDataError("autocorr.Detect", cfg.Neighbors+1, n)
	}
	// The randomization variance of Moran's I needs at least 4 samples.
	if n < 4 {
		return nil, errors.NewInsufficientDataError("autocorr.Detect", 4, n)
	}

	lons, lats := ss.Coordinates()
	responses := ss.Responses()

	graph, err := geo.KNearestGraph(lons, lats, cfg.Neighbors)
	if err != nil {
		return nil, err
	}
	moranI, moranP := moranTest(graph, responses)

	dis := geo.ResponseDissimilarity(responses)
	gdm := geo.DistanceMatrix(lons, lats)
	mantelR, mantelP := mantelTest(dis, gdm, cfg.Permutations, cfg.Seed)

	report := &Report{
		MoranI:         moranI,
		MoranP:         moranP,
		MantelR:        mantelR,
		MantelP:        mantelP,
		Alpha:          cfg.Alpha,
		Autocorrelated: moranP < cfg.Alpha || mantelP < cfg.Alpha,
	}

	logger := log.GetLoggerWithName("autocorr.detector")
	logger.Info("spatial dependence tests finished",
		log.StageKey, log.StageAutocorr,
		log.SamplesKey, n,
		log.NeighborsKey, cfg.Neighbors,
		log.MoranIKey, report.MoranI,
		log.MoranPKey, report.MoranP,
		log.MantelRKey, report.MantelR,
		log.MantelPKey, report.MantelP,
		log.AutocorrelatedKey, report.Autocorrelated,
	)

	return report, nil
}
