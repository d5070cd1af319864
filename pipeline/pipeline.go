// Package pipeline wires the full workflow: autocorrelation detection,
// fold strategy selection, cross-validated boosting, overfit
// diagnostics, and grid projection. Each stage draws its randomness from
// a sub-seed derived from the one root seed, so a run is reproducible
// end to end.
package pipeline

import (
	"math/rand/v2"

	"github.com/geospatial-ml/spatcv/autocorr"
	"github.com/geospatial-ml/spatcv/boost"
	"github.com/geospatial-ml/spatcv/cv"
	"github.com/geospatial-ml/spatcv/dataset"
	"github.com/geospatial-ml/spatcv/diag"
	"github.com/geospatial-ml/spatcv/grid"
	"github.com/geospatial-ml/spatcv/pkg/errors"
	"github.com/geospatial-ml/spatcv/pkg/log"
	"github.com/geospatial-ml/spatcv/predict"
)

// Stage stream identifiers for sub-seed derivation. Each stage consumes
// an independent PCG stream of the root seed.
const (
	detectStream uint64 = 1
	foldStream   uint64 = 2
	boostStream  uint64 = 3
)

// subSeed derives a stage seed from the root seed on a disjoint stream.
func subSeed(root, stream uint64) uint64 {
	return rand.New(rand.NewPCG(root, stream)).Uint64()
}

// Config bundles every pipeline knob. Zero values are filled by
// NewConfig; construct with NewConfig and adjust via the WithXxx
// setters.
type Config struct {
	// Seed is the root seed every stage sub-seed derives from.
	Seed uint64
	// Neighbors is k for the detector's neighbor graph.
	Neighbors int
	// Alpha is the detector's significance level.
	Alpha float64
	// Permutations is the Mantel draw count.
	Permutations int
	// Folds is the cross-validation fold count.
	Folds int
	// BlockSize is the spatial block edge in metres.
	BlockSize float64
	// Selection is the spatial block-to-fold dealing mode.
	Selection cv.SelectionMode
	// Boost carries the training hyperparameters; its Seed field is
	// overwritten with the boosting sub-seed.
	Boost boost.Params
	// OverfitThreshold is the diagnostics gap threshold.
	OverfitThreshold float64
}

// NewConfig returns the pipeline defaults.
func NewConfig() Config {
	return Config{
		Seed:             42,
		Neighbors:        5,
		Alpha:            0.05,
		Permutations:     999,
		Folds:            5,
		BlockSize:        cv.DefaultBlockSize,
		Selection:        cv.SelectionRandom,
		Boost:            boost.NewParams(),
		OverfitThreshold: diag.DefaultThreshold,
	}
}

// WithSeed sets the root seed.
func (c Config) WithSeed(seed uint64) Config {
	c.Seed = seed
	return c
}

// WithNeighbors sets the detector's neighbor count.
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

// WithFolds sets the fold count.
func (c Config) WithFolds(k int) Config {
	c.Folds = k
	return c
}

// WithBlockSize sets the spatial block edge in metres.
func (c Config) WithBlockSize(size float64) Config {
	c.BlockSize = size
	return c
}

// WithSelection sets the block-to-fold dealing mode.
func (c Config) WithSelection(mode cv.SelectionMode) Config {
	c.Selection = mode
	return c
}

// WithBoost sets the training hyperparameters.
func (c Config) WithBoost(params boost.Params) Config {
	c.Boost = params
	return c
}

// WithOverfitThreshold sets the diagnostics gap threshold.
func (c Config) WithOverfitThreshold(threshold float64) Config {
	c.OverfitThreshold = threshold
	return c
}

// Result carries every artifact the pipeline produced before it finished
// or failed. On error, fields up to the failing stage are populated so
// the run can be inspected and retried with adjusted parameters.
type Result struct {
	// Report is the autocorrelation detector output.
	Report *autocorr.Report
	// Strategy names the fold strategy chosen from the report.
	Strategy string
	// Folds is the computed fold assignment.
	Folds *cv.FoldAssignment
	// Log is the cross-validated training evaluation log. It is present
	// even when training fails with NonConvergenceError.
	Log *boost.EvaluationLog
	// Model is the final retrained ensemble.
	Model *boost.Model
	// Diagnostics is the overfit analysis of Log.
	Diagnostics diag.Record
}

// Run executes detection, fold selection, training, and diagnostics over
// a sample set. The returned Result is never nil; on error it holds the
// artifacts of the stages that completed.
func Run(ss *dataset.SampleSet, cfg Config) (*Result, error) {
	logger := log.GetLoggerWithName("pipeline")
	result := &Result{}

	detectCfg := autocorr.NewConfig().
		WithNeighbors(cfg.Neighbors).
		WithAlpha(cfg.Alpha).
		WithPermutations(cfg.Permutations).
		WithSeed(subSeed(cfg.Seed, detectStream))
	report, err := autocorr.Detect(ss, detectCfg)
	if err != nil {
		return result, errors.Wrap(err, "pipeline: autocorrelation detection")
	}
	result.Report = report

	strategy := cv.ForReport(report.Autocorrelated, cv.Options{
		Folds:     cfg.Folds,
		BlockSize: cfg.BlockSize,
		Mode:      cfg.Selection,
		Seed:      subSeed(cfg.Seed, foldStream),
	})
	result.Strategy = strategy.Name()

	folds, err := strategy.Assign(ss)
	if err != nil {
		return result, errors.Wrap(err, "pipeline: fold assignment")
	}
	result.Folds = folds

	params := cfg.Boost.WithSeed(subSeed(cfg.Seed, boostStream))
	model, evalLog, err := boost.Train(ss, folds, params)
	result.Log = evalLog
	if err != nil {
		return result, errors.Wrap(err, "pipeline: training")
	}
	result.Model = model

	result.Diagnostics = diag.Analyze(evalLog, cfg.OverfitThreshold)
	if result.Diagnostics.Overfit {
		errors.Warn(errors.NewOverfitWarning(
			result.Diagnostics.BestIteration,
			result.Diagnostics.GapAtBest,
			cfg.OverfitThreshold,
		))
	}

	logger.Info("pipeline complete",
		log.SeedKey, cfg.Seed,
		log.AutocorrelatedKey, report.Autocorrelated,
		log.StrategyKey, result.Strategy,
		log.BestIterationKey, result.Diagnostics.BestIteration,
	)
	return result, nil
}

// Project predicts the response over a covariate grid with the run's
// model. When driverLayer is non-empty the advisory surface-driver
// correlation is computed against minCorrelation and returned; a weak
// correlation warns but never fails.
func Project(model *boost.Model, g *grid.CovariateGrid, driverLayer string, minCorrelation float64) (*grid.PredictionSurface, float64, error) {
	surface, err := predict.Surface(model, g)
	if err != nil {
		return nil, 0, errors.Wrap(err, "pipeline: projection")
	}
	if driverLayer == "" {
		return surface, 0, nil
	}
	corr, err := predict.DriverCorrelation(surface, g, driverLayer, minCorrelation)
	if err != nil {
		return surface, 0, errors.Wrap(err, "pipeline: driver correlation")
	}
	return surface, corr, nil
}
