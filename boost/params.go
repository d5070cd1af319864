// Package boost trains gradient-boosted regression trees with
// cross-validated early stopping. Folds are trained in lockstep, one
// round at a time, so the stopping decision can watch the mean held-out
// metric; the final model is retrained on all samples with exactly the
// chosen number of rounds.
package boost

import (
	"github.com/geospatial-ml/spatcv/pkg/errors"
)

// minTrainingSamples is the smallest sample set the trainer accepts.
const minTrainingSamples = 10

// Params contains the boosting hyperparameters.
type Params struct {
	// LearningRate shrinks each tree's contribution.
	LearningRate float64
	// MaxDepth bounds tree depth; zero means unbounded.
	MaxDepth int
	// Subsample is the fraction of rows sampled per tree.
	Subsample float64
	// ColsampleByTree is the fraction of features sampled per tree.
	ColsampleByTree float64
	// Lambda is the L2 regularization weight on leaf values.
	Lambda float64
	// MinSamplesLeaf is the smallest admissible leaf.
	MinSamplesLeaf int
	// MaxRounds caps the boosting rounds during cross-validation.
	MaxRounds int
	// EarlyStoppingRounds stops training after this many rounds without
	// held-out improvement; zero disables early stopping.
	EarlyStoppingRounds int
	// Seed drives row and feature subsampling.
	Seed uint64
}

// NewParams returns boosting parameters with the package defaults.
func NewParams() Params {
	return Params{
		LearningRate:        0.1,
		MaxDepth:            6,
		Subsample:           1.0,
		ColsampleByTree:     1.0,
		Lambda:              1.0,
		MinSamplesLeaf:      3,
		MaxRounds:           1000,
		EarlyStoppingRounds: 20,
		Seed:                42,
	}
}

// WithLearningRate sets the shrinkage rate.
func (p Params) WithLearningRate(lr float64) Params {
	p.LearningRate = lr
	return p
}

// WithMaxDepth sets the tree depth bound.
func (p Params) WithMaxDepth(depth int) Params {
	p.MaxDepth = depth
	return p
}

// WithSubsample sets the per-tree row fraction.
func (p Params) WithSubsample(fraction float64) Params {
	p.Subsample = fraction
	return p
}

// WithColsampleByTree sets the per-tree feature fraction.
func (p Params) WithColsampleByTree(fraction float64) Params {
	p.ColsampleByTree = fraction
	return p
}

// WithLambda sets the L2 regularization weight.
func (p Params) WithLambda(lambda float64) Params {
	p.Lambda = lambda
	return p
}

// WithMaxRounds sets the round cap.
func (p Params) WithMaxRounds(rounds int) Params {
	p.MaxRounds = rounds
	return p
}

// WithEarlyStoppingRounds sets the early-stopping patience.
func (p Params) WithEarlyStoppingRounds(rounds int) Params {
	p.EarlyStoppingRounds = rounds
	return p
}

// WithSeed sets the subsampling seed.
func (p Params) WithSeed(seed uint64) Params {
	p.Seed = seed
	return p
}

// Validate checks the parameter ranges before training starts.
func (p Params) Validate() error {
	if p.LearningRate <= 0 || p.LearningRate > 1 {
		return errors.NewInvalidConfigurationError("learning_rate", "must be in (0, 1]", p.LearningRate)
	}
	if p.Subsample <= 0 || p.Subsample > 1 {
		return errors.NewInvalidConfigurationError("subsample", "must be in (0, 1]", p.Subsample)
	}
	if p.ColsampleByTree <= 0 || p.ColsampleByTree > 1 {
		return errors.NewInvalidConfigurationError("colsample_bytree", "must be in (0, 1]", p.ColsampleByTree)
	}
	if p.Lambda < 0 {
		return errors.NewInvalidConfigurationError("lambda", "must be non-negative", p.Lambda)
	}
	if p.MinSamplesLeaf < 1 {
		return errors.NewInvalidConfigurationError("min_samples_leaf", "must be at least 1", p.MinSamplesLeaf)
	}
	if p.MaxRounds < 1 {
		return errors.NewInvalidConfigurationError("max_rounds", "must be at least 1", p.MaxRounds)
	}
	if p.EarlyStoppingRounds < 0 {
		return errors.NewInvalidConfigurationError("early_stopping_rounds", "must be non-negative", p.EarlyStoppingRounds)
	}
	if p.MaxDepth < 0 {
		return errors.NewInvalidConfigurationError("max_depth", "must be non-negative", p.MaxDepth)
	}
	return nil
}
