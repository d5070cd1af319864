// Package dataset defines the immutable sample structures consumed by every
// pipeline stage. A SampleSet is validated once on construction and treated
// as read-only afterwards; stages share it without copying or locking.
package dataset

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/geospatial-ml/spatcv/pkg/errors"
)

// Sample is a single survey observation: a geographic coordinate, the
// scalar response (the diversity metric computed upstream), and the
// covariate vector ordered per the schema.
type Sample struct {
	ID         string
	Lon        float64
	Lat        float64
	Response   float64
	Covariates []float64
}

// SampleSet is an ordered, validated collection of samples.
type SampleSet struct {
	schema  *FeatureSchema
	samples []Sample
}

// NewSampleSet validates and wraps a slice of samples. It enforces the
// invariants the rest of the pipeline relies on: non-empty set, unique ids,
// covariate vectors matching the schema length, and no missing (NaN/Inf)
// covariate or response values.
func NewSampleSet(schema *FeatureSchema, samples []Sample) (*SampleSet, error) {
	if schema == nil {
		return nil, errors.NewInvalidConfigurationError("schema", "must not be nil", nil)
	}
	if len(samples) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset.NewSampleSet")
	}

	seen := make(map[string]struct{}, len(samples))
	for i, s := range samples {
		if s.ID == "" {
			return nil, errors.Newf("dataset.NewSampleSet: sample %d has an empty id", i)
		}
		if _, dup := seen[s.ID]; dup {
			return nil, errors.Newf("dataset.NewSampleSet: duplicate sample id %q", s.ID)
		}
		seen[s.ID] = struct{}{}

		if len(s.Covariates) != schema.Len() {
			return nil, errors.NewDimensionError("dataset.NewSampleSet", schema.Len(), len(s.Covariates), 1)
		}
		if err := errors.CheckValues("dataset.NewSampleSet", s.Covariates, i); err != nil {
			return nil, err
		}
		if err := errors.CheckScalar("dataset.NewSampleSet", s.Response, i); err != nil {
			return nil, err
		}
		if math.Abs(s.Lat) > 90 || math.Abs(s.Lon) > 180 {
			return nil, errors.Newf("dataset.NewSampleSet: sample %q has coordinate outside WGS84 bounds (%.4f, %.4f)", s.ID, s.Lon, s.Lat)
		}
	}

	return &SampleSet{
		schema:  schema,
		samples: append([]Sample(nil), samples...),
	}, nil
}

// Len returns the sample count.
func (ss *SampleSet) Len() int {
	return len(ss.samples)
}

// Schema returns the covariate schema.
func (ss *SampleSet) Schema() *FeatureSchema {
	return ss.schema
}

// Sample returns the sample at index i.
func (ss *SampleSet) Sample(i int) Sample {
	return ss.samples[i]
}

// Coordinates returns parallel longitude and latitude slices in sample
// order.
func (ss *SampleSet) Coordinates() (lons, lats []float64) {
	lons = make([]float64, len(ss.samples))
	lats = make([]float64, len(ss.samples))
	for i, s := range ss.samples {
		lons[i] = s.Lon
		lats[i] = s.Lat
	}
	return lons, lats
}

// Responses returns the response values in sample order.
func (ss *SampleSet) Responses() []float64 {
	out := make([]float64, len(ss.samples))
	for i, s := range ss.samples {
		out[i] = s.Response
	}
	return out
}

// CovariateMatrix returns the N×F covariate matrix in schema order.
func (ss *SampleSet) CovariateMatrix() *mat.Dense {
	n := len(ss.samples)
	f := ss.schema.Len()
	X := mat.NewDense(n, f, nil)
	for i, s := range ss.samples {
		X.SetRow(i, s.Covariates)
	}
	return X
}

// ResponseVector returns the response values as a column vector.
func (ss *SampleSet) ResponseVector() *mat.VecDense {
	return mat.NewVecDense(len(ss.samples), ss.Responses())
}
