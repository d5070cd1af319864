// Package cv partitions samples into cross-validation folds. Two strategies
// implement the same Strategy interface: spatially-contiguous block
// assignment for autocorrelated data and a stratified random partition
// otherwise. The strategy is selected once from the detector's report.
package cv

import (
	"github.com/geospatial-ml/spatcv/pkg/errors"
)

// FoldAssignment maps every sample index to exactly one fold id in [0, k).
type FoldAssignment struct {
	folds []int
	k     int
}

// newFoldAssignment validates the partition invariants: every sample
// assigned, every fold non-empty.
func newFoldAssignment(folds []int, k int) (*FoldAssignment, error) {
	counts := make([]int, k)
	for i, f := range folds {
		if f < 0 || f >= k {
			return nil, errors.Newf("cv: sample %d assigned to fold %d outside [0, %d)", i, f, k)
		}
		counts[f]++
	}
	for f, c := range counts {
		if c == 0 {
			return nil, errors.Newf("cv: fold %d is empty", f)
		}
	}
	return &FoldAssignment{folds: folds, k: k}, nil
}

// NumFolds returns k.
func (fa *FoldAssignment) NumFolds() int {
	return fa.k
}

// Len returns the number of assigned samples.
func (fa *FoldAssignment) Len() int {
	return len(fa.folds)
}

// Fold returns the fold id of sample i.
func (fa *FoldAssignment) Fold(i int) int {
	return fa.folds[i]
}

// Sizes returns the per-fold sample counts.
func (fa *FoldAssignment) Sizes() []int {
	sizes := make([]int, fa.k)
	for _, f := range fa.folds {
		sizes[f]++
	}
	return sizes
}

// TestIndices returns the sample indices held out by fold f, in ascending
// order.
func (fa *FoldAssignment) TestIndices(f int) []int {
	var out []int
	for i, fold := range fa.folds {
		if fold == f {
			out = append(out, i)
		}
	}
	return out
}

// TrainIndices returns the sample indices outside fold f, in ascending
// order.
func (fa *FoldAssignment) TrainIndices(f int) []int {
	out := make([]int, 0, len(fa.folds))
	for i, fold := range fa.folds {
		if fold != f {
			out = append(out, i)
		}
	}
	return out
}

// Assignments returns a copy of the index-to-fold mapping.
func (fa *FoldAssignment) Assignments() []int {
	out := make([]int, len(fa.folds))
	copy(out, fa.folds)
	return out
}
