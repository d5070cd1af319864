package autocorr

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/geospatial-ml/spatcv/geo"
)

// moranTest computes global Moran's I of the response over the neighbor
// graph together with its analytic p-value. The p-value is one-sided for
// positive autocorrelation under the randomization assumption: that is the
// leakage direction spatial cross-validation guards against.
func moranTest(g *geo.NeighborGraph, responses []float64) (iStat, pValue float64) {
	n := len(responses)

	var mean float64
	for _, y := range responses {
		mean += y
	}
	mean /= float64(n)

	z := make([]float64, n)
	var m2, m4 float64
	for i, y := range responses {
		z[i] = y - mean
		m2 += z[i] * z[i]
		m4 += z[i] * z[i] * z[i] * z[i]
	}
	if m2 == 0 {
		// Constant response carries no spatial signal.
		return 0, 1
	}

	// S0 and the cross product. Rows are standardized, so each row of the
	// weight matrix sums to 1 and S0 = n.
	s0 := float64(n)
	var cross float64
	for i := 0; i < n; i++ {
		for m, j := range g.Neighbors(i) {
			cross += g.Weights(i)[m] * z[i] * z[j]
		}
	}
	iStat = (float64(n) / s0) * cross / m2

	// Randomization moments (Cliff & Ord). S1 over unordered pairs, S2 over
	// row plus column sums.
	var s1 float64
	colSums := make([]float64, n)
	for i := 0; i < n; i++ {
		for m, j := range g.Neighbors(i) {
			colSums[j] += g.Weights(i)[m]
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			w := g.Weight(i, j) + g.Weight(j, i)
			s1 += w * w
		}
	}
	var s2 float64
	for i := 0; i < n; i++ {
		rc := 1 + colSums[i]
		s2 += rc * rc
	}

	nf := float64(n)
	ei := -1 / (nf - 1)
	b2 := nf * m4 / (m2 * m2)

	num := nf*((nf*nf-3*nf+3)*s1-nf*s2+3*s0*s0) -
		b2*((nf*nf-nf)*s1-2*nf*s2+6*s0*s0)
	den := (nf - 1) * (nf - 2) * (nf - 3) * s0 * s0
	variance := num/den - ei*ei

	if variance <= 0 {
		return iStat, 1
	}

	zScore := (iStat - ei) / math.Sqrt(variance)
	return iStat, distuv.UnitNormal.Survival(zScore)
}
