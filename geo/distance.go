// Package geo provides the spatial primitives behind the autocorrelation
// tests and the block-based fold assignment: great-circle distances,
// pairwise distance matrices, and the k-nearest neighbor graph.
package geo

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// earthRadiusM is the mean Earth radius in metres.
const earthRadiusM = 6371000.0

// Haversine returns the great-circle distance in metres between two WGS84
// coordinates.
func Haversine(lon1, lat1, lon2, lat2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}

// DistanceMatrix computes the symmetric matrix of pairwise great-circle
// distances for samples given as parallel lon/lat slices. The diagonal is
// zero.
func DistanceMatrix(lons, lats []float64) *mat.SymDense {
	n := len(lons)
	d := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d.SetSym(i, j, Haversine(lons[i], lats[i], lons[j], lats[j]))
		}
	}
	return d
}

// ResponseDissimilarity computes the symmetric matrix of pairwise absolute
// response differences. It stands in for the community dissimilarity matrix
// in the distance-decay test; the diagonal is zero by construction.
func ResponseDissimilarity(responses []float64) *mat.SymDense {
	n := len(responses)
	d := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d.SetSym(i, j, math.Abs(responses[i]-responses[j]))
		}
	}
	return d
}

// ProjectEquirectangular projects lon/lat coordinates to planar metre
// offsets relative to the set's centroid latitude. Good enough for bucketing
// samples into blocks tens of kilometres wide; not a general-purpose
// projection.
func ProjectEquirectangular(lons, lats []float64) (xs, ys []float64) {
	n := len(lats)
	xs = make([]float64, n)
	ys = make([]float64, n)
	if n == 0 {
		return xs, ys
	}

	var midLat float64
	for _, lat := range lats {
		midLat += lat
	}
	midLat /= float64(n)
	cosMid := math.Cos(midLat * math.Pi / 180)

	for i := 0; i < n; i++ {
		xs[i] = lons[i] * math.Pi / 180 * earthRadiusM * cosMid
		ys[i] = lats[i] * math.Pi / 180 * earthRadiusM
	}
	return xs, ys
}
