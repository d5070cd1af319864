package geo

import (
	"sort"

	"github.com/geospatial-ml/spatcv/pkg/errors"
)

// NeighborGraph is a k-nearest neighbor graph over sample coordinates with
// row-standardized weights: each sample's k neighbor weights sum to 1.
type NeighborGraph struct {
	k         int
	neighbors [][]int
	weights   [][]float64
}

// KNearestGraph builds the neighbor graph from parallel lon/lat slices.
// Ties in distance are broken by sample index so the graph is identical
// across runs. Fails with InsufficientDataError when there are not enough
// samples to give every sample k distinct neighbors.
func KNearestGraph(lons, lats []float64, k int) (*NeighborGraph, error) {
	n := len(lons)
	if k < 1 {
		return nil, errors.NewInvalidConfigurationError("k", "neighbor count must be at least 1", k)
	}
	if len(lats) != n {
		return nil, errors.NewDimensionError("geo.KNearestGraph", n, len(lats), 0)
	}
	if n <= k {
		return nil, errors.NewInsufficientDataError("geo.KNearestGraph", k+1, n)
	}

	g := &NeighborGraph{
		k:         k,
		neighbors: make([][]int, n),
		weights:   make([][]float64, n),
	}

	type candidate struct {
		idx  int
		dist float64
	}

	for i := 0; i < n; i++ {
		candidates := make([]candidate, 0, n-1)
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			candidates = append(candidates, candidate{
				idx:  j,
				dist: Haversine(lons[i], lats[i], lons[j], lats[j]),
			})
		}

		sort.Slice(candidates, func(a, b int) bool {
			if candidates[a].dist != candidates[b].dist {
				return candidates[a].dist < candidates[b].dist
			}
			return candidates[a].idx < candidates[b].idx
		})

		g.neighbors[i] = make([]int, k)
		g.weights[i] = make([]float64, k)
		w := 1.0 / float64(k)
		for m := 0; m < k; m++ {
			g.neighbors[i][m] = candidates[m].idx
			g.weights[i][m] = w
		}
	}

	return g, nil
}

// K returns the neighbor count.
func (g *NeighborGraph) K() int {
	return g.k
}

// Len returns the number of samples in the graph.
func (g *NeighborGraph) Len() int {
	return len(g.neighbors)
}

// Neighbors returns the ordered neighbor indices of sample i.
func (g *NeighborGraph) Neighbors(i int) []int {
	return g.neighbors[i]
}

// Weights returns the row-standardized weights of sample i's neighbors.
func (g *NeighborGraph) Weights(i int) []float64 {
	return g.weights[i]
}

// Weight returns w[i][j], the weight of edge i→j, or 0 when j is not a
// neighbor of i.
func (g *NeighborGraph) Weight(i, j int) float64 {
	for m, idx := range g.neighbors[i] {
		if idx == j {
			return g.weights[i][m]
		}
	}
	return 0
}
