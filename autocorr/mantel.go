package autocorr

import (
	"math"
	"math/rand/v2"
	"runtime"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/geospatial-ml/spatcv/core/parallel"
)

// mantelStream offsets the root seed so permutation draws never share a
// stream with another stage. Draw d uses PCG(seed, mantelStream+d), making
// the empirical distribution independent of worker scheduling.
const mantelStream uint64 = 0x6d616e74

// mantelTest runs the distance-decay permutation test: Pearson correlation
// between the upper triangles of the dissimilarity and geographic distance
// matrices, compared against the distribution obtained by permuting sample
// labels. The p-value is one-sided for positive distance decay.
func mantelTest(dis, geo *mat.SymDense, permutations int, seed uint64) (r, pValue float64) {
	n, _ := dis.Dims()
	pairs := n * (n - 1) / 2

	x := make([]float64, 0, pairs)
	y := make([]float64, 0, pairs)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			x = append(x, dis.At(i, j))
			y = append(y, geo.At(i, j))
		}
	}
	r = stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		// Degenerate input: one side has zero variance, so no distance
		// decay can exist.
		return 0, 1
	}

	// Permutation draws only read the shared matrices; each draw owns its
	// RNG, so the fan-out needs no locking.
	workers := runtime.NumCPU()
	exceed := make([]int, workers)
	parallel.ParallelizeWorkers(permutations, workers, func(worker, start, end int) {
		perm := make([]int, n)
		px := make([]float64, pairs)
		for d := start; d < end; d++ {
			rng := rand.New(rand.NewPCG(seed, mantelStream+uint64(d)))
			for i := range perm {
				perm[i] = i
			}
			rng.Shuffle(n, func(i, j int) {
				perm[i], perm[j] = perm[j], perm[i]
			})

			idx := 0
			for i := 0; i < n; i++ {
				for j := i + 1; j < n; j++ {
					px[idx] = dis.At(perm[i], perm[j])
					idx++
				}
			}
			if stat.Correlation(px, y, nil) >= r {
				exceed[worker]++
			}
		}
	})

	total := 0
	for _, c := range exceed {
		total += c
	}
	pValue = (float64(total) + 1) / (float64(permutations) + 1)
	return r, pValue
}
