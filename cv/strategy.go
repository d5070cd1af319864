package cv

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/geospatial-ml/spatcv/dataset"
	"github.com/geospatial-ml/spatcv/geo"
	"github.com/geospatial-ml/spatcv/pkg/errors"
	"github.com/geospatial-ml/spatcv/pkg/log"
)

// Strategy partitions a sample set into k folds.
type Strategy interface {
	// Assign maps every sample to a fold. The returned assignment
	// always covers all samples with k non-empty folds.
	Assign(ss *dataset.SampleSet) (*FoldAssignment, error)
	// Name identifies the strategy in logs and pipeline results.
	Name() string
}

// SelectionMode controls how spatial blocks are dealt to folds.
type SelectionMode int

const (
	// SelectionRandom deals blocks to folds in a seeded shuffled order.
	SelectionRandom SelectionMode = iota
	// SelectionSystematic deals blocks in row-major block-coordinate
	// order, which is reproducible without a seed.
	SelectionSystematic
)

// DefaultBlockSize is the spatial block edge length in metres.
const DefaultBlockSize = 50000.0

// SpatialBlockStrategy groups samples into square spatial blocks and
// assigns whole blocks to folds, so that train and test samples are never
// near neighbours. Use it when the detector reports autocorrelation.
type SpatialBlockStrategy struct {
	K         int
	BlockSize float64
	Mode      SelectionMode
	Seed      uint64
}

// NewSpatialBlockStrategy returns a spatial block strategy with the
// default 50 km block size and random block order.
func NewSpatialBlockStrategy(k int, seed uint64) *SpatialBlockStrategy {
	return &SpatialBlockStrategy{K: k, BlockSize: DefaultBlockSize, Mode: SelectionRandom, Seed: seed}
}

// WithBlockSize sets the block edge length in metres.
func (s *SpatialBlockStrategy) WithBlockSize(size float64) *SpatialBlockStrategy {
	s.BlockSize = size
	return s
}

// WithMode sets the block-to-fold dealing order.
func (s *SpatialBlockStrategy) WithMode(mode SelectionMode) *SpatialBlockStrategy {
	s.Mode = mode
	return s
}

// Name implements Strategy.
func (s *SpatialBlockStrategy) Name() string {
	return log.StrategySpatialBlock
}

type blockKey struct {
	col, row int
}

// Assign implements Strategy. Samples are projected to local metre
// offsets, bucketed into BlockSize squares, and whole blocks are dealt
// round-robin to folds. Fails with DegenerateBlockError when the
// geometry yields fewer non-empty blocks than folds.
func (s *SpatialBlockStrategy) Assign(ss *dataset.SampleSet) (*FoldAssignment, error) {
	if s.K < 2 {
		return nil, errors.NewInvalidConfigurationError("folds", "must be at least 2", s.K)
	}
	if s.BlockSize <= 0 {
		return nil, errors.NewInvalidConfigurationError("block_size", "must be positive metres", s.BlockSize)
	}
	n := ss.Len()
	if n < s.K {
		return nil, errors.NewInsufficientDataError("cv.Assign", s.K, n)
	}

	lons, lats := ss.Coordinates()
	xs, ys := geo.ProjectEquirectangular(lons, lats)

	blocks := make(map[blockKey][]int, n)
	for i := 0; i < n; i++ {
		key := blockKey{
			col: int(math.Floor(xs[i] / s.BlockSize)),
			row: int(math.Floor(ys[i] / s.BlockSize)),
		}
		blocks[key] = append(blocks[key], i)
	}
	if len(blocks) < s.K {
		return nil, errors.NewDegenerateBlockError(len(blocks), s.K, s.BlockSize)
	}

	keys := make([]blockKey, 0, len(blocks))
	for key := range blocks {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].row != keys[b].row {
			return keys[a].row < keys[b].row
		}
		return keys[a].col < keys[b].col
	})
	if s.Mode == SelectionRandom {
		rng := rand.New(rand.NewPCG(s.Seed, s.Seed))
		rng.Shuffle(len(keys), func(a, b int) {
			keys[a], keys[b] = keys[b], keys[a]
		})
	}

	folds := make([]int, n)
	for b, key := range keys {
		fold := b % s.K
		for _, i := range blocks[key] {
			folds[i] = fold
		}
	}

	logger := log.GetLoggerWithName("cv.spatial")
	logger.Debug("assigned spatial blocks to folds",
		log.StrategyKey, s.Name(),
		log.BlocksKey, len(blocks),
		log.BlockSizeKey, s.BlockSize,
		log.FoldsKey, s.K,
		log.SamplesKey, n,
	)
	return newFoldAssignment(folds, s.K)
}

// RandomStrategy partitions samples into k folds stratified by response
// quantile band, keeping every fold's response distribution close to the
// full set's. Fold sizes differ by at most one.
type RandomStrategy struct {
	K    int
	Seed uint64
}

// NewRandomStrategy returns a stratified random strategy.
func NewRandomStrategy(k int, seed uint64) *RandomStrategy {
	return &RandomStrategy{K: k, Seed: seed}
}

// Name implements Strategy.
func (s *RandomStrategy) Name() string {
	return log.StrategyRandom
}

// Assign implements Strategy. Samples are sorted by response, chopped
// into bands of k, each band shuffled, and band members dealt one per
// fold.
func (s *RandomStrategy) Assign(ss *dataset.SampleSet) (*FoldAssignment, error) {
	if s.K < 2 {
		return nil, errors.NewInvalidConfigurationError("folds", "must be at least 2", s.K)
	}
	n := ss.Len()
	if n < s.K {
		return nil, errors.NewInsufficientDataError("cv.Assign", s.K, n)
	}

	responses := ss.Responses()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return responses[order[a]] < responses[order[b]]
	})

	rng := rand.New(rand.NewPCG(s.Seed, s.Seed))
	folds := make([]int, n)
	for start := 0; start < n; start += s.K {
		end := start + s.K
		if end > n {
			end = n
		}
		band := order[start:end]
		rng.Shuffle(len(band), func(a, b int) {
			band[a], band[b] = band[b], band[a]
		})
		for j, i := range band {
			folds[i] = j
		}
	}

	logger := log.GetLoggerWithName("cv.random")
	logger.Debug("assigned stratified random folds",
		log.StrategyKey, s.Name(),
		log.FoldsKey, s.K,
		log.SamplesKey, n,
	)
	return newFoldAssignment(folds, s.K)
}

// Options carries the knobs ForReport needs to construct either strategy.
type Options struct {
	Folds     int
	BlockSize float64
	Mode      SelectionMode
	Seed      uint64
}

// ForReport selects the fold strategy from the detector outcome: spatial
// blocks when autocorrelation was found, stratified random otherwise.
func ForReport(autocorrelated bool, opts Options) Strategy {
	if opts.BlockSize == 0 {
		opts.BlockSize = DefaultBlockSize
	}
	if autocorrelated {
		return &SpatialBlockStrategy{
			K:         opts.Folds,
			BlockSize: opts.BlockSize,
			Mode:      opts.Mode,
			Seed:      opts.Seed,
		}
	}
	return &RandomStrategy{K: opts.Folds, Seed: opts.Seed}
}
