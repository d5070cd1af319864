package boost

import (
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/geospatial-ml/spatcv/core/parallel"
	"github.com/geospatial-ml/spatcv/cv"
	"github.com/geospatial-ml/spatcv/dataset"
	"github.com/geospatial-ml/spatcv/metrics"
	"github.com/geospatial-ml/spatcv/pkg/errors"
	"github.com/geospatial-ml/spatcv/pkg/log"
)

// PCG stream offsets keeping per-fold and final-retrain randomness on
// disjoint sequences of the same root seed.
const (
	foldStream  uint64 = 0x666f6c64
	finalStream uint64 = 0x66696e6c
)

// foldState is the per-fold training state during a lockstep run.
type foldState struct {
	fold    int
	builder *treeBuilder
	train   []int
	test    []int
	preds   []float64
	// round metrics filled in by the worker each lockstep round
	trainRMSE float64
	valRMSE   float64
}

// Train runs cross-validated boosting over the fold assignment and
// retrains the chosen ensemble on the full sample set.
//
// The folds advance in lockstep, one round at a time, so the early
// stopping decision observes the mean held-out RMSE across folds. The
// best round is the 1-based round with the minimum mean validation RMSE;
// the returned model contains exactly that many trees, fit on all
// samples. The evaluation log is returned even on NonConvergenceError so
// callers can inspect the failed run.
func Train(ss *dataset.SampleSet, folds *cv.FoldAssignment, params Params) (model *Model, evalLog *EvaluationLog, err error) {
	defer errors.Recover(&err, "boost.Train")

	if err := params.Validate(); err != nil {
		return nil, nil, err
	}
	n := ss.Len()
	if n < minTrainingSamples {
		return nil, nil, errors.NewInsufficientDataError("boost.Train", minTrainingSamples, n)
	}
	if folds.Len() != n {
		return nil, nil, errors.NewDimensionError("boost.Train", n, folds.Len(), 0)
	}

	logger := log.GetLoggerWithName("boost.trainer")
	logger.Info("starting cross-validated training",
		log.StageKey, log.StageBoost,
		log.SamplesKey, n,
		log.FeaturesKey, ss.Schema().Len(),
		log.FoldsKey, folds.NumFolds(),
		log.SeedKey, params.Seed,
	)

	x := ss.CovariateMatrix()
	y := ss.Responses()

	k := folds.NumFolds()
	states := make([]*foldState, k)
	for f := 0; f < k; f++ {
		states[f] = newFoldState(x, y, folds, f, params)
	}

	evalLog = &EvaluationLog{}
	bestRound, bestVal := 0, 0.0
	roundsRun := 0

	for round := 1; round <= params.MaxRounds; round++ {
		parallel.ParallelizeWorkers(k, k, func(_, start, end int) {
			for f := start; f < end; f++ {
				states[f].step(x, y, round, params)
			}
		})

		meanTrain, meanVal := 0.0, 0.0
		for _, st := range states {
			meanTrain += st.trainRMSE
			meanVal += st.valRMSE
		}
		meanTrain /= float64(k)
		meanVal /= float64(k)

		evalLog.append(RoundRecord{
			Round:            round,
			TrainMetric:      meanTrain,
			ValidationMetric: meanVal,
		})
		roundsRun = round

		if bestRound == 0 || meanVal < bestVal {
			bestRound = round
			bestVal = meanVal
		}

		logger.Debug("completed boosting round",
			log.RoundKey, round,
			log.TrainMetricKey, meanTrain,
			log.ValidationMetricKey, meanVal,
		)

		if params.EarlyStoppingRounds > 0 && round-bestRound >= params.EarlyStoppingRounds {
			logger.Info("early stopping triggered",
				log.RoundKey, round,
				log.BestIterationKey, bestRound,
				log.ValidationMetricKey, bestVal,
			)
			break
		}
	}

	if roundsRun > 1 && bestRound == 1 {
		return nil, evalLog, errors.NewNonConvergenceError(roundsRun, bestVal)
	}

	model, err = retrain(ss, x, y, bestRound, params)
	if err != nil {
		return nil, evalLog, err
	}

	logger.Info("training complete",
		log.BestIterationKey, bestRound,
		log.ValidationMetricKey, bestVal,
	)
	return model, evalLog, nil
}

func newFoldState(x *mat.Dense, y []float64, folds *cv.FoldAssignment, f int, params Params) *foldState {
	train := folds.TrainIndices(f)
	test := folds.TestIndices(f)

	init := 0.0
	for _, i := range train {
		init += y[i]
	}
	init /= float64(len(train))

	preds := make([]float64, len(y))
	for i := range preds {
		preds[i] = init
	}

	return &foldState{
		fold:    f,
		builder: newTreeBuilder(x, params),
		train:   train,
		test:    test,
		preds:   preds,
	}
}

// step advances one fold by one boosting round and refreshes its metrics.
func (st *foldState) step(x *mat.Dense, y []float64, round int, params Params) {
	// Sub-seed derived from fold index and round so results do not
	// depend on worker scheduling.
	rng := rand.New(rand.NewPCG(params.Seed, foldStream+uint64(st.fold)*1_000_003+uint64(round)))

	grads := make([]float64, len(y))
	hessians := make([]float64, len(y))
	for _, i := range st.train {
		grads[i] = st.preds[i] - y[i]
		hessians[i] = 1.0
	}

	rows := sampleRows(st.train, params.Subsample, rng)
	features := sampleFeatures(x, params.ColsampleByTree, rng)

	tr := st.builder.build(rows, features, grads, hessians)
	for i := range st.preds {
		st.preds[i] += tr.predictAt(x, i)
	}

	st.trainRMSE = rmseAt(y, st.preds, st.train)
	st.valRMSE = rmseAt(y, st.preds, st.test)
}

// retrain fits the final ensemble on all samples with exactly rounds
// trees, reusing the same subsampling discipline on a disjoint stream.
func retrain(ss *dataset.SampleSet, x *mat.Dense, y []float64, rounds int, params Params) (*Model, error) {
	n := len(y)

	init := 0.0
	for _, v := range y {
		init += v
	}
	init /= float64(n)

	preds := make([]float64, n)
	for i := range preds {
		preds[i] = init
	}

	allRows := make([]int, n)
	for i := range allRows {
		allRows[i] = i
	}

	builder := newTreeBuilder(x, params)
	grads := make([]float64, n)
	hessians := make([]float64, n)
	trees := make([]tree, 0, rounds)

	for round := 1; round <= rounds; round++ {
		rng := rand.New(rand.NewPCG(params.Seed, finalStream+uint64(round)))
		for i := 0; i < n; i++ {
			grads[i] = preds[i] - y[i]
			hessians[i] = 1.0
		}

		rows := sampleRows(allRows, params.Subsample, rng)
		features := sampleFeatures(x, params.ColsampleByTree, rng)

		tr := builder.build(rows, features, grads, hessians)
		for i := 0; i < n; i++ {
			preds[i] += tr.predictAt(x, i)
		}
		trees = append(trees, tr)
	}

	return &Model{
		trees:         trees,
		initScore:     init,
		trainedRounds: rounds,
		schema:        ss.Schema(),
		params:        params,
		importance:    builder.gainByFeature,
	}, nil
}

// sampleRows draws a row subset without replacement; fraction 1 keeps
// every row.
func sampleRows(rows []int, fraction float64, rng *rand.Rand) []int {
	if fraction >= 1 {
		return rows
	}
	count := int(fraction * float64(len(rows)))
	if count < 1 {
		count = 1
	}
	perm := rng.Perm(len(rows))
	out := make([]int, count)
	for i := 0; i < count; i++ {
		out[i] = rows[perm[i]]
	}
	sort.Ints(out)
	return out
}

// sampleFeatures draws a feature subset without replacement; fraction 1
// keeps every feature.
func sampleFeatures(x *mat.Dense, fraction float64, rng *rand.Rand) []int {
	_, cols := x.Dims()
	all := make([]int, cols)
	for i := range all {
		all[i] = i
	}
	if fraction >= 1 {
		return all
	}
	count := int(fraction * float64(cols))
	if count < 1 {
		count = 1
	}
	perm := rng.Perm(cols)
	out := make([]int, count)
	for i := 0; i < count; i++ {
		out[i] = perm[i]
	}
	sort.Ints(out)
	return out
}

// rmseAt computes RMSE restricted to the given indices.
func rmseAt(y, preds []float64, indices []int) float64 {
	yTrue := make([]float64, len(indices))
	yPred := make([]float64, len(indices))
	for j, i := range indices {
		yTrue[j] = y[i]
		yPred[j] = preds[i]
	}
	rmse, err := metrics.RMSESlice(yTrue, yPred)
	if err != nil {
		return 0
	}
	return rmse
}
