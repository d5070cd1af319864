// Package diag inspects a training run's evaluation log for signs of
// overfitting. It is a pure side branch of the pipeline: it never fails
// and never mutates the log.
package diag

import (
	"gonum.org/v1/gonum/stat"

	"github.com/geospatial-ml/spatcv/boost"
	"github.com/geospatial-ml/spatcv/pkg/log"
)

// DefaultThreshold is the generalization-gap level above which a run is
// flagged as overfit. The gap is in the response's RMSE units.
const DefaultThreshold = 0.5

// trendWindow is the number of trailing rounds the gap slope is fit
// over.
const trendWindow = 20

// slopeTolerance separates a flat gap trend from a real drift, in gap
// units per round.
const slopeTolerance = 1e-3

// Trend classifies how the generalization gap moves over the trailing
// rounds.
type Trend int

const (
	// TrendFlat means the gap is stable.
	TrendFlat Trend = iota
	// TrendImproving means the gap is shrinking.
	TrendImproving
	// TrendWidening means the gap is growing, the classic overfit shape.
	TrendWidening
)

func (t Trend) String() string {
	switch t {
	case TrendImproving:
		return "improving"
	case TrendWidening:
		return "widening"
	default:
		return "flat"
	}
}

// Record is the diagnostics verdict for one training run.
type Record struct {
	// BestIteration is the 1-based round the final model was trained
	// for; zero when the log is empty.
	BestIteration int
	// GapAtBest is the validation-train RMSE difference at the best
	// round.
	GapAtBest float64
	// GapSlope is the least-squares slope of the gap over the trailing
	// rounds, in gap units per round.
	GapSlope float64
	// Trend classifies GapSlope.
	Trend Trend
	// Overfit is set when GapAtBest exceeds the analysis threshold.
	Overfit bool
}

// Analyze computes the diagnostics record for an evaluation log. An
// empty or nil log yields a neutral record.
func Analyze(evalLog *boost.EvaluationLog, threshold float64) Record {
	if evalLog == nil || evalLog.Len() == 0 {
		return Record{}
	}

	best, _ := evalLog.Best()
	rec := Record{
		BestIteration: best.Round,
		GapAtBest:     best.Gap(),
	}

	records := evalLog.Records()
	start := len(records) - trendWindow
	if start < 0 {
		start = 0
	}
	window := records[start:]
	if len(window) >= 2 {
		xs := make([]float64, len(window))
		ys := make([]float64, len(window))
		for i, r := range window {
			xs[i] = float64(r.Round)
			ys[i] = r.Gap()
		}
		_, slope := stat.LinearRegression(xs, ys, nil, false)
		rec.GapSlope = slope
	}

	switch {
	case rec.GapSlope > slopeTolerance:
		rec.Trend = TrendWidening
	case rec.GapSlope < -slopeTolerance:
		rec.Trend = TrendImproving
	default:
		rec.Trend = TrendFlat
	}

	rec.Overfit = rec.GapAtBest > threshold

	logger := log.GetLoggerWithName("diag")
	logger.Info("analyzed evaluation log",
		log.StageKey, log.StageDiag,
		log.BestIterationKey, rec.BestIteration,
		log.GapKey, rec.GapAtBest,
		"gap_slope", rec.GapSlope,
		"trend", rec.Trend.String(),
		"overfit", rec.Overfit,
	)
	return rec
}
