// Package predict projects a trained model onto a covariate grid. Cells
// are assembled in the model's feature schema order and swept in
// parallel by grid row; masked cells receive the grid's no-data
// sentinel.
package predict

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/geospatial-ml/spatcv/boost"
	"github.com/geospatial-ml/spatcv/core/parallel"
	"github.com/geospatial-ml/spatcv/grid"
	"github.com/geospatial-ml/spatcv/pkg/errors"
	"github.com/geospatial-ml/spatcv/pkg/log"
)

// Surface predicts the response for every valid grid cell. The grid must
// carry one layer per schema feature; extra layers are ignored. The
// returned surface shares the grid's extent and no-data sentinel.
func Surface(model *boost.Model, g *grid.CovariateGrid) (*grid.PredictionSurface, error) {
	schema := model.Schema()

	var missing []string
	layerOf := make([]int, schema.Len())
	for i, name := range schema.Names() {
		idx := g.LayerIndex(name)
		if idx < 0 {
			missing = append(missing, name)
			continue
		}
		layerOf[i] = idx
	}
	if len(missing) > 0 {
		return nil, errors.NewFeatureMismatchError("predict.Surface", missing, schema.Len(), len(g.LayerNames()))
	}

	width, height := g.Width(), g.Height()
	cells := width * height
	values := make([]float64, cells)
	noData := g.NoData()

	var firstErr error
	workerErrs := make([]error, height)
	parallel.Parallelize(height, func(startRow, endRow int) {
		row := make([]float64, schema.Len())
		for r := startRow; r < endRow; r++ {
			for c := 0; c < width; c++ {
				i := r*width + c
				if !g.Valid(i) {
					values[i] = noData
					continue
				}
				for f, l := range layerOf {
					row[f] = g.At(l, i)
				}
				pred, err := model.PredictRow(row)
				if err != nil {
					workerErrs[r] = errors.Wrapf(err, "predict.Surface: cell %d", i)
					return
				}
				values[i] = pred
			}
		}
	})
	for _, err := range workerErrs {
		if err != nil {
			firstErr = err
			break
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}

	minLon, minLat := g.Origin()
	valid := 0
	for i := 0; i < cells; i++ {
		if g.Valid(i) {
			valid++
		}
	}

	logger := log.GetLoggerWithName("predict")
	logger.Info("projected model onto grid",
		log.StageKey, log.StagePredict,
		log.GridCellsKey, cells,
		"valid_cells", valid,
		log.FeaturesKey, schema.Len(),
	)

	return &grid.PredictionSurface{
		Width:    width,
		Height:   height,
		MinLon:   minLon,
		MinLat:   minLat,
		CellSize: g.CellSize(),
		NoData:   noData,
		Values:   values,
	}, nil
}

// DriverCorrelation computes the Pearson correlation between the
// prediction surface and a named driver layer over the valid cells. It
// is advisory: a correlation below expected emits a warning through the
// package warning handler instead of failing. NaN is returned when
// fewer than two valid cells exist or either side is constant.
func DriverCorrelation(surface *grid.PredictionSurface, g *grid.CovariateGrid, layer string, expected float64) (float64, error) {
	driver, err := g.Layer(layer)
	if err != nil {
		return math.NaN(), err
	}
	if len(driver) != len(surface.Values) {
		return math.NaN(), errors.NewDimensionError("predict.DriverCorrelation", len(surface.Values), len(driver), 0)
	}

	var xs, ys []float64
	for i, v := range surface.Values {
		if !g.Valid(i) || surface.IsNoData(i) {
			continue
		}
		xs = append(xs, v)
		ys = append(ys, driver[i])
	}
	if len(xs) < 2 {
		return math.NaN(), nil
	}

	corr := stat.Correlation(xs, ys, nil)
	if math.IsNaN(corr) {
		return math.NaN(), nil
	}
	if corr < expected {
		errors.Warn(errors.NewDriverCorrelationWarning(layer, corr, expected))
	}
	return corr, nil
}
