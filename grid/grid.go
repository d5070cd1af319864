// Package grid holds the raster-shaped inputs and outputs of spatial
// prediction: a covariate grid of named layers over a fixed extent, and
// the prediction surface written over the same extent.
package grid

import (
	"github.com/geospatial-ml/spatcv/pkg/errors"
)

// DefaultNoData is the sentinel written to cells excluded by the
// validity mask.
const DefaultNoData = -9999.0

// CovariateGrid is a stack of named raster layers sharing one extent and
// resolution. Cells are stored row-major; row 0 is the southern edge.
type CovariateGrid struct {
	width    int
	height   int
	minLon   float64
	minLat   float64
	cellSize float64
	noData   float64

	layerNames []string
	layerIndex map[string]int
	layers     [][]float64
	mask       []bool
}

// NewCovariateGrid creates an empty grid covering width x height cells
// from the lower-left corner (minLon, minLat) at cellSize degrees per
// cell.
func NewCovariateGrid(width, height int, minLon, minLat, cellSize float64) (*CovariateGrid, error) {
	if width < 1 || height < 1 {
		return nil, errors.NewInvalidConfigurationError("grid_extent", "width and height must be positive", [2]int{width, height})
	}
	if cellSize <= 0 {
		return nil, errors.NewInvalidConfigurationError("cell_size", "must be positive degrees", cellSize)
	}
	return &CovariateGrid{
		width:      width,
		height:     height,
		minLon:     minLon,
		minLat:     minLat,
		cellSize:   cellSize,
		noData:     DefaultNoData,
		layerIndex: make(map[string]int),
	}, nil
}

// WithNoData overrides the no-data sentinel.
func (g *CovariateGrid) WithNoData(value float64) *CovariateGrid {
	g.noData = value
	return g
}

// AddLayer appends a named layer. Values are row-major with
// width*height cells; non-finite values are rejected.
func (g *CovariateGrid) AddLayer(name string, values []float64) error {
	if name == "" {
		return errors.NewInvalidConfigurationError("layer_name", "must not be empty", name)
	}
	if _, exists := g.layerIndex[name]; exists {
		return errors.NewInvalidConfigurationError("layer_name", "layer already present", name)
	}
	if len(values) != g.width*g.height {
		return errors.NewDimensionError("grid.AddLayer", g.width*g.height, len(values), 0)
	}
	if err := errors.CheckValues("grid.AddLayer("+name+")", values, -1); err != nil {
		return err
	}
	stored := make([]float64, len(values))
	copy(stored, values)
	g.layerIndex[name] = len(g.layers)
	g.layerNames = append(g.layerNames, name)
	g.layers = append(g.layers, stored)
	return nil
}

// SetMask installs a validity mask; false cells are skipped during
// prediction and receive the no-data sentinel.
func (g *CovariateGrid) SetMask(mask []bool) error {
	if len(mask) != g.width*g.height {
		return errors.NewDimensionError("grid.SetMask", g.width*g.height, len(mask), 0)
	}
	g.mask = make([]bool, len(mask))
	copy(g.mask, mask)
	return nil
}

// Width returns the number of columns.
func (g *CovariateGrid) Width() int { return g.width }

// Height returns the number of rows.
func (g *CovariateGrid) Height() int { return g.height }

// CellSize returns the cell edge length in degrees.
func (g *CovariateGrid) CellSize() float64 { return g.cellSize }

// Origin returns the lower-left corner of the extent.
func (g *CovariateGrid) Origin() (minLon, minLat float64) {
	return g.minLon, g.minLat
}

// NoData returns the no-data sentinel.
func (g *CovariateGrid) NoData() float64 { return g.noData }

// LayerNames returns the layer names in insertion order.
func (g *CovariateGrid) LayerNames() []string {
	out := make([]string, len(g.layerNames))
	copy(out, g.layerNames)
	return out
}

// HasLayer reports whether a layer exists.
func (g *CovariateGrid) HasLayer(name string) bool {
	_, ok := g.layerIndex[name]
	return ok
}

// Layer returns the raw values of a named layer.
func (g *CovariateGrid) Layer(name string) ([]float64, error) {
	idx, ok := g.layerIndex[name]
	if !ok {
		return nil, errors.NewFeatureMismatchError("grid.Layer", []string{name}, len(g.layerNames), len(g.layerNames))
	}
	return g.layers[idx], nil
}

// Valid reports whether the cell at row-major index i participates in
// prediction. Grids without a mask are fully valid.
func (g *CovariateGrid) Valid(i int) bool {
	if g.mask == nil {
		return true
	}
	return g.mask[i]
}

// At returns the value of layer index l at row-major cell i.
func (g *CovariateGrid) At(l, i int) float64 {
	return g.layers[l][i]
}

// LayerIndex returns the internal index of a named layer, or -1.
func (g *CovariateGrid) LayerIndex(name string) int {
	idx, ok := g.layerIndex[name]
	if !ok {
		return -1
	}
	return idx
}

// CellCenter returns the geographic center of the cell at (col, row).
func (g *CovariateGrid) CellCenter(col, row int) (lon, lat float64) {
	lon = g.minLon + (float64(col)+0.5)*g.cellSize
	lat = g.minLat + (float64(row)+0.5)*g.cellSize
	return lon, lat
}

// PredictionSurface is a single raster of model predictions over a
// grid's extent. Masked cells hold the no-data sentinel.
type PredictionSurface struct {
	Width    int
	Height   int
	MinLon   float64
	MinLat   float64
	CellSize float64
	NoData   float64
	// Values is row-major with Width*Height cells.
	Values []float64
}

// At returns the prediction at (col, row).
func (s *PredictionSurface) At(col, row int) float64 {
	return s.Values[row*s.Width+col]
}

// IsNoData reports whether the cell at row-major index i holds the
// sentinel.
func (s *PredictionSurface) IsNoData(i int) bool {
	return s.Values[i] == s.NoData
}
