// Standard attribute keys for pipeline logging.
//
// Using these keys consistently across stages keeps the structured logs
// filterable: every record carries the stage name, and data-shape and
// training attributes follow a hierarchical naming convention
// (e.g. "data.samples", "training.round").

package log

// Stage and operation context.
const (
	// StageKey identifies the pipeline stage emitting the record.
	// Standard values: "autocorr", "cv", "boost", "diag", "predict".
	StageKey = "pipeline.stage"

	// OperationKey specifies the operation being performed.
	// Examples: "detect", "assign_folds", "train", "project"
	OperationKey = "pipeline.operation"

	// ComponentKey identifies the package performing the operation.
	ComponentKey = "component"

	// SeedKey records the root random seed for reproducibility.
	SeedKey = "config.seed"
)

// Data shape and characteristics.
const (
	// SamplesKey indicates the number of samples (rows) being processed.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of covariates (columns).
	FeaturesKey = "data.features"

	// NeighborsKey indicates the neighbor count k of the spatial graph.
	NeighborsKey = "data.neighbors"

	// GridCellsKey indicates the number of valid cells in a covariate grid.
	GridCellsKey = "data.grid_cells"
)

// Spatial statistics.
const (
	// MoranIKey records the observed Moran's I statistic.
	MoranIKey = "stats.moran_i"

	// MoranPKey records the analytic p-value for Moran's I.
	MoranPKey = "stats.moran_p"

	// MantelRKey records the observed Mantel correlation.
	MantelRKey = "stats.mantel_r"

	// MantelPKey records the permutation p-value for the Mantel test.
	MantelPKey = "stats.mantel_p"

	// AutocorrelatedKey records the combined detector decision.
	AutocorrelatedKey = "stats.autocorrelated"
)

// Cross-validation context.
const (
	// FoldsKey indicates the requested fold count.
	FoldsKey = "cv.folds"

	// StrategyKey names the fold-generation strategy in use.
	// Standard values: "spatial_block", "random".
	StrategyKey = "cv.strategy"

	// BlocksKey indicates the number of non-empty spatial blocks.
	BlocksKey = "cv.blocks"

	// BlockSizeKey records the spatial block edge length in metres.
	BlockSizeKey = "cv.block_size_m"
)

// Training progress and metrics.
const (
	// RoundKey records the current boosting round (1-based).
	RoundKey = "training.round"

	// BestIterationKey records the round selected by early stopping.
	BestIterationKey = "training.best_iteration"

	// TrainMetricKey records the aggregated training metric for a round.
	TrainMetricKey = "metrics.train"

	// ValidationMetricKey records the aggregated validation metric.
	ValidationMetricKey = "metrics.validation"

	// GapKey records the generalization gap (validation - train).
	GapKey = "metrics.gap"

	// DurationMsKey records the execution time of an operation in
	// milliseconds.
	DurationMsKey = "perf.duration_ms"
)

// Error and warning context.
const (
	// ErrorTypeKey categorizes the error encountered.
	// Examples: "InsufficientDataError", "DegenerateBlockError"
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information, populated
	// automatically by the error-aware handler.
	StacktraceKey = "error.stacktrace"
)

// Standard attribute values.
const (
	StageAutocorr = "autocorr"
	StageCV       = "cv"
	StageBoost    = "boost"
	StageDiag     = "diag"
	StagePredict  = "predict"

	StrategySpatialBlock = "spatial_block"
	StrategyRandom       = "random"
)
