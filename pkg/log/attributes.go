// Standard attribute keys for pipeline and estimator logging. Keys follow
// a dotted hierarchy ("model.name", "data.samples") so log lines can be
// filtered by category.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator type, e.g. "GaussianNB".
	ModelNameKey = "model.name"

	// OperationKey is one of the Operation* values below.
	OperationKey = "ml.operation"

	// ComponentKey identifies the package doing the work, e.g. "features".
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the run.
	PhaseKey = "ml.phase"
)

// Data shape.
const (
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"

	// DroppedKey counts rows removed because of missing values.
	DroppedKey = "data.dropped"

	// ColumnKey names a single source column.
	ColumnKey = "data.column"

	// PathKey is an input or output file path.
	PathKey = "data.path"
)

// Metrics and timing.
const (
	DurationMsKey = "perf.duration_ms"
	AccuracyKey   = "metrics.accuracy"
	RecallKey     = "metrics.recall"
	PrecisionKey  = "metrics.precision"

	// FoldKey is the 1-based cross-validation fold number.
	FoldKey = "cv.fold"

	// IterationKey records the current iteration of an iterative solver.
	IterationKey = "training.iteration"
)

// Configuration.
const (
	RandomSeedKey = "config.random_seed"
	EstimatorsKey = "hyperparams.n_estimators"
)

// Standard attribute values.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationScore   = "score"
	OperationLoad    = "load"
	OperationEncode  = "encode"
	OperationPlot    = "plot"

	PhasePreprocessing = "preprocessing"
	PhaseTraining      = "training"
	PhaseValidation    = "validation"
	PhaseReporting     = "reporting"
)
