// Package features turns the merged pump table into a numeric design
// matrix: rare categorical levels are collapsed, columns are screened,
// and a formula is encoded with treatment-coded dummies and optional
// pairwise interactions.
package features

import (
	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pumpit/dataset"
	"github.com/YuminosukeSato/pumpit/pkg/errors"
	"github.com/YuminosukeSato/pumpit/pkg/log"
)

// Prepared is the output of Prepare.
type Prepared struct {
	X       *mat.Dense
	Y       *mat.VecDense
	Columns []string
	Formula Formula

	// Kept and GivenUp list the source columns used and skipped.
	Kept    []string
	GivenUp []string
}

// Option configures Prepare.
type Option func(*prepareConfig)

type prepareConfig struct {
	interactions bool
	rareColumns  []string
	rareKeep     int
	sentinel     string
	strictRare   bool
	maxLevels    int
	logger       log.Logger
}

// WithInteractions appends pairwise interaction columns.
func WithInteractions(enabled bool) Option {
	return func(c *prepareConfig) { c.interactions = enabled }
}

// WithRareLevels sets the columns whose levels beyond the top n are
// collapsed (default scheme_name, 20). No columns disables collapsing.
func WithRareLevels(n int, columns ...string) Option {
	return func(c *prepareConfig) {
		c.rareKeep = n
		c.rareColumns = columns
	}
}

// WithSentinel sets the replacement level for rare values (default "other").
func WithSentinel(s string) Option {
	return func(c *prepareConfig) { c.sentinel = s }
}

// WithStrictRare also collapses the least frequent level.
func WithStrictRare(strict bool) Option {
	return func(c *prepareConfig) { c.strictRare = strict }
}

// WithMaxLevels sets the distinct-value bound for categorical columns.
func WithMaxLevels(n int) Option {
	return func(c *prepareConfig) { c.maxLevels = n }
}

// WithLogger overrides the component logger.
func WithLogger(l log.Logger) Option {
	return func(c *prepareConfig) { c.logger = l }
}

// Prepare collapses rare levels, classifies columns, builds the
// `status ~ …` formula from the kept columns and encodes it.
func Prepare(df dataframe.DataFrame, opts ...Option) (*Prepared, error) {
	cfg := prepareConfig{
		rareColumns: []string{"scheme_name"},
		rareKeep:    20,
		sentinel:    "other",
		maxLevels:   DefaultMaxLevels,
		logger:      log.GetLoggerWithName("features"),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var err error
	for _, col := range cfg.rareColumns {
		if df, err = CollapseRare(df, col, cfg.rareKeep, cfg.sentinel, cfg.strictRare); err != nil {
			return nil, err
		}
	}

	kept, givenUp := ClassifyColumns(df, cfg.maxLevels)
	kept = without(kept, dataset.IDColumn, dataset.StatusColumn, dataset.StatusGroupColumn)
	if len(kept) == 0 {
		return nil, errors.Wrap(ErrEmptyDesign, "no usable feature columns")
	}

	formula := NewFormula(dataset.StatusColumn, kept)
	design, err := DesignMatrix(df, formula)
	if err != nil {
		return nil, err
	}

	X, columns := design.X, design.Columns
	if cfg.interactions {
		X, columns = Interactions(X, columns)
	}

	rows, cols := X.Dims()
	if err := errors.CheckMatrix("features.Prepare", X, rows, cols); err != nil {
		return nil, err
	}

	cfg.logger.Info("design matrix ready",
		log.ComponentKey, "features",
		log.PhaseKey, log.PhasePreprocessing,
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		log.DroppedKey, df.Nrow()-rows,
		"kept", len(kept),
		"given_up", len(givenUp),
	)

	return &Prepared{
		X:       X,
		Y:       design.Y,
		Columns: columns,
		Formula: formula,
		Kept:    kept,
		GivenUp: givenUp,
	}, nil
}
