// Package dataset loads the pump features and labels into a gota data
// frame and derives the ordinal status label.
package dataset

import (
	"os"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/YuminosukeSato/pumpit/pkg/errors"
	"github.com/YuminosukeSato/pumpit/pkg/log"
)

// Column names shared with the feature preparer.
const (
	IDColumn          = "id"
	StatusGroupColumn = "status_group"
	StatusColumn      = "status"
)

// missingTokens are read as missing values. Empty cells are common in the
// pump data's free-text columns.
var missingTokens = []string{"", "NA", "NaN"}

// Imputer fills missing values in the feature table before the merge.
type Imputer func(df dataframe.DataFrame) (dataframe.DataFrame, error)

// Option configures Load.
type Option func(*loadConfig)

type loadConfig struct {
	imputer Imputer
	logger  log.Logger
}

// WithImputer applies imp to the feature table before labels are joined.
func WithImputer(imp Imputer) Option {
	return func(c *loadConfig) { c.imputer = imp }
}

// WithLogger overrides the component logger.
func WithLogger(l log.Logger) Option {
	return func(c *loadConfig) { c.logger = l }
}

// Load reads the features and labels CSV files, left-joins the labels onto
// the features by id and adds the status column. Feature rows without a
// label keep a missing status_group and a NaN status, so the result always
// has exactly as many rows as the features file.
func Load(featuresPath, labelsPath string, opts ...Option) (dataframe.DataFrame, error) {
	cfg := loadConfig{logger: log.GetLoggerWithName("dataset")}
	for _, opt := range opts {
		opt(&cfg)
	}
	start := time.Now()

	features, err := ReadCSV(featuresPath)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	if cfg.imputer != nil {
		if features, err = cfg.imputer(features); err != nil {
			return dataframe.DataFrame{}, errors.Wrap(err, "imputing features")
		}
	}

	labels, err := ReadCSV(labelsPath)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	merged, err := LeftJoin(features, labels)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	merged, err = AddStatus(merged)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	cfg.logger.Info("dataset loaded",
		log.OperationKey, log.OperationLoad,
		log.PathKey, featuresPath,
		log.SamplesKey, merged.Nrow(),
		log.FeaturesKey, merged.Ncol(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return merged, nil
}

// ReadCSV reads one CSV file with a header row and per-column type
// detection.
func ReadCSV(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(missingTokens),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, errors.Wrapf(df.Err, "parsing %s", path)
	}
	if !hasColumn(df, IDColumn) {
		return dataframe.DataFrame{}, errors.NewValidationError(IDColumn, "join key missing from "+path, df.Names())
	}
	return df, nil
}

// LeftJoin joins the non-id columns of right onto left by id. Every left
// row is kept in order and unmatched rows get missing values. Duplicate
// ids in right are rejected because they would change the row count.
func LeftJoin(left, right dataframe.DataFrame) (dataframe.DataFrame, error) {
	seen := make(map[string]struct{}, right.Nrow())
	for _, id := range right.Col(IDColumn).Records() {
		if _, dup := seen[id]; dup {
			return dataframe.DataFrame{}, errors.NewValidationError(IDColumn, "duplicate id in labels", id)
		}
		seen[id] = struct{}{}
	}

	out := left.LeftJoin(right, IDColumn)
	if out.Err != nil {
		return dataframe.DataFrame{}, errors.Wrapf(out.Err, "joining on %s", IDColumn)
	}
	return out, nil
}

// AddStatus derives the float status column from status_group. Missing
// groups yield NaN.
func AddStatus(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if !hasColumn(df, StatusGroupColumn) {
		return dataframe.DataFrame{}, errors.NewValidationError(StatusGroupColumn, "label column missing", df.Names())
	}

	groups := df.Col(StatusGroupColumn)
	status := make([]float64, groups.Len())
	for i := range status {
		elem := groups.Elem(i)
		if elem.IsNA() {
			status[i] = nan
			continue
		}
		s, err := StatusFromGroup(elem.String())
		if err != nil {
			return dataframe.DataFrame{}, errors.Wrapf(err, "row %d", i)
		}
		status[i] = float64(s)
	}

	out := df.Mutate(series.New(status, series.Float, StatusColumn))
	if out.Err != nil {
		return dataframe.DataFrame{}, errors.Wrap(out.Err, "adding status column")
	}
	return out, nil
}

func hasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}
