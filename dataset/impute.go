package dataset

import (
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/YuminosukeSato/pumpit/pkg/errors"
)

var nan = math.NaN()

// MedianImputer returns an Imputer that replaces missing values in numeric
// columns with the column median. With no column names every Int and Float
// column except id is imputed. Columns that are entirely missing are left
// alone.
func MedianImputer(cols ...string) Imputer {
	return func(df dataframe.DataFrame) (dataframe.DataFrame, error) {
		targets := cols
		if len(targets) == 0 {
			for _, name := range df.Names() {
				t := df.Col(name).Type()
				if name != IDColumn && (t == series.Int || t == series.Float) {
					targets = append(targets, name)
				}
			}
		}

		out := df
		for _, name := range targets {
			if !hasColumn(out, name) {
				return dataframe.DataFrame{}, errors.NewValidationError("impute", "no such column", name)
			}
			s := out.Col(name)
			if t := s.Type(); t != series.Int && t != series.Float {
				return dataframe.DataFrame{}, errors.NewValidationError("impute", "column is not numeric", name)
			}

			values := s.Float()
			med, ok := median(values)
			if !ok {
				continue
			}
			filled := make([]float64, len(values))
			for i, v := range values {
				if math.IsNaN(v) {
					v = med
				}
				filled[i] = v
			}
			out = out.Mutate(series.New(filled, series.Float, name))
			if out.Err != nil {
				return dataframe.DataFrame{}, errors.Wrapf(out.Err, "imputing %s", name)
			}
		}
		return out, nil
	}
}

// median of the non-NaN values; the mean of the two middle values when
// their count is even.
func median(values []float64) (float64, bool) {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return 0, false
	}
	return series.Floats(present).Median(), true
}
