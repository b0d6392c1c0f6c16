package experiment

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/pumpit/core/model"
	"github.com/YuminosukeSato/pumpit/pkg/errors"
)

// Importance is one feature in an importance ranking.
type Importance struct {
	Feature string
	Index   int     // column index in the design matrix
	Mean    float64 // ensemble importance
	Std     float64 // population std across sub-estimators
}

// RankImportances orders the columns of a fitted ensemble by descending
// importance. Equal importances keep their column order. A model that is
// not an ensemble yields a ModelError wrapping ErrNotEnsemble.
func RankImportances(clf interface{}, columns []string) ([]Importance, error) {
	ens, ok := clf.(model.Ensemble)
	if !ok {
		return nil, errors.NewModelError("RankImportances", model.NameOf(clf), errors.ErrNotEnsemble)
	}
	means := ens.FeatureImportances()
	if len(means) == 0 {
		return nil, errors.NewNotFittedError(model.NameOf(clf), "FeatureImportances")
	}
	if len(means) != len(columns) {
		return nil, errors.NewDimensionError("RankImportances", len(means), len(columns), 1)
	}
	perTree := ens.EstimatorImportances()

	ranking := make([]Importance, len(columns))
	values := make([]float64, len(perTree))
	for j, name := range columns {
		for t, imp := range perTree {
			values[t] = imp[j]
		}
		var std float64
		if len(values) > 0 {
			_, std = stat.PopMeanStdDev(values, nil)
		}
		ranking[j] = Importance{Feature: name, Index: j, Mean: means[j], Std: std}
	}
	sort.SliceStable(ranking, func(a, b int) bool {
		return ranking[a].Mean > ranking[b].Mean
	})
	return ranking, nil
}

// PrintImportances writes the full ranking, one "rank feature importance"
// line per column, ranks starting at 0.
func (r *Runner) PrintImportances(ranking []Importance) {
	fmt.Fprintln(r.out, "Features ranked by importance:")
	for i, imp := range ranking {
		fmt.Fprintln(r.out, i, imp.Feature, imp.Mean)
	}
}
