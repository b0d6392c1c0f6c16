package features

import (
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/YuminosukeSato/pumpit/pkg/errors"
)

// LevelCount is one categorical level and its number of occurrences.
// All missing values of a column share one LevelCount with Missing set.
type LevelCount struct {
	Level   string
	Count   int
	Missing bool
}

// RankLevels returns the levels of s ordered by descending count, with
// missing values counted together as a single level. Equal counts keep
// first-seen order.
func RankLevels(s series.Series) []LevelCount {
	index := make(map[string]int)
	missing := -1
	var ranked []LevelCount
	for i, rec := range s.Records() {
		na := s.Elem(i).IsNA()
		j, ok := index[rec]
		if na {
			j, ok = missing, missing >= 0
		}
		if !ok {
			j = len(ranked)
			ranked = append(ranked, LevelCount{Level: rec, Missing: na})
			if na {
				missing = j
			} else {
				index[rec] = j
			}
		}
		ranked[j].Count++
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].Count > ranked[b].Count })
	return ranked
}

// CollapseRare replaces the levels of column ranked from n onward with
// sentinel. Unless strict is set, the single least frequent level is kept
// as it is. Missing values take a rank like any other level but are never
// replaced, so a frequent missing value uses up one of the n kept ranks.
func CollapseRare(df dataframe.DataFrame, column string, n int, sentinel string, strict bool) (dataframe.DataFrame, error) {
	if n < 0 {
		return dataframe.DataFrame{}, errors.NewValidationError("n", "must be non-negative", n)
	}
	if !hasColumn(df, column) {
		return dataframe.DataFrame{}, errors.NewValidationError("column", "no such column", column)
	}

	s := df.Col(column)
	ranked := RankLevels(s)
	end := len(ranked)
	if !strict {
		end--
	}
	if n >= end {
		return df, nil
	}

	rare := make(map[string]bool, end-n)
	for _, lc := range ranked[n:end] {
		if !lc.Missing {
			rare[lc.Level] = true
		}
	}

	records := s.Records()
	values := make([]string, len(records))
	for i, rec := range records {
		switch {
		case s.Elem(i).IsNA():
			values[i] = "NaN"
		case rare[rec]:
			values[i] = sentinel
		default:
			values[i] = rec
		}
	}

	out := df.Mutate(series.New(values, series.String, column))
	if out.Err != nil {
		return dataframe.DataFrame{}, errors.Wrapf(out.Err, "collapsing %s", column)
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
