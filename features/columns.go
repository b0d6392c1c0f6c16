package features

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// DefaultMaxLevels is the exclusive bound on distinct values for a
// categorical column to be kept.
const DefaultMaxLevels = 25

// ClassifyColumns splits the columns of df, in frame order, into kept and
// given-up lists. Numeric columns are always kept; categorical columns are
// kept when they have fewer than maxLevels distinct non-missing values.
func ClassifyColumns(df dataframe.DataFrame, maxLevels int) (kept, givenUp []string) {
	for _, name := range df.Names() {
		s := df.Col(name)
		if isNumeric(s) {
			kept = append(kept, name)
			continue
		}
		if distinct(s) < maxLevels {
			kept = append(kept, name)
		} else {
			givenUp = append(givenUp, name)
		}
	}
	return kept, givenUp
}

func isNumeric(s series.Series) bool {
	t := s.Type()
	return t == series.Int || t == series.Float
}

func distinct(s series.Series) int {
	seen := make(map[string]struct{})
	for i, rec := range s.Records() {
		if !s.Elem(i).IsNA() {
			seen[rec] = struct{}{}
		}
	}
	return len(seen)
}

// without returns names minus every entry of drop, preserving order.
func without(names []string, drop ...string) []string {
	skip := make(map[string]bool, len(drop))
	for _, d := range drop {
		skip[d] = true
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !skip[n] {
			out = append(out, n)
		}
	}
	return out
}
