package features

import "gonum.org/v1/gonum/mat"

// InteractionSeparator joins the two source names of a product column.
const InteractionSeparator = "_X_"

// Interactions appends the elementwise product of every unordered pair of
// non-intercept columns, in combination order, skipping pairs where both
// columns are indicators.
func Interactions(X *mat.Dense, columns []string) (*mat.Dense, []string) {
	var base []int
	for j, name := range columns {
		if name != InterceptColumn {
			base = append(base, j)
		}
	}

	type pair struct{ a, b int }
	var pairs []pair
	for p := 0; p < len(base); p++ {
		for q := p + 1; q < len(base); q++ {
			a, b := base[p], base[q]
			if IsDummy(columns[a]) && IsDummy(columns[b]) {
				continue
			}
			pairs = append(pairs, pair{a, b})
		}
	}

	rows, cols := X.Dims()
	out := mat.NewDense(rows, cols+len(pairs), nil)
	out.Slice(0, rows, 0, cols).(*mat.Dense).Copy(X)

	names := append(append([]string(nil), columns...), make([]string, len(pairs))...)
	for k, pr := range pairs {
		names[cols+k] = columns[pr.a] + InteractionSeparator + columns[pr.b]
		for i := 0; i < rows; i++ {
			out.Set(i, cols+k, X.At(i, pr.a)*X.At(i, pr.b))
		}
	}
	return out, names
}
