package features

import (
	"math"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pumpit/pkg/errors"
)

// InterceptColumn names the leading column of ones.
const InterceptColumn = "Intercept"

// dummyMarker appears in every treatment-coded column name.
const dummyMarker = "[T."

// ErrEmptyDesign is returned when no rows or no terms survive encoding.
var ErrEmptyDesign = errors.New("empty design matrix")

// Design is an encoded design matrix with its response column.
type Design struct {
	X       *mat.Dense
	Y       *mat.VecDense
	Columns []string

	// Rows maps each design row back to its row in the source frame.
	Rows []int
}

// term is one encoded formula term.
type term struct {
	name   string
	series series.Series
	levels []string // nil for numeric terms; levels[0] is the reference
}

// DesignMatrix encodes df according to formula. The first column is the
// intercept. Categorical terms follow in formula order, each expanded into
// one indicator column per non-reference level, named `term[T.level]`,
// with the first sorted level as reference. Numeric terms come last.
// Rows missing the response or any term are dropped.
func DesignMatrix(df dataframe.DataFrame, formula Formula) (*Design, error) {
	if !hasColumn(df, formula.Response) {
		return nil, errors.NewValidationError("response", "no such column", formula.Response)
	}

	var categorical, numeric []term
	for _, name := range formula.Terms {
		if !hasColumn(df, name) {
			return nil, errors.NewValidationError("term", "no such column", name)
		}
		s := df.Col(name)
		if isNumeric(s) {
			numeric = append(numeric, term{name: name, series: s})
			continue
		}
		categorical = append(categorical, term{name: name, series: s, levels: sortedLevels(s)})
	}

	columns := []string{InterceptColumn}
	for _, t := range categorical {
		for _, lvl := range t.levels[min(1, len(t.levels)):] {
			columns = append(columns, t.name+dummyMarker+lvl+"]")
		}
	}
	for _, t := range numeric {
		columns = append(columns, t.name)
	}

	response := df.Col(formula.Response).Float()
	numericValues := make([][]float64, len(numeric))
	for k, t := range numeric {
		numericValues[k] = t.series.Float()
	}
	categoricalValues := make([][]string, len(categorical))
	for k, t := range categorical {
		categoricalValues[k] = levelStrings(t.series)
	}

	var rows []int
	for i := range response {
		if complete(i, response, numericValues, categorical) {
			rows = append(rows, i)
		}
	}
	if len(rows) == 0 {
		return nil, errors.Wrap(ErrEmptyDesign, "every row has a missing value")
	}

	X := mat.NewDense(len(rows), len(columns), nil)
	y := mat.NewVecDense(len(rows), nil)
	for r, i := range rows {
		y.SetVec(r, response[i])
		X.Set(r, 0, 1)

		col := 1
		for k, t := range categorical {
			value := categoricalValues[k][i]
			for _, lvl := range t.levels[min(1, len(t.levels)):] {
				if value == lvl {
					X.Set(r, col, 1)
				}
				col++
			}
		}
		for k := range numeric {
			X.Set(r, col, numericValues[k][i])
			col++
		}
	}

	return &Design{X: X, Y: y, Columns: columns, Rows: rows}, nil
}

func complete(i int, response []float64, numeric [][]float64, categorical []term) bool {
	if math.IsNaN(response[i]) {
		return false
	}
	for _, values := range numeric {
		if math.IsNaN(values[i]) {
			return false
		}
	}
	for _, t := range categorical {
		if t.series.Elem(i).IsNA() {
			return false
		}
	}
	return true
}

// levelStrings renders categorical values the way they appear in column
// names. Booleans read as True/False.
func levelStrings(s series.Series) []string {
	records := s.Records()
	if s.Type() != series.Bool {
		return records
	}
	out := make([]string, len(records))
	for i, rec := range records {
		switch strings.ToLower(rec) {
		case "true":
			out[i] = "True"
		case "false":
			out[i] = "False"
		default:
			out[i] = rec
		}
	}
	return out
}

// sortedLevels returns the distinct non-missing levels of s in ascending
// order. Levels are taken from every row, including rows later dropped
// for missing values elsewhere.
func sortedLevels(s series.Series) []string {
	seen := make(map[string]bool)
	var levels []string
	for i, v := range levelStrings(s) {
		if s.Elem(i).IsNA() || seen[v] {
			continue
		}
		seen[v] = true
		levels = append(levels, v)
	}
	sort.Strings(levels)
	return levels
}

// IsDummy reports whether a design column is a treatment-coded indicator.
func IsDummy(column string) bool {
	return strings.Contains(column, dummyMarker)
}
