package dataset

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/pumpit/pkg/errors"
)

const featuresCSV = `id,amount_tsh,funder,gps_height,basin
69572,6000,Roman,1390,Lake Nyasa
8776,0,Grumeti,1399,Lake Victoria
34310,25,Lottery Club,,Pangani
67743,0,Unicef,263,Ruvuma
19728,0,,0,Lake Victoria
`

const labelsCSV = `id,status_group
69572,functional
8776,functional
34310,non functional
67743,functional needs repair
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func fixture(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	return writeFile(t, dir, "train_X.csv", featuresCSV), writeFile(t, dir, "train_y.csv", labelsCSV)
}

func TestStatusFromGroup(t *testing.T) {
	tests := []struct {
		group string
		want  Status
	}{
		{"functional", Functional},
		{"functional needs repair", NeedsRepair},
		{"non functional", NonFunctional},
		{"non functional (abandoned)", NonFunctional},
	}
	for _, tt := range tests {
		t.Run(tt.group, func(t *testing.T) {
			got, err := StatusFromGroup(tt.group)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := StatusFromGroup("functioning")
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr), "unexpected status should be a ValidationError")
}

func TestStatusNeedsAttention(t *testing.T) {
	assert.True(t, NonFunctional.NeedsAttention())
	assert.True(t, NeedsRepair.NeedsAttention())
	assert.False(t, Functional.NeedsAttention())
	assert.Equal(t, "functional needs repair", NeedsRepair.String())
}

func TestLoad(t *testing.T) {
	featuresPath, labelsPath := fixture(t)

	df, err := Load(featuresPath, labelsPath)
	require.NoError(t, err)

	assert.Equal(t, 5, df.Nrow(), "row count must equal the features row count")
	assert.Contains(t, df.Names(), StatusGroupColumn)
	assert.Contains(t, df.Names(), StatusColumn)

	status := df.Col(StatusColumn).Float()
	assert.Equal(t, []float64{2, 2, 0, 1}, status[:4])
	assert.True(t, math.IsNaN(status[4]), "unlabeled row keeps a missing status")
	assert.True(t, df.Col(StatusGroupColumn).Elem(4).IsNA())

	// empty cells are missing values
	assert.True(t, df.Col("funder").Elem(4).IsNA())
	assert.True(t, math.IsNaN(df.Col("gps_height").Float()[2]))
}

func TestLeftJoin(t *testing.T) {
	left := dataframe.New(
		series.New([]int{30, 10, 20, 40}, series.Int, IDColumn),
		series.New([]string{"Pangani", "Ruvuma", "Pangani", "Rufiji"}, series.String, "basin"),
	)
	right := dataframe.New(
		series.New([]int{10, 30, 50}, series.Int, IDColumn),
		series.New([]string{"functional", "non functional", "functional"}, series.String, StatusGroupColumn),
	)

	out, err := LeftJoin(left, right)
	require.NoError(t, err)

	require.Equal(t, 4, out.Nrow(), "every left row survives, unmatched right rows are dropped")
	assert.Equal(t, []string{"30", "10", "20", "40"}, out.Col(IDColumn).Records())
	assert.Equal(t, []string{"Pangani", "Ruvuma", "Pangani", "Rufiji"}, out.Col("basin").Records())

	groups := out.Col(StatusGroupColumn)
	assert.Equal(t, "non functional", groups.Elem(0).String())
	assert.Equal(t, "functional", groups.Elem(1).String())
	assert.True(t, groups.Elem(2).IsNA())
	assert.True(t, groups.Elem(3).IsNA())

	dup := dataframe.New(
		series.New([]int{10, 10}, series.Int, IDColumn),
		series.New([]string{"functional", "non functional"}, series.String, StatusGroupColumn),
	)
	_, err = LeftJoin(left, dup)
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))
}

func TestLoadWithImputer(t *testing.T) {
	featuresPath, labelsPath := fixture(t)

	df, err := Load(featuresPath, labelsPath, WithImputer(MedianImputer("gps_height")))
	require.NoError(t, err)

	// median of {1390, 1399, 263, 0}
	assert.InDelta(t, 826.5, df.Col("gps_height").Float()[2], 1e-9)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	featuresPath, labelsPath := fixture(t)

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.csv"), labelsPath)
		assert.Error(t, err)
	})

	t.Run("duplicate label id", func(t *testing.T) {
		dup := writeFile(t, dir, "dup.csv", "id,status_group\n8776,functional\n8776,non functional\n")
		_, err := Load(featuresPath, dup)
		var valErr *errors.ValidationError
		assert.True(t, errors.As(err, &valErr))
	})

	t.Run("unknown status", func(t *testing.T) {
		bad := writeFile(t, dir, "bad.csv", "id,status_group\n8776,broken\n")
		_, err := Load(featuresPath, bad)
		var valErr *errors.ValidationError
		assert.True(t, errors.As(err, &valErr))
	})

	t.Run("no id column", func(t *testing.T) {
		noID := writeFile(t, dir, "noid.csv", "key,status_group\n1,functional\n")
		_, err := Load(featuresPath, noID)
		assert.Error(t, err)
	})

	t.Run("imputer failure", func(t *testing.T) {
		failing := func(dataframe.DataFrame) (dataframe.DataFrame, error) {
			return dataframe.DataFrame{}, errors.New("boom")
		}
		_, err := Load(featuresPath, labelsPath, WithImputer(failing))
		assert.ErrorContains(t, err, "boom")
	})
}

func TestMedianImputer(t *testing.T) {
	featuresPath, _ := fixture(t)
	df, err := ReadCSV(featuresPath)
	require.NoError(t, err)

	out, err := MedianImputer()(df)
	require.NoError(t, err)
	for _, v := range out.Col("gps_height").Float() {
		assert.False(t, math.IsNaN(v))
	}
	// id is never imputed or rewritten
	assert.Equal(t, df.Col(IDColumn).Records(), out.Col(IDColumn).Records())

	_, err = MedianImputer("funder")(df)
	assert.Error(t, err, "string columns cannot be median-imputed")

	_, err = MedianImputer("missing")(df)
	assert.Error(t, err)
}

func TestMedian(t *testing.T) {
	m, ok := median([]float64{3, math.NaN(), 1, 2})
	assert.True(t, ok)
	assert.Equal(t, 2.0, m)

	m, ok = median([]float64{4, 1, 3, 2})
	assert.True(t, ok)
	assert.Equal(t, 2.5, m)

	_, ok = median([]float64{math.NaN()})
	assert.False(t, ok)
}
