package experiment

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/YuminosukeSato/pumpit/pkg/errors"
)

// DefaultTopN is the number of features drawn by PlotImportances.
const DefaultTopN = 20

// importanceBars adapts a ranking to plotter.XYer and plotter.YErrorer so
// the error bars sit on top of the bar chart.
type importanceBars []Importance

func (b importanceBars) Len() int { return len(b) }

func (b importanceBars) XY(i int) (float64, float64) {
	return float64(i), b[i].Mean
}

func (b importanceBars) YError(i int) (float64, float64) {
	return b[i].Std, b[i].Std
}

// PlotImportances draws the first topN entries of ranking as a green bar
// chart with one-std error bars and saves it as a 15x10 inch image. The
// format follows the file extension.
func PlotImportances(ranking []Importance, topN int, path string) error {
	if len(ranking) == 0 {
		return errors.NewValueError("PlotImportances", "empty ranking")
	}
	if topN <= 0 || topN > len(ranking) {
		topN = len(ranking)
	}
	top := importanceBars(ranking[:topN])

	p := plot.New()
	p.Title.Text = "Feature importances"
	p.Y.Label.Text = "importance"

	values := make(plotter.Values, topN)
	names := make([]string, topN)
	for i, imp := range top {
		values[i] = imp.Mean
		names[i] = imp.Feature
	}

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return errors.Wrap(err, "building bar chart")
	}
	bars.Color = color.RGBA{G: 128, A: 255}
	bars.LineStyle.Width = 0

	errBars, err := plotter.NewYErrorBars(top)
	if err != nil {
		return errors.Wrap(err, "building error bars")
	}

	p.Add(bars, errBars)
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 3
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	if err := p.Save(15*vg.Inch, 10*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "saving importance plot to %s", path)
	}
	return nil
}
