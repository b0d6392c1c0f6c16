package experiment

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/pumpit/core/model"
	"github.com/YuminosukeSato/pumpit/dataset"
	"github.com/YuminosukeSato/pumpit/metrics"
	"github.com/YuminosukeSato/pumpit/model_selection"
	"github.com/YuminosukeSato/pumpit/pkg/errors"
	"github.com/YuminosukeSato/pumpit/pkg/log"
)

// DefaultFolds is the fold count of the reference pump experiment.
const DefaultFolds = 5

// CVResult holds per-fold accuracies and the binarized report of the
// last fold.
type CVResult struct {
	Name   string
	Scores []float64
	Mean   float64
	Report BinaryReport
}

// BinaryReport is the two-class view of a prediction where every status
// other than functional counts as needing attention.
//
// Confusion rows are true labels, columns predictions, both ordered
// [functional, needs attention]. Recall and Precision are read from the
// top-left cell.
type BinaryReport struct {
	Confusion *mat.Dense
	Recall    float64
	Precision float64
}

// CrossValidate fits and scores clf on nFolds contiguous, unshuffled folds,
// printing each fold and the mean. The binarized confusion matrix is then
// computed from the last fold's held-out predictions. clf stays fitted on
// the last fold's training rows.
func (r *Runner) CrossValidate(clf model.Classifier, X, y mat.Matrix, nFolds int) (CVResult, error) {
	name := model.NameOf(clf)
	n, _ := X.Dims()
	if yn, _ := y.Dims(); yn != n {
		return CVResult{}, errors.NewDimensionError("CrossValidate", n, yn, 0)
	}

	folds, err := model_selection.NewKFold(nFolds, false, 0).Split(n)
	if err != nil {
		return CVResult{}, err
	}

	res := CVResult{Name: name, Scores: make([]float64, 0, len(folds))}
	var lastX *mat.Dense
	var lastY *mat.VecDense
	for i, fold := range folds {
		XTrain := model_selection.SelectRows(X, fold.TrainIndices)
		yTrain := model_selection.SelectLabels(y, fold.TrainIndices)
		lastX = model_selection.SelectRows(X, fold.TestIndices)
		lastY = model_selection.SelectLabels(y, fold.TestIndices)

		err := errors.SafeExecute(name+".Fit", func() error {
			return clf.Fit(XTrain, yTrain)
		})
		if err != nil {
			return res, errors.Wrapf(err, "fold %d", i+1)
		}
		score, err := clf.Score(lastX, lastY)
		if err != nil {
			return res, errors.Wrapf(err, "scoring fold %d", i+1)
		}
		res.Scores = append(res.Scores, score)
		fmt.Fprintln(r.out, "fold", i+1, ":", score)
		r.logger.Debug("fold scored",
			log.ModelNameKey, name,
			log.FoldKey, i+1,
			log.AccuracyKey, score,
		)
	}
	res.Mean = stat.Mean(res.Scores, nil)
	fmt.Fprintln(r.out, "avg score:", res.Mean)

	fmt.Fprintln(r.out, "confusion matrix:")
	pred, err := clf.Predict(lastX)
	if err != nil {
		return res, errors.Wrap(err, "predicting last fold")
	}
	report, err := BinarizedReport(lastY, pred)
	if err != nil {
		return res, err
	}
	res.Report = report
	fmt.Fprintf(r.out, "%v\n", mat.Formatted(report.Confusion, mat.Squeeze()))
	fmt.Fprintln(r.out, "recall", report.Recall)
	fmt.Fprintln(r.out, "precision", report.Precision)

	r.logger.Info("cross-validation finished",
		log.ModelNameKey, name,
		log.PhaseKey, log.PhaseValidation,
		log.AccuracyKey, res.Mean,
		log.RecallKey, report.Recall,
		log.PrecisionKey, report.Precision,
	)
	return res, nil
}

// BinarizedReport maps yTrue and yPred to needs-attention flags and
// computes the confusion matrix with recall and precision of its top-left
// cell. A zero denominator yields 0 and an UndefinedMetricWarning.
func BinarizedReport(yTrue, yPred mat.Matrix) (BinaryReport, error) {
	bt, err := binarize(yTrue)
	if err != nil {
		return BinaryReport{}, err
	}
	bp, err := binarize(yPred)
	if err != nil {
		return BinaryReport{}, err
	}
	cm, err := metrics.ConfusionMatrix(bt, bp, []float64{0, 1})
	if err != nil {
		return BinaryReport{}, err
	}

	tp, fn, fp := cm.At(0, 0), cm.At(0, 1), cm.At(1, 0)
	return BinaryReport{
		Confusion: cm,
		Recall:    ratio("recall", "no true samples in the top-left class", tp, tp+fn),
		Precision: ratio("precision", "no predicted samples in the top-left class", tp, tp+fp),
	}, nil
}

func ratio(metric, condition string, num, den float64) float64 {
	if den == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning(metric, condition, 0))
		return 0
	}
	return num / den
}

// binarize returns 1 where the status needs attention and 0 otherwise.
func binarize(y mat.Matrix) (*mat.VecDense, error) {
	r, c := y.Dims()
	if r == 0 || c != 1 {
		return nil, errors.NewValueError("BinarizedReport", "labels must be a non-empty column vector")
	}
	out := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		if dataset.Status(y.At(i, 0)).NeedsAttention() {
			out.SetVec(i, 1)
		}
	}
	return out, nil
}
