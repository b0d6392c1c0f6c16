// Package linear_model provides linear classifiers.
package linear_model

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/pumpit/core/model"
	"github.com/YuminosukeSato/pumpit/metrics"
	"github.com/YuminosukeSato/pumpit/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LogisticRegression implements regularized logistic regression.
// Two classes are fit with a single sigmoid; more classes use a
// multinomial (softmax) model. Compatible with scikit-learn's
// LogisticRegression defaults (C=1.0, max_iter=100, l2 penalty).
type LogisticRegression struct {
	state *model.StateManager // State management (composition)

	// Hyperparameters
	penalty      string  // Regularization: "l2" or "none"
	C            float64 // Inverse regularization strength
	fitIntercept bool    // Whether to fit intercept
	maxIter      int     // Maximum iterations
	tol          float64 // Tolerance on the largest gradient component

	// Model parameters
	coef_      *mat.Dense // (1 or n_classes) x n_features
	intercept_ []float64
	classes_   []int
	nClasses_  int
	nIter_     int
}

// LogisticRegressionOption is a functional option for LogisticRegression
type LogisticRegressionOption func(*LogisticRegression)

// NewLogisticRegression creates a new LogisticRegression classifier
func NewLogisticRegression(opts ...LogisticRegressionOption) *LogisticRegression {
	lr := &LogisticRegression{
		state:        model.NewStateManager(),
		penalty:      "l2",
		C:            1.0,
		fitIntercept: true,
		maxIter:      100,
		tol:          1e-4,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// WithLRPenalty sets the regularization type
func WithLRPenalty(penalty string) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.penalty = penalty
	}
}

// WithLRC sets the inverse regularization strength
func WithLRC(c float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.C = c
	}
}

// WithLogisticFitIntercept sets whether to fit intercept
func WithLogisticFitIntercept(fit bool) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.fitIntercept = fit
	}
}

// WithLRMaxIter sets the maximum number of iterations
func WithLRMaxIter(maxIter int) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithLRTol sets the tolerance for stopping criteria
func WithLRTol(tol float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.tol = tol
	}
}

// Fit trains the model by full-batch gradient descent. The step size is
// the inverse of an upper bound on the loss curvature, so unscaled inputs
// converge slowly instead of diverging. Stopping at max_iter raises a
// ConvergenceWarning.
func (lr *LogisticRegression) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures, err := model.ValidateXY("LogisticRegression.Fit", X, y)
	if err != nil {
		return err
	}
	if lr.C <= 0 {
		return errors.NewValidationError("C", "must be positive", lr.C)
	}

	classes, encoded := model.ExtractClasses(y)
	if len(classes) < 2 {
		return errors.NewValueError("LogisticRegression.Fit",
			fmt.Sprintf("this solver needs samples of at least 2 classes in the data, but the data contains only one class: %d", classes[0]))
	}
	lr.classes_ = classes
	lr.nClasses_ = len(classes)

	Xd := mat.DenseCopyOf(X)

	// One weight row for the binary case, one per class otherwise.
	nOutputs := lr.nClasses_
	if nOutputs == 2 {
		nOutputs = 1
	}
	target := mat.NewDense(nSamples, nOutputs, nil)
	for i, c := range encoded {
		if nOutputs == 1 {
			target.Set(i, 0, float64(c))
		} else {
			target.Set(i, c, 1)
		}
	}

	lambda := 0.0
	if lr.penalty == "l2" {
		lambda = 1.0 / (lr.C * float64(nSamples))
	}

	// Curvature bound: 1/4 for the sigmoid, 1/2 for softmax.
	curvature := 0.25
	if nOutputs > 1 {
		curvature = 0.5
	}
	meanSq := 0.0
	for i := 0; i < nSamples; i++ {
		row := Xd.RawRowView(i)
		meanSq += floats.Dot(row, row)
	}
	meanSq /= float64(nSamples)
	if lr.fitIntercept {
		meanSq++
	}
	step := 1.0 / (curvature*meanSq + lambda)

	W := mat.NewDense(nOutputs, nFeatures, nil)
	b := make([]float64, nOutputs)
	grad := mat.NewDense(nOutputs, nFeatures, nil)
	resid := mat.NewDense(nSamples, nOutputs, nil)

	converged := false
	for iter := 0; iter < lr.maxIter; iter++ {
		lr.nIter_ = iter + 1

		lr.probabilities(resid, Xd, W, b)
		resid.Sub(resid, target)

		// grad = resid^T X / n + lambda W
		grad.Mul(resid.T(), Xd)
		grad.Scale(1/float64(nSamples), grad)
		if lambda > 0 {
			grad.Add(grad, scaled(lambda, W))
		}

		maxGrad := maxAbs(grad.RawMatrix().Data)
		if lr.fitIntercept {
			for k := 0; k < nOutputs; k++ {
				gb := floats.Sum(mat.Col(nil, k, resid)) / float64(nSamples)
				b[k] -= step * gb
				maxGrad = math.Max(maxGrad, math.Abs(gb))
			}
		}
		W.Sub(W, scaled(step, grad))

		if maxGrad < lr.tol {
			converged = true
			break
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("LogisticRegression", lr.maxIter,
			"gradient descent reached max_iter; increase max_iter or scale the data"))
	}

	lr.coef_ = W
	lr.intercept_ = b
	lr.state.SetDimensions(nFeatures, nSamples)
	lr.state.SetFitted()
	return nil
}

// probabilities writes sigmoid (one output) or softmax (several outputs)
// activations of X·Wᵀ+b into dst.
func (lr *LogisticRegression) probabilities(dst *mat.Dense, X, W *mat.Dense, b []float64) {
	dst.Mul(X, W.T())
	rows, outputs := dst.Dims()
	for i := 0; i < rows; i++ {
		row := dst.RawRowView(i)
		floats.Add(row, b)
		if outputs == 1 {
			row[0] = sigmoid(row[0])
			continue
		}
		lse := errors.LogSumExp(row)
		for k := range row {
			row[k] = math.Exp(row[k] - lse)
		}
	}
}

func maxAbs(values []float64) float64 {
	m := 0.0
	for _, v := range values {
		m = math.Max(m, math.Abs(v))
	}
	return m
}

func scaled(f float64, m mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Scale(f, m)
	return &out
}

// PredictProba returns probability estimates for each class
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := lr.state.RequireFitted("LogisticRegression", "PredictProba"); err != nil {
		return nil, err
	}
	if err := lr.state.CheckFeatures("LogisticRegression.PredictProba", X); err != nil {
		return nil, err
	}

	nSamples, _ := X.Dims()
	nOutputs, _ := lr.coef_.Dims()
	act := mat.NewDense(nSamples, nOutputs, nil)
	lr.probabilities(act, mat.DenseCopyOf(X), lr.coef_, lr.intercept_)
	if nOutputs > 1 {
		return act, nil
	}

	probas := mat.NewDense(nSamples, 2, nil)
	for i := 0; i < nSamples; i++ {
		p := act.At(i, 0)
		probas.Set(i, 0, 1-p)
		probas.Set(i, 1, p)
	}
	return probas, nil
}

// Predict makes predictions for input data
func (lr *LogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	probas, err := lr.PredictProba(X)
	if err != nil {
		return nil, err
	}

	nSamples, _ := probas.Dims()
	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		row := mat.Row(nil, i, probas)
		predictions.Set(i, 0, float64(lr.classes_[model.Argmax(row)]))
	}
	return predictions, nil
}

// Score returns the mean accuracy on the given test data and labels
func (lr *LogisticRegression) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyMatrix(y, predictions)
}

// Classes returns the class labels seen during Fit.
func (lr *LogisticRegression) Classes() []int {
	return lr.classes_
}

// NIter returns the number of iterations run by the last Fit.
func (lr *LogisticRegression) NIter() int {
	return lr.nIter_
}

// GetParams returns the model hyperparameters
func (lr *LogisticRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"penalty":       lr.penalty,
		"C":             lr.C,
		"fit_intercept": lr.fitIntercept,
		"max_iter":      lr.maxIter,
		"tol":           lr.tol,
	}
}

// SetParams sets the model hyperparameters
func (lr *LogisticRegression) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		var err error
		switch key {
		case "penalty":
			err = model.SetParam(key, value, &lr.penalty)
		case "C":
			err = model.SetParam(key, value, &lr.C)
		case "fit_intercept":
			err = model.SetParam(key, value, &lr.fitIntercept)
		case "max_iter":
			err = model.SetParam(key, value, &lr.maxIter)
		case "tol":
			err = model.SetParam(key, value, &lr.tol)
		default:
			err = errors.NewValidationError(key, "unknown parameter", value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// sigmoid computes the sigmoid function
func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + errors.StabilizeExp(-z))
}
