// Package naive_bayes implements the Gaussian naive Bayes classifier.
package naive_bayes

import (
	"math"

	"github.com/YuminosukeSato/pumpit/core/model"
	"github.com/YuminosukeSato/pumpit/metrics"
	"github.com/YuminosukeSato/pumpit/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// GaussianNB は特徴量ごとに独立な正規分布を仮定するナイーブベイズ分類器
// scikit-learnのGaussianNBと同じく、分散に var_smoothing × 最大分散 を加える
type GaussianNB struct {
	state *model.StateManager

	varSmoothing float64

	classes_    []int
	classPrior_ []float64
	theta_      *mat.Dense // クラスごとの平均 (n_classes × n_features)
	var_        *mat.Dense // クラスごとの分散 (n_classes × n_features)
	epsilon_    float64
}

// Option configures a GaussianNB.
type Option func(*GaussianNB)

// WithVarSmoothing は分散の平滑化係数を設定する（デフォルト 1e-9）
func WithVarSmoothing(v float64) Option {
	return func(nb *GaussianNB) { nb.varSmoothing = v }
}

// NewGaussianNB creates a new GaussianNB.
func NewGaussianNB(opts ...Option) *GaussianNB {
	nb := &GaussianNB{
		state:        model.NewStateManager(),
		varSmoothing: 1e-9,
	}
	for _, opt := range opts {
		opt(nb)
	}
	return nb
}

// Fit はクラスごとの平均・分散と事前確率を推定する
func (nb *GaussianNB) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures, err := model.ValidateXY("GaussianNB.Fit", X, y)
	if err != nil {
		return err
	}
	if nb.varSmoothing < 0 {
		return errors.NewValidationError("var_smoothing", "must be non-negative", nb.varSmoothing)
	}

	classes, encoded := model.ExtractClasses(y)
	nClasses := len(classes)

	// 全体の最大分散から平滑化量を決める
	maxVar := 0.0
	col := make([]float64, nSamples)
	for j := 0; j < nFeatures; j++ {
		mat.Col(col, j, X)
		_, v := stat.PopMeanVariance(col, nil)
		maxVar = math.Max(maxVar, v)
	}
	nb.epsilon_ = nb.varSmoothing * maxVar

	// クラスごとに行を集める
	members := make([][]int, nClasses)
	for i, c := range encoded {
		members[c] = append(members[c], i)
	}

	nb.theta_ = mat.NewDense(nClasses, nFeatures, nil)
	nb.var_ = mat.NewDense(nClasses, nFeatures, nil)
	nb.classPrior_ = make([]float64, nClasses)

	for c, rows := range members {
		nb.classPrior_[c] = float64(len(rows)) / float64(nSamples)
		values := make([]float64, len(rows))
		for j := 0; j < nFeatures; j++ {
			for k, r := range rows {
				values[k] = X.At(r, j)
			}
			mean, variance := stat.PopMeanVariance(values, nil)
			nb.theta_.Set(c, j, mean)
			nb.var_.Set(c, j, variance+nb.epsilon_)
		}
	}

	nb.classes_ = classes
	nb.state.SetDimensions(nFeatures, nSamples)
	nb.state.SetFitted()
	return nil
}

// jointLogLikelihood は log P(c) + Σ log N(x_j | μ_cj, σ²_cj) を返す
func (nb *GaussianNB) jointLogLikelihood(X mat.Matrix) *mat.Dense {
	nSamples, nFeatures := X.Dims()
	nClasses := len(nb.classes_)
	jll := mat.NewDense(nSamples, nClasses, nil)

	for c := 0; c < nClasses; c++ {
		logPrior := math.Log(nb.classPrior_[c])
		norm := 0.0
		for j := 0; j < nFeatures; j++ {
			norm += math.Log(2 * math.Pi * nb.var_.At(c, j))
		}
		norm *= -0.5

		for i := 0; i < nSamples; i++ {
			sq := 0.0
			for j := 0; j < nFeatures; j++ {
				d := X.At(i, j) - nb.theta_.At(c, j)
				sq += d * d / nb.var_.At(c, j)
			}
			jll.Set(i, c, logPrior+norm-0.5*sq)
		}
	}
	return jll
}

// PredictProba returns posterior class probabilities.
func (nb *GaussianNB) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := nb.state.RequireFitted("GaussianNB", "PredictProba"); err != nil {
		return nil, err
	}
	if err := nb.state.CheckFeatures("GaussianNB.PredictProba", X); err != nil {
		return nil, err
	}

	jll := nb.jointLogLikelihood(X)
	nSamples, nClasses := jll.Dims()
	for i := 0; i < nSamples; i++ {
		row := jll.RawRowView(i)
		lse := errors.LogSumExp(row)
		for c := 0; c < nClasses; c++ {
			row[c] = math.Exp(row[c] - lse)
		}
	}
	if err := errors.CheckMatrix("GaussianNB.PredictProba", jll, nSamples, nClasses); err != nil {
		return nil, err
	}
	return jll, nil
}

// Predict returns the class with the highest joint log-likelihood.
func (nb *GaussianNB) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := nb.state.RequireFitted("GaussianNB", "Predict"); err != nil {
		return nil, err
	}
	if err := nb.state.CheckFeatures("GaussianNB.Predict", X); err != nil {
		return nil, err
	}

	jll := nb.jointLogLikelihood(X)
	nSamples, _ := jll.Dims()
	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		predictions.Set(i, 0, float64(nb.classes_[model.Argmax(jll.RawRowView(i))]))
	}
	return predictions, nil
}

// Score returns the mean accuracy on the given test data and labels.
func (nb *GaussianNB) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := nb.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyMatrix(y, predictions)
}

// Classes returns the class labels seen during Fit.
func (nb *GaussianNB) Classes() []int {
	return nb.classes_
}

// ClassPrior returns the empirical class frequencies.
func (nb *GaussianNB) ClassPrior() []float64 {
	return nb.classPrior_
}

// GetParams returns the model hyperparameters.
func (nb *GaussianNB) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"var_smoothing": nb.varSmoothing,
	}
}
