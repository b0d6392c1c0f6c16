package model

import (
	"reflect"

	"gonum.org/v1/gonum/mat"
)

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる。y は n×1 のラベル列
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を n×1 の行列で返す
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns the mean accuracy on the given test data and labels.
	Score(X, y mat.Matrix) (float64, error)
}

// Classifier combines interfaces for classification models.
type Classifier interface {
	Fitter
	Predictor
	Scorer

	// PredictProba returns probability estimates for each class,
	// columns ordered like Classes().
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Classes returns the unique classes seen during fitting, ascending.
	Classes() []int
}

// Transformer はデータ変換のインターフェース
type Transformer interface {
	// Fit は変換に必要なパラメータを学習する
	Fit(X mat.Matrix) error

	// Transform はデータを変換する
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform はFitとTransformを同時に実行する
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// FeatureImportancer is implemented by fitted tree models.
type FeatureImportancer interface {
	// FeatureImportances returns the normalized impurity decrease per feature.
	FeatureImportances() []float64
}

// Ensemble is implemented by fitted models made of several sub-estimators
// that each expose feature importances.
type Ensemble interface {
	FeatureImportancer

	// EstimatorImportances returns one importance vector per sub-estimator.
	EstimatorImportances() [][]float64
}

// ParameterGetter is the interface for models that expose their parameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}
}

// Namer lets wrappers report the name of the estimator they wrap.
type Namer interface {
	Name() string
}

// NameOf returns the display name of an estimator: its Name() if it
// implements Namer, otherwise its Go type name.
func NameOf(estimator interface{}) string {
	if n, ok := estimator.(Namer); ok {
		return n.Name()
	}
	t := reflect.TypeOf(estimator)
	if t == nil {
		return "<nil>"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
