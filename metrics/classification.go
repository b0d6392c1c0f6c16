// Package metrics は分類モデルの評価指標を提供する
package metrics

import (
	"sort"

	"github.com/YuminosukeSato/pumpit/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Accuracy は正解率（予測がラベルと一致した割合）を計算する
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	if yTrue == nil || yPred == nil || yTrue.Len() == 0 {
		return 0, errors.NewValueError("Accuracy", "empty vector")
	}

	n := yTrue.Len()
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("Accuracy", n, yPred.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}

	return float64(correct) / float64(n), nil
}

// AccuracyMatrix は n×1 行列形式の入力に対して正解率を計算する
func AccuracyMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	yTrueVec, err := columnVector("AccuracyMatrix", yTrue)
	if err != nil {
		return 0, err
	}
	yPredVec, err := columnVector("AccuracyMatrix", yPred)
	if err != nil {
		return 0, err
	}
	return Accuracy(yTrueVec, yPredVec)
}

// ConfusionMatrix は混同行列を計算する。
// 行が正解ラベル、列が予測ラベルで、順序は labels に従う。
// labels が nil の場合は yTrue と yPred に現れる値を昇順に並べたものを使う。
// labels に含まれない値の組は数えない。
func ConfusionMatrix(yTrue, yPred *mat.VecDense, labels []float64) (*mat.Dense, error) {
	if yTrue == nil || yPred == nil || yTrue.Len() == 0 {
		return nil, errors.NewValueError("ConfusionMatrix", "empty vector")
	}
	n := yTrue.Len()
	if yPred.Len() != n {
		return nil, errors.NewDimensionError("ConfusionMatrix", n, yPred.Len(), 0)
	}

	if labels == nil {
		labels = uniqueSorted(yTrue, yPred)
	}
	if len(labels) == 0 {
		return nil, errors.NewValueError("ConfusionMatrix", "no labels")
	}

	index := make(map[float64]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}

	cm := mat.NewDense(len(labels), len(labels), nil)
	for i := 0; i < n; i++ {
		r, okTrue := index[yTrue.AtVec(i)]
		c, okPred := index[yPred.AtVec(i)]
		if !okTrue || !okPred {
			continue
		}
		cm.Set(r, c, cm.At(r, c)+1)
	}
	return cm, nil
}

func uniqueSorted(vs ...*mat.VecDense) []float64 {
	seen := make(map[float64]struct{})
	for _, v := range vs {
		for i := 0; i < v.Len(); i++ {
			seen[v.AtVec(i)] = struct{}{}
		}
	}
	out := make([]float64, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Float64s(out)
	return out
}

func columnVector(op string, m mat.Matrix) (*mat.VecDense, error) {
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewValueError(op, "empty matrix")
	}
	if c != 1 {
		return nil, errors.NewValueError(op, "must be a column vector (n×1 matrix)")
	}
	if v, ok := m.(*mat.VecDense); ok {
		return v, nil
	}
	v := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		v.SetVec(i, m.At(i, 0))
	}
	return v, nil
}
