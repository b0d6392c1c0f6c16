package model

import (
	"fmt"
	"sort"

	"github.com/YuminosukeSato/pumpit/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ValidateXY checks that X is non-empty and y is an n×1 label column
// matching X's row count.
func ValidateXY(op string, X, y mat.Matrix) (nSamples, nFeatures int, err error) {
	nSamples, nFeatures = X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return 0, 0, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	yRows, yCols := y.Dims()
	if yCols != 1 {
		return 0, 0, errors.NewDimensionError(op, 1, yCols, 1)
	}
	if yRows != nSamples {
		return 0, 0, errors.NewDimensionError(op, nSamples, yRows, 0)
	}
	return nSamples, nFeatures, nil
}

// ExtractClasses returns the sorted unique integer labels of y and the
// class index of every row.
func ExtractClasses(y mat.Matrix) (classes []int, encoded []int) {
	rows, _ := y.Dims()
	seen := make(map[int]struct{})
	for i := 0; i < rows; i++ {
		seen[int(y.At(i, 0))] = struct{}{}
	}

	classes = make([]int, 0, len(seen))
	for c := range seen {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	index := make(map[int]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	encoded = make([]int, rows)
	for i := 0; i < rows; i++ {
		encoded[i] = index[int(y.At(i, 0))]
	}
	return classes, encoded
}

// Argmax returns the index of the largest value; ties go to the lowest index.
func Argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}

// SetParam stores value in *dst when it has dst's type. A value of any
// other type is a ValidationError and leaves *dst unchanged.
func SetParam[T any](key string, value interface{}, dst *T) error {
	v, ok := value.(T)
	if !ok {
		return errors.NewValidationError(key, fmt.Sprintf("must be of type %T", *dst), value)
	}
	*dst = v
	return nil
}
