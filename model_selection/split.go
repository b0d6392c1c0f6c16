// Package model_selection provides train/test splitting and K-fold
// partitioning of a design matrix, in the manner of
// sklearn.model_selection.
package model_selection

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/YuminosukeSato/pumpit/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Split holds one train/test partition of X and y.
type Split struct {
	XTrain, XTest *mat.Dense
	YTrain, YTest *mat.VecDense

	TrainIndices []int
	TestIndices  []int
}

// SplitOption configures TrainTestSplit.
type SplitOption func(*splitConfig)

type splitConfig struct {
	testSize    float64
	randomState uint64
	shuffle     bool
}

// WithTestSize sets the held-out fraction (default 0.25).
func WithTestSize(f float64) SplitOption {
	return func(c *splitConfig) { c.testSize = f }
}

// WithRandomState sets the shuffling seed (default 42).
func WithRandomState(seed uint64) SplitOption {
	return func(c *splitConfig) { c.randomState = seed }
}

// WithShuffle toggles shuffling before the split (default true).
func WithShuffle(shuffle bool) SplitOption {
	return func(c *splitConfig) { c.shuffle = shuffle }
}

// TrainTestSplit partitions the rows of X and y. The test set holds
// ceil(testSize*n) rows taken from the front of a seeded permutation, so a
// fixed seed always yields the same partition.
func TrainTestSplit(X, y mat.Matrix, opts ...SplitOption) (*Split, error) {
	cfg := splitConfig{testSize: 0.25, randomState: 42, shuffle: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	n, _ := X.Dims()
	yRows, _ := y.Dims()
	if n == 0 {
		return nil, errors.NewModelError("TrainTestSplit", "empty data", errors.ErrEmptyData)
	}
	if yRows != n {
		return nil, errors.NewDimensionError("TrainTestSplit", n, yRows, 0)
	}
	if cfg.testSize <= 0 || cfg.testSize >= 1 {
		return nil, errors.NewValidationError("test_size", "must be in (0, 1)", cfg.testSize)
	}

	nTest := int(math.Ceil(cfg.testSize * float64(n)))
	nTrain := n - nTest
	if nTest == 0 || nTrain == 0 {
		return nil, errors.NewValueError("TrainTestSplit",
			fmt.Sprintf("with n_samples=%d and test_size=%v the resulting train set would be empty", n, cfg.testSize))
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if cfg.shuffle {
		r := rand.New(rand.NewPCG(cfg.randomState, cfg.randomState))
		r.Shuffle(n, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	testIdx := append([]int(nil), indices[:nTest]...)
	trainIdx := append([]int(nil), indices[nTest:]...)

	return &Split{
		XTrain:       SelectRows(X, trainIdx),
		XTest:        SelectRows(X, testIdx),
		YTrain:       SelectLabels(y, trainIdx),
		YTest:        SelectLabels(y, testIdx),
		TrainIndices: trainIdx,
		TestIndices:  testIdx,
	}, nil
}

// SelectRows copies the given rows of X into a new matrix.
func SelectRows(X mat.Matrix, rows []int) *mat.Dense {
	_, c := X.Dims()
	out := mat.NewDense(len(rows), c, nil)
	for i, r := range rows {
		for j := 0; j < c; j++ {
			out.Set(i, j, X.At(r, j))
		}
	}
	return out
}

// SelectLabels copies the given rows of the n×1 label column y.
func SelectLabels(y mat.Matrix, rows []int) *mat.VecDense {
	out := mat.NewVecDense(len(rows), nil)
	for i, r := range rows {
		out.SetVec(i, y.At(r, 0))
	}
	return out
}
