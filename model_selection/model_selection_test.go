package model_selection

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/YuminosukeSato/pumpit/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

func sequentialData(n int) (*mat.Dense, *mat.VecDense) {
	X := mat.NewDense(n, 2, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		X.Set(i, 1, float64(2*i))
		y.SetVec(i, float64(i%3))
	}
	return X, y
}

func TestTrainTestSplit(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		opts      []SplitOption
		wantTrain int
		wantTest  int
	}{
		{name: "default quarter", n: 100, wantTrain: 75, wantTest: 25},
		{name: "test size rounds up", n: 10, wantTrain: 7, wantTest: 3},
		{name: "custom size", n: 10, opts: []SplitOption{WithTestSize(0.5)}, wantTrain: 5, wantTest: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			X, y := sequentialData(tt.n)
			split, err := TrainTestSplit(X, y, tt.opts...)
			if err != nil {
				t.Fatalf("TrainTestSplit() error = %v", err)
			}
			if r, _ := split.XTrain.Dims(); r != tt.wantTrain {
				t.Errorf("train rows = %d, want %d", r, tt.wantTrain)
			}
			if r, _ := split.XTest.Dims(); r != tt.wantTest {
				t.Errorf("test rows = %d, want %d", r, tt.wantTest)
			}
			if split.YTrain.Len() != tt.wantTrain || split.YTest.Len() != tt.wantTest {
				t.Errorf("label lengths = %d/%d", split.YTrain.Len(), split.YTest.Len())
			}

			seen := make(map[int]bool)
			for _, idx := range append(append([]int{}, split.TrainIndices...), split.TestIndices...) {
				if seen[idx] {
					t.Fatalf("index %d appears twice", idx)
				}
				seen[idx] = true
			}
			if len(seen) != tt.n {
				t.Errorf("split covers %d rows, want %d", len(seen), tt.n)
			}

			// rows travel with their labels
			for i, idx := range split.TestIndices {
				if split.XTest.At(i, 0) != float64(idx) || split.YTest.AtVec(i) != float64(idx%3) {
					t.Fatalf("test row %d does not match source row %d", i, idx)
				}
			}
		})
	}
}

func TestTrainTestSplitDeterministic(t *testing.T) {
	X, y := sequentialData(40)

	a, err := TrainTestSplit(X, y)
	if err != nil {
		t.Fatal(err)
	}
	b, err := TrainTestSplit(X, y)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a.TestIndices, b.TestIndices); diff != "" {
		t.Fatalf("same seed produced different splits (-first +second):\n%s", diff)
	}

	c, err := TrainTestSplit(X, y, WithShuffle(false))
	if err != nil {
		t.Fatal(err)
	}
	for i, idx := range c.TestIndices {
		if idx != i {
			t.Fatalf("unshuffled split should take the first rows as test, got %v", c.TestIndices)
		}
	}
}

func TestTrainTestSplitErrors(t *testing.T) {
	X, y := sequentialData(4)

	if _, err := TrainTestSplit(X, mat.NewVecDense(3, nil)); err == nil {
		t.Error("expected dimension error")
	}

	_, err := TrainTestSplit(X, y, WithTestSize(1.5))
	var valErr *errors.ValidationError
	if !errors.As(err, &valErr) {
		t.Errorf("expected ValidationError, got %v", err)
	}

	one := mat.NewDense(1, 2, nil)
	if _, err := TrainTestSplit(one, mat.NewVecDense(1, nil)); err == nil {
		t.Error("expected error when the train set would be empty")
	}
}

func TestKFold(t *testing.T) {
	tests := []struct {
		name      string
		nSamples  int
		nSplits   int
		wantSizes []int
	}{
		{name: "even", nSamples: 100, nSplits: 5, wantSizes: []int{20, 20, 20, 20, 20}},
		{name: "remainder goes first", nSamples: 11, nSplits: 3, wantSizes: []int{4, 4, 3}},
		{name: "leave one out", nSamples: 3, nSplits: 3, wantSizes: []int{1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			folds, err := NewKFold(tt.nSplits, false, 0).Split(tt.nSamples)
			if err != nil {
				t.Fatalf("Split() error = %v", err)
			}
			if len(folds) != tt.nSplits {
				t.Fatalf("got %d folds, want %d", len(folds), tt.nSplits)
			}

			covered := make([]int, tt.nSamples)
			next := 0
			for i, fold := range folds {
				if len(fold.TestIndices) != tt.wantSizes[i] {
					t.Errorf("fold %d test size = %d, want %d", i, len(fold.TestIndices), tt.wantSizes[i])
				}
				if len(fold.TrainIndices)+len(fold.TestIndices) != tt.nSamples {
					t.Errorf("fold %d does not partition the rows", i)
				}
				for _, idx := range fold.TestIndices {
					if idx != next {
						t.Fatalf("fold %d is not contiguous: %v", i, fold.TestIndices)
					}
					next++
					covered[idx]++
				}
			}
			for idx, c := range covered {
				if c != 1 {
					t.Errorf("row %d held out %d times", idx, c)
				}
			}
		})
	}
}

func TestKFoldErrors(t *testing.T) {
	if _, err := NewKFold(1, false, 0).Split(10); err == nil {
		t.Error("expected error for a single fold")
	}

	_, err := NewKFold(5, false, 0).Split(3)
	var valueErr *errors.ValueError
	if !errors.As(err, &valueErr) {
		t.Errorf("expected ValueError for more folds than samples, got %v", err)
	}
}

func TestKFoldShuffle(t *testing.T) {
	a, err := NewKFold(4, true, 7).Split(20)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewKFold(4, true, 7).Split(20)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("shuffled folds should be reproducible for a fixed seed (-first +second):\n%s", diff)
	}
}

func TestKFoldContiguous(t *testing.T) {
	folds, err := NewKFold(3, false, 0).Split(7)
	if err != nil {
		t.Fatal(err)
	}
	want := []Fold{
		{TrainIndices: []int{3, 4, 5, 6}, TestIndices: []int{0, 1, 2}},
		{TrainIndices: []int{0, 1, 2, 5, 6}, TestIndices: []int{3, 4}},
		{TrainIndices: []int{0, 1, 2, 3, 4}, TestIndices: []int{5, 6}},
	}
	if diff := cmp.Diff(want, folds); diff != "" {
		t.Errorf("folds mismatch (-want +got):\n%s", diff)
	}
}
