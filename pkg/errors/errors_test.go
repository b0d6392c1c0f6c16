package errors

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		kind    string
		err     error
		wantMsg string
	}{
		{
			name:    "with original error",
			op:      "RankImportances",
			kind:    "not an ensemble",
			err:     fmt.Errorf("test error"),
			wantMsg: "pumpit: RankImportances: not an ensemble: test error",
		},
		{
			name:    "without original error",
			op:      "Predict",
			kind:    "not fitted",
			err:     nil,
			wantMsg: "pumpit: Predict: not fitted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestModelErrorUnwrap(t *testing.T) {
	err := NewModelError("RankImportances", "unsupported model", ErrNotEnsemble)
	if !Is(err, ErrNotEnsemble) {
		t.Error("ModelError should unwrap to ErrNotEnsemble")
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Predict", 10, 3, 1)

	want := "pumpit: Predict: dimension mismatch on axis 1 (features). Expected 10, got 3"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("GaussianNB", "Predict")

	want := "pumpit: GaussianNB: this model is not fitted yet. Call Fit() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var notFittedErr *NotFittedError
	if !As(err, &notFittedErr) {
		t.Error("Error should be castable to *NotFittedError")
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("status_group", "unrecognized status", "broken")
	want := "pumpit: validation failed for parameter 'status_group': unrecognized status (got: broken)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestNewValueError(t *testing.T) {
	err := NewValueError("KFold.Split", "n_folds=5 cannot be greater than the number of samples: 3")
	want := "pumpit: KFold.Split: n_folds=5 cannot be greater than the number of samples: 3"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestWarnRoutesToHandler(t *testing.T) {
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(func(w error) {})

	Warn(NewUndefinedMetricWarning("precision", "no predicted samples", 0))

	if len(got) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(got))
	}
	if !strings.Contains(got[0].Error(), "'precision' is ill-defined") {
		t.Errorf("unexpected warning text: %v", got[0])
	}
}

func TestWarnPrefersZerolog(t *testing.T) {
	var handler, zl int
	SetWarningHandler(func(w error) { handler++ })
	SetZerologWarnFunc(func(w error) { zl++ })
	defer SetZerologWarnFunc(nil)

	Warn(NewConvergenceWarning("LogisticRegression", 100, ""))

	if zl != 1 || handler != 0 {
		t.Errorf("zerolog func should take precedence: zerolog=%d handler=%d", zl, handler)
	}
}

func TestWrapAndIs(t *testing.T) {
	wrapped := Wrap(ErrEmptyData, "loading features")
	if !Is(wrapped, ErrEmptyData) {
		t.Error("wrapped error should match ErrEmptyData")
	}
	if !strings.HasPrefix(wrapped.Error(), "loading features") {
		t.Errorf("unexpected message %q", wrapped.Error())
	}
}

func TestCheckMatrix(t *testing.T) {
	ok := [][]float64{{1, 2}, {3, 4}}
	if err := CheckMatrix("design_matrix", grid(ok), 2, 2); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	bad := [][]float64{{1, 2}, {math.NaN(), 4}}
	err := CheckMatrix("design_matrix", grid(bad), 2, 2)
	var instab *NumericalInstabilityError
	if !As(err, &instab) {
		t.Fatalf("expected NumericalInstabilityError, got %v", err)
	}
	if instab.Iteration != 1 {
		t.Errorf("expected offending row 1, got %d", instab.Iteration)
	}
}

func TestLogSumExp(t *testing.T) {
	got := LogSumExp([]float64{math.Log(1), math.Log(3)})
	if math.Abs(got-math.Log(4)) > 1e-12 {
		t.Errorf("LogSumExp = %v, want %v", got, math.Log(4))
	}
	if !math.IsInf(LogSumExp(nil), -1) {
		t.Error("LogSumExp(nil) should be -Inf")
	}
}

type grid [][]float64

func (g grid) At(i, j int) float64 { return g[i][j] }
