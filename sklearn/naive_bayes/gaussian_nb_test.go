package naive_bayes

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// TestGaussianNBBasicFit tests basic fitting functionality
func TestGaussianNBBasicFit(t *testing.T) {
	X := mat.NewDense(6, 2, []float64{
		1.0, 2.0, // class 0
		1.2, 1.8, // class 0
		0.8, 2.2, // class 0
		4.0, 5.0, // class 1
		4.2, 5.2, // class 1
		3.8, 4.8, // class 1
	})
	y := mat.NewDense(6, 1, []float64{0, 0, 0, 1, 1, 1})

	nb := NewGaussianNB()
	if err := nb.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	if !nb.state.IsFitted() {
		t.Error("Model should be fitted after Fit()")
	}
	if len(nb.Classes()) != 2 {
		t.Errorf("Expected 2 classes, got %d", len(nb.Classes()))
	}

	// class means
	if math.Abs(nb.theta_.At(0, 0)-1.0) > 1e-12 || math.Abs(nb.theta_.At(1, 1)-5.0) > 1e-12 {
		t.Errorf("unexpected means: %v", mat.Formatted(nb.theta_))
	}
	// population variance of {1.0, 1.2, 0.8}
	wantVar := (0.04 + 0.04) / 3
	if math.Abs(nb.var_.At(0, 0)-wantVar) > 1e-6 {
		t.Errorf("var[0,0] = %v, want %v", nb.var_.At(0, 0), wantVar)
	}

	prior := nb.ClassPrior()
	if prior[0] != 0.5 || prior[1] != 0.5 {
		t.Errorf("unexpected priors: %v", prior)
	}
}

// TestGaussianNBPredict tests predictions and probabilities
func TestGaussianNBPredict(t *testing.T) {
	X := mat.NewDense(9, 1, []float64{
		0.0, 0.5, 1.0, // class 0
		5.0, 5.5, 6.0, // class 1
		10.0, 10.5, 11.0, // class 2
	})
	y := mat.NewDense(9, 1, []float64{0, 0, 0, 1, 1, 1, 2, 2, 2})

	nb := NewGaussianNB()
	if err := nb.Fit(X, y); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		x    float64
		want float64
	}{
		{0.2, 0},
		{5.4, 1},
		{12.0, 2},
	}
	for _, tt := range tests {
		pred, err := nb.Predict(mat.NewDense(1, 1, []float64{tt.x}))
		if err != nil {
			t.Fatal(err)
		}
		if pred.At(0, 0) != tt.want {
			t.Errorf("Predict(%v) = %v, want %v", tt.x, pred.At(0, 0), tt.want)
		}
	}

	probas, err := nb.PredictProba(X)
	if err != nil {
		t.Fatal(err)
	}
	rows, cols := probas.Dims()
	for i := 0; i < rows; i++ {
		sum := 0.0
		for j := 0; j < cols; j++ {
			p := probas.At(i, j)
			if p < 0 || p > 1 {
				t.Errorf("invalid probability at (%d, %d): %v", i, j, p)
			}
			sum += p
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("row %d probabilities sum to %v", i, sum)
		}
	}

	score, err := nb.Score(X, y)
	if err != nil {
		t.Fatal(err)
	}
	if score != 1.0 {
		t.Errorf("expected perfect training accuracy, got %v", score)
	}
}

// TestGaussianNBConstantFeature ensures var_smoothing keeps a zero-variance
// feature from producing NaN.
func TestGaussianNBConstantFeature(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 0,
		1, 1,
		1, 5,
		1, 6,
	})
	y := mat.NewDense(4, 1, []float64{0, 0, 1, 1})

	nb := NewGaussianNB()
	if err := nb.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	probas, err := nb.PredictProba(X)
	if err != nil {
		t.Fatalf("constant feature should not break PredictProba: %v", err)
	}
	if probas.At(0, 0) < 0.5 || probas.At(3, 1) < 0.5 {
		t.Errorf("unexpected probabilities: %v", mat.Formatted(probas))
	}
}

// TestGaussianNBNotFitted tests error when predicting without fitting
func TestGaussianNBNotFitted(t *testing.T) {
	nb := NewGaussianNB()
	X := mat.NewDense(1, 2, []float64{1, 2})

	if _, err := nb.Predict(X); err == nil {
		t.Error("Expected error when predicting without fitting")
	}
	if _, err := nb.PredictProba(X); err == nil {
		t.Error("Expected error when predicting probabilities without fitting")
	}
}
