package preprocessing

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/pumpit/pkg/errors"
	"github.com/YuminosukeSato/pumpit/sklearn/linear_model"
	"gonum.org/v1/gonum/mat"
)

func TestStandardScaler(t *testing.T) {
	X := mat.NewDense(4, 3, []float64{
		1, 10, 5,
		2, 20, 5,
		3, 30, 5,
		4, 40, 5,
	})

	tests := []struct {
		name     string
		withMean bool
		withStd  bool
		// expected transformed value of row 0
		want []float64
	}{
		{"default", true, true, []float64{-1.3416407864998738, -1.3416407864998738, 0}},
		{"mean only", true, false, []float64{-1.5, -15, 0}},
		{"std only", false, true, []float64{1 / math.Sqrt(1.25), 10 / math.Sqrt(125), 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStandardScaler(tt.withMean, tt.withStd)
			Xt, err := s.FitTransform(X)
			if err != nil {
				t.Fatalf("FitTransform() error = %v", err)
			}
			for j, want := range tt.want {
				if math.Abs(Xt.At(0, j)-want) > 1e-9 {
					t.Errorf("Xt[0,%d] = %v, want %v", j, Xt.At(0, j), want)
				}
			}

			back, err := s.InverseTransform(Xt)
			if err != nil {
				t.Fatal(err)
			}
			if !mat.EqualApprox(back, X, 1e-9) {
				t.Errorf("InverseTransform did not restore X")
			}
		})
	}
}

func TestStandardScalerErrors(t *testing.T) {
	s := NewStandardScalerDefault()
	if _, err := s.Transform(mat.NewDense(1, 1, nil)); err == nil {
		t.Error("expected NotFittedError")
	}

	if err := s.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4})); err != nil {
		t.Fatal(err)
	}
	_, err := s.Transform(mat.NewDense(1, 3, nil))
	var dimErr *errors.DimensionError
	if !errors.As(err, &dimErr) {
		t.Errorf("expected DimensionError, got %v", err)
	}
}

func TestPipeline(t *testing.T) {
	X := mat.NewDense(8, 2, []float64{
		0, 1000,
		1, 1100,
		0, 1200,
		1, 1300,
		5, 9000,
		6, 9100,
		5, 9200,
		6, 9300,
	})
	y := mat.NewDense(8, 1, []float64{0, 0, 0, 0, 1, 1, 1, 1})

	p := NewPipeline(
		Step{Name: "scaler", Estimator: NewStandardScalerDefault()},
		Step{Name: "clf", Estimator: linear_model.NewLogisticRegression()},
	)
	if p.Name() != "LogisticRegression" {
		t.Errorf("Name() = %q, want LogisticRegression", p.Name())
	}

	if _, err := p.Predict(X); err == nil {
		t.Error("expected NotFittedError before Fit")
	}

	if err := p.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	score, err := p.Score(X, y)
	if err != nil {
		t.Fatal(err)
	}
	if score != 1.0 {
		t.Errorf("scaled logistic regression should separate the data, got %v", score)
	}
	if len(p.Classes()) != 2 {
		t.Errorf("Classes() = %v", p.Classes())
	}

	probas, err := p.PredictProba(X)
	if err != nil {
		t.Fatal(err)
	}
	if _, c := probas.Dims(); c != 2 {
		t.Errorf("expected 2 probability columns, got %d", c)
	}
}

func TestPipelineInvalidSteps(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{0, 1})
	y := mat.NewDense(2, 1, []float64{0, 1})

	tests := []struct {
		name  string
		steps []Step
	}{
		{"empty", nil},
		{"final not classifier", []Step{{Name: "scaler", Estimator: NewStandardScalerDefault()}}},
		{"intermediate not transformer", []Step{
			{Name: "clf1", Estimator: linear_model.NewLogisticRegression()},
			{Name: "clf2", Estimator: linear_model.NewLogisticRegression()},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewPipeline(tt.steps...).Fit(X, y)
			var valErr *errors.ValidationError
			if !errors.As(err, &valErr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}
