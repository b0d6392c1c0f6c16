package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []float64
		yPred   []float64
		want    float64
		wantErr bool
	}{
		{
			name:  "Perfect accuracy",
			yTrue: []float64{0, 1, 2, 1, 0},
			yPred: []float64{0, 1, 2, 1, 0},
			want:  1.0,
		},
		{
			name:  "80% accuracy",
			yTrue: []float64{0, 1, 2, 1, 0},
			yPred: []float64{0, 1, 1, 1, 0},
			want:  0.8,
		},
		{
			name:  "Zero accuracy",
			yTrue: []float64{0, 0, 0},
			yPred: []float64{1, 1, 1},
			want:  0.0,
		},
		{
			name:    "Empty vectors",
			yTrue:   []float64{},
			yPred:   []float64{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var yTrue, yPred *mat.VecDense
			if len(tt.yTrue) > 0 {
				yTrue = mat.NewVecDense(len(tt.yTrue), tt.yTrue)
			}
			if len(tt.yPred) > 0 {
				yPred = mat.NewVecDense(len(tt.yPred), tt.yPred)
			}

			got, err := Accuracy(yTrue, yPred)
			if (err != nil) != tt.wantErr {
				t.Errorf("Accuracy() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("Accuracy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAccuracyMatrix(t *testing.T) {
	yTrue := mat.NewDense(4, 1, []float64{0, 1, 2, 2})
	yPred := mat.NewVecDense(4, []float64{0, 1, 1, 2})

	got, err := AccuracyMatrix(yTrue, yPred)
	if err != nil {
		t.Fatalf("AccuracyMatrix() error = %v", err)
	}
	if math.Abs(got-0.75) > 1e-12 {
		t.Errorf("AccuracyMatrix() = %v, want 0.75", got)
	}

	if _, err := AccuracyMatrix(mat.NewDense(2, 2, nil), yPred); err == nil {
		t.Error("expected error for a non-column matrix")
	}
}

func TestConfusionMatrix(t *testing.T) {
	tests := []struct {
		name   string
		yTrue  []float64
		yPred  []float64
		labels []float64
		want   []float64
	}{
		{
			name:  "binary inferred labels",
			yTrue: []float64{0, 0, 1, 1, 1},
			yPred: []float64{0, 1, 1, 1, 0},
			want: []float64{
				1, 1,
				1, 2,
			},
		},
		{
			name:   "explicit label order",
			yTrue:  []float64{0, 0, 1, 1, 1},
			yPred:  []float64{0, 1, 1, 1, 0},
			labels: []float64{1, 0},
			want: []float64{
				2, 1,
				1, 1,
			},
		},
		{
			name:   "single class still yields full matrix",
			yTrue:  []float64{1, 1, 1},
			yPred:  []float64{1, 1, 0},
			labels: []float64{0, 1},
			want: []float64{
				0, 0,
				1, 2,
			},
		},
		{
			name:  "three classes",
			yTrue: []float64{0, 1, 2, 2},
			yPred: []float64{0, 2, 2, 1},
			want: []float64{
				1, 0, 0,
				0, 0, 1,
				0, 1, 1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cm, err := ConfusionMatrix(
				mat.NewVecDense(len(tt.yTrue), tt.yTrue),
				mat.NewVecDense(len(tt.yPred), tt.yPred),
				tt.labels,
			)
			if err != nil {
				t.Fatalf("ConfusionMatrix() error = %v", err)
			}
			r, c := cm.Dims()
			want := mat.NewDense(r, c, tt.want)
			if !mat.Equal(cm, want) {
				t.Errorf("ConfusionMatrix() = %v, want %v", mat.Formatted(cm), mat.Formatted(want))
			}
		})
	}
}

func TestConfusionMatrixErrors(t *testing.T) {
	if _, err := ConfusionMatrix(nil, nil, nil); err == nil {
		t.Error("expected error for nil vectors")
	}
	_, err := ConfusionMatrix(mat.NewVecDense(2, []float64{0, 1}), mat.NewVecDense(1, []float64{0}), nil)
	if err == nil {
		t.Error("expected error for length mismatch")
	}
}

func BenchmarkConfusionMatrix(b *testing.B) {
	n := 1000
	yTrue := make([]float64, n)
	yPred := make([]float64, n)
	for i := 0; i < n; i++ {
		yTrue[i] = float64(i % 3)
		yPred[i] = float64((i / 2) % 3)
	}
	yTrueVec := mat.NewVecDense(n, yTrue)
	yPredVec := mat.NewVecDense(n, yPred)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ConfusionMatrix(yTrueVec, yPredVec, nil)
	}
}
