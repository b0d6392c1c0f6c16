// Package neighbors implements nearest-neighbour classification.
package neighbors

import (
	"github.com/YuminosukeSato/pumpit/core/model"
	"github.com/YuminosukeSato/pumpit/core/parallel"
	"github.com/YuminosukeSato/pumpit/metrics"
	"github.com/YuminosukeSato/pumpit/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// KNeighborsClassifier votes among the k closest training rows under
// Euclidean distance, with uniform weights (scikit-learn defaults).
type KNeighborsClassifier struct {
	state *model.StateManager

	nNeighbors int

	// training data is stored as-is
	fitX     *mat.Dense
	encoded  []int
	classes_ []int
}

// Option configures a KNeighborsClassifier.
type Option func(*KNeighborsClassifier)

// WithNNeighbors sets k (default 5).
func WithNNeighbors(k int) Option {
	return func(kn *KNeighborsClassifier) { kn.nNeighbors = k }
}

// NewKNeighborsClassifier creates a classifier with k=5.
func NewKNeighborsClassifier(opts ...Option) *KNeighborsClassifier {
	kn := &KNeighborsClassifier{
		state:      model.NewStateManager(),
		nNeighbors: 5,
	}
	for _, opt := range opts {
		opt(kn)
	}
	return kn
}

// Fit stores the training data.
func (kn *KNeighborsClassifier) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures, err := model.ValidateXY("KNeighborsClassifier.Fit", X, y)
	if err != nil {
		return err
	}
	if kn.nNeighbors < 1 {
		return errors.NewValidationError("n_neighbors", "must be at least 1", kn.nNeighbors)
	}
	if kn.nNeighbors > nSamples {
		return errors.NewValueError("KNeighborsClassifier.Fit",
			"expected n_neighbors <= n_samples")
	}

	kn.fitX = mat.DenseCopyOf(X)
	kn.classes_, kn.encoded = model.ExtractClasses(y)
	kn.state.SetDimensions(nFeatures, nSamples)
	kn.state.SetFitted()
	return nil
}

type neighbour struct {
	dist  float64
	index int
}

// nearest returns the k training rows closest to query, closest first.
// Equal distances keep training order.
func (kn *KNeighborsClassifier) nearest(query []float64, best []neighbour) []neighbour {
	best = best[:0]
	nTrain, _ := kn.fitX.Dims()
	for i := 0; i < nTrain; i++ {
		d := floats.Distance(query, kn.fitX.RawRowView(i), 2)
		if len(best) == kn.nNeighbors && d >= best[len(best)-1].dist {
			continue
		}
		if len(best) < kn.nNeighbors {
			best = append(best, neighbour{})
		}
		j := len(best) - 1
		for j > 0 && best[j-1].dist > d {
			best[j] = best[j-1]
			j--
		}
		best[j] = neighbour{dist: d, index: i}
	}
	return best
}

// PredictProba returns the fraction of the k neighbours in each class.
// Queries are split across CPUs.
func (kn *KNeighborsClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := kn.state.RequireFitted("KNeighborsClassifier", "PredictProba"); err != nil {
		return nil, err
	}
	if err := kn.state.CheckFeatures("KNeighborsClassifier.PredictProba", X); err != nil {
		return nil, err
	}

	Xq := mat.DenseCopyOf(X)
	nSamples, nFeatures := Xq.Dims()
	if err := errors.CheckMatrix("KNeighborsClassifier.PredictProba", Xq, nSamples, nFeatures); err != nil {
		return nil, err
	}
	probas := mat.NewDense(nSamples, len(kn.classes_), nil)
	weight := 1 / float64(kn.nNeighbors)

	parallel.ParallelizeWithThreshold(nSamples, 64, func(start, end int) {
		buf := make([]neighbour, 0, kn.nNeighbors)
		for i := start; i < end; i++ {
			buf = kn.nearest(Xq.RawRowView(i), buf)
			row := probas.RawRowView(i)
			for _, nb := range buf {
				row[kn.encoded[nb.index]] += weight
			}
		}
	})

	return probas, nil
}

// Predict returns the majority class among the neighbours; ties go to
// the smallest class label.
func (kn *KNeighborsClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	probas, err := kn.PredictProba(X)
	if err != nil {
		return nil, err
	}
	nSamples, _ := probas.Dims()
	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		predictions.Set(i, 0, float64(kn.classes_[model.Argmax(mat.Row(nil, i, probas))]))
	}
	return predictions, nil
}

// Score returns the mean accuracy on the given test data and labels.
func (kn *KNeighborsClassifier) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := kn.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyMatrix(y, predictions)
}

// Classes returns the class labels seen during Fit.
func (kn *KNeighborsClassifier) Classes() []int {
	return kn.classes_
}

// GetParams returns the model hyperparameters.
func (kn *KNeighborsClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_neighbors": kn.nNeighbors,
		"weights":     "uniform",
		"metric":      "euclidean",
	}
}
