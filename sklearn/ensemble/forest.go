// Package ensemble implements the random forest classifier.
package ensemble

import (
	"math"
	"math/rand/v2"
	"runtime"

	"github.com/YuminosukeSato/pumpit/core/model"
	"github.com/YuminosukeSato/pumpit/metrics"
	"github.com/YuminosukeSato/pumpit/pkg/errors"
	"github.com/YuminosukeSato/pumpit/pkg/log"
	"github.com/YuminosukeSato/pumpit/sklearn/tree"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// RandomForestClassifier averages the class probabilities of decision
// trees grown on bootstrap samples with random feature subsets.
// Defaults follow scikit-learn's RandomForestClassifier (10 trees,
// sqrt(n_features) per split, bootstrap on).
type RandomForestClassifier struct {
	state  *model.StateManager
	logger log.Logger

	nEstimators     int
	maxFeatures     string // "sqrt", "log2" or "all"
	bootstrap       bool
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	randomState     int64 // negative means unseeded
	nJobs           int

	estimators_         []*tree.DecisionTreeClassifier
	classes_            []int
	featureImportances_ []float64
}

// Option configures a RandomForestClassifier.
type Option func(*RandomForestClassifier)

// WithNEstimators sets the number of trees.
func WithNEstimators(n int) Option {
	return func(rf *RandomForestClassifier) { rf.nEstimators = n }
}

// WithMaxFeatures sets the per-split feature budget: "sqrt", "log2" or "all".
func WithMaxFeatures(mode string) Option {
	return func(rf *RandomForestClassifier) { rf.maxFeatures = mode }
}

// WithBootstrap toggles bootstrap sampling.
func WithBootstrap(b bool) Option {
	return func(rf *RandomForestClassifier) { rf.bootstrap = b }
}

// WithMaxDepth limits the depth of every tree. 0 means unlimited.
func WithMaxDepth(depth int) Option {
	return func(rf *RandomForestClassifier) { rf.maxDepth = depth }
}

// WithMinSamplesLeaf sets the minimum leaf size of every tree.
func WithMinSamplesLeaf(n int) Option {
	return func(rf *RandomForestClassifier) { rf.minSamplesLeaf = n }
}

// WithRandomState seeds bootstrap sampling and feature selection.
func WithRandomState(seed int64) Option {
	return func(rf *RandomForestClassifier) { rf.randomState = seed }
}

// WithNJobs bounds the number of trees grown concurrently.
// Values below 1 use runtime.NumCPU().
func WithNJobs(n int) Option {
	return func(rf *RandomForestClassifier) { rf.nJobs = n }
}

// NewRandomForestClassifier creates a forest with scikit-learn defaults.
func NewRandomForestClassifier(opts ...Option) *RandomForestClassifier {
	rf := &RandomForestClassifier{
		state:           model.NewStateManager(),
		logger:          log.GetLoggerWithName("RandomForestClassifier"),
		nEstimators:     10,
		maxFeatures:     "sqrt",
		bootstrap:       true,
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
		randomState:     -1,
	}
	for _, opt := range opts {
		opt(rf)
	}
	return rf
}

func (rf *RandomForestClassifier) featuresPerSplit(nFeatures int) (int, error) {
	var k int
	switch rf.maxFeatures {
	case "sqrt", "auto":
		k = int(math.Sqrt(float64(nFeatures)))
	case "log2":
		k = int(math.Log2(float64(nFeatures)))
	case "all", "":
		k = nFeatures
	default:
		return 0, errors.NewValidationError("max_features", "must be 'sqrt', 'log2' or 'all'", rf.maxFeatures)
	}
	return max(k, 1), nil
}

// Fit grows the trees concurrently. Each tree receives its own seed drawn
// up front from the forest seed, so the result does not depend on
// goroutine scheduling.
func (rf *RandomForestClassifier) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures, err := model.ValidateXY("RandomForestClassifier.Fit", X, y)
	if err != nil {
		return err
	}
	if rf.nEstimators < 1 {
		return errors.NewValidationError("n_estimators", "must be at least 1", rf.nEstimators)
	}
	k, err := rf.featuresPerSplit(nFeatures)
	if err != nil {
		return err
	}

	rf.state.Reset()
	rf.classes_, _ = model.ExtractClasses(y)

	masterSeed := uint64(rf.randomState)
	if rf.randomState < 0 {
		masterSeed = rand.Uint64()
	}
	master := rand.New(rand.NewPCG(masterSeed, masterSeed))
	seeds := make([]uint64, rf.nEstimators)
	for i := range seeds {
		seeds[i] = master.Uint64()
	}

	jobs := rf.nJobs
	if jobs < 1 {
		jobs = runtime.NumCPU()
	}

	Xd := mat.DenseCopyOf(X)
	estimators := make([]*tree.DecisionTreeClassifier, rf.nEstimators)

	var g errgroup.Group
	g.SetLimit(jobs)
	for i := range estimators {
		g.Go(func() error {
			seed := seeds[i]
			rng := rand.New(rand.NewPCG(seed, seed>>1))

			samples := make([]int, nSamples)
			for s := range samples {
				if rf.bootstrap {
					samples[s] = rng.IntN(nSamples)
				} else {
					samples[s] = s
				}
			}

			dt := tree.NewDecisionTreeClassifier(
				tree.WithMaxDepth(rf.maxDepth),
				tree.WithMinSamplesSplit(rf.minSamplesSplit),
				tree.WithMinSamplesLeaf(rf.minSamplesLeaf),
				tree.WithMaxFeatures(k),
				tree.WithRandomState(int64(rng.Uint64()>>1)),
			)
			if err := dt.FitSamples(Xd, y, samples); err != nil {
				return errors.Wrapf(err, "fitting tree %d", i)
			}
			estimators[i] = dt
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	rf.estimators_ = estimators
	rf.featureImportances_ = meanImportances(estimators, nFeatures)
	rf.state.SetDimensions(nFeatures, nSamples)
	rf.state.SetFitted()

	rf.logger.Debug("forest fitted",
		log.EstimatorsKey, rf.nEstimators,
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
	)
	return nil
}

func meanImportances(estimators []*tree.DecisionTreeClassifier, nFeatures int) []float64 {
	mean := make([]float64, nFeatures)
	for _, est := range estimators {
		floats.Add(mean, est.FeatureImportances())
	}
	floats.Scale(1/float64(len(estimators)), mean)
	if total := floats.Sum(mean); total > 0 {
		floats.Scale(1/total, mean)
	}
	return mean
}

// PredictProba averages the per-tree class probabilities.
func (rf *RandomForestClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := rf.state.RequireFitted("RandomForestClassifier", "PredictProba"); err != nil {
		return nil, err
	}
	if err := rf.state.CheckFeatures("RandomForestClassifier.PredictProba", X); err != nil {
		return nil, err
	}

	nSamples, _ := X.Dims()
	sum := mat.NewDense(nSamples, len(rf.classes_), nil)
	for _, est := range rf.estimators_ {
		p, err := est.PredictProba(X)
		if err != nil {
			return nil, err
		}
		sum.Add(sum, p)
	}
	sum.Scale(1/float64(len(rf.estimators_)), sum)
	return sum, nil
}

// Predict returns the class with the highest averaged probability.
func (rf *RandomForestClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	probas, err := rf.PredictProba(X)
	if err != nil {
		return nil, err
	}
	nSamples, _ := probas.Dims()
	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		predictions.Set(i, 0, float64(rf.classes_[model.Argmax(mat.Row(nil, i, probas))]))
	}
	return predictions, nil
}

// Score returns the mean accuracy on the given test data and labels.
func (rf *RandomForestClassifier) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := rf.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyMatrix(y, predictions)
}

// Classes returns the class labels seen during Fit.
func (rf *RandomForestClassifier) Classes() []int {
	return rf.classes_
}

// FeatureImportances returns the mean of the per-tree importances,
// renormalized to sum to one.
func (rf *RandomForestClassifier) FeatureImportances() []float64 {
	return rf.featureImportances_
}

// EstimatorImportances returns each tree's own feature importances.
func (rf *RandomForestClassifier) EstimatorImportances() [][]float64 {
	out := make([][]float64, len(rf.estimators_))
	for i, est := range rf.estimators_ {
		out[i] = est.FeatureImportances()
	}
	return out
}

// Estimators returns the fitted trees.
func (rf *RandomForestClassifier) Estimators() []*tree.DecisionTreeClassifier {
	return rf.estimators_
}

// GetParams returns the model hyperparameters.
func (rf *RandomForestClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators":      rf.nEstimators,
		"max_features":      rf.maxFeatures,
		"bootstrap":         rf.bootstrap,
		"max_depth":         rf.maxDepth,
		"min_samples_split": rf.minSamplesSplit,
		"min_samples_leaf":  rf.minSamplesLeaf,
		"random_state":      rf.randomState,
		"n_jobs":            rf.nJobs,
	}
}
