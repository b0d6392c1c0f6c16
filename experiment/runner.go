// Package experiment fits the candidate classifiers on the prepared pump
// data, cross-validates the chosen forest and reports its feature
// importances. Human-readable results go to the runner's output writer;
// structured logs go to the component logger.
package experiment

import (
	"fmt"
	"io"
	"os"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pumpit/core/model"
	"github.com/YuminosukeSato/pumpit/model_selection"
	"github.com/YuminosukeSato/pumpit/pkg/errors"
	"github.com/YuminosukeSato/pumpit/pkg/log"
	"github.com/YuminosukeSato/pumpit/preprocessing"
	"github.com/YuminosukeSato/pumpit/sklearn/ensemble"
	"github.com/YuminosukeSato/pumpit/sklearn/linear_model"
	"github.com/YuminosukeSato/pumpit/sklearn/naive_bayes"
	"github.com/YuminosukeSato/pumpit/sklearn/neighbors"
	"github.com/YuminosukeSato/pumpit/sklearn/tree"
)

// Runner carries the output writer and split settings shared by every
// experiment step.
type Runner struct {
	out      io.Writer
	logger   log.Logger
	testSize float64
	seed     uint64
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithOutput sets the report writer (default os.Stdout).
func WithOutput(w io.Writer) RunnerOption {
	return func(r *Runner) { r.out = w }
}

// WithLogger overrides the component logger.
func WithLogger(l log.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// WithTestSize sets the held-out fraction used by SplitAndFit (default 0.25).
func WithTestSize(f float64) RunnerOption {
	return func(r *Runner) { r.testSize = f }
}

// WithSeed sets the split seed (default 42).
func WithSeed(seed uint64) RunnerOption {
	return func(r *Runner) { r.seed = seed }
}

// NewRunner creates a Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		out:      os.Stdout,
		logger:   log.GetLoggerWithName("experiment"),
		testSize: 0.25,
		seed:     42,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FitResult is the outcome of one SplitAndFit call.
type FitResult struct {
	Name      string
	Accuracy  float64
	TrainRows int
	TestRows  int
	Duration  time.Duration
}

// SplitAndFit splits X and y with the runner's seed, fits clf on the
// training part and prints its name and held-out accuracy.
func (r *Runner) SplitAndFit(clf model.Classifier, X, y mat.Matrix) (FitResult, error) {
	name := model.NameOf(clf)
	split, err := model_selection.TrainTestSplit(X, y,
		model_selection.WithTestSize(r.testSize),
		model_selection.WithRandomState(r.seed),
	)
	if err != nil {
		return FitResult{}, errors.Wrapf(err, "splitting data for %s", name)
	}

	start := time.Now()
	err = errors.SafeExecute(name+".Fit", func() error {
		return clf.Fit(split.XTrain, split.YTrain)
	})
	if err != nil {
		return FitResult{}, errors.Wrapf(err, "fitting %s", name)
	}
	score, err := clf.Score(split.XTest, split.YTest)
	if err != nil {
		return FitResult{}, errors.Wrapf(err, "scoring %s", name)
	}

	res := FitResult{
		Name:      name,
		Accuracy:  score,
		TrainRows: len(split.TrainIndices),
		TestRows:  len(split.TestIndices),
		Duration:  time.Since(start),
	}
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, name)
	fmt.Fprintln(r.out, score)

	r.logger.Info("model scored",
		log.ModelNameKey, name,
		log.OperationKey, log.OperationScore,
		log.SamplesKey, res.TrainRows,
		log.AccuracyKey, score,
		log.DurationMsKey, res.Duration.Milliseconds(),
	)
	return res, nil
}

// DefaultClassifiers returns the five candidate models with default
// hyperparameters, in report order. With standardize set, the gradient
// and distance based models get a StandardScaler in front.
func DefaultClassifiers(standardize bool, seed int64) []model.Classifier {
	lr := model.Classifier(linear_model.NewLogisticRegression())
	knn := model.Classifier(neighbors.NewKNeighborsClassifier())
	if standardize {
		lr = scaled("logistic", lr)
		knn = scaled("knn", knn)
	}
	return []model.Classifier{
		lr,
		tree.NewDecisionTreeClassifier(tree.WithRandomState(seed)),
		knn,
		naive_bayes.NewGaussianNB(),
		ensemble.NewRandomForestClassifier(ensemble.WithRandomState(seed)),
	}
}

func scaled(name string, clf model.Classifier) model.Classifier {
	return preprocessing.NewPipeline(
		preprocessing.Step{Name: "scaler", Estimator: preprocessing.NewStandardScalerDefault()},
		preprocessing.Step{Name: name, Estimator: clf},
	)
}

// RunModels calls SplitAndFit for each classifier in turn and stops at the
// first failure.
func (r *Runner) RunModels(classifiers []model.Classifier, X, y mat.Matrix) ([]FitResult, error) {
	results := make([]FitResult, 0, len(classifiers))
	for _, clf := range classifiers {
		res, err := r.SplitAndFit(clf, X, y)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
