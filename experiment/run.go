package experiment

import (
	"fmt"

	"github.com/YuminosukeSato/pumpit/config"
	"github.com/YuminosukeSato/pumpit/dataset"
	"github.com/YuminosukeSato/pumpit/features"
	"github.com/YuminosukeSato/pumpit/pkg/errors"
	"github.com/YuminosukeSato/pumpit/pkg/log"
	"github.com/YuminosukeSato/pumpit/sklearn/ensemble"
)

// Run executes the whole experiment described by cfg: load, prepare,
// compare the default models, try the larger forests, cross-validate the
// chosen forest and report its importances.
func Run(cfg config.Config, opts ...RunnerOption) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	r := NewRunner(append([]RunnerOption{
		WithTestSize(cfg.TestSize),
		WithSeed(cfg.Seed),
	}, opts...)...)
	seed := int64(cfg.Seed)

	fmt.Fprintln(r.out, "reading and transforming data...")
	var loadOpts []dataset.Option
	if cfg.Impute {
		loadOpts = append(loadOpts, dataset.WithImputer(dataset.MedianImputer()))
	}
	df, err := dataset.Load(cfg.FeaturesPath, cfg.LabelsPath, loadOpts...)
	if err != nil {
		return errors.Wrap(err, "loading data")
	}
	prep, err := features.Prepare(df,
		features.WithInteractions(cfg.Interactions),
		features.WithRareLevels(cfg.Rare.Keep, cfg.Rare.Columns...),
		features.WithSentinel(cfg.Rare.Sentinel),
		features.WithStrictRare(cfg.Rare.Strict),
		features.WithMaxLevels(cfg.MaxLevels),
	)
	if err != nil {
		return errors.Wrap(err, "preparing features")
	}
	r.logger.Debug("formula", "formula", prep.Formula.String(), "given_up", prep.GivenUp)

	fmt.Fprintln(r.out, "split train and test, testing models...")
	if _, err := r.RunModels(DefaultClassifiers(cfg.Standardize, seed), prep.X, prep.Y); err != nil {
		return err
	}

	for _, n := range cfg.ForestSizes {
		fmt.Fprintf(r.out, "\ntrying RandomForestClassifier with n_estimators=%d...\n", n)
		forest := ensemble.NewRandomForestClassifier(
			ensemble.WithNEstimators(n),
			ensemble.WithRandomState(seed),
		)
		if _, err := r.SplitAndFit(forest, prep.X, prep.Y); err != nil {
			return err
		}
	}

	fmt.Fprintf(r.out, "\ntrying RandomForestClassifier with n_estimators=%d using KFold...\n", cfg.CVForestSize)
	forest := ensemble.NewRandomForestClassifier(
		ensemble.WithNEstimators(cfg.CVForestSize),
		ensemble.WithRandomState(seed),
	)
	if _, err := r.CrossValidate(forest, prep.X, prep.Y, cfg.Folds); err != nil {
		return err
	}

	fmt.Fprintln(r.out, "sort and barplot features...")
	ranking, err := RankImportances(forest, prep.Columns)
	if err != nil {
		return err
	}
	r.PrintImportances(ranking)

	if cfg.PlotPath == "" {
		return nil
	}
	if err := PlotImportances(ranking, cfg.TopN, cfg.PlotPath); err != nil {
		return err
	}
	r.logger.Info("importance plot written",
		log.OperationKey, log.OperationPlot,
		log.PhaseKey, log.PhaseReporting,
		log.PathKey, cfg.PlotPath,
	)
	return nil
}
