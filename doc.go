// Package pumpit classifies the functional status of water pumps and
// reports which features drive the prediction.
//
// The pipeline runs in a fixed order:
//
//	dataset     load the features and labels CSVs, join them on id, add the ordinal status
//	features    collapse rare levels, screen columns, build the treatment-coded design matrix
//	experiment  compare the candidate classifiers on a seeded split, cross-validate a
//	            random forest and rank its feature importances
//
// # Quick Start
//
//	cfg := config.Default()
//	cfg.FeaturesPath = "data/train_X.csv"
//	cfg.LabelsPath = "data/train_y.csv"
//	if err := experiment.Run(cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// The pumpit command does the same from the shell:
//
//	pumpit --features data/train_X.csv --labels data/train_y.csv --folds 5
//
// # Packages
//
//   - config: experiment settings, defaults and YAML loading
//   - dataset: CSV loading, the id join, status encoding and median imputation
//   - features: rare-level collapsing, column screening, design matrix, interactions
//   - experiment: model runner, cross-validator and importance reporter
//   - sklearn/...: LogisticRegression, DecisionTreeClassifier, KNeighborsClassifier,
//     GaussianNB and RandomForestClassifier with a scikit-learn-like API
//   - preprocessing: StandardScaler and Pipeline
//   - model_selection: TrainTestSplit and KFold
//   - metrics: accuracy and confusion matrix
//   - core/model: estimator interfaces and fitted-state tracking
//   - core/parallel: range splitting for row-parallel prediction
//   - pkg/errors, pkg/log: structured errors, warnings and logging
//
// Estimators take gonum matrices with one sample per row and labels as an
// n×1 column. Class labels are the integer statuses 0 (non functional),
// 1 (functional needs repair) and 2 (functional).
package pumpit
