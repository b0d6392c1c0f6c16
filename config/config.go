// Package config holds the experiment settings. Defaults reproduce the
// reference pump experiment; a YAML file and command-line flags override them.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/pumpit/pkg/errors"
)

// RareConfig controls how rare categorical levels are collapsed.
type RareConfig struct {
	Columns  []string `yaml:"columns"`
	Keep     int      `yaml:"keep"`
	Sentinel string   `yaml:"sentinel"`
	Strict   bool     `yaml:"strict"`
}

// Config is the full set of experiment settings.
type Config struct {
	FeaturesPath string `yaml:"features"`
	LabelsPath   string `yaml:"labels"`

	Interactions bool       `yaml:"interactions"`
	Impute       bool       `yaml:"impute"`
	Standardize  bool       `yaml:"standardize"`
	Rare         RareConfig `yaml:"rare"`
	MaxLevels    int        `yaml:"max_levels"`

	TestSize float64 `yaml:"test_size"`
	Seed     uint64  `yaml:"seed"`
	Folds    int     `yaml:"folds"`

	// ForestSizes are the extra n_estimators values tried after the
	// default models; CVForestSize is the forest that gets cross-validated
	// and whose importances are reported.
	ForestSizes  []int `yaml:"forest_sizes"`
	CVForestSize int   `yaml:"cv_forest_size"`

	PlotPath string `yaml:"plot"`
	TopN     int    `yaml:"top_n"`
	LogLevel string `yaml:"log_level"`
}

// Default returns the settings of the reference pump experiment: 5 folds,
// seed 42, forests of 200 and 300 trees and the top 20 features plotted.
func Default() Config {
	return Config{
		FeaturesPath: "../data/train_X.csv",
		LabelsPath:   "../data/train_y.csv",
		Rare: RareConfig{
			Columns:  []string{"scheme_name"},
			Keep:     20,
			Sentinel: "other",
		},
		MaxLevels:    25,
		TestSize:     0.25,
		Seed:         42,
		Folds:        5,
		ForestSizes:  []int{200, 300},
		CVForestSize: 200,
		PlotPath:     "feature_importances.png",
		TopN:         20,
		LogLevel:     "info",
	}
}

// Load reads a YAML file on top of Default. Keys absent from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, cfg.Validate()
}

// Validate checks ranges and required paths.
func (c Config) Validate() error {
	switch {
	case c.FeaturesPath == "":
		return errors.NewValidationError("features", "path is required", c.FeaturesPath)
	case c.LabelsPath == "":
		return errors.NewValidationError("labels", "path is required", c.LabelsPath)
	case c.Folds < 2:
		return errors.NewValidationError("folds", "need at least 2 folds", c.Folds)
	case c.TestSize <= 0 || c.TestSize >= 1:
		return errors.NewValidationError("test_size", "must be in (0, 1)", c.TestSize)
	case c.MaxLevels < 1:
		return errors.NewValidationError("max_levels", "must be positive", c.MaxLevels)
	case c.Rare.Keep < 0:
		return errors.NewValidationError("rare.keep", "must be non-negative", c.Rare.Keep)
	case c.CVForestSize < 1:
		return errors.NewValidationError("cv_forest_size", "must be positive", c.CVForestSize)
	case c.TopN < 1:
		return errors.NewValidationError("top_n", "must be positive", c.TopN)
	}
	for _, n := range c.ForestSizes {
		if n < 1 {
			return errors.NewValidationError("forest_sizes", "every size must be positive", c.ForestSizes)
		}
	}
	return nil
}
