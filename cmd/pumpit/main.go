// Command pumpit runs the pump status classification experiment: it loads
// the training CSVs, compares the candidate classifiers, cross-validates a
// random forest and writes its feature importance chart.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/YuminosukeSato/pumpit/config"
	"github.com/YuminosukeSato/pumpit/experiment"
	"github.com/YuminosukeSato/pumpit/pkg/log"
)

type options struct {
	configPath   string
	featuresPath string
	labelsPath   string
	plotPath     string
	logLevel     string
	folds        int
	seed         uint64
	interactions bool
	impute       bool
	console      bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:          "pumpit",
		Short:        "Classify water pump status and rank the features that matter",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.config(cmd)
			if err != nil {
				return err
			}
			if err := log.SetupLogger(log.Options{Level: cfg.LogLevel, Output: os.Stderr, Console: opts.console}); err != nil {
				return err
			}
			return experiment.Run(cfg, experiment.WithOutput(cmd.OutOrStdout()))
		},
	}

	opts.bind(cmd.Flags())
	return cmd
}

func (o *options) bind(f *pflag.FlagSet) {
	f.StringVar(&o.configPath, "config", "", "YAML file with experiment settings")
	f.StringVar(&o.featuresPath, "features", "", "features CSV (default ../data/train_X.csv)")
	f.StringVar(&o.labelsPath, "labels", "", "labels CSV (default ../data/train_y.csv)")
	f.StringVar(&o.plotPath, "plot", "", "output path of the importance chart")
	f.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error")
	f.IntVar(&o.folds, "folds", experiment.DefaultFolds, "number of cross-validation folds")
	f.Uint64Var(&o.seed, "seed", 42, "random seed for splits and forests")
	f.BoolVar(&o.interactions, "interactions", false, "add pairwise interaction columns")
	f.BoolVar(&o.impute, "impute", false, "fill missing numeric features with the column median")
	f.BoolVar(&o.console, "console", false, "human-readable logs instead of JSON")
}

// config builds the settings from defaults, the optional config file and
// any flag the user set explicitly.
func (o *options) config(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("features") {
		cfg.FeaturesPath = o.featuresPath
	}
	if flags.Changed("labels") {
		cfg.LabelsPath = o.labelsPath
	}
	if flags.Changed("plot") {
		cfg.PlotPath = o.plotPath
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("folds") {
		cfg.Folds = o.folds
	}
	if flags.Changed("seed") {
		cfg.Seed = o.seed
	}
	if flags.Changed("interactions") {
		cfg.Interactions = o.interactions
	}
	if flags.Changed("impute") {
		cfg.Impute = o.impute
	}
	return cfg, cfg.Validate()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("pumpit failed", log.ErrAttr(err))
		os.Exit(1)
	}
}
