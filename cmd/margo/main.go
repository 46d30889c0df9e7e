// margo computes average marginal effects of a fitted GLM over a CSV
// dataset. The model (family, terms, coefficient estimates, covariance,
// variable schema and an optional "at" specification) is described in a
// YAML file; the output is the AME summary table.
//
// Usage:
//
//	margo --data observations.csv --model model.yaml
//	margo --data observations.csv --model model.yaml --no-variance
//	margo --data observations.csv --model model.yaml --dist t --level 0.99
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/margo/margins"
	"github.com/YuminosukeSato/margo/pkg/log"
)

var rootFlags struct {
	dataPath   string
	modelPath  string
	noVariance bool
	level      float64
	dist       string
	logLevel   string
}

var rootCmd = &cobra.Command{
	Use:   "margo",
	Short: "Average marginal effects with delta-method standard errors",
	Long: `margo computes average marginal effects (AMEs) of a fitted model by
numeric differentiation, and propagates the model's coefficient
uncertainty into standard errors, p-values and confidence intervals
via the delta method.

The model file carries the fitted estimates; margo never fits anything.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&rootFlags.dataPath, "data", "", "CSV dataset with a header row (required)")
	f.StringVar(&rootFlags.modelPath, "model", "", "YAML model specification (required)")
	f.BoolVar(&rootFlags.noVariance, "no-variance", false, "Skip variance estimation; report point estimates only")
	f.Float64Var(&rootFlags.level, "level", 0.95, "Confidence level for interval bounds")
	f.StringVar(&rootFlags.dist, "dist", "z", "Reference distribution: z (normal) or t (requires residual_df in the model file)")
	f.StringVar(&rootFlags.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	_ = rootCmd.MarkFlagRequired("data")
	_ = rootCmd.MarkFlagRequired("model")
}

func run(cmd *cobra.Command, args []string) error {
	if err := log.Setup(os.Stderr, rootFlags.logLevel); err != nil {
		return err
	}

	spec, err := loadModelSpec(rootFlags.modelPath)
	if err != nil {
		return err
	}
	model, err := spec.build()
	if err != nil {
		return err
	}
	ds, err := loadCSV(rootFlags.dataPath)
	if err != nil {
		return err
	}

	opts := []margins.Option{
		margins.WithConfidenceLevel(rootFlags.level),
	}
	if rootFlags.noVariance {
		opts = append(opts, margins.WithVarianceMode(margins.VarianceNone))
	}
	switch rootFlags.dist {
	case "z":
	case "t":
		opts = append(opts, margins.WithDistribution(margins.StudentT))
	default:
		return fmt.Errorf("unknown reference distribution %q (want z or t)", rootFlags.dist)
	}
	if len(spec.At) > 0 {
		opts = append(opts, margins.WithAt(spec.At))
	}

	res, err := margins.Compute(model, ds, opts...)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), res.Summary())
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "margo:", err)
		os.Exit(1)
	}
}
