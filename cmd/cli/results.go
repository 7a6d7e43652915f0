package main

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"vaeval/domain/va"
	"vaeval/internal/validation"

	"github.com/spf13/cobra"
)

func newCombineCmd() *cobra.Command {
	var tf tagFlags
	var sf storeFlags

	cmd := &cobra.Command{
		Use:   "combine",
		Short: "Concatenate the shard outputs of a partitioned run",
		Long: `Concatenate every stored split range of a run, in split order, and store
the result under the full-run stem.

Example: vaeval combine --clf random --n-splits 500 --outdir results/validate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(sf, va.RunTags{Analysis: tf.analysis}.OutputSubdir())
			if err != nil {
				return err
			}
			c, err := openContainer(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			stem, result, err := c.ResultsService().Combine(cmd.Context(), tf.tags(cfg.Validation.NSplits))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "combined %d splits into %s\n", result.NumSplits(), stem)
			return nil
		},
	}

	tf.register(cmd)
	sf.register(cmd)
	return cmd
}

func newSummarizeCmd() *cobra.Command {
	var sf storeFlags
	var causes bool

	cmd := &cobra.Command{
		Use:   "summarize [stem]",
		Short: "Report medians and uncertainty intervals for a stored run",
		Long: `Report the median and 95% uncertainty interval of each accuracy measure
across the splits of a stored run.

Example: vaeval summarize validate_random_adult_w_hce_all_all_0-500 --causes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stem := args[0]
			cfg, err := loadConfig(sf, stemSubdir(stem))
			if err != nil {
				return err
			}
			c, err := openContainer(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			summary, err := c.ResultsService().Summarize(cmd.Context(), stem)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "stem %s\n\n", summary.Stem)
			if err := printAccuracy(out, summary.Accuracy); err != nil {
				return err
			}
			if !causes {
				return nil
			}
			fmt.Fprintln(out)
			return printCauses(out, summary.Causes)
		},
	}

	sf.register(cmd)
	cmd.Flags().BoolVar(&causes, "causes", false, "also print cause-specific sensitivity, specificity and CCC")
	return cmd
}

// stemSubdir maps a stem back to the per-analysis output directory
func stemSubdir(stem string) string {
	for _, analysis := range []string{va.AnalysisNoTrain, va.AnalysisInSample, va.AnalysisValidate} {
		sub := va.RunTags{Analysis: analysis}.OutputSubdir()
		if strings.HasPrefix(stem, sub+"_") {
			return sub
		}
	}
	return ""
}

func printAccuracy(w io.Writer, s validation.AccuracySummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "measure\tmedian\t95%% UI\n")
	for _, row := range []struct {
		name string
		est  validation.Estimate
	}{
		{"mean_ccc", s.MeanCCC},
		{"median_ccc", s.MedianCCC},
		{"csmf_accuracy", s.CSMFAccuracy},
		{"cccsmf_accuracy", s.CCCSMFAccuracy},
	} {
		fmt.Fprintf(tw, "%s\t%s\n", row.name, formatEstimate(row.est))
	}
	fmt.Fprintf(tw, "splits\t%d\t\n", s.Splits)
	fmt.Fprintf(tw, "converged\t%.3f\t\n", s.ConvergenceRate)
	return tw.Flush()
}

func printCauses(w io.Writer, causes []validation.CauseSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "cause\tactual\tpredicted\tsensitivity\t\tspecificity\t\tccc\t\n")
	for _, c := range causes {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\n", c.Cause, c.ActualCount, c.PredictedCount,
			formatEstimate(c.Sensitivity), formatEstimate(c.Specificity), formatEstimate(c.CCC))
	}
	return tw.Flush()
}

// formatEstimate renders "median\t(lower, upper)"
func formatEstimate(e validation.Estimate) string {
	if !e.Defined {
		return "nan\t"
	}
	return fmt.Sprintf("%s\t(%s, %s)", formatFloat(e.Median), formatFloat(e.UI.Lower), formatFloat(e.UI.Upper))
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return fmt.Sprintf("%.3f", v)
}
