package main

import (
	"fmt"
	"strings"

	"vaeval/adapters/classifier"
	"vaeval/adapters/excel"
	"vaeval/app"
	"vaeval/domain/va"
	"vaeval/internal/errors"

	"github.com/spf13/cobra"
)

// tagFlags hold the run tags shared by validate and combine
type tagFlags struct {
	analysis  string
	clf       string
	module    string
	noHCE     bool
	causeList string
	symptoms  string
	nSplits   int
}

func (f *tagFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.analysis, "analysis", va.AnalysisValidate, "analysis regime: no-train, in-sample or validate")
	cmd.Flags().StringVar(&f.clf, "clf", classifier.NameRandom, "classifier: "+strings.Join(classifier.Names(), ", "))
	cmd.Flags().StringVar(&f.module, "module", "adult", "age module: adult, child or neonate")
	cmd.Flags().BoolVar(&f.noHCE, "no-hce", false, "exclude health care experience symptoms")
	cmd.Flags().StringVar(&f.causeList, "cause-list", "all", "cause list tag")
	cmd.Flags().StringVar(&f.symptoms, "symptoms", "all", "symptom set tag")
	cmd.Flags().IntVar(&f.nSplits, "n-splits", 0, "number of splits (default $N_SPLITS)")
}

func (f tagFlags) tags(defaultSplits int) va.RunTags {
	n := f.nSplits
	if n == 0 {
		n = defaultSplits
	}
	return va.RunTags{
		Analysis:   f.analysis,
		Classifier: f.clf,
		Module:     f.module,
		HCE:        !f.noHCE,
		CauseList:  f.causeList,
		Symptoms:   f.symptoms,
		NSplits:    n,
	}
}

func newValidateCmd() *cobra.Command {
	var tf tagFlags
	var sf storeFlags
	var dataPath, causeColumn, idColumn string
	var dropColumns, rawParams []string
	var subset []int
	var noTestResamp bool
	var resampleSize, testSize float64
	var splitSeed, resampleSeed uint64
	var shards int
	var parallel int64

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Measure a classifier over repeated splits of a VA dataset",
		Long: `Measure a classifier over repeated splits of a VA dataset and write the
predictions, csmf, ccc and accuracy tables.

Example: vaeval validate --data adult.csv --clf majority --n-splits 10 --split-seed 7 -p default_cause=Stroke`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(sf, va.RunTags{Analysis: tf.analysis}.OutputSubdir())
			if err != nil {
				return err
			}
			tags := tf.tags(cfg.Validation.NSplits)

			params, err := parseParams(rawParams)
			if err != nil {
				return err
			}
			if len(subset) > 0 {
				s, err := parseSubset(subset)
				if err != nil {
					return err
				}
				tags.Subset = &s
			}

			req := app.ValidationRequest{
				Tags:         tags,
				DataPath:     dataPath,
				Classifier:   tf.clf,
				Params:       params,
				TestSize:     cfg.Validation.TestSize,
				SplitSeed:    cfg.Validation.SplitSeed,
				ResampleSeed: cfg.Validation.ResampleSeed,
				ResampleTest: cfg.Validation.ResampleTest && !noTestResamp,
				ResampleSize: cfg.Validation.ResampleSize,
				Shards:       shards,
				MaxParallel:  cfg.Validation.MaxParallel,
			}
			flags := cmd.Flags()
			if flags.Changed("test-size") {
				req.TestSize = testSize
			}
			if flags.Changed("resample-size") {
				req.ResampleSize = resampleSize
			}
			if flags.Changed("split-seed") {
				req.SplitSeed = &splitSeed
			}
			if flags.Changed("resample-seed") {
				req.ResampleSeed = &resampleSeed
			}
			if flags.Changed("parallel") {
				req.MaxParallel = parallel
			}
			if !(req.TestSize > 0 && req.TestSize < 1) {
				return errors.InvalidInput("--test-size must be strictly between 0 and 1")
			}

			c, err := openContainer(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			readerCfg := excel.DefaultReaderConfig()
			readerCfg.CauseColumn = causeColumn
			readerCfg.IDColumn = idColumn
			readerCfg.DropColumns = dropColumns
			reader := excel.NewDatasetReader(readerCfg)

			run, err := c.ValidationService(reader).Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s\nstem %s\n\n", run.RunID, run.Stem)
			return printAccuracy(cmd.OutOrStdout(), run.Summary)
		},
	}

	tf.register(cmd)
	sf.register(cmd)
	cmd.Flags().StringVar(&dataPath, "data", "", "dataset file (.csv or .xlsx)")
	cmd.Flags().StringVar(&causeColumn, "cause-column", "cause", "column holding the reference cause")
	cmd.Flags().StringVar(&idColumn, "id-column", "", "column holding the death id (default: detect)")
	cmd.Flags().StringSliceVar(&dropColumns, "drop", nil, "columns to ignore")
	cmd.Flags().StringArrayVarP(&rawParams, "param", "p", nil, "classifier parameter as key=value, repeatable")
	cmd.Flags().IntSliceVar(&subset, "subset", nil, "run only splits start,stop")
	cmd.Flags().BoolVar(&noTestResamp, "no-test-resamp", false, "score the test set without resampling its CSMF")
	cmd.Flags().Float64Var(&resampleSize, "resample-size", 1, "resampled test set size as a multiple of the test set")
	cmd.Flags().Float64Var(&testSize, "test-size", 0.25, "fraction of deaths held out for testing")
	cmd.Flags().Uint64Var(&splitSeed, "split-seed", 0, "seed for the train/test splits (default $SPLIT_SEED or random)")
	cmd.Flags().Uint64Var(&resampleSeed, "resample-seed", 0, "seed for test resampling (default $RESAMPLE_SEED or random)")
	cmd.Flags().IntVar(&shards, "shards", 1, "number of split ranges to run as separate shards")
	cmd.Flags().Int64Var(&parallel, "parallel", 1, "shards to run at once (default $MAX_PARALLEL_SHARDS)")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

// parseParams turns repeated key=value flags into classifier parameters
func parseParams(raw []string) (classifier.Params, error) {
	kv := make(map[string]string, len(raw))
	for _, p := range raw {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, errors.InvalidInput(fmt.Sprintf("parameter %q must be key=value", p))
		}
		kv[strings.TrimSpace(k)] = v
	}
	return classifier.ParseParams(kv), nil
}

func parseSubset(bounds []int) (va.Subset, error) {
	if len(bounds) != 2 {
		return va.Subset{}, errors.InvalidInput("--subset takes exactly two values: start,stop")
	}
	s := va.Subset{Start: bounds[0], Stop: bounds[1]}
	if err := s.Validate(); err != nil {
		return va.Subset{}, errors.WithCode(errors.CodeInvalidInput, err)
	}
	return s, nil
}
