package app

import (
	"context"
	stderrors "errors"
	"os"
	"testing"

	"vaeval/adapters/excel"
	"vaeval/domain/va"
	"vaeval/internal"
	"vaeval/internal/errors"
	"vaeval/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(v uint64) *uint64 { return &v }

type fixture struct {
	kit    *testkit.TestKit
	reader *testkit.StaticReader
	store  *excel.CSVStore
	dir    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kit := testkit.NewTestKit(42)
	X, y, err := kit.Dataset(testkit.TwoCauseConfig())
	require.NoError(t, err)
	dir := t.TempDir()
	return &fixture{
		kit:    kit,
		reader: &testkit.StaticReader{X: X, Y: y},
		store:  excel.NewCSVStore(dir),
		dir:    dir,
	}
}

func (f *fixture) service() *ValidationService {
	return NewValidationService(f.reader, f.store, f.kit.RNGAdapter(), internal.NewLogger(internal.LogLevelError)).WithSummary(200, 1)
}

func majorityRequest() ValidationRequest {
	return ValidationRequest{
		Tags: va.RunTags{
			Analysis: va.AnalysisValidate, Classifier: "majority", Module: "adult", HCE: true,
			CauseList: "all", Symptoms: "all", NSplits: 4,
		},
		DataPath:     "adult.csv",
		Classifier:   "majority",
		TestSize:     0.3,
		SplitSeed:    seed(7),
		ResampleSeed: seed(11),
		ResampleTest: false,
		ResampleSize: 1,
		Shards:       2,
		MaxParallel:  2,
	}
}

func TestValidationService_Run(t *testing.T) {
	f := newFixture(t)
	run, err := f.service().Run(context.Background(), majorityRequest())
	require.NoError(t, err)

	assert.Equal(t, "validate_majority_adult_w_hce_all_all_0-4", run.Stem)
	assert.Equal(t, []string{"adult.csv"}, f.reader.Paths)
	require.Len(t, run.Result.Accuracy, 4)
	for i, row := range run.Result.Accuracy {
		assert.Equal(t, i, row.Split)
		assert.InDelta(t, 4.0/7.0, row.CSMFAccuracy, 1e-12)
	}
	assert.Equal(t, 4, run.Summary.Splits)
	assert.InDelta(t, 4.0/7.0, run.Summary.CSMFAccuracy.Median, 1e-12)

	_, err = os.Stat(f.store.Path(run.Stem, excel.TableAccuracy))
	assert.NoError(t, err)
}

func TestValidationService_SeededRunsReproduce(t *testing.T) {
	f := newFixture(t)
	req := majorityRequest()
	req.Classifier = "random"
	req.Tags.Classifier = "random"
	req.ResampleTest = true

	first, err := f.service().Evaluate(context.Background(), req, f.reader.X, f.reader.Y)
	require.NoError(t, err)
	second, err := f.service().Evaluate(context.Background(), req, f.reader.X, f.reader.Y)
	require.NoError(t, err)

	assert.Equal(t, first.RunID, second.RunID)
	assert.Equal(t, first.Result.Predictions, second.Result.Predictions)
	assert.Equal(t, first.Result.CSMF, second.Result.CSMF)

	req.ResampleSeed = seed(12)
	third, err := f.service().Evaluate(context.Background(), req, f.reader.X, f.reader.Y)
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, third.RunID)
}

func TestValidationService_Analyses(t *testing.T) {
	f := newFixture(t)
	for _, analysis := range []string{va.AnalysisNoTrain, va.AnalysisInSample} {
		t.Run(analysis, func(t *testing.T) {
			req := majorityRequest()
			req.Tags.Analysis = analysis
			req.Params = map[string]any{"default_cause": "cause1"}
			run, err := f.service().Evaluate(context.Background(), req, f.reader.X, f.reader.Y)
			require.NoError(t, err)
			require.Len(t, run.Result.Accuracy, 4)
			// every split tests on the full dataset
			assert.Len(t, run.Result.Predictions, 4*f.reader.Y.Len())
		})
	}
}

func TestValidationService_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := majorityRequest()
	req.Tags.Analysis = "holdout"
	_, err := f.service().Run(ctx, req)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	req = majorityRequest()
	req.Classifier = "tariff"
	_, err = f.service().Run(ctx, req)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	req = majorityRequest()
	req.Tags.NSplits = 0
	_, err = f.service().Run(ctx, req)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	req = majorityRequest()
	req.TestSize = 1.5
	_, err = f.service().Run(ctx, req)
	assert.Equal(t, 2, errors.ExitCode(err))

	f.reader.Err = stderrors.New("disk on fire")
	_, err = f.service().Run(ctx, majorityRequest())
	assert.ErrorContains(t, err, "disk on fire")
}
