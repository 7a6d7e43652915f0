package validation

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"vaeval/adapters/classifier"
	"vaeval/adapters/rng"
	"vaeval/domain/core"
	"vaeval/domain/va"
	"vaeval/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func majorityFactory(*rand.Rand) (ports.Classifier, error) {
	return classifier.NewMajorityClassifier(""), nil
}

func shardPlan(parallel int64) ShardPlan {
	return ShardPlan{
		RunID:       core.RunID("0190b5a4-0000-7000-8000-000000000001"),
		NSplits:     8,
		Shards:      3,
		MaxParallel: parallel,
		BaseSeed:    12,
		RNG:         rng.NewStreamAdapter(),
	}
}

func TestRunShards(t *testing.T) {
	X, y := twoCauseData(t)
	seed := uint64(5)
	splits, err := OutOfSampleSplits(y.Values, 8, 0.3, &seed)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Logger = quiet
	shards, err := RunShards(context.Background(), shardPlan(2), X, y, majorityFactory, splits, opts)
	require.NoError(t, err)

	require.Len(t, shards, 3)
	assert.Equal(t, va.Subset{Start: 0, Stop: 2}, shards[0].Subset)
	assert.Equal(t, va.Subset{Start: 3, Stop: 5}, shards[1].Subset)
	assert.Equal(t, va.Subset{Start: 6, Stop: 7}, shards[2].Subset)

	combined := CombineShards(shards)
	require.Equal(t, 8, combined.NumSplits())
	for i, row := range combined.Accuracy {
		assert.Equal(t, i, row.Split)
	}
}

func TestRunShards_IndependentOfScheduling(t *testing.T) {
	X, y := twoCauseData(t)
	seed := uint64(5)
	splits, err := OutOfSampleSplits(y.Values, 8, 0.3, &seed)
	require.NoError(t, err)
	opts := DefaultOptions()
	opts.Logger = quiet

	serial, err := RunShards(context.Background(), shardPlan(1), X, y, majorityFactory, splits, opts)
	require.NoError(t, err)
	parallel, err := RunShards(context.Background(), shardPlan(4), X, y, majorityFactory, splits, opts)
	require.NoError(t, err)

	assert.Equal(t, CombineShards(serial).Predictions, CombineShards(parallel).Predictions)
}

func TestRunShards_WithinSubset(t *testing.T) {
	X, y := twoCauseData(t)
	opts := DefaultOptions()
	opts.Logger = quiet
	opts.Subset = &va.Subset{Start: 4, Stop: 7}

	plan := shardPlan(2)
	plan.Shards = 2
	shards, err := RunShards(context.Background(), plan, X, y, majorityFactory, InSampleSplits(X.Len(), 8), opts)
	require.NoError(t, err)

	require.Len(t, shards, 2)
	assert.Equal(t, va.Subset{Start: 4, Stop: 5}, shards[0].Subset)
	assert.Equal(t, va.Subset{Start: 6, Stop: 7}, shards[1].Subset)
	assert.Equal(t, 4, CombineShards(shards).NumSplits())
}

func TestRunShards_Errors(t *testing.T) {
	X, y := twoCauseData(t)
	opts := DefaultOptions()
	opts.Logger = quiet

	boom := errors.New("no model files")
	failing := func(*rand.Rand) (ports.Classifier, error) { return nil, boom }
	_, err := RunShards(context.Background(), shardPlan(2), X, y, failing, InSampleSplits(X.Len(), 8), opts)
	assert.ErrorIs(t, err, boom)

	plan := shardPlan(2)
	plan.RNG = nil
	_, err = RunShards(context.Background(), plan, X, y, majorityFactory, InSampleSplits(X.Len(), 8), opts)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	plan = shardPlan(2)
	plan.NSplits = 0
	_, err = RunShards(context.Background(), plan, X, y, majorityFactory, InSampleSplits(X.Len(), 8), opts)
	assert.ErrorIs(t, err, core.ErrInvalidSplit)
}
