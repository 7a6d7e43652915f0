package validation

import (
	"testing"

	"vaeval/domain/core"
	"vaeval/domain/va"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoTrainingSplits(t *testing.T) {
	splits := collect(NoTrainingSplits(5, 3))
	require.Len(t, splits, 3)
	for i, s := range splits {
		assert.Nil(t, s.Train)
		assert.False(t, s.HasTrain())
		assert.Equal(t, []int{0, 1, 2, 3, 4}, s.Test)
		assert.Equal(t, i, s.ID)
	}
}

func TestInSampleSplits(t *testing.T) {
	splits := collect(InSampleSplits(4, 2))
	require.Len(t, splits, 2)
	for i, s := range splits {
		assert.Equal(t, []int{0, 1, 2, 3}, s.Train)
		assert.Equal(t, s.Train, s.Test)
		assert.Equal(t, i, s.ID)
	}
}

func TestSplits_EarlyStop(t *testing.T) {
	seen := 0
	for range NoTrainingSplits(3, 10) {
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)
}

func TestOutOfSampleSplits(t *testing.T) {
	_, y := twoCauseData(t)
	seed := uint64(17)
	seq, err := OutOfSampleSplits(y.Values, 4, 0.3, &seed)
	require.NoError(t, err)

	splits := collect(seq)
	require.Len(t, splits, 4)
	for i, s := range splits {
		assert.Equal(t, i, s.ID)
		assert.Len(t, s.Train, 70)
		assert.Len(t, s.Test, 30)

		inTrain := make(map[int]bool)
		for _, p := range s.Train {
			inTrain[p] = true
		}
		for _, p := range s.Test {
			assert.False(t, inTrain[p], "position %d in both partitions", p)
		}

		testLabels := y.Take(s.Test).Counts()
		assert.Equal(t, 21, testLabels["cause1"])
		assert.Equal(t, 9, testLabels["cause2"])
	}
}

func TestOutOfSampleSplits_SeedDeterminism(t *testing.T) {
	_, y := threeCauseData(t)
	seed := uint64(99)

	first, err := OutOfSampleSplits(y.Values, 3, 0.25, &seed)
	require.NoError(t, err)
	second, err := OutOfSampleSplits(y.Values, 3, 0.25, &seed)
	require.NoError(t, err)

	a := collect(first)
	assert.Equal(t, a, collect(second), "independent generators with the same seed")
	assert.Equal(t, a, collect(first), "re-iterating the same generator")
	assert.NotEqual(t, a[0].Test, a[1].Test, "splits within a run differ")
}

func TestOutOfSampleSplits_Unseeded(t *testing.T) {
	_, y := threeCauseData(t)
	seq, err := OutOfSampleSplits(y.Values, 2, 0.2, nil)
	require.NoError(t, err)
	splits := collect(seq)
	require.Len(t, splits, 2)
	assert.Len(t, splits[0].Test, 20)
}

func TestOutOfSampleSplits_Errors(t *testing.T) {
	_, y := threeCauseData(t)
	tests := []struct {
		name     string
		labels   []va.Cause
		nSplits  int
		testSize float64
	}{
		{"zero splits", y.Values, 0, 0.25},
		{"test size zero", y.Values, 2, 0},
		{"test size one", y.Values, 2, 1},
		{"singleton cause", []va.Cause{"a", "a", "a", "b"}, 2, 0.5},
		{"test smaller than cause count", y.Values, 2, 0.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OutOfSampleSplits(tt.labels, tt.nSplits, tt.testSize, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrInvalidSplit)
		})
	}

	_, err := OutOfSampleSplits(nil, 2, 0.25, nil)
	assert.ErrorIs(t, err, core.ErrEmptyDataset)
}

func TestApproximateMode(t *testing.T) {
	got := approximateMode([]int{70, 30}, 70, seeded(1))
	assert.Equal(t, []int{49, 21}, got)

	got = approximateMode([]int{5, 5, 5}, 4, seeded(1))
	total := 0
	for _, c := range got {
		assert.GreaterOrEqual(t, c, 1)
		assert.LessOrEqual(t, c, 2)
		total += c
	}
	assert.Equal(t, 4, total)
}
