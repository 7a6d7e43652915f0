package metrics

import (
	"math"
	"math/rand/v2"
	"testing"

	"vaeval/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func TestMedianAndUncertaintyInterval(t *testing.T) {
	values := []float64{0.1, 0.4, 0.35, 0.8, 0.55, 0.62, 0.2, 0.71, 0.5, 0.45}

	median, ui, err := MedianAndUncertaintyInterval(values, 500, seeded(8675309))
	require.NoError(t, err)
	assert.InDelta(t, 0.475, median, 1e-12)
	assert.LessOrEqual(t, ui.Lower, ui.Upper)
	assert.True(t, ui.Contains(median))
	assert.GreaterOrEqual(t, ui.Lower, 0.1)
	assert.LessOrEqual(t, ui.Upper, 0.8)
}

func TestMedianAndUncertaintyInterval_Deterministic(t *testing.T) {
	values := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5}

	m1, ui1, err := MedianAndUncertaintyInterval(values, 200, seeded(42))
	require.NoError(t, err)
	m2, ui2, err := MedianAndUncertaintyInterval(values, 200, seeded(42))
	require.NoError(t, err)

	assert.Equal(t, m1, m2)
	assert.Equal(t, ui1, ui2)
}

func TestMedianAndUncertaintyInterval_SmallInputs(t *testing.T) {
	median, ui, err := MedianAndUncertaintyInterval([]float64{0.7}, 0, seeded(1))
	require.NoError(t, err)
	assert.Equal(t, 0.7, median)
	assert.Equal(t, Interval{Lower: 0.7, Upper: 0.7}, ui)

	median, ui, err = MedianAndUncertaintyInterval([]float64{0.2, math.NaN(), 0.4}, 50, seeded(1))
	require.NoError(t, err)
	assert.InDelta(t, 0.3, median, 1e-12)
	assert.True(t, ui.Contains(median))
}

func TestMedianAndUncertaintyInterval_Empty(t *testing.T) {
	_, _, err := MedianAndUncertaintyInterval([]float64{math.NaN()}, 10, seeded(1))
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}
