package validation

import (
	"math"
	"testing"

	"vaeval/domain/core"
	"vaeval/domain/va"
	"vaeval/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labelSeries(ids []string, causes ...va.Cause) va.Series {
	return va.Series{Index: ids, Values: causes}
}

func TestPredictionAccuracy(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}
	actual := labelSeries(ids, "1", "2", "1", "2")
	pred := ports.Prediction{
		Individual: labelSeries(ids, "1", "2", "3", "2"),
		CSMF:       va.CSMF{"1": 0.25, "2": 0.5, "3": 0.25},
	}

	res, err := PredictionAccuracy(actual, pred, true, 7)
	require.NoError(t, err)

	require.Len(t, res.Predictions, 4)
	assert.Equal(t, va.PredictionRow{ID: "c", Actual: "1", Prediction: "3", Split: 7}, res.Predictions[2])

	// CCC only for causes observed as true
	require.Len(t, res.CCC, 1)
	assert.Len(t, res.CCC[0].Values, 2)
	assert.InDelta(t, 0.0, res.CCC[0].Values["1"], 1e-12)
	assert.InDelta(t, 1.0, res.CCC[0].Values["2"], 1e-12)

	// CSMF rows cover the union, sorted, with zero for the missing actual
	require.Len(t, res.CSMF, 3)
	assert.Equal(t, va.CSMFRow{Cause: "3", Actual: 0, Prediction: 0.25, Split: 7}, res.CSMF[2])

	require.Len(t, res.Accuracy, 1)
	acc := res.Accuracy[0]
	assert.InDelta(t, 0.5, acc.MeanCCC, 1e-12)
	assert.InDelta(t, 0.5, acc.MedianCCC, 1e-12)
	// |.25-.5| + 0 + .25 = .5, min(actual) = 0
	assert.InDelta(t, 0.75, acc.CSMFAccuracy, 1e-12)
	assert.Equal(t, 1, acc.Converged)
	assert.Equal(t, 7, acc.Split)
}

func TestPredictionAccuracy_UndefinedCCC(t *testing.T) {
	ids := []string{"a", "b"}
	actual := labelSeries(ids, "1", "1")
	pred := ports.Prediction{Individual: labelSeries(ids, "1", "1"), CSMF: va.CSMF{"1": 1}}

	res, err := PredictionAccuracy(actual, pred, false, 0)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(res.CCC[0].Values["1"]))
	assert.True(t, math.IsNaN(res.Accuracy[0].MeanCCC))
	assert.Equal(t, 0, res.Accuracy[0].Converged)
}

func TestPredictionAccuracy_ReordersByID(t *testing.T) {
	actual := labelSeries([]string{"a", "b", "c"}, "1", "2", "2")
	pred := ports.Prediction{
		Individual: labelSeries([]string{"c", "a", "b"}, "2", "1", "1"),
		CSMF:       va.CSMF{"1": 2.0 / 3.0, "2": 1.0 / 3.0},
	}
	res, err := PredictionAccuracy(actual, pred, true, 0)
	require.NoError(t, err)
	assert.Equal(t, va.Cause("1"), res.Predictions[0].Prediction)
	assert.Equal(t, va.Cause("1"), res.Predictions[1].Prediction)
	assert.Equal(t, va.Cause("2"), res.Predictions[2].Prediction)
}

func TestPredictionAccuracy_Errors(t *testing.T) {
	actual := labelSeries([]string{"a", "b"}, "1", "2")

	_, err := PredictionAccuracy(actual, ports.Prediction{
		Individual: labelSeries([]string{"a"}, "1"),
		CSMF:       va.CSMF{"1": 1},
	}, true, 0)
	assert.ErrorIs(t, err, core.ErrLengthMismatch)

	_, err = PredictionAccuracy(actual, ports.Prediction{
		Individual: labelSeries([]string{"a", "z"}, "1", "2"),
		CSMF:       va.CSMF{"1": .5, "2": .5},
	}, true, 0)
	assert.ErrorIs(t, err, core.ErrIndexMismatch)

	_, err = PredictionAccuracy(actual, ports.Prediction{
		Individual: labelSeries([]string{"a", "b"}, "1", "2"),
		CSMF:       va.CSMF{"1": .5, "2": .6},
	}, true, 0)
	assert.ErrorIs(t, err, core.ErrCSMFSum)
}
