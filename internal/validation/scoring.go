package validation

import (
	"fmt"
	"math"

	"vaeval/domain/core"
	"vaeval/domain/metrics"
	"vaeval/domain/va"
	"vaeval/ports"
)

// PredictionAccuracy scores one split's predictions against the true test
// labels and returns the four result tables tagged with splitID.
//
// CCC is computed only for causes present in actual; a classifier may
// predict causes that never occur, notably when running on defaults. The
// CSMF table covers the union of actual and predicted causes with absent
// fractions set to zero. A predicted CSMF that does not sum to one is fatal.
func PredictionAccuracy(actual va.Series, pred ports.Prediction, converged bool, splitID int) (*va.Result, error) {
	predicted, err := alignPredictions(actual, pred.Individual)
	if err != nil {
		return nil, err
	}

	result := &va.Result{
		Predictions: make([]va.PredictionRow, actual.Len()),
	}
	for i := range actual.Values {
		result.Predictions[i] = va.PredictionRow{
			ID:         actual.Index[i],
			Actual:     actual.Values[i],
			Prediction: predicted[i],
			Split:      splitID,
		}
	}

	cccRow := va.CCCRow{Split: splitID, Values: make(map[va.Cause]float64)}
	var defined []float64
	for _, cause := range actual.Unique() {
		v, ok := metrics.ChanceCorrectedConcordance(cause, actual.Values, predicted)
		if !ok {
			cccRow.Values[cause] = math.NaN()
			continue
		}
		cccRow.Values[cause] = v
		defined = append(defined, v)
	}
	result.CCC = []va.CCCRow{cccRow}

	actualCSMF := actual.Normalized()
	causes, a, p := va.AlignCSMF(actualCSMF, pred.CSMF)
	for i, cause := range causes {
		result.CSMF = append(result.CSMF, va.CSMFRow{
			Cause:      cause,
			Actual:     a[i],
			Prediction: p[i],
			Split:      splitID,
		})
	}

	csmfAcc, err := metrics.CSMFAccuracyFromCSMF(actualCSMF, pred.CSMF)
	if err != nil {
		return nil, err
	}

	row := va.AccuracyRow{
		MeanCCC:        undefinedAsNaN(metrics.Mean(defined, nil)),
		MedianCCC:      undefinedAsNaN(metrics.Median(defined, nil)),
		CSMFAccuracy:   csmfAcc,
		CCCSMFAccuracy: metrics.CorrectCSMFAccuracy(csmfAcc),
		Converged:      1,
		Split:          splitID,
	}
	if !converged {
		row.Converged = 0
	}
	result.Accuracy = []va.AccuracyRow{row}
	return result, nil
}

func undefinedAsNaN(v float64, ok bool) float64 {
	if !ok {
		return math.NaN()
	}
	return v
}

// alignPredictions returns the predicted causes in the order of actual. The
// classifier's index either matches actual position by position (duplicate
// ids from resampling included) or, when ids are unique, is reordered by id.
func alignPredictions(actual, individual va.Series) ([]va.Cause, error) {
	if individual.Len() != actual.Len() {
		return nil, core.NewLengthMismatchError("test labels and predictions", actual.Len(), individual.Len())
	}
	if len(individual.Index) != len(individual.Values) {
		return nil, core.NewLengthMismatchError("prediction index and values", len(individual.Index), len(individual.Values))
	}
	positional := true
	for i := range actual.Index {
		if actual.Index[i] != individual.Index[i] {
			positional = false
			break
		}
	}
	if positional {
		return individual.Values, nil
	}

	byID := make(map[string]va.Cause, individual.Len())
	for i, id := range individual.Index {
		if _, dup := byID[id]; dup {
			return nil, fmt.Errorf("%w: duplicate prediction id %q", core.ErrIndexMismatch, id)
		}
		byID[id] = individual.Values[i]
	}
	out := make([]va.Cause, actual.Len())
	missing := 0
	for i, id := range actual.Index {
		c, ok := byID[id]
		if !ok {
			missing++
			continue
		}
		out[i] = c
	}
	if missing > 0 {
		return nil, fmt.Errorf("%w: %d test ids have no prediction", core.ErrIndexMismatch, missing)
	}
	return out, nil
}

// convergedOf reports the classifier's convergence, defaulting to true
func convergedOf(clf ports.Classifier) bool {
	if r, ok := clf.(ports.ConvergenceReporter); ok {
		return r.Converged()
	}
	return true
}
