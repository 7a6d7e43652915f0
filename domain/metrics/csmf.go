package metrics

import (
	"math"

	"vaeval/domain/core"
	"vaeval/domain/va"
)

// CSMFSumTolerance is the absolute tolerance on a CSMF's total mass
const CSMFSumTolerance = 1e-6

// ChanceCSMFAccuracy is the expected CSMF accuracy of a random allocation as
// sample size and cause count grow: 1 - 1/e. It is applied as a fixed
// constant regardless of the actual sample size or number of causes.
var ChanceCSMFAccuracy = 1 - math.Exp(-1)

func sumsToOne(total float64) bool {
	return math.Abs(total-1) <= CSMFSumTolerance
}

// CSMFAccuracyFromCSMF scores a predicted CSMF against the true one:
//
//	1 - sum(|predicted - actual|) / (2 * (1 - min(actual)))
//
// Both inputs must sum to one; anything else is an input-contract violation
// and returns core.ErrCSMFSum. Causes present in only one input count as zero
// in the other, so the minimum of actual is zero whenever predicted names a
// cause actual lacks. The result is NaN when actual puts all its mass on a
// single cause that is the only cause in either input.
func CSMFAccuracyFromCSMF(actual, predicted va.CSMF) (float64, error) {
	actualSum, predictedSum := actual.Sum(), predicted.Sum()
	if !sumsToOne(actualSum) || !sumsToOne(predictedSum) {
		return 0, core.NewCSMFSumError(actualSum, predictedSum)
	}
	return csmfAccuracy(actual, predicted), nil
}

func csmfAccuracy(actual, predicted va.CSMF) float64 {
	_, a, p := va.AlignCSMF(actual, predicted)
	minActual := math.Inf(1)
	errSum := 0.0
	for i := range a {
		errSum += math.Abs(p[i] - a[i])
		minActual = math.Min(minActual, a[i])
	}
	denominator := 2 * (1 - minActual)
	if denominator == 0 {
		return math.NaN()
	}
	return 1 - errSum/denominator
}

// CSMFAccuracy derives empirical CSMFs from individual labels and scores
// them. Both CSMFs are normalized by the number of true labels; predicted
// causes absent from actual are dropped, so the predicted CSMF may carry
// less than unit mass. Only the actual CSMF is checked against the sum
// contract.
func CSMFAccuracy(actual, predicted []va.Cause) (float64, error) {
	if len(actual) != len(predicted) {
		return 0, core.NewLengthMismatchError("actual and predicted labels", len(actual), len(predicted))
	}
	if len(actual) == 0 {
		return 0, core.ErrEmptyDataset
	}
	n := float64(len(actual))
	actualCSMF := make(va.CSMF)
	for _, c := range actual {
		actualCSMF[c] += 1 / n
	}
	predictedCSMF := make(va.CSMF, len(actualCSMF))
	for c := range actualCSMF {
		predictedCSMF[c] = 0
	}
	for _, c := range predicted {
		if _, ok := actualCSMF[c]; ok {
			predictedCSMF[c] += 1 / n
		}
	}
	if total := actualCSMF.Sum(); !sumsToOne(total) {
		return 0, core.NewCSMFSumError(total, predictedCSMF.Sum())
	}
	return csmfAccuracy(actualCSMF, predictedCSMF), nil
}

// CorrectCSMFAccuracy rescales a raw CSMF accuracy so that 1 is perfect, 0 is
// chance and negative values are worse than chance
func CorrectCSMFAccuracy(raw float64) float64 {
	return (raw - ChanceCSMFAccuracy) / (1 - ChanceCSMFAccuracy)
}

// CCCSMFAccuracy is the chance-corrected CSMF accuracy of individual labels
func CCCSMFAccuracy(actual, predicted []va.Cause) (float64, error) {
	raw, err := CSMFAccuracy(actual, predicted)
	if err != nil {
		return 0, err
	}
	return CorrectCSMFAccuracy(raw), nil
}

// CCCSMFAccuracyFromCSMF is the chance-corrected accuracy of a predicted CSMF
func CCCSMFAccuracyFromCSMF(actual, predicted va.CSMF) (float64, error) {
	raw, err := CSMFAccuracyFromCSMF(actual, predicted)
	if err != nil {
		return 0, err
	}
	return CorrectCSMFAccuracy(raw), nil
}
