package metrics

import (
	"vaeval/domain/va"
)

// CauseMetric computes a cause-specific rate from co-indexed labels
type CauseMetric func(cause va.Cause, actual, predicted []va.Cause) (float64, bool)

// confusion holds the one-vs-rest counts for a single cause
type confusion struct {
	tp, fp, fn, tn int
}

func countConfusion(cause va.Cause, actual, predicted []va.Cause) (confusion, bool) {
	var c confusion
	if len(actual) != len(predicted) {
		return c, false
	}
	for i := range actual {
		isActual := actual[i] == cause
		isPredicted := predicted[i] == cause
		switch {
		case isActual && isPredicted:
			c.tp++
		case isActual:
			c.fn++
		case isPredicted:
			c.fp++
		default:
			c.tn++
		}
	}
	return c, true
}

func ratio(num, den int) (float64, bool) {
	if den == 0 {
		return 0, false
	}
	return float64(num) / float64(den), true
}

// Sensitivity is TP / (TP + FN): the fraction of deaths truly due to cause
// that were predicted as cause. Undefined when cause never occurs in actual.
func Sensitivity(cause va.Cause, actual, predicted []va.Cause) (float64, bool) {
	c, ok := countConfusion(cause, actual, predicted)
	if !ok {
		return 0, false
	}
	return ratio(c.tp, c.tp+c.fn)
}

// Specificity is TN / (TN + FP). Undefined when every death is due to cause.
func Specificity(cause va.Cause, actual, predicted []va.Cause) (float64, bool) {
	c, ok := countConfusion(cause, actual, predicted)
	if !ok {
		return 0, false
	}
	return ratio(c.tn, c.tn+c.fp)
}

// PositivePredictiveValue is TP / (TP + FP), also known as precision.
// Undefined when cause is never predicted.
func PositivePredictiveValue(cause va.Cause, actual, predicted []va.Cause) (float64, bool) {
	c, ok := countConfusion(cause, actual, predicted)
	if !ok {
		return 0, false
	}
	return ratio(c.tp, c.tp+c.fp)
}

// NegativePredictiveValue is TN / (TN + FN). Undefined when cause is
// predicted for every death.
func NegativePredictiveValue(cause va.Cause, actual, predicted []va.Cause) (float64, bool) {
	c, ok := countConfusion(cause, actual, predicted)
	if !ok {
		return 0, false
	}
	return ratio(c.tn, c.tn+c.fn)
}

// SpecificAccuracy is (TP + TN) / N for a single cause. Misclassification
// among other causes does not affect it. Only undefined for empty or
// mismatched input.
func SpecificAccuracy(cause va.Cause, actual, predicted []va.Cause) (float64, bool) {
	c, ok := countConfusion(cause, actual, predicted)
	if !ok {
		return 0, false
	}
	return ratio(c.tp+c.tn, len(actual))
}

// OverallCorrectness is the fraction of exact matches
func OverallCorrectness(actual, predicted []va.Cause) (float64, bool) {
	if len(actual) != len(predicted) {
		return 0, false
	}
	correct := 0
	for i := range actual {
		if actual[i] == predicted[i] {
			correct++
		}
	}
	return ratio(correct, len(actual))
}

// ChanceCorrectedConcordance corrects sensitivity for the probability of
// predicting cause by chance:
//
//	CCC = (sensitivity - 1/k) / (1 - 1/k)
//
// where k is the number of distinct causes in actual. Chance is uniform over
// the causes present rather than weighted by prevalence, which keeps the
// metric comparable across populations with different cause mixes. Undefined
// when sensitivity is undefined or only one cause is present.
func ChanceCorrectedConcordance(cause va.Cause, actual, predicted []va.Cause) (float64, bool) {
	sensitivity, ok := Sensitivity(cause, actual, predicted)
	if !ok {
		return 0, false
	}
	k := len(va.UniqueCauses(actual))
	if k < 2 {
		return 0, false
	}
	chance := 1 / float64(k)
	return (sensitivity - chance) / (1 - chance), true
}
