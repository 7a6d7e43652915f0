package classifier

import (
	"context"

	"vaeval/domain/core"
	"vaeval/domain/va"
	"vaeval/ports"
)

// MajorityClassifier always predicts the most frequent training cause and
// puts the whole CSMF on it
type MajorityClassifier struct {
	defaultCause va.Cause
	majority     va.Cause
	fitted       bool
}

var _ ports.Classifier = (*MajorityClassifier)(nil)

func NewMajorityClassifier(defaultCause va.Cause) *MajorityClassifier {
	return &MajorityClassifier{defaultCause: defaultCause}
}

// Fit picks the most frequent cause in y, breaking ties by the smallest
// label. Without training data it uses the configured default cause.
func (c *MajorityClassifier) Fit(ctx context.Context, X *va.Frame, y *va.Series) error {
	if y == nil {
		c.majority = c.defaultCause
		c.fitted = c.defaultCause != ""
		return nil
	}
	if y.Len() == 0 {
		return core.ErrEmptyDataset
	}
	counts := y.Counts()
	best, bestCount := va.Cause(""), -1
	for _, cause := range va.SortCauses(y.Unique()) {
		if counts[cause] > bestCount {
			best, bestCount = cause, counts[cause]
		}
	}
	c.majority = best
	c.fitted = true
	return nil
}

func (c *MajorityClassifier) Predict(ctx context.Context, X va.Frame) (ports.Prediction, error) {
	if !c.fitted {
		return ports.Prediction{}, core.ErrNotFitted
	}
	values := make([]va.Cause, X.Len())
	for i := range values {
		values[i] = c.majority
	}
	return ports.Prediction{
		Individual: va.Series{Index: append([]string(nil), X.Index...), Values: values},
		CSMF:       va.CSMF{c.majority: 1},
	}, nil
}

// Majority returns the fitted cause
func (c *MajorityClassifier) Majority() va.Cause {
	return c.majority
}
