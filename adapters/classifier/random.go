package classifier

import (
	"context"
	"math/rand/v2"

	"vaeval/domain/core"
	"vaeval/domain/va"
	"vaeval/ports"
)

// RandomClassifier predicts a cause uniformly at random for every
// observation. It is the baseline a useful classifier must beat.
type RandomClassifier struct {
	rng      *rand.Rand
	defaults []va.Cause
	classes  []va.Cause
}

var _ ports.Classifier = (*RandomClassifier)(nil)

// NewRandomClassifier creates a random classifier. defaults is the cause
// vocabulary used when the classifier is fit without training data; when it
// is empty the observation ids of the predicted frame serve as classes.
func NewRandomClassifier(rng *rand.Rand, defaults []va.Cause) *RandomClassifier {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &RandomClassifier{rng: rng, defaults: defaults}
}

// Fit records the causes present in y. A nil y resets to the default vocabulary.
func (c *RandomClassifier) Fit(ctx context.Context, X *va.Frame, y *va.Series) error {
	if y == nil {
		c.classes = append([]va.Cause(nil), c.defaults...)
		return nil
	}
	if y.Len() == 0 {
		return core.ErrEmptyDataset
	}
	c.classes = va.SortCauses(y.Unique())
	return nil
}

// Predict draws one cause per row; the CSMF is the normalized draw counts
func (c *RandomClassifier) Predict(ctx context.Context, X va.Frame) (ports.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return ports.Prediction{}, err
	}
	classes := c.classes
	if len(classes) == 0 {
		classes = make([]va.Cause, len(X.Index))
		for i, id := range X.Index {
			classes[i] = va.Cause(id)
		}
	}
	if len(classes) == 0 {
		return ports.Prediction{}, core.ErrEmptyDataset
	}

	values := make([]va.Cause, X.Len())
	for i := range values {
		values[i] = classes[c.rng.IntN(len(classes))]
	}
	individual := va.Series{Index: append([]string(nil), X.Index...), Values: values}
	return ports.Prediction{Individual: individual, CSMF: individual.Normalized()}, nil
}
