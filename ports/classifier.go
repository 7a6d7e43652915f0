package ports

import (
	"context"
	"math/rand/v2"

	"vaeval/domain/va"
)

// Prediction carries both granularities a VA classifier produces. CSMF is the
// classifier's own population estimate and need not equal the normalized
// counts of Individual.
type Prediction struct {
	Individual va.Series // predicted cause per observation, indexed like the input
	CSMF       va.CSMF
}

// Classifier is the capability the validation driver scores
type Classifier interface {
	// Fit trains on X and y. Both nil means no training data is available and
	// the classifier must fall back to its default (pre-packaged) parameters.
	Fit(ctx context.Context, X *va.Frame, y *va.Series) error

	// Predict assigns a cause to every row of X and estimates the CSMF
	Predict(ctx context.Context, X va.Frame) (Prediction, error)
}

// ConvergenceReporter is implemented by classifiers whose fit can fail to
// converge. Classifiers that do not implement it are treated as converged.
type ConvergenceReporter interface {
	Converged() bool
}

// ClassifierFactory builds a fresh, independent classifier drawing from rng.
// Sharded runs need one instance per shard since Fit mutates the classifier,
// and each shard passes its own stream so results do not depend on scheduling.
type ClassifierFactory func(rng *rand.Rand) (Classifier, error)
