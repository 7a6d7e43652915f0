package classifier

import (
	"fmt"
	"math/rand/v2"

	"vaeval/domain/core"
	"vaeval/domain/va"
	"vaeval/ports"
)

// Supported classifier names
const (
	NameRandom   = "random"
	NameMajority = "majority"
)

// Names lists the classifiers NewClassifier can build
func Names() []string {
	return []string{NameRandom, NameMajority}
}

// NewClassifier builds a classifier by name.
//
// random accepts random_state (seed) and causes (comma separated default
// vocabulary). majority accepts default_cause. When random_state is absent
// rng seeds the classifier; a nil rng gives a non-reproducible classifier.
func NewClassifier(name string, params Params, rng *rand.Rand) (ports.Classifier, error) {
	switch name {
	case NameRandom:
		seed, ok, err := params.Uint64("random_state")
		if err != nil {
			return nil, err
		}
		if ok {
			rng = rand.New(rand.NewPCG(seed, seed))
		}
		var defaults []va.Cause
		for _, c := range params.List("causes") {
			defaults = append(defaults, va.Cause(c))
		}
		return NewRandomClassifier(rng, defaults), nil
	case NameMajority:
		cause, _ := params.String("default_cause")
		return NewMajorityClassifier(va.Cause(cause)), nil
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownClassifier, name)
	}
}

// NewFactory returns a ports.ClassifierFactory for name. The name and
// parameters are checked once up front.
func NewFactory(name string, params Params) (ports.ClassifierFactory, error) {
	if _, err := NewClassifier(name, params, nil); err != nil {
		return nil, err
	}
	return func(rng *rand.Rand) (ports.Classifier, error) {
		return NewClassifier(name, params, rng)
	}, nil
}
