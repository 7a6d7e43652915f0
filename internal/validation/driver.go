package validation

import (
	"context"
	"fmt"
	"iter"
	"math"
	"math/rand/v2"
	"time"

	"vaeval/domain/core"
	"vaeval/domain/va"
	"vaeval/internal"
	"vaeval/ports"
)

// Options controls a validation run
type Options struct {
	// Subset restricts the run to enumeration indices [Start, Stop]. Nil runs
	// every split.
	Subset *va.Subset

	// ResampleTest redraws each test set with DirichletResample
	ResampleTest bool

	// ResampleSize scales the test set size when resampling
	ResampleSize float64

	// RNG drives resampling. Nil uses a randomly seeded generator.
	RNG *rand.Rand

	Logger *internal.Logger
}

// DefaultOptions resamples every test set at its original size
func DefaultOptions() Options {
	return Options{
		ResampleTest: true,
		ResampleSize: 1,
	}
}

func (o Options) validate() error {
	if o.Subset != nil {
		if err := o.Subset.Validate(); err != nil {
			return err
		}
	}
	if o.ResampleTest && (o.ResampleSize <= 0 || math.IsNaN(o.ResampleSize) || math.IsInf(o.ResampleSize, 0)) {
		return fmt.Errorf("%w: resample size must be positive, got %g", core.ErrInvalidArgument, o.ResampleSize)
	}
	return nil
}

// Validate measures a classifier over a sequence of splits and returns the
// concatenated prediction, CSMF, CCC and accuracy tables.
//
// For every split within the subset the test set is optionally resampled,
// the classifier is fit on the training partition (nil when the split has
// none) and asked to predict the test set, and the predictions are scored.
// Splits before Subset.Start are skipped and iteration stops after
// Subset.Stop without materializing later splits. Any error aborts the run
// and is returned wrapped with its split id; nothing is retried.
func Validate(ctx context.Context, X va.Frame, y va.Series, clf ports.Classifier, splits iter.Seq[va.Split], opts Options) (*va.Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := va.CheckAligned(X, y); err != nil {
		return nil, err
	}
	y = va.AlignTo(X, y)

	logger := opts.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	rng := opts.RNG
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	start := time.Now()
	result := &va.Result{}
	i := -1
	for split := range splits {
		i++
		if opts.Subset != nil {
			if i < opts.Subset.Start {
				continue
			}
			if i > opts.Subset.Stop {
				break
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		splitResult, err := runSplit(ctx, X, y, clf, split, opts, rng)
		if err != nil {
			return nil, fmt.Errorf("split %d: %w", split.ID, err)
		}
		acc := splitResult.Accuracy[0]
		logger.Debug("[Validate] split %d: mean_ccc=%.4f csmf_accuracy=%.4f converged=%d",
			split.ID, acc.MeanCCC, acc.CSMFAccuracy, acc.Converged)
		result.Append(splitResult)
	}

	logger.Info("[Validate] scored %d splits in %v", result.NumSplits(), time.Since(start))
	return result, nil
}

func runSplit(ctx context.Context, X va.Frame, y va.Series, clf ports.Classifier, split va.Split, opts Options, rng *rand.Rand) (*va.Result, error) {
	var Xtrain *va.Frame
	var ytrain *va.Series
	if split.HasTrain() {
		xt, yt := X.Take(split.Train), y.Take(split.Train)
		Xtrain, ytrain = &xt, &yt
	}

	Xtest, ytest := X.Take(split.Test), y.Take(split.Test)
	if opts.ResampleTest {
		n := int(math.Round(opts.ResampleSize * float64(Xtest.Len())))
		var err error
		Xtest, ytest, err = DirichletResample(Xtest, ytest, n, rng)
		if err != nil {
			return nil, fmt.Errorf("resample test set: %w", err)
		}
	}

	if err := clf.Fit(ctx, Xtrain, ytrain); err != nil {
		return nil, fmt.Errorf("fit classifier: %w", err)
	}
	pred, err := clf.Predict(ctx, Xtest)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	return PredictionAccuracy(ytest, pred, convergedOf(clf), split.ID)
}
