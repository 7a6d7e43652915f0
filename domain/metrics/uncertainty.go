package metrics

import (
	"fmt"
	"math"
	"math/rand/v2"

	"vaeval/domain/core"

	"github.com/montanaflynn/stats"
)

// DefaultBootstraps is the number of bootstrap resamples used when the caller
// does not choose one
const DefaultBootstraps = 500

// Interval is a closed uncertainty interval
type Interval struct {
	Lower float64
	Upper float64
}

// Contains reports whether v lies inside the interval
func (i Interval) Contains(v float64) bool {
	return i.Lower <= v && v <= i.Upper
}

func (i Interval) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", i.Lower, i.Upper)
}

// MedianAndUncertaintyInterval returns the median of values and a 95%
// uncertainty interval: the 2.5th and 97.5th percentiles of the medians of
// nBootstrap resamples drawn with replacement. NaN values are ignored. The
// interval always contains the median.
//
// rng should be seeded by the caller; nil falls back to a randomly seeded
// generator, which is not reproducible.
func MedianAndUncertaintyInterval(values []float64, nBootstrap int, rng *rand.Rand) (float64, Interval, error) {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return 0, Interval{}, fmt.Errorf("%w: no defined values to summarize", core.ErrInsufficientData)
	}
	if nBootstrap <= 0 {
		nBootstrap = DefaultBootstraps
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	median, err := stats.Median(clean)
	if err != nil {
		return 0, Interval{}, err
	}

	medians := make([]float64, nBootstrap)
	sample := make([]float64, len(clean))
	for b := range medians {
		for i := range sample {
			sample[i] = clean[rng.IntN(len(clean))]
		}
		m, err := stats.Median(sample)
		if err != nil {
			return 0, Interval{}, err
		}
		medians[b] = m
	}

	lower, err := percentile(medians, 2.5)
	if err != nil {
		return 0, Interval{}, err
	}
	upper, err := percentile(medians, 97.5)
	if err != nil {
		return 0, Interval{}, err
	}
	// The bootstrap distribution can miss the sample median on tiny inputs
	ui := Interval{Lower: math.Min(lower, median), Upper: math.Max(upper, median)}
	return median, ui, nil
}

// percentile falls back to nearest rank when the interpolated index falls
// outside the sample, which montanaflynn/stats reports as a bounds error
func percentile(x []float64, pct float64) (float64, error) {
	v, err := stats.Percentile(x, pct)
	if err == nil {
		return v, nil
	}
	return stats.PercentileNearestRank(x, pct)
}
