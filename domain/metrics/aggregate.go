package metrics

import (
	"sort"

	"vaeval/domain/va"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Aggregator reduces cause-specific values to a single estimate. weights is
// nil for an unweighted reduction, otherwise co-indexed with values.
type Aggregator func(values, weights []float64) (float64, bool)

// Mean is the (optionally weighted) arithmetic mean
func Mean(values, weights []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	if weights == nil {
		m, err := stats.Mean(values)
		return m, err == nil
	}
	if sumOf(weights) <= 0 {
		return 0, false
	}
	return stat.Mean(values, weights), true
}

// Median is the (optionally weighted) median
func Median(values, weights []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	if weights == nil {
		m, err := stats.Median(values)
		return m, err == nil
	}
	if sumOf(weights) <= 0 {
		return 0, false
	}
	x := append([]float64(nil), values...)
	w := append([]float64(nil), weights...)
	sort.Sort(pairSorter{x: x, w: w})
	return stat.Quantile(0.5, stat.Empirical, x, w), true
}

type pairSorter struct{ x, w []float64 }

func (p pairSorter) Len() int           { return len(p.x) }
func (p pairSorter) Less(i, j int) bool { return p.x[i] < p.x[j] }
func (p pairSorter) Swap(i, j int) {
	p.x[i], p.x[j] = p.x[j], p.x[i]
	p.w[i], p.w[j] = p.w[j], p.w[i]
}

func sumOf(x []float64) float64 {
	total := 0.0
	for _, v := range x {
		total += v
	}
	return total
}

// Weights selects how cause-specific values are weighted when aggregated
type Weights struct {
	prevalence bool
	explicit   map[va.Cause]float64
}

var (
	// Unweighted treats every cause equally. This is the convention for
	// mean and median CCC.
	Unweighted = Weights{}
	// TruePrevalence weights each cause by its empirical prevalence in actual
	TruePrevalence = Weights{prevalence: true}
)

// ExplicitWeights weights each cause by the given value; causes without an
// entry get weight zero
func ExplicitWeights(w map[va.Cause]float64) Weights {
	return Weights{explicit: w}
}

func (w Weights) isWeighted() bool {
	return w.prevalence || w.explicit != nil
}

// AggregateCauseSpecific computes metric for every cause present in actual
// (in order of first appearance) and reduces the defined values with agg.
// Causes whose metric is undefined are excluded together with their weight.
// The result is undefined when no cause yields a defined value.
func AggregateCauseSpecific(agg Aggregator, metric CauseMetric, actual, predicted []va.Cause, weights Weights) (float64, bool) {
	causes := va.UniqueCauses(actual)

	var prevalence map[va.Cause]int
	if weights.prevalence {
		prevalence = make(map[va.Cause]int, len(causes))
		for _, c := range actual {
			prevalence[c]++
		}
	}

	values := make([]float64, 0, len(causes))
	var w []float64
	if weights.isWeighted() {
		w = make([]float64, 0, len(causes))
	}
	for _, cause := range causes {
		v, ok := metric(cause, actual, predicted)
		if !ok {
			continue
		}
		values = append(values, v)
		switch {
		case weights.prevalence:
			w = append(w, float64(prevalence[cause])/float64(len(actual)))
		case weights.explicit != nil:
			w = append(w, weights.explicit[cause])
		}
	}
	if len(values) == 0 {
		return 0, false
	}
	return agg(values, w)
}

// MeanCCC is the unweighted mean of cause-specific CCC, the overall
// individual-level estimate recommended by Murray et al.
func MeanCCC(actual, predicted []va.Cause) (float64, bool) {
	return AggregateCauseSpecific(Mean, ChanceCorrectedConcordance, actual, predicted, Unweighted)
}

// MedianCCC is the unweighted median of cause-specific CCC
func MedianCCC(actual, predicted []va.Cause) (float64, bool) {
	return AggregateCauseSpecific(Median, ChanceCorrectedConcordance, actual, predicted, Unweighted)
}
