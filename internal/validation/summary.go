package validation

import (
	"errors"
	"math"
	"math/rand/v2"
	"sort"

	"vaeval/domain/core"
	"vaeval/domain/metrics"
	"vaeval/domain/va"
)

// SummarySeed seeds bootstrap summaries so published tables are reproducible
const SummarySeed uint64 = 8675309

// Estimate is a median across splits with its bootstrap 95% interval.
// Defined is false when no split produced a defined value.
type Estimate struct {
	Median  float64
	UI      metrics.Interval
	Defined bool
}

func undefinedEstimate() Estimate {
	return Estimate{Median: math.NaN(), UI: metrics.Interval{Lower: math.NaN(), Upper: math.NaN()}}
}

func estimate(values []float64, nBootstrap int, rng *rand.Rand) (Estimate, error) {
	med, ui, err := metrics.MedianAndUncertaintyInterval(values, nBootstrap, rng)
	if errors.Is(err, core.ErrInsufficientData) {
		return undefinedEstimate(), nil
	}
	if err != nil {
		return Estimate{}, err
	}
	return Estimate{Median: med, UI: ui, Defined: true}, nil
}

// AccuracySummary condenses an accuracy table across splits
type AccuracySummary struct {
	Splits          int
	MeanCCC         Estimate
	MedianCCC       Estimate
	CSMFAccuracy    Estimate
	CCCSMFAccuracy  Estimate
	ConvergenceRate float64
}

// SummarizeAccuracy reports the median and 95% uncertainty interval of each
// accuracy measure across splits. The measures share rng in a fixed order so
// a seeded generator gives the same summary every time.
func SummarizeAccuracy(rows []va.AccuracyRow, nBootstrap int, rng *rand.Rand) (AccuracySummary, error) {
	if len(rows) == 0 {
		return AccuracySummary{}, core.ErrInsufficientData
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(SummarySeed, SummarySeed))
	}

	columns := [4][]float64{}
	converged := 0
	for _, row := range rows {
		columns[0] = append(columns[0], row.MeanCCC)
		columns[1] = append(columns[1], row.MedianCCC)
		columns[2] = append(columns[2], row.CSMFAccuracy)
		columns[3] = append(columns[3], row.CCCSMFAccuracy)
		converged += row.Converged
	}

	var estimates [4]Estimate
	for i, values := range columns {
		e, err := estimate(values, nBootstrap, rng)
		if err != nil {
			return AccuracySummary{}, err
		}
		estimates[i] = e
	}

	return AccuracySummary{
		Splits:          len(rows),
		MeanCCC:         estimates[0],
		MedianCCC:       estimates[1],
		CSMFAccuracy:    estimates[2],
		CCCSMFAccuracy:  estimates[3],
		ConvergenceRate: float64(converged) / float64(len(rows)),
	}, nil
}

// CauseSummary condenses one cause's individual-level performance across splits
type CauseSummary struct {
	Cause          va.Cause
	Sensitivity    Estimate
	Specificity    Estimate
	CCC            Estimate
	ActualCount    int
	PredictedCount int
}

// SummarizeCauseSpecific computes sensitivity, specificity and CCC for every
// cause within each split of a predictions table, then summarizes each
// across splits. Causes only ever predicted are not reported. Results are
// ordered by cause.
func SummarizeCauseSpecific(rows []va.PredictionRow, nBootstrap int, rng *rand.Rand) ([]CauseSummary, error) {
	if len(rows) == 0 {
		return nil, core.ErrInsufficientData
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(SummarySeed, SummarySeed))
	}

	type labels struct{ actual, predicted []va.Cause }
	bySplit := make(map[int]*labels)
	actualCount := make(map[va.Cause]int)
	predictedCount := make(map[va.Cause]int)
	for _, row := range rows {
		l, ok := bySplit[row.Split]
		if !ok {
			l = &labels{}
			bySplit[row.Split] = l
		}
		l.actual = append(l.actual, row.Actual)
		l.predicted = append(l.predicted, row.Prediction)
		actualCount[row.Actual]++
		predictedCount[row.Prediction]++
	}
	splitIDs := make([]int, 0, len(bySplit))
	for id := range bySplit {
		splitIDs = append(splitIDs, id)
	}
	sort.Ints(splitIDs)

	type series struct{ sensitivity, specificity, ccc []float64 }
	perCause := make(map[va.Cause]*series)
	for _, id := range splitIDs {
		l := bySplit[id]
		for _, cause := range va.UniqueCauses(l.actual) {
			s, ok := perCause[cause]
			if !ok {
				s = &series{}
				perCause[cause] = s
			}
			s.sensitivity = append(s.sensitivity, undefinedAsNaN(metrics.Sensitivity(cause, l.actual, l.predicted)))
			s.specificity = append(s.specificity, undefinedAsNaN(metrics.Specificity(cause, l.actual, l.predicted)))
			s.ccc = append(s.ccc, undefinedAsNaN(metrics.ChanceCorrectedConcordance(cause, l.actual, l.predicted)))
		}
	}

	causes := make([]va.Cause, 0, len(perCause))
	for c := range perCause {
		causes = append(causes, c)
	}
	va.SortCauses(causes)

	out := make([]CauseSummary, 0, len(causes))
	for _, cause := range causes {
		s := perCause[cause]
		summary := CauseSummary{
			Cause:          cause,
			ActualCount:    actualCount[cause],
			PredictedCount: predictedCount[cause],
		}
		var err error
		if summary.Sensitivity, err = estimate(s.sensitivity, nBootstrap, rng); err != nil {
			return nil, err
		}
		if summary.Specificity, err = estimate(s.specificity, nBootstrap, rng); err != nil {
			return nil, err
		}
		if summary.CCC, err = estimate(s.ccc, nBootstrap, rng); err != nil {
			return nil, err
		}
		out = append(out, summary)
	}
	return out, nil
}
