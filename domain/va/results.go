package va

import "math"

// PredictionRow is one test observation's actual and predicted cause
type PredictionRow struct {
	ID         string `db:"observation_id"`
	Actual     Cause  `db:"actual"`
	Prediction Cause  `db:"prediction"`
	Split      int    `db:"split"`
}

// CSMFRow is one cause's actual and predicted population fraction
type CSMFRow struct {
	Cause      Cause   `db:"cause"`
	Actual     float64 `db:"actual"`
	Prediction float64 `db:"prediction"`
	Split      int     `db:"split"`
}

// CCCRow holds per-cause chance-corrected concordance for one split. Only
// causes observed in that split's test set have entries; undefined values
// are stored as NaN.
type CCCRow struct {
	Split  int
	Values map[Cause]float64
}

// AccuracyRow is the summary accuracy of one split
type AccuracyRow struct {
	MeanCCC        float64 `db:"mean_ccc"`
	MedianCCC      float64 `db:"median_ccc"`
	CSMFAccuracy   float64 `db:"csmf_accuracy"`
	CCCSMFAccuracy float64 `db:"cccsmf_accuracy"`
	Converged      int     `db:"converged"`
	Split          int     `db:"split"`
}

// Result is the four co-indexed output tables of a validation run
type Result struct {
	Predictions []PredictionRow
	CSMF        []CSMFRow
	CCC         []CCCRow
	Accuracy    []AccuracyRow
}

// Append concatenates other's rows after r's rows
func (r *Result) Append(other *Result) {
	if other == nil {
		return
	}
	r.Predictions = append(r.Predictions, other.Predictions...)
	r.CSMF = append(r.CSMF, other.CSMF...)
	r.CCC = append(r.CCC, other.CCC...)
	r.Accuracy = append(r.Accuracy, other.Accuracy...)
}

// Concat joins results in order into a new result
func Concat(results ...*Result) *Result {
	out := &Result{}
	for _, r := range results {
		out.Append(r)
	}
	return out
}

// NumSplits returns the number of split rows in the accuracy table
func (r *Result) NumSplits() int {
	return len(r.Accuracy)
}

// CCCColumns returns the union of causes across all CCC rows in lexical order
func (r *Result) CCCColumns() []Cause {
	seen := make(CSMF)
	for _, row := range r.CCC {
		for cause := range row.Values {
			seen[cause] = 0
		}
	}
	return seen.Causes()
}

// CCCValue returns the CCC of cause in row, or NaN when the cause was not
// observed in that split
func (row CCCRow) CCCValue(cause Cause) float64 {
	v, ok := row.Values[cause]
	if !ok {
		return math.NaN()
	}
	return v
}
