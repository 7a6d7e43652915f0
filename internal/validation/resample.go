package validation

import (
	"fmt"
	"math/rand/v2"

	"vaeval/domain/core"
	"vaeval/domain/va"

	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
)

// DirichletResample redraws a test population so its cause mix is
// independent of the training data. A CSMF is drawn uniformly from the
// probability simplex (a symmetric Dirichlet with unit concentration), turned
// into per-cause counts summing to nSamples, and each cause stratum is
// sampled with replacement. Feature rows are copied from the original pool,
// never interpolated.
//
// X and y must carry the same observation ids. nSamples <= 0 means len(X).
func DirichletResample(X va.Frame, y va.Series, nSamples int, rng *rand.Rand) (va.Frame, va.Series, error) {
	if err := va.CheckAligned(X, y); err != nil {
		return va.Frame{}, va.Series{}, err
	}
	if X.Len() == 0 {
		return va.Frame{}, va.Series{}, core.ErrEmptyDataset
	}
	y = va.AlignTo(X, y)
	if nSamples <= 0 {
		nSamples = X.Len()
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	causes := va.SortCauses(y.Unique())
	csmf := DrawDirichletCSMF(len(causes), rng)
	counts := AllocateCounts(csmf, nSamples, rng)

	perCause := make(map[va.Cause]int, len(causes))
	for i, cause := range causes {
		perCause[cause] = counts[i]
	}
	Xr, yr, err := DrawFromStrata(X, y, causes, perCause, rng)
	if err != nil {
		return va.Frame{}, va.Series{}, err
	}
	if Xr.Len() != nSamples || yr.Len() != nSamples {
		return va.Frame{}, va.Series{}, fmt.Errorf("%w: want %d, got %d", core.ErrResampleSize, nSamples, Xr.Len())
	}
	return Xr, yr, nil
}

// DrawDirichletCSMF draws a probability vector of length k from Dirichlet(1, ..., 1)
func DrawDirichletCSMF(k int, rng *rand.Rand) []float64 {
	switch {
	case k <= 0:
		return nil
	case k == 1:
		return []float64{1}
	}
	alpha := make([]float64, k)
	for i := range alpha {
		alpha[i] = 1
	}
	return distmv.NewDirichlet(alpha, rng).Rand(nil)
}

// AllocateCounts turns fractions into integer counts summing to n: each
// count is floor(csmf[i]*n) and the remainder is distributed by a single
// multinomial draw over csmf, which avoids systematic rounding bias.
func AllocateCounts(csmf []float64, n int, rng *rand.Rand) []int {
	counts := make([]int, len(csmf))
	if len(csmf) == 0 {
		return counts
	}
	assigned := 0
	for i, p := range csmf {
		counts[i] = int(p * float64(n))
		assigned += counts[i]
	}
	extra := multinomial(n-assigned, csmf, rng)
	for i := range counts {
		counts[i] += extra[i]
	}
	return counts
}

// multinomial draws from Multinomial(n, p) as a chain of conditional binomials
func multinomial(n int, p []float64, rng *rand.Rand) []int {
	out := make([]int, len(p))
	remaining := n
	mass := 0.0
	for _, v := range p {
		mass += v
	}
	for i, v := range p {
		if remaining <= 0 {
			break
		}
		if i == len(p)-1 {
			out[i] = remaining
			break
		}
		q := 0.0
		if mass > 0 {
			q = v / mass
		}
		var draw int
		switch {
		case q >= 1:
			draw = remaining
		case q <= 0:
			draw = 0
		default:
			draw = int(distuv.Binomial{N: float64(remaining), P: q, Src: rng}.Rand())
		}
		out[i] = draw
		remaining -= draw
		mass -= v
	}
	return out
}

// DrawFromStrata samples counts[cause] rows with replacement from each cause's
// stratum, in the order given by causes. Asking for a cause that has no rows
// in y is an indexing error even though oversampling an existing stratum is not.
func DrawFromStrata(X va.Frame, y va.Series, causes []va.Cause, counts map[va.Cause]int, rng *rand.Rand) (va.Frame, va.Series, error) {
	strata := make(map[va.Cause][]int)
	for i, c := range y.Values {
		strata[c] = append(strata[c], i)
	}

	var positions []int
	var labels []va.Cause
	for _, cause := range causes {
		n := counts[cause]
		if n == 0 {
			continue
		}
		stratum, ok := strata[cause]
		if !ok {
			return va.Frame{}, va.Series{}, core.NewUnknownCauseError(string(cause))
		}
		for j := 0; j < n; j++ {
			positions = append(positions, stratum[rng.IntN(len(stratum))])
			labels = append(labels, cause)
		}
	}

	Xr := X.Take(positions)
	yr := va.Series{Index: Xr.Index, Values: labels}
	return Xr, yr, nil
}
