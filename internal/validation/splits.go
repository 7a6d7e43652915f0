package validation

import (
	"fmt"
	"iter"
	"math"
	"math/rand/v2"
	"sort"

	"vaeval/domain/core"
	"vaeval/domain/va"
)

// ValidateSplitCount rejects a non-positive number of splits
func ValidateSplitCount(nSplits int) error {
	if nSplits < 1 {
		return core.NewSplitError(fmt.Sprintf("n_splits must be at least 1, got %d", nSplits))
	}
	return nil
}

func allPositions(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// NoTrainingSplits yields nSplits splits without a training partition, each
// testing on all n observations. Only test-set resampling varies between them.
func NoTrainingSplits(n, nSplits int) iter.Seq[va.Split] {
	return func(yield func(va.Split) bool) {
		for i := 0; i < nSplits; i++ {
			if !yield(va.Split{Train: nil, Test: allPositions(n), ID: i}) {
				return
			}
		}
	}
}

// InSampleSplits yields nSplits splits that train and test on every
// observation, measuring best-case fit rather than generalization
func InSampleSplits(n, nSplits int) iter.Seq[va.Split] {
	return func(yield func(va.Split) bool) {
		for i := 0; i < nSplits; i++ {
			idx := allPositions(n)
			if !yield(va.Split{Train: idx, Test: idx, ID: i}) {
				return
			}
		}
	}
}

// OutOfSampleSplits yields nSplits stratified shuffle splits. Each split
// holds out ceil(testSize*n) observations with cause proportions preserved
// between train and test. With a seed the sequence is identical across runs
// and across repeated iteration; without one a seed is drawn once here.
func OutOfSampleSplits(labels []va.Cause, nSplits int, testSize float64, seed *uint64) (iter.Seq[va.Split], error) {
	if err := ValidateSplitCount(nSplits); err != nil {
		return nil, err
	}
	plan, err := newStratifiedPlan(labels, testSize)
	if err != nil {
		return nil, err
	}

	var base uint64
	if seed != nil {
		base = *seed
	} else {
		base = rand.Uint64()
	}

	return func(yield func(va.Split) bool) {
		rng := rand.New(rand.NewPCG(base, base))
		for i := 0; i < nSplits; i++ {
			train, test := plan.split(rng)
			if !yield(va.Split{Train: train, Test: test, ID: i}) {
				return
			}
		}
	}, nil
}

// stratifiedPlan holds the class layout shared by every split
type stratifiedPlan struct {
	members [][]int // positions of each class, classes in label order
	counts  []int
	nTrain  int
	nTest   int
}

func newStratifiedPlan(labels []va.Cause, testSize float64) (*stratifiedPlan, error) {
	n := len(labels)
	if n == 0 {
		return nil, core.ErrEmptyDataset
	}
	if testSize <= 0 || testSize >= 1 {
		return nil, core.NewSplitError(fmt.Sprintf("test size must be in (0, 1), got %g", testSize))
	}
	nTest := int(math.Ceil(testSize * float64(n)))
	nTrain := n - nTest

	classes := va.SortCauses(va.UniqueCauses(labels))
	index := make(map[va.Cause]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	members := make([][]int, len(classes))
	for pos, c := range labels {
		members[index[c]] = append(members[index[c]], pos)
	}
	counts := make([]int, len(classes))
	for i, m := range members {
		counts[i] = len(m)
		if counts[i] < 2 {
			return nil, core.NewSplitError(fmt.Sprintf("cause %q has %d member; every cause needs at least 2", classes[i], counts[i]))
		}
	}
	if nTrain < len(classes) {
		return nil, core.NewSplitError(fmt.Sprintf("train size %d is smaller than the number of causes %d", nTrain, len(classes)))
	}
	if nTest < len(classes) {
		return nil, core.NewSplitError(fmt.Sprintf("test size %d is smaller than the number of causes %d", nTest, len(classes)))
	}
	return &stratifiedPlan{members: members, counts: counts, nTrain: nTrain, nTest: nTest}, nil
}

func (p *stratifiedPlan) split(rng *rand.Rand) (train, test []int) {
	trainCounts := approximateMode(p.counts, p.nTrain, rng)
	remaining := make([]int, len(p.counts))
	for i := range remaining {
		remaining[i] = p.counts[i] - trainCounts[i]
	}
	testCounts := approximateMode(remaining, p.nTest, rng)

	train = make([]int, 0, p.nTrain)
	test = make([]int, 0, p.nTest)
	for i, m := range p.members {
		perm := rng.Perm(len(m))
		for j := 0; j < trainCounts[i]; j++ {
			train = append(train, m[perm[j]])
		}
		for j := trainCounts[i]; j < trainCounts[i]+testCounts[i]; j++ {
			test = append(test, m[perm[j]])
		}
	}
	rng.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })
	rng.Shuffle(len(test), func(i, j int) { test[i], test[j] = test[j], test[i] })
	return train, test
}

// approximateMode allocates nDraws across classes proportionally to counts.
// Each class gets the floor of its share; the leftover units go to the
// classes with the largest fractional remainders, ties broken at random.
func approximateMode(counts []int, nDraws int, rng *rand.Rand) []int {
	total := 0
	for _, c := range counts {
		total += c
	}
	out := make([]int, len(counts))
	if total == 0 {
		return out
	}
	remainders := make([]float64, len(counts))
	assigned := 0
	for i, c := range counts {
		continuous := float64(c) * float64(nDraws) / float64(total)
		out[i] = int(math.Floor(continuous))
		remainders[i] = continuous - float64(out[i])
		assigned += out[i]
	}
	need := nDraws - assigned

	levels := append([]float64(nil), remainders...)
	sort.Sort(sort.Reverse(sort.Float64Slice(levels)))
	for k := 0; k < len(levels) && need > 0; k++ {
		if k > 0 && levels[k] == levels[k-1] {
			continue
		}
		var tied []int
		for i, r := range remainders {
			if r == levels[k] {
				tied = append(tied, i)
			}
		}
		rng.Shuffle(len(tied), func(i, j int) { tied[i], tied[j] = tied[j], tied[i] })
		take := min(need, len(tied))
		for _, i := range tied[:take] {
			out[i]++
		}
		need -= take
	}
	return out
}
