package va

import "vaeval/domain/core"

// Split assigns observations (by position) to a train and a test partition.
// Train is nil when the classifier runs on its default parameters.
type Split struct {
	Train []int
	Test  []int
	ID    int
}

// HasTrain reports whether the split carries a training partition
func (s Split) HasTrain() bool {
	return s.Train != nil
}

// Subset is an inclusive range of split enumeration indices, used to
// partition work across independent jobs.
type Subset struct {
	Start int
	Stop  int
}

// Validate rejects negative or inverted ranges
func (s Subset) Validate() error {
	if s.Start < 0 || s.Stop < s.Start {
		return core.NewSubsetError(s.Start, s.Stop)
	}
	return nil
}

// Len returns the number of splits covered
func (s Subset) Len() int {
	return s.Stop - s.Start + 1
}

// PartitionSubsets cuts [0, nSplits-1] into at most n contiguous ranges of
// near-equal size.
func PartitionSubsets(nSplits, n int) ([]Subset, error) {
	if nSplits < 1 {
		return nil, core.NewSplitError("n_splits must be at least 1")
	}
	if n < 1 {
		n = 1
	}
	if n > nSplits {
		n = nSplits
	}
	out := make([]Subset, 0, n)
	size, extra := nSplits/n, nSplits%n
	start := 0
	for i := 0; i < n; i++ {
		length := size
		if i < extra {
			length++
		}
		out = append(out, Subset{Start: start, Stop: start + length - 1})
		start += length
	}
	return out, nil
}
