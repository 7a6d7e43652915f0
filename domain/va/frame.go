package va

import (
	"sort"

	"vaeval/domain/core"
)

// Cause is a cause-of-death label drawn from a module-specific vocabulary
type Cause string

// Frame is a samples-by-features matrix. Index holds observation ids, which are
// unique in loaded data but may repeat after resampling with replacement.
type Frame struct {
	Index   []string
	Columns []string
	Rows    [][]float64
}

// NewFrame validates shapes and returns a frame
func NewFrame(index, columns []string, rows [][]float64) (Frame, error) {
	if len(index) != len(rows) {
		return Frame{}, core.NewLengthMismatchError("frame index and rows", len(index), len(rows))
	}
	for _, row := range rows {
		if len(row) != len(columns) {
			return Frame{}, core.NewLengthMismatchError("frame row and columns", len(row), len(columns))
		}
	}
	return Frame{Index: index, Columns: columns, Rows: rows}, nil
}

// Len returns the number of observations
func (f Frame) Len() int {
	return len(f.Index)
}

// Take selects rows by position. Row slices are shared, not copied; frames are
// treated as immutable once loaded.
func (f Frame) Take(positions []int) Frame {
	out := Frame{
		Index:   make([]string, len(positions)),
		Columns: f.Columns,
		Rows:    make([][]float64, len(positions)),
	}
	for i, p := range positions {
		out.Index[i] = f.Index[p]
		out.Rows[i] = f.Rows[p]
	}
	return out
}

// Series holds one cause label per observation
type Series struct {
	Index  []string
	Values []Cause
}

// NewSeries validates shapes and returns a series
func NewSeries(index []string, values []Cause) (Series, error) {
	if len(index) != len(values) {
		return Series{}, core.NewLengthMismatchError("series index and values", len(index), len(values))
	}
	return Series{Index: index, Values: values}, nil
}

// Len returns the number of labels
func (s Series) Len() int {
	return len(s.Values)
}

// Take selects labels by position
func (s Series) Take(positions []int) Series {
	out := Series{
		Index:  make([]string, len(positions)),
		Values: make([]Cause, len(positions)),
	}
	for i, p := range positions {
		out.Index[i] = s.Index[p]
		out.Values[i] = s.Values[p]
	}
	return out
}

// Unique returns the distinct causes in order of first appearance
func (s Series) Unique() []Cause {
	return UniqueCauses(s.Values)
}

// Counts returns the number of observations per cause
func (s Series) Counts() map[Cause]int {
	counts := make(map[Cause]int)
	for _, c := range s.Values {
		counts[c]++
	}
	return counts
}

// Normalized returns the empirical cause-specific mortality fraction
func (s Series) Normalized() CSMF {
	csmf := make(CSMF)
	if len(s.Values) == 0 {
		return csmf
	}
	n := float64(len(s.Values))
	for cause, count := range s.Counts() {
		csmf[cause] = float64(count) / n
	}
	return csmf
}

// Strings returns the labels as plain strings
func (s Series) Strings() []string {
	out := make([]string, len(s.Values))
	for i, c := range s.Values {
		out[i] = string(c)
	}
	return out
}

// UniqueCauses returns the distinct causes in order of first appearance
func UniqueCauses(values []Cause) []Cause {
	seen := make(map[Cause]bool)
	var out []Cause
	for _, c := range values {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// SortCauses sorts causes lexically in place and returns them
func SortCauses(causes []Cause) []Cause {
	sort.Slice(causes, func(i, j int) bool { return causes[i] < causes[j] })
	return causes
}

// CSMF maps each cause to its fraction of deaths in a population
type CSMF map[Cause]float64

// Sum returns the total mass
func (c CSMF) Sum() float64 {
	total := 0.0
	for _, v := range c {
		total += v
	}
	return total
}

// Causes returns the causes in lexical order
func (c CSMF) Causes() []Cause {
	causes := make([]Cause, 0, len(c))
	for cause := range c {
		causes = append(causes, cause)
	}
	return SortCauses(causes)
}

// AlignCSMF puts two CSMFs on the union of their causes (lexical order),
// filling causes missing from either side with zero.
func AlignCSMF(actual, predicted CSMF) (causes []Cause, a, p []float64) {
	union := make(CSMF, len(actual)+len(predicted))
	for cause := range actual {
		union[cause] = 0
	}
	for cause := range predicted {
		union[cause] = 0
	}
	causes = union.Causes()
	a = make([]float64, len(causes))
	p = make([]float64, len(causes))
	for i, cause := range causes {
		a[i] = actual[cause]
		p[i] = predicted[cause]
	}
	return causes, a, p
}

// CheckAligned returns ErrIndexMismatch unless X and y carry the same
// observation ids, each repeated the same number of times on both sides.
func CheckAligned(X Frame, y Series) error {
	inX := make(map[string]int, len(X.Index))
	for _, id := range X.Index {
		inX[id]++
	}
	inY := make(map[string]int, len(y.Index))
	for _, id := range y.Index {
		inY[id]++
	}
	onlyX, onlyY := 0, 0
	for id := range inX {
		if _, ok := inY[id]; !ok {
			onlyX++
		}
	}
	for id := range inY {
		if _, ok := inX[id]; !ok {
			onlyY++
		}
	}
	if onlyX > 0 || onlyY > 0 {
		return core.NewIndexMismatchError(onlyX, onlyY)
	}
	if X.Len() != y.Len() {
		return core.NewLengthMismatchError("features and labels", X.Len(), y.Len())
	}
	// same ids, same lengths: duplicates must repeat equally on both sides
	for id, n := range inX {
		if m := inY[id]; n > m {
			onlyX += n - m
		} else {
			onlyY += m - n
		}
	}
	if onlyX > 0 || onlyY > 0 {
		return core.NewIndexMismatchError(onlyX, onlyY)
	}
	return nil
}

// AlignTo reorders y so that y.Index[i] == X.Index[i]. X and y must
// already pass CheckAligned.
func AlignTo(X Frame, y Series) Series {
	aligned := true
	for i := range X.Index {
		if X.Index[i] != y.Index[i] {
			aligned = false
			break
		}
	}
	if aligned {
		return y
	}
	// repeated ids are matched in order of appearance
	pos := make(map[string][]int, len(y.Index))
	for i, id := range y.Index {
		pos[id] = append(pos[id], i)
	}
	positions := make([]int, len(X.Index))
	for i, id := range X.Index {
		positions[i] = pos[id][0]
		pos[id] = pos[id][1:]
	}
	return y.Take(positions)
}
