package va

import (
	"errors"
	"testing"

	"vaeval/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFrame_ShapeChecks(t *testing.T) {
	_, err := NewFrame([]string{"a", "b"}, []string{"s1"}, [][]float64{{1}})
	assert.True(t, errors.Is(err, core.ErrLengthMismatch))

	_, err = NewFrame([]string{"a"}, []string{"s1", "s2"}, [][]float64{{1}})
	assert.True(t, errors.Is(err, core.ErrLengthMismatch))

	f, err := NewFrame([]string{"a"}, []string{"s1"}, [][]float64{{1}})
	require.NoError(t, err)
	assert.Equal(t, 1, f.Len())
}

func TestSeries_UniqueAndNormalized(t *testing.T) {
	s, err := NewSeries([]string{"a", "b", "c", "d"}, []Cause{"stroke", "aids", "stroke", "stroke"})
	require.NoError(t, err)

	assert.Equal(t, []Cause{"stroke", "aids"}, s.Unique())

	csmf := s.Normalized()
	assert.InDelta(t, 0.75, csmf["stroke"], 1e-12)
	assert.InDelta(t, 0.25, csmf["aids"], 1e-12)
	assert.InDelta(t, 1.0, csmf.Sum(), 1e-12)
}

func TestTake_KeepsDuplicates(t *testing.T) {
	f, _ := NewFrame([]string{"a", "b"}, []string{"s1"}, [][]float64{{0}, {1}})
	s, _ := NewSeries([]string{"a", "b"}, []Cause{"x", "y"})

	ft := f.Take([]int{1, 1, 0})
	st := s.Take([]int{1, 1, 0})

	assert.Equal(t, []string{"b", "b", "a"}, ft.Index)
	assert.Equal(t, [][]float64{{1}, {1}, {0}}, ft.Rows)
	assert.Equal(t, []Cause{"y", "y", "x"}, st.Values)
}

func TestAlignCSMF_UnionWithZeros(t *testing.T) {
	causes, a, p := AlignCSMF(CSMF{"b": 0.5, "a": 0.5}, CSMF{"c": 1})

	assert.Equal(t, []Cause{"a", "b", "c"}, causes)
	assert.Equal(t, []float64{0.5, 0.5, 0}, a)
	assert.Equal(t, []float64{0, 0, 1}, p)
}

func TestCheckAligned(t *testing.T) {
	f, _ := NewFrame([]string{"a", "b"}, []string{"s1"}, [][]float64{{0}, {1}})

	same, _ := NewSeries([]string{"b", "a"}, []Cause{"y", "x"})
	assert.NoError(t, CheckAligned(f, same))

	other, _ := NewSeries([]string{"a", "z"}, []Cause{"x", "y"})
	err := CheckAligned(f, other)
	assert.True(t, errors.Is(err, core.ErrIndexMismatch))
	assert.True(t, core.IsInputContractError(err))
}

func TestCheckAligned_DuplicateCounts(t *testing.T) {
	f, _ := NewFrame([]string{"a", "a", "b"}, []string{"s1"}, [][]float64{{0}, {1}, {2}})

	skewed, _ := NewSeries([]string{"a", "b", "b"}, []Cause{"x", "y", "y"})
	err := CheckAligned(f, skewed)
	assert.True(t, errors.Is(err, core.ErrIndexMismatch))
	assert.Contains(t, err.Error(), "1 ids only in features, 1 ids only in labels")

	matching, _ := NewSeries([]string{"b", "a", "a"}, []Cause{"y", "x1", "x2"})
	require.NoError(t, CheckAligned(f, matching))
	aligned := AlignTo(f, matching)
	assert.Equal(t, []string{"a", "a", "b"}, aligned.Index)
	assert.Equal(t, []Cause{"x1", "x2", "y"}, aligned.Values)
}

func TestAlignTo_Reorders(t *testing.T) {
	f, _ := NewFrame([]string{"a", "b", "c"}, []string{"s1"}, [][]float64{{0}, {1}, {2}})
	s, _ := NewSeries([]string{"c", "a", "b"}, []Cause{"z", "x", "y"})

	aligned := AlignTo(f, s)
	assert.Equal(t, []string{"a", "b", "c"}, aligned.Index)
	assert.Equal(t, []Cause{"x", "y", "z"}, aligned.Values)
}
