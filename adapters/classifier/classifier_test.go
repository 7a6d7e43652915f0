package classifier

import (
	"context"
	"math/rand/v2"
	"testing"

	"vaeval/domain/core"
	"vaeval/domain/va"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(ids ...string) va.Frame {
	rows := make([][]float64, len(ids))
	for i := range rows {
		rows[i] = []float64{float64(i)}
	}
	return va.Frame{Index: ids, Columns: []string{"s1"}, Rows: rows}
}

func series(ids []string, labels ...va.Cause) *va.Series {
	return &va.Series{Index: ids, Values: labels}
}

func TestMajorityClassifier(t *testing.T) {
	ctx := context.Background()
	ids := []string{"a", "b", "c", "d"}
	X := frame(ids...)

	clf := NewMajorityClassifier("")
	require.NoError(t, clf.Fit(ctx, &X, series(ids, "flu", "tb", "flu", "hiv")))
	assert.Equal(t, va.Cause("flu"), clf.Majority())

	pred, err := clf.Predict(ctx, X)
	require.NoError(t, err)
	assert.Equal(t, ids, pred.Individual.Index)
	assert.Equal(t, []va.Cause{"flu", "flu", "flu", "flu"}, pred.Individual.Values)
	assert.Equal(t, va.CSMF{"flu": 1}, pred.CSMF)
}

func TestMajorityClassifier_TieBreaksOnLabel(t *testing.T) {
	ids := []string{"a", "b"}
	X := frame(ids...)
	clf := NewMajorityClassifier("")
	require.NoError(t, clf.Fit(context.Background(), &X, series(ids, "zeta", "alpha")))
	assert.Equal(t, va.Cause("alpha"), clf.Majority())
}

func TestMajorityClassifier_Defaults(t *testing.T) {
	ctx := context.Background()
	X := frame("a")

	unfitted := NewMajorityClassifier("")
	require.NoError(t, unfitted.Fit(ctx, nil, nil))
	_, err := unfitted.Predict(ctx, X)
	assert.ErrorIs(t, err, core.ErrNotFitted)

	withDefault := NewMajorityClassifier("stroke")
	require.NoError(t, withDefault.Fit(ctx, nil, nil))
	pred, err := withDefault.Predict(ctx, X)
	require.NoError(t, err)
	assert.Equal(t, []va.Cause{"stroke"}, pred.Individual.Values)
}

func TestRandomClassifier(t *testing.T) {
	ctx := context.Background()
	ids := []string{"1", "2", "3", "4", "5", "6"}
	X := frame(ids...)
	y := series(ids, "a", "b", "c", "a", "b", "c")

	clf := NewRandomClassifier(rand.New(rand.NewPCG(1, 1)), nil)
	require.NoError(t, clf.Fit(ctx, &X, y))
	pred, err := clf.Predict(ctx, X)
	require.NoError(t, err)

	require.Len(t, pred.Individual.Values, len(ids))
	for _, c := range pred.Individual.Values {
		assert.Contains(t, []va.Cause{"a", "b", "c"}, c)
	}
	assert.InDelta(t, 1.0, pred.CSMF.Sum(), 1e-12)
}

func TestRandomClassifier_Seeded(t *testing.T) {
	ctx := context.Background()
	ids := []string{"1", "2", "3", "4", "5", "6", "7", "8"}
	X := frame(ids...)
	y := series(ids, "a", "b", "c", "d", "a", "b", "c", "d")

	run := func() []va.Cause {
		clf := NewRandomClassifier(rand.New(rand.NewPCG(9, 9)), nil)
		require.NoError(t, clf.Fit(ctx, &X, y))
		pred, err := clf.Predict(ctx, X)
		require.NoError(t, err)
		return pred.Individual.Values
	}
	assert.Equal(t, run(), run())
}

func TestRandomClassifier_NoTraining(t *testing.T) {
	ctx := context.Background()
	X := frame("x", "y", "z")

	withVocab := NewRandomClassifier(rand.New(rand.NewPCG(2, 2)), []va.Cause{"a", "b"})
	require.NoError(t, withVocab.Fit(ctx, nil, nil))
	pred, err := withVocab.Predict(ctx, X)
	require.NoError(t, err)
	for _, c := range pred.Individual.Values {
		assert.Contains(t, []va.Cause{"a", "b"}, c)
	}

	// Without a vocabulary the observation ids stand in for causes
	bare := NewRandomClassifier(rand.New(rand.NewPCG(2, 2)), nil)
	require.NoError(t, bare.Fit(ctx, nil, nil))
	pred, err = bare.Predict(ctx, X)
	require.NoError(t, err)
	for _, c := range pred.Individual.Values {
		assert.Contains(t, []va.Cause{"x", "y", "z"}, c)
	}
}

func TestParseParams(t *testing.T) {
	p := ParseParams(map[string]string{"random_state": "42", "alpha": "0.5", "causes": "a,b"})
	assert.Equal(t, 42, p["random_state"])
	assert.Equal(t, 0.5, p["alpha"])
	assert.Equal(t, "a,b", p["causes"])
	assert.Equal(t, []string{"a", "b"}, p.List("causes"))

	seed, ok, err := p.Uint64("random_state")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(42), seed)

	_, _, err = p.Uint64("alpha")
	assert.Error(t, err)
}

func TestNewClassifier(t *testing.T) {
	clf, err := NewClassifier(NameRandom, Params{"random_state": 3}, nil)
	require.NoError(t, err)
	assert.IsType(t, &RandomClassifier{}, clf)

	clf, err = NewClassifier(NameMajority, Params{"default_cause": "tb"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MajorityClassifier{}, clf)

	_, err = NewClassifier("insilico", nil, nil)
	assert.ErrorIs(t, err, core.ErrUnknownClassifier)
}

func TestNewFactory(t *testing.T) {
	factory, err := NewFactory(NameMajority, nil)
	require.NoError(t, err)

	a, err := factory(rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	b, err := factory(nil)
	require.NoError(t, err)
	assert.NotSame(t, a, b)

	_, err = NewFactory("nope", nil)
	assert.ErrorIs(t, err, core.ErrUnknownClassifier)
}

func TestNewFactory_RandomFollowsStream(t *testing.T) {
	factory, err := NewFactory(NameRandom, Params{"causes": "a,b,c"})
	require.NoError(t, err)

	X := frame("1", "2", "3", "4", "5", "6")
	predict := func(seed uint64) []va.Cause {
		clf, err := factory(rand.New(rand.NewPCG(seed, seed)))
		require.NoError(t, err)
		require.NoError(t, clf.Fit(context.Background(), nil, nil))
		pred, err := clf.Predict(context.Background(), X)
		require.NoError(t, err)
		return pred.Individual.Values
	}
	assert.Equal(t, predict(3), predict(3))
}
