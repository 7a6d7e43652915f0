package validation

import (
	"math/rand/v2"
	"testing"

	"vaeval/domain/va"
	"vaeval/internal/testkit"

	"github.com/stretchr/testify/require"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func twoCauseData(t *testing.T) (va.Frame, va.Series) {
	t.Helper()
	X, y, err := testkit.NewVADataGenerator(testkit.TwoCauseConfig()).Generate()
	require.NoError(t, err)
	return X, y
}

func threeCauseData(t *testing.T) (va.Frame, va.Series) {
	t.Helper()
	X, y, err := testkit.NewVADataGenerator(testkit.DefaultVAConfig()).Generate()
	require.NoError(t, err)
	return X, y
}

func collect(seq func(func(va.Split) bool)) []va.Split {
	var out []va.Split
	for s := range seq {
		out = append(out, s)
	}
	return out
}
