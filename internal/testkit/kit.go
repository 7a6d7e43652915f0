package testkit

import (
	"context"
	"math/rand/v2"
	"sync"

	"vaeval/adapters/rng"
	"vaeval/domain/va"
	"vaeval/ports"

	"github.com/stretchr/testify/mock"
)

// TestKit provides testing utilities and fixtures
type TestKit struct {
	seed uint64
}

// NewTestKit creates a test kit whose generators derive from seed
func NewTestKit(seed uint64) *TestKit {
	return &TestKit{seed: seed}
}

// RNGAdapter returns an RNG adapter
func (t *TestKit) RNGAdapter() ports.RNGPort {
	return rng.NewStreamAdapter()
}

// Rand returns a fresh generator seeded from the kit
func (t *TestKit) Rand() *rand.Rand {
	return rand.New(rand.NewPCG(t.seed, t.seed))
}

// Dataset generates a synthetic dataset with the kit's seed
func (t *TestKit) Dataset(config VAGeneratorConfig) (va.Frame, va.Series, error) {
	config.Seed = t.seed
	return NewVADataGenerator(config).Generate()
}

// MockClassifier is a testify mock of ports.Classifier
type MockClassifier struct {
	mock.Mock
}

var _ ports.Classifier = (*MockClassifier)(nil)

func (m *MockClassifier) Fit(ctx context.Context, X *va.Frame, y *va.Series) error {
	args := m.Called(ctx, X, y)
	return args.Error(0)
}

func (m *MockClassifier) Predict(ctx context.Context, X va.Frame) (ports.Prediction, error) {
	args := m.Called(ctx, X)
	return args.Get(0).(ports.Prediction), args.Error(1)
}

// FitCall records the arguments of one Fit
type FitCall struct {
	Train  bool
	Rows   int
	Causes []va.Cause
}

// OracleClassifier predicts the true cause it was told about and records
// every fit. It reports convergence as configured.
type OracleClassifier struct {
	Truth     map[string]va.Cause // observation id -> cause
	Converges bool

	mu   sync.Mutex
	fits []FitCall
}

var (
	_ ports.Classifier          = (*OracleClassifier)(nil)
	_ ports.ConvergenceReporter = (*OracleClassifier)(nil)
)

// NewOracleClassifier knows the cause of every observation in y
func NewOracleClassifier(y va.Series) *OracleClassifier {
	truth := make(map[string]va.Cause, y.Len())
	for i, id := range y.Index {
		truth[id] = y.Values[i]
	}
	return &OracleClassifier{Truth: truth, Converges: true}
}

func (o *OracleClassifier) Fit(ctx context.Context, X *va.Frame, y *va.Series) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	call := FitCall{Train: y != nil}
	if y != nil {
		call.Rows = y.Len()
		call.Causes = y.Unique()
	}
	o.fits = append(o.fits, call)
	return nil
}

func (o *OracleClassifier) Predict(ctx context.Context, X va.Frame) (ports.Prediction, error) {
	values := make([]va.Cause, X.Len())
	for i, id := range X.Index {
		values[i] = o.Truth[id]
	}
	individual := va.Series{Index: append([]string(nil), X.Index...), Values: values}
	return ports.Prediction{Individual: individual, CSMF: individual.Normalized()}, nil
}

func (o *OracleClassifier) Converged() bool {
	return o.Converges
}

// Fits returns the recorded fit calls
func (o *OracleClassifier) Fits() []FitCall {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]FitCall(nil), o.fits...)
}

// StaticReader serves a fixed dataset regardless of path
type StaticReader struct {
	X     va.Frame
	Y     va.Series
	Err   error
	Paths []string
}

var _ ports.DatasetReader = (*StaticReader)(nil)

func (r *StaticReader) ReadDataset(ctx context.Context, path string) (va.Frame, va.Series, error) {
	r.Paths = append(r.Paths, path)
	if r.Err != nil {
		return va.Frame{}, va.Series{}, r.Err
	}
	return r.X, r.Y, nil
}
