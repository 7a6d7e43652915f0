package testkit

import (
	"fmt"
	"math/rand/v2"

	"vaeval/domain/va"
)

// VAGeneratorConfig configures the synthetic verbal autopsy generator
type VAGeneratorConfig struct {
	Causes       []va.Cause
	Counts       []int   // deaths per cause, co-indexed with Causes
	SymptomCount int     // number of binary symptom columns
	Signal       float64 // endorsement probability of a cause's own symptoms
	Noise        float64 // endorsement probability of every other symptom
	Seed         uint64
}

// DefaultVAConfig returns a small, well separated three-cause dataset
func DefaultVAConfig() VAGeneratorConfig {
	return VAGeneratorConfig{
		Causes:       []va.Cause{"cause1", "cause2", "cause3"},
		Counts:       []int{50, 30, 20},
		SymptomCount: 9,
		Signal:       0.85,
		Noise:        0.1,
		Seed:         42,
	}
}

// TwoCauseConfig returns 100 deaths split 70/30 between two causes
func TwoCauseConfig() VAGeneratorConfig {
	return VAGeneratorConfig{
		Causes:       []va.Cause{"cause1", "cause2"},
		Counts:       []int{70, 30},
		SymptomCount: 4,
		Signal:       0.9,
		Noise:        0.1,
		Seed:         42,
	}
}

// VADataGenerator produces symptom frames whose endorsement pattern depends
// on the cause of death. Symptom j belongs to cause j mod len(Causes).
type VADataGenerator struct {
	config VAGeneratorConfig
	rng    *rand.Rand
}

func NewVADataGenerator(config VAGeneratorConfig) *VADataGenerator {
	return &VADataGenerator{
		config: config,
		rng:    rand.New(rand.NewPCG(config.Seed, config.Seed)),
	}
}

// Generate returns features and labels indexed by ids "va0001", "va0002", ...
// Rows are grouped by cause in config order.
func (g *VADataGenerator) Generate() (va.Frame, va.Series, error) {
	if len(g.config.Causes) != len(g.config.Counts) {
		return va.Frame{}, va.Series{}, fmt.Errorf("got %d causes and %d counts", len(g.config.Causes), len(g.config.Counts))
	}

	columns := make([]string, g.config.SymptomCount)
	for j := range columns {
		columns[j] = fmt.Sprintf("s%d", j+1)
	}

	var index []string
	var rows [][]float64
	var labels []va.Cause
	for ci, cause := range g.config.Causes {
		for n := 0; n < g.config.Counts[ci]; n++ {
			index = append(index, fmt.Sprintf("va%04d", len(index)+1))
			rows = append(rows, g.symptoms(ci))
			labels = append(labels, cause)
		}
	}

	X, err := va.NewFrame(index, columns, rows)
	if err != nil {
		return va.Frame{}, va.Series{}, err
	}
	y, err := va.NewSeries(append([]string(nil), index...), labels)
	if err != nil {
		return va.Frame{}, va.Series{}, err
	}
	return X, y, nil
}

func (g *VADataGenerator) symptoms(causeIdx int) []float64 {
	row := make([]float64, g.config.SymptomCount)
	for j := range row {
		p := g.config.Noise
		if j%len(g.config.Causes) == causeIdx {
			p = g.config.Signal
		}
		if g.rng.Float64() < p {
			row[j] = 1
		}
	}
	return row
}
