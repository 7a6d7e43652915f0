package ports

import (
	"context"
	"math/rand/v2"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed uint64) (*rand.Rand, error)

	// Stream creates a deterministic RNG stream for one purpose within one shard of a run.
	// The same (runID, purpose, shardKey, baseSeed) always yields the same sequence, so
	// shards resample identically however they are scheduled.
	Stream(ctx context.Context, runID, purpose, shardKey string, baseSeed uint64) (*rand.Rand, error)
}
