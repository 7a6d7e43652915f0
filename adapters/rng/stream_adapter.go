package rng

import (
	"context"
	"math/rand/v2"

	"vaeval/ports"
)

// StreamAdapter implements ports.RNGPort with PCG generators whose seeds are
// derived by hashing the stream coordinates into the base seed.
type StreamAdapter struct{}

var _ ports.RNGPort = (*StreamAdapter)(nil)

// NewStreamAdapter creates an RNG adapter
func NewStreamAdapter() *StreamAdapter {
	return &StreamAdapter{}
}

// SeededStream creates a deterministic random number generator for a named operation
func (a *StreamAdapter) SeededStream(ctx context.Context, name string, seed uint64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rand.New(rand.NewPCG(seed, hashString(name))), nil
}

// Stream creates a deterministic RNG stream for a purpose within one shard of a run
func (a *StreamAdapter) Stream(ctx context.Context, runID, purpose, shardKey string, baseSeed uint64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seed := baseSeed
	if runID != "" {
		seed += hashString(runID)
	}
	if purpose != "" {
		seed += hashString(purpose)
	}
	if shardKey != "" {
		seed += hashString(shardKey)
	}
	return rand.New(rand.NewPCG(seed, hashString(purpose+"/"+shardKey))), nil
}

// hashString is djb2 widened to 64 bits
func hashString(s string) uint64 {
	var hash uint64 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint64(c)
	}
	return hash
}
