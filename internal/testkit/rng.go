package testkit

import (
	"context"
	"math/rand"
)

// RNGAdapter implements the RNGPort interface with math/rand sources
type RNGAdapter struct{}

// SeededStream creates a deterministic random number generator for a named operation
func (r *RNGAdapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rand.New(rand.NewSource(seed)), nil
}

// Stream creates a deterministic RNG stream by mixing scope and key into the base seed
func (r *RNGAdapter) Stream(ctx context.Context, scope, key string, baseSeed int64) (*rand.Rand, error) {
	seed := baseSeed
	if scope != "" {
		seed = int64(hashString(scope)) + seed
	}
	if key != "" {
		seed = int64(hashString(key)) + seed
	}
	return r.SeededStream(ctx, scope+"/"+key, seed)
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2
	}
	return hash
}
