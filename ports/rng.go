package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for reproducible reward generation.
// Learners never draw from these streams; each Expert owns its own generator.
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// Stream derives a deterministic stream for one key within a scope,
	// so every synthetic sequence in a sweep gets an independent, replayable stream
	Stream(ctx context.Context, scope, key string, baseSeed int64) (*rand.Rand, error)
}
