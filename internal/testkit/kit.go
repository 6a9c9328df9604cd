package testkit

import (
	"context"

	"gobandit/domain/reward"
	"gobandit/ports"
)

// TestKit provides in-memory adapters and synthetic reward scenarios
type TestKit struct {
	ledger *InMemoryRunLedger // Shared ledger instance
	rng    *RNGAdapter
}

// NewTestKit creates a new test kit instance
func NewTestKit() *TestKit {
	return &TestKit{
		ledger: NewInMemoryRunLedger(),
		rng:    &RNGAdapter{},
	}
}

// RNGAdapter returns the deterministic RNG adapter
func (t *TestKit) RNGAdapter() ports.RNGPort {
	return t.rng
}

// RunLedger returns the shared in-memory run ledger
func (t *TestKit) RunLedger() ports.RunLedger {
	return t.ledger
}

// AbruptShiftSequence generates the classic swap scenario: arm 0 pays with probability p
// for the first half and arm 1 pays with probability p for the second half
func (t *TestKit) AbruptShiftSequence(ctx context.Context, name string, rounds int, p float64, seed int64) (*reward.Sequence, error) {
	gen := NewRewardGenerator(t.rng, GeneratorConfig{
		Name:     name,
		Segments: AbruptShift(rounds, p),
		Seed:     seed,
	})
	return gen.Generate(ctx)
}
