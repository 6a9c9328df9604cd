package ports

import (
	"context"

	"gobandit/domain/reward"
)

// RewardSourcePort loads externally supplied reward sequences
type RewardSourcePort interface {
	// Load reads one sequence; the sequence name is derived from the source
	Load(ctx context.Context, path string) (*reward.Sequence, error)
}
