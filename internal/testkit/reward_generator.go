package testkit

import (
	"context"
	"fmt"

	"gobandit/domain/core"
	"gobandit/domain/reward"
	"gobandit/ports"
)

// Segment is a stationary stretch of rounds with fixed per-arm success probabilities
type Segment struct {
	Length int                   `json:"length"`
	P      [core.NumArms]float64 `json:"p"`
}

// GeneratorConfig configures a piecewise-stationary Bernoulli reward sequence
type GeneratorConfig struct {
	Name     string    `json:"name"`
	Segments []Segment `json:"segments"`
	Seed     int64     `json:"seed"`
}

// AbruptShift returns two segments of rounds/2 with the arms' probabilities swapped
func AbruptShift(rounds int, p float64) []Segment {
	first := rounds / 2
	return []Segment{
		{Length: first, P: [core.NumArms]float64{p, 1 - p}},
		{Length: rounds - first, P: [core.NumArms]float64{1 - p, p}},
	}
}

// Alternating returns n segments of the given length that swap the arms each time
func Alternating(n, length int, p float64) []Segment {
	segments := make([]Segment, n)
	for i := range segments {
		if i%2 == 0 {
			segments[i] = Segment{Length: length, P: [core.NumArms]float64{p, 1 - p}}
		} else {
			segments[i] = Segment{Length: length, P: [core.NumArms]float64{1 - p, p}}
		}
	}
	return segments
}

// RewardGenerator draws 0/1 rewards for both arms every round
type RewardGenerator struct {
	rng    ports.RNGPort
	config GeneratorConfig
}

// NewRewardGenerator creates a generator that draws from a stream keyed by the sequence name
func NewRewardGenerator(rng ports.RNGPort, config GeneratorConfig) *RewardGenerator {
	return &RewardGenerator{rng: rng, config: config}
}

// Generate produces the full sequence; the same config always yields the same rows
func (g *RewardGenerator) Generate(ctx context.Context) (*reward.Sequence, error) {
	total := 0
	for i, s := range g.config.Segments {
		if s.Length < 0 {
			return nil, fmt.Errorf("segment %d has negative length", i)
		}
		total += s.Length
	}

	stream, err := g.rng.Stream(ctx, "rewards", g.config.Name, g.config.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to open reward stream: %w", err)
	}

	rows := make([]reward.Row, 0, total)
	for _, s := range g.config.Segments {
		for i := 0; i < s.Length; i++ {
			var row reward.Row
			for a := 0; a < core.NumArms; a++ {
				if stream.Float64() < s.P[a] {
					row[a] = 1.0
				}
			}
			rows = append(rows, row)
		}
	}
	return reward.NewSequence(g.config.Name, rows)
}
