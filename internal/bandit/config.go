package bandit

import (
	"gobandit/domain/core"
	"gobandit/internal/errors"
)

// DefaultWindow is the number of quality rows an Ensemble remembers
const DefaultWindow = 120

// ExpertConfig configures one change-aware Thompson sampling strategy
type ExpertConfig struct {
	Arms      int     `json:"arms"`
	Threshold float64 `json:"threshold"`
	Drift     float64 `json:"drift"`
	Seed      int64   `json:"seed"`
}

// NewExpertConfig returns a two-armed configuration
func NewExpertConfig(threshold, drift float64, seed int64) ExpertConfig {
	return ExpertConfig{Arms: core.NumArms, Threshold: threshold, Drift: drift, Seed: seed}
}

// Validate checks the arm count and detector parameters
func (c ExpertConfig) Validate() error {
	if c.Arms != core.NumArms {
		return errors.ConfigInvalidf("expert supports exactly %d arms, got %d", core.NumArms, c.Arms)
	}
	if !(c.Threshold > 0) {
		return errors.ConfigInvalidf("threshold must be positive, got %v", c.Threshold)
	}
	if !(c.Drift >= 0) {
		return errors.ConfigInvalidf("drift must be non-negative, got %v", c.Drift)
	}
	return nil
}

// EnsembleConfig configures the meta-selector. An empty Council means DefaultCouncil(Seed).
type EnsembleConfig struct {
	Seed    int64          `json:"seed"`
	Window  int            `json:"window"`
	Council []ExpertConfig `json:"council,omitempty"`
}

// NewEnsembleConfig returns the default window and council for a seed
func NewEnsembleConfig(seed int64) EnsembleConfig {
	return EnsembleConfig{Seed: seed, Window: DefaultWindow}
}

// Validate checks the window and every council member
func (c EnsembleConfig) Validate() error {
	if c.Window <= 0 {
		return errors.ConfigInvalidf("window must be positive, got %d", c.Window)
	}
	for i, ec := range c.Council {
		if err := ec.Validate(); err != nil {
			return errors.Wrapf(err, "council member %d", i)
		}
	}
	return nil
}

// Members returns the configured council, or the default one when none is given
func (c EnsembleConfig) Members() []ExpertConfig {
	if len(c.Council) == 0 {
		return DefaultCouncil(c.Seed)
	}
	out := make([]ExpertConfig, len(c.Council))
	copy(out, c.Council)
	return out
}

// DefaultCouncil returns four experts tuned for different shift dynamics.
// Order matters: ties in scoring go to the earliest member.
func DefaultCouncil(seed int64) []ExpertConfig {
	return []ExpertConfig{
		NewExpertConfig(2.5, 0.15, seed),   // fast, noisy shifts
		NewExpertConfig(3.5, 0.12, seed+1), // moderate
		NewExpertConfig(4.0, 0.10, seed+2), // rare, persistent shifts
		NewExpertConfig(3.0, 0.10, seed+3), // generalist
	}
}
