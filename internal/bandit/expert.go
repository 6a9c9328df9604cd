package bandit

import (
	"gobandit/domain/core"
	"gobandit/internal"
	"gobandit/internal/errors"
)

// Expert is a mirrored Thompson sampler with a two-sided CUSUM detector per arm.
// A detected change wipes all beliefs; configuration and the generator stream survive.
//
// An Expert is not safe for concurrent use.
type Expert struct {
	cfg     ExpertConfig
	sampler *posteriorSampler
	logger  *internal.Logger

	alpha    [core.NumArms]float64
	beta     [core.NumArms]float64
	estimate [core.NumArms]float64
	count    [core.NumArms]int
	gPlus    [core.NumArms]float64
	gMinus   [core.NumArms]float64

	resets int
}

// ExpertState is a read-only snapshot of an Expert's beliefs
type ExpertState struct {
	Threshold float64               `json:"threshold"`
	Drift     float64               `json:"drift"`
	Alpha     [core.NumArms]float64 `json:"alpha"`
	Beta      [core.NumArms]float64 `json:"beta"`
	Estimate  [core.NumArms]float64 `json:"estimate"`
	Count     [core.NumArms]int     `json:"count"`
	GPlus     [core.NumArms]float64 `json:"g_plus"`
	GMinus    [core.NumArms]float64 `json:"g_minus"`
	Resets    int                   `json:"resets"`
}

// NewExpert creates an Expert with uniform priors and a generator seeded from cfg.Seed
func NewExpert(cfg ExpertConfig, opts ...Option) (*Expert, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid expert configuration")
	}
	o := applyOptions(opts)
	e := &Expert{
		cfg:     cfg,
		sampler: newPosteriorSampler(cfg.Seed),
		logger:  o.logger,
	}
	e.resetBeliefs()
	return e, nil
}

// SuggestArm draws one posterior sample per arm (arm 0 first) and returns the larger.
// Ties favor arm 0.
func (e *Expert) SuggestArm() core.Arm {
	s0 := e.sampler.beta(e.alpha[0], e.beta[0])
	s1 := e.sampler.beta(e.alpha[1], e.beta[1])
	if s0 >= s1 {
		return core.ArmZero
	}
	return core.ArmOne
}

// Observe incorporates a reward for the played arm and its mirrored counterpart.
// It reports whether the observation triggered a reset.
func (e *Expert) Observe(arm core.Arm, reward float64) (bool, error) {
	if err := arm.Validate(); err != nil {
		return false, err
	}
	other := arm.Other()
	virtual := 1.0 - reward

	if reward >= 0.5 {
		e.alpha[arm]++
		e.beta[other]++
	} else {
		e.beta[arm]++
		e.alpha[other]++
	}

	e.updateEstimate(arm, reward)
	e.updateEstimate(other, virtual)

	e.gPlus[arm], e.gMinus[arm] = cusumStep(e.gPlus[arm], e.gMinus[arm], reward-e.estimate[arm], e.cfg.Drift)
	e.gPlus[other], e.gMinus[other] = cusumStep(e.gPlus[other], e.gMinus[other], virtual-e.estimate[other], e.cfg.Drift)

	if !shouldReset(e.gPlus, e.gMinus, e.cfg.Threshold) {
		return false, nil
	}

	e.logger.Debug("change detected (threshold=%.2f drift=%.2f g+=%v g-=%v), resetting beliefs",
		e.cfg.Threshold, e.cfg.Drift, e.gPlus, e.gMinus)
	e.resetBeliefs()
	e.resets++
	return true, nil
}

// State returns a snapshot of the current beliefs
func (e *Expert) State() ExpertState {
	return ExpertState{
		Threshold: e.cfg.Threshold,
		Drift:     e.cfg.Drift,
		Alpha:     e.alpha,
		Beta:      e.beta,
		Estimate:  e.estimate,
		Count:     e.count,
		GPlus:     e.gPlus,
		GMinus:    e.gMinus,
		Resets:    e.resets,
	}
}

// Config returns the expert's configuration
func (e *Expert) Config() ExpertConfig {
	return e.cfg
}

// Resets returns how many times a change has been detected
func (e *Expert) Resets() int {
	return e.resets
}

func (e *Expert) updateEstimate(arm core.Arm, value float64) {
	e.count[arm]++
	e.estimate[arm] += (value - e.estimate[arm]) / float64(e.count[arm])
}

func (e *Expert) resetBeliefs() {
	for a := 0; a < core.NumArms; a++ {
		e.alpha[a], e.beta[a] = 1.0, 1.0
		e.estimate[a] = 0.5
		e.count[a] = 0
		e.gPlus[a], e.gMinus[a] = 0.0, 0.0
	}
}
