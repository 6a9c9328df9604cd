package bandit

import (
	"math"
	"math/rand"
	"testing"

	"gobandit/domain/core"
	"gobandit/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExpert(t *testing.T, threshold, drift float64, seed int64) *Expert {
	t.Helper()
	e, err := NewExpert(NewExpertConfig(threshold, drift, seed))
	require.NoError(t, err)
	return e
}

func assertInitialBeliefs(t *testing.T, s ExpertState) {
	t.Helper()
	assert.Equal(t, [2]float64{1, 1}, s.Alpha)
	assert.Equal(t, [2]float64{1, 1}, s.Beta)
	assert.Equal(t, [2]float64{0.5, 0.5}, s.Estimate)
	assert.Equal(t, [2]int{0, 0}, s.Count)
	assert.Equal(t, [2]float64{0, 0}, s.GPlus)
	assert.Equal(t, [2]float64{0, 0}, s.GMinus)
}

func TestNewExpertValidation(t *testing.T) {
	tests := []struct {
		name        string
		cfg         ExpertConfig
		expectError bool
	}{
		{"Valid", NewExpertConfig(2.5, 0.15, 0), false},
		{"Zero drift allowed", NewExpertConfig(2.5, 0, 0), false},
		{"Three arms", ExpertConfig{Arms: 3, Threshold: 2.5, Drift: 0.1}, true},
		{"Unset arms", ExpertConfig{Threshold: 2.5, Drift: 0.1}, true},
		{"Zero threshold", NewExpertConfig(0, 0.1, 0), true},
		{"Negative threshold", NewExpertConfig(-1, 0.1, 0), true},
		{"NaN threshold", NewExpertConfig(math.NaN(), 0.1, 0), true},
		{"Negative drift", NewExpertConfig(2.5, -0.01, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewExpert(tt.cfg)
			if tt.expectError {
				require.Error(t, err)
				assert.Nil(t, e)
				assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
				return
			}
			require.NoError(t, err)
			assertInitialBeliefs(t, e.State())
		})
	}
}

func TestExpertMirrorsPosterior(t *testing.T) {
	e := newTestExpert(t, 1e9, 0.1, 1)

	_, err := e.Observe(core.ArmZero, 1.0)
	require.NoError(t, err)
	s := e.State()
	assert.Equal(t, [2]float64{2, 1}, s.Alpha)
	assert.Equal(t, [2]float64{1, 2}, s.Beta)

	_, err = e.Observe(core.ArmOne, 0.2)
	require.NoError(t, err)
	s = e.State()
	assert.Equal(t, [2]float64{3, 1}, s.Alpha)
	assert.Equal(t, [2]float64{1, 3}, s.Beta)

	// 0.5 counts as a success
	_, err = e.Observe(core.ArmOne, 0.5)
	require.NoError(t, err)
	s = e.State()
	assert.Equal(t, [2]float64{3, 2}, s.Alpha)
	assert.Equal(t, [2]float64{2, 3}, s.Beta)
}

func TestExpertMirrorsRunningMean(t *testing.T) {
	e := newTestExpert(t, 1e9, 0.1, 1)

	_, err := e.Observe(core.ArmZero, 0.8)
	require.NoError(t, err)
	s := e.State()
	assert.Equal(t, [2]int{1, 1}, s.Count)
	assert.InDelta(t, 0.8, s.Estimate[0], 1e-12)
	assert.InDelta(t, 0.2, s.Estimate[1], 1e-12)

	_, err = e.Observe(core.ArmZero, 0.4)
	require.NoError(t, err)
	s = e.State()
	assert.Equal(t, [2]int{2, 2}, s.Count)
	assert.InDelta(t, 0.6, s.Estimate[0], 1e-12)
	assert.InDelta(t, 0.4, s.Estimate[1], 1e-12)
}

func TestExpertCUSUMUsesUpdatedEstimate(t *testing.T) {
	e := newTestExpert(t, 1e9, 0.05, 1)

	// First observation sets each estimate to its value, so residuals are zero.
	_, err := e.Observe(core.ArmZero, 1.0)
	require.NoError(t, err)
	s := e.State()
	assert.Equal(t, [2]float64{0, 0}, s.GPlus)
	assert.Equal(t, [2]float64{0, 0}, s.GMinus)

	// estimate[0] = 0.5, residual -0.5 on arm 0 and +0.5 on arm 1
	_, err = e.Observe(core.ArmZero, 0.0)
	require.NoError(t, err)
	s = e.State()
	assert.InDelta(t, 0.0, s.GPlus[0], 1e-12)
	assert.InDelta(t, 0.45, s.GMinus[0], 1e-12)
	assert.InDelta(t, 0.45, s.GPlus[1], 1e-12)
	assert.InDelta(t, 0.0, s.GMinus[1], 1e-12)
}

func TestExpertCountsGrowByTwo(t *testing.T) {
	e := newTestExpert(t, 1e9, 0.1, 3)
	rng := rand.New(rand.NewSource(11))

	for i := 0; i < 500; i++ {
		before := e.State().Count
		_, err := e.Observe(core.Arm(rng.Intn(2)), rng.Float64())
		require.NoError(t, err)
		after := e.State().Count
		assert.Equal(t, before[0]+before[1]+2, after[0]+after[1], "round %d", i)
	}
}

func TestExpertPosteriorNeverBelowOne(t *testing.T) {
	e := newTestExpert(t, 2.5, 0.15, 5)
	rng := rand.New(rand.NewSource(5))

	for i := 0; i < 2000; i++ {
		p := 0.8
		if (i/150)%2 == 1 {
			p = 0.2
		}
		reward := 0.0
		if rng.Float64() < p {
			reward = 1.0
		}
		_, err := e.Observe(e.SuggestArm(), reward)
		require.NoError(t, err)

		s := e.State()
		for a := 0; a < core.NumArms; a++ {
			require.GreaterOrEqual(t, s.Alpha[a], 1.0)
			require.GreaterOrEqual(t, s.Beta[a], 1.0)
			require.GreaterOrEqual(t, s.Estimate[a], 0.0)
			require.LessOrEqual(t, s.Estimate[a], 1.0)
		}
	}
	assert.Greater(t, e.Resets(), 0, "alternating regimes should trigger at least one reset")
}

// A constant stream never moves the detector: the first mirrored update sets
// each estimate exactly to its observed value and every later residual is zero.
func TestExpertConstantStreamDoesNotReset(t *testing.T) {
	e := newTestExpert(t, 2.5, 0.15, 0)

	for i := 0; i < 20; i++ {
		reset, err := e.Observe(core.ArmZero, 1.0)
		require.NoError(t, err)
		assert.False(t, reset, "round %d", i)
	}
	s := e.State()
	assert.Equal(t, [2]float64{1, 0}, s.Estimate)
	assert.Equal(t, [2]float64{0, 0}, s.GPlus)
	assert.Equal(t, [2]float64{0, 0}, s.GMinus)
	assert.Equal(t, [2]float64{21, 1}, s.Alpha)
	assert.Equal(t, [2]float64{1, 21}, s.Beta)
}

func TestExpertResetsAfterShift(t *testing.T) {
	e := newTestExpert(t, 2.5, 0.15, 0)

	for i := 0; i < 20; i++ {
		_, err := e.Observe(core.ArmZero, 1.0)
		require.NoError(t, err)
	}

	// g_minus[0] after k failures: 0.80, 1.56, 2.28, 2.96 -> the fourth crosses 2.5
	for k := 1; k <= 3; k++ {
		reset, err := e.Observe(core.ArmZero, 0.0)
		require.NoError(t, err)
		require.False(t, reset, "failure %d", k)
	}
	s := e.State()
	assert.InDelta(t, 2.2810, s.GMinus[0], 1e-3)
	assert.InDelta(t, 2.2810, s.GPlus[1], 1e-3)

	reset, err := e.Observe(core.ArmZero, 0.0)
	require.NoError(t, err)
	require.True(t, reset)
	assert.Equal(t, 1, e.Resets())

	s = e.State()
	assertInitialBeliefs(t, s)
	assert.Equal(t, 2.5, s.Threshold)
	assert.Equal(t, 0.15, s.Drift)
}

func TestExpertDeterminism(t *testing.T) {
	a := newTestExpert(t, 3.0, 0.1, 42)
	b := newTestExpert(t, 3.0, 0.1, 42)
	rng := rand.New(rand.NewSource(9))

	for i := 0; i < 500; i++ {
		armA, armB := a.SuggestArm(), b.SuggestArm()
		require.Equal(t, armA, armB, "round %d", i)

		reward := float64(rng.Intn(2))
		_, err := a.Observe(armA, reward)
		require.NoError(t, err)
		_, err = b.Observe(armB, reward)
		require.NoError(t, err)
	}
	assert.Equal(t, a.State(), b.State())
}

func TestExpertGeneratorsAreIsolated(t *testing.T) {
	a := newTestExpert(t, 3.0, 0.1, 42)
	b := newTestExpert(t, 3.0, 0.1, 42)

	// Drawing from a must not advance b's stream.
	for i := 0; i < 10; i++ {
		a.SuggestArm()
	}
	c := newTestExpert(t, 3.0, 0.1, 42)
	for i := 0; i < 50; i++ {
		assert.Equal(t, c.SuggestArm(), b.SuggestArm())
	}
}

func TestExpertSuggestsLearnedArm(t *testing.T) {
	e := newTestExpert(t, 1e9, 0.1, 8)
	for i := 0; i < 30; i++ {
		_, err := e.Observe(core.ArmOne, 1.0)
		require.NoError(t, err)
	}
	for i := 0; i < 100; i++ {
		assert.Equal(t, core.ArmOne, e.SuggestArm())
	}
}

func TestExpertRejectsInvalidArm(t *testing.T) {
	e := newTestExpert(t, 2.5, 0.15, 0)

	for _, arm := range []core.Arm{-1, 2, 7} {
		reset, err := e.Observe(arm, 1.0)
		assert.ErrorIs(t, err, core.ErrInvalidArm)
		assert.False(t, reset)
	}
	assertInitialBeliefs(t, e.State())
}

func TestExpertPassesThroughOutOfRangeRewards(t *testing.T) {
	e := newTestExpert(t, 1e9, 0.1, 0)

	_, err := e.Observe(core.ArmZero, 1.5)
	require.NoError(t, err)
	s := e.State()
	assert.InDelta(t, 1.5, s.Estimate[0], 1e-12)
	assert.InDelta(t, -0.5, s.Estimate[1], 1e-12)
}
