package bandit

import (
	"testing"

	"gobandit/domain/core"
	"gobandit/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnsemble(t *testing.T, seed int64, window int) *Ensemble {
	t.Helper()
	en, err := NewEnsemble(EnsembleConfig{Seed: seed, Window: window})
	require.NoError(t, err)
	return en
}

func TestNewEnsembleValidation(t *testing.T) {
	tests := []struct {
		name        string
		cfg         EnsembleConfig
		expectError bool
	}{
		{"Default council", NewEnsembleConfig(0), false},
		{"Custom council", EnsembleConfig{Window: 5, Council: []ExpertConfig{NewExpertConfig(1, 0, 1)}}, false},
		{"Zero window", EnsembleConfig{Window: 0}, true},
		{"Negative window", EnsembleConfig{Window: -4}, true},
		{"Bad member", EnsembleConfig{Window: 5, Council: []ExpertConfig{NewExpertConfig(1, 0, 1), NewExpertConfig(0, 0, 2)}}, true},
		{"Three-armed member", EnsembleConfig{Window: 5, Council: []ExpertConfig{{Arms: 3, Threshold: 1}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			en, err := NewEnsemble(tt.cfg)
			if tt.expectError {
				require.Error(t, err)
				assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 0, en.HistoryLen())
		})
	}
}

func TestDefaultCouncil(t *testing.T) {
	en := newTestEnsemble(t, 10, DefaultWindow)
	require.Equal(t, 4, en.Size())
	assert.Equal(t, DefaultWindow, en.Window())

	expected := []ExpertConfig{
		{Arms: 2, Threshold: 2.5, Drift: 0.15, Seed: 10},
		{Arms: 2, Threshold: 3.5, Drift: 0.12, Seed: 11},
		{Arms: 2, Threshold: 4.0, Drift: 0.10, Seed: 12},
		{Arms: 2, Threshold: 3.0, Drift: 0.10, Seed: 13},
	}
	for i, want := range expected {
		assert.Equal(t, want, en.council[i].Config(), "member %d", i)
	}
}

func TestEnsembleColdStartDelegatesToFirstMember(t *testing.T) {
	en := newTestEnsemble(t, 7, DefaultWindow)
	twin, err := NewExpert(DefaultCouncil(7)[0])
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		assert.Equal(t, 0, en.Leader())
		assert.Equal(t, twin.SuggestArm(), en.SelectArm(), "draw %d", i)
	}
}

func TestEnsembleSelectArmIsValid(t *testing.T) {
	en := newTestEnsemble(t, 3, DefaultWindow)
	for i := 0; i < 20; i++ {
		first, second := en.SelectArm(), en.SelectArm()
		assert.True(t, first.Valid())
		assert.True(t, second.Valid())
		require.NoError(t, en.Update(first, float64(i%2)))
	}
}

func TestEnsembleHistoryIsBounded(t *testing.T) {
	const window = 10
	en := newTestEnsemble(t, 1, window)

	for i := 1; i <= window+25; i++ {
		arm := en.SelectArm()
		require.NoError(t, en.Update(arm, 1.0))
		if i <= window {
			assert.Equal(t, i, en.HistoryLen())
		} else {
			assert.Equal(t, window, en.HistoryLen())
		}
		for _, s := range en.QualitySums() {
			assert.LessOrEqual(t, s, float64(en.HistoryLen()))
			assert.GreaterOrEqual(t, s, 0.0)
		}
	}
}

func TestEnsembleLeaderTieBreakAndEviction(t *testing.T) {
	en := newTestEnsemble(t, 0, 3)

	en.push([]float64{1, 1, 0, 0})
	assert.Equal(t, 0, en.Leader(), "tie between 0 and 1 goes to 0")

	en.push([]float64{0, 1, 0, 1})
	assert.Equal(t, 1, en.Leader())

	en.push([]float64{0, 0, 1, 1})
	assert.Equal(t, []float64{1, 2, 1, 2}, en.QualitySums())
	assert.Equal(t, 1, en.Leader(), "tie between 1 and 3 goes to 1")

	en.push([]float64{0, 0, 1, 1})
	assert.Equal(t, 3, en.HistoryLen())
	assert.Equal(t, []float64{0, 1, 2, 3}, en.QualitySums())
	assert.Equal(t, 3, en.Leader())
}

func TestQuality(t *testing.T) {
	tests := []struct {
		name      string
		suggested core.Arm
		played    core.Arm
		reward    float64
		want      float64
	}{
		{"agree and success", core.ArmZero, core.ArmZero, 1.0, 1},
		{"agree and failure", core.ArmZero, core.ArmZero, 0.0, 0},
		{"disagree and failure", core.ArmOne, core.ArmZero, 0.2, 1},
		{"disagree and success", core.ArmOne, core.ArmZero, 0.9, 0},
		{"half is success", core.ArmOne, core.ArmOne, 0.5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, quality(tt.suggested, tt.played, tt.reward))
		})
	}
}

func TestEnsembleUpdatePropagatesToEveryMember(t *testing.T) {
	en := newTestEnsemble(t, 2, DefaultWindow)

	require.NoError(t, en.Update(core.ArmOne, 1.0))
	for i := 0; i < en.Size(); i++ {
		s, err := en.Expert(i)
		require.NoError(t, err)
		assert.Equal(t, [2]int{1, 1}, s.Count, "member %d", i)
		assert.Equal(t, [2]float64{1, 2}, s.Alpha, "member %d", i)
		assert.Equal(t, [2]float64{2, 1}, s.Beta, "member %d", i)
	}

	_, err := en.Expert(en.Size())
	assert.Error(t, err)
}

func TestEnsembleRejectsInvalidArm(t *testing.T) {
	en := newTestEnsemble(t, 2, DefaultWindow)

	err := en.Update(core.Arm(2), 1.0)
	assert.ErrorIs(t, err, core.ErrInvalidArm)
	assert.Equal(t, 0, en.HistoryLen())
	s, err := en.Expert(0)
	require.NoError(t, err)
	assert.Equal(t, [2]int{0, 0}, s.Count)
}

func TestEnsembleDeterminism(t *testing.T) {
	a := newTestEnsemble(t, 99, 30)
	b := newTestEnsemble(t, 99, 30)

	for i := 0; i < 300; i++ {
		armA, armB := a.SelectArm(), b.SelectArm()
		require.Equal(t, armA, armB, "round %d", i)
		reward := 0.0
		if (i/50)%2 == 0 && armA == core.ArmZero || (i/50)%2 == 1 && armA == core.ArmOne {
			reward = 1.0
		}
		require.NoError(t, a.Update(armA, reward))
		require.NoError(t, b.Update(armB, reward))
	}
	assert.Equal(t, a.State(), b.State())
}

// Arm 0 pays for 200 rounds, then arm 1 pays for 200 rounds.
func TestEnsembleTracksSingleShift(t *testing.T) {
	en := newTestEnsemble(t, 0, DefaultWindow)

	const rounds = 400
	total := 0.0
	lateArmOne, late := 0, 0
	for t0 := 0; t0 < rounds; t0++ {
		good := core.ArmZero
		if t0 >= 200 {
			good = core.ArmOne
		}
		arm := en.SelectArm()
		reward := 0.0
		if arm == good {
			reward = 1.0
		}
		total += reward
		require.NoError(t, en.Update(arm, reward))

		if t0 >= 230 {
			late++
			if arm == core.ArmOne {
				lateArmOne++
			}
		}
	}

	assert.GreaterOrEqual(t, float64(lateArmOne)/float64(late), 0.95)
	assert.GreaterOrEqual(t, total, 360.0)
	assert.Equal(t, DefaultWindow, en.HistoryLen())
	assert.GreaterOrEqual(t, en.TotalResets(), en.Size(), "every member should detect the shift")

	sums := en.QualitySums()
	leader := en.Leader()
	for i, s := range sums {
		assert.LessOrEqual(t, s, sums[leader], "member %d", i)
	}
	assert.GreaterOrEqual(t, sums[leader], 110.0)
}
