package reward

import (
	"gobandit/domain/core"
)

// Row holds the reward each arm would pay in one round
type Row [core.NumArms]float64

// Sequence is an ordered list of per-round rewards, consumed one row per round
type Sequence struct {
	Name string `json:"name"`
	Rows []Row  `json:"rows"`
}

// NewSequence validates that the sequence has at least one round
func NewSequence(name string, rows []Row) (*Sequence, error) {
	if len(rows) == 0 {
		return nil, core.ErrEmptySequence
	}
	return &Sequence{Name: name, Rows: rows}, nil
}

// Len returns the number of rounds
func (s *Sequence) Len() int {
	return len(s.Rows)
}

// Reward returns what arm pays at round t
func (s *Sequence) Reward(t int, arm core.Arm) (float64, error) {
	if err := arm.Validate(); err != nil {
		return 0, err
	}
	return s.Rows[t][arm], nil
}

// BestTotal is the reward of an oracle that always plays the better arm
func (s *Sequence) BestTotal() float64 {
	total := 0.0
	for _, r := range s.Rows {
		if r[0] >= r[1] {
			total += r[0]
		} else {
			total += r[1]
		}
	}
	return total
}
