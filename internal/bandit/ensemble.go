package bandit

import (
	"gobandit/domain/core"
	"gobandit/internal"
	"gobandit/internal/errors"
)

// Ensemble delegates arm choice to whichever council member has predicted the
// binarized reward best over the last Window rounds. Every member learns from
// every round, whether or not it was consulted.
//
// An Ensemble is not safe for concurrent use; callers sharing one must serialize access.
type Ensemble struct {
	window  int
	council []*Expert
	logger  *internal.Logger

	// history holds quality rows oldest first; sums caches its column totals.
	history [][]float64
	sums    []float64
	leader  int
}

// EnsembleState is a read-only snapshot of the meta-selector
type EnsembleState struct {
	Window      int           `json:"window"`
	HistoryLen  int           `json:"history_len"`
	Leader      int           `json:"leader"`
	QualitySums []float64     `json:"quality_sums"`
	Council     []ExpertState `json:"council"`
}

// NewEnsemble builds the council described by cfg
func NewEnsemble(cfg EnsembleConfig, opts ...Option) (*Ensemble, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid ensemble configuration")
	}
	o := applyOptions(opts)
	members := cfg.Members()

	council := make([]*Expert, 0, len(members))
	for i, mc := range members {
		e, err := NewExpert(mc, opts...)
		if err != nil {
			return nil, errors.Wrapf(err, "council member %d", i)
		}
		council = append(council, e)
	}

	return &Ensemble{
		window:  cfg.Window,
		council: council,
		logger:  o.logger,
		history: make([][]float64, 0, cfg.Window+1),
		sums:    make([]float64, len(council)),
	}, nil
}

// SelectArm asks the current leader for an arm. With no history the first member leads.
func (en *Ensemble) SelectArm() core.Arm {
	return en.council[en.Leader()].SuggestArm()
}

// Leader returns the council index with the highest windowed quality, lowest index on ties
func (en *Ensemble) Leader() int {
	if len(en.history) == 0 {
		return 0
	}
	best := 0
	for i := 1; i < len(en.sums); i++ {
		if en.sums[i] > en.sums[best] {
			best = i
		}
	}
	return best
}

// Update scores every member's fresh counterfactual suggestion against the outcome,
// slides the quality window, then lets every member observe (arm, reward).
func (en *Ensemble) Update(arm core.Arm, reward float64) error {
	if err := arm.Validate(); err != nil {
		return err
	}

	row := make([]float64, len(en.council))
	for i, e := range en.council {
		row[i] = quality(e.SuggestArm(), arm, reward)
	}
	en.push(row)

	for i, e := range en.council {
		reset, err := e.Observe(arm, reward)
		if err != nil {
			return errors.Wrapf(err, "council member %d", i)
		}
		if reset {
			en.logger.Trace("council member %d reset after %d total resets", i, e.Resets())
		}
	}

	if leader := en.Leader(); leader != en.leader {
		en.logger.Debug("leader changed %d -> %d (sums=%v)", en.leader, leader, en.sums)
		en.leader = leader
	}
	return nil
}

// quality is 1 when the suggestion would have predicted the binarized reward
func quality(suggested, played core.Arm, reward float64) float64 {
	success := reward >= 0.5
	if (suggested == played) == success {
		return 1.0
	}
	return 0.0
}

func (en *Ensemble) push(row []float64) {
	en.history = append(en.history, row)
	for i, q := range row {
		en.sums[i] += q
	}
	if len(en.history) > en.window {
		oldest := en.history[0]
		for i, q := range oldest {
			en.sums[i] -= q
		}
		en.history[0] = nil
		en.history = en.history[1:]
	}
}

// Size returns the number of council members
func (en *Ensemble) Size() int {
	return len(en.council)
}

// Window returns the history bound
func (en *Ensemble) Window() int {
	return en.window
}

// HistoryLen returns the number of quality rows currently held
func (en *Ensemble) HistoryLen() int {
	return len(en.history)
}

// QualitySums returns a copy of the per-member quality totals over the window
func (en *Ensemble) QualitySums() []float64 {
	out := make([]float64, len(en.sums))
	copy(out, en.sums)
	return out
}

// Expert returns a snapshot of council member i
func (en *Ensemble) Expert(i int) (ExpertState, error) {
	if i < 0 || i >= len(en.council) {
		return ExpertState{}, errors.InvalidInput("council index out of range")
	}
	return en.council[i].State(), nil
}

// TotalResets sums detected changes across the council
func (en *Ensemble) TotalResets() int {
	total := 0
	for _, e := range en.council {
		total += e.Resets()
	}
	return total
}

// State returns a snapshot of the window and every member
func (en *Ensemble) State() EnsembleState {
	council := make([]ExpertState, len(en.council))
	for i, e := range en.council {
		council[i] = e.State()
	}
	return EnsembleState{
		Window:      en.window,
		HistoryLen:  len(en.history),
		Leader:      en.Leader(),
		QualitySums: en.QualitySums(),
		Council:     council,
	}
}
