package app

import (
	"context"
	"fmt"
	"time"

	"gobandit/domain/core"
	"gobandit/domain/reward"
	"gobandit/domain/run"
	"gobandit/internal"
	"gobandit/internal/bandit"
	"gobandit/ports"
)

// EvaluationService plays an Ensemble against recorded or synthetic reward sequences
type EvaluationService struct {
	ledger ports.RunLedgerWriter
	logger *internal.Logger
}

// EvaluateRequest defines one run. A zero Window means bandit.DefaultWindow.
type EvaluateRequest struct {
	Seed    int64
	Window  int
	Council []bandit.ExpertConfig
	Trace   bool // keep every round in the result
	Persist bool // store the result in the run ledger
}

// NewEvaluationService creates an evaluation service; ledger may be nil when nothing is persisted
func NewEvaluationService(ledger ports.RunLedgerWriter, logger *internal.Logger) *EvaluationService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &EvaluationService{ledger: ledger, logger: logger.Named("evaluator")}
}

// Evaluate runs select -> reward -> update once per row of seq with a fresh Ensemble
func (s *EvaluationService) Evaluate(ctx context.Context, seq *reward.Sequence, req EvaluateRequest) (*run.Result, error) {
	start := time.Now()
	cfg := req.ensembleConfig()

	en, err := bandit.NewEnsemble(cfg, bandit.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}

	result := &run.Result{
		ID:          core.NewRunID(),
		Sequence:    seq.Name,
		Seed:        req.Seed,
		Window:      cfg.Window,
		Rounds:      seq.Len(),
		Fingerprint: run.NewFingerprint(seq.Name, seq.Len(), req.Seed, cfg.Window, fingerprintMembers(cfg.Members())),
	}
	if req.Trace {
		result.Trace = make([]run.Round, 0, seq.Len())
	}

	leader := en.Leader()
	for t := 0; t < seq.Len(); t++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("evaluation of %s cancelled at round %d: %w", seq.Name, t, err)
		}

		arm := en.SelectArm()
		r, err := seq.Reward(t, arm)
		if err != nil {
			return nil, err
		}
		if err := en.Update(arm, r); err != nil {
			return nil, err
		}

		result.TotalReward += r
		if arm == core.ArmZero {
			result.PullsArm0++
		} else {
			result.PullsArm1++
		}
		if next := en.Leader(); next != leader {
			result.LeaderSwitches++
			leader = next
		}
		if req.Trace {
			result.Trace = append(result.Trace, run.Round{Round: t, Arm: arm, Reward: r, Leader: leader})
		}
	}

	result.Resets = en.TotalResets()
	result.FinalLeader = en.Leader()
	result.DurationMS = time.Since(start).Milliseconds()
	result.CreatedAt = time.Now().UTC()

	s.logger.Info("%s seed=%d => total reward %.0f / %d rounds (resets=%d, leader switches=%d)",
		seq.Name, req.Seed, result.TotalReward, result.Rounds, result.Resets, result.LeaderSwitches)

	if req.Persist && s.ledger != nil {
		if err := s.ledger.SaveRun(ctx, result); err != nil {
			return nil, fmt.Errorf("failed to store run %s: %w", result.ID, err)
		}
	}
	return result, nil
}

func (req EvaluateRequest) ensembleConfig() bandit.EnsembleConfig {
	window := req.Window
	if window == 0 {
		window = bandit.DefaultWindow
	}
	return bandit.EnsembleConfig{Seed: req.Seed, Window: window, Council: req.Council}
}

func fingerprintMembers(council []bandit.ExpertConfig) []run.Member {
	members := make([]run.Member, len(council))
	for i, c := range council {
		members[i] = run.Member{Threshold: c.Threshold, Drift: c.Drift, Seed: c.Seed}
	}
	return members
}
