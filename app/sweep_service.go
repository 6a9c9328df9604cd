package app

import (
	"context"
	"fmt"

	"gobandit/domain/reward"
	"gobandit/domain/run"
	"gobandit/internal"
	"gobandit/internal/bandit"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// SweepService evaluates every (sequence, seed) pair in parallel.
// Each run owns its Ensemble, so runs share nothing but the ledger.
type SweepService struct {
	evaluator *EvaluationService
	workers   int64
	logger    *internal.Logger
}

// SweepRequest defines the grid of runs
type SweepRequest struct {
	Sequences []*reward.Sequence
	Seeds     []int64
	Window    int
	Council   []bandit.ExpertConfig
	Persist   bool
}

// SweepResult holds every run (sequence-major, seed-minor) and one summary per sequence
type SweepResult struct {
	Runs      []*run.Result `json:"runs"`
	Summaries []run.Summary `json:"summaries"`
}

// NewSweepService creates a sweep bounded to workers concurrent runs
func NewSweepService(evaluator *EvaluationService, workers int, logger *internal.Logger) *SweepService {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &SweepService{evaluator: evaluator, workers: int64(workers), logger: logger.Named("sweep")}
}

// Run evaluates the grid and stops at the first failing run
func (s *SweepService) Run(ctx context.Context, req SweepRequest) (*SweepResult, error) {
	if len(req.Sequences) == 0 || len(req.Seeds) == 0 {
		return nil, fmt.Errorf("sweep needs at least one sequence and one seed")
	}

	runs := make([]*run.Result, len(req.Sequences)*len(req.Seeds))
	sem := semaphore.NewWeighted(s.workers)
	g, gctx := errgroup.WithContext(ctx)

	for i, seq := range req.Sequences {
		for j, seed := range req.Seeds {
			if err := sem.Acquire(gctx, 1); err != nil {
				break
			}
			slot, seq, seed := i*len(req.Seeds)+j, seq, seed
			g.Go(func() error {
				defer sem.Release(1)
				result, err := s.evaluator.Evaluate(gctx, seq, EvaluateRequest{
					Seed:    seed,
					Window:  req.Window,
					Council: req.Council,
					Persist: req.Persist,
				})
				if err != nil {
					return fmt.Errorf("%s seed=%d: %w", seq.Name, seed, err)
				}
				runs[slot] = result
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &SweepResult{Runs: runs}
	for i, seq := range req.Sequences {
		summary, err := Summarize(seq.Name, runs[i*len(req.Seeds):(i+1)*len(req.Seeds)])
		if err != nil {
			return nil, err
		}
		s.logger.Info("%s: mean %.1f ± %.1f over %d seeds", summary.Sequence, summary.Mean, summary.StdDev, summary.Runs)
		out.Summaries = append(out.Summaries, summary)
	}
	return out, nil
}

// Summarize computes total-reward statistics over runs of one sequence
func Summarize(sequence string, runs []*run.Result) (run.Summary, error) {
	totals := make(stats.Float64Data, 0, len(runs))
	for _, r := range runs {
		totals = append(totals, r.TotalReward)
	}
	summary := run.Summary{Sequence: sequence, Runs: len(totals)}
	if len(totals) == 0 {
		return summary, nil
	}

	var err error
	if summary.Mean, err = stats.Mean(totals); err != nil {
		return summary, err
	}
	if summary.StdDev, err = stats.StandardDeviation(totals); err != nil {
		return summary, err
	}
	if summary.Min, err = stats.Min(totals); err != nil {
		return summary, err
	}
	if summary.Max, err = stats.Max(totals); err != nil {
		return summary, err
	}
	if summary.Median, err = stats.Median(totals); err != nil {
		return summary, err
	}
	if summary.P10, err = stats.PercentileNearestRank(totals, 10); err != nil {
		return summary, err
	}
	if summary.P90, err = stats.PercentileNearestRank(totals, 90); err != nil {
		return summary, err
	}
	return summary, nil
}
