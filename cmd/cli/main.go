package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gobandit/app"
	"gobandit/domain/reward"
	"gobandit/domain/run"
	"gobandit/internal"
	"gobandit/internal/config"
	"gobandit/internal/container"
	"gobandit/internal/testkit"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "gobandit-cli",
		Short: "gobandit CLI for offline evaluation of the change-aware ensemble",
	}

	rootCmd.AddCommand(
		newEvaluateCmd(),
		newSimulateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runOptions are the flags shared by evaluate and simulate
type runOptions struct {
	seed    int64
	seedSet bool
	seeds   int
	window  int
	persist bool
	asJSON  bool
}

func (o *runOptions) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&o.seed, "seed", 0, "First ensemble seed (default BANDIT_SEED)")
	cmd.Flags().IntVar(&o.seeds, "seeds", 1, "Number of consecutive seeds to evaluate per sequence")
	cmd.Flags().IntVar(&o.window, "window", 0, "Quality window length (default BANDIT_WINDOW)")
	cmd.Flags().BoolVar(&o.persist, "persist", false, "Store results in the run ledger (Postgres when DATABASE_URL is set)")
	cmd.Flags().BoolVar(&o.asJSON, "json", false, "Print results as JSON")
}

func (o *runOptions) seedList() []int64 {
	n := o.seeds
	if n < 1 {
		n = 1
	}
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = o.seed + int64(i)
	}
	return seeds
}

func newEvaluateCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "evaluate [files...]",
		Short: "Play the ensemble against recorded reward sequences",
		Long: `Play a fresh ensemble against each reward file and report the total reward.

Files are CSV or XLSX with one row per round and one column per arm
(a non-numeric first row is treated as a header), or NumPy .npy files
holding a (T, 2) array.

Example: gobandit-cli evaluate rwd_seq_example_01.npy rwd_seq_02.csv --seeds 20`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.seedSet = cmd.Flags().Changed("seed")
			c, err := newContainer(cmd.Context(), opts.persist)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			seqs := make([]*reward.Sequence, 0, len(args))
			for _, path := range args {
				seq, err := c.Rewards.Load(cmd.Context(), path)
				if err != nil {
					return err
				}
				seq.Name = filepath.Base(path)
				seqs = append(seqs, seq)
			}
			return runSweep(cmd.Context(), cmd.OutOrStdout(), c, seqs, &opts)
		},
	}

	opts.register(cmd)
	return cmd
}

func newSimulateCmd() *cobra.Command {
	var opts runOptions
	var rounds, segments int
	var p float64
	var dataSeed int64

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play the ensemble against synthetic piecewise-stationary sequences",
		Long: `Generate Bernoulli reward sequences whose best arm swaps between segments
and evaluate the ensemble on them.

With --segments 2 this is the classic abrupt shift at the midpoint.

Example: gobandit-cli simulate --rounds 400 --p 0.9 --segments 4 --seeds 50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if segments < 1 || rounds < segments {
				return fmt.Errorf("need 1 <= segments <= rounds, got segments=%d rounds=%d", segments, rounds)
			}
			opts.seedSet = cmd.Flags().Changed("seed")
			c, err := newContainer(cmd.Context(), opts.persist)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			name := fmt.Sprintf("synthetic-%dx%d-p%.2f", segments, rounds/segments, p)
			gen := testkit.NewRewardGenerator(c.TestKit.RNGAdapter(), testkit.GeneratorConfig{
				Name:     name,
				Segments: testkit.Alternating(segments, rounds/segments, p),
				Seed:     dataSeed,
			})
			seq, err := gen.Generate(cmd.Context())
			if err != nil {
				return err
			}
			return runSweep(cmd.Context(), cmd.OutOrStdout(), c, []*reward.Sequence{seq}, &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().IntVar(&rounds, "rounds", 400, "Total rounds")
	cmd.Flags().IntVar(&segments, "segments", 2, "Number of stationary segments")
	cmd.Flags().Float64Var(&p, "p", 0.9, "Success probability of the better arm")
	cmd.Flags().Int64Var(&dataSeed, "data-seed", 1, "Seed for the reward draws")
	return cmd
}

func newContainer(ctx context.Context, persist bool) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	// keep stdout clean for results unless asked otherwise
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.Log.Level = internal.LogLevelWarn
	}

	c, err := container.New(cfg, nil)
	if err != nil {
		return nil, err
	}
	if persist && cfg.Database.Enabled() {
		db, err := container.OpenDatabase(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := c.InitWithDatabase(db); err != nil {
			db.Close()
			return nil, err
		}
	}
	return c, nil
}

func runSweep(ctx context.Context, w io.Writer, c *container.Container, seqs []*reward.Sequence, opts *runOptions) error {
	window := opts.window
	if window == 0 {
		window = c.Config.Bandit.Window
	}
	if !opts.seedSet {
		opts.seed = c.Config.Bandit.Seed
	}

	result, err := c.Sweeps.Run(ctx, app.SweepRequest{
		Sequences: seqs,
		Seeds:     opts.seedList(),
		Window:    window,
		Persist:   opts.persist,
	})
	if err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printResult(w, result, len(opts.seedList()))
	return nil
}

func printResult(w io.Writer, result *app.SweepResult, seeds int) {
	if seeds == 1 {
		for _, r := range result.Runs {
			fmt.Fprintf(w, "%s => Total # of rewards : %d\n", r.Sequence, int(r.TotalReward))
		}
		return
	}
	for _, s := range result.Summaries {
		printSummary(w, s)
	}
}

func printSummary(w io.Writer, s run.Summary) {
	fmt.Fprintf(w, "%s => mean %.1f, std %.1f, min %.0f, median %.1f, max %.0f over %d seeds\n",
		s.Sequence, s.Mean, s.StdDev, s.Min, s.Median, s.Max, s.Runs)
}
