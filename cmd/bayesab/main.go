package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"bayesab/adapters/rng"
	"bayesab/app"
	"bayesab/domain/bayes"
	"bayesab/domain/core"
	"bayesab/internal"
	"bayesab/internal/config"
	"bayesab/internal/errors"
	"bayesab/internal/simulation"
	"bayesab/internal/summary"
	"bayesab/internal/testkit"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:           "bayesab",
		Short:         "Bayesian A/B comparison engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newCalibrateCmd(),
		newFamiliesCmd(),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error [%s]: %v\n", errors.GetCode(err), err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, *internal.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level))
	return cfg, logger, nil
}

func newRunCmd() *cobra.Command {
	var (
		testID    string
		dist      string
		sampleA   string
		sampleB   string
		priors    string
		sims      int
		seed      uint64
		level     float64
		quantiles string
		threshold float64
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compare two observed samples",
		Long: `Update the prior with each sample, draw from both posteriors and report
P(A > B), the expected loss of choosing each group and a credible interval
of A - B.

Defaults for --sims, --seed and --level come from BAYESAB_SIMULATIONS,
BAYESAB_SEED and BAYESAB_CRED_LEVEL.

Example:
  bayesab run --dist bernoulli --a 1,0,1,1,0 --b 0,0,1,0,0 --prior alpha=1,beta=1 --threshold 0.01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			d, err := bayes.ParseDistribution(dist)
			if err != nil {
				return errors.Wrap(err, "--dist")
			}
			a, err := parseSample(sampleA)
			if err != nil {
				return errors.Wrap(err, "--a")
			}
			b, err := parseSample(sampleB)
			if err != nil {
				return errors.Wrap(err, "--b")
			}
			p, err := parseParams(priors)
			if err != nil {
				return errors.Wrap(err, "--prior")
			}
			extra, err := parseProbabilities(quantiles)
			if err != nil {
				return errors.Wrap(err, "--quantiles")
			}

			req := app.TestRequest{
				SampleA:         a,
				SampleB:         b,
				Priors:          p,
				Distribution:    d,
				SimulationCount: cfg.Engine.SimulationCount,
				Seed:            cfg.Engine.Seed,
				Compare:         bayes.CompareOptions{CredibleLevel: cfg.Engine.CredibleLevel, Quantiles: extra},
			}
			if cmd.Flags().Changed("sims") {
				req.SimulationCount = sims
			}
			if cmd.Flags().Changed("seed") {
				req.Seed = &seed
			}
			if cmd.Flags().Changed("level") {
				req.Compare.CredibleLevel = level
			}
			if cmd.Flags().Changed("id") {
				if req.ID, err = core.ParseTestID(testID); err != nil {
					return errors.InvalidInput("--id: " + err.Error())
				}
			}

			var policy *summary.DecisionPolicy
			if cmd.Flags().Changed("threshold") {
				dp, err := summary.NewDecisionPolicy(threshold)
				if err != nil {
					return errors.Wrap(err, "--threshold")
				}
				policy = &dp
			}

			return runTest(cmd.Context(), cmd.OutOrStdout(), app.NewDefaultTestRunner(logger), req, policy, asJSON)
		},
	}

	cmd.Flags().StringVar(&testID, "id", "", "Identifier recorded on the result (generated when unset)")
	cmd.Flags().StringVar(&dist, "dist", "", "Distribution family: "+familyList())
	cmd.Flags().StringVar(&sampleA, "a", "", "Observations of group A (treatment), comma separated")
	cmd.Flags().StringVar(&sampleB, "b", "", "Observations of group B (control), comma separated")
	cmd.Flags().StringVar(&priors, "prior", "", "Prior parameters as name=value pairs")
	cmd.Flags().IntVar(&sims, "sims", 0, "Posterior draws per group (default BAYESAB_SIMULATIONS)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for reproducible draws (random when unset)")
	cmd.Flags().Float64Var(&level, "level", 0, "Credible interval mass (default BAYESAB_CRED_LEVEL)")
	cmd.Flags().StringVar(&quantiles, "quantiles", "", "Extra quantiles of A-B and lift, e.g. 0.1,0.9")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Threshold of caring for a choose/keep-testing decision")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	_ = cmd.MarkFlagRequired("dist")
	_ = cmd.MarkFlagRequired("prior")

	return cmd
}

func runTest(ctx context.Context, w io.Writer, runner *app.TestRunner, req app.TestRequest, policy *summary.DecisionPolicy, asJSON bool) error {
	result, err := runner.Run(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return errors.Canceled(err)
		}
		return errors.Wrap(err, "test failed")
	}

	if asJSON {
		out := struct {
			Result  bayes.ResultSnapshot `json:"result"`
			Verdict *summary.Verdict     `json:"verdict,omitempty"`
		}{Result: result.Snapshot()}
		if policy != nil {
			v, err := policy.Decide(result)
			if err != nil {
				return errors.Wrap(err, "decision failed")
			}
			out.Verdict = &v
		}
		return writeJSON(w, out)
	}

	var s summary.Summary
	if policy != nil {
		s, err = summary.SummarizeWithPolicy(result, *policy)
	} else {
		s, err = summary.Summarize(result)
	}
	if err != nil {
		return errors.Wrap(err, "summary failed")
	}
	_, err = fmt.Fprint(w, s.String())
	return err
}

func newCalibrateCmd() *cobra.Command {
	var (
		dist        string
		truthA      string
		truthB      string
		size        int
		priors      string
		trials      int
		sims        int
		seed        uint64
		workers     int
		lower       float64
		upper       float64
		asJSON      bool
		showMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Measure significant-call rates over repeated synthetic tests",
		Long: `Generate many synthetic A/B datasets from known parameters, run a full
test on each and count how often P(A > B) leaves [lower, upper]. With equal
truths for A and B that count is the false-positive rate of the prior.

Defaults for --sims, --workers and --seed come from BAYESAB_SIMULATIONS,
BAYESAB_WORKERS and BAYESAB_SEED.

Example:
  bayesab calibrate --dist poisson --truth-a lambda=2.3 --size 100 --prior shape=23,rate=10 --trials 1000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			d, err := bayes.ParseDistribution(dist)
			if err != nil {
				return errors.Wrap(err, "--dist")
			}
			ta, err := parseParams(truthA)
			if err != nil {
				return errors.Wrap(err, "--truth-a")
			}
			tb := ta
			if truthB != "" {
				if tb, err = parseParams(truthB); err != nil {
					return errors.Wrap(err, "--truth-b")
				}
			}
			p, err := parseParams(priors)
			if err != nil {
				return errors.Wrap(err, "--prior")
			}

			scenario := simulation.Scenario{
				Data: testkit.PairConfig{
					Distribution: d,
					TruthA:       ta,
					TruthB:       tb,
					SizeA:        size,
					SizeB:        size,
				},
				Priors:          p,
				Trials:          trials,
				SimulationCount: cfg.Engine.SimulationCount,
				LowerBound:      lower,
				UpperBound:      upper,
			}
			if cmd.Flags().Changed("sims") {
				scenario.SimulationCount = sims
			}
			if !cmd.Flags().Changed("workers") {
				workers = cfg.Batch.Workers
			}
			if !cmd.Flags().Changed("seed") {
				if cfg.Engine.Seed != nil {
					seed = *cfg.Engine.Seed
				} else {
					seed = rng.NewStreams().NewSeed()
				}
			}

			reg := prometheus.NewRegistry()
			calibrator := simulation.NewCalibrator(app.NewDefaultTestRunner(logger), workers, simulation.NewMetrics(reg), logger)

			report, err := calibrator.Run(cmd.Context(), scenario, seed)
			if err != nil {
				if cmd.Context().Err() != nil {
					return errors.Canceled(err)
				}
				return errors.Wrap(err, "calibration failed")
			}

			w := cmd.OutOrStdout()
			if asJSON {
				if err := writeJSON(w, report); err != nil {
					return err
				}
			} else {
				printReport(w, report)
			}
			if showMetrics {
				return writeMetrics(w, reg)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dist, "dist", "", "Distribution family: "+familyList())
	cmd.Flags().StringVar(&truthA, "truth-a", "", "True parameters of group A, e.g. lambda=2.3")
	cmd.Flags().StringVar(&truthB, "truth-b", "", "True parameters of group B (defaults to --truth-a)")
	cmd.Flags().IntVar(&size, "size", 100, "Observations per group and trial")
	cmd.Flags().StringVar(&priors, "prior", "", "Prior parameters as name=value pairs")
	cmd.Flags().IntVar(&trials, "trials", 1000, "Number of synthetic tests")
	cmd.Flags().IntVar(&sims, "sims", 0, "Posterior draws per group and trial (default BAYESAB_SIMULATIONS)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Base seed; trial i derives its streams from (seed, i)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent trials (default BAYESAB_WORKERS)")
	cmd.Flags().Float64Var(&lower, "lower", simulation.DefaultLowerBound, "Significant when P(A>B) is below this")
	cmd.Flags().Float64Var(&upper, "upper", simulation.DefaultUpperBound, "Significant when P(A>B) is above this")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "Print Prometheus metrics after the report")
	_ = cmd.MarkFlagRequired("dist")
	_ = cmd.MarkFlagRequired("truth-a")
	_ = cmd.MarkFlagRequired("prior")

	return cmd
}

func newFamiliesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "families",
		Short: "List supported distribution families and their prior parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, d := range bayes.Families() {
				spec, err := bayes.Lookup(d)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%-12s prior: %-28s data: %s\n", d, strings.Join(spec.ParamNames(), ","), spec.Support)
				fmt.Fprintf(w, "%-12s %s\n", "", spec.Description)
			}
			return nil
		},
	}
}

func printReport(w io.Writer, r *simulation.Report) {
	fmt.Fprintf(w, "Calibration %s\n", r.ID)
	fmt.Fprintf(w, "  scenario:        %s (seed %d)\n", r.Scenario, r.Seed)
	fmt.Fprintf(w, "  trials:          %d\n", r.Trials)
	fmt.Fprintf(w, "  significant:     %d (%.2f%%)\n", r.Significant, r.SignificantRate*100)
	if r.Null {
		fmt.Fprintf(w, "  false positives: %.2f%%\n", r.FalsePositiveRate()*100)
	}
	fmt.Fprintf(w, "  mean P(A > B):   %.4f\n", r.MeanProb)
	for code, n := range r.Warnings {
		fmt.Fprintf(w, "  warning:         %s x%d\n", code, n)
	}
	fmt.Fprintf(w, "  duration:        %s\n", r.Duration)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return errors.Wrap(err, "gathering metrics")
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func familyList() string {
	families := bayes.Families()
	names := make([]string, len(families))
	for i, d := range families {
		names[i] = string(d)
	}
	return strings.Join(names, "|")
}
