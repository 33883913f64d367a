package commands

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/almanac/am"
	"github.com/teranos/almanac/errors"
	"github.com/teranos/almanac/logger"
	"github.com/teranos/almanac/resolver"
	"github.com/teranos/almanac/store"
)

// strategyAll runs every strategy in turn.
const strategyAll = "all"

type solveOptions struct {
	root      *rootOptions
	strategy  string
	bound     uint64
	workers   int
	shardSize uint64
	budget    uint64
	format    string
	record    bool
	watch     bool
}

func newSolveCmd(root *rootOptions) *cobra.Command {
	o := &solveOptions{root: root}

	cmd := &cobra.Command{
		Use:   "solve [file|-]",
		Short: "Find the minimum end-domain value",
		Long: `Find the lowest value reachable at the end of the stage chain.

Strategies:
  direct    convert each seed value and keep the minimum
  reverse   walk end-domain candidates upward until one maps back into a seed range
  parallel  the reverse scan split into blocks across workers
  forward   enumerate every seed range value (small inputs only, see --budget)
  all       run every strategy and compare

Reads stdin when no file (or "-") is given.

Examples:
  almanac solve input.txt
  almanac solve input.txt --strategy parallel --workers 8
  almanac solve input.txt --strategy all --budget 1000000
  cat input.txt | almanac solve --strategy direct --json
  almanac solve input.txt --watch --record`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.strategy, "strategy", "s", "", "direct, reverse, parallel, forward or all (default resolve.strategy)")
	f.Uint64Var(&o.bound, "bound", 0, "Last reverse scan candidate, inclusive (default resolve.bound, where 0 means unbounded)")
	f.IntVar(&o.workers, "workers", 0, "Parallel scan workers, 0 for one per CPU (default resolve.workers)")
	f.Uint64Var(&o.shardSize, "shard-size", 0, "Candidates per parallel block (default resolve.shard_size)")
	f.Uint64Var(&o.budget, "budget", 0, "Forward enumeration cap, 0 for unlimited (default resolve.budget)")
	f.StringVar(&o.format, "format", "", "Input format: text, yaml, toml (default from file extension)")
	f.BoolVar(&o.record, "record", false, "Record runs in the store (default store.enabled)")
	f.BoolVar(&o.watch, "watch", false, "Re-solve whenever the input file changes")

	return cmd
}

// settings applies flag overrides to a copy of the loaded configuration.
func (o *solveOptions) settings(cmd *cobra.Command) (*am.Config, []resolver.Strategy, error) {
	cfg := *o.root.cfg
	flags := cmd.Flags()

	strategyName := cfg.Resolve.Strategy
	if flags.Changed("strategy") {
		strategyName = o.strategy
	}
	if flags.Changed("bound") {
		cfg.Resolve.Bound = o.bound
	}
	if flags.Changed("workers") {
		cfg.Resolve.Workers = o.workers
	}
	if flags.Changed("shard-size") {
		cfg.Resolve.ShardSize = o.shardSize
	}
	if flags.Changed("budget") {
		cfg.Resolve.Budget = o.budget
	}
	if flags.Changed("record") {
		cfg.Store.Enabled = o.record
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "invalid configuration")
	}

	if strategyName == strategyAll {
		return &cfg, resolver.Strategies(), nil
	}
	s, err := resolver.ParseStrategy(strategyName)
	if err != nil {
		return nil, nil, err
	}
	return &cfg, []resolver.Strategy{s}, nil
}

func (o *solveOptions) run(cmd *cobra.Command, args []string) error {
	cfg, strategies, err := o.settings(cmd)
	if err != nil {
		return err
	}

	path := stdinSource
	if len(args) == 1 {
		path = args[0]
	}
	if o.watch && path == stdinSource {
		return errors.WithHint(
			errors.New("--watch needs an input file"),
			"pass the almanac path: almanac solve input.txt --watch")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := &solver{
		cfg:        cfg,
		strategies: strategies,
		format:     o.format,
		stdin:      cmd.InOrStdin(),
		out:        cmd.OutOrStdout(),
		errOut:     cmd.ErrOrStderr(),
		json:       wantJSON(cmd),
		bounded:    cmd.Flags().Changed("bound") || cfg.Resolve.Bound > 0,
		verbosity:  o.root.verbosity(),
	}

	if cfg.Store.Enabled {
		db, err := store.OpenWithMigrations(cfg.Store.Path, logger.ComponentLogger("store"))
		if err != nil {
			return errors.Wrap(err, "failed to open run store")
		}
		defer db.Close()
		s.runs = store.New(db, nil)
	}

	if cfg.Metrics.Enabled {
		s.registry = prometheus.NewRegistry()
		s.metrics = resolver.NewMetrics(s.registry)
	}

	if o.watch {
		return s.watch(ctx, path)
	}
	return s.solve(ctx, path)
}

// solver runs the selected strategies against one input.
type solver struct {
	cfg        *am.Config
	strategies []resolver.Strategy
	format     string

	stdin  io.Reader
	out    io.Writer
	errOut io.Writer
	json   bool

	// bounded is set by an explicit --bound, which may be 0, or a non-zero
	// resolve.bound.
	bounded   bool
	verbosity int

	runs     *store.Store
	registry *prometheus.Registry
	metrics  *resolver.Metrics
}

func (s *solver) resolverOptions() []resolver.Option {
	opts := []resolver.Option{
		resolver.WithWorkers(s.cfg.EffectiveWorkers()),
		resolver.WithShardSize(s.cfg.Resolve.ShardSize),
		resolver.WithBudget(s.cfg.Resolve.Budget),
		resolver.WithProgress(s.cfg.Resolve.ProgressPerSecond),
		resolver.WithLogger(logger.ComponentLogger("resolver")),
	}
	if s.bounded {
		opts = append(opts, resolver.WithBound(s.cfg.Resolve.Bound))
	}
	if s.metrics != nil {
		opts = append(opts, resolver.WithMetrics(s.metrics))
	}
	return opts
}

// runOptions is the search configuration stored alongside each run.
func (s *solver) runOptions() map[string]string {
	bound := "unbounded"
	if s.bounded {
		bound = strconv.FormatUint(s.cfg.Resolve.Bound, 10)
	}
	return map[string]string{
		"bound":      bound,
		"workers":    strconv.Itoa(s.cfg.EffectiveWorkers()),
		"shard_size": strconv.FormatUint(s.cfg.Resolve.ShardSize, 10),
		"budget":     strconv.FormatUint(s.cfg.Resolve.Budget, 10),
	}
}

// solve parses the input, runs every strategy and prints one row per run.
// With a single strategy its error is returned as is; with several, an error
// is returned only when all of them failed.
func (s *solver) solve(ctx context.Context, path string) error {
	in, source, err := readInput(path, s.format, s.stdin)
	if err != nil {
		return err
	}
	p, err := buildPipeline(in, s.cfg)
	if err != nil {
		return err
	}
	if logger.ShouldOutput(s.verbosity, logger.OutputPipelineSummary) {
		printPipelineSummary(s.errOut, p)
	}
	if logger.ShouldOutput(s.verbosity, logger.OutputConfig) {
		printResolveConfig(s.errOut, s.cfg, s.bounded, s.verbosity)
	}

	r := resolver.New(p, s.resolverOptions()...)
	digest := in.Digest()

	results := make([]*store.Run, 0, len(s.strategies))
	var lastErr error
	failed := 0
	for _, strategy := range s.strategies {
		run := store.NewRun(digest, source, string(strategy))
		run.Options = s.runOptions()

		started := time.Now()
		res, err := r.Resolve(logger.WithRunID(ctx, run.ID), strategy)
		if err != nil {
			run.Fail(err, time.Since(started))
			lastErr = err
			failed++
		} else {
			run.Succeed(res.Value, res.Candidates, res.Duration)
		}

		if s.runs != nil {
			// Record interrupted runs too
			if err := s.runs.RecordRun(context.WithoutCancel(ctx), run); err != nil {
				return errors.Wrap(err, "failed to record run")
			}
		}
		results = append(results, run)
		if logger.ShouldOutput(s.verbosity, logger.OutputTiming) {
			printTiming(s.errOut, run)
		}

		if ctx.Err() != nil {
			break
		}
	}

	if len(s.strategies) == 1 && lastErr != nil {
		return lastErr
	}
	if err := printRuns(s.out, s.json, results); err != nil {
		return err
	}
	if failed == len(results) {
		return lastErr
	}
	return nil
}

// watch solves once, then again on every change to path until ctx is done.
// Failed solves are reported and watching continues.
func (s *solver) watch(ctx context.Context, path string) error {
	if s.registry != nil {
		srv := s.serveMetrics()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	fw, err := am.NewFileWatcher(path, time.Duration(s.cfg.Watch.DebounceMS)*time.Millisecond)
	if err != nil {
		return err
	}
	defer fw.Stop()

	changes := make(chan struct{}, 1)
	fw.OnChange(func(string) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	fw.Start()

	if err := s.solve(ctx, path); err != nil {
		printError(s.errOut, err)
	}
	pterm.Info.WithWriter(s.errOut).Printfln("Watching %s for changes (Ctrl+C to stop)", path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			logger.Infow("Input changed, solving again", logger.FieldFile, path)
			if err := s.solve(ctx, path); err != nil {
				printError(s.errOut, err)
			}
		}
	}
}

// serveMetrics exposes the resolver metrics on metrics.address.
func (s *solver) serveMetrics() *http.Server {
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              s.cfg.Metrics.Address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warnw("Metrics server stopped",
				logger.FieldPath, s.cfg.Metrics.Address,
				logger.FieldError, err)
		}
	}()
	pterm.Info.WithWriter(s.errOut).Printfln("Serving metrics on %s/metrics", s.cfg.Metrics.Address)
	return srv
}
