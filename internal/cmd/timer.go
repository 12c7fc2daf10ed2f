package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/Iron-Ham/cfoundation/internal/config"
	"github.com/Iron-Ham/cfoundation/internal/metrics"
	"github.com/Iron-Ham/cfoundation/internal/timers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Run timers from a timer source",
}

var timerRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a timer until it has ticked N times",
	Long: `Run creates a timer through a timer source, prints each tick and
cancels the timer once it has ticked the requested number of times. The
command exits after the source has released the timer and posted its
release notification. An interrupt cancels the timer early.`,
	RunE: runTimer,
}

var (
	timerInterval    time.Duration
	timerLeeway      time.Duration
	timerTicks       int
	timerExecutor    string
	timerMetricsAddr string
)

func init() {
	rootCmd.AddCommand(timerCmd)
	timerCmd.AddCommand(timerRunCmd)

	timerRunCmd.Flags().DurationVar(&timerInterval, "interval", 0, "repeat interval (default from timer.interval_ms)")
	timerRunCmd.Flags().DurationVar(&timerLeeway, "leeway", 0, "allowed delivery delay (default from timer.leeway_ms)")
	timerRunCmd.Flags().IntVarP(&timerTicks, "ticks", "n", 0, "ticks to wait for before cancelling (default from timer.ticks)")
	timerRunCmd.Flags().StringVar(&timerExecutor, "executor", "", "where ticks run: queue or pool (default from timer.executor)")
	timerRunCmd.Flags().StringVar(&timerMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
}

func runTimer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("interval") {
		cfg.Timer.IntervalMs = int(timerInterval.Milliseconds())
	}
	if flags.Changed("leeway") {
		cfg.Timer.LeewayMs = int(timerLeeway.Milliseconds())
	}
	if flags.Changed("ticks") {
		cfg.Timer.Ticks = timerTicks
	}
	if flags.Changed("executor") {
		cfg.Timer.Executor = timerExecutor
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return config.ValidationErrors(errs)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runTimerWithConfig(ctx, cfg, timerMetricsAddr, cmd.OutOrStdout())
}

// runTimerWithConfig runs one timer as described by cfg. Cancelling ctx
// cancels the timer early; the function still waits for its release.
func runTimerWithConfig(ctx context.Context, cfg *config.Config, metricsAddr string, out io.Writer) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	center, err := newCenter(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = center.Close() }()

	exec, drain := newExecutor(cfg, logger)
	defer drain()

	reg := prometheus.NewRegistry()
	if metricsAddr != "" {
		srv := &http.Server{
			Addr:              metricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "addr", metricsAddr, "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	source := timers.NewSource(
		timers.WithCenter(center),
		timers.WithLogger(logger),
		timers.WithMetrics(metrics.NewTimers(reg, "cli")),
	)

	t := source.MakeTimer(exec)
	id := t.ID()

	want := cfg.Timer.Ticks
	if cfg.Timer.Interval() <= 0 {
		want = 1
	}

	var ticks atomic.Int64
	t.SetTick(func() {
		n := ticks.Add(1)
		fmt.Fprintf(out, "%s %d/%d\n", render(out, okStyle, "tick"), n, want)
		if n >= int64(want) {
			t.Cancel()
		}
	})

	handled := make(chan struct{})
	t.SetCancelHandler(func() { close(handled) })

	fmt.Fprintf(out, "%s %s on %s every %s\n",
		render(out, titleStyle, "timer"), id, cfg.Timer.Executor, cfg.Timer.Interval())

	t.Schedule(time.Now().Add(cfg.Timer.Interval()), cfg.Timer.Interval(), cfg.Timer.Leeway())
	t.Run()

	// The release wait must outlive an interrupt, so it runs on a context
	// that is not cancelled by signals.
	waitCtx := context.WithoutCancel(ctx)
	released := make(chan struct{})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(released)
		if err := source.WaitReleased(waitCtx, id); err != nil {
			return fmt.Errorf("waiting for release of timer %s: %w", id, err)
		}
		<-handled
		return nil
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
			logger.Info("interrupted, cancelling timer", "timer_id", id.String())
			t.Cancel()
		case <-released:
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s %s after %d ticks\n",
		render(out, mutedStyle, "released"), id, ticks.Load())
	return nil
}
