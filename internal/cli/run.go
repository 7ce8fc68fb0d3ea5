package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"ticksched/internal/app"
	"ticksched/internal/config"
	"ticksched/internal/job"
	"ticksched/internal/logging"
	"ticksched/internal/metrics"
	"ticksched/internal/sched"
)

type runOptions struct {
	duration    time.Duration
	metricsAddr string
	metricsRate string
	traceCSV    string
	serialStdin bool
	tiltEvery   time.Duration
	tiltCount   int
	watch       bool
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the dispatch loop",
		Long: `Runs the demo board until interrupted or until --duration elapses.

Serial output (debug lines, input dumps) goes to stdout, logs to stderr.
With --serial-stdin, bytes read from stdin arrive on the serial port.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(cmd, &opts)
		},
	}

	cmd.Flags().DurationVar(&opts.duration, "duration", 0, "Stop after this long (0 runs until interrupted)")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address")
	cmd.Flags().StringVar(&opts.metricsRate, "metrics-rate", "20-S", "Per-client scrape limit for /metrics (e.g. 20-S, 600-M)")
	cmd.Flags().StringVar(&opts.traceCSV, "trace-csv", "", "Write dispatch events to this CSV file")
	cmd.Flags().BoolVar(&opts.serialStdin, "serial-stdin", false, "Feed stdin into the serial port")
	cmd.Flags().DurationVar(&opts.tiltEvery, "tilt-every", 0, "Simulate a tilt interrupt at this interval")
	cmd.Flags().IntVar(&opts.tiltCount, "tilt-count", 0, "Stop simulating tilts after this many (0 means no limit)")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Reload the config file when it changes")

	return cmd
}

func runBoard(cmd *cobra.Command, opts *runOptions) (errRun error) {
	log := logger.With(logging.String("run", uuid.New().String()[:8]))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.duration)
		defer cancel()
	}

	var observers []sched.Observer
	if opts.traceCSV != "" {
		rec, err := sched.NewCSVRecorder(opts.traceCSV)
		if err != nil {
			return err
		}
		defer func() {
			errRun = errors.Join(errRun, rec.Close())
		}()
		observers = append(observers, rec)
	}

	var registry *prometheus.Registry
	params := app.ParamsNewApp{
		Config:    cfg,
		SerialOut: cmd.OutOrStdout(),
		Logger:    log,
		Observers: observers,
	}
	if opts.metricsAddr != "" {
		registry = prometheus.NewRegistry()
		params.Registry = registry
	}

	board, err := app.New(&params)
	if err != nil {
		return err
	}

	if registry != nil {
		shutdown, err := serveMetrics(opts.metricsAddr, opts.metricsRate, registry, log)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	if opts.serialStdin {
		in := cmd.InOrStdin()
		go func() {
			if _, err := io.Copy(board.Serial, in); err != nil {
				log.Warn("serial input closed", logging.Err(err))
			}
		}()
	}

	if opts.tiltEvery > 0 {
		if opts.tiltCount > 0 {
			go job.Times(ctx, opts.tiltEvery, opts.tiltCount, board.Tilt.Interrupt)
		} else {
			go job.Every(ctx, opts.tiltEvery, board.Tilt.Interrupt)
		}
	}

	if opts.watch {
		go func() {
			if err := config.Watch(ctx, flagConfig, cfg, log, board.Reload); err != nil {
				log.Warn("config watch stopped", logging.Err(err))
			}
		}()
	}

	if err := board.Run(ctx); err != nil {
		return err
	}

	for _, pin := range board.Pins() {
		log.Info("pin",
			logging.Int("pin", pin.Pin),
			logging.String("mode", pin.Mode.String()),
			logging.String("level", pin.Level.String()),
			logging.Int("duty", int(pin.Duty)),
			logging.Uint64("writes", pin.Writes),
		)
	}
	log.Info("board stopped",
		logging.Int("cycle_count", board.Tilt.CycleCount()),
		logging.Uint64("tilt_interrupts", board.Tilt.Interrupts()),
		logging.Uint64("serial_dropped", board.Serial.Dropped()),
		logging.Uint64("configs_applied", board.Reloader.Applied()),
	)

	return nil
}

// serveMetrics listens before returning so a bad address fails the command.
func serveMetrics(addr, rate string, g prometheus.Gatherer, log logging.Logger) (func(), error) {
	router, err := metrics.NewRouter(g, rate)
	if err != nil {
		return nil, err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listen: %w", err)
	}

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server", logging.Err(err))
		}
	}()
	log.Info("metrics listening", logging.String("addr", ln.Addr().String()))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		_ = srv.Shutdown(ctx)
	}, nil
}
