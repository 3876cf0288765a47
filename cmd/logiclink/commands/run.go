package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/logiclink/logiclink/internal/cli/output"
	"github.com/logiclink/logiclink/internal/logger"
	"github.com/logiclink/logiclink/internal/telemetry"
	"github.com/logiclink/logiclink/pkg/api"
	"github.com/logiclink/logiclink/pkg/config"
)

var (
	runBlocks    int
	runInterval  time.Duration
	runGenerator string
	runServe     bool
	runOutput    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Capture from the demo source",
	Long: `Run a capture session fed by the synthetic demo source.

The configured acquisition parameters decide the wire layout the demo
source produces and how the session rearranges it. When metrics are
enabled the status server runs for the duration of the capture and
serves /health, /metrics and the /api/v1 sample endpoints.

A summary of the session and of every zoom level is printed at the end.

Examples:
  # Capture the configured number of blocks
  logiclink run

  # Capture until interrupted, one block every 10ms
  logiclink run --blocks 0 --interval 10ms

  # Keep serving the captured data after the capture ends
  logiclink run --serve

  # Override file settings through the environment
  LOGICLINK_ACQUISITION_DIGITAL_ENCODING=gpio_bitpack logiclink run --config ./logiclink.yaml`,
	RunE: runCapture,
}

func init() {
	runCmd.Flags().IntVar(&runBlocks, "blocks", 0, "Raw blocks to capture, 0 runs until interrupted (default: from config)")
	runCmd.Flags().DurationVar(&runInterval, "interval", 0, "Pause between raw blocks (default: from config)")
	runCmd.Flags().StringVar(&runGenerator, "generator", "", "Test signal: square or random (default: from config)")
	runCmd.Flags().BoolVar(&runServe, "serve", false, "Keep the status server running after the capture until interrupted")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "table", "Summary format (table|json|yaml)")
}

// applyRunFlags overrides the demo settings with the flags that were set.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("blocks") {
		cfg.Demo.Blocks = runBlocks
	}
	if flags.Changed("interval") {
		cfg.Demo.Interval = runInterval
	}
	if flags.Changed("generator") {
		cfg.Demo.Generator = runGenerator
	}
}

func runCapture(cmd *cobra.Command, args []string) error {
	printer, err := output.NewStdoutPrinter(runOutput)
	if err != nil {
		return err
	}

	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := initTelemetry(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdownTelemetry()

	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))
	if err := config.WatchLogLevel(GetConfigFile(), logger.SetLevel); err != nil {
		logger.Warn("Log level reload disabled", logger.Err(err))
	}

	c, err := newCapture(cfg)
	if err != nil {
		return err
	}
	defer c.close()

	serverCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()
	serverDone := make(chan error, 1)
	if cfg.Metrics.Enabled {
		server := api.NewServer(api.APIConfig{Port: cfg.Metrics.Port}, c.deps())
		go func() { serverDone <- server.Start(serverCtx) }()
	} else {
		logger.Info("Metrics collection disabled")
		serverDone <- nil
	}

	runErr := c.run(ctx)

	if runErr == nil && runServe && cfg.Metrics.Enabled && ctx.Err() == nil {
		logger.Info("Capture finished, status server still running. Press Ctrl+C to stop.",
			"port", cfg.Metrics.Port)
		<-ctx.Done()
	}

	stopServer()
	select {
	case err := <-serverDone:
		if err != nil {
			logger.Error("Status server error", logger.Err(err))
		}
	case <-time.After(cfg.ShutdownTimeout):
		logger.Warn("Status server did not stop in time", "timeout", cfg.ShutdownTimeout)
	}

	if runErr != nil {
		return fmt.Errorf("capture failed: %w", runErr)
	}

	levels, err := c.backend.Levels(c.group)
	if err != nil {
		return err
	}
	return printSummary(printer, newSummary(c.session.ID(), c.session.Stats(), levels))
}

// initTelemetry starts tracing and profiling. The returned function shuts
// both down.
func initTelemetry(ctx context.Context, cfg *config.Config) (func(), error) {
	shutdownTracing, err := telemetry.Init(ctx, cfg.TracingConfig(Version))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	shutdownProfiling, err := telemetry.InitProfiling(cfg.ProfilingConfig(Version))
	if err != nil {
		_ = shutdownTracing(ctx)
		return nil, fmt.Errorf("failed to initialize profiling: %w", err)
	}

	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint)
	}

	return func() {
		// ctx may already be cancelled by a signal.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", logger.Err(err))
		}
		if err := shutdownProfiling(); err != nil {
			logger.Error("profiling shutdown error", logger.Err(err))
		}
	}, nil
}
