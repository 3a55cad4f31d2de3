package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittodrive/internal/cli/output"
	"github.com/marmos91/dittodrive/internal/logger"
	"github.com/marmos91/dittodrive/internal/telemetry"
	"github.com/marmos91/dittodrive/pkg/config"
)

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// InitTelemetry starts tracing and profiling when enabled. The returned
// function flushes pending spans and stops the profiler.
func InitTelemetry(ctx context.Context, cfg *config.Config) (func(), error) {
	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "dittodrive",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	stopProfiling, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "dittodrive",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		_ = shutdown(context.Background())
		return nil, fmt.Errorf("failed to initialize profiling: %w", err)
	}

	return func() {
		if err := stopProfiling(); err != nil {
			logger.Error("profiling shutdown error", logger.Err(err))
		}
		if err := shutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown error", logger.Err(err))
		}
	}, nil
}

// newPrinter builds a printer from the --output and --no-color flags.
func newPrinter() (*output.Printer, error) {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return nil, err
	}
	return output.NewPrinter(os.Stdout, format, !noColor), nil
}

// withRuntime loads the configuration, starts logging and tracing, opens
// the drive and runs fn. Everything is released when fn returns.
func withRuntime(cmd *cobra.Command, fn func(ctx context.Context, rt *config.Runtime) error) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flush, err := InitTelemetry(ctx, cfg)
	if err != nil {
		return err
	}
	defer flush()

	rt, err := config.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Error("Failed to close drive", logger.Err(err))
		}
	}()

	if rt.RootPassword != "" {
		announceRootPassword(cfg.Drive.RootUser, rt.RootPassword)
	}
	return fn(ctx, rt)
}

func announceRootPassword(username, password string) {
	p := output.NewPrinter(os.Stderr, output.FormatTable, !noColor)
	p.Warning(fmt.Sprintf("Created root account %q with password: %s", username, password))
	p.Warning("Store it now; it is not shown again.")
}
