package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/honeycombio/otel-config-go/otelconfig"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	acceptor "github.com/oci-infra/oci-acceptor"
	"github.com/oci-infra/oci-acceptor/exitcodes"
	"github.com/oci-infra/oci-acceptor/flags"
	"github.com/oci-infra/oci-acceptor/service"
)

var (
	Version   = "v0.3.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	// The env file has to land before urfave/cli resolves flag env vars.
	loadEnvFile()

	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "oci-acceptor"
	app.Usage = "OCI Runtime Conformance Acceptance Tester"
	app.Description = "oci-acceptor validates a container runtime against the runtime-tools conformance battery"
	app.ArgsUsage = "[pattern]"
	app.Flags = flags.Flags
	app.Action = run
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			// Use the exit code from the ExitCoder
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			// Check for typed errors
			if acceptor.IsCaseFailureError(err) {
				// A case failed conformance, use exit code 1
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.CaseFailure))
			} else if acceptor.IsRuntimeError(err) || acceptor.IsBuildError(err) {
				// The run itself broke, use exit code 2
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
			} else {
				// Unclassified errors are harness faults, not verdicts
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(exitcodes.RuntimeErr)
	}
}

func run(ctx *cli.Context) error {
	log := newLogger(ctx)
	slog.SetDefault(log)

	cfg, err := acceptor.NewConfig(ctx, log)
	if err != nil {
		// Wrap in RuntimeError to signal this should exit with code 2
		return acceptor.NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}

	// Telemetry ships spans only when an OTLP endpoint is configured;
	// otherwise the per-case spans stay no-ops.
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" {
		shutdown, err := otelconfig.ConfigureOpenTelemetry(
			otelconfig.WithServiceName(ctx.App.Name),
			otelconfig.WithServiceVersion(ctx.App.Version),
		)
		if err != nil {
			return acceptor.NewRuntimeError(fmt.Errorf("failed to setup open telemetry: %w", err))
		}
		defer shutdown()
	}

	if cfg.MetricsEnabled {
		srv := service.New()
		srv.Start(ctx.Context)
		defer srv.Shutdown()
	}

	svc, err := acceptor.New(cfg, Version)
	if err != nil {
		// Wrap in RuntimeError to signal this should exit with code 2
		return acceptor.NewRuntimeError(fmt.Errorf("failed to create acceptor: %w", err))
	}

	return svc.Run(ctx.Context)
}

// newLogger builds the process logger from --log-level and --log-format.
// Logs go to stderr; stdout carries the results table and failure dumps.
func newLogger(ctx *cli.Context) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(ctx.String(flags.LogLevel.Name))); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(ctx.String(flags.LogFormat.Name), "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// loadEnvFile loads the optional env file named by --env-file or
// OCI_ACCEPTOR_ENV_FILE, falling back to a plain .env when present. It runs
// before the cli app so the file can feed every other flag's environment
// variable.
func loadEnvFile() {
	path := os.Getenv(flags.EnvVarPrefix + "_ENV_FILE")
	for i, arg := range os.Args {
		if arg == "--env-file" && i+1 < len(os.Args) {
			path = os.Args[i+1]
		} else if v, ok := strings.CutPrefix(arg, "--env-file="); ok {
			path = v
		}
	}

	if path == "" {
		// A .env in the working directory is optional; missing is fine.
		_ = godotenv.Load()
		return
	}
	if err := godotenv.Load(path); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load env file %s: %v\n", path, err)
		os.Exit(exitcodes.RuntimeErr)
	}
}
