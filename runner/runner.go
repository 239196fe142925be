package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/oci-infra/oci-acceptor/capability"
	"github.com/oci-infra/oci-acceptor/logging"
	"github.com/oci-infra/oci-acceptor/metrics"
	"github.com/oci-infra/oci-acceptor/suite"
	"github.com/oci-infra/oci-acceptor/types"
)

// CaseRunner defines the interface for executing conformance cases
type CaseRunner interface {
	RunAllCases(ctx context.Context) (*RunResult, error)
	RunCase(ctx context.Context, cs types.Case) (types.CaseResult, error)
}

// runner struct implements the CaseRunner interface
type runner struct {
	cases       []types.Case
	target      types.RuntimeTarget
	suite       *suite.Suite
	fileLogger  *logging.FileLogger
	host        capability.Host
	settleDelay time.Duration
	debug       bool
	debugEnv    []string
	elevate     bool
	sudoPath    string
	log         *slog.Logger
	runID       string
	tracer      trace.Tracer
}

// Config holds configuration for creating a new runner
type Config struct {
	// Cases are the selected catalog entries, already pattern-filtered, in
	// execution order. An empty selection is a valid (vacuously passing) run.
	Cases      []types.Case
	Target     types.RuntimeTarget
	Suite      *suite.Suite
	FileLogger *logging.FileLogger
	// Host is the capability snapshot taken at startup.
	Host capability.Host
	// SettleDelay pauses after each executed case; zero disables the pause.
	SettleDelay time.Duration
	// Debug propagates verbose-diagnostics variables to each case.
	Debug    bool
	DebugEnv []string
	// Elevate wraps case invocations with sudo when not already root.
	Elevate  bool
	SudoPath string
	Log      *slog.Logger
}

// NewCaseRunner creates a new case runner instance
func NewCaseRunner(cfg Config) (CaseRunner, error) {
	if cfg.Suite == nil {
		return nil, fmt.Errorf("suite is required")
	}
	if cfg.FileLogger == nil {
		return nil, fmt.Errorf("file logger is required")
	}
	if cfg.Target.Path == "" {
		return nil, fmt.Errorf("runtime target is required")
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.SudoPath == "" {
		cfg.SudoPath = DefaultSudoPath
	}
	if cfg.DebugEnv == nil {
		cfg.DebugEnv = DefaultDebugEnv
	}

	cfg.Log.Debug("NewCaseRunner()",
		"cases", len(cfg.Cases),
		"runtime", cfg.Target.Path,
		"settleDelay", cfg.SettleDelay,
		"debug", cfg.Debug,
		"elevate", cfg.Elevate)

	return &runner{
		cases:       cfg.Cases,
		target:      cfg.Target,
		suite:       cfg.Suite,
		fileLogger:  cfg.FileLogger,
		host:        cfg.Host,
		settleDelay: cfg.SettleDelay,
		debug:       cfg.Debug,
		debugEnv:    cfg.DebugEnv,
		elevate:     cfg.Elevate,
		sudoPath:    cfg.SudoPath,
		log:         cfg.Log,
		tracer:      otel.Tracer("case runner"),
	}, nil
}

// RunAllCases implements the CaseRunner interface. Cases execute strictly
// sequentially in catalog order; the first failure stops the run with the
// remaining cases unscheduled.
func (r *runner) RunAllCases(ctx context.Context) (*RunResult, error) {
	r.runID = r.fileLogger.RunID()
	if r.runID == "" {
		r.runID = uuid.New().String()
	}

	start := time.Now()
	r.log.Debug("Running all cases", "run_id", r.runID, "cases", len(r.cases))

	result := &RunResult{
		RunID: r.runID,
		Stats: ResultStats{StartTime: start},
	}

	for _, cs := range r.cases {
		// Process-level interruption is the only cancellation point; an
		// in-flight case is never cancelled cooperatively.
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run interrupted before case %s: %w", cs.ID, err)
		}

		res, err := r.RunCase(ctx, cs)
		if err != nil {
			return nil, err
		}

		result.addResult(res)
		metrics.RecordCase(r.runID, res.CaseID, res.Verdict, res.Duration)

		if err := r.fileLogger.Consume(res); err != nil {
			r.log.Error("Failed to record case result", "case", cs.ID, "error", err)
		}

		if res.Verdict == types.VerdictFail {
			r.log.Error("Case failed, stopping run", "case", cs.ID, "exit_code", res.ExitCode, "log", res.LogPath)
			break
		}
	}

	result.Duration = time.Since(start)
	result.Stats.EndTime = time.Now()
	result.Verdict = types.VerdictPass
	if result.FailedCase != nil {
		result.Verdict = types.VerdictFail
	}
	return result, nil
}

// RunCase executes one conformance case and classifies its outcome.
func (r *runner) RunCase(ctx context.Context, cs types.Case) (types.CaseResult, error) {
	ctx, span := r.tracer.Start(ctx, fmt.Sprintf("case %s", cs.ID))
	defer span.End()

	if eligible, cause := capability.Eligible(cs.ID, r.host); !eligible {
		r.log.Info("Skipping case", "case", cs.ID, "cause", cause)
		return types.CaseResult{
			CaseID:     cs.ID,
			Verdict:    types.VerdictSkip,
			SkipReason: cause,
		}, nil
	}

	logFile, logPath, err := r.fileLogger.CreateCaseLog(cs.ID)
	if err != nil {
		span.RecordError(err)
		return types.CaseResult{}, fmt.Errorf("creating log for case %s: %w", cs.ID, err)
	}
	defer logFile.Close()

	name, args := r.caseCommand(cs)
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.suite.RootDir()
	// Combined output stream; interleaving between the two is best-effort.
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	if name != r.sudoPath {
		cmd.Env = append(os.Environ(), r.caseEnvAssignments()...)
	}

	r.log.Info("Running case", "case", cs.ID, "runtime", r.target.Path, "log", logPath)
	r.log.Debug("Running case command", "command", cmd.String(), "dir", cmd.Dir)

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	// Let the kernel release cgroups and namespaces before anything else
	// touches them. Applies to failed cases too: their log is inspected next.
	if r.settleDelay > 0 {
		time.Sleep(r.settleDelay)
	}

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			// The process never ran (missing executable, sudo unavailable).
			// That is harness misconfiguration, not a case verdict.
			span.RecordError(runErr)
			return types.CaseResult{}, fmt.Errorf("executing case %s: %w", cs.ID, runErr)
		}
		exitCode = exitErr.ExitCode()
	}

	verdict := types.VerdictPass
	if exitCode != 0 {
		verdict = types.VerdictFail
	} else {
		failed, err := LogReportsFailure(logPath)
		if err != nil {
			span.RecordError(err)
			return types.CaseResult{}, fmt.Errorf("classifying case %s: %w", cs.ID, err)
		}
		if failed {
			verdict = types.VerdictFail
		}
	}

	return types.CaseResult{
		CaseID:   cs.ID,
		ExitCode: exitCode,
		LogPath:  logPath,
		Verdict:  verdict,
		Duration: duration,
	}, nil
}

// caseEnvAssignments returns the KEY=VALUE pairs injected into each case
// process: the runtime target path, plus the debug variables when verbose
// diagnostics are enabled.
func (r *runner) caseEnvAssignments() []string {
	assignments := []string{fmt.Sprintf("%s=%s", RuntimeEnvVar, r.target.Path)}
	if r.debug {
		assignments = append(assignments, r.debugEnv...)
	}
	return assignments
}

// caseCommand resolves the executable and arguments for one case. Elevated
// invocations ride through sudo, which accepts leading VAR=value operands as
// environment assignments; running as root skips the wrapper entirely.
func (r *runner) caseCommand(cs types.Case) (string, []string) {
	exe := r.suite.CasePath(cs.ID)
	if r.elevate && os.Geteuid() != 0 {
		return r.sudoPath, append(r.caseEnvAssignments(), exe)
	}
	return exe, nil
}
