// Package acceptor orchestrates OCI runtime conformance runs. It selects
// cases from the catalog, materializes missing validation executables,
// drives the sequential case runner, and renders and reports the aggregate
// outcome. The CLI in cmd wraps this package; embedding callers construct
// an Acceptor directly and observe the run through Phase and Result.
package acceptor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oci-infra/oci-acceptor/capability"
	"github.com/oci-infra/oci-acceptor/catalog"
	"github.com/oci-infra/oci-acceptor/logging"
	"github.com/oci-infra/oci-acceptor/metrics"
	"github.com/oci-infra/oci-acceptor/runner"
	"github.com/oci-infra/oci-acceptor/suite"
	"github.com/oci-infra/oci-acceptor/types"
)

// Acceptor is a single-use conformance run orchestrator. It owns the run
// state machine not_started -> building -> running -> {passed | failed};
// building is skipped when every selected executable already exists.
type Acceptor struct {
	config     *Config
	version    string
	catalog    *catalog.Catalog
	suite      *suite.Suite
	host       capability.Host
	selected   []types.Case
	fileLogger *logging.FileLogger

	executor  CaseExecutor
	formatter ResultFormatter
	reporter  MetricsReporter

	result *runner.RunResult

	phaseMu sync.RWMutex
	phase   types.RunPhase
}

// New wires an Acceptor from the validated config: catalog, selection,
// suite, host capability snapshot, per-run file logger and case runner.
// Configuration faults surface here, before anything touches the host.
func New(config *Config, version string) (*Acceptor, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if config.Log == nil {
		config.Log = slog.Default()
	}

	config.Log.Debug("Creating acceptor with config",
		"runtime", config.RuntimePath,
		"suiteDir", config.SuiteDir,
		"catalog", config.CatalogFile,
		"pattern", config.Pattern,
		"logDir", config.LogDir)

	cat, err := catalog.NewCatalog(catalog.Config{
		Log:         config.Log,
		CatalogFile: config.CatalogFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	selected, err := cat.Select(config.Pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to select cases: %w", err)
	}

	st, err := suite.NewSuite(suite.Config{
		Log:          config.Log,
		Dir:          config.SuiteDir,
		BuildDir:     config.BuildDir,
		BuildCommand: config.BuildCommand,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create suite: %w", err)
	}

	fileLogger, err := logging.NewFileLogger(config.LogDir, uuid.New().String(), config.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create file logger: %w", err)
	}

	host := capability.Probe(capability.DefaultCgroupRoot)

	caseRunner, err := runner.NewCaseRunner(runner.Config{
		Cases:       selected,
		Target:      types.RuntimeTarget{Path: config.RuntimePath},
		Suite:       st,
		FileLogger:  fileLogger,
		Host:        host,
		SettleDelay: config.SettleDelay,
		Debug:       config.Debug,
		Elevate:     config.Sudo,
		Log:         config.Log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create case runner: %w", err)
	}

	config.Log.Info("acceptor.New: created catalog, suite and case runner",
		"source", cat.Source(),
		"selected", len(selected),
		"excluded", len(cat.Excluded()))

	return &Acceptor{
		config:     config,
		version:    version,
		catalog:    cat,
		suite:      st,
		host:       host,
		selected:   selected,
		fileLogger: fileLogger,
		executor:   NewDefaultCaseExecutor(caseRunner, config.Log),
		formatter:  NewConsoleResultFormatter(config.Log),
		reporter:   NewDefaultMetricsReporter(),
		phase:      types.RunPhaseNotStarted,
	}, nil
}

// Run executes one full conformance run and returns a typed error for the
// exit-code mapping: nil on an all-pass run, CaseFailureError when a case
// failed, BuildError or RuntimeError when the run itself broke.
func (a *Acceptor) Run(ctx context.Context) (err error) {
	// A panic anywhere below is an internal fault of the harness, never a
	// verdict about the runtime under test.
	defer func() {
		if r := recover(); r != nil {
			a.config.Log.Error("Runtime error occurred", "error", r)
			a.setPhase(types.RunPhaseFailed)
			err = NewRuntimeError(fmt.Errorf("panic: %v", r))
		}
	}()

	if p := a.Phase(); p != types.RunPhaseNotStarted {
		return NewRuntimeError(fmt.Errorf("run already started (phase %s)", p))
	}

	a.config.Log.Info("Starting conformance run",
		"run_id", a.fileLogger.RunID(),
		"version", a.version,
		"runtime", a.config.RuntimePath,
		"cases", len(a.selected))

	// Materialize missing validation executables before the first case. One
	// build covers the whole selection; a failed or partial build aborts the
	// run before anything executes.
	if missing := a.suite.Missing(a.selected); len(missing) > 0 {
		a.setPhase(types.RunPhaseBuilding)
		buildStart := time.Now()
		if err := a.suite.EnsureBuilt(ctx, a.selected); err != nil {
			metrics.RecordBuild("failure", time.Since(buildStart))
			a.setPhase(types.RunPhaseFailed)
			return NewBuildError(err)
		}
		metrics.RecordBuild("success", time.Since(buildStart))
	}

	a.setPhase(types.RunPhaseRunning)

	result, err := a.executor.RunCases(ctx)
	if err != nil {
		a.setPhase(types.RunPhaseFailed)
		return NewRuntimeError(err)
	}
	a.result = result

	if err := a.formatter.FormatResults(result); err != nil {
		a.config.Log.Error("Failed to format results", "error", err)
	}
	a.reporter.ReportResults(result.RunID, result)

	// The summary artifact is best-effort; losing it does not change the
	// verdict the per-case logs already support.
	if err := a.fileLogger.Complete(); err != nil {
		a.config.Log.Error("Failed to write run summary", "error", err)
	}

	if result.Verdict == types.VerdictFail && result.FailedCase != nil {
		a.setPhase(types.RunPhaseFailed)
		a.dumpFailure(*result.FailedCase)
		return NewCaseFailureError(result.FailedCase.CaseID, result.FailedCase.LogPath)
	}

	a.setPhase(types.RunPhasePassed)
	a.config.Log.Info("Run completed", "run_id", result.RunID, "verdict", result.Verdict)
	return nil
}

// Phase returns the current point of the run state machine.
func (a *Acceptor) Phase() types.RunPhase {
	a.phaseMu.RLock()
	defer a.phaseMu.RUnlock()
	return a.phase
}

// Result returns the aggregate outcome of the run, nil until the runner
// finished.
func (a *Acceptor) Result() *runner.RunResult {
	return a.result
}

// RunID returns the identifier labeling this run's logs and metrics.
func (a *Acceptor) RunID() string {
	return a.fileLogger.RunID()
}

func (a *Acceptor) setPhase(next types.RunPhase) {
	a.phaseMu.Lock()
	defer a.phaseMu.Unlock()

	if !a.phase.CanTransition(next) {
		a.config.Log.Error("Invalid run phase transition", "from", a.phase, "to", next)
		return
	}
	a.config.Log.Debug("Run phase transition", "from", a.phase, "to", next)
	a.phase = next
}

// dumpFailure prints the failing case's complete captured log to stdout so
// CI surfaces the evidence without a second fetch.
func (a *Acceptor) dumpFailure(res types.CaseResult) {
	fmt.Printf("--- captured log of failed case %s (%s) ---\n", res.CaseID, res.LogPath)
	if err := a.fileLogger.DumpCaseLog(res.CaseID, os.Stdout); err != nil {
		a.config.Log.Error("Failed to dump case log", "case", res.CaseID, "error", err)
	}
	fmt.Printf("--- end of captured log for %s ---\n", res.CaseID)
}
