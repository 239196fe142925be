package acceptor

import (
	"context"
	"log/slog"

	"github.com/oci-infra/oci-acceptor/runner"
)

// CaseExecutor is responsible for running the selected conformance cases.
type CaseExecutor interface {
	RunCases(ctx context.Context) (*runner.RunResult, error)
}

// DefaultCaseExecutor implements the CaseExecutor interface.
type DefaultCaseExecutor struct {
	runner runner.CaseRunner
	logger *slog.Logger
}

// NewDefaultCaseExecutor creates a new DefaultCaseExecutor.
func NewDefaultCaseExecutor(runner runner.CaseRunner, logger *slog.Logger) *DefaultCaseExecutor {
	return &DefaultCaseExecutor{
		runner: runner,
		logger: logger,
	}
}

// RunCases runs all selected cases and returns the results.
func (e *DefaultCaseExecutor) RunCases(ctx context.Context) (*runner.RunResult, error) {
	e.logger.Info("Running all cases...")
	result, err := e.runner.RunAllCases(ctx)
	if err != nil {
		e.logger.Error("Error running cases", "error", err)
		return nil, err
	}
	e.logger.Info("Run completed", "run_id", result.RunID, "verdict", result.Verdict)
	return result, nil
}
