package acceptor

import (
	"errors"
	"fmt"
)

// RuntimeError represents an operational error that should lead to exit code 2
// Examples include configuration errors, an unresolvable runtime binary, etc.
type RuntimeError struct {
	Err error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// NewRuntimeError creates a new RuntimeError
func NewRuntimeError(err error) *RuntimeError {
	return &RuntimeError{Err: err}
}

// IsRuntimeError checks if the error is or wraps a RuntimeError
func IsRuntimeError(err error) bool {
	var runtimeErr *RuntimeError
	return err != nil && errors.As(err, &runtimeErr)
}

// BuildError represents a failed materialization of the validation
// executables (exit code 2). The run never started, so this is not a case
// failure.
type BuildError struct {
	Err error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build error: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *BuildError) Unwrap() error {
	return e.Err
}

// NewBuildError creates a new BuildError
func NewBuildError(err error) *BuildError {
	return &BuildError{Err: err}
}

// IsBuildError checks if the error is or wraps a BuildError
func IsBuildError(err error) bool {
	var buildErr *BuildError
	return err != nil && errors.As(err, &buildErr)
}

// CaseFailureError represents a conformance case failure (exit code 1). It
// names the case that fail-fasted the run and where its captured log lives.
type CaseFailureError struct {
	CaseID  string
	LogPath string
}

func (e *CaseFailureError) Error() string {
	return fmt.Sprintf("case failure: %s (log: %s)", e.CaseID, e.LogPath)
}

// NewCaseFailureError creates a new CaseFailureError
func NewCaseFailureError(caseID, logPath string) *CaseFailureError {
	return &CaseFailureError{CaseID: caseID, LogPath: logPath}
}

// IsCaseFailureError checks if the error is or wraps a CaseFailureError
func IsCaseFailureError(err error) bool {
	var caseErr *CaseFailureError
	return err != nil && errors.As(err, &caseErr)
}
