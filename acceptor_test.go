package acceptor

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oci-infra/oci-acceptor/logging"
	"github.com/oci-infra/oci-acceptor/runner"
	"github.com/oci-infra/oci-acceptor/suite"
	"github.com/oci-infra/oci-acceptor/types"
)

// mockCaseExecutor mocks the CaseExecutor seam so acceptor tests drive the
// run state machine without spawning case processes.
type mockCaseExecutor struct {
	mock.Mock
}

func (m *mockCaseExecutor) RunCases(ctx context.Context) (*runner.RunResult, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.(*runner.RunResult), args.Error(1)
	}
	return nil, args.Error(1)
}

// setupAcceptorTest wires an Acceptor around the mocked executor with a real
// file logger and suite on temporary directories. Table output is discarded.
func setupAcceptorTest(t *testing.T) (*mockCaseExecutor, *Acceptor) {
	t.Helper()

	fileLogger, err := logging.NewFileLogger(t.TempDir(), uuid.New().String(), quietLogger())
	require.NoError(t, err)

	st, err := suite.NewSuite(suite.Config{
		Log: quietLogger(),
		Dir: t.TempDir(),
	})
	require.NoError(t, err)

	formatter := NewConsoleResultFormatter(quietLogger())
	formatter.out = io.Discard

	mockExec := new(mockCaseExecutor)
	a := &Acceptor{
		config:     &Config{Log: quietLogger()},
		version:    "test",
		suite:      st,
		fileLogger: fileLogger,
		executor:   mockExec,
		formatter:  formatter,
		reporter:   NewDefaultMetricsReporter(),
		phase:      types.RunPhaseNotStarted,
	}
	return mockExec, a
}

func passingResult(runID string) *runner.RunResult {
	return &runner.RunResult{
		RunID:   runID,
		Verdict: types.VerdictPass,
		Cases: []types.CaseResult{
			{CaseID: "default.t", Verdict: types.VerdictPass, Duration: 10 * time.Millisecond},
		},
		Stats:    runner.ResultStats{Total: 1, Passed: 1},
		Duration: 10 * time.Millisecond,
	}
}

// TestAcceptor_Run_AllPass tests that a clean run ends in the passed phase
// with no error and a written summary artifact
func TestAcceptor_Run_AllPass(t *testing.T) {
	mockExec, a := setupAcceptorTest(t)
	mockExec.On("RunCases", mock.Anything).Return(passingResult(a.RunID()), nil)

	err := a.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.RunPhasePassed, a.Phase())
	require.NotNil(t, a.Result())
	assert.Equal(t, types.VerdictPass, a.Result().Verdict)
	assert.FileExists(t, filepath.Join(a.fileLogger.LogDir(), logging.SummaryFilename))
	mockExec.AssertExpectations(t)
}

// TestAcceptor_Run_CaseFailure tests that a failing case surfaces as a
// CaseFailureError naming the case, with the run phase failed
func TestAcceptor_Run_CaseFailure(t *testing.T) {
	mockExec, a := setupAcceptorTest(t)

	// The failure dump reads the captured log back from disk
	f, logPath, err := a.fileLogger.CreateCaseLog("kill.t")
	require.NoError(t, err)
	_, err = f.WriteString("ok 1 - container created\nnot ok 2 - container still running after KILL\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	failed := types.CaseResult{
		CaseID:   "kill.t",
		ExitCode: 1,
		LogPath:  logPath,
		Verdict:  types.VerdictFail,
		Duration: 20 * time.Millisecond,
	}
	result := &runner.RunResult{
		RunID:      a.RunID(),
		Verdict:    types.VerdictFail,
		FailedCase: &failed,
		Cases:      []types.CaseResult{failed},
		Stats:      runner.ResultStats{Total: 1, Failed: 1},
		Duration:   20 * time.Millisecond,
	}
	mockExec.On("RunCases", mock.Anything).Return(result, nil)

	err = a.Run(context.Background())
	require.Error(t, err)
	assert.True(t, IsCaseFailureError(err))
	assert.Contains(t, err.Error(), "kill.t")
	assert.Equal(t, types.RunPhaseFailed, a.Phase())
}

// TestAcceptor_Run_ExecutorError tests that an execution fault is reported
// as a RuntimeError rather than a verdict
func TestAcceptor_Run_ExecutorError(t *testing.T) {
	mockExec, a := setupAcceptorTest(t)
	mockExec.On("RunCases", mock.Anything).Return(nil, fmt.Errorf("exec format error"))

	err := a.Run(context.Background())
	require.Error(t, err)
	assert.True(t, IsRuntimeError(err))
	assert.Equal(t, types.RunPhaseFailed, a.Phase())
	assert.Nil(t, a.Result())
}

// TestAcceptor_Run_Twice tests that the acceptor is single-use
func TestAcceptor_Run_Twice(t *testing.T) {
	mockExec, a := setupAcceptorTest(t)
	mockExec.On("RunCases", mock.Anything).Return(passingResult(a.RunID()), nil).Once()

	require.NoError(t, a.Run(context.Background()))

	err := a.Run(context.Background())
	require.Error(t, err)
	assert.True(t, IsRuntimeError(err))
	assert.Contains(t, err.Error(), "already started")
	mockExec.AssertNumberOfCalls(t, "RunCases", 1)
}

// TestAcceptor_Run_BuildFailure tests that a failing build aborts the run
// before any case executes
func TestAcceptor_Run_BuildFailure(t *testing.T) {
	mockExec, a := setupAcceptorTest(t)

	st, err := suite.NewSuite(suite.Config{
		Log:          quietLogger(),
		Dir:          t.TempDir(),
		BuildDir:     t.TempDir(),
		BuildCommand: []string{"/bin/sh", "-c", "exit 1"},
	})
	require.NoError(t, err)
	a.suite = st
	a.selected = []types.Case{{ID: "default.t", Status: types.CaseStatusActive}}

	err = a.Run(context.Background())
	require.Error(t, err)
	assert.True(t, IsBuildError(err))
	assert.Equal(t, types.RunPhaseFailed, a.Phase())
	mockExec.AssertNumberOfCalls(t, "RunCases", 0)
}

// TestAcceptor_Run_BuildsMissingExecutables tests the building phase: a
// missing executable triggers the build command once, then the run proceeds
func TestAcceptor_Run_BuildsMissingExecutables(t *testing.T) {
	mockExec, a := setupAcceptorTest(t)

	suiteDir := t.TempDir()
	target := filepath.Join(suiteDir, "default.t")
	st, err := suite.NewSuite(suite.Config{
		Log:      quietLogger(),
		Dir:      suiteDir,
		BuildDir: suiteDir,
		BuildCommand: []string{"/bin/sh", "-c",
			fmt.Sprintf("printf '#!/bin/sh\\nexit 0\\n' > %s && chmod +x %s", target, target)},
	})
	require.NoError(t, err)
	a.suite = st
	a.selected = []types.Case{{ID: "default.t", Status: types.CaseStatusActive}}
	mockExec.On("RunCases", mock.Anything).Return(passingResult(a.RunID()), nil)

	err = a.Run(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, target)
	assert.Equal(t, types.RunPhasePassed, a.Phase())
	mockExec.AssertExpectations(t)
}

// TestNew_Validation tests constructor argument checking
func TestNew_Validation(t *testing.T) {
	_, err := New(nil, "test")
	require.Error(t, err)
}

// TestNew_WiresComponents tests that New assembles a ready-to-run acceptor
// from a validated config using the built-in catalog
func TestNew_WiresComponents(t *testing.T) {
	cfg := &Config{
		RuntimePath: "/bin/true",
		SuiteDir:    t.TempDir(),
		LogDir:      t.TempDir(),
		Pattern:     "default",
		Log:         quietLogger(),
	}

	a, err := New(cfg, "test")
	require.NoError(t, err)

	assert.Equal(t, types.RunPhaseNotStarted, a.Phase())
	assert.NotEmpty(t, a.RunID())
	assert.Nil(t, a.Result())
	require.Len(t, a.selected, 1)
	assert.Equal(t, "default.t", a.selected[0].ID)
}
