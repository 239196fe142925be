package acceptor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/oci-infra/oci-acceptor/runner"
	"github.com/oci-infra/oci-acceptor/types"
)

// MockExecutorRunner is a mock implementation of the CaseRunner interface for testing the executor
type MockExecutorRunner struct {
	mock.Mock
}

func (m *MockExecutorRunner) RunAllCases(ctx context.Context) (*runner.RunResult, error) {
	args := m.Called(ctx)
	result := args.Get(0)
	err := args.Error(1)
	if result == nil {
		return nil, err
	}
	return result.(*runner.RunResult), err
}

func (m *MockExecutorRunner) RunCase(ctx context.Context, cs types.Case) (types.CaseResult, error) {
	args := m.Called(ctx, cs)
	return args.Get(0).(types.CaseResult), args.Error(1)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestDefaultCaseExecutor_RunCases_Success tests the success path of the DefaultCaseExecutor
func TestDefaultCaseExecutor_RunCases_Success(t *testing.T) {
	mockRunner := new(MockExecutorRunner)

	expectedResult := &runner.RunResult{
		RunID:   "test-run-1",
		Verdict: types.VerdictPass,
		Stats: runner.ResultStats{
			Total:   5,
			Passed:  5,
			Failed:  0,
			Skipped: 0,
		},
	}

	mockRunner.On("RunAllCases", mock.Anything).Return(expectedResult, nil)

	executor := NewDefaultCaseExecutor(mockRunner, quietLogger())

	result, err := executor.RunCases(context.Background())

	mockRunner.AssertExpectations(t)
	assert.NoError(t, err)
	assert.Equal(t, expectedResult, result)
}

// TestDefaultCaseExecutor_RunCases_Error tests the error handling path of the DefaultCaseExecutor
func TestDefaultCaseExecutor_RunCases_Error(t *testing.T) {
	mockRunner := new(MockExecutorRunner)

	expectedError := errors.New("case runner error")

	mockRunner.On("RunAllCases", mock.Anything).Return(nil, expectedError)

	executor := NewDefaultCaseExecutor(mockRunner, quietLogger())

	result, err := executor.RunCases(context.Background())

	mockRunner.AssertExpectations(t)
	assert.Error(t, err)
	assert.Equal(t, expectedError, err)
	assert.Nil(t, result)
}
