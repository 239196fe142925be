package metrics

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/oci-infra/oci-acceptor/types"
)

func TestErrToLabel(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{
			name: "nil error",
			err:  nil,
		},
		{
			name: "simple error",
			err:  errors.New("test error"),
		},
		{
			name: "error with special chars",
			err:  errors.New("test@error#123"),
		},
		{
			name: "error with multiple spaces",
			err:  errors.New("test   error"),
		},
		{
			name: "error with multiple underscores",
			err:  errors.New("test__error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := errToLabel(tt.err)
			validLabelRegex := regexp.MustCompile(`[a-zA-Z_][a-zA-Z0-9_]*`)
			if !validLabelRegex.MatchString(result) {
				t.Errorf("errLabel() = %v, is not a valid Prometheus label", result)
			}
		})
	}
}

func TestRecordError(t *testing.T) {
	// just test that it doesn't panic
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("RecordError panic'd")
		}
	}()

	RecordError("test_error")
}

func TestRecordErrorDetails(t *testing.T) {
	// Test with nil error
	RecordErrorDetails("test", nil)

	// Test with actual error
	RecordErrorDetails("test", errors.New("sample error"))
}

func TestRecordCase(t *testing.T) {
	RecordCase("run1", "default.t", types.VerdictPass, time.Second)
	RecordCase("run1", "kill.t", types.VerdictFail, 500*time.Millisecond)
	RecordCase("run1", "linux_cgroups_memory.t", types.VerdictSkip, 0)

	// An unknown verdict is dropped rather than recorded
	RecordCase("run1", "default.t", types.Verdict("maybe"), time.Second)
}

func TestRecordRun(t *testing.T) {
	RecordRun("run1", "pass", 3, 2, 0, 1, time.Minute)
	RecordRun("run2", "fail", 3, 1, 1, 1, 30*time.Second)
}

func TestRecordBuild(t *testing.T) {
	RecordBuild("success", 10*time.Second)
	RecordBuild("failure", time.Second)
}
