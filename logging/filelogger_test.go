package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oci-infra/oci-acceptor/types"
)

func TestNewFileLoggerValidation(t *testing.T) {
	_, err := NewFileLogger("", "run-1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log directory is required")

	_, err = NewFileLogger(t.TempDir(), "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run ID is required")
}

func TestNewFileLoggerCreatesDirectory(t *testing.T) {
	base := filepath.Join(t.TempDir(), "log")

	l, err := NewFileLogger(base, "run-1", nil)
	require.NoError(t, err)
	assert.Equal(t, "run-1", l.RunID())
	assert.Equal(t, base, l.LogDir())

	info, err := os.Stat(base)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCreateCaseLog(t *testing.T) {
	base := filepath.Join(t.TempDir(), "log")
	l, err := NewFileLogger(base, "run-1", nil)
	require.NoError(t, err)

	t.Run("creates and truncates the case log", func(t *testing.T) {
		f, path, err := l.CreateCaseLog("create.t")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(base, "create.t.log"), path)
		assert.Equal(t, path, l.CaseLogPath("create.t"))

		_, err = f.WriteString("first run output\n")
		require.NoError(t, err)
		require.NoError(t, f.Close())

		// A second run overwrites the same fixed path.
		f, _, err = l.CreateCaseLog("create.t")
		require.NoError(t, err)
		_, err = f.WriteString("second\n")
		require.NoError(t, err)
		require.NoError(t, f.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "second\n", string(data))
	})

	t.Run("creates parent directories for nested case IDs", func(t *testing.T) {
		f, path, err := l.CreateCaseLog("cgroups/memory.t")
		require.NoError(t, err)
		require.NoError(t, f.Close())
		assert.Equal(t, filepath.Join(base, "cgroups", "memory.t.log"), path)
	})
}

func TestDumpCaseLog(t *testing.T) {
	base := filepath.Join(t.TempDir(), "log")
	l, err := NewFileLogger(base, "run-1", nil)
	require.NoError(t, err)

	f, _, err := l.CreateCaseLog("delete.t")
	require.NoError(t, err)
	_, err = f.WriteString("ok 1 - created\nnot ok 2 - deleted\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	var buf bytes.Buffer
	require.NoError(t, l.DumpCaseLog("delete.t", &buf))
	assert.Equal(t, "ok 1 - created\nnot ok 2 - deleted\n", buf.String())

	err = l.DumpCaseLog("never-ran.t", &buf)
	require.Error(t, err)
}

// recordingSink captures consumed results for assertions.
type recordingSink struct {
	results   []types.CaseResult
	completed int
}

func (r *recordingSink) Consume(result types.CaseResult, _ string) error {
	r.results = append(r.results, result)
	return nil
}

func (r *recordingSink) Complete(_ string) error {
	r.completed++
	return nil
}

func TestConsumeAndComplete(t *testing.T) {
	base := filepath.Join(t.TempDir(), "log")
	l, err := NewFileLogger(base, "run-1", nil)
	require.NoError(t, err)

	sink := &recordingSink{}
	l.AddSink(sink)

	res := types.CaseResult{CaseID: "create.t", Verdict: types.VerdictPass}
	require.NoError(t, l.Consume(res))
	require.NoError(t, l.Complete())

	require.Len(t, sink.results, 1)
	assert.Equal(t, "create.t", sink.results[0].CaseID)
	assert.Equal(t, 1, sink.completed)

	// The default summary sink wrote the run artifact.
	_, err = os.Stat(filepath.Join(base, SummaryFilename))
	require.NoError(t, err)
}
