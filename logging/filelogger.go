// Package logging manages the on-disk artifacts of a harness run: one
// combined-output log per executed case, retained across runs for post-hoc
// inspection, plus a per-run summary.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/oci-infra/oci-acceptor/types"
)

// SummaryFilename is the per-run summary artifact inside the log directory.
const SummaryFilename = "summary.log"

// ResultSink is an interface for different ways of consuming case results
type ResultSink interface {
	// Consume processes a single case result
	Consume(result types.CaseResult, runID string) error
	// Complete is called once all results have been consumed
	Complete(runID string) error
}

// FileLogger owns the log directory layout. Case logs live at
// <baseDir>/<caseID>.log; they are overwritten run over run and never
// deleted by the harness.
type FileLogger struct {
	baseDir string
	runID   string
	sinks   []ResultSink
	log     *slog.Logger
	mu      sync.Mutex
}

// NewFileLogger creates the log directory and the default sinks.
func NewFileLogger(baseDir, runID string, log *slog.Logger) (*FileLogger, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("log directory is required")
	}
	if runID == "" {
		return nil, fmt.Errorf("run ID is required")
	}
	if log == nil {
		log = slog.Default()
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, errors.Wrap(err, "creating log directory")
	}

	return &FileLogger{
		baseDir: baseDir,
		runID:   runID,
		log:     log,
		sinks:   []ResultSink{NewSummarySink(filepath.Join(baseDir, SummaryFilename))},
	}, nil
}

// RunID returns the run this logger writes for.
func (l *FileLogger) RunID() string {
	return l.runID
}

// LogDir returns the root log directory.
func (l *FileLogger) LogDir() string {
	return l.baseDir
}

// CaseLogPath returns the log file path for a case.
func (l *FileLogger) CaseLogPath(caseID string) string {
	return filepath.Join(l.baseDir, caseID+".log")
}

// CreateCaseLog creates or truncates the case's log file, creating parent
// directories as needed. The caller owns the returned file.
func (l *FileLogger) CreateCaseLog(caseID string) (*os.File, string, error) {
	path := l.CaseLogPath(caseID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, "", errors.Wrap(err, "creating case log directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, "", errors.Wrap(err, "creating case log file")
	}
	return f, path, nil
}

// DumpCaseLog copies the case's full captured log to w, unmodified.
func (l *FileLogger) DumpCaseLog(caseID string, w io.Writer) error {
	f, err := os.Open(l.CaseLogPath(caseID))
	if err != nil {
		return errors.Wrap(err, "opening case log")
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return errors.Wrap(err, "dumping case log")
	}
	return nil
}

// AddSink registers an additional result consumer.
func (l *FileLogger) AddSink(sink ResultSink) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sinks = append(l.sinks, sink)
}

// Consume forwards a case result to every sink.
func (l *FileLogger) Consume(result types.CaseResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, sink := range l.sinks {
		if err := sink.Consume(result, l.runID); err != nil {
			return err
		}
	}
	return nil
}

// Complete finalizes every sink; call it exactly once per run.
func (l *FileLogger) Complete() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, sink := range l.sinks {
		if err := sink.Complete(l.runID); err != nil {
			return err
		}
	}
	return nil
}
