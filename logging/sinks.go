package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/acarl005/stripansi"
	"github.com/pkg/errors"

	"github.com/oci-infra/oci-acceptor/types"
)

// summaryTailLines bounds the failure excerpt carried into the summary.
const summaryTailLines = 20

// SummarySink accumulates case results and writes the run summary artifact
// when the run completes. The summary lists every case outcome and, for the
// failing case, an ANSI-stripped tail of its log.
type SummarySink struct {
	path    string
	mu      sync.Mutex
	results []types.CaseResult
}

// NewSummarySink creates a summary sink writing to path.
func NewSummarySink(path string) *SummarySink {
	return &SummarySink{path: path}
}

// Consume implements ResultSink.
func (s *SummarySink) Consume(result types.CaseResult, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
	return nil
}

// Complete implements ResultSink by rendering and writing the summary file.
func (s *SummarySink) Complete(runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	b.WriteString("═══════════════════════════════════════════════\n")
	b.WriteString(fmt.Sprintf("  OCI conformance run %s\n", runID))
	b.WriteString("═══════════════════════════════════════════════\n\n")

	var passed, failed, skipped int
	for _, res := range s.results {
		switch res.Verdict {
		case types.VerdictSkip:
			skipped++
			b.WriteString(fmt.Sprintf("[skip] %s: %s\n", res.CaseID, res.SkipReason))
		case types.VerdictFail:
			failed++
			b.WriteString(fmt.Sprintf("[fail] %s (%.1fs) exit=%d log=%s\n",
				res.CaseID, res.Duration.Seconds(), res.ExitCode, res.LogPath))
			for _, line := range logTail(res.LogPath, summaryTailLines) {
				b.WriteString("       " + line + "\n")
			}
		default:
			passed++
			b.WriteString(fmt.Sprintf("[pass] %s (%.1fs)\n", res.CaseID, res.Duration.Seconds()))
		}
	}

	b.WriteString("\n───────────────────────────────────────────────\n")
	b.WriteString(fmt.Sprintf("Total: %d, Passed: %d, Failed: %d, Skipped: %d\n",
		len(s.results), passed, failed, skipped))

	if err := os.WriteFile(s.path, []byte(b.String()), 0644); err != nil {
		return errors.Wrap(err, "writing run summary")
	}
	return nil
}

// logTail returns the last maxLines lines of the log at path, ANSI-stripped.
// Best effort: an unreadable log yields no excerpt.
func logTail(path string, maxLines int) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	content := strings.TrimRight(stripansi.Strip(string(data)), "\n")
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return lines
}
