package runner

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/acarl005/stripansi"
	"github.com/pkg/errors"
)

// Case executables emit line-oriented TAP directives; a "not ok" line means
// the case observed a conformance violation even when the process itself
// exits zero.
var failureMarker = regexp.MustCompile(`^not ok\b`)

// maxLogLineBytes bounds scanner buffers; runtime diagnostics can emit very
// long single lines.
const maxLogLineBytes = 1024 * 1024

// LogReportsFailure reports whether the captured case log contains a TAP
// failure directive. Lines are ANSI-stripped before matching so colored
// output cannot hide a marker, and the marker must open the line so quoted
// diagnostics do not count.
func LogReportsFailure(logPath string) (bool, error) {
	f, err := os.Open(logPath)
	if err != nil {
		return false, errors.Wrap(err, "opening case log")
	}
	defer f.Close()
	return scanForFailure(f)
}

func scanForFailure(r io.Reader) (bool, error) {
	scanner := newLogScanner(r)
	for scanner.Scan() {
		if isFailureLine(scanner.Text()) {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, errors.Wrap(err, "scanning case log")
	}
	return false, nil
}

// FailureLines returns up to max TAP failure directives from the log, for
// display in run summaries and the results table.
func FailureLines(logPath string, max int) ([]string, error) {
	f, err := os.Open(logPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening case log")
	}
	defer f.Close()

	var lines []string
	scanner := newLogScanner(f)
	for scanner.Scan() {
		if len(lines) == max {
			break
		}
		if isFailureLine(scanner.Text()) {
			lines = append(lines, strings.TrimSpace(stripansi.Strip(scanner.Text())))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scanning case log")
	}
	return lines, nil
}

func newLogScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLogLineBytes)
	return scanner
}

func isFailureLine(line string) bool {
	return failureMarker.MatchString(strings.TrimSpace(stripansi.Strip(line)))
}
