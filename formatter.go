package acceptor

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/oci-infra/oci-acceptor/runner"
	"github.com/oci-infra/oci-acceptor/types"
)

// ResultFormatter is responsible for formatting and displaying run results.
type ResultFormatter interface {
	FormatResults(result *runner.RunResult) error
}

// ConsoleResultFormatter implements the ResultFormatter interface.
type ConsoleResultFormatter struct {
	logger *slog.Logger
	out    io.Writer
}

// NewConsoleResultFormatter creates a new ConsoleResultFormatter.
func NewConsoleResultFormatter(logger *slog.Logger) *ConsoleResultFormatter {
	return &ConsoleResultFormatter{
		logger: logger,
		out:    os.Stdout,
	}
}

// FormatResults formats and displays the run results.
func (f *ConsoleResultFormatter) FormatResults(result *runner.RunResult) error {
	f.logger.Info("Printing results...")
	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetTitle(fmt.Sprintf("OCI Conformance Results (%s)", formatDuration(result.Duration)))

	// Configure columns
	t.AppendHeader(table.Row{
		"Case", "Duration", "Passed", "Failed", "Skipped", "Status", "Detail",
	})

	// Set column configurations for better readability
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Case", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Skipped", Align: text.AlignRight},
		{Name: "Detail", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, res := range result.Cases {
		t.AppendRow(table.Row{
			res.CaseID,
			formatDuration(res.Duration),
			boolToInt(res.Verdict == types.VerdictPass),
			boolToInt(res.Verdict == types.VerdictFail),
			boolToInt(res.Verdict == types.VerdictSkip),
			getVerdictString(res.Verdict),
			caseDetail(res),
		})
	}

	// Update the table style setting based on the run verdict
	if result.Verdict == types.VerdictFail {
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	} else if result.Stats.Passed == 0 && result.Stats.Skipped > 0 {
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	} else {
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}

	// Add summary footer
	t.AppendFooter(table.Row{
		"TOTAL",
		formatDuration(result.Duration),
		result.Stats.Passed,
		result.Stats.Failed,
		result.Stats.Skipped,
		getVerdictString(result.Verdict),
		"",
	})

	t.Render()

	fmt.Fprintln(f.out, result.String())

	return nil
}

// caseDetail extracts the most pertinent line of context for a case row:
// the skip cause, the exit status, or the first failure directive from the
// captured log.
func caseDetail(res types.CaseResult) string {
	switch res.Verdict {
	case types.VerdictSkip:
		return res.SkipReason
	case types.VerdictFail:
		if res.ExitCode != 0 {
			return fmt.Sprintf("exit status %d", res.ExitCode)
		}
		lines, err := runner.FailureLines(res.LogPath, 1)
		if err != nil || len(lines) == 0 {
			return "failure directive in log"
		}
		return lines[0]
	}
	return ""
}
