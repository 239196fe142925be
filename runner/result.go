package runner

import (
	"fmt"
	"strings"
	"time"

	"github.com/oci-infra/oci-acceptor/types"
)

// RunResult captures the aggregate outcome of one harness run
type RunResult struct {
	RunID string
	// Cases holds one result per scheduled case, in execution order. After
	// a fail-fast stop it covers only the cases that ran.
	Cases      []types.CaseResult
	Stats      ResultStats
	Verdict    types.Verdict
	FailedCase *types.CaseResult // set when fail-fast fired
	Duration   time.Duration
}

// ResultStats tracks case counts for a run
type ResultStats struct {
	Total     int
	Passed    int
	Failed    int
	Skipped   int
	StartTime time.Time
	EndTime   time.Time
}

func (r *RunResult) addResult(res types.CaseResult) {
	r.Cases = append(r.Cases, res)
	r.Stats.Total++
	switch res.Verdict {
	case types.VerdictPass:
		r.Stats.Passed++
	case types.VerdictFail:
		r.Stats.Failed++
		failed := res
		r.FailedCase = &failed
	case types.VerdictSkip:
		r.Stats.Skipped++
	}
}

// String returns a formatted string representation of the run results
func (r *RunResult) String() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Conformance Run Results (%s):\n", formatDuration(r.Duration)))
	b.WriteString(fmt.Sprintf("Total: %d, Passed: %d, Failed: %d, Skipped: %d\n",
		r.Stats.Total, r.Stats.Passed, r.Stats.Failed, r.Stats.Skipped))

	for i, res := range r.Cases {
		prefix := "├──"
		if i == len(r.Cases)-1 {
			prefix = "└──"
		}
		switch res.Verdict {
		case types.VerdictSkip:
			b.WriteString(fmt.Sprintf("%s %s [verdict=%s] (%s)\n",
				prefix, res.CaseID, res.Verdict, res.SkipReason))
		case types.VerdictFail:
			b.WriteString(fmt.Sprintf("%s %s (%s) [verdict=%s] exit=%d log=%s\n",
				prefix, res.CaseID, formatDuration(res.Duration), res.Verdict, res.ExitCode, res.LogPath))
		default:
			b.WriteString(fmt.Sprintf("%s %s (%s) [verdict=%s]\n",
				prefix, res.CaseID, formatDuration(res.Duration), res.Verdict))
		}
	}
	return b.String()
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
