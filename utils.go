package acceptor

import (
	"fmt"
	"time"

	"github.com/oci-infra/oci-acceptor/types"
)

// Helper function to convert bool to int
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// getVerdictString returns a glyphed string representing the case verdict
func getVerdictString(verdict types.Verdict) string {
	switch verdict {
	case types.VerdictPass:
		return "✓ pass"
	case types.VerdictSkip:
		return "- skip"
	default:
		return "✗ fail"
	}
}

// Helper function to format duration to seconds with 1 decimal place
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
