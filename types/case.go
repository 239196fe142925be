package types

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// CaseStatus represents the catalog membership status of a conformance case
type CaseStatus string

const (
	// CaseStatusActive cases are scheduled whenever they match the
	// selection pattern and the host supports them.
	CaseStatusActive CaseStatus = "active"
	// CaseStatusKnownFailure marks cases permanently excluded because the
	// scenario is known to fail for reasons outside this harness.
	CaseStatusKnownFailure CaseStatus = "excluded-known-failure"
	// CaseStatusEnvLimited marks cases permanently excluded because the
	// execution environment cannot satisfy their prerequisites.
	CaseStatusEnvLimited CaseStatus = "excluded-environment-limitation"
	// CaseStatusFlaky marks cases permanently excluded for nondeterministic
	// behavior (hangs, timing-dependent results).
	CaseStatusFlaky CaseStatus = "excluded-flaky"
)

// Valid reports whether s is one of the defined statuses.
func (s CaseStatus) Valid() bool {
	switch s {
	case CaseStatusActive, CaseStatusKnownFailure, CaseStatusEnvLimited, CaseStatusFlaky:
		return true
	}
	return false
}

// Excluded reports whether the status removes the case from scheduling
// regardless of the selection pattern.
func (s CaseStatus) Excluded() bool {
	return s.Valid() && s != CaseStatusActive
}

// Case is one entry of the conformance catalog. ID is the relative path of
// the case's executable form within the suite directory and doubles as the
// case's display name. Excluded entries carry the rationale in Reason.
type Case struct {
	ID     string     `yaml:"id"`
	Status CaseStatus `yaml:"status,omitempty"`
	Reason string     `yaml:"reason,omitempty"`
}

// Validate checks the structural invariants of a single catalog entry.
func (c Case) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("case ID cannot be empty")
	}
	if path.IsAbs(c.ID) || c.ID != path.Clean(c.ID) || strings.HasPrefix(c.ID, "..") {
		return fmt.Errorf("case ID %q must be a clean relative path", c.ID)
	}
	if !c.Status.Valid() {
		return fmt.Errorf("case %s has unknown status %q", c.ID, c.Status)
	}
	if c.Status.Excluded() && c.Reason == "" {
		return fmt.Errorf("excluded case %s must record a rationale", c.ID)
	}
	if !c.Status.Excluded() && c.Reason != "" {
		return fmt.Errorf("active case %s must not carry an exclusion rationale", c.ID)
	}
	return nil
}

// Verdict classifies the outcome of one case execution
type Verdict string

const (
	VerdictPass Verdict = "pass"
	VerdictFail Verdict = "fail"
	VerdictSkip Verdict = "skip"
)

// CaseResult captures the outcome of a single case execution
type CaseResult struct {
	CaseID     string
	ExitCode   int           // exit code of the case process; 0 for skips
	LogPath    string        // combined-output log file; empty for skips
	Verdict    Verdict
	SkipReason string        // cause of ineligibility when Verdict is skip
	Duration   time.Duration // wall time of the case process, excluding the settling delay
}

// RuntimeTarget is the container runtime executable under test. Path is
// resolved to an absolute location once at startup and shared read-only by
// every case invocation.
type RuntimeTarget struct {
	Path string
}
