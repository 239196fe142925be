package types

// RunPhase tracks a harness run through its lifecycle:
// not_started -> building -> running -> {passed | failed}.
// Building is skipped when all case executables already exist; failed
// short-circuits the remaining running transitions (fail-fast).
type RunPhase string

const (
	RunPhaseNotStarted RunPhase = "not_started"
	RunPhaseBuilding   RunPhase = "building"
	RunPhaseRunning    RunPhase = "running"
	RunPhasePassed     RunPhase = "passed"
	RunPhaseFailed     RunPhase = "failed"
)

// Terminal reports whether the phase ends the run.
func (p RunPhase) Terminal() bool {
	return p == RunPhasePassed || p == RunPhaseFailed
}

// CanTransition reports whether moving from p to next is a legal step of the
// run state machine. Legal steps: not_started may start building or running
// (building is optional), building feeds running or failed (build errors),
// running ends in passed or failed.
func (p RunPhase) CanTransition(next RunPhase) bool {
	switch p {
	case RunPhaseNotStarted:
		return next == RunPhaseBuilding || next == RunPhaseRunning
	case RunPhaseBuilding:
		return next == RunPhaseRunning || next == RunPhaseFailed
	case RunPhaseRunning:
		return next == RunPhasePassed || next == RunPhaseFailed
	}
	return false
}
