// Package runner executes conformance cases against the runtime target.
//
// The main components are:
//   - CaseRunner: Runs the selected cases strictly sequentially, in catalog
//     order, stopping at the first failure (fail-fast)
//   - Capability gating: Ineligible cases are recorded as skipped with the
//     missing capability as cause before any process is started
//   - Log parsing: Combined case output is captured to one file per case and
//     scanned for TAP failure directives
//   - RunResult: Aggregates per-case results and counts for the run
//
// Each case runs at most once per invocation, with no per-case timeout: a
// hung case stalls the run. That limitation is deliberate and mirrors how
// the battery is operated in CI.
package runner
