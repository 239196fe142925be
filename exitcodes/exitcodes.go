// Package exitcodes defines the standard exit codes used by oci-acceptor.
package exitcodes

// Exit code constants used by oci-acceptor
// These constants define the exit codes that the harness uses to indicate
// various states when it exits:
//
// * Success (0): Used when every selected, eligible case passes
// * CaseFailure (1): Used when a conformance case fails (fail-fast)
// * RuntimeErr (2): Used for runtime errors such as bad configuration,
//   build failures or panics
const (
	Success     = 0 // All cases pass
	CaseFailure = 1 // A conformance case failed
	RuntimeErr  = 2 // Runtime, configuration or build errors
)
