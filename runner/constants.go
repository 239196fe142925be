package runner

import "time"

// Case execution constants
const (
	// RuntimeEnvVar carries the runtime target path into every case
	// process; the case executable contract fixes this name.
	RuntimeEnvVar = "RUNTIME"

	// DefaultSettleDelay is the pause after each executed case, letting the
	// kernel release cgroups and namespaces before the next case starts.
	// Back-to-back execution without it produces flaky resource-contention
	// failures.
	DefaultSettleDelay = 1 * time.Second

	// DefaultSudoPath elevates case invocations when the harness itself is
	// not running as root.
	DefaultSudoPath = "sudo"
)

// DefaultDebugEnv is appended to the case environment when verbose
// diagnostics are enabled.
var DefaultDebugEnv = []string{"RUNTIME_LOG_LEVEL=debug"}
