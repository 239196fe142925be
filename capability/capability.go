// Package capability decides case eligibility from observed host features.
// Eligibility is a skip decision, never a failure: cases requiring a feature
// the host lacks are reported skipped with the missing capability as cause.
package capability

import (
	"os"
	"path/filepath"
	"regexp"
)

// DefaultCgroupRoot is where the legacy cgroup v1 hierarchy is mounted.
const DefaultCgroupRoot = "/sys/fs/cgroup"

// memswLimitFile is the legacy memory-swap accounting control file. Kernels
// built without swap accounting, and hosts on a unified cgroup v2 hierarchy,
// do not expose it.
const memswLimitFile = "memory/memory.memsw.limit_in_bytes"

// Host is an immutable snapshot of host capabilities, probed once per run
// and shared read-only by every eligibility check.
type Host struct {
	MemorySwapAccounting bool
}

// Probe observes the host's capabilities under the given cgroup root.
// An empty root selects DefaultCgroupRoot.
func Probe(root string) Host {
	if root == "" {
		root = DefaultCgroupRoot
	}
	return Host{
		MemorySwapAccounting: fileExists(filepath.Join(root, memswLimitFile)),
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// rule maps a case-ID pattern to the capability it requires. New
// requirements are added as rows here, never as special cases in the runner.
type rule struct {
	pattern *regexp.Regexp
	met     func(Host) bool
	reason  string
}

var rules = []rule{
	{
		pattern: regexp.MustCompile(`memory|hugetlb`),
		met:     func(h Host) bool { return h.MemorySwapAccounting },
		reason:  "host lacks legacy memory swap accounting (memory.memsw.limit_in_bytes)",
	},
}

// Eligible reports whether the case can run on the host. When it cannot,
// the returned reason names the missing capability.
func Eligible(caseID string, host Host) (bool, string) {
	for _, r := range rules {
		if r.pattern.MatchString(caseID) && !r.met(host) {
			return false, r.reason
		}
	}
	return true, ""
}
