// Package suite locates conformance case executables on disk and
// materializes them through the external build step when any are absent.
package suite

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/oci-infra/oci-acceptor/types"
)

// DefaultBuildCommand builds the runtimetest binary and every validation
// executable in one pass.
var DefaultBuildCommand = []string{"make", "runtimetest", "validation-executables"}

// buildOutputTail bounds how much build output travels inside a build error.
const buildOutputTail = 4096

// Suite addresses the on-disk executable form of catalog entries.
type Suite struct {
	config Config
}

// Config contains suite configuration
type Config struct {
	Log *slog.Logger
	// Dir holds the case executables; case IDs are relative paths under it.
	Dir string
	// BuildDir is where the build command runs. Defaults to the parent of
	// Dir, the layout the validation suite checkout uses.
	BuildDir string
	// BuildCommand is the external, idempotent build invocation.
	BuildCommand []string
}

// NewSuite creates a suite over the given executable directory.
func NewSuite(cfg Config) (*Suite, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("suite directory is required")
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.BuildDir == "" {
		cfg.BuildDir = filepath.Dir(cfg.Dir)
	}
	if len(cfg.BuildCommand) == 0 {
		cfg.BuildCommand = DefaultBuildCommand
	}
	return &Suite{config: cfg}, nil
}

// CasePath returns the path of the case's executable form.
func (s *Suite) CasePath(caseID string) string {
	return filepath.Join(s.config.Dir, caseID)
}

// RootDir returns the suite checkout root, the working directory case
// processes and the build command run in.
func (s *Suite) RootDir() string {
	return s.config.BuildDir
}

// Missing returns the IDs of cases whose executable is absent, in catalog
// order.
func (s *Suite) Missing(cases []types.Case) []string {
	var missing []string
	for _, cs := range cases {
		if _, err := os.Stat(s.CasePath(cs.ID)); err != nil {
			missing = append(missing, cs.ID)
		}
	}
	return missing
}

// EnsureBuilt materializes the executables for the given cases. A single
// missing executable triggers the build command once for the whole set; the
// suite never probes and rebuilds per case. The build failing, or leaving
// any executable still missing afterwards, aborts the run before any case
// executes.
func (s *Suite) EnsureBuilt(ctx context.Context, cases []types.Case) error {
	missing := s.Missing(cases)
	if len(missing) == 0 {
		s.config.Log.Debug("All case executables present", "dir", s.config.Dir)
		return nil
	}

	s.config.Log.Info("Building case executables",
		"missing", len(missing),
		"dir", s.config.BuildDir,
		"command", strings.Join(s.config.BuildCommand, " "))

	cmd := exec.CommandContext(ctx, s.config.BuildCommand[0], s.config.BuildCommand[1:]...)
	cmd.Dir = s.config.BuildDir
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "build command failed:\n%s", tail(output.String(), buildOutputTail))
	}

	if still := s.Missing(cases); len(still) > 0 {
		return fmt.Errorf("build succeeded but executables are still missing: %s", strings.Join(still, ", "))
	}

	s.config.Log.Info("Case executables built", "count", len(missing))
	return nil
}

// tail returns at most n trailing bytes of out, cut at a line boundary.
func tail(out string, n int) string {
	if len(out) <= n {
		return out
	}
	out = out[len(out)-n:]
	if i := strings.IndexByte(out, '\n'); i >= 0 && i+1 < len(out) {
		out = out[i+1:]
	}
	return out
}
