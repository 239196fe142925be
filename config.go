package acceptor

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/oci-infra/oci-acceptor/catalog"
	"github.com/oci-infra/oci-acceptor/flags"
)

// Config holds the application configuration
type Config struct {
	RuntimePath    string        // Absolute path of the runtime under test, injected as RUNTIME
	SuiteDir       string        // Directory holding the validation executables
	BuildDir       string        // Directory the build command runs in (default: parent of SuiteDir)
	BuildCommand   []string      // Command that materializes missing executables
	CatalogFile    string        // Optional YAML catalog override; empty selects the built-in catalog
	LogDir         string        // Directory for per-case logs and the run summary
	Pattern        string        // Case selection pattern (unanchored regular expression)
	SettleDelay    time.Duration // Pause after each executed case
	Debug          bool          // Propagate debug variables into each case
	Sudo           bool          // Elevate case invocations when not already root
	MetricsEnabled bool          // Serve healthz and Prometheus metrics during the run
	Log            *slog.Logger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, log *slog.Logger) (*Config, error) {
	// Parse flags
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}

	runtimePath, err := resolveRuntime(ctx.String(flags.Runtime.Name))
	if err != nil {
		return nil, err
	}

	// The selection pattern rides as the single positional argument
	pattern := ctx.Args().First()
	if pattern == "" {
		pattern = catalog.DefaultPattern
	}
	if _, err := regexp.Compile(pattern); err != nil {
		return nil, fmt.Errorf("invalid selection pattern %q: %w", pattern, err)
	}

	// Resolve the absolute paths
	suiteDir, err := filepath.Abs(ctx.String(flags.SuiteDir.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for suite directory '%s': %w", ctx.String(flags.SuiteDir.Name), err)
	}

	buildDir := ctx.String(flags.BuildDir.Name)
	if buildDir != "" {
		buildDir, err = filepath.Abs(buildDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path for build directory '%s': %w", ctx.String(flags.BuildDir.Name), err)
		}
	}

	catalogFile := ctx.String(flags.Catalog.Name)
	if catalogFile != "" {
		catalogFile, err = filepath.Abs(catalogFile)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path for catalog file '%s': %w", ctx.String(flags.Catalog.Name), err)
		}
	}

	// Get log directory, default to "log" if not specified
	logDir := ctx.String(flags.LogDir.Name)
	if logDir == "" {
		logDir = "log"
	}
	logDir, err = filepath.Abs(logDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for log directory '%s': %w", logDir, err)
	}

	settleDelay := ctx.Duration(flags.SettleDelay.Name)
	if settleDelay < 0 {
		return nil, fmt.Errorf("settle delay must not be negative, got %s", settleDelay)
	}

	return &Config{
		RuntimePath:    runtimePath,
		SuiteDir:       suiteDir,
		BuildDir:       buildDir,
		BuildCommand:   ctx.StringSlice(flags.BuildCmd.Name),
		CatalogFile:    catalogFile,
		LogDir:         logDir,
		Pattern:        pattern,
		SettleDelay:    settleDelay,
		Debug:          ctx.Bool(flags.Debug.Name),
		Sudo:           ctx.Bool(flags.Sudo.Name),
		MetricsEnabled: ctx.Bool(flags.MetricsEnabled.Name),
		Log:            log,
	}, nil
}

// resolveRuntime resolves the runtime under test to an absolute executable
// path. Bare names are looked up in PATH; anything with a path separator is
// taken as a filesystem path. Cases receive the absolute path via RUNTIME,
// so resolution happens exactly once, here.
func resolveRuntime(runtime string) (string, error) {
	if runtime == "" {
		return "", fmt.Errorf("runtime is required")
	}

	if !strings.Contains(runtime, string(os.PathSeparator)) {
		found, err := exec.LookPath(runtime)
		if err != nil {
			return "", fmt.Errorf("runtime %q not found in PATH: %w", runtime, err)
		}
		runtime = found
	}

	abs, err := filepath.Abs(runtime)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for runtime '%s': %w", runtime, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("runtime binary is not accessible: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("runtime path %s is a directory", abs)
	}
	if info.Mode()&0111 == 0 {
		return "", fmt.Errorf("runtime binary %s is not executable", abs)
	}

	return abs, nil
}
