package flags

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "OCI_ACCEPTOR"

// prefixEnvVars binds a flag to its single OCI_ACCEPTOR_-prefixed
// environment variable.
func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	Runtime = &cli.StringFlag{
		Name:     "runtime",
		Value:    "",
		Required: true,
		EnvVars:  prefixEnvVars("RUNTIME"),
		Usage:    "Path or PATH-resolvable name of the OCI runtime under test (eg. '/usr/local/bin/youki')",
	}
	SuiteDir = &cli.StringFlag{
		Name:    "suite-dir",
		Value:   "./validation",
		EnvVars: prefixEnvVars("SUITE_DIR"),
		Usage:   "Directory holding the validation case executables",
	}
	BuildDir = &cli.StringFlag{
		Name:    "build-dir",
		Value:   "",
		EnvVars: prefixEnvVars("BUILD_DIR"),
		Usage:   "Directory the build command runs in. Defaults to the parent of suite-dir.",
	}
	BuildCmd = &cli.StringSliceFlag{
		Name:    "build-cmd",
		EnvVars: prefixEnvVars("BUILD_CMD"),
		Usage:   "Build command argv for materializing missing executables (repeat per argument). Defaults to 'make runtimetest validation-executables'.",
	}
	Catalog = &cli.StringFlag{
		Name:    "catalog",
		Value:   "",
		EnvVars: prefixEnvVars("CATALOG"),
		Usage:   "Path to a YAML catalog override (eg. 'catalog.yaml'). Omit to run the built-in catalog.",
	}
	LogDir = &cli.StringFlag{
		Name:    "log-dir",
		Value:   "./log",
		EnvVars: prefixEnvVars("LOG_DIR"),
		Usage:   "Directory to store per-case logs and the run summary",
	}
	SettleDelay = &cli.DurationFlag{
		Name:    "settle-delay",
		Value:   time.Second,
		EnvVars: prefixEnvVars("SETTLE_DELAY"),
		Usage:   "Pause after each executed case so the kernel releases namespaces and cgroups. Set to 0 to disable.",
	}
	Debug = &cli.BoolFlag{
		Name:    "debug",
		Value:   false,
		EnvVars: prefixEnvVars("DEBUG"),
		Usage:   "Propagate debug log variables into each case",
	}
	Sudo = &cli.BoolFlag{
		Name:    "sudo",
		Value:   true,
		EnvVars: prefixEnvVars("SUDO"),
		Usage:   "Invoke cases through sudo when not already running as root",
	}
	EnvFile = &cli.StringFlag{
		Name:    "env-file",
		Value:   "",
		EnvVars: prefixEnvVars("ENV_FILE"),
		Usage:   "Optional .env file loaded before flags are resolved",
	}
	LogLevel = &cli.StringFlag{
		Name:    "log-level",
		Value:   "info",
		EnvVars: prefixEnvVars("LOG_LEVEL"),
		Usage:   "Log level: debug, info, warn or error",
	}
	LogFormat = &cli.StringFlag{
		Name:    "log-format",
		Value:   "text",
		EnvVars: prefixEnvVars("LOG_FORMAT"),
		Usage:   "Log format: text or json",
	}
	MetricsEnabled = &cli.BoolFlag{
		Name:    "metrics-enabled",
		Value:   false,
		EnvVars: prefixEnvVars("METRICS_ENABLED"),
		Usage:   "Serve healthz and Prometheus metrics while the run is in progress",
	}
)

var requiredFlags = []cli.Flag{
	Runtime,
}

var optionalFlags = []cli.Flag{
	SuiteDir,
	BuildDir,
	BuildCmd,
	Catalog,
	LogDir,
	SettleDelay,
	Debug,
	Sudo,
	EnvFile,
	LogLevel,
	LogFormat,
	MetricsEnabled,
}
var Flags []cli.Flag

func init() {
	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}
