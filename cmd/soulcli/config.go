package main

import (
	"flag"
	"os"
	"strings"
)

// globalConfig holds the handful of flags that apply regardless of which
// subcommand runs. Flags win over the SOULCLI_*-prefixed environment
// overrides when both are set.
type globalConfig struct {
	logFormat   string
	logLevel    string
	showVersion bool
}

// parseGlobalFlags consumes leading --log-format/--log-level/--version
// flags and returns the remaining arguments (the subcommand and its own
// flags) untouched.
func parseGlobalFlags(args []string) (*globalConfig, []string) {
	fs := flag.NewFlagSet("soulcli", flag.ContinueOnError)
	fs.SetOutput(new(nopWriter))
	logFormat := fs.String("log-format", "text", "Log format: text|json")
	logLevel := fs.String("log-level", "warn", "Log level: debug|info|warn|error")
	showVersion := fs.Bool("version", false, "Print version and exit")

	// Only consume flags up to the first non-flag token (the subcommand),
	// so per-command flag sets still see their own arguments untouched.
	// A space-separated value of --log-format/--log-level belongs to its flag.
	split := len(args)
	for i := 0; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "-") {
			split = i
			break
		}
		if name := strings.TrimLeft(a, "-"); (name == "log-format" || name == "log-level") && i+1 < len(args) {
			i++
		}
	}
	_ = fs.Parse(args[:split])

	setFlags := map[string]struct{}{}
	fs.Visit(func(f *flag.Flag) { setFlags[f.Name] = struct{}{} })

	cfg := &globalConfig{logFormat: *logFormat, logLevel: *logLevel, showVersion: *showVersion}
	applyGlobalEnvOverrides(cfg, setFlags)
	return cfg, args[split:]
}

func applyGlobalEnvOverrides(cfg *globalConfig, set map[string]struct{}) {
	if _, ok := set["log-format"]; !ok {
		if v, ok := os.LookupEnv("SOULCLI_LOG_FORMAT"); ok && strings.TrimSpace(v) != "" {
			cfg.logFormat = v
		}
	}
	if _, ok := set["log-level"]; !ok {
		if v, ok := os.LookupEnv("SOULCLI_LOG_LEVEL"); ok && strings.TrimSpace(v) != "" {
			cfg.logLevel = v
		}
	}
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
