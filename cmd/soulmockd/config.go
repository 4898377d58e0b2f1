package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type appConfig struct {
	listenAddr    string
	logFormat     string
	logLevel      string
	metricsAddr   string
	maxConns      int
	connDeadline  time.Duration
	mdnsEnable    bool
	mdnsName      string
	fakeUsername  string
	fakeVirtual   string
	fakeFileBytes int
}

func parseFlags() (*appConfig, bool) {
	cfg := &appConfig{}
	listen := flag.String("listen", ":2242", "TCP listen address")
	logFormat := flag.String("log-format", "text", "Log format: text|json")
	logLevel := flag.String("log-level", "info", "Log level: debug|info|warn|error")
	metricsAddr := flag.String("metrics-addr", "", "Metrics HTTP listen address (e.g., :9101); empty disables")
	maxConns := flag.Int("max-conns", 0, "Maximum simultaneous connections (0 = unlimited)")
	connDeadline := flag.Duration("conn-deadline", 30*time.Second, "Per-connection read/write deadline")
	mdnsEnable := flag.Bool("mdns-enable", false, "Enable mDNS advertisement of this mock server")
	mdnsName := flag.String("mdns-name", "", "mDNS instance name (default soulmockd-<hostname>)")
	fakeUsername := flag.String("fake-username", "bob", "Username the mock server reports owning the shared file")
	fakeVirtual := flag.String("fake-virtual-path", `Music\sample.flac`, "Virtual path advertised in GetSharedFileList replies")
	fakeFileBytes := flag.Int("fake-file-bytes", 65536, "Size in bytes of the synthetic file served on TransferRequest")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	setFlags := map[string]struct{}{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = struct{}{} })

	cfg.listenAddr = *listen
	cfg.logFormat = *logFormat
	cfg.logLevel = *logLevel
	cfg.metricsAddr = *metricsAddr
	cfg.maxConns = *maxConns
	cfg.connDeadline = *connDeadline
	cfg.mdnsEnable = *mdnsEnable
	cfg.mdnsName = *mdnsName
	cfg.fakeUsername = *fakeUsername
	cfg.fakeVirtual = *fakeVirtual
	cfg.fakeFileBytes = *fakeFileBytes

	if err := applyEnvOverrides(cfg, setFlags); err != nil {
		fmt.Printf("environment override error: %v\n", err)
		return nil, *showVersion
	}
	if err := cfg.validate(); err != nil {
		fmt.Printf("configuration error: %v\n", err)
		return nil, *showVersion
	}
	return cfg, *showVersion
}

func (c *appConfig) validate() error {
	switch c.logFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log-format: %s", c.logFormat)
	}
	switch c.logLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log-level: %s", c.logLevel)
	}
	if c.maxConns < 0 {
		return fmt.Errorf("max-conns must be >= 0")
	}
	if c.connDeadline <= 0 {
		return fmt.Errorf("conn-deadline must be > 0")
	}
	if c.fakeFileBytes <= 0 {
		return fmt.Errorf("fake-file-bytes must be > 0")
	}
	return nil
}

// applyEnvOverrides maps SOULMOCKD_* environment variables unless the
// corresponding flag was explicitly set (flags win).
func applyEnvOverrides(c *appConfig, set map[string]struct{}) error {
	var firstErr error
	get := func(k string) (string, bool) { v, ok := os.LookupEnv(k); return strings.TrimSpace(v), ok }

	if _, ok := set["listen"]; !ok {
		if v, ok := get("SOULMOCKD_LISTEN"); ok && v != "" {
			c.listenAddr = v
		}
	}
	if _, ok := set["log-format"]; !ok {
		if v, ok := get("SOULMOCKD_LOG_FORMAT"); ok && v != "" {
			c.logFormat = v
		}
	}
	if _, ok := set["log-level"]; !ok {
		if v, ok := get("SOULMOCKD_LOG_LEVEL"); ok && v != "" {
			c.logLevel = v
		}
	}
	if _, ok := set["metrics-addr"]; !ok {
		if v, ok := get("SOULMOCKD_METRICS"); ok {
			c.metricsAddr = v
		}
	}
	if _, ok := set["max-conns"]; !ok {
		if v, ok := get("SOULMOCKD_MAX_CONNS"); ok && v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				c.maxConns = n
			} else if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("invalid SOULMOCKD_MAX_CONNS: %w", err)
			}
		}
	}
	if _, ok := set["conn-deadline"]; !ok {
		if v, ok := get("SOULMOCKD_CONN_DEADLINE"); ok && v != "" {
			if d, err := time.ParseDuration(v); err == nil && d > 0 {
				c.connDeadline = d
			} else if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("invalid SOULMOCKD_CONN_DEADLINE: %w", err)
			}
		}
	}
	if _, ok := set["mdns-enable"]; !ok {
		if v, ok := get("SOULMOCKD_MDNS_ENABLE"); ok && v != "" {
			switch strings.ToLower(v) {
			case "1", "true", "yes", "on":
				c.mdnsEnable = true
			case "0", "false", "no", "off":
				c.mdnsEnable = false
			}
		}
	}
	if _, ok := set["mdns-name"]; !ok {
		if v, ok := get("SOULMOCKD_MDNS_NAME"); ok && v != "" {
			c.mdnsName = v
		}
	}
	if _, ok := set["fake-username"]; !ok {
		if v, ok := get("SOULMOCKD_FAKE_USERNAME"); ok && v != "" {
			c.fakeUsername = v
		}
	}
	return firstErr
}
