package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	clierrors "github.com/mcpmon/mcpmon/internal/cli/errors"
	"github.com/mcpmon/mcpmon/internal/cli/autodetect"
	"github.com/mcpmon/mcpmon/internal/config"
	"github.com/mcpmon/mcpmon/internal/proxy"
	"github.com/mcpmon/mcpmon/internal/proxylog"
)

// executeRun is the default action: wrap args[0] (and its own args) as
// the supervised child, per spec.md §6.
func executeRun(args []string) int {
	command, commandArgs := args[0], args[1:]

	proxylog.SetVerbose(truthy(os.Getenv("MCPMON_VERBOSE")))

	cfg := proxy.DefaultProxyConfig()
	cfg.Command = command
	cfg.CommandArgs = commandArgs
	cfg.EntryFile = resolveEntryFile(commandArgs)
	if os.Getenv("MCPMON_WATCH") != "" {
		if _, err := os.Stat(cfg.EntryFile); err != nil {
			return reportFatal(&proxy.ConfigError{Reason: fmt.Sprintf("watch path %q: %v", cfg.EntryFile, err)})
		}
	}

	applyPersistedSettings(&cfg)
	applyDelayOverride(&cfg)

	p, err := proxy.New(cfg, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		return reportFatal(err)
	}

	if err := p.Run(context.Background()); err != nil {
		return reportFatal(err)
	}
	return 0
}

func resolveEntryFile(commandArgs []string) string {
	if watch := os.Getenv("MCPMON_WATCH"); watch != "" {
		return strings.Split(watch, ",")[0]
	}
	return autodetect.EntryFile(commandArgs)
}

func applyPersistedSettings(cfg *proxy.ProxyConfig) {
	path, err := config.DefaultPath()
	if err != nil {
		return
	}
	settings, err := config.NewStore(path).Load()
	if err != nil {
		proxylog.Debug("ignoring unreadable persisted config at %s: %v", path, err)
		return
	}
	cfg.RestartDelay = settings.RestartDelay(cfg.RestartDelay)
	cfg.KillDelay = settings.KillDelay(cfg.KillDelay)
	cfg.ReadyDelay = settings.ReadyDelay(cfg.ReadyDelay)
	if settings.Verbose {
		proxylog.SetVerbose(true)
	}
}

func applyDelayOverride(cfg *proxy.ProxyConfig) {
	ms := os.Getenv("MCPMON_DELAY")
	if ms == "" {
		return
	}
	n, err := strconv.Atoi(ms)
	if err != nil {
		proxylog.Warn("ignoring non-integer MCPMON_DELAY=%q", ms)
		return
	}
	cfg.RestartDelay = time.Duration(n) * time.Millisecond
}

func reportFatal(err error) int {
	ce := clierrors.Classify(err)
	fmt.Fprintln(os.Stderr, ce.Message)
	if ce.Hint != "" {
		fmt.Fprintln(os.Stderr, "hint: "+ce.Hint)
	}
	return ce.ExitCode
}

func truthy(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
