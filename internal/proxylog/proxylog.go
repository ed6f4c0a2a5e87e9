// Package proxylog provides mcpmon's stderr logging. Grounded on the
// teacher's internal/logger (leveled AddLog(level, message) lines) and on
// graceful_restarts/tbflip/main.go's per-process ANSI-tinted log lines —
// here the tint distinguishes mcpmon's own log lines from the child's
// forwarded stderr, which is otherwise interleaved on the same stream
// (the forwarded stderr itself is written unmodified elsewhere; this
// package only ever emits mcpmon's own lines).
//
// Unlike the teacher's logger, this package does not ring-buffer entries,
// rotate a log file, or fan out to subscriber channels: mcp-scooter is a
// desktop app with an in-app log viewer, mcpmon is a CLI wrapper whose
// only log consumer is the terminal (spec.md §6), so that machinery has
// no reader to serve.
package proxylog

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
)

var verbose atomic.Bool

var (
	tagInfo  = color.New(color.FgCyan).SprintFunc()
	tagWarn  = color.New(color.FgYellow).SprintFunc()
	tagError = color.New(color.FgRed, color.Bold).SprintFunc()
	tagDebug = color.New(color.FgMagenta).SprintFunc()
)

func init() {
	// color auto-disables itself when stderr isn't a terminal (via
	// go-isatty, pulled in transitively); nothing extra to do here.
	color.NoColor = color.NoColor || os.Getenv("NO_COLOR") != ""
}

// SetVerbose toggles whether Debug lines are emitted, mirroring
// MCPMON_VERBOSE or the persisted `verbose` setting.
func SetVerbose(v bool) { verbose.Store(v) }

func Verbose() bool { return verbose.Load() }

func Info(format string, args ...any)  { logLine(tagInfo("INFO"), format, args...) }
func Warn(format string, args ...any)  { logLine(tagWarn("WARN"), format, args...) }
func Error(format string, args ...any) { logLine(tagError("ERROR"), format, args...) }

func Debug(format string, args ...any) {
	if verbose.Load() {
		logLine(tagDebug("DEBUG"), format, args...)
	}
}

func logLine(tag string, format string, args ...any) {
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(os.Stderr, "[%s] [%s] %s\n", ts, tag, fmt.Sprintf(format, args...))
}
