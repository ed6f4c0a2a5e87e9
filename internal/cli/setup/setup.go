// Package setup rewrites a third-party MCP client's config file so its
// stdio servers are launched through mcpmon, per spec.md §6's "Setup
// helper (external collaborator)".
//
// Grounded on internal/domain/integration/claude.go's read-tolerate-
// missing-modify-write cycle over a client's JSON config, generalized
// from Claude's single hardcoded "mcp-scooter" SSE entry to a schema-
// driven rewrite of every stdio-eligible entry under "mcpServers" —
// the six other per-client files the teacher carries (cursor.go,
// vscode.go, zed.go, gemini.go, codex.go, plus claude.go's ConfigureCode
// method) all differ only in which path they target, so one rewriter
// plus a path table (see Paths) covers all of them.
package setup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ServerEntry mirrors one entry under "mcpServers" in a client config,
// per spec.md §6's documented shape.
type ServerEntry struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	Cwd     string            `json:"cwd,omitempty"`
}

type clientConfig struct {
	McpServers map[string]ServerEntry `json:"mcpServers"`
}

// negativeIndicators flags a server as not stdio-based, per spec.md §6.
var negativeIndicators = []string{"--port", "--http", "--sse", "server.listen", "express", "fastify"}

func isStdioEligible(entry ServerEntry) bool {
	haystack := strings.ToLower(entry.Command + " " + strings.Join(entry.Args, " "))
	for _, ind := range negativeIndicators {
		if strings.Contains(haystack, ind) {
			return false
		}
	}
	return true
}

func alreadyWrapped(entry ServerEntry, mcpmonPath string) bool {
	return filepath.Base(entry.Command) == filepath.Base(mcpmonPath)
}

func wrap(entry ServerEntry, mcpmonPath string) ServerEntry {
	args := make([]string, 0, len(entry.Args)+1)
	args = append(args, entry.Command)
	args = append(args, entry.Args...)
	return ServerEntry{Command: mcpmonPath, Args: args, Env: entry.Env, Cwd: entry.Cwd}
}

// Result reports what Rewrite did to a config.
type Result struct {
	BackupPath string
	Wrapped    []string
	Skipped    []string
	AlreadyOK  []string
}

// Rewrite reads the client config at path, backs it up with an
// ISO-timestamp suffix, wraps every stdio-eligible server entry to
// invoke mcpmonPath instead of its own command directly, and writes the
// result back. Entries that already invoke mcpmon, and entries that
// look HTTP/SSE-based, are left untouched.
func Rewrite(path string, mcpmonPath string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("reading %s: %w", path, err)
	}

	var cfg clientConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Result{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.McpServers == nil {
		return Result{}, fmt.Errorf("%s has no mcpServers entries", path)
	}

	backupPath := fmt.Sprintf("%s.%s.bak", path, time.Now().UTC().Format("20060102T150405Z"))
	if err := os.WriteFile(backupPath, data, 0o644); err != nil {
		return Result{}, fmt.Errorf("writing backup: %w", err)
	}

	var res Result
	res.BackupPath = backupPath

	for name, entry := range cfg.McpServers {
		switch {
		case alreadyWrapped(entry, mcpmonPath):
			res.AlreadyOK = append(res.AlreadyOK, name)
		case !isStdioEligible(entry):
			res.Skipped = append(res.Skipped, name)
		default:
			cfg.McpServers[name] = wrap(entry, mcpmonPath)
			res.Wrapped = append(res.Wrapped, name)
		}
	}

	sort.Strings(res.Wrapped)
	sort.Strings(res.Skipped)
	sort.Strings(res.AlreadyOK)

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return Result{}, err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return Result{}, fmt.Errorf("writing %s: %w", path, err)
	}

	return res, nil
}

// Preview loads a client config without modifying it, for `mcpmon setup
// --list` (SPEC_FULL.md §5): the eligibility/skip decision Rewrite would
// make, computed read-only.
func Preview(path string, mcpmonPath string) ([]PreviewRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var cfg clientConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	rows := make([]PreviewRow, 0, len(cfg.McpServers))
	for name, entry := range cfg.McpServers {
		status := "will wrap"
		switch {
		case alreadyWrapped(entry, mcpmonPath):
			status = "already wrapped"
		case !isStdioEligible(entry):
			status = "skipped (not stdio)"
		}
		rows = append(rows, PreviewRow{Name: name, Command: entry.Command, Status: status})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows, nil
}

type PreviewRow struct {
	Name    string
	Command string
	Status  string
}

// Paths maps a known client name to its config file, following the
// per-OS resolution the teacher's integration.ClaudeIntegration.findConfig
// uses for Claude Desktop. Unrecognized client names are returned
// unresolved; callers may also pass a literal path directly.
func Paths(home, appData string) map[string]string {
	if appData == "" {
		appData = filepath.Join(home, "AppData", "Roaming")
	}
	return map[string]string{
		"claude-desktop": filepath.Join(appData, "Claude", "claude_desktop_config.json"),
		"claude-code":    filepath.Join(home, ".claude", "settings.json"),
	}
}
