package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeClientConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestExecuteSetup_ListDoesNotModifyFile(t *testing.T) {
	body := `{"mcpServers": {"weather": {"command": "node", "args": ["weather.js"]}}}`
	path := writeClientConfig(t, body)

	code := executeSetup([]string{path, "--list"})
	assert.Equal(t, 0, code)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, body, string(after))
}

func TestExecuteSetup_RewritesStdioServers(t *testing.T) {
	path := writeClientConfig(t, `{"mcpServers": {"weather": {"command": "node", "args": ["weather.js"]}}}`)

	code := executeSetup([]string{path})
	assert.Equal(t, 0, code)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var cfg struct {
		McpServers map[string]struct {
			Command string   `json:"command"`
			Args    []string `json:"args"`
		} `json:"mcpServers"`
	}
	require.NoError(t, json.Unmarshal(data, &cfg))
	assert.NotEqual(t, "node", cfg.McpServers["weather"].Command)
}

func TestExecuteSetup_MissingArgReturnsNonZero(t *testing.T) {
	code := executeSetup(nil)
	assert.Equal(t, 1, code)
}
