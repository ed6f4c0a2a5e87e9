package scenarios

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mcpmon/mcpmon/tests/protocol"
	"github.com/stretchr/testify/require"
)

const basicScenarioYAML = `
name: basic handshake and tool call
steps:
  - name: init
    action: initialize
    expect:
      error: null
  - name: list
    action: list_tools
    expect:
      tools_contain: ["echo"]
  - name: call
    action: call_tool
    tool: echo
    args:
      message: hi
    expect:
      result.content: not_empty
`

func TestScenario_BasicHandshake(t *testing.T) {
	mcpmonBin := os.Getenv("MCPMON_BIN")
	testToolBin := os.Getenv("TEST_TOOL_BIN")
	if mcpmonBin == "" || testToolBin == "" {
		t.Skip("MCPMON_BIN/TEST_TOOL_BIN not set")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "basic.yaml")
	require.NoError(t, os.WriteFile(path, []byte(basicScenarioYAML), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)

	client, err := protocol.Dial(mcpmonBin, testToolBin)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	runner := &Runner{Client: client}
	require.NoError(t, runner.Run(s))
}
