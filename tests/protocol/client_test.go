package protocol

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mcpmonBin and testToolBin point at pre-built binaries. Building them
// here would require invoking the Go toolchain from within a test run,
// which these scenario tests avoid the same way the teacher's own
// HTTP-gateway tests skip rather than spin up a server inline — set
// MCPMON_BIN/TEST_TOOL_BIN (e.g. to `go build -o` output paths) to run
// these for real.
func dialTestTool(t *testing.T) *Client {
	t.Helper()
	mcpmonBin := os.Getenv("MCPMON_BIN")
	testToolBin := os.Getenv("TEST_TOOL_BIN")
	if mcpmonBin == "" || testToolBin == "" {
		t.Skip("MCPMON_BIN/TEST_TOOL_BIN not set")
	}

	client, err := Dial(mcpmonBin, testToolBin)
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func TestProtocol_Initialize(t *testing.T) {
	client := dialTestTool(t)

	resp, err := client.Initialize()
	require.NoError(t, err)
	assert.Nil(t, resp.Error)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.Equal(t, "2024-11-05", result["protocolVersion"])
}

func TestProtocol_ListTools(t *testing.T) {
	client := dialTestTool(t)

	_, err := client.Initialize()
	require.NoError(t, err)

	resp, err := client.ListTools()
	require.NoError(t, err)
	assert.Nil(t, resp.Error)

	var result struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &result))

	found := false
	for _, tool := range result.Tools {
		if tool.Name == "echo" {
			found = true
			break
		}
	}
	assert.True(t, found, "echo tool not found")
}

func TestProtocol_CallTool(t *testing.T) {
	client := dialTestTool(t)

	_, err := client.Initialize()
	require.NoError(t, err)

	resp, err := client.CallTool("echo", map[string]interface{}{"message": "hi"})
	require.NoError(t, err)
	assert.Nil(t, resp.Error)

	var result struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.NotEmpty(t, result.Content)
}
