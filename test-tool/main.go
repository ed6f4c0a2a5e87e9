// test-tool is a minimal stdio MCP server used as the supervised child in
// mcpmon's own scenario tests. It answers initialize, tools/list, and
// tools/call over newline-delimited JSON-RPC, the same wire format mcpmon
// itself forwards.
//
// Its tool set is read once at startup from the file named by
// MCPMON_TEST_TOOLS (one tool name per line, defaulting to just "echo"),
// so a scenario test can change the file, touch the watched entry file,
// and observe mcpmon emit notifications/tools/list_changed after the
// respawned child reports a different tools/list result.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func main() {
	tools := loadToolNames()

	in := bufio.NewReader(os.Stdin)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	for {
		line, err := in.ReadBytes('\n')
		if len(line) > 0 {
			handleLine(line, tools, out)
			out.Flush()
		}
		if err != nil {
			return
		}
	}
}

func handleLine(line []byte, tools []string, out *bufio.Writer) {
	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		return
	}
	if req.ID == nil {
		// notification from the client (e.g. notifications/initialized); no reply.
		return
	}

	resp := response{JSONRPC: "2.0", ID: req.ID}
	switch req.Method {
	case "initialize":
		resp.Result = map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities":    map[string]interface{}{"tools": map[string]interface{}{}},
			"serverInfo":      map[string]string{"name": "mcpmon-test-tool", "version": "0.1.0"},
		}
	case "tools/list":
		list := make([]map[string]interface{}, 0, len(tools))
		for _, name := range tools {
			list = append(list, map[string]interface{}{
				"name":        name,
				"description": fmt.Sprintf("test tool %q", name),
				"inputSchema": map[string]interface{}{"type": "object"},
			})
		}
		resp.Result = map[string]interface{}{"tools": list}
	case "tools/call":
		var params struct {
			Name      string                 `json:"name"`
			Arguments map[string]interface{} `json:"arguments"`
		}
		_ = json.Unmarshal(req.Params, &params)
		resp.Result = map[string]interface{}{
			"content": []map[string]interface{}{
				{"type": "text", "text": fmt.Sprintf("called %s with %v", params.Name, params.Arguments)},
			},
		}
	default:
		resp.Error = &rpcError{Code: -32601, Message: "method not found: " + req.Method}
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	out.Write(data)
	out.WriteByte('\n')
}

func loadToolNames() []string {
	path := os.Getenv("MCPMON_TEST_TOOLS")
	if path == "" {
		return []string{"echo"}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return []string{"echo"}
	}
	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			names = append(names, line)
		}
	}
	if len(names) == 0 {
		return []string{"echo"}
	}
	return names
}
