// Package protocol is a stdio MCP test client: it spawns a process (a
// built mcpmon binary wrapping test-tool, in mcpmon's own scenario tests)
// and speaks newline-delimited JSON-RPC over its stdin/stdout, the same
// way a real MCP client would. Adapted from the teacher's HTTP/SSE
// gateway client (same Initialize/ListTools/CallTool/Call surface) since
// mcpmon has no HTTP gateway to target.
package protocol

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"
)

// JSONRPCRequest is a standard JSON-RPC 2.0 request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse is a standard JSON-RPC 2.0 response, generalized to
// also carry Method/Params so the same type can represent an inbound
// server-initiated notification (no ID, no Result/Error).
type JSONRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
}

// JSONRPCError is a standard JSON-RPC 2.0 error.
type JSONRPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Client drives a spawned stdio process as its supervised child.
type Client struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader

	mu         sync.Mutex
	lastID     int
	notifyChan chan JSONRPCResponse
}

// Dial launches command with args and wires its stdio. stdin/stdout are
// a single newline-delimited JSON-RPC stream, matching what mcpmon itself
// forwards to and from the outer client.
func Dial(command string, args ...string) (*Client, error) {
	cmd := exec.Command(command, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	return &Client{
		cmd:        cmd,
		stdin:      stdin,
		stdout:     bufio.NewReader(stdout),
		notifyChan: make(chan JSONRPCResponse, 32),
	}, nil
}

func (c *Client) nextID() json.RawMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastID++
	return json.RawMessage(fmt.Sprintf("%d", c.lastID))
}

// Initialize performs the MCP handshake.
func (c *Client) Initialize() (*JSONRPCResponse, error) {
	params := map[string]interface{}{
		"protocolVersion": "2024-11-05",
		"capabilities":    map[string]interface{}{},
		"clientInfo":      map[string]string{"name": "mcpmon-test-client", "version": "0.1.0"},
	}
	return c.Call("initialize", params)
}

// ListTools lists available tools.
func (c *Client) ListTools() (*JSONRPCResponse, error) {
	return c.Call("tools/list", nil)
}

// CallTool calls a specific tool.
func (c *Client) CallTool(name string, args map[string]interface{}) (*JSONRPCResponse, error) {
	return c.Call("tools/call", map[string]interface{}{"name": name, "arguments": args})
}

// Call sends a request and blocks for its matching response. Any
// notification (an inbound line with no id) read while waiting is
// delivered to WaitForNotification instead of being treated as the reply.
func (c *Client) Call(method string, params interface{}) (*JSONRPCResponse, error) {
	id := c.nextID()
	req := JSONRPCRequest{JSONRPC: "2.0", ID: id, Method: method}
	if params != nil {
		p, err := json.Marshal(params)
		if err != nil {
			return nil, err
		}
		req.Params = p
	}

	line, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	if _, err := c.stdin.Write(append(line, '\n')); err != nil {
		return nil, fmt.Errorf("writing request: %w", err)
	}

	for {
		resp, err := c.readLine()
		if err != nil {
			return nil, err
		}
		if len(resp.ID) == 0 {
			select {
			case c.notifyChan <- *resp:
			default:
			}
			continue
		}
		if string(resp.ID) == string(id) {
			return resp, nil
		}
	}
}

func (c *Client) readLine() (*JSONRPCResponse, error) {
	line, err := c.stdout.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	var resp JSONRPCResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling line %q: %w", line, err)
	}
	return &resp, nil
}

// WaitForNotification blocks until a server-initiated message (no id)
// arrives, or returns an error once timeout elapses.
func (c *Client) WaitForNotification(timeout time.Duration) (*JSONRPCResponse, error) {
	select {
	case n := <-c.notifyChan:
		return &n, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("timed out waiting for a notification")
	}
}

// Close terminates the spawned process.
func (c *Client) Close() {
	_ = c.stdin.Close()
	if c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
	}
	_ = c.cmd.Wait()
}
