// Package scenarios runs YAML-declared test scenarios against a spawned
// mcpmon process, the same step-runner shape as the teacher's HTTP
// gateway scenario runner, generalized with a wait_for_notification
// action so a scenario can assert on mcpmon's restart/hot-reload
// behavior (notifications/tools/list_changed) rather than only on
// request/response pairs.
package scenarios

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mcpmon/mcpmon/tests/protocol"
	"gopkg.in/yaml.v3"
)

// Scenario represents a test scenario defined in YAML.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one action and its expectations.
type ScenarioStep struct {
	Name   string                 `yaml:"name"`
	Action string                 `yaml:"action"`
	Tool   string                 `yaml:"tool,omitempty"`
	Args   map[string]interface{} `yaml:"args,omitempty"`
	Expect map[string]interface{} `yaml:"expect"`
}

// Runner executes test scenarios against a live client.
type Runner struct {
	Client *protocol.Client
}

// LoadScenario loads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Run executes every step of a scenario in order.
func (r *Runner) Run(s *Scenario) error {
	for _, step := range s.Steps {
		var resp *protocol.JSONRPCResponse
		var err error

		switch step.Action {
		case "initialize":
			resp, err = r.Client.Initialize()
		case "list_tools":
			resp, err = r.Client.ListTools()
		case "call_tool":
			resp, err = r.Client.CallTool(step.Tool, step.Args)
		case "wait":
			seconds, _ := step.Args["seconds"].(int)
			if seconds == 0 {
				seconds = 1
			}
			time.Sleep(time.Duration(seconds) * time.Second)
			continue
		case "wait_for_notification":
			timeout := 5 * time.Second
			if secs, ok := step.Args["timeout_seconds"].(int); ok && secs > 0 {
				timeout = time.Duration(secs) * time.Second
			}
			notif, nerr := r.Client.WaitForNotification(timeout)
			if nerr != nil {
				return fmt.Errorf("step %s: %w", step.Name, nerr)
			}
			if want, ok := step.Expect["method"].(string); ok && notif.Method != want {
				return fmt.Errorf("step %s: expected notification method %q, got %q", step.Name, want, notif.Method)
			}
			continue
		default:
			return fmt.Errorf("unknown action: %s", step.Action)
		}

		if err != nil {
			return fmt.Errorf("step %s failed: %w", step.Name, err)
		}

		if err := r.validateExpectations(step.Expect, resp); err != nil {
			return fmt.Errorf("step %s expectation failed: %w", step.Name, err)
		}
	}

	return nil
}

func (r *Runner) validateExpectations(expect map[string]interface{}, resp *protocol.JSONRPCResponse) error {
	for key, expectedValue := range expect {
		switch key {
		case "error":
			if expectedValue == nil && resp.Error != nil {
				return fmt.Errorf("expected no error, got: %s", resp.Error.Message)
			}
		case "tools_contain":
			var result struct {
				Tools []struct {
					Name string `json:"name"`
				} `json:"tools"`
			}
			json.Unmarshal(resp.Result, &result)

			for _, et := range expectedValue.([]interface{}) {
				found := false
				for _, t := range result.Tools {
					if t.Name == et.(string) {
						found = true
						break
					}
				}
				if !found {
					return fmt.Errorf("expected tool %s not found", et)
				}
			}
		case "result.content":
			if expectedValue == "not_empty" {
				var result struct {
					Content []interface{} `json:"content"`
				}
				json.Unmarshal(resp.Result, &result)
				if len(result.Content) == 0 {
					return fmt.Errorf("expected non-empty content")
				}
			}
		case "result_contains":
			expectedStr := expectedValue.(string)
			if !strings.Contains(string(resp.Result), expectedStr) {
				return fmt.Errorf("expected result to contain '%s', got: %s", expectedStr, string(resp.Result))
			}
		}
	}
	return nil
}
