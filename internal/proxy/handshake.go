package proxy

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mcpmon/mcpmon/internal/proxylog"
)

// handshakeReplayer is C6. After a restart it re-plays the original
// client's initialize call against the fresh child (I5: the new process
// never sees a live "initialize" from the outer client, since MCP
// clients normally send it exactly once per connection), then probes
// tools/list and unconditionally tells the outer client the new child's
// tool set via notifications/tools/list_changed.
//
// Grounded on StdioWorker.initializeHandshake/fetchTools, which does
// the exact same "initialize, then notifications/initialized, then
// tools/list" sequence against a freshly spawned child on first boot;
// here it's replayed on every restart instead of run once.
type handshakeReplayer struct{}

type toolsListResult struct {
	Tools json.RawMessage `json:"tools"`
}

// Replay runs the full post-spawn handshake against r's current child.
// If the outer client never sent an initialize (e.g. the child crashed
// before handshake completed once), Replay is a no-op: there is nothing
// to replay yet, and the next restart will pick up whatever snapshot
// exists by then.
func (h *handshakeReplayer) Replay(ctx context.Context, r *router, timeout time.Duration) error {
	snap, ok := r.Snapshot()
	if !ok {
		proxylog.Debug("no initialize snapshot yet, skipping handshake replay")
		return nil
	}

	resp, err := r.Call(ctx, methodInitialize, snap, timeout)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		// spec.md §4.6 step 2: an error here aborts the whole replay —
		// no notifications/initialized, no tools/list probe, no
		// list-changed notification.
		proxylog.Warn("replayed initialize was rejected by the new child: %s", resp.Error.Message)
		return nil
	}

	if err := r.NotifyChild(methodInitializedNotif, struct{}{}); err != nil {
		return err
	}

	return h.probeTools(ctx, r, timeout)
}

// probeTools calls tools/list on the new child and unconditionally tells
// the outer client via notifications/tools/list_changed, per spec.md
// §4.6 steps 3-5 / P5: every successful restart following a prior
// initialize gets exactly one notification, even if the tool set is
// unchanged from before, and even (with an empty tools array) if the
// probe itself errors or times out.
func (h *handshakeReplayer) probeTools(ctx context.Context, r *router, timeout time.Duration) error {
	tools := json.RawMessage("[]")

	resp, err := r.Call(ctx, methodToolsList, nil, timeout)
	switch {
	case err != nil:
		proxylog.Warn("tools/list probe after restart failed: %v", err)
	case resp.Error != nil:
		proxylog.Warn("tools/list probe after restart failed: %s", resp.Error.Message)
	default:
		var result toolsListResult
		if jerr := json.Unmarshal(resp.Result, &result); jerr != nil {
			proxylog.Warn("tools/list probe returned an unparseable result: %v", jerr)
		} else if len(result.Tools) > 0 {
			tools = result.Tools
		}
	}

	proxylog.Info("notifying client of tool set after restart")
	return r.Notify(methodToolsListChanged, map[string]json.RawMessage{"tools": tools})
}
