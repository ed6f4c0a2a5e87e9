package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcpmon/mcpmon/internal/proxylog"
)

// router implements C4 (message router) and the pending-requests table
// from spec.md §3/§4.4. It is the single point of contention for the
// child's stdin and the outer client's stdout (spec.md §5: "the child's
// stdin is a single writable stream; writes acquire a short-lived
// exclusive writer", and likewise for outer stdout).
//
// Grounded on StdioWorker.sendRequest's one-shot response-channel-plus-
// timeout pattern, generalized to a map of concurrently pending
// proxy-issued requests — the same generalization
// tinyland-inc-tinyclaw/pkg/core/proxy.go makes with its
// `callbacks map[uint64]chan json.RawMessage`.
type router struct {
	childMu    sync.Mutex
	childStdin io.Writer

	pendingMu sync.Mutex
	pending   map[string]chan *Message
	nextID    atomic.Int64

	snapMu       sync.Mutex
	initSnapshot json.RawMessage
	hasSnapshot  bool

	restarting atomic.Bool
	bufferMu   sync.Mutex
	buffer     [][]byte

	outerMu  sync.Mutex
	outerOut io.Writer
}

func newRouter(outerOut io.Writer) *router {
	return &router{
		pending:  make(map[string]chan *Message),
		outerOut: outerOut,
	}
}

// SetChild points the router at a new child's stdin. Called by the
// restart controller once a new child has been spawned.
func (r *router) SetChild(stdin io.Writer) {
	r.childMu.Lock()
	r.childStdin = stdin
	r.childMu.Unlock()
}

func (r *router) writeToChild(line []byte) error {
	r.childMu.Lock()
	defer r.childMu.Unlock()
	w := r.childStdin
	if w == nil {
		return &ForwardError{Target: "child-stdin", Err: errors.New("no child attached")}
	}
	if _, err := w.Write(line); err != nil {
		return &ForwardError{Target: "child-stdin", Err: err}
	}
	return nil
}

func (r *router) writeToOuter(line []byte) error {
	r.outerMu.Lock()
	defer r.outerMu.Unlock()
	if _, err := r.outerOut.Write(line); err != nil {
		return &ForwardError{Target: "outer-stdout", Err: err}
	}
	return nil
}

// HandleClientLine implements the client→server pipeline of spec.md §4.4:
// capture initialize params (I5: before forwarding), then either buffer
// (I1, while restarting) or forward to the live child.
func (r *router) HandleClientLine(line []byte) error {
	msg, err := parseLine(line)
	if err != nil {
		proxylog.Warn("dropping unparseable line from outer client: %v", err)
		return err
	}

	if msg.Method == methodInitialize {
		r.snapMu.Lock()
		r.initSnapshot = append([]byte(nil), msg.Params...)
		r.hasSnapshot = true
		r.snapMu.Unlock()
	}

	full := withNewline(line)

	r.bufferMu.Lock()
	if r.restarting.Load() {
		r.buffer = append(r.buffer, full)
		r.bufferMu.Unlock()
		return nil
	}
	r.bufferMu.Unlock()

	return r.writeToChild(full)
}

// HandleChildLine implements the server→client pipeline of spec.md §4.4's
// corrected design (§9 note b): parse first, and either consume (I4, a
// response to a proxy-issued request) or forward the original bytes
// verbatim — never both.
func (r *router) HandleChildLine(line []byte) error {
	msg, err := parseLine(line)
	if err != nil {
		proxylog.Warn("dropping unparseable line from child: %v", err)
		return err
	}

	if len(msg.ID) > 0 {
		if ch, ok := r.takePending(string(msg.ID)); ok {
			ch <- msg
			return nil
		}
	}

	return r.writeToOuter(withNewline(line))
}

// Notify writes a notification directly to outer stdout (used by the
// handshake replayer to emit notifications/tools/list_changed).
func (r *router) Notify(method string, params any) error {
	paramsRaw, err := json.Marshal(params)
	if err != nil {
		return err
	}
	msg := &Message{JSONRPC: "2.0", Method: method, Params: paramsRaw}
	line, err := encodeLine(msg)
	if err != nil {
		return err
	}
	return r.writeToOuter(line)
}

// NotifyChild sends a notification (no id, no response expected) to the
// current child, bypassing the buffer gate — this is the proxy's own
// handshake traffic, not client traffic subject to I1.
func (r *router) NotifyChild(method string, params any) error {
	var paramsRaw json.RawMessage
	if params != nil {
		p, err := json.Marshal(params)
		if err != nil {
			return err
		}
		paramsRaw = p
	}
	msg := &Message{JSONRPC: "2.0", Method: method, Params: paramsRaw}
	line, err := encodeLine(msg)
	if err != nil {
		return err
	}
	return r.writeToChild(line)
}

// Call issues a proxy-owned JSON-RPC request to the current child and
// waits for the matching response, per spec.md §3's pending-requests
// table and §9's disjoint-id-space note (string ids "mcpmon-<n>").
func (r *router) Call(ctx context.Context, method string, params json.RawMessage, timeout time.Duration) (*Message, error) {
	id := r.nextID.Add(1)
	idStr := proxyRequestID(id)
	idJSON, _ := json.Marshal(idStr)

	req := &Message{JSONRPC: "2.0", ID: idJSON, Method: method, Params: params}
	line, err := encodeLine(req)
	if err != nil {
		return nil, err
	}

	ch := make(chan *Message, 1)
	key := string(idJSON)
	r.pendingMu.Lock()
	r.pending[key] = ch
	r.pendingMu.Unlock()
	defer func() {
		r.pendingMu.Lock()
		delete(r.pending, key)
		r.pendingMu.Unlock()
	}()

	if err := r.writeToChild(line); err != nil {
		return nil, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-ch:
		return msg, nil
	case <-timer.C:
		return nil, &RpcTimeoutError{Method: method, ID: idStr}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func proxyRequestID(n int64) string {
	return "mcpmon-" + itoa(n)
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	buf := [20]byte{}
	i := len(buf)
	neg := n < 0
	if neg {
		n = -n
	}
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func (r *router) takePending(idJSON string) (chan *Message, bool) {
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()
	ch, ok := r.pending[idJSON]
	if ok {
		delete(r.pending, idJSON)
	}
	return ch, ok
}

// Snapshot returns the most recently observed initialize params, if any.
func (r *router) Snapshot() (json.RawMessage, bool) {
	r.snapMu.Lock()
	defer r.snapMu.Unlock()
	if !r.hasSnapshot {
		return nil, false
	}
	return append([]byte(nil), r.initSnapshot...), true
}

// BeginRestart flags the router as restarting (I1: client→server traffic
// is buffered from here on) and is called on the KILLING transition.
func (r *router) BeginRestart() { r.restarting.Store(true) }

// IsRestarting reports whether the buffer-gate is active.
func (r *router) IsRestarting() bool { return r.restarting.Load() }

// EndRestart performs the final drain and then clears the restarting
// flag, atomically with respect to HandleClientLine (both take bufferMu),
// so no message can slip between "buffer considered empty" and "gate
// open" (spec.md §4.5's PROBING→RUNNING transition).
func (r *router) EndRestart(w io.Writer) error {
	r.bufferMu.Lock()
	for _, line := range r.buffer {
		if _, err := w.Write(line); err != nil {
			r.bufferMu.Unlock()
			return &ForwardError{Target: "child-stdin", Err: err}
		}
	}
	r.buffer = r.buffer[:0]
	r.restarting.Store(false)
	r.bufferMu.Unlock()
	return nil
}

func withNewline(line []byte) []byte {
	out := make([]byte, len(line)+1)
	copy(out, line)
	out[len(line)] = '\n'
	return out
}
