package proxy

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
)

// lineFramer splits an incoming byte stream into newline-delimited
// JSON-RPC lines, mirroring the StdioWorker read path of bufio.Reader +
// ReadBytes('\n') this proxy is generalized from. Unlike LSP-style
// Content-Length framing (see e.g. the pack's
// tinyland-inc-tinyclaw/pkg/core/proxy.go or creachadair-jrpc2/cmd/jproxy),
// MCP-over-stdio messages are one JSON object per line, so no header
// parsing is needed here.
type lineFramer struct {
	r *bufio.Reader
}

func newLineFramer(r io.Reader) *lineFramer {
	return &lineFramer{r: bufio.NewReaderSize(r, 64*1024)}
}

// readLine returns the next non-empty, trimmed line, or io.EOF/other read
// error when the stream ends. Lines longer than the reader's buffer are
// still returned whole (bufio.Reader.ReadBytes accumulates across internal
// fills); only a genuine read error or EOF stops iteration.
func (f *lineFramer) readLine() ([]byte, error) {
	for {
		line, err := f.r.ReadBytes('\n')
		trimmed := bytes.TrimRight(line, "\r\n")
		if len(trimmed) > 0 {
			return trimmed, err
		}
		if err != nil {
			return nil, err
		}
	}
}

// parseLine parses a raw line as a Message. Returns a *FrameError on
// failure; the caller must drop the line rather than forward or buffer it.
func parseLine(line []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(line, &m); err != nil {
		return nil, &FrameError{Line: append([]byte(nil), line...), Err: err}
	}
	return &m, nil
}

// encodeLine serializes msg as JSON-RPC followed by a single trailing
// newline, matching StdioWorker.sendRequest's `json.Marshal(req)+'\n'`.
func encodeLine(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
