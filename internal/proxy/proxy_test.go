package proxy

import (
	"bufio"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProxy_ForwardsClientRequestThroughEchoingChild(t *testing.T) {
	cfg := ProxyConfig{
		Command:     "sh",
		CommandArgs: []string{"-c", "cat"},
	}
	cfg.RestartDelay = 5 * time.Millisecond
	cfg.KillDelay = 5 * time.Millisecond
	cfg.ReadyDelay = 5 * time.Millisecond
	cfg.GracefulTimeout = 200 * time.Millisecond
	cfg.RequestTimeout = 200 * time.Millisecond

	clientR, clientW := io.Pipe()
	outR, outW := io.Pipe()

	p, err := New(cfg, clientR, outW, io.Discard)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- p.Run(ctx) }()

	// Give the first spawn + ready delay time to complete before sending.
	time.Sleep(50 * time.Millisecond)

	_, err = clientW.Write([]byte("{\"jsonrpc\":\"2.0\",\"id\":1,\"method\":\"tools/call\"}\n"))
	require.NoError(t, err)

	sc := bufio.NewScanner(outR)
	require.True(t, sc.Scan())
	assert.Contains(t, sc.Text(), `"id":1`)

	cancel()
	select {
	case <-runErr:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestNew_RejectsEmptyCommand(t *testing.T) {
	_, err := New(ProxyConfig{}, strings.NewReader(""), io.Discard, io.Discard)
	require.Error(t, err)
}
