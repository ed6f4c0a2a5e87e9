package proxy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Unwrap(t *testing.T) {
	base := errors.New("boom")

	spawnErr := &SpawnError{Command: "node", Err: base}
	assert.ErrorIs(t, spawnErr, base)

	frameErr := &FrameError{Line: []byte("x"), Err: base}
	assert.ErrorIs(t, frameErr, base)

	fwdErr := &ForwardError{Target: "child-stdin", Err: base}
	assert.ErrorIs(t, fwdErr, base)

	watchErr := &WatchError{Path: "server.js", Err: base}
	assert.ErrorIs(t, watchErr, base)
}

func TestChildCrashError_MessageBySignalOrCode(t *testing.T) {
	assert.Contains(t, (&ChildCrashError{Signal: "killed"}).Error(), "signal killed")
	assert.Contains(t, (&ChildCrashError{Code: 2}).Error(), "code 2")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, []byte("abc"), truncate([]byte("abc"), 10))
	assert.Equal(t, []byte("ab"), truncate([]byte("abcdef"), 2))
}
