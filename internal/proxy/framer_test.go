package proxy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineFramer_ReadLine(t *testing.T) {
	r := strings.NewReader("{\"a\":1}\n{\"b\":2}\r\n")
	f := newLineFramer(r)

	line, err := f.readLine()
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(line))

	line, err = f.readLine()
	assert.Equal(t, `{"b":2}`, string(line))
	_ = err // may carry io.EOF alongside the final line, per bufio.ReadBytes
}

func TestLineFramer_SkipsBlankLines(t *testing.T) {
	r := strings.NewReader("\n\n{\"x\":1}\n")
	f := newLineFramer(r)

	line, err := f.readLine()
	require.NoError(t, err)
	assert.Equal(t, `{"x":1}`, string(line))
}

func TestParseLine_Valid(t *testing.T) {
	msg, err := parseLine([]byte(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`))
	require.NoError(t, err)
	assert.Equal(t, "initialize", msg.Method)
	assert.Equal(t, "1", string(msg.ID))
}

func TestParseLine_Invalid(t *testing.T) {
	_, err := parseLine([]byte(`not json`))
	require.Error(t, err)

	var ferr *FrameError
	require.ErrorAs(t, err, &ferr)
}

func TestEncodeLine_RoundTrips(t *testing.T) {
	msg := &Message{JSONRPC: "2.0", Method: "tools/list"}
	line, err := encodeLine(msg)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(line), "\n"))

	parsed, err := parseLine(line[:len(line)-1])
	require.NoError(t, err)
	assert.Equal(t, "tools/list", parsed.Method)
}
