package commands

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withArgs(t *testing.T, args []string, fn func() int) int {
	t.Helper()
	old := os.Args
	os.Args = append([]string{"mcpmon"}, args...)
	defer func() { os.Args = old }()
	return fn()
}

func TestExecute_VersionReturnsZero(t *testing.T) {
	code := withArgs(t, []string{"--version"}, Execute)
	assert.Equal(t, 0, code)
}

func TestExecute_HelpReturnsZero(t *testing.T) {
	code := withArgs(t, []string{"--help"}, Execute)
	assert.Equal(t, 0, code)
}

func TestExecute_NoArgsReturnsNonZero(t *testing.T) {
	code := withArgs(t, []string{}, Execute)
	assert.Equal(t, 1, code)
}
