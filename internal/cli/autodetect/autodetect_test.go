package autodetect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntryFile_FindsFirstRecognizedExtension(t *testing.T) {
	assert.Equal(t, "server.js", EntryFile([]string{"node", "server.js", "--port", "3000"}))
	assert.Equal(t, "app.py", EntryFile([]string{"python3", "app.py"}))
	assert.Equal(t, "main.rb", EntryFile([]string{"ruby", "main.rb", "--verbose"}))
}

func TestEntryFile_SkipsFlags(t *testing.T) {
	assert.Equal(t, "server.ts", EntryFile([]string{"-x", "--foo", "server.ts"}))
}

func TestEntryFile_NoMatch(t *testing.T) {
	assert.Equal(t, "", EntryFile([]string{"node", "--eval", "console.log(1)"}))
	assert.Equal(t, "", EntryFile(nil))
}
