// Package autodetect finds the file mcpmon should watch for hot-reload
// out of a wrapped command's argv, per spec.md §6: the first argument
// after the command itself that doesn't start with "-" and whose
// extension is in the recognized set.
//
// Grounded on internal/cli/inference.InferCommand's shape (scan argv,
// decide something from the first non-flag token) but adapted from
// "infer a subcommand" to "infer a watch target", since mcpmon has no
// subcommand-vs-tool-call ambiguity to resolve.
package autodetect

import (
	"path/filepath"
	"strings"
)

var recognizedExtensions = map[string]bool{
	".js":  true,
	".mjs": true,
	".ts":  true,
	".py":  true,
	".rb":  true,
	".php": true,
}

// EntryFile returns the first argument in args that looks like a source
// file mcpmon should watch, or "" if none qualifies.
func EntryFile(args []string) string {
	for _, a := range args {
		if strings.HasPrefix(a, "-") {
			continue
		}
		if recognizedExtensions[filepath.Ext(a)] {
			return a
		}
	}
	return ""
}
