// Package errors classifies the proxy's typed errors into a CLI exit
// code and a one-line, user-facing hint. Grounded on the teacher's
// internal/cli/errors.ClassifiedError (kind + message + hint), adapted
// from the teacher's HTTP/auth/daemon failure modes to mcpmon's own
// taxonomy (internal/proxy.ConfigError, SpawnError, ChildCrashError, ...).
package errors

import (
	stderrors "errors"

	"github.com/mcpmon/mcpmon/internal/proxy"
)

type ErrorKind string

const (
	ErrorKindConfig  ErrorKind = "config"
	ErrorKindSpawn   ErrorKind = "spawn"
	ErrorKindCrash   ErrorKind = "crash"
	ErrorKindForward ErrorKind = "forward"
	ErrorKindOther   ErrorKind = "other"
)

type ClassifiedError struct {
	Kind     ErrorKind
	Message  string
	Hint     string
	ExitCode int
	Raw      error
}

func (e ClassifiedError) Error() string { return e.Message }

// Classify maps err to a kind, a hint, and a process exit code: 0 for a
// ChildCrashError, since the proxy respawns the child and keeps running,
// and 1 for everything else (ConfigError, SpawnError, ForwardError and
// unclassified errors).
func Classify(err error) ClassifiedError {
	if err == nil {
		return ClassifiedError{}
	}

	var cfgErr *proxy.ConfigError
	if stderrors.As(err, &cfgErr) {
		return ClassifiedError{
			Kind:     ErrorKindConfig,
			Message:  err.Error(),
			Hint:     "check the command and watch path passed to mcpmon",
			ExitCode: 1,
			Raw:      err,
		}
	}

	var spawnErr *proxy.SpawnError
	if stderrors.As(err, &spawnErr) {
		return ClassifiedError{
			Kind:     ErrorKindSpawn,
			Message:  err.Error(),
			Hint:     "the wrapped command failed to start; check it runs on its own first",
			ExitCode: 1,
			Raw:      err,
		}
	}

	var crashErr *proxy.ChildCrashError
	if stderrors.As(err, &crashErr) {
		return ClassifiedError{
			Kind:     ErrorKindCrash,
			Message:  err.Error(),
			Hint:     "the child process exited unexpectedly; mcpmon will respawn it",
			ExitCode: 0,
			Raw:      err,
		}
	}

	var fwdErr *proxy.ForwardError
	if stderrors.As(err, &fwdErr) {
		return ClassifiedError{
			Kind:     ErrorKindForward,
			Message:  err.Error(),
			Hint:     "a pipe to the child or the outer client broke",
			ExitCode: 1,
			Raw:      err,
		}
	}

	return ClassifiedError{
		Kind:     ErrorKindOther,
		Message:  err.Error(),
		Hint:     "an unexpected error occurred",
		ExitCode: 1,
		Raw:      err,
	}
}
