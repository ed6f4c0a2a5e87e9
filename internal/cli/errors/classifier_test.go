package errors_test

import (
	"errors"
	"testing"

	clierrors "github.com/mcpmon/mcpmon/internal/cli/errors"
	"github.com/mcpmon/mcpmon/internal/proxy"
	"github.com/stretchr/testify/assert"
)

func TestClassify_ConfigErrorExitsNonZero(t *testing.T) {
	ce := clierrors.Classify(&proxy.ConfigError{Reason: "no command given"})
	assert.Equal(t, clierrors.ErrorKindConfig, ce.Kind)
	assert.Equal(t, 1, ce.ExitCode)
	assert.NotEmpty(t, ce.Hint)
}

func TestClassify_ChildCrashIsNotFatal(t *testing.T) {
	ce := clierrors.Classify(&proxy.ChildCrashError{Code: 1})
	assert.Equal(t, clierrors.ErrorKindCrash, ce.Kind)
	assert.Equal(t, 0, ce.ExitCode)
}

func TestClassify_WrappedErrorStillMatches(t *testing.T) {
	wrapped := errors.Join(errors.New("boot failed"), &proxy.SpawnError{Command: "node", Err: errors.New("not found")})
	ce := clierrors.Classify(wrapped)
	assert.Equal(t, clierrors.ErrorKindSpawn, ce.Kind)
	assert.Equal(t, 1, ce.ExitCode)
}

func TestClassify_UnknownErrorFallsBackToOther(t *testing.T) {
	ce := clierrors.Classify(errors.New("something else"))
	assert.Equal(t, clierrors.ErrorKindOther, ce.Kind)
	assert.Equal(t, 1, ce.ExitCode)
}

func TestClassify_NilErrorIsZeroValue(t *testing.T) {
	ce := clierrors.Classify(nil)
	assert.Equal(t, clierrors.ClassifiedError{}, ce)
}
