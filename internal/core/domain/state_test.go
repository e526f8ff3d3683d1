package domain_test

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
)

func TestState_CanTransition(t *testing.T) {
	happyPath := []domain.State{
		domain.StateInit,
		domain.StateInstallingRuntime,
		domain.StateInstallingInterpreter,
		domain.StateVerifying,
		domain.StateEmitting,
		domain.StateDone,
	}

	for i := 0; i < len(happyPath)-1; i++ {
		from, to := happyPath[i], happyPath[i+1]
		assert.True(t, from.CanTransition(to), "%s -> %s", from, to)
		assert.True(t, from.CanTransition(domain.StateFailed), "%s -> failed", from)
	}

	tests := []struct {
		from, to domain.State
	}{
		{domain.StateInit, domain.StateInstallingInterpreter},
		{domain.StateInstallingRuntime, domain.StateEmitting},
		{domain.StateVerifying, domain.StateDone},
		{domain.StateDone, domain.StateFailed},
		{domain.StateFailed, domain.StateInit},
		{domain.StateFailed, domain.StateFailed},
		{domain.StateInstallingInterpreter, domain.StateInstallingRuntime},
	}
	for _, tt := range tests {
		assert.False(t, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "init", domain.StateInit.String())
	assert.Equal(t, "installing-interpreter", domain.StateInstallingInterpreter.String())
	assert.Equal(t, "failed", domain.StateFailed.String())
	assert.Equal(t, "unknown", domain.State(42).String())
	assert.True(t, domain.StateDone.Terminal())
	assert.False(t, domain.StateEmitting.Terminal())
}

func TestStageError(t *testing.T) {
	cause := &fs.PathError{Op: "open", Path: "/work/jdk", Err: fs.ErrPermission}
	err := error(domain.NewStageError("jdk", domain.StageExtract, domain.ErrExtractionFailed, cause))

	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.NotErrorIs(t, err, domain.ErrFetchExhausted)

	var stageErr *domain.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "jdk", stageErr.Dependency)
	assert.Equal(t, domain.StageExtract, stageErr.Stage)

	var pathErr *fs.PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, "/work/jdk", pathErr.Path)

	assert.Equal(t, "[jdk:extract] archive extraction failed", stageErr.Message())
	assert.Equal(t, "[jdk:extract] archive extraction failed: open /work/jdk: permission denied", err.Error())

	wrapped := errors.Join(domain.ErrProvisionFailed, err)
	assert.ErrorIs(t, wrapped, domain.ErrExtractionFailed)
}

func TestRetryPolicy_Validate(t *testing.T) {
	require.NoError(t, domain.DefaultRetryPolicy().Validate())

	p := domain.DefaultRetryPolicy()
	p.MaxAttempts = 0
	assert.ErrorIs(t, p.Validate(), domain.ErrInvalidRetryPolicy)

	p = domain.DefaultRetryPolicy()
	p.Strategy = "linear"
	assert.ErrorIs(t, p.Validate(), domain.ErrInvalidRetryPolicy)

	p = domain.DefaultRetryPolicy()
	p.Delay = -1
	assert.ErrorIs(t, p.Validate(), domain.ErrInvalidRetryPolicy)
}
