package shell_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/shell"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

var hostPath = "PATH=/usr/local/bin:/usr/bin:/bin"

func configureCommand(t *testing.T, script string, env ...string) domain.Command {
	t.Helper()
	return domain.Command{
		Dependency: "python",
		Stage:      domain.StageConfigure,
		Args:       []string{"sh", "-c", script},
		Dir:        t.TempDir(),
		Env:        append([]string{hostPath}, env...),
	}
}

func TestExecutor_Execute_MultiLineOutput(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLogger := mocks.NewMockLogger(ctrl)
	gomock.InOrder(
		mockLogger.EXPECT().Info("[python:configure] line1"),
		mockLogger.EXPECT().Info("[python:configure] line2"),
	)

	executor := shell.NewExecutor(mockLogger)

	err := executor.Execute(context.Background(), configureCommand(t, "echo line1; echo line2"), nil, nil)
	require.NoError(t, err)
}

func TestExecutor_Execute_FragmentedOutput(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info("[python:configure] part1part2").Times(1)

	executor := shell.NewExecutor(mockLogger)

	err := executor.Execute(context.Background(), configureCommand(t, "printf part1; sleep 0.1; echo part2"), nil, nil)
	require.NoError(t, err)
}

func TestExecutor_Execute_TrailingPartialLineIsFlushed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info("[python:configure] no newline").Times(1)

	executor := shell.NewExecutor(mockLogger)

	err := executor.Execute(context.Background(), configureCommand(t, "printf 'no newline'"), nil, nil)
	require.NoError(t, err)
}

func TestExecutor_Execute_StderrIsWarned(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn("[python:configure] checking for gcc... no").Times(1)

	executor := shell.NewExecutor(mockLogger)

	var stderr bytes.Buffer
	err := executor.Execute(context.Background(), configureCommand(t, "echo 'checking for gcc... no' >&2"), nil, &stderr)
	require.NoError(t, err)
	assert.Equal(t, "checking for gcc... no\n", stderr.String())
}

func TestExecutor_Execute_UsesExactEnvironment(t *testing.T) {
	t.Setenv("KILN_HOST_ONLY", "leaked")

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info("[python:configure] noninteractive|").Times(1)

	executor := shell.NewExecutor(mockLogger)

	cmd := configureCommand(t, `echo "$DEBIAN_FRONTEND|$KILN_HOST_ONLY"`, "DEBIAN_FRONTEND=noninteractive")
	err := executor.Execute(context.Background(), cmd, nil, nil)
	require.NoError(t, err)
}

func TestExecutor_Execute_WorkingDirectory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()

	executor := shell.NewExecutor(mockLogger)

	dir := t.TempDir()
	script := filepath.Join(dir, "configure")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho configured > marker\n"), 0o755)) //nolint:gosec // test script

	cmd := domain.Command{
		Dependency: "python",
		Stage:      domain.StageConfigure,
		Args:       []string{"./configure", "--prefix=/opt/python"},
		Dir:        dir,
		Env:        []string{hostPath},
	}

	require.NoError(t, executor.Execute(context.Background(), cmd, nil, nil))
	assert.FileExists(t, filepath.Join(dir, "marker"))
}

func TestExecutor_Execute_InvalidCommand(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLogger := mocks.NewMockLogger(ctrl)
	executor := shell.NewExecutor(mockLogger)

	cmd := domain.Command{
		Dependency: "python",
		Stage:      domain.StageCompile,
		Args:       []string{"nonexistent-command-xyz123"},
		Dir:        t.TempDir(),
		Env:        []string{hostPath},
	}

	err := executor.Execute(context.Background(), cmd, nil, nil)
	require.ErrorIs(t, err, domain.ErrCommandFailed)
}

func TestExecutor_Execute_CommandFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLogger := mocks.NewMockLogger(ctrl)
	executor := shell.NewExecutor(mockLogger)

	err := executor.Execute(context.Background(), configureCommand(t, "exit 42"), nil, nil)
	require.ErrorIs(t, err, domain.ErrCommandFailed)

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, 42, zErr.Metadata()["exit_code"])
	assert.Equal(t, "sh -c exit 42", zErr.Metadata()["command"])
}

func TestExecutor_Execute_EmptyCommand(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLogger := mocks.NewMockLogger(ctrl)
	executor := shell.NewExecutor(mockLogger)

	err := executor.Execute(context.Background(), domain.Command{Dependency: "python"}, nil, nil)
	require.ErrorIs(t, err, domain.ErrCommandFailed)
}

func TestExecutor_Execute_Canceled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLogger := mocks.NewMockLogger(ctrl)
	executor := shell.NewExecutor(mockLogger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := executor.Execute(ctx, configureCommand(t, "sleep 5"), nil, nil)
	require.ErrorIs(t, err, domain.ErrCommandFailed)
}

func TestExecutor_Execute_PTYStreamsOutput(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()

	executor := shell.NewExecutor(mockLogger, shell.WithPTY(true))

	ansiRed := "\033[31m"
	ansiReset := "\033[0m"
	msg := "Hello Red World"

	var stdout bytes.Buffer
	err := executor.Execute(context.Background(), configureCommand(t, "printf '"+ansiRed+msg+ansiReset+"'"), &stdout, nil)
	require.NoError(t, err)

	output := stdout.String()
	if !strings.Contains(output, ansiRed) {
		t.Errorf("Expected output to contain ANSI red code, got: %q", output)
	}
	if !strings.Contains(output, msg) {
		t.Errorf("Expected output to contain message %q, got: %q", msg, output)
	}
}
