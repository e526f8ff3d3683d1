package toolchain_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/toolchain"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func buildRequest() ports.BuildRequest {
	return ports.BuildRequest{
		Dependency: "python",
		SourceDir:  "/tmp/kiln/work/build/python-3.11.6",
		Prefix:     "/opt/python",
		Options:    domain.DefaultBuildOptions(),
		Jobs:       8,
		Env:        []string{"PATH=/usr/bin:/bin", "DEBIAN_FRONTEND=noninteractive"},
	}
}

// recordCommands captures every command handed to the executor.
func recordCommands(t *testing.T) (*mocks.MockExecutor, *[]domain.Command) {
	t.Helper()
	ctrl := gomock.NewController(t)
	executor := mocks.NewMockExecutor(ctrl)

	var got []domain.Command
	executor.EXPECT().Execute(gomock.Any(), gomock.Any(), nil, nil).
		DoAndReturn(func(_ context.Context, cmd domain.Command, _, _ io.Writer) error {
			got = append(got, cmd)
			return nil
		}).AnyTimes()
	return executor, &got
}

func TestMake_Steps(t *testing.T) {
	executor, got := recordCommands(t)
	tc := toolchain.NewMake(executor)
	req := buildRequest()

	require.NoError(t, tc.Configure(context.Background(), req))
	require.NoError(t, tc.Compile(context.Background(), req))
	require.NoError(t, tc.Install(context.Background(), req))

	require.Len(t, *got, 3)

	var rendered strings.Builder
	for _, cmd := range *got {
		assert.Equal(t, "python", cmd.Dependency)
		assert.Equal(t, req.SourceDir, cmd.Dir)
		assert.Equal(t, req.Env, cmd.Env)

		rendered.WriteString(string(cmd.Stage))
		rendered.WriteString(":")
		for _, arg := range cmd.Args {
			rendered.WriteString(" " + arg)
		}
		rendered.WriteString("\n")
	}

	g := goldie.New(t)
	g.Assert(t, "build_steps", []byte(rendered.String()))
}

func TestMake_PropagatesFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	executor := mocks.NewMockExecutor(ctrl)

	cause := errors.Join(domain.ErrCommandFailed, errors.New("exit status 2"))
	executor.EXPECT().Execute(gomock.Any(), gomock.Any(), nil, nil).Return(cause)

	err := toolchain.NewMake(executor).Compile(context.Background(), buildRequest())
	require.ErrorIs(t, err, domain.ErrCommandFailed)
}

func TestMake_CompileUsesAtLeastOneJob(t *testing.T) {
	executor, got := recordCommands(t)
	req := buildRequest()
	req.Jobs = 0

	require.NoError(t, toolchain.NewMake(executor).Compile(context.Background(), req))
	require.Len(t, *got, 1)
	assert.Equal(t, []string{"make", "-j", "1"}, (*got)[0].Args)
}
