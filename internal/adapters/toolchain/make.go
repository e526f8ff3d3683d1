// Package toolchain drives the host's configure and make build of a source tree.
package toolchain

import (
	"context"
	"slices"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

var _ ports.BuildToolchain = (*Make)(nil)

const (
	configureScript = "./configure"
	makeProgram     = "make"
)

// Make implements ports.BuildToolchain with an autoconf configure script and make.
type Make struct {
	executor ports.Executor
}

// NewMake creates a Make toolchain running its steps through executor.
func NewMake(executor ports.Executor) *Make {
	return &Make{executor: executor}
}

// Configure runs ./configure with the option set rendered for req.Prefix.
func (m *Make) Configure(ctx context.Context, req ports.BuildRequest) error {
	args := append([]string{configureScript}, req.Options.ConfigureArgs(req.Prefix)...)
	return m.run(ctx, req, domain.StageConfigure, args)
}

// Compile runs make with req.Jobs parallel jobs.
func (m *Make) Compile(ctx context.Context, req ports.BuildRequest) error {
	args := append([]string{makeProgram}, req.Options.CompileArgs(req.Jobs)...)
	return m.run(ctx, req, domain.StageCompile, args)
}

// Install runs make install.
func (m *Make) Install(ctx context.Context, req ports.BuildRequest) error {
	args := append([]string{makeProgram}, req.Options.InstallArgs()...)
	return m.run(ctx, req, domain.StageInstall, args)
}

func (m *Make) run(ctx context.Context, req ports.BuildRequest, stage domain.Stage, args []string) error {
	return m.executor.Execute(ctx, domain.Command{
		Dependency: req.Dependency,
		Stage:      stage,
		Args:       args,
		Dir:        req.SourceDir,
		Env:        slices.Clone(req.Env),
	}, nil, nil)
}
