// Package orchestrator drives a provisioning run through its state machine.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Orchestrator installs both dependencies, verifies them and emits the environment descriptor.
// The first fatal failure ends the run in the Failed state.
type Orchestrator struct {
	binary      ports.BinaryInstaller
	source      ports.SourceInstaller
	verifier    ports.Verifier
	descriptors ports.DescriptorStore
	tracer      ports.Tracer
	logger      ports.Logger
	now         func() time.Time
}

// New creates an Orchestrator.
func New(
	binary ports.BinaryInstaller,
	source ports.SourceInstaller,
	verifier ports.Verifier,
	descriptors ports.DescriptorStore,
	tracer ports.Tracer,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		binary:      binary,
		source:      source,
		verifier:    verifier,
		descriptors: descriptors,
		tracer:      tracer,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock replaces the time source used for report timestamps.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// run carries the mutable state of one Run call.
type run struct {
	cfg     domain.RunConfig
	machine *Machine
	report  *Report
	specs   map[string]domain.DependencySpec
}

// Run executes a provisioning run. It never returns nil; failures are reported in Report.Err.
func (o *Orchestrator) Run(ctx context.Context, cfg domain.RunConfig) *Report {
	r := &run{
		cfg:     cfg,
		machine: NewMachine(),
		report: &Report{
			RunID:     uuid.NewString(),
			StartedAt: o.now().UTC(),
			Platform:  cfg.Platform,
		},
		specs: make(map[string]domain.DependencySpec),
	}

	ctx, span := o.tracer.Start(ctx, "provision")
	span.SetAttribute("kiln.run_id", r.report.RunID)
	defer span.End()

	o.logger.Info(fmt.Sprintf("%s run %s on %s", domain.LogPrefix(domain.RunScope, domain.StagePrepare),
		r.report.RunID, cfg.Platform))

	if err := o.execute(ctx, r); err != nil {
		o.fail(r, err)
		span.RecordError(err)
	}

	r.report.State = r.machine.State()
	r.report.History = r.machine.History()
	r.report.FinishedAt = o.now().UTC()

	return r.report
}

func (o *Orchestrator) execute(ctx context.Context, r *run) error {
	if err := o.prepare(r.cfg); err != nil {
		return err
	}

	if err := o.advance(r, domain.StateInstallingRuntime); err != nil {
		return err
	}
	if err := o.install(ctx, r, r.cfg.Runtime); err != nil {
		return err
	}

	if err := o.advance(r, domain.StateInstallingInterpreter); err != nil {
		return err
	}
	if err := o.install(ctx, r, r.cfg.Interpreter); err != nil {
		return err
	}

	if err := o.advance(r, domain.StateVerifying); err != nil {
		return err
	}
	o.verify(ctx, r)

	if err := o.advance(r, domain.StateEmitting); err != nil {
		return err
	}
	if err := o.emit(ctx, r); err != nil {
		return err
	}

	return o.advance(r, domain.StateDone)
}

// prepare validates the configuration and creates the working and cache directories.
func (o *Orchestrator) prepare(cfg domain.RunConfig) error {
	if err := cfg.Validate(); err != nil {
		return domain.NewStageError(domain.RunScope, domain.StagePrepare, domain.ErrInvalidRunConfig, err)
	}

	for _, dir := range []string{cfg.WorkDir, cfg.CacheDir} {
		if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
			return domain.NewStageError(domain.RunScope, domain.StagePrepare, domain.ErrPrepareFailed,
				zerr.With(zerr.Wrap(err, "cannot create directory"), "path", dir))
		}
	}

	o.logger.Info(fmt.Sprintf("%s workdir %s, cache %s",
		domain.LogPrefix(domain.RunScope, domain.StagePrepare), cfg.WorkDir, cfg.CacheDir))

	return nil
}

func (o *Orchestrator) advance(r *run, next domain.State) error {
	prev := r.machine.State()
	if err := r.machine.Transition(next); err != nil {
		return domain.NewStageError(domain.RunScope, domain.Stage(prev.String()), domain.ErrIllegalTransition, err)
	}
	o.logger.Info(fmt.Sprintf("[%s] %s -> %s", domain.RunScope, prev, next))
	return nil
}

func (o *Orchestrator) install(ctx context.Context, r *run, spec domain.DependencySpec) error {
	ctx, span := o.tracer.Start(ctx, "install "+spec.Name(), ports.WithStage(spec.Name(), string(domain.StageInstall)))
	defer span.End()

	span.SetAttribute("kiln.version", spec.Version())
	span.SetAttribute("kiln.kind", spec.Kind().String())

	var (
		path string
		err  error
	)
	switch spec.Kind() {
	case domain.KindSource:
		path, err = o.source.InstallFromSource(ctx, r.cfg, spec)
	default:
		path, err = o.binary.InstallBinary(ctx, r.cfg, spec)
	}

	if err != nil {
		var stageErr *domain.StageError
		if !errors.As(err, &stageErr) {
			err = domain.NewStageError(spec.Name(), domain.StageInstall, nil, err)
		}
		span.RecordError(err)
		return err
	}

	r.specs[spec.Name()] = spec
	r.report.Outcomes = append(r.report.Outcomes, domain.InstallOutcome{
		Name:         spec.Name(),
		Version:      spec.Version(),
		Path:         path,
		Verification: domain.VerificationNotRun,
		Contribution: spec.Contribution(),
	})

	return nil
}

// verify runs every installed tool's self-report command. Failures become warnings.
func (o *Orchestrator) verify(ctx context.Context, r *run) {
	for i := range r.report.Outcomes {
		outcome := &r.report.Outcomes[i]
		spec := r.specs[outcome.Name]

		spanCtx, span := o.tracer.Start(ctx, "verify "+spec.Name(), ports.WithStage(spec.Name(), string(domain.StageVerify)))

		result := o.verifier.Verify(spanCtx, ports.VerifyRequest{
			Dependency: spec.Name(),
			Executable: spec.ExecutablePath(),
			Flag:       spec.VersionFlag(),
			Env:        r.cfg.CommandEnv(),
		})
		outcome.Verification = result.Status

		if result.Status != domain.VerificationOK {
			cause := result.Err
			if cause == nil {
				cause = domain.ErrVerificationFailed
			}
			r.report.Warnings = append(r.report.Warnings, Warning{
				Dependency: spec.Name(),
				Stage:      domain.StageVerify,
				Err:        cause,
			})
			span.RecordError(cause)
		} else {
			span.SetAttribute("kiln.reported_version", result.Output)
		}

		span.End()
	}
}

func (o *Orchestrator) emit(ctx context.Context, r *run) error {
	_, span := o.tracer.Start(ctx, "emit", ports.WithStage(domain.RunScope, string(domain.StageEmit)))
	defer span.End()

	descriptor := domain.NewEnvironmentDescriptor(r.report.Outcomes, r.cfg.BaseEnv)
	path := r.cfg.DescriptorPath()

	if err := o.descriptors.Write(path, descriptor); err != nil {
		stageErr := domain.NewStageError(domain.RunScope, domain.StageEmit, domain.ErrDescriptorWriteFailed, err)
		span.RecordError(stageErr)
		return stageErr
	}

	r.report.DescriptorPath = path
	o.logger.Info(fmt.Sprintf("%s wrote %s (%d variables)",
		domain.LogPrefix(domain.RunScope, domain.StageEmit), path, descriptor.Len()))

	return nil
}

func (o *Orchestrator) fail(r *run, err error) {
	r.report.Err = err
	if transitionErr := r.machine.Transition(domain.StateFailed); transitionErr != nil {
		o.logger.Error(transitionErr)
	}
}
