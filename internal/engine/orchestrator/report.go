package orchestrator

import (
	"errors"
	"time"

	"go.trai.ch/kiln/internal/core/domain"
)

// Warning is a non-fatal problem recorded during a run.
type Warning struct {
	Dependency string
	Stage      domain.Stage
	Err        error
}

// String renders the warning with its log prefix.
func (w Warning) String() string {
	return domain.LogPrefix(w.Dependency, w.Stage) + " " + w.Err.Error()
}

// Report is the result of one provisioning run.
type Report struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Platform   domain.Platform
	// State is Done or Failed.
	State   domain.State
	History []domain.State
	// Outcomes holds one entry per installed dependency, in install order.
	Outcomes []domain.InstallOutcome
	Warnings []Warning
	// DescriptorPath is set once the descriptor was written.
	DescriptorPath string
	// Err is the *domain.StageError that moved the run to Failed.
	Err error
}

// Succeeded reports whether the run reached Done.
func (r *Report) Succeeded() bool {
	return r.State == domain.StateDone
}

// Manifest converts the report to its persisted form.
func (r *Report) Manifest() domain.Manifest {
	m := domain.Manifest{
		RunID:        r.RunID,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
		State:        r.State.String(),
		Platform:     r.Platform.String(),
		Descriptor:   r.DescriptorPath,
		Dependencies: make([]domain.ManifestDependency, 0, len(r.Outcomes)),
	}

	for _, o := range r.Outcomes {
		m.Dependencies = append(m.Dependencies, domain.ManifestDependency{
			Name:         o.Name,
			Version:      o.Version,
			Path:         o.Path,
			Verification: o.Verification.String(),
		})
	}

	for _, w := range r.Warnings {
		m.Warnings = append(m.Warnings, w.String())
	}

	if r.Err != nil {
		m.Error = r.Err.Error()
		var stageErr *domain.StageError
		if errors.As(r.Err, &stageErr) {
			m.FailedDependency = stageErr.Dependency
			m.FailedStage = string(stageErr.Stage)
		}
	}

	return m
}
