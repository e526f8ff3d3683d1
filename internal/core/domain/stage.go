package domain

import "fmt"

// Stage names a step of an installation pipeline. It appears in log prefixes and failures.
type Stage string

// Pipeline stages.
const (
	StagePrepare   Stage = "prepare"
	StageFetch     Stage = "fetch"
	StageExtract   Stage = "extract"
	StageConfigure Stage = "configure"
	StageCompile   Stage = "compile"
	StageInstall   Stage = "install"
	StageVerify    Stage = "verify"
	StageEmit      Stage = "emit"
)

// RunScope is the dependency name used for stages that belong to no single dependency.
const RunScope = "kiln"

// LogPrefix returns the "[dependency:stage]" prefix every stage log line carries.
func LogPrefix(dependency string, stage Stage) string {
	return "[" + dependency + ":" + string(stage) + "]"
}

// StageError is a fatal failure of one stage for one dependency.
// It unwraps to both Kind, one of the domain sentinels, and the underlying cause.
type StageError struct {
	Dependency string
	Stage      Stage
	Kind       error
	Err        error
}

// NewStageError builds a StageError.
func NewStageError(dependency string, stage Stage, kind, err error) *StageError {
	return &StageError{Dependency: dependency, Stage: stage, Kind: kind, Err: err}
}

// Message returns the prefixed kind without the cause chain.
func (e *StageError) Message() string {
	if e.Kind == nil {
		return LogPrefix(e.Dependency, e.Stage) + " failed"
	}
	return LogPrefix(e.Dependency, e.Stage) + " " + e.Kind.Error()
}

// Error implements error.
func (e *StageError) Error() string {
	if e.Err == nil {
		return e.Message()
	}
	return fmt.Sprintf("%s: %s", e.Message(), e.Err.Error())
}

// Unwrap exposes the kind sentinel and the cause to errors.Is and errors.As.
func (e *StageError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
