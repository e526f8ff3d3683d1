package app

import (
	"path/filepath"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// Tool conventions for the two provisioned dependencies.
const (
	runtimeExecutable = "bin/java"
	runtimeVersionArg = "-version"
	runtimeHomeVar    = "JAVA_HOME"

	interpreterExecutable = "bin/python3"
	interpreterVersionArg = "--version"
	interpreterModuleVar  = "PYTHONPATH"
	interpreterModuleDir  = "lib/python{{.MajorMinor}}/site-packages"
)

// RunConfig converts settings and command-line overrides into the immutable run input.
func (a *App) RunConfig(s domain.Settings, opts Options) (domain.RunConfig, error) {
	workDir, err := resolveDir(opts.WorkDir, s.WorkDir)
	if err != nil {
		return domain.RunConfig{}, err
	}

	cacheDir, err := resolveDir(opts.CacheDir, s.CacheDir)
	if err != nil {
		return domain.RunConfig{}, err
	}

	runtimeSpec, err := domain.NewDependencySpec(domain.DependencyParams{
		Name:        s.Runtime.Name,
		Version:     s.Runtime.Version,
		URLTemplate: s.Runtime.URLTemplate,
		TargetDir:   targetDir(workDir, s.Runtime),
		Kind:        domain.KindBinary,
		Executable:  runtimeExecutable,
		VersionFlag: runtimeVersionArg,
		HomeVar:     runtimeHomeVar,
	})
	if err != nil {
		return domain.RunConfig{}, zerr.Wrap(err, "invalid runtime settings")
	}

	interpreterSpec, err := domain.NewDependencySpec(domain.DependencyParams{
		Name:        s.Interpreter.Name,
		Version:     s.Interpreter.Version,
		URLTemplate: s.Interpreter.URLTemplate,
		TargetDir:   targetDir(workDir, s.Interpreter),
		Kind:        domain.KindSource,
		Executable:  interpreterExecutable,
		VersionFlag: interpreterVersionArg,
		ModuleVar:   interpreterModuleVar,
		ModuleDir:   interpreterModuleDir,
	})
	if err != nil {
		return domain.RunConfig{}, zerr.Wrap(err, "invalid interpreter settings")
	}

	jobs := s.Build.Jobs
	if jobs == 0 {
		jobs = a.numCPU()
	}

	cfg := domain.RunConfig{
		WorkDir:     workDir,
		CacheDir:    cacheDir,
		Retry:       s.Retry.Policy(),
		Runtime:     runtimeSpec,
		Interpreter: interpreterSpec,
		Build:       domain.DefaultBuildOptions(),
		Jobs:        jobs,
		Platform:    a.platform,
		S3:          s.S3,
		BaseEnv:     a.environ(),
	}

	if err := cfg.Validate(); err != nil {
		return domain.RunConfig{}, err
	}
	return cfg, nil
}

// resolveDir returns the absolute form of the override, or of the configured value without one.
func resolveDir(override, configured string) (string, error) {
	dir := configured
	if override != "" {
		dir = override
	}
	if dir == "" {
		return "", zerr.Wrap(domain.ErrInvalidRunConfig, "directory is required")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrInvalidRunConfig, err.Error()), "path", dir)
	}
	return abs, nil
}

// targetDir places a dependency under the working directory unless configured elsewhere.
func targetDir(workDir string, s domain.DependencySettings) string {
	switch {
	case s.Dir == "":
		return filepath.Join(workDir, s.Name)
	case filepath.IsAbs(s.Dir):
		return filepath.Clean(s.Dir)
	default:
		return filepath.Join(workDir, s.Dir)
	}
}
