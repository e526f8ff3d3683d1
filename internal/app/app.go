// Package app implements the application layer for kiln.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/orchestrator"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	orchestrator *orchestrator.Orchestrator
	manifests    ports.ManifestStore
	descriptors  ports.DescriptorStore
	cache        ports.ArchiveCache
	logger       ports.Logger

	environ  func() []string
	numCPU   func() int
	platform domain.Platform
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	orch *orchestrator.Orchestrator,
	manifests ports.ManifestStore,
	descriptors ports.DescriptorStore,
	cache ports.ArchiveCache,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		orchestrator: orch,
		manifests:    manifests,
		descriptors:  descriptors,
		cache:        cache,
		logger:       log,
		environ:      os.Environ,
		numCPU:       runtime.NumCPU,
		platform:     domain.HostPlatform(),
	}
}

// WithEnviron replaces the base environment snapshot source.
// This is primarily used for testing.
func (a *App) WithEnviron(environ func() []string) *App {
	a.environ = environ
	return a
}

// WithPlatform overrides the detected host platform.
func (a *App) WithPlatform(p domain.Platform) *App {
	a.platform = p
	return a
}

// WithCPUs overrides the processor count used when no job count is configured.
func (a *App) WithCPUs(n int) *App {
	a.numCPU = func() int { return n }
	return a
}

// Options are the invocation parameters shared by every command.
type Options struct {
	// ConfigPath is the config file. Empty loads kiln.yaml from the current directory if present.
	ConfigPath string
	// WorkDir and CacheDir override the configured directories.
	WorkDir  string
	CacheDir string
	// JSONLogs forces JSON log output.
	JSONLogs bool
}

// Provision installs both dependencies and writes the environment descriptor.
// The run manifest is written whatever the outcome.
// A failed run returns its report together with an error wrapping domain.ErrProvisionFailed.
func (a *App) Provision(ctx context.Context, opts Options) (*orchestrator.Report, error) {
	cfg, err := a.load(opts)
	if err != nil {
		return nil, err
	}

	a.logger.Info(fmt.Sprintf("%s provisioning %s %s and %s %s",
		domain.LogPrefix(domain.RunScope, domain.StagePrepare),
		cfg.Runtime.Name(), cfg.Runtime.Version(),
		cfg.Interpreter.Name(), cfg.Interpreter.Version()))

	report := a.orchestrator.Run(ctx, cfg)

	if err := a.manifests.Put(cfg.WorkDir, report.Manifest()); err != nil {
		a.logger.Warn(fmt.Sprintf("%s could not record the run manifest: %v",
			domain.LogPrefix(domain.RunScope, domain.StageEmit), err))
	}

	if report.Err != nil {
		return report, errors.Join(domain.ErrProvisionFailed, report.Err)
	}

	if n := len(report.Warnings); n > 0 {
		a.logger.Warn(fmt.Sprintf("%s finished with %d verification warning(s)",
			domain.LogPrefix(domain.RunScope, domain.StageVerify), n))
	}

	a.logger.Info(fmt.Sprintf("%s done, run: source %s",
		domain.LogPrefix(domain.RunScope, domain.StageEmit), report.DescriptorPath))

	return report, nil
}

// Env returns the environment descriptor written by the last successful run.
func (a *App) Env(opts Options) ([]byte, error) {
	settings, err := a.settings(opts)
	if err != nil {
		return nil, err
	}

	workDir, err := resolveDir(opts.WorkDir, settings.WorkDir)
	if err != nil {
		return nil, err
	}

	return a.descriptors.Read(domain.DescriptorPath(workDir))
}

// Status returns the manifest of the last run.
func (a *App) Status(opts Options) (*domain.Manifest, error) {
	settings, err := a.settings(opts)
	if err != nil {
		return nil, err
	}

	workDir, err := resolveDir(opts.WorkDir, settings.WorkDir)
	if err != nil {
		return nil, err
	}

	manifest, err := a.manifests.Get(workDir)
	if err != nil {
		return nil, err
	}
	if manifest == nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrManifestNotFound, "no recorded run"), "workdir", workDir)
	}
	return manifest, nil
}

// Clean removes every cached source archive and returns how many were removed.
func (a *App) Clean(opts Options) (int, error) {
	settings, err := a.settings(opts)
	if err != nil {
		return 0, err
	}

	cacheDir, err := resolveDir(opts.CacheDir, settings.CacheDir)
	if err != nil {
		return 0, err
	}

	dir := domain.SourceCachePath(cacheDir)
	removed, err := a.cache.Clear(dir)
	if err != nil {
		return removed, zerr.With(zerr.Wrap(err, "failed to clean source cache"), "path", dir)
	}

	a.logger.Info(fmt.Sprintf("removed %d cached archive(s) from %s", removed, dir))

	return removed, nil
}

// load reads the settings and converts them into a validated RunConfig.
func (a *App) load(opts Options) (domain.RunConfig, error) {
	settings, err := a.settings(opts)
	if err != nil {
		return domain.RunConfig{}, err
	}
	return a.RunConfig(settings, opts)
}

func (a *App) settings(opts Options) (domain.Settings, error) {
	settings, err := a.configLoader.Load(opts.ConfigPath)
	if err != nil {
		return domain.Settings{}, zerr.Wrap(err, "failed to load configuration")
	}

	if opts.JSONLogs || settings.Log.JSON {
		if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
			l.SetJSON(true)
		}
	}

	return settings, nil
}
