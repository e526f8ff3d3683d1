package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

var _ ports.SourceInstaller = (*Source)(nil)

// Source builds dependencies from source archives.
type Source struct {
	fetcher   ports.Fetcher
	extractor ports.Extractor
	cache     ports.ArchiveCache
	toolchain ports.BuildToolchain
	logger    ports.Logger
}

// NewSource creates a Source installer.
func NewSource(
	fetcher ports.Fetcher,
	extractor ports.Extractor,
	cache ports.ArchiveCache,
	toolchain ports.BuildToolchain,
	logger ports.Logger,
) *Source {
	return &Source{
		fetcher:   fetcher,
		extractor: extractor,
		cache:     cache,
		toolchain: toolchain,
		logger:    logger,
	}
}

// InstallFromSource unpacks the cached or freshly fetched source archive into a clean build
// directory, then configures, compiles and installs it into the target directory.
//
// A cached archive that fails to unpack is evicted and fetched once more.
func (s *Source) InstallFromSource(ctx context.Context, cfg domain.RunConfig, spec domain.DependencySpec) (string, error) {
	url, err := sourceURL(ctx, cfg, spec)
	if err != nil {
		return "", err
	}

	if err := prepareTarget(ctx, spec); err != nil {
		return "", err
	}

	s.logger.Info(fmt.Sprintf("%s building %s %s into %s",
		domain.LogPrefix(spec.Name(), domain.StageInstall), spec.Name(), spec.Version(), spec.TargetDir()))

	archive, cached, err := s.obtain(ctx, cfg, spec, url)
	if err != nil {
		return "", err
	}

	buildDir := cfg.BuildDir(spec)
	if err := s.unpack(ctx, spec, archive, buildDir); err != nil {
		if !cached {
			return "", err
		}

		s.logger.Warn(fmt.Sprintf("%s cached archive %s is unusable, fetching it again",
			domain.LogPrefix(spec.Name(), domain.StageExtract), filepath.Base(archive)))

		if evictErr := s.cache.Evict(archive); evictErr != nil {
			return "", fail(ctx, spec, domain.StageExtract, domain.ErrExtractionFailed, evictErr)
		}
		if err := fetchArchive(ctx, s.fetcher, cfg, spec, url, archive); err != nil {
			return "", err
		}
		if err := s.unpack(ctx, spec, archive, buildDir); err != nil {
			return "", err
		}
	}

	if err := s.build(ctx, cfg, spec, buildDir); err != nil {
		return "", err
	}

	s.logger.Info(fmt.Sprintf("%s installed %s", domain.LogPrefix(spec.Name(), domain.StageInstall), spec.TargetDir()))

	return spec.TargetDir(), nil
}

// obtain returns the cached archive path, fetching it on a miss.
func (s *Source) obtain(
	ctx context.Context,
	cfg domain.RunConfig,
	spec domain.DependencySpec,
	url string,
) (path string, cached bool, err error) {
	key := ports.ArchiveKey{Name: spec.Name(), Version: spec.Version(), URL: url}

	path, hit, err := s.cache.Locate(cfg.SourceCacheDir(), key)
	if err != nil {
		return "", false, fail(ctx, spec, domain.StagePrepare, domain.ErrPrepareFailed, err)
	}

	if hit {
		s.logger.Info(fmt.Sprintf("%s using cached archive %s",
			domain.LogPrefix(spec.Name(), domain.StageFetch), filepath.Base(path)))
		return path, true, nil
	}

	if err := fetchArchive(ctx, s.fetcher, cfg, spec, url, path); err != nil {
		return "", false, err
	}
	return path, false, nil
}

// unpack replaces buildDir with the archive contents.
func (s *Source) unpack(ctx context.Context, spec domain.DependencySpec, archive, buildDir string) error {
	if err := os.RemoveAll(buildDir); err != nil {
		return fail(ctx, spec, domain.StagePrepare, domain.ErrPrepareFailed, err)
	}

	s.logger.Info(fmt.Sprintf("%s unpacking %s", domain.LogPrefix(spec.Name(), domain.StageExtract), filepath.Base(archive)))

	err := s.extractor.Extract(ctx, ports.ExtractRequest{
		Archive:         archive,
		Destination:     buildDir,
		StripComponents: stripTopLevel,
	})
	if err != nil {
		return fail(ctx, spec, domain.StageExtract, domain.ErrExtractionFailed, err)
	}
	return nil
}

func (s *Source) build(ctx context.Context, cfg domain.RunConfig, spec domain.DependencySpec, buildDir string) error {
	req := ports.BuildRequest{
		Dependency: spec.Name(),
		SourceDir:  buildDir,
		Prefix:     spec.TargetDir(),
		Options:    cfg.Build.Clone(),
		Jobs:       cfg.Jobs,
		Env:        cfg.CommandEnv(),
	}

	steps := []struct {
		stage domain.Stage
		run   func(context.Context, ports.BuildRequest) error
	}{
		{domain.StageConfigure, s.toolchain.Configure},
		{domain.StageCompile, s.toolchain.Compile},
		{domain.StageInstall, s.toolchain.Install},
	}

	for _, step := range steps {
		s.logger.Info(fmt.Sprintf("%s running", domain.LogPrefix(spec.Name(), step.stage)))
		if err := step.run(ctx, req); err != nil {
			return fail(ctx, spec, step.stage, domain.ErrBuildStageFailed, err)
		}
	}
	return nil
}
