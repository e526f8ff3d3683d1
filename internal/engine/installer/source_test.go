package installer_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/archive"
	"go.trai.ch/kiln/internal/adapters/cas"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.trai.ch/kiln/internal/engine/installer"
	"go.uber.org/mock/gomock"
)

const pythonURL = "https://mirror.invalid/python/{{.Version}}/Python-{{.Version}}.tgz"

type sourceFixture struct {
	cfg       domain.RunConfig
	spec      domain.DependencySpec
	fetcher   *mocks.MockFetcher
	toolchain *mocks.MockBuildToolchain
	cache     *cas.ArchiveCache
	installer *installer.Source
}

func newSourceFixture(t *testing.T) *sourceFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	target := filepath.Join(t.TempDir(), "python")
	python := spec(t, "python", "3.11.6", pythonURL, domain.KindSource, target)
	jdk := spec(t, "jdk", "17.0.9+9", "https://mirror.invalid/jdk.tar.gz", domain.KindBinary, filepath.Join(t.TempDir(), "jdk"))

	f := &sourceFixture{
		cfg:       runConfig(t, jdk, python),
		spec:      python,
		fetcher:   mocks.NewMockFetcher(ctrl),
		toolchain: mocks.NewMockBuildToolchain(ctrl),
		cache:     cas.NewArchiveCache(),
	}
	f.installer = installer.NewSource(f.fetcher, archive.NewExtractor(), f.cache, f.toolchain, quietLogger(t))
	return f
}

func (f *sourceFixture) cachedPath(t *testing.T) string {
	t.Helper()
	url, err := f.spec.URL(f.cfg.Platform)
	require.NoError(t, err)
	path, _, err := f.cache.Locate(f.cfg.SourceCacheDir(), ports.ArchiveKey{
		Name:    f.spec.Name(),
		Version: f.spec.Version(),
		URL:     url,
	})
	require.NoError(t, err)
	return path
}

func (f *sourceFixture) expectBuild() {
	f.toolchain.EXPECT().Configure(gomock.Any(), gomock.Any()).Return(nil)
	f.toolchain.EXPECT().Compile(gomock.Any(), gomock.Any()).Return(nil)
	f.toolchain.EXPECT().Install(gomock.Any(), gomock.Any()).Return(nil)
}

func TestSource_FetchesBuildsAndInstalls(t *testing.T) {
	f := newSourceFixture(t)
	buildDir := f.cfg.BuildDir(f.spec)

	f.fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, req ports.FetchRequest) (domain.FetchResult, error) {
			assert.Equal(t, "https://mirror.invalid/python/3.11.6/Python-3.11.6.tgz", req.URL)
			assert.Equal(t, f.cfg.SourceCacheDir(), filepath.Dir(req.Destination))
			return writeArchive(pythonArchive(t))(ctx, req)
		})

	checkRequest := func(_ context.Context, req ports.BuildRequest) error {
		assert.Equal(t, "python", req.Dependency)
		assert.Equal(t, buildDir, req.SourceDir)
		assert.Equal(t, f.spec.TargetDir(), req.Prefix)
		assert.Equal(t, 4, req.Jobs)
		assert.Equal(t, domain.DefaultBuildOptions(), req.Options)
		assert.Contains(t, req.Env, "DEBIAN_FRONTEND=noninteractive")
		assert.FileExists(t, filepath.Join(req.SourceDir, "configure"))
		return nil
	}
	gomock.InOrder(
		f.toolchain.EXPECT().Configure(gomock.Any(), gomock.Any()).DoAndReturn(checkRequest),
		f.toolchain.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(checkRequest),
		f.toolchain.EXPECT().Install(gomock.Any(), gomock.Any()).DoAndReturn(checkRequest),
	)

	path, err := f.installer.InstallFromSource(context.Background(), f.cfg, f.spec)
	require.NoError(t, err)
	assert.Equal(t, f.spec.TargetDir(), path)
	assert.DirExists(t, f.spec.TargetDir())
	assert.FileExists(t, f.cachedPath(t), "source archive stays cached")
}

func TestSource_UsesCachedArchive(t *testing.T) {
	f := newSourceFixture(t)
	require.NoError(t, os.WriteFile(f.cachedPath(t), pythonArchive(t), domain.FilePerm))

	f.expectBuild()

	_, err := f.installer.InstallFromSource(context.Background(), f.cfg, f.spec)
	require.NoError(t, err)
}

func TestSource_WipesStaleBuildDirectory(t *testing.T) {
	f := newSourceFixture(t)
	require.NoError(t, os.WriteFile(f.cachedPath(t), pythonArchive(t), domain.FilePerm))

	stale := filepath.Join(f.cfg.BuildDir(f.spec), "python.o")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o750))
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0o600))

	f.expectBuild()

	_, err := f.installer.InstallFromSource(context.Background(), f.cfg, f.spec)
	require.NoError(t, err)
	assert.NoFileExists(t, stale)
}

func TestSource_RefetchesCorruptCachedArchive(t *testing.T) {
	f := newSourceFixture(t)
	cached := f.cachedPath(t)
	require.NoError(t, os.WriteFile(cached, []byte("truncated download"), domain.FilePerm))

	f.fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, req ports.FetchRequest) (domain.FetchResult, error) {
			assert.Equal(t, cached, req.Destination)
			assert.NoFileExists(t, cached, "corrupt entry is evicted before refetching")
			return writeArchive(pythonArchive(t))(ctx, req)
		}).Times(1)
	f.expectBuild()

	_, err := f.installer.InstallFromSource(context.Background(), f.cfg, f.spec)
	require.NoError(t, err)
}

func TestSource_CorruptFreshArchiveIsFatal(t *testing.T) {
	f := newSourceFixture(t)

	f.fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(writeArchive([]byte("garbage"))).Times(1)

	_, err := f.installer.InstallFromSource(context.Background(), f.cfg, f.spec)

	requireStage(t, err, "python", domain.StageExtract, domain.ErrExtractionFailed)
}

func TestSource_FetchExhausted(t *testing.T) {
	f := newSourceFixture(t)

	f.fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).
		Return(domain.FetchResult{Attempts: 2}, errors.Join(domain.ErrFetchExhausted, errors.New("503 Service Unavailable")))

	_, err := f.installer.InstallFromSource(context.Background(), f.cfg, f.spec)

	requireStage(t, err, "python", domain.StageFetch, domain.ErrFetchExhausted)
}

func TestSource_BuildStageFailures(t *testing.T) {
	tests := []struct {
		name  string
		stage domain.Stage
		setup func(tc *mocks.MockBuildToolchain, cause error)
	}{
		{
			name:  "configure",
			stage: domain.StageConfigure,
			setup: func(tc *mocks.MockBuildToolchain, cause error) {
				tc.EXPECT().Configure(gomock.Any(), gomock.Any()).Return(cause)
			},
		},
		{
			name:  "compile",
			stage: domain.StageCompile,
			setup: func(tc *mocks.MockBuildToolchain, cause error) {
				tc.EXPECT().Configure(gomock.Any(), gomock.Any()).Return(nil)
				tc.EXPECT().Compile(gomock.Any(), gomock.Any()).Return(cause)
			},
		},
		{
			name:  "install",
			stage: domain.StageInstall,
			setup: func(tc *mocks.MockBuildToolchain, cause error) {
				tc.EXPECT().Configure(gomock.Any(), gomock.Any()).Return(nil)
				tc.EXPECT().Compile(gomock.Any(), gomock.Any()).Return(nil)
				tc.EXPECT().Install(gomock.Any(), gomock.Any()).Return(cause)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSourceFixture(t)
			require.NoError(t, os.WriteFile(f.cachedPath(t), pythonArchive(t), domain.FilePerm))

			cause := errors.Join(domain.ErrCommandFailed, errors.New("exit status 2"))
			tt.setup(f.toolchain, cause)

			_, err := f.installer.InstallFromSource(context.Background(), f.cfg, f.spec)

			requireStage(t, err, "python", tt.stage, domain.ErrBuildStageFailed)
			assert.ErrorIs(t, err, domain.ErrCommandFailed)
		})
	}
}
