package installer_test

import (
	"archive/tar"
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type file struct {
	name string
	body string
	mode int64
}

func tarGz(t *testing.T, files []file) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	for _, f := range files {
		mode := f.mode
		if mode == 0 {
			mode = 0o644
		}
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     f.name,
			Mode:     mode,
			Size:     int64(len(f.body)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(f.body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

func jdkArchive(t *testing.T) []byte {
	t.Helper()
	return tarGz(t, []file{
		{name: "jdk-17.0.9+9/bin/java", body: "#!/bin/sh\n", mode: 0o755},
		{name: "jdk-17.0.9+9/lib/modules", body: "modules"},
		{name: "jdk-17.0.9+9/release", body: "JAVA_VERSION=\"17.0.9\"\n"},
	})
}

func pythonArchive(t *testing.T) []byte {
	t.Helper()
	return tarGz(t, []file{
		{name: "Python-3.11.6/configure", body: "#!/bin/sh\n", mode: 0o755},
		{name: "Python-3.11.6/Makefile.pre.in", body: "all:\n"},
	})
}

func quietLogger(t *testing.T) *mocks.MockLogger {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	return log
}

func spec(t *testing.T, name, version, urlTemplate string, kind domain.InstallKind, target string) domain.DependencySpec {
	t.Helper()
	s, err := domain.NewDependencySpec(domain.DependencyParams{
		Name:        name,
		Version:     version,
		URLTemplate: urlTemplate,
		TargetDir:   target,
		Kind:        kind,
		Executable:  "bin/" + name,
		VersionFlag: "--version",
	})
	require.NoError(t, err)
	return s
}

func runConfig(t *testing.T, runtime, interpreter domain.DependencySpec) domain.RunConfig {
	t.Helper()
	root := t.TempDir()
	return domain.RunConfig{
		WorkDir:  filepath.Join(root, "work"),
		CacheDir: filepath.Join(root, "cache"),
		Retry: domain.RetryPolicy{
			MaxAttempts: 2,
			Strategy:    domain.StrategyFixed,
		},
		Runtime:     runtime,
		Interpreter: interpreter,
		Build:       domain.DefaultBuildOptions(),
		Jobs:        4,
		Platform:    domain.Platform{OS: "linux", Arch: "x64"},
		BaseEnv:     []string{"PATH=/usr/bin"},
	}
}

func layout(t *testing.T, root string) []string {
	t.Helper()
	var paths []string
	err := filepath.WalkDir(root, func(path string, _ fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, rel)
		return nil
	})
	require.NoError(t, err)
	slices.Sort(paths)
	return paths
}

func writeArchive(data []byte) func(context.Context, ports.FetchRequest) (domain.FetchResult, error) {
	return func(_ context.Context, req ports.FetchRequest) (domain.FetchResult, error) {
		if err := os.MkdirAll(filepath.Dir(req.Destination), domain.DirPerm); err != nil {
			return domain.FetchResult{}, err
		}
		if err := os.WriteFile(req.Destination, data, domain.FilePerm); err != nil {
			return domain.FetchResult{}, err
		}
		return domain.FetchResult{Path: req.Destination, Success: true, Attempts: 1}, nil
	}
}

func requireStage(t *testing.T, err error, dependency string, stage domain.Stage, kind error) {
	t.Helper()
	require.Error(t, err)

	var stageErr *domain.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, dependency, stageErr.Dependency)
	assert.Equal(t, stage, stageErr.Stage)
	if kind != nil {
		assert.ErrorIs(t, err, kind)
	} else {
		assert.NoError(t, stageErr.Kind)
	}
}
