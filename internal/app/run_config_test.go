package app_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/core/domain"
)

func TestRunConfig_Defaults(t *testing.T) {
	h := newHarness(t)

	cfg, err := h.app().RunConfig(h.settings, app.Options{})
	require.NoError(t, err)

	assert.Equal(t, h.settings.WorkDir, cfg.WorkDir)
	assert.Equal(t, h.settings.CacheDir, cfg.CacheDir)
	assert.Equal(t, 4, cfg.Jobs)
	assert.Equal(t, domain.DefaultRetryPolicy(), cfg.Retry)
	assert.Equal(t, domain.DefaultBuildOptions(), cfg.Build)
	assert.Equal(t, []string{"PATH=/usr/bin"}, cfg.BaseEnv)
	assert.Equal(t, domain.Platform{OS: "linux", Arch: "x64"}, cfg.Platform)

	assert.Equal(t, "jdk", cfg.Runtime.Name())
	assert.Equal(t, domain.KindBinary, cfg.Runtime.Kind())
	assert.Equal(t, filepath.Join(cfg.WorkDir, "jdk", "bin", "java"), cfg.Runtime.ExecutablePath())
	assert.Equal(t, "-version", cfg.Runtime.VersionFlag())

	url, err := cfg.Runtime.URL(cfg.Platform)
	require.NoError(t, err)
	assert.Equal(t,
		"https://api.adoptium.net/v3/binary/version/jdk-17.0.9%2B9/linux/x64/jdk/hotspot/normal/eclipse", url)

	assert.Equal(t, "python", cfg.Interpreter.Name())
	assert.Equal(t, domain.KindSource, cfg.Interpreter.Kind())
	assert.Equal(t, domain.Contribution{
		BinDir:    filepath.Join(cfg.WorkDir, "python", "bin"),
		ModuleVar: "PYTHONPATH",
		ModuleDir: filepath.Join(cfg.WorkDir, "python", "lib", "python3.11", "site-packages"),
	}, cfg.Interpreter.Contribution())
}

func TestRunConfig_Overrides(t *testing.T) {
	h := newHarness(t)
	s := h.settings
	s.Build.Jobs = 3
	s.Runtime.Dir = "/opt/jdk"
	s.Interpreter.Dir = "toolchains/python"
	s.Retry.Attempts = 5
	s.Retry.Strategy = "exponential"
	s.Retry.Delay = time.Second

	work := t.TempDir()
	cfg, err := h.app().RunConfig(s, app.Options{WorkDir: work, CacheDir: "relative-cache"})
	require.NoError(t, err)

	assert.Equal(t, work, cfg.WorkDir)
	assert.True(t, filepath.IsAbs(cfg.CacheDir))
	assert.Equal(t, "relative-cache", filepath.Base(cfg.CacheDir))
	assert.Equal(t, 3, cfg.Jobs)
	assert.Equal(t, "/opt/jdk", cfg.Runtime.TargetDir())
	assert.Equal(t, filepath.Join(work, "toolchains", "python"), cfg.Interpreter.TargetDir())
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, domain.StrategyExponential, cfg.Retry.Strategy)
	assert.Equal(t, time.Second, cfg.Retry.Delay)
}

func TestRunConfig_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Settings)
		want   error
	}{
		{
			name:   "unsupported scheme",
			mutate: func(s *domain.Settings) { s.Runtime.URLTemplate = "ftp://mirror/jdk.tar.gz" },
			want:   domain.ErrUnsupportedScheme,
		},
		{
			name:   "bad template",
			mutate: func(s *domain.Settings) { s.Interpreter.URLTemplate = "https://host/{{.Missing}}" },
			want:   domain.ErrInvalidURLTemplate,
		},
		{
			name:   "same names",
			mutate: func(s *domain.Settings) { s.Interpreter.Name = s.Runtime.Name },
			want:   domain.ErrInvalidRunConfig,
		},
		{
			name:   "no attempts",
			mutate: func(s *domain.Settings) { s.Retry.Attempts = 0 },
			want:   domain.ErrInvalidRetryPolicy,
		},
		{
			name:   "unknown strategy",
			mutate: func(s *domain.Settings) { s.Retry.Strategy = "linear" },
			want:   domain.ErrInvalidRetryPolicy,
		},
		{
			name:   "negative jobs",
			mutate: func(s *domain.Settings) { s.Build.Jobs = -1 },
			want:   domain.ErrInvalidRunConfig,
		},
		{
			name:   "empty workdir",
			mutate: func(s *domain.Settings) { s.WorkDir = "" },
			want:   domain.ErrInvalidRunConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			s := h.settings
			tt.mutate(&s)

			_, err := h.app().RunConfig(s, app.Options{})
			require.ErrorIs(t, err, tt.want)
		})
	}
}
