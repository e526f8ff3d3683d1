package domain

import (
	"path/filepath"
	"slices"
	"time"

	"go.trai.ch/zerr"
)

// RetryStrategy selects how the delay between fetch attempts evolves.
type RetryStrategy string

const (
	// StrategyFixed waits the same delay between every attempt.
	StrategyFixed RetryStrategy = "fixed"
	// StrategyExponential doubles the delay after every attempt, with jitter, up to MaxDelay.
	StrategyExponential RetryStrategy = "exponential"
)

// Retry defaults.
const (
	DefaultMaxAttempts    = 3
	DefaultRetryDelay     = 2 * time.Second
	DefaultMaxRetryDelay  = 30 * time.Second
	DefaultAttemptTimeout = 15 * time.Minute
)

// RetryPolicy bounds the fetcher's retry loop.
type RetryPolicy struct {
	MaxAttempts int
	Strategy    RetryStrategy
	Delay       time.Duration
	MaxDelay    time.Duration
	// AttemptTimeout caps a single transfer. Zero disables it.
	AttemptTimeout time.Duration
}

// DefaultRetryPolicy returns three attempts two seconds apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    DefaultMaxAttempts,
		Strategy:       StrategyFixed,
		Delay:          DefaultRetryDelay,
		MaxDelay:       DefaultMaxRetryDelay,
		AttemptTimeout: DefaultAttemptTimeout,
	}
}

// Validate checks the policy bounds.
func (p RetryPolicy) Validate() error {
	if p.MaxAttempts < 1 {
		return zerr.With(zerr.Wrap(ErrInvalidRetryPolicy, "at least one attempt is required"), "attempts", p.MaxAttempts)
	}
	if p.Delay < 0 || p.MaxDelay < 0 || p.AttemptTimeout < 0 {
		return zerr.Wrap(ErrInvalidRetryPolicy, "durations must not be negative")
	}
	switch p.Strategy {
	case StrategyFixed, StrategyExponential:
	default:
		return zerr.With(zerr.Wrap(ErrInvalidRetryPolicy, "unknown strategy"), "strategy", string(p.Strategy))
	}
	return nil
}

// CommandEnvOverrides are applied on top of the base environment for every delegated command.
var CommandEnvOverrides = []string{"DEBIAN_FRONTEND=noninteractive"}

// RunConfig is the immutable input of one provisioning run.
// Components receive it by value and read no other process state.
type RunConfig struct {
	WorkDir     string
	CacheDir    string
	Retry       RetryPolicy
	Runtime     DependencySpec
	Interpreter DependencySpec
	Build       BuildOptions
	Jobs        int
	Platform    Platform
	// S3 locates the object store for s3:// source URLs.
	S3 S3Settings
	// BaseEnv is the environment snapshot in "KEY=VALUE" form.
	BaseEnv []string
}

// Validate checks that the configuration can drive a run.
func (c RunConfig) Validate() error {
	if c.WorkDir == "" || !filepath.IsAbs(c.WorkDir) {
		return zerr.With(zerr.Wrap(ErrInvalidRunConfig, "working directory must be absolute"), "workdir", c.WorkDir)
	}
	if c.CacheDir == "" || !filepath.IsAbs(c.CacheDir) {
		return zerr.With(zerr.Wrap(ErrInvalidRunConfig, "cache directory must be absolute"), "cachedir", c.CacheDir)
	}
	if err := c.Retry.Validate(); err != nil {
		return err
	}
	if c.Runtime.Name() == "" || c.Interpreter.Name() == "" {
		return zerr.Wrap(ErrInvalidRunConfig, "both dependencies are required")
	}
	if c.Runtime.Name() == c.Interpreter.Name() {
		return zerr.With(zerr.Wrap(ErrInvalidRunConfig, "dependency names must differ"), "name", c.Runtime.Name())
	}
	if c.Jobs < 1 {
		return zerr.With(zerr.Wrap(ErrInvalidRunConfig, "at least one build job is required"), "jobs", c.Jobs)
	}
	if c.Platform.IsZero() {
		return zerr.Wrap(ErrInvalidRunConfig, "platform is required")
	}
	return nil
}

// Dependencies returns both specs in install order.
func (c RunConfig) Dependencies() []DependencySpec {
	return []DependencySpec{c.Runtime, c.Interpreter}
}

// Getenv returns a value from the base environment snapshot.
func (c RunConfig) Getenv(key string) string {
	return LookupEnv(c.BaseEnv, key)
}

// CommandEnv returns the environment for delegated commands.
func (c RunConfig) CommandEnv() []string {
	env := slices.Clone(c.BaseEnv)
	return append(env, CommandEnvOverrides...)
}

// DownloadDir holds temporary archives for binary installs.
func (c RunConfig) DownloadDir() string {
	return filepath.Join(c.WorkDir, DownloadsDirName)
}

// BuildDir returns the scratch source tree for a dependency.
func (c RunConfig) BuildDir(spec DependencySpec) string {
	return filepath.Join(c.WorkDir, BuildDirName, spec.Name()+"-"+spec.Version())
}

// SourceCacheDir holds cached source archives.
func (c RunConfig) SourceCacheDir() string {
	return SourceCachePath(c.CacheDir)
}

// DescriptorPath is where the environment descriptor is written.
func (c RunConfig) DescriptorPath() string {
	return DescriptorPath(c.WorkDir)
}

// ManifestPath is where the run manifest is written.
func (c RunConfig) ManifestPath() string {
	return ManifestPath(c.WorkDir)
}
