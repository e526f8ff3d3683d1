// Package config provides the settings loader for kiln.
package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// EnvPrefix prefixes every environment override, e.g. KILN_RETRY_ATTEMPTS.
const EnvPrefix = "KILN"

// Loader implements ports.ConfigLoader using viper.
type Loader struct {
	logger ports.Logger
}

// NewLoader creates a new Loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load merges defaults, the config file and KILN_* environment overrides, in increasing priority.
func (l *Loader) Load(path string) (domain.Settings, error) {
	v := viper.New()
	setDefaults(v, domain.DefaultSettings())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	file, err := resolveFile(path)
	if err != nil {
		return domain.Settings{}, err
	}

	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return domain.Settings{}, zerr.With(errors.Join(domain.ErrConfigParseFailed, err), "path", file)
		}
		l.logger.Info("loaded settings from " + file)
	}

	var s domain.Settings
	if err := v.Unmarshal(&s); err != nil {
		return domain.Settings{}, zerr.With(errors.Join(domain.ErrConfigParseFailed, err), "path", file)
	}

	return s, nil
}

// resolveFile returns the config file to read, or "" when there is none.
// An explicit path must exist; the default file is optional.
func resolveFile(path string) (string, error) {
	if path == "" {
		if _, err := os.Stat(domain.ConfigFileName); err == nil {
			return domain.ConfigFileName, nil
		}
		return "", nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", zerr.With(errors.Join(domain.ErrConfigReadFailed, err), "path", path)
	}
	if info.IsDir() {
		return "", zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, "config path is a directory"), "path", path)
	}
	return path, nil
}

func setDefaults(v *viper.Viper, d domain.Settings) {
	v.SetDefault("workdir", d.WorkDir)
	v.SetDefault("cachedir", d.CacheDir)

	v.SetDefault("retry.attempts", d.Retry.Attempts)
	v.SetDefault("retry.delay", d.Retry.Delay)
	v.SetDefault("retry.max_delay", d.Retry.MaxDelay)
	v.SetDefault("retry.strategy", d.Retry.Strategy)
	v.SetDefault("retry.attempt_timeout", d.Retry.AttemptTimeout)

	for key, dep := range map[string]domain.DependencySettings{
		"runtime":     d.Runtime,
		"interpreter": d.Interpreter,
	} {
		v.SetDefault(key+".name", dep.Name)
		v.SetDefault(key+".version", dep.Version)
		v.SetDefault(key+".url_template", dep.URLTemplate)
		v.SetDefault(key+".dir", dep.Dir)
	}

	v.SetDefault("build.jobs", d.Build.Jobs)

	v.SetDefault("s3.endpoint", d.S3.Endpoint)
	v.SetDefault("s3.region", d.S3.Region)
	v.SetDefault("s3.access_key", d.S3.AccessKey)
	v.SetDefault("s3.secret_key", d.S3.SecretKey)
	v.SetDefault("s3.secure", d.S3.Secure)

	v.SetDefault("log.json", d.Log.JSON)
}
