package domain

import "time"

// Default dependency sources.
const (
	DefaultRuntimeName        = "jdk"
	DefaultRuntimeVersion     = "17.0.9+9"
	DefaultRuntimeURLTemplate = "https://api.adoptium.net/v3/binary/version/jdk-{{urlquery .Version}}" +
		"/{{.OS}}/{{.Arch}}/jdk/hotspot/normal/eclipse"

	DefaultInterpreterName        = "python"
	DefaultInterpreterVersion     = "3.11.6"
	DefaultInterpreterURLTemplate = "https://www.python.org/ftp/python/{{.Version}}/Python-{{.Version}}.tgz"
)

// Settings is the user-facing configuration as loaded from file and environment.
type Settings struct {
	WorkDir     string             `mapstructure:"workdir"`
	CacheDir    string             `mapstructure:"cachedir"`
	Retry       RetrySettings      `mapstructure:"retry"`
	Runtime     DependencySettings `mapstructure:"runtime"`
	Interpreter DependencySettings `mapstructure:"interpreter"`
	Build       BuildSettings      `mapstructure:"build"`
	S3          S3Settings         `mapstructure:"s3"`
	Log         LogSettings        `mapstructure:"log"`
}

// RetrySettings configures the fetch retry policy.
type RetrySettings struct {
	Attempts       int           `mapstructure:"attempts"`
	Delay          time.Duration `mapstructure:"delay"`
	MaxDelay       time.Duration `mapstructure:"max_delay"`
	Strategy       string        `mapstructure:"strategy"`
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout"`
}

// Policy converts the settings into a RetryPolicy.
func (r RetrySettings) Policy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    r.Attempts,
		Strategy:       RetryStrategy(r.Strategy),
		Delay:          r.Delay,
		MaxDelay:       r.MaxDelay,
		AttemptTimeout: r.AttemptTimeout,
	}
}

// DependencySettings configures one dependency.
type DependencySettings struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	URLTemplate string `mapstructure:"url_template"`
	// Dir overrides the install directory. Relative paths resolve against the working directory.
	Dir string `mapstructure:"dir"`
}

// BuildSettings configures the source build.
type BuildSettings struct {
	// Jobs is the parallel compile job count. Zero means one per CPU.
	Jobs int `mapstructure:"jobs"`
}

// S3Settings configures access to s3:// mirrors.
type S3Settings struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Secure    bool   `mapstructure:"secure"`
}

// LogSettings configures log output.
type LogSettings struct {
	JSON bool `mapstructure:"json"`
}

// DefaultSettings returns the configuration used when nothing is overridden.
func DefaultSettings() Settings {
	return Settings{
		WorkDir:  DefaultWorkDir,
		CacheDir: DefaultCacheDir,
		Retry: RetrySettings{
			Attempts:       DefaultMaxAttempts,
			Delay:          DefaultRetryDelay,
			MaxDelay:       DefaultMaxRetryDelay,
			Strategy:       string(StrategyFixed),
			AttemptTimeout: DefaultAttemptTimeout,
		},
		Runtime: DependencySettings{
			Name:        DefaultRuntimeName,
			Version:     DefaultRuntimeVersion,
			URLTemplate: DefaultRuntimeURLTemplate,
		},
		Interpreter: DependencySettings{
			Name:        DefaultInterpreterName,
			Version:     DefaultInterpreterVersion,
			URLTemplate: DefaultInterpreterURLTemplate,
		},
		S3: S3Settings{
			Endpoint: "s3.amazonaws.com",
			Region:   "us-east-1",
			Secure:   true,
		},
	}
}
