package domain

import "go.trai.ch/zerr"

var (
	// ErrInvalidDependencySpec is returned when a dependency specification fails validation.
	ErrInvalidDependencySpec = zerr.New("invalid dependency specification")

	// ErrInvalidVersion is returned when a dependency version is empty or malformed.
	ErrInvalidVersion = zerr.New("invalid version, expected a dotted numeric release with an optional qualifier such as 3.11.6, 3.13.0rc1 or 21+35")

	// ErrInvalidURLTemplate is returned when a source URL template cannot be parsed or rendered.
	ErrInvalidURLTemplate = zerr.New("invalid source URL template")

	// ErrUnsupportedScheme is returned when a source URL uses a scheme no transport handles.
	ErrUnsupportedScheme = zerr.New("unsupported URL scheme, expected http, https or s3")

	// ErrInvalidRunConfig is returned when the run configuration is incomplete or inconsistent.
	ErrInvalidRunConfig = zerr.New("invalid run configuration")

	// ErrInvalidRetryPolicy is returned when the retry policy is out of bounds.
	ErrInvalidRetryPolicy = zerr.New("invalid retry policy")

	// ErrPrepareFailed is returned when a working, cache or target directory cannot be created.
	ErrPrepareFailed = zerr.New("failed to prepare directories")

	// ErrTransientFetch is returned for a single failed transfer attempt.
	ErrTransientFetch = zerr.New("transfer attempt failed")

	// ErrFetchExhausted is returned when every transfer attempt failed.
	ErrFetchExhausted = zerr.New("fetch failed after exhausting all attempts")

	// ErrUnexpectedStatus is returned when a mirror answers with a non-2xx status.
	ErrUnexpectedStatus = zerr.New("unexpected HTTP status")

	// ErrExtractionFailed is returned when an archive cannot be unpacked.
	ErrExtractionFailed = zerr.New("archive extraction failed")

	// ErrUnsupportedArchive is returned when the archive format is not recognized.
	ErrUnsupportedArchive = zerr.New("unsupported archive format")

	// ErrUnsafeArchivePath is returned when an archive entry would escape the destination directory.
	ErrUnsafeArchivePath = zerr.New("archive entry escapes destination directory")

	// ErrBuildStageFailed is returned when the delegated configure, compile or install step fails.
	ErrBuildStageFailed = zerr.New("build stage failed")

	// ErrVerificationFailed is returned when an installed tool's self-report command fails.
	// It is a warning and never aborts a run.
	ErrVerificationFailed = zerr.New("verification failed")

	// ErrDescriptorWriteFailed is returned when the environment descriptor cannot be persisted.
	ErrDescriptorWriteFailed = zerr.New("failed to write environment descriptor")

	// ErrDescriptorNotFound is returned when no descriptor exists in the working directory.
	ErrDescriptorNotFound = zerr.New("environment descriptor not found, run 'kiln provision' first")

	// ErrIllegalTransition is returned when the orchestrator attempts a transition the state machine forbids.
	ErrIllegalTransition = zerr.New("illegal state transition")

	// ErrProvisionFailed is returned when a provisioning run ends in the Failed state.
	ErrProvisionFailed = zerr.New("provisioning failed")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be decoded.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrManifestReadFailed is returned when the run manifest cannot be read.
	ErrManifestReadFailed = zerr.New("failed to read run manifest")

	// ErrManifestWriteFailed is returned when the run manifest cannot be written.
	ErrManifestWriteFailed = zerr.New("failed to write run manifest")

	// ErrManifestNotFound is returned when no manifest exists in the working directory.
	ErrManifestNotFound = zerr.New("run manifest not found")

	// ErrCommandFailed is returned when a delegated command exits unsuccessfully.
	ErrCommandFailed = zerr.New("command failed")
)
