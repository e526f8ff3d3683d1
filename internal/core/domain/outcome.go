package domain

// FetchResult describes a completed retrieval. It is only valid when Success is true.
type FetchResult struct {
	// Path is the local file the artifact was written to.
	Path string
	// Success reports whether an attempt completed.
	Success bool
	// Attempts is the number of transfer attempts consumed, including the successful one.
	Attempts int
}

// VerificationStatus records the result of running an installed tool's self-report command.
type VerificationStatus uint8

const (
	// VerificationNotRun means the verifier has not been invoked for the dependency.
	VerificationNotRun VerificationStatus = iota
	// VerificationOK means the tool reported its version and exited zero.
	VerificationOK
	// VerificationWarning means the tool could not report its version.
	VerificationWarning
)

// String returns the status as written to the run manifest.
func (s VerificationStatus) String() string {
	switch s {
	case VerificationOK:
		return "ok"
	case VerificationWarning:
		return "warning"
	default:
		return "not-run"
	}
}

// Verification is the verifier's result for one executable.
type Verification struct {
	Status VerificationStatus
	// Output is the first line the tool printed, if any.
	Output string
	// Err holds the failure for a warning.
	Err error
}

// Contribution is what an installed dependency adds to the environment descriptor.
type Contribution struct {
	// HomeVar names the variable pointing at the install directory, if any.
	HomeVar string
	Home    string
	// BinDir is prepended to PATH.
	BinDir string
	// ModuleVar names the module search path variable, if any.
	ModuleVar string
	ModuleDir string
}

// InstallOutcome is the orchestrator's record of one installed dependency.
type InstallOutcome struct {
	Name         string
	Version      string
	Path         string
	Verification VerificationStatus
	Contribution Contribution
}
