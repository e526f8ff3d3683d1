package domain

import "time"

// Manifest records the result of the last provisioning run in a working directory.
type Manifest struct {
	RunID            string               `yaml:"run_id"`
	StartedAt        time.Time            `yaml:"started_at"`
	FinishedAt       time.Time            `yaml:"finished_at"`
	State            string               `yaml:"state"`
	Platform         string               `yaml:"platform"`
	FailedDependency string               `yaml:"failed_dependency,omitempty"`
	FailedStage      string               `yaml:"failed_stage,omitempty"`
	Error            string               `yaml:"error,omitempty"`
	Descriptor       string               `yaml:"descriptor,omitempty"`
	Dependencies     []ManifestDependency `yaml:"dependencies"`
	Warnings         []string             `yaml:"warnings,omitempty"`
}

// ManifestDependency is one installed dependency in the manifest.
type ManifestDependency struct {
	Name         string `yaml:"name"`
	Version      string `yaml:"version"`
	Path         string `yaml:"path"`
	Verification string `yaml:"verification"`
}
