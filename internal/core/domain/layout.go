package domain

import "path/filepath"

const (
	// KilnDirName is the name of the metadata directory inside the working directory.
	KilnDirName = ".kiln"

	// DescriptorFileName is the name of the environment descriptor written into the working directory.
	DescriptorFileName = "env.sh"

	// ManifestFileName is the name of the run manifest inside the metadata directory.
	ManifestFileName = "manifest.yaml"

	// DownloadsDirName holds temporary archives for binary installs.
	DownloadsDirName = "downloads"

	// BuildDirName holds scratch source trees for source installs.
	BuildDirName = "build"

	// SourcesDirName is the cache subdirectory for source archives.
	SourcesDirName = "sources"

	// ConfigFileName is the default configuration file name.
	ConfigFileName = "kiln.yaml"

	// DefaultWorkDir is used when no working directory is given.
	DefaultWorkDir = "/tmp/kiln/work"

	// DefaultCacheDir is used when no cache directory is given.
	DefaultCacheDir = "/tmp/kiln/cache"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DescriptorPath returns the location of the environment descriptor for a working directory.
func DescriptorPath(workDir string) string {
	return filepath.Join(workDir, DescriptorFileName)
}

// ManifestPath returns the location of the run manifest for a working directory.
func ManifestPath(workDir string) string {
	return filepath.Join(workDir, KilnDirName, ManifestFileName)
}

// SourceCachePath returns the directory holding cached source archives.
func SourceCachePath(cacheDir string) string {
	return filepath.Join(cacheDir, SourcesDirName)
}
