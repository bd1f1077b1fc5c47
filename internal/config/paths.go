package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResolveWorkDir returns the configured working directory, or the process's
// current directory when none is set.
func (c *Config) ResolveWorkDir() (string, error) {
	if c.Input.WorkDir != "" {
		return filepath.Abs(c.Input.WorkDir)
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return wd, nil
}

// ResolvePath anchors a relative path at workDir. Absolute paths pass through.
func ResolvePath(workDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(workDir, path)
}
