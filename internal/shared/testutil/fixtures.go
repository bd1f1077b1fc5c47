package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"eventetl/internal/config"
)

// ChromeOnWindows is a desktop Chrome User-Agent
const ChromeOnWindows = "Mozilla/5.0 (Windows NT 6.1; WOW64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/37.0.2062.120 Safari/537.36"

// FirefoxOnLinux is a desktop Firefox User-Agent
const FirefoxOnLinux = "Mozilla/5.0 (X11; Linux x86_64; rv:31.0) Gecko/20100101 Firefox/31.0"

// EventLine joins fields into one tab-separated record
func EventLine(fields ...string) string {
	return strings.Join(fields, "\t")
}

// WriteEventLog writes lines to the default input location under workDir
func WriteEventLog(t *testing.T, workDir string, lines ...string) string {
	t.Helper()

	path := filepath.Join(workDir, filepath.FromSlash(config.DefaultInputPath))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create input dir: %v", err)
	}

	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write event log: %v", err)
	}
	return path
}

// WriteGeoTable writes a YAML CIDR table to workDir and returns its path
func WriteGeoTable(t *testing.T, workDir, content string) string {
	t.Helper()

	path := filepath.Join(workDir, "geo.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write geo table: %v", err)
	}
	return path
}
