package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventetl/internal/infrastructure"
	"eventetl/internal/report"
	"eventetl/internal/shared/testutil"
	"eventetl/pkg/contracts"
)

const geoTable = `
- cidr: 1.2.3.0/24
  country: Germany
  city: Berlin
- cidr: 5.5.5.0/24
  country: France
  city: Paris
`

func setupJob(t *testing.T) string {
	t.Helper()
	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	workDir := t.TempDir()
	testutil.WriteEventLog(t, workDir,
		testutil.EventLine("2014-10-12", "17:01:01", "u1", "http://a.com", "1.2.3.4,5.6.7.8", testutil.ChromeOnWindows),
		testutil.EventLine("2014-10-12", "17:01:02", "u2", "http://b.com", "1.2.3.9", testutil.FirefoxOnLinux),
		testutil.EventLine("2014-10-12", "17:01:03", "u3", "http://c.com", "5.5.5.5", testutil.ChromeOnWindows),
		testutil.EventLine("2014-10-12", "17:01:04", "u4", "http://d.com", "8.8.8.8", testutil.ChromeOnWindows),
	)
	testutil.WriteGeoTable(t, workDir, geoTable)

	t.Setenv("ETL_GEO_PROVIDER", "table")
	t.Setenv("ETL_GEO_TABLE_PATH", "geo.yaml")
	t.Setenv("ETL_TELEMETRY_METRIC_EXPORTER", "none")
	t.Setenv("ETL_LOGGING_LEVEL", "warn")
	return workDir
}

func TestRun_Table(t *testing.T) {
	workDir := setupJob(t)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-workdir", workDir}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "root\n |-- eventID: long (nullable = false)")
	assert.Contains(t, out, "Top 5 countries based on number of events")
	assert.Contains(t, out, "|Germany|    2|")
	assert.Contains(t, out, "| France|    1|")
	assert.Contains(t, out, "Top 5 Operating systems based on number of unique users")
	assert.NotContains(t, out, "8.8.8.8")
}

func TestRun_JSON(t *testing.T) {
	workDir := setupJob(t)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-workdir", workDir, "-format", "json", "-top", "1"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var summary report.Summary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &summary))
	assert.Equal(t, 3, summary.Rows)
	require.Len(t, summary.Aggregates, 4)
	require.Len(t, summary.Aggregates[0].Rows, 1)
	assert.Equal(t, "Germany", summary.Aggregates[0].Rows[0].Value)
	assert.Equal(t, "Top 1 countries based on number of events", summary.Aggregates[0].Title)
}

func TestRun_ConfigFile(t *testing.T) {
	workDir := setupJob(t)
	configPath := filepath.Join(workDir, "eventetl.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("report:\n  format: json\n  top_n: 2\n"), 0644))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-config", configPath, "-workdir", workDir}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var summary report.Summary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &summary))
	assert.Equal(t, 2, summary.TopN)
}

func TestRun_MissingInput(t *testing.T) {
	setupJob(t)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-workdir", t.TempDir()}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "NOT_FOUND")
	assert.Empty(t, stdout.String())
}

func TestRun_InvalidConfig(t *testing.T) {
	workDir := setupJob(t)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-workdir", workDir, "-format", "xml"}, &stdout, &stderr)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "validation")
}

func TestRun_BadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), []string{"-nope"}, &stdout, &stderr))
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, run(context.Background(), []string{"-version"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), contracts.Version)
}
