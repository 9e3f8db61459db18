package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacoelho/proligent/export"
	"github.com/jacoelho/proligent/internal/ledger"
)

const readmeFingerprint = "00000000-0000-0000-0000-000000000006"

var (
	manifestPath = filepath.Join("..", "..", "internal", "manifest", "testdata", "readme_example1.yaml")
	validPath    = filepath.Join("..", "..", "validator", "testdata", "valid.xml")
	invalidPath  = filepath.Join("..", "..", "validator", "testdata", "invalid_status.xml")
)

// isolate keeps the user's config file and environment out of the run and
// points the ledger at a fresh SQLite file.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("PROLIGENT_LEDGER_DRIVER", "sqlite")
	t.Setenv("PROLIGENT_LEDGER_DSN", filepath.Join(dir, "ledger.db"))
	t.Setenv("PROLIGENT_SINK_DRIVER", "")
	t.Setenv("PROLIGENT_TIME_ZONE", "UTC")
	return dir
}

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := runWithArgs(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunWithArgsUsageErrors(t *testing.T) {
	isolate(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "unknown command", args: []string{"frobnicate"}, want: "unknown command"},
		{name: "unknown flag", args: []string{"validate", "--bogus", validPath}, want: "unknown flag"},
		{name: "missing file argument", args: []string{"validate"}, want: "requires at least 1 arg"},
		{name: "too many manifests", args: []string{"generate", "a.yaml", "b.yaml"}, want: "accepts 1 arg"},
		{name: "bad log format", args: []string{"--log-format", "xml", "validate", validPath}, want: "log format"},
		{name: "ledger without subcommand", args: []string{"ledger"}, want: "requires a subcommand"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := execute(t, tt.args...)
			assert.Equal(t, 2, code)
			assert.Contains(t, stderr, "error: ")
			assert.Contains(t, stderr, tt.want)
			assert.Contains(t, stderr, "Usage:")
		})
	}
}

func TestRunWithArgsHelp(t *testing.T) {
	isolate(t)
	code, stdout, _ := execute(t, "--help")
	assert.Equal(t, 0, code)
	for _, sub := range []string{"generate", "validate", "watch", "uniquename", "ledger"} {
		assert.Contains(t, stdout, sub)
	}
}

func TestValidateCommand(t *testing.T) {
	isolate(t)

	code, stdout, stderr := execute(t, "validate", validPath)
	assert.Equal(t, 0, code, stderr)
	assert.Equal(t, validPath+" validates\n", stdout)

	code, stdout, stderr = execute(t, "validate", validPath, invalidPath)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, validPath+" validates")
	assert.Contains(t, stderr, invalidPath+" fails to validate")

	missing := filepath.Join(t.TempDir(), "missing.xml")
	code, _, stderr = execute(t, "validate", missing)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "error validating: ")
}

func TestValidateCommandJSON(t *testing.T) {
	isolate(t)
	code, stdout, _ := execute(t, "validate", "--json", validPath, invalidPath)
	assert.Equal(t, 1, code)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)

	var first, second fileResult
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, validPath, first.File)
	assert.True(t, first.IsValid)
	assert.Equal(t, invalidPath, second.File)
	assert.False(t, second.IsValid)
	assert.NotEmpty(t, second.Message)
}

func TestGenerateCommand(t *testing.T) {
	dir := isolate(t)
	out := filepath.Join(dir, "out")
	sinkDir := filepath.Join(dir, "sink")
	t.Setenv("PROLIGENT_SINK_DRIVER", "fs")
	t.Setenv("PROLIGENT_SINK_DIR", sinkDir)
	t.Setenv("PROLIGENT_SINK_PREFIX", "line-1")

	code, stdout, stderr := execute(t, "generate", "--out", out, "--name", "Proligent_readme.xml", manifestPath)
	require.Equal(t, 0, code, stderr)
	payload := filepath.Join(out, "Proligent_readme.xml")
	assert.Equal(t, payload+"\n", stdout)

	want, err := os.ReadFile(filepath.Join("..", "..", "testdata", "readme_example1.xml"))
	require.NoError(t, err)
	got, err := os.ReadFile(payload)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))

	published, err := os.ReadFile(filepath.Join(sinkDir, "line-1", "Proligent_readme.xml"))
	require.NoError(t, err)
	assert.Equal(t, got, published)

	code, _, stderr = execute(t, "generate", "--out", out, "--name", "Proligent_readme.xml", manifestPath)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stderr, "fingerprint already recorded")
	assert.Contains(t, stderr, "already published")

	code, stdout, stderr = execute(t, "ledger", "list", "--json")
	require.Equal(t, 0, code, stderr)
	var entry ledger.Entry
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(stdout)), &entry))
	assert.Equal(t, readmeFingerprint, entry.Fingerprint)
	assert.Equal(t, payload, entry.Source)
	assert.True(t, entry.Valid)

	code, stdout, _ = execute(t, "ledger", "lookup", strings.ToUpper(readmeFingerprint))
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "FINGERPRINT")
	assert.Contains(t, stdout, readmeFingerprint)
}

func TestGenerateCommandErrors(t *testing.T) {
	dir := isolate(t)
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("process:\n  status: DONE\n"), 0o644))

	tests := []struct {
		name string
		args []string
		code int
		want string
	}{
		{name: "missing manifest", args: []string{"generate", filepath.Join(dir, "missing.yaml")}, code: 1, want: "missing.yaml"},
		{name: "bad manifest", args: []string{"generate", "--out", dir, bad}, code: 1, want: "build "},
		{name: "bad time zone", args: []string{"generate", "--time-zone", "Mars/Olympus", manifestPath}, code: 2, want: "Mars/Olympus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := execute(t, tt.args...)
			assert.Equal(t, tt.code, code)
			assert.Contains(t, stderr, tt.want)
		})
	}
}

func TestLedgerLookupMissing(t *testing.T) {
	isolate(t)
	code, _, stderr := execute(t, "ledger", "lookup", "ABC")
	assert.Equal(t, 1, code)
	assert.Equal(t, "abc not recorded\n", stderr)
}

func TestUniqueNameCommand(t *testing.T) {
	isolate(t)
	want, err := export.UniqueName(afero.NewOsFs(), validPath)
	require.NoError(t, err)

	code, stdout, stderr := execute(t, "uniquename", validPath)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, want+"\n", stdout)
}

func TestWatchCommand(t *testing.T) {
	isolate(t)
	t.Setenv("PROLIGENT_WATCH_DEBOUNCE", "20ms")
	drop := t.TempDir()
	data, err := os.ReadFile(validPath)
	require.NoError(t, err)
	existing := filepath.Join(drop, "existing.xml")
	require.NoError(t, os.WriteFile(existing, data, 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	var stdout, stderr bytes.Buffer
	code := runWithContext(ctx, []string{"watch", "--scan-existing", drop}, &stdout, &stderr)

	assert.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), existing+" validates")
}

func TestWatchCommandMissingDir(t *testing.T) {
	isolate(t)
	code, _, stderr := execute(t, "watch", filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "watch ")
}
