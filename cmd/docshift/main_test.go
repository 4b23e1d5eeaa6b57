package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	for _, k := range []string{"DOCSHIFT_LOG_LEVEL", "DOCSHIFT_DB", "DOCSHIFT_SAMPLE_PATH"} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_WrongArgCountPrintsUsage(t *testing.T) {
	isolate(t)

	for _, args := range [][]string{nil, {"a.qmd", "b.qmd"}} {
		code, stdout, _ := runCLI(t, args...)
		assert.Equal(t, 1, code)
		assert.Equal(t, usage+"\n", stdout)
	}
}

func TestRun_PrintsConvertedFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "slides.qmd"), []byte("# Title\nBody text"), 0644))

	code, stdout, _ := runCLI(t, "slides.qmd")
	assert.Equal(t, 0, code)
	assert.Equal(t, "<!-- Content included and converted from slides.qmd -->\n\n### Title\nBody text\n", stdout)
}

func TestRun_MissingFileStillExitsZero(t *testing.T) {
	isolate(t)

	code, stdout, _ := runCLI(t, "missing.qmd")
	assert.Equal(t, 0, code)
	assert.Equal(t, "<!-- Error: File missing.qmd not found -->\n", stdout)
}

func TestRun_ArgumentIsAlwaysAPath(t *testing.T) {
	isolate(t)

	for _, name := range []string{"help", "completion", "history"} {
		code, stdout, _ := runCLI(t, name)
		assert.Equal(t, 0, code, name)
		assert.Equal(t, "<!-- Error: File "+name+" not found -->\n", stdout)
	}
}

func TestRun_FileNamedHelpIsIncluded(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "help"), []byte("# Help"), 0644))

	code, stdout, _ := runCLI(t, "help")
	assert.Equal(t, 0, code)
	assert.Equal(t, "<!-- Content included and converted from help -->\n\n### Help\n", stdout)
}

func TestRun_DashPathAfterSeparator(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "-notes.qmd"), []byte("## Notes"), 0644))

	code, stdout, _ := runCLI(t, "--", "-notes.qmd")
	assert.Equal(t, 0, code)
	assert.Equal(t, "<!-- Content included and converted from -notes.qmd -->\n\n#### Notes\n", stdout)
}

func TestRun_UsageCheckedBeforeConfig(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docshift.yaml"), []byte("log: [unterminated"), 0644))

	code, stdout, _ := runCLI(t)
	assert.Equal(t, 1, code)
	assert.Equal(t, usage+"\n", stdout)
}

func TestRun_BrokenConfigStillIncludes(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docshift.yaml"), []byte("log: [unterminated"), 0644))

	code, stdout, stderr := runCLI(t, "missing.qmd")
	assert.Equal(t, 0, code)
	assert.Equal(t, "<!-- Error: File missing.qmd not found -->\n", stdout)
	assert.Contains(t, stderr, "failed to load config")
}

func TestRun_InvalidLogLevelStillIncludes(t *testing.T) {
	isolate(t)
	t.Setenv("DOCSHIFT_LOG_LEVEL", "verbose")

	code, stdout, stderr := runCLI(t, "missing.qmd")
	assert.Equal(t, 0, code)
	assert.Equal(t, "<!-- Error: File missing.qmd not found -->\n", stdout)
	assert.Contains(t, stderr, "invalid log level")

	code, stdout, stderr = runCLI(t, "--log-level", "loud", "missing.qmd")
	assert.Equal(t, 0, code)
	assert.Equal(t, "<!-- Error: File missing.qmd not found -->\n", stdout)
	assert.Contains(t, stderr, "invalid log level")
}

func TestRun_HistoryRecordsInclusions(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "slides.qmd"), []byte("# A\n## B"), 0644))
	db := filepath.Join(dir, "history.db")

	code, _, _ := runCLI(t, "--db", db, "slides.qmd")
	require.Equal(t, 0, code)
	code, _, _ = runCLI(t, "--db", db, "missing.qmd")
	require.Equal(t, 0, code)

	code, stdout, _ := runCLI(t, "--db", db, "--history")
	require.Equal(t, 0, code)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "not_found")
	assert.Contains(t, lines[0], "missing.qmd")
	assert.Contains(t, lines[1], "ok")
	assert.Contains(t, lines[1], "slides.qmd")

	code, stdout, _ = runCLI(t, "--db", db, "--history", "--history-path", "slides.qmd")
	require.Equal(t, 0, code)
	assert.Equal(t, 1, strings.Count(stdout, "\n"))
	assert.Contains(t, stdout, "  2  ")
}

func TestRun_HistoryFromConfigFile(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "ledger.db")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docshift.yaml"), []byte("history:\n  db: "+db+"\n"), 0644))

	code, stdout, _ := runCLI(t, "--history")
	require.Equal(t, 0, code)
	assert.Equal(t, "No inclusions recorded.\n", stdout)
}

func TestRun_HistoryWithoutDatabase(t *testing.T) {
	isolate(t)

	code, _, stderr := runCLI(t, "--history")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "no history database configured")
}

func TestRun_HistoryRejectsFileArgument(t *testing.T) {
	isolate(t)

	code, stdout, stderr := runCLI(t, "--history", "slides.qmd")
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "--history takes no file argument")
}
