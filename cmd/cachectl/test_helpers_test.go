package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeConfig writes a TOML config that keeps the cache and the log file
// inside a temp directory. extra lines are appended verbatim.
func writeConfig(t *testing.T, extra ...string) (path, cacheDir string) {
	t.Helper()

	root := t.TempDir()
	cacheDir = filepath.Join(root, "cache")

	lines := []string{
		fmt.Sprintf("Dir = %q", cacheDir),
		fmt.Sprintf("LogFilePath = %q", filepath.Join(root, "logs", "cachectl.log")),
	}
	lines = append(lines, extra...)

	path = filepath.Join(root, "cachectl.toml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return path, cacheDir
}

// runCLI runs one command with fresh output buffers and returns what it printed.
func runCLI(t *testing.T, configPath string, args ...string) (int, string, string) {
	t.Helper()

	stdOutBuffer().Reset()
	stdErrBuffer().Reset()

	code := run(cliOptions{configPath: configPath, args: args})
	return code, stdOutBuffer().String(), stdErrBuffer().String()
}

// runCLIWith is runCLI for callers that need global flags.
func runCLIWith(t *testing.T, opts cliOptions) (int, string, string) {
	t.Helper()

	stdOutBuffer().Reset()
	stdErrBuffer().Reset()

	code := run(opts)
	return code, stdOutBuffer().String(), stdErrBuffer().String()
}
