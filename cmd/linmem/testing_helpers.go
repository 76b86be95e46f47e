package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// executeCommand runs the root command with the given stdin and arguments, returning
// everything written to stdout and stderr
func executeCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var stdout bytes.Buffer
	stderr, err := executeCommandTo(t, &stdout, stdin, args...)
	return stdout.String(), stderr, err
}

// executeCommandTo runs the root command with stdout sent to out, returning stderr
func executeCommandTo(t *testing.T, out io.Writer, stdin string, args ...string) (string, error) {
	t.Helper()

	// Global flag values survive between Execute calls
	verbose = false
	base = 0
	validate = false
	statsJSON = false
	runReportUnfreed = false

	var stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(out)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return stderr.String(), err
}

// failingWriter rejects every write
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

// writeLog writes a request log to a temporary file and returns its path
func writeLog(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "requests.txt")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write request log: %v", err)
	}
	return path
}
