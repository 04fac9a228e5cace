package cmdtest

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/tjma12/gwsumm/internal/cli/summary"
)

// RootCommand builds the command tree under test.
func RootCommand(version string) *ffcli.Command {
	return summary.RootCommand(version)
}

// captureOutput runs fn with os.Stdout and os.Stderr redirected and returns
// what was written to each.
func captureOutput(t *testing.T, fn func()) (string, string) {
	t.Helper()

	stdoutReader, stdoutWriter, err := os.Pipe()
	if err != nil {
		t.Fatalf("Pipe() error = %v", err)
	}
	stderrReader, stderrWriter, err := os.Pipe()
	if err != nil {
		t.Fatalf("Pipe() error = %v", err)
	}

	originalStdout, originalStderr := os.Stdout, os.Stderr
	os.Stdout, os.Stderr = stdoutWriter, stderrWriter
	defer func() {
		os.Stdout, os.Stderr = originalStdout, originalStderr
	}()

	var stdout, stderr bytes.Buffer
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = io.Copy(&stdout, stdoutReader)
	}()
	go func() {
		defer wg.Done()
		_, _ = io.Copy(&stderr, stderrReader)
	}()

	fn()

	_ = stdoutWriter.Close()
	_ = stderrWriter.Close()
	wg.Wait()
	return stdout.String(), stderr.String()
}

const summaryConfig = `[DEFAULT]
ifo = H1

[datafind]
source = csv
path = data

[channels-range]
channels = H1:DMT-RANGE
unit = Mpc
sample-rate = 16

[%(ifo)s:GRD-LOCK]
description = Guardian lock state

[state-locked]
name = Locked
definition = H1:GRD-LOCK >= 1

[tab-summary]
name = Summary
states = All, Locked
1 = H1:DMT-RANGE
2 = Locked
2-type = segments

[tab-range]
name = Range
parent = Summary
type = statistics
channels = H1:DMT-RANGE

[tab-notes]
name = Notes
type = text
content = Shift notes.
`

// writeSummaryFixture writes a configuration and CSV data directory and
// returns the configuration path.
func writeSummaryFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"h1.ini":                summaryConfig,
		"data/H1-DMT-RANGE.csv": "gps,value\n1000000000,60\n1000003600,65\n",
		"data/H1-GRD-LOCK.csv":  "gps,value\n1000000000,1\n1000003600,0\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
	return filepath.Join(dir, "h1.ini")
}
