package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExecuteHelp(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"--help"}, &stdout, &stderr)
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdout.String(), "Usage:")
	require.Empty(t, stderr.String())
}

func TestExecuteVersion(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"version"}, &stdout, &stderr)
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdout.String(), "racetalk")
	require.Empty(t, stderr.String())
}

func TestExecuteUnknownCommand(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"definitely-not-a-command"}, &stdout, &stderr)
	require.Equal(t, 2, exitCode)
	require.Contains(t, stderr.String(), "unknown command")
	require.Contains(t, stderr.String(), "Usage:")
}

func TestExecuteMalformedConfigIsFatal(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "racetalk.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("not_a_known_key: true\n"), 0o600))

	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"--config", configPath, "doctor"}, &stdout, &stderr)
	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "error:")
}

func TestExecuteMissingExplicitConfigIsFatal(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"--config", filepath.Join(t.TempDir(), "nope.yaml"), "doctor"}, &stdout, &stderr)
	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "error:")
}

func TestExecuteDoctorPrintsReport(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")
	configPath := writeTestConfig(t)

	var stdout bytes.Buffer
	var stderr bytes.Buffer

	// Audio check fails with no Pulse server, so the report is non-zero but
	// still printed in full.
	exitCode := Execute(context.Background(), []string{"--config", configPath, "doctor"}, &stdout, &stderr)
	require.Equal(t, 1, exitCode)
	require.Contains(t, stdout.String(), "config: loaded")
	require.Contains(t, stdout.String(), "model:")
	require.Contains(t, stdout.String(), "insim:")
}

func TestExecuteRunFailsFastAtStartup(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")
	configPath := writeTestConfig(t)

	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"--config", configPath, "run"}, &stdout, &stderr)
	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "error:")
}

// writeTestConfig points at a mock recognizer and a port nothing listens on.
func writeTestConfig(t *testing.T) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "racetalk.yaml")
	content := `
insim:
  host: 127.0.0.1
  port: 1
model:
  mode: mock
log_level: error
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))
	return configPath
}
