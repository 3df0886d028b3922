package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/planflow/internal/instruction"
	"github.com/vk/planflow/internal/planning"
)

const cellHCL = `
manipulator "arm" {
  joint "j1" {
    max_velocity     = 1
    max_acceleration = 1
  }
}

profile "TOTG" "SLOW" {
  max_velocity_scaling = 0.5
}
`

const request = `
name: freespace
instructions:
  kind: composite
  manipulator: {name: arm}
  children:
    - {kind: move, type: start, waypoint: {kind: joint, names: [j1], position: [0]}}
    - {kind: move, waypoint: {kind: joint, names: [j1], position: [1]}}
`

func fixture(t *testing.T) (configPath, requestPath string) {
	t.Helper()
	dir := t.TempDir()
	configPath = filepath.Join(dir, "cell.hcl")
	requestPath = filepath.Join(dir, "request.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(cellHCL), 0o600))
	require.NoError(t, os.WriteFile(requestPath, []byte(request), 0o600))
	return configPath, requestPath
}

func execute(args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	err := Execute(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func TestRunCommand(t *testing.T) {
	configPath, requestPath := fixture(t)

	for _, args := range [][]string{
		{"run", "--config", configPath, "--request", requestPath},
		{"run", "-c", configPath, requestPath, "--log-level", "debug", "--log-format", "json"},
	} {
		out, logs, err := execute(args...)
		require.NoError(t, err, "logs:\n%s", logs)

		program, err := planning.ReadProgram(bytes.NewBufferString(out))
		require.NoError(t, err)
		moves := instruction.FlattenMoves(program)
		require.NotEmpty(t, moves)
		last, err := instruction.AsState(moves[len(moves)-1].Waypoint())
		require.NoError(t, err)
		assert.Greater(t, last.Time, 0.0)
		assert.Contains(t, logs, "Planning finished.")
	}
}

func TestRunCommandPipelineOverride(t *testing.T) {
	configPath, requestPath := fixture(t)

	_, _, err := execute("run", "-c", configPath, "-r", requestPath, "--pipeline", "ompl")
	require.Error(t, err)
	assert.ErrorIs(t, err, planning.ErrUnknownGenerator)
	var exitErr *ExitError
	assert.False(t, errors.As(err, &exitErr), "planning failures are not usage errors")
}

func TestProfilesCommand(t *testing.T) {
	configPath, _ := fixture(t)

	out, _, err := execute("profiles", "--config", configPath)
	require.NoError(t, err)
	assert.Equal(t, "TOTG: DEFAULT, SLOW\n", out)
}

func TestHelp(t *testing.T) {
	for _, args := range [][]string{nil, {"--help"}, {"run", "-h"}} {
		out, _, err := execute(args...)
		require.NoError(t, err)
		assert.Contains(t, out, "Usage:")
	}
}

func TestUsageErrors(t *testing.T) {
	configPath, requestPath := fixture(t)
	tests := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{"unknown flag", []string{"run", "--this-is-not-a-valid-flag"}, "unknown flag: --this-is-not-a-valid-flag"},
		{"missing config", []string{"run", "-r", requestPath}, "ConfigPath is a required"},
		{"missing request", []string{"run", "-c", configPath}, "a planning request is required"},
		{"request twice", []string{"run", "-c", configPath, "-r", requestPath, requestPath}, "request given both"},
		{"bad log format", []string{"profiles", "-c", configPath, "--log-format", "xml"}, "invalid log format"},
		{"bad log level", []string{"profiles", "-c", configPath, "--log-level", "trace"}, "invalid log level"},
		{"bad workers", []string{"profiles", "-c", configPath, "--workers", "-3"}, "workers must not be negative"},
		{"non-numeric workers", []string{"profiles", "-c", configPath, "--workers", "many"}, "invalid argument"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(tt.args...)
			require.Error(t, err)
			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr), "got %T: %v", err, err)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tt.wantMsg)
		})
	}
}

func TestConfigErrorsAreNotUsageErrors(t *testing.T) {
	_, requestPath := fixture(t)

	_, _, err := execute("run", "-c", filepath.Join(t.TempDir(), "missing"), "-r", requestPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
	var exitErr *ExitError
	assert.False(t, errors.As(err, &exitErr))
}
