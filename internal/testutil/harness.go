// Package testutil runs planning requests through a fully wired application
// for integration tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/planflow/internal/app"
	"github.com/vk/planflow/internal/hcl"
	"github.com/vk/planflow/internal/instruction"
	"github.com/vk/planflow/internal/planning"
	"github.com/vk/planflow/internal/registry"
	"github.com/vk/planflow/internal/totg"
)

// HarnessResult holds the outcomes of an integration test run. App is nil
// when startup failed; Program is nil when the run failed.
type HarnessResult struct {
	LogOutput string
	Output    string
	Program   *instruction.Composite
	Err       error
	App       *app.App
}

// CoreModules returns the modules the planflow binary registers, so tests can
// add their own next to them.
func CoreModules(extra ...registry.Module) []registry.Module {
	return append([]registry.Module{app.CheckInputModule{}, &totg.Module{}}, extra...)
}

// RunPlan writes files (paths relative to the config directory) and request
// to a temporary directory, starts the application on them and plans the
// request.
func RunPlan(t *testing.T, files map[string]string, request string, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunPlanWithContext(context.Background(), t, files, request, modules...)
}

// RunPlanWithContext is RunPlan with a caller-provided context.
func RunPlanWithContext(ctx context.Context, t *testing.T, files map[string]string, request string, modules ...registry.Module) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, "config")
	require.NoError(t, os.Mkdir(configDir, 0o755))
	for name, content := range files {
		path := filepath.Join(configDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	requestPath := filepath.Join(tmpDir, "request.yaml")
	require.NoError(t, os.WriteFile(requestPath, []byte(request), 0o644))

	cfg, err := app.NewConfig(app.Config{
		ConfigPath:  configDir,
		RequestPath: requestPath,
		Workers:     4,
		LogLevel:    "debug",
	})
	require.NoError(t, err)

	out, logs := &app.SafeBuffer{}, &app.SafeBuffer{}
	result := &HarnessResult{}
	defer func() {
		result.LogOutput = logs.String()
		result.Output = out.String()
		if os.Getenv("PLANFLOW_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), result.LogOutput)
		}
	}()

	result.App, result.Err = app.NewApp(out, logs, cfg, hcl.NewLoader(), modules...)
	if result.Err != nil {
		return result
	}
	if result.Err = result.App.Run(ctx); result.Err != nil {
		return result
	}
	result.Program, result.Err = planning.ReadProgram(strings.NewReader(out.String()))
	return result
}
