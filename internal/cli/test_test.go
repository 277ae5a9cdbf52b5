package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `
name: passing
steps:
  - push:
      data:
        a: 1
assertions:
  - type: final_state
    path: a
    expected: 1
`

const failingScenario = `
name: failing
steps:
  - push:
      data:
        a: 1
assertions:
  - type: final_state
    path: a
    expected: 2
`

func writeScenarioDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestTestCommandAllPass(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{"passing.yaml": passingScenario})

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"test", dir})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "PASS  passing")
	assert.Contains(t, out.String(), "1 passed, 0 failed, 1 total")
}

func TestTestCommandReportsFailure(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{
		"passing.yaml": passingScenario,
		"failing.yaml": failingScenario,
	})

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"test", dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out.String(), "FAIL  failing")
	assert.Contains(t, out.String(), "1 passed, 1 failed, 2 total")
}

func TestTestCommandFilter(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{
		"passing.yaml": passingScenario,
		"failing.yaml": failingScenario,
	})

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"test", dir, "--filter", "pass*"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "1 passed, 0 failed, 1 total")
}

func TestTestCommandEmptyDir(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"test", t.TempDir()})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateCommand(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{
		"good.yaml": passingScenario,
		"bad.yaml":  "steps:\n  - push:\n      data:\n        a: 1\n",
	})

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"validate", dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out.String(), "name is required")
}
