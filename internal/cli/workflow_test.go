package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestConfig creates an isolated config with sqlite ledger, localfs
// blobs and a keystore all rooted in a temp directory.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf(`ledger:
  backend: sqlite
  path: %s
blobs:
  backends:
    - name: local
      kind: localfs
      root: %s
keys:
  directory: %s
  registry: %s
`,
		filepath.Join(dir, "ledger.db"),
		filepath.Join(dir, "blobs"),
		filepath.Join(dir, "keys"),
		filepath.Join(dir, "registry.yaml"))

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

// runCLI executes one command line against a fresh command tree and
// returns the decoded JSON response.
func runCLI(t *testing.T, configPath string, args ...string) (CLIResponse, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append([]string{"--config", configPath, "--format", "json"}, args...))
	err := cmd.Execute()

	var resp CLIResponse
	if buf.Len() > 0 {
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp), "output: %s", buf.String())
	}
	return resp, err
}

func dataField(t *testing.T, resp CLIResponse, field string) string {
	t.Helper()
	m, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data is %T", resp.Data)
	v, ok := m[field].(string)
	require.True(t, ok, "field %s is %T", field, m[field])
	return v
}

func TestWorkflowSubmitReviseView(t *testing.T) {
	configPath := writeTestConfig(t)

	// Both parties need registered keys before anything can be sealed.
	resp, err := runCLI(t, configPath, "key", "init", "alice@uni")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	resp, err = runCLI(t, configPath, "key", "init", "bob@uni")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)

	submitArgs := []string{
		"submit",
		"--teacher", "alice@uni", "--student", "bob@uni",
		"--enrollment", "enr-1", "--course", "CSE101", "--semester", "fall2025",
		"--components", `{"midterm":22.5,"final":41,"continuous":14}`,
		"--reason", "initial submission",
	}
	resp, err = runCLI(t, configPath, submitArgs...)
	require.NoError(t, err)
	require.Equal(t, "ok", resp.Status)
	seriesID := dataField(t, resp, "seriesId")
	require.NotEmpty(t, seriesID)

	// A correction appends version 2 to the same series.
	submitArgs[12] = `{"midterm":22.5,"final":45,"continuous":14}`
	submitArgs[14] = "recount"
	resp, err = runCLI(t, configPath, submitArgs...)
	require.NoError(t, err)
	require.Equal(t, "ok", resp.Status)
	assert.Equal(t, seriesID, dataField(t, resp, "seriesId"))

	resp, err = runCLI(t, configPath, "head", seriesID)
	require.NoError(t, err)
	m := resp.Data.(map[string]any)
	assert.Equal(t, float64(2), m["currentVersion"])
	assert.Equal(t, "CSE101", m["courseCode"])

	// The student decrypts the revision; totals reflect the recount.
	resp, err = runCLI(t, configPath, "view", seriesID, "1", "--as", "bob@uni")
	require.NoError(t, err)
	require.Equal(t, "ok", resp.Status)
	marks := resp.Data.(map[string]any)["marks"].(map[string]any)
	assert.Equal(t, float64(81.5), marks["total"])
	assert.Equal(t, "A+", marks["letterGrade"])

	// Version 0 still holds the original submission.
	resp, err = runCLI(t, configPath, "view", seriesID, "0", "--as", "alice@uni")
	require.NoError(t, err)
	marks = resp.Data.(map[string]any)["marks"].(map[string]any)
	assert.Equal(t, float64(77.5), marks["total"])

	resp, err = runCLI(t, configPath, "history", seriesID)
	require.NoError(t, err)
	entries := resp.Data.([]any)
	require.Len(t, entries, 2)

	resp, err = runCLI(t, configPath, "list", "bob@uni", "--role", "student")
	require.NoError(t, err)
	listing := resp.Data.(map[string]any)
	assert.Equal(t, []any{seriesID}, listing["seriesIds"])
}

func TestWorkflowOutsiderCannotView(t *testing.T) {
	configPath := writeTestConfig(t)

	for _, id := range []string{"alice@uni", "bob@uni", "eve@uni"} {
		_, err := runCLI(t, configPath, "key", "init", id)
		require.NoError(t, err)
	}

	resp, err := runCLI(t, configPath,
		"submit",
		"--teacher", "alice@uni", "--student", "bob@uni",
		"--enrollment", "enr-1", "--course", "CSE101", "--semester", "fall2025",
		"--components", `{"final":90}`,
		"--reason", "initial submission",
	)
	require.NoError(t, err)
	seriesID := dataField(t, resp, "seriesId")

	resp, err = runCLI(t, configPath, "view", seriesID, "0", "--as", "eve@uni")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "DECRYPTION_FAILED", string(resp.Error.Code))
}

func TestWorkflowSubmitWithoutStudentKey(t *testing.T) {
	configPath := writeTestConfig(t)

	_, err := runCLI(t, configPath, "key", "init", "alice@uni")
	require.NoError(t, err)

	resp, err := runCLI(t, configPath,
		"submit",
		"--teacher", "alice@uni", "--student", "ghost@uni",
		"--enrollment", "enr-1", "--course", "CSE101", "--semester", "fall2025",
		"--components", `{"final":50}`,
		"--reason", "initial submission",
	)
	require.Error(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NO_PUBLIC_KEY", string(resp.Error.Code))
}

func TestKeyRegisterAndExport(t *testing.T) {
	configPath := writeTestConfig(t)

	resp, err := runCLI(t, configPath, "key", "init", "alice@uni")
	require.NoError(t, err)
	publicKey := dataField(t, resp, "publicKey")

	resp, err = runCLI(t, configPath, "key", "export", "alice@uni")
	require.NoError(t, err)
	assert.Equal(t, publicKey, dataField(t, resp, "publicKey"))

	// Registering a counterparty only needs their public key, not a seed.
	resp, err = runCLI(t, configPath, "key", "register", "carol@uni", publicKey)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)

	_, err = runCLI(t, configPath, "key", "register", "mallory@uni", "not-a-key")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
