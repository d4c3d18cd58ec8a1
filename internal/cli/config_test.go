package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigExplicitMissingPathFails(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope", "config.yaml"))
	require.Error(t, err)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`ledger:
  backend: memory
blobs:
  backends:
    - kind: memory
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Ledger.Backend)
	require.Len(t, cfg.Blobs.Backends, 1)
	assert.Equal(t, "memory", cfg.Blobs.Backends[0].Kind)
	// Untouched sections keep their defaults.
	assert.NotEmpty(t, cfg.Keys.Directory)
}

func TestLoadConfigRejectsUnknownBackends(t *testing.T) {
	dir := t.TempDir()

	cases := []struct{ name, body string }{
		{"ledger", "ledger:\n  backend: redis\n"},
		{"blob kind", "blobs:\n  backends:\n    - kind: s3\n"},
		{"localfs without root", "blobs:\n  backends:\n    - kind: localfs\n      root: \"\"\n"},
		{"grpc without address", "blobs:\n  backends:\n    - kind: grpc\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := filepath.Join(dir, "bad.yaml")
			require.NoError(t, os.WriteFile(path, []byte(c.body), 0o644))
			_, err := LoadConfig(path)
			require.Error(t, err)
		})
	}
}

func TestRegistryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Empty(t, reg, "missing registry reads as empty")

	reg["alice@uni"] = "x25519:abc"
	require.NoError(t, SaveRegistry(path, reg))

	got, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, reg, got)
}
