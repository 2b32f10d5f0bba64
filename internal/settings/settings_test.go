package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claspx/cli/internal/testutils"
)

func TestLoadDefaultsUnderHomeOverride(t *testing.T) {
	base := t.TempDir()
	cleanup := testutils.SetEnv(t, map[string]string{HomeEnv: base})
	defer cleanup()

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "clasp", s.ClaspBin)
	assert.Equal(t, filepath.Join(base, "accounts"), s.VaultDir)
	assert.Equal(t, filepath.Join(base, ".clasprc.json"), s.CredentialsPath)
}

func TestLoadAppliesConfigOverrides(t *testing.T) {
	base := t.TempDir()
	cleanup := testutils.SetEnv(t, map[string]string{HomeEnv: base})
	defer cleanup()

	config := "clasp_bin: /opt/clasp/bin/clasp\nvault_dir: /srv/vault\n"
	require.NoError(t, os.WriteFile(filepath.Join(base, "config.yaml"), []byte(config), 0o644))

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/opt/clasp/bin/clasp", s.ClaspBin)
	assert.Equal(t, "/srv/vault", s.VaultDir)
	// Unset fields keep their defaults.
	assert.Equal(t, filepath.Join(base, ".clasprc.json"), s.CredentialsPath)
}

func TestLoadRejectsMalformedConfig(t *testing.T) {
	base := t.TempDir()
	cleanup := testutils.SetEnv(t, map[string]string{HomeEnv: base})
	defer cleanup()

	require.NoError(t, os.WriteFile(filepath.Join(base, "config.yaml"), []byte("clasp_bin: [\n"), 0o644))

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}
