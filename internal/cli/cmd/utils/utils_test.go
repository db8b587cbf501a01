package utils

import (
	"os"
	"testing"

	"github.com/adrg/xdg"
	"github.com/matjam/shmpaper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalPath(t *testing.T) {
	t.Setenv("HOME", "/home/alice")
	for in, want := range map[string]string{
		"":             "",
		"~":            "/home/alice",
		"~/x.toml":     "/home/alice/x.toml",
		"/etc/x.toml":  "/etc/x.toml",
		"rel/~/x.toml": "rel/~/x.toml",
	} {
		assert.Equal(t, want, CanonicalPath(in), in)
	}
}

func TestInstallDefaultConfig(t *testing.T) {
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()

	InstallDefaultConfig()
	got, err := os.ReadFile(DefaultConfigPath())
	require.NoError(t, err)
	assert.Equal(t, shmpaper.DefaultConfig, string(got))

	require.NoError(t, os.WriteFile(DefaultConfigPath(), []byte("width = 1\n"), 0o644))
	InstallDefaultConfig()
	got, err = os.ReadFile(DefaultConfigPath())
	require.NoError(t, err)
	assert.Equal(t, "width = 1\n", string(got), "existing config is kept")
}
