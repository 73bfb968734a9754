package config

import (
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/require"
)

func setupConfigHome(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()
}

func TestLoadWithoutConfig(t *testing.T) {
	setupConfigHome(t)
	_, err := Load()
	require.ErrorIs(t, err, ErrNoConfig)
}

func TestConfigRoundTrip(t *testing.T) {
	setupConfigHome(t)
	cfg := &Config{
		InstallsDir: "/srv/cab/installs",
		CcacheDir:   "/srv/cab/ccache",
		CcacheSize:  "10G",
		Registry:    &Registry{URL: "localhost:5000", Insecure: true},
	}
	require.NoError(t, cfg.Save())

	loaded, err := Load()
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
	require.True(t, loaded.HasRegistry())
	require.Equal(t, "/srv/cab/installs/demo", loaded.InstallDirFor("demo"))
}

func TestBuildRoundTrip(t *testing.T) {
	setupConfigHome(t)

	exists, err := BuildExists("demo")
	require.NoError(t, err)
	require.False(t, exists)

	_, err = LoadBuild("demo")
	require.ErrorIs(t, err, ErrUnknownBuild)

	b := &Build{
		Name:      "demo",
		Vendor:    "acme",
		Release:   "v1",
		Sources:   "/home/joe/src/ceph",
		WithDebug: true,
	}
	require.NoError(t, b.Save())

	loaded, err := LoadBuild("demo")
	require.NoError(t, err)
	require.Equal(t, b, loaded)

	names, err := ListBuilds()
	require.NoError(t, err)
	require.Equal(t, []string{"demo"}, names)

	require.NoError(t, RemoveBuild("demo"))
	require.NoError(t, RemoveBuild("demo"))
	names, err = ListBuilds()
	require.NoError(t, err)
	require.Empty(t, names)
}
