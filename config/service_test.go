package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/malbeclabs/crowdfunding/config"
	"github.com/stretchr/testify/require"
)

func TestConfig_LoadServiceEnv(t *testing.T) {
	t.Setenv("CROWDFUNDING_ENV", "devnet")
	t.Setenv("INFLUX_URL", "http://influx:8086")
	t.Setenv("INFLUX_TOKEN", "")
	t.Setenv("INFLUX_BUCKET", "")
	t.Setenv("INFLUX_ORG", "")
	t.Setenv("CROWDFUNDING_KEYPAIR", "")

	dir := t.TempDir()
	dotenv := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("INFLUX_URL=http://ignored:8086\nCROWDFUNDING_KEYPAIR=/keys/id.json\n"), 0o600))

	got, err := config.LoadServiceEnv(dotenv)
	require.NoError(t, err)
	require.Equal(t, "devnet", got.Env)
	require.Equal(t, "http://influx:8086", got.InfluxURL)
	require.Equal(t, "crowdfunding-devnet", got.InfluxBucket)
	require.False(t, got.InfluxEnabled())
}

func TestConfig_LoadServiceEnv_MissingFile(t *testing.T) {
	t.Setenv("INFLUX_TOKEN", "secret")
	t.Setenv("INFLUX_URL", "http://influx:8086")

	got, err := config.LoadServiceEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.True(t, got.InfluxEnabled())
}
