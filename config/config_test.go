package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/named-data/ndnd-client/config"
	"github.com/named-data/ndnd-client/std/ndn"
	"github.com/stretchr/testify/require"
)

func TestGetClientConfigDefaultsWhenNoFileExists(t *testing.T) {
	t.Setenv("NDN_CLIENT_CONF", filepath.Join(t.TempDir(), "does-not-exist.conf"))

	cfg, err := config.GetClientConfig()
	require.NoError(t, err)
	require.Equal(t, config.DefaultClientConfig(), cfg)
}

func TestGetClientConfigParsesNdnClientConf(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.conf")
	require.NoError(t, os.WriteFile(path, []byte("transport: tcp://router.example.net:6363\n"), 0o644))
	t.Setenv("NDN_CLIENT_CONF", path)

	cfg, err := config.GetClientConfig()
	require.NoError(t, err)
	require.Equal(t, "tcp://router.example.net:6363", cfg.TransportUri)
}

func TestGetClientConfigRejectsUnparseableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.conf")
	require.NoError(t, os.WriteFile(path, []byte("transport: [this is not valid yaml"), 0o644))
	t.Setenv("NDN_CLIENT_CONF", path)

	_, err := config.GetClientConfig()
	require.Error(t, err)
	var configErr *ndn.ConfigError
	require.ErrorAs(t, err, &configErr)
}
