// Package config locates and parses this client's configuration file,
// the same role ndn-cxx's client.conf plays for applications that don't
// build their own ndn.Face by hand.
package config

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/named-data/ndnd-client/std/ndn"
)

// ClientConfig is the parsed contents of a client configuration file.
type ClientConfig struct {
	// TransportUri names the Face transport to connect to, e.g.
	// "unix:///run/nfd/nfd.sock" or "tcp://localhost:6363".
	TransportUri string `yaml:"transport"`
}

// DefaultClientConfig is used when no configuration file is found.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		TransportUri: "unix:///run/nfd/nfd.sock",
	}
}

// searchPaths lists the files checked, in order, for a client config. The
// first one that exists is parsed; none existing is not an error.
func searchPaths() []string {
	paths := []string{
		os.Getenv("NDN_CLIENT_CONF"),
		"ndn-client.conf",
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".ndn", "client.conf"))
	}
	paths = append(paths,
		"/usr/local/etc/ndn/client.conf",
		"/etc/ndn/client.conf",
	)
	return paths
}

// GetClientConfig loads the first client config file found among
// searchPaths, or DefaultClientConfig if none exists. A file that exists
// but fails to parse is a *ndn.ConfigError, not a silently-ignored
// default.
func GetClientConfig() (*ClientConfig, error) {
	for _, path := range searchPaths() {
		if path == "" {
			continue
		}
		raw, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, &ndn.ConfigError{Reason: "reading " + path + ": " + err.Error()}
		}

		cfg := DefaultClientConfig()
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, &ndn.ConfigError{Reason: "parsing " + path + ": " + err.Error()}
		}
		return cfg, nil
	}
	return DefaultClientConfig(), nil
}
