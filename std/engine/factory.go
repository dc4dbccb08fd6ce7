package engine

import (
	"fmt"
	"net/url"

	"github.com/named-data/ndnd-client/config"
	"github.com/named-data/ndnd-client/std/engine/basic"
	"github.com/named-data/ndnd-client/std/engine/face"
	"github.com/named-data/ndnd-client/std/ndn"
)

// Constructs a basic Engine using the provided Face and a new Timer for managing time-based operations.
func NewBasicEngine(face ndn.Face) ndn.Engine {
	return basic.NewEngine(face, basic.NewTimer())
}

// Constructs an NDN face using a Unix domain socket at the specified address for stream-based communication.
func NewUnixFace(addr string) ndn.Face {
	return face.NewStreamFace("unix", addr, true)
}

// NewDefaultFace builds a Face from the transport URI in this client's
// configuration (see the config package), returning a *ndn.ConfigError if
// the configuration can't be loaded or names an unsupported transport.
func NewDefaultFace() (ndn.Face, error) {
	clientConfig, err := config.GetClientConfig()
	if err != nil {
		return nil, err
	}

	uri, err := url.Parse(clientConfig.TransportUri)
	if err != nil {
		return nil, &ndn.ConfigError{Reason: fmt.Sprintf("invalid transport URI %q: %v", clientConfig.TransportUri, err)}
	}

	switch uri.Scheme {
	case "unix":
		return NewUnixFace(uri.Path), nil
	case "tcp", "tcp4", "tcp6":
		return face.NewStreamFace(uri.Scheme, uri.Host, false), nil
	default:
		return nil, &ndn.ConfigError{Reason: "unsupported transport URI scheme: " + uri.Scheme}
	}
}
