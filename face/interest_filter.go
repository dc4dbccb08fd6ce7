package face

import (
	enc "github.com/named-data/ndnd-client/std/encoding"
	"github.com/named-data/ndnd-client/std/ndn"
)

// InterestFilterRecord associates a name prefix with the handler invoked
// for every Interest matching it. Unlike the single handler-per-prefix FIB
// an ndn.Engine keeps for its own dispatch, a Face may hold several
// filters under the same or overlapping prefixes; all matching filters
// are invoked for each incoming Interest.
type InterestFilterRecord struct {
	Prefix enc.Name
	// AllowsLoopback lets this filter also match Interests the Face itself
	// expressed (PendingInterestOriginApp), not just ones arriving from
	// the forwarder. Off by default, matching the forwarder's own
	// prohibition on an Interest being satisfied by its own origin.
	AllowsLoopback bool
	Callback       ndn.InterestHandler
}

// DoesMatch reports whether this filter should be invoked for an Interest
// named name and received from origin: the name must fall under Prefix,
// and a loopback (app-originated) Interest additionally requires
// AllowsLoopback.
func (f *InterestFilterRecord) DoesMatch(name enc.Name, origin PendingInterestOrigin) bool {
	if origin == PendingInterestOriginApp && !f.AllowsLoopback {
		return false
	}
	return f.Prefix.IsPrefix(name)
}
