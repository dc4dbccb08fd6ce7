package face

import (
	enc "github.com/named-data/ndnd-client/std/encoding"
	mgmt "github.com/named-data/ndnd-client/std/ndn/mgmt_2022"
)

// RegisteredPrefixRecord remembers a prefix this Face has registered with
// the forwarder's RIB, so it can later be unregistered and so its
// associated Interest filter (if any) can be torn down alongside it.
type RegisteredPrefixRecord struct {
	Prefix   enc.Name
	FilterId RecordId // zero if registered without an accompanying filter
	Cost     uint64
	Origin   mgmt.RouteOrigin
}
