// Package ndn defines the narrow interfaces and shared types that the rest
// of the library uses to talk to packet encoding, signing and storage
// without depending on their concrete implementations.
package ndn

import (
	"time"

	enc "github.com/named-data/ndnd-client/std/encoding"
	"github.com/named-data/ndnd-client/std/types/optional"
)

// SigType identifies the signature algorithm used on a Data or signed
// Interest, using the numeric values assigned by the NDN signature registry.
type SigType uint64

const (
	SignatureDigestSha256    SigType = 0
	SignatureSha256WithRsa   SigType = 1
	SignatureSha256WithEcdsa SigType = 3
	SignatureHmacWithSha256  SigType = 4
	SignatureEd25519         SigType = 7
	// SignatureEmptyTest is used only by the test signer; it is not a real
	// wire value defined by the NDN signature registry.
	SignatureEmptyTest SigType = 200
	// SignatureNone is a sentinel value reported by a decoded packet that
	// carried no SignatureInfo at all; it is never written to the wire.
	SignatureNone SigType = 1<<64 - 1
)

// ContentType identifies the kind of payload carried in a Data packet's
// Content field.
type ContentType uint64

const (
	ContentTypeBlob ContentType = 0
	ContentTypeLink ContentType = 1
	ContentTypeKey  ContentType = 2
	ContentTypeNack ContentType = 3
)

// Signature exposes the fields of a decoded SignatureInfo/SignatureValue
// pair, whether it came from a Data packet or a signed Interest.
type Signature interface {
	SigType() SigType
	SigValue() []byte
}

// Signer produces signatures over the wire bytes of an outgoing Data or
// Interest packet. Implementations live under std/security/signer.
type Signer interface {
	// Type returns the signature algorithm this signer produces.
	Type() SigType
	// KeyName returns the name of the signing key, used to build the
	// KeyLocator of the resulting SignatureInfo.
	KeyName() enc.Name
	// KeyLocator returns the name used for the SignatureInfo KeyLocator,
	// which may differ from KeyName (e.g. a certificate name).
	KeyLocator() enc.Name
	// EstimateSize returns the expected size in bytes of Sign's output, used
	// to preallocate the SignatureValue TLV before the real value is known.
	EstimateSize() uint
	// Sign computes a signature over covered, the wire bytes that precede
	// the SignatureValue TLV.
	Sign(covered enc.Wire) ([]byte, error)
	// Public returns the signer's public key bytes, or ErrNoPubKey if the
	// signer has none (e.g. HMAC, digest-only).
	Public() ([]byte, error)
}

// DataConfig carries the optional fields of a Data packet's MetaInfo plus
// its FinalBlockId, passed to the packet encoder when producing a Data.
type DataConfig struct {
	ContentType  optional.Optional[ContentType]
	Freshness    optional.Optional[time.Duration]
	FinalBlockID optional.Optional[enc.Component]
}

// InterestConfig carries the selectors and lifetime of an outgoing Interest.
type InterestConfig struct {
	CanBePrefix    bool
	MustBeFresh    bool
	Lifetime       optional.Optional[time.Duration]
	Nonce          optional.Optional[uint32]
	HopLimit       *byte
	ForwardingHint []enc.Name
	// NextHopId, when set, asks the forwarder to send this Interest out a
	// specific next hop, carried as an NDNLP NextHopFaceId tag.
	NextHopId optional.Optional[uint64]
}

// Face is the transport consumed by an Engine: a single multiplexed byte
// stream to a local or remote forwarder. Concrete implementations live
// under std/engine/face (stream, websocket, dummy/loopback).
type Face interface {
	IsRunning() bool
	IsLocal() bool
	OnPacket(onPkt func(frame []byte))
	OnError(onError func(err error))
	OnUp(onUp func()) (cancel func())
	OnDown(onDown func()) (cancel func())
	Open() error
	Close() error
	Send(pkt enc.Wire) error
	String() string
}

// Timer abstracts wall-clock time and one-shot scheduling so the Engine and
// its consumers (segment fetcher, controller) can be driven by a real clock
// in production and a deterministic fake clock in tests.
type Timer interface {
	Now() time.Time
	Sleep(d time.Duration)
	// Schedule runs f after d elapses, returning a cancel function. Calling
	// cancel a second time before f runs returns an error; calling it once
	// after f has already run returns nil.
	Schedule(d time.Duration, f func()) (cancel func() error)
	// Nonce returns a fresh source of randomness, used for Interest nonces
	// and signed-command nonces.
	Nonce() []byte
}

// NackReason is the reason code carried by a link-layer Nack. The zero
// value, NackReasonNone, marks "not a Nack" on the wire.
type NackReason uint64

const (
	NackReasonNone       NackReason = 0
	NackReasonCongestion NackReason = 50
	NackReasonDuplicate  NackReason = 100
	NackReasonNoRoute    NackReason = 150
)

// Severity returns the relative severity rank of r: None < Congestion <
// Duplicate < NoRoute. Used to pick the least-severe reason when
// aggregating Nacks from multiple downstreams for the same Interest.
func (r NackReason) Severity() int {
	switch r {
	case NackReasonNone:
		return 0
	case NackReasonCongestion:
		return 1
	case NackReasonDuplicate:
		return 2
	case NackReasonNoRoute:
		return 3
	default:
		return 4
	}
}

// LeastSevere returns whichever of a, b has the lower Severity.
func LeastSevere(a, b NackReason) NackReason {
	if b.Severity() < a.Severity() {
		return b
	}
	return a
}

func (r NackReason) String() string {
	switch r {
	case NackReasonNone:
		return "none"
	case NackReasonCongestion:
		return "congestion"
	case NackReasonDuplicate:
		return "duplicate"
	case NackReasonNoRoute:
		return "no-route"
	default:
		return "unknown"
	}
}

// InterestResult classifies how an expressed Interest was resolved.
type InterestResult int

const (
	InterestResultNone InterestResult = iota
	InterestResultData
	InterestResultNack
	InterestResultTimeout
	InterestResultError
)

// ExpressCallbackArgs is passed to the callback registered with
// Engine.Express/expressInterest when the Interest is resolved.
type ExpressCallbackArgs struct {
	Result     InterestResult
	Data       Data
	RawData    enc.Wire
	SigCovered enc.Wire
	NackReason NackReason
	Error      error
}

// ExpressCallbackFunc is invoked exactly once per expressed Interest.
type ExpressCallbackFunc func(args ExpressCallbackArgs)

// WireReplyFunc sends an encoded Data (or Nack) wire back out a Face.
type WireReplyFunc func(wire enc.Wire) error

// InterestHandlerArgs carries a received Interest and enough context for a
// handler to produce a reply.
type InterestHandlerArgs struct {
	Interest       Interest
	RawInterest    enc.Wire
	SigCovered     enc.Wire
	PitToken       []byte
	IncomingFaceId optional.Optional[uint64]
	Deadline       time.Time
	Reply          WireReplyFunc
}

// InterestHandler processes an incoming Interest matched against a
// registered prefix or Interest filter.
type InterestHandler func(args InterestHandlerArgs)

// Data is the narrow view of a decoded Data packet consumed outside the
// spec_2022 package (the engine, fetcher and controller never need the
// concrete type, only these accessors).
type Data interface {
	Name() enc.Name
	ContentType() optional.Optional[ContentType]
	Freshness() optional.Optional[time.Duration]
	FinalBlockID() optional.Optional[enc.Component]
	Content() enc.Wire
	Signature() Signature
}

// Interest is the narrow view of a decoded Interest packet.
type Interest interface {
	Name() enc.Name
	CanBePrefix() bool
	MustBeFresh() bool
	ForwardingHint() []enc.Name
	Nonce() optional.Optional[uint32]
	Lifetime() optional.Optional[time.Duration]
	HopLimit() *uint
	AppParam() enc.Wire
	Signature() Signature
}

// SigChecker validates the signature covering a received packet (command
// Data, or any packet where the application wants in-band validation).
type SigChecker func(name enc.Name, covered enc.Wire, sig Signature) bool

// Engine is the Face runtime: it multiplexes one transport (a Face) across
// many concurrent Interest/Data/Nack exchanges, owns the pending-interest
// and registered-handler tables, and offers the forwarder management
// commands used to register/unregister routes.
//
// Engine deliberately does not mention the concrete packet codec
// (std/ndn/spec_2022.Spec): Express takes the already-encoded wire and the
// name it resolves to, so this package never needs to import the codec
// package, which in turn imports this one for Signer/DataConfig/
// InterestConfig.
type Engine interface {
	EngineTrait() Engine
	Timer() Timer
	Face() Face

	AttachHandler(prefix enc.Name, handler InterestHandler) error
	DetachHandler(prefix enc.Name) error

	// Express sends an already-encoded Interest wire and registers callback
	// to run when it is resolved by Data, Nack or timeout. finalName is the
	// name actually carried on the wire (including any digest component);
	// cfg is the configuration the Interest was built from, used to derive
	// CanBePrefix/MustBeFresh/lifetime for PIT matching and the timeout.
	Express(finalName enc.Name, wire enc.Wire, cfg *InterestConfig, callback ExpressCallbackFunc) error
	ExecMgmtCmd(module string, cmd string, args any) (any, error)
	SetCmdSec(signer Signer, validator SigChecker)
	RegisterRoute(prefix enc.Name) error
	UnregisterRoute(prefix enc.Name) error

	Start() error
	Stop() error
	IsRunning() bool
	Post(task func())
}

// Store persists Data packets keyed by name, as a general-purpose local
// content store. std/object/storage implements it in memory and on disk.
//
// Get with prefix=true returns the lexicographically newest entry under
// name when no exact match exists, matching NDN's "rightmost child"
// selection for versioned/segmented names.
type Store interface {
	Get(name enc.Name, prefix bool) ([]byte, error)
	Put(name enc.Name, wire []byte) error
	Remove(name enc.Name) error
	RemovePrefix(prefix enc.Name) error
	RemoveFlatRange(prefix enc.Name, first, last enc.Component) error

	Begin() (Store, error)
	Commit() error
	Rollback() error
}
