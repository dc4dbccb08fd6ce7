package mgmt_2022

import (
	"time"

	enc "github.com/named-data/ndnd-client/std/encoding"
	"github.com/named-data/ndnd-client/std/ndn"
	spec "github.com/named-data/ndnd-client/std/ndn/spec_2022"
	"github.com/named-data/ndnd-client/std/types/optional"
)

// TLV type numbers for the NFD management protocol (ControlParameters,
// ControlResponse and their fields), as defined by the NFD Management
// protocol specification. These are independent of the 2022 packet format
// constants in spec_2022 and are not reused from there.
const (
	tlvControlParameters TLNum = 104
	tlvFaceId            TLNum = 105
	tlvUri               TLNum = 114
	tlvLocalUri          TLNum = 129
	tlvOrigin            TLNum = 111
	tlvCost              TLNum = 106
	tlvCapacity          TLNum = 131
	tlvCount             TLNum = 132
	tlvFlags             TLNum = 108
	tlvMask              TLNum = 112
	tlvStrategy          TLNum = 107
	tlvExpirationPeriod  TLNum = 109
	tlvFacePersistency   TLNum = 133

	tlvControlResponse TLNum = 101
	tlvStatusCode      TLNum = 102
	tlvStatusText      TLNum = 103

	tlvName TLNum = 0x07
)

// TLNum is a local alias so the constant block above reads naturally.
type TLNum = enc.TLNum

// ControlArgs carries the optional fields of an NFD ControlParameters TLV,
// built by the caller and echoed back (in part) by the forwarder's
// ControlResponse on success.
type ControlArgs struct {
	Name             enc.Name
	FaceId           optional.Optional[uint64]
	Uri              optional.Optional[string]
	LocalUri         optional.Optional[string]
	Origin           optional.Optional[RouteOrigin]
	Cost             optional.Optional[uint64]
	Capacity         optional.Optional[uint64]
	Count            optional.Optional[uint64]
	Flags            optional.Optional[uint64]
	Mask             optional.Optional[uint64]
	Strategy         enc.Name
	ExpirationPeriod optional.Optional[time.Duration]
	FacePersistency  optional.Optional[Persistency]
}

func appendTLV(dst []byte, typ TLNum, value []byte) []byte {
	var hdr [9]byte
	n := typ.EncodeInto(hdr[:])
	dst = append(dst, hdr[:n]...)
	n = TLNum(len(value)).EncodeInto(hdr[:])
	dst = append(dst, hdr[:n]...)
	return append(dst, value...)
}

// Encode serializes a into a ControlParameters TLV.
func (a *ControlArgs) Encode() []byte {
	var value []byte
	if a.Name != nil {
		value = appendTLV(value, tlvName, a.Name.BytesInner())
	}
	if v, ok := a.FaceId.Get(); ok {
		value = appendTLV(value, tlvFaceId, enc.Nat(v).Bytes())
	}
	if v, ok := a.Uri.Get(); ok {
		value = appendTLV(value, tlvUri, []byte(v))
	}
	if v, ok := a.LocalUri.Get(); ok {
		value = appendTLV(value, tlvLocalUri, []byte(v))
	}
	if v, ok := a.Origin.Get(); ok {
		value = appendTLV(value, tlvOrigin, enc.Nat(v).Bytes())
	}
	if v, ok := a.Cost.Get(); ok {
		value = appendTLV(value, tlvCost, enc.Nat(v).Bytes())
	}
	if v, ok := a.Capacity.Get(); ok {
		value = appendTLV(value, tlvCapacity, enc.Nat(v).Bytes())
	}
	if v, ok := a.Count.Get(); ok {
		value = appendTLV(value, tlvCount, enc.Nat(v).Bytes())
	}
	if v, ok := a.Flags.Get(); ok {
		value = appendTLV(value, tlvFlags, enc.Nat(v).Bytes())
	}
	if v, ok := a.Mask.Get(); ok {
		value = appendTLV(value, tlvMask, enc.Nat(v).Bytes())
	}
	if a.Strategy != nil {
		strategyVal := appendTLV(nil, tlvName, a.Strategy.BytesInner())
		value = appendTLV(value, tlvStrategy, strategyVal)
	}
	if v, ok := a.ExpirationPeriod.Get(); ok {
		value = appendTLV(value, tlvExpirationPeriod, enc.Nat(v.Milliseconds()).Bytes())
	}
	if v, ok := a.FacePersistency.Get(); ok {
		value = appendTLV(value, tlvFacePersistency, enc.Nat(v).Bytes())
	}
	return appendTLV(nil, tlvControlParameters, value)
}

// ParseControlParameters decodes a ControlParameters TLV from buf.
func ParseControlParameters(buf []byte) (*ControlArgs, error) {
	r := enc.NewBufferView(buf)
	typ, err := r.ReadTLNum()
	if err != nil {
		return nil, err
	}
	if typ != tlvControlParameters {
		return nil, ndn.ErrWrongType
	}
	length, err := r.ReadTLNum()
	if err != nil {
		return nil, err
	}
	sub := r.Delegate(int(length))

	a := &ControlArgs{}
	for !sub.IsEOF() {
		ftyp, err := sub.ReadTLNum()
		if err != nil {
			return nil, err
		}
		flen, err := sub.ReadTLNum()
		if err != nil {
			return nil, err
		}
		switch ftyp {
		case tlvName:
			nameSub := sub.Delegate(int(flen))
			name, err := nameSub.ReadName()
			if err != nil {
				return nil, err
			}
			a.Name = name
		case tlvStrategy:
			buf, err := sub.ReadBuf(int(flen))
			if err != nil {
				return nil, err
			}
			sr := enc.NewBufferView(buf)
			nTyp, err := sr.ReadTLNum()
			if err != nil {
				return nil, err
			}
			nLen, err := sr.ReadTLNum()
			if err != nil {
				return nil, err
			}
			if nTyp == tlvName {
				nsub := sr.Delegate(int(nLen))
				name, err := nsub.ReadName()
				if err != nil {
					return nil, err
				}
				a.Strategy = name
			}
		default:
			buf, err := sub.ReadBuf(int(flen))
			if err != nil {
				return nil, err
			}
			if err := parseNatField(ftyp, buf, a); err != nil {
				return nil, err
			}
		}
	}
	return a, nil
}

func parseNatField(typ TLNum, buf []byte, a *ControlArgs) error {
	switch typ {
	case tlvFaceId:
		n, _, err := enc.ParseNat(buf)
		if err != nil {
			return err
		}
		a.FaceId = optional.Some(uint64(n))
	case tlvUri:
		a.Uri = optional.Some(string(buf))
	case tlvLocalUri:
		a.LocalUri = optional.Some(string(buf))
	case tlvOrigin:
		n, _, err := enc.ParseNat(buf)
		if err != nil {
			return err
		}
		a.Origin = optional.Some(RouteOrigin(n))
	case tlvCost:
		n, _, err := enc.ParseNat(buf)
		if err != nil {
			return err
		}
		a.Cost = optional.Some(uint64(n))
	case tlvCapacity:
		n, _, err := enc.ParseNat(buf)
		if err != nil {
			return err
		}
		a.Capacity = optional.Some(uint64(n))
	case tlvCount:
		n, _, err := enc.ParseNat(buf)
		if err != nil {
			return err
		}
		a.Count = optional.Some(uint64(n))
	case tlvFlags:
		n, _, err := enc.ParseNat(buf)
		if err != nil {
			return err
		}
		a.Flags = optional.Some(uint64(n))
	case tlvMask:
		n, _, err := enc.ParseNat(buf)
		if err != nil {
			return err
		}
		a.Mask = optional.Some(uint64(n))
	case tlvExpirationPeriod:
		n, _, err := enc.ParseNat(buf)
		if err != nil {
			return err
		}
		a.ExpirationPeriod = optional.Some(time.Duration(n) * time.Millisecond)
	case tlvFacePersistency:
		n, _, err := enc.ParseNat(buf)
		if err != nil {
			return err
		}
		a.FacePersistency = optional.Some(Persistency(n))
	}
	return nil
}

// ControlResponse is the decoded response body of a management command:
// a numeric status code, human-readable text, and (on success) the
// ControlParameters the forwarder applied.
type ControlResponse struct {
	StatusCode uint64
	StatusText string
	Params     *ControlArgs
}

// ParseControlResponse decodes a ControlResponse TLV from the Content of
// a command Data reply.
func ParseControlResponse(buf []byte) (*ControlResponse, error) {
	r := enc.NewBufferView(buf)
	typ, err := r.ReadTLNum()
	if err != nil {
		return nil, err
	}
	if typ != tlvControlResponse {
		return nil, ndn.ErrWrongType
	}
	length, err := r.ReadTLNum()
	if err != nil {
		return nil, err
	}
	sub := r.Delegate(int(length))

	resp := &ControlResponse{}
	for !sub.IsEOF() {
		ftyp, err := sub.ReadTLNum()
		if err != nil {
			return nil, err
		}
		flen, err := sub.ReadTLNum()
		if err != nil {
			return nil, err
		}
		switch ftyp {
		case tlvStatusCode:
			buf, err := sub.ReadBuf(int(flen))
			if err != nil {
				return nil, err
			}
			n, _, err := enc.ParseNat(buf)
			if err != nil {
				return nil, err
			}
			resp.StatusCode = uint64(n)
		case tlvStatusText:
			buf, err := sub.ReadBuf(int(flen))
			if err != nil {
				return nil, err
			}
			resp.StatusText = string(buf)
		case tlvControlParameters:
			buf, err := sub.ReadBuf(int(flen))
			if err != nil {
				return nil, err
			}
			params, err := ParseControlParameters(appendTLV(nil, tlvControlParameters, buf))
			if err != nil {
				return nil, err
			}
			resp.Params = params
		default:
			if _, err := sub.ReadBuf(int(flen)); err != nil {
				return nil, err
			}
		}
	}
	return resp, nil
}

// MgmtConfig holds the signing identity and default command prefix used to
// build signed commands against the forwarder's management protocol.
type MgmtConfig struct {
	local  bool
	signer ndn.Signer
	spec   spec.Spec
}

// DefaultPrefixLocal and DefaultPrefixRemote are the command prefixes NFD
// listens on for management commands, selected by whether the Face
// connects over a local (trusted) or remote transport.
var (
	DefaultPrefixLocal  = mustName("/localhost/nfd")
	DefaultPrefixRemote = mustName("/localhop/nfd")
)

func mustName(s string) enc.Name {
	n, err := enc.NameFromStr(s)
	if err != nil {
		panic(err)
	}
	return n
}

// NewConfig constructs an MgmtConfig. local selects between /localhost/nfd
// and /localhop/nfd as the command prefix.
func NewConfig(local bool, signer ndn.Signer, sp spec.Spec) *MgmtConfig {
	return &MgmtConfig{local: local, signer: signer, spec: sp}
}

// SetSigner replaces the signer used for outgoing commands.
func (c *MgmtConfig) SetSigner(signer ndn.Signer) {
	c.signer = signer
}

// Prefix returns the command prefix this config addresses commands to.
func (c *MgmtConfig) Prefix() enc.Name {
	if c.local {
		return DefaultPrefixLocal
	}
	return DefaultPrefixRemote
}

// MakeCmd builds a signed command Interest for module/cmd, carrying args'
// TLV-encoded ControlParameters as ApplicationParameters. The resulting
// Interest is signed and its name carries the parameters digest component,
// matching how the forwarder verifies signed commands.
func (c *MgmtConfig) MakeCmd(module string, cmd string, args *ControlArgs, intCfg *ndn.InterestConfig) (*spec.EncodedInterest, error) {
	name := c.Prefix().Append(
		enc.NewStringComponent(enc.TypeGenericNameComponent, module),
		enc.NewStringComponent(enc.TypeGenericNameComponent, cmd),
	)
	return c.spec.MakeInterest(name, intCfg, enc.Wire{args.Encode()}, c.signer)
}
