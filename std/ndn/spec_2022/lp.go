package spec_2022

import (
	enc "github.com/named-data/ndnd-client/std/encoding"
	"github.com/named-data/ndnd-client/std/ndn"
	"github.com/named-data/ndnd-client/std/types/optional"
)

// NDNLPv2 link-layer framing TLV types. None of them equals an
// Interest/Data TLV type in packet.go; an LpPacket is only ever the
// outermost TLV on the wire and is never nested inside an Interest or Data.
const (
	tlvLpPacket       TLNum = 100
	tlvFragment       TLNum = 80
	tlvFragIndex      TLNum = 82
	tlvFragCount      TLNum = 83
	tlvPitToken       TLNum = 98
	tlvNack           TLNum = 800
	tlvNackReason     TLNum = 801
	tlvIncomingFaceId TLNum = 812
	tlvNextHopFaceId  TLNum = 816
	tlvCongestionMark TLNum = 832
)

// NackReasonNone marks a Nack TLV that carries no specific reason code, or
// (in onPacket's outer-packet check) a packet that isn't a Nack at all.
const NackReasonNone uint64 = 0

// LpHeaderNack is the decoded body of an NDNLPv2 Nack field.
type LpHeaderNack struct {
	Reason uint64
}

// LpPacket is a decoded NDNLPv2 link-layer frame: a Fragment carrying an
// inner Interest/Data, plus whichever header fields were present.
type LpPacket struct {
	FragIndex      optional.Optional[uint64]
	FragCount      optional.Optional[uint64]
	Fragment       enc.Wire
	Nack           *LpHeaderNack
	PitToken       []byte
	IncomingFaceId optional.Optional[uint64]
	NextHopFaceId  optional.Optional[uint64]
	CongestionMark optional.Optional[uint64]
}

// Packet is the outcome of reading one outer TLV off the wire: exactly
// one of LpPacket, Interest, Data is non-nil, except that LpPacket may
// additionally wrap an Interest/Data once its Fragment has been parsed.
type Packet struct {
	LpPacket *LpPacket
	Interest *Interest
	Data     *Data
}

// ReadPacket reads one outer TLV from r and decodes it as either a bare
// Interest, a bare Data, or an NDNLPv2 LpPacket (whose Fragment, if any,
// is left undecoded in LpPacket.Fragment for the caller to recurse into).
// It returns the wire bytes covered by the packet's signature, if any.
func ReadPacket(r enc.WireView) (*Packet, enc.Wire, error) {
	start := r.Pos()
	typ, err := r.ReadTLNum()
	if err != nil {
		return nil, nil, err
	}
	length, err := r.ReadTLNum()
	if err != nil {
		return nil, nil, err
	}
	end := r.Pos() + int(length)

	switch typ {
	case tlvInterest:
		full := r.Range(start, end)
		fr := enc.NewWireView(full)
		in, covered, err := Spec{}.ReadInterest(fr)
		if err != nil {
			return nil, nil, err
		}
		if err := r.Skip(int(length)); err != nil {
			return nil, nil, err
		}
		return &Packet{Interest: in}, covered, nil
	case tlvData:
		full := r.Range(start, end)
		fr := enc.NewWireView(full)
		d, covered, err := Spec{}.ReadData(fr)
		if err != nil {
			return nil, nil, err
		}
		if err := r.Skip(int(length)); err != nil {
			return nil, nil, err
		}
		return &Packet{Data: d}, covered, nil
	case tlvLpPacket:
		buf, err := r.ReadBuf(int(length))
		if err != nil {
			return nil, nil, err
		}
		lp, err := readLpPacket(buf)
		if err != nil {
			return nil, nil, err
		}
		return &Packet{LpPacket: lp}, nil, nil
	default:
		return nil, nil, ndn.ErrWrongType
	}
}

func readLpPacket(buf []byte) (*LpPacket, error) {
	sub := enc.NewBufferView(buf)
	lp := &LpPacket{}
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
		case tlvFragIndex:
			val, err := sub.ReadBuf(int(flen))
			if err != nil {
				return nil, err
			}
			n, _, err := enc.ParseNat(val)
			if err != nil {
				return nil, err
			}
			lp.FragIndex = optional.Some(uint64(n))
		case tlvFragCount:
			val, err := sub.ReadBuf(int(flen))
			if err != nil {
				return nil, err
			}
			n, _, err := enc.ParseNat(val)
			if err != nil {
				return nil, err
			}
			lp.FragCount = optional.Some(uint64(n))
		case tlvFragment:
			val, err := sub.ReadBuf(int(flen))
			if err != nil {
				return nil, err
			}
			lp.Fragment = enc.Wire{val}
		case tlvPitToken:
			val, err := sub.ReadBuf(int(flen))
			if err != nil {
				return nil, err
			}
			lp.PitToken = val
		case tlvIncomingFaceId:
			val, err := sub.ReadBuf(int(flen))
			if err != nil {
				return nil, err
			}
			n, _, err := enc.ParseNat(val)
			if err != nil {
				return nil, err
			}
			lp.IncomingFaceId = optional.Some(uint64(n))
		case tlvNextHopFaceId:
			val, err := sub.ReadBuf(int(flen))
			if err != nil {
				return nil, err
			}
			n, _, err := enc.ParseNat(val)
			if err != nil {
				return nil, err
			}
			lp.NextHopFaceId = optional.Some(uint64(n))
		case tlvCongestionMark:
			val, err := sub.ReadBuf(int(flen))
			if err != nil {
				return nil, err
			}
			n, _, err := enc.ParseNat(val)
			if err != nil {
				return nil, err
			}
			lp.CongestionMark = optional.Some(uint64(n))
		case tlvNack:
			val, err := sub.ReadBuf(int(flen))
			if err != nil {
				return nil, err
			}
			nack, err := readLpNack(val)
			if err != nil {
				return nil, err
			}
			lp.Nack = nack
		default:
			if _, err := sub.ReadBuf(int(flen)); err != nil {
				return nil, err
			}
		}
	}
	return lp, nil
}

func readLpNack(buf []byte) (*LpHeaderNack, error) {
	sub := enc.NewBufferView(buf)
	nack := &LpHeaderNack{}
	for !sub.IsEOF() {
		ftyp, err := sub.ReadTLNum()
		if err != nil {
			return nil, err
		}
		flen, err := sub.ReadTLNum()
		if err != nil {
			return nil, err
		}
		val, err := sub.ReadBuf(int(flen))
		if err != nil {
			return nil, err
		}
		if ftyp == tlvNackReason {
			n, _, err := enc.ParseNat(val)
			if err != nil {
				return nil, err
			}
			nack.Reason = uint64(n)
		}
	}
	return nack, nil
}

// PacketEncoder builds the wire encoding of an outgoing Packet. Only the
// LpPacket wrapping case is needed on the send path; bare Interest/Data
// are already produced directly by Spec.MakeInterest/MakeData.
type PacketEncoder struct{}

// Init is a no-op; PacketEncoder carries no per-packet state.
func (PacketEncoder) Init(pkt *Packet) {}

// Encode serializes pkt.LpPacket into an NDNLPv2 frame. It returns nil if
// pkt carries no LpPacket.
func (PacketEncoder) Encode(pkt *Packet) enc.Wire {
	if pkt.LpPacket == nil {
		return nil
	}
	lp := pkt.LpPacket
	var value []byte
	if v, ok := lp.FragIndex.Get(); ok {
		value = appendTLV(value, tlvFragIndex, enc.Nat(v).Bytes())
	}
	if v, ok := lp.FragCount.Get(); ok {
		value = appendTLV(value, tlvFragCount, enc.Nat(v).Bytes())
	}
	if lp.PitToken != nil {
		value = appendTLV(value, tlvPitToken, lp.PitToken)
	}
	if v, ok := lp.IncomingFaceId.Get(); ok {
		value = appendTLV(value, tlvIncomingFaceId, enc.Nat(v).Bytes())
	}
	if v, ok := lp.NextHopFaceId.Get(); ok {
		value = appendTLV(value, tlvNextHopFaceId, enc.Nat(v).Bytes())
	}
	if v, ok := lp.CongestionMark.Get(); ok {
		value = appendTLV(value, tlvCongestionMark, enc.Nat(v).Bytes())
	}
	if lp.Nack != nil {
		nackVal := appendTLV(nil, tlvNackReason, enc.Nat(lp.Nack.Reason).Bytes())
		value = appendTLV(value, tlvNack, nackVal)
	}
	if lp.Fragment != nil {
		value = appendTLV(value, tlvFragment, lp.Fragment.Join())
	}
	wire := appendTLV(nil, tlvLpPacket, value)
	return enc.Wire{wire}
}
