package spec_2022

import (
	"time"

	enc "github.com/named-data/ndnd-client/std/encoding"
	"github.com/named-data/ndnd-client/std/ndn"
	"github.com/named-data/ndnd-client/std/types/optional"
)

// EncodedData is the result of encoding a Data packet.
type EncodedData struct {
	Wire enc.Wire
	Name enc.Name
}

// Data is a decoded Data packet.
type Data struct {
	name         enc.Name
	contentType  optional.Optional[ndn.ContentType]
	freshness    optional.Optional[time.Duration]
	finalBlockID optional.Optional[enc.Component]
	content      enc.Wire
	sig          sigValue
}

func (d *Data) Name() enc.Name                                  { return d.name }
func (d *Data) ContentType() optional.Optional[ndn.ContentType] { return d.contentType }
func (d *Data) Freshness() optional.Optional[time.Duration]     { return d.freshness }
func (d *Data) FinalBlockID() optional.Optional[enc.Component]  { return d.finalBlockID }
func (d *Data) Content() enc.Wire                               { return d.content }
func (d *Data) Signature() ndn.Signature                        { return d.sig }

// MakeData encodes name, cfg and content into a Data packet, signed with
// signer if non-nil. A nil signer produces an unsigned Data with no
// SignatureInfo or SignatureValue at all.
func (Spec) MakeData(name enc.Name, cfg *ndn.DataConfig, content enc.Wire, signer ndn.Signer) (*EncodedData, error) {
	var value []byte
	value = append(value, appendTLV(nil, tlvName, name.BytesInner())...)
	value = append(value, appendTLV(nil, tlvMetaInfo, encodeMetaInfo(cfg))...)

	if content != nil {
		value = append(value, appendTLV(nil, tlvContent, content.Join())...)
	}

	if signer != nil {
		sigInfo := buildSignatureInfo(signer)
		value = appendTLV(value, tlvSignatureInfo, sigInfo)

		sigBytes, err := signer.Sign(enc.Wire{value})
		if err != nil {
			return nil, err
		}
		value = appendTLV(value, tlvSignatureValue, sigBytes)
	}

	wire := appendTLV(nil, tlvData, value)
	return &EncodedData{Wire: enc.Wire{wire}, Name: name}, nil
}

func encodeMetaInfo(cfg *ndn.DataConfig) []byte {
	var value []byte
	if cfg == nil {
		return value
	}
	if ct, ok := cfg.ContentType.Get(); ok {
		value = appendTLV(value, tlvContentType, enc.Nat(ct).Bytes())
	}
	if fr, ok := cfg.Freshness.Get(); ok {
		value = appendTLV(value, tlvFreshnessPeriod, enc.Nat(fr.Milliseconds()).Bytes())
	}
	if fb, ok := cfg.FinalBlockID.Get(); ok {
		value = appendTLV(value, tlvFinalBlockId, fb.Bytes())
	}
	return value
}

// ReadData decodes a Data packet from r, returning the decoded packet and
// the wire bytes covered by its signature (Name through SignatureInfo,
// excluding SignatureValue).
func (Spec) ReadData(r enc.WireView) (*Data, enc.Wire, error) {
	typ, err := r.ReadTLNum()
	if err != nil {
		return nil, nil, err
	}
	if typ != tlvData {
		return nil, nil, ndn.ErrWrongType
	}
	length, err := r.ReadTLNum()
	if err != nil {
		return nil, nil, err
	}

	sub := r.Delegate(int(length))
	d := &Data{sig: noSignature}
	sigInfoEnd := -1

	for !sub.IsEOF() {
		ftyp, err := sub.ReadTLNum()
		if err != nil {
			return nil, nil, err
		}
		flen, err := sub.ReadTLNum()
		if err != nil {
			return nil, nil, err
		}

		switch ftyp {
		case tlvName:
			nameSub := sub.Delegate(int(flen))
			name, err := nameSub.ReadName()
			if err != nil {
				return nil, nil, err
			}
			d.name = name
		case tlvMetaInfo:
			buf, err := sub.ReadBuf(int(flen))
			if err != nil {
				return nil, nil, err
			}
			if err := parseMetaInfo(buf, d); err != nil {
				return nil, nil, err
			}
		case tlvContent:
			buf, err := sub.ReadBuf(int(flen))
			if err != nil {
				return nil, nil, err
			}
			d.content = enc.Wire{buf}
		case tlvSignatureInfo:
			buf, err := sub.ReadBuf(int(flen))
			if err != nil {
				return nil, nil, err
			}
			sigType, _, err := readSignatureInfo(buf)
			if err != nil {
				return nil, nil, err
			}
			d.sig = sigValue{sigType: sigType}
			sigInfoEnd = sub.Pos()
		case tlvSignatureValue:
			buf, err := sub.ReadBuf(int(flen))
			if err != nil {
				return nil, nil, err
			}
			d.sig = sigValue{sigType: d.sig.sigType, value: buf}
		default:
			if _, err := sub.ReadBuf(int(flen)); err != nil {
				return nil, nil, err
			}
		}
	}

	if d.name == nil {
		return nil, nil, enc.ErrSkipRequired{Name: "Name", TypeNum: tlvName}
	}

	var covered enc.Wire
	if sigInfoEnd >= 0 {
		covered = sub.Range(0, sigInfoEnd)
	}
	return d, covered, nil
}

func parseMetaInfo(buf []byte, d *Data) error {
	r := enc.NewBufferView(buf)
	for !r.IsEOF() {
		typ, err := r.ReadTLNum()
		if err != nil {
			return err
		}
		l, err := r.ReadTLNum()
		if err != nil {
			return err
		}
		val, err := r.ReadBuf(int(l))
		if err != nil {
			return err
		}
		switch typ {
		case tlvContentType:
			n, _, err := enc.ParseNat(val)
			if err != nil {
				return err
			}
			d.contentType = optional.Some(ndn.ContentType(n))
		case tlvFreshnessPeriod:
			n, _, err := enc.ParseNat(val)
			if err != nil {
				return err
			}
			d.freshness = optional.Some(time.Duration(n) * time.Millisecond)
		case tlvFinalBlockId:
			comp, err := enc.ComponentFromBytes(val)
			if err != nil {
				return err
			}
			d.finalBlockID = optional.Some(comp)
		}
	}
	return nil
}
