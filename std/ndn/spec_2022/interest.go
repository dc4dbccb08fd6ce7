package spec_2022

import (
	"bytes"
	"crypto/sha256"
	"time"

	enc "github.com/named-data/ndnd-client/std/encoding"
	"github.com/named-data/ndnd-client/std/ndn"
	"github.com/named-data/ndnd-client/std/types/optional"
)

// EncodedInterest is the result of encoding an Interest packet.
type EncodedInterest struct {
	Wire enc.Wire
	// FinalName is name with a ParametersSha256DigestComponent appended when
	// ApplicationParameters was present; otherwise it is name unchanged.
	FinalName enc.Name
}

// Interest is a decoded Interest packet.
type Interest struct {
	name           enc.Name
	canBePrefix    bool
	mustBeFresh    bool
	forwardingHint []enc.Name
	nonce          optional.Optional[uint32]
	lifetime       optional.Optional[time.Duration]
	hopLimit       *byte
	appParam       enc.Wire
	sig            sigValue
}

func (i *Interest) Name() enc.Name                             { return i.name }
func (i *Interest) CanBePrefix() bool                           { return i.canBePrefix }
func (i *Interest) MustBeFresh() bool                           { return i.mustBeFresh }
func (i *Interest) ForwardingHint() []enc.Name                  { return i.forwardingHint }
func (i *Interest) Nonce() optional.Optional[uint32]            { return i.nonce }
func (i *Interest) Lifetime() optional.Optional[time.Duration]  { return i.lifetime }
func (i *Interest) AppParam() enc.Wire                          { return i.appParam }
func (i *Interest) Signature() ndn.Signature                    { return i.sig }

func (i *Interest) HopLimit() *uint {
	if i.hopLimit == nil {
		return nil
	}
	v := uint(*i.hopLimit)
	return &v
}

// MakeInterest encodes name and cfg into an Interest packet. appParam, if
// non-nil, is carried as ApplicationParameters and triggers a
// ParametersSha256DigestComponent appended to the name. If both signer and
// appParam are non-nil, the Interest additionally carries
// InterestSignatureInfo and InterestSignatureValue, and the digest
// component covers the signature value too; a signer given without
// appParam is not used.
func (Spec) MakeInterest(name enc.Name, cfg *ndn.InterestConfig, appParam enc.Wire, signer ndn.Signer) (*EncodedInterest, error) {
	finalName := name

	var selectors []byte
	if cfg != nil {
		if cfg.CanBePrefix {
			selectors = appendTLV(selectors, tlvCanBePrefix, nil)
		}
		if cfg.MustBeFresh {
			selectors = appendTLV(selectors, tlvMustBeFresh, nil)
		}
		if len(cfg.ForwardingHint) > 0 {
			var hintsValue []byte
			for _, fh := range cfg.ForwardingHint {
				hintsValue = appendTLV(hintsValue, tlvName, fh.BytesInner())
			}
			selectors = appendTLV(selectors, tlvForwardingHint, hintsValue)
		}
	}

	var nonceTLV []byte
	if cfg != nil {
		if n, ok := cfg.Nonce.Get(); ok {
			var nonceBytes [4]byte
			put4(nonceBytes[:], n)
			nonceTLV = appendTLV(nil, tlvNonce, nonceBytes[:])
		}
	}

	var lifetimeTLV []byte
	if cfg != nil {
		if lt, ok := cfg.Lifetime.Get(); ok {
			lifetimeTLV = appendTLV(nil, tlvInterestLifetime, enc.Nat(lt.Milliseconds()).Bytes())
		}
	}

	var hopLimitTLV []byte
	if cfg != nil && cfg.HopLimit != nil {
		hopLimitTLV = appendTLV(nil, tlvHopLimit, []byte{*cfg.HopLimit})
	}

	var appParamTLV []byte
	if appParam != nil {
		appParamTLV = appendTLV(nil, tlvApplicationParameters, appParam.Join())
	}

	nameNoDigestBytes := name.BytesInner()

	var sigInfoTLV, sigValueTLV []byte
	if appParam != nil && signer != nil {
		sigInfo := buildInterestSignatureInfo(signer)
		sigInfoTLV = appendTLV(nil, tlvInterestSignatureInfo, sigInfo)

		covered := enc.Wire{nameNoDigestBytes, appParamTLV, sigInfoTLV}
		sigBytes, err := signer.Sign(covered)
		if err != nil {
			return nil, err
		}
		sigValueTLV = appendTLV(nil, tlvInterestSignatureValue, sigBytes)
	}

	if appParam != nil {
		var digestInput enc.Wire
		digestInput = append(digestInput, nameNoDigestBytes, appParamTLV)
		if sigInfoTLV != nil {
			digestInput = append(digestInput, sigInfoTLV, sigValueTLV)
		}
		sum := sha256.Sum256(digestInput.Join())
		finalName = name.Append(enc.NewBytesComponent(enc.TypeParametersSha256DigestComponent, sum[:]))
	}

	var value []byte
	value = appendTLV(value, tlvName, finalName.BytesInner())
	value = append(value, selectors...)
	value = append(value, nonceTLV...)
	value = append(value, lifetimeTLV...)
	value = append(value, hopLimitTLV...)
	value = append(value, appParamTLV...)
	value = append(value, sigInfoTLV...)
	value = append(value, sigValueTLV...)

	wire := appendTLV(nil, tlvInterest, value)
	return &EncodedInterest{Wire: enc.Wire{wire}, FinalName: finalName}, nil
}

func buildInterestSignatureInfo(signer ndn.Signer) []byte {
	return buildSignatureInfo(signer)
}

func put4(buf []byte, v uint32) {
	buf[0] = byte(v >> 24)
	buf[1] = byte(v >> 16)
	buf[2] = byte(v >> 8)
	buf[3] = byte(v)
}

// ReadInterest decodes an Interest packet from r.
func (Spec) ReadInterest(r enc.WireView) (*Interest, enc.Wire, error) {
	typ, err := r.ReadTLNum()
	if err != nil {
		return nil, nil, err
	}
	if typ != tlvInterest {
		return nil, nil, ndn.ErrWrongType
	}
	length, err := r.ReadTLNum()
	if err != nil {
		return nil, nil, err
	}

	sub := r.Delegate(int(length))
	in := &Interest{sig: noSignature}

	var nameNoDigestStart, nameNoDigestEnd, appParamTLVStart, appParamTLVEnd, sigInfoEnd, sigValueEnd int
	var haveAppParam, haveSigInfo, haveSigValue bool

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
			nameValueStart := sub.Pos()
			nameSub := sub.Delegate(int(flen))
			name, err := nameSub.ReadName()
			if err != nil {
				return nil, nil, err
			}
			in.name = name
			if name.At(-1).Typ == enc.TypeParametersSha256DigestComponent {
				nameNoDigestStart = nameValueStart
				nameNoDigestEnd = sub.Pos() - name.At(-1).EncodingLength()
			} else {
				nameNoDigestStart = nameValueStart
				nameNoDigestEnd = sub.Pos()
			}
		case tlvCanBePrefix:
			in.canBePrefix = true
			if _, err := sub.ReadBuf(int(flen)); err != nil {
				return nil, nil, err
			}
		case tlvMustBeFresh:
			in.mustBeFresh = true
			if _, err := sub.ReadBuf(int(flen)); err != nil {
				return nil, nil, err
			}
		case tlvForwardingHint:
			buf, err := sub.ReadBuf(int(flen))
			if err != nil {
				return nil, nil, err
			}
			hr := enc.NewBufferView(buf)
			for !hr.IsEOF() {
				hnTyp, err := hr.ReadTLNum()
				if err != nil {
					return nil, nil, err
				}
				hnLen, err := hr.ReadTLNum()
				if err != nil {
					return nil, nil, err
				}
				if hnTyp != tlvName {
					if _, err := hr.ReadBuf(int(hnLen)); err != nil {
						return nil, nil, err
					}
					continue
				}
				hsub := hr.Delegate(int(hnLen))
				name, err := hsub.ReadName()
				if err != nil {
					return nil, nil, err
				}
				in.forwardingHint = append(in.forwardingHint, name)
			}
		case tlvNonce:
			buf, err := sub.ReadBuf(int(flen))
			if err != nil {
				return nil, nil, err
			}
			if len(buf) == 4 {
				in.nonce = optional.Some(uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]))
			}
		case tlvInterestLifetime:
			buf, err := sub.ReadBuf(int(flen))
			if err != nil {
				return nil, nil, err
			}
			n, _, err := enc.ParseNat(buf)
			if err != nil {
				return nil, nil, err
			}
			in.lifetime = optional.Some(time.Duration(n) * time.Millisecond)
		case tlvHopLimit:
			buf, err := sub.ReadBuf(int(flen))
			if err != nil {
				return nil, nil, err
			}
			if len(buf) == 1 {
				hl := buf[0]
				in.hopLimit = &hl
			}
		case tlvApplicationParameters:
			appParamTLVStart = sub.Pos() - tlvHeaderLen(tlvApplicationParameters, int(flen))
			buf, err := sub.ReadBuf(int(flen))
			if err != nil {
				return nil, nil, err
			}
			in.appParam = enc.Wire{buf}
			appParamTLVEnd = sub.Pos()
			haveAppParam = true
		case tlvInterestSignatureInfo:
			buf, err := sub.ReadBuf(int(flen))
			if err != nil {
				return nil, nil, err
			}
			sigType, _, err := readSignatureInfo(buf)
			if err != nil {
				return nil, nil, err
			}
			in.sig = sigValue{sigType: sigType}
			sigInfoEnd = sub.Pos()
			haveSigInfo = true
		case tlvInterestSignatureValue:
			buf, err := sub.ReadBuf(int(flen))
			if err != nil {
				return nil, nil, err
			}
			in.sig = sigValue{sigType: in.sig.sigType, value: buf}
			sigValueEnd = sub.Pos()
			haveSigValue = true
		default:
			if _, err := sub.ReadBuf(int(flen)); err != nil {
				return nil, nil, err
			}
		}
	}

	if in.name == nil {
		return nil, nil, enc.ErrSkipRequired{Name: "Name", TypeNum: tlvName}
	}

	if haveAppParam && in.name.At(-1).Typ == enc.TypeParametersSha256DigestComponent {
		digestEnd := appParamTLVEnd
		if haveSigInfo {
			digestEnd = sigInfoEnd
		}
		if haveSigValue {
			digestEnd = sigValueEnd
		}
		nameWire := sub.Range(nameNoDigestStart, nameNoDigestEnd)
		paramsWire := sub.Range(appParamTLVStart, digestEnd)
		digestInput := append(enc.Wire{}, nameWire...)
		digestInput = append(digestInput, paramsWire...)
		sum := sha256.Sum256(digestInput.Join())
		if !bytes.Equal(sum[:], in.name.At(-1).Val) {
			return nil, nil, enc.ErrIncorrectDigest
		}
	}

	var covered enc.Wire
	if haveAppParam {
		end := appParamTLVEnd
		if haveSigInfo {
			end = sigInfoEnd
		}
		nameWire := sub.Range(nameNoDigestStart, nameNoDigestEnd)
		paramsWire := sub.Range(appParamTLVStart, end)
		covered = append(enc.Wire{}, nameWire...)
		covered = append(covered, paramsWire...)
	}

	return in, covered, nil
}

// tlvHeaderLen returns the combined byte length of the Type and Length
// fields that would precede a value of size valueLen for typ.
func tlvHeaderLen(typ TLNum, valueLen int) int {
	return typ.EncodingLength() + TLNum(valueLen).EncodingLength()
}
