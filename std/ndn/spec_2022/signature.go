package spec_2022

import (
	enc "github.com/named-data/ndnd-client/std/encoding"
	"github.com/named-data/ndnd-client/std/ndn"
)

// sigValue implements ndn.Signature over a decoded SignatureInfo/Value pair.
// noSignature (sigType == ndn.SignatureNone) represents a packet that
// carried no SignatureInfo at all.
type sigValue struct {
	sigType ndn.SigType
	value   []byte
}

func (s sigValue) SigType() ndn.SigType {
	return s.sigType
}

func (s sigValue) SigValue() []byte {
	return s.value
}

var noSignature = sigValue{sigType: ndn.SignatureNone}

// buildSignatureInfo encodes the inner content of a SignatureInfo (or
// InterestSignatureInfo) block: SignatureType, and KeyLocator if signer
// supplies one.
func buildSignatureInfo(signer ndn.Signer) []byte {
	var value []byte
	value = appendTLV(value, tlvSignatureType, enc.Nat(signer.Type()).Bytes())

	if kl := signer.KeyLocator(); kl != nil {
		nameBytes := kl.BytesInner()
		klValue := appendTLV(nil, tlvName, nameBytes)
		value = appendTLV(value, tlvKeyLocator, klValue)
	}

	return value
}

// readSignatureInfo parses the inner content of a SignatureInfo (or
// InterestSignatureInfo) block, returning the signature type and key
// locator name (nil if absent).
func readSignatureInfo(value []byte) (ndn.SigType, enc.Name, error) {
	r := enc.NewBufferView(value)

	var sigType ndn.SigType
	haveType := false
	var keyLocator enc.Name

	for !r.IsEOF() {
		typ, err := r.ReadTLNum()
		if err != nil {
			return 0, nil, err
		}
		l, err := r.ReadTLNum()
		if err != nil {
			return 0, nil, err
		}
		buf, err := r.ReadBuf(int(l))
		if err != nil {
			return 0, nil, err
		}

		switch typ {
		case tlvSignatureType:
			n, _, err := enc.ParseNat(buf)
			if err != nil {
				return 0, nil, err
			}
			sigType = ndn.SigType(n)
			haveType = true
		case tlvKeyLocator:
			klr := enc.NewBufferView(buf)
			nameTyp, err := klr.ReadTLNum()
			if err != nil {
				return 0, nil, err
			}
			nameLen, err := klr.ReadTLNum()
			if err != nil {
				return 0, nil, err
			}
			if nameTyp == tlvName {
				sub := klr.Delegate(int(nameLen))
				if name, err := sub.ReadName(); err == nil {
					keyLocator = name
				}
			}
		}
	}

	if !haveType {
		return 0, nil, enc.ErrSkipRequired{Name: "SignatureType", TypeNum: tlvSignatureType}
	}
	return sigType, keyLocator, nil
}
