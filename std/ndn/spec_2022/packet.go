// Package spec_2022 implements the 2022 revision of the NDN packet format
// (Interest/Data v0.3, signed Interest parameters digest, NDNLPv2 framing)
// as a pure encode/decode layer with no I/O of its own.
package spec_2022

import (
	enc "github.com/named-data/ndnd-client/std/encoding"
)

// Spec implements packet encoding and decoding for the 2022 wire format.
// It carries no state; all its methods are pure functions of their inputs.
type Spec struct{}

const (
	tlvInterest TLNum = 0x05
	tlvData     TLNum = 0x06

	tlvName = enc.TypeName

	tlvCanBePrefix           TLNum = 0x21
	tlvMustBeFresh           TLNum = 0x12
	tlvForwardingHint        TLNum = 0x1e
	tlvNonce                 TLNum = 0x0a
	tlvInterestLifetime      TLNum = 0x0c
	tlvHopLimit              TLNum = 0x22
	tlvApplicationParameters TLNum = 0x24
	tlvInterestSignatureInfo TLNum = 0x2c
	tlvInterestSignatureValue TLNum = 0x2e

	tlvMetaInfo       TLNum = 0x14
	tlvContent        TLNum = 0x15
	tlvSignatureInfo  TLNum = 0x16
	tlvSignatureValue TLNum = 0x17
	tlvContentType    TLNum = 0x18
	tlvFreshnessPeriod TLNum = 0x19
	tlvFinalBlockId   TLNum = 0x1a

	tlvSignatureType TLNum = 0x1b
	tlvKeyLocator    TLNum = 0x1c
)

// TLNum is a local alias so the constant block above reads naturally; it is
// the exact same type as enc.TLNum.
type TLNum = enc.TLNum

// appendTLV appends a Type-Length-Value block to dst, using the NDN TLV
// variable-size encoding for both Type and Length.
func appendTLV(dst []byte, typ TLNum, value []byte) []byte {
	var hdr [9]byte
	n := typ.EncodeInto(hdr[:])
	dst = append(dst, hdr[:n]...)
	n = TLNum(len(value)).EncodeInto(hdr[:])
	dst = append(dst, hdr[:n]...)
	return append(dst, value...)
}
