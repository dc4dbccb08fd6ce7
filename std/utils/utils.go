package utils

import (
	"encoding/binary"
	"time"
	"unsafe"

	"github.com/named-data/ndnd-client/std/types/optional"
)

// IdPtr returns a pointer to a copy of v. Useful for populating pointer
// fields (e.g. HopLimit) from a literal without a separate local variable.
func IdPtr[T any](v T) *T {
	return &v
}

// MakeTimestamp converts t to milliseconds since the Unix epoch, the form
// used by NDN version and segment naming conventions.
func MakeTimestamp(t time.Time) uint64 {
	return uint64(t.UnixMilli())
}

// ConvertNonce converts a 4-byte big-endian Interest nonce into a uint32.
// Returns an empty Optional if b does not contain exactly 4 bytes.
func ConvertNonce(b []byte) optional.Optional[uint32] {
	if len(b) != 4 {
		return optional.None[uint32]()
	}
	return optional.Some(binary.BigEndian.Uint32(b))
}

// HeaderEqual reports whether a and b share the same underlying array, the
// same length, and the same capacity - i.e. whether they are the exact same
// slice header, not merely slices with equal contents.
func HeaderEqual[T any](a, b []T) bool {
	if len(a) != len(b) || cap(a) != cap(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return unsafe.Pointer(&a[:1][0]) == unsafe.Pointer(&b[:1][0])
}
