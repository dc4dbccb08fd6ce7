package basic

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/named-data/ndnd-client/std/ndn"
)

// Timer is the production ndn.Timer, backed by the real wall clock and
// the runtime's own timer wheel.
type Timer struct{}

// NewTimer constructs a Timer.
func NewTimer() ndn.Timer {
	return Timer{}
}

func (Timer) Sleep(d time.Duration) {
	time.Sleep(d)
}

// Schedule runs f after d elapses. The returned cancel func stops f from
// running if it hasn't yet, and returns an error on a second call.
func (Timer) Schedule(d time.Duration, f func()) func() error {
	t := time.AfterFunc(d, f)
	return func() error {
		if t != nil {
			t.Stop()
			t = nil
			return nil
		}
		return fmt.Errorf("event has already been canceled")
	}
}

func (Timer) Now() time.Time {
	return time.Now()
}

// Nonce returns 8 cryptographically random bytes, used for Interest
// nonces and command-Interest freshness.
func (Timer) Nonce() []byte {
	buf := make([]byte, 8)
	n, _ := rand.Read(buf)
	return buf[:n]
}
