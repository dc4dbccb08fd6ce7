package face

import (
	"time"

	enc "github.com/named-data/ndnd-client/std/encoding"
	"github.com/named-data/ndnd-client/std/ndn"
)

// PendingInterestOrigin distinguishes an Interest the application itself
// expressed from one the Face received from the forwarder and is
// forwarding to local Interest filters.
type PendingInterestOrigin int

const (
	// PendingInterestOriginApp is an Interest from Face.ExpressInterest.
	PendingInterestOriginApp PendingInterestOrigin = iota
	// PendingInterestOriginForwarder is an Interest received from the
	// forwarder and dispatched to matching InterestFilterRecords.
	PendingInterestOriginForwarder
)

// PendingInterestRecord tracks one outstanding Interest: its wire form
// (for matching an incoming ImplicitSha256DigestComponent), the callback
// to resolve (for app-originated records), and how many destinations it
// was forwarded to, so a Nack is only delivered once every destination
// has Nacked it (mirrors NFD's own Nack-aggregation rule).
type PendingInterestRecord struct {
	Interest    ndn.Interest
	FinalName   enc.Name
	Wire        enc.Wire
	CanBePrefix bool
	Origin      PendingInterestOrigin
	Deadline    time.Time

	callback      ndn.ExpressCallbackFunc
	timeoutEvent  ScopedEventId
	nNotNacked    int
	leastSevere   ndn.NackReason
	haveNack      bool
}

// RecordForwarding marks that the Interest was forwarded to one more
// destination (a local Interest filter, or the network), so a later Nack
// must be seen from every recorded destination before it is delivered.
func (p *PendingInterestRecord) RecordForwarding() {
	p.nNotNacked++
}

// RecordNack records an incoming Nack against one destination. It returns
// the least-severe Nack reason seen so far, and true, once every recorded
// destination has Nacked; otherwise it returns false and the record
// should keep waiting.
func (p *PendingInterestRecord) RecordNack(reason ndn.NackReason) (ndn.NackReason, bool) {
	p.nNotNacked--
	if !p.haveNack || reason.Severity() < p.leastSevere.Severity() {
		p.leastSevere = reason
		p.haveNack = true
	}
	if p.nNotNacked > 0 {
		return ndn.NackReasonNone, false
	}
	return p.leastSevere, true
}

// InvokeDataCallback invokes the app's resolution callback with a Data
// result. A no-op for forwarder-origin records, which have no callback.
func (p *PendingInterestRecord) InvokeDataCallback(args ndn.ExpressCallbackArgs) {
	if p.callback != nil {
		p.callback(args)
	}
}

// InvokeNackCallback invokes the app's resolution callback with a Nack
// result. A no-op for forwarder-origin records.
func (p *PendingInterestRecord) InvokeNackCallback(reason ndn.NackReason) {
	if p.callback != nil {
		p.callback(ndn.ExpressCallbackArgs{Result: ndn.InterestResultNack, NackReason: reason})
	}
}

// InvokeTimeoutCallback invokes the app's resolution callback with a
// timeout result. A no-op for forwarder-origin records.
func (p *PendingInterestRecord) InvokeTimeoutCallback() {
	if p.callback != nil {
		p.callback(ndn.ExpressCallbackArgs{Result: ndn.InterestResultTimeout})
	}
}
