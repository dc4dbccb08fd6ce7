// Package fetch retrieves a versioned, segmented object named
// /<prefix>/<version>/<segment> one congestion-window's worth of Interests
// at a time, pacing its window with an AIMD congestion control scheme and
// an RTT-adaptive per-segment timeout.
package fetch

import (
	"time"

	enc "github.com/named-data/ndnd-client/std/encoding"
	"github.com/named-data/ndnd-client/std/ndn"
	spec "github.com/named-data/ndnd-client/std/ndn/spec_2022"
	"github.com/named-data/ndnd-client/std/object/congestion"
	"github.com/named-data/ndnd-client/std/types/optional"

	"github.com/named-data/ndnd-client/face"
)

// Options configures a fetch. The zero value is not usable; start from
// DefaultOptions.
type Options struct {
	InterestLifetime           time.Duration
	MaxTimeout                 time.Duration
	ProbeLatestVersion         bool
	InOrder                    bool
	UseConstantInterestTimeout bool
	IgnoreCongMarks            bool
	FlowControlWindow          int

	Rtt   RttEstimatorOptions
	Cwnd  congestion.AimdCongestionWindowOptions
	UseConstantCwnd bool

	// OnComplete is called once with the reassembled object, in 'block'
	// mode (InOrder == false).
	OnComplete func(data []byte)
	// OnInOrderData is called once per segment, in order, in 'in order'
	// mode (InOrder == true).
	OnInOrderData func(segNum uint64, data []byte)
	// OnError is called at most once, in either mode, if the fetch could
	// not be completed.
	OnError func(code ndn.FetchErrorCode, msg string)
	// AfterSegmentValidated is called after each segment passes validation,
	// in both modes, in addition to OnComplete/OnInOrderData.
	AfterSegmentValidated func(data ndn.Data)
}

// DefaultOptions returns the ndn-cxx SegmentFetcher defaults.
func DefaultOptions() Options {
	return Options{
		InterestLifetime:  4 * time.Second,
		MaxTimeout:        60 * time.Second,
		ProbeLatestVersion: true,
		FlowControlWindow: 25000,
		Rtt:               DefaultRttEstimatorOptions(),
		Cwnd:              congestion.DefaultAimdCongestionWindowOptions(),
	}
}

type segmentState int

const (
	segmentStateFirstInterest segmentState = iota
	segmentStateInRetxQueue
	segmentStateRetransmitted
)

type pendingSegment struct {
	state        segmentState
	sendTime     time.Time
	timeoutEvent face.ScopedEventId
}

// Fetcher drives one object retrieval. Construct with Start.
type Fetcher struct {
	engine    ndn.Engine
	validator ndn.SigChecker
	opts      Options
	rtt       *RttEstimator
	cwnd      congestion.CongestionWindow
	scheduler *face.Scheduler

	name         enc.Name // caller-supplied prefix, before version is known
	versionName  enc.Name // prefix through version, once discovered

	nextSegmentNum    uint64
	nSegments         int64 // -1 until a FinalBlockId is seen
	nSegmentsInFlight int
	highInterest      uint64
	highData          uint64
	recPoint          uint64
	nReceived         int64

	timeLastSegmentReceived time.Time

	pending  map[uint64]*pendingSegment
	received map[uint64][]byte
	retxQueue []uint64

	// deliveredUpTo is the next segment number deliverInOrder is waiting
	// for, used only in 'in order' mode.
	deliveredUpTo uint64

	stopped bool
}

// Start begins fetching name (a prefix, optionally already carrying a
// version component). validator is consulted for every received segment;
// a segment it rejects fails the fetch with FetchErrorSegmentValidationFail.
func Start(engine ndn.Engine, name enc.Name, validator ndn.SigChecker, opts Options) *Fetcher {
	f := &Fetcher{
		engine:    engine,
		validator: validator,
		opts:      opts,
		rtt:       NewRttEstimator(opts.Rtt),
		scheduler: face.NewScheduler(engine.Timer()),
		name:      name,
		nSegments: -1,
		pending:   make(map[uint64]*pendingSegment),
		received:  make(map[uint64][]byte),
	}
	if opts.UseConstantCwnd {
		f.cwnd = congestion.NewFixedCongestionWindow(int(opts.Cwnd.InitCwnd))
	} else {
		f.cwnd = congestion.NewAimdCongestionWindow(opts.Cwnd)
	}
	f.timeLastSegmentReceived = engine.Timer().Now()
	f.fetchFirstSegment(false)
	return f
}

// Stop cancels every outstanding Interest for this fetch. Neither
// OnComplete nor OnError is invoked afterward.
func (f *Fetcher) Stop() {
	if f.stopped {
		return
	}
	f.stopped = true
	for _, p := range f.pending {
		p.timeoutEvent.Cancel()
	}
	f.pending = nil
}

func (f *Fetcher) fetchFirstSegment(isRetransmission bool) {
	cfg := &ndn.InterestConfig{
		CanBePrefix: true,
		MustBeFresh: f.opts.ProbeLatestVersion,
		Lifetime:    optional.Some(f.opts.InterestLifetime),
	}
	f.sendInterest(0, f.name, cfg, isRetransmission)
}

func (f *Fetcher) fetchSegmentsInWindow() {
	if f.checkAllSegmentsReceived() {
		f.finalize()
		return
	}

	available := f.cwnd.Size() - f.nSegmentsInFlight
	if room := f.opts.FlowControlWindow - (len(f.received) + f.nSegmentsInFlight); f.opts.FlowControlWindow > 0 && room < available {
		available = room
	}

	type req struct {
		seg   uint64
		retx  bool
	}
	var toRequest []req

	for available > 0 {
		if len(f.retxQueue) > 0 {
			seg := f.retxQueue[0]
			f.retxQueue = f.retxQueue[1:]
			if _, ok := f.pending[seg]; !ok {
				// already satisfied after its RTO fired; skip
				continue
			}
			toRequest = append(toRequest, req{seg, true})
		} else if f.nSegments < 0 || f.nextSegmentNum < uint64(f.nSegments) {
			if _, ok := f.received[f.nextSegmentNum]; ok {
				f.nextSegmentNum++
				continue
			}
			toRequest = append(toRequest, req{f.nextSegmentNum, false})
			f.nextSegmentNum++
		} else {
			break
		}
		available--
	}

	for _, r := range toRequest {
		cfg := &ndn.InterestConfig{
			CanBePrefix: false,
			MustBeFresh: false,
			Lifetime:    optional.Some(f.opts.InterestLifetime),
		}
		name := f.versionName.Append(enc.NewSegmentComponent(r.seg))
		f.sendInterest(r.seg, name, cfg, r.retx)
	}
}

func (f *Fetcher) sendInterest(segNum uint64, name enc.Name, cfg *ndn.InterestConfig, isRetransmission bool) {
	interest, err := spec.Spec{}.MakeInterest(name, cfg, nil, nil)
	if err != nil {
		f.signalError(ndn.FetchErrorDataHasNoSegment, err.Error())
		return
	}

	f.nSegmentsInFlight++
	sendTime := f.engine.Timer().Now()

	err = f.engine.Express(interest.FinalName, interest.Wire, cfg, func(args ndn.ExpressCallbackArgs) {
		switch args.Result {
		case ndn.InterestResultData:
			f.afterSegmentReceived(segNum, args)
		case ndn.InterestResultNack:
			f.afterNack(segNum, args.NackReason)
		case ndn.InterestResultTimeout:
			f.afterTimeout(segNum)
		default:
			f.signalError(ndn.FetchErrorDataHasNoSegment, "unexpected Interest result")
		}
	})
	if err != nil {
		f.signalError(ndn.FetchErrorDataHasNoSegment, err.Error())
		return
	}

	timeout := f.opts.MaxTimeout
	if !f.opts.UseConstantInterestTimeout {
		timeout = f.rtt.GetEstimatedRto()
	}

	if isRetransmission {
		if p, ok := f.pending[segNum]; ok {
			p.state = segmentStateRetransmitted
			p.timeoutEvent.Reschedule(f.scheduler.Schedule(timeout, func() { f.afterSegmentTimedOut(segNum) }))
		}
		return
	}

	p := &pendingSegment{state: segmentStateFirstInterest, sendTime: sendTime}
	p.timeoutEvent.Reschedule(f.scheduler.Schedule(timeout, func() { f.afterSegmentTimedOut(segNum) }))
	f.pending[segNum] = p
	f.highInterest = segNum
}

func (f *Fetcher) afterSegmentReceived(requestedSeg uint64, args ndn.ExpressCallbackArgs) {
	if f.stopped {
		return
	}
	f.nSegmentsInFlight--

	data := args.Data
	name := data.Name()
	last := name[len(name)-1]
	if !last.IsSegment() {
		f.signalError(ndn.FetchErrorDataHasNoSegment, "Data name has no segment number")
		return
	}
	segNum := last.NumberVal()

	p, ok := f.pending[segNum]
	if !ok {
		if len(f.received) == 0 {
			// The discovery Interest may be answered with any segment.
			for k, v := range f.pending {
				segNum, p = k, v
				break
			}
		}
		if p == nil {
			return
		}
	}
	p.timeoutEvent.Cancel()

	if f.validator != nil && !f.validator(name, args.SigCovered, data.Signature()) {
		f.signalError(ndn.FetchErrorSegmentValidationFail, "segment validation failed")
		return
	}

	f.timeLastSegmentReceived = f.engine.Timer().Now()
	f.nReceived++

	if p.state == segmentStateFirstInterest {
		f.rtt.AddMeasurement(f.engine.Timer().Now().Sub(p.sendTime), max(f.nSegmentsInFlight+1, 1), optional.Some(segNum))
	}
	delete(f.pending, segNum)

	f.received[segNum] = data.Content().Join()
	if f.opts.AfterSegmentValidated != nil {
		f.opts.AfterSegmentValidated(data)
	}

	if final, ok := data.FinalBlockID().Get(); ok {
		if !final.IsSegment() {
			f.signalError(ndn.FetchErrorFinalBlockIdNotSegment, "FinalBlockId is not a segment")
			return
		}
		if n := int64(final.NumberVal()) + 1; n != f.nSegments {
			f.nSegments = n
			f.cancelExcessInFlightSegments()
		}
	}

	if len(f.received) == 1 {
		f.versionName = name[:len(name)-1]
		if segNum == 0 {
			f.nextSegmentNum++
		}
	}

	if segNum > f.highData {
		f.highData = segNum
	}

	if f.hasCongestionMark(data) && !f.opts.IgnoreCongMarks {
		f.windowDecrease()
	} else {
		f.cwnd.HandleSignal(congestion.CongestionSignalNone)
	}

	f.deliverInOrder()
	f.fetchSegmentsInWindow()
}

// hasCongestionMark is a hook for a transport that surfaces NDNLPv2
// congestion marks on the Data callback; none of the Engine
// implementations currently expose one, so this always reports false.
func (f *Fetcher) hasCongestionMark(ndn.Data) bool {
	return false
}

func (f *Fetcher) deliverInOrder() {
	if !f.opts.InOrder || f.opts.OnInOrderData == nil {
		return
	}
	for {
		content, ok := f.received[f.highDelivered()]
		if !ok {
			return
		}
		seg := f.highDelivered()
		delete(f.received, seg)
		f.opts.OnInOrderData(seg, content)
		f.deliveredUpTo++
	}
}

func (f *Fetcher) highDelivered() uint64 {
	return f.deliveredUpTo
}

func (f *Fetcher) afterNack(segNum uint64, reason ndn.NackReason) {
	if f.stopped {
		return
	}
	f.nSegmentsInFlight--
	switch reason {
	case ndn.NackReasonDuplicate, ndn.NackReasonCongestion:
		f.afterNackOrTimeout(segNum)
	default:
		f.signalError(ndn.FetchErrorNack, "unrecoverable Nack received: "+reason.String())
	}
}

func (f *Fetcher) afterTimeout(segNum uint64) {
	f.afterSegmentTimedOut(segNum)
}

func (f *Fetcher) afterSegmentTimedOut(segNum uint64) {
	if f.stopped {
		return
	}
	if _, ok := f.pending[segNum]; !ok {
		return
	}
	f.nSegmentsInFlight--
	f.afterNackOrTimeout(segNum)
}

func (f *Fetcher) afterNackOrTimeout(segNum uint64) {
	if f.engine.Timer().Now().Sub(f.timeLastSegmentReceived) >= f.opts.MaxTimeout {
		f.signalError(ndn.FetchErrorInterestTimeout, "timeout exceeded")
		return
	}

	p, ok := f.pending[segNum]
	if !ok {
		return
	}
	p.timeoutEvent.Cancel()
	p.state = segmentStateInRetxQueue

	f.rtt.BackoffRto()

	if len(f.received) == 0 {
		f.fetchFirstSegment(true)
		return
	}

	f.windowDecrease()
	f.retxQueue = append(f.retxQueue, segNum)
	f.fetchSegmentsInWindow()
}

func (f *Fetcher) windowDecrease() {
	if f.opts.UseConstantCwnd {
		return
	}
	if f.highData <= f.recPoint {
		return
	}
	f.recPoint = f.highInterest
	f.cwnd.HandleSignal(congestion.CongestionSignalMark)
}

func (f *Fetcher) cancelExcessInFlightSegments() {
	for seg, p := range f.pending {
		if int64(seg) >= f.nSegments {
			p.timeoutEvent.Cancel()
			delete(f.pending, seg)
			f.nSegmentsInFlight--
		}
	}
}

func (f *Fetcher) checkAllSegmentsReceived() bool {
	if f.nSegments < 0 || f.nReceived < f.nSegments {
		return false
	}
	complete := true
	for i := int64(0); i < f.nSegments; i++ {
		if _, ok := f.received[uint64(i)]; !ok {
			f.retxQueue = append(f.retxQueue, uint64(i))
			complete = false
		}
	}
	return complete
}

func (f *Fetcher) finalize() {
	if f.opts.InOrder {
		f.stopped = true
		return
	}
	buf := make([]byte, 0, len(f.received)*1024)
	for i := int64(0); i < f.nSegments; i++ {
		buf = append(buf, f.received[uint64(i)]...)
	}
	if f.opts.OnComplete != nil {
		f.opts.OnComplete(buf)
	}
	f.Stop()
}

func (f *Fetcher) signalError(code ndn.FetchErrorCode, msg string) {
	if f.opts.OnError != nil {
		f.opts.OnError(code, msg)
	}
	f.Stop()
}
