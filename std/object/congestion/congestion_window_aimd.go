package congestion

import "math"

// MinSsthresh is the floor applied to the slow-start threshold after a
// multiplicative decrease, matching RFC 5681 Section 3.1.
const MinSsthresh = 2.0

// AimdCongestionWindowOptions configures an AimdCongestionWindow.
type AimdCongestionWindowOptions struct {
	InitCwnd       float64 // initial window size
	InitSsthresh   float64 // initial slow-start threshold; defaults to math.MaxFloat64 if zero
	AiStep         float64 // additive increase step, in segments
	MdCoef         float64 // multiplicative decrease coefficient, in [0, 1]
	ResetCwndToInit bool   // reduce cwnd to InitCwnd (rather than to ssthresh) on decrease
}

// DefaultAimdCongestionWindowOptions returns the ndn-cxx SegmentFetcher
// defaults.
func DefaultAimdCongestionWindowOptions() AimdCongestionWindowOptions {
	return AimdCongestionWindowOptions{
		InitCwnd:     1.0,
		InitSsthresh: math.MaxFloat64,
		AiStep:       1.0,
		MdCoef:       0.5,
	}
}

// AimdCongestionWindow is a TCP NewReno-style additive-increase/
// multiplicative-decrease congestion window: it grows by AiStep segments
// per round while below its slow-start threshold, by AiStep/cwnd segments
// once in congestion avoidance, and halves (by MdCoef) on a decrease event.
type AimdCongestionWindow struct {
	opts     AimdCongestionWindowOptions
	cwnd     float64
	ssthresh float64
}

// NewAimdCongestionWindow constructs an AimdCongestionWindow.
func NewAimdCongestionWindow(opts AimdCongestionWindowOptions) *AimdCongestionWindow {
	if opts.InitSsthresh == 0 {
		opts.InitSsthresh = math.MaxFloat64
	}
	return &AimdCongestionWindow{
		opts:     opts,
		cwnd:     opts.InitCwnd,
		ssthresh: opts.InitSsthresh,
	}
}

func (cw *AimdCongestionWindow) String() string {
	return "aimd-congestion-window"
}

// Size returns the window size truncated to an integer, matching how
// ndn-cxx's SegmentFetcher computes its available window as
// int64_t(cwnd) - nSegmentsInFlight.
func (cw *AimdCongestionWindow) Size() int {
	return int(cw.cwnd)
}

// CwndFloat returns the exact (fractional) window size, needed since the
// AIMD update equations operate on the fractional value, not its
// truncation.
func (cw *AimdCongestionWindow) CwndFloat() float64 {
	return cw.cwnd
}

// Ssthresh returns the current slow-start threshold.
func (cw *AimdCongestionWindow) Ssthresh() float64 {
	return cw.ssthresh
}

func (cw *AimdCongestionWindow) IncreaseWindow() {
	if cw.cwnd < cw.ssthresh {
		cw.cwnd += cw.opts.AiStep
	} else {
		cw.cwnd += cw.opts.AiStep / math.Floor(cw.cwnd)
	}
}

func (cw *AimdCongestionWindow) DecreaseWindow() {
	cw.ssthresh = math.Max(MinSsthresh, cw.cwnd*cw.opts.MdCoef)
	if cw.opts.ResetCwndToInit {
		cw.cwnd = cw.opts.InitCwnd
	} else {
		cw.cwnd = cw.ssthresh
	}
}

func (cw *AimdCongestionWindow) HandleSignal(signal CongestionSignal) {
	switch signal {
	case CongestionSignalMark, CongestionSignalLoss:
		cw.DecreaseWindow()
	default:
		cw.IncreaseWindow()
	}
}
