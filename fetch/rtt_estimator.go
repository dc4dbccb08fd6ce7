package fetch

import (
	"time"

	"github.com/named-data/ndnd-client/std/types/optional"
)

// RttEstimatorOptions configures an RttEstimator. The zero value is not
// usable; construct with DefaultRttEstimatorOptions and override fields as
// needed.
type RttEstimatorOptions struct {
	Alpha                float64       // weight of the smoothed-RTT moving average
	Beta                 float64       // weight of the RTT-variation moving average
	InitialRto           time.Duration // RTO used before any measurement exists
	MinRto               time.Duration // lower clamp for the computed RTO
	MaxRto               time.Duration // upper clamp for the computed RTO
	K                    int           // RTT-variation multiplier used in the RTO formula
	RtoBackoffMultiplier int           // multiplier applied by BackoffRto
}

// DefaultRttEstimatorOptions returns the RFC 6298 defaults.
func DefaultRttEstimatorOptions() RttEstimatorOptions {
	return RttEstimatorOptions{
		Alpha:                0.125,
		Beta:                 0.25,
		InitialRto:           1000 * time.Millisecond,
		MinRto:               200 * time.Millisecond,
		MaxRto:               60000 * time.Millisecond,
		K:                    4,
		RtoBackoffMultiplier: 2,
	}
}

// RttSample records one RTT measurement and the estimator state it produced.
type RttSample struct {
	Rtt    time.Duration
	SRtt   time.Duration
	RttVar time.Duration
	Rto    time.Duration
	SegNum optional.Optional[uint64]
}

// RttEstimator is a Mean-Deviation RTT/RTO estimator per RFC 6298, with the
// RFC 7323 Appendix G adjustment for averaging multiple in-flight samples
// per RTT (nExpectedSamples in AddMeasurement).
type RttEstimator struct {
	opts RttEstimatorOptions

	sRtt       time.Duration
	rttVar     time.Duration
	rto        time.Duration
	rttMin     time.Duration
	rttMax     time.Duration
	rttAvg     time.Duration
	nRttSamples int64

	// OnMeasurement, if set, is invoked after every AddMeasurement call with
	// the sample just recorded.
	OnMeasurement func(RttSample)
}

// NewRttEstimator constructs an estimator with the given options.
func NewRttEstimator(opts RttEstimatorOptions) *RttEstimator {
	return &RttEstimator{
		opts: opts,
		rto:  opts.InitialRto,
	}
}

// AddMeasurement records a new RTT sample. nExpectedSamples should be the
// number of Interests in flight when rtt was measured (RFC 7323 Appendix G);
// it must be greater than zero. Do not call this with RTT samples measured
// from a retransmitted Interest (Karn's algorithm) — the caller is
// responsible for that exclusion, since only it knows which Interest
// resolved a given segment.
func (e *RttEstimator) AddMeasurement(rtt time.Duration, nExpectedSamples int, segNum optional.Optional[uint64]) {
	if nExpectedSamples < 1 {
		nExpectedSamples = 1
	}

	if e.nRttSamples == 0 {
		e.sRtt = rtt
		e.rttVar = rtt / 2
	} else {
		alpha := e.opts.Alpha / float64(nExpectedSamples)
		beta := e.opts.Beta / float64(nExpectedSamples)

		diff := e.sRtt - rtt
		if diff < 0 {
			diff = -diff
		}
		e.rttVar = weightedDuration(1-beta, e.rttVar, beta, diff)
		e.sRtt = weightedDuration(1-alpha, e.sRtt, alpha, rtt)
	}

	e.rto = clampDuration(e.sRtt+time.Duration(e.opts.K)*e.rttVar, e.opts.MinRto, e.opts.MaxRto)

	e.nRttSamples++
	if e.nRttSamples == 1 || rtt < e.rttMin {
		e.rttMin = rtt
	}
	if rtt > e.rttMax {
		e.rttMax = rtt
	}
	e.rttAvg = e.rttAvg + (rtt-e.rttAvg)/time.Duration(e.nRttSamples)

	if e.OnMeasurement != nil {
		e.OnMeasurement(RttSample{Rtt: rtt, SRtt: e.sRtt, RttVar: e.rttVar, Rto: e.rto, SegNum: segNum})
	}
}

// GetEstimatedRto returns the current RTO estimate.
func (e *RttEstimator) GetEstimatedRto() time.Duration {
	return e.rto
}

// GetMinRtt returns the smallest RTT observed so far.
func (e *RttEstimator) GetMinRtt() time.Duration { return e.rttMin }

// GetMaxRtt returns the largest RTT observed so far.
func (e *RttEstimator) GetMaxRtt() time.Duration { return e.rttMax }

// GetAvgRtt returns the running average RTT.
func (e *RttEstimator) GetAvgRtt() time.Duration { return e.rttAvg }

// BackoffRto multiplies the current RTO by RtoBackoffMultiplier, clamped to
// MaxRto, for use after a retransmission timeout (classic Karn's algorithm
// exponential backoff).
func (e *RttEstimator) BackoffRto() {
	e.rto = clampDuration(e.rto*time.Duration(e.opts.RtoBackoffMultiplier), e.opts.MinRto, e.opts.MaxRto)
}

func weightedDuration(w1 float64, d1 time.Duration, w2 float64, d2 time.Duration) time.Duration {
	return time.Duration(w1*float64(d1) + w2*float64(d2))
}

func clampDuration(d, min, max time.Duration) time.Duration {
	if d < min {
		return min
	}
	if d > max {
		return max
	}
	return d
}
