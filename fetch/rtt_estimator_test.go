package fetch_test

import (
	"testing"
	"time"

	"github.com/named-data/ndnd-client/fetch"
	"github.com/named-data/ndnd-client/std/types/optional"
	tu "github.com/named-data/ndnd-client/std/utils/testutils"
	"github.com/stretchr/testify/require"
)

func TestRttEstimatorInitialRto(t *testing.T) {
	tu.SetT(t)

	opts := fetch.DefaultRttEstimatorOptions()
	e := fetch.NewRttEstimator(opts)
	require.Equal(t, opts.InitialRto, e.GetEstimatedRto(), "before any sample, RTO must be the configured initial value")
}

func TestRttEstimatorFirstSampleSeedsSRtt(t *testing.T) {
	tu.SetT(t)

	opts := fetch.DefaultRttEstimatorOptions()
	e := fetch.NewRttEstimator(opts)

	rtt := 100 * time.Millisecond
	e.AddMeasurement(rtt, 1, optional.None[uint64]())

	// RFC 6298: on the first sample, RTTVAR = R/2 and RTO = SRTT + 4*RTTVAR,
	// i.e. RTO = R + 4*(R/2) = 3R.
	require.Equal(t, 3*rtt, e.GetEstimatedRto())
	require.Equal(t, rtt, e.GetMinRtt())
	require.Equal(t, rtt, e.GetMaxRtt())
	require.Equal(t, rtt, e.GetAvgRtt())
}

func TestRttEstimatorConvergesTowardsStableRtt(t *testing.T) {
	tu.SetT(t)

	opts := fetch.DefaultRttEstimatorOptions()
	e := fetch.NewRttEstimator(opts)

	rtt := 300 * time.Millisecond
	for i := 0; i < 50; i++ {
		e.AddMeasurement(rtt, 1, optional.None[uint64]())
	}

	// Once the estimator has converged on a constant RTT, RTTVAR collapses
	// towards zero and RTO converges towards SRTT, clamped to MinRto.
	rto := e.GetEstimatedRto()
	require.GreaterOrEqual(t, rto, opts.MinRto)
	require.InDelta(t, float64(rtt), float64(rto), float64(5*time.Millisecond))
}

func TestRttEstimatorBackoffRtoDoublesAndClampsToMax(t *testing.T) {
	tu.SetT(t)

	opts := fetch.DefaultRttEstimatorOptions()
	opts.MaxRto = 2 * opts.InitialRto
	e := fetch.NewRttEstimator(opts)

	before := e.GetEstimatedRto()
	e.BackoffRto()
	require.Equal(t, before*time.Duration(opts.RtoBackoffMultiplier), e.GetEstimatedRto())

	e.BackoffRto()
	require.Equal(t, opts.MaxRto, e.GetEstimatedRto(), "backoff must clamp at MaxRto")
}

func TestRttEstimatorMinMaxTrackExtremes(t *testing.T) {
	tu.SetT(t)

	opts := fetch.DefaultRttEstimatorOptions()
	e := fetch.NewRttEstimator(opts)

	e.AddMeasurement(80*time.Millisecond, 1, optional.None[uint64]())
	e.AddMeasurement(20*time.Millisecond, 1, optional.None[uint64]())
	e.AddMeasurement(120*time.Millisecond, 1, optional.None[uint64]())

	require.Equal(t, 20*time.Millisecond, e.GetMinRtt())
	require.Equal(t, 120*time.Millisecond, e.GetMaxRtt())
}
