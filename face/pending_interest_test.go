package face_test

import (
	"testing"

	"github.com/named-data/ndnd-client/face"
	"github.com/named-data/ndnd-client/std/ndn"
	tu "github.com/named-data/ndnd-client/std/utils/testutils"
	"github.com/stretchr/testify/require"
)

func TestPendingInterestRecordNackAggregation(t *testing.T) {
	tu.SetT(t)

	c := face.NewRecordContainer[face.PendingInterestRecord]()
	id := c.Insert(face.PendingInterestRecord{})
	rec := c.Get(id)

	rec.RecordForwarding()
	rec.RecordForwarding()
	rec.RecordForwarding()

	_, done := rec.RecordNack(ndn.NackReasonCongestion)
	require.False(t, done, "must not resolve until every forwarded destination has nacked")

	_, done = rec.RecordNack(ndn.NackReasonDuplicate)
	require.False(t, done)

	reason, done := rec.RecordNack(ndn.NackReasonNoRoute)
	require.True(t, done)
	require.Equal(t, ndn.NackReasonCongestion, reason, "least-severe reason must win")
}

func TestPendingInterestRecordCallbacksAreOptional(t *testing.T) {
	tu.SetT(t)

	rec := &face.PendingInterestRecord{}
	require.NotPanics(t, func() {
		rec.InvokeDataCallback(ndn.ExpressCallbackArgs{Result: ndn.InterestResultData})
		rec.InvokeNackCallback(ndn.NackReasonCongestion)
		rec.InvokeTimeoutCallback()
	})
}
