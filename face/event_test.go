package face_test

import (
	"testing"
	"time"

	"github.com/named-data/ndnd-client/face"
	"github.com/named-data/ndnd-client/std/engine/basic"
	tu "github.com/named-data/ndnd-client/std/utils/testutils"
	"github.com/stretchr/testify/require"
)

func TestScopedEventIdCancelsPreviousOnReschedule(t *testing.T) {
	tu.SetT(t)

	timer := basic.NewTimer()
	sched := face.NewScheduler(timer)

	var firedA, firedB bool
	var scoped face.ScopedEventId

	scoped.Reschedule(sched.Schedule(5*time.Millisecond, func() { firedA = true }))
	scoped.Reschedule(sched.Schedule(5*time.Millisecond, func() { firedB = true }))

	time.Sleep(30 * time.Millisecond)

	require.False(t, firedA, "rescheduling must cancel the previously held event")
	require.True(t, firedB)
}

func TestScopedEventIdCancel(t *testing.T) {
	tu.SetT(t)

	timer := basic.NewTimer()
	sched := face.NewScheduler(timer)

	var fired bool
	var scoped face.ScopedEventId
	scoped.Reschedule(sched.Schedule(5*time.Millisecond, func() { fired = true }))
	scoped.Cancel()

	time.Sleep(20 * time.Millisecond)
	require.False(t, fired)
}

func TestEventIdZeroValueCancelIsNoop(t *testing.T) {
	tu.SetT(t)

	var id face.EventId
	require.False(t, id.Valid())
	require.NotPanics(t, func() { id.Cancel() })
}
