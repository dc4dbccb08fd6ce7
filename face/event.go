package face

import (
	"time"

	"github.com/named-data/ndnd-client/std/ndn"
)

// EventId is a handle to a scheduled event. Cancel has no effect if the
// event has already fired or been cancelled.
type EventId struct {
	cancel func() error
}

// Cancel cancels the scheduled event, if it has not already fired.
func (e EventId) Cancel() {
	if e.cancel != nil {
		e.cancel()
	}
}

// Valid reports whether e refers to a real (possibly already-fired) event,
// as opposed to the zero EventId.
func (e EventId) Valid() bool {
	return e.cancel != nil
}

// ScopedEventId cancels its event automatically the first time Cancel, or
// Reschedule with a new event, replaces the one it currently holds. The
// zero-value form is usable directly: a Face stores one per record so the
// record's own lifetime bounds how long its event stays live, without
// requiring an explicit destructor.
type ScopedEventId struct {
	event EventId
}

// Reschedule cancels any event currently held and replaces it with event.
func (s *ScopedEventId) Reschedule(event EventId) {
	s.event.Cancel()
	s.event = event
}

// Cancel cancels the held event and clears it.
func (s *ScopedEventId) Cancel() {
	s.event.Cancel()
	s.event = EventId{}
}

// Scheduler schedules one-shot callbacks on top of an ndn.Timer, handing
// back an EventId/ScopedEventId instead of the timer's bare cancel
// function so callers can compose cancellation with record lifetimes.
type Scheduler struct {
	timer ndn.Timer
}

// NewScheduler constructs a Scheduler driven by timer.
func NewScheduler(timer ndn.Timer) *Scheduler {
	return &Scheduler{timer: timer}
}

// Schedule runs f after d elapses, returning an EventId that cancels it.
func (s *Scheduler) Schedule(d time.Duration, f func()) EventId {
	return EventId{cancel: s.timer.Schedule(d, f)}
}
