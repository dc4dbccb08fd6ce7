package congestion

// CongestionSignal classifies the event a CongestionWindow is asked to
// react to: whether a segment arrived cleanly, carrying a congestion mark,
// or was lost (timeout/retransmission).
type CongestionSignal int

const (
	// CongestionSignalNone reports a segment received with no congestion
	// mark: the normal case driving an additive increase.
	CongestionSignalNone CongestionSignal = iota
	// CongestionSignalMark reports a segment received with its congestion
	// mark set.
	CongestionSignalMark
	// CongestionSignalLoss reports a retransmission timeout or Nack that
	// the fetcher has decided to treat as a loss event.
	CongestionSignalLoss
)

// CongestionWindow tracks how many segments a fetcher may have in flight at
// once, growing and shrinking in response to the signals the fetcher
// observes on the wire.
type CongestionWindow interface {
	// String identifies the strategy, for logging.
	String() string
	// Size returns the current window size, i.e. how many segments may be
	// outstanding at once.
	Size() int
	// IncreaseWindow grows the window after a clean round.
	IncreaseWindow()
	// DecreaseWindow shrinks the window after a congestion event.
	DecreaseWindow()
	// HandleSignal dispatches signal to IncreaseWindow or DecreaseWindow.
	HandleSignal(signal CongestionSignal)
}
