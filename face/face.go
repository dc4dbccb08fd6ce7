package face

import (
	"fmt"
	"sync"
	"time"

	enc "github.com/named-data/ndnd-client/std/encoding"
	"github.com/named-data/ndnd-client/std/ndn"
	mgmt "github.com/named-data/ndnd-client/std/ndn/mgmt_2022"
	spec "github.com/named-data/ndnd-client/std/ndn/spec_2022"
	"github.com/named-data/ndnd-client/std/types/optional"

	"github.com/named-data/ndnd-client/controller"
)

// Face is the application-facing surface built on top of an ndn.Engine. It
// keeps the three record tables an application's session is built from
// (pending Interests, Interest filters, registered prefixes), dispatches
// Interests the forwarder delivers to whichever filters match them, and
// drives prefix registration through a Controller bound to the same
// Engine. A Face does not own a transport of its own; Engine already does,
// and Face only adds this bookkeeping on top.
type Face struct {
	engine     ndn.Engine
	controller *controller.Controller
	scheduler  *Scheduler
	spec       spec.Spec

	mu                 sync.Mutex
	pendingInterests   *RecordContainer[PendingInterestRecord]
	interestFilters    *RecordContainer[InterestFilterRecord]
	registeredPrefixes *RecordContainer[RegisteredPrefixRecord]
	attachedPrefixes   map[string]int // prefix string -> number of filters sharing it

	closed   bool
	closeSig chan struct{}
}

// New constructs a Face over engine. local and signer configure the
// Controller used for RegisterPrefix/UnregisterPrefix: local selects
// between the /localhost/nfd and /localhop/nfd command prefixes, and
// signer signs outgoing management commands.
func New(engine ndn.Engine, local bool, signer ndn.Signer) *Face {
	return &Face{
		engine:             engine,
		controller:         controller.New(engine, local, signer),
		scheduler:          NewScheduler(engine.Timer()),
		pendingInterests:   NewRecordContainer[PendingInterestRecord](),
		interestFilters:    NewRecordContainer[InterestFilterRecord](),
		registeredPrefixes: NewRecordContainer[RegisteredPrefixRecord](),
		attachedPrefixes:   make(map[string]int),
		closeSig:           make(chan struct{}),
	}
}

// SetValidator installs the SigChecker used to validate management command
// responses from this Face's Controller.
func (f *Face) SetValidator(checker ndn.SigChecker) {
	f.controller.SetValidator(checker)
}

// Engine returns the ndn.Engine this Face was built on, for callers (such
// as a SegmentFetcher) that need to share it rather than open a second
// connection to the same forwarder.
func (f *Face) Engine() ndn.Engine {
	return f.engine
}

// ExpressInterest builds and sends an Interest, invoking callback exactly
// once when it resolves to Data, a Nack, a timeout, or a local encode
// error. name is the Interest's name before any ParametersSha256Digest
// component required when appParam is non-empty.
func (f *Face) ExpressInterest(
	name enc.Name,
	cfg *ndn.InterestConfig,
	appParam enc.Wire,
	signer ndn.Signer,
	callback ndn.ExpressCallbackFunc,
) error {
	interest, err := f.spec.MakeInterest(name, cfg, appParam, signer)
	if err != nil {
		if callback != nil {
			callback(ndn.ExpressCallbackArgs{Result: ndn.InterestResultError, Error: err})
		}
		return err
	}

	f.mu.Lock()
	id := f.pendingInterests.Insert(PendingInterestRecord{
		FinalName:   interest.FinalName,
		Wire:        interest.Wire,
		CanBePrefix: cfg.CanBePrefix,
		Origin:      PendingInterestOriginApp,
	})
	rec := f.pendingInterests.Get(id)
	rec.callback = callback
	rec.RecordForwarding()
	f.mu.Unlock()

	err = f.engine.Express(interest.FinalName, interest.Wire, cfg, func(args ndn.ExpressCallbackArgs) {
		f.mu.Lock()
		rec := f.pendingInterests.Get(id)
		if rec == nil {
			f.mu.Unlock()
			return
		}
		f.pendingInterests.Erase(id)
		f.mu.Unlock()

		switch args.Result {
		case ndn.InterestResultData:
			rec.InvokeDataCallback(args)
		case ndn.InterestResultNack:
			if reason, done := rec.RecordNack(args.NackReason); done {
				rec.InvokeNackCallback(reason)
			}
		case ndn.InterestResultTimeout:
			rec.InvokeTimeoutCallback()
		default:
			rec.InvokeDataCallback(args)
		}
	})
	if err != nil {
		f.mu.Lock()
		f.pendingInterests.Erase(id)
		f.mu.Unlock()
		if callback != nil {
			callback(ndn.ExpressCallbackArgs{Result: ndn.InterestResultError, Error: err})
		}
		return err
	}

	return nil
}

// RemoveAllPendingInterests cancels every outstanding Interest expressed
// through this Face without invoking their callbacks, matching the
// forwarder-facing "give up silently" semantics of an application shutting
// down its session.
func (f *Face) RemoveAllPendingInterests() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pendingInterests.Clear()
}

// Put sends data out in answer to a previously matched Interest. data must
// already be a signed, encoded Data packet.
func (f *Face) Put(data *spec.EncodedData) error {
	return f.engine.Face().Send(data.Wire)
}

// PutNack sends a Nack with reason in answer to an Interest, wrapping its
// wire encoding in an NDNLPv2 frame carrying the Nack header.
func (f *Face) PutNack(interest *spec.EncodedInterest, pitToken []byte, reason ndn.NackReason) error {
	lp := &spec.LpPacket{
		Fragment: interest.Wire,
		PitToken: pitToken,
		Nack:     &spec.LpHeaderNack{Reason: uint64(reason)},
	}
	wire := spec.PacketEncoder{}.Encode(&spec.Packet{LpPacket: lp})
	return f.engine.Face().Send(wire)
}

// SetInterestFilter registers a callback invoked for every Interest whose
// name falls under prefix and that the forwarder delivers to this Face.
// Interests expressed through this Face's own ExpressInterest are not
// dispatched to filters, whatever allowsLoopback says; allowsLoopback is
// only stored on the record, where InterestFilterRecord.DoesMatch reads it.
// It returns a RecordId usable with UnsetInterestFilter. Unlike
// RegisterPrefix, setting a filter does not by itself cause the forwarder
// to route Interests here; that still requires a matching RegisterPrefix
// call (or another application's registration) to exist.
func (f *Face) SetInterestFilter(prefix enc.Name, allowsLoopback bool, handler ndn.InterestHandler) (RecordId, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.interestFilters.Insert(InterestFilterRecord{
		Prefix:         prefix,
		AllowsLoopback: allowsLoopback,
		Callback:       handler,
	})

	key := prefix.String()
	if f.attachedPrefixes[key] == 0 {
		if err := f.engine.AttachHandler(prefix, f.dispatchInterest); err != nil {
			f.interestFilters.Erase(id)
			return 0, err
		}
	}
	f.attachedPrefixes[key]++

	return id, nil
}

// UnsetInterestFilter removes a filter previously installed by
// SetInterestFilter.
func (f *Face) UnsetInterestFilter(id RecordId) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec := f.interestFilters.Get(id)
	if rec == nil {
		return nil
	}
	key := rec.Prefix.String()
	f.interestFilters.Erase(id)

	f.attachedPrefixes[key]--
	if f.attachedPrefixes[key] <= 0 {
		delete(f.attachedPrefixes, key)
		return f.engine.DetachHandler(rec.Prefix)
	}
	return nil
}

// dispatchInterest is the single Engine-level handler shared by every
// distinct prefix this Face has filters on; it fans an incoming Interest
// out to every InterestFilterRecord that matches it.
func (f *Face) dispatchInterest(args ndn.InterestHandlerArgs) {
	f.mu.Lock()
	matches := make([]ndn.InterestHandler, 0, 1)
	f.interestFilters.ForEach(func(_ RecordId, rec *InterestFilterRecord) {
		if rec.DoesMatch(args.Interest.Name(), PendingInterestOriginForwarder) {
			matches = append(matches, rec.Callback)
		}
	})
	f.mu.Unlock()

	for _, cb := range matches {
		cb(args)
	}
}

// RegisterPrefix registers prefix with the forwarder's RIB via this Face's
// Controller, and (if handler is non-nil) also installs an Interest filter
// for it. It reports success or failure asynchronously through onSuccess/
// onFailure, matching the Controller's own single-command semantics: a
// failed registration is never retried internally.
func (f *Face) RegisterPrefix(
	prefix enc.Name,
	cost uint64,
	origin mgmt.RouteOrigin,
	handler ndn.InterestHandler,
	onSuccess func(RecordId),
	onFailure func(code uint64, reason string),
) error {
	var filterId RecordId
	if handler != nil {
		id, err := f.SetInterestFilter(prefix, false, handler)
		if err != nil {
			return err
		}
		filterId = id
	}

	f.mu.Lock()
	id := f.registeredPrefixes.Insert(RegisteredPrefixRecord{
		Prefix:   prefix,
		FilterId: filterId,
		Cost:     cost,
		Origin:   origin,
	})
	f.mu.Unlock()

	args := &mgmt.ControlArgs{Name: prefix, Cost: optional.Some(cost), Origin: optional.Some(origin)}
	return f.controller.Start("rib", "register",
		args,
		func(*mgmt.ControlArgs) { onSuccess(id) },
		func(code uint64, reason string) {
			f.mu.Lock()
			f.registeredPrefixes.Erase(id)
			f.mu.Unlock()
			if filterId != 0 {
				f.UnsetInterestFilter(filterId)
			}
			onFailure(code, reason)
		},
	)
}

// UnregisterPrefix unregisters a prefix previously registered through
// RegisterPrefix, tearing down its accompanying Interest filter (if any)
// once the forwarder confirms the unregistration.
func (f *Face) UnregisterPrefix(id RecordId, onDone func(err error)) error {
	f.mu.Lock()
	rec := f.registeredPrefixes.Get(id)
	f.mu.Unlock()
	if rec == nil {
		return fmt.Errorf("face: no registered prefix with id %d", id)
	}

	prefix, filterId := rec.Prefix, rec.FilterId
	args := &mgmt.ControlArgs{Name: prefix}
	return f.controller.Start("rib", "unregister",
		args,
		func(*mgmt.ControlArgs) {
			f.mu.Lock()
			f.registeredPrefixes.Erase(id)
			f.mu.Unlock()
			if filterId != 0 {
				f.UnsetInterestFilter(filterId)
			}
			onDone(nil)
		},
		func(code uint64, reason string) {
			onDone(fmt.Errorf("face: unregister failed: %d %s", code, reason))
		},
	)
}

// ProcessEvents runs this Face's Engine (starting it if needed) and blocks
// until timeout elapses, or forever if timeout is zero, until Shutdown is
// called. Event processing itself happens on the Engine's own goroutine;
// ProcessEvents only bounds how long the calling goroutine waits before
// returning control to the application, mirroring how an ndn-cxx
// application drives its io_service from its own main loop.
func (f *Face) ProcessEvents(timeout time.Duration) error {
	if !f.engine.IsRunning() {
		if err := f.engine.Start(); err != nil {
			return err
		}
	}

	if timeout <= 0 {
		<-f.closeSig
		return nil
	}

	select {
	case <-time.After(timeout):
		return nil
	case <-f.closeSig:
		return nil
	}
}

// Shutdown cancels every pending Interest and stops the underlying Engine.
// Any goroutine blocked in ProcessEvents returns.
func (f *Face) Shutdown() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	f.pendingInterests.Clear()
	f.interestFilters.Clear()
	f.registeredPrefixes.Clear()
	f.mu.Unlock()

	close(f.closeSig)

	if f.engine.IsRunning() {
		return f.engine.Stop()
	}
	return nil
}

