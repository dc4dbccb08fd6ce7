// Package basic gives a default implementation of the ndn.Engine
// interface. It multiplexes a single ndn.Face across concurrently
// expressed Interests and registered Interest handlers, using channels and
// a dedicated goroutine rather than the cooperative single-thread loop of
// the system this library mirrors: incoming packets and posted tasks are
// handled one at a time on that goroutine, while the FIB and PIT are
// guarded by their own mutexes, since AttachHandler, DetachHandler and
// Express update them from the caller's goroutine.
package basic

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	enc "github.com/named-data/ndnd-client/std/encoding"
	"github.com/named-data/ndnd-client/std/log"
	"github.com/named-data/ndnd-client/std/ndn"
	mgmt "github.com/named-data/ndnd-client/std/ndn/mgmt_2022"
	spec "github.com/named-data/ndnd-client/std/ndn/spec_2022"
	sig "github.com/named-data/ndnd-client/std/security/signer"
	"github.com/named-data/ndnd-client/std/types/optional"
)

// DefaultInterestLife is the Interest lifetime used when InterestConfig
// does not specify one.
const DefaultInterestLife = 4 * time.Second

// TimeoutMargin pads the PIT entry's scheduled timeout past the
// Interest's own lifetime, so the forwarder's own cleanup always runs
// first and a Data/Nack race never loses to a premature local timeout.
const TimeoutMargin = 10 * time.Millisecond

type fibEntry = ndn.InterestHandler

type pendInt struct {
	callback      ndn.ExpressCallbackFunc
	deadline      time.Time
	canBePrefix   bool
	impSha256     []byte
	timeoutCancel func() error
}

type pitEntry = []*pendInt

// Engine is the default ndn.Engine: one Face, a FIB of attached handlers,
// a PIT of pending outgoing Interests, and the management-command
// plumbing used by RegisterRoute/UnregisterRoute.
type Engine struct {
	face  ndn.Face
	timer ndn.Timer

	fib *NameTrie[fibEntry]
	pit *NameTrie[pitEntry]

	fibLock sync.Mutex
	pitLock sync.Mutex

	mgmtConf   *mgmt.MgmtConfig
	cmdChecker ndn.SigChecker

	inQueue   chan []byte
	taskQueue chan func()
	close     chan struct{}
	running   atomic.Bool

	// OnDataHook, if set, runs on every incoming Data before PIT matching;
	// an error it returns is delivered to matching callbacks instead of
	// the Data itself (used to hook in validation).
	OnDataHook func(data ndn.Data, raw enc.Wire, sigCovered enc.Wire) error
}

// NewEngine constructs an Engine bound to face, driven by timer.
func NewEngine(face ndn.Face, timer ndn.Timer) *Engine {
	if face == nil || timer == nil {
		return nil
	}
	return &Engine{
		face:  face,
		timer: timer,

		fib: NewNameTrie[fibEntry](),
		pit: NewNameTrie[pitEntry](),

		mgmtConf:   mgmt.NewConfig(face.IsLocal(), sig.NewSha256Signer(), spec.Spec{}),
		cmdChecker: func(enc.Name, enc.Wire, ndn.Signature) bool { return true },

		inQueue:   make(chan []byte, 256),
		taskQueue: make(chan func(), 512),
		close:     make(chan struct{}),
	}
}

func (e *Engine) String() string {
	return "basic-engine"
}

// EngineTrait returns e as an ndn.Engine.
func (e *Engine) EngineTrait() ndn.Engine {
	return e
}

func (e *Engine) Timer() ndn.Timer {
	return e.timer
}

func (e *Engine) Face() ndn.Face {
	return e.face
}

// AttachHandler registers handler for prefix. It is an error to attach a
// second handler to the same prefix without first detaching the first.
func (e *Engine) AttachHandler(prefix enc.Name, handler ndn.InterestHandler) error {
	e.fibLock.Lock()
	defer e.fibLock.Unlock()
	n := e.fib.MatchAlways(prefix)
	if n.Value() != nil {
		return fmt.Errorf("%w: %s", ndn.ErrMultipleHandlers, prefix)
	}
	n.SetValue(handler)
	return nil
}

// DetachHandler removes the handler registered for prefix.
func (e *Engine) DetachHandler(prefix enc.Name) error {
	e.fibLock.Lock()
	defer e.fibLock.Unlock()

	n := e.fib.ExactMatch(prefix)
	if n == nil {
		return ndn.ErrInvalidValue{Item: "prefix", Value: prefix}
	}
	n.SetValue(nil)
	n.Prune()
	return nil
}

func hasLogTrace() bool {
	return log.IsAllowed(log.LevelTrace)
}

// onPacket parses one frame off the wire, unwraps any NDNLPv2 framing,
// and dispatches to onInterest/onData/onNack.
func (e *Engine) onPacket(frame []byte) error {
	reader := enc.NewBufferView(frame)

	var nackReason uint64 = spec.NackReasonNone
	var pitToken []byte
	var incomingFaceId optional.Optional[uint64]
	var raw enc.Wire

	if hasLogTrace() {
		wire := reader.Range(0, reader.Length())
		log.Trace(e, "Received packet bytes", "wire", hex.EncodeToString(wire.Join()))
	}

	pkt, sigCovered, err := spec.ReadPacket(reader)
	if err != nil {
		log.Error(e, "Failed to parse packet", "err", err)
		return nil
	}

	if pkt.LpPacket != nil {
		lpPkt := pkt.LpPacket
		if lpPkt.FragIndex.IsSet() || lpPkt.FragCount.IsSet() {
			log.Warn(e, "Fragmented LpPackets are not supported - DROP")
			return nil
		}

		raw = lpPkt.Fragment
		if len(raw) == 1 {
			pkt, sigCovered, err = spec.ReadPacket(enc.NewBufferView(raw[0]))
		} else {
			pkt, sigCovered, err = spec.ReadPacket(enc.NewWireView(raw))
		}
		if err != nil || (pkt.Data == nil) == (pkt.Interest == nil) {
			log.Error(e, "Failed to parse packet in LpPacket", "err", err)
			return nil
		}

		if lpPkt.Nack != nil {
			nackReason = lpPkt.Nack.Reason
		}
		pitToken = lpPkt.PitToken
		incomingFaceId = lpPkt.IncomingFaceId
	} else {
		raw = reader.Range(0, reader.Length())
	}

	switch {
	case nackReason != spec.NackReasonNone:
		if pkt.Interest == nil {
			log.Error(e, "Nack received for non-Interest", "reason", nackReason)
			return nil
		}
		e.onNack(pkt.Interest.Name(), ndn.NackReason(nackReason))
	case pkt.Interest != nil:
		e.onInterest(ndn.InterestHandlerArgs{
			Interest:       pkt.Interest,
			RawInterest:    raw,
			SigCovered:     sigCovered,
			PitToken:       pitToken,
			IncomingFaceId: incomingFaceId,
		})
	case pkt.Data != nil:
		e.onData(pkt.Data, sigCovered, raw, pitToken)
	default:
		log.Error(e, "[BUG] unexpected packet with neither Interest nor Data")
	}

	return nil
}

// onInterest matches name against the FIB by longest prefix and invokes
// the handler, if any.
func (e *Engine) onInterest(args ndn.InterestHandlerArgs) {
	name := args.Interest.Name()
	args.Deadline = e.timer.Now().Add(args.Interest.Lifetime().GetOr(DefaultInterestLife))

	handler := func() ndn.InterestHandler {
		e.fibLock.Lock()
		defer e.fibLock.Unlock()
		n := e.fib.PrefixMatch(name)
		for n != nil && n.Value() == nil {
			n = n.Parent()
		}
		if n != nil {
			return n.Value()
		}
		return nil
	}()
	if handler == nil {
		log.Warn(e, "No handler for interest", "name", name)
		return
	}

	args.Reply = e.newDataReplyFunc(args.PitToken)
	handler(args)
}

// newDataReplyFunc builds the reply callback an Interest handler uses to
// send its Data back, wrapping it in NDNLPv2 framing to carry the PIT
// token when one was present on the incoming Interest.
func (e *Engine) newDataReplyFunc(pitToken []byte) ndn.WireReplyFunc {
	return func(dataWire enc.Wire) error {
		if dataWire == nil {
			return nil
		}
		if !e.IsRunning() || !e.face.IsRunning() {
			return ndn.ErrFaceDown
		}

		outWire := dataWire
		if pitToken != nil {
			lpPkt := &spec.Packet{LpPacket: &spec.LpPacket{PitToken: pitToken, Fragment: dataWire}}
			if wire := (spec.PacketEncoder{}).Encode(lpPkt); wire != nil {
				outWire = wire
			} else {
				log.Error(e, "[BUG] Failed to encode LP packet")
			}
		}
		return e.face.Send(outWire)
	}
}

// onDataMatch removes and returns every PIT entry satisfied by pkt,
// walking up from the longest matching PIT node so a CanBePrefix
// Interest registered above an exact-name Interest still matches.
func (e *Engine) onDataMatch(pkt ndn.Data, raw enc.Wire) pitEntry {
	e.pitLock.Lock()
	defer e.pitLock.Unlock()

	name := pkt.Name()
	n := e.pit.PrefixMatch(name)
	if n == nil {
		log.Warn(e, "Received data for an unknown interest - DROP", "name", name)
		return nil
	}

	ret := make(pitEntry, 0, 4)
	for cur := n; cur != nil; cur = cur.Parent() {
		entries := cur.Value()
		for i := 0; i < len(entries); i++ {
			entry := entries[i]

			if cur.Depth() < len(name) && !entry.canBePrefix {
				continue
			}
			if entry.impSha256 != nil {
				h := sha256.New()
				for _, buf := range raw {
					h.Write(buf)
				}
				if !bytes.Equal(entry.impSha256, h.Sum(nil)) {
					continue
				}
			}

			entries[i] = entries[len(entries)-1]
			entries = entries[:len(entries)-1]
			i--
			ret = append(ret, entry)
		}
		cur.SetValue(entries)
	}
	n.PruneIf(func(lst []*pendInt) bool { return len(lst) == 0 })

	return ret
}

func (e *Engine) onData(pkt ndn.Data, sigCovered enc.Wire, raw enc.Wire, pitToken []byte) {
	var hookErr error
	if e.OnDataHook != nil {
		hookErr = e.OnDataHook(pkt, raw, sigCovered)
	}

	for _, entry := range e.onDataMatch(pkt, raw) {
		entry.timeoutCancel()
		if entry.callback == nil {
			panic("[BUG] PIT has empty entry")
		}
		if hookErr != nil {
			entry.callback(ndn.ExpressCallbackArgs{Result: ndn.InterestResultError, Error: hookErr})
			continue
		}
		entry.callback(ndn.ExpressCallbackArgs{
			Result:     ndn.InterestResultData,
			Data:       pkt,
			RawData:    raw,
			SigCovered: sigCovered,
			NackReason: ndn.NackReasonNone,
		})
	}
}

func (e *Engine) onNack(name enc.Name, reason ndn.NackReason) {
	entries := func() []*pendInt {
		e.pitLock.Lock()
		defer e.pitLock.Unlock()

		n := e.pit.ExactMatch(name)
		if n == nil {
			log.Warn(e, "Received Nack for an unknown interest - DROP", "name", name)
			return nil
		}
		ret := n.Value()
		n.SetValue(nil)
		n.Prune()
		return ret
	}()

	for _, entry := range entries {
		entry.timeoutCancel()
		if entry.callback == nil {
			panic("[BUG] PIT has empty entry")
		}
		entry.callback(ndn.ExpressCallbackArgs{Result: ndn.InterestResultNack, NackReason: reason})
	}
}

// Start opens the Face and launches the Engine's single processing
// goroutine, which serializes all packet handling and posted tasks
// through inQueue/taskQueue/close.
func (e *Engine) Start() error {
	if e.face.IsRunning() {
		return fmt.Errorf("face is already running")
	}

	e.face.OnPacket(func(frame []byte) {
		frameCopy := make([]byte, len(frame))
		copy(frameCopy, frame)
		e.inQueue <- frameCopy
	})
	e.face.OnError(func(err error) {
		log.Error(e, "Error on face", "err", err, "face", e.face)
		e.Stop()
	})

	if err := e.face.Open(); err != nil {
		return err
	}

	e.running.Store(true)
	go func() {
		defer e.face.Close()
		defer e.running.Store(false)

		for {
			select {
			case frame := <-e.inQueue:
				if err := e.onPacket(frame); err != nil {
					log.Error(e, "[BUG] Engine::onPacket error", "err", err)
				}
			case <-e.close:
				return
			case task := <-e.taskQueue:
				task()
			}
		}
	}()

	return nil
}

func (e *Engine) Stop() error {
	if !e.IsRunning() {
		return fmt.Errorf("engine is not running")
	}
	e.close <- struct{}{}
	return nil
}

func (e *Engine) IsRunning() bool {
	return e.running.Load()
}

// onExpressTimeout fires when a PIT entry's scheduled deadline elapses
// without a matching Data or Nack.
func (e *Engine) onExpressTimeout(n *NameTrie[pitEntry]) {
	now := e.timer.Now()

	expired := func() []*pendInt {
		e.pitLock.Lock()
		defer e.pitLock.Unlock()

		ret := make([]*pendInt, 0, 4)
		entries := n.Value()
		for i := 0; i < len(entries); i++ {
			entry := entries[i]
			if entry.deadline.After(now) {
				continue
			}
			entries[i] = entries[len(entries)-1]
			entries = entries[:len(entries)-1]
			i--
			ret = append(ret, entry)
		}
		n.SetValue(entries)
		n.PruneIf(func(lst []*pendInt) bool { return len(lst) == 0 })
		return ret
	}()

	for _, entry := range expired {
		if entry.callback == nil {
			panic("[BUG] PIT has empty entry")
		}
		entry.callback(ndn.ExpressCallbackArgs{Result: ndn.InterestResultTimeout, NackReason: ndn.NackReasonNone})
	}
}

// Express sends wire (the encoding of finalName under cfg) and registers
// callback to run once when it is resolved by Data, Nack or timeout.
func (e *Engine) Express(finalName enc.Name, wire enc.Wire, cfg *ndn.InterestConfig, callback ndn.ExpressCallbackFunc) error {
	var impSha256 []byte
	nodeName := finalName

	if callback == nil {
		callback = func(ndn.ExpressCallbackArgs) {}
	}
	if len(finalName) == 0 {
		return ndn.ErrInvalidValue{Item: "finalName", Value: finalName}
	}
	if lastComp := finalName[len(finalName)-1]; lastComp.Typ == enc.TypeImplicitSha256DigestComponent {
		impSha256 = lastComp.Val
		nodeName = finalName[:len(finalName)-1]
	}

	var canBePrefix bool
	var lifetime time.Duration = DefaultInterestLife
	var nextHop optional.Optional[uint64]
	if cfg != nil {
		canBePrefix = cfg.CanBePrefix
		lifetime = cfg.Lifetime.GetOr(DefaultInterestLife)
		nextHop = cfg.NextHopId
	}
	deadline := e.timer.Now().Add(lifetime)

	func() {
		e.pitLock.Lock()
		defer e.pitLock.Unlock()

		n := e.pit.MatchAlways(nodeName)
		entry := &pendInt{
			callback:    callback,
			deadline:    deadline,
			canBePrefix: canBePrefix,
			impSha256:   impSha256,
			timeoutCancel: e.timer.Schedule(lifetime+TimeoutMargin, func() {
				e.onExpressTimeout(n)
			}),
		}
		n.SetValue(append(n.Value(), entry))
	}()

	outWire := wire
	if nextHop.IsSet() {
		lpPkt := &spec.Packet{LpPacket: &spec.LpPacket{Fragment: wire, NextHopFaceId: nextHop}}
		outWire = (spec.PacketEncoder{}).Encode(lpPkt)
	}

	if err := e.face.Send(outWire); err != nil {
		log.Error(e, "Failed to send interest", "err", err)
		return err
	}
	log.Trace(e, "Interest sent", "name", finalName)
	return nil
}

// ExecMgmtCmd builds, signs, sends and awaits a forwarder management
// command, validating the response's signature with cmdChecker.
func (e *Engine) ExecMgmtCmd(module string, cmd string, args any) (any, error) {
	cmdArgs, ok := args.(*mgmt.ControlArgs)
	if !ok {
		return nil, ndn.ErrInvalidValue{Item: "args", Value: args}
	}

	intCfg := &ndn.InterestConfig{
		Lifetime:    optional.Some(1 * time.Second),
		Nonce:       optional.Some(bytesToNonce(e.timer.Nonce())),
		MustBeFresh: true,
	}
	interest, err := e.mgmtConf.MakeCmd(module, cmd, cmdArgs, intCfg)
	if err != nil {
		return nil, err
	}

	type mgmtResp struct {
		err error
		val *mgmt.ControlResponse
	}
	respCh := make(chan *mgmtResp, 1)

	err = e.Express(interest.FinalName, interest.Wire, intCfg, func(args ndn.ExpressCallbackArgs) {
		resp := &mgmtResp{}
		defer func() { respCh <- resp }()

		switch args.Result {
		case ndn.InterestResultNack:
			resp.err = fmt.Errorf("nack received: %v", args.NackReason)
		case ndn.InterestResultTimeout:
			resp.err = ndn.ErrDeadlineExceed
		case ndn.InterestResultData:
			data := args.Data
			if !e.cmdChecker(data.Name(), args.SigCovered, data.Signature()) {
				resp.err = fmt.Errorf("command signature is not valid")
				return
			}
			ret, err := mgmt.ParseControlResponse(data.Content().Join())
			if err != nil {
				resp.err = err
				return
			}
			resp.val = ret
			if ret.StatusCode != 200 {
				resp.err = fmt.Errorf("command failed due to error %d: %s", ret.StatusCode, ret.StatusText)
			}
		default:
			resp.err = fmt.Errorf("unknown result: %v", args.Result)
		}
	})
	if err != nil {
		return nil, err
	}

	resp := <-respCh
	return resp.val, resp.err
}

func bytesToNonce(b []byte) uint32 {
	var v uint32
	for _, c := range b[:min(4, len(b))] {
		v = v<<8 | uint32(c)
	}
	return v
}

// SetCmdSec installs the signer used on outgoing commands and the
// validator used to check the signature on incoming command responses.
func (e *Engine) SetCmdSec(signer ndn.Signer, validator ndn.SigChecker) {
	e.mgmtConf.SetSigner(signer)
	e.cmdChecker = validator
}

func (e *Engine) RegisterRoute(prefix enc.Name) error {
	_, err := e.ExecMgmtCmd("rib", "register", &mgmt.ControlArgs{Name: prefix})
	if err != nil {
		log.Error(e, "Failed to register prefix", "err", err, "name", prefix)
		return err
	}
	log.Debug(e, "Prefix registered", "name", prefix)
	return nil
}

func (e *Engine) UnregisterRoute(prefix enc.Name) error {
	_, err := e.ExecMgmtCmd("rib", "unregister", &mgmt.ControlArgs{Name: prefix})
	if err != nil {
		log.Error(e, "Failed to unregister prefix", "err", err, "name", prefix)
		return err
	}
	log.Debug(e, "Prefix unregistered", "name", prefix)
	return nil
}

// Post schedules task to run on the Engine's own goroutine.
func (e *Engine) Post(task func()) {
	select {
	case e.taskQueue <- task:
	default:
		go func() { e.taskQueue <- task }()
	}
}
