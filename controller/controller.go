// Package controller implements the NFD Management protocol client: it
// turns a ControlParameters/ControlResponse exchange (the wire-level
// plumbing in std/ndn/mgmt_2022) into a single retry-free command with a
// Data/Nack/timeout outcome dispatch, plus dataset retrieval over the
// segment fetcher.
package controller

import (
	"fmt"
	"time"

	enc "github.com/named-data/ndnd-client/std/encoding"
	"github.com/named-data/ndnd-client/std/ndn"
	mgmt "github.com/named-data/ndnd-client/std/ndn/mgmt_2022"
	spec "github.com/named-data/ndnd-client/std/ndn/spec_2022"
	"github.com/named-data/ndnd-client/std/types/optional"
)

// Error codes a FailureCallback may report. Codes below ErrorLBound never
// occur here (200 is success, handled by SuccessCallback instead). A
// ControlResponse status at or above ErrorLBound is passed through as the
// forwarder sent it. ErrorServer is also raised locally, when the reply
// cannot be decoded or the Interest fails locally; ErrorValidation is
// raised locally when the reply's signature is rejected; ErrorTimeout and
// ErrorNack are raised locally when no ControlResponse was received at all.
const (
	ErrorLBound     uint64 = 400
	ErrorServer     uint64 = 500
	ErrorValidation uint64 = 10021
	ErrorTimeout    uint64 = 10060
	ErrorNack       uint64 = 10800
)

// SuccessCallback receives the ControlParameters the forwarder applied.
type SuccessCallback func(*mgmt.ControlArgs)

// FailureCallback receives a status code (see the Error* constants above)
// and a human-readable reason.
type FailureCallback func(code uint64, reason string)

// Controller is a command-client bound to one Engine. It signs outgoing
// commands with its own signer (independent of the Engine's own command
// signer, since an application may want a different identity for its own
// management commands than whatever the Engine uses for route
// registration) and validates responses with its own SigChecker.
type Controller struct {
	engine     ndn.Engine
	mgmtConf   *mgmt.MgmtConfig
	sigChecker ndn.SigChecker
}

// New constructs a Controller that issues commands over engine, addressed
// to /localhost/nfd or /localhop/nfd depending on local, signed by signer.
func New(engine ndn.Engine, local bool, signer ndn.Signer) *Controller {
	return &Controller{
		engine:     engine,
		mgmtConf:   mgmt.NewConfig(local, signer, spec.Spec{}),
		sigChecker: func(enc.Name, enc.Wire, ndn.Signature) bool { return true },
	}
}

// SetValidator installs the SigChecker used to validate ControlResponse
// signatures. The default accepts every response unchecked.
func (c *Controller) SetValidator(checker ndn.SigChecker) {
	c.sigChecker = checker
}

// Start issues a single command (module/cmd, e.g. "rib"/"register") and
// dispatches its outcome to onSuccess or onFailure exactly once. Unlike a
// SegmentFetcher retrieval, a command is never internally retried: a
// timeout or Nack is reported to the caller, who decides whether to retry.
func (c *Controller) Start(module, cmd string, params *mgmt.ControlArgs, onSuccess SuccessCallback, onFailure FailureCallback) error {
	intCfg := &ndn.InterestConfig{
		Lifetime:    optional.Some(4 * time.Second),
		Nonce:       optional.Some(bytesToNonce(c.engine.Timer().Nonce())),
		MustBeFresh: true,
	}
	interest, err := c.mgmtConf.MakeCmd(module, cmd, params, intCfg)
	if err != nil {
		return err
	}

	return c.engine.Express(interest.FinalName, interest.Wire, intCfg, func(args ndn.ExpressCallbackArgs) {
		switch args.Result {
		case ndn.InterestResultNack:
			onFailure(ErrorNack, fmt.Sprintf("network nack: %v", args.NackReason))
		case ndn.InterestResultTimeout:
			onFailure(ErrorTimeout, "request timed out")
		case ndn.InterestResultError:
			onFailure(ErrorServer, args.Error.Error())
		case ndn.InterestResultData:
			c.processCommandResponse(args, onSuccess, onFailure)
		default:
			onFailure(ErrorServer, "unknown Interest result")
		}
	})
}

func (c *Controller) processCommandResponse(args ndn.ExpressCallbackArgs, onSuccess SuccessCallback, onFailure FailureCallback) {
	data := args.Data
	if !c.sigChecker(data.Name(), args.SigCovered, data.Signature()) {
		onFailure(ErrorValidation, "command response signature is invalid")
		return
	}

	resp, err := mgmt.ParseControlResponse(data.Content().Join())
	if err != nil {
		onFailure(ErrorServer, "ControlResponse decoding failure: "+err.Error())
		return
	}

	if resp.StatusCode >= ErrorLBound {
		onFailure(resp.StatusCode, resp.StatusText)
		return
	}

	onSuccess(resp.Params)
}

func bytesToNonce(b []byte) uint32 {
	var v uint32
	for _, c := range b[:min(4, len(b))] {
		v = v<<8 | uint32(c)
	}
	return v
}
