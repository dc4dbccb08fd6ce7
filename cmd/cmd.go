// Package cmd implements ndndc, a small command-line client exercising
// this repository's Face, Controller, and Fetcher against a running NFD
// instance: registering/unregistering prefixes and retrieving segmented
// objects.
package cmd

import (
	"fmt"
	"os"

	"github.com/named-data/ndnd-client/controller"
	"github.com/named-data/ndnd-client/face"
	"github.com/named-data/ndnd-client/std/engine"
	sig "github.com/named-data/ndnd-client/std/security/signer"
	"github.com/spf13/cobra"
)

// CmdNdndc is the ndndc root command.
var CmdNdndc = &cobra.Command{
	Use:   "ndndc",
	Short: "NDN client-side tool: fetch objects and manage RIB registrations",
}

func init() {
	CmdNdndc.AddGroup(
		&cobra.Group{ID: "rib", Title: "RIB management:"},
		&cobra.Group{ID: "fetch", Title: "Object retrieval:"},
	)
	CmdNdndc.AddCommand(Cmds()...)
}

// Tool holds the Face and Controller shared across ndndc's subcommands.
type Tool struct {
	face *face.Face
	ctrl *controller.Controller
}

// Start builds the default Face (over the transport named by this
// client's configuration) and the Engine underneath it.
func (t *Tool) Start() {
	transport, err := engine.NewDefaultFace()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to build transport face: %v\n", err)
		os.Exit(1)
	}

	eng := engine.NewBasicEngine(transport)
	signer := sig.NewSha256Signer()
	t.face = face.New(eng, transport.IsLocal(), signer)
	t.ctrl = controller.New(eng, transport.IsLocal(), signer)

	if err := eng.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Unable to start engine: %v\n", err)
		os.Exit(1)
	}
}

// Stop shuts down the Face and its underlying Engine.
func (t *Tool) Stop() {
	t.face.Shutdown()
}

// Cmds returns every subcommand ndndc registers.
func Cmds() []*cobra.Command {
	t := &Tool{}
	return []*cobra.Command{
		{
			Use:     "register PREFIX",
			Short:   "Register a route for PREFIX with the local forwarder",
			GroupID: "rib",
			Args:    cobra.ExactArgs(1),
			Run:     t.RunRegister,
		},
		{
			Use:     "unregister PREFIX",
			Short:   "Unregister a route for PREFIX with the local forwarder",
			GroupID: "rib",
			Args:    cobra.ExactArgs(1),
			Run:     t.RunUnregister,
		},
		{
			Use:     "get NAME",
			Short:   "Fetch a segmented object named NAME and print it to stdout",
			GroupID: "fetch",
			Args:    cobra.ExactArgs(1),
			Run:     t.RunGet,
		},
	}
}
