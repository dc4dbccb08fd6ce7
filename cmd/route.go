package cmd

import (
	"fmt"
	"os"

	"github.com/named-data/ndnd-client/face"
	enc "github.com/named-data/ndnd-client/std/encoding"
	mgmt "github.com/named-data/ndnd-client/std/ndn/mgmt_2022"
	"github.com/spf13/cobra"
)

// RunRegister registers args[0] as a route with the local forwarder, via
// this Tool's Face, and blocks until the forwarder confirms or rejects it.
func (t *Tool) RunRegister(_ *cobra.Command, args []string) {
	name, err := enc.NameFromStr(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid name %q: %v\n", args[0], err)
		os.Exit(1)
	}

	t.Start()
	defer t.Stop()

	done := make(chan struct{})
	err = t.face.RegisterPrefix(name, 0, mgmt.RouteOriginClient, nil,
		func(face.RecordId) {
			fmt.Printf("Registered route for %s\n", name)
			close(done)
		},
		func(code uint64, reason string) {
			fmt.Fprintf(os.Stderr, "Registration failed: %d %s\n", code, reason)
			os.Exit(1)
		},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to send registration command: %v\n", err)
		os.Exit(1)
	}
	<-done
}

// RunUnregister unregisters the route for args[0]. A fresh process has no
// record of the RecordId a prior register call returned, so this talks to
// the forwarder directly through a Controller rather than through a Face's
// RegisteredPrefixRecord bookkeeping.
func (t *Tool) RunUnregister(_ *cobra.Command, args []string) {
	name, err := enc.NameFromStr(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid name %q: %v\n", args[0], err)
		os.Exit(1)
	}

	t.Start()
	defer t.Stop()

	done := make(chan struct{})
	err = t.ctrl.Start("rib", "unregister",
		&mgmt.ControlArgs{Name: name},
		func(*mgmt.ControlArgs) {
			fmt.Printf("Unregistered route for %s\n", name)
			close(done)
		},
		func(code uint64, reason string) {
			fmt.Fprintf(os.Stderr, "Unregistration failed: %d %s\n", code, reason)
			os.Exit(1)
		},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to send unregistration command: %v\n", err)
		os.Exit(1)
	}
	<-done
}
