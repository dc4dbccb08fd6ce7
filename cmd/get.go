package cmd

import (
	"fmt"
	"os"

	"github.com/named-data/ndnd-client/fetch"
	enc "github.com/named-data/ndnd-client/std/encoding"
	"github.com/named-data/ndnd-client/std/ndn"
	"github.com/spf13/cobra"
)

// RunGet fetches the segmented object named args[0] and writes its
// reassembled content to stdout.
func (t *Tool) RunGet(_ *cobra.Command, args []string) {
	name, err := enc.NameFromStr(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid name %q: %v\n", args[0], err)
		os.Exit(1)
	}

	t.Start()
	defer t.Stop()

	done := make(chan struct{})
	opts := fetch.DefaultOptions()
	opts.OnComplete = func(data []byte) {
		os.Stdout.Write(data)
		close(done)
	}
	opts.OnError = func(code ndn.FetchErrorCode, msg string) {
		fmt.Fprintf(os.Stderr, "Fetch failed: %d %s\n", code, msg)
		os.Exit(1)
	}

	fetch.Start(t.face.Engine(), name, func(enc.Name, enc.Wire, ndn.Signature) bool { return true }, opts)
	<-done
}
