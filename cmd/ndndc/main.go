package main

import (
	"github.com/named-data/ndnd-client/cmd"
)

func main() {
	cmd.CmdNdndc.Execute()
}
