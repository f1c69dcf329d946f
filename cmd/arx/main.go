// Command arx is the thin CLI shell wiring packages create, arx,
// extract and fusefs behind the create/list/dump/extract/mount
// subcommands: flag parsing and argument translation only, with every
// error funneled to one stderr line and a non-zero exit.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Error : usage: arx <create|list|dump|extract|mount> ...")
		os.Exit(1)
	}

	sub, args := os.Args[1], os.Args[2:]
	var err error
	switch sub {
	case "create":
		err = runCreate(args)
	case "list":
		err = runList(args)
	case "dump":
		err = runDump(args)
	case "extract":
		err = runExtract(args)
	case "mount":
		err = runMount(args)
	default:
		err = fmt.Errorf("unknown subcommand %q", sub)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error : %s\n", err)
		os.Exit(1)
	}
}
