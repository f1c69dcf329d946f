package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/arxfmt/arx/arx"
	"github.com/arxfmt/arx/arxerr"
	"github.com/arxfmt/arx/entry"
)

func runDump(args []string) error {
	fset := flag.NewFlagSet("dump", flag.ContinueOnError)
	if err := fset.Parse(args); err != nil {
		return err
	}
	if fset.NArg() != 2 {
		return fmt.Errorf("dump: expected FILE PATH")
	}

	archive, err := arx.OpenFile(fset.Arg(0))
	if err != nil {
		return fmt.Errorf("dump: %w", err)
	}
	defer archive.Close()

	ent, err := archive.Resolve(fset.Arg(1))
	if err != nil {
		return fmt.Errorf("dump: %w", err)
	}
	file, ok := ent.(*entry.File)
	if !ok {
		return fmt.Errorf("dump: %w: %s is not a regular file", arxerr.ErrWrongKind, fset.Arg(1))
	}

	region, err := archive.Content(context.Background(), file.Content)
	if err != nil {
		return fmt.Errorf("dump: %w", err)
	}
	defer region.Release()

	_, err = io.Copy(os.Stdout, bytes.NewReader(region.Bytes()))
	return err
}
