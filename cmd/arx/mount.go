package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/moby/sys/mountinfo"

	"github.com/arxfmt/arx/arx"
	"github.com/arxfmt/arx/arxerr"
	"github.com/arxfmt/arx/fusefs"
)

func runMount(args []string) error {
	fset := flag.NewFlagSet("mount", flag.ContinueOnError)
	opts := fset.String("o", "", "mount options; the archive is read-only, rw is rejected")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if fset.NArg() != 2 {
		return fmt.Errorf("mount: expected FILE MOUNTDIR")
	}
	file, mountdir := fset.Arg(0), fset.Arg(1)

	for _, o := range strings.Split(*opts, ",") {
		if o == "rw" {
			return fmt.Errorf("mount: %w", arxerr.ErrCannotMountRW)
		}
	}

	info, err := os.Stat(mountdir)
	if err != nil {
		return fmt.Errorf("mount: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("mount: %s is not a directory", mountdir)
	}
	if mounted, err := mountinfo.Mounted(mountdir); err == nil && mounted {
		return fmt.Errorf("mount: %s is already a mount point", mountdir)
	}

	archive, err := arx.OpenFile(file)
	if err != nil {
		return fmt.Errorf("mount: %w", err)
	}
	defer archive.Close()

	fsName, err := filepath.Abs(file)
	if err != nil {
		fsName = file
	}
	server, err := fusefs.Mount(archive, mountdir, fsName)
	if err != nil {
		return fmt.Errorf("mount: %w", err)
	}
	server.Wait()
	return nil
}
