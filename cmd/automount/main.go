// Command automount is the self-mounting entry point: a copy of
// this binary post-processed by appending a one-file archive (as
// written by `arx create -1`, whose trailing locator footer records
// where the archive starts) scans its own image for that footer and
// mounts the archive at the given directory. An unprocessed copy exits
// non-zero.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arxfmt/arx/arx"
	"github.com/arxfmt/arx/backend"
	"github.com/arxfmt/arx/fusefs"
	"github.com/arxfmt/arx/manifest"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "Error : usage: automount MOUNTDIR")
		os.Exit(1)
	}
	if err := run(os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "Error : %s\n", err)
		os.Exit(1)
	}
}

func run(mountdir string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locating own executable: %w", err)
	}

	s, err := backend.OpenFromPath(exe)
	if err != nil {
		return err
	}
	defer s.Close()

	base, length, err := locateArchive(s)
	if err != nil {
		return err
	}

	archive, err := arx.OpenAt(s, base, length, filepath.Dir(exe))
	if err != nil {
		return err
	}
	defer archive.Close()

	server, err := fusefs.Mount(archive, mountdir, exe)
	if err != nil {
		return err
	}
	server.Wait()
	return nil
}

// locateArchive reads the locator footer at the end of s and returns
// the offset and length of the appended archive.
func locateArchive(s backend.Storage) (base, length int64, err error) {
	size := s.Size()
	if size < manifest.FooterSize {
		return 0, 0, errNotPostProcessed
	}
	var foot [manifest.FooterSize]byte
	if _, err := s.ReadAt(foot[:], size-manifest.FooterSize); err != nil {
		return 0, 0, fmt.Errorf("reading locator footer: %w", err)
	}
	archiveLen, ok := manifest.ParseFooter(foot[:])
	if !ok || int64(archiveLen) > size-manifest.FooterSize {
		return 0, 0, errNotPostProcessed
	}
	return size - manifest.FooterSize - int64(archiveLen), int64(archiveLen), nil
}

var errNotPostProcessed = fmt.Errorf("no archive appended to this binary; it must be post-processed by appending a one-file arx archive")
