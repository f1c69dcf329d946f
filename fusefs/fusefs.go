// Package fusefs is the FUSE projection that turns archive queries
// (package arx) into filesystem operations, built on
// hanwen/go-fuse/v2's node-based `fs` package.
//
// The archive is immutable and every inode's identity is already known
// up front (EntryIdx), so this package does not use the `fs` package's
// dynamic/persistent inode machinery beyond the one thing it needs:
// stable, explicit inode numbers (ino = EntryIdx+2) handed to
// Inode.NewInode at Lookup time.
package fusefs

import (
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/arxfmt/arx/arx"
	"github.com/arxfmt/arx/entry"
	"github.com/arxfmt/arx/internal/lru"
)

const (
	resolveCacheCapacity = 4096
	attrCacheCapacity    = 100
)

type resolveKey struct {
	parentIno uint64
	name      string
}

// resolveResult memoizes one lookup, including negative results
// (found = false memoizes ENOENT).
type resolveResult struct {
	idx   entry.EntryIdx
	found bool
}

// region is one open file's fetched bytes plus the open-handle
// refcount the region cache tracks; the entry is evicted when the last
// handle is released.
type region struct {
	bytes    []byte
	release  func()
	refcount int
}

// FS holds the caches shared by every node in one mounted archive. It
// is not safe for concurrent use without the mount's SingleThreaded
// option (see Mount), which serializes dispatch and is what lets
// internal/lru.Cache and the region map go unlocked.
type FS struct {
	archive *arx.Archive

	resolve *lru.Cache[resolveKey, resolveResult]
	attrs   *lru.Cache[entry.EntryIdx, attrRecord]
	regions map[uint64]*region
}

// New returns the filesystem state for one opened archive. Call Mount to
// actually serve it.
func New(archive *arx.Archive) *FS {
	return &FS{
		archive: archive,
		resolve: lru.New[resolveKey, resolveResult](resolveCacheCapacity),
		attrs:   lru.New[entry.EntryIdx, attrRecord](attrCacheCapacity),
		regions: make(map[uint64]*region),
	}
}

// Mount serves archive at mountpoint until the returned server is
// unmounted. archiveName is used only for the `fsname` mount option.
func Mount(archive *arx.Archive, mountpoint, archiveName string) (*fuse.Server, error) {
	fsys := New(archive)
	root := &node{fsys: fsys, isRoot: true}
	opts := &fs.Options{
		MountOptions: fuse.MountOptions{
			FsName:         archiveName,
			Name:           "arx",
			Options:        []string{"ro"},
			SingleThreaded: true,
		},
	}
	return fs.Mount(mountpoint, root, opts)
}
