package fusefs

import (
	"context"
	"errors"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/arxfmt/arx/arxerr"
	"github.com/arxfmt/arx/entry"
)

// node is the one InodeEmbedder type this package needs: it either
// represents the synthetic root (isRoot true, no backing entry) or one
// archive entry (idx). The "+2" inode mapping is realized by handing
// uint64(idx)+2 to fs.Inode.NewInode as the entry's StableAttr.Ino, so
// the kernel and this package agree on inode numbers without a separate
// table.
type node struct {
	fs.Inode
	fsys   *FS
	idx    entry.EntryIdx
	isRoot bool
}

var (
	_ fs.NodeLookuper  = (*node)(nil)
	_ fs.NodeGetattrer = (*node)(nil)
	_ fs.NodeReadlinker = (*node)(nil)
	_ fs.NodeOpendirer = (*node)(nil)
	_ fs.NodeReaddirer = (*node)(nil)
	_ fs.NodeOpener    = (*node)(nil)
	_ fs.NodeReader    = (*node)(nil)
	_ fs.NodeReleaser  = (*node)(nil)
)

func (n *node) ino() uint64 {
	if n.isRoot {
		return 1
	}
	return uint64(n.idx) + 2
}

// childRange returns the directory range this node stands for, or
// ENOTDIR if it isn't (or no longer decodes as) a directory.
func (n *node) childRange() (entry.Range, syscall.Errno) {
	if n.isRoot {
		return n.fsys.archive.Root(), 0
	}
	e, err := n.fsys.archive.Get(n.idx)
	if err != nil {
		return entry.Range{}, toErrno(err)
	}
	dir, ok := e.(*entry.Dir)
	if !ok {
		return entry.Range{}, syscall.ENOTDIR
	}
	return dir.Range(), 0
}

func (n *node) attrRecord() (attrRecord, syscall.Errno) {
	if n.isRoot {
		root := n.fsys.archive.Root()
		return rootAttr(root.Count), 0
	}
	if rec, ok := n.fsys.attrs.Get(n.idx); ok {
		return rec, 0
	}
	e, err := n.fsys.archive.Get(n.idx)
	if err != nil {
		return attrRecord{}, toErrno(err)
	}
	rec := buildAttr(e)
	n.fsys.attrs.Add(n.idx, rec)
	return rec, 0
}

// Lookup consults the resolve cache, falls back to a binary search
// over the parent's child range on miss, and memoizes the result
// either way, negative results included.
func (n *node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	key := resolveKey{parentIno: n.ino(), name: name}
	res, ok := n.fsys.resolve.Get(key)
	if !ok {
		r, errno := n.childRange()
		if errno != 0 {
			return nil, errno
		}
		idx, found, err := n.fsys.archive.Find(r, []byte(name))
		if err != nil {
			return nil, toErrno(err)
		}
		res = resolveResult{idx: idx, found: found}
		n.fsys.resolve.Add(key, res)
	}
	if !res.found {
		return nil, syscall.ENOENT
	}

	e, err := n.fsys.archive.Get(res.idx)
	if err != nil {
		return nil, toErrno(err)
	}
	rec := buildAttr(e)
	n.fsys.attrs.Add(res.idx, rec)
	rec.apply(uint64(res.idx)+2, &out.Attr)

	child := &node{fsys: n.fsys, idx: res.idx}
	inode := n.NewInode(ctx, child, fs.StableAttr{
		Mode: fileTypeOf(e.Kind()),
		Ino:  uint64(res.idx) + 2,
	})
	return inode, 0
}

// Getattr serves attributes from the attr cache, decoding on miss.
func (n *node) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	rec, errno := n.attrRecord()
	if errno != 0 {
		return errno
	}
	rec.apply(n.ino(), &out.Attr)
	return 0
}

// Readlink returns the stored target bytes unmodified; ENOLINK for
// anything that is not a symlink.
func (n *node) Readlink(ctx context.Context) ([]byte, syscall.Errno) {
	if n.isRoot {
		return nil, syscall.ENOLINK
	}
	e, err := n.fsys.archive.Get(n.idx)
	if err != nil {
		return nil, toErrno(err)
	}
	link, ok := e.(*entry.Link)
	if !ok {
		return nil, syscall.ENOLINK
	}
	return link.Target, 0
}

// Opendir validates that the inode is a directory.
func (n *node) Opendir(ctx context.Context) syscall.Errno {
	_, errno := n.childRange()
	return errno
}

// Readdir supplies the real children; the go-fuse `fs` bridge handles
// the synthetic `.`/`..` entries and offset bookkeeping itself. Each
// child seen also populates the resolve cache, so a readdir warms
// subsequent lookups.
func (n *node) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	r, errno := n.childRange()
	if errno != 0 {
		return nil, errno
	}
	entries := make([]fuse.DirEntry, 0, r.Count)
	parentIno := n.ino()
	for i := uint32(0); i < r.Count; i++ {
		e, err := n.fsys.archive.GetChild(r, i)
		if err != nil {
			return nil, toErrno(err)
		}
		childIdx := r.First + entry.EntryIdx(i)
		n.fsys.resolve.Add(resolveKey{parentIno: parentIno, name: e.Common().Name}, resolveResult{idx: childIdx, found: true})
		entries = append(entries, fuse.DirEntry{
			Name: e.Common().Name,
			Ino:  uint64(childIdx) + 2,
			Mode: fileTypeOf(e.Kind()),
		})
	}
	return fs.NewListDirStream(entries), 0
}

// Open bumps the refcount on a region-cache hit; a miss decodes the
// file variant and fetches its bytes through the content-pack client.
func (n *node) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if n.isRoot {
		return nil, 0, syscall.EISDIR
	}
	ino := n.ino()
	if reg, ok := n.fsys.regions[ino]; ok {
		reg.refcount++
		return nil, 0, 0
	}

	e, err := n.fsys.archive.Get(n.idx)
	if err != nil {
		return nil, 0, toErrno(err)
	}
	f, ok := e.(*entry.File)
	if !ok {
		if e.Kind() == entry.KindDir {
			return nil, 0, syscall.EISDIR
		}
		return nil, 0, syscall.ENOLINK
	}

	byteRegion, err := n.fsys.archive.Content(ctx, f.Content)
	if err != nil {
		if errors.Is(err, arxerr.ErrMissingPack) {
			return nil, 0, missingPackErrno
		}
		return nil, 0, syscall.EIO
	}
	n.fsys.regions[ino] = &region{bytes: byteRegion.Bytes(), release: byteRegion.Release, refcount: 1}
	return nil, 0, 0
}

// Read clamps to the region's remaining length and returns the slice
// directly.
func (n *node) Read(ctx context.Context, f fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	reg, ok := n.fsys.regions[n.ino()]
	if !ok {
		return nil, syscall.EIO
	}
	if off >= int64(len(reg.bytes)) {
		return fuse.ReadResultData(nil), 0
	}
	end := off + int64(len(dest))
	if end > int64(len(reg.bytes)) {
		end = int64(len(reg.bytes))
	}
	return fuse.ReadResultData(reg.bytes[off:end]), 0
}

// Release decrements the region refcount, evicting and releasing the
// underlying byte region at zero.
func (n *node) Release(ctx context.Context, f fs.FileHandle) syscall.Errno {
	ino := n.ino()
	reg, ok := n.fsys.regions[ino]
	if !ok {
		return 0
	}
	reg.refcount--
	if reg.refcount <= 0 {
		delete(n.fsys.regions, ino)
		reg.release()
	}
	return 0
}
