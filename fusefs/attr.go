package fusefs

import (
	"syscall"

	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/arxfmt/arx/entry"
)

// permMask is applied to an entry's stored rights before they're
// reported to the kernel: it zeros the three write bits (0o222) and
// keeps every other bit, including type, setuid, setgid and sticky.
// The archive is read-only; stored write bits must not be advertised.
const permMask = 0b1111_1111_0110_1101

const blockSize = 512

// attrRecord is what the attr cache stores: everything Getattr needs,
// decoded once per EntryIdx rather than on every call.
type attrRecord struct {
	mode  uint32 // S_IFMT bits | masked permission bits
	size  uint64
	mtime uint64
}

func fileTypeOf(k entry.Kind) uint32 {
	switch k {
	case entry.KindDir:
		return syscall.S_IFDIR
	case entry.KindLink:
		return syscall.S_IFLNK
	default:
		return syscall.S_IFREG
	}
}

// buildAttr synthesizes the attribute record for an archive entry.
// Directory size is the `(nb_children+1)*10` heuristic, not a
// semantically meaningful byte count; tools stat'ing mounted archives
// depend on it staying put.
func buildAttr(e entry.Entry) attrRecord {
	common := e.Common()
	mode := fileTypeOf(e.Kind()) | (uint32(common.Rights) & permMask)

	var size uint64
	switch v := e.(type) {
	case *entry.File:
		size = v.Size
	case *entry.Dir:
		size = uint64(v.NbChildren+1) * 10
	case *entry.Link:
		size = uint64(len(v.Target))
	}

	return attrRecord{mode: mode, size: size, mtime: common.Mtime}
}

// rootAttr synthesizes the fixed attributes of inode 1, the synthetic
// root above arx_root.
func rootAttr(childCount uint32) attrRecord {
	return attrRecord{
		mode: syscall.S_IFDIR | 0o555,
		size: uint64(childCount+1) * 10,
	}
}

// apply fills out's Attr fields from rec for ino.
func (rec attrRecord) apply(ino uint64, out *fuse.Attr) {
	out.Ino = ino
	out.Mode = rec.mode
	out.Size = rec.size
	out.Mtime = rec.mtime
	out.Nlink = 1
	out.Blksize = blockSize
	if rec.mode&syscall.S_IFMT != syscall.S_IFDIR {
		allocated := ((rec.size + 4095) / 4096) * 4096
		out.Blocks = (allocated + blockSize - 1) / blockSize
	}
}
