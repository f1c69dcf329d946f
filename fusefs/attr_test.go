package fusefs

import (
	"syscall"
	"testing"

	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/arxfmt/arx/entry"
)

func TestBuildAttrFile(t *testing.T) {
	f := &entry.File{Size: 2}
	rec := buildAttr(f)
	if rec.mode&syscall.S_IFMT != syscall.S_IFREG {
		t.Errorf("mode = %o, want S_IFREG bit set", rec.mode)
	}
	if rec.size != 2 {
		t.Errorf("size = %d, want 2", rec.size)
	}
}

func TestBuildAttrDirectorySizeHeuristic(t *testing.T) {
	d := &entry.Dir{NbChildren: 3}
	rec := buildAttr(d)
	if rec.size != 40 { // (3+1)*10, preserved verbatim per the Open Question decision
		t.Errorf("dir size = %d, want 40", rec.size)
	}
}

func TestPermMaskDropsWriteBits(t *testing.T) {
	masked := uint32(0o777) & permMask
	if masked&0o222 != 0 {
		t.Errorf("permMask left a write bit set: %o", masked)
	}
	if masked&0o555 != 0o555 {
		t.Errorf("permMask dropped a read/execute bit: %o", masked)
	}
}

func TestAttrRecordApplyBlocks(t *testing.T) {
	rec := attrRecord{mode: syscall.S_IFREG, size: 5000}
	var out fuse.Attr
	rec.apply(7, &out)
	wantAllocated := uint64(8192) // ceil(5000/4096)*4096
	wantBlocks := wantAllocated / blockSize
	if out.Blocks != wantBlocks {
		t.Errorf("blocks = %d, want %d", out.Blocks, wantBlocks)
	}
	if out.Ino != 7 {
		t.Errorf("ino = %d, want 7", out.Ino)
	}
}

func TestAttrRecordApplyDirectoryHasNoBlocks(t *testing.T) {
	rec := attrRecord{mode: syscall.S_IFDIR, size: 40}
	var out fuse.Attr
	rec.apply(1, &out)
	if out.Blocks != 0 {
		t.Errorf("directory blocks = %d, want 0", out.Blocks)
	}
}
