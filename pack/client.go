// Package pack defines the content-pack contract, a byte-region
// provider keyed by (pack_id, content_id), and ships the one concrete
// implementation this module carries end to end: LocalClient, a
// cluster-compressed content pack reader.
package pack

import (
	"context"
)

// ByteRegion is a reference to bytes resolved from a content pack.
// The FUSE projection layer (package fusefs) is the one that actually
// reference-counts regions; Release here exists so a Client
// implementation that does own scarce resources (an mmap, a pooled
// buffer) has a hook to return them.
type ByteRegion struct {
	data    []byte
	release func()
}

// NewByteRegion wraps data as a ByteRegion. release may be nil.
func NewByteRegion(data []byte, release func()) *ByteRegion {
	return &ByteRegion{data: data, release: release}
}

// Bytes returns the region's contents. The slice must not be retained
// past a call to Release.
func (r *ByteRegion) Bytes() []byte { return r.data }

// Release returns any resources backing the region.
func (r *ByteRegion) Release() {
	if r.release != nil {
		r.release()
	}
}

// Client is an external content-pack provider. An opened arx.Archive
// fetches file bytes only through this interface; package arx
// constructs a LocalClient when it opens an archive's content packs.
type Client interface {
	// Fetch resolves a content address to its bytes. It returns
	// arxerr.ErrMissingPack (wrapped) if packID names a pack the
	// client cannot locate.
	Fetch(ctx context.Context, packID uint8, contentID uint32) (*ByteRegion, error)
}
