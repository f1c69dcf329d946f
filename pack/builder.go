package pack

import (
	"bytes"
	"fmt"
)

const defaultClusterTargetSize = 1 << 20

// Builder assembles a content pack: blobs are appended with Put and
// grouped into clusters of roughly clusterTarget bytes each, which are
// compressed as a unit. It is the writer counterpart to LocalClient,
// used by package create during archive construction.
type Builder struct {
	algo          Algorithm
	level         int
	clusterTarget int

	blobs    []blobLoc
	clusters []clusterDir
	data     bytes.Buffer // compressed cluster payloads, in cluster order

	pending []byte // uncompressed bytes accumulated for the open cluster
}

// NewBuilder returns a Builder that compresses clusters with algo at
// its default level.
func NewBuilder(algo Algorithm) *Builder {
	return NewBuilderLevel(algo, 0)
}

// NewBuilderLevel is NewBuilder with an explicit compression level
// (the ALG=LEVEL CLI form); 0 selects the codec default.
func NewBuilderLevel(algo Algorithm, level int) *Builder {
	return &Builder{algo: algo, level: level, clusterTarget: defaultClusterTargetSize}
}

// Put appends data as a new blob and returns its content id. Content
// ids are assigned sequentially starting at 0, matching blob directory
// order.
func (b *Builder) Put(data []byte) (uint32, error) {
	contentID := uint32(len(b.blobs))
	b.blobs = append(b.blobs, blobLoc{
		cluster: uint32(len(b.clusters)),
		offset:  uint32(len(b.pending)),
		length:  uint32(len(data)),
	})
	b.pending = append(b.pending, data...)

	if len(b.pending) >= b.clusterTarget {
		if err := b.flushCluster(); err != nil {
			return 0, err
		}
	}
	return contentID, nil
}

// flushCluster compresses the currently accumulating cluster, if any,
// and appends it to b.data.
func (b *Builder) flushCluster() error {
	if len(b.pending) == 0 {
		return nil
	}
	compressed, err := compress(b.algo, b.level, b.pending)
	if err != nil {
		return fmt.Errorf("compressing cluster: %w", err)
	}
	b.clusters = append(b.clusters, clusterDir{
		fileOffset:      uint64(b.data.Len()),
		compressedLen:   uint64(len(compressed)),
		uncompressedLen: uint64(len(b.pending)),
		algorithm:       b.algo,
	})
	b.data.Write(compressed)
	b.pending = nil
	return nil
}

// Finish flushes any in-progress cluster and returns the complete
// content pack bytes: directory followed by cluster payload data, in
// the layout openContentPack expects.
func (b *Builder) Finish() ([]byte, error) {
	if err := b.flushCluster(); err != nil {
		return nil, err
	}
	h := header{blobs: b.blobs, clusters: b.clusters}
	return append(writeHeader(h), b.data.Bytes()...), nil
}
