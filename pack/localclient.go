package pack

import (
	"context"
	"fmt"

	"github.com/arxfmt/arx/arxerr"
	"github.com/arxfmt/arx/backend"
	"github.com/arxfmt/arx/internal/lru"
)

const defaultClusterCacheCapacity = 32

// contentPack is one opened content pack: its directory plus the
// storage it reads cluster bytes from.
type contentPack struct {
	storage backend.Storage
	dir     header
	// dataStart is where cluster payload bytes begin: immediately
	// after the directory writeHeader produced.
	dataStart int64
}

func openContentPack(s backend.Storage) (*contentPack, error) {
	// The directory is small relative to blob data but has no fixed
	// upper bound (blobCount/clusterCount are unknown ahead of
	// parsing), so probe with a generous read and grow if truncated.
	probe := make([]byte, 64*1024)
	n, err := s.ReadAt(probe, 0)
	if err != nil && n == 0 {
		return nil, fmt.Errorf("%w: reading content pack header: %v", arxerr.ErrIO, err)
	}
	probe = probe[:n]
	h, consumed, err := readHeader(probe)
	if err != nil {
		// Directory may simply be larger than the probe; retry with
		// the full file size once we know it.
		full := make([]byte, s.Size())
		if _, err2 := s.ReadAt(full, 0); err2 != nil {
			return nil, err
		}
		h, consumed, err = readHeader(full)
		if err != nil {
			return nil, err
		}
	}
	return &contentPack{storage: s, dir: h, dataStart: int64(consumed)}, nil
}

type clusterKey struct {
	packID  uint8
	cluster uint32
}

// LocalClient is Arx's default, in-process content-pack provider:
// each pack_id names one opened content pack, and decoded clusters are
// cached across packs behind one bounded LRU.
type LocalClient struct {
	packs   map[uint8]*contentPack
	cache   *lru.Cache[clusterKey, []byte]
}

// NewLocalClient opens one content pack per storage in packs,
// assigning pack_id by the order packs are given (mirroring the
// manifest's pack-table ordinal assignment, see package manifest).
func NewLocalClient(packs []backend.Storage) (*LocalClient, error) {
	return NewLocalClientWithCache(packs, defaultClusterCacheCapacity)
}

// NewLocalClientWithCache is NewLocalClient with an explicit
// cluster-cache capacity, primarily for tests.
func NewLocalClientWithCache(packs []backend.Storage, cacheCapacity int) (*LocalClient, error) {
	c := &LocalClient{
		packs: make(map[uint8]*contentPack, len(packs)),
		cache: lru.New[clusterKey, []byte](cacheCapacity),
	}
	for i, s := range packs {
		cp, err := openContentPack(s)
		if err != nil {
			return nil, fmt.Errorf("opening content pack %d: %w", i, err)
		}
		c.packs[uint8(i)] = cp
	}
	return c, nil
}

// Fetch implements Client.
func (c *LocalClient) Fetch(_ context.Context, packID uint8, contentID uint32) (*ByteRegion, error) {
	p, ok := c.packs[packID]
	if !ok {
		return nil, fmt.Errorf("%w: pack id %d", arxerr.ErrMissingPack, packID)
	}
	if int(contentID) >= len(p.dir.blobs) {
		return nil, fmt.Errorf("%w: content id %d out of range", arxerr.ErrFormat, contentID)
	}
	loc := p.dir.blobs[contentID]
	if int(loc.cluster) >= len(p.dir.clusters) {
		return nil, fmt.Errorf("%w: cluster %d out of range", arxerr.ErrFormat, loc.cluster)
	}
	key := clusterKey{packID: packID, cluster: loc.cluster}
	data, ok := c.cache.Get(key)
	if !ok {
		clData, err := c.decodeCluster(p, loc.cluster)
		if err != nil {
			return nil, err
		}
		c.cache.Add(key, clData)
		data = clData
	}
	if int(loc.offset)+int(loc.length) > len(data) {
		return nil, fmt.Errorf("%w: blob %d exceeds decompressed cluster bounds", arxerr.ErrFormat, contentID)
	}
	return NewByteRegion(data[loc.offset:loc.offset+loc.length], nil), nil
}

func (c *LocalClient) decodeCluster(p *contentPack, cluster uint32) ([]byte, error) {
	cl := p.dir.clusters[cluster]
	compressed := make([]byte, cl.compressedLen)
	if _, err := p.storage.ReadAt(compressed, p.dataStart+int64(cl.fileOffset)); err != nil {
		return nil, fmt.Errorf("%w: reading cluster %d: %v", arxerr.ErrIO, cluster, err)
	}
	return decompress(cl.algorithm, compressed, int(cl.uncompressedLen))
}

// Close releases every opened content pack.
func (c *LocalClient) Close() error {
	var firstErr error
	for _, p := range c.packs {
		if err := p.storage.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
