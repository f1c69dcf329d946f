package pack

import (
	"encoding/binary"
	"fmt"

	"github.com/arxfmt/arx/arxerr"
)

// Algorithm is the per-cluster compression codec. Values are stable
// on-disk constants.
type Algorithm uint8

const (
	AlgoNone Algorithm = 0
	AlgoLZ4  Algorithm = 1
	AlgoLZMA Algorithm = 2
	AlgoZstd Algorithm = 3
)

// ParseAlgorithm maps a CLI token (none, lz4, lzma, zstd) to an
// Algorithm. An empty token selects the archive-wide default, zstd.
func ParseAlgorithm(token string) (Algorithm, error) {
	switch token {
	case "", "zstd":
		return AlgoZstd, nil
	case "none":
		return AlgoNone, nil
	case "lz4":
		return AlgoLZ4, nil
	case "lzma":
		return AlgoLZMA, nil
	default:
		return 0, fmt.Errorf("unknown compression algorithm %q", token)
	}
}

func (a Algorithm) String() string {
	switch a {
	case AlgoNone:
		return "none"
	case AlgoLZ4:
		return "lz4"
	case AlgoLZMA:
		return "lzma"
	case AlgoZstd:
		return "zstd"
	default:
		return fmt.Sprintf("algorithm(%d)", uint8(a))
	}
}

var contentMagic = [4]byte{'A', 'R', 'X', 'C'}

// blobLoc locates one blob inside a content pack: which cluster holds
// it, and its byte range within that cluster once decompressed.
type blobLoc struct {
	cluster uint32
	offset  uint32
	length  uint32
}

// clusterDir describes one compressed cluster's placement in the
// backing file.
type clusterDir struct {
	fileOffset       uint64
	compressedLen    uint64
	uncompressedLen  uint64
	algorithm        Algorithm
}

// header is the fixed directory written at the front of a content
// pack: magic, blob locations, then cluster directory. Cluster payload
// bytes follow immediately after, back to back, in cluster order.
type header struct {
	blobs    []blobLoc
	clusters []clusterDir
}

func writeHeader(h header) []byte {
	buf := make([]byte, 0, 4+4+4+len(h.blobs)*12+len(h.clusters)*25)
	buf = append(buf, contentMagic[:]...)
	buf = appendU32(buf, uint32(len(h.blobs)))
	buf = appendU32(buf, uint32(len(h.clusters)))
	for _, b := range h.blobs {
		buf = appendU32(buf, b.cluster)
		buf = appendU32(buf, b.offset)
		buf = appendU32(buf, b.length)
	}
	for _, c := range h.clusters {
		buf = appendU64(buf, c.fileOffset)
		buf = appendU64(buf, c.compressedLen)
		buf = appendU64(buf, c.uncompressedLen)
		buf = append(buf, byte(c.algorithm))
	}
	return buf
}

func readHeader(b []byte) (header, int, error) {
	if len(b) < 12 || string(b[:4]) != string(contentMagic[:]) {
		return header{}, 0, fmt.Errorf("%w: bad content pack magic", arxerr.ErrFormat)
	}
	off := 4
	blobCount := binary.LittleEndian.Uint32(b[off:])
	off += 4
	clusterCount := binary.LittleEndian.Uint32(b[off:])
	off += 4

	h := header{
		blobs:    make([]blobLoc, blobCount),
		clusters: make([]clusterDir, clusterCount),
	}
	for i := range h.blobs {
		if off+12 > len(b) {
			return header{}, 0, fmt.Errorf("%w: truncated blob directory", arxerr.ErrFormat)
		}
		h.blobs[i] = blobLoc{
			cluster: binary.LittleEndian.Uint32(b[off:]),
			offset:  binary.LittleEndian.Uint32(b[off+4:]),
			length:  binary.LittleEndian.Uint32(b[off+8:]),
		}
		off += 12
	}
	for i := range h.clusters {
		if off+25 > len(b) {
			return header{}, 0, fmt.Errorf("%w: truncated cluster directory", arxerr.ErrFormat)
		}
		h.clusters[i] = clusterDir{
			fileOffset:      binary.LittleEndian.Uint64(b[off:]),
			compressedLen:   binary.LittleEndian.Uint64(b[off+8:]),
			uncompressedLen: binary.LittleEndian.Uint64(b[off+16:]),
			algorithm:       Algorithm(b[off+24]),
		}
		off += 25
	}
	return h, off, nil
}

func appendU32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendU64(b []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(b, tmp[:]...)
}
