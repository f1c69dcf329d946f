// Package backend defines the storage abstraction Arx reads archives
// through: callers can back an archive with an *os.File, a byte slice,
// or a sub-region of a larger file (e.g. a self-mounting executable's
// appended image).
package backend

import (
	"fmt"
	"io"
	"os"
)

// Storage is the minimal read surface Arx needs from an archive's
// backing store.
type Storage interface {
	io.ReaderAt
	io.Closer
	// Size returns the total number of bytes available.
	Size() int64
}

// memStorage backs a Storage with an in-memory byte slice.
type memStorage struct {
	data []byte
}

// FromBytes wraps b as a Storage. Closing it is a no-op.
func FromBytes(b []byte) Storage {
	return &memStorage{data: b}
}

func (m *memStorage) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *memStorage) Size() int64 { return int64(len(m.data)) }
func (m *memStorage) Close() error { return nil }

// SubStorage is a Storage windowed onto [start, start+size) of
// another Storage, so a manifest, directory pack, and content pack can
// share one physical file.
type SubStorage struct {
	parent      Storage
	start, size int64
}

// NewSubStorage returns a Storage view onto parent[start:start+size].
func NewSubStorage(parent Storage, start, size int64) *SubStorage {
	return &SubStorage{parent: parent, start: start, size: size}
}

func (s *SubStorage) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= s.size {
		return 0, io.EOF
	}
	max := s.size - off
	if int64(len(p)) > max {
		n, err := s.parent.ReadAt(p[:max], s.start+off)
		if err == nil {
			err = io.EOF
		}
		return n, err
	}
	return s.parent.ReadAt(p, s.start+off)
}

func (s *SubStorage) Size() int64  { return s.size }
func (s *SubStorage) Close() error { return nil }

// fileStorage backs a Storage with an *os.File, for CLI callers
// reading archive packs straight off disk rather than into memory.
type fileStorage struct {
	f    *os.File
	size int64
}

// OpenFromPath opens pathName read-only as a Storage.
func OpenFromPath(pathName string) (Storage, error) {
	f, err := os.Open(pathName)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", pathName, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", pathName, err)
	}
	return &fileStorage{f: f, size: info.Size()}, nil
}

func (s *fileStorage) ReadAt(p []byte, off int64) (int, error) { return s.f.ReadAt(p, off) }
func (s *fileStorage) Size() int64                             { return s.size }
func (s *fileStorage) Close() error                            { return s.f.Close() }
