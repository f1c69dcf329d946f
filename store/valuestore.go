// Package store implements Arx's backing storage for variable-length
// byte strings: a plain concatenation store and an indexed store built
// on top of it. Both are used by the entry-store layout (package entry)
// to hold names and symlink targets.
package store

import "bytes"

// Ref addresses a value inside a ValueStore by byte range.
type Ref struct {
	Offset uint64
	Len    uint32
}

// ValueStore is an append-only concatenation store of byte strings.
// Values are addressed by the Ref returned from Append; a ValueStore
// never moves or rewrites bytes once appended, which is what lets the
// creator (package create) hand out a Ref before the archive is
// finalized.
type ValueStore struct {
	data []byte
}

// New returns an empty ValueStore.
func New() *ValueStore {
	return &ValueStore{}
}

// FromBytes wraps an already-materialized buffer (typically read from
// disk) as a ValueStore, without copying.
func FromBytes(b []byte) *ValueStore {
	return &ValueStore{data: b}
}

// Append copies b onto the end of the store and returns its Ref.
func (s *ValueStore) Append(b []byte) Ref {
	ref := Ref{Offset: uint64(len(s.data)), Len: uint32(len(b))}
	s.data = append(s.data, b...)
	return ref
}

// Bytes returns the stored bytes for ref without copying. The returned
// slice aliases the store's backing array and must not be retained
// across further Appends.
func (s *ValueStore) Bytes(ref Ref) []byte {
	return s.data[ref.Offset : ref.Offset+uint64(ref.Len)]
}

// ReadInto materializes the value at ref into the caller-supplied
// buffer, which must be at least ref.Len bytes, and returns the number
// of bytes written.
func (s *ValueStore) ReadInto(ref Ref, buf []byte) (int, error) {
	v := s.Bytes(ref)
	return copy(buf, v), nil
}

// Compare performs an unsigned byte-wise lexicographic comparison of
// the value at ref against other, short-circuiting on a common-prefix
// length mismatch. It returns <0, 0, or >0 like bytes.Compare.
func (s *ValueStore) Compare(ref Ref, other []byte) int {
	v := s.Bytes(ref)
	n := len(v)
	if len(other) < n {
		n = len(other)
	}
	if c := bytes.Compare(v[:n], other[:n]); c != 0 {
		return c
	}
	return len(v) - len(other)
}

// Len returns the total number of bytes appended so far.
func (s *ValueStore) Len() int {
	return len(s.data)
}

// Raw returns the store's full backing buffer, for writing the pack to
// disk during finalize.
func (s *ValueStore) Raw() []byte {
	return s.data
}
