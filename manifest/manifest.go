// Package manifest implements the outermost archive header: a
// vendor-stamped pack table tying a directory pack and zero or more
// content packs together, whether embedded in the same file or split
// across siblings.
package manifest

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/arxfmt/arx/arxerr"
)

// VendorID is the four magic bytes identifying an Arx manifest.
var VendorID = [4]byte{0x41, 0x52, 0x58, 0x00}

// Kind identifies what a pack-table row points at.
type Kind uint8

const (
	KindDirectory Kind = 0
	KindContent   Kind = 1
)

func (k Kind) String() string {
	if k == KindDirectory {
		return "directory"
	}
	return "content"
}

// Entry is one row of the pack table: a pack's kind, stable id, and
// location: either an offset into the shared archive file (External
// == "") or a path to a separate file.
type Entry struct {
	Kind     Kind
	ID       uuid.UUID
	Offset   uint64
	External string
}

// Manifest is the parsed archive header.
type Manifest struct {
	Packs []Entry
}

// ContentPackIDs returns the content-kind entries in pack-table order;
// an entry's index in the returned slice is its pack_id (as used in
// entry.ContentAddress). pack_id is not stored explicitly; it is the
// row's rank among KindContent rows, mirroring how LocalClient assigns
// pack ids when opening packs in manifest order.
func (m *Manifest) ContentPackIDs() []Entry {
	var out []Entry
	for _, p := range m.Packs {
		if p.Kind == KindContent {
			out = append(out, p)
		}
	}
	return out
}

// DirectoryPack returns the manifest's single directory-pack entry. A
// well-formed manifest has exactly one.
func (m *Manifest) DirectoryPack() (Entry, error) {
	for _, p := range m.Packs {
		if p.Kind == KindDirectory {
			return p, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: manifest has no directory pack", arxerr.ErrFormat)
}

// Read parses a manifest from r. It checks the vendor id first and
// returns arxerr.ErrNotAnArxArchive immediately on mismatch, before any
// other field is interpreted.
func Read(r io.Reader) (*Manifest, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("%w: reading vendor id: %v", arxerr.ErrNotAnArxArchive, err)
	}
	if magic != VendorID {
		return nil, fmt.Errorf("%w: vendor id %x", arxerr.ErrNotAnArxArchive, magic)
	}

	var countBuf [2]byte
	if _, err := io.ReadFull(r, countBuf[:]); err != nil {
		return nil, fmt.Errorf("%w: reading pack count: %v", arxerr.ErrFormat, err)
	}
	count := binary.LittleEndian.Uint16(countBuf[:])

	m := &Manifest{Packs: make([]Entry, count)}
	for i := range m.Packs {
		e, err := readEntry(r)
		if err != nil {
			return nil, fmt.Errorf("%w: pack table row %d: %v", arxerr.ErrFormat, i, err)
		}
		m.Packs[i] = e
	}
	return m, nil
}

func readEntry(r io.Reader) (Entry, error) {
	var head [1 + 16 + 8 + 2]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return Entry{}, err
	}
	e := Entry{
		Kind:   Kind(head[0]),
		Offset: binary.LittleEndian.Uint64(head[17:25]),
	}
	id, err := uuid.FromBytes(head[1:17])
	if err != nil {
		return Entry{}, err
	}
	e.ID = id

	extLen := binary.LittleEndian.Uint16(head[25:27])
	if extLen > 0 {
		ext := make([]byte, extLen)
		if _, err := io.ReadFull(r, ext); err != nil {
			return Entry{}, err
		}
		e.External = string(ext)
	}
	return e, nil
}

// EncodedLen returns the exact number of bytes Write will produce for
// m. The creator uses this to compute embedded pack offsets before the
// manifest itself is written (the offsets are fields of the manifest,
// so its length must be known first).
func (m *Manifest) EncodedLen() int {
	n := len(VendorID) + 2
	for _, e := range m.Packs {
		n += 1 + 16 + 8 + 2 + len(e.External)
	}
	return n
}

// Write serializes m to w.
func Write(w io.Writer, m *Manifest) error {
	if _, err := w.Write(VendorID[:]); err != nil {
		return err
	}
	var countBuf [2]byte
	binary.LittleEndian.PutUint16(countBuf[:], uint16(len(m.Packs)))
	if _, err := w.Write(countBuf[:]); err != nil {
		return err
	}
	for _, e := range m.Packs {
		if err := writeEntry(w, e); err != nil {
			return err
		}
	}
	return nil
}

func writeEntry(w io.Writer, e Entry) error {
	var head [1 + 16 + 8 + 2]byte
	head[0] = byte(e.Kind)
	idBytes, err := e.ID.MarshalBinary()
	if err != nil {
		return err
	}
	copy(head[1:17], idBytes)
	binary.LittleEndian.PutUint64(head[17:25], e.Offset)
	binary.LittleEndian.PutUint16(head[25:27], uint16(len(e.External)))
	if _, err := w.Write(head[:]); err != nil {
		return err
	}
	if e.External != "" {
		if _, err := w.Write([]byte(e.External)); err != nil {
			return err
		}
	}
	return nil
}
