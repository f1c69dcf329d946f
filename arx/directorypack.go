package arx

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/arxfmt/arx/arxerr"
	"github.com/arxfmt/arx/entry"
	"github.com/arxfmt/arx/internal/bitwidth"
	"github.com/arxfmt/arx/store"
)

func bw(b byte) bitwidth.Width { return bitwidth.Width(b) }

var directoryMagic = [4]byte{'A', 'R', 'X', 'D'}

const widthFieldCount = 12

// directoryPack is the on-disk section holding the value stores, the
// fixed-width entry table, and the two named indices (arx_root,
// arx_entries). Layout:
//
//	magic[4] schema[12] entryCount[u32] rootFirst[u32] rootCount[u32]
//	namesLen[u64] targetsLen[u64] tableLen[u64]
//	names[namesLen] targets[targetsLen] table[tableLen]
type directoryPackHeader struct {
	schema     entry.Schema
	entryCount uint32
	root       entry.Range
}

func writeSchema(s entry.Schema) [widthFieldCount]byte {
	return [widthFieldCount]byte{
		byte(s.NameOffW), byte(s.NameLenW), byte(s.ParentW),
		byte(s.OwnerW), byte(s.GroupW), byte(s.MtimeW),
		byte(s.ContentIDW), byte(s.SizeW),
		byte(s.FirstChildW), byte(s.NbChildrenW),
		byte(s.TargetOffW), byte(s.TargetLenW),
	}
}

func readSchema(b [widthFieldCount]byte) entry.Schema {
	return entry.Schema{
		NameOffW: bw(b[0]), NameLenW: bw(b[1]), ParentW: bw(b[2]),
		OwnerW: bw(b[3]), GroupW: bw(b[4]), MtimeW: bw(b[5]),
		ContentIDW: bw(b[6]), SizeW: bw(b[7]),
		FirstChildW: bw(b[8]), NbChildrenW: bw(b[9]),
		TargetOffW: bw(b[10]), TargetLenW: bw(b[11]),
	}
}

// WriteDirectoryPack serializes the value stores, entry table, and
// arx_root range into the on-disk directory-pack layout.
func WriteDirectoryPack(w io.Writer, names, targets *store.ValueStore, table *entry.Table, root entry.Range) error {
	if _, err := w.Write(directoryMagic[:]); err != nil {
		return err
	}
	sw := writeSchema(table.Schema)
	if _, err := w.Write(sw[:]); err != nil {
		return err
	}
	if err := writeU32(w, uint32(table.Count())); err != nil {
		return err
	}
	if err := writeU32(w, uint32(root.First)); err != nil {
		return err
	}
	if err := writeU32(w, root.Count); err != nil {
		return err
	}
	if err := writeU64(w, uint64(names.Len())); err != nil {
		return err
	}
	if err := writeU64(w, uint64(targets.Len())); err != nil {
		return err
	}
	if err := writeU64(w, uint64(len(table.Data))); err != nil {
		return err
	}
	if _, err := w.Write(names.Raw()); err != nil {
		return err
	}
	if _, err := w.Write(targets.Raw()); err != nil {
		return err
	}
	if _, err := w.Write(table.Data); err != nil {
		return err
	}
	return nil
}

// ReadDirectoryPack parses a directory pack previously written by
// WriteDirectoryPack.
func ReadDirectoryPack(r io.Reader) (names, targets *store.ValueStore, table *entry.Table, root entry.Range, err error) {
	var magic [4]byte
	if _, err = io.ReadFull(r, magic[:]); err != nil {
		return nil, nil, nil, entry.Range{}, fmt.Errorf("%w: reading directory pack magic: %v", arxerr.ErrFormat, err)
	}
	if magic != directoryMagic {
		return nil, nil, nil, entry.Range{}, fmt.Errorf("%w: bad directory pack magic %x", arxerr.ErrFormat, magic)
	}

	var sw [widthFieldCount]byte
	if _, err = io.ReadFull(r, sw[:]); err != nil {
		return nil, nil, nil, entry.Range{}, fmt.Errorf("%w: reading schema: %v", arxerr.ErrFormat, err)
	}
	schema := readSchema(sw)

	_, err = readU32(r) // entryCount; redundant with table length, kept for forward compatibility
	if err != nil {
		return nil, nil, nil, entry.Range{}, fmt.Errorf("%w: reading entry count: %v", arxerr.ErrFormat, err)
	}
	rootFirst, err := readU32(r)
	if err != nil {
		return nil, nil, nil, entry.Range{}, fmt.Errorf("%w: reading root first: %v", arxerr.ErrFormat, err)
	}
	rootCount, err := readU32(r)
	if err != nil {
		return nil, nil, nil, entry.Range{}, fmt.Errorf("%w: reading root count: %v", arxerr.ErrFormat, err)
	}
	namesLen, err := readU64(r)
	if err != nil {
		return nil, nil, nil, entry.Range{}, fmt.Errorf("%w: reading names length: %v", arxerr.ErrFormat, err)
	}
	targetsLen, err := readU64(r)
	if err != nil {
		return nil, nil, nil, entry.Range{}, fmt.Errorf("%w: reading targets length: %v", arxerr.ErrFormat, err)
	}
	tableLen, err := readU64(r)
	if err != nil {
		return nil, nil, nil, entry.Range{}, fmt.Errorf("%w: reading table length: %v", arxerr.ErrFormat, err)
	}

	namesBuf := make([]byte, namesLen)
	if _, err = io.ReadFull(r, namesBuf); err != nil {
		return nil, nil, nil, entry.Range{}, fmt.Errorf("%w: reading names: %v", arxerr.ErrIO, err)
	}
	targetsBuf := make([]byte, targetsLen)
	if _, err = io.ReadFull(r, targetsBuf); err != nil {
		return nil, nil, nil, entry.Range{}, fmt.Errorf("%w: reading targets: %v", arxerr.ErrIO, err)
	}
	tableBuf := make([]byte, tableLen)
	if _, err = io.ReadFull(r, tableBuf); err != nil {
		return nil, nil, nil, entry.Range{}, fmt.Errorf("%w: reading table: %v", arxerr.ErrIO, err)
	}

	names = store.FromBytes(namesBuf)
	targets = store.FromBytes(targetsBuf)
	table = &entry.Table{Schema: schema, Data: tableBuf}
	root = entry.Range{First: entry.EntryIdx(rootFirst), Count: rootCount}
	return names, targets, table, root, nil
}

func writeU32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeU64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readU64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
