package entry

import (
	"fmt"

	"github.com/arxfmt/arx/arxerr"
	"github.com/arxfmt/arx/internal/bitwidth"
	"github.com/arxfmt/arx/store"
)

// fixed-width fields that never shrink below their natural type size.
const (
	rightsWidth = 2 // u16
	packIDWidth = 1 // u8
	tagWidth    = 1 // u8 variant tag
)

// Schema describes the fixed-width record layout for one archive. Each
// integer property is packed into the minimum byte width that fits the
// archive-wide maximum value for that property; Schema records the
// chosen width per property so the creator (package create) and the
// reader agree on record size.
type Schema struct {
	NameOffW, NameLenW     bitwidth.Width
	ParentW                bitwidth.Width
	OwnerW, GroupW         bitwidth.Width
	MtimeW                 bitwidth.Width
	ContentIDW             bitwidth.Width
	SizeW                  bitwidth.Width
	FirstChildW            bitwidth.Width
	NbChildrenW            bitwidth.Width
	TargetOffW, TargetLenW bitwidth.Width
}

// Raw is a decoded-but-unresolved record: integer fields are final, but
// Name/Target are still store.Ref values rather than materialized
// bytes. The Builder (builder.go) resolves them against the value
// stores.
type Raw struct {
	NameRef store.Ref
	Parent  EntryIdx
	Owner   uint32
	Group   uint32
	Rights  uint16
	Mtime   uint64
	Kind    Kind

	Content ContentAddress
	Size    uint64

	FirstChild EntryIdx
	NbChildren uint32

	TargetRef store.Ref
}

func (s Schema) commonSize() int {
	return int(s.NameOffW) + int(s.NameLenW) + int(s.ParentW) + int(s.OwnerW) + int(s.GroupW) + rightsWidth + int(s.MtimeW)
}

func (s Schema) fileTailSize() int {
	return packIDWidth + int(s.ContentIDW) + int(s.SizeW)
}

func (s Schema) dirTailSize() int {
	return int(s.FirstChildW) + int(s.NbChildrenW)
}

func (s Schema) linkTailSize() int {
	return int(s.TargetOffW) + int(s.TargetLenW)
}

func (s Schema) tailSize() int {
	max := s.fileTailSize()
	if v := s.dirTailSize(); v > max {
		max = v
	}
	if v := s.linkTailSize(); v > max {
		max = v
	}
	return max
}

// RecordSize returns the fixed byte width of every record under this
// schema: common prefix + 1-byte tag + the widest variant tail.
func (s Schema) RecordSize() int {
	return s.commonSize() + tagWidth + s.tailSize()
}

// ComputeWidths derives the minimum-width Schema able to hold the given
// archive-wide maxima. The creator calls this once, after having seen
// every entry, right before writing the entry table (see
// create/finalize.go).
func ComputeWidths(maxNameOff, maxNameLen uint64, maxParent EntryIdx, maxOwner, maxGroup uint32, maxMtime uint64, maxContentID uint32, maxSize uint64, maxFirstChild EntryIdx, maxNbChildren uint32, maxTargetOff, maxTargetLen uint64) Schema {
	return Schema{
		NameOffW:    bitwidth.For(maxNameOff),
		NameLenW:    bitwidth.For(maxNameLen),
		ParentW:     bitwidth.For(uint64(maxParent)),
		OwnerW:      bitwidth.For(uint64(maxOwner)),
		GroupW:      bitwidth.For(uint64(maxGroup)),
		MtimeW:      bitwidth.For(maxMtime),
		ContentIDW:  bitwidth.For(uint64(maxContentID)),
		SizeW:       bitwidth.For(maxSize),
		FirstChildW: bitwidth.For(uint64(maxFirstChild)),
		NbChildrenW: bitwidth.For(uint64(maxNbChildren)),
		TargetOffW:  bitwidth.For(maxTargetOff),
		TargetLenW:  bitwidth.For(maxTargetLen),
	}
}

// Encode packs r into a new RecordSize()-length buffer.
func (s Schema) Encode(r Raw) []byte {
	buf := make([]byte, s.RecordSize())
	off := 0
	put := func(w bitwidth.Width, v uint64) {
		bitwidth.Put(buf[off:], w, v)
		off += int(w)
	}
	put(s.NameOffW, r.NameRef.Offset)
	put(s.NameLenW, uint64(r.NameRef.Len))
	put(s.ParentW, uint64(r.Parent))
	put(s.OwnerW, uint64(r.Owner))
	put(s.GroupW, uint64(r.Group))
	put(rightsWidth, uint64(r.Rights))
	put(s.MtimeW, r.Mtime)
	buf[off] = byte(r.Kind)
	off++
	switch r.Kind {
	case KindFile:
		buf[off] = r.Content.PackID
		off += packIDWidth
		put(s.ContentIDW, uint64(r.Content.ContentID))
		put(s.SizeW, r.Size)
	case KindDir:
		put(s.FirstChildW, uint64(r.FirstChild))
		put(s.NbChildrenW, uint64(r.NbChildren))
	case KindLink:
		put(s.TargetOffW, r.TargetRef.Offset)
		put(s.TargetLenW, uint64(r.TargetRef.Len))
	}
	return buf
}

// Decode parses a RecordSize()-length buffer into a Raw record. It
// returns arxerr.ErrFormat on an unknown variant tag or a truncated
// buffer.
func (s Schema) Decode(buf []byte) (Raw, error) {
	if len(buf) < s.RecordSize() {
		return Raw{}, fmt.Errorf("%w: record is %d bytes, need %d", arxerr.ErrFormat, len(buf), s.RecordSize())
	}
	var r Raw
	off := 0
	get := func(w bitwidth.Width) uint64 {
		v, _ := bitwidth.Get(buf[off:], w)
		off += int(w)
		return v
	}
	r.NameRef.Offset = get(s.NameOffW)
	r.NameRef.Len = uint32(get(s.NameLenW))
	r.Parent = EntryIdx(get(s.ParentW))
	r.Owner = uint32(get(s.OwnerW))
	r.Group = uint32(get(s.GroupW))
	r.Rights = uint16(get(rightsWidth))
	r.Mtime = get(s.MtimeW)
	r.Kind = Kind(buf[off])
	off++
	switch r.Kind {
	case KindFile:
		r.Content.PackID = buf[off]
		off += packIDWidth
		r.Content.ContentID = uint32(get(s.ContentIDW))
		r.Size = get(s.SizeW)
	case KindDir:
		r.FirstChild = EntryIdx(get(s.FirstChildW))
		r.NbChildren = uint32(get(s.NbChildrenW))
	case KindLink:
		r.TargetRef.Offset = get(s.TargetOffW)
		r.TargetRef.Len = uint32(get(s.TargetLenW))
	default:
		return Raw{}, fmt.Errorf("%w: unknown variant tag %d", arxerr.ErrFormat, r.Kind)
	}
	return r, nil
}

// NameRef is a light accessor that reads only the name property of a
// record, without decoding the rest. It is used by the directory index's
// comparator on the hot path.
func (s Schema) NameRef(buf []byte) (store.Ref, error) {
	if len(buf) < int(s.NameOffW)+int(s.NameLenW) {
		return store.Ref{}, fmt.Errorf("%w: record truncated before name", arxerr.ErrFormat)
	}
	off, _ := bitwidth.Get(buf, s.NameOffW)
	ln, _ := bitwidth.Get(buf[s.NameOffW:], s.NameLenW)
	return store.Ref{Offset: off, Len: uint32(ln)}, nil
}

// Tag is a light accessor that reads only the variant tag of a record.
func (s Schema) Tag(buf []byte) (Kind, error) {
	off := s.commonSize()
	if len(buf) <= off {
		return 0, fmt.Errorf("%w: record truncated before tag", arxerr.ErrFormat)
	}
	return Kind(buf[off]), nil
}

// ParentField is a light accessor that reads only the parent property.
func (s Schema) ParentField(buf []byte) (EntryIdx, error) {
	off := int(s.NameOffW) + int(s.NameLenW)
	if len(buf) < off+int(s.ParentW) {
		return 0, fmt.Errorf("%w: record truncated before parent", arxerr.ErrFormat)
	}
	v, _ := bitwidth.Get(buf[off:], s.ParentW)
	return EntryIdx(v), nil
}
