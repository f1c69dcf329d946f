// Package entry implements Arx's entry-store layout: the fixed-width
// record schema, the typed decoder built on top of it, and the ordered
// directory index used for path lookup.
package entry

import (
	"fmt"
	"strings"

	"github.com/arxfmt/arx/arxerr"
)

// EntryIdx densely, zero-indexed, names an entry within the archive.
type EntryIdx uint32

// Range is a contiguous half-open interval [First, First+Count) of
// EntryIdx values. It is always valid in a finalized archive.
type Range struct {
	First EntryIdx
	Count uint32
}

// Contains reports whether idx falls inside r.
func (r Range) Contains(idx EntryIdx) bool {
	if idx < r.First {
		return false
	}
	return uint32(idx-r.First) < r.Count
}

// ContentAddress locates a blob in a content pack.
type ContentAddress struct {
	PackID    uint8
	ContentID uint32
}

// Kind is the one-byte variant tag stored in every record.
type Kind uint8

const (
	KindFile Kind = 0
	KindDir  Kind = 1
	KindLink Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindLink:
		return "link"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Common holds the fields present on every entry regardless of variant.
type Common struct {
	Name   string
	Parent EntryIdx // 0 means "no parent / root"; otherwise Parent-1 is the parent's EntryIdx
	Owner  uint32
	Group  uint32
	Rights uint16
	Mtime  uint64
}

// Entry is the sum type over the three on-disk variants.
type Entry interface {
	Kind() Kind
	Common() Common
}

// File is a regular file entry: a reference to its content plus size.
type File struct {
	common  Common
	Content ContentAddress
	Size    uint64
}

func (f *File) Kind() Kind     { return KindFile }
func (f *File) Common() Common { return f.common }

// Dir is a directory entry: the range of its children in the entry
// table.
type Dir struct {
	common     Common
	FirstChild EntryIdx
	NbChildren uint32
}

func (d *Dir) Kind() Kind     { return KindDir }
func (d *Dir) Common() Common { return d.common }

// Range returns the directory's child range.
func (d *Dir) Range() Range {
	return Range{First: d.FirstChild, Count: d.NbChildren}
}

// Link is a symlink entry; Target is opaque and neither resolved nor
// validated.
type Link struct {
	common Common
	Target []byte
}

func (l *Link) Kind() Kind     { return KindLink }
func (l *Link) Common() Common { return l.common }

// ValidateName reports whether name is acceptable as an entry name: no
// '/', non-empty, not "." or "..".
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", arxerr.ErrFormat)
	case name == ".", name == "..":
		return fmt.Errorf("%w: reserved name %q", arxerr.ErrFormat, name)
	case strings.Contains(name, "/"):
		return fmt.Errorf("%w: name %q contains '/'", arxerr.ErrFormat, name)
	}
	return nil
}
