package entry

import (
	"fmt"

	"github.com/arxfmt/arx/arxerr"
	"github.com/arxfmt/arx/store"
)

// Builder is a polymorphic decoder from on-disk record bytes to typed
// Entry values. It is parameterised only by the value
// stores it needs to resolve Name and Target references; the three
// variant decoders themselves are plain functions below, since Arx has
// exactly one representation per variant rather than pluggable ones.
//
// Separate "light" accessors skip work a full Decode does: Name, Kind
// and Parent read a single field, while DirRange, LinkTarget and
// Content decode the record's integers without resolving its name.
// The FUSE handlers in package fusefs do not use them; they decode
// full entries through arx.Archive.Get.
type Builder struct {
	Names   *store.ValueStore
	Targets *store.ValueStore
}

// NewBuilder constructs a Builder over the given name and symlink-target
// value stores.
func NewBuilder(names, targets *store.ValueStore) *Builder {
	return &Builder{Names: names, Targets: targets}
}

// Decode fully decodes raw into a typed Entry.
func (b *Builder) Decode(s Schema, raw []byte) (Entry, error) {
	r, err := s.Decode(raw)
	if err != nil {
		return nil, err
	}
	common := Common{
		Name:   string(b.Names.Bytes(r.NameRef)),
		Parent: r.Parent,
		Owner:  r.Owner,
		Group:  r.Group,
		Rights: r.Rights,
		Mtime:  r.Mtime,
	}
	switch r.Kind {
	case KindFile:
		return &File{common: common, Content: r.Content, Size: r.Size}, nil
	case KindDir:
		return &Dir{common: common, FirstChild: r.FirstChild, NbChildren: r.NbChildren}, nil
	case KindLink:
		return &Link{common: common, Target: b.Targets.Bytes(r.TargetRef)}, nil
	default:
		return nil, fmt.Errorf("%w: unknown variant tag %d", arxerr.ErrFormat, r.Kind)
	}
}

// Name decodes only the name field of raw.
func (b *Builder) Name(s Schema, raw []byte) (string, error) {
	ref, err := s.NameRef(raw)
	if err != nil {
		return "", err
	}
	return string(b.Names.Bytes(ref)), nil
}

// Kind decodes only the variant tag of raw.
func (b *Builder) Kind(s Schema, raw []byte) (Kind, error) {
	return s.Tag(raw)
}

// Parent decodes only the parent back-reference of raw.
func (b *Builder) Parent(s Schema, raw []byte) (EntryIdx, error) {
	return s.ParentField(raw)
}

// DirRange decodes raw as a directory and returns its child range. It
// returns arxerr.ErrWrongKind if raw is not a directory.
func (b *Builder) DirRange(s Schema, raw []byte) (Range, error) {
	r, err := s.Decode(raw)
	if err != nil {
		return Range{}, err
	}
	if r.Kind != KindDir {
		return Range{}, fmt.Errorf("%w: expected directory, got %s", arxerr.ErrWrongKind, r.Kind)
	}
	return Range{First: r.FirstChild, Count: r.NbChildren}, nil
}

// LinkTarget decodes raw as a symlink and returns its target bytes
// unmodified, without materializing its name.
func (b *Builder) LinkTarget(s Schema, raw []byte) ([]byte, error) {
	r, err := s.Decode(raw)
	if err != nil {
		return nil, err
	}
	if r.Kind != KindLink {
		return nil, fmt.Errorf("%w: expected symlink, got %s", arxerr.ErrWrongKind, r.Kind)
	}
	return b.Targets.Bytes(r.TargetRef), nil
}

// Content decodes raw as a file and returns its content address and
// size, without materializing its name.
func (b *Builder) Content(s Schema, raw []byte) (ContentAddress, uint64, error) {
	r, err := s.Decode(raw)
	if err != nil {
		return ContentAddress{}, 0, err
	}
	if r.Kind != KindFile {
		return ContentAddress{}, 0, fmt.Errorf("%w: expected file, got %s", arxerr.ErrWrongKind, r.Kind)
	}
	return r.Content, r.Size, nil
}
