// Package create ingests a stream of logical entries into a
// directory-staging tree and finalizes it into a sorted, fixed-width
// entry table plus value stores and a content pack.
package create

import (
	"fmt"
	"io"
	"sort"

	"lukechampine.com/blake3"

	"github.com/arxfmt/arx/arxerr"
	"github.com/arxfmt/arx/entry"
	"github.com/arxfmt/arx/pack"
	"github.com/arxfmt/arx/store"
)

type nodeKind int

const (
	nodeDir nodeKind = iota
	nodeFile
	nodeLink
)

// stagingChild is one entry awaiting index assignment, held by its
// parent DirHandle in insertion order until Finalize sorts siblings by
// name.
type stagingChild struct {
	kind    nodeKind
	name    string
	common  entry.Common
	nameRef store.Ref

	contentAddr entry.ContentAddress
	size        uint64

	target    []byte
	targetRef store.Ref

	dir *DirHandle
}

// DirHandle is a live reference to a directory still being built. The
// root handle (Creator.Root) has no on-disk record of its own; its
// children become the arx_root named index.
type DirHandle struct {
	name     string
	common   entry.Common
	children []*stagingChild
}

// Creator ingests logical entries and finalizes them into a directory
// pack and content pack. It is single-threaded by contract: callers
// append through the returned DirHandle tree from one goroutine.
type Creator struct {
	names   *store.ValueStore
	targets *store.IndexedValueStore
	content *pack.Builder
	hashes  map[[32]byte]entry.ContentAddress

	root *DirHandle

	maxOwner, maxGroup         uint32
	maxMtime                   uint64
	maxNameOff, maxNameLen     uint64
	maxTargetOff, maxTargetLen uint64
	maxSize                    uint64

	err error // first ingestion error; further calls are no-ops
}

// NewCreator returns an empty Creator whose content pack is compressed
// with algo at its default level.
func NewCreator(algo pack.Algorithm) *Creator {
	return NewCreatorLevel(algo, 0)
}

// NewCreatorLevel is NewCreator with an explicit compression level; 0
// selects the codec default.
func NewCreatorLevel(algo pack.Algorithm, level int) *Creator {
	return &Creator{
		names:   store.New(),
		targets: store.NewIndexed(),
		content: pack.NewBuilderLevel(algo, level),
		hashes:  make(map[[32]byte]entry.ContentAddress),
		root:    &DirHandle{},
	}
}

// Root returns the handle for the archive's top-level directory (not
// itself an entry; its children become arx_root).
func (c *Creator) Root() *DirHandle { return c.root }

// Err returns the first ingestion error encountered, if any. Any I/O
// error aborts creation; callers should stop adding entries once Err
// is non-nil.
func (c *Creator) Err() error { return c.err }

func (c *Creator) trackCommon(m entry.Common) {
	if m.Owner > c.maxOwner {
		c.maxOwner = m.Owner
	}
	if m.Group > c.maxGroup {
		c.maxGroup = m.Group
	}
	if m.Mtime > c.maxMtime {
		c.maxMtime = m.Mtime
	}
}

func (c *Creator) addName(name string) (store.Ref, error) {
	if err := entry.ValidateName(name); err != nil {
		return store.Ref{}, err
	}
	ref := c.names.Append([]byte(name))
	if ref.Offset > c.maxNameOff {
		c.maxNameOff = ref.Offset
	}
	if uint64(ref.Len) > c.maxNameLen {
		c.maxNameLen = uint64(ref.Len)
	}
	return ref, nil
}

// AddDir registers a new subdirectory of parent and returns its
// handle, through which its own children are later added.
func (c *Creator) AddDir(parent *DirHandle, name string, meta entry.Common) (*DirHandle, error) {
	if c.err != nil {
		return nil, c.err
	}
	nameRef, err := c.addName(name)
	if err != nil {
		c.err = err
		return nil, err
	}
	meta.Name = name
	c.trackCommon(meta)
	d := &DirHandle{name: name, common: meta}
	parent.children = append(parent.children, &stagingChild{kind: nodeDir, name: name, common: meta, nameRef: nameRef, dir: d})
	return d, nil
}

// AddFile ingests a regular file's content from r and registers it as
// a child of parent. Identical content (by BLAKE3 digest) reuses a
// previously assigned content id.
func (c *Creator) AddFile(parent *DirHandle, name string, meta entry.Common, r io.Reader) error {
	if c.err != nil {
		return c.err
	}
	nameRef, err := c.addName(name)
	if err != nil {
		c.err = err
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		c.err = fmt.Errorf("%w: reading %s: %v", arxerr.ErrIO, name, err)
		return c.err
	}
	sum := blake3.Sum256(data)
	addr, ok := c.hashes[sum]
	if !ok {
		id, err := c.content.Put(data)
		if err != nil {
			c.err = fmt.Errorf("%w: storing content for %s: %v", arxerr.ErrIO, name, err)
			return c.err
		}
		addr = entry.ContentAddress{PackID: 0, ContentID: id}
		c.hashes[sum] = addr
	}
	meta.Name = name
	c.trackCommon(meta)
	if uint64(len(data)) > c.maxSize {
		c.maxSize = uint64(len(data))
	}
	parent.children = append(parent.children, &stagingChild{
		kind: nodeFile, name: name, common: meta, nameRef: nameRef, contentAddr: addr, size: uint64(len(data)),
	})
	return nil
}

// AddLink registers a symlink as a child of parent. target is stored
// verbatim, unresolved and unvalidated.
func (c *Creator) AddLink(parent *DirHandle, name string, meta entry.Common, target string) error {
	if c.err != nil {
		return c.err
	}
	nameRef, err := c.addName(name)
	if err != nil {
		c.err = err
		return err
	}
	id := c.targets.Add([]byte(target))
	targetRef := c.targets.RefOf(id)
	if targetRef.Offset > c.maxTargetOff {
		c.maxTargetOff = targetRef.Offset
	}
	if uint64(targetRef.Len) > c.maxTargetLen {
		c.maxTargetLen = uint64(targetRef.Len)
	}
	meta.Name = name
	c.trackCommon(meta)
	parent.children = append(parent.children, &stagingChild{
		kind: nodeLink, name: name, common: meta, nameRef: nameRef, target: []byte(target), targetRef: targetRef,
	})
	return nil
}

// sortChildren orders children by unsigned byte-wise name comparison,
// the same order the directory index's comparator searches by.
func sortChildren(children []*stagingChild) {
	sort.Slice(children, func(i, j int) bool {
		return children[i].name < children[j].name
	})
}
