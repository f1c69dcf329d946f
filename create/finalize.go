package create

import (
	"github.com/arxfmt/arx/entry"
	"github.com/arxfmt/arx/store"
)

// Result is a finalized archive's constituent parts, ready for
// arx.WriteDirectoryPack and to be embedded under a manifest pack
// table entry.
type Result struct {
	Names   *store.ValueStore
	Targets *store.ValueStore
	Table   *entry.Table
	Root    entry.Range // arx_root
	Content []byte      // finished content pack bytes (may be empty if no files)
}

type queuedDir struct {
	handle    *DirHandle
	recordIdx entry.EntryIdx // position of handle's own record in records, to patch
}

// Finalize collapses the staging tree into on-disk order: each
// directory's children are written as one contiguous, name-sorted
// block, breadth-first, so a directory's FirstChild is known the
// moment its block is appended and its NbChildren is the block's
// length. No second pass is needed to discover ranges, only to patch
// each directory's own already-written record with those two values
// once its block exists.
func (c *Creator) Finalize() (*Result, error) {
	if c.err != nil {
		return nil, c.err
	}

	var records []entry.Raw
	var rootRange entry.Range
	var queue []queuedDir

	// appendBlock writes node's sorted children as one contiguous run
	// starting at len(records), enqueuing any subdirectories for their
	// own block later. parentField is the Parent value every child in
	// this block receives (0 for arx_root's own children).
	appendBlock := func(node *DirHandle, parentField entry.EntryIdx) entry.Range {
		sortChildren(node.children)
		first := entry.EntryIdx(len(records))
		for _, ch := range node.children {
			raw := entry.Raw{
				Parent: parentField,
				Owner:  ch.common.Owner,
				Group:  ch.common.Group,
				Rights: ch.common.Rights,
				Mtime:  ch.common.Mtime,
			}
			raw.NameRef = ch.nameRef
			idx := entry.EntryIdx(len(records))
			switch ch.kind {
			case nodeFile:
				raw.Kind = entry.KindFile
				raw.Content = ch.contentAddr
				raw.Size = ch.size
			case nodeLink:
				raw.Kind = entry.KindLink
				raw.TargetRef = ch.targetRef
			case nodeDir:
				raw.Kind = entry.KindDir
				// FirstChild/NbChildren patched once this dir's own
				// block is appended, below.
			}
			records = append(records, raw)
			if ch.kind == nodeDir {
				queue = append(queue, queuedDir{handle: ch.dir, recordIdx: idx})
			}
		}
		return entry.Range{First: first, Count: uint32(len(records) - int(first))}
	}

	rootRange = appendBlock(c.root, 0)

	for len(queue) > 0 {
		q := queue[0]
		queue = queue[1:]
		block := appendBlock(q.handle, q.recordIdx+1)
		records[q.recordIdx].FirstChild = block.First
		records[q.recordIdx].NbChildren = block.Count
	}

	var maxFirstChild entry.EntryIdx
	var maxNbChildren uint32
	var maxContentID uint32
	for _, r := range records {
		if r.Kind == entry.KindDir {
			if r.FirstChild > maxFirstChild {
				maxFirstChild = r.FirstChild
			}
			if r.NbChildren > maxNbChildren {
				maxNbChildren = r.NbChildren
			}
		}
		if r.Kind == entry.KindFile && r.Content.ContentID > maxContentID {
			maxContentID = r.Content.ContentID
		}
	}
	var maxParent entry.EntryIdx
	for _, r := range records {
		if r.Parent > maxParent {
			maxParent = r.Parent
		}
	}

	schema := entry.ComputeWidths(
		c.maxNameOff, c.maxNameLen,
		maxParent,
		c.maxOwner, c.maxGroup,
		c.maxMtime,
		maxContentID, c.maxSize,
		maxFirstChild, maxNbChildren,
		c.maxTargetOff, c.maxTargetLen,
	)

	data := make([]byte, 0, len(records)*schema.RecordSize())
	for _, r := range records {
		data = append(data, schema.Encode(r)...)
	}

	contentBytes, err := c.content.Finish()
	if err != nil {
		return nil, err
	}

	return &Result{
		Names:   c.names,
		Targets: c.targets.Values(),
		Table:   &entry.Table{Schema: schema, Data: data},
		Root:    rootRange,
		Content: contentBytes,
	}, nil
}
