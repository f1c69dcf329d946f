package arx

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/arxfmt/arx/backend"
	"github.com/arxfmt/arx/entry"
	"github.com/arxfmt/arx/manifest"
	"github.com/arxfmt/arx/pack"
)

// OpenFile opens the archive stored at path: a manifest whose pack
// table either embeds the directory and content packs in the same file
// or points at sibling files. The returned Archive owns every file
// handle it opens; Close releases them.
func OpenFile(path string) (*Archive, error) {
	s, err := backend.OpenFromPath(path)
	if err != nil {
		return nil, err
	}
	a, err := OpenAt(s, 0, s.Size(), filepath.Dir(path))
	if err != nil {
		s.Close()
		return nil, err
	}
	a.closers = append(a.closers, s)
	return a, nil
}

// OpenAt opens an archive occupying [base, base+length) of s. This is
// the general form OpenFile and the self-mounting entry point share:
// the latter passes the offset where the appended archive begins
// inside its own executable image. External pack paths from the
// manifest are resolved against externalDir.
func OpenAt(s backend.Storage, base, length int64, externalDir string) (*Archive, error) {
	m, err := manifest.Read(io.NewSectionReader(s, base, length))
	if err != nil {
		return nil, err
	}

	ends := embeddedEnds(m, length)

	var closers []io.Closer
	closeAll := func() {
		for _, c := range closers {
			c.Close()
		}
	}

	openPack := func(e manifest.Entry) (backend.Storage, error) {
		if e.External == "" {
			end, ok := ends[e.Offset]
			if !ok || int64(e.Offset) >= end {
				return nil, fmt.Errorf("pack %s has invalid embedded offset %d", e.ID, e.Offset)
			}
			return backend.NewSubStorage(s, base+int64(e.Offset), end-int64(e.Offset)), nil
		}
		p := e.External
		if !filepath.IsAbs(p) {
			p = filepath.Join(externalDir, p)
		}
		st, err := backend.OpenFromPath(p)
		if err != nil {
			return nil, err
		}
		closers = append(closers, st)
		return st, nil
	}

	dirEntry, err := m.DirectoryPack()
	if err != nil {
		return nil, err
	}
	dirStorage, err := openPack(dirEntry)
	if err != nil {
		closeAll()
		return nil, err
	}

	names, targets, table, root, err := ReadDirectoryPack(io.NewSectionReader(dirStorage, 0, dirStorage.Size()))
	if err != nil {
		closeAll()
		return nil, err
	}

	var client pack.Client
	contentEntries := m.ContentPackIDs()
	if len(contentEntries) > 0 {
		storages := make([]backend.Storage, len(contentEntries))
		for i, ce := range contentEntries {
			st, err := openPack(ce)
			if err != nil {
				closeAll()
				return nil, fmt.Errorf("opening content pack %d: %w", i, err)
			}
			storages[i] = st
		}
		client, err = pack.NewLocalClient(storages)
		if err != nil {
			closeAll()
			return nil, err
		}
	}

	builder := entry.NewBuilder(names, targets)
	return &Archive{
		Manifest: m,
		names:    names,
		targets:  targets,
		table:    table,
		builder:  builder,
		index:    entry.NewIndex(table, builder),
		root:     root,
		entries:  entry.Range{First: 0, Count: uint32(table.Count())},
		content:  client,
		closers:  closers,
	}, nil
}

// embeddedEnds computes where each embedded pack's bytes end. Embedded
// packs are laid out back to back after the manifest, so a pack runs
// from its offset to the next embedded offset, or to the end of the
// archive region for the last one. Trailing bytes past a pack's own
// data (a one-file archive's locator footer) are harmless: every pack
// format is self-delimiting.
func embeddedEnds(m *manifest.Manifest, length int64) map[uint64]int64 {
	var offs []uint64
	for _, p := range m.Packs {
		if p.External == "" {
			offs = append(offs, p.Offset)
		}
	}
	sort.Slice(offs, func(i, j int) bool { return offs[i] < offs[j] })
	ends := make(map[uint64]int64, len(offs))
	for i, off := range offs {
		if i+1 < len(offs) {
			ends[off] = int64(offs[i+1])
		} else {
			ends[off] = length
		}
	}
	return ends
}
