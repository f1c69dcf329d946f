// Package arx wires the directory pack (packages entry/store) and the
// content-pack client (package pack) into the read-side query engine:
// an opened Archive, its path resolver, and its DFS walker. It is the
// library's top-level entry point.
package arx

import (
	"context"
	"fmt"
	"io"

	"github.com/arxfmt/arx/arxerr"
	"github.com/arxfmt/arx/backend"
	"github.com/arxfmt/arx/entry"
	"github.com/arxfmt/arx/manifest"
	"github.com/arxfmt/arx/pack"
	"github.com/arxfmt/arx/store"
)

// Archive is an opened, read-only Arx archive: the two named indices
// (arx_root, arx_entries) over a shared entry table, plus the
// content-pack client used to resolve file bytes.
type Archive struct {
	Manifest *manifest.Manifest

	names   *store.ValueStore
	targets *store.ValueStore
	table   *entry.Table
	builder *entry.Builder
	index   *entry.Index

	root    entry.Range // arx_root
	entries entry.Range // arx_entries: always {0, table.Count()}

	content pack.Client

	// closers holds file handles opened on the archive's behalf by
	// OpenFile/OpenAt. Archives assembled through Open own nothing.
	closers []io.Closer
}

// Close releases every file handle the archive owns. It is a no-op
// for archives built over caller-supplied readers.
func (a *Archive) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

// Open reads the manifest from header, then the directory pack from
// directoryPack, and wires content against the manifest's content-pack
// table via openContent (invoked once per content-kind row, in
// pack-table order, so the returned Entry's ordinal position becomes
// its pack_id; see manifest.Manifest.ContentPackIDs). The vendor id
// is validated before any other byte is interpreted; manifest.Read
// enforces that.
func Open(header io.Reader, directoryPack io.Reader, openContent func(manifest.Entry) (backend.Storage, error)) (*Archive, error) {
	m, err := manifest.Read(header)
	if err != nil {
		return nil, err
	}

	names, targets, table, root, err := ReadDirectoryPack(directoryPack)
	if err != nil {
		return nil, err
	}

	var client pack.Client
	if openContent != nil {
		contentEntries := m.ContentPackIDs()
		storages := make([]backend.Storage, len(contentEntries))
		for i, ce := range contentEntries {
			s, err := openContent(ce)
			if err != nil {
				return nil, fmt.Errorf("opening content pack %d: %w", i, err)
			}
			storages[i] = s
		}
		if len(storages) > 0 {
			client, err = pack.NewLocalClient(storages)
			if err != nil {
				return nil, err
			}
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
	}, nil
}

// Root returns the arx_root named index: the archive's top-level
// children.
func (a *Archive) Root() entry.Range { return a.root }

// Entries returns the arx_entries named index: the full entry table,
// used by FUSE to resolve arbitrary inodes.
func (a *Archive) Entries() entry.Range { return a.entries }

// Get decodes the entry at idx.
func (a *Archive) Get(idx entry.EntryIdx) (entry.Entry, error) {
	return a.index.GetIdx(idx)
}

// GetChild decodes the i-th child of r (0-based, relative to r.First).
func (a *Archive) GetChild(r entry.Range, i uint32) (entry.Entry, error) {
	return a.index.Get(r, i)
}

// Find binary-searches for name inside r.
func (a *Archive) Find(r entry.Range, name []byte) (entry.EntryIdx, bool, error) {
	return a.index.Find(r, name)
}

// Builder exposes the light/polymorphic decoder for callers that need
// field-level access without a full Get.
func (a *Archive) Builder() *entry.Builder { return a.builder }

// Table exposes the raw fixed-width record table, for light accessors.
func (a *Archive) Table() *entry.Table { return a.table }

// Content resolves a file entry's bytes through the content-pack
// client. It returns arxerr.ErrMissingPack if no client was wired (no
// content packs in the manifest) or the client itself reports one
// missing.
func (a *Archive) Content(ctx context.Context, addr entry.ContentAddress) (*pack.ByteRegion, error) {
	if a.content == nil {
		return nil, fmt.Errorf("%w: archive has no content packs", arxerr.ErrMissingPack)
	}
	return a.content.Fetch(ctx, addr.PackID, addr.ContentID)
}
