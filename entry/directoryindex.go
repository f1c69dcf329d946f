package entry

import (
	"fmt"

	"github.com/arxfmt/arx/arxerr"
)

// Index is the ordered range over a Table that implements component
// C's binary search: find(range, key) and get(range, i). Both named
// archive-wide indices (arx_root and arx_entries) are Index values over
// the same underlying Table.
type Index struct {
	Table   *Table
	Builder *Builder
}

// NewIndex builds an Index over table using builder to resolve names.
func NewIndex(table *Table, builder *Builder) *Index {
	return &Index{Table: table, Builder: builder}
}

// Find performs a binary search for key inside r, comparing only the
// name property of each probed record. It returns the absolute
// EntryIdx and true on a match, or false if key is absent from r.
func (ix *Index) Find(r Range, key []byte) (EntryIdx, bool, error) {
	lo, hi := 0, int(r.Count)
	for lo < hi {
		mid := lo + (hi-lo)/2
		idx := r.First + EntryIdx(mid)
		raw, err := ix.Table.RawRecord(idx)
		if err != nil {
			return 0, false, err
		}
		ref, err := ix.Table.Schema.NameRef(raw)
		if err != nil {
			return 0, false, err
		}
		c := ix.Builder.Names.Compare(ref, key)
		switch {
		case c == 0:
			return idx, true, nil
		case c < 0:
			lo = mid + 1
		case c > 0:
			hi = mid
		default:
			return 0, false, fmt.Errorf("%w: directory comparator is not total", arxerr.ErrFormat)
		}
	}
	return 0, false, nil
}

// Get decodes the i-th entry (relative to r.First) of r.
func (ix *Index) Get(r Range, i uint32) (Entry, error) {
	if i >= r.Count {
		return nil, fmt.Errorf("directory index %d out of range (count %d)", i, r.Count)
	}
	idx := r.First + EntryIdx(i)
	raw, err := ix.Table.RawRecord(idx)
	if err != nil {
		return nil, err
	}
	return ix.Builder.Decode(ix.Table.Schema, raw)
}

// GetIdx decodes the entry at absolute idx.
func (ix *Index) GetIdx(idx EntryIdx) (Entry, error) {
	raw, err := ix.Table.RawRecord(idx)
	if err != nil {
		return nil, err
	}
	return ix.Builder.Decode(ix.Table.Schema, raw)
}
