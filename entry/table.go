package entry

import (
	"fmt"

	"github.com/arxfmt/arx/arxerr"
)

// Table is the raw, fixed-width entry store: one Schema.RecordSize()
// record per EntryIdx, back to back.
type Table struct {
	Schema Schema
	Data   []byte
}

// Count returns the number of records in the table.
func (t *Table) Count() int {
	sz := t.Schema.RecordSize()
	if sz == 0 {
		return 0
	}
	return len(t.Data) / sz
}

// RawRecord returns the byte slice for idx without decoding it. It
// returns arxerr.ErrFormat if idx is out of bounds.
func (t *Table) RawRecord(idx EntryIdx) ([]byte, error) {
	sz := t.Schema.RecordSize()
	off := int(idx) * sz
	if off+sz > len(t.Data) {
		return nil, fmt.Errorf("%w: entry index %d out of bounds (%d entries)", arxerr.ErrFormat, idx, t.Count())
	}
	return t.Data[off : off+sz], nil
}
