package entry

import (
	"testing"

	"github.com/arxfmt/arx/store"
)

// buildTestTable writes one directory record per name, in the given
// order, starting at EntryIdx 0, and returns the Index over them and
// the Range covering them. Find needs the names in strictly increasing
// order; Get does not.
func buildTestTable(t *testing.T, names []string) (*Index, Range) {
	t.Helper()
	nameStore := store.New()
	targetStore := store.New()
	s := ComputeWidths(1<<20, 300, 300, 300, 300, 1<<40, 300, 1<<33, 300, 300, 1<<20, 300)

	var data []byte
	for i, n := range names {
		ref := nameStore.Append([]byte(n))
		raw := Raw{
			NameRef: ref,
			Parent:  0,
			Kind:    KindDir,
			// make each a distinguishable "directory" with an
			// increasing, decodable first child so Get() round trips.
			FirstChild: EntryIdx(1000 + i),
			NbChildren: uint32(i),
		}
		data = append(data, s.Encode(raw)...)
	}
	table := &Table{Schema: s, Data: data}
	builder := NewBuilder(nameStore, targetStore)
	ix := NewIndex(table, builder)
	return ix, Range{First: 0, Count: uint32(len(names))}
}

func TestIndexFind(t *testing.T) {
	names := []string{"alpha", "beta", "gamma", "zzz"}
	ix, r := buildTestTable(t, names)

	for i, want := range names {
		idx, ok, err := ix.Find(r, []byte(want))
		if err != nil {
			t.Fatalf("Find(%q): %v", want, err)
		}
		if !ok {
			t.Fatalf("Find(%q): not found", want)
		}
		if idx != EntryIdx(i) {
			t.Errorf("Find(%q) = %d, want %d", want, idx, i)
		}
	}

	if _, ok, err := ix.Find(r, []byte("missing")); err != nil || ok {
		t.Errorf("Find(missing) = ok=%v err=%v, want ok=false err=nil", ok, err)
	}
}

func TestIndexGet(t *testing.T) {
	names := []string{"one", "two", "three"}
	ix, r := buildTestTable(t, names)

	for i, want := range names {
		e, err := ix.Get(r, uint32(i))
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
		if e.Common().Name != want {
			t.Errorf("Get(%d).Name = %q, want %q", i, e.Common().Name, want)
		}
	}

	if _, err := ix.Get(r, uint32(len(names))); err == nil {
		t.Error("Get out of range: expected error")
	}
}

func TestIndexFindUnsignedByteOrder(t *testing.T) {
	// Names straddling the 0x7F/0x80 boundary must sort unsigned, not
	// by locale: "\x7f" < "\x80".
	names := []string{"\x7f", "\x80"}
	ix, r := buildTestTable(t, names)

	idx, ok, err := ix.Find(r, []byte("\x80"))
	if err != nil || !ok {
		t.Fatalf("Find: ok=%v err=%v", ok, err)
	}
	if idx != 1 {
		t.Errorf("Find(0x80) = %d, want 1 (unsigned order)", idx)
	}
}
