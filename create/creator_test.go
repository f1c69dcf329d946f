package create

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/arxfmt/arx/entry"
	"github.com/arxfmt/arx/pack"
)

// buildAndIndex finalizes c and wraps the result in an entry.Index for
// assertions, returning also the raw records decoded for convenience.
func buildAndIndex(t *testing.T, c *Creator) (*entry.Index, entry.Range, *Result) {
	t.Helper()
	res, err := c.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	builder := entry.NewBuilder(res.Names, res.Targets)
	ix := entry.NewIndex(res.Table, builder)
	return ix, res.Root, res
}

func TestCreatorSortsAndLinksTree(t *testing.T) {
	// {a/b/c.txt("hi"), a/d -> b/c.txt}
	c := NewCreator(pack.AlgoNone)
	a, err := c.AddDir(c.Root(), "a", entry.Common{Mtime: 0})
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.AddDir(a, "b", entry.Common{Mtime: 0})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.AddFile(b, "c.txt", entry.Common{Mtime: 0}, bytes.NewReader([]byte("hi"))); err != nil {
		t.Fatal(err)
	}
	if err := c.AddLink(a, "d", entry.Common{Mtime: 0}, "b/c.txt"); err != nil {
		t.Fatal(err)
	}

	ix, root, _ := buildAndIndex(t, c)

	if root.Count != 1 {
		t.Fatalf("root count = %d, want 1", root.Count)
	}
	rootEntry, err := ix.Get(root, 0)
	if err != nil {
		t.Fatal(err)
	}
	dirA, ok := rootEntry.(*entry.Dir)
	if !ok || dirA.Common().Name != "a" {
		t.Fatalf("root child = %+v, want dir a", rootEntry)
	}

	aRange := dirA.Range()
	if aRange.Count != 2 {
		t.Fatalf("a has %d children, want 2", aRange.Count)
	}
	first, err := ix.Get(aRange, 0)
	if err != nil {
		t.Fatal(err)
	}
	second, err := ix.Get(aRange, 1)
	if err != nil {
		t.Fatal(err)
	}
	// siblings sorted: "b" < "d"
	if first.Common().Name != "b" || second.Common().Name != "d" {
		t.Fatalf("a's children = %q, %q, want b, d", first.Common().Name, second.Common().Name)
	}

	dirB := first.(*entry.Dir)
	bRange := dirB.Range()
	if bRange.Count != 1 {
		t.Fatalf("b has %d children, want 1", bRange.Count)
	}
	file, err := ix.Get(bRange, 0)
	if err != nil {
		t.Fatal(err)
	}
	f, ok := file.(*entry.File)
	if !ok || f.Common().Name != "c.txt" || f.Size != 2 {
		t.Fatalf("b's child = %+v, want file c.txt size 2", file)
	}

	link := second.(*entry.Link)
	if string(link.Target) != "b/c.txt" {
		t.Fatalf("d's target = %q, want b/c.txt", link.Target)
	}

	// parent back-reference: b's parent field points at a.
	if dirB.Common().Parent != 1 {
		t.Errorf("b.Parent = %d, want 1 (a's EntryIdx+1)", dirB.Common().Parent)
	}
}

func TestCreatorContentDedup(t *testing.T) {
	// two files with identical bytes must share a content id.
	c := NewCreator(pack.AlgoNone)
	if err := c.AddFile(c.Root(), "one.txt", entry.Common{}, bytes.NewReader([]byte("same bytes"))); err != nil {
		t.Fatal(err)
	}
	if err := c.AddFile(c.Root(), "two.txt", entry.Common{}, bytes.NewReader([]byte("same bytes"))); err != nil {
		t.Fatal(err)
	}

	ix, root, _ := buildAndIndex(t, c)
	if root.Count != 2 {
		t.Fatalf("root count = %d, want 2", root.Count)
	}
	e1, err := ix.Get(root, 0)
	if err != nil {
		t.Fatal(err)
	}
	e2, err := ix.Get(root, 1)
	if err != nil {
		t.Fatal(err)
	}
	f1, f2 := e1.(*entry.File), e2.(*entry.File)
	if f1.Content != f2.Content {
		t.Errorf("identical content got distinct addresses: %+v vs %+v", f1.Content, f2.Content)
	}
}

func TestCreatorDirectoryWith1024Children(t *testing.T) {
	c := NewCreator(pack.AlgoNone)
	for i := 0; i < 1024; i++ {
		name := fmt.Sprintf("file-%04d", i)
		if err := c.AddFile(c.Root(), name, entry.Common{}, bytes.NewReader(nil)); err != nil {
			t.Fatalf("AddFile %d: %v", i, err)
		}
	}
	ix, root, _ := buildAndIndex(t, c)
	if root.Count != 1024 {
		t.Fatalf("root count = %d, want 1024", root.Count)
	}
	var prev string
	for i := uint32(0); i < root.Count; i++ {
		e, err := ix.Get(root, i)
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
		name := e.Common().Name
		if i > 0 && !(prev < name) {
			t.Fatalf("children not strictly increasing at %d: %q then %q", i, prev, name)
		}
		prev = name
	}
}
