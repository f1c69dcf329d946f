package lru

import (
	"fmt"
	"testing"
)

func TestLRU(t *testing.T) {
	c := New[int, string](3)

	assertLen := func(want int) {
		t.Helper()
		if c.Len() != want {
			t.Errorf("Len() = %d, want %d", c.Len(), want)
		}
	}

	assertGet := func(key int, want string, wantOK bool) {
		t.Helper()
		got, ok := c.Get(key)
		if ok != wantOK || got != want {
			t.Errorf("Get(%d) = (%q, %v), want (%q, %v)", key, got, ok, want, wantOK)
		}
	}

	t.Run("AddGet", func(t *testing.T) {
		c.Add(1, "one")
		c.Add(2, "two")
		assertLen(2)
		assertGet(1, "one", true)
		assertGet(3, "", false)
	})

	t.Run("EvictsLeastRecentlyUsed", func(t *testing.T) {
		c.Add(3, "three")
		assertLen(3)
		// 2 is now the least recently used (1 was refreshed by the
		// Get above); adding a fourth entry must evict it.
		c.Add(4, "four")
		assertLen(3)
		assertGet(2, "", false)
		assertGet(1, "one", true)
		assertGet(3, "three", true)
		assertGet(4, "four", true)
	})

	t.Run("UpdateExisting", func(t *testing.T) {
		c.Add(4, "FOUR")
		assertLen(3)
		assertGet(4, "FOUR", true)
	})

	t.Run("FIFOEvictionWithoutGets", func(t *testing.T) {
		fresh := New[int, int](4)
		for i := 0; i < 8; i++ {
			fresh.Add(i, i)
		}
		for i := 0; i < 4; i++ {
			if _, ok := fresh.Get(i); ok {
				t.Errorf("key %d should have been evicted", i)
			}
		}
		for i := 4; i < 8; i++ {
			if v, ok := fresh.Get(i); !ok || v != i {
				t.Errorf("Get(%d) = (%d, %v), want (%d, true)", i, v, ok, i)
			}
		}
	})
}

func TestLRUStructKeys(t *testing.T) {
	type key struct {
		parent uint64
		name   string
	}
	c := New[key, int](2)
	for i := 0; i < 3; i++ {
		c.Add(key{parent: 1, name: fmt.Sprintf("n%d", i)}, i)
	}
	if _, ok := c.Get(key{parent: 1, name: "n0"}); ok {
		t.Error("oldest struct key should have been evicted")
	}
	if v, ok := c.Get(key{parent: 1, name: "n2"}); !ok || v != 2 {
		t.Errorf("Get(n2) = (%d, %v), want (2, true)", v, ok)
	}
}
