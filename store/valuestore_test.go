package store

import (
	"bytes"
	"testing"
)

func TestValueStoreAppendAndRead(t *testing.T) {
	s := New()
	r1 := s.Append([]byte("alpha"))
	r2 := s.Append([]byte("beta"))

	if got := s.Bytes(r1); string(got) != "alpha" {
		t.Errorf("Bytes(r1) = %q, want alpha", got)
	}
	if got := s.Bytes(r2); string(got) != "beta" {
		t.Errorf("Bytes(r2) = %q, want beta", got)
	}

	buf := make([]byte, r2.Len)
	n, err := s.ReadInto(r2, buf)
	if err != nil || n != 4 || string(buf) != "beta" {
		t.Errorf("ReadInto = (%d, %v, %q), want (4, nil, beta)", n, err, buf)
	}

	if s.Len() != 9 {
		t.Errorf("Len() = %d, want 9", s.Len())
	}
}

func TestValueStoreCompare(t *testing.T) {
	s := New()
	refAB := s.Append([]byte("ab"))
	refHigh := s.Append([]byte{0x80})
	refLow := s.Append([]byte{0x7F})

	tests := []struct {
		name  string
		ref   Ref
		other []byte
		want  int // sign only
	}{
		{"equal", refAB, []byte("ab"), 0},
		{"less", refAB, []byte("ac"), -1},
		{"greater", refAB, []byte("aa"), 1},
		{"prefix is smaller", refAB, []byte("abc"), -1},
		{"longer is greater", refAB, []byte("a"), 1},
		// names compare unsigned byte-wise, not as signed bytes or by
		// locale: 0x80 must sort after 0x7F.
		{"0x80 after 0x7F", refHigh, []byte{0x7F}, 1},
		{"0x7F before 0x80", refLow, []byte{0x80}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Compare(tt.ref, tt.other)
			switch {
			case tt.want == 0 && got != 0:
				t.Errorf("Compare = %d, want 0", got)
			case tt.want < 0 && got >= 0:
				t.Errorf("Compare = %d, want < 0", got)
			case tt.want > 0 && got <= 0:
				t.Errorf("Compare = %d, want > 0", got)
			}
		})
	}
}

func TestValueStoreFromBytesRoundTrip(t *testing.T) {
	s := New()
	ref := s.Append([]byte("persisted"))
	reopened := FromBytes(append([]byte(nil), s.Raw()...))
	if got := reopened.Bytes(ref); !bytes.Equal(got, []byte("persisted")) {
		t.Errorf("reopened Bytes = %q, want persisted", got)
	}
}

func TestIndexedValueStoreDedup(t *testing.T) {
	s := NewIndexed()
	id1 := s.Add([]byte("b/c.txt"))
	id2 := s.Add([]byte("other"))
	id3 := s.Add([]byte("b/c.txt"))

	if id1 != id3 {
		t.Errorf("identical values got distinct ids: %d vs %d", id1, id3)
	}
	if id1 == id2 {
		t.Errorf("distinct values share id %d", id1)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	if got := s.Get(id3); string(got) != "b/c.txt" {
		t.Errorf("Get(%d) = %q, want b/c.txt", id3, got)
	}
	if ref := s.RefOf(id1); string(s.Values().Bytes(ref)) != "b/c.txt" {
		t.Errorf("RefOf(%d) resolves to %q", id1, s.Values().Bytes(ref))
	}
}
