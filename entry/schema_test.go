package entry

import (
	"testing"

	"github.com/arxfmt/arx/store"
)

func TestSchemaEncodeDecodeRoundTrip(t *testing.T) {
	s := ComputeWidths(300, 10, 5, 70000, 1000, 1<<40, 5, 1<<33, 1024, 1024, 50, 8)

	tests := []struct {
		name string
		raw  Raw
	}{
		{
			name: "file",
			raw: Raw{
				NameRef: store.Ref{Offset: 12, Len: 5},
				Parent:  3,
				Owner:   1000,
				Group:   1000,
				Rights:  0o644,
				Mtime:   1700000000,
				Kind:    KindFile,
				Content: ContentAddress{PackID: 2, ContentID: 99},
				Size:    123456,
			},
		},
		{
			name: "dir",
			raw: Raw{
				NameRef:    store.Ref{Offset: 0, Len: 1},
				Parent:     0,
				Owner:      0,
				Group:      0,
				Rights:     0o755,
				Mtime:      0,
				Kind:       KindDir,
				FirstChild: 7,
				NbChildren: 1024,
			},
		},
		{
			name: "link",
			raw: Raw{
				NameRef:   store.Ref{Offset: 40, Len: 3},
				Parent:    1,
				Kind:      KindLink,
				TargetRef: store.Ref{Offset: 2, Len: 8},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := s.Encode(tt.raw)
			if len(buf) != s.RecordSize() {
				t.Fatalf("encoded length %d != RecordSize %d", len(buf), s.RecordSize())
			}
			got, err := s.Decode(buf)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got != tt.raw {
				t.Errorf("round trip mismatch\n got: %+v\nwant: %+v", got, tt.raw)
			}
		})
	}
}

func TestSchemaDecodeTruncated(t *testing.T) {
	s := ComputeWidths(10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10)
	_, err := s.Decode(make([]byte, 1))
	if err == nil {
		t.Fatal("expected error decoding truncated record")
	}
}

func TestSchemaDecodeUnknownTag(t *testing.T) {
	s := ComputeWidths(10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10)
	buf := s.Encode(Raw{Kind: KindFile})
	tagOff := s.commonSize()
	buf[tagOff] = 0x7f
	if _, err := s.Decode(buf); err == nil {
		t.Fatal("expected error decoding unknown variant tag")
	}
}

func TestRecordSizeIsFixedAcrossVariants(t *testing.T) {
	s := ComputeWidths(1<<20, 300, 1<<16, 1<<20, 1<<20, 1<<40, 1<<20, 1<<33, 1<<16, 1<<20, 1<<20, 300)
	sizes := map[Kind]int{}
	for _, k := range []Kind{KindFile, KindDir, KindLink} {
		sizes[k] = len(s.Encode(Raw{Kind: k}))
	}
	if sizes[KindFile] != sizes[KindDir] || sizes[KindDir] != sizes[KindLink] {
		t.Errorf("record sizes differ across variants: %+v", sizes)
	}
}
