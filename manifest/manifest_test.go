package manifest

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/arxfmt/arx/arxerr"
)

func TestManifestRoundTrip(t *testing.T) {
	m := &Manifest{Packs: []Entry{
		{Kind: KindDirectory, ID: uuid.New(), Offset: 60},
		{Kind: KindContent, ID: uuid.New(), External: "archive.pack0"},
	}}

	var buf bytes.Buffer
	if err := Write(&buf, m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.Len() != m.EncodedLen() {
		t.Errorf("EncodedLen() = %d, wrote %d bytes", m.EncodedLen(), buf.Len())
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got.Packs) != 2 {
		t.Fatalf("read %d packs, want 2", len(got.Packs))
	}
	if got.Packs[0] != m.Packs[0] || got.Packs[1] != m.Packs[1] {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got.Packs, m.Packs)
	}

	dir, err := got.DirectoryPack()
	if err != nil {
		t.Fatalf("DirectoryPack: %v", err)
	}
	if dir.Offset != 60 {
		t.Errorf("directory pack offset = %d, want 60", dir.Offset)
	}
	content := got.ContentPackIDs()
	if len(content) != 1 || content[0].External != "archive.pack0" {
		t.Errorf("ContentPackIDs = %+v", content)
	}
}

func TestReadRejectsWrongVendorID(t *testing.T) {
	if _, err := Read(bytes.NewReader([]byte{'Z', 'I', 'P', 0, 1, 0})); !errors.Is(err, arxerr.ErrNotAnArxArchive) {
		t.Errorf("err = %v, want NotAnArxArchive", err)
	}
	// truncated before the vendor id is also NotAnArxArchive, not a
	// format error: nothing identified the file as Arx yet.
	if _, err := Read(bytes.NewReader([]byte{'A', 'R'})); !errors.Is(err, arxerr.ErrNotAnArxArchive) {
		t.Errorf("truncated err = %v, want NotAnArxArchive", err)
	}
}

func TestReadRejectsTruncatedPackTable(t *testing.T) {
	m := &Manifest{Packs: []Entry{{Kind: KindDirectory, ID: uuid.New()}}}
	var buf bytes.Buffer
	if err := Write(&buf, m); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(bytes.NewReader(buf.Bytes()[:buf.Len()-3])); !errors.Is(err, arxerr.ErrFormat) {
		t.Errorf("err = %v, want FormatError", err)
	}
}

func TestFooterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFooter(&buf, 12345); err != nil {
		t.Fatalf("WriteFooter: %v", err)
	}
	if buf.Len() != FooterSize {
		t.Fatalf("footer is %d bytes, want %d", buf.Len(), FooterSize)
	}
	n, ok := ParseFooter(buf.Bytes())
	if !ok || n != 12345 {
		t.Errorf("ParseFooter = (%d, %v), want (12345, true)", n, ok)
	}
}

func TestParseFooterRejectsGarbage(t *testing.T) {
	if _, ok := ParseFooter(make([]byte, FooterSize)); ok {
		t.Error("ParseFooter accepted zero bytes")
	}
	if _, ok := ParseFooter([]byte{1, 2, 3}); ok {
		t.Error("ParseFooter accepted a short buffer")
	}
}
