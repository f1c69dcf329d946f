package manifest

import (
	"encoding/binary"
	"io"
)

// FooterSize is the byte length of the self-locating footer a one-file
// archive carries at its very end.
const FooterSize = 12

// WriteFooter appends the self-locating footer to a one-file archive:
// the archive's byte length (manifest through last pack, excluding the
// footer itself) followed by the vendor id. A reader handed a larger
// file with an archive appended at its end (a self-mounting
// executable) reads these trailing bytes to find where the archive
// starts.
func WriteFooter(w io.Writer, archiveLen uint64) error {
	var b [FooterSize]byte
	binary.LittleEndian.PutUint64(b[:8], archiveLen)
	copy(b[8:], VendorID[:])
	_, err := w.Write(b[:])
	return err
}

// ParseFooter decodes the trailing FooterSize bytes of a file. It
// returns the archive length and whether the vendor id matched; a
// mismatch means no archive is appended.
func ParseFooter(b []byte) (archiveLen uint64, ok bool) {
	if len(b) != FooterSize {
		return 0, false
	}
	if [4]byte(b[8:12]) != VendorID {
		return 0, false
	}
	return binary.LittleEndian.Uint64(b[:8]), true
}
