package fusefs

import (
	"fmt"
	"syscall"
	"testing"

	"github.com/arxfmt/arx/arxerr"
)

func TestToErrno(t *testing.T) {
	cases := []struct {
		err  error
		want syscall.Errno
	}{
		{arxerr.ErrPathNotFound, syscall.ENOENT},
		{arxerr.ErrWrongKind, syscall.ENOTDIR},
		{arxerr.ErrMissingPack, missingPackErrno},
		{arxerr.ErrFormat, syscall.EIO},
		{fmt.Errorf("wrapped: %w", arxerr.ErrFormat), syscall.EIO},
	}
	for _, c := range cases {
		if got := toErrno(c.err); got != c.want {
			t.Errorf("toErrno(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}
