package fusefs

import (
	"errors"
	"syscall"

	"github.com/arxfmt/arx/arxerr"
)

// toErrno maps a library error to the nearest errno. Every call site
// that can observe a decode failure on the hot path goes through this
// rather than panicking; a corrupt record must surface as EIO, not
// take the whole mount down.
func toErrno(err error) syscall.Errno {
	switch {
	case errors.Is(err, arxerr.ErrPathNotFound):
		return syscall.ENOENT
	case errors.Is(err, arxerr.ErrWrongKind):
		return syscall.ENOTDIR
	case errors.Is(err, arxerr.ErrMissingPack):
		return missingPackErrno
	case errors.Is(err, arxerr.ErrFormat):
		return syscall.EIO
	default:
		return syscall.EIO
	}
}
