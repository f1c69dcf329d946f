//go:build !linux

package fusefs

import "syscall"

// missingPackErrno is returned by open(2) when a file's content pack
// is neither embedded nor locatable externally.
const missingPackErrno = syscall.ENODATA
