//go:build linux

package fusefs

import "syscall"

// missingPackErrno is returned by open(2) when a file's content pack
// is neither embedded nor locatable externally. Linux has a dedicated
// errno for absent media; other hosts use ENODATA.
const missingPackErrno = syscall.ENOMEDIUM
