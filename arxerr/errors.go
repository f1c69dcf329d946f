// Package arxerr defines the error taxonomy shared by every Arx component.
//
// The library never logs; it returns one of the sentinel errors below,
// usually wrapped with additional context via fmt.Errorf's %w verb so
// that callers can still errors.Is against the sentinel.
package arxerr

import "errors"

var (
	// ErrFormat covers unexpected magic, wrong variant tags, truncated
	// records, and non-total comparators. Always fatal to the current
	// operation.
	ErrFormat = errors.New("arx: format error")

	// ErrNotAnArxArchive means the manifest pack is present but its
	// vendor id does not match Arx's.
	ErrNotAnArxArchive = errors.New("arx: not an arx archive")

	// ErrPathNotFound means the resolver could not locate a path
	// component.
	ErrPathNotFound = errors.New("arx: path not found")

	// ErrWrongKind means an operation required a specific entry kind
	// (e.g. dump on a directory).
	ErrWrongKind = errors.New("arx: wrong entry kind")

	// ErrMissingPack means a content address references a pack that is
	// neither embedded nor locatable externally.
	ErrMissingPack = errors.New("arx: missing content pack")

	// ErrIO covers underlying storage failures.
	ErrIO = errors.New("arx: io error")

	// ErrFileExists means the extractor collided with an existing file
	// under the Error overwrite policy.
	ErrFileExists = errors.New("arx: file exists")

	// ErrCannotMountRW means the caller asked to mount read-write.
	ErrCannotMountRW = errors.New("arx: cannot mount read-write")
)
