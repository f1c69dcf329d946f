package create

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/arxfmt/arx/arxerr"
	"github.com/arxfmt/arx/entry"
)

// AddTree walks the real filesystem at root and ingests it under dir,
// recursively. It is the default entry source, and deliberately just
// another caller of the public AddDir/AddFile/AddLink API rather than
// a privileged internal path.
func (c *Creator) AddTree(dir *DirHandle, root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", arxerr.ErrIO, root, err)
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	sort.Strings(names)

	for _, name := range names {
		full := filepath.Join(root, name)
		info, err := os.Lstat(full)
		if err != nil {
			return fmt.Errorf("%w: stat %s: %v", arxerr.ErrIO, full, err)
		}
		meta := CommonFromInfo(info)

		switch {
		case info.Mode()&os.ModeSymlink != 0:
			target, err := os.Readlink(full)
			if err != nil {
				return fmt.Errorf("%w: readlink %s: %v", arxerr.ErrIO, full, err)
			}
			if err := c.AddLink(dir, name, meta, target); err != nil {
				return err
			}
		case info.IsDir():
			sub, err := c.AddDir(dir, name, meta)
			if err != nil {
				return err
			}
			if err := c.AddTree(sub, full); err != nil {
				return err
			}
		default:
			f, err := os.Open(full)
			if err != nil {
				return fmt.Errorf("%w: open %s: %v", arxerr.ErrIO, full, err)
			}
			err = c.AddFile(dir, name, meta, f)
			f.Close()
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// CommonFromInfo captures the four archive-wide metadata fields
// (Owner, Group, Rights, Mtime) off a real filesystem's os.FileInfo.
// AddTree and cmd/arx's create subcommand both build an entry.Common
// through this single function, so a directly-named FILES argument
// and a recursively-descended one carry the same metadata.
func CommonFromInfo(info os.FileInfo) entry.Common {
	owner, group := fileOwner(info)
	return entry.Common{
		Owner:  owner,
		Group:  group,
		Rights: uint16(info.Mode().Perm()),
		Mtime:  uint64(info.ModTime().Unix()),
	}
}
