// Package extract materializes an archive onto a real filesystem:
// directories and symlinks are created on the walk goroutine, file
// bodies in parallel by a bounded worker pool.
package extract

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/arxfmt/arx/arx"
	"github.com/arxfmt/arx/arxerr"
	"github.com/arxfmt/arx/entry"
)

// OverwritePolicy controls what happens when extraction would
// overwrite an existing file (the `--overwrite` flag).
type OverwritePolicy int

const (
	Skip OverwritePolicy = iota
	Warn
	Newer
	Overwrite
	ErrorPolicy
)

// ParseOverwritePolicy maps a CLI token to an OverwritePolicy.
func ParseOverwritePolicy(token string) (OverwritePolicy, error) {
	switch token {
	case "", "skip":
		return Skip, nil
	case "warn":
		return Warn, nil
	case "newer":
		return Newer, nil
	case "overwrite":
		return Overwrite, nil
	case "error":
		return ErrorPolicy, nil
	default:
		return 0, fmt.Errorf("unknown overwrite policy %q", token)
	}
}

// Options configures one extraction run.
type Options struct {
	OutDir    string
	RootDir   string // --root-dir: extract as if this subpath were the archive root
	Filter    []string
	Recurse   bool
	Overwrite OverwritePolicy
	Workers   int
}

// Extractor drives one archive → filesystem materialization.
type Extractor struct {
	archive *arx.Archive
	opts    Options
	log     *logrus.Logger
	failed  atomic.Bool
}

// New returns an Extractor over archive with the given options. log
// may be nil, in which case a disabled logger is used; only worker
// failures, per-file progress, and paths skipped under the Warn policy
// are ever logged.
func New(a *arx.Archive, opts Options, log *logrus.Logger) *Extractor {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Extractor{archive: a, opts: opts, log: log}
}

// Run walks the archive (optionally rooted at opts.RootDir) and
// extracts matching entries under opts.OutDir. It returns an error if
// the root itself can't be resolved or is the wrong kind for
// --root-dir. A failure while creating a directory or symlink
// (including a symlink collision under the error policy) ends the walk,
// and its error is returned once the file workers already started have
// finished. File failures do not stop the walk: a single atomic flag
// records them, and the top-level call fails after the full walk if
// it's set.
func (e *Extractor) Run(ctx context.Context) error {
	root := e.archive.Root()
	if e.opts.RootDir != "" {
		ent, err := e.archive.Resolve(e.opts.RootDir)
		if err != nil {
			return err
		}
		dir, ok := ent.(*entry.Dir)
		if !ok {
			return fmt.Errorf("%w: --root-dir %s is not a directory", arxerr.ErrWrongKind, e.opts.RootDir)
		}
		root = dir.Range()
	}

	if err := os.MkdirAll(e.opts.OutDir, 0o755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", arxerr.ErrIO, e.opts.OutDir, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)

	op := &walkOperator{e: e, g: g, ctx: gctx, pathStack: []string{""}}
	if err := e.archive.Walk(root, op); err != nil {
		_ = g.Wait()
		return err
	}

	_ = g.Wait() // worker errors are absorbed into e.failed, see OnFile
	if e.failed.Load() {
		return fmt.Errorf("one or more entries failed to extract")
	}
	return nil
}

type walkOperator struct {
	e         *Extractor
	g         *errgroup.Group
	ctx       context.Context
	pathStack []string // archive-relative path components from root to current directory
}

func (o *walkOperator) currentPath(name string) string {
	parts := append(append([]string{}, o.pathStack...), name)
	var clean []string
	for _, p := range parts {
		if p != "" {
			clean = append(clean, p)
		}
	}
	return path.Join(clean...)
}

func (o *walkOperator) OnStart() error { return nil }
func (o *walkOperator) OnStop() error  { return nil }

func (o *walkOperator) OnDirectoryEnter(d *entry.Dir) (bool, error) {
	p := o.currentPath(d.Common().Name)
	if !o.e.shouldExtract(p, true) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Join(o.e.opts.OutDir, p), 0o755); err != nil {
		return false, fmt.Errorf("%w: creating directory %s: %v", arxerr.ErrIO, p, err)
	}
	o.pathStack = append(o.pathStack, d.Common().Name)
	return true, nil
}

func (o *walkOperator) OnDirectoryExit(d *entry.Dir) error {
	o.pathStack = o.pathStack[:len(o.pathStack)-1]
	return nil
}

func (o *walkOperator) OnLink(l *entry.Link) error {
	p := o.currentPath(l.Common().Name)
	if !o.e.shouldExtract(p, false) {
		return nil
	}
	dest := filepath.Join(o.e.opts.OutDir, p)
	if _, err := os.Lstat(dest); err == nil {
		proceed, err := o.e.resolveCollision(dest, l.Common())
		if err != nil || !proceed {
			return err
		}
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("%w: removing %s: %v", arxerr.ErrIO, dest, err)
		}
	}
	if err := os.Symlink(string(l.Target), dest); err != nil {
		return fmt.Errorf("%w: symlinking %s: %v", arxerr.ErrIO, dest, err)
	}
	return nil
}

func (o *walkOperator) OnFile(f *entry.File) error {
	p := o.currentPath(f.Common().Name)
	if !o.e.shouldExtract(p, false) {
		return nil
	}
	dest := filepath.Join(o.e.opts.OutDir, p)
	o.g.Go(func() error {
		if err := o.e.writeFile(o.ctx, dest, f); err != nil {
			o.e.log.WithError(err).WithField("path", p).Error("failed to extract file")
			o.e.failed.Store(true)
			// errgroup.WithContext cancels sibling workers on the
			// first non-nil return; one bad file must not cancel the
			// rest of the pool, so absorb the error here and let the
			// remaining workers finish their own work.
			return nil
		}
		return nil
	})
	return nil
}

func (e *Extractor) writeFile(ctx context.Context, dest string, f *entry.File) error {
	if _, err := os.Lstat(dest); err == nil {
		proceed, err := e.resolveCollision(dest, f.Common())
		if err != nil || !proceed {
			return err
		}
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("%w: removing %s: %v", arxerr.ErrIO, dest, err)
		}
	}

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", arxerr.ErrIO, dest, err)
	}
	defer out.Close()

	region, err := e.archive.Content(ctx, f.Content)
	if err != nil {
		return err
	}
	defer region.Release()

	if _, err := out.Write(region.Bytes()); err != nil {
		return fmt.Errorf("%w: writing %s: %v", arxerr.ErrIO, dest, err)
	}
	mtime := time.Unix(int64(f.Common().Mtime), 0)
	if err := os.Chtimes(dest, mtime, mtime); err != nil {
		return fmt.Errorf("%w: setting mtime on %s: %v", arxerr.ErrIO, dest, err)
	}
	e.log.WithField("path", dest).Debug("extracted")
	return nil
}

// resolveCollision applies e.opts.Overwrite to an existing path,
// returning whether the caller should proceed to remove-then-recreate
// it.
func (e *Extractor) resolveCollision(dest string, meta entry.Common) (bool, error) {
	switch e.opts.Overwrite {
	case Skip:
		return false, nil
	case Warn:
		e.log.WithField("path", dest).Warn("skipping existing file")
		return false, nil
	case Overwrite:
		return true, nil
	case ErrorPolicy:
		return false, fmt.Errorf("%w: %s", arxerr.ErrFileExists, dest)
	case Newer:
		st, err := os.Stat(dest)
		if err != nil {
			return false, fmt.Errorf("%w: stat %s: %v", arxerr.ErrIO, dest, err)
		}
		srcMtime := time.Unix(int64(meta.Mtime), 0)
		return srcMtime.After(st.ModTime()), nil
	default:
		return false, nil
	}
}

// shouldExtract reports whether p is selected: an empty filter takes
// everything; otherwise p itself, directories with a filtered
// descendant, and (with Recurse) descendants of a filtered path.
func (e *Extractor) shouldExtract(p string, isDir bool) bool {
	if len(e.opts.Filter) == 0 {
		return true
	}
	for _, f := range e.opts.Filter {
		f = strings.TrimSuffix(f, "/")
		if p == f {
			return true
		}
		if isDir && strings.HasPrefix(f, p+"/") {
			return true
		}
		if e.opts.Recurse && strings.HasPrefix(p, f+"/") {
			return true
		}
	}
	return false
}
