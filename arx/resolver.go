package arx

import (
	"fmt"
	"strings"

	"github.com/arxfmt/arx/arxerr"
	"github.com/arxfmt/arx/entry"
)

// Resolve walks path, slash-separated, through nested directory
// ranges starting at arx_root, and returns the entry named by the
// final component.
//
// An empty path is invalid; a leading or trailing slash is ignored.
func (a *Archive) Resolve(path string) (entry.Entry, error) {
	comps, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	return a.resolveComponents(comps)
}

func splitPath(p string) ([]string, error) {
	p = strings.TrimPrefix(p, "/")
	p = strings.TrimSuffix(p, "/")
	if p == "" {
		return nil, fmt.Errorf("%w: empty path", arxerr.ErrPathNotFound)
	}
	parts := strings.Split(p, "/")
	for _, c := range parts {
		if err := entry.ValidateName(c); err != nil {
			return nil, err
		}
	}
	return parts, nil
}

func (a *Archive) resolveComponents(comps []string) (entry.Entry, error) {
	r := a.root
	for i, c := range comps {
		idx, ok, err := a.index.Find(r, []byte(c))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", arxerr.ErrPathNotFound, strings.Join(comps[:i+1], "/"))
		}
		if i == len(comps)-1 {
			return a.index.GetIdx(idx)
		}
		e, err := a.index.GetIdx(idx)
		if err != nil {
			return nil, err
		}
		dir, ok := e.(*entry.Dir)
		if !ok {
			return nil, fmt.Errorf("%w: %s is not a directory", arxerr.ErrPathNotFound, strings.Join(comps[:i+1], "/"))
		}
		r = dir.Range()
	}
	// comps is never empty (splitPath rejects ""), so the loop above
	// always returns.
	return nil, fmt.Errorf("%w: empty path", arxerr.ErrPathNotFound)
}
