package arx

import "github.com/arxfmt/arx/entry"

// Operator receives depth-first preorder traversal events.
// OnDirectoryEnter's bool return prunes the subtree when false. Any
// error returned from any method terminates the walk and is propagated
// to Walk's caller unchanged.
type Operator interface {
	OnStart() error
	OnDirectoryEnter(dir *entry.Dir) (descend bool, err error)
	OnFile(file *entry.File) error
	OnLink(link *entry.Link) error
	OnDirectoryExit(dir *entry.Dir) error
	OnStop() error
}

// Walk performs a depth-first preorder traversal of r, dispatching to
// op. Siblings are visited in stored (sorted) order, the same order a
// readdir over the mounted archive reports them; no entry is visited
// twice.
func (a *Archive) Walk(r entry.Range, op Operator) error {
	if err := op.OnStart(); err != nil {
		return err
	}
	if err := a.walkRange(r, op); err != nil {
		return err
	}
	return op.OnStop()
}

func (a *Archive) walkRange(r entry.Range, op Operator) error {
	for i := uint32(0); i < r.Count; i++ {
		e, err := a.index.Get(r, i)
		if err != nil {
			return err
		}
		switch v := e.(type) {
		case *entry.Dir:
			descend, err := op.OnDirectoryEnter(v)
			if err != nil {
				return err
			}
			if descend {
				if err := a.walkRange(v.Range(), op); err != nil {
					return err
				}
			}
			if err := op.OnDirectoryExit(v); err != nil {
				return err
			}
		case *entry.File:
			if err := op.OnFile(v); err != nil {
				return err
			}
		case *entry.Link:
			if err := op.OnLink(v); err != nil {
				return err
			}
		}
	}
	return nil
}
