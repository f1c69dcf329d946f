package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/arxfmt/arx/arx"
	"github.com/arxfmt/arx/entry"
)

func runList(args []string) error {
	fset := flag.NewFlagSet("list", flag.ContinueOnError)
	stableOutput := fset.Int("stable-output", 0, "emit machine-readable output at the given format version")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if fset.NArg() != 1 {
		return fmt.Errorf("list: expected FILE")
	}

	archive, err := arx.OpenFile(fset.Arg(0))
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	defer archive.Close()

	op := &listOperator{stable: *stableOutput == 1, path: []string{""}}
	if err := archive.Walk(archive.Root(), op); err != nil {
		return fmt.Errorf("list: %w", err)
	}
	return nil
}

// listOperator implements arx.Operator to print one line per entry,
// in either the human format or the `--stable-output 1` format.
type listOperator struct {
	stable bool
	path   []string
}

func (o *listOperator) currentPath(name string) string {
	parts := append(append([]string{}, o.path...), name)
	var clean []string
	for _, p := range parts {
		if p != "" {
			clean = append(clean, p)
		}
	}
	return strings.Join(clean, "/")
}

func (o *listOperator) OnStart() error { return nil }
func (o *listOperator) OnStop() error  { return nil }

func (o *listOperator) OnDirectoryEnter(d *entry.Dir) (bool, error) {
	p := o.currentPath(d.Common().Name)
	if o.stable {
		fmt.Printf("d %d %s\n", d.Common().Mtime, p)
	} else {
		fmt.Printf("d\t%s\n", p)
	}
	o.path = append(o.path, d.Common().Name)
	return true, nil
}

func (o *listOperator) OnDirectoryExit(d *entry.Dir) error {
	o.path = o.path[:len(o.path)-1]
	return nil
}

func (o *listOperator) OnFile(f *entry.File) error {
	p := o.currentPath(f.Common().Name)
	if o.stable {
		fmt.Printf("f %d %d %s\n", f.Common().Mtime, f.Size, p)
	} else {
		fmt.Printf("f\t%d\t%s\n", f.Size, p)
	}
	return nil
}

func (o *listOperator) OnLink(l *entry.Link) error {
	p := o.currentPath(l.Common().Name)
	if o.stable {
		fmt.Printf("l %d %s->%s\n", l.Common().Mtime, p, l.Target)
	} else {
		fmt.Printf("l\t%s -> %s\n", p, l.Target)
	}
	return nil
}
