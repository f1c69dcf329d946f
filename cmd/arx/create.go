package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arxfmt/arx/create"
	"github.com/arxfmt/arx/pack"
)

func runCreate(args []string) error {
	fset := flag.NewFlagSet("create", flag.ContinueOnError)
	out := fset.String("f", "", "archive to create")
	base := fset.String("C", ".", "base directory FILES are relative to")
	stripPrefix := fset.String("strip-prefix", "", "prefix to strip from each added path's archive name")
	list := fset.String("L", "", "file listing paths to add, one per line")
	force := fset.Bool("force", false, "overwrite an existing archive")
	compression := fset.String("compression", "zstd", "compression algorithm: none, lz4[=LEVEL], lzma[=LEVEL], zstd[=LEVEL]")
	one := fset.Bool("1", false, "write a single file embedding every pack (the default)")
	two := fset.Bool("2", false, "write two files: manifest+directory pack, plus a content pack file")
	perPack := fset.Bool("N", false, "write one file per pack")
	recurse := fset.Bool("r", false, "recurse into directories given as FILES")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return fmt.Errorf("create: -f is required")
	}
	if !*force {
		if _, err := os.Stat(*out); err == nil {
			return fmt.Errorf("create: %s already exists (use --force)", *out)
		}
	}

	mode := create.Concat1
	switch {
	case *perPack:
		mode = create.ConcatN
	case *two:
		mode = create.Concat2
	case *one:
		mode = create.Concat1
	}

	algToken, level, err := parseCompressionToken(*compression)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	algo, err := pack.ParseAlgorithm(algToken)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}

	paths := fset.Args()
	if *list != "" {
		lines, err := readList(*list)
		if err != nil {
			return fmt.Errorf("create: %w", err)
		}
		paths = append(paths, lines...)
	}

	// No FILES and no -L means an empty archive: nothing is added
	// implicitly.
	c := create.NewCreatorLevel(algo, level)
	for _, p := range paths {
		if err := addPath(c, *base, *stripPrefix, p, *recurse); err != nil {
			return fmt.Errorf("create: %w", err)
		}
	}

	res, err := c.Finalize()
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	return create.WriteArchive(*out, res, mode)
}

func addPath(c *create.Creator, base, stripPrefix, p string, recurse bool) error {
	name := strings.TrimPrefix(strings.TrimPrefix(p, stripPrefix), "/")
	if name == "" {
		name = filepath.Base(p)
	}
	full := p
	if !filepath.IsAbs(full) {
		full = filepath.Join(base, p)
	}
	info, err := os.Lstat(full)
	if err != nil {
		return err
	}
	meta := create.CommonFromInfo(info)
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(full)
		if err != nil {
			return err
		}
		return c.AddLink(c.Root(), name, meta, target)
	case info.IsDir():
		dir, err := c.AddDir(c.Root(), name, meta)
		if err != nil {
			return err
		}
		// Without -r a directory argument adds only the directory
		// entry itself, no descendants.
		if !recurse {
			return nil
		}
		return c.AddTree(dir, full)
	default:
		f, err := os.Open(full)
		if err != nil {
			return err
		}
		defer f.Close()
		return c.AddFile(c.Root(), name, meta, f)
	}
}
