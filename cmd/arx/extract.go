package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/arxfmt/arx/arx"
	"github.com/arxfmt/arx/extract"
)

func runExtract(args []string) error {
	fset := flag.NewFlagSet("extract", flag.ContinueOnError)
	file := fset.String("f", "", "archive to extract")
	outDir := fset.String("C", ".", "output directory")
	rootDir := fset.String("root-dir", "", "extract this subpath as if it were the archive root")
	list := fset.String("L", "", "file listing paths to extract, one per line")
	progress := fset.Bool("progress", false, "report each extracted file")
	overwrite := fset.String("overwrite", "skip", "collision policy: skip, warn, newer, overwrite, error")
	recurse := fset.Bool("r", true, "extract descendants of selected paths")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("extract: -f is required")
	}

	policy, err := extract.ParseOverwritePolicy(*overwrite)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	filter := fset.Args()
	if *list != "" {
		lines, err := readList(*list)
		if err != nil {
			return fmt.Errorf("extract: %w", err)
		}
		filter = append(filter, lines...)
	}

	log := newLogger()
	if *progress {
		log.SetLevel(logrus.DebugLevel)
	}

	archive, err := arx.OpenFile(*file)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	defer archive.Close()

	ex := extract.New(archive, extract.Options{
		OutDir:    *outDir,
		RootDir:   *rootDir,
		Filter:    filter,
		Recurse:   *recurse,
		Overwrite: policy,
	}, log)
	if err := ex.Run(context.Background()); err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	return nil
}
