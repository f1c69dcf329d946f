package create

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/arxfmt/arx/arx"
	"github.com/arxfmt/arx/arxerr"
	"github.com/arxfmt/arx/manifest"
)

// ConcatMode is the packaging decision: how many physical files the
// finalized archive spans. It changes only where pack bytes land,
// never the on-disk format of any individual pack.
type ConcatMode int

const (
	// Concat1 writes a single file embedding the manifest, the
	// directory pack, and the content pack, finished with a locator
	// footer so the same bytes can be appended to an executable and
	// found again (the self-mounting layout).
	Concat1 ConcatMode = 1
	// Concat2 writes the manifest and directory pack into one file and
	// the content pack into a sibling file.
	Concat2 ConcatMode = 2
	// ConcatN writes one file per pack: a manifest whose rows all
	// point at sibling files.
	ConcatN ConcatMode = 3
)

// WriteArchive lays res out on disk at outPath under mode. Sibling
// pack files, when the mode calls for them, are named outPath+".dir"
// and outPath+".pack0". Any partially written file is unlinked on
// error.
func WriteArchive(outPath string, res *Result, mode ConcatMode) (err error) {
	var dirBuf bytes.Buffer
	if err := arx.WriteDirectoryPack(&dirBuf, res.Names, res.Targets, res.Table, res.Root); err != nil {
		return err
	}

	var written []string
	defer func() {
		if err != nil {
			for _, p := range written {
				os.Remove(p)
			}
		}
	}()

	track := func(p string) (*os.File, error) {
		f, cerr := os.Create(p)
		if cerr != nil {
			return nil, fmt.Errorf("%w: creating %s: %v", arxerr.ErrIO, p, cerr)
		}
		written = append(written, p)
		return f, nil
	}

	dirName := filepath.Base(outPath) + ".dir"
	packName := filepath.Base(outPath) + ".pack0"

	switch mode {
	case Concat1:
		m := &manifest.Manifest{Packs: []manifest.Entry{
			{Kind: manifest.KindDirectory, ID: uuid.New()},
			{Kind: manifest.KindContent, ID: uuid.New()},
		}}
		hdrLen := m.EncodedLen()
		m.Packs[0].Offset = uint64(hdrLen)
		m.Packs[1].Offset = uint64(hdrLen + dirBuf.Len())

		f, err := track(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := manifest.Write(f, m); err != nil {
			return err
		}
		if _, err := f.Write(dirBuf.Bytes()); err != nil {
			return err
		}
		if _, err := f.Write(res.Content); err != nil {
			return err
		}
		total := uint64(hdrLen + dirBuf.Len() + len(res.Content))
		if err := manifest.WriteFooter(f, total); err != nil {
			return err
		}
		return f.Close()

	case Concat2:
		m := &manifest.Manifest{Packs: []manifest.Entry{
			{Kind: manifest.KindDirectory, ID: uuid.New()},
			{Kind: manifest.KindContent, ID: uuid.New(), External: packName},
		}}
		m.Packs[0].Offset = uint64(m.EncodedLen())

		f, err := track(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := manifest.Write(f, m); err != nil {
			return err
		}
		if _, err := f.Write(dirBuf.Bytes()); err != nil {
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		return writeSibling(filepath.Join(filepath.Dir(outPath), packName), res.Content, &written)

	case ConcatN:
		if err := writeSibling(filepath.Join(filepath.Dir(outPath), dirName), dirBuf.Bytes(), &written); err != nil {
			return err
		}
		if err := writeSibling(filepath.Join(filepath.Dir(outPath), packName), res.Content, &written); err != nil {
			return err
		}
		m := &manifest.Manifest{Packs: []manifest.Entry{
			{Kind: manifest.KindDirectory, ID: uuid.New(), External: dirName},
			{Kind: manifest.KindContent, ID: uuid.New(), External: packName},
		}}
		f, err := track(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := manifest.Write(f, m); err != nil {
			return err
		}
		return f.Close()

	default:
		return fmt.Errorf("unknown concat mode %d", mode)
	}
}

func writeSibling(path string, data []byte, written *[]string) error {
	*written = append(*written, path)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", arxerr.ErrIO, path, err)
	}
	return nil
}
