package pack

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// lz4Levels maps a numeric CLI level to pierrec/lz4's level constants;
// 0 selects the fast (default) mode.
var lz4Levels = []lz4.CompressionLevel{
	lz4.Fast, lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4,
	lz4.Level5, lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9,
}

// compress encodes src under algo at level, returning the compressed
// bytes. level 0 means the codec's default; lzma has no numeric
// presets in ulikunitz/xz, so its level is accepted and ignored.
func compress(algo Algorithm, level int, src []byte) ([]byte, error) {
	var buf bytes.Buffer
	switch algo {
	case AlgoNone:
		return append([]byte(nil), src...), nil
	case AlgoLZ4:
		w := lz4.NewWriter(&buf)
		if level > 0 {
			if level >= len(lz4Levels) {
				level = len(lz4Levels) - 1
			}
			if err := w.Apply(lz4.CompressionLevelOption(lz4Levels[level])); err != nil {
				return nil, err
			}
		}
		if _, err := w.Write(src); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	case AlgoLZMA:
		w, err := xz.NewWriter(&buf)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(src); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	case AlgoZstd:
		var opts []zstd.EOption
		if level > 0 {
			opts = append(opts, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		}
		w, err := zstd.NewWriter(&buf, opts...)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(src); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported compression algorithm %d", algo)
	}
	return buf.Bytes(), nil
}

// decompress inflates src (compressed under algo) into a buffer of
// exactly uncompressedLen bytes.
func decompress(algo Algorithm, src []byte, uncompressedLen int) ([]byte, error) {
	switch algo {
	case AlgoNone:
		return src, nil
	case AlgoLZ4:
		r := lz4.NewReader(bytes.NewReader(src))
		return readExact(r, uncompressedLen)
	case AlgoLZMA:
		r, err := xz.NewReader(bytes.NewReader(src))
		if err != nil {
			return nil, err
		}
		return readExact(r, uncompressedLen)
	case AlgoZstd:
		r, err := zstd.NewReader(bytes.NewReader(src))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return readExact(r, uncompressedLen)
	default:
		return nil, fmt.Errorf("unsupported compression algorithm %d", algo)
	}
}

func readExact(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
