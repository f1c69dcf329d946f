package pack

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/arxfmt/arx/arxerr"
	"github.com/arxfmt/arx/backend"
)

func buildPack(t *testing.T, algo Algorithm, blobs [][]byte) []byte {
	t.Helper()
	b := NewBuilder(algo)
	for i, blob := range blobs {
		id, err := b.Put(blob)
		if err != nil {
			t.Fatalf("Put(%d): %v", i, err)
		}
		if id != uint32(i) {
			t.Fatalf("Put(%d) assigned id %d", i, id)
		}
	}
	data, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return data
}

func TestLocalClientFetch(t *testing.T) {
	blobs := [][]byte{
		[]byte("hi"),
		{},
		bytes.Repeat([]byte("0123456789abcdef"), 512),
	}

	for _, algo := range []Algorithm{AlgoNone, AlgoLZ4, AlgoLZMA, AlgoZstd} {
		t.Run(algo.String(), func(t *testing.T) {
			data := buildPack(t, algo, blobs)
			client, err := NewLocalClient([]backend.Storage{backend.FromBytes(data)})
			if err != nil {
				t.Fatalf("NewLocalClient: %v", err)
			}
			for i, want := range blobs {
				region, err := client.Fetch(context.Background(), 0, uint32(i))
				if err != nil {
					t.Fatalf("Fetch(%d): %v", i, err)
				}
				if !bytes.Equal(region.Bytes(), want) {
					t.Errorf("blob %d = %d bytes, want %d", i, len(region.Bytes()), len(want))
				}
				region.Release()
			}
		})
	}
}

func TestLocalClientMultipleClusters(t *testing.T) {
	// The first blob reaches the cluster target on its own, closing
	// cluster 0; the second lands in cluster 1.
	big := bytes.Repeat([]byte("cluster payload "), 1<<16) // 1 MiB
	small := []byte("tail")
	data := buildPack(t, AlgoZstd, [][]byte{big, small})

	client, err := NewLocalClientWithCache([]backend.Storage{backend.FromBytes(data)}, 1)
	if err != nil {
		t.Fatalf("NewLocalClient: %v", err)
	}
	r0, err := client.Fetch(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("Fetch(0): %v", err)
	}
	if !bytes.Equal(r0.Bytes(), big) {
		t.Errorf("blob 0 corrupted across cluster boundary")
	}
	// Cache holds one cluster; fetching the other forces an eviction
	// and a fresh decode, then re-fetching the first decodes it again.
	r1, err := client.Fetch(context.Background(), 0, 1)
	if err != nil {
		t.Fatalf("Fetch(1): %v", err)
	}
	if !bytes.Equal(r1.Bytes(), small) {
		t.Errorf("blob 1 = %q, want %q", r1.Bytes(), small)
	}
	r0again, err := client.Fetch(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("Fetch(0) after eviction: %v", err)
	}
	if !bytes.Equal(r0again.Bytes(), big) {
		t.Errorf("blob 0 corrupted after cache eviction")
	}
}

func TestLocalClientMissingPack(t *testing.T) {
	data := buildPack(t, AlgoNone, [][]byte{[]byte("x")})
	client, err := NewLocalClient([]backend.Storage{backend.FromBytes(data)})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.Fetch(context.Background(), 7, 0); !errors.Is(err, arxerr.ErrMissingPack) {
		t.Errorf("err = %v, want MissingPack", err)
	}
	if _, err := client.Fetch(context.Background(), 0, 99); !errors.Is(err, arxerr.ErrFormat) {
		t.Errorf("out-of-range content id err = %v, want FormatError", err)
	}
}

func TestOpenContentPackRejectsBadMagic(t *testing.T) {
	if _, err := NewLocalClient([]backend.Storage{backend.FromBytes([]byte("not a pack"))}); !errors.Is(err, arxerr.ErrFormat) {
		t.Errorf("err = %v, want FormatError", err)
	}
}

func TestParseAlgorithm(t *testing.T) {
	for token, want := range map[string]Algorithm{
		"": AlgoZstd, "zstd": AlgoZstd, "none": AlgoNone, "lz4": AlgoLZ4, "lzma": AlgoLZMA,
	} {
		got, err := ParseAlgorithm(token)
		if err != nil || got != want {
			t.Errorf("ParseAlgorithm(%q) = (%v, %v), want %v", token, got, err, want)
		}
	}
	if _, err := ParseAlgorithm("brotli"); err == nil {
		t.Error("ParseAlgorithm accepted an unknown algorithm")
	}
}
