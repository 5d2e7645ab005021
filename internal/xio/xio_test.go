package xio

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/biogo/hts/bgzf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const payload = ">rpoB NC_000962.3:759807-763325\nATGGATTAA\n"

func writeAndRead(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)

	w, err := Create(path)
	require.NoError(t, err)
	_, err = io.WriteString(w, payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(got)
}

func TestRoundTrip(t *testing.T) {
	for _, name := range []string{"plain.fasta", "gzipped.fasta.gz", "framed.fasta.lz4"} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, payload, writeAndRead(t, name))
		})
	}
}

func TestCompressedOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.gz")
	w, err := Create(path)
	require.NoError(t, err)
	_, err = io.WriteString(w, payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, isGzip(raw))
	assert.False(t, isBGZF(raw), "plain gzip carries no BC subfield")
}

func TestOpen_BGZF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.vcf.gz")
	f, err := os.Create(path)
	require.NoError(t, err)

	bw := bgzf.NewWriter(f, 1)
	_, err = io.WriteString(bw, payload)
	require.NoError(t, err)
	require.NoError(t, bw.Close())
	require.NoError(t, f.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, isBGZF(raw))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, string(got))
}

func TestOpen_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpen_NotFound(t *testing.T) {
	_, err := Open("/nonexistent/reference.fasta")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
