package duckdb

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-amr/internal/vcf"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRows() []*vcf.Row {
	return []*vcf.Row{
		{
			UniqueID: "01.02.1234.ABC.7.8.9.10", Gene: "rpoB", GenomeIndex: 761155,
			GeneticRef: "C", GeneticAlt: "T", Mutation: "450SL",
			RRS: []string{"0", "40"}, FRS: "1.0",
			GenomeIndexShifted: 1349, Shifted: true, ProductPosition: 449,
		},
		{
			UniqueID: "01.02.1234.ABC.7.8.9.10", Gene: "rpoB", GenomeIndex: 761110,
			GeneticRef: "A", GeneticAlt: "ATTG", Mutation: "435_indel",
			RRS: []string{"1", "30"}, FRS: "0.968",
			GenomeIndexShifted: 1304, Shifted: true, ProductPosition: 434,
		},
		{
			UniqueID: "03.03.0001.LAB.1.2.3.4", Gene: "katG", GenomeIndex: 2155168,
			GeneticRef: "G", GeneticAlt: "C", Mutation: "GC",
			FRS: "1.0",
		},
	}
}

func fingerprint(path string) FileFingerprint {
	return FileFingerprint{Path: path, Size: 128, ModTime: time.Unix(1700000000, 123456789)}
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
	assert.Equal(t, "", s.Path())
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "amr.duckdb")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestWriteAndLoadRows(t *testing.T) {
	s := openInMemory(t)

	require.NoError(t, s.WriteRows(fingerprint("a.vcf"), sampleRows()))

	rows, err := s.LoadRows()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, sampleRows()[0], rows[0])
	assert.Equal(t, "435_indel", rows[1].Mutation)
	assert.Nil(t, rows[2].RRS)
	assert.False(t, rows[2].Shifted)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestWriteRows_ReplacesSource(t *testing.T) {
	s := openInMemory(t)

	require.NoError(t, s.WriteRows(fingerprint("a.vcf"), sampleRows()))
	require.NoError(t, s.WriteRows(fingerprint("b.vcf"), sampleRows()[:1]))
	require.NoError(t, s.WriteRows(fingerprint("a.vcf"), sampleRows()[2:]))

	rows, err := s.LoadRows()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "450SL", rows[0].Mutation, "b.vcf rows were written first")
	assert.Equal(t, "katG", rows[1].Gene)

	sources, err := s.Sources()
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "a.vcf", sources[0].Path)
}

func TestIngested(t *testing.T) {
	s := openInMemory(t)
	fp := fingerprint("a.vcf")

	ok, err := s.Ingested(fp)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.WriteRows(fp, sampleRows()))
	ok, err = s.Ingested(fp)
	require.NoError(t, err)
	assert.True(t, ok)

	changed := fp
	changed.Size++
	ok, err = s.Ingested(changed)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSearch(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteRows(fingerprint("a.vcf"), sampleRows()))

	rpoB, err := s.SearchByGene("rpoB")
	require.NoError(t, err)
	assert.Len(t, rpoB, 2)

	found, err := s.SearchByMutation("rpoB", "450SL")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, int64(761155), found[0].GenomeIndex)

	found, err = s.SearchByMutation("katG", "450SL")
	require.NoError(t, err)
	assert.Empty(t, found)

	iso, err := s.SearchByIsolate("03.03.0001.LAB.1.2.3.4")
	require.NoError(t, err)
	require.Len(t, iso, 1)
	assert.Equal(t, "katG", iso[0].Gene)

	none, err := s.SearchByGene("NOTEXIST")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestClear(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteRows(fingerprint("a.vcf"), sampleRows()))
	require.NoError(t, s.Clear())

	rows, err := s.LoadRows()
	require.NoError(t, err)
	assert.Empty(t, rows)

	sources, err := s.Sources()
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestStatFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.vcf")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))

	fp, err := StatFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(3), fp.Size)
	assert.Equal(t, path, fp.Path)

	_, err = StatFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
