package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-amr/internal/output"
	"github.com/inodb/vibe-amr/internal/reference"
	"github.com/inodb/vibe-amr/internal/vcf"
)

const testReferenceDir = "../../testdata/reference"

const testVCF = `##fileformat=VCFv4.2
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	SAMPLE
/a/b/c/d/e/01.02.0001.A.1.2.3.4.vcf	104	.	A	T	.	PASS	.	GT:DP:GT_CONF:COV:FRS	1/1:12:99:0,12:1.0
/a/b/c/d/e/01.02.0001.A.1.2.3.4.vcf	101	.	A	ATTG	.	PASS	.	GT:DP:GT_CONF:COV:FRS	1/1:9:99:1,8:0.89
`

func writeConfig(t *testing.T) string {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("{}\n"), 0o644))
	return cfg
}

func runCLIWithConfig(t *testing.T, cfg string, args ...string) (string, error) {
	t.Helper()
	viper.Reset()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", cfg}, args...))
	err := root.Execute()
	return out.String(), err
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCLIWithConfig(t, writeConfig(t), args...)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readTable(t *testing.T, path string) []*vcf.Row {
	t.Helper()
	tr, err := output.NewTableReader(path)
	require.NoError(t, err)
	defer tr.Close()
	rows, err := vcf.ReadAll(tr)
	require.NoError(t, err)
	return rows
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "vibe-amr version dev")
}

func TestTranslateAndPhenotype(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "calls.vcf", testVCF)
	outPath := filepath.Join(dir, "out.tsv.gz")
	dbPath := filepath.Join(dir, "amr.duckdb")

	_, err := runCLI(t, "translate",
		"--reference-dir", testReferenceDir,
		"--forward", "X",
		"--gene", "X",
		"--dialect", "cryptic1",
		"--db", dbPath,
		"-o", outPath,
		input)
	require.NoError(t, err)

	rows := readTable(t, outPath)
	require.Len(t, rows, 2)
	assert.Equal(t, "01.02.0001.A.1.2.3.4", rows[0].UniqueID)
	assert.Equal(t, "1DV", rows[0].Mutation)
	assert.Equal(t, int64(4), rows[0].GenomeIndexShifted)
	assert.Equal(t, "0_indel", rows[1].Mutation)

	samples := writeFile(t, dir, "samples.tsv", "UNIQUEID\tPHENOTYPE\tMETHOD_MIC\n01.02.0001.A.1.2.3.4\tR\t>8\n")
	report := filepath.Join(dir, "report.txt")
	_, err = runCLI(t, "phenotype", "--db", dbPath, "--samples", samples, "--gene", "X", "-o", report)
	require.NoError(t, err)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "# isolates\nNAME\tR\tS\tTOTAL\nTotal\t1\t0\t1\nX\t1\t0\t1\n")
	assert.Contains(t, text, "# variants\nNAME\tR\tS\tTOTAL\nTotal\t2\t0\t2\n")
	assert.Contains(t, text, "# tabulation X ecoff=1\n")

	out, err := runCLI(t, "db", "query", "--db", dbPath, "--gene", "X", "--mutation", "1DV")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "1DV")

	out, err = runCLI(t, "db", "sources", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, input)

	// Unchanged inputs are skipped with --resume.
	again := filepath.Join(dir, "again.tsv")
	_, err = runCLI(t, "translate", "--reference-dir", testReferenceDir, "--forward", "X", "--gene", "X",
		"--db", dbPath, "--resume", "-o", again, input)
	require.NoError(t, err)
	assert.Empty(t, readTable(t, again))

	out, err = runCLI(t, "db", "clear", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 2 rows")
}

func TestTranslate_AutoGene(t *testing.T) {
	dir := t.TempDir()
	vcfText := `#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	SAMPLE
/a/b/c/d/e/iso1.vcf	104	.	A	T	.	PASS	.	GT:DP:GT_CONF:COV:FRS	1/1:12:99:0,12:1.0
/a/b/c/d/e/iso1.vcf	205	.	C	G	.	PASS	.	GT:DP:GT_CONF:COV:FRS	1/1:12:99:0,12:1.0
/a/b/c/d/e/iso1.vcf	50	.	A	T	.	PASS	.	GT:DP:GT_CONF:COV:FRS	1/1:12:99:0,12:1.0
`
	input := writeFile(t, dir, "calls.vcf", vcfText)
	outPath := filepath.Join(dir, "out.tsv")

	_, err := runCLI(t, "translate",
		"--reference-dir", testReferenceDir,
		"--forward", "X",
		"--complement", "Y",
		"--gene", "auto",
		"-o", outPath,
		input)
	require.NoError(t, err)

	rows := readTable(t, outPath)
	require.Len(t, rows, 3)
	assert.Equal(t, "X", rows[0].Gene)
	assert.Equal(t, "1DV", rows[0].Mutation)
	assert.Equal(t, "Y", rows[1].Gene)
	assert.Equal(t, "2PA", rows[1].Mutation)
	assert.Equal(t, "", rows[2].Gene)
	assert.Equal(t, "AT", rows[2].Mutation)
	assert.False(t, rows[2].Shifted)
}

func TestTranslate_Errors(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "calls.vcf", testVCF)

	_, err := runCLI(t, "translate", "--reference-dir", testReferenceDir, "--gene", "X", input)
	assert.ErrorContains(t, err, "no genes configured")

	_, err = runCLI(t, "translate", "--reference-dir", testReferenceDir, "--forward", "Q", "--gene", "Q",
		"-o", filepath.Join(dir, "out.tsv"), input)
	var rnf *reference.ReferenceNotFoundError
	assert.ErrorAs(t, err, &rnf)

	_, err = runCLI(t, "translate", "--reference-dir", testReferenceDir, "--forward", "Q", "--gene", "Q",
		"--skip-errors", "-o", filepath.Join(dir, "out.tsv"), input)
	assert.NoError(t, err)

	_, err = runCLI(t, "translate", "--forward", "X", "--unmapped", "drop", input)
	assert.Error(t, err)
}

func TestGeneStrands(t *testing.T) {
	genes, err := geneStrands([]string{"rpoB", "embB"}, []string{"katG"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"rpoB": false, "embB": false, "katG": true}, map[string]bool(genes))

	_, err = geneStrands([]string{"rpoB"}, []string{"rpoB"})
	assert.Error(t, err)
}

func TestConfigSetGet(t *testing.T) {
	cfg := writeConfig(t)

	_, err := runCLIWithConfig(t, cfg, "config", "set", "genes.complement", "katG, gid")
	require.NoError(t, err)
	_, err = runCLIWithConfig(t, cfg, "config", "set", "translate.skip_errors", "yes")
	require.NoError(t, err)

	out, err := runCLIWithConfig(t, cfg, "config", "get", "genes.complement")
	require.NoError(t, err)
	assert.Equal(t, "[katG gid]\n", out)

	out, err = runCLIWithConfig(t, cfg, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "skip_errors: true")

	_, err = runCLIWithConfig(t, cfg, "config", "get", "nothing.here")
	assert.Error(t, err)
}

func TestEfetchQuery(t *testing.T) {
	raw := efetchQuery("https://example.org/efetch.fcgi", "NC_000962.3", 2153889, 2156111, true, "me@example.org")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "nuccore", q.Get("db"))
	assert.Equal(t, "NC_000962.3", q.Get("id"))
	assert.Equal(t, "fasta", q.Get("rettype"))
	assert.Equal(t, "2153889", q.Get("seq_start"))
	assert.Equal(t, "2156111", q.Get("seq_stop"))
	assert.Equal(t, "2", q.Get("strand"))
	assert.Equal(t, "me@example.org", q.Get("email"))

	raw = efetchQuery(efetchURL, "NC_000962.3", 1, 9, false, "")
	u, err = url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "1", u.Query().Get("strand"))
	assert.False(t, u.Query().Has("email"))
}

func TestFetch(t *testing.T) {
	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		if query.Get("id") == "broken" {
			w.Write([]byte(">garbage\nATG\n"))
			return
		}
		if query.Get("id") == "missing" {
			http.Error(w, "no such record", http.StatusBadRequest)
			return
		}
		w.Write([]byte(">NC_000962.3:c2156111-2153889 Mycobacterium tuberculosis H37Rv\nATGCCC\n"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	_, err := runCLI(t, "fetch", "--base-url", srv.URL, "--reference-dir", dir,
		"--gene", "katG", "--start", "2153889", "--end", "2156111", "--complement")
	require.NoError(t, err)
	assert.Equal(t, "2", query.Get("strand"))

	rec, err := reference.NewDirStore(dir).Lookup("katG")
	require.NoError(t, err)
	assert.Equal(t, "NC_000962.3:c2156111-2153889", rec.ID)
	assert.Equal(t, "ATGCCC", rec.Sequence)

	_, err = runCLI(t, "fetch", "--base-url", srv.URL, "--reference-dir", dir, "--accession", "broken",
		"--gene", "bad", "--start", "1", "--end", "3")
	var mle *reference.MalformedReferenceLocationError
	assert.ErrorAs(t, err, &mle)
	_, statErr := os.Stat(filepath.Join(dir, "bad.fasta"))
	assert.True(t, os.IsNotExist(statErr))

	_, err = runCLI(t, "fetch", "--base-url", srv.URL, "--reference-dir", dir, "--accession", "missing",
		"--gene", "gone", "--start", "1", "--end", "3")
	assert.ErrorContains(t, err, "HTTP error")

	_, err = runCLI(t, "fetch", "--base-url", srv.URL, "--reference-dir", dir,
		"--gene", "rev", "--start", "10", "--end", "3")
	assert.ErrorContains(t, err, "invalid region")
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", formatSize(512))
	assert.Equal(t, "1.5 KB", formatSize(1536))
	assert.Equal(t, "2.0 MB", formatSize(2*1024*1024))
}
