package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-amr/internal/duckdb"
	"github.com/inodb/vibe-amr/internal/output"
	"github.com/inodb/vibe-amr/internal/reference"
	"github.com/inodb/vibe-amr/internal/translate"
	"github.com/inodb/vibe-amr/internal/vcf"
	"github.com/inodb/vibe-amr/internal/xio"
)

// geneAuto assigns VCF rows to the configured gene covering their position.
const geneAuto = "auto"

type translateInput struct {
	paths  []string
	gene   string
	table  bool
	output string
	resume bool
}

var translateBindings = map[string]string{
	keyReferenceDir:      "reference-dir",
	keyAllowPartialCodon: "allow-partial-codon",
	keyGenesForward:      "forward",
	keyGenesComplement:   "complement",
	keyUnmapped:          "unmapped",
	keyNotation:          "notation",
	keyWorkers:           "workers",
	keySkipErrors:        "skip-errors",
	keyDialect:           "dialect",
	keyDBPath:            "db",
}

func newTranslateCmd() *cobra.Command {
	var in translateInput

	cmd := &cobra.Command{
		Use:   "translate [flags] <input>...",
		Short: "Translate variant calls into amino acid mutations",
		Long: `Read VCF files (or variant tables with --table), shift every variant of a
configured gene onto its reference, and label it <codon><ref aa><alt aa> or
<codon>_indel. Rows of other genes pass through unless --unmapped=error.`,
		Example: `  vibe-amr translate --forward rpoB --gene rpoB calls/*.vcf.gz
  vibe-amr translate --forward rpoB,embB --complement katG --gene auto -o out.tsv.gz calls.vcf
  vibe-amr translate --table --db amr.duckdb variants.tsv`,
		Args: cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd, translateBindings)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			in.paths = args
			return runTranslate(cmd.Context(), s, in)
		},
	}

	f := cmd.Flags()
	f.String("reference-dir", "", "Directory of <gene>.fasta reference records")
	f.Bool("allow-partial-codon", false, "Keep a trailing partial codon instead of failing")
	f.StringSlice("forward", nil, "Genes on the forward strand")
	f.StringSlice("complement", nil, "Genes on the reverse strand")
	f.String("unmapped", "", "Rows of genes without strand: pass or error")
	f.String("notation", "", "Label notation: protein or raw")
	f.Int("workers", 0, "Parallel labelling workers (0 = number of CPUs)")
	f.Bool("skip-errors", false, "Log failing rows and keep going")
	f.String("dialect", "", "VCF collection dialect: shaheed or cryptic1")
	f.String("db", "", "DuckDB file to store translated rows in")
	f.StringVar(&in.gene, "gene", "", `Gene assigned to every VCF row ("auto" picks by position)`)
	f.BoolVar(&in.table, "table", false, "Inputs are variant tables instead of VCF")
	f.StringVarP(&in.output, "output", "o", "", "Output file (default: stdout; .gz and .lz4 compress)")
	f.BoolVar(&in.resume, "resume", false, "Skip inputs already stored unchanged in --db")

	return cmd
}

func runTranslate(ctx context.Context, s *settings, in translateInput) error {
	if len(s.Genes) == 0 {
		return errors.New("no genes configured: use --forward/--complement or genes.forward/genes.complement")
	}

	extractor := reference.NewExtractor(reference.NewDirStore(s.ReferenceDir), reference.Options{
		AllowPartialCodon: s.AllowPartialCodon,
	})
	extractor.SetLogger(logger)

	var locator vcf.GeneLocator
	if in.gene == geneAuto {
		l, err := buildLocator(extractor, s.Genes)
		if err != nil {
			return err
		}
		locator = l
	}

	var store *duckdb.Store
	if s.DBPath != "" {
		var err error
		if store, err = duckdb.Open(s.DBPath); err != nil {
			return err
		}
		defer store.Close()
	}

	tr := translate.New(extractor, translate.Options{
		Unmapped:        s.Unmapped,
		Notation:        s.Notation,
		Workers:         s.Workers,
		ContinueOnError: s.SkipErrors,
	})
	tr.SetLogger(logger)

	w, err := xio.Create(in.output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	tw := output.NewTabWriter(w)
	if err := tw.WriteHeader(); err != nil {
		w.Close()
		return fmt.Errorf("write header: %w", err)
	}

	for _, path := range in.paths {
		fp := sourceFingerprint(path)
		if in.resume && store != nil {
			done, err := store.Ingested(fp)
			if err != nil {
				w.Close()
				return err
			}
			if done {
				logger.Info("skipping unchanged input", zap.String("path", path))
				continue
			}
		}

		if err := translateFile(ctx, tr, tw, store, fp, s, in, locator); err != nil {
			w.Close()
			return err
		}
	}

	if err := tw.Flush(); err != nil {
		w.Close()
		return fmt.Errorf("flush output: %w", err)
	}
	return w.Close()
}

func translateFile(ctx context.Context, tr *translate.Translator, tw *output.TabWriter, store *duckdb.Store,
	fp duckdb.FileFingerprint, s *settings, in translateInput, locator vcf.GeneLocator) error {
	rows, err := readRows(fp.Path, s, in, locator)
	if err != nil {
		return err
	}

	res, err := tr.Run(ctx, rows, s.Genes)
	if err != nil {
		return fmt.Errorf("translate %s: %w", fp.Path, err)
	}
	for _, e := range translate.Errors(res.Errs) {
		logRowError(e, rows)
	}
	logger.Info("translated input",
		zap.String("path", fp.Path),
		zap.Int("rows", len(rows)),
		zap.Int("translated", res.Translated),
		zap.Int("indels", res.Indels),
		zap.Int("unmapped", res.Unmapped),
		zap.Int("failed", res.Failed))

	for _, r := range rows {
		if err := tw.Write(r); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	if store != nil {
		if err := store.WriteRows(fp, rows); err != nil {
			return fmt.Errorf("store %s: %w", fp.Path, err)
		}
	}
	return nil
}

func readRows(path string, s *settings, in translateInput, locator vcf.GeneLocator) ([]*vcf.Row, error) {
	var r vcf.RowReader
	if in.table {
		tr, err := output.NewTableReader(path)
		if err != nil {
			return nil, err
		}
		r = tr
	} else {
		gene := in.gene
		if gene == geneAuto {
			gene = ""
		}
		p, err := vcf.NewParser(path, s.Dialect, gene)
		if err != nil {
			return nil, err
		}
		if locator != nil {
			p.SetLocator(locator)
		}
		r = p
	}
	defer r.Close()

	rows, err := vcf.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// buildLocator indexes the coordinate ranges of every configured gene.
func buildLocator(refs translate.ReferenceSource, genes translate.GeneStrands) (*reference.Locator, error) {
	var loaded []*reference.GeneReference
	for _, gene := range genes.Genes() {
		ref, err := refs.Extract(gene, genes[gene])
		if err != nil {
			return nil, fmt.Errorf("load reference for %s: %w", gene, err)
		}
		loaded = append(loaded, ref)
	}
	l, err := reference.NewLocator(loaded)
	if err != nil {
		return nil, err
	}
	logger.Debug("indexed gene ranges", zap.Int("genes", l.Len()))
	return l, nil
}

func sourceFingerprint(path string) duckdb.FileFingerprint {
	if path == "-" {
		return duckdb.FileFingerprint{Path: path}
	}
	fp, err := duckdb.StatFile(path)
	if err != nil {
		return duckdb.FileFingerprint{Path: path}
	}
	return fp
}

func logRowError(err error, rows []*vcf.Row) {
	var re *translate.RowError
	if !errors.As(err, &re) {
		logger.Warn("row skipped", zap.Error(err))
		return
	}
	fields := []zap.Field{
		zap.String("unique_id", re.UniqueID),
		zap.String("gene", re.Gene),
		zap.Error(re.Err),
	}
	if re.Index >= 0 && re.Index < len(rows) {
		fields = append(fields, zap.Int64("genome_index", rows[re.Index].GenomeIndex))
	}
	logger.Warn("row skipped", fields...)
}
