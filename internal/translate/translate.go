// Package translate converts nucleotide variant calls into amino acid
// mutation labels relative to a gene's reference codons.
package translate

import (
	"context"
	"runtime"
	"sort"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inodb/vibe-amr/internal/codon"
	"github.com/inodb/vibe-amr/internal/reference"
	"github.com/inodb/vibe-amr/internal/vcf"
)

// GeneStrands maps a gene to true when it is encoded on the reverse strand.
type GeneStrands map[string]bool

// Genes returns the mapped gene names in sorted order.
func (g GeneStrands) Genes() []string {
	genes := make([]string, 0, len(g))
	for gene := range g {
		genes = append(genes, gene)
	}
	sort.Strings(genes)
	return genes
}

// ReferenceSource yields the extracted reference for a gene and strand.
// *reference.Extractor implements it.
type ReferenceSource interface {
	Extract(gene string, complement bool) (*reference.GeneReference, error)
}

// Options configures a Translator.
type Options struct {
	Unmapped UnmappedPolicy
	Notation Notation
	// Workers bounds concurrent row labelling; 0 means runtime.NumCPU().
	Workers int
	// ContinueOnError keeps going after a row fails. Failing rows keep
	// their input mutation and are reported in Result.Errs.
	ContinueOnError bool
}

// Result summarises one batch.
type Result struct {
	Translated int // rows given an amino acid label
	Indels     int // rows given an _indel label
	Unmapped   int // rows passed through untouched
	Failed     int // rows that could not be labelled
	Errs       error
}

// Translator runs the shift, prefix and labelling stages over variant rows.
type Translator struct {
	refs   ReferenceSource
	table  *codon.Table
	opts   Options
	logger *zap.Logger
}

// New creates a translator using the standard genetic code.
func New(refs ReferenceSource, opts Options) *Translator {
	return &Translator{
		refs:   refs,
		table:  codon.Standard(),
		opts:   opts,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for warning and debug messages.
func (t *Translator) SetLogger(l *zap.Logger) {
	t.logger = l
}

// Translate shifts every mapped row and overwrites its mutation with the
// amino acid label. Each row's ProductPosition must already be set.
func (t *Translator) Translate(ctx context.Context, rows []*vcf.Row, genes GeneStrands) (*Result, error) {
	return t.run(ctx, rows, genes, false)
}

// Run is the full pipeline: shift, assign product positions, rewrite the
// label prefix (protein notation only) and label.
func (t *Translator) Run(ctx context.Context, rows []*vcf.Row, genes GeneStrands) (*Result, error) {
	return t.run(ctx, rows, genes, true)
}

func (t *Translator) run(ctx context.Context, rows []*vcf.Row, genes GeneStrands, assign bool) (*Result, error) {
	b := &batch{result: &Result{}, continueOnError: t.opts.ContinueOnError}

	refs, err := t.resolve(rows, genes, b)
	if err != nil {
		return nil, err
	}

	// Stages work on copies; rows are only written once every stage passed.
	work := make([]*vcf.Row, len(rows))
	for i, row := range rows {
		if !b.skipped(i) {
			work[i] = row.Clone()
		}
	}

	shift(work, refs, b)
	if assign {
		assignProductPositions(work, b)
		if t.opts.Notation == Protein {
			if err := t.prefix(work, refs, b); err != nil {
				return nil, err
			}
		}
	}
	if err := t.label(ctx, work, refs, b); err != nil {
		return nil, err
	}

	for i, row := range work {
		if row != nil && !b.skipped(i) {
			*rows[i] = *row
		}
	}

	r := b.result
	if r.Failed > 0 {
		t.logger.Warn("rows could not be translated", zap.Int("failed", r.Failed))
	}
	return r, nil
}

// resolve loads one reference per distinct mapped gene before any row is
// touched, and applies the unmapped policy.
func (t *Translator) resolve(rows []*vcf.Row, genes GeneStrands, b *batch) (map[string]*reference.GeneReference, error) {
	refs := make(map[string]*reference.GeneReference)
	geneErrs := make(map[string]error)
	loggedUnmapped := make(map[string]bool)

	for i, row := range rows {
		complement, mapped := genes[row.Gene]
		if !mapped {
			if t.opts.Unmapped == Reject {
				if err := b.fail(i, row, &UnmappedGeneError{Gene: row.Gene}); err != nil {
					return nil, err
				}
				continue
			}
			b.result.Unmapped++
			b.skip(i)
			if !loggedUnmapped[row.Gene] {
				loggedUnmapped[row.Gene] = true
				t.logger.Debug("passing through rows of unmapped gene", zap.String("gene", row.Gene))
			}
			continue
		}

		if err, failed := geneErrs[row.Gene]; failed {
			if err := b.fail(i, row, err); err != nil {
				return nil, err
			}
			continue
		}
		if _, ok := refs[row.Gene]; ok {
			continue
		}

		ref, err := t.refs.Extract(row.Gene, complement)
		if err != nil {
			geneErrs[row.Gene] = err
			if err := b.fail(i, row, err); err != nil {
				return nil, err
			}
			continue
		}
		refs[row.Gene] = ref
	}
	return refs, nil
}

// label computes every row label concurrently once all references are
// resolved.
func (t *Translator) label(ctx context.Context, rows []*vcf.Row, refs map[string]*reference.GeneReference, b *batch) error {
	workers := t.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	labels := make([]string, len(rows))
	errs := make([]error, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, row := range rows {
		if b.skipped(i) {
			continue
		}
		i, row := i, row
		ref := refs[row.Gene]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			l, err := BuildLabel(row, ref, t.table)
			if err != nil {
				errs[i] = err
				if !b.continueOnError {
					return &RowError{Index: i, UniqueID: row.UniqueID, Gene: row.Gene, Err: err}
				}
				return nil
			}
			labels[i] = l
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, row := range rows {
		if b.skipped(i) {
			continue
		}
		if errs[i] != nil {
			if err := b.fail(i, row, errs[i]); err != nil {
				return err
			}
			continue
		}
		row.Mutation = labels[i]
		if row.IsIndel() {
			b.result.Indels++
		} else {
			b.result.Translated++
		}
	}
	return nil
}

// batch tracks per-row outcomes for one run. It is only touched from the
// goroutine driving the run.
type batch struct {
	result          *Result
	continueOnError bool
	skipRows        map[int]bool
}

func (b *batch) skip(i int) {
	if b.skipRows == nil {
		b.skipRows = make(map[int]bool)
	}
	b.skipRows[i] = true
}

func (b *batch) skipped(i int) bool {
	return b.skipRows[i]
}

// fail records a row failure. It returns the wrapped error when the batch
// must abort, nil when the row is skipped and the batch continues.
func (b *batch) fail(i int, row *vcf.Row, err error) error {
	re := &RowError{Index: i, UniqueID: row.UniqueID, Gene: row.Gene, Err: err}
	if !b.continueOnError {
		return re
	}
	b.result.Failed++
	b.result.Errs = multierr.Append(b.result.Errs, re)
	b.skip(i)
	return nil
}

// Errors splits a Result.Errs value into its row errors.
func Errors(err error) []error {
	return multierr.Errors(err)
}
