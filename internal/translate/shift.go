package translate

import (
	"fmt"

	"github.com/inodb/vibe-amr/internal/codon"
	"github.com/inodb/vibe-amr/internal/reference"
	"github.com/inodb/vibe-amr/internal/vcf"
)

// ShiftIndex converts an absolute genome coordinate into a zero-based offset
// from the gene's start in transcription order. Reverse strand genes count
// down from the upper bound since their codons are complemented in place.
func ShiftIndex(ref *reference.GeneReference, genomeIndex int64) int64 {
	if ref.Complement {
		return ref.Range.Max() - genomeIndex
	}
	return genomeIndex - ref.Range.Min()
}

// ProductPosition is the zero-based codon index of a shifted coordinate.
// Division floors, so coordinates just before the gene map to -1.
func ProductPosition(shifted int64) int64 {
	q := shifted / 3
	if shifted%3 != 0 && shifted < 0 {
		q--
	}
	return q
}

// ShiftGenomeIndex sets GenomeIndexShifted on every row whose gene is in
// genes. Other rows are left as they are.
func ShiftGenomeIndex(refs ReferenceSource, rows []*vcf.Row, genes GeneStrands) error {
	cache := make(map[string]*reference.GeneReference)
	for _, row := range rows {
		complement, ok := genes[row.Gene]
		if !ok {
			continue
		}
		ref, ok := cache[row.Gene]
		if !ok {
			var err error
			ref, err = refs.Extract(row.Gene, complement)
			if err != nil {
				return fmt.Errorf("shift %s: %w", row.Gene, err)
			}
			cache[row.Gene] = ref
		}
		row.GenomeIndexShifted = ShiftIndex(ref, row.GenomeIndex)
		row.Shifted = true
	}
	return nil
}

func shift(rows []*vcf.Row, refs map[string]*reference.GeneReference, b *batch) {
	for i, row := range rows {
		if b.skipped(i) {
			continue
		}
		row.GenomeIndexShifted = ShiftIndex(refs[row.Gene], row.GenomeIndex)
		row.Shifted = true
	}
}

func assignProductPositions(rows []*vcf.Row, b *batch) {
	for i, row := range rows {
		if b.skipped(i) {
			continue
		}
		row.ProductPosition = ProductPosition(row.GenomeIndexShifted)
	}
}

// prefix rewrites the mutation of substitution rows to
// <codon position><ref aa><ref aa>. Labelling then replaces the last
// letter with the mutant amino acid.
func (t *Translator) prefix(rows []*vcf.Row, refs map[string]*reference.GeneReference, b *batch) error {
	for i, row := range rows {
		if b.skipped(i) || row.IsIndel() {
			continue
		}
		aa, err := referenceResidue(row, refs[row.Gene], t.table)
		if err != nil {
			if err := b.fail(i, row, err); err != nil {
				return err
			}
			continue
		}
		row.Mutation = fmt.Sprintf("%d%c%c", row.ProductPosition, aa, aa)
	}
	return nil
}

func referenceResidue(row *vcf.Row, ref *reference.GeneReference, table *codon.Table) (byte, error) {
	c, err := referenceCodon(row, ref)
	if err != nil {
		return 0, err
	}
	return table.Translate(c)
}

func referenceCodon(row *vcf.Row, ref *reference.GeneReference) (string, error) {
	if row.GenomeIndexShifted < 0 {
		return "", &PositionOutOfRangeError{Gene: row.Gene, Shifted: row.GenomeIndexShifted, Codons: len(ref.Codons)}
	}
	c, ok := ref.Codon(row.ProductPosition)
	if !ok {
		return "", &PositionOutOfRangeError{Gene: row.Gene, Shifted: row.GenomeIndexShifted, Codons: len(ref.Codons)}
	}
	return c, nil
}
