package translate

import (
	"strconv"

	"github.com/inodb/vibe-amr/internal/codon"
	"github.com/inodb/vibe-amr/internal/reference"
	"github.com/inodb/vibe-amr/internal/vcf"
)

// BuildLabel returns the amino acid label for a shifted row.
//
// Indels become "<product position>_indel". Substitutions keep all but the
// last character of the current mutation and append the amino acid of the
// reference codon with the last alternate base substituted at
// GenomeIndexShifted mod 3.
func BuildLabel(row *vcf.Row, ref *reference.GeneReference, table *codon.Table) (string, error) {
	if row.IsIndel() {
		return strconv.FormatInt(row.ProductPosition, 10) + "_indel", nil
	}

	alt, ok := row.AltBase()
	if !ok {
		return "", &EmptyAlleleError{Gene: row.Gene}
	}
	refCodon, err := referenceCodon(row, ref)
	if err != nil {
		return "", err
	}
	mutated, err := codon.MutateCodon(refCodon, int(row.GenomeIndexShifted%3), alt)
	if err != nil {
		return "", err
	}
	aa, err := table.Translate(mutated)
	if err != nil {
		return "", err
	}

	prefix := row.Mutation
	if prefix != "" {
		prefix = prefix[:len(prefix)-1]
	}
	return prefix + string(aa), nil
}
