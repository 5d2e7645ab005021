// Package codon provides the standard genetic code and codon-level edits.
package codon

import (
	"fmt"
	"strings"
)

// Stop is the amino acid symbol emitted for stop codons.
const Stop byte = '!'

// Table is an immutable codon to amino acid lookup.
type Table struct {
	aa map[string]byte
}

// standard is built once at package initialisation and never written again.
var standard = &Table{aa: map[string]byte{
	"TTT": 'F', "TTC": 'F', "TTA": 'L', "TTG": 'L',
	"TCT": 'S', "TCC": 'S', "TCA": 'S', "TCG": 'S',
	"TAT": 'Y', "TAC": 'Y', "TAA": Stop, "TAG": Stop,
	"TGT": 'C', "TGC": 'C', "TGA": Stop, "TGG": 'W',

	"CTT": 'L', "CTC": 'L', "CTA": 'L', "CTG": 'L',
	"CCT": 'P', "CCC": 'P', "CCA": 'P', "CCG": 'P',
	"CAT": 'H', "CAC": 'H', "CAA": 'Q', "CAG": 'Q',
	"CGT": 'R', "CGC": 'R', "CGA": 'R', "CGG": 'R',

	"ATT": 'I', "ATC": 'I', "ATA": 'I', "ATG": 'M',
	"ACT": 'T', "ACC": 'T', "ACA": 'T', "ACG": 'T',
	"AAT": 'N', "AAC": 'N', "AAA": 'K', "AAG": 'K',
	"AGT": 'S', "AGC": 'S', "AGA": 'R', "AGG": 'R',

	"GTT": 'V', "GTC": 'V', "GTA": 'V', "GTG": 'V',
	"GCT": 'A', "GCC": 'A', "GCA": 'A', "GCG": 'A',
	"GAT": 'D', "GAC": 'D', "GAA": 'E', "GAG": 'E',
	"GGT": 'G', "GGC": 'G', "GGA": 'G', "GGG": 'G',
}}

// Standard returns the standard genetic code.
func Standard() *Table {
	return standard
}

// Translate returns the amino acid for a three-letter uppercase codon.
func (t *Table) Translate(codon string) (byte, error) {
	aa, ok := t.aa[codon]
	if !ok {
		return 0, &UnknownCodonError{Codon: codon}
	}
	return aa, nil
}

// Len returns the number of codons in the table.
func (t *Table) Len() int {
	return len(t.aa)
}

// TranslateCodon translates a codon with the standard genetic code.
func TranslateCodon(codon string) (byte, error) {
	return standard.Translate(codon)
}

// IsStopCodon returns true if the codon is a stop codon (TAA, TAG, TGA).
func IsStopCodon(codon string) bool {
	aa, err := TranslateCodon(codon)
	return err == nil && aa == Stop
}

// TranslateSequence translates consecutive codons of seq.
// A trailing partial codon is ignored.
func TranslateSequence(seq string) (string, error) {
	n := (len(seq) / 3) * 3

	var result strings.Builder
	result.Grow(n / 3)

	for i := 0; i < n; i += 3 {
		aa, err := TranslateCodon(seq[i : i+3])
		if err != nil {
			return "", err
		}
		result.WriteByte(aa)
	}

	return result.String(), nil
}

// MutateCodon replaces the base at positionInCodon (0, 1 or 2).
func MutateCodon(codon string, positionInCodon int, newBase byte) (string, error) {
	if positionInCodon < 0 || positionInCodon > 2 || positionInCodon >= len(codon) {
		return "", fmt.Errorf("position %d outside codon %q", positionInCodon, codon)
	}
	buf := []byte(codon)
	buf[positionInCodon] = newBase
	return string(buf), nil
}

// Partition splits seq into consecutive non-overlapping triplets.
// When the length is not a multiple of three the last element is shorter.
func Partition(seq string) []string {
	codons := make([]string, 0, (len(seq)+2)/3)
	for i := 0; i < len(seq); i += 3 {
		end := i + 3
		if end > len(seq) {
			end = len(seq)
		}
		codons = append(codons, seq[i:end])
	}
	return codons
}

// UnknownCodonError is returned when a triplet is not in the genetic code.
type UnknownCodonError struct {
	Codon string
}

func (e *UnknownCodonError) Error() string {
	return fmt.Sprintf("unknown codon %q", e.Codon)
}
