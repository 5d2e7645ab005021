package vcf

// indelAltLength is the alternate allele length above which a row is
// labelled as an indel instead of being translated.
const indelAltLength = 2

// Row is one called variant of one isolate.
type Row struct {
	UniqueID    string   // isolate identifier, dot-delimited composite key
	Gene        string   // gene symbol
	GenomeIndex int64    // 1-based genome coordinate
	GeneticRef  string   // reference allele
	GeneticAlt  string   // alternate allele
	Mutation    string   // REF+ALT on input, amino acid label after translation
	RRS         []string // per-allele read support from the sample column
	FRS         string   // fraction of reads supporting the call

	// Set by the coordinate shifter.
	GenomeIndexShifted int64
	Shifted            bool

	// Zero-based codon index, GenomeIndexShifted / 3.
	ProductPosition int64
}

// IsIndel reports whether the alternate allele is too long for
// single-codon substitution.
func (r *Row) IsIndel() bool {
	return len(r.GeneticAlt) > indelAltLength
}

// AltBase returns the last base of the alternate allele.
func (r *Row) AltBase() (byte, bool) {
	if r.GeneticAlt == "" {
		return 0, false
	}
	return r.GeneticAlt[len(r.GeneticAlt)-1], true
}

// Clone returns a deep copy of the row.
func (r *Row) Clone() *Row {
	c := *r
	if r.RRS != nil {
		c.RRS = append([]string(nil), r.RRS...)
	}
	return &c
}
