// Package output reads and writes variant and count tables.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-amr/internal/vcf"
)

// Variant table column names.
const (
	ColUniqueID           = "UNIQUEID"
	ColGene               = "GENE"
	ColGenomeIndex        = "GENOME_INDEX"
	ColGeneticRef         = "GENETIC_REF"
	ColGeneticAlt         = "GENETIC_ALT"
	ColMutation           = "MUTATION"
	ColRRS                = "RRS"
	ColFRS                = "FRS"
	ColGenomeIndexShifted = "GENOME_INDEX_SHIFTED"
	ColProductPosition    = "PRODUCT_POSITION"
)

// VariantColumns is the column order written by TabWriter.
var VariantColumns = []string{
	ColUniqueID,
	ColGene,
	ColGenomeIndex,
	ColGeneticRef,
	ColGeneticAlt,
	ColMutation,
	ColRRS,
	ColFRS,
	ColGenomeIndexShifted,
	ColProductPosition,
}

// TabWriter writes variant rows in tab-delimited format.
type TabWriter struct {
	w *bufio.Writer
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{w: bufio.NewWriter(w)}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(VariantColumns, "\t") + "\n")
	return err
}

// Write writes a single row. Rows that were never shifted get "-" for
// the shifted coordinate and product position.
func (tw *TabWriter) Write(r *vcf.Row) error {
	shifted, product := "-", "-"
	if r.Shifted {
		shifted = strconv.FormatInt(r.GenomeIndexShifted, 10)
		product = strconv.FormatInt(r.ProductPosition, 10)
	}

	values := []string{
		r.UniqueID,
		dash(r.Gene),
		strconv.FormatInt(r.GenomeIndex, 10),
		r.GeneticRef,
		r.GeneticAlt,
		r.Mutation,
		dash(strings.Join(r.RRS, ",")),
		dash(r.FRS),
		shifted,
		product,
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// WriteAll writes the header and every row, then flushes.
func (tw *TabWriter) WriteAll(rows []*vcf.Row) error {
	if err := tw.WriteHeader(); err != nil {
		return err
	}
	for _, r := range rows {
		if err := tw.Write(r); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func undash(s string) string {
	if s == "-" {
		return ""
	}
	return s
}
