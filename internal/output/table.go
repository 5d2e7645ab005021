package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-amr/internal/vcf"
	"github.com/inodb/vibe-amr/internal/xio"
)

// columnIndices holds the indices of variant table columns, -1 if absent.
type columnIndices struct {
	uniqueID           int
	gene               int
	genomeIndex        int
	geneticRef         int
	geneticAlt         int
	mutation           int
	rrs                int
	frs                int
	genomeIndexShifted int
	productPosition    int
}

// TableReader reads variant rows from a tab-delimited table such as the
// one TabWriter produces. It implements vcf.RowReader.
type TableReader struct {
	reader     *bufio.Reader
	closer     io.Closer
	lineNumber int
	columns    columnIndices
}

var _ vcf.RowReader = (*TableReader)(nil)

// NewTableReader opens a variant table ("-" for stdin).
func NewTableReader(path string) (*TableReader, error) {
	rc, err := xio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open variant table: %w", err)
	}
	tr, err := NewTableReaderFromReader(rc)
	if err != nil {
		rc.Close()
		return nil, err
	}
	tr.closer = rc
	return tr, nil
}

// NewTableReaderFromReader creates a reader and parses the header line.
func NewTableReaderFromReader(r io.Reader) (*TableReader, error) {
	tr := &TableReader{reader: bufio.NewReader(r)}
	if err := tr.parseHeader(); err != nil {
		return nil, err
	}
	return tr, nil
}

func (tr *TableReader) readLine() (string, bool, error) {
	for {
		line, err := tr.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", false, fmt.Errorf("read table line: %w", err)
		}
		if err == io.EOF && line == "" {
			return "", false, nil
		}
		tr.lineNumber++
		line = strings.TrimRight(line, "\r\n")
		if line == "" || strings.HasPrefix(line, "##") {
			continue
		}
		return line, true, nil
	}
}

// parseHeader reads the header line and locates the columns.
func (tr *TableReader) parseHeader() error {
	line, ok, err := tr.readLine()
	if err != nil {
		return err
	}
	if !ok {
		return &ParseError{Line: tr.lineNumber, Message: "no header line found"}
	}

	tr.columns = columnIndices{-1, -1, -1, -1, -1, -1, -1, -1, -1, -1}
	for i, col := range strings.Split(strings.TrimPrefix(line, "#"), "\t") {
		switch col {
		case ColUniqueID:
			tr.columns.uniqueID = i
		case ColGene:
			tr.columns.gene = i
		case ColGenomeIndex:
			tr.columns.genomeIndex = i
		case ColGeneticRef:
			tr.columns.geneticRef = i
		case ColGeneticAlt:
			tr.columns.geneticAlt = i
		case ColMutation:
			tr.columns.mutation = i
		case ColRRS:
			tr.columns.rrs = i
		case ColFRS:
			tr.columns.frs = i
		case ColGenomeIndexShifted:
			tr.columns.genomeIndexShifted = i
		case ColProductPosition:
			tr.columns.productPosition = i
		}
	}

	required := []struct {
		name  string
		index int
	}{
		{ColUniqueID, tr.columns.uniqueID},
		{ColGene, tr.columns.gene},
		{ColGenomeIndex, tr.columns.genomeIndex},
		{ColGeneticRef, tr.columns.geneticRef},
		{ColGeneticAlt, tr.columns.geneticAlt},
	}
	for _, r := range required {
		if r.index == -1 {
			return &ParseError{
				Line:    tr.lineNumber,
				Message: fmt.Sprintf("required column '%s' not found in header", r.name),
			}
		}
	}
	return nil
}

// Next reads the next row. Returns nil, nil at the end of the table.
func (tr *TableReader) Next() (*vcf.Row, error) {
	line, ok, err := tr.readLine()
	if err != nil || !ok {
		return nil, err
	}
	return tr.parseLine(line)
}

func (tr *TableReader) parseLine(line string) (*vcf.Row, error) {
	fields := strings.Split(line, "\t")
	c := tr.columns

	minCols := max(c.uniqueID, c.gene, c.genomeIndex, c.geneticRef, c.geneticAlt,
		c.mutation, c.rrs, c.frs, c.genomeIndexShifted, c.productPosition)
	if len(fields) <= minCols {
		return nil, &ParseError{
			Line:    tr.lineNumber,
			Message: fmt.Sprintf("expected at least %d columns, found %d", minCols+1, len(fields)),
		}
	}

	pos, err := strconv.ParseInt(fields[c.genomeIndex], 10, 64)
	if err != nil {
		return nil, &ParseError{Line: tr.lineNumber, Message: fmt.Sprintf("invalid genome index: %s", fields[c.genomeIndex])}
	}

	r := &vcf.Row{
		UniqueID:    fields[c.uniqueID],
		Gene:        undash(fields[c.gene]),
		GenomeIndex: pos,
		GeneticRef:  fields[c.geneticRef],
		GeneticAlt:  fields[c.geneticAlt],
	}
	r.Mutation = r.GeneticRef + r.GeneticAlt
	if c.mutation >= 0 && fields[c.mutation] != "" {
		r.Mutation = fields[c.mutation]
	}
	if c.rrs >= 0 {
		if v := undash(fields[c.rrs]); v != "" {
			r.RRS = strings.Split(v, ",")
		}
	}
	if c.frs >= 0 {
		r.FRS = undash(fields[c.frs])
	}

	if c.genomeIndexShifted >= 0 {
		if v := undash(fields[c.genomeIndexShifted]); v != "" {
			if r.GenomeIndexShifted, err = strconv.ParseInt(v, 10, 64); err != nil {
				return nil, &ParseError{Line: tr.lineNumber, Message: fmt.Sprintf("invalid shifted index: %s", v)}
			}
			r.Shifted = true
		}
	}
	if c.productPosition >= 0 {
		if v := undash(fields[c.productPosition]); v != "" {
			if r.ProductPosition, err = strconv.ParseInt(v, 10, 64); err != nil {
				return nil, &ParseError{Line: tr.lineNumber, Message: fmt.Sprintf("invalid product position: %s", v)}
			}
		}
	}
	return r, nil
}

// LineNumber returns the current line number being processed.
func (tr *TableReader) LineNumber() int {
	return tr.lineNumber
}

// Close closes the underlying file.
func (tr *TableReader) Close() error {
	if tr.closer != nil {
		return tr.closer.Close()
	}
	return nil
}

// ParseError represents an error in a variant table with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("variant table parse error at line %d: %s", e.Line, e.Message)
}
