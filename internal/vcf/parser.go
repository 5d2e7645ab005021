package vcf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-amr/internal/xio"
)

// Dialect describes where a VCF collection keeps isolate identity and
// read support. There is no auto-detection; callers pick one by name.
type Dialect struct {
	Name string
	// PathComponent is the index of the "/"-separated component of the
	// first column that holds the isolate file name.
	PathComponent int
	// IDParts is how many "."-separated parts of that name form the id.
	IDParts int
	// RRSField and FRSField index the ":"-separated sample column.
	RRSField int
	FRSField int
}

var dialects = map[string]Dialect{
	"shaheed":  {Name: "shaheed", PathComponent: 5, IDParts: 8, RRSField: 2, FRSField: 3},
	"cryptic1": {Name: "cryptic1", PathComponent: 6, IDParts: 8, RRSField: 3, FRSField: 4},
}

// LookupDialect returns the dialect registered under name.
func LookupDialect(name string) (Dialect, error) {
	d, ok := dialects[strings.ToLower(name)]
	if !ok {
		return Dialect{}, fmt.Errorf("unknown vcf dialect %q (want shaheed or cryptic1)", name)
	}
	return d, nil
}

// GeneLocator maps a genome position to the genes spanning it.
type GeneLocator interface {
	Genes(pos int64) []string
}

// Parser reads variant rows from a VCF file.
type Parser struct {
	reader     *bufio.Reader
	closer     io.Closer
	lineNumber int
	dialect    Dialect
	gene       string
	locator    GeneLocator
	header     []string
}

// NewParser creates a new VCF parser for the given file ("-" for stdin).
// Plain, gzip, BGZF and LZ4 inputs are accepted. Every row is assigned gene.
func NewParser(path string, dialect Dialect, gene string) (*Parser, error) {
	rc, err := xio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}
	p := NewParserFromReader(rc, dialect, gene)
	p.closer = rc
	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader.
func NewParserFromReader(r io.Reader, dialect Dialect, gene string) *Parser {
	return &Parser{
		reader:  bufio.NewReader(r),
		dialect: dialect,
		gene:    gene,
	}
}

// SetLocator assigns genes by position for rows when no fixed gene was given.
func (p *Parser) SetLocator(l GeneLocator) {
	p.locator = l
}

// Next reads the next variant row, skipping header lines.
// Returns nil, nil when there are no more rows.
func (p *Parser) Next() (*Row, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read variant line: %w", err)
		}
		if err == io.EOF && line == "" {
			return nil, nil
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		if line[0] == '#' {
			p.header = append(p.header, line)
			continue
		}
		return p.parseLine(line)
	}
}

// parseLine parses a single VCF data line into a Row.
func (p *Parser) parseLine(line string) (*Row, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 5 {
		return nil, p.errorf("expected at least 5 columns, found %d", len(fields))
	}

	uniqueID, err := p.uniqueID(fields[0])
	if err != nil {
		return nil, err
	}

	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, p.errorf("invalid position: %s", fields[1])
	}

	sample := strings.Split(fields[len(fields)-1], ":")
	if len(sample) <= p.dialect.RRSField || len(sample) <= p.dialect.FRSField {
		return nil, p.errorf("sample column has %d fields, %s dialect needs %d",
			len(sample), p.dialect.Name, max(p.dialect.RRSField, p.dialect.FRSField)+1)
	}

	ref, alt := fields[3], fields[4]
	row := &Row{
		UniqueID:    uniqueID,
		Gene:        p.gene,
		GenomeIndex: pos,
		GeneticRef:  ref,
		GeneticAlt:  alt,
		Mutation:    ref + alt,
		RRS:         strings.Split(sample[p.dialect.RRSField], ","),
		FRS:         sample[p.dialect.FRSField],
	}
	if row.Gene == "" && p.locator != nil {
		if genes := p.locator.Genes(pos); len(genes) > 0 {
			row.Gene = genes[0]
		}
	}
	return row, nil
}

// uniqueID derives the isolate id from the path held in the first column.
func (p *Parser) uniqueID(source string) (string, error) {
	components := strings.Split(source, "/")
	if len(components) <= p.dialect.PathComponent {
		return "", p.errorf("source %q has no path component %d", source, p.dialect.PathComponent)
	}
	parts := strings.Split(components[p.dialect.PathComponent], ".")
	if len(parts) > p.dialect.IDParts {
		parts = parts[:p.dialect.IDParts]
	}
	return strings.Join(parts, "."), nil
}

func (p *Parser) errorf(format string, args ...any) error {
	return &ParseError{Line: p.lineNumber, Message: fmt.Sprintf(format, args...)}
}

// Header returns the header lines seen so far.
func (p *Parser) Header() []string {
	return p.header
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.closer != nil {
		return p.closer.Close()
	}
	return nil
}

// ParseError represents an error during VCF parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcf parse error at line %d: %s", e.Line, e.Message)
}
