// Package vcf provides variant rows and VCF file parsing.
package vcf

// RowReader is the interface for sources of variant rows.
// Both the VCF parser and the table reader implement it.
type RowReader interface {
	// Next reads the next row.
	// Returns nil, nil when there are no more rows.
	Next() (*Row, error)

	// Close closes the reader and releases resources.
	Close() error

	// LineNumber returns the current line number being processed.
	LineNumber() int
}

// ReadAll drains r into a slice.
func ReadAll(r RowReader) ([]*Row, error) {
	var rows []*Row
	for {
		row, err := r.Next()
		if err != nil {
			return nil, err
		}
		if row == nil {
			return rows, nil
		}
		rows = append(rows, row)
	}
}
