// Package reference resolves gene reference sequences and extracts their codons.
package reference

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Record is a single FASTA entry.
type Record struct {
	ID          string // first header token, e.g. NC_000962.3:759807-763325
	Description string // rest of the header line
	Sequence    string
}

// ParseFASTA reads all records from r. Sequence lines are concatenated
// without whitespace; bases are kept exactly as written.
func ParseFASTA(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for unwrapped sequences
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 16*1024*1024)

	var records []Record
	var current *Record
	var seq strings.Builder

	flush := func() {
		if current != nil {
			current.Sequence = seq.String()
			records = append(records, *current)
		}
		seq.Reset()
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.HasPrefix(line, ">") {
			flush()
			id, desc := parseHeader(line)
			current = &Record{ID: id, Description: desc}
			continue
		}
		if current == nil {
			if strings.TrimSpace(line) == "" {
				continue
			}
			return nil, fmt.Errorf("sequence data before first FASTA header")
		}
		seq.WriteString(strings.TrimSpace(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan FASTA: %w", err)
	}
	flush()

	return records, nil
}

// parseHeader splits ">ID description" into its two parts.
func parseHeader(header string) (id, desc string) {
	header = strings.TrimPrefix(header, ">")
	if idx := strings.IndexAny(header, " \t"); idx != -1 {
		return header[:idx], strings.TrimSpace(header[idx+1:])
	}
	return header, ""
}
