package phenotype

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/inodb/vibe-amr/internal/xio"
)

// Sample table column names.
const (
	ColUniqueID  = "UNIQUEID"
	ColPhenotype = "PHENOTYPE"
	ColMethodMIC = "METHOD_MIC"
)

// Phenotype calls.
const (
	Resistant   = "R"
	Susceptible = "S"
)

// Sample is the measured phenotype of one isolate.
type Sample struct {
	UniqueID  string
	Phenotype string
	MethodMIC string
}

type sampleColumns struct {
	uniqueID  int
	phenotype int
	methodMIC int
}

// ReadSamples loads a sample table from path. Tab and comma separated
// files are accepted; the delimiter is taken from the header line.
func ReadSamples(path string) (map[string]Sample, error) {
	rc, err := xio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sample table: %w", err)
	}
	defer rc.Close()
	return ParseSamples(rc)
}

// ParseSamples reads a sample table keyed by isolate id. A later line for
// the same isolate replaces an earlier one.
func ParseSamples(r io.Reader) (map[string]Sample, error) {
	scanner := bufio.NewScanner(r)
	lineNumber := 0

	var (
		cols  sampleColumns
		sep   string
		ready bool
	)
	samples := make(map[string]Sample)

	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !ready {
			sep = "\t"
			if !strings.Contains(line, "\t") && strings.Contains(line, ",") {
				sep = ","
			}
			c, err := parseSampleHeader(strings.Split(line, sep))
			if err != nil {
				return nil, &ParseError{Line: lineNumber, Message: err.Error()}
			}
			cols, ready = c, true
			continue
		}

		fields := strings.Split(line, sep)
		need := max(cols.uniqueID, cols.phenotype, cols.methodMIC)
		if len(fields) <= need {
			return nil, &ParseError{
				Line:    lineNumber,
				Message: fmt.Sprintf("expected at least %d columns, found %d", need+1, len(fields)),
			}
		}
		s := Sample{
			UniqueID:  strings.TrimSpace(fields[cols.uniqueID]),
			Phenotype: strings.ToUpper(strings.TrimSpace(fields[cols.phenotype])),
			MethodMIC: strings.TrimSpace(fields[cols.methodMIC]),
		}
		samples[s.UniqueID] = s
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read sample table: %w", err)
	}
	if !ready {
		return nil, &ParseError{Line: lineNumber, Message: "no header line found"}
	}
	return samples, nil
}

func parseSampleHeader(columns []string) (sampleColumns, error) {
	c := sampleColumns{uniqueID: -1, phenotype: -1, methodMIC: -1}
	for i, col := range columns {
		switch strings.ToUpper(strings.TrimSpace(col)) {
		case ColUniqueID:
			c.uniqueID = i
		case ColPhenotype:
			c.phenotype = i
		case ColMethodMIC:
			c.methodMIC = i
		}
	}
	switch {
	case c.uniqueID == -1:
		return c, fmt.Errorf("required column %q not found in header", ColUniqueID)
	case c.phenotype == -1:
		return c, fmt.Errorf("required column %q not found in header", ColPhenotype)
	case c.methodMIC == -1:
		return c, fmt.Errorf("required column %q not found in header", ColMethodMIC)
	}
	return c, nil
}

// ParseError represents an error in a sample table with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("sample table parse error at line %d: %s", e.Line, e.Message)
}
