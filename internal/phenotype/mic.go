// Package phenotype joins translated variants with isolate phenotypes and
// aggregates MIC measurements for resistance reporting.
package phenotype

import (
	"fmt"
	"strconv"
	"strings"
)

// MICError is returned when a MIC value has no numeric part.
type MICError struct {
	Value string
}

func (e *MICError) Error() string {
	return fmt.Sprintf("invalid MIC value %q", e.Value)
}

// ParseMIC converts a reported MIC such as "0.25", ">8" or "<=0.06" to a
// float. Up to two leading qualifier characters are dropped.
func ParseMIC(s string) (float64, error) {
	v := strings.TrimSpace(s)
	for strip := 0; strip <= 2 && strip <= len(v); strip++ {
		if f, err := strconv.ParseFloat(v[strip:], 64); err == nil {
			return f, nil
		}
	}
	return 0, &MICError{Value: s}
}

// ParseMICs converts every value with ParseMIC.
func ParseMICs(values []string) ([]float64, error) {
	out := make([]float64, len(values))
	for i, s := range values {
		f, err := ParseMIC(s)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}
