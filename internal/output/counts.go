package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-amr/internal/phenotype"
)

// WriteCountTable writes an R/S count table.
func WriteCountTable(w io.Writer, rows []phenotype.CountRow) error {
	if _, err := fmt.Fprintln(w, "NAME\tR\tS\tTOTAL"); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", r.Name, r.R, r.S, r.Total); err != nil {
			return err
		}
	}
	return nil
}

// WriteTabulation writes the variants, solos and minor R/S counts.
func WriteTabulation(w io.Writer, t phenotype.Tabulation) error {
	lines := []struct {
		name string
		rs   phenotype.RS
	}{
		{"variants", t.Variants},
		{"solos", t.Solos},
		{"minor", t.Minor},
	}
	if _, err := fmt.Fprintln(w, "NAME\tR\tS"); err != nil {
		return err
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "%s\t%d\t%d\n", l.name, l.rs.R, l.rs.S); err != nil {
			return err
		}
	}
	return nil
}

// WriteMICs writes one line per mutation with its comma separated MICs.
func WriteMICs(w io.Writer, gene string, m *phenotype.MutationMICs) error {
	if _, err := fmt.Fprintln(w, "GENE\tMUTATION\tCOUNT\tMICS"); err != nil {
		return err
	}
	for _, mutation := range m.Mutations() {
		mics := m.MICs(mutation)
		values := make([]string, len(mics))
		for i, v := range mics {
			values[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", gene, mutation, len(mics), strings.Join(values, ",")); err != nil {
			return err
		}
	}
	return nil
}
