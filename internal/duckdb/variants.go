package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-amr/internal/vcf"
)

const selectRows = `SELECT
	unique_id, gene, genome_index, genetic_ref, genetic_alt, mutation,
	rrs, frs, genome_index_shifted, shifted, product_position
	FROM translated_variants`

// WriteRows batch-inserts translated rows using the Appender API. Rows
// previously written for the same source path are replaced.
func (s *Store) WriteRows(source FileFingerprint, rows []*vcf.Row) error {
	ctx := context.Background()
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `DELETE FROM translated_variants WHERE source=?`, source.Path); err != nil {
		return fmt.Errorf("delete previous rows: %w", err)
	}

	var next int64
	if err := conn.QueryRowContext(ctx, `SELECT COALESCE(MAX(row_id), -1) + 1 FROM translated_variants`).Scan(&next); err != nil {
		return fmt.Errorf("query next row id: %w", err)
	}

	if len(rows) > 0 {
		if err := appendRows(conn, source.Path, next, rows); err != nil {
			return err
		}
	}

	return recordSource(ctx, conn, source, len(rows))
}

func appendRows(conn *sql.Conn, source string, first int64, rows []*vcf.Row) error {
	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "translated_variants")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for i, r := range rows {
		if err := appender.AppendRow(
			first+int64(i), source, r.UniqueID, r.Gene, r.GenomeIndex,
			r.GeneticRef, r.GeneticAlt, r.Mutation,
			strings.Join(r.RRS, ","), r.FRS,
			r.GenomeIndexShifted, r.Shifted, r.ProductPosition,
		); err != nil {
			return fmt.Errorf("append row: %w", err)
		}
	}

	return appender.Flush()
}

// Clear removes all stored rows and source fingerprints.
func (s *Store) Clear() error {
	if _, err := s.db.Exec("DELETE FROM translated_variants"); err != nil {
		return err
	}
	_, err := s.db.Exec("DELETE FROM sources")
	return err
}

// Count returns the number of stored rows.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM translated_variants`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return n, nil
}

// LoadRows returns every stored row in insertion order.
func (s *Store) LoadRows() ([]*vcf.Row, error) {
	rows, err := s.db.Query(selectRows + ` ORDER BY row_id`)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// SearchByGene returns the stored rows of a gene.
func (s *Store) SearchByGene(gene string) ([]*vcf.Row, error) {
	rows, err := s.db.Query(selectRows+` WHERE gene=? ORDER BY row_id`, gene)
	if err != nil {
		return nil, fmt.Errorf("query by gene: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// SearchByMutation returns the stored rows of a gene carrying a translated
// mutation label (e.g. "450SL").
func (s *Store) SearchByMutation(gene, mutation string) ([]*vcf.Row, error) {
	rows, err := s.db.Query(selectRows+` WHERE gene=? AND mutation=? ORDER BY row_id`, gene, mutation)
	if err != nil {
		return nil, fmt.Errorf("query by mutation: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// SearchByIsolate returns the stored rows of one isolate.
func (s *Store) SearchByIsolate(uniqueID string) ([]*vcf.Row, error) {
	rows, err := s.db.Query(selectRows+` WHERE unique_id=? ORDER BY row_id`, uniqueID)
	if err != nil {
		return nil, fmt.Errorf("query by isolate: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// scanRows scans result rows into variant rows.
func scanRows(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]*vcf.Row, error) {
	var out []*vcf.Row
	for rows.Next() {
		var r vcf.Row
		var rrs string
		if err := rows.Scan(
			&r.UniqueID, &r.Gene, &r.GenomeIndex, &r.GeneticRef, &r.GeneticAlt, &r.Mutation,
			&rrs, &r.FRS, &r.GenomeIndexShifted, &r.Shifted, &r.ProductPosition,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if rrs != "" {
			r.RRS = strings.Split(rrs, ",")
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}
