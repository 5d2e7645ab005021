package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for an input file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Ingested reports whether rows from this exact file version are stored.
func (s *Store) Ingested(fp FileFingerprint) (bool, error) {
	var size, modTime int64
	err := s.db.QueryRow(`SELECT size, mod_time FROM sources WHERE path=?`, fp.Path).Scan(&size, &modTime)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query source: %w", err)
	}
	return size == fp.Size && modTime == fp.ModTime.UnixNano(), nil
}

// recordSource stores the fingerprint of a file whose rows were written.
func recordSource(ctx context.Context, conn *sql.Conn, fp FileFingerprint, rows int) error {
	if _, err := conn.ExecContext(ctx, `DELETE FROM sources WHERE path=?`, fp.Path); err != nil {
		return fmt.Errorf("delete source: %w", err)
	}
	if _, err := conn.ExecContext(ctx, `INSERT INTO sources VALUES (?, ?, ?, ?)`,
		fp.Path, fp.Size, fp.ModTime.UnixNano(), int64(rows)); err != nil {
		return fmt.Errorf("insert source: %w", err)
	}
	return nil
}

// Sources returns the fingerprints of every ingested file, by path.
func (s *Store) Sources() ([]FileFingerprint, error) {
	rows, err := s.db.Query(`SELECT path, size, mod_time FROM sources ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var out []FileFingerprint
	for rows.Next() {
		var fp FileFingerprint
		var modTime int64
		if err := rows.Scan(&fp.Path, &fp.Size, &modTime); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		fp.ModTime = time.Unix(0, modTime)
		out = append(out, fp)
	}
	return out, rows.Err()
}
