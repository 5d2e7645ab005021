package reference

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/inodb/vibe-amr/internal/xio"
)

// Store resolves a gene identifier to its reference record.
type Store interface {
	Lookup(gene string) (Record, error)
}

// fileSuffixes are tried in order when resolving <gene><suffix> in a DirStore.
var fileSuffixes = []string{".fasta", ".fa", ".fna", ".fasta.gz", ".fa.gz", ".fasta.lz4", ".fa.lz4"}

// DirStore serves one FASTA file per gene from a directory.
type DirStore struct {
	dir string
}

// NewDirStore creates a store reading <dir>/<gene>.fasta and variants.
func NewDirStore(dir string) *DirStore {
	return &DirStore{dir: dir}
}

// Dir returns the directory the store reads from.
func (s *DirStore) Dir() string {
	return s.dir
}

// Lookup parses the gene's FASTA file. When the file holds several records
// the last one is returned.
func (s *DirStore) Lookup(gene string) (Record, error) {
	path, err := s.find(gene)
	if err != nil {
		return Record{}, err
	}

	rc, err := xio.Open(path)
	if err != nil {
		return Record{}, fmt.Errorf("open reference for %s: %w", gene, err)
	}
	defer rc.Close()

	records, err := ParseFASTA(rc)
	if err != nil {
		return Record{}, fmt.Errorf("parse reference %s: %w", path, err)
	}
	if len(records) == 0 {
		return Record{}, &ReferenceNotFoundError{Gene: gene}
	}
	return records[len(records)-1], nil
}

func (s *DirStore) find(gene string) (string, error) {
	for _, suffix := range fileSuffixes {
		path := filepath.Join(s.dir, gene+suffix)
		_, err := os.Stat(path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("stat reference %s: %w", path, err)
		}
	}
	return "", &ReferenceNotFoundError{Gene: gene}
}

// MemoryStore is a Store backed by a map.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Add registers the record for gene, replacing any previous one.
func (s *MemoryStore) Add(gene string, r Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[gene] = r
}

// Lookup returns the record registered for gene.
func (s *MemoryStore) Lookup(gene string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[gene]
	if !ok {
		return Record{}, &ReferenceNotFoundError{Gene: gene}
	}
	return r, nil
}
