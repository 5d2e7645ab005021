package reference

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/inodb/vibe-amr/internal/codon"
)

// GeneReference holds the codons of one gene on one strand.
// It is never modified after construction.
type GeneReference struct {
	Gene       string
	Complement bool     // gene is encoded on the reverse strand
	Location   string   // record location, e.g. NC_000962.3:c2156111-2153889
	Range      Range    // genome coordinates spanned by the gene
	Codons     []string // triplets in record sequence order
}

// Codon returns the codon at zero-based index i.
func (g *GeneReference) Codon(i int64) (string, bool) {
	if i < 0 || i >= int64(len(g.Codons)) {
		return "", false
	}
	return g.Codons[i], true
}

// Sequence returns the codons joined back into a single sequence.
func (g *GeneReference) Sequence() string {
	return strings.Join(g.Codons, "")
}

// Options controls codon extraction.
type Options struct {
	// AllowPartialCodon keeps a trailing 1 or 2 base codon instead of
	// failing with InvalidReferenceLengthError.
	AllowPartialCodon bool
}

// Extract builds the GeneReference for a record. When complement is set
// every base is complemented in place; the order is not reversed.
func Extract(gene string, complement bool, rec Record, opts Options) (*GeneReference, error) {
	rng, err := ParseLocation(rec.ID)
	if err != nil {
		return nil, err
	}

	seq := rec.Sequence
	if complement {
		seq, err = codon.ComplementSequence(seq)
		if err != nil {
			return nil, fmt.Errorf("complement reference for %s: %w", gene, err)
		}
	}

	if len(seq)%3 != 0 && !opts.AllowPartialCodon {
		return nil, &InvalidReferenceLengthError{Gene: gene, Length: len(seq)}
	}

	return &GeneReference{
		Gene:       gene,
		Complement: complement,
		Location:   rec.ID,
		Range:      rng,
		Codons:     codon.Partition(seq),
	}, nil
}

type cacheKey struct {
	gene       string
	complement bool
}

// Extractor resolves and extracts gene references, keeping one immutable
// GeneReference per (gene, strand). Safe for concurrent use.
type Extractor struct {
	store  Store
	opts   Options
	logger *zap.Logger

	mu     sync.RWMutex
	cache  map[cacheKey]*GeneReference
	flight singleflight.Group
}

// NewExtractor creates an extractor reading from store.
func NewExtractor(store Store, opts Options) *Extractor {
	return &Extractor{
		store:  store,
		opts:   opts,
		logger: zap.NewNop(),
		cache:  make(map[cacheKey]*GeneReference),
	}
}

// SetLogger sets the logger for reference load messages.
func (e *Extractor) SetLogger(l *zap.Logger) {
	e.logger = l
}

// Extract returns the codons and coordinate range for gene. Each
// (gene, strand) pair is loaded from the store at most once.
func (e *Extractor) Extract(gene string, complement bool) (*GeneReference, error) {
	key := cacheKey{gene: gene, complement: complement}

	e.mu.RLock()
	ref, ok := e.cache[key]
	e.mu.RUnlock()
	if ok {
		return ref, nil
	}

	v, err, _ := e.flight.Do(fmt.Sprintf("%s|%t", gene, complement), func() (any, error) {
		e.mu.RLock()
		cached, ok := e.cache[key]
		e.mu.RUnlock()
		if ok {
			return cached, nil
		}

		rec, err := e.store.Lookup(gene)
		if err != nil {
			return nil, err
		}
		ref, err := Extract(gene, complement, rec, e.opts)
		if err != nil {
			return nil, err
		}

		e.mu.Lock()
		e.cache[key] = ref
		e.mu.Unlock()

		e.logger.Debug("loaded reference",
			zap.String("gene", gene),
			zap.Bool("complement", complement),
			zap.String("location", rec.ID),
			zap.Int("codons", len(ref.Codons)))
		return ref, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*GeneReference), nil
}

// Len returns the number of cached references.
func (e *Extractor) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}
