package reference

import (
	"sort"

	"github.com/biogo/store/interval"
)

// geneInterval is a gene span stored half-open as [Min, Max+1).
type geneInterval struct {
	start, end int
	uid        uintptr
	gene       string
}

func (g geneInterval) Overlap(b interval.IntRange) bool {
	return g.end > b.Start && g.start < b.End
}

func (g geneInterval) ID() uintptr { return g.uid }

func (g geneInterval) Range() interval.IntRange {
	return interval.IntRange{Start: g.start, End: g.end}
}

// point is a single genome position used as a tree query.
type point int

func (p point) Overlap(b interval.IntRange) bool {
	return int(p) >= b.Start && int(p) < b.End
}

// Locator answers which genes span a genome position.
type Locator struct {
	tree   interval.IntTree
	ranges map[string]Range
}

// NewLocator indexes the coordinate ranges of refs.
func NewLocator(refs []*GeneReference) (*Locator, error) {
	l := &Locator{ranges: make(map[string]Range, len(refs))}
	for i, ref := range refs {
		if _, seen := l.ranges[ref.Gene]; seen {
			continue
		}
		iv := geneInterval{
			start: int(ref.Range.Min()),
			end:   int(ref.Range.Max()) + 1,
			uid:   uintptr(i),
			gene:  ref.Gene,
		}
		if err := l.tree.Insert(iv, true); err != nil {
			return nil, err
		}
		l.ranges[ref.Gene] = ref.Range
	}
	l.tree.AdjustRanges()
	return l, nil
}

// Genes returns the sorted names of genes whose range contains pos.
func (l *Locator) Genes(pos int64) []string {
	var genes []string
	for _, iv := range l.tree.Get(point(pos)) {
		genes = append(genes, iv.(geneInterval).gene)
	}
	sort.Strings(genes)
	return genes
}

// Len returns the number of indexed genes.
func (l *Locator) Len() int {
	return len(l.ranges)
}
