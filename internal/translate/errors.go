package translate

import "fmt"

// RowError attaches row identity to a failure.
type RowError struct {
	Index    int
	UniqueID string
	Gene     string
	Err      error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d (isolate %s, gene %s): %v", e.Index, e.UniqueID, e.Gene, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// UnmappedGeneError is returned for rows whose gene has no strand entry
// when unmapped rows are rejected.
type UnmappedGeneError struct {
	Gene string
}

func (e *UnmappedGeneError) Error() string {
	return fmt.Sprintf("gene %q is not in the strand mapping", e.Gene)
}

// PositionOutOfRangeError is returned when a shifted coordinate does not
// fall inside the gene's codons.
type PositionOutOfRangeError struct {
	Gene    string
	Shifted int64
	Codons  int
}

func (e *PositionOutOfRangeError) Error() string {
	return fmt.Sprintf("shifted position %d is outside gene %q (%d codons)", e.Shifted, e.Gene, e.Codons)
}

// EmptyAlleleError is returned for a substitution row without an
// alternate allele.
type EmptyAlleleError struct {
	Gene string
}

func (e *EmptyAlleleError) Error() string {
	return fmt.Sprintf("empty alternate allele in gene %q", e.Gene)
}
