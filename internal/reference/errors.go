package reference

import "fmt"

// ReferenceNotFoundError is returned when no record exists for a gene.
type ReferenceNotFoundError struct {
	Gene string
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("no reference sequence for gene %q", e.Gene)
}

// MalformedReferenceLocationError is returned when a record location
// cannot be parsed into a coordinate range.
type MalformedReferenceLocationError struct {
	Location string
}

func (e *MalformedReferenceLocationError) Error() string {
	return fmt.Sprintf("malformed reference location %q", e.Location)
}

// InvalidReferenceLengthError is returned when a sequence does not split
// into whole codons and partial codons are not allowed.
type InvalidReferenceLengthError struct {
	Gene   string
	Length int
}

func (e *InvalidReferenceLengthError) Error() string {
	return fmt.Sprintf("reference for gene %q has length %d, not a multiple of 3", e.Gene, e.Length)
}
