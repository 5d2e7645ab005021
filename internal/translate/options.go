package translate

import (
	"fmt"
	"strings"
)

// UnmappedPolicy decides what happens to rows whose gene has no strand entry.
type UnmappedPolicy int

const (
	// PassThrough leaves unmapped rows untouched.
	PassThrough UnmappedPolicy = iota
	// Reject fails unmapped rows with UnmappedGeneError.
	Reject
)

func (p UnmappedPolicy) String() string {
	if p == Reject {
		return "error"
	}
	return "pass"
}

// ParseUnmappedPolicy parses "pass" or "error".
func ParseUnmappedPolicy(s string) (UnmappedPolicy, error) {
	switch strings.ToLower(s) {
	case "", "pass":
		return PassThrough, nil
	case "error", "reject":
		return Reject, nil
	}
	return PassThrough, fmt.Errorf("unknown unmapped policy %q (want pass or error)", s)
}

// Notation selects the prefix of translated labels.
type Notation int

const (
	// Raw keeps the incoming mutation prefix, so a label reads
	// <ref allele><alt amino acid>.
	Raw Notation = iota
	// Protein rewrites the prefix to <codon position><ref amino acid>
	// before labelling.
	Protein
)

func (n Notation) String() string {
	if n == Protein {
		return "protein"
	}
	return "raw"
}

// ParseNotation parses "protein" or "raw".
func ParseNotation(s string) (Notation, error) {
	switch strings.ToLower(s) {
	case "", "protein":
		return Protein, nil
	case "raw":
		return Raw, nil
	}
	return Raw, fmt.Errorf("unknown notation %q (want protein or raw)", s)
}
