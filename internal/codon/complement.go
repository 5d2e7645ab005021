package codon

import "fmt"

// Complement returns the Watson-Crick partner of an uppercase base.
// ok is false for anything outside ACGT.
func Complement(base byte) (c byte, ok bool) {
	switch base {
	case 'A':
		return 'T', true
	case 'T':
		return 'A', true
	case 'G':
		return 'C', true
	case 'C':
		return 'G', true
	default:
		return 0, false
	}
}

// ComplementSequence complements every base of seq and keeps the order.
func ComplementSequence(seq string) (string, error) {
	buf := make([]byte, len(seq))
	for i := 0; i < len(seq); i++ {
		c, ok := Complement(seq[i])
		if !ok {
			return "", &InvalidBaseError{Base: seq[i], Offset: i}
		}
		buf[i] = c
	}
	return string(buf), nil
}

// ReverseComplement returns the reverse complement of seq.
func ReverseComplement(seq string) (string, error) {
	n := len(seq)
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		c, ok := Complement(seq[n-1-i])
		if !ok {
			return "", &InvalidBaseError{Base: seq[n-1-i], Offset: n - 1 - i}
		}
		buf[i] = c
	}
	return string(buf), nil
}

// InvalidBaseError reports a base with no complement.
type InvalidBaseError struct {
	Base   byte
	Offset int
}

func (e *InvalidBaseError) Error() string {
	return fmt.Sprintf("invalid base %q at offset %d", e.Base, e.Offset)
}
