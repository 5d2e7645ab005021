package reference

import (
	"fmt"
	"strconv"
	"strings"
)

// Range is the pair of genome coordinates parsed from a record location.
// NCBI writes complement regions high-to-low, so Start may exceed End.
type Range struct {
	Start int64
	End   int64
}

// Min returns the lower bound.
func (r Range) Min() int64 {
	if r.Start < r.End {
		return r.Start
	}
	return r.End
}

// Max returns the upper bound.
func (r Range) Max() int64 {
	if r.Start > r.End {
		return r.Start
	}
	return r.End
}

// Contains reports whether pos lies within [Min, Max].
func (r Range) Contains(pos int64) bool {
	return pos >= r.Min() && pos <= r.Max()
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// ParseLocation parses "<name>:<start>-<end>". Each bound is read as a plain
// integer first; if that fails, one leading marker character (such as the
// NCBI "c" for complement) is stripped from that bound and parsing retried.
func ParseLocation(location string) (Range, error) {
	parts := strings.Split(location, ":")
	if len(parts) < 2 {
		return Range{}, &MalformedReferenceLocationError{Location: location}
	}
	bounds := strings.Split(parts[1], "-")
	if len(bounds) != 2 {
		return Range{}, &MalformedReferenceLocationError{Location: location}
	}

	var vals [2]int64
	for i, b := range bounds {
		v, ok := parseBound(b)
		if !ok {
			return Range{}, &MalformedReferenceLocationError{Location: location}
		}
		vals[i] = v
	}
	return Range{Start: vals[0], End: vals[1]}, nil
}

func parseBound(b string) (int64, bool) {
	if v, err := strconv.ParseInt(b, 10, 64); err == nil {
		return v, true
	}
	if len(b) < 2 {
		return 0, false
	}
	v, err := strconv.ParseInt(b[1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
