package types

import (
	"bytes"
	"encoding/hex"
	"strings"
)

// Pattern is a compiled search target: literal byte segments separated by
// exactly one wildcard byte each.
type Pattern struct {
	Segments [][]byte
}

// NewPattern builds a pattern from segments. A nil or empty segment list is
// normalized to a single empty segment.
func NewPattern(segments ...[]byte) Pattern {
	if len(segments) == 0 {
		return Pattern{Segments: [][]byte{{}}}
	}
	return Pattern{Segments: segments}
}

// Len is the number of bytes a match spans, wildcards included.
func (p Pattern) Len() int {
	if len(p.Segments) == 0 {
		return 0
	}
	n := len(p.Segments) - 1
	for _, seg := range p.Segments {
		n += len(seg)
	}
	return n
}

// Wildcards returns the number of single-byte gaps.
func (p Pattern) Wildcards() int {
	if len(p.Segments) == 0 {
		return 0
	}
	return len(p.Segments) - 1
}

// Literal reports whether the pattern contains no wildcards.
func (p Pattern) Literal() bool {
	return len(p.Segments) == 1
}

// Equal reports whether two patterns have identical segments.
func (p Pattern) Equal(o Pattern) bool {
	if len(p.Segments) != len(o.Segments) {
		return false
	}
	for i := range p.Segments {
		if !bytes.Equal(p.Segments[i], o.Segments[i]) {
			return false
		}
	}
	return true
}

// String renders the pattern in hex form, with "??" for each gap.
func (p Pattern) String() string {
	parts := make([]string, len(p.Segments))
	for i, seg := range p.Segments {
		parts[i] = hex.EncodeToString(seg)
	}
	return strings.Join(parts, "??")
}
