package matcher

import (
	"bytes"

	"github.com/praetorian-inc/searchbin/pkg/prefilter"
	"github.com/praetorian-inc/searchbin/pkg/types"
)

// Matcher finds occurrences of a compiled pattern in memory buffers.
// It holds no per-buffer state and is reused for a whole scan.
type Matcher struct {
	pattern types.Pattern
	length  int

	// offsets[i] is the position of Segments[i] relative to a match start.
	offsets []int

	// anchor is the longest segment; candidates are located by searching
	// for it and verified against the remaining segments.
	anchor       []byte
	anchorOffset int

	prefilter *prefilter.Prefilter
}

// New compiles a matcher for p.
func New(p types.Pattern) *Matcher {
	m := &Matcher{
		pattern:   p,
		length:    p.Len(),
		offsets:   make([]int, len(p.Segments)),
		prefilter: prefilter.New(p),
	}

	pos := 0
	for i, seg := range p.Segments {
		m.offsets[i] = pos
		if len(seg) > len(m.anchor) {
			m.anchor = seg
			m.anchorOffset = pos
		}
		pos += len(seg) + 1
	}

	return m
}

// Len returns the number of bytes a match spans.
func (m *Matcher) Len() int {
	return m.length
}

// Pattern returns the compiled pattern.
func (m *Matcher) Pattern() types.Pattern {
	return m.pattern
}

// Find returns the earliest match start >= from in buf, or -1.
// Wildcard gaps match any byte value.
func (m *Matcher) Find(buf []byte, from int) int {
	if from < 0 {
		from = 0
	}
	if m.length == 0 || from+m.length > len(buf) {
		return -1
	}

	// All-wildcard pattern: every position with enough room matches.
	if len(m.anchor) == 0 {
		return from
	}

	search := from + m.anchorOffset
	for {
		i := bytes.Index(buf[search:], m.anchor)
		if i < 0 {
			return -1
		}
		start := search + i - m.anchorOffset
		if start+m.length > len(buf) {
			return -1
		}
		if m.verify(buf, start) {
			return start
		}
		search += i + 1
	}
}

// FindAll returns every (possibly overlapping) match start in buf.
func (m *Matcher) FindAll(buf []byte) []int {
	var starts []int
	for pos := m.Find(buf, 0); pos >= 0; pos = m.Find(buf, pos+1) {
		starts = append(starts, pos)
	}
	return starts
}

// Candidate reports whether buf may contain a match. A false result
// guarantees Find returns -1 for every start position.
func (m *Matcher) Candidate(buf []byte) bool {
	if len(buf) < m.length {
		return false
	}
	return m.prefilter.MayMatch(buf)
}

func (m *Matcher) verify(buf []byte, start int) bool {
	for i, seg := range m.pattern.Segments {
		if len(seg) == 0 {
			continue
		}
		at := start + m.offsets[i]
		if !bytes.Equal(buf[at:at+len(seg)], seg) {
			return false
		}
	}
	return true
}
