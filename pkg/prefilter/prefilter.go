package prefilter

import (
	"github.com/cloudflare/ahocorasick"
	"github.com/praetorian-inc/searchbin/pkg/types"
)

// Prefilter uses Aho-Corasick to reject windows that cannot hold a match:
// every non-empty literal segment of a pattern must occur somewhere in a
// window for the pattern to match inside it.
type Prefilter struct {
	matcher  *ahocorasick.Matcher
	keywords [][]byte // distinct non-empty segments
}

// New creates a prefilter from the pattern's literal segments.
// Returns nil when the pattern has fewer than two distinct non-empty
// segments; a single anchor search is already as cheap as the filter.
func New(p types.Pattern) *Prefilter {
	seen := make(map[string]bool)
	var keywords [][]byte
	for _, seg := range p.Segments {
		if len(seg) == 0 || seen[string(seg)] {
			continue
		}
		seen[string(seg)] = true
		keywords = append(keywords, seg)
	}

	if len(keywords) < 2 {
		return nil
	}

	return &Prefilter{
		matcher:  ahocorasick.NewMatcher(keywords),
		keywords: keywords,
	}
}

// Keywords returns the distinct segments the filter looks for.
func (pf *Prefilter) Keywords() [][]byte {
	if pf == nil {
		return nil
	}
	return pf.keywords
}

// MayMatch reports whether content contains every keyword.
// A nil prefilter accepts everything.
func (pf *Prefilter) MayMatch(content []byte) bool {
	if pf == nil {
		return true
	}

	hits := pf.matcher.Match(content)

	found := make(map[int]bool, len(hits))
	for _, hit := range hits {
		found[hit] = true
	}
	return len(found) == len(pf.keywords)
}
