package matcher

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/praetorian-inc/searchbin/pkg/pattern"
	"github.com/praetorian-inc/searchbin/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// naiveFind is a byte-by-byte reference search.
func naiveFind(buf []byte, p types.Pattern, from int) int {
	n := p.Len()
	for start := from; start+n <= len(buf); start++ {
		pos := start
		ok := true
		for i, seg := range p.Segments {
			if !bytes.Equal(buf[pos:pos+len(seg)], seg) {
				ok = false
				break
			}
			pos += len(seg)
			if i < len(p.Segments)-1 {
				pos++
			}
		}
		if ok {
			return start
		}
	}
	return -1
}

func TestFind_Scenarios(t *testing.T) {
	tests := []struct {
		name  string
		hex   string
		text  string
		input []byte
		want  []int
	}{
		{name: "literal hex", hex: "AABBCC", input: []byte("XX\xAA\xBB\xCCXX"), want: []int{2}},
		{name: "hex wildcard", hex: "01??02", input: []byte{0x01, 0xFF, 0x02, 0xFF, 0x03}, want: []int{0}},
		{name: "text double wildcard", text: "A??B", input: []byte("AxyB"), want: []int{0}},
		{name: "overlapping", text: "aa", input: []byte("aaaa"), want: []int{0, 1, 2}},
		{name: "no match", hex: "DEAD", input: []byte{0xDE, 0xAE, 0xAD}, want: nil},
		{name: "pattern longer than buffer", text: "abcdef", input: []byte("abc"), want: nil},
		{name: "leading wildcard", text: "?B", input: []byte("BB"), want: []int{0}},
		{name: "trailing wildcard", text: "B?", input: []byte("ABB"), want: []int{1}},
		{name: "wildcard only", text: "?", input: []byte("xyz"), want: []int{0, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p types.Pattern
			if tt.hex != "" {
				var err error
				p, err = pattern.FromHex(tt.hex)
				require.NoError(t, err)
			} else {
				p = pattern.FromText(tt.text)
			}

			m := New(p)
			assert.Equal(t, tt.want, m.FindAll(tt.input))
		})
	}
}

func TestFind_WildcardMatchesEveryByte(t *testing.T) {
	m := New(pattern.FromText("A?C"))

	for b := 0; b <= 0xFF; b++ {
		buf := []byte{'A', byte(b), 'C'}
		assert.Equal(t, 0, m.Find(buf, 0), "byte 0x%02x", b)
	}
}

func TestFind_HexAndTextAgree(t *testing.T) {
	hexPattern, err := pattern.FromHex("41??43")
	require.NoError(t, err)

	input := []byte("ABCAxCA\nC..AC")
	assert.Equal(t, New(pattern.FromText("A?C")).FindAll(input), New(hexPattern).FindAll(input))
	assert.Equal(t, []int{0, 3, 6}, New(hexPattern).FindAll(input))
}

func TestFind_FromPosition(t *testing.T) {
	m := New(pattern.FromText("ab"))
	buf := []byte("ab..ab..ab")

	assert.Equal(t, 0, m.Find(buf, -5))
	assert.Equal(t, 4, m.Find(buf, 1))
	assert.Equal(t, 8, m.Find(buf, 8))
	assert.Equal(t, -1, m.Find(buf, 9))
	assert.Equal(t, -1, m.Find(buf, 100))
}

func TestFind_AgreesWithNaiveSearch(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for iter := 0; iter < 500; iter++ {
		// Small alphabet so matches are frequent.
		buf := make([]byte, rng.Intn(200))
		for i := range buf {
			buf[i] = byte('a' + rng.Intn(3))
		}

		segCount := 1 + rng.Intn(3)
		segments := make([][]byte, segCount)
		for i := range segments {
			seg := make([]byte, rng.Intn(4))
			for j := range seg {
				seg[j] = byte('a' + rng.Intn(3))
			}
			segments[i] = seg
		}
		p := types.NewPattern(segments...)
		if p.Len() == 0 {
			continue
		}

		m := New(p)
		for from := 0; from <= len(buf); from += 1 + rng.Intn(7) {
			require.Equal(t, naiveFind(buf, p, from), m.Find(buf, from),
				"pattern %s, buffer %q, from %d", p, buf, from)
		}
	}
}

func TestFind_LiteralAgreesWithBytesIndex(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for iter := 0; iter < 200; iter++ {
		buf := make([]byte, 64+rng.Intn(64))
		rng.Read(buf)
		needle := append([]byte(nil), buf[rng.Intn(32):][:1+rng.Intn(8)]...)

		m := New(pattern.FromRaw(needle))
		assert.Equal(t, bytes.Index(buf, needle), m.Find(buf, 0))
	}
}

func TestCandidate(t *testing.T) {
	m := New(pattern.FromText("MZ??PE"))

	assert.True(t, m.Candidate([]byte("..MZxxPE..")))
	assert.False(t, m.Candidate([]byte("..MZxxxx..")))
	assert.False(t, m.Candidate([]byte("MZ")), "shorter than the pattern")

	literal := New(pattern.FromText("MZ"))
	assert.True(t, literal.Candidate([]byte("no marker here")), "literal patterns skip the prefilter")
}

func TestCandidate_NeverRejectsMatchingWindow(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	p := pattern.FromText("ab?ba?c")
	m := New(p)

	for iter := 0; iter < 300; iter++ {
		buf := make([]byte, 20+rng.Intn(60))
		for i := range buf {
			buf[i] = byte('a' + rng.Intn(3))
		}
		if m.Find(buf, 0) >= 0 {
			require.True(t, m.Candidate(buf), "buffer %q", buf)
		}
	}
}
