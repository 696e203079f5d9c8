package scanner

import (
	"fmt"
	"io"
	"strconv"

	"github.com/praetorian-inc/searchbin/pkg/types"
)

// DefaultBufferSize is used when no buffer size is configured and the
// pattern is small enough.
const DefaultBufferSize = 8 << 20

// Config bounds a single scan. It is not modified while scanning.
type Config struct {
	Start      int64 // first offset to scan
	End        int64 // last offset a match may start at (0 = unbounded)
	BufferSize int   // window size in bytes (0 = BufferSizeFor(pattern length))
	MaxMatches int   // stop after this many matches (0 = unbounded)
	Before     int   // context bytes before each match
	After      int   // context bytes after each match start
	Verbose    bool  // emit a progress event after every refill
}

// BufferSizeFor returns the default window size for a pattern length.
func BufferSizeFor(patternLen int) int {
	if 2*patternLen > DefaultBufferSize {
		return 2 * patternLen
	}
	return DefaultBufferSize
}

// withDefaults fills unset fields.
func (c Config) withDefaults(patternLen int) Config {
	if c.BufferSize == 0 {
		c.BufferSize = BufferSizeFor(patternLen)
	}
	return c
}

// Validate checks the config against the compiled pattern length.
func (c Config) Validate(patternLen int) error {
	if patternLen <= 0 {
		return types.Errorf(types.ConfigError, "", "the pattern string is invalid (empty)")
	}
	if c.BufferSize < 2*patternLen {
		return types.Errorf(types.ConfigError, strconv.Itoa(c.BufferSize),
			"the buffer size must be at least %d bytes", 2*patternLen)
	}
	for _, v := range []struct {
		name  string
		value int64
	}{
		{"start", c.Start},
		{"end", c.End},
		{"max-matches", int64(c.MaxMatches)},
		{"before", int64(c.Before)},
		{"after", int64(c.After)},
	} {
		if v.value < 0 {
			return types.Errorf(types.ConfigError, strconv.FormatInt(v.value, 10), "%s must not be negative", v.name)
		}
	}
	if c.End > 0 && c.Start >= c.End {
		return types.Errorf(types.ConfigError, fmt.Sprintf("%d >= %d", c.Start, c.End),
			"the start of search must come before the end")
	}
	return nil
}

// Stream is a named byte source. Streams that also implement io.Seeker get
// direct seeking to the start offset and match context.
type Stream interface {
	io.Reader
	Name() string
}

// Named attaches a name to a reader, keeping its io.Seeker if it has one.
func Named(name string, r io.Reader) Stream {
	if rs, ok := r.(io.ReadSeeker); ok {
		return &namedReadSeeker{ReadSeeker: rs, name: name}
	}
	return &namedReader{Reader: r, name: name}
}

type namedReader struct {
	io.Reader
	name string
}

func (n *namedReader) Name() string { return n.name }

type namedReadSeeker struct {
	io.ReadSeeker
	name string
}

func (n *namedReadSeeker) Name() string { return n.name }

// Handler receives scan events in stream order.
type Handler interface {
	// Match is called once per reported offset.
	Match(m *types.Match) error

	// Progress is called after each window refill when verbose.
	Progress(source string, offset int64) error

	// MaxMatches is called once when the match limit ends the scan.
	MaxMatches(source string) error
}

// StopReason says why a scan ended.
type StopReason int

const (
	StopEndOfStream StopReason = iota
	StopEndOffset
	StopMaxMatches
)

func (r StopReason) String() string {
	switch r {
	case StopEndOfStream:
		return "end of stream"
	case StopEndOffset:
		return "end offset reached"
	case StopMaxMatches:
		return "maximum matches"
	default:
		return "unknown"
	}
}

// Result summarizes a finished scan.
type Result struct {
	Source  string
	Matches int
	Refills int
	Cursor  int64 // absolute offset of the window start when the scan ended
	Reason  StopReason
}
