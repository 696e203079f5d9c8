// Package searchbin finds byte patterns in streams of any size.
//
// Patterns are literal bytes, hex strings with "??" single-byte wildcards,
// or text with "?" wildcards. Streams are read through a fixed-size sliding
// window, so memory use depends on the buffer size and not on the stream.
//
// # Basic Usage
//
//	p, err := searchbin.Compile(searchbin.Source{Kind: searchbin.SourceHex, Value: "DE AD ?? EF"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	searcher, err := searchbin.NewSearcher(p)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	matches, err := searcher.FindAll(ctx, "dump.bin", f)
//	for _, m := range matches {
//	    fmt.Printf("match at 0x%X\n", m.Offset)
//	}
//
// # With Context
//
// Searchers created WithContext attach the bytes around each match when the
// stream can seek:
//
//	searcher, err := searchbin.NewSearcher(p, searchbin.WithContext(16, 32))
package searchbin

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/praetorian-inc/searchbin/pkg/matcher"
	"github.com/praetorian-inc/searchbin/pkg/pattern"
	"github.com/praetorian-inc/searchbin/pkg/scanner"
	"github.com/praetorian-inc/searchbin/pkg/types"
)

// Re-export commonly used types for convenience.
// Users can import just "github.com/praetorian-inc/searchbin" without subpackages.
type (
	// Pattern is a compiled byte pattern.
	Pattern = types.Pattern

	// Source selects how a pattern value is interpreted.
	Source = types.Source

	// Match is a single reported offset.
	Match = types.Match

	// Snippet holds the bytes surrounding a match.
	Snippet = types.Snippet

	// Handler receives scan events.
	Handler = scanner.Handler

	// Result summarizes a finished scan.
	Result = scanner.Result
)

// Re-export pattern source kinds.
const (
	SourceRaw  = types.SourceRaw
	SourceHex  = types.SourceHex
	SourceText = types.SourceText
)

// Compile turns a pattern source into a Pattern.
func Compile(src Source) (Pattern, error) {
	return pattern.Compile(src)
}

// Searcher scans streams for one compiled pattern.
type Searcher struct {
	scanner *scanner.Scanner
}

// searcherConfig holds searcher configuration.
type searcherConfig struct {
	scan   scanner.Config
	logger *slog.Logger
}

// Option configures a Searcher.
type Option func(*searcherConfig)

// WithBufferSize sets the window size. It must be at least twice the
// pattern length. Default is the larger of that and 8 MiB.
func WithBufferSize(size int) Option {
	return func(c *searcherConfig) {
		c.scan.BufferSize = size
	}
}

// WithRange limits the search to matches starting in [start, end].
// An end of 0 means the end of the stream.
func WithRange(start, end int64) Option {
	return func(c *searcherConfig) {
		c.scan.Start = start
		c.scan.End = end
	}
}

// WithMaxMatches stops each scan after n matches.
func WithMaxMatches(n int) Option {
	return func(c *searcherConfig) {
		c.scan.MaxMatches = n
	}
}

// WithContext attaches before bytes preceding and after bytes following
// each match start.
func WithContext(before, after int) Option {
	return func(c *searcherConfig) {
		c.scan.Before = before
		c.scan.After = after
	}
}

// WithVerbose enables a progress event after every window refill.
func WithVerbose() Option {
	return func(c *searcherConfig) {
		c.scan.Verbose = true
	}
}

// WithLogger sets the logger for debug diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *searcherConfig) {
		c.logger = l
	}
}

// NewSearcher compiles a matcher for p and validates the options.
func NewSearcher(p Pattern, opts ...Option) (*Searcher, error) {
	cfg := &searcherConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	s, err := scanner.New(matcher.New(p), cfg.scan, scanner.WithLogger(cfg.logger))
	if err != nil {
		return nil, err
	}
	return &Searcher{scanner: s}, nil
}

// BufferSize returns the effective window size.
func (s *Searcher) BufferSize() int {
	return s.scanner.Config().BufferSize
}

// Search scans r, reporting events to h. r is used for context and
// start-offset seeking when it implements io.ReadSeeker.
func (s *Searcher) Search(ctx context.Context, name string, r io.Reader, h Handler) (Result, error) {
	return s.scanner.Scan(ctx, scanner.Named(name, r), h)
}

// SearchFile opens path and scans it.
func (s *Searcher) SearchFile(ctx context.Context, path string, h Handler) (Result, error) {
	f, err := OpenFile(path)
	if err != nil {
		return Result{Source: path}, err
	}
	defer f.Close()

	return s.Search(ctx, path, f, h)
}

// FindAll scans r and returns every match.
func (s *Searcher) FindAll(ctx context.Context, name string, r io.Reader) ([]*Match, error) {
	var c collector
	if _, err := s.Search(ctx, name, r, &c); err != nil {
		return nil, err
	}
	return c.matches, nil
}

// OpenFile opens a target for scanning. Failures, including directories,
// are InputOpenErrors naming the path.
func OpenFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, types.Wrap(types.InputOpenError, path, err, "failed opening file")
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, types.Wrap(types.InputOpenError, path, err, "failed opening file")
	}
	if info.IsDir() {
		f.Close()
		return nil, types.Errorf(types.InputOpenError, path, "failed opening file: is a directory")
	}
	return f, nil
}

type collector struct {
	matches []*Match
}

func (c *collector) Match(m *Match) error {
	c.matches = append(c.matches, m)
	return nil
}

func (c *collector) Progress(string, int64) error { return nil }

func (c *collector) MaxMatches(string) error { return nil }
