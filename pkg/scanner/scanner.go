package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/praetorian-inc/searchbin/pkg/matcher"
	"github.com/praetorian-inc/searchbin/pkg/types"
)

// Scanner drives a Matcher over a stream through a fixed-size sliding
// window. Each refill discards only the front readChunk bytes, so the last
// patternLength bytes of a window are searched again together with the new
// data and no match spanning a refill is lost.
type Scanner struct {
	matcher *matcher.Matcher
	config  Config
	logger  *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger used for debug diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

// New validates cfg against the matcher's pattern and returns a Scanner.
func New(m *matcher.Matcher, cfg Config, opts ...Option) (*Scanner, error) {
	cfg = cfg.withDefaults(m.Len())
	if err := cfg.Validate(m.Len()); err != nil {
		return nil, err
	}

	s := &Scanner{
		matcher: m,
		config:  cfg,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the effective configuration.
func (s *Scanner) Config() Config {
	return s.config
}

// scan holds the state of one Scan call.
type scan struct {
	*Scanner
	ctx    context.Context
	stream Stream
	seeker io.ReadSeeker // nil when the stream cannot seek
	h      Handler

	window    []byte
	n         int  // valid bytes in window
	eof       bool // a short read was seen
	candidate bool // prefilter verdict for window[:n]
}

// Scan searches stream and reports events to h. Matches are reported in
// increasing offset order, each offset at most once.
func (s *Scanner) Scan(ctx context.Context, stream Stream, h Handler) (Result, error) {
	patternLen := s.matcher.Len()
	readChunk := s.config.BufferSize - patternLen

	sc := &scan{
		Scanner: s,
		ctx:     ctx,
		stream:  stream,
		h:       h,
		window:  make([]byte, s.config.BufferSize),
	}
	if rs, ok := stream.(io.ReadSeeker); ok {
		if _, err := rs.Seek(0, io.SeekCurrent); err == nil {
			sc.seeker = rs
		}
	}

	res := Result{Source: stream.Name(), Cursor: s.config.Start}
	s.logger.Debug("scan started",
		"source", res.Source,
		"buffer_size", s.config.BufferSize,
		"read_chunk", readChunk,
		"seekable", sc.seeker != nil)

	if err := sc.skipTo(s.config.Start); err != nil {
		return res, err
	}
	if err := sc.fill(0, patternLen+readChunk); err != nil {
		return res, err
	}

	cursor := s.config.Start
	next := cursor // lowest absolute offset not yet reported
	end := s.config.End
	remaining := s.config.MaxMatches
	pos := sc.find(0)

	for {
		if pos < 0 {
			cursor += int64(readChunk)
			res.Cursor = cursor
			if end > 0 && cursor > end {
				res.Reason = StopEndOffset
				break
			}

			keep := sc.n - readChunk
			if keep < 0 {
				keep = 0
			}
			copy(sc.window, sc.window[sc.n-keep:sc.n])
			if err := sc.fill(keep, readChunk); err != nil {
				return res, err
			}
			res.Refills++

			if s.config.Verbose {
				if err := h.Progress(res.Source, cursor); err != nil {
					return res, err
				}
			}

			from := next - cursor
			if from < 0 {
				from = 0
			}
			pos = sc.find(int(from))
		} else {
			abs := cursor + int64(pos)
			if end > 0 && abs > end {
				res.Reason = StopEndOffset
				break
			}

			if err := sc.emit(abs); err != nil {
				return res, err
			}
			res.Matches++
			next = abs + 1

			if remaining > 0 {
				remaining--
				if remaining == 0 {
					res.Reason = StopMaxMatches
					if err := h.MaxMatches(res.Source); err != nil {
						return res, err
					}
					break
				}
			}

			pos = sc.find(pos + 1)
		}

		if sc.n <= patternLen {
			res.Reason = StopEndOfStream
			break
		}
	}

	s.logger.Debug("scan finished",
		"source", res.Source,
		"matches", res.Matches,
		"refills", res.Refills,
		"reason", res.Reason.String())
	return res, nil
}

// find searches the current window from pos.
func (sc *scan) find(pos int) int {
	if !sc.candidate {
		return -1
	}
	return sc.matcher.Find(sc.window[:sc.n], pos)
}

// fill reads up to size bytes into window[at:] and sets the window length
// to at plus the bytes read.
func (sc *scan) fill(at, size int) error {
	got := 0
	if !sc.eof && size > 0 {
		if err := sc.ctx.Err(); err != nil {
			return err
		}
		var err error
		got, err = io.ReadFull(sc.stream, sc.window[at:at+size])
		switch {
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			sc.eof = true
		case err != nil:
			return types.Wrap(types.ReadError, sc.stream.Name(), err, "failed reading from file")
		}
	}
	sc.n = at + got
	sc.candidate = sc.matcher.Candidate(sc.window[:sc.n])
	return nil
}

// skipTo positions the stream at offset before the first read.
func (sc *scan) skipTo(offset int64) error {
	if offset <= 0 {
		return nil
	}
	if sc.seeker != nil {
		if _, err := sc.seeker.Seek(offset, io.SeekStart); err != nil {
			return types.Wrap(types.ReadError, sc.stream.Name(), err, "failed reading from file")
		}
		return nil
	}

	// Streams without seek support are read and discarded up to offset.
	_, err := io.CopyN(io.Discard, sc.stream, offset)
	if errors.Is(err, io.EOF) {
		sc.eof = true
		return nil
	}
	if err != nil {
		return types.Wrap(types.ReadError, sc.stream.Name(), err, "failed reading from file")
	}
	return nil
}

// emit builds the match event, with context when the stream can seek.
func (sc *scan) emit(abs int64) error {
	if err := sc.ctx.Err(); err != nil {
		return err
	}

	m := &types.Match{
		Offset: abs,
		Source: sc.stream.Name(),
		Length: sc.matcher.Len(),
	}

	cfg := sc.config
	if sc.seeker != nil && cfg.Before+cfg.After > 0 {
		before := matcher.ClampContext(abs, cfg.Before)
		snippet, err := matcher.ReadContext(sc.seeker, abs, before, cfg.After)
		if err != nil {
			return types.Wrap(types.ReadError, sc.stream.Name(), err, "failed reading from file")
		}
		m.Snippet = snippet
	}

	if err := sc.h.Match(m); err != nil {
		return fmt.Errorf("reporting match: %w", err)
	}
	return nil
}
