package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/praetorian-inc/searchbin/pkg/hexdump"
	"github.com/praetorian-inc/searchbin/pkg/types"
)

// styles holds color formatters for text output.
type styles struct {
	offset   *color.Color
	address  *color.Color
	progress *color.Color
	notice   *color.Color
}

// newStyles creates color formatters.
// enabled=false renders plain text regardless of the terminal.
func newStyles(enabled bool) *styles {
	s := &styles{
		offset:   color.New(color.Bold, color.FgHiGreen),
		address:  color.New(color.FgHiBlue),
		progress: color.New(color.Faint),
		notice:   color.New(color.Bold, color.FgYellow),
	}

	for _, c := range []*color.Color{s.offset, s.address, s.progress, s.notice} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

// Text writes the classic line format: one line per match followed by a
// hex dump of its context.
type Text struct {
	w      *bufio.Writer
	width  int
	styles *styles
}

// NewText creates a text reporter.
func NewText(w io.Writer, opts Options) *Text {
	width := opts.Width
	if width <= 0 {
		width = hexdump.DefaultWidth
	}
	return &Text{
		w:      bufio.NewWriter(w),
		width:  width,
		styles: newStyles(opts.Color),
	}
}

// Match writes the match line and the context dump.
func (t *Text) Match(m *types.Match) error {
	t.styles.offset.Fprintln(t.w, MatchLine(m))

	if m.Snippet != nil {
		dump := hexdump.Dump(m.Snippet.Data, t.width, m.Snippet.Start)
		for _, line := range strings.SplitAfter(dump, "\n") {
			if len(line) < 8 {
				t.w.WriteString(line)
				continue
			}
			// The address is everything before the first separator.
			sep := strings.Index(line, "  ")
			t.styles.address.Fprint(t.w, line[:sep])
			t.w.WriteString(line[sep:])
		}
	}
	return t.w.Flush()
}

// Progress writes a verbose progress line.
func (t *Text) Progress(source string, offset int64) error {
	t.styles.progress.Fprintln(t.w, ProgressLine(offset))
	return t.w.Flush()
}

// MaxMatches writes the terminal notice.
func (t *Text) MaxMatches(source string) error {
	t.styles.notice.Fprintln(t.w, MaxMatchesNotice)
	return t.w.Flush()
}

// Flush writes any buffered output.
func (t *Text) Flush() error {
	if err := t.w.Flush(); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
