// Package report renders scan events as text, JSON lines or SARIF.
package report

import (
	"fmt"
	"io"

	"github.com/praetorian-inc/searchbin/pkg/types"
)

// Format names an output format.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatSARIF Format = "sarif"
)

// MaxMatchesNotice is printed once when the match limit is reached.
const MaxMatchesNotice = "Found maximum number of matches."

// Reporter receives scan events. Flush must be called once after the last
// scan; formats that buffer (SARIF) write their output then.
type Reporter interface {
	Match(m *types.Match) error
	Progress(source string, offset int64) error
	MaxMatches(source string) error
	Flush() error
}

// Options configures a Reporter.
type Options struct {
	Color   bool          // text format: colorize output
	Width   int           // text format: hex dump bytes per line
	Pattern types.Pattern // sarif format: described in the rule entry
}

// New creates a reporter writing format to w.
func New(w io.Writer, format Format, opts Options) (Reporter, error) {
	switch format {
	case FormatText, "":
		return NewText(w, opts), nil
	case FormatJSON:
		return NewJSON(w), nil
	case FormatSARIF:
		return NewSARIF(w, opts.Pattern), nil
	default:
		return nil, types.Errorf(types.ConfigError, string(format), "unknown output format")
	}
}

// MatchLine formats the per-match line.
func MatchLine(m *types.Match) string {
	return fmt.Sprintf("offset: %14d  0x%-8X   %12s", m.Offset, m.Offset, m.Source)
}

// ProgressLine formats the verbose progress line.
func ProgressLine(offset int64) string {
	return fmt.Sprintf("Passing offset: %14d %12X", offset, offset)
}

// Tee fans events out to several reporters in order.
func Tee(reporters ...Reporter) Reporter {
	return tee(reporters)
}

type tee []Reporter

func (t tee) Match(m *types.Match) error {
	for _, r := range t {
		if err := r.Match(m); err != nil {
			return err
		}
	}
	return nil
}

func (t tee) Progress(source string, offset int64) error {
	for _, r := range t {
		if err := r.Progress(source, offset); err != nil {
			return err
		}
	}
	return nil
}

func (t tee) MaxMatches(source string) error {
	for _, r := range t {
		if err := r.MaxMatches(source); err != nil {
			return err
		}
	}
	return nil
}

func (t tee) Flush() error {
	for _, r := range t {
		if err := r.Flush(); err != nil {
			return err
		}
	}
	return nil
}
