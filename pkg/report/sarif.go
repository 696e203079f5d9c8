package report

import (
	"fmt"
	"io"

	"github.com/praetorian-inc/searchbin/pkg/sarif"
	"github.com/praetorian-inc/searchbin/pkg/types"
)

// SARIF collects matches and writes a single SARIF log on Flush.
type SARIF struct {
	w      io.Writer
	report *sarif.Report
}

// NewSARIF creates a SARIF reporter for pattern.
func NewSARIF(w io.Writer, p types.Pattern) *SARIF {
	r := sarif.NewReport()
	r.AddRule(p)
	return &SARIF{w: w, report: r}
}

// Match adds a result.
func (s *SARIF) Match(m *types.Match) error {
	s.report.AddResult(m)
	return nil
}

// Progress is not represented in SARIF.
func (s *SARIF) Progress(source string, offset int64) error { return nil }

// MaxMatches records the limit as a run notification.
func (s *SARIF) MaxMatches(source string) error {
	s.report.AddNotification(MaxMatchesNotice + " (" + source + ")")
	return nil
}

// Flush writes the report.
func (s *SARIF) Flush() error {
	data, err := s.report.ToJSON()
	if err != nil {
		return fmt.Errorf("serializing SARIF: %w", err)
	}
	if _, err := s.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing SARIF output: %w", err)
	}
	return nil
}
