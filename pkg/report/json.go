package report

import (
	"encoding/hex"
	"encoding/json"
	"io"

	"github.com/praetorian-inc/searchbin/pkg/types"
)

// Event is one JSON line.
type Event struct {
	Type    string        `json:"type"` // match, progress or max_matches
	Source  string        `json:"source"`
	Offset  int64         `json:"offset"`
	Length  int           `json:"length,omitempty"`
	Context *EventContext `json:"context,omitempty"`
}

// EventContext carries the context bytes as hex.
type EventContext struct {
	Start int64  `json:"start"`
	Hex   string `json:"hex"`
}

// JSON writes one JSON object per event.
type JSON struct {
	enc *json.Encoder
}

// NewJSON creates a JSON lines reporter.
func NewJSON(w io.Writer) *JSON {
	return &JSON{enc: json.NewEncoder(w)}
}

// Match encodes a match event.
func (j *JSON) Match(m *types.Match) error {
	ev := Event{Type: "match", Source: m.Source, Offset: m.Offset, Length: m.Length}
	if m.Snippet != nil {
		ev.Context = &EventContext{Start: m.Snippet.Start, Hex: hex.EncodeToString(m.Snippet.Data)}
	}
	return j.enc.Encode(ev)
}

// Progress encodes a progress event.
func (j *JSON) Progress(source string, offset int64) error {
	return j.enc.Encode(Event{Type: "progress", Source: source, Offset: offset})
}

// MaxMatches encodes the match-limit event.
func (j *JSON) MaxMatches(source string) error {
	return j.enc.Encode(Event{Type: "max_matches", Source: source})
}

// Flush is a no-op; every event is written immediately.
func (j *JSON) Flush() error { return nil }
