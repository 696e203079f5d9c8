package types

// Match is a single pattern occurrence in a stream.
type Match struct {
	Offset  int64    `json:"offset"` // absolute offset of the first matched byte
	Source  string   `json:"source"` // stream name, "<stdin>" for standard input
	Length  int      `json:"length"` // pattern length in bytes
	Snippet *Snippet `json:"snippet,omitempty"`
}

// End returns the offset one past the last matched byte.
func (m *Match) End() int64 {
	return m.Offset + int64(m.Length)
}
