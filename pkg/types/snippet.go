package types

// Snippet holds the bytes read around a match for display.
type Snippet struct {
	Start int64  `json:"start"` // absolute offset of Data[0]
	Data  []byte `json:"data"`
}

// End returns the offset one past the last byte of Data.
func (s *Snippet) End() int64 {
	return s.Start + int64(len(s.Data))
}
