package types

// SourceKind selects the front-end used to compile a pattern.
type SourceKind int

const (
	SourceRaw  SourceKind = iota // binary content of a reference file
	SourceHex                    // hex bytes, "??" per wildcard byte
	SourceText                   // text, "?" per wildcard byte
)

// String returns the name used in diagnostics.
func (k SourceKind) String() string {
	switch k {
	case SourceRaw:
		return "file"
	case SourceHex:
		return "hex"
	case SourceText:
		return "text"
	default:
		return "unknown"
	}
}

// Source is the pattern input chosen on the command line.
// For SourceRaw, Value is the path of the pattern file.
type Source struct {
	Kind  SourceKind
	Value string
}
