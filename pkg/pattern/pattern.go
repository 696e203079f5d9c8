// Package pattern compiles the three pattern front-ends (raw file content,
// hex text and wildcard text) into a types.Pattern.
package pattern

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/praetorian-inc/searchbin/pkg/types"
)

// hexNoise is stripped from hex patterns before decoding.
var hexNoise = strings.NewReplacer(" ", "", "\t", "", "0x", "", "0X", "")

// Compile builds a pattern from the source selected on the command line.
func Compile(src types.Source) (types.Pattern, error) {
	var (
		p   types.Pattern
		err error
	)

	switch src.Kind {
	case types.SourceRaw:
		data, lerr := LoadFile(src.Value)
		if lerr != nil {
			return types.Pattern{}, lerr
		}
		p = FromRaw(data)
	case types.SourceHex:
		p, err = FromHex(src.Value)
	case types.SourceText:
		p = FromText(src.Value)
	default:
		return types.Pattern{}, types.Errorf(types.ConfigError, "", "no pattern to search for was supplied")
	}
	if err != nil {
		return types.Pattern{}, err
	}

	if p.Len() == 0 {
		return types.Pattern{}, types.Errorf(types.ConfigError, src.Value, "the pattern string is invalid (empty)")
	}
	return p, nil
}

// FromRaw returns a wildcard-free pattern matching data exactly.
func FromRaw(data []byte) types.Pattern {
	return types.NewPattern(data)
}

// FromHex parses hex text such as "CCDD??FF" or "0x41 0x42".
// Every "??" is one wildcard byte.
func FromHex(text string) (types.Pattern, error) {
	cleaned := hexNoise.Replace(text)
	parts := strings.Split(cleaned, "??")

	segments := make([][]byte, 0, len(parts))
	for _, part := range parts {
		seg, err := hex.DecodeString(part)
		if err != nil {
			return types.Pattern{}, types.Wrap(types.ConfigError, text, err, "the pattern string is invalid")
		}
		segments = append(segments, seg)
	}
	return types.NewPattern(segments...), nil
}

// FromText splits text on '?', one wildcard byte per '?'.
func FromText(text string) types.Pattern {
	parts := strings.Split(text, "?")
	segments := make([][]byte, len(parts))
	for i, part := range parts {
		segments[i] = []byte(part)
	}
	return types.NewPattern(segments...)
}

// LoadFile reads a pattern file used with FromRaw.
func LoadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.Wrap(types.PatternFileError, path, err, "no pattern file found named")
	}
	return data, nil
}

// Describe returns a short human form of the source for logs.
func Describe(src types.Source) string {
	return fmt.Sprintf("%s:%q", src.Kind, src.Value)
}
