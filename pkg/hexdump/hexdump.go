// Package hexdump renders bytes as address, hex and ASCII columns.
package hexdump

import (
	"fmt"
	"strings"
)

// DefaultWidth is the number of bytes per line.
const DefaultWidth = 16

// Dump renders data width bytes per line. base is the absolute address of
// data[0]. Each line ends with a newline; empty data renders nothing.
func Dump(data []byte, width int, base int64) string {
	if width <= 0 {
		width = DefaultWidth
	}

	var sb strings.Builder
	for i := 0; i < len(data); i += width {
		end := i + width
		if end > len(data) {
			end = len(data)
		}
		writeLine(&sb, data[i:end], width, base+int64(i))
	}
	return sb.String()
}

// Line renders a single line of at most width bytes without a trailing newline.
func Line(line []byte, width int, addr int64) string {
	var sb strings.Builder
	writeLine(&sb, line, width, addr)
	return strings.TrimSuffix(sb.String(), "\n")
}

func writeLine(sb *strings.Builder, line []byte, width int, addr int64) {
	hexPart := make([]string, len(line))
	for i, b := range line {
		hexPart[i] = fmt.Sprintf("%02x", b)
	}

	fmt.Fprintf(sb, "%08x  %-*s  %s\n", addr, width*3, strings.Join(hexPart, " "), printable(line))
}

// printable maps bytes outside 0x20-0x7E to '.'.
func printable(line []byte) string {
	out := make([]byte, len(line))
	for i, b := range line {
		if b >= 0x20 && b <= 0x7E {
			out[i] = b
		} else {
			out[i] = '.'
		}
	}
	return string(out)
}
