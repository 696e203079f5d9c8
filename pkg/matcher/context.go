package matcher

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/praetorian-inc/searchbin/pkg/types"
)

// ReadContext reads up to before+after bytes around offset straight from
// the stream, independent of any scan buffer. The stream position is
// restored before returning. Reading before offset 0 is a ReadError;
// callers clamp the window first.
func ReadContext(rs io.ReadSeeker, offset int64, before, after int) (*types.Snippet, error) {
	start := offset - int64(before)
	if start < 0 {
		return nil, types.Errorf(types.ReadError, strconv.FormatInt(start, 10), "cannot read context before start of stream")
	}

	current, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("saving stream position: %w", err)
	}

	if _, err := rs.Seek(start, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking to context: %w", err)
	}

	data := make([]byte, before+after)
	n, err := io.ReadFull(rs, data)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("reading context: %w", err)
	}

	if _, err := rs.Seek(current, io.SeekStart); err != nil {
		return nil, fmt.Errorf("restoring stream position: %w", err)
	}

	return &types.Snippet{Start: start, Data: data[:n]}, nil
}

// ClampContext shortens the before-context so it does not reach past the
// start of the stream.
func ClampContext(offset int64, before int) int {
	if int64(before) > offset {
		return int(offset)
	}
	return before
}
