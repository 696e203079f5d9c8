package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/praetorian-inc/searchbin/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchLine(t *testing.T) {
	m := &types.Match{Offset: 2, Source: "sample.bin"}
	assert.Equal(t, "offset:              2  0x2            sample.bin", MatchLine(m))

	m = &types.Match{Offset: 0xDEADBEEF01, Source: "<stdin>"}
	assert.Equal(t, "offset:   956397711105  0xDEADBEEF01        <stdin>", MatchLine(m))
}

func TestProgressLine(t *testing.T) {
	assert.Equal(t, "Passing offset:        8388608       800000", ProgressLine(8388608))
}

func TestText_Match(t *testing.T) {
	var buf bytes.Buffer
	r := NewText(&buf, Options{})

	err := r.Match(&types.Match{
		Offset:  0,
		Source:  "hello.txt",
		Length:  5,
		Snippet: &types.Snippet{Start: 0, Data: []byte("Hello")},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "offset:              0  0x0             hello.txt", lines[0])
	assert.Equal(t, "00000000  48 65 6c 6c 6f"+strings.Repeat(" ", 34)+"  Hello", lines[1])
}

func TestText_MatchWithoutSnippet(t *testing.T) {
	var buf bytes.Buffer
	r := NewText(&buf, Options{})

	require.NoError(t, r.Match(&types.Match{Offset: 16, Source: "x"}))
	assert.Equal(t, MatchLine(&types.Match{Offset: 16, Source: "x"})+"\n", buf.String())
}

func TestText_ProgressAndNotice(t *testing.T) {
	var buf bytes.Buffer
	r := NewText(&buf, Options{})

	require.NoError(t, r.Progress("x", 60))
	require.NoError(t, r.MaxMatches("x"))
	require.NoError(t, r.Flush())

	assert.Equal(t, ProgressLine(60)+"\n"+MaxMatchesNotice+"\n", buf.String())
}

func TestText_Color(t *testing.T) {
	var buf bytes.Buffer
	r := NewText(&buf, Options{Color: true})

	require.NoError(t, r.Match(&types.Match{
		Offset:  0,
		Source:  "x",
		Snippet: &types.Snippet{Data: []byte("Hi")},
	}))

	out := buf.String()
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "48 69")
	assert.Contains(t, out, "Hi")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSON(&buf)

	require.NoError(t, r.Match(&types.Match{
		Offset:  10,
		Source:  "a.bin",
		Length:  2,
		Snippet: &types.Snippet{Start: 8, Data: []byte{0x00, 0xFF}},
	}))
	require.NoError(t, r.Progress("a.bin", 64))
	require.NoError(t, r.MaxMatches("a.bin"))
	require.NoError(t, r.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var ev Event
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &ev))
	assert.Equal(t, "match", ev.Type)
	assert.Equal(t, int64(10), ev.Offset)
	require.NotNil(t, ev.Context)
	assert.Equal(t, "00ff", ev.Context.Hex)
	assert.Equal(t, int64(8), ev.Context.Start)

	require.NoError(t, json.Unmarshal([]byte(lines[1]), &ev))
	assert.Equal(t, "progress", ev.Type)
	assert.Equal(t, int64(64), ev.Offset)

	ev = Event{}
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &ev))
	assert.Equal(t, "max_matches", ev.Type)
}

func TestSARIF(t *testing.T) {
	var buf bytes.Buffer
	r := NewSARIF(&buf, types.NewPattern([]byte("MZ")))

	require.NoError(t, r.Match(&types.Match{Offset: 0, Source: "a.exe", Length: 2}))
	require.NoError(t, r.Progress("a.exe", 10))
	assert.Empty(t, buf.String(), "SARIF is written on flush")

	require.NoError(t, r.Flush())

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "2.1.0", decoded["version"])
}

func TestNew(t *testing.T) {
	for _, f := range []Format{FormatText, FormatJSON, FormatSARIF, ""} {
		r, err := New(&bytes.Buffer{}, f, Options{})
		require.NoError(t, err, "format %q", f)
		assert.NotNil(t, r)
	}

	_, err := New(&bytes.Buffer{}, "xml", Options{})
	var e *types.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, types.ConfigError, e.Kind)
	assert.Equal(t, "xml", e.Value)
}

func TestTee(t *testing.T) {
	var a, b bytes.Buffer
	r := Tee(NewText(&a, Options{}), NewJSON(&b))

	require.NoError(t, r.Match(&types.Match{Offset: 1, Source: "s"}))
	require.NoError(t, r.Progress("s", 2))
	require.NoError(t, r.MaxMatches("s"))
	require.NoError(t, r.Flush())

	assert.Equal(t, 3, strings.Count(a.String(), "\n"))
	assert.Equal(t, 3, strings.Count(b.String(), "\n"))
}
