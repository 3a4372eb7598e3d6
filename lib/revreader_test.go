package cc2svn

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectReversed(r *ReverseLineReader) []string {
	var lines []string
	for {
		line, ok := r.Next()
		if !ok {
			return lines
		}
		lines = append(lines, line)
	}
}

func TestReverseLineReader(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		reversed []string
	}{
		{"empty", "", nil},
		{"single line", "solo\n", []string{"solo"}},
		{"single line no ending", "solo", []string{"solo"}},
		{"several lines", "one\ntwo\nthree\n", []string{"three", "two", "one"}},
		{"no trailing ending", "one\ntwo\nthree", []string{"three", "two", "one"}},
		{"blank line kept", "a\n\nb\n", []string{"b", "", "a"}},
		{"crlf endings", "a\r\nb\r\n", []string{"b", "a"}},
		{"mixed endings", "a\nb\r\nc\n", []string{"c", "b", "a"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reader := NewReverseLineReader([]byte(tc.input))
			assert.Equal(t, tc.reversed, collectReversed(reader))

			// Exhausted stays exhausted.
			_, ok := reader.Next()
			assert.False(t, ok)
		})
	}
}

func TestReverseLineReaderReset(t *testing.T) {
	reader := NewReverseLineReader([]byte("first\nsecond\n"))

	assert.Equal(t, []string{"second", "first"}, collectReversed(reader))
	reader.Reset()
	assert.Equal(t, []string{"second", "first"}, collectReversed(reader))
}

func TestReverseLineReaderClose(t *testing.T) {
	reader := NewReverseLineReader([]byte("line\n"))
	reader.Close()

	_, ok := reader.Next()
	assert.False(t, ok)
}

func TestOpenHistoryFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "history.txt")
	require.NoError(t, os.WriteFile(filename, []byte("newest\nolder\noldest\n"), 0o666))

	hist, err := OpenHistoryFile(filename)
	require.NoError(t, err)

	assert.Equal(t, []string{"oldest", "older", "newest"}, collectReversed(hist.Lines()))

	// The same reader is handed out; Reset walks the file again.
	hist.Lines().Reset()
	line, ok := hist.Lines().Next()
	assert.True(t, ok)
	assert.Equal(t, "oldest", line)

	require.NoError(t, hist.Close())
}

func TestOpenHistoryFileEmpty(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(filename, nil, 0o666))

	hist, err := OpenHistoryFile(filename)
	require.NoError(t, err)

	_, ok := hist.Lines().Next()
	assert.False(t, ok)
	require.NoError(t, hist.Close())
}

func TestOpenHistoryFileMissing(t *testing.T) {
	_, err := OpenHistoryFile(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}
