package cc2svn

import (
	"bytes"
)

// ReverseLineReader walks a byte slice from the end toward the beginning,
// producing one line per call. Cleartool prints history newest-first, so
// reading the file backwards hands events to the replayer oldest-first.
type ReverseLineReader struct {
	buffer []byte
	pos    int
}

// NewReverseLineReader allocates a reader positioned at the end of source.
func NewReverseLineReader(source []byte) *ReverseLineReader {
	return &ReverseLineReader{buffer: source, pos: len(source)}
}

// Next returns the line preceding the current position, without its line
// ending, and false once the beginning of the buffer has been passed.
// Forward-reading the same buffer yields the same lines in reverse order.
func (r *ReverseLineReader) Next() (line string, ok bool) {
	if r.pos <= 0 {
		// Exhausted, or the buffer was empty to begin with.
		return "", false
	}

	end := r.pos
	if end > 0 && r.buffer[end-1] == '\n' {
		end--
	}
	start := bytes.LastIndexByte(r.buffer[:end], '\n') + 1

	if end > start && r.buffer[end-1] == '\r' {
		end--
	}
	line = string(r.buffer[start:end])

	if start == 0 {
		// Just produced the first line of the buffer.
		r.pos = -1
	} else {
		r.pos = start
	}

	return line, true
}

// Reset rewinds the reader to the end of the buffer so the lines can be
// walked again.
func (r *ReverseLineReader) Reset() {
	r.pos = len(r.buffer)
}

// Close releases the reference to the buffer.
func (r *ReverseLineReader) Close() {
	r.buffer = nil
	r.pos = -1
}
