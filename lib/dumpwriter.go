package cc2svn

import (
	"bufio"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// DumpWriter emits the dump stream. All writes funnel through a buffered
// writer; the first write error latches and turns every later write into
// a no-op, so callers only check Err at record boundaries instead of
// threading an error through every node.
//
// The writer also carries the suppression gate used for since-date runs:
// while disabled, byte production stops but revision numbering continues
// upstream, keeping copyfrom references stable.
type DumpWriter struct {
	out     *bufio.Writer
	trans   *Transcoder
	enabled bool
	err     error
}

func NewDumpWriter(w io.Writer, trans *Transcoder) *DumpWriter {
	return &DumpWriter{
		out:     bufio.NewWriterSize(w, 4*1024),
		trans:   trans,
		enabled: true,
	}
}

func (d *DumpWriter) Enable()  { d.enabled = true }
func (d *DumpWriter) Disable() { d.enabled = false }

func (d *DumpWriter) Disabled() bool { return !d.enabled }

// Err returns the first write error, if any.
func (d *DumpWriter) Err() error { return d.err }

// SetSink flushes and repoints the writer at a different stream. The
// enabled state and any latched error carry over.
func (d *DumpWriter) SetSink(w io.Writer) {
	d.Flush()
	d.out = bufio.NewWriterSize(w, 4*1024)
}

// Flush drains the buffer to the underlying stream.
func (d *DumpWriter) Flush() error {
	if err := d.out.Flush(); err != nil && d.err == nil {
		d.err = err
	}
	return d.err
}

func (d *DumpWriter) write(data []byte) {
	if !d.enabled || d.err != nil {
		return
	}
	if _, err := d.out.Write(data); err != nil {
		d.err = err
	}
}

func (d *DumpWriter) printf(format string, args ...any) {
	if !d.enabled || d.err != nil {
		return
	}
	if _, err := fmt.Fprintf(d.out, format, args...); err != nil {
		d.err = err
	}
}

// nodePath renders a Node-path or copyfrom header value: backslashes
// normalize to slashes, bytes transcode to UTF-8. Transcoding failures
// fall back to the raw bytes.
func (d *DumpWriter) nodePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	utf8, err := d.trans.UTF8(path)
	if err != nil {
		return path
	}
	return utf8
}

// WritePreamble emits the format version and repository UUID lines.
func (d *DumpWriter) WritePreamble(uuid string) {
	d.printf("%s: %d\n\n", VersionStringHeader, DumpFormatVersion)
	d.printf("%s: %s\n\n", UUIDHeader, uuid)
}

// WriteRevision emits a revision header and its property block.
func (d *DumpWriter) WriteRevision(number int, props *Properties) {
	d.printf("%s: %d\n", RevisionNumberHeader, number)
	d.printf("%s: %d\n", PropContentLengthHeader, props.ByteLen())
	d.printf("%s: %d\n\n", ContentLengthHeader, props.ByteLen())
	d.write(props.Encode())
	d.write([]byte("\n\n"))
}

// WriteFile emits a file node whose text is the given content file. The
// content is read twice: once to size and checksum it for the headers,
// once to stream it into the dump, so it is never held in memory whole.
func (d *DumpWriter) WriteFile(action, path string, props *Properties, contentFile string) error {
	if !d.enabled || d.err != nil {
		return d.err
	}

	length, digest, err := checksumFile(contentFile)
	if err != nil {
		return err
	}

	d.printf("%s: %s\n", NodePathHeader, d.nodePath(path))
	d.printf("%s: file\n", NodeKindHeader)
	d.printf("%s: %s\n", NodeActionHeader, action)
	d.printf("%s: %d\n", PropContentLengthHeader, props.ByteLen())
	d.printf("%s: %d\n", TextContentLengthHeader, length)
	d.printf("%s: %s\n", TextContentMd5Header, digest)
	d.printf("%s: %d\n\n", ContentLengthHeader, length+props.ByteLen())
	d.write(props.Encode())

	if err := d.copyContent(contentFile); err != nil {
		return err
	}
	d.write([]byte("\n\n"))

	return d.err
}

// WriteDir emits a directory add.
func (d *DumpWriter) WriteDir(path string) {
	d.printf("%s: %s\n", NodePathHeader, d.nodePath(path))
	d.printf("%s: dir\n", NodeKindHeader)
	d.printf("%s: add\n\n", NodeActionHeader)
}

// WriteCopy emits an add node that copies a path from an earlier
// revision.
func (d *DumpWriter) WriteCopy(kind, fromPath string, fromRev int, toPath string) {
	d.printf("%s: %s\n", NodePathHeader, d.nodePath(toPath))
	d.printf("%s: %s\n", NodeKindHeader, kind)
	d.printf("%s: add\n", NodeActionHeader)
	d.printf("%s: %d\n", NodeCopyfromRevHeader, fromRev)
	d.printf("%s: %s\n\n", NodeCopyfromPathHeader, d.nodePath(fromPath))
}

// WriteDelete emits a delete node.
func (d *DumpWriter) WriteDelete(path string) {
	d.printf("%s: %s\n", NodePathHeader, d.nodePath(path))
	d.printf("%s: delete\n\n", NodeActionHeader)
}

// checksumFile sizes and fingerprints a content file in one pass.
func checksumFile(filename string) (length int, digest string, err error) {
	file, err := os.Open(filename)
	if err != nil {
		return 0, "", err
	}
	defer file.Close()

	md := md5.New()
	buffer := make([]byte, fileReadChunkSize)
	for {
		n, rerr := file.Read(buffer)
		if n > 0 {
			md.Write(buffer[:n])
			length += n
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return 0, "", rerr
		}
	}

	return length, hex.EncodeToString(md.Sum(nil)), nil
}

// copyContent streams the file into the dump in chunks.
func (d *DumpWriter) copyContent(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	buffer := make([]byte, fileReadChunkSize)
	for {
		n, rerr := file.Read(buffer)
		if n > 0 {
			d.write(buffer[:n])
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return rerr
		}
	}
}
