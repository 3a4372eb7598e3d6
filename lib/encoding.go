package cc2svn

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// Transcoder converts text from the configured vob encoding to UTF-8.
// Subversion requires UTF-8 in properties and node paths, while cleartool
// hands back whatever bytes the users typed.
type Transcoder struct {
	name    string
	decoder *encoding.Decoder
}

// NewTranscoder looks the encoding up by its IANA name. An empty name
// yields a pass-through transcoder.
func NewTranscoder(name string) (*Transcoder, error) {
	t := &Transcoder{name: name}
	if name == "" {
		return t, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEncoding, name)
	}
	t.decoder = enc.NewDecoder()

	return t, nil
}

// UTF8 converts text to UTF-8, returning the input unchanged for a
// pass-through transcoder.
func (t *Transcoder) UTF8(text string) (string, error) {
	if t.decoder == nil {
		return text, nil
	}
	out, err := t.decoder.Bytes([]byte(text))
	if err != nil {
		return "", fmt.Errorf("transcoding from %s: %w", t.name, err)
	}
	return string(out), nil
}
