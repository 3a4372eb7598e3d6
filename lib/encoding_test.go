package cc2svn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscoderPassThrough(t *testing.T) {
	trans, err := NewTranscoder("")
	require.NoError(t, err)

	out, err := trans.UTF8("déjà vu\x00\xff")
	require.NoError(t, err)
	assert.Equal(t, "déjà vu\x00\xff", out)
}

func TestTranscoderLatin1(t *testing.T) {
	trans, err := NewTranscoder("ISO-8859-1")
	require.NoError(t, err)

	out, err := trans.UTF8("\xe9t\xe9")
	require.NoError(t, err)
	assert.Equal(t, "été", out)
}

func TestTranscoderWindows1252(t *testing.T) {
	trans, err := NewTranscoder("windows-1252")
	require.NoError(t, err)

	out, err := trans.UTF8("caf\xe9 \x97 bar")
	require.NoError(t, err)
	assert.Equal(t, "café — bar", out)
}

func TestTranscoderUnknownName(t *testing.T) {
	_, err := NewTranscoder("no-such-charset")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownEncoding)
	assert.Contains(t, err.Error(), "no-such-charset")
}
