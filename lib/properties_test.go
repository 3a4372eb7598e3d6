package cc2svn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertiesEmpty(t *testing.T) {
	props := NewProperties()

	assert.Equal(t, 0, props.Len())
	assert.Equal(t, len("PROPS-END\n"), props.ByteLen())
	assert.Equal(t, "PROPS-END\n", string(props.Encode()))
}

func TestPropertiesEncoding(t *testing.T) {
	props := NewProperties()
	props.Set("svn:log", "hello")

	expected := "K 7\nsvn:log\nV 5\nhello\nPROPS-END\n"
	assert.Equal(t, expected, string(props.Encode()))
	assert.Equal(t, len(expected), props.ByteLen())
}

func TestPropertiesLengthTracksOverwrites(t *testing.T) {
	props := NewProperties()

	props.Set("svn:log", "short")
	assert.Equal(t, len(props.Encode()), props.ByteLen())

	props.Set("svn:log", "a considerably longer message")
	assert.Equal(t, len(props.Encode()), props.ByteLen())

	props.Set("svn:log", "")
	assert.Equal(t, len(props.Encode()), props.ByteLen())
	assert.Equal(t, 1, props.Len())
}

func TestPropertiesEmptyValue(t *testing.T) {
	props := NewProperties()
	props.Set("svn:log", "")

	assert.Equal(t, "K 7\nsvn:log\nV 0\n\nPROPS-END\n", string(props.Encode()))
}

func TestPropertiesInsertionOrder(t *testing.T) {
	props := NewProperties()
	props.Set("b", "2")
	props.Set("a", "1")
	props.Set("b", "3")

	// Overwriting keeps the original slot.
	assert.Equal(t, "K 1\nb\nV 1\n3\nK 1\na\nV 1\n1\nPROPS-END\n", string(props.Encode()))
}

func TestPropertiesGet(t *testing.T) {
	props := NewProperties()
	props.Set("svn:mime-type", "text/plain")

	value, ok := props.Get("svn:mime-type")
	assert.True(t, ok)
	assert.Equal(t, "text/plain", value)

	_, ok = props.Get("svn:eol-style")
	assert.False(t, ok)
}

func TestPropertiesCopyIsIndependent(t *testing.T) {
	original := NewProperties()
	original.Set("svn:log", "msg")

	clone := original.Copy()
	clone.Set("svn:special", "*")

	assert.Equal(t, 1, original.Len())
	assert.Equal(t, 2, clone.Len())
	assert.Equal(t, len(original.Encode()), original.ByteLen())
	assert.Equal(t, len(clone.Encode()), clone.ByteLen())
}

func TestPropertiesReset(t *testing.T) {
	props := NewProperties()
	props.Set("svn:log", "msg")
	props.Reset()

	assert.Equal(t, 0, props.Len())
	assert.Equal(t, "PROPS-END\n", string(props.Encode()))
}

func TestRevisionPropsApply(t *testing.T) {
	trans, err := NewTranscoder("")
	require.NoError(t, err)

	rp := NewRevisionProps()
	rec := &ChangeRecord{
		Time:     time.Date(2009, 7, 29, 16, 24, 24, 0, time.UTC),
		Revision: "/main/7",
		Author:   "alice",
		Comment:  "Fixed the timer",
	}
	rp.Apply(trans, rec)

	expected := "K 7\nsvn:log\nV 15\nFixed the timer\n" +
		"K 10\nsvn:author\nV 5\nalice\n" +
		"K 8\nsvn:date\nV 27\n2009-07-29T16:24:24.000000Z\n" +
		"K 17\nClearcaseRevision\nV 7\n/main/7\n" +
		"PROPS-END\n"
	assert.Equal(t, expected, string(rp.Block().Encode()))
}

// The block is reused between revisions: a second Apply overwrites the
// same four keys instead of growing it.
func TestRevisionPropsReuse(t *testing.T) {
	trans, err := NewTranscoder("")
	require.NoError(t, err)

	rp := NewRevisionProps()
	rp.Apply(trans, &ChangeRecord{Time: time.Now(), Revision: "/main/1", Author: "a", Comment: "one"})
	rp.Apply(trans, &ChangeRecord{Time: time.Now(), Revision: "/main/2", Author: "b", Comment: "two"})

	assert.Equal(t, 4, rp.Block().Len())
	log, _ := rp.Block().Get("svn:log")
	assert.Equal(t, "two", log)
	ccrev, _ := rp.Block().Get("ClearcaseRevision")
	assert.Equal(t, "/main/2", ccrev)
}
