package cc2svn

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// propsEndLen is the serialized size of the terminator line.
const propsEndLen = len(PropsEnd + Newline)

// Properties is an insertion-ordered property block for revisions and file
// nodes. The serialized byte length is maintained incrementally as keys
// are set, so emitting a Prop-content-length header never needs a render
// pass over the block first.
type Properties struct {
	table *linkedhashmap.Map
	total int
}

// NewProperties returns an empty property block whose serialized form is
// just the PROPS-END terminator.
func NewProperties() *Properties {
	return &Properties{table: linkedhashmap.New(), total: propsEndLen}
}

// pairLength returns the serialized size of one pair:
//
//	K 3<LF>
//	key<LF>
//	V 5<LF>
//	value<LF>
func pairLength(key, value string) int {
	klen := 2 + len(strconv.Itoa(len(key))) + 1 + len(key) + 1
	vlen := 2 + len(strconv.Itoa(len(value))) + 1 + len(value) + 1
	return klen + vlen
}

// Set stores or overwrites a property, adjusting the running length.
// Values must already be UTF-8; lengths are byte counts.
func (p *Properties) Set(key, value string) {
	if prev, ok := p.table.Get(key); ok {
		p.total -= pairLength(key, prev.(string))
	}
	p.table.Put(key, value)
	p.total += pairLength(key, value)
}

func (p *Properties) Get(key string) (string, bool) {
	value, ok := p.table.Get(key)
	if !ok {
		return "", false
	}
	return value.(string), true
}

func (p *Properties) Len() int {
	return p.table.Size()
}

// ByteLen returns the serialized size of the block including PROPS-END.
func (p *Properties) ByteLen() int {
	return p.total
}

func (p *Properties) Reset() {
	p.table.Clear()
	p.total = propsEndLen
}

// Copy returns an independent block holding the same pairs in the same
// order.
func (p *Properties) Copy() *Properties {
	clone := NewProperties()
	p.table.Each(func(key, value interface{}) {
		clone.Set(key.(string), value.(string))
	})
	return clone
}

// Encode renders the block. Panics if the rendered size disagrees with the
// running length: every Content-length header upstream of this call has
// already promised exactly that many bytes, so drift here means the dump
// is already unloadable.
func (p *Properties) Encode() []byte {
	buffer := bytes.NewBuffer(make([]byte, 0, p.total))
	p.table.Each(func(key, value interface{}) {
		fmt.Fprintf(buffer, "K %d\n%s\n", len(key.(string)), key)
		fmt.Fprintf(buffer, "V %d\n%s\n", len(value.(string)), value)
	})
	buffer.WriteString(PropsEnd + Newline)

	if buffer.Len() != p.total {
		panic(fmt.Sprintf("property block length drifted: rendered %d bytes, promised %d", buffer.Len(), p.total))
	}

	return buffer.Bytes()
}
