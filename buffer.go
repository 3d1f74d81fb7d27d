package bson

import (
	"bytes"
	"log/slog"

	"github.com/andreyvit/bson/endian"
)

func ensureCapacity(buf []byte, minCap int) []byte {
	c := cap(buf)
	if minCap > c {
		if c < 16 {
			c = 16
		}
		for minCap > c {
			c <<= 1
		}
		old := buf
		buf = make([]byte, len(old), c)
		copy(buf, old)
	}
	return buf
}

func grow(buf []byte, n int) (int, []byte) {
	off := len(buf)
	newLen := off + n
	buf = ensureCapacity(buf, newLen)
	return off, buf[:newLen]
}

// Buffer is the growable byte buffer behind a Builder. Nested builders write
// into their parent's Buffer; the Buffer tracks which nesting level currently
// owns it so that a parent touched too early fails loudly instead of
// interleaving bytes.
type Buffer struct {
	buf     []byte
	level   int
	starts  []int // offsets of the tag bytes of open nested elements
	claimed bool  // the innermost open element has a builder
	logger  *slog.Logger
	temp    []byte // last view handed out by AsTempObj
}

func newBuffer(initialSize int) *Buffer {
	return &Buffer{buf: make([]byte, 0, initialSize)}
}

// Len returns the number of bytes written so far.
func (b *Buffer) Len() int {
	return len(b.buf)
}

func (b *Buffer) grow(n int) (off int) {
	off, b.buf = grow(b.buf, n)
	return
}

func (b *Buffer) truncate(n int) {
	b.buf = b.buf[:n]
}

func (b *Buffer) appendByte(v byte) {
	off := b.grow(1)
	b.buf[off] = v
}

func (b *Buffer) appendRaw(v []byte) {
	off := b.grow(len(v))
	copy(b.buf[off:], v)
}

// detach copies raw if it ends on the terminator of the AsTempObj view,
// which the next append overwrites.
func (b *Buffer) detach(raw []byte) []byte {
	if n, t := len(raw), len(b.temp); n > 0 && t > 0 && &raw[n-1] == &b.temp[t-1] {
		return bytes.Clone(raw)
	}
	return raw
}

func (b *Buffer) appendCString(s string) {
	off := b.grow(len(s) + 1)
	copy(b.buf[off:], s)
	b.buf[off+len(s)] = 0
}

func (b *Buffer) appendInt32(v int32) {
	off := b.grow(4)
	endian.PutInt32(b.buf[off:], v)
}

func (b *Buffer) appendInt64(v int64) {
	off := b.grow(8)
	endian.PutInt64(b.buf[off:], v)
}

func (b *Buffer) appendUint64(v uint64) {
	off := b.grow(8)
	endian.PutUint64(b.buf[off:], v)
}

func (b *Buffer) appendFloat64(v float64) {
	off := b.grow(8)
	endian.PutFloat64(b.buf[off:], v)
}

// appendString writes a length-prefixed, NUL-terminated string.
func (b *Buffer) appendString(s []byte) {
	off := b.grow(4 + len(s) + 1)
	endian.PutInt32(b.buf[off:], int32(len(s)+1))
	copy(b.buf[off+4:], s)
	b.buf[off+4+len(s)] = 0
}

func (b *Buffer) putInt32(off int, v int32) {
	endian.PutInt32(b.buf[off:], v)
}

// pushNested marks the element starting at tagOff as an open nested builder
// and hands the buffer over to the next level.
func (b *Buffer) pushNested(tagOff int) {
	b.starts = append(b.starts, tagOff)
	b.level++
	b.claimed = false
}

func (b *Buffer) popNested() (tagOff int) {
	n := len(b.starts) - 1
	tagOff = b.starts[n]
	b.starts = b.starts[:n]
	b.level--
	return
}
