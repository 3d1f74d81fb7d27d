package bson

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/andreyvit/bson/endian"
	"github.com/andreyvit/bson/isodate"
)

const defaultInitialSize = 512

type BuilderOptions struct {
	// InitialSize is the initial buffer capacity in bytes. Zero means 512.
	InitialSize int

	// Logger receives debug diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Builder writes a document front to back into a growable buffer: every
// Append call emits [tag][name NUL][value] directly, and Done writes the EOO
// byte and patches the length prefix.
//
// Nested documents can be embedded by copying a finished Document (AppendDocument,
// AppendArray) or built in place with a nested builder:
//
//	sub := NewSubBuilder(b.SubobjStart("address"))
//	sub.AppendString("city", "Paris")
//	sub.Done()
//	b.AppendInt32("zip", 75001)
//
// The parent must not be used until the nested builder is finished with Done
// or Abandon; doing so panics.
type Builder struct {
	buf    *Buffer
	offset int // start of this document's length prefix within buf
	level  int
	done   bool
	result Document
}

func NewBuilder(opt BuilderOptions) *Builder {
	size := opt.InitialSize
	if size <= 0 {
		size = defaultInitialSize
	}
	buf := newBuffer(size + 4)
	buf.logger = opt.Logger
	if buf.logger == nil {
		buf.logger = slog.Default()
	}
	return newBuilderAt(buf, 0)
}

// NewSubBuilder starts a nested document in a buffer returned by SubobjStart
// or SubarrayStart.
func NewSubBuilder(buf *Buffer) *Builder {
	if buf.level == 0 || buf.claimed {
		invariantf("NewSubBuilder needs a buffer fresh from SubobjStart or SubarrayStart")
	}
	buf.claimed = true
	return newBuilderAt(buf, buf.level)
}

func newBuilderAt(buf *Buffer, level int) *Builder {
	b := &Builder{buf: buf, offset: buf.Len(), level: level}
	buf.grow(4)
	return b
}

func (b *Builder) check() {
	if b.done {
		invariantf("builder used after Done")
	}
	if b.buf.level != b.level {
		invariantf("builder used while a nested builder is active")
	}
}

func (b *Builder) appendHeader(t Type, name string) {
	b.check()
	if strings.IndexByte(name, 0) >= 0 {
		invariantf("field name %q contains NUL", name)
	}
	b.buf.appendByte(byte(t))
	b.buf.appendCString(name)
}

func (b *Builder) AppendBool(name string, v bool) {
	b.appendHeader(Bool, name)
	if v {
		b.buf.appendByte(1)
	} else {
		b.buf.appendByte(0)
	}
}

func (b *Builder) AppendInt32(name string, v int32) {
	b.appendHeader(Int32, name)
	b.buf.appendInt32(v)
}

func (b *Builder) AppendInt64(name string, v int64) {
	b.appendHeader(Int64, name)
	b.buf.appendInt64(v)
}

func (b *Builder) AppendDouble(name string, v float64) {
	b.appendHeader(Double, name)
	b.buf.appendFloat64(v)
}

// AppendIntOrLong stores v as Int32 when it is comfortably within range, and
// as Int64 otherwise.
func (b *Builder) AppendIntOrLong(name string, v int64) {
	const maxInt = math.MaxInt32 / 2
	if -maxInt < v && v < maxInt {
		b.AppendInt32(name, int32(v))
	} else {
		b.AppendInt64(name, v)
	}
}

// AppendNumber stores v using the smallest sensible numeric type: Int32 below
// 2^30, Double below 2^40, Int64 beyond.
func (b *Builder) AppendNumber(name string, v int64) {
	const maxInt = 1 << 30
	const maxDouble = 1 << 40
	switch {
	case -maxInt < v && v < maxInt:
		b.AppendInt32(name, int32(v))
	case -maxDouble < v && v < maxDouble:
		b.AppendDouble(name, float64(v))
	default:
		b.AppendInt64(name, v)
	}
}

// AppendAsNumber parses s as a decimal number and appends it as a Double if
// it has a fractional part, as an Int32 if it is short, and as an Int64
// otherwise. It appends nothing and returns false if s is not a plain
// decimal number.
func (b *Builder) AppendAsNumber(name string, s string) bool {
	if s == "" || s == "-" || s == "." {
		return false
	}
	digits := strings.TrimPrefix(s, "-")
	hasDot := false
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		switch {
		case c >= '0' && c <= '9':
		case c == '.' && !hasDot:
			hasDot = true
		default:
			return false
		}
	}

	if hasDot {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return false
		}
		b.AppendDouble(name, f)
		return true
	}
	if len(s) < 8 {
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return false
		}
		b.AppendInt32(name, int32(n))
		return true
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return false
	}
	b.AppendInt64(name, n)
	return true
}

func (b *Builder) AppendObjectID(name string, oid ObjectID) {
	b.appendHeader(ObjectIDType, name)
	b.buf.appendRaw(oid[:])
}

var tinyDateReported atomic.Bool

// AppendDate appends a Date given in milliseconds since the Unix epoch.
func (b *Builder) AppendDate(name string, millis int64) {
	if millis > 0 && millis <= math.MaxUint32 && tinyDateReported.CompareAndSwap(false, true) {
		pending := b.buf.buf[b.offset:]
		b.buf.logger.LogAttrs(context.Background(), slog.LevelDebug, "AppendDate called with a tiny (but nonzero) date, seconds instead of milliseconds?", slog.String("field", name), slog.Int64("millis", millis), hexAttr("doc", pending[:min(len(pending), 32)]))
	}
	b.appendHeader(Date, name)
	b.buf.appendInt64(millis)
}

// AppendTimeT appends a Date given in seconds since the Unix epoch.
func (b *Builder) AppendTimeT(name string, secs int64) {
	b.appendHeader(Date, name)
	b.buf.appendInt64(secs * 1000)
}

func (b *Builder) AppendTime(name string, t time.Time) {
	b.appendHeader(Date, name)
	b.buf.appendInt64(t.UnixMilli())
}

// AppendDateString parses an ISO-8601 timestamp such as
// "2015-06-01T12:30:45.123Z" and appends it as a Date.
func (b *Builder) AppendDateString(name string, s string) error {
	millis, err := isodate.Parse(s)
	if err != nil {
		return err
	}
	b.appendHeader(Date, name)
	b.buf.appendInt64(millis)
	return nil
}

func (b *Builder) AppendString(name string, v string) {
	b.appendHeader(String, name)
	b.buf.appendString([]byte(v))
}

// AppendStringBytes appends a String with an explicit byte length. v may
// contain NUL bytes.
func (b *Builder) AppendStringBytes(name string, v []byte) {
	b.appendHeader(String, name)
	b.buf.appendString(v)
}

func (b *Builder) AppendSymbol(name string, v string) {
	b.appendHeader(Symbol, name)
	b.buf.appendString([]byte(v))
}

func (b *Builder) AppendCode(name string, code string) {
	b.appendHeader(Code, name)
	b.buf.appendString([]byte(code))
}

func (b *Builder) AppendRegex(name string, pattern, flags string) {
	if strings.IndexByte(pattern, 0) >= 0 || strings.IndexByte(flags, 0) >= 0 {
		invariantf("regex %q/%q contains NUL", pattern, flags)
	}
	b.appendHeader(Regex, name)
	b.buf.appendCString(pattern)
	b.buf.appendCString(flags)
}

func (b *Builder) AppendBinData(name string, subtype BinDataSubtype, data []byte) {
	if len(data) >= maxEmbeddedSize {
		invariantf("binary value of %d bytes is too large", len(data))
	}
	b.appendHeader(BinData, name)
	b.buf.appendInt32(int32(len(data)))
	b.buf.appendByte(byte(subtype))
	b.buf.appendRaw(data)
}

// AppendBinDataArrayDeprecated appends a binary value of the deprecated
// subtype 2, which repeats the payload length inside the payload.
func (b *Builder) AppendBinDataArrayDeprecated(name string, data []byte) {
	if len(data) >= maxEmbeddedSize {
		invariantf("binary value of %d bytes is too large", len(data))
	}
	b.appendHeader(BinData, name)
	b.buf.appendInt32(int32(len(data) + 4))
	b.buf.appendByte(byte(BinDataByteArrayDeprecated))
	b.buf.appendInt32(int32(len(data)))
	b.buf.appendRaw(data)
}

// AppendTimestamp appends a raw timestamp value: seconds in the high 32 bits,
// an increment in the low 32 bits.
func (b *Builder) AppendTimestamp(name string, v uint64) {
	b.appendHeader(Timestamp, name)
	b.buf.appendUint64(v)
}

func (b *Builder) AppendTimestampParts(name string, secs, inc uint32) {
	b.AppendTimestamp(name, uint64(secs)<<32|uint64(inc))
}

func (b *Builder) AppendNull(name string) {
	b.appendHeader(Null, name)
}

func (b *Builder) AppendUndefined(name string) {
	b.appendHeader(Undefined, name)
}

func (b *Builder) AppendMinKey(name string) {
	b.appendHeader(MinKey, name)
}

func (b *Builder) AppendMaxKey(name string) {
	b.appendHeader(MaxKey, name)
}

func (b *Builder) AppendDBRef(name string, ns string, oid ObjectID) {
	b.appendHeader(DBRef, name)
	b.buf.appendString([]byte(ns))
	b.buf.appendRaw(oid[:])
}

// AppendCodeWithScope appends JavaScript code together with the document of
// variables it closes over.
func (b *Builder) AppendCodeWithScope(name string, code string, scope Document) {
	raw := b.buf.detach(scope.Bytes()[:scope.ObjSize()])
	b.appendHeader(CodeWithScope, name)
	b.buf.appendInt32(int32(4 + 4 + len(code) + 1 + len(raw)))
	b.buf.appendString([]byte(code))
	b.buf.appendRaw(raw)
}

// AppendDocument copies a finished document inline as an Object.
func (b *Builder) AppendDocument(name string, doc Document) {
	raw := b.buf.detach(doc.Bytes()[:doc.ObjSize()])
	b.appendHeader(Object, name)
	b.buf.appendRaw(raw)
}

// AppendArray copies a finished document inline as an Array. Its field
// names should be "0", "1", ...
func (b *Builder) AppendArray(name string, doc Document) {
	raw := b.buf.detach(doc.Bytes()[:doc.ObjSize()])
	b.appendHeader(Array, name)
	b.buf.appendRaw(raw)
}

// AppendObject copies an encoded document from raw, whose length prefix is
// trusted only within sane bounds.
func (b *Builder) AppendObject(name string, raw []byte) error {
	if len(raw) < 4 {
		return dataErrf(raw, 0, ErrTruncated, "object header needs 4 bytes")
	}
	size := int(endian.ReadInt32(raw))
	if size <= minEmbeddedSize || size >= maxEmbeddedSize {
		return dataErrf(raw, 0, ErrInvalidSize, "implausible object size %d", size)
	}
	if size > len(raw) {
		return dataErrf(raw, 0, ErrTruncated, "object size %d exceeds buffer size %d", size, len(raw))
	}
	raw = b.buf.detach(raw[:size])
	b.appendHeader(Object, name)
	b.buf.appendRaw(raw)
	return nil
}

// AppendElement copies an element, name included.
func (b *Builder) AppendElement(e Element) {
	if e.IsEOO() {
		invariantf("cannot append an EOO element")
	}
	b.check()
	b.buf.appendRaw(e.Raw())
}

// AppendAs copies an element's value under a different name.
func (b *Builder) AppendAs(e Element, name string) {
	if e.IsEOO() {
		invariantf("cannot append an EOO element")
	}
	b.appendHeader(e.Type(), name)
	b.buf.appendRaw(e.Value())
}

// AppendElements splices all elements of doc into this document.
func (b *Builder) AppendElements(doc Document) {
	b.check()
	if doc.IsEmpty() {
		return
	}
	b.buf.appendRaw(doc.Bytes()[4:doc.elementsEnd()])
}

// AppendElementsUnique copies the elements of doc whose names are not
// already present in this builder.
func (b *Builder) AppendElementsUnique(doc Document) {
	have := make(map[string]struct{})
	it := b.Iterator()
	for it.More() {
		have[it.Next().FieldName()] = struct{}{}
	}
	for e := range doc.All() {
		if _, found := have[string(e.FieldNameBytes())]; !found {
			b.AppendElement(e)
		}
	}
}

// SubobjStart writes the header of a nested Object and returns the buffer to
// hand to NewSubBuilder.
func (b *Builder) SubobjStart(name string) *Buffer {
	return b.subStart(Object, name)
}

// SubarrayStart is like SubobjStart, but for an Array.
func (b *Builder) SubarrayStart(name string) *Buffer {
	return b.subStart(Array, name)
}

func (b *Builder) subStart(t Type, name string) *Buffer {
	tagOff := b.buf.Len()
	b.appendHeader(t, name)
	b.buf.pushNested(tagOff)
	return b.buf
}

// Subobj is shorthand for NewSubBuilder(b.SubobjStart(name)).
func (b *Builder) Subobj(name string) *Builder {
	return NewSubBuilder(b.SubobjStart(name))
}

// HasField reports whether a field with the given name has been appended.
func (b *Builder) HasField(name string) bool {
	it := b.Iterator()
	for it.More() {
		if string(it.Next().FieldNameBytes()) == name {
			return true
		}
	}
	return false
}

// Len returns the number of bytes this document occupies so far.
func (b *Builder) Len() int {
	if b.done {
		return b.result.ObjSize()
	}
	return b.buf.Len() - b.offset
}

// Iterator walks the elements appended so far.
func (b *Builder) Iterator() *Iterator {
	if b.done {
		return b.result.Iterator()
	}
	b.check()
	data := b.buf.buf[b.offset:]
	return newIterator(data, 4, len(data))
}

func (b *Builder) finish() {
	b.buf.appendByte(byte(EOO))
	end := b.buf.Len()
	b.buf.putInt32(b.offset, int32(end-b.offset))
	b.result = Document{b.buf.buf[b.offset:end:end]}
}

// Done finishes the document and returns it. Calling Done again returns the
// same document. For a nested builder, Done hands the buffer back to the
// parent.
func (b *Builder) Done() Document {
	if b.done {
		return b.result
	}
	b.check()
	b.finish()
	b.done = true
	if b.level > 0 {
		b.buf.popNested()
	}
	return b.result
}

// Obj finishes a top-level builder and returns the document, which now owns
// the buffer. The builder must not be used afterwards.
func (b *Builder) Obj() Document {
	if b.level > 0 {
		invariantf("Obj called on a nested builder")
	}
	return b.Done()
}

// AsTempObj returns the document built so far but keeps the builder open.
// The returned document is only valid until the next Append. It may be
// appended back into the same builder, which copies it first.
func (b *Builder) AsTempObj() Document {
	b.check()
	b.finish()
	doc := b.result
	b.buf.truncate(b.buf.Len() - 1)
	b.buf.temp = doc.data
	b.result = Document{}
	return doc
}

// Abandon discards the builder. For a nested builder, the partially written
// element is removed from the parent.
func (b *Builder) Abandon() {
	if b.done {
		return
	}
	if b.buf.level != b.level {
		invariantf("builder abandoned while a nested builder is active")
	}
	b.done = true
	if b.level > 0 {
		b.buf.truncate(b.buf.popNested())
	}
}

var numStrs = func() (s [100]string) {
	for i := range s {
		s[i] = strconv.Itoa(i)
	}
	return
}()

// NumStr formats an array index, without allocating for indices below 100.
func NumStr(i int) string {
	if i >= 0 && i < len(numStrs) {
		return numStrs[i]
	}
	return strconv.Itoa(i)
}
