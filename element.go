package bson

import (
	"bytes"
	"math"
	"time"

	"github.com/andreyvit/bson/endian"
)

// Element is a read-only view of one [type][name NUL][value] triple inside a
// document buffer. It never copies; the underlying bytes must not change while
// the view is in use. The zero Element is the EOO sentinel returned by failed
// lookups.
type Element struct {
	data    []byte // from the tag byte to the end of the enclosing element list
	nameLen int
	size    int // total encoded size, 0 until computed
}

var eooElement = Element{data: []byte{0}, size: 1}

func newElement(data []byte) (Element, error) {
	if len(data) == 0 || data[0] == byte(EOO) {
		return eooElement, nil
	}
	n := bytes.IndexByte(data[1:], 0)
	if n < 0 {
		return Element{}, dataErrf(data, 1, ErrTruncated, "unterminated field name")
	}
	return Element{data, n, 0}, nil
}

func mustElement(data []byte) Element {
	return must(newElement(data))
}

func (e Element) Type() Type {
	if len(e.data) == 0 {
		return EOO
	}
	return Type(e.data[0])
}

func (e Element) IsEOO() bool {
	return e.Type() == EOO
}

func (e Element) IsNumber() bool {
	return e.Type().IsNumber()
}

func (e Element) CanonicalType() int {
	return e.Type().CanonicalType()
}

func (e Element) FieldName() string {
	if e.IsEOO() {
		return ""
	}
	return string(e.data[1 : 1+e.nameLen])
}

// FieldNameBytes returns the field name without copying.
func (e Element) FieldNameBytes() []byte {
	if e.IsEOO() {
		return nil
	}
	return e.data[1 : 1+e.nameLen]
}

func (e Element) valueOff() int {
	if e.IsEOO() {
		return 1
	}
	return 1 + e.nameLen + 1
}

// value returns the bytes from the value start to the end of the view, which
// is enough for fixed-width accessors and avoids a size computation.
func (e Element) value() []byte {
	return e.data[e.valueOff():]
}

// Size returns the total encoded size of the element including tag and
// name. Malformed lengths panic with a *DataError. Elements returned by
// Field and the iterators carry their size already.
func (e Element) Size() int {
	if e.size > 0 {
		return e.size
	}
	return must(e.checkedSize())
}

func (e *Element) ensureSize() int {
	if e.size == 0 {
		e.size = must(e.checkedSize())
	}
	return e.size
}

func (e Element) checkedSize() (int, error) {
	if e.size > 0 {
		return e.size, nil
	}
	if e.IsEOO() {
		return 1, nil
	}
	off := e.valueOff()
	n, err := valueSize(e.Type(), e.data[off:])
	if err != nil {
		return 0, err
	}
	return off + n, nil
}

// exactSize recomputes the size with the per-type switch only.
func (e Element) exactSize() (int, error) {
	if e.IsEOO() {
		return 1, nil
	}
	off := e.valueOff()
	n, err := exactValueSize(e.Type(), e.data[off:])
	if err != nil {
		return 0, err
	}
	return off + n, nil
}

func (e Element) ValueSize() int {
	return e.Size() - e.valueOff()
}

// Value returns the encoded value bytes.
func (e Element) Value() []byte {
	return e.data[e.valueOff():e.Size()]
}

// Raw returns the whole encoded element.
func (e Element) Raw() []byte {
	return e.data[:e.Size()]
}

func (e Element) expect(types ...Type) {
	t := e.Type()
	for _, tt := range types {
		if t == tt {
			return
		}
	}
	invariantf("%q is %v, wanted %v", e.FieldName(), t, types)
}

func (e Element) Bool() bool {
	e.expect(Bool)
	return e.value()[0] != 0
}

func (e Element) Int32() int32 {
	e.expect(Int32)
	return endian.ReadInt32(e.value())
}

func (e Element) Int64() int64 {
	e.expect(Int64)
	return endian.ReadInt64(e.value())
}

func (e Element) Double() float64 {
	e.expect(Double)
	return endian.ReadFloat64(e.value())
}

// Number returns any numeric value converted to float64, and 0 for
// non-numeric elements.
func (e Element) Number() float64 {
	switch e.Type() {
	case Double:
		return endian.ReadFloat64(e.value())
	case Int32:
		return float64(endian.ReadInt32(e.value()))
	case Int64:
		return float64(endian.ReadInt64(e.value()))
	default:
		return 0
	}
}

// NumberLong returns any numeric value converted to int64. Doubles are
// truncated and clamped; NaN becomes 0.
func (e Element) NumberLong() int64 {
	switch e.Type() {
	case Double:
		f := endian.ReadFloat64(e.value())
		switch {
		case math.IsNaN(f):
			return 0
		case f >= math.MaxInt64:
			return math.MaxInt64
		case f <= math.MinInt64:
			return math.MinInt64
		default:
			return int64(f)
		}
	case Int32:
		return int64(endian.ReadInt32(e.value()))
	case Int64:
		return endian.ReadInt64(e.value())
	default:
		return 0
	}
}

// Date returns milliseconds since the Unix epoch.
func (e Element) Date() int64 {
	e.expect(Date)
	return endian.ReadInt64(e.value())
}

func (e Element) Time() time.Time {
	return time.UnixMilli(e.Date()).UTC()
}

// Timestamp returns the raw unsigned 64-bit timestamp: seconds in the high
// half, an increment in the low half.
func (e Element) Timestamp() uint64 {
	e.expect(Timestamp)
	return endian.ReadUint64(e.value())
}

// TimestampTime returns the seconds part of a timestamp, in milliseconds.
func (e Element) TimestampTime() int64 {
	return int64(e.Timestamp()>>32) * 1000
}

func (e Element) TimestampInc() uint32 {
	return uint32(e.Timestamp())
}

func (e Element) ObjectID() ObjectID {
	e.expect(ObjectIDType)
	var oid ObjectID
	copy(oid[:], e.value()[:objectIDSize])
	return oid
}

// strSize returns the declared length of a length-prefixed string value,
// terminating NUL included.
func (e Element) strSize() int {
	return int(endian.ReadInt32(e.value()))
}

// StrBytes returns the bytes of a String, Code or Symbol value without the
// terminating NUL. Embedded NULs are preserved.
func (e Element) StrBytes() []byte {
	e.expect(String, Code, Symbol)
	v := e.Value()
	return v[4 : len(v)-1]
}

func (e Element) Str() string {
	return string(e.StrBytes())
}

func (e Element) Regex() string {
	e.expect(Regex)
	v := e.Value()
	return string(v[:bytes.IndexByte(v, 0)])
}

func (e Element) RegexFlags() string {
	e.expect(Regex)
	v := e.Value()
	v = v[bytes.IndexByte(v, 0)+1:]
	return string(v[:len(v)-1])
}

// BinData returns the subtype and payload of a binary value.
func (e Element) BinData() (BinDataSubtype, []byte) {
	e.expect(BinData)
	v := e.Value()
	return BinDataSubtype(v[4]), v[5:]
}

// BinDataClean is like BinData, but strips the redundant inner length of the
// deprecated byte array subtype.
func (e Element) BinDataClean() (BinDataSubtype, []byte) {
	subtype, data := e.BinData()
	if subtype == BinDataByteArrayDeprecated && len(data) >= 4 {
		data = data[4:]
	}
	return subtype, data
}

// DBRef returns the namespace and ObjectID of a DBRef value.
func (e Element) DBRef() (string, ObjectID) {
	e.expect(DBRef)
	v := e.Value()
	n := len(v) - objectIDSize
	var oid ObjectID
	copy(oid[:], v[n:])
	return string(v[4 : n-1]), oid
}

func (e Element) CodeWithScopeCode() string {
	e.expect(CodeWithScope)
	v := e.Value()
	strSize := int(endian.ReadInt32(v[4:]))
	return string(v[8 : 8+strSize-1])
}

func (e Element) CodeWithScopeScope() Document {
	e.expect(CodeWithScope)
	v := e.Value()
	strSize := int(endian.ReadInt32(v[4:]))
	return Document{v[8+strSize:]}
}

// Embedded returns the nested document of an Object or Array element.
func (e Element) Embedded() Document {
	e.expect(Object, Array)
	return Document{e.Value()}
}

// EmbeddedCheck is like Embedded, but reports the wrong type as an error.
func (e Element) EmbeddedCheck() (Document, error) {
	if !e.Type().IsEmbedded() {
		return Document{}, dataErrf(e.data[:min(len(e.data), e.valueOff())], 0, nil, "invalid parameter: expected an object (%s)", e.FieldName())
	}
	n, err := e.checkedSize()
	if err != nil {
		return Document{}, err
	}
	return Document{e.data[e.valueOff():n]}, nil
}

// Wrap copies the element into a new singleton document.
func (e Element) Wrap() Document {
	b := NewBuilder(BuilderOptions{InitialSize: e.Size() + 6})
	b.AppendElement(e)
	return b.Obj()
}

// WrapAs copies the element into a new singleton document under a new name.
func (e Element) WrapAs(name string) Document {
	b := NewBuilder(BuilderOptions{InitialSize: e.Size() + 6 + len(name)})
	b.AppendAs(e, name)
	return b.Obj()
}

// Compare orders two elements: by canonical type first (numbers of different
// types are comparable), then optionally by field name, then by value.
func (e Element) Compare(other Element, considerFieldName bool) int {
	lt, rt := e.CanonicalType(), other.CanonicalType()
	if lt != rt && (!e.IsNumber() || !other.IsNumber()) {
		return sign(lt - rt)
	}
	if considerFieldName {
		if c := bytes.Compare(e.FieldNameBytes(), other.FieldNameBytes()); c != 0 {
			return c
		}
	}
	return CompareElementValues(e, other)
}

// Equal reports whether the elements have the same name and compare equal.
func (e Element) Equal(other Element) bool {
	return e.Compare(other, true) == 0
}
