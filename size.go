package bson

import (
	"bytes"

	"github.com/andreyvit/bson/endian"
)

// sizeTable gives the value size for each tag byte:
//
//	< 0x80   fixed width
//	0x80-FE  int32 length at value start, plus (entry & 0x7F) extra bytes
//	0xFF     no shortcut, use exactValueSize
//
// Regex has no length field, DBRef and CodeWithScope carry trailing data the
// prefix does not describe, and Code/Symbol are rare enough to take the slow
// path. Unknown tags also map to 0xFF and end up in exactValueSize, which
// treats them as a contract violation.
var sizeTable = func() (t [256]byte) {
	for i := range t {
		t[i] = sizeFallback
	}
	t[EOO] = 0
	t[Double] = 8
	t[String] = sizeLengthPrefixed | 4
	t[Object] = sizeLengthPrefixed
	t[Array] = sizeLengthPrefixed
	t[BinData] = sizeLengthPrefixed | 5 // length + subtype byte
	t[Undefined] = 0
	t[ObjectIDType] = objectIDSize
	t[Bool] = 1
	t[Date] = 8
	t[Null] = 0
	t[Int32] = 4
	t[Timestamp] = 8
	t[Int64] = 8
	t[MaxKey] = 0
	t[MinKey] = 0
	return
}()

const (
	sizeLengthPrefixed = 0x80
	sizeFallback       = 0xFF
)

// valueSize returns the length of a value of type t stored at the start of
// value. len(value) is the number of bytes the value may occupy; anything
// claiming more is reported as a *DataError.
func valueSize(t Type, value []byte) (int, error) {
	z := sizeTable[t]
	var n int
	switch {
	case z < sizeLengthPrefixed:
		n = int(z)
	case z == sizeFallback:
		return exactValueSize(t, value)
	default:
		if len(value) < 4 {
			return 0, dataErrf(value, 0, ErrTruncated, "insufficient bytes to calculate %v size", t)
		}
		l := endian.ReadInt32(value)
		if l < 0 {
			return 0, dataErrf(value, 0, ErrInvalidSize, "negative %v length %d", t, l)
		}
		n = int(l) + int(z&0x7F)
	}
	if n > len(value) {
		return 0, dataErrf(value, 0, ErrTruncated, "%v value of %d bytes extends past end of buffer (%d bytes remaining)", t, n, len(value))
	}
	return n, nil
}

// exactValueSize computes the value size with a per-type switch. It is the
// reference the table is checked against, and the only path for types the
// table cannot describe.
func exactValueSize(t Type, value []byte) (int, error) {
	remain := len(value)
	var n int
	switch t {
	case EOO, Undefined, Null, MaxKey, MinKey:
		n = 0
	case Bool:
		n = 1
	case Int32:
		n = 4
	case Timestamp, Date, Double, Int64:
		n = 8
	case ObjectIDType:
		n = objectIDSize
	case String, Code, Symbol:
		l, err := readLength(t, value)
		if err != nil {
			return 0, err
		}
		n = l + 4
	case DBRef:
		l, err := readLength(t, value)
		if err != nil {
			return 0, err
		}
		n = l + 4 + objectIDSize
	case Object, Array, CodeWithScope:
		l, err := readLength(t, value)
		if err != nil {
			return 0, err
		}
		n = l
	case BinData:
		l, err := readLength(t, value)
		if err != nil {
			return 0, err
		}
		n = l + 4 + 1
	case Regex:
		len1 := bytes.IndexByte(value, 0)
		if len1 < 0 {
			return 0, dataErrf(value, 0, ErrTruncated, "unterminated regex pattern")
		}
		len2 := bytes.IndexByte(value[len1+1:], 0)
		if len2 < 0 {
			return 0, dataErrf(value, len1+1, ErrTruncated, "unterminated regex flags")
		}
		n = len1 + 1 + len2 + 1
	default:
		invariantf("bad element type %d", byte(t))
	}
	if n > remain {
		return 0, dataErrf(value, 0, ErrTruncated, "%v value of %d bytes extends past end of buffer (%d bytes remaining)", t, n, remain)
	}
	return n, nil
}

func readLength(t Type, value []byte) (int, error) {
	if len(value) <= 3 {
		return 0, dataErrf(value, 0, ErrTruncated, "insufficient bytes to calculate %v size", t)
	}
	l := endian.ReadInt32(value)
	if l < 0 {
		return 0, dataErrf(value, 0, ErrInvalidSize, "negative %v length %d", t, l)
	}
	return int(l), nil
}
