package bson

import (
	"bytes"
	"cmp"
	"strings"

	"github.com/andreyvit/bson/endian"
)

// CompareElementValues orders the values of two elements that are in the
// same canonical bucket, or are both numbers. It returns -1, 0 or 1.
//
// The order defined here is persisted in index keys; changing it changes the
// meaning of existing indexes.
func CompareElementValues(l, r Element) int {
	if l.Type().isBucketOnly() {
		return sign(l.CanonicalType() - r.CanonicalType())
	}
	switch l.Type() {

	case Bool:
		return sign(int(l.value()[0]) - int(r.value()[0]))

	case Timestamp:
		// unsigned: a timestamp is (seconds, ordinal), not a signed duration
		a, b := endian.ReadUint64(l.value()), endian.ReadUint64(r.value())
		return cmp.Compare(a, b)

	case Date:
		a, b := endian.ReadInt64(l.value()), endian.ReadInt64(r.value())
		return cmp.Compare(a, b)

	case Int64:
		if r.Type() == Int64 {
			return cmp.Compare(endian.ReadInt64(l.value()), endian.ReadInt64(r.value()))
		}
		return compareDoubles(l.Number(), r.Number())

	case Int32:
		if r.Type() == Int32 {
			return cmp.Compare(endian.ReadInt32(l.value()), endian.ReadInt32(r.value()))
		}
		return compareDoubles(l.Number(), r.Number())

	case Double:
		return compareDoubles(l.Number(), r.Number())

	case ObjectIDType:
		return bytes.Compare(l.value()[:objectIDSize], r.value()[:objectIDSize])

	case String, Symbol, Code:
		// byte order, not a collation; embedded NULs are legal
		return bytes.Compare(l.StrBytes(), r.StrBytes())

	case Object, Array:
		return l.Embedded().Compare(r.Embedded(), true)

	case DBRef:
		lv, rv := l.Value(), r.Value()
		if c := cmp.Compare(len(lv), len(rv)); c != 0 {
			return c
		}
		return bytes.Compare(lv, rv)

	case BinData:
		// length first, then subtype byte and payload together
		lv, rv := l.Value(), r.Value()
		if c := cmp.Compare(len(lv), len(rv)); c != 0 {
			return c
		}
		return bytes.Compare(lv[4:], rv[4:])

	case Regex:
		if c := strings.Compare(l.Regex(), r.Regex()); c != 0 {
			return c
		}
		return strings.Compare(l.RegexFlags(), r.RegexFlags())

	case CodeWithScope:
		if c := sign(l.CanonicalType() - r.CanonicalType()); c != 0 {
			return c
		}
		if c := strings.Compare(l.CodeWithScopeCode(), r.CodeWithScopeCode()); c != 0 {
			return c
		}
		return bytes.Compare(l.CodeWithScopeScope().Bytes(), r.CodeWithScopeScope().Bytes())

	default:
		invariantf("cannot compare values of type %v", l.Type())
		return 0
	}
}

// compareDoubles sorts NaN below every other number and treats NaNs as
// equal, which is exactly cmp.Compare's float contract.
func compareDoubles(a, b float64) int {
	return cmp.Compare(a, b)
}

func sign(x int) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	default:
		return 0
	}
}
