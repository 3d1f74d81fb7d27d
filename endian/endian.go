// Package endian converts numbers between host byte order and the
// little-endian order used by the document wire format.
//
// The value converters (Uint32, Int64, Float64, ...) are involutions: the same
// call converts host to wire and wire to host. On little-endian hosts they
// compile down to nothing.
//
// The slice helpers (ReadInt32, PutInt64, AppendFloat64, ...) always read and
// write wire order regardless of the host.
package endian

import (
	"encoding/binary"
	"math"
	"math/bits"
)

func Uint16(v uint16) uint16 {
	if Big {
		return bits.ReverseBytes16(v)
	}
	return v
}

func Uint32(v uint32) uint32 {
	if Big {
		return bits.ReverseBytes32(v)
	}
	return v
}

func Uint64(v uint64) uint64 {
	if Big {
		return bits.ReverseBytes64(v)
	}
	return v
}

func Int16(v int16) int16 {
	return int16(Uint16(uint16(v)))
}

func Int32(v int32) int32 {
	return int32(Uint32(uint32(v)))
}

func Int64(v int64) int64 {
	return int64(Uint64(uint64(v)))
}

// Float64 swaps a double through its 64-bit pattern, so NaN payloads survive.
func Float64(v float64) float64 {
	return math.Float64frombits(Uint64(math.Float64bits(v)))
}

func ReadInt32(b []byte) int32 {
	return int32(binary.LittleEndian.Uint32(b))
}

func ReadUint32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

func ReadInt64(b []byte) int64 {
	return int64(binary.LittleEndian.Uint64(b))
}

func ReadUint64(b []byte) uint64 {
	return binary.LittleEndian.Uint64(b)
}

func ReadFloat64(b []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

func PutInt32(b []byte, v int32) {
	binary.LittleEndian.PutUint32(b, uint32(v))
}

func PutInt64(b []byte, v int64) {
	binary.LittleEndian.PutUint64(b, uint64(v))
}

func PutUint64(b []byte, v uint64) {
	binary.LittleEndian.PutUint64(b, v)
}

func PutFloat64(b []byte, v float64) {
	binary.LittleEndian.PutUint64(b, math.Float64bits(v))
}

func AppendInt32(buf []byte, v int32) []byte {
	return binary.LittleEndian.AppendUint32(buf, uint32(v))
}

func AppendInt64(buf []byte, v int64) []byte {
	return binary.LittleEndian.AppendUint64(buf, uint64(v))
}

func AppendUint64(buf []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(buf, v)
}

func AppendFloat64(buf []byte, v float64) []byte {
	return binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
}
