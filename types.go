package bson

import (
	"encoding/hex"
	"fmt"
	"strconv"
)

// Type is the tag byte that starts every element.
type Type byte

const (
	EOO           Type = 0x00
	Double        Type = 0x01
	String        Type = 0x02
	Object        Type = 0x03
	Array         Type = 0x04
	BinData       Type = 0x05
	Undefined     Type = 0x06
	ObjectIDType  Type = 0x07
	Bool          Type = 0x08
	Date          Type = 0x09
	Null          Type = 0x0A
	Regex         Type = 0x0B
	DBRef         Type = 0x0C
	Code          Type = 0x0D
	Symbol        Type = 0x0E
	CodeWithScope Type = 0x0F
	Int32         Type = 0x10
	Timestamp     Type = 0x11
	Int64         Type = 0x12
	MaxKey        Type = 0x7F
	MinKey        Type = 0xFF
)

const (
	// MaxUserSize is the largest document a client is expected to produce.
	MaxUserSize = 16 * 1024 * 1024

	// MaxInternalSize leaves room for the bookkeeping fields the server
	// appends to user documents.
	MaxInternalSize = MaxUserSize + 16*1024

	// MaxToStringDepth bounds rendering recursion.
	MaxToStringDepth = 100

	minDocSize = 5

	// sanity bounds for raw sub-objects handed to the builder
	minEmbeddedSize = 4
	maxEmbeddedSize = 100_000_000

	maxArrayBackfill = 1_500_000

	objectIDSize = 12
)

var typeNames = [...]string{
	EOO:           "EOO",
	Double:        "Double",
	String:        "String",
	Object:        "Object",
	Array:         "Array",
	BinData:       "BinData",
	Undefined:     "Undefined",
	ObjectIDType:  "ObjectID",
	Bool:          "Bool",
	Date:          "Date",
	Null:          "Null",
	Regex:         "Regex",
	DBRef:         "DBRef",
	Code:          "Code",
	Symbol:        "Symbol",
	CodeWithScope: "CodeWithScope",
	Int32:         "Int32",
	Timestamp:     "Timestamp",
	Int64:         "Int64",
}

func (t Type) String() string {
	switch {
	case t == MinKey:
		return "MinKey"
	case t == MaxKey:
		return "MaxKey"
	case int(t) < len(typeNames):
		return typeNames[t]
	default:
		return "Type(" + strconv.Itoa(int(t)) + ")"
	}
}

// IsKnown reports whether t is one of the tags defined by the format.
func (t Type) IsKnown() bool {
	return t <= Int64 || t == MinKey || t == MaxKey
}

func (t Type) IsNumber() bool {
	return t == Double || t == Int32 || t == Int64
}

// isBucketOnly reports whether values of this type order by canonical bucket
// alone.
func (t Type) isBucketOnly() bool {
	switch t {
	case EOO, Undefined, Null, MinKey, MaxKey:
		return true
	default:
		return false
	}
}

// IsEmbedded reports whether values of this type are nested documents.
func (t Type) IsEmbedded() bool {
	return t == Object || t == Array
}

// CanonicalType returns the ordering bucket for t. Values in different
// buckets order by bucket alone; all numeric types share one bucket.
// Unknown tags map to -2.
func (t Type) CanonicalType() int {
	switch t {
	case MinKey:
		return -1
	case EOO, Undefined:
		return 0
	case Null:
		return 5
	case Double, Int32, Int64:
		return 10
	case String, Symbol:
		return 15
	case Object:
		return 20
	case Array:
		return 25
	case BinData:
		return 30
	case ObjectIDType:
		return 35
	case Bool:
		return 40
	case Date:
		return 45
	case Timestamp:
		return 47
	case Regex:
		return 50
	case DBRef:
		return 55
	case Code:
		return 60
	case CodeWithScope:
		return 65
	case MaxKey:
		return 127
	default:
		return -2
	}
}

type BinDataSubtype byte

const (
	BinDataGeneral             BinDataSubtype = 0x00
	BinDataFunction            BinDataSubtype = 0x01
	BinDataByteArrayDeprecated BinDataSubtype = 0x02
	BinDataUUIDOld             BinDataSubtype = 0x03
	BinDataUUID                BinDataSubtype = 0x04
	BinDataMD5                 BinDataSubtype = 0x05
	BinDataUserDefined         BinDataSubtype = 0x80
)

// ObjectID is the 12-byte identifier type. Generation is left to callers.
type ObjectID [objectIDSize]byte

func ObjectIDFromHex(s string) (ObjectID, error) {
	var oid ObjectID
	if len(s) != 2*objectIDSize {
		return oid, fmt.Errorf("invalid ObjectID %q: wanted %d hex digits, got %d", s, 2*objectIDSize, len(s))
	}
	_, err := hex.Decode(oid[:], []byte(s))
	if err != nil {
		return oid, fmt.Errorf("invalid ObjectID %q: %w", s, err)
	}
	return oid, nil
}

func (oid ObjectID) Hex() string {
	return hex.EncodeToString(oid[:])
}

func (oid ObjectID) String() string {
	return "ObjectId('" + oid.Hex() + "')"
}

func (oid ObjectID) IsZero() bool {
	return oid == ObjectID{}
}
