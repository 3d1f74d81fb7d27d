package bson

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	maxShortString   = 160
	shortStringLen   = 150
	maxShortCode     = 80
	shortCodeLen     = 70
	maxShortBinData  = 80
	shortBinDataLen  = 70
	truncationMarker = "..."
)

// String renders the document in the shell-like notation used in logs, with
// long strings and binary values abbreviated.
func (d Document) String() string {
	s, _ := d.ToString(false, false)
	return s
}

// ToString renders the document. With full set, nothing is abbreviated and
// exceeding MaxToStringDepth is reported as ErrMaxDepth instead of being
// elided as "...".
func (d Document) ToString(isArray, full bool) (string, error) {
	var sb strings.Builder
	if err := d.render(&sb, isArray, full, 0); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (d Document) render(sb *strings.Builder, isArray, full bool, depth int) error {
	if d.IsEmpty() {
		if isArray {
			sb.WriteString("[]")
		} else {
			sb.WriteString("{}")
		}
		return nil
	}

	if isArray {
		sb.WriteString("[ ")
	} else {
		sb.WriteString("{ ")
	}
	it := d.Iterator()
	first := true
	for it.More() {
		e := it.Next()
		if first {
			first = false
		} else {
			sb.WriteString(", ")
		}
		if err := e.render(sb, !isArray, full, depth); err != nil {
			return err
		}
	}
	if isArray {
		sb.WriteString(" ]")
	} else {
		sb.WriteString(" }")
	}
	return nil
}

// String renders the element as "name: value".
func (e Element) String() string {
	s, _ := e.ToString(true, false)
	return s
}

func (e Element) ToString(includeFieldName, full bool) (string, error) {
	var sb strings.Builder
	if err := e.render(&sb, includeFieldName, full, 0); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (e Element) render(sb *strings.Builder, includeFieldName, full bool, depth int) error {
	if depth > MaxToStringDepth {
		if full {
			return fmt.Errorf("%w of %d", ErrMaxDepth, MaxToStringDepth)
		}
		sb.WriteString(truncationMarker)
		return nil
	}

	t := e.Type()
	if includeFieldName && t != EOO {
		sb.Write(e.FieldNameBytes())
		sb.WriteString(": ")
	}
	switch t {
	case EOO:
		sb.WriteString("EOO")
	case Date:
		sb.WriteString("new Date(")
		sb.WriteString(strconv.FormatInt(e.Date(), 10))
		sb.WriteByte(')')
	case Regex:
		sb.WriteByte('/')
		sb.WriteString(e.Regex())
		sb.WriteByte('/')
		sb.WriteString(e.RegexFlags())
	case Double:
		sb.WriteString(formatDouble(e.Double()))
	case Int64:
		sb.WriteString(strconv.FormatInt(e.Int64(), 10))
	case Int32:
		sb.WriteString(strconv.FormatInt(int64(e.Int32()), 10))
	case Bool:
		sb.WriteString(strconv.FormatBool(e.Bool()))
	case Object:
		return e.Embedded().render(sb, false, full, depth+1)
	case Array:
		return e.Embedded().render(sb, true, full, depth+1)
	case Undefined:
		sb.WriteString("undefined")
	case Null:
		sb.WriteString("null")
	case MaxKey:
		sb.WriteString("MaxKey")
	case MinKey:
		sb.WriteString("MinKey")
	case CodeWithScope:
		sb.WriteString("CodeWScope( ")
		sb.WriteString(e.CodeWithScopeCode())
		sb.WriteString(", ")
		if err := e.CodeWithScopeScope().render(sb, false, full, depth+1); err != nil {
			return err
		}
		sb.WriteByte(')')
	case Code:
		s := e.StrBytes()
		if !full && len(s)+1 > maxShortCode {
			sb.Write(s[:shortCodeLen])
			sb.WriteString(truncationMarker)
		} else {
			sb.Write(s)
		}
	case String, Symbol:
		s := e.StrBytes()
		sb.WriteByte('"')
		if !full && len(s)+1 > maxShortString {
			sb.Write(s[:shortStringLen])
			sb.WriteString(truncationMarker)
		} else {
			sb.Write(s)
		}
		sb.WriteByte('"')
	case DBRef:
		ns, oid := e.DBRef()
		sb.WriteString("DBRef('")
		sb.WriteString(ns)
		sb.WriteString("',")
		sb.WriteString(oid.Hex())
		sb.WriteByte(')')
	case ObjectIDType:
		sb.WriteString(e.ObjectID().String())
	case BinData:
		subtype, data := e.BinDataClean()
		sb.WriteString("BinData(")
		sb.WriteString(strconv.Itoa(int(subtype)))
		sb.WriteString(", ")
		if !full && len(data) > maxShortBinData {
			sb.WriteString(strings.ToUpper(hex.EncodeToString(data[:shortBinDataLen])))
			sb.WriteString(truncationMarker)
		} else {
			sb.WriteString(strings.ToUpper(hex.EncodeToString(data)))
		}
		sb.WriteByte(')')
	case Timestamp:
		sb.WriteString("Timestamp ")
		sb.WriteString(strconv.FormatInt(e.TimestampTime(), 10))
		sb.WriteByte('|')
		sb.WriteString(strconv.FormatUint(uint64(e.TimestampInc()), 10))
	default:
		sb.WriteString("?type=")
		sb.WriteString(strconv.Itoa(int(t)))
	}
	return nil
}

// formatDouble prints the shortest representation, keeping a ".0" on
// integral values so they do not read as integers.
func formatDouble(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !math.IsInf(f, 0) && !math.IsNaN(f) && !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
