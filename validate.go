package bson

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/andreyvit/bson/endian"
)

const maxValidateDepth = 200

// Validate performs a full structural check of the document: the declared
// lengths nest consistently, every tag is known, names and strings are
// NUL-terminated inside their bounds, booleans are 0 or 1, and nested
// documents are themselves valid. Accessors on a document that passed
// Validate never panic with a *DataError.
func (d Document) Validate() error {
	return validateDocument(d.raw(), 0)
}

func validateDocument(data []byte, depth int) error {
	if depth > maxValidateDepth {
		return dataErrf(data, 0, ErrMaxDepth, "documents nested deeper than %d levels", maxValidateDepth)
	}
	n, err := declaredSize(data)
	if err != nil {
		return err
	}
	if n > len(data) {
		return dataErrf(data, 0, ErrTruncated, "document size %d exceeds buffer size %d", n, len(data))
	}
	data = data[:n]
	end := n - 1
	if data[end] != 0 {
		return dataErrf(data, end, nil, "document does not end with EOO")
	}

	p := 4
	for p < end {
		t := Type(data[p])
		if t == EOO {
			return dataErrf(data, p, nil, "EOO before end of document")
		}
		if !t.IsKnown() {
			return dataErrf(data, p, nil, "unknown element type %d", byte(t))
		}
		nameLen := bytes.IndexByte(data[p+1:end], 0)
		if nameLen < 0 {
			return dataErrf(data, p+1, ErrTruncated, "unterminated field name")
		}
		valueStart := p + 1 + nameLen + 1
		value := data[valueStart:end]
		vs, err := exactValueSize(t, value)
		if err != nil {
			return wrapOffset(err, data, valueStart)
		}
		if err := validateValue(t, value[:vs], depth); err != nil {
			return wrapOffset(err, data, valueStart)
		}
		p = valueStart + vs
	}
	return nil
}

func validateValue(t Type, value []byte, depth int) error {
	switch t {
	case Bool:
		if value[0] > 1 {
			return dataErrf(value, 0, nil, "invalid boolean value %d", value[0])
		}
	case String, Code, Symbol:
		return validateString(t, value)
	case DBRef:
		return validateString(t, value[:len(value)-objectIDSize])
	case Object, Array:
		return validateDocument(value, depth+1)
	case BinData:
		if BinDataSubtype(value[4]) == BinDataByteArrayDeprecated {
			if len(value) < 9 || int(endian.ReadInt32(value[5:])) != len(value)-9 {
				return dataErrf(value, 5, ErrInvalidSize, "inner length of deprecated binary does not match")
			}
		}
	case CodeWithScope:
		if len(value) < 4+4+1+minDocSize {
			return dataErrf(value, 0, ErrInvalidSize, "code with scope of %d bytes is too short", len(value))
		}
		strSize := int(endian.ReadInt32(value[4:]))
		if strSize < 1 || 8+strSize > len(value) {
			return dataErrf(value, 4, ErrInvalidSize, "code length %d does not fit into code with scope of %d bytes", strSize, len(value))
		}
		if err := validateString(t, value[4:8+strSize]); err != nil {
			return err
		}
		scope := value[8+strSize:]
		if err := validateDocument(scope, depth+1); err != nil {
			return err
		}
		if int(endian.ReadInt32(scope)) != len(scope) {
			return dataErrf(value, 8+strSize, ErrInvalidSize, "scope does not fill the rest of code with scope")
		}
	}
	return nil
}

// validateString checks a length-prefixed, NUL-terminated value that
// exactValueSize already fitted into value.
func validateString(t Type, value []byte) error {
	if len(value) < 5 {
		return dataErrf(value, 0, ErrInvalidSize, "%v length %d is too short", t, len(value)-4)
	}
	if value[len(value)-1] != 0 {
		return dataErrf(value, len(value)-1, nil, "%v value is not NUL-terminated", t)
	}
	return nil
}

func wrapOffset(err error, data []byte, off int) error {
	var de *DataError
	if errors.As(err, &de) {
		return &DataError{Data: data, Off: off + de.Off, Err: de.Err, Msg: de.Msg}
	}
	return fmt.Errorf("at %d: %w", off, err)
}
