package bson

import (
	"bytes"
	"iter"

	"github.com/andreyvit/bson/endian"
)

// Document is a read-only view of an encoded document:
//
//	int32 length (little-endian, counts itself and the terminator)
//	element...
//	0x00
//
// A Document borrows its bytes. Use Copy to get a view that owns them. The
// zero Document is the canonical empty document.
//
// Accessors assume the bytes are well-formed. Data from outside the process
// should go through NewDocument (header checks) or Validate (full structural
// check) first.
type Document struct {
	data []byte
}

var emptyDocumentData = []byte{minDocSize, 0, 0, 0, 0}

func EmptyDocument() Document {
	return Document{emptyDocumentData}
}

// NewDocument wraps data, which must hold exactly one document.
func NewDocument(data []byte) (Document, error) {
	n, err := declaredSize(data)
	if err != nil {
		return Document{}, err
	}
	if n != len(data) {
		return Document{}, dataErrf(data, 0, ErrInvalidSize, "document size %d does not match buffer size %d", n, len(data))
	}
	if data[n-1] != 0 {
		return Document{}, dataErrf(data, n-1, nil, "document does not end with EOO")
	}
	return Document{data}, nil
}

// MustDocument is like NewDocument, but panics on error.
func MustDocument(data []byte) Document {
	return must(NewDocument(data))
}

// ReadDocument wraps the document at the start of data and returns the bytes
// that follow it.
func ReadDocument(data []byte) (Document, []byte, error) {
	n, err := declaredSize(data)
	if err != nil {
		return Document{}, nil, err
	}
	if n > len(data) {
		return Document{}, nil, dataErrf(data, 0, ErrTruncated, "document size %d exceeds buffer size %d", n, len(data))
	}
	doc, err := NewDocument(data[:n])
	if err != nil {
		return Document{}, nil, err
	}
	return doc, data[n:], nil
}

func declaredSize(data []byte) (int, error) {
	if len(data) < 4 {
		return 0, dataErrf(data, 0, ErrTruncated, "document header needs 4 bytes")
	}
	n := int(endian.ReadInt32(data))
	if n < minDocSize || n > MaxInternalSize {
		return 0, dataErrf(data, 0, ErrInvalidSize, "document size %d (0x%x) is invalid, must be between %d and %d (%dMB)", n, n, minDocSize, MaxInternalSize, MaxInternalSize/(1024*1024))
	}
	return n, nil
}

func (d Document) raw() []byte {
	if d.data == nil {
		return emptyDocumentData
	}
	return d.data
}

// Bytes returns the encoded document. The caller must not modify it.
func (d Document) Bytes() []byte {
	return d.raw()
}

// ObjSize returns the declared length.
func (d Document) ObjSize() int {
	return int(endian.ReadInt32(d.raw()))
}

// IsValid checks the declared length against the allowed range.
func (d Document) IsValid() bool {
	data := d.raw()
	if len(data) < 4 {
		return false
	}
	x := int(endian.ReadInt32(data))
	return x > 0 && x <= MaxInternalSize
}

func (d Document) IsEmpty() bool {
	return d.ObjSize() <= minDocSize
}

// Copy returns a document that owns a private copy of the bytes, so it can
// outlive the buffer d points into.
func (d Document) Copy() Document {
	return Document{bytes.Clone(d.raw())}
}

// elementsEnd returns the offset of the terminating EOO byte.
func (d Document) elementsEnd() int {
	return d.ObjSize() - 1
}

func (d Document) Iterator() *Iterator {
	return newIterator(d.raw(), 4, d.elementsEnd())
}

// All iterates over the top-level elements.
func (d Document) All() iter.Seq[Element] {
	return func(yield func(Element) bool) {
		it := d.Iterator()
		for it.More() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

func (d Document) Elements() []Element {
	var result []Element
	for e := range d.All() {
		result = append(result, e)
	}
	return result
}

// FirstElement returns the first element, or EOO for an empty document.
func (d Document) FirstElement() Element {
	data := d.raw()
	return mustElement(data[4:d.elementsEnd()])
}

// Field finds the top-level element with the given name and returns EOO if
// there is none. Names are compared in place and skipped elements are sized
// via the fast table, so a miss costs one pass and no allocations.
func (d Document) Field(name string) Element {
	data := d.raw()
	end := d.elementsEnd()
	p := 4
	for p < end {
		elem := p
		nameStart := p + 1
		nul := nameStart + len(name)
		if nul >= end {
			break // no room left for a name this long
		}
		if data[nul] == 0 && string(data[nameStart:nul]) == name {
			e := Element{data: data[elem:end], nameLen: len(name)}
			if n, err := e.checkedSize(); err == nil {
				e.size = n
			}
			return e
		}

		n := bytes.IndexByte(data[nameStart:end], 0)
		if n < 0 {
			panic(dataErrf(data, nameStart, ErrTruncated, "unterminated field name"))
		}
		valueStart := nameStart + n + 1
		vs := must(valueSize(Type(data[elem]), data[valueStart:end]))
		p = valueStart + vs
	}
	return Element{}
}

// FieldDotted is like Field, but a name like "a.b.c" reaches into nested
// objects and arrays ("a.1" is the second array item). A field whose name
// literally contains a dot wins over the nested path.
func (d Document) FieldDotted(name string) Element {
	e := d.Field(name)
	if !e.IsEOO() {
		return e
	}
	left, right, found := splitByte(name, '.')
	if !found {
		return e
	}
	sub := d.Field(left)
	if !sub.Type().IsEmbedded() {
		return Element{}
	}
	return sub.Embedded().FieldDotted(right)
}

// ObjectField returns the nested document stored under name, or an empty
// document if the field is missing or is not an object or array.
func (d Document) ObjectField(name string) Document {
	e := d.Field(name)
	if !e.Type().IsEmbedded() {
		return EmptyDocument()
	}
	return e.Embedded()
}

func (d Document) HasField(name string) bool {
	return !d.Field(name).IsEOO()
}

// ObjectIDField returns the _id element if present.
func (d Document) ObjectIDField() (Element, bool) {
	e := d.Field("_id")
	return e, !e.IsEOO()
}

func (d Document) FieldNames() []string {
	var names []string
	it := d.Iterator()
	for it.More() {
		names = append(names, it.Next().FieldName())
	}
	return names
}

func (d Document) NFields() int {
	var n int
	it := d.Iterator()
	for it.More() {
		it.Next()
		n++
	}
	return n
}

// Compare orders documents element by element using Element.Compare. A
// document that is a prefix of another sorts first.
func (d Document) Compare(other Document, considerFieldName bool) int {
	if d.IsEmpty() {
		if other.IsEmpty() {
			return 0
		}
		return -1
	}
	if other.IsEmpty() {
		return 1
	}
	i, j := d.Iterator(), other.Iterator()
	for {
		l, r := i.NextWithEOO(), j.NextWithEOO()
		if l.IsEOO() {
			if r.IsEOO() {
				return 0
			}
			return -1
		}
		if r.IsEOO() {
			return 1
		}
		if c := l.Compare(r, considerFieldName); c != 0 {
			return c
		}
	}
}

// Equal reports whether the documents compare equal, field names included.
// Numerically equal values of different types are equal.
func (d Document) Equal(other Document) bool {
	return d.Compare(other, true) == 0
}

// BinaryEqual reports whether the encodings are identical.
func (d Document) BinaryEqual(other Document) bool {
	return bytes.Equal(d.raw(), other.raw())
}

// IsPrefixOf reports whether every element of d equals, name included, the
// element at the same position in other.
func (d Document) IsPrefixOf(other Document) bool {
	j := other.Iterator()
	for l := range d.All() {
		r := j.NextWithEOO()
		if r.IsEOO() || !l.Equal(r) {
			return false
		}
	}
	return true
}

// CouldBeArray reports whether the field names are "0", "1", ... in order.
func (d Document) CouldBeArray() bool {
	i := 0
	for e := range d.All() {
		if string(e.FieldNameBytes()) != NumStr(i) {
			return false
		}
		i++
	}
	return true
}
