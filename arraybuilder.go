package bson

import (
	"fmt"
)

// ArrayBuilder builds an Array value, naming elements "0", "1", ... in the
// order they are appended.
type ArrayBuilder struct {
	b *Builder
	i int
}

func NewArrayBuilder(opt BuilderOptions) *ArrayBuilder {
	return &ArrayBuilder{b: NewBuilder(opt)}
}

// NewSubArrayBuilder starts a nested array in a buffer returned by
// SubarrayStart.
func NewSubArrayBuilder(buf *Buffer) *ArrayBuilder {
	return &ArrayBuilder{b: NewSubBuilder(buf)}
}

func (a *ArrayBuilder) num() string {
	s := NumStr(a.i)
	a.i++
	return s
}

// Fill appends nulls until the next index is upTo. It refuses to grow the
// array past 1,500,000 elements.
func (a *ArrayBuilder) Fill(upTo int) error {
	if upTo > maxArrayBackfill {
		return fmt.Errorf("can't backfill array to larger than %d elements: %d", maxArrayBackfill, upTo)
	}
	for a.i < upTo {
		a.AppendNull()
	}
	return nil
}

// Builder exposes the underlying builder.
func (a *ArrayBuilder) Builder() *Builder {
	return a.b
}

func (a *ArrayBuilder) AppendBool(v bool)           { a.b.AppendBool(a.num(), v) }
func (a *ArrayBuilder) AppendInt32(v int32)         { a.b.AppendInt32(a.num(), v) }
func (a *ArrayBuilder) AppendInt64(v int64)         { a.b.AppendInt64(a.num(), v) }
func (a *ArrayBuilder) AppendDouble(v float64)      { a.b.AppendDouble(a.num(), v) }
func (a *ArrayBuilder) AppendNumber(v int64)        { a.b.AppendNumber(a.num(), v) }
func (a *ArrayBuilder) AppendString(v string)       { a.b.AppendString(a.num(), v) }
func (a *ArrayBuilder) AppendObjectID(oid ObjectID) { a.b.AppendObjectID(a.num(), oid) }
func (a *ArrayBuilder) AppendDate(millis int64)     { a.b.AppendDate(a.num(), millis) }
func (a *ArrayBuilder) AppendTimestamp(v uint64)    { a.b.AppendTimestamp(a.num(), v) }
func (a *ArrayBuilder) AppendNull()                 { a.b.AppendNull(a.num()) }
func (a *ArrayBuilder) AppendUndefined()            { a.b.AppendUndefined(a.num()) }
func (a *ArrayBuilder) AppendDocument(doc Document) { a.b.AppendDocument(a.num(), doc) }
func (a *ArrayBuilder) AppendArray(doc Document)    { a.b.AppendArray(a.num(), doc) }

func (a *ArrayBuilder) AppendBinData(subtype BinDataSubtype, data []byte) {
	a.b.AppendBinData(a.num(), subtype, data)
}

// AppendElement appends the value of e under the next index.
func (a *ArrayBuilder) AppendElement(e Element) {
	a.b.AppendAs(e, a.num())
}

func (a *ArrayBuilder) SubobjStart() *Buffer {
	return a.b.SubobjStart(a.num())
}

func (a *ArrayBuilder) SubarrayStart() *Buffer {
	return a.b.SubarrayStart(a.num())
}

// SubobjStartAt backfills nulls up to pos, then starts a nested object there.
func (a *ArrayBuilder) SubobjStartAt(pos int) (*Buffer, error) {
	if err := a.Fill(pos); err != nil {
		return nil, err
	}
	return a.SubobjStart(), nil
}

// Count returns the number of elements appended so far.
func (a *ArrayBuilder) Count() int {
	return a.i
}

func (a *ArrayBuilder) Len() int {
	return a.b.Len()
}

func (a *ArrayBuilder) Done() Document {
	return a.b.Done()
}

// Arr finishes a top-level array builder and returns the array document.
func (a *ArrayBuilder) Arr() Document {
	return a.b.Obj()
}
