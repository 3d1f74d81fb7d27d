package bson

// Iterator walks the elements of a document in order:
//
//	it := doc.Iterator()
//	for it.More() {
//		e := it.Next()
//		...
//	}
type Iterator struct {
	data []byte
	pos  int
	end  int // offset of the terminator; len(data) while a builder is still open
}

func newIterator(data []byte, start, end int) *Iterator {
	return &Iterator{data: data, pos: start, end: end}
}

// MoreWithEOO reports whether the cursor is still before or at the
// terminating EOO.
func (it *Iterator) MoreWithEOO() bool {
	return it.pos <= it.end
}

// More reports whether there is a non-EOO element under the cursor.
func (it *Iterator) More() bool {
	return it.pos < it.end && it.data[it.pos] != byte(EOO)
}

// Next returns the element under the cursor and advances past it. Calling
// Next when More is false is a programming error.
func (it *Iterator) Next() Element {
	if !it.More() {
		invariantf("Iterator.Next called past EOO")
	}
	return it.next()
}

// NextWithEOO is like Next, but also returns the terminating EOO element
// once.
func (it *Iterator) NextWithEOO() Element {
	if !it.MoreWithEOO() {
		invariantf("Iterator.NextWithEOO called past the end of the document")
	}
	return it.next()
}

func (it *Iterator) next() Element {
	if it.pos >= it.end || it.data[it.pos] == byte(EOO) {
		it.pos = it.end + 1
		return eooElement
	}
	e := mustElement(it.data[it.pos:it.end])
	it.pos += e.ensureSize()
	return e
}

// Offset returns the position of the cursor relative to the start of the
// document.
func (it *Iterator) Offset() int {
	return it.pos
}
