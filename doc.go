/*
Package bson reads, compares and builds documents in the BSON binary format
without decoding them into Go values.

We implement:

1. Views. Document and Element point into an existing byte slice and decode
fields lazily; nothing is copied until asked for.

2. Lookup. Field, FieldDotted and Iterator walk the element list in place.

3. Ordering. Element.Compare and Document.Compare define the canonical order
used by index keys and sorting.

4. Building. Builder and ArrayBuilder append elements front to back into one
growable buffer, including nested documents built in place.

5. Interop. Documents travel through MessagePack (AppendMsgpack, FromMsgpack,
or as a msgpack.CustomEncoder field) and render in shell notation for logs.

# Technical Details

**Document**: int32 total length (little-endian, counts itself and the
terminator), then elements, then a 0x00 terminator. The smallest document is
05 00 00 00 00.

**Element**: type tag byte, field name (NUL-terminated), then the value. The
value encoding depends on the tag:

	Double, Date, Int64, Timestamp   8 bytes
	Int32                            4 bytes
	Bool                             1 byte, 0 or 1
	ObjectID                         12 bytes
	Null, Undefined, MinKey, MaxKey  no bytes
	String, Code, Symbol             int32 length (NUL included), bytes, NUL
	Object, Array                    embedded document
	BinData                          int32 length, subtype byte, bytes
	Regex                            pattern NUL, flags NUL
	DBRef                            String, then 12-byte ObjectID
	CodeWithScope                    int32 total length, String, document

**Sizes.** Element sizes are computed two ways. A 256-entry table covers fixed
widths and simple length prefixes; everything else falls back to a per-type
switch. Both paths check that the value fits inside the enclosing document,
and report overruns as *DataError.

**Ownership.** Views borrow their bytes. A Document built by Builder owns its
buffer; any other view is valid only while the underlying slice is unchanged.
Call Copy to detach.

**Errors.** Malformed input data is reported as *DataError, which carries the
offending bytes and offset. Broken API contracts (appending an EOO element,
reading past the terminator, using a parent builder while a nested one is
open) panic with *AssertionError.

## Canonical order

Values are first grouped into buckets:

	MinKey < Undefined < Null < numbers < String/Symbol < Object < Array <
	BinData < ObjectID < Bool < Date < Timestamp < Regex < DBRef < Code <
	CodeWithScope < MaxKey

Numbers compare by value across Int32, Int64 and Double; NaN sorts below every
other number. Strings compare as raw bytes. Documents compare element by
element, field names included.
*/
package bson
