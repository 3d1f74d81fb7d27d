package bson

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// Documents travel through MessagePack as maps (arrays for Array values) in
// element order. Types with a native MessagePack counterpart use it: Int32
// and Int64 are written in their fixed-width forms so the distinction
// survives, and general-subtype BinData becomes bin. Every other type is an
// ext value whose id is the tag byte and whose payload is the encoded value.
//
// MinKey's tag does not fit into the non-negative ext id range (negative ids
// are reserved by MessagePack), so it travels as extMinKey.
const extMinKey int8 = 0x7E

var (
	_ msgpack.CustomEncoder = Document{}
	_ msgpack.CustomDecoder = (*Document)(nil)
)

func (d Document) EncodeMsgpack(enc *msgpack.Encoder) error {
	return encodeMsgpackDocument(enc, d, false)
}

func (d *Document) DecodeMsgpack(dec *msgpack.Decoder) error {
	b := NewBuilder(BuilderOptions{})
	n, err := dec.DecodeMapLen()
	if err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("cannot decode nil into a document")
	}
	if err := decodeMsgpackMap(dec, b, n, 0); err != nil {
		return err
	}
	doc := b.Obj()
	if err := doc.Validate(); err != nil {
		return err
	}
	*d = doc
	return nil
}

// AppendMsgpack appends the MessagePack encoding of doc to buf.
func AppendMsgpack(buf []byte, doc Document) []byte {
	bb := bytesWriter{buf}
	enc := msgpack.GetEncoder()
	enc.Reset(&bb)
	err := doc.EncodeMsgpack(enc)
	msgpack.PutEncoder(enc)
	if err != nil {
		panic(fmt.Errorf("failed to encode document using MsgPack: %w", err))
	}
	return bb.Buf
}

// FromMsgpack builds a document from a MessagePack map.
func FromMsgpack(data []byte) (Document, error) {
	var r bytes.Reader
	r.Reset(data)
	dec := msgpack.GetDecoder()
	dec.Reset(&r)
	var doc Document
	err := doc.DecodeMsgpack(dec)
	msgpack.PutDecoder(dec)
	if err != nil {
		return Document{}, dataErrf(data, len(data)-r.Len(), err, "failed to decode msgpack into a document")
	}
	if r.Len() != 0 {
		return Document{}, dataErrf(data, len(data)-r.Len(), nil, "%d trailing bytes after msgpack document", r.Len())
	}
	return doc, nil
}

func encodeMsgpackDocument(enc *msgpack.Encoder, d Document, isArray bool) error {
	n := d.NFields()
	var err error
	if isArray {
		err = enc.EncodeArrayLen(n)
	} else {
		err = enc.EncodeMapLen(n)
	}
	if err != nil {
		return err
	}
	for e := range d.All() {
		if !isArray {
			if err := enc.EncodeString(e.FieldName()); err != nil {
				return err
			}
		}
		if err := encodeMsgpackValue(enc, e); err != nil {
			return err
		}
	}
	return nil
}

func encodeMsgpackValue(enc *msgpack.Encoder, e Element) error {
	switch t := e.Type(); t {
	case Double:
		return enc.EncodeFloat64(e.Double())
	case String:
		return enc.EncodeString(e.Str())
	case Object:
		return encodeMsgpackDocument(enc, e.Embedded(), false)
	case Array:
		return encodeMsgpackDocument(enc, e.Embedded(), true)
	case Bool:
		return enc.EncodeBool(e.Bool())
	case Null:
		return enc.EncodeNil()
	case Int32:
		return enc.EncodeInt32(e.Int32())
	case Int64:
		return enc.EncodeInt64(e.Int64())
	case BinData:
		if subtype, data := e.BinData(); subtype == BinDataGeneral {
			return enc.EncodeBytes(data)
		}
		return encodeMsgpackExt(enc, int8(t), e.Value())
	case MinKey:
		return encodeMsgpackExt(enc, extMinKey, nil)
	default:
		return encodeMsgpackExt(enc, int8(t), e.Value())
	}
}

func encodeMsgpackExt(enc *msgpack.Encoder, id int8, payload []byte) error {
	if err := enc.EncodeExtHeader(id, len(payload)); err != nil {
		return err
	}
	_, err := enc.Writer().Write(payload)
	return err
}

func decodeMsgpackMap(dec *msgpack.Decoder, b *Builder, n, depth int) error {
	for range n {
		name, err := dec.DecodeString()
		if err != nil {
			return err
		}
		if strings.IndexByte(name, 0) >= 0 {
			return fmt.Errorf("field name %q contains NUL", name)
		}
		if err := decodeMsgpackValue(dec, b, name, depth); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func decodeMsgpackArray(dec *msgpack.Decoder, a *ArrayBuilder, n, depth int) error {
	for i := range n {
		if err := decodeMsgpackValue(dec, a.b, a.num(), depth); err != nil {
			return fmt.Errorf("%d: %w", i, err)
		}
	}
	return nil
}

func decodeMsgpackValue(dec *msgpack.Decoder, b *Builder, name string, depth int) error {
	if depth > maxValidateDepth {
		return fmt.Errorf("%w: documents nested deeper than %d levels", ErrMaxDepth, maxValidateDepth)
	}
	c, err := dec.PeekCode()
	if err != nil {
		return err
	}
	switch {
	case c == msgpcode.Nil:
		if err := dec.DecodeNil(); err != nil {
			return err
		}
		b.AppendNull(name)
	case c == msgpcode.True || c == msgpcode.False:
		v, err := dec.DecodeBool()
		if err != nil {
			return err
		}
		b.AppendBool(name, v)
	case c == msgpcode.Float || c == msgpcode.Double:
		v, err := dec.DecodeFloat64()
		if err != nil {
			return err
		}
		b.AppendDouble(name, v)
	case c == msgpcode.Int64 || c == msgpcode.Uint32:
		v, err := dec.DecodeInt64()
		if err != nil {
			return err
		}
		b.AppendInt64(name, v)
	case c == msgpcode.Uint64:
		v, err := dec.DecodeUint64()
		if err != nil {
			return err
		}
		if v > math.MaxInt64 {
			return fmt.Errorf("integer %d does not fit into Int64", v)
		}
		b.AppendInt64(name, int64(v))
	case msgpcode.IsFixedNum(c) || c == msgpcode.Int8 || c == msgpcode.Int16 || c == msgpcode.Int32 || c == msgpcode.Uint8 || c == msgpcode.Uint16:
		v, err := dec.DecodeInt32()
		if err != nil {
			return err
		}
		b.AppendInt32(name, v)
	case msgpcode.IsString(c):
		v, err := dec.DecodeString()
		if err != nil {
			return err
		}
		b.AppendString(name, v)
	case msgpcode.IsBin(c):
		v, err := dec.DecodeBytes()
		if err != nil {
			return err
		}
		b.AppendBinData(name, BinDataGeneral, v)
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		n, err := dec.DecodeMapLen()
		if err != nil {
			return err
		}
		sub := NewSubBuilder(b.SubobjStart(name))
		if err := decodeMsgpackMap(dec, sub, n, depth+1); err != nil {
			sub.Abandon()
			return err
		}
		sub.Done()
	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return err
		}
		sub := NewSubArrayBuilder(b.SubarrayStart(name))
		if err := decodeMsgpackArray(dec, sub, n, depth+1); err != nil {
			sub.Builder().Abandon()
			return err
		}
		sub.Done()
	case msgpcode.IsExt(c):
		return decodeMsgpackExt(dec, b, name)
	default:
		return fmt.Errorf("unsupported msgpack code 0x%02x", c)
	}
	return nil
}

func decodeMsgpackExt(dec *msgpack.Decoder, b *Builder, name string) error {
	id, n, err := dec.DecodeExtHeader()
	if err != nil {
		return err
	}
	if n > MaxInternalSize {
		return fmt.Errorf("%w: ext payload of %d bytes", ErrInvalidSize, n)
	}
	payload := make([]byte, n)
	if err := dec.ReadFull(payload); err != nil {
		return err
	}

	t := Type(id)
	if id == extMinKey {
		t = MinKey
	}
	if id < 0 || !t.IsKnown() || t == EOO || t.IsEmbedded() {
		return fmt.Errorf("unsupported msgpack ext type %d", id)
	}
	vs, err := exactValueSize(t, payload)
	if err != nil {
		return err
	}
	if vs != n {
		return dataErrf(payload, vs, ErrInvalidSize, "%v ext payload has %d bytes, value needs %d", t, n, vs)
	}
	b.appendHeader(t, name)
	b.buf.appendRaw(payload)
	return nil
}

type bytesWriter struct {
	Buf []byte
}

func (bb *bytesWriter) Write(b []byte) (int, error) {
	var off int
	off, bb.Buf = grow(bb.Buf, len(b))
	copy(bb.Buf[off:], b)
	return len(b), nil
}

func (bb *bytesWriter) WriteByte(v byte) error {
	var off int
	off, bb.Buf = grow(bb.Buf, 1)
	bb.Buf[off] = v
	return nil
}
