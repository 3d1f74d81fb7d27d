package bson

import (
	"errors"
	"testing"

	"pgregory.net/rapid"
)

var testOID = ObjectID{0x50, 0x7f, 0x1f, 0x77, 0xbc, 0xf8, 0x6c, 0xd7, 0x99, 0x43, 0x90, 0x11}

// sampleDocument returns a document holding one element of every type.
func sampleDocument() Document {
	scope := NewBuilder(BuilderOptions{})
	scope.AppendInt32("x", 1)

	sub := NewBuilder(BuilderOptions{})
	sub.AppendString("c", "d")

	arr := NewArrayBuilder(BuilderOptions{})
	arr.AppendInt32(1)
	arr.AppendString("two")

	b := NewBuilder(BuilderOptions{})
	b.AppendDouble("double", 1.5)
	b.AppendString("string", "hello")
	b.AppendDocument("object", sub.Obj())
	b.AppendArray("array", arr.Arr())
	b.AppendBinData("bindata", BinDataGeneral, []byte{1, 2, 3})
	b.AppendUndefined("undefined")
	b.AppendObjectID("oid", testOID)
	b.AppendBool("bool", true)
	b.AppendDate("date", 1433161845123)
	b.AppendNull("null")
	b.AppendRegex("regex", "^a.*", "i")
	b.AppendDBRef("dbref", "db.coll", testOID)
	b.AppendCode("code", "function() {}")
	b.AppendSymbol("symbol", "sym")
	b.AppendCodeWithScope("cws", "return x", scope.Obj())
	b.AppendInt32("int32", 42)
	b.AppendTimestampParts("ts", 1000, 7)
	b.AppendInt64("int64", 1<<40)
	b.AppendMaxKey("maxkey")
	b.AppendMinKey("minkey")
	return b.Obj()
}

// expectPanic runs f and returns the recovered panic value, failing the
// test if f returns normally.
func expectPanic(t testing.TB, f func()) (r any) {
	t.Helper()
	defer func() {
		r = recover()
		if r == nil {
			t.Fatalf("expected panic")
		}
	}()
	f()
	return nil
}

func expectAssertion(t testing.TB, f func()) {
	t.Helper()
	r := expectPanic(t, f)
	if _, ok := r.(*AssertionError); !ok {
		t.Fatalf("panic = %T %v, wanted *AssertionError", r, r)
	}
}

func expectDataError(t testing.TB, err error, wantErr error) {
	t.Helper()
	var de *DataError
	if !errors.As(err, &de) {
		t.Fatalf("err = %T %v, wanted *DataError", err, err)
	}
	if wantErr != nil && !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, wanted errors.Is %v", err, wantErr)
	}
}

var fieldNameGen = rapid.StringMatching(`[a-z_][a-z0-9_.]{0,6}`)

// genDocument produces arbitrary well-formed documents, nested up to depth
// levels.
func genDocument(depth int) *rapid.Generator[Document] {
	return rapid.Custom(func(t *rapid.T) Document {
		b := NewBuilder(BuilderOptions{InitialSize: 16})
		n := rapid.IntRange(0, 6).Draw(t, "n")
		for range n {
			name := fieldNameGen.Draw(t, "name")
			appendRandomValue(t, b, name, depth)
		}
		return b.Obj()
	})
}

func appendRandomValue(t *rapid.T, b *Builder, name string, depth int) {
	kinds := 18
	if depth <= 0 {
		kinds = 16
	}
	switch rapid.IntRange(0, kinds-1).Draw(t, "kind") {
	case 0:
		b.AppendDouble(name, rapid.Float64().Draw(t, "double"))
	case 1:
		b.AppendString(name, rapid.String().Draw(t, "string"))
	case 2:
		subtype := BinDataSubtype(rapid.ByteMax(5).Draw(t, "subtype"))
		data := rapid.SliceOfN(rapid.Byte(), 0, 20).Draw(t, "bin")
		if subtype == BinDataByteArrayDeprecated {
			b.AppendBinDataArrayDeprecated(name, data)
		} else {
			b.AppendBinData(name, subtype, data)
		}
	case 3:
		b.AppendUndefined(name)
	case 4:
		var oid ObjectID
		copy(oid[:], rapid.SliceOfN(rapid.Byte(), objectIDSize, objectIDSize).Draw(t, "oid"))
		b.AppendObjectID(name, oid)
	case 5:
		b.AppendBool(name, rapid.Bool().Draw(t, "bool"))
	case 6:
		b.AppendDate(name, rapid.Int64().Draw(t, "date"))
	case 7:
		b.AppendNull(name)
	case 8:
		b.AppendRegex(name, rapid.StringMatching(`[a-z^$.*]{0,5}`).Draw(t, "pattern"), rapid.StringMatching(`[imx]{0,3}`).Draw(t, "flags"))
	case 9:
		b.AppendCode(name, rapid.String().Draw(t, "code"))
	case 10:
		b.AppendSymbol(name, rapid.String().Draw(t, "symbol"))
	case 11:
		b.AppendInt32(name, rapid.Int32().Draw(t, "int32"))
	case 12:
		b.AppendTimestamp(name, rapid.Uint64().Draw(t, "ts"))
	case 13:
		b.AppendInt64(name, rapid.Int64().Draw(t, "int64"))
	case 14:
		b.AppendMinKey(name)
	case 15:
		b.AppendMaxKey(name)
	case 16:
		sub := b.Subobj(name)
		n := rapid.IntRange(0, 4).Draw(t, "subn")
		for range n {
			appendRandomValue(t, sub, fieldNameGen.Draw(t, "name"), depth-1)
		}
		sub.Done()
	case 17:
		arr := NewSubArrayBuilder(b.SubarrayStart(name))
		n := rapid.IntRange(0, 4).Draw(t, "arrn")
		for range n {
			appendRandomValue(t, arr.Builder(), arr.num(), depth-1)
		}
		arr.Done()
	}
}
