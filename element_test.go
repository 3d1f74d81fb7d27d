package bson

import (
	"bytes"
	"math"
	"testing"
	"time"
)

func TestElement_Accessors(t *testing.T) {
	doc := sampleDocument()

	if v := doc.Field("double").Double(); v != 1.5 {
		t.Errorf("Double = %v, wanted 1.5", v)
	}
	if v := doc.Field("string").Str(); v != "hello" {
		t.Errorf("Str = %q, wanted hello", v)
	}
	if v := doc.Field("int32").Int32(); v != 42 {
		t.Errorf("Int32 = %d, wanted 42", v)
	}
	if v := doc.Field("int64").Int64(); v != 1<<40 {
		t.Errorf("Int64 = %d, wanted 2^40", v)
	}
	if v := doc.Field("bool").Bool(); !v {
		t.Errorf("Bool = false, wanted true")
	}
	if v := doc.Field("date").Date(); v != 1433161845123 {
		t.Errorf("Date = %d, wanted 1433161845123", v)
	}
	if v := doc.Field("date").Time(); !v.Equal(time.Date(2015, 6, 1, 12, 30, 45, 123e6, time.UTC)) {
		t.Errorf("Time = %v", v)
	}
	if v := doc.Field("oid").ObjectID(); v != testOID {
		t.Errorf("ObjectID = %v, wanted %v", v, testOID)
	}
	if p, f := doc.Field("regex").Regex(), doc.Field("regex").RegexFlags(); p != "^a.*" || f != "i" {
		t.Errorf("Regex = %q/%q, wanted ^a.*/i", p, f)
	}
	if ns, oid := doc.Field("dbref").DBRef(); ns != "db.coll" || oid != testOID {
		t.Errorf("DBRef = %q, %v", ns, oid)
	}
	if v := doc.Field("code").Str(); v != "function() {}" {
		t.Errorf("code Str = %q", v)
	}
	if v := doc.Field("symbol").Str(); v != "sym" {
		t.Errorf("symbol Str = %q", v)
	}
	if subtype, data := doc.Field("bindata").BinData(); subtype != BinDataGeneral || !bytes.Equal(data, []byte{1, 2, 3}) {
		t.Errorf("BinData = %v, %x", subtype, data)
	}

	cws := doc.Field("cws")
	if code := cws.CodeWithScopeCode(); code != "return x" {
		t.Errorf("CodeWithScopeCode = %q", code)
	}
	if x := cws.CodeWithScopeScope().Field("x").Int32(); x != 1 {
		t.Errorf("scope x = %d, wanted 1", x)
	}

	ts := doc.Field("ts")
	if ts.Timestamp() != 1000<<32|7 || ts.TimestampTime() != 1000_000 || ts.TimestampInc() != 7 {
		t.Errorf("Timestamp = %x time=%d inc=%d", ts.Timestamp(), ts.TimestampTime(), ts.TimestampInc())
	}

	if v := doc.Field("object").Embedded().Field("c").Str(); v != "d" {
		t.Errorf("object.c = %q, wanted d", v)
	}
	if v := doc.Field("array").Embedded().Field("1").Str(); v != "two" {
		t.Errorf("array.1 = %q, wanted two", v)
	}
}

func TestElement_NumberPromotion(t *testing.T) {
	b := NewBuilder(BuilderOptions{})
	b.AppendInt32("i", -7)
	b.AppendInt64("l", 1<<53)
	b.AppendDouble("d", 2.9)
	b.AppendDouble("nan", math.NaN())
	b.AppendDouble("huge", 1e300)
	b.AppendString("s", "x")
	doc := b.Obj()

	tests := []struct {
		name   string
		number float64
		long   int64
	}{
		{"i", -7, -7},
		{"l", 1 << 53, 1 << 53},
		{"d", 2.9, 2},
		{"huge", 1e300, math.MaxInt64},
		{"s", 0, 0},
	}
	for _, tt := range tests {
		e := doc.Field(tt.name)
		if got := e.Number(); got != tt.number {
			t.Errorf("%s: Number = %v, wanted %v", tt.name, got, tt.number)
		}
		if got := e.NumberLong(); got != tt.long {
			t.Errorf("%s: NumberLong = %v, wanted %v", tt.name, got, tt.long)
		}
	}
	if got := doc.Field("nan").NumberLong(); got != 0 {
		t.Errorf("NaN NumberLong = %d, wanted 0", got)
	}
}

func TestElement_TypeMismatchPanics(t *testing.T) {
	doc := sampleDocument()
	expectAssertion(t, func() { doc.Field("string").Int32() })
	expectAssertion(t, func() { doc.Field("int32").Str() })
	expectAssertion(t, func() { doc.Field("int32").Embedded() })
	expectAssertion(t, func() { doc.Field("missing").Bool() })
}

func TestElement_EOO(t *testing.T) {
	var e Element
	if !e.IsEOO() || e.Type() != EOO || e.FieldName() != "" || e.Size() != 1 {
		t.Fatalf("zero Element = type %v name %q size %d, wanted EOO", e.Type(), e.FieldName(), e.Size())
	}
	miss := sampleDocument().Field("nope")
	if !miss.IsEOO() {
		t.Fatalf("missing field = %v, wanted EOO", miss.Type())
	}
}

func TestElement_RawAndValue(t *testing.T) {
	b := NewBuilder(BuilderOptions{})
	b.AppendInt32("a", 1)
	e := b.Obj().FirstElement()
	if got, want := e.Raw(), []byte{0x10, 'a', 0, 1, 0, 0, 0}; !bytes.Equal(got, want) {
		t.Fatalf("Raw = %x, wanted %x", got, want)
	}
	if got, want := e.Value(), []byte{1, 0, 0, 0}; !bytes.Equal(got, want) {
		t.Fatalf("Value = %x, wanted %x", got, want)
	}
	if e.ValueSize() != 4 {
		t.Fatalf("ValueSize = %d, wanted 4", e.ValueSize())
	}
}

func TestElement_EmbeddedCheck(t *testing.T) {
	doc := sampleDocument()
	if _, err := doc.Field("int32").EmbeddedCheck(); err == nil {
		t.Fatalf("EmbeddedCheck(int32) err = nil, wanted error")
	}
	sub, err := doc.Field("object").EmbeddedCheck()
	if err != nil || sub.Field("c").Str() != "d" {
		t.Fatalf("EmbeddedCheck(object) = %v, %v", sub, err)
	}
}

func TestElement_WrapAndWrapAs(t *testing.T) {
	doc := sampleDocument()
	e := doc.Field("string")

	w := e.Wrap()
	if w.NFields() != 1 || w.Field("string").Str() != "hello" {
		t.Fatalf("Wrap = %v", w)
	}
	if !bytes.Equal(w.FirstElement().Raw(), e.Raw()) {
		t.Fatalf("Wrap element = %x, wanted %x", w.FirstElement().Raw(), e.Raw())
	}

	w = e.WrapAs("renamed")
	if w.NFields() != 1 || w.Field("renamed").Str() != "hello" || w.HasField("string") {
		t.Fatalf("WrapAs = %v", w)
	}
}

func TestElement_BinDataClean(t *testing.T) {
	b := NewBuilder(BuilderOptions{})
	b.AppendBinDataArrayDeprecated("old", []byte{9, 8})
	e := b.Obj().Field("old")

	subtype, data := e.BinData()
	if subtype != BinDataByteArrayDeprecated || !bytes.Equal(data, []byte{2, 0, 0, 0, 9, 8}) {
		t.Fatalf("BinData = %v, %x", subtype, data)
	}
	_, data = e.BinDataClean()
	if !bytes.Equal(data, []byte{9, 8}) {
		t.Fatalf("BinDataClean = %x, wanted 0908", data)
	}
}
