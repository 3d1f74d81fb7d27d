package bson

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEmptyDocument(t *testing.T) {
	want := []byte{5, 0, 0, 0, 0}
	for _, doc := range []Document{{}, EmptyDocument(), NewBuilder(BuilderOptions{}).Obj()} {
		if !bytes.Equal(doc.Bytes(), want) {
			t.Fatalf("Bytes = %x, wanted %x", doc.Bytes(), want)
		}
		if !doc.IsEmpty() || doc.ObjSize() != 5 || doc.NFields() != 0 {
			t.Fatalf("empty doc: IsEmpty=%v ObjSize=%d NFields=%d", doc.IsEmpty(), doc.ObjSize(), doc.NFields())
		}
		if s := doc.String(); s != "{}" {
			t.Fatalf("String = %q, wanted {}", s)
		}
		if !doc.FirstElement().IsEOO() {
			t.Fatalf("FirstElement is not EOO")
		}
	}
}

func TestNewDocument(t *testing.T) {
	good := []byte{12, 0, 0, 0, 0x10, 'a', 0, 1, 0, 0, 0, 0}
	doc, err := NewDocument(good)
	if err != nil {
		t.Fatalf("NewDocument err = %v", err)
	}
	if doc.Field("a").Int32() != 1 {
		t.Fatalf("a = %d, wanted 1", doc.Field("a").Int32())
	}

	tests := []struct {
		name string
		data []byte
		err  error
	}{
		{"short header", []byte{5, 0}, ErrTruncated},
		{"too small", []byte{4, 0, 0, 0}, ErrInvalidSize},
		{"negative", []byte{0xff, 0xff, 0xff, 0xff, 0}, ErrInvalidSize},
		{"too large", []byte{0, 0, 0, 0x7f, 0}, ErrInvalidSize},
		{"size mismatch", []byte{6, 0, 0, 0, 0}, ErrInvalidSize},
		{"no EOO", []byte{5, 0, 0, 0, 1}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDocument(tt.data)
			expectDataError(t, err, tt.err)
		})
	}
}

func TestReadDocument(t *testing.T) {
	data := []byte{5, 0, 0, 0, 0, 0xAA, 0xBB}
	doc, rest, err := ReadDocument(data)
	if err != nil {
		t.Fatalf("ReadDocument err = %v", err)
	}
	if !doc.IsEmpty() || !bytes.Equal(rest, []byte{0xAA, 0xBB}) {
		t.Fatalf("ReadDocument = %x, rest %x", doc.Bytes(), rest)
	}

	_, _, err = ReadDocument([]byte{10, 0, 0, 0, 0})
	expectDataError(t, err, ErrTruncated)
}

func TestDocument_IsValid(t *testing.T) {
	if !sampleDocument().IsValid() {
		t.Fatalf("IsValid = false for sample")
	}
	if (Document{[]byte{0, 0, 0, 0}}).IsValid() {
		t.Fatalf("IsValid = true for zero length")
	}
	if (Document{[]byte{1, 2}}).IsValid() {
		t.Fatalf("IsValid = true for short buffer")
	}
}

func TestDocument_FieldNamesAndIteration(t *testing.T) {
	doc := sampleDocument()
	want := []string{"double", "string", "object", "array", "bindata", "undefined", "oid", "bool", "date", "null", "regex", "dbref", "code", "symbol", "cws", "int32", "ts", "int64", "maxkey", "minkey"}
	if diff := cmp.Diff(want, doc.FieldNames()); diff != "" {
		t.Fatalf("FieldNames mismatch (-want +got):\n%s", diff)
	}
	if doc.NFields() != len(want) {
		t.Fatalf("NFields = %d, wanted %d", doc.NFields(), len(want))
	}
	if len(doc.Elements()) != len(want) {
		t.Fatalf("len(Elements) = %d, wanted %d", len(doc.Elements()), len(want))
	}

	var names []string
	for e := range doc.All() {
		names = append(names, e.FieldName())
		if e.FieldName() == "bool" {
			break
		}
	}
	if diff := cmp.Diff(want[:8], names); diff != "" {
		t.Fatalf("All with break mismatch (-want +got):\n%s", diff)
	}
}

func TestIterator(t *testing.T) {
	b := NewBuilder(BuilderOptions{})
	b.AppendInt32("a", 1)
	b.AppendInt32("b", 2)
	doc := b.Obj()

	it := doc.Iterator()
	if !it.More() || it.Next().FieldName() != "a" {
		t.Fatalf("first element is not a")
	}
	if !it.More() || it.Next().FieldName() != "b" {
		t.Fatalf("second element is not b")
	}
	if it.More() {
		t.Fatalf("More = true after last element")
	}
	if !it.MoreWithEOO() {
		t.Fatalf("MoreWithEOO = false before terminator")
	}
	if e := it.NextWithEOO(); !e.IsEOO() {
		t.Fatalf("NextWithEOO = %v, wanted EOO", e.Type())
	}
	if it.MoreWithEOO() {
		t.Fatalf("MoreWithEOO = true past terminator")
	}
	expectAssertion(t, func() { it.Next() })
	expectAssertion(t, func() { it.NextWithEOO() })
}

func TestDocument_Field(t *testing.T) {
	b := NewBuilder(BuilderOptions{})
	b.AppendInt32("ab", 1)
	b.AppendInt32("a", 2)
	b.AppendInt32("", 3)
	b.AppendInt32("a.b", 4)
	b.AppendInt32("a", 5)
	doc := b.Obj()

	tests := []struct {
		name  string
		value int32
		found bool
	}{
		{"ab", 1, true},
		{"a", 2, true}, // first match wins
		{"", 3, true},
		{"a.b", 4, true},
		{"abc", 0, false},
		{"b", 0, false},
		{"a very long name that cannot fit", 0, false},
	}
	for _, tt := range tests {
		e := doc.Field(tt.name)
		if e.IsEOO() == tt.found {
			t.Errorf("Field(%q) found = %v, wanted %v", tt.name, !e.IsEOO(), tt.found)
			continue
		}
		if tt.found && e.Int32() != tt.value {
			t.Errorf("Field(%q) = %d, wanted %d", tt.name, e.Int32(), tt.value)
		}
	}
	if !doc.HasField("ab") || doc.HasField("zz") {
		t.Fatalf("HasField wrong")
	}
}

func TestDocument_FieldCarriesSize(t *testing.T) {
	doc := sampleDocument()
	for _, name := range doc.FieldNames() {
		e := doc.Field(name)
		want, err := e.exactSize()
		if err != nil {
			t.Fatalf("exactSize(%s) err = %v", name, err)
		}
		if e.size != want {
			t.Errorf("Field(%s).size = %d, wanted %d", name, e.size, want)
		}
	}
	if e := doc.FieldDotted("object.c"); e.size == 0 {
		t.Errorf("FieldDotted size not set")
	}
}

func TestDocument_FieldDotted(t *testing.T) {
	b := NewBuilder(BuilderOptions{})
	sub := b.Subobj("a")
	inner := sub.Subobj("b")
	inner.AppendInt32("c", 1)
	inner.Done()
	arr := NewSubArrayBuilder(sub.SubarrayStart("list"))
	arr.AppendString("zero")
	arr.AppendString("one")
	arr.Done()
	sub.Done()
	b.AppendInt32("x.y", 7)
	b.AppendInt32("n", 9)
	doc := b.Obj()

	if got := doc.FieldDotted("a.b.c").Int32(); got != 1 {
		t.Errorf("a.b.c = %d, wanted 1", got)
	}
	if got := doc.FieldDotted("a.list.1").Str(); got != "one" {
		t.Errorf("a.list.1 = %q, wanted one", got)
	}
	if got := doc.FieldDotted("x.y").Int32(); got != 7 {
		t.Errorf("x.y = %d, wanted 7", got)
	}
	for _, name := range []string{"a.b.d", "a.z", "n.m", "q", "a.list.5"} {
		if e := doc.FieldDotted(name); !e.IsEOO() {
			t.Errorf("FieldDotted(%q) = %v, wanted EOO", name, e)
		}
	}
	if got := doc.ObjectField("a").ObjectField("b").Field("c").Int32(); got != 1 {
		t.Errorf("ObjectField chain = %d, wanted 1", got)
	}
	if !doc.ObjectField("n").IsEmpty() {
		t.Errorf("ObjectField(non-object) is not empty")
	}
}

func TestDocument_ObjectIDField(t *testing.T) {
	b := NewBuilder(BuilderOptions{})
	b.AppendString("name", "x")
	b.AppendObjectID("_id", testOID)
	e, ok := b.Obj().ObjectIDField()
	if !ok || e.ObjectID() != testOID {
		t.Fatalf("ObjectIDField = %v, %v", e, ok)
	}
	if _, ok := EmptyDocument().ObjectIDField(); ok {
		t.Fatalf("ObjectIDField found _id in empty document")
	}
}

func TestDocument_Copy(t *testing.T) {
	b := NewBuilder(BuilderOptions{})
	b.AppendString("s", "abc")
	doc := b.Obj()
	cp := doc.Copy()
	doc.data[len(doc.data)-3] = 'X' // scribble over the original
	if got := cp.Field("s").Str(); got != "abc" {
		t.Fatalf("Copy saw modification: %q", got)
	}
}

func TestDocument_IsPrefixOfAndCouldBeArray(t *testing.T) {
	b := NewBuilder(BuilderOptions{})
	b.AppendInt32("a", 1)
	short := b.Obj()

	b = NewBuilder(BuilderOptions{})
	b.AppendDouble("a", 1)
	b.AppendInt32("b", 2)
	long := b.Obj()

	if !short.IsPrefixOf(long) {
		t.Errorf("IsPrefixOf = false, wanted true")
	}
	if long.IsPrefixOf(short) {
		t.Errorf("IsPrefixOf(reverse) = true, wanted false")
	}
	if !EmptyDocument().IsPrefixOf(long) {
		t.Errorf("empty IsPrefixOf = false, wanted true")
	}

	arr := NewArrayBuilder(BuilderOptions{})
	arr.AppendInt32(1)
	arr.AppendInt32(2)
	if !arr.Arr().CouldBeArray() {
		t.Errorf("CouldBeArray = false for array")
	}
	if long.CouldBeArray() {
		t.Errorf("CouldBeArray = true for object")
	}
	if !EmptyDocument().CouldBeArray() {
		t.Errorf("CouldBeArray = false for empty")
	}
}
