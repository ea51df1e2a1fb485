package format_test

import (
	"reflect"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/vellum-data/vellum/format"
)

func testSchema() *format.Schema {
	return &format.Schema{
		Endianness: format.LittleEndian,
		Fields: []format.Field{
			{Name: "id", Kind: format.KindInt64},
			{Name: "name", Kind: format.KindUtf8, Nullable: true},
			{
				Name:     "tags",
				Kind:     format.KindList,
				Nullable: true,
				Children: []format.Field{
					{Name: "item", Kind: format.KindUtf8, Nullable: true},
				},
			},
			{
				Name: "position",
				Kind: format.KindFixedSizeList,
				Size: 3,
				Children: []format.Field{
					{Name: "item", Kind: format.KindFloat64, Nullable: true},
				},
			},
			{
				Name:      "country",
				Kind:      format.KindDictionary,
				Nullable:  true,
				DictID:    7,
				IndexKind: format.KindInt32,
				Children: []format.Field{
					{Name: "values", Kind: format.KindUtf8, Nullable: true},
				},
			},
			{
				Name:      "payload",
				Kind:      format.KindUnion,
				UnionMode: 1,
				TypeIDs:   []int8{0, 5},
				Children: []format.Field{
					{Name: "i", Kind: format.KindInt32},
					{Name: "s", Kind: format.KindUtf8},
				},
			},
		},
		Metadata: []format.KeyValue{
			{Key: "origin", Value: "unit-test"},
		},
	}
}

func TestSchemaRoundTrip(t *testing.T) {
	want := testSchema()
	data := format.AppendSchema(nil, want)

	got := new(format.Schema)
	if err := format.DecodeSchema(data, got); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(want, got) {
		t.Errorf("schema mismatch:\nwant %+v\ngot  %+v", want, got)
	}
}

func TestMessageRoundTrip(t *testing.T) {
	messages := []*format.Message{
		{
			Version: format.V1,
			Schema:  testSchema(),
		},
		{
			Version:    format.V1,
			BodyLength: 256,
			Record: &format.RecordBatch{
				Length: 10,
				Nodes: []format.FieldNode{
					{Length: 10, NullCount: 2},
					{Length: 30},
				},
				Buffers: []format.Buffer{
					{Offset: 0, Length: 2},
					{Offset: 8, Length: 44},
					{Offset: 56, Length: 120},
				},
				VariadicCounts: []int64{2},
				Compression:    format.CompressionZstd,
			},
		},
		{
			Version:    format.V1,
			BodyLength: 64,
			Dictionary: &format.DictionaryBatch{
				ID: 7,
				Data: format.RecordBatch{
					Length:  4,
					Nodes:   []format.FieldNode{{Length: 4}},
					Buffers: []format.Buffer{{Length: 1}, {Offset: 8, Length: 20}, {Offset: 32, Length: 17}},
				},
			},
		},
	}

	for _, want := range messages {
		data := format.AppendMessage(nil, want)

		got := new(format.Message)
		if err := format.DecodeMessage(data, got); err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(want, got) {
			t.Errorf("message mismatch:\nwant %+v\ngot  %+v", want, got)
		}
	}
}

func TestFooterRoundTrip(t *testing.T) {
	want := &format.Footer{
		Version: format.V1,
		Schema:  *testSchema(),
		Dictionaries: []format.Block{
			{Offset: 8, MetaLength: 40, BodyLength: 64},
		},
		Records: []format.Block{
			{Offset: 120, MetaLength: 96, BodyLength: 1024},
			{Offset: 1248, MetaLength: 96, BodyLength: 512},
		},
		Metadata: []format.KeyValue{
			{Key: "vellum.file_id", Value: "0b96c344-55a8-4fb4-8b15-89c1d0f4f5a2"},
		},
	}
	data := format.AppendFooter(nil, want)

	got := new(format.Footer)
	if err := format.DecodeFooter(data, got); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(want, got) {
		t.Errorf("footer mismatch:\nwant %+v\ngot  %+v", want, got)
	}
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	want := testSchema()
	data := format.AppendSchema(nil, want)

	// A future writer may append fields this decoder does not know about.
	data = protowire.AppendTag(data, 99, protowire.BytesType)
	data = protowire.AppendBytes(data, []byte("from the future"))
	data = protowire.AppendTag(data, 100, protowire.VarintType)
	data = protowire.AppendVarint(data, 42)

	got := new(format.Schema)
	if err := format.DecodeSchema(data, got); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(want, got) {
		t.Errorf("schema mismatch after unknown fields:\nwant %+v\ngot  %+v", want, got)
	}
}

func TestDecodeTruncatedInput(t *testing.T) {
	data := format.AppendSchema(nil, testSchema())
	for _, n := range []int{1, 2, len(data) / 2, len(data) - 1} {
		got := new(format.Schema)
		if err := format.DecodeSchema(data[:n], got); err == nil {
			// Truncation can fall on a field boundary, in which case the
			// decode legitimately succeeds with fewer fields.
			if reflect.DeepEqual(got, testSchema()) {
				t.Errorf("truncated input of %d bytes decoded to the full schema", n)
			}
		}
	}
}
