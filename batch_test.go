package vellum

import "testing"

func testBatch(t *testing.T) *Batch {
	t.Helper()
	schema := NewSchema([]Field{
		{Name: "id", Type: TypeInt64},
		{Name: "name", Type: TypeUtf8, Nullable: true},
	}, nil)
	b, err := NewBatch(schema, []Array{
		PrimitivesOf(TypeInt64, []int64{1, 2, 3}, nil),
		StringsOf([]string{"ada", "", "grace"}, []bool{true, false, true}),
	})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestNewBatchLengthMismatch(t *testing.T) {
	schema := NewSchema([]Field{
		{Name: "a", Type: TypeInt64},
		{Name: "b", Type: TypeInt64},
	}, nil)
	_, err := NewBatch(schema, []Array{
		PrimitivesOf(TypeInt64, []int64{1, 2, 3}, nil),
		PrimitivesOf(TypeInt64, []int64{1, 2}, nil),
	})
	if err == nil {
		t.Fatal("batch with unequal column lengths must be rejected")
	}
}

func TestEmptyBatch(t *testing.T) {
	b := EmptyBatch(42)
	if b.NumCols() != 0 {
		t.Errorf("NumCols() = %d, want 0", b.NumCols())
	}
	if b.Height() != 42 {
		t.Errorf("Height() = %d, want 42", b.Height())
	}
}

func TestBatchWithRowIndex(t *testing.T) {
	b := testBatch(t).WithRowIndex("row_nr", 100)

	if b.NumCols() != 3 {
		t.Fatalf("NumCols() = %d, want 3", b.NumCols())
	}
	if b.Schema().Fields[0].Name != "row_nr" {
		t.Fatalf("row index must be the first column, got %q", b.Schema().Fields[0].Name)
	}
	idx := PrimitiveValues[int64](b.Column(0).(*PrimitiveArray))
	for i, v := range idx {
		if v != 100+int64(i) {
			t.Errorf("row_nr[%d] = %d, want %d", i, v, 100+int64(i))
		}
	}
}

func TestBatchWithConstantColumn(t *testing.T) {
	b := testBatch(t).WithConstantColumn("part", "2026-08")

	col, ok := b.ColumnByName("part").(*BinaryArray)
	if !ok {
		t.Fatal("constant column must be a utf8 array")
	}
	for i := 0; i < col.Len(); i++ {
		if col.String(i) != "2026-08" {
			t.Errorf("part[%d] = %q", i, col.String(i))
		}
	}
	// Injected columns append after the file's own columns.
	if b.Schema().Fields[len(b.Schema().Fields)-1].Name != "part" {
		t.Error("constant column must be appended last")
	}
}

func TestBatchInjectionsOnEmptyBatch(t *testing.T) {
	b := EmptyBatch(3).WithRowIndex("row_nr", 0).WithFilePath("path", "/data/file.vellum")

	if b.NumCols() != 2 {
		t.Fatalf("NumCols() = %d, want 2", b.NumCols())
	}
	if b.Height() != 3 {
		t.Fatalf("Height() = %d, want 3", b.Height())
	}
	idx := PrimitiveValues[int64](b.Column(0).(*PrimitiveArray))
	if idx[0] != 0 || idx[2] != 2 {
		t.Errorf("row_nr = %v", idx)
	}
}

func TestBatchEqual(t *testing.T) {
	if !testBatch(t).Equal(testBatch(t)) {
		t.Error("equal batches reported unequal")
	}
	if testBatch(t).Equal(testBatch(t).WithRowIndex("row_nr", 0)) {
		t.Error("batches with different columns reported equal")
	}
}
