package ipc_test

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellum-data/vellum"
	"github.com/vellum-data/vellum/format"
	"github.com/vellum-data/vellum/ipc"
)

// allTypesSchema and allTypesBatch build a 5-row batch exercising every
// logical type, including nulls in most columns.

func allTypesSchema() *vellum.Schema {
	return vellum.NewSchema([]vellum.Field{
		{Name: "id", Type: vellum.TypeInt64},
		{Name: "flag", Type: vellum.TypeBoolean, Nullable: true},
		{Name: "name", Type: vellum.TypeUtf8, Nullable: true},
		{Name: "raw", Type: vellum.TypeBinary},
		{Name: "f32", Type: vellum.TypeFloat32},
		{Name: "digest", Type: vellum.FixedSizeBinaryOf(4)},
		{Name: "vec", Type: vellum.FixedSizeListOf(2, vellum.TypeFloat64), Nullable: true},
		{Name: "tags", Type: vellum.ListOf(vellum.TypeUtf8), Nullable: true},
		{Name: "point", Type: vellum.StructOf(
			vellum.Field{Name: "x", Type: vellum.TypeFloat64},
			vellum.Field{Name: "y", Type: vellum.TypeFloat64},
		), Nullable: true},
		{Name: "country", Type: vellum.DictionaryOf(1, vellum.TypeInt32, vellum.TypeUtf8), Nullable: true},
		{Name: "view", Type: &vellum.DataType{Kind: vellum.Utf8View}, Nullable: true},
		{Name: "choice", Type: vellum.UnionOf(vellum.SparseUnion, []int8{0, 1},
			vellum.Field{Name: "i", Type: vellum.TypeInt32},
			vellum.Field{Name: "s", Type: vellum.TypeUtf8},
		)},
		{Name: "packed", Type: vellum.UnionOf(vellum.DenseUnion, []int8{0, 1},
			vellum.Field{Name: "i", Type: vellum.TypeInt32},
			vellum.Field{Name: "s", Type: vellum.TypeUtf8},
		)},
		{Name: "nothing", Type: vellum.TypeNull, Nullable: true},
	}, map[string]string{"producer": "ipc_test"})
}

func allTypesBatch(t *testing.T) *vellum.Batch {
	t.Helper()
	schema := allTypesSchema()

	vec, err := vellum.NewFixedSizeListArray(
		schema.Fields[6].Type, 5,
		vellum.PrimitivesOf(vellum.TypeFloat64, []float64{1, 2, 3, 4, 0, 0, 7, 8, 9, 10}, nil),
		vellum.BitmapFromBools([]bool{true, true, false, true, true}),
	)
	require.NoError(t, err)

	tags, err := vellum.NewListArray(
		schema.Fields[7].Type,
		[]int32{0, 1, 3, 3, 5, 6},
		vellum.StringsOf([]string{"a", "b", "c", "d", "e", "f"}, nil),
		vellum.BitmapFromBools([]bool{true, true, false, true, true}),
	)
	require.NoError(t, err)

	point, err := vellum.NewStructArray(
		schema.Fields[8].Type, 5,
		[]vellum.Array{
			vellum.PrimitivesOf(vellum.TypeFloat64, []float64{1.5, 2.5, 3.5, 0, 5.5}, nil),
			vellum.PrimitivesOf(vellum.TypeFloat64, []float64{-1, -2, -3, 0, -5}, nil),
		},
		vellum.BitmapFromBools([]bool{true, true, true, false, true}),
	)
	require.NoError(t, err)

	country, err := vellum.NewDictionaryArray(
		schema.Fields[9].Type,
		vellum.PrimitivesOf(vellum.TypeInt32, []int32{0, 1, 0, 0, 2}, []bool{true, true, false, true, true}),
		vellum.StringsOf([]string{"fr", "de", "jp"}, nil),
	)
	require.NoError(t, err)

	choice, err := vellum.NewUnionArray(
		schema.Fields[11].Type,
		[]int8{0, 1, 0, 1, 0},
		nil,
		[]vellum.Array{
			vellum.PrimitivesOf(vellum.TypeInt32, []int32{10, 0, 30, 0, 50}, nil),
			vellum.StringsOf([]string{"", "twenty", "", "forty", ""}, nil),
		},
	)
	require.NoError(t, err)

	packed, err := vellum.NewUnionArray(
		schema.Fields[12].Type,
		[]int8{0, 1, 0, 1, 0},
		[]int32{0, 0, 1, 1, 2},
		[]vellum.Array{
			vellum.PrimitivesOf(vellum.TypeInt32, []int32{10, 30, 50}, nil),
			vellum.StringsOf([]string{"twenty", "forty"}, nil),
		},
	)
	require.NoError(t, err)

	batch, err := vellum.NewBatch(schema, []vellum.Array{
		vellum.PrimitivesOf(vellum.TypeInt64, []int64{1, 2, 3, 4, 5}, nil),
		vellum.BooleansOf([]bool{true, false, true, false, true}, []bool{true, true, false, true, true}),
		vellum.StringsOf([]string{"ada", "", "grace", "edsger", "barbara"}, []bool{true, false, true, true, true}),
		vellum.NewBinaryArray(vellum.TypeBinary, []int32{0, 2, 4, 4, 7, 9}, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}, nil),
		vellum.PrimitivesOf(vellum.TypeFloat32, []float32{0.5, 1.5, 2.5, 3.5, 4.5}, nil),
		vellum.NewPrimitiveArray(vellum.FixedSizeBinaryOf(4), []byte("aaaabbbbccccddddeeee"), 5, nil),
		vec,
		tags,
		point,
		country,
		vellum.ViewStringsOf([]string{"short", "a value long enough to spill", "", "x", "another long value spilling over"}, []bool{true, true, false, true, true}),
		choice,
		packed,
		vellum.NewNullArray(5),
	})
	require.NoError(t, err)
	return batch
}

func writeFile(t *testing.T, batches []*vellum.Batch, opts ipc.WriterOptions) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.vellum")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := ipc.NewFileWriter(f, batches[0].Schema(), opts)
	for _, b := range batches {
		require.NoError(t, w.Write(b))
	}
	require.NoError(t, w.Close())
	return path
}

func TestFileRoundTrip(t *testing.T) {
	want := allTypesBatch(t)
	path := writeFile(t, []*vellum.Batch{want}, ipc.WriterOptions{})

	table, err := ipc.ReadFile(path, ipc.ReadOptions{})
	require.NoError(t, err)
	defer table.Close()

	require.Equal(t, 1, table.NumBatches())
	require.Equal(t, 5, table.Height())
	assert.True(t, want.Equal(table.Batch(0)), "decoded batch differs from the written one")
}

func TestFileRoundTripCompressed(t *testing.T) {
	compressions := []format.Compression{
		format.CompressionZstd,
		format.CompressionLz4,
		format.CompressionSnappy,
		format.CompressionGzip,
		format.CompressionBrotli,
	}
	want := allTypesBatch(t)

	for _, compression := range compressions {
		t.Run(compression.String(), func(t *testing.T) {
			path := writeFile(t, []*vellum.Batch{want}, ipc.WriterOptions{Compression: compression})

			f, err := ipc.OpenFile(path)
			require.NoError(t, err)
			defer f.Close()

			info, err := f.Info(0)
			require.NoError(t, err)
			assert.Equal(t, compression, info.Compression)

			got, err := f.Batch(0, nil, -1)
			require.NoError(t, err)
			assert.True(t, want.Equal(got))
		})
	}
}

func TestStreamRoundTrip(t *testing.T) {
	want := allTypesBatch(t)
	buf := new(bytes.Buffer)

	w := ipc.NewStreamWriter(buf, want.Schema(), ipc.WriterOptions{Compression: format.CompressionLz4})
	require.NoError(t, w.Write(want))
	require.NoError(t, w.Write(want))
	require.NoError(t, w.Close())

	r := ipc.NewStreamReader(buf)
	schema, err := r.Schema()
	require.NoError(t, err)
	assert.True(t, schema.Equal(want.Schema()))

	for i := 0; i < 2; i++ {
		got, err := r.Next(nil, -1)
		require.NoError(t, err)
		assert.True(t, want.Equal(got), "batch %d differs", i)
	}
	_, err = r.Next(nil, -1)
	require.ErrorIs(t, err, io.EOF)
}

func TestRereadProducesEqualTable(t *testing.T) {
	want := allTypesBatch(t)
	path := writeFile(t, []*vellum.Batch{want, want}, ipc.WriterOptions{})

	first, err := ipc.ReadFile(path, ipc.ReadOptions{})
	require.NoError(t, err)
	defer first.Close()

	// Re-encode what was decoded and read it back; the decode must be
	// lossless through a full write/read cycle.
	batches := make([]*vellum.Batch, first.NumBatches())
	for i := range batches {
		batches[i] = first.Batch(i)
	}
	path2 := writeFile(t, batches, ipc.WriterOptions{})

	second, err := ipc.ReadFile(path2, ipc.ReadOptions{})
	require.NoError(t, err)
	defer second.Close()

	assert.True(t, first.Equal(second))
}

func TestProjection(t *testing.T) {
	want := allTypesBatch(t)
	path := writeFile(t, []*vellum.Batch{want}, ipc.WriterOptions{})

	// Projecting any single column forces the reader to skip every other
	// column while keeping the node and buffer queues aligned.
	for i, field := range want.Schema().Fields {
		t.Run(field.Name, func(t *testing.T) {
			table, err := ipc.ReadFile(path, ipc.ReadOptions{Columns: []string{field.Name}})
			require.NoError(t, err)
			defer table.Close()

			require.Equal(t, 1, table.Batch(0).NumCols())
			assert.True(t, want.Column(i).Equal(table.Batch(0).Column(0)),
				"projected column %q differs from the written one", field.Name)
		})
	}
}

func TestProjectionReordersColumns(t *testing.T) {
	want := allTypesBatch(t)
	path := writeFile(t, []*vellum.Batch{want}, ipc.WriterOptions{})

	table, err := ipc.ReadFile(path, ipc.ReadOptions{Columns: []string{"name", "id"}})
	require.NoError(t, err)
	defer table.Close()

	got := table.Batch(0)
	require.Equal(t, 2, got.NumCols())
	assert.Equal(t, "name", got.Schema().Fields[0].Name)
	assert.Equal(t, "id", got.Schema().Fields[1].Name)
	assert.True(t, want.ColumnByName("name").Equal(got.Column(0)))
	assert.True(t, want.ColumnByName("id").Equal(got.Column(1)))
}

func TestProjectionUnknownColumn(t *testing.T) {
	path := writeFile(t, []*vellum.Batch{allTypesBatch(t)}, ipc.WriterOptions{})

	_, err := ipc.ReadFile(path, ipc.ReadOptions{Columns: []string{"no_such_column"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no_such_column")
}

func TestEmptyProjection(t *testing.T) {
	want := allTypesBatch(t)
	path := writeFile(t, []*vellum.Batch{want, want}, ipc.WriterOptions{})

	table, err := ipc.ReadFile(path, ipc.ReadOptions{
		Columns:  []string{},
		RowIndex: &ipc.RowIndex{Name: "row_nr"},
	})
	require.NoError(t, err)
	defer table.Close()

	// No column bytes are decoded, but the row count survives and the row
	// index is built from it.
	require.Equal(t, 10, table.Height())
	require.Equal(t, 1, table.Batch(0).NumCols())
	idx := vellum.PrimitiveValues[int64](table.Batch(0).Column(0).(*vellum.PrimitiveArray))
	assert.Equal(t, int64(0), idx[0])
	assert.Equal(t, int64(9), idx[9])
}

func TestNRows(t *testing.T) {
	want := allTypesBatch(t)
	path := writeFile(t, []*vellum.Batch{want, want}, ipc.WriterOptions{})

	table, err := ipc.ReadFile(path, ipc.ReadOptions{NRows: 7})
	require.NoError(t, err)
	defer table.Close()

	require.Equal(t, 7, table.Height())
	require.Equal(t, 2, table.NumBatches())
	assert.Equal(t, 5, table.Batch(0).Height())
	assert.Equal(t, 2, table.Batch(1).Height())

	// A cap beyond the file reads everything.
	all, err := ipc.ReadFile(path, ipc.ReadOptions{NRows: 1000})
	require.NoError(t, err)
	defer all.Close()
	assert.Equal(t, 10, all.Height())
}

func TestNRowsMatchesFullReadPrefix(t *testing.T) {
	want := allTypesBatch(t)
	path := writeFile(t, []*vellum.Batch{want}, ipc.WriterOptions{})

	full, err := ipc.ReadFile(path, ipc.ReadOptions{Columns: []string{"id", "tags", "vec"}})
	require.NoError(t, err)
	defer full.Close()

	limited, err := ipc.ReadFile(path, ipc.ReadOptions{Columns: []string{"id", "tags", "vec"}, NRows: 3})
	require.NoError(t, err)
	defer limited.Close()

	require.Equal(t, 3, limited.Height())
	got := limited.Batch(0)
	fullBatch := full.Batch(0)

	ids := vellum.PrimitiveValues[int64](got.Column(0).(*vellum.PrimitiveArray))
	assert.Equal(t, []int64{1, 2, 3}, ids)

	gotTags := got.Column(1).(*vellum.ListArray)
	fullTags := fullBatch.Column(1).(*vellum.ListArray)
	require.Equal(t, 3, gotTags.Len())
	for i := 0; i < 3; i++ {
		assert.Equal(t, gotTags.IsValid(i), fullTags.IsValid(i))
		assert.Equal(t, fullTags.Offsets()[i], gotTags.Offsets()[i])
	}

	gotVec := got.Column(2).(*vellum.FixedSizeListArray)
	require.Equal(t, 3, gotVec.Len())
	assert.Equal(t, 6, gotVec.Elems().Len())
}

func TestFixedSizeListLimitScalesToChild(t *testing.T) {
	schema := vellum.NewSchema([]vellum.Field{
		{Name: "triples", Type: vellum.FixedSizeListOf(3, vellum.TypeInt32), Nullable: true},
	}, nil)

	child := vellum.PrimitivesOf(vellum.TypeInt32, []int32{1, 2, 3, 0, 0, 0, 7, 8, 9}, nil)
	col, err := vellum.NewFixedSizeListArray(schema.Fields[0].Type, 3, child, vellum.BitmapFromBools([]bool{true, false, true}))
	require.NoError(t, err)
	batch, err := vellum.NewBatch(schema, []vellum.Array{col})
	require.NoError(t, err)

	path := writeFile(t, []*vellum.Batch{batch}, ipc.WriterOptions{})

	table, err := ipc.ReadFile(path, ipc.ReadOptions{NRows: 1})
	require.NoError(t, err)
	defer table.Close()

	require.Equal(t, 1, table.Height())
	got := table.Batch(0).Column(0).(*vellum.FixedSizeListArray)
	require.Equal(t, 1, got.Len())
	// One list row keeps exactly three child values.
	require.Equal(t, 3, got.Elems().Len())
	assert.Equal(t, []int32{1, 2, 3}, vellum.PrimitiveValues[int32](got.Elems().(*vellum.PrimitiveArray)))
}

func TestRowIndexAcrossBatches(t *testing.T) {
	want := allTypesBatch(t)
	path := writeFile(t, []*vellum.Batch{want, want}, ipc.WriterOptions{})

	table, err := ipc.ReadFile(path, ipc.ReadOptions{
		Columns:  []string{"id"},
		RowIndex: &ipc.RowIndex{Name: "row_nr", Offset: 100},
	})
	require.NoError(t, err)
	defer table.Close()

	var got []int64
	for i := 0; i < table.NumBatches(); i++ {
		b := table.Batch(i)
		require.Equal(t, "row_nr", b.Schema().Fields[0].Name)
		got = append(got, vellum.PrimitiveValues[int64](b.Column(0).(*vellum.PrimitiveArray))...)
	}
	want64 := make([]int64, 10)
	for i := range want64 {
		want64[i] = 100 + int64(i)
	}
	assert.Equal(t, want64, got)
}

func TestFilePathAndConstantColumns(t *testing.T) {
	path := writeFile(t, []*vellum.Batch{allTypesBatch(t)}, ipc.WriterOptions{})

	table, err := ipc.ReadFile(path, ipc.ReadOptions{
		Columns:         []string{"id"},
		FilePathColumn:  "source",
		ConstantColumns: []ipc.ConstantColumn{{Name: "part", Value: "2026-08-31"}},
	})
	require.NoError(t, err)
	defer table.Close()

	b := table.Batch(0)
	require.Equal(t, 3, b.NumCols())
	source := b.ColumnByName("source").(*vellum.BinaryArray)
	assert.Equal(t, path, source.String(0))
	part := b.ColumnByName("part").(*vellum.BinaryArray)
	assert.Equal(t, "2026-08-31", part.String(4))
}

func TestFileMetadata(t *testing.T) {
	path := writeFile(t, []*vellum.Batch{allTypesBatch(t)}, ipc.WriterOptions{
		Metadata: map[string]string{"created_by": "ipc_test"},
	})

	f, err := ipc.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	meta, err := f.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "ipc_test", meta["created_by"])

	// Every file gets a distinct random identifier.
	id, err := uuid.Parse(meta[ipc.FileIDKey])
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
}

func TestRowCountReadsOnlyHeaders(t *testing.T) {
	want := allTypesBatch(t)
	path := writeFile(t, []*vellum.Batch{want, want, want}, ipc.WriterOptions{})

	f, err := ipc.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.RowCount()
	require.NoError(t, err)
	assert.Equal(t, int64(15), rows)
}

func TestMemoryMapZeroCopy(t *testing.T) {
	want := allTypesBatch(t)
	path := writeFile(t, []*vellum.Batch{want}, ipc.WriterOptions{})

	f, err := ipc.OpenMapped(path)
	require.NoError(t, err)
	defer f.Close()

	require.True(t, f.Mapped())
	got, err := f.Batch(0, nil, -1)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))
}

func TestMemoryMapCompressedFallsBack(t *testing.T) {
	want := allTypesBatch(t)
	path := writeFile(t, []*vellum.Batch{want}, ipc.WriterOptions{Compression: format.CompressionZstd})

	// The mapped reader itself refuses with a structured error.
	f, err := ipc.OpenMapped(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.Batch(0, nil, -1)
	var fb *ipc.FallbackError
	require.ErrorAs(t, err, &fb)
	assert.Equal(t, ipc.FallbackCompressed, fb.Reason)

	// ReadFile recovers by rereading buffered, logging the fallback once.
	logs := new(bytes.Buffer)
	table, err := ipc.ReadFile(path, ipc.ReadOptions{
		MemoryMap: true,
		Logger:    slog.New(slog.NewTextHandler(logs, nil)),
	})
	require.NoError(t, err)
	defer table.Close()

	assert.True(t, want.Equal(table.Batch(0)))
	assert.Equal(t, 1, strings.Count(logs.String(), "falling back to buffered reads"))
}

func TestMemoryMapUncompressedLogsNothing(t *testing.T) {
	path := writeFile(t, []*vellum.Batch{allTypesBatch(t)}, ipc.WriterOptions{})

	logs := new(bytes.Buffer)
	table, err := ipc.ReadFile(path, ipc.ReadOptions{
		MemoryMap: true,
		Logger:    slog.New(slog.NewTextHandler(logs, nil)),
	})
	require.NoError(t, err)
	defer table.Close()

	assert.Equal(t, 5, table.Height())
	assert.Empty(t, logs.String())
}

func TestCorruptFile(t *testing.T) {
	path := writeFile(t, []*vellum.Batch{allTypesBatch(t)}, ipc.WriterOptions{})
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	t.Run("truncated", func(t *testing.T) {
		short := filepath.Join(t.TempDir(), "short.vellum")
		require.NoError(t, os.WriteFile(short, data[:len(data)-4], 0o644))

		_, err := ipc.ReadFile(short, ipc.ReadOptions{})
		require.ErrorIs(t, err, vellum.ErrCorrupt)
	})

	t.Run("not a vellum file", func(t *testing.T) {
		junk := filepath.Join(t.TempDir(), "junk.vellum")
		require.NoError(t, os.WriteFile(junk, bytes.Repeat([]byte("nope"), 100), 0o644))

		_, err := ipc.ReadFile(junk, ipc.ReadOptions{})
		require.ErrorIs(t, err, vellum.ErrCorrupt)
	})
}

func TestBatchIndexOutOfRange(t *testing.T) {
	path := writeFile(t, []*vellum.Batch{allTypesBatch(t)}, ipc.WriterOptions{})

	f, err := ipc.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Batch(3, nil, -1)
	require.ErrorIs(t, err, vellum.ErrCorrupt)
}

func TestStreamWithoutSchema(t *testing.T) {
	r := ipc.NewStreamReader(bytes.NewReader(nil))
	_, err := r.Schema()
	require.ErrorIs(t, err, vellum.ErrCorrupt)
}

func TestDictionariesLookup(t *testing.T) {
	dicts := make(ipc.Dictionaries)
	_, err := dicts.Lookup(9)
	require.ErrorIs(t, err, vellum.ErrDictionaryMissing)

	dicts[9] = vellum.StringsOf([]string{"x"}, nil)
	got, err := dicts.Lookup(9)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
}
